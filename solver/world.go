package solver

import (
	"github.com/opkg-project/opkg/index"
	"github.com/opkg-project/opkg/version"
)

// World is everything the solver consults to rank and validate candidates:
// the package index plus which concrete packages are currently installed
// and which abstract names are Essential.
type World struct {
	Index *index.Index

	// Installed maps an abstract/concrete name to the package currently
	// occupying index.StatusInstalled (or a half-state) for it, if any.
	Installed map[string]*index.Package

	// Essential names cannot be scheduled for removal without
	// Policy.ForceRemovalOfEssential (spec §4.5 step 6).
	Essential map[string]bool
}

func (w *World) isInstalled(pkg *index.Package) bool {
	inst, ok := w.Installed[pkg.Name]
	return ok && version.Equal(inst.Version, pkg.Version)
}

func (w *World) isHeld(name string) bool {
	inst, ok := w.Installed[name]
	return ok && inst.StateFlag&index.FlagHold != 0
}
