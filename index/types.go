// Package index holds the two hash tables that key every known package
// version and every abstract package name: pkg_hash (concrete packages,
// keyed by name) and abstract_hash (abstract packages, keyed by the name a
// dependency possibility can resolve against).
package index

import (
	"github.com/opkg-project/opkg/depexpr"
	"github.com/opkg-project/opkg/version"
)

// StateWant is the user's intent for a package, independent of its current
// on-disk state.
type StateWant int

const (
	WantUnknown StateWant = iota
	WantInstall
	WantDeinstall
	WantPurge
)

func (w StateWant) String() string {
	switch w {
	case WantInstall:
		return "install"
	case WantDeinstall:
		return "deinstall"
	case WantPurge:
		return "purge"
	default:
		return "unknown"
	}
}

// StateFlag is a bitset of non-volatile package flags.
type StateFlag uint

const (
	FlagOK StateFlag = 1 << iota
	FlagReinstreq
	FlagHold
	FlagReplace
	FlagNoprune
	FlagPrefer
	FlagObsolete
	FlagUser
	FlagFilelistChanged
)

var flagNames = []struct {
	bit  StateFlag
	name string
}{
	{FlagReinstreq, "reinstreq"},
	{FlagHold, "hold"},
	{FlagReplace, "replace"},
	{FlagNoprune, "noprune"},
	{FlagPrefer, "prefer"},
	{FlagObsolete, "obsolete"},
	{FlagUser, "user"},
	{FlagFilelistChanged, "filelist-changed"},
}

// Names renders the set flags in spec order, "ok" when nothing else is set.
func (f StateFlag) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.bit != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return []string{"ok"}
	}
	return names
}

// StateStatus is where a package sits in the install/remove state machine
// (spec §4.6).
type StateStatus int

const (
	StatusNotInstalled StateStatus = iota
	StatusUnpacked
	StatusHalfConfigured
	StatusInstalled
	StatusHalfInstalled
	StatusConfigFiles
	StatusPostInstFailed
	StatusRemovalFailed
)

func (s StateStatus) String() string {
	switch s {
	case StatusNotInstalled:
		return "not-installed"
	case StatusUnpacked:
		return "unpacked"
	case StatusHalfConfigured:
		return "half-configured"
	case StatusInstalled:
		return "installed"
	case StatusHalfInstalled:
		return "half-installed"
	case StatusConfigFiles:
		return "config-files"
	case StatusPostInstFailed:
		return "post-inst-failed"
	case StatusRemovalFailed:
		return "removal-failed"
	default:
		return "unknown"
	}
}

// Conffile is one conffile path plus its recorded checksum, as found in a
// Conffiles: field or a <pkg>.conffiles info file.
type Conffile struct {
	Path string
	MD5  string
}

// Package is a single concrete (name, epoch, upstream, revision,
// architecture) tuple plus its metadata and transaction state (spec §3).
type Package struct {
	Name         string
	Version      version.Version
	Architecture string

	Maintainer     string
	Section        string
	Description    string
	Priority       string
	InstalledSize  int64
	DownloadSize   int64
	MD5Sum         string
	SHA256Sum      string
	Source         string
	Filename       string
	InstalledTime  int64
	Tags           []string
	AutoInstalled  bool
	ArchPriority   int

	Conffiles []Conffile
	// UserFields holds fields the control parser didn't recognize,
	// preserved verbatim when verbose status is requested (spec §4.2).
	UserFields map[string]string

	// Depends holds every relation kind in one slice, tagged by
	// depexpr.Kind, replacing the original's parallel-counted arrays
	// (spec §9).
	Depends []depexpr.CompoundDepend
	// Provides lists the abstract names this package provides, in
	// addition to its own name (always present as the first provider
	// entry of its own abstract package).
	Provides []string

	StateWant   StateWant
	StateFlag   StateFlag
	StateStatus StateStatus

	// dependenciesChecked guards lazy resolver expansion (spec §4.4);
	// exported via DependenciesChecked/SetDependenciesChecked so index
	// stays the sole owner of the bit.
	dependenciesChecked bool
}

// DependenciesChecked reports whether the resolver has already expanded p's
// dependency strings against the abstract-name universe.
func (p *Package) DependenciesChecked() bool { return p.dependenciesChecked }

// SetDependenciesChecked marks p's dependencies as resolved.
func (p *Package) SetDependenciesChecked() { p.dependenciesChecked = true }

// Key identifies a concrete package for deduplication: (name, version,
// architecture) plus Source, since two packages of otherwise-identical
// identity can still come from distinct source packages (spec §4.3 "src").
type Key struct {
	Name         string
	Version      version.Version
	Architecture string
	Source       string
}

func (p *Package) Key() Key {
	return Key{Name: p.Name, Version: p.Version, Architecture: p.Architecture, Source: p.Source}
}

// AbstractPackage is a name shared by potentially many concrete providers
// (spec §3). A concrete package always provides its own name first.
type AbstractPackage struct {
	Name      string
	Providers []*Package
	Dependants []*Package

	// dependenciesChecked mirrors Package's lazy-resolution cache.
	dependenciesChecked bool
}

func (a *AbstractPackage) DependenciesChecked() bool { return a.dependenciesChecked }
func (a *AbstractPackage) SetDependenciesChecked()    { a.dependenciesChecked = true }

// AddProvider registers pkg as a provider of a, if not already present.
func (a *AbstractPackage) AddProvider(pkg *Package) {
	for _, p := range a.Providers {
		if p == pkg {
			return
		}
	}
	a.Providers = append(a.Providers, pkg)
}

// AddDependant registers pkg as depending on a, if not already present.
func (a *AbstractPackage) AddDependant(pkg *Package) {
	for _, p := range a.Dependants {
		if p == pkg {
			return
		}
	}
	a.Dependants = append(a.Dependants, pkg)
}
