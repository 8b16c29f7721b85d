// Package solver computes an ordered install/configure/remove/purge plan
// from a goal set and the current installed universe: a greedy backtracker,
// not an ILP solver (spec §4.5, §1 Non-goals).
package solver

import (
	"fmt"

	"github.com/opkg-project/opkg/index"
)

// ActionKind is what the transaction engine should do with a package at its
// position in the plan.
type ActionKind int

const (
	Noop ActionKind = iota
	Install
	Configure
	Remove
	Purge
)

func (k ActionKind) String() string {
	switch k {
	case Install:
		return "install"
	case Configure:
		return "configure"
	case Remove:
		return "remove"
	case Purge:
		return "purge"
	default:
		return "noop"
	}
}

// Action is one step of the plan: do Kind to Package.
type Action struct {
	Package *index.Package
	Kind    ActionKind
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s %s", a.Kind, a.Package.Name, a.Package.Version)
}

// Plan is the ordered action list a successful Solve produces. Pre-Depends
// and Depends unpacks precede their dependents; see solveState.orderPlan.
type Plan []Action

// GoalKind is what the caller wants done to a named package.
type GoalKind int

const (
	GoalInstall GoalKind = iota
	GoalRemove
	GoalUpgrade
)

// Goal is one user-requested outcome: install/remove/upgrade Name, optionally
// pinned to Version. Names, when set, represents a pipe-separated
// disjunction ("install P | Q") instead of a single package name.
type Goal struct {
	Kind    GoalKind
	Name    string
	Names   []string
	Version *string // nil means "any version satisfying constraints"
}

// Policy carries the solver knobs spec §4.5 step 3 and §5 call for:
// whether Recommends are enqueued, and a prefer-bias override independent of
// a package's own `prefer` flag (SPEC_FULL §6).
type Policy struct {
	AddRecommends bool
	// PinPriority biases candidate ranking for named abstract packages
	// without mutating their index.Package.StateFlag, mirroring the
	// teacher's override-map pattern.
	PinPriority map[string]int
	// ForceRemovalOfEssential bypasses the Essential-package protection
	// (spec §4.5 step 6).
	ForceRemovalOfEssential bool
}
