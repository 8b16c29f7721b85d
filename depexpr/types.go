// Package depexpr parses and represents Debian-style dependency
// expressions: comma-separated compound terms, each a pipe-separated list
// of possibilities bound to an abstract package name and an optional
// version constraint.
package depexpr

import (
	"strings"

	"github.com/opkg-project/opkg/version"
)

// Kind tags which relation field a CompoundDepend was parsed from. This
// replaces the original's NULL-sentinel, tagged-count array encoding with
// an exhaustive tagged variant (spec Design Note, §9).
type Kind int

// The relation kinds a control record carries. GreedyDepend is spec.md §3's
// seventh relation kind; it's carried here for completeness but no control
// field parses into it and no component switches on it — see DESIGN.md.
const (
	PreDepend Kind = iota
	Depend
	Recommend
	Suggest
	Conflict
	Replace
	GreedyDepend
)

// String renders k as the control-field name it was parsed from.
func (k Kind) String() string {
	switch k {
	case PreDepend:
		return "Pre-Depends"
	case Depend:
		return "Depends"
	case Recommend:
		return "Recommends"
	case Suggest:
		return "Suggests"
	case Conflict:
		return "Conflicts"
	case Replace:
		return "Replaces"
	case GreedyDepend:
		return "greedy-depend"
	default:
		return "unknown"
	}
}

// Possibility is one arm of a compound dependency: an abstract package name
// plus an optional version constraint.
type Possibility struct {
	Name string
	Op   version.Op // version.None if unconstrained
	Ver  version.Version
}

// Satisfies reports whether concrete version v, offered under name, meets
// this possibility's name and (if present) version constraint.
func (p Possibility) Satisfies(name string, v version.Version) bool {
	if p.Name != name {
		return false
	}
	return version.Satisfied(p.Op, v, p.Ver)
}

func (p Possibility) String() string {
	if p.Op == version.None {
		return p.Name
	}
	return p.Name + " (" + p.Op.String() + " " + p.Ver.String() + ")"
}

// CompoundDepend is a disjunction of possibilities: "a | b | c". All must
// resolve to the same abstract-package universe for the expression to be
// meaningful, but they need not share a name.
type CompoundDepend struct {
	Kind          Kind
	Possibilities []Possibility
}

func (c CompoundDepend) String() string {
	parts := make([]string, len(c.Possibilities))
	for i, p := range c.Possibilities {
		parts[i] = p.String()
	}
	return strings.Join(parts, " | ")
}

// Names returns the abstract package names referenced by c's possibilities,
// in order, without deduplication.
func (c CompoundDepend) Names() []string {
	names := make([]string, len(c.Possibilities))
	for i, p := range c.Possibilities {
		names[i] = p.Name
	}
	return names
}
