package solver

import (
	"bytes"
	"fmt"

	"github.com/opkg-project/opkg/index"
)

// BlockingChain is the tentative frontier at the point of the last
// backtrack: the sequence of (depender, dependency name) edges the solver
// was trying to satisfy when it ran out of candidates. Surfaced verbatim on
// failure (spec §4.5 "surface the minimal blocking chain").
type BlockingChain []BlockingEdge

// BlockingEdge is one link of a BlockingChain: depender depends on name,
// and no acceptable candidate exists.
type BlockingEdge struct {
	Depender string
	Name     string
}

func (c BlockingChain) String() string {
	var buf bytes.Buffer
	for i, e := range c {
		if i > 0 {
			buf.WriteString(" -> ")
		}
		fmt.Fprintf(&buf, "%s needs %s", e.Depender, e.Name)
	}
	return buf.String()
}

// UnsatisfiableError reports that no candidate exists for a dependency
// possibility after exhausting every option in its pipe (spec §4.5 step 2).
type UnsatisfiableError struct {
	Name  string
	Chain BlockingChain
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("solver: no acceptable candidate for %q (blocking chain: %s)", e.Name, e.Chain)
}

// ConflictError reports that accepting Candidate would conflict with
// Installed, which is not scheduled for removal and not covered by
// Candidate's Replaces (spec §4.5 steps 4-5).
type ConflictError struct {
	Candidate *index.Package
	Installed *index.Package
	Chain     BlockingChain
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("solver: %s %s conflicts with installed %s %s (blocking chain: %s)",
		e.Candidate.Name, e.Candidate.Version, e.Installed.Name, e.Installed.Version, e.Chain)
}

// EssentialRemovalError reports an attempt to remove an Essential package
// without an explicit force flag (spec §4.5 step 6).
type EssentialRemovalError struct {
	Name string
}

func (e *EssentialRemovalError) Error() string {
	return fmt.Sprintf("solver: %q is essential; removal requires ForceRemovalOfEssential", e.Name)
}

// UnknownGoalError reports a goal naming an abstract package with no
// registered providers at all.
type UnknownGoalError struct {
	Name string
}

func (e *UnknownGoalError) Error() string {
	return fmt.Sprintf("solver: unknown package %q", e.Name)
}
