package transact

import "fmt"

// ScriptError reports a maintainer script's non-zero exit, keyed by which
// phase failed so the caller can decide how to leave the package's state
// (spec §4.6 "a failed postinst leaves the package in post-inst-failed").
type ScriptError struct {
	Package string
	Phase   string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("transact: %s %s script failed: %s", e.Package, e.Phase, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// EssentialRemovalError reports a removal rejected because the package is
// Essential and ForceOptions.ForceRemovalOfEssential was not set (spec §4.5
// step 6, enforced again here as the engine's own last line of defense).
type EssentialRemovalError struct {
	Package string
}

func (e *EssentialRemovalError) Error() string {
	return fmt.Sprintf("transact: %s is essential; refusing to remove without force", e.Package)
}
