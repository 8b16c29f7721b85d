// Package transact drives a package across the install/remove state machine
// (spec §4.6): not-installed -> unpacked -> half-configured ->
// installed/config-files, persisting the status file atomically at every
// mutation so a crash at any point leaves a parseable, resumable database.
package transact

import "github.com/opkg-project/opkg/pathutil"

// ForceOptions mirrors dpkg's --force-* flag surface (SPEC_FULL §6), made
// into a first-class struct instead of scattered booleans.
type ForceOptions struct {
	// ForceChecksum records the force-checksum override (spec §4.8 "fail
	// unless force-checksum is set"). Engine does not read it and unpack
	// checks no checksum; the checksum gate is verify.Check, which takes
	// its own verify.Options.ForceChecksum.
	ForceChecksum bool
	// ForceRemovalOfEssential bypasses the Essential-package removal
	// protection (spec §4.5 step 6).
	ForceRemovalOfEssential bool
	// ForceDepends records the force-depends override. Neither Engine nor
	// the solver reads it; a failed dependency resolution is not bypassed.
	ForceDepends bool
}

// Options bundles the transaction engine's execution-strategy knobs.
type Options struct {
	Force ForceOptions
	// ConfigureOnUnpack runs each package's postinst immediately after its
	// own unpack, rather than waiting for every unpack in the plan to
	// finish first (spec §5 "Ordering guarantees").
	ConfigureOnUnpack bool
	// OfflineRoot stages every path under this prefix instead of the live
	// root (GLOSSARY "Offline root").
	OfflineRoot string
}

func (o Options) rewrite(path string) string {
	return pathutil.Rewrite(o.OfflineRoot, path)
}
