// Package opkgctx carries the process-wide state a CLI invocation builds
// once and threads through every call, replacing the global opkg_config
// the source relies on (spec.md §9 Design Note). Mirrors the teacher's own
// Ctx struct (context.go) in shape and purpose.
package opkgctx

import (
	"io"
	"os"

	"github.com/opkg-project/opkg/destination"
	"github.com/opkg-project/opkg/internal/tracelog"
	"github.com/opkg-project/opkg/solver"
	"github.com/opkg-project/opkg/transact"
	"github.com/opkg-project/opkg/verify"
)

// Context bundles a single invocation's resolved configuration and
// collaborators: which destination it targets, the force/configure
// policies the transaction engine should use, the solver policy, the
// verification options, and where diagnostics go.
type Context struct {
	Destination destination.Destination
	Registry    *destination.Registry

	TransactOptions transact.Options
	SolverPolicy    solver.Policy
	VerifyOptions   verify.Options

	Log *tracelog.Logger
}

// New builds a Context with sane defaults: diagnostics to stderr, an empty
// solver policy, and no force flags. Callers override fields after
// construction as CLI flags are parsed (SPEC_FULL §3 "never reach for a
// package-level global").
func New() *Context {
	return &Context{
		Registry: destination.NewRegistry(),
		Log:      tracelog.New(os.Stderr),
	}
}

// WithLogWriter returns a copy of ctx logging to w instead of its current
// writer, useful for tests that want to capture trace output.
func (ctx *Context) WithLogWriter(w io.Writer) *Context {
	clone := *ctx
	clone.Log = tracelog.New(w)
	return &clone
}
