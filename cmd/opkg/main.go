// Command opkg is a thin shell over the library: it wires flags, builds an
// opkgctx.Context, and dispatches to the solver/status packages.
// It is explicitly out of the core per spec.md §1 — it exists only so the
// module is runnable end to end (SPEC_FULL §3).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/opkg-project/opkg/destination"
	"github.com/opkg-project/opkg/index"
	"github.com/opkg-project/opkg/opkgctx"
	"github.com/opkg-project/opkg/solver"
	"github.com/opkg-project/opkg/status"
)

const defaultHelp = `opkg is a lightweight package manager.

Usage:

  opkg <command> [options]

The commands are:

  install      resolve and print an install plan for the named packages
  remove       resolve and print a removal plan for the named packages
  status       print the destination's installed-package status file
`

func main() {
	os.Exit(int(run(os.Args)))
}

func run(args []string) ExitCode {
	cmd := ""
	if len(args) > 1 {
		cmd = args[1]
	}

	ctx := opkgctx.New()
	ctx.Destination = destination.Destination{
		Name:    "root",
		Root:    "/",
		InfoDir: "/var/lib/opkg/info",
	}

	switch cmd {
	case "", "help", "--help", "-h":
		fmt.Print(defaultHelp)
		return ExitSuccess
	case "status":
		return runStatus(ctx, args[2:])
	case "install":
		return runInstall(ctx, args[2:])
	case "remove":
		return runRemove(ctx, args[2:])
	default:
		fmt.Fprintf(os.Stderr, "opkg: unknown command %q\n", cmd)
		return ExitGenericFailure
	}
}

func runStatus(ctx *opkgctx.Context, args []string) ExitCode {
	flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return reportParseErr(err)
	}

	pkgs, errs, err := status.ReadFile(ctx.Destination.StatusPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitGenericFailure
	}
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, "opkg: status:", e)
	}
	os.Stdout.Write(status.Render(pkgs))
	return ExitSuccess
}

func runInstall(ctx *opkgctx.Context, args []string) ExitCode {
	flagSet := pflag.NewFlagSet("install", pflag.ContinueOnError)
	addRecommends := flagSet.Bool("add-recommends", false, "also satisfy Recommends relations")
	configureOnUnpack := flagSet.Bool("configure-on-unpack", false, "run postinst immediately after each unpack")
	if err := flagSet.Parse(args); err != nil {
		return reportParseErr(err)
	}
	if flagSet.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "opkg install: no packages named")
		return ExitGenericFailure
	}

	ctx.SolverPolicy.AddRecommends = *addRecommends
	ctx.TransactOptions.ConfigureOnUnpack = *configureOnUnpack

	idx := index.New()
	world := &solver.World{Index: idx, Installed: map[string]*index.Package{}, Essential: map[string]bool{}}

	var goals []solver.Goal
	for _, name := range flagSet.Args() {
		goals = append(goals, solver.Goal{Kind: solver.GoalInstall, Name: name})
	}

	plan, err := solver.Solve(world, goals, ctx.SolverPolicy, solver.Params{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "opkg install:", err)
		return ExitDependencyUnresolvable
	}

	for _, act := range plan {
		fmt.Printf("%s %s %s\n", act.Kind, act.Package.Name, act.Package.Version)
	}
	return ExitSuccess
}

func runRemove(ctx *opkgctx.Context, args []string) ExitCode {
	flagSet := pflag.NewFlagSet("remove", pflag.ContinueOnError)
	force := flagSet.Bool("force-removal-of-essential-packages", false, "allow removing Essential packages")
	if err := flagSet.Parse(args); err != nil {
		return reportParseErr(err)
	}
	if flagSet.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "opkg remove: no packages named")
		return ExitGenericFailure
	}

	ctx.SolverPolicy.ForceRemovalOfEssential = *force
	ctx.TransactOptions.Force.ForceRemovalOfEssential = *force

	idx := index.New()
	world := &solver.World{Index: idx, Installed: map[string]*index.Package{}, Essential: map[string]bool{}}

	var goals []solver.Goal
	for _, name := range flagSet.Args() {
		goals = append(goals, solver.Goal{Kind: solver.GoalRemove, Name: name})
	}

	plan, err := solver.Solve(world, goals, ctx.SolverPolicy, solver.Params{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "opkg remove:", err)
		return ExitDependencyUnresolvable
	}

	for _, act := range plan {
		fmt.Printf("%s %s %s\n", act.Kind, act.Package.Name, act.Package.Version)
	}
	return ExitSuccess
}

func reportParseErr(err error) ExitCode {
	if err == pflag.ErrHelp {
		return ExitSuccess
	}
	fmt.Fprintln(os.Stderr, err)
	return ExitGenericFailure
}
