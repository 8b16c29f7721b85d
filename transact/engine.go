package transact

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/depexpr"
	"github.com/opkg-project/opkg/fileowner"
	"github.com/opkg-project/opkg/index"
	"github.com/opkg-project/opkg/solver"
	"github.com/opkg-project/opkg/status"
)

// Unpacker lays a package's payload onto disk and reports the paths it
// created, so the engine can hand them to fileowner and the .list file
// without itself knowing anything about archive formats (spec §4.6 step 1
// is deliberately left to the caller: opkg's original unpacks an ar/tar
// stream, which is out of this package's scope).
type Unpacker interface {
	Unpack(ctx context.Context, pkg *index.Package, root string) ([]fileowner.Entry, error)
}

// Engine drives packages across the state machine of spec §4.6, persisting
// the status file atomically after every mutation so a crash leaves a
// parseable, resumable database.
type Engine struct {
	Index      *index.Index
	Files      *fileowner.Index
	Scripts    ScriptRunner
	Unpacker   Unpacker
	StatusPath string
	ListDir    string
	Options    Options

	configured map[string]bool
}

// NewEngine wires together an Engine from its collaborators.
func NewEngine(idx *index.Index, files *fileowner.Index, scripts ScriptRunner, unpacker Unpacker, statusPath, listDir string, opts Options) *Engine {
	return &Engine{
		Index:      idx,
		Files:      files,
		Scripts:    scripts,
		Unpacker:   unpacker,
		StatusPath: statusPath,
		ListDir:    listDir,
		Options:    opts,
		configured: make(map[string]bool),
	}
}

// Execute runs plan's actions in order, persisting the status database
// after every state transition (spec §4.6, §5 ordering guarantees).
func (e *Engine) Execute(ctx context.Context, plan solver.Plan) error {
	if e.configured == nil {
		e.configured = make(map[string]bool)
	}
	for _, act := range plan {
		var err error
		switch act.Kind {
		case solver.Install:
			err = e.unpack(ctx, act.Package)
			if err == nil && e.Options.ConfigureOnUnpack {
				err = e.configure(ctx, act.Package)
			}
		case solver.Configure:
			if !e.configured[act.Package.Name] {
				err = e.configure(ctx, act.Package)
			}
		case solver.Remove:
			if isEssential(act.Package) && !e.Options.Force.ForceRemovalOfEssential {
				err = &EssentialRemovalError{Package: act.Package.Name}
			} else {
				err = e.remove(ctx, act.Package, false)
			}
		case solver.Purge:
			err = e.remove(ctx, act.Package, true)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isEssential(pkg *index.Package) bool {
	return pkg.Priority == "required" || pkg.Tags != nil && containsTag(pkg.Tags, "essential")
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// unpack lays the package's files onto disk, claims them in the
// file-ownership index, writes the package's .list file, and moves the
// package to StatusUnpacked (spec §4.6 step 1-2). It persists
// StatusHalfInstalled before touching the filesystem, so a crash mid-unpack
// leaves a status the next ResumeIncomplete can recognize rather than a
// stale "installed"/"not-installed" record (spec §4.6 crash-safety).
func (e *Engine) unpack(ctx context.Context, pkg *index.Package) error {
	root := e.Options.rewrite("/")

	pkg.StateStatus = index.StatusHalfInstalled
	pkg.StateWant = index.WantInstall
	if err := e.persistStatus(); err != nil {
		return err
	}

	entries, err := e.Unpacker.Unpack(ctx, pkg, root)
	if err != nil {
		return errors.Wrapf(err, "transact: unpacking %s", pkg.Name)
	}

	paths := make([]string, 0, len(entries))
	entryByPath := make(map[string]fileowner.Entry, len(entries))
	for _, ent := range entries {
		path := e.Options.rewrite(ent.Path)
		replaces := replacesOwner(pkg, e.Files.Owner, path)
		if err := e.Files.Claim(path, pkg.Name, ent.Mode, ent.LinkTarget, replaces); err != nil {
			return err
		}
		paths = append(paths, path)
		entryByPath[path] = ent
	}

	if e.ListDir != "" {
		listPath := filepath.Join(e.ListDir, pkg.Name+".list")
		if err := e.writeListFile(listPath, paths, entryByPath); err != nil {
			return err
		}
	}

	pkg.StateStatus = index.StatusUnpacked
	pkg.StateWant = index.WantInstall
	return e.persistStatus()
}

func replacesOwner(pkg *index.Package, owner func(string) (string, bool), path string) bool {
	existing, ok := owner(path)
	if !ok || existing == pkg.Name {
		return true
	}
	for _, cd := range pkg.Depends {
		if cd.Kind != depexpr.Replace {
			continue
		}
		for _, poss := range cd.Possibilities {
			if poss.Name == existing {
				return true
			}
		}
	}
	return false
}

// configure runs postinst and advances the package to StatusInstalled on
// success, or StatusPostInstFailed (sticky until manual recovery) on
// failure (spec §4.6 step 3).
func (e *Engine) configure(ctx context.Context, pkg *index.Package) error {
	root := e.Options.rewrite("/")
	pkg.StateStatus = index.StatusHalfConfigured
	if err := e.persistStatus(); err != nil {
		return err
	}

	if err := e.Scripts.Run(ctx, pkg.Name, "postinst", []string{"configure"}, root); err != nil {
		pkg.StateStatus = index.StatusPostInstFailed
		_ = e.persistStatus()
		return err
	}

	pkg.StateStatus = index.StatusInstalled
	e.configured[pkg.Name] = true
	return e.persistStatus()
}

// remove runs prerm/postrm, releases the package's file ownership (keeping
// conffiles on a plain remove, purging the whole list) and advances the
// package to StatusConfigFiles or StatusNotInstalled (spec §4.6 "remove"
// and "purge" transitions). StatusHalfInstalled is persisted before the
// script runs, matching configure's two-phase write so a crash during
// prerm/postrm leaves a status ResumeIncomplete can recognize (spec §4.6
// crash-safety).
func (e *Engine) remove(ctx context.Context, pkg *index.Package, purge bool) error {
	root := e.Options.rewrite("/")
	script := "prerm"
	action := "remove"
	if purge {
		action = "purge"
	}

	pkg.StateStatus = index.StatusHalfInstalled
	if err := e.persistStatus(); err != nil {
		return err
	}

	if err := e.Scripts.Run(ctx, pkg.Name, script, []string{action}, root); err != nil {
		pkg.StateStatus = index.StatusRemovalFailed
		_ = e.persistStatus()
		return err
	}

	e.Files.Release(pkg.Name)

	if err := e.Scripts.Run(ctx, pkg.Name, "postrm", []string{action}, root); err != nil {
		pkg.StateStatus = index.StatusRemovalFailed
		_ = e.persistStatus()
		return err
	}

	if purge {
		pkg.Conffiles = nil
		pkg.StateStatus = index.StatusNotInstalled
		pkg.StateWant = index.WantPurge
	} else {
		if len(pkg.Conffiles) > 0 {
			pkg.StateStatus = index.StatusConfigFiles
		} else {
			pkg.StateStatus = index.StatusNotInstalled
		}
		pkg.StateWant = index.WantDeinstall
	}
	return e.persistStatus()
}

// ResumeIncomplete inspects every package for a state left mid-transition
// by a prior crash and nudges it forward: half-installed packages are
// flagged reinstreq (the payload may be incomplete, a fresh unpack is
// required), half-configured packages get postinst re-run, and
// post-inst-failed stays sticky until a human intervenes (spec §4.6
// "resuming after a crash").
func (e *Engine) ResumeIncomplete(ctx context.Context) error {
	for _, pkg := range e.Index.AllPackages() {
		switch pkg.StateStatus {
		case index.StatusHalfInstalled:
			pkg.StateFlag |= index.FlagReinstreq
			if err := e.persistStatus(); err != nil {
				return err
			}
		case index.StatusHalfConfigured:
			if err := e.configure(ctx, pkg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) persistStatus() error {
	return status.WriteFile(e.StatusPath, e.Index.AllPackages())
}

func (e *Engine) writeListFile(path string, paths []string, entries map[string]fileowner.Entry) error {
	f, err := createTemp(path)
	if err != nil {
		return err
	}
	defer f.cleanup()

	if err := fileowner.WriteList(f.file, paths, entries); err != nil {
		return err
	}
	return f.commit()
}
