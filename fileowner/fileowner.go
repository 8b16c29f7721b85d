// Package fileowner is the process-wide flat path→package index (spec
// §4.7): on unpack every extracted path is inserted, collisions with
// another installed package are conflicts unless covered by Replaces, and
// on remove the departing package's entries are erased. It is rebuilt from
// on-disk `.list` files at startup and persisted only via those lists.
package fileowner

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/index"
)

// Entry is one file-ownership record: mode bits, optional symlink target,
// and the owning package name.
type Entry struct {
	Path       string
	Mode       uint32
	LinkTarget string
	OwnerPkg   string
}

// Index is the flat path -> Entry map.
type Index struct {
	byPath map[string]Entry
}

// New returns an empty Index.
func New() *Index {
	return &Index{byPath: make(map[string]Entry)}
}

// Owner returns the package name owning path, if any.
func (idx *Index) Owner(path string) (string, bool) {
	e, ok := idx.byPath[path]
	if !ok {
		return "", false
	}
	return e.OwnerPkg, true
}

// ConflictError reports that path is already owned by another package and
// the incoming one does not replace it (spec §4.7).
type ConflictError struct {
	Path          string
	ExistingOwner string
	IncomingOwner string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("fileowner: %q already owned by %s, %s does not replace it", e.Path, e.ExistingOwner, e.IncomingOwner)
}

// Claim registers path as owned by owner. If path is already owned by a
// different package, it's a ConflictError unless replaces is true (the
// caller has already established a Replaces: relationship per spec §4.7).
func (idx *Index) Claim(path, owner string, mode uint32, linkTarget string, replaces bool) error {
	if existing, ok := idx.byPath[path]; ok && existing.OwnerPkg != owner {
		if !replaces {
			return &ConflictError{Path: path, ExistingOwner: existing.OwnerPkg, IncomingOwner: owner}
		}
	}
	idx.byPath[path] = Entry{Path: path, Mode: mode, LinkTarget: linkTarget, OwnerPkg: owner}
	return nil
}

// Release erases every entry owned by owner (spec §4.7 "On remove, entries
// owned by the departing package are erased").
func (idx *Index) Release(owner string) {
	for path, e := range idx.byPath {
		if e.OwnerPkg == owner {
			delete(idx.byPath, path)
		}
	}
}

// PathsFor returns every path currently owned by owner.
func (idx *Index) PathsFor(owner string) []string {
	var paths []string
	for path, e := range idx.byPath {
		if e.OwnerPkg == owner {
			paths = append(paths, path)
		}
	}
	return paths
}

// WriteList renders owner's file-list record lines in the `<pkg>.list`
// format: `path\tmode_octal[\tlink_target]\n` (spec §4.6, §6).
func WriteList(w io.Writer, paths []string, entries map[string]Entry) error {
	bw := bufio.NewWriter(w)
	for _, path := range paths {
		e := entries[path]
		line := fmt.Sprintf("%s\t%04o", path, e.Mode)
		if e.LinkTarget != "" {
			line += "\t" + e.LinkTarget
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return errors.Wrap(err, "fileowner: writing list")
		}
	}
	return bw.Flush()
}

// LoadList parses a `<pkg>.list` file's contents, claiming each path for
// owner. Used to rebuild the index from on-disk lists at startup (spec
// §4.7).
func (idx *Index) LoadList(r io.Reader, owner string) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		mode, err := strconv.ParseUint(fields[1], 8, 32)
		if err != nil {
			return errors.Wrapf(err, "fileowner: parsing mode for %q", fields[0])
		}
		var link string
		if len(fields) > 2 {
			link = fields[2]
		}
		idx.byPath[fields[0]] = Entry{Path: fields[0], Mode: uint32(mode), LinkTarget: link, OwnerPkg: owner}
	}
	return sc.Err()
}

// Soundness verifies the ownership-soundness invariant from spec §8: for
// every path idx maps to pkg, pkg's on-disk file list (as loaded into
// listedPaths) must contain that path.
func Soundness(idx *Index, pkg *index.Package, listedPaths map[string]bool) error {
	for _, path := range idx.PathsFor(pkg.Name) {
		if !listedPaths[path] {
			return errors.Errorf("fileowner: %q is owned by %s but absent from its .list file", path, pkg.Name)
		}
	}
	return nil
}
