package status

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/index"
)

// WriteFile serializes pkgs and atomically replaces path, following the
// crash-safety protocol of spec §4.6 steps 1-4: serialize to a `.tmp`
// sibling, fsync it, then rename over the canonical path. Adapted from the
// teacher's SafeWriter temp-file-then-rename pattern (txn_writer.go), cut
// down to a single file instead of a whole manifest/lock/vendor payload.
func WriteFile(path string, pkgs []*index.Package) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp.%d", filepath.Base(path), rand.Int()))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "status: creating temp file")
	}
	defer os.Remove(tmp) // no-op once the rename below succeeds

	if _, err := f.Write(Render(pkgs)); err != nil {
		f.Close()
		return errors.Wrap(err, "status: writing temp file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "status: fsync temp file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "status: closing temp file")
	}

	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "status: renaming temp file over canonical status file")
	}
	return nil
}

// ReadFile opens path and decodes its contents with ReadAll. A missing
// file is treated as an empty status database (first run), not an error.
func ReadFile(path string) ([]*index.Package, []error, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "status: opening status file")
	}
	defer f.Close()

	pkgs, errs := ReadAll(f)
	return pkgs, errs, nil
}
