package transact

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// tempFile is a write-temp-fsync-rename helper shared by every file the
// engine persists besides the status database itself (spec §4.6 crash
// safety applies equally to .list files), adapted from the teacher's
// SafeWriter temp-then-rename pattern (txn_writer.go).
type tempFile struct {
	file *os.File
	tmp  string
	dest string
	done bool
}

func createTemp(dest string) (*tempFile, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "transact: creating %s", dir)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp.%d", filepath.Base(dest), rand.Int()))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "transact: creating temp file for %s", dest)
	}
	return &tempFile{file: f, tmp: tmp, dest: dest}, nil
}

// commit fsyncs, closes, and atomically renames the temp file over dest.
func (t *tempFile) commit() error {
	if err := t.file.Sync(); err != nil {
		return errors.Wrap(err, "transact: fsync temp file")
	}
	if err := t.file.Close(); err != nil {
		return errors.Wrap(err, "transact: closing temp file")
	}
	if err := os.Rename(t.tmp, t.dest); err != nil {
		return errors.Wrap(err, "transact: renaming temp file")
	}
	t.done = true
	return nil
}

// cleanup removes the temp file if commit never ran; a no-op after a
// successful commit.
func (t *tempFile) cleanup() {
	if !t.done {
		os.Remove(t.tmp)
	}
}
