package destination

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// LockHeldError reports that another process already holds d's lock (spec.md
// §5 "Process-level exclusion" — exactly one transaction may run per
// destination at a time).
type LockHeldError struct {
	Destination string
}

func (e *LockHeldError) Error() string {
	return "destination: " + e.Destination + " is locked by another process"
}

// Lock is an acquired advisory lock on a destination's info directory,
// released via Unlock (always call it on every exit path, including
// signal-induced ones, per spec.md §5 "Scoped acquisition").
type Lock struct {
	path string
}

func lockPath(d Destination) string {
	return filepath.Join(d.InfoDir, ".opkg-lock")
}

// AcquireLock creates d's lock file exclusively, returning *LockHeldError
// if another process already holds it. There's no third-party file-locking
// library in the retrieval pack to ground this on; O_EXCL create-as-mutex
// is the standard portable idiom and needs no more than what os already
// provides, so this stays on stdlib rather than reaching for one.
func AcquireLock(d Destination) (*Lock, error) {
	if err := os.MkdirAll(d.InfoDir, 0755); err != nil {
		return nil, errors.Wrap(err, "destination: creating info dir")
	}
	path := lockPath(d)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &LockHeldError{Destination: d.Name}
		}
		return nil, errors.Wrap(err, "destination: acquiring lock")
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return nil, errors.Wrap(err, "destination: writing lock pid")
	}
	return &Lock{path: path}, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "destination: releasing lock")
	}
	return nil
}
