// Package verify runs the ordered gate spec §4.8 requires before a
// downloaded package file is handed to transact for unpacking: size, then
// checksum, then an optional detached-signature check. Any failure deletes
// the offending local file (and its signature) unless ForceChecksum is set.
package verify

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/index"
)

// Downloader fetches url into a local file and reports its path, letting
// verify.Check stay agnostic of HTTP/FTP/local-copy transport details
// (SPEC_FULL §5.8 names this interface so the out-of-scope fetch mechanism
// can be substituted in tests).
type Downloader interface {
	Download(ctx context.Context, url string) (localPath string, err error)
}

// SignatureBackend checks a detached signature sigPath against payload
// localPath. The default implementation (OpenPGPBackend, in signature.go) uses
// OpenPGP; tests substitute a stub.
type SignatureBackend interface {
	Verify(ctx context.Context, localPath, sigPath string) error
}

// Error reports which verification step failed, per spec §4.8's "size
// mismatch, checksum mismatch, signature mismatch, missing signature"
// error enumeration (spec §6 exit code 4 "verification failed").
type Error struct {
	Package string
	Reason  string
}

func (e *Error) Error() string {
	return "verify: " + e.Package + ": " + e.Reason
}

// Options carries the force-checksum override (spec §4.8 "fail unless
// force-checksum is set").
type Options struct {
	ForceChecksum   bool
	CheckSignatures bool
	Signatures      SignatureBackend
}

// Check runs the ordered gate against localPath for pkg: size, then
// SHA256-or-MD5, then an optional signature check. On any failure it
// deletes localPath (and sigPath, if it exists) unless opts.ForceChecksum
// is set, and returns an *Error.
func Check(ctx context.Context, pkg *index.Package, localPath, sigPath string, opts Options) error {
	if err := checkSize(pkg, localPath); err != nil {
		return failAndClean(pkg, localPath, sigPath, opts, err)
	}
	if err := checkChecksum(pkg, localPath, opts); err != nil {
		return failAndClean(pkg, localPath, sigPath, opts, err)
	}
	if opts.CheckSignatures {
		if opts.Signatures == nil {
			return failAndClean(pkg, localPath, sigPath, opts, errors.New("signature checking enabled but no backend configured"))
		}
		if err := opts.Signatures.Verify(ctx, localPath, sigPath); err != nil {
			return failAndClean(pkg, localPath, sigPath, opts, errors.Wrap(err, "signature mismatch"))
		}
	}
	return nil
}

func failAndClean(pkg *index.Package, localPath, sigPath string, opts Options, cause error) error {
	if !opts.ForceChecksum {
		os.Remove(localPath)
		if sigPath != "" {
			os.Remove(sigPath)
		}
	}
	return &Error{Package: pkg.Name, Reason: cause.Error()}
}

func checkSize(pkg *index.Package, localPath string) error {
	if pkg.DownloadSize == 0 {
		return nil
	}
	fi, err := os.Stat(localPath)
	if err != nil {
		return errors.Wrap(err, "size mismatch")
	}
	if fi.Size() != pkg.DownloadSize {
		return errors.Errorf("size mismatch: want %d, got %d", pkg.DownloadSize, fi.Size())
	}
	return nil
}

func checkChecksum(pkg *index.Package, localPath string, opts Options) error {
	switch {
	case pkg.SHA256Sum != "":
		return compareDigest(localPath, pkg.SHA256Sum, sha256.New())
	case pkg.MD5Sum != "":
		return compareDigest(localPath, pkg.MD5Sum, md5.New())
	case opts.ForceChecksum:
		return nil
	default:
		return errors.New("no known checksum and force-checksum is not set")
	}
}

func compareDigest(localPath, want string, h hash.Hash) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(err, "checksum mismatch")
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return errors.Wrap(err, "checksum mismatch")
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return errors.Errorf("checksum mismatch: want %s, got %s", want, got)
	}
	return nil
}
