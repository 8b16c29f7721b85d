package verify_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opkg-project/opkg/index"
	"github.com/opkg-project/opkg/verify"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pkg.ipk")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func sha256Of(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestCheckSucceedsWithMatchingSizeAndChecksum(t *testing.T) {
	content := "package payload"
	path := writeTempFile(t, content)
	pkg := &index.Package{Name: "foo", DownloadSize: int64(len(content)), SHA256Sum: sha256Of(content)}

	err := verify.Check(context.Background(), pkg, path, "", verify.Options{})
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "file should survive a successful check")
}

func TestCheckFailsOnSizeMismatchAndDeletesFile(t *testing.T) {
	path := writeTempFile(t, "short")
	pkg := &index.Package{Name: "foo", DownloadSize: 999, SHA256Sum: sha256Of("short")}

	err := verify.Check(context.Background(), pkg, path, "", verify.Options{})
	require.Error(t, err)
	var verr *verify.Error
	require.ErrorAs(t, err, &verr)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckFailsOnChecksumMismatch(t *testing.T) {
	content := "package payload"
	path := writeTempFile(t, content)
	pkg := &index.Package{Name: "foo", DownloadSize: int64(len(content)), SHA256Sum: sha256Of("different")}

	err := verify.Check(context.Background(), pkg, path, "", verify.Options{})
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestForceChecksumSkipsMissingChecksum(t *testing.T) {
	content := "package payload"
	path := writeTempFile(t, content)
	pkg := &index.Package{Name: "foo", DownloadSize: int64(len(content))}

	err := verify.Check(context.Background(), pkg, path, "", verify.Options{ForceChecksum: true})
	require.NoError(t, err)
}

func TestForceChecksumPreservesFileOnFailure(t *testing.T) {
	content := "package payload"
	path := writeTempFile(t, content)
	pkg := &index.Package{Name: "foo", DownloadSize: 1, SHA256Sum: sha256Of(content)}

	err := verify.Check(context.Background(), pkg, path, "", verify.Options{ForceChecksum: true})
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "force-checksum should keep the file around for inspection")
}

type stubSignatureBackend struct {
	err error
}

func (s stubSignatureBackend) Verify(_ context.Context, _, _ string) error { return s.err }

func TestCheckRunsSignatureVerificationWhenEnabled(t *testing.T) {
	content := "package payload"
	path := writeTempFile(t, content)
	pkg := &index.Package{Name: "foo", DownloadSize: int64(len(content)), SHA256Sum: sha256Of(content)}

	err := verify.Check(context.Background(), pkg, path, path+".sig", verify.Options{
		CheckSignatures: true,
		Signatures:      stubSignatureBackend{err: assert.AnError},
	})
	require.Error(t, err)
}
