package status_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opkg-project/opkg/index"
	"github.com/opkg-project/opkg/status"
	"github.com/opkg-project/opkg/version"
)

func TestParseAndFormatLineRoundTrip(t *testing.T) {
	want, flag, st, err := status.ParseLine("install ok installed")
	require.NoError(t, err)
	assert.Equal(t, index.WantInstall, want)
	assert.Equal(t, index.StateFlag(0), flag)
	assert.Equal(t, index.StatusInstalled, st)
	assert.Equal(t, "install ok installed", status.FormatLine(want, flag, st))
}

func TestParseLineWithFlags(t *testing.T) {
	_, flag, _, err := status.ParseLine("install hold,reinstreq installed")
	require.NoError(t, err)
	assert.Equal(t, index.FlagHold|index.FlagReinstreq, flag)
}

func TestParseLineMalformed(t *testing.T) {
	_, _, _, err := status.ParseLine("install installed")
	assert.Error(t, err)
}

func TestReadAllRoundTripsAPackage(t *testing.T) {
	src := "Package: libfoo\nStatus: install ok installed\nVersion: 1.0-1\nArchitecture: mips\n\n"
	pkgs, errs := status.ReadAll(bytes.NewReader([]byte(src)))
	require.Empty(t, errs)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "libfoo", pkgs[0].Name)
	assert.Equal(t, index.WantInstall, pkgs[0].StateWant)
	assert.Equal(t, index.StatusInstalled, pkgs[0].StateStatus)
}

func TestRenderThenReadAllIsStable(t *testing.T) {
	pkg := &index.Package{
		Name:        "libfoo",
		Version:     version.MustParse("1.0-1"),
		StateWant:   index.WantInstall,
		StateStatus: index.StatusInstalled,
		Description: "short\nlonger line",
	}
	out := status.Render([]*index.Package{pkg})

	pkgs, errs := status.ReadAll(bytes.NewReader(out))
	require.Empty(t, errs)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "libfoo", pkgs[0].Name)
	assert.Equal(t, "1.0-1", pkgs[0].Version.String())
	assert.Equal(t, index.StatusInstalled, pkgs[0].StateStatus)
}

func TestRenderThenReadAllKeepsConffiles(t *testing.T) {
	pkg := &index.Package{
		Name:        "libfoo",
		Version:     version.MustParse("1.0-1"),
		StateWant:   index.WantInstall,
		StateStatus: index.StatusConfigFiles,
		Conffiles: []index.Conffile{
			{Path: "/etc/libfoo/foo.conf", MD5: "d41d8cd98f00b204e9800998ecf8427e"},
			{Path: "/etc/libfoo/bar.conf", MD5: "e99a18c428cb38d5f260853678922e03"},
		},
	}
	out := status.Render([]*index.Package{pkg})

	pkgs, errs := status.ReadAll(bytes.NewReader(out))
	require.Empty(t, errs)
	require.Len(t, pkgs, 1)
	require.Equal(t, pkg.Conffiles, pkgs[0].Conffiles)
}

func TestWriteFileThenReadFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")

	pkg := &index.Package{Name: "libfoo", Version: version.MustParse("2.0-1"), StateStatus: index.StatusInstalled}
	require.NoError(t, status.WriteFile(path, []*index.Package{pkg}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no leftover temp file after a successful write")

	pkgs, errs, err := status.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "libfoo", pkgs[0].Name)
}

func TestReadFileMissingIsNotAnError(t *testing.T) {
	pkgs, errs, err := status.ReadFile(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Empty(t, pkgs)
}
