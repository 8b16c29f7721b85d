package index_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opkg-project/opkg/control"
	"github.com/opkg-project/opkg/depexpr"
	"github.com/opkg-project/opkg/index"
)

func mustPackage(t *testing.T, src string) *index.Package {
	t.Helper()
	d := control.NewDecoder(strings.NewReader(src))
	rec, err := d.Next()
	require.NoError(t, err)
	pkg, err := index.FromRecord(*rec, false)
	require.NoError(t, err)
	return pkg
}

func TestFromRecordBasicFields(t *testing.T) {
	pkg := mustPackage(t, "Package: libfoo\nVersion: 1.2-3\nArchitecture: mips\nDepends: libc6 (>= 2.17)\nProvides: libfoo-abi\n")
	assert.Equal(t, "libfoo", pkg.Name)
	assert.Equal(t, "1.2-3", pkg.Version.String())
	require.Len(t, pkg.Depends, 1)
	assert.Equal(t, []string{"libfoo-abi"}, pkg.Provides)
}

func TestFromRecordMissingPackageIsError(t *testing.T) {
	_, err := index.FromRecord(control.Record{Fields: map[string]string{}}, false)
	assert.Error(t, err)
}

func TestIndexInsertRegistersSelfProvider(t *testing.T) {
	idx := index.New()
	pkg := mustPackage(t, "Package: libfoo\nVersion: 1.0-1\n")
	idx.Insert(pkg)

	ap, ok := idx.LookupAbstract("libfoo")
	require.True(t, ok)
	require.Len(t, ap.Providers, 1)
	assert.Same(t, pkg, ap.Providers[0])
}

func TestIndexInsertDeduplicatesByIdentity(t *testing.T) {
	idx := index.New()
	first := mustPackage(t, "Package: libfoo\nVersion: 1.0-1\nMaintainer: Alice\n")
	idx.Insert(first)

	second := mustPackage(t, "Package: libfoo\nVersion: 1.0-1\nMaintainer: Bob\nSection: libs\n")
	idx.Insert(second)

	pkgs := idx.Packages("libfoo")
	require.Len(t, pkgs, 1)
	assert.Equal(t, "Alice", pkgs[0].Maintainer, "existing non-empty scalar wins per the merge contract")
	assert.Equal(t, "libs", pkgs[0].Section, "existing empty scalar takes the incoming value")
}

func TestIndexPackagesSortedDescending(t *testing.T) {
	idx := index.New()
	idx.Insert(mustPackage(t, "Package: libfoo\nVersion: 1.0-1\n"))
	idx.Insert(mustPackage(t, "Package: libfoo\nVersion: 2.0-1\n"))
	idx.Insert(mustPackage(t, "Package: libfoo\nVersion: 1.5-1\n"))

	pkgs := idx.Packages("libfoo")
	require.Len(t, pkgs, 3)
	assert.Equal(t, "2.0-1", pkgs[0].Version.String())
	assert.Equal(t, "1.5-1", pkgs[1].Version.String())
	assert.Equal(t, "1.0-1", pkgs[2].Version.String())
}

func TestAbstractCreatesForwardReference(t *testing.T) {
	idx := index.New()
	ap := idx.Abstract("not-yet-provided")
	assert.Empty(t, ap.Providers)

	_, ok := idx.LookupAbstract("not-yet-provided")
	assert.True(t, ok)
}

func TestResolveDependenciesRegistersDependant(t *testing.T) {
	idx := index.New()
	pkg := mustPackage(t, "Package: app\nVersion: 1.0-1\nDepends: libfoo (>= 1.0)\n")
	idx.Insert(pkg)
	idx.ResolveDependencies(pkg)

	ap, ok := idx.LookupAbstract("libfoo")
	require.True(t, ok)
	require.Len(t, ap.Dependants, 1)
	assert.Same(t, pkg, ap.Dependants[0])
	assert.True(t, pkg.DependenciesChecked())
}

func TestResolveDependenciesIsIdempotent(t *testing.T) {
	idx := index.New()
	pkg := mustPackage(t, "Package: app\nVersion: 1.0-1\nDepends: libfoo\n")
	idx.Insert(pkg)
	idx.ResolveDependencies(pkg)
	idx.ResolveDependencies(pkg)

	ap, _ := idx.LookupAbstract("libfoo")
	assert.Len(t, ap.Dependants, 1)
}

func TestIndexInsertConflictsOnlyExistingDoesNotBlockIncomingDepends(t *testing.T) {
	idx := index.New()
	first := mustPackage(t, "Package: libfoo\nVersion: 1.0-1\nConflicts: oldfoo\nReplaces: oldfoo\n")
	idx.Insert(first)

	second := mustPackage(t, "Package: libfoo\nVersion: 1.0-1\nDepends: libc6 (>= 2.17)\n")
	idx.Insert(second)

	pkgs := idx.Packages("libfoo")
	require.Len(t, pkgs, 1)
	require.Len(t, pkgs[0].Depends, 1, "existing has no counted relations, so incoming's Depends array wins outright")
	assert.Equal(t, depexpr.Depend, pkgs[0].Depends[0].Kind)
}

func TestFromRecordPreservesUserFields(t *testing.T) {
	pkg := mustPackage(t, "Package: libfoo\nVersion: 1.0-1\nX-Custom: hello\n")
	assert.Empty(t, pkg.UserFields)

	d := control.NewDecoder(strings.NewReader("Package: libfoo\nVersion: 1.0-1\nX-Custom: hello\n"))
	rec, err := d.Next()
	require.NoError(t, err)
	pkg2, err := index.FromRecord(*rec, true)
	require.NoError(t, err)
	assert.Equal(t, "hello", pkg2.UserFields["X-Custom"])
}
