package depexpr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opkg-project/opkg/depexpr"
	"github.com/opkg-project/opkg/version"
)

func TestParseFieldSimple(t *testing.T) {
	cds, err := depexpr.ParseField(depexpr.Depend, "libc6 (>= 2.17), libfoo")
	require.NoError(t, err)
	require.Len(t, cds, 2)

	assert.Equal(t, depexpr.Depend, cds[0].Kind)
	require.Len(t, cds[0].Possibilities, 1)
	assert.Equal(t, "libc6", cds[0].Possibilities[0].Name)
	assert.Equal(t, version.GE, cds[0].Possibilities[0].Op)
	assert.Equal(t, version.MustParse("2.17"), cds[0].Possibilities[0].Ver)

	assert.Equal(t, "libfoo", cds[1].Possibilities[0].Name)
	assert.Equal(t, version.None, cds[1].Possibilities[0].Op)
}

func TestParseFieldDisjunction(t *testing.T) {
	cds, err := depexpr.ParseField(depexpr.Depend, "libp | libq (<< 3.0)")
	require.NoError(t, err)
	require.Len(t, cds, 1)
	require.Len(t, cds[0].Possibilities, 2)
	assert.Equal(t, "libp", cds[0].Possibilities[0].Name)
	assert.Equal(t, "libq", cds[0].Possibilities[1].Name)
	assert.Equal(t, version.LT, cds[0].Possibilities[1].Op)
}

func TestParseFieldAliasOperators(t *testing.T) {
	cds, err := depexpr.ParseField(depexpr.Depend, "foo (< 2.0)")
	require.NoError(t, err)
	assert.Equal(t, version.LE, cds[0].Possibilities[0].Op)
}

func TestParseFieldEmpty(t *testing.T) {
	cds, err := depexpr.ParseField(depexpr.Depend, "")
	require.NoError(t, err)
	assert.Nil(t, cds)
}

func TestPossibilitySatisfies(t *testing.T) {
	p := depexpr.Possibility{Name: "libfoo", Op: version.GE, Ver: version.MustParse("1.2")}
	assert.True(t, p.Satisfies("libfoo", version.MustParse("1.2")))
	assert.True(t, p.Satisfies("libfoo", version.MustParse("1.3")))
	assert.False(t, p.Satisfies("libfoo", version.MustParse("1.1")))
	assert.False(t, p.Satisfies("libbar", version.MustParse("1.3")))
}
