package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opkg-project/opkg/version"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    version.Version
		wantErr bool
	}{
		{
			name: "simple",
			in:   "1.2.3",
			want: version.Version{Upstream: "1.2.3"},
		},
		{
			name: "with revision",
			in:   "1.2.3-4",
			want: version.Version{Upstream: "1.2.3", Revision: "4"},
		},
		{
			name: "with epoch",
			in:   "2:1.2.3-4",
			want: version.Version{Epoch: 2, Upstream: "1.2.3", Revision: "4"},
		},
		{
			name: "tilde prerelease",
			in:   "1.0~rc1",
			want: version.Version{Upstream: "1.0~rc1"},
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
		{
			name:    "does not start with digit",
			in:      "a1.0",
			wantErr: true,
		},
		{
			name:    "embedded whitespace",
			in:      "1.0 rc1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := version.Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareTotality(t *testing.T) {
	vs := []string{"0.9", "1.0~~", "1.0~~a", "1.0~", "1.0", "1.0a", "1.0+b1", "1.1"}
	parsed := make([]version.Version, len(vs))
	for i, s := range vs {
		parsed[i] = version.MustParse(s)
	}

	for i := range parsed {
		for j := range parsed {
			a, b := parsed[i], parsed[j]
			got := version.Compare(a, b)
			inverse := version.Compare(b, a)
			if got < 0 {
				assert.Greater(t, inverse, 0, "%s vs %s not antisymmetric", vs[i], vs[j])
			} else if got > 0 {
				assert.Less(t, inverse, 0, "%s vs %s not antisymmetric", vs[i], vs[j])
			} else {
				assert.Equal(t, 0, inverse, "%s vs %s not antisymmetric", vs[i], vs[j])
			}
		}
	}

	for i := 0; i < len(parsed)-1; i++ {
		assert.True(t, version.Less(parsed[i], parsed[i+1]), "%s should sort before %s", vs[i], vs[i+1])
	}
}

func TestTildeSemantics(t *testing.T) {
	assert.True(t, version.Less(version.MustParse("1.0~rc1"), version.MustParse("1.0")))
	assert.True(t, version.Less(version.MustParse("1.0~~"), version.MustParse("1.0~")))
	assert.True(t, version.Less(version.MustParse("1.0"), version.MustParse("1.0a")))
}

func TestEpochDominates(t *testing.T) {
	assert.True(t, version.Less(version.MustParse("1:0.1"), version.MustParse("2:0.0")))
	assert.True(t, version.Less(version.MustParse("0.9"), version.MustParse("1:0.1")))
}

func TestRoundTripString(t *testing.T) {
	for _, s := range []string{"1.2.3", "1.2.3-4", "2:1.2.3-4", "1.0~rc1-1"} {
		v := version.MustParse(s)
		assert.Equal(t, s, v.String())
	}
}

func TestParseOp(t *testing.T) {
	tests := []struct {
		in      string
		wantOp  version.Op
		wantRst string
	}{
		{"<< 1.2", version.LT, "1.2"},
		{"<=1.2", version.LE, "1.2"},
		{"<1.2", version.LE, "1.2"},
		{"= 1.2", version.EQ, "1.2"},
		{">=1.2", version.GE, "1.2"},
		{">1.2", version.GE, "1.2"},
		{">> 1.2", version.GT, "1.2"},
	}

	for _, tt := range tests {
		op, rest, err := version.ParseOp(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.wantOp, op)
		assert.Equal(t, tt.wantRst, rest)
	}
}

func TestSatisfied(t *testing.T) {
	have := version.MustParse("1.2-1")
	assert.True(t, version.Satisfied(version.None, have, version.MustParse("9.9")))
	assert.True(t, version.Satisfied(version.GE, have, version.MustParse("1.0")))
	assert.False(t, version.Satisfied(version.GT, have, version.MustParse("1.2-1")))
	assert.True(t, version.Satisfied(version.LE, have, version.MustParse("1.2-1")))
}
