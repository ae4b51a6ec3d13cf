package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTripsNumericComponents(t *testing.T) {
	tests := []struct {
		raw                 string
		major, minor, patch uint64
		pre, build          string
	}{
		{"0.0.0", 0, 0, 0, "", ""},
		{"1.2.3", 1, 2, 3, "", ""},
		{"10.20.30", 10, 20, 30, "", ""},
		{"1.2.3-alpha.1", 1, 2, 3, "alpha.1", ""},
		{"1.2.3+build.7", 1, 2, 3, "", "build.7"},
		{"1.2.3-rc.1+sha.abc", 1, 2, 3, "rc.1", "sha.abc"},
		{"18446744073709551615.0.1", 18446744073709551615, 0, 1, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.major, v.Major())
			assert.Equal(t, tt.minor, v.Minor())
			assert.Equal(t, tt.patch, v.Patch())
			assert.Equal(t, tt.pre, v.Prerelease())
			assert.Equal(t, tt.build, v.Build())
			assert.Equal(t, tt.raw, v.String())
		})
	}
}

func TestParse_RejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"1",
		"1.2",
		"1.2.3.4",
		"abc.def.ghi",
		"1.x.3",
		"1.2.3a",
		"-1.2.3",
		"1..3",
		"1.2.3.4-alpha",
		"v1.2.3",
		"01.2.3",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("1.2") })
}

func TestCompare_Ordering(t *testing.T) {
	ordered := []string{
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
		"1.2.3-alpha",
		"1.2.3-beta",
		"1.2.3",
		"2.0.0",
		"10.0.0",
	}
	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered); j++ {
			a, b := MustParse(ordered[i]), MustParse(ordered[j])
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			assert.Equal(t, want, Compare(a, b), "Compare(%s, %s)", ordered[i], ordered[j])
		}
	}
}

func TestCompare_SpecExamples(t *testing.T) {
	assert.True(t, MustParse("1.0.0").LessThan(MustParse("2.0.0")))
	assert.True(t, MustParse("1.2.3-alpha").LessThan(MustParse("1.2.3")))
	assert.True(t, MustParse("1.2.3-alpha").LessThan(MustParse("1.2.3-beta")))
	assert.True(t, MustParse("1.0.0-alpha").LessThan(MustParse("1.0.0-alpha.1")))
}

func TestEqual_IgnoresBuildMetadata(t *testing.T) {
	assert.True(t, MustParse("1.2.3+a").Equal(MustParse("1.2.3+b")))
	assert.True(t, MustParse("1.2.3-rc.1+a").Equal(MustParse("1.2.3-rc.1")))
	assert.False(t, MustParse("1.2.3-rc.1").Equal(MustParse("1.2.3")))
}

func TestCompare_ZeroValue(t *testing.T) {
	var zero Version
	assert.True(t, zero.IsZero())
	assert.Equal(t, 0, Compare(zero, Version{}))
	assert.Equal(t, -1, Compare(zero, MustParse("0.0.0")))
	assert.Equal(t, 1, Compare(MustParse("0.0.0"), zero))
	assert.Equal(t, "", zero.String())
}

func TestMaxSatisfying(t *testing.T) {
	candidates := []Version{
		MustParse("0.9.0"),
		MustParse("1.0.0"),
		MustParse("1.5.0"),
		MustParse("2.0.0"),
	}

	best, ok, err := MaxSatisfying(">=1.0.0 <2.0.0", candidates)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.5.0", best.String())

	_, ok, err = MaxSatisfying("^3.0.0", candidates)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = MaxSatisfying("??", candidates)
	assert.ErrorIs(t, err, ErrInvalidConstraint)
}
