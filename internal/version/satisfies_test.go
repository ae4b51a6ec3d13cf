package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name       string
		actual     string
		constraint string
		want       bool
	}{
		{"empty constraint", "1.0.0", "", true},
		{"wildcard", "0.0.1", "*", true},
		{"semver caret", "1.2.3", "^1.0.0", true},
		{"semver caret miss", "1.2.3", "^2.0.0", false},
		{"semver range", "1.5.0", ">=1.0.0 <2.0.0", true},
		{"date at or after", "2024-08-15", ">=2024-01-01", true},
		{"date before", "2023-12-31", ">=2024-01-01", false},
		{"date exact", "2024-02-29", "2024-02-29", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Satisfies(tt.actual, tt.constraint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSatisfies_Errors(t *testing.T) {
	_, err := Satisfies("1.2", "^1.0.0")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Satisfies("2024-13-01", ">=2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Satisfies("1.2.3", "!1.0.0")
	assert.ErrorIs(t, err, ErrInvalidConstraint)

	_, err = Satisfies("2024-01-01", "^2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidConstraint)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("1.0.0"))
	assert.NoError(t, Validate("2024-02-29"))
	assert.ErrorIs(t, Validate("2023-02-29"), ErrInvalidFormat)
	assert.ErrorIs(t, Validate("1.0"), ErrInvalidFormat)
}

func TestValidateConstraint(t *testing.T) {
	for _, ok := range []string{"", "*", "^1.0.0", ">= 1.0.0, < 2.0.0", ">=2024-01-01", "<2025-01-01 >2024-01-01"} {
		assert.NoError(t, ValidateConstraint(ok), ok)
	}
	for _, bad := range []string{"^1.0", "=>1.0.0", "~2024-01-01", ">=2024-13-01"} {
		assert.ErrorIs(t, ValidateConstraint(bad), ErrInvalidConstraint, bad)
	}
}
