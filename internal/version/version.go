// Package version parses, orders and range-matches the versions that addons
// declare in their manifests.
//
// Semantic versions follow MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] and are a
// thin wrapper around github.com/Masterminds/semver/v3 in strict mode. Date
// versions (YYYY-MM-DD) are kept as a separate type because their validity
// and ordering follow the calendar.
package version

import (
	"errors"
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

var (
	// ErrInvalidFormat is returned when a version or date-version string does
	// not match the grammar.
	ErrInvalidFormat = errors.New("invalid version format")
	// ErrInvalidConstraint is returned when a constraint uses an unknown
	// operator or carries a malformed version.
	ErrInvalidConstraint = errors.New("invalid version constraint")
)

// Version is a semantic version. The zero value is not a valid version;
// obtain one with Parse.
type Version struct {
	v *mm.Version
}

// Parse parses a strict MAJOR.MINOR.PATCH version with optional pre-release
// and build metadata. Two or four numeric components, non-digit characters in
// a numeric component, leading zeros and a "v" prefix are all rejected.
func Parse(raw string) (Version, error) {
	v, err := mm.StrictNewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, raw, err)
	}
	return Version{v: v}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level literals.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v was never successfully parsed.
func (v Version) IsZero() bool { return v.v == nil }

func (v Version) Major() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Major()
}

func (v Version) Minor() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Minor()
}

func (v Version) Patch() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Patch()
}

func (v Version) Prerelease() string {
	if v.v == nil {
		return ""
	}
	return v.v.Prerelease()
}

// Build returns the build metadata. It never takes part in ordering.
func (v Version) Build() string {
	if v.v == nil {
		return ""
	}
	return v.v.Metadata()
}

// String returns the version as it was originally written.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
//
// A release sorts after its pre-releases; pre-release identifiers are compared
// field by field, numeric fields numerically and below alphanumeric ones.
// An unparsed (zero) version sorts before every parsed one.
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// Equal reports whether v and o have the same precedence. Build metadata is
// ignored.
func (v Version) Equal(o Version) bool { return Compare(v, o) == 0 }

// LessThan reports whether v precedes o.
func (v Version) LessThan(o Version) bool { return Compare(v, o) < 0 }

// MaxSatisfying returns the highest version in candidates that satisfies the
// constraint. If several candidates are equal the first one wins.
func MaxSatisfying(constraint string, candidates []Version) (Version, bool, error) {
	r, err := ParseRange(constraint)
	if err != nil {
		return Version{}, false, err
	}
	var best Version
	found := false
	for _, candidate := range candidates {
		if !r.Check(candidate) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found, nil
}
