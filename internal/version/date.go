package version

import (
	"cmp"
	"fmt"
	"time"
)

// DateVersion is a calendar version written as YYYY-MM-DD.
type DateVersion struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a zero-padded YYYY-MM-DD date. The separator must be "-"
// and the day must exist in that month of that year, so 2024-02-29 is valid
// and 2023-02-29 is not.
func ParseDate(raw string) (DateVersion, error) {
	if len(raw) != len(time.DateOnly) || raw[4] != '-' || raw[7] != '-' {
		return DateVersion{}, fmt.Errorf("%w: %q: expected YYYY-MM-DD", ErrInvalidFormat, raw)
	}
	for i, r := range raw {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return DateVersion{}, fmt.Errorf("%w: %q: non-numeric field", ErrInvalidFormat, raw)
		}
	}
	// time.Parse rejects months outside 1-12 and days past the end of the month.
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return DateVersion{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, raw, err)
	}
	return DateVersion{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(raw string) DateVersion {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d DateVersion) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// CompareDates orders dates chronologically: year, then month, then day.
func CompareDates(a, b DateVersion) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Month, b.Month); c != 0 {
		return c
	}
	return cmp.Compare(a.Day, b.Day)
}

func (d DateVersion) Equal(o DateVersion) bool  { return CompareDates(d, o) == 0 }
func (d DateVersion) Before(o DateVersion) bool { return CompareDates(d, o) < 0 }

// CheckDateVersion reports whether actual satisfies the constraint. Only the
// relational operators and exact match are meaningful for dates; caret and
// tilde are rejected with ErrInvalidConstraint.
func CheckDateVersion(actual DateVersion, constraint string) (bool, error) {
	parts, err := comparators(constraint)
	if err != nil {
		return false, err
	}
	ok := true
	for _, p := range parts {
		op, rest := splitOperator(p)
		if op == OpCaret || op == OpTilde {
			return false, fmt.Errorf("%w: %q: operator %q does not apply to dates", ErrInvalidConstraint, p, op)
		}
		target, err := ParseDate(rest)
		if err != nil {
			return false, fmt.Errorf("%w: %q: %v", ErrInvalidConstraint, p, err)
		}
		c := CompareDates(actual, target)
		switch op {
		case OpGTE:
			ok = ok && c >= 0
		case OpLTE:
			ok = ok && c <= 0
		case OpGT:
			ok = ok && c > 0
		case OpLT:
			ok = ok && c < 0
		case OpEQ:
			ok = ok && c == 0
		}
	}
	return ok, nil
}

// LooksLikeDate reports whether raw has the YYYY-MM-DD shape, valid or not.
// Manifests use it to pick between ParseDate and Parse.
func LooksLikeDate(raw string) bool {
	return len(raw) == len(time.DateOnly) && raw[4] == '-' && raw[7] == '-'
}
