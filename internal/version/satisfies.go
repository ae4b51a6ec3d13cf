package version

import "strings"

// Any is the constraint every version satisfies.
const Any = "*"

// Validate checks that raw is either a semantic version or a date version.
func Validate(raw string) error {
	if LooksLikeDate(raw) {
		_, err := ParseDate(raw)
		return err
	}
	_, err := Parse(raw)
	return err
}

// Satisfies checks a declared version string against a constraint, picking
// date or semantic comparison from the shape of actual. An empty constraint
// or Any matches everything.
func Satisfies(actual, constraint string) (bool, error) {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == Any {
		return true, nil
	}
	if LooksLikeDate(actual) {
		d, err := ParseDate(actual)
		if err != nil {
			return false, err
		}
		return CheckDateVersion(d, constraint)
	}
	v, err := Parse(actual)
	if err != nil {
		return false, err
	}
	return CheckVersion(v, constraint)
}

// ValidateConstraint checks a constraint string without evaluating it. Date
// targets are accepted as long as the operators apply to dates.
func ValidateConstraint(constraint string) error {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == Any {
		return nil
	}
	if _, err := ParseRange(constraint); err == nil {
		return nil
	} else if !constraintTargetsDate(constraint) {
		return err
	}
	_, err := CheckDateVersion(DateVersion{Year: 1, Month: 1, Day: 1}, constraint)
	return err
}

func constraintTargetsDate(constraint string) bool {
	parts, err := comparators(constraint)
	if err != nil || len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if _, rest := splitOperator(p); !LooksLikeDate(rest) {
			return false
		}
	}
	return true
}
