package version

import (
	"fmt"
	"strings"
)

// Operator is the comparison part of a constraint.
type Operator string

const (
	OpCaret Operator = "^"
	OpTilde Operator = "~"
	OpGTE   Operator = ">="
	OpLTE   Operator = "<="
	OpGT    Operator = ">"
	OpLT    Operator = "<"
	OpEQ    Operator = "="
)

// Two-character operators must be tried before their one-character prefixes.
var operators = []Operator{OpGTE, OpLTE, OpCaret, OpTilde, OpGT, OpLT, OpEQ}

// Constraint is a single comparator such as "^1.2.0" or ">=2.0.0". A bare
// version is stored with OpEQ.
type Constraint struct {
	Op     Operator
	Target Version
}

// Range is a conjunction of constraints; a version matches when every
// constraint matches.
type Range []Constraint

// splitOperator separates a leading operator from the rest of a comparator.
// A comparator without an operator yields OpEQ.
func splitOperator(s string) (Operator, string) {
	for _, op := range operators {
		if strings.HasPrefix(s, string(op)) {
			return op, strings.TrimSpace(s[len(op):])
		}
	}
	return OpEQ, s
}

func isOperator(s string) bool {
	for _, op := range operators {
		if s == string(op) {
			return true
		}
	}
	return false
}

// comparators splits a constraint string on whitespace and commas, gluing a
// lone operator to the token that follows it (">= 1.0.0").
func comparators(raw string) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty constraint", ErrInvalidConstraint)
	}

	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if isOperator(f) {
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("%w: %q: operator %q has no version", ErrInvalidConstraint, raw, f)
			}
			i++
			f += fields[i]
		}
		out = append(out, f)
	}
	return out, nil
}

// ParseConstraint parses exactly one comparator.
func ParseConstraint(raw string) (Constraint, error) {
	parts, err := comparators(raw)
	if err != nil {
		return Constraint{}, err
	}
	if len(parts) != 1 {
		return Constraint{}, fmt.Errorf("%w: %q: expected a single comparator, got %d", ErrInvalidConstraint, raw, len(parts))
	}
	return parseComparator(parts[0])
}

func parseComparator(s string) (Constraint, error) {
	op, rest := splitOperator(s)
	if rest == "" {
		return Constraint{}, fmt.Errorf("%w: %q: missing version", ErrInvalidConstraint, s)
	}
	target, err := Parse(rest)
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: %q: %v", ErrInvalidConstraint, s, err)
	}
	return Constraint{Op: op, Target: target}, nil
}

// ParseRange parses one or more comparators separated by whitespace or commas.
func ParseRange(raw string) (Range, error) {
	parts, err := comparators(raw)
	if err != nil {
		return nil, err
	}
	r := make(Range, 0, len(parts))
	for _, p := range parts {
		c, err := parseComparator(p)
		if err != nil {
			return nil, err
		}
		r = append(r, c)
	}
	return r, nil
}

// Check reports whether v satisfies c.
//
// Caret keeps the major version and requires v >= target; tilde keeps major
// and minor and requires v >= target. The relational operators use Compare.
func (c Constraint) Check(v Version) bool {
	cmp := Compare(v, c.Target)
	switch c.Op {
	case OpCaret:
		return v.Major() == c.Target.Major() && cmp >= 0
	case OpTilde:
		return v.Major() == c.Target.Major() && v.Minor() == c.Target.Minor() && cmp >= 0
	case OpGTE:
		return cmp >= 0
	case OpLTE:
		return cmp <= 0
	case OpGT:
		return cmp > 0
	case OpLT:
		return cmp < 0
	case OpEQ:
		return cmp == 0
	}
	return false
}

func (c Constraint) String() string {
	return string(c.Op) + c.Target.String()
}

// Check reports whether v satisfies every constraint in r.
func (r Range) Check(v Version) bool {
	for _, c := range r {
		if !c.Check(v) {
			return false
		}
	}
	return len(r) > 0
}

func (r Range) String() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// CheckVersion reports whether actual satisfies the constraint string. A
// malformed constraint yields ErrInvalidConstraint.
func CheckVersion(actual Version, constraint string) (bool, error) {
	r, err := ParseRange(constraint)
	if err != nil {
		return false, err
	}
	return r.Check(actual), nil
}
