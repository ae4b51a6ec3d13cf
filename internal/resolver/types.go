package resolver

import (
	"slices"

	"github.com/specialistvlad/addongraph/internal/dag"
	"github.com/specialistvlad/addongraph/internal/manifest"
)

// Kind classifies a Diagnostic.
type Kind string

const (
	// UnresolvedDependency: a dependency name was never declared by any
	// manifest. The dependent is still ordered.
	UnresolvedDependency Kind = "UnresolvedDependency"
	// CyclicDependency: the node lies on a dependency cycle.
	CyclicDependency Kind = "CyclicDependency"
	// BlockedByCycle: the node depends, directly or not, on a cyclic node.
	BlockedByCycle Kind = "BlockedByCycle"
	// ManifestError: a location could not be read or validated.
	ManifestError Kind = "ManifestError"
	// DuplicateComponent: a second manifest declared an existing name and
	// was ignored.
	DuplicateComponent Kind = "DuplicateComponent"
	// InvalidConstraint: a dependency constraint does not parse.
	InvalidConstraint Kind = "InvalidConstraint"
	// VersionMismatch: a declared version does not satisfy the constraint a
	// dependent puts on it.
	VersionMismatch Kind = "VersionMismatch"
	// PartialOrder: fewer nodes were ordered than were declared.
	PartialOrder Kind = "PartialOrder"
)

// Severity tells callers whether a Diagnostic should fail a batch.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalText renders the severity by name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic describes one problem found during resolution with enough
// context to point at the offending node or edge.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	// Node is the addon the diagnostic is about, when known.
	Node string `json:"node,omitempty"`
	// Dependency is the other end of the offending edge, when there is one.
	Dependency string `json:"dependency,omitempty"`
	Location   string `json:"location,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Result is the outcome of a resolution.
type Result struct {
	// Order lists declared addons with every dependency before its
	// dependents. Addons on or behind a cycle are left out.
	Order       []string     `json:"order"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	// Graph holds every declared addon and every referenced dependency.
	Graph *dag.Graph `json:"-"`
	// Manifests maps each declared addon to the manifest that won.
	Manifests map[string]*manifest.Manifest `json:"-"`
}

// HasErrors reports whether any diagnostic has SeverityError.
func (r *Result) HasErrors() bool {
	return slices.ContainsFunc(r.Diagnostics, func(d Diagnostic) bool {
		return d.Severity == SeverityError
	})
}

// Errors returns the diagnostics with SeverityError.
func (r *Result) Errors() []Diagnostic {
	return r.bySeverity(SeverityError)
}

// Warnings returns the diagnostics with SeverityWarning.
func (r *Result) Warnings() []Diagnostic {
	return r.bySeverity(SeverityWarning)
}

func (r *Result) bySeverity(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Filter returns the diagnostics of the given kind.
func (r *Result) Filter(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Excluded returns the declared addons missing from Order, in graph order.
func (r *Result) Excluded() []string {
	if r.Graph == nil {
		return nil
	}
	ordered := make(map[string]struct{}, len(r.Order))
	for _, id := range r.Order {
		ordered[id] = struct{}{}
	}
	var out []string
	for _, id := range r.Graph.Nodes() {
		if _, declared := r.Manifests[id]; !declared {
			continue
		}
		if _, ok := ordered[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
