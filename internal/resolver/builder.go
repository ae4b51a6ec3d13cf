package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/addongraph/internal/dag"
	"github.com/specialistvlad/addongraph/internal/manifest"
	"github.com/specialistvlad/addongraph/internal/version"
)

// builder accumulates the graph and diagnostics for one resolution.
type builder struct {
	graph    *dag.Graph
	declared map[string]*manifest.Manifest
	// decl keeps declaration order, which drives every later pass.
	decl  []*manifest.Manifest
	diags []Diagnostic
	order []string
}

func newBuilder(diags []Diagnostic) *builder {
	return &builder{
		graph:    dag.New(),
		declared: make(map[string]*manifest.Manifest),
		diags:    diags,
	}
}

func (b *builder) report(d Diagnostic) {
	b.diags = append(b.diags, d)
}

// declare adds one node per valid manifest. A later manifest reusing a name
// is reported and ignored.
func (b *builder) declare(manifests []*manifest.Manifest) {
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := m.Validate(); err != nil {
			b.report(Diagnostic{
				Kind:     ManifestError,
				Severity: SeverityError,
				Node:     m.Name,
				Location: m.Location,
				Message:  err.Error(),
				Err:      &manifest.Error{Location: m.Location, Err: err},
			})
			continue
		}
		if first, dup := b.declared[m.Name]; dup {
			b.report(Diagnostic{
				Kind:     DuplicateComponent,
				Severity: SeverityWarning,
				Node:     m.Name,
				Location: m.Location,
				Message:  fmt.Sprintf("addon %q is already declared at %s; ignoring this declaration", m.Name, first.Location),
			})
			continue
		}
		// Validate guarantees a non-empty name.
		_ = b.graph.AddNode(m.Name)
		b.declared[m.Name] = m
		b.decl = append(b.decl, m)
	}
}

// link adds a dependency edge for every declared dependency and checks its
// constraint against the dependency's declared version.
func (b *builder) link() {
	for _, m := range b.decl {
		for _, dep := range m.DependencyNames() {
			constraint := m.Dependencies[dep]
			_ = b.graph.AddDependency(m.Name, dep, constraint)

			if err := version.ValidateConstraint(constraint); err != nil {
				b.report(Diagnostic{
					Kind:       InvalidConstraint,
					Severity:   SeverityError,
					Node:       m.Name,
					Dependency: dep,
					Location:   m.Location,
					Message:    fmt.Sprintf("addon %q has an invalid constraint on %q: %v", m.Name, dep, err),
					Err:        err,
				})
				continue
			}

			target, ok := b.declared[dep]
			if !ok {
				b.report(Diagnostic{
					Kind:       UnresolvedDependency,
					Severity:   SeverityWarning,
					Node:       m.Name,
					Dependency: dep,
					Location:   m.Location,
					Message:    fmt.Sprintf("addon %q depends on %q, which is not declared", m.Name, dep),
				})
				continue
			}
			if target.Version == "" {
				continue
			}
			satisfied, err := version.Satisfies(target.Version, constraint)
			if err != nil || !satisfied {
				msg := fmt.Sprintf("addon %q requires %q %s, but %s is declared", m.Name, dep, constraint, target.Version)
				if err != nil {
					msg = fmt.Sprintf("%s: %v", msg, err)
				}
				b.report(Diagnostic{
					Kind:       VersionMismatch,
					Severity:   SeverityError,
					Node:       m.Name,
					Dependency: dep,
					Location:   m.Location,
					Message:    msg,
					Err:        err,
				})
			}
		}
	}
}

// sort runs Kahn's algorithm over the graph. Undeclared dependencies take
// part in the sort but are left out of the order; nodes whose dependency
// count never reaches zero are reported as cyclic or blocked.
func (b *builder) sort() {
	g := b.graph
	nodes := g.Nodes()
	remaining := g.InDegrees()

	queue := make([]string, 0, len(nodes))
	for _, id := range nodes {
		if remaining[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := make(map[string]bool, len(nodes))
	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		if _, ok := b.declared[id]; ok {
			order = append(order, id)
		}
		for _, dependent := range g.Dependents(id) {
			if visited[dependent] {
				continue
			}
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
	b.order = dedupe(order)

	var stuck []string
	for _, id := range nodes {
		if !visited[id] {
			stuck = append(stuck, id)
		}
	}
	b.reportStuck(stuck)

	if len(b.order) < len(b.declared) {
		b.report(Diagnostic{
			Kind:     PartialOrder,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("resolved %d of %d declared addons", len(b.order), len(b.declared)),
		})
	}
}

// reportStuck tells the nodes on a cycle apart from the ones merely waiting
// behind one.
func (b *builder) reportStuck(stuck []string) {
	g := b.graph
	cyclic := make(map[string]bool, len(stuck))
	for _, id := range stuck {
		if slices.Contains(g.AllDependencies(id), id) {
			cyclic[id] = true
		}
	}

	for _, id := range stuck {
		loc := ""
		if m, ok := b.declared[id]; ok {
			loc = m.Location
		}

		if cyclic[id] {
			path := shortestCycle(g, id)
			b.report(Diagnostic{
				Kind:       CyclicDependency,
				Severity:   SeverityError,
				Node:       id,
				Dependency: path[1],
				Location:   loc,
				Message:    fmt.Sprintf("addon %q is part of a dependency cycle: %s", id, strings.Join(path, " -> ")),
				Err:        &dag.CycleError{Path: path},
			})
			continue
		}

		var blockers []string
		for _, dep := range g.AllDependencies(id) {
			if cyclic[dep] {
				blockers = append(blockers, dep)
			}
		}
		d := Diagnostic{
			Kind:     BlockedByCycle,
			Severity: SeverityError,
			Node:     id,
			Location: loc,
			Message:  fmt.Sprintf("addon %q depends on cyclic addons %s", id, strings.Join(blockers, ", ")),
			Err:      fmt.Errorf("%w: %s is blocked by %s", dag.ErrCyclicDependency, id, strings.Join(blockers, ", ")),
		}
		if len(blockers) > 0 {
			d.Dependency = blockers[0]
		}
		b.report(d)
	}
}

// shortestCycle returns the shortest closed path from start back to itself
// along dependency edges, or nil if start is not on a cycle.
func shortestCycle(g *dag.Graph, start string) []string {
	parent := make(map[string]string)
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range g.Dependencies(cur) {
			if dep == start {
				var back []string
				for n := cur; n != start; n = parent[n] {
					back = append(back, n)
				}
				slices.Reverse(back)
				path := append([]string{start}, back...)
				return append(path, start)
			}
			if _, seen := parent[dep]; !seen {
				parent[dep] = cur
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
