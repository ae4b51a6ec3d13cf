package dag

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: orderedmap.New[string, *node](),
	}
}

// addNodeLocked returns the node for id, creating it if needed. The caller
// must hold the write lock.
func (g *Graph) addNodeLocked(id string) *node {
	if n, ok := g.nodes.Get(id); ok {
		return n
	}
	n := newNode(id)
	g.nodes.Set(id, n)
	return n
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrEmptyNodeID
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.addNodeLocked(id)
	return nil
}

// AddDependency records that `from` depends on `to`, creating either node if
// it does not exist yet. An optional required version constraint is stored
// on the edge. Repeating the call is idempotent; a repeat with a non-empty
// constraint replaces the stored one.
func (g *Graph) AddDependency(from, to string, requiredVersion ...string) error {
	if from == "" || to == "" {
		return ErrEmptyNodeID
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode := g.addNodeLocked(from)
	toNode := g.addNodeLocked(to)

	constraint, exists := fromNode.deps.Get(to)
	if len(requiredVersion) > 0 && requiredVersion[0] != "" {
		constraint = requiredVersion[0]
	}
	if !exists || len(requiredVersion) > 0 {
		fromNode.deps.Set(to, constraint)
	}
	toNode.dependents.Set(from, struct{}{})
	return nil
}

// RemoveNode deletes a node and every edge touching it. Removing an unknown
// node is a no-op.
func (g *Graph) RemoveNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes.Get(id)
	if !ok {
		return
	}
	for p := n.deps.Oldest(); p != nil; p = p.Next() {
		if dep, ok := g.nodes.Get(p.Key); ok {
			dep.dependents.Delete(id)
		}
	}
	for p := n.dependents.Oldest(); p != nil; p = p.Next() {
		if dependent, ok := g.nodes.Get(p.Key); ok {
			dependent.deps.Delete(id)
		}
	}
	g.nodes.Delete(id)
}

// RemoveDependency deletes the edge from -> to in both directions. It is a
// no-op if the edge does not exist.
func (g *Graph) RemoveDependency(from, to string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if n, ok := g.nodes.Get(from); ok {
		n.deps.Delete(to)
	}
	if n, ok := g.nodes.Get(to); ok {
		n.dependents.Delete(from)
	}
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, ok := g.nodes.Get(id)
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.nodes.Len()
}

// Nodes returns every node ID in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, 0, g.nodes.Len())
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		ids = append(ids, p.Key)
	}
	return ids
}

// Dependencies returns the IDs the given node directly depends on, in the
// order the edges were added. Unknown nodes have no dependencies.
func (g *Graph) Dependencies(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes.Get(id)
	if !ok {
		return nil
	}
	deps := make([]string, 0, n.deps.Len())
	for p := n.deps.Oldest(); p != nil; p = p.Next() {
		deps = append(deps, p.Key)
	}
	return deps
}

// Dependents returns the IDs that directly depend on the given node.
func (g *Graph) Dependents(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes.Get(id)
	if !ok {
		return nil
	}
	dependents := make([]string, 0, n.dependents.Len())
	for p := n.dependents.Oldest(); p != nil; p = p.Next() {
		dependents = append(dependents, p.Key)
	}
	return dependents
}

// RequiredVersion returns the constraint stored on the edge from -> to and
// whether the edge exists.
func (g *Graph) RequiredVersion(from, to string) (string, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes.Get(from)
	if !ok {
		return "", false
	}
	return n.deps.Get(to)
}

// Edges returns every edge, grouped by source node in insertion order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var edges []Edge
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		for d := p.Value.deps.Oldest(); d != nil; d = d.Next() {
			edges = append(edges, Edge{From: p.Key, To: d.Key, RequiredVersion: d.Value})
		}
	}
	return edges
}

// InDegrees returns, for every node, the number of nodes it depends on. A
// node with zero has nothing left to wait for.
func (g *Graph) InDegrees() map[string]int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	degrees := make(map[string]int, g.nodes.Len())
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		degrees[p.Key] = p.Value.deps.Len()
	}
	return degrees
}
