package dag

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type visitState uint8

const (
	unvisited visitState = iota
	onStack
	finished
)

// frame is one level of the explicit DFS stack: the node being expanded and
// the next dependency edge to follow.
type frame struct {
	n    *node
	next *orderedmap.Pair[string, string]
}

// walk runs a depth-first search along dependency edges from every node in
// insertion order, calling post for each node once all of its dependencies
// have been visited. It stops at the first back-edge and returns the cycle
// as a closed path; it returns nil when the graph is acyclic.
//
// The stack is a slice of frames rather than call frames, so graph depth is
// bounded by memory, not by goroutine stack size. The caller must hold at
// least the read lock.
func (g *Graph) walk(post func(id string)) []string {
	state := make(map[string]visitState, g.nodes.Len())
	var stack []frame

	for root := g.nodes.Oldest(); root != nil; root = root.Next() {
		if state[root.Key] != unvisited {
			continue
		}
		state[root.Key] = onStack
		stack = append(stack, frame{n: root.Value, next: root.Value.deps.Oldest()})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == nil {
				state[top.n.id] = finished
				if post != nil {
					post(top.n.id)
				}
				stack = stack[:len(stack)-1]
				continue
			}

			depID := top.next.Key
			top.next = top.next.Next()

			switch state[depID] {
			case onStack:
				return cyclePath(stack, depID)
			case unvisited:
				dep, ok := g.nodes.Get(depID)
				if !ok {
					continue
				}
				state[depID] = onStack
				stack = append(stack, frame{n: dep, next: dep.deps.Oldest()})
			}
		}
	}
	return nil
}

// cyclePath extracts the closed path from the first stack frame holding
// target up to the top of the stack.
func cyclePath(stack []frame, target string) []string {
	start := 0
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].n.id == target {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.n.id)
	}
	return append(path, target)
}

// HasCycle reports whether the graph contains a directed cycle.
func (g *Graph) HasCycle() bool {
	return g.FindCycle() != nil
}

// FindCycle returns one cycle as a closed path (for example [a b c a]) or
// nil when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.walk(nil)
}

// DetectCycles returns a *CycleError describing the first cycle found, or nil.
func (g *Graph) DetectCycles() error {
	if path := g.FindCycle(); path != nil {
		return &CycleError{Path: path}
	}
	return nil
}

// TopologicalSort returns every node ordered so that each node appears after
// all of its dependencies. Independent subgraphs keep insertion order. The
// boolean is false, and the slice nil, when the graph has a cycle.
func (g *Graph) TopologicalSort() ([]string, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	order := make([]string, 0, g.nodes.Len())
	if cycle := g.walk(func(id string) { order = append(order, id) }); cycle != nil {
		return nil, false
	}
	return order, true
}

// AllDependencies returns every node reachable from id along dependency
// edges, each once, in breadth-first discovery order. id itself is only
// included when it lies on a cycle.
func (g *Graph) AllDependencies(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.closure(id, func(n *node) []string {
		out := make([]string, 0, n.deps.Len())
		for p := n.deps.Oldest(); p != nil; p = p.Next() {
			out = append(out, p.Key)
		}
		return out
	})
}

// AllDependents returns every node that depends on id directly or
// transitively.
func (g *Graph) AllDependents(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.closure(id, func(n *node) []string {
		out := make([]string, 0, n.dependents.Len())
		for p := n.dependents.Oldest(); p != nil; p = p.Next() {
			out = append(out, p.Key)
		}
		return out
	})
}

func (g *Graph) closure(id string, next func(*node) []string) []string {
	start, ok := g.nodes.Get(id)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	var result []string
	queue := next(start)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, dup := seen[cur]; dup {
			continue
		}
		seen[cur] = struct{}{}
		result = append(result, cur)
		if n, ok := g.nodes.Get(cur); ok {
			queue = append(queue, next(n)...)
		}
	}
	return result
}
