package dag

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrEmptyNodeID is returned when a node identifier is the empty string.
	ErrEmptyNodeID = errors.New("node id must not be empty")
	// ErrCyclicDependency is the sentinel every cycle report unwraps to.
	ErrCyclicDependency = errors.New("cyclic dependency")
)

// CycleError reports one concrete cycle as a closed path, e.g. [a b a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// Graph is a directed graph of component names where an edge from -> to
// means "from depends on to". Nodes and edge sets keep insertion order so
// every query is deterministic. All operations are safe for concurrent use;
// a single RWMutex guards both edge directions.
type Graph struct {
	// mutex protects nodes and every node's edge sets.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes *orderedmap.OrderedMap[string, *node]
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id string
	// deps maps each dependency to the version constraint required of it
	// (empty when the edge carries none).
	deps *orderedmap.OrderedMap[string, string]
	// dependents is the inverse of deps.
	dependents *orderedmap.OrderedMap[string, struct{}]
}

func newNode(id string) *node {
	return &node{
		id:         id,
		deps:       orderedmap.New[string, string](),
		dependents: orderedmap.New[string, struct{}](),
	}
}

// Edge is a snapshot of one dependency edge.
type Edge struct {
	From            string `json:"from"`
	To              string `json:"to"`
	RequiredVersion string `json:"requiredVersion,omitempty"`
}
