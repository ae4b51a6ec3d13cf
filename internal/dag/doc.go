// Package dag holds the dependency graph between addons.
//
// An edge from -> to means "from depends on to"; TopologicalSort therefore
// lists dependencies before their dependents, and InDegrees counts how many
// dependencies each node still waits for. The resolver and the parallel
// executor both rely on this single convention.
//
// Cycle detection and topological sorting walk the graph with an explicit
// stack, so very deep dependency chains cannot overflow the goroutine stack.
package dag
