package resolver

import "errors"

var (
	// ErrEmptyGraph is returned when no addon could be declared at all.
	ErrEmptyGraph = errors.New("dependency graph is empty")
)
