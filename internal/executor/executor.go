// Package executor loads the addons of a dependency graph in parallel,
// never starting an addon before all of its dependencies have loaded.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/specialistvlad/addongraph/internal/ctxlog"
	"github.com/specialistvlad/addongraph/internal/dag"
	"github.com/specialistvlad/addongraph/internal/metrics"
)

var (
	// ErrLoadPanicked wraps a panic raised by a load callback.
	ErrLoadPanicked = errors.New("load panicked")
	// ErrStalled is returned if the graph changed during a run so that no
	// node can become ready.
	ErrStalled = errors.New("no loadable node left")
)

// LoadFunc activates a single addon. It is called at most once per node,
// outside of any executor lock.
type LoadFunc func(ctx context.Context, id string) error

// Executor runs a LoadFunc over every node of a graph.
type Executor struct {
	graph      *dag.Graph
	numWorkers int
	metrics    *metrics.Recorder
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers sets the worker pool size. Zero or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		e.numWorkers = n
	}
}

// WithMetrics records load outcomes and durations.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// New creates an Executor for g.
func New(g *dag.Graph, opts ...Option) *Executor {
	e := &Executor{graph: g}
	for _, opt := range opts {
		opt(e)
	}
	if e.numWorkers <= 0 {
		e.numWorkers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Report lists what happened to each node during a run.
type Report struct {
	// Loaded is in completion order.
	Loaded []string `json:"loaded"`
	// Failed is in completion order.
	Failed []string `json:"failed,omitempty"`
	// Skipped holds the nodes never dispatched, in graph order.
	Skipped []string `json:"skipped,omitempty"`
	// Errors maps each failed node to its load error.
	Errors map[string]error `json:"-"`
}

// Run calls load for every node, dependencies first, on a pool of
// min(workers, nodes) goroutines.
//
// A cyclic graph is rejected with a *dag.CycleError before anything loads.
// The first load error stops dispatching: loads already running finish, the
// remaining nodes are reported as skipped and the returned error wraps the
// root cause. Cancelling ctx behaves the same way.
func (e *Executor) Run(ctx context.Context, load LoadFunc) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	if path := e.graph.FindCycle(); path != nil {
		err := &dag.CycleError{Path: path}
		logger.Error("Refusing to load a cyclic graph.", "error", err)
		return nil, err
	}

	s := newScheduler(e.graph)
	if s.total == 0 {
		logger.Debug("Nothing to load.")
		return &Report{Errors: map[string]error{}}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel
	stop := context.AfterFunc(runCtx, s.halt)
	defer stop()

	workers := min(e.numWorkers, s.total)
	logger.Debug("Starting worker pool.", "workers", workers, "nodes", s.total, "ready", len(s.ready))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			e.worker(runCtx, s, load, workerID)
		}(i)
	}
	wg.Wait()

	report := s.finish()
	e.metrics.CountSkipped(len(report.Skipped))
	logger.Info("Loading finished.", "loaded", len(report.Loaded), "failed", len(report.Failed), "skipped", len(report.Skipped))

	return report, e.runError(ctx, s, report)
}

// runError picks the error returned from Run. Cancellation errors from
// loads interrupted by an earlier failure are symptoms, not causes.
func (e *Executor) runError(ctx context.Context, s *scheduler, report *Report) error {
	var rootIDs []string
	for _, id := range report.Failed {
		if !errors.Is(report.Errors[id], context.Canceled) {
			rootIDs = append(rootIDs, id)
		}
	}
	if s.rootErr != nil && len(rootIDs) > 0 {
		return fmt.Errorf("loading failed for %s: %w", strings.Join(rootIDs, ", "), s.rootErr)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loading interrupted: %w", err)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("loading failed for %s: %w", strings.Join(report.Failed, ", "), report.Errors[report.Failed[0]])
	}
	if s.stalled {
		return ErrStalled
	}
	return nil
}
