package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/addongraph/internal/ctxlog"
	"github.com/specialistvlad/addongraph/internal/dag"
	"github.com/specialistvlad/addongraph/internal/metrics"
)

// scheduler is the state shared by the workers of one run. mu guards every
// field below it; cond is signalled whenever ready grows or the run ends.
type scheduler struct {
	mu   sync.Mutex
	cond *sync.Cond

	order      []string
	dependents map[string][]string
	remaining  map[string]int
	ready      []string
	total      int
	loaded     int
	inFlight   int
	stopped    bool
	stalled    bool
	rootErr    error
	cancel     context.CancelFunc

	dispatched map[string]bool
	report     Report
}

// newScheduler snapshots the graph. remaining starts at each node's
// dependency count, and nodes with none are ready immediately.
func newScheduler(g *dag.Graph) *scheduler {
	order := g.Nodes()
	s := &scheduler{
		order:      order,
		dependents: make(map[string][]string, len(order)),
		remaining:  g.InDegrees(),
		total:      len(order),
		dispatched: make(map[string]bool, len(order)),
		report:     Report{Errors: make(map[string]error)},
	}
	s.cond = sync.NewCond(&s.mu)
	for _, id := range order {
		s.dependents[id] = g.Dependents(id)
		if s.remaining[id] == 0 {
			s.ready = append(s.ready, id)
		}
	}
	return s
}

// halt stops dispatching and wakes every waiting worker.
func (s *scheduler) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cond.Broadcast()
}

// next blocks until a node is ready or the run is over. It returns false
// when the worker should exit.
func (s *scheduler) next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.ready) == 0 && !s.stopped && s.loaded < s.total {
		if s.inFlight == 0 {
			// Nothing running can ever make a node ready.
			s.stalled = true
			s.stopped = true
			s.cond.Broadcast()
			break
		}
		s.cond.Wait()
	}
	if s.stopped || s.loaded == s.total {
		return "", false
	}

	id := s.ready[0]
	s.ready = s.ready[1:]
	s.dispatched[id] = true
	s.inFlight++
	return id, true
}

// complete records the outcome of a load and releases its dependents.
func (s *scheduler) complete(id string, err error) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.cond.Broadcast()

	s.inFlight--
	if err != nil {
		s.report.Failed = append(s.report.Failed, id)
		s.report.Errors[id] = err
		if s.rootErr == nil && !errors.Is(err, context.Canceled) {
			s.rootErr = err
		}
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
		return nil
	}

	s.loaded++
	s.report.Loaded = append(s.report.Loaded, id)
	var unlocked []string
	for _, dependent := range s.dependents[id] {
		s.remaining[dependent]--
		if s.remaining[dependent] == 0 {
			s.ready = append(s.ready, dependent)
			unlocked = append(unlocked, dependent)
		}
	}
	return unlocked
}

// finish returns the report once every worker has exited.
func (s *scheduler) finish() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if !s.dispatched[id] {
			s.report.Skipped = append(s.report.Skipped, id)
		}
	}
	report := s.report
	return &report
}

// worker is the processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, s *scheduler, load LoadFunc, workerID int) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)
	logger.Debug("Worker started.")

	for {
		id, ok := s.next()
		if !ok {
			break
		}
		nodeLogger := logger.With("nodeID", id)
		nodeLogger.Debug("Worker picked up node for loading.")

		e.metrics.LoadStarted()
		start := time.Now()
		err := safeLoad(ctxlog.WithLogger(ctx, nodeLogger), load, id)
		elapsed := time.Since(start)

		if err != nil {
			e.metrics.ObserveLoad(elapsed, metrics.OutcomeFailed)
			nodeLogger.Error("Node loading failed.", "error", err, "duration", elapsed)
		} else {
			e.metrics.ObserveLoad(elapsed, metrics.OutcomeLoaded)
			nodeLogger.Debug("Node loaded.", "duration", elapsed)
		}

		for _, dependent := range s.complete(id, err) {
			nodeLogger.Debug("Unlocking dependent node.", "dependentID", dependent)
		}
	}
	logger.Debug("Worker finished.")
}

// safeLoad turns a panicking load into an error so the pool keeps its
// bookkeeping straight.
func safeLoad(ctx context.Context, load LoadFunc, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrLoadPanicked, id, r)
		}
	}()
	return load(ctx, id)
}
