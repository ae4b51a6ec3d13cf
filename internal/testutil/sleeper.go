package testutil

import (
	"context"
	"sync"
	"time"
)

// Sleeper is a LoadFunc provider for concurrency tests. Each load sleeps for
// a fixed time and records when it ran.
type Sleeper struct {
	mu             sync.Mutex
	executionTimes map[string]*ExecutionRecord
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewSleeper creates a Sleeper. When completionChan is not nil, every
// finished addon ID is sent to it.
func NewSleeper(completionChan chan<- string, sleep time.Duration) *Sleeper {
	return &Sleeper{
		executionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Load sleeps, or returns early with the context error.
func (s *Sleeper) Load(ctx context.Context, id string) error {
	start := time.Now()
	select {
	case <-time.After(s.sleepDuration):
	case <-ctx.Done():
		return ctx.Err()
	}
	end := time.Now()

	s.mu.Lock()
	s.executionTimes[id] = &ExecutionRecord{Start: start, End: end}
	s.mu.Unlock()

	if s.completionChan != nil {
		s.completionChan <- id
	}
	return nil
}

// Record returns the execution record for id.
func (s *Sleeper) Record(id string) (ExecutionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.executionTimes[id]
	if !ok {
		return ExecutionRecord{}, false
	}
	return *r, true
}
