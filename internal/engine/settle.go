package engine

import (
	"context"
	"sync"
	"time"
)

// DefaultSettleDelay is how long after the last transition an engine settles.
const DefaultSettleDelay = 400 * time.Millisecond

// settler runs one pending callback at a time. Scheduling again cancels the
// pending run and restarts the delay; cancelling twice is harmless.
type settler struct {
	mu     sync.Mutex
	delay  time.Duration
	gen    uint64
	cancel context.CancelFunc
}

func newSettler(delay time.Duration) *settler {
	return &settler{delay: delay}
}

// schedule replaces any pending run with fn. A non-positive delay runs fn
// before schedule returns.
func (s *settler) schedule(fn func()) {
	s.mu.Lock()
	s.stopLocked()
	if s.delay <= 0 {
		s.mu.Unlock()
		fn()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	gen := s.gen
	s.mu.Unlock()

	go s.wait(ctx, gen, fn)
}

func (s *settler) wait(ctx context.Context, gen uint64, fn func()) {
	t := time.NewTimer(s.delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}

	s.mu.Lock()
	// A later schedule or stop bumped the generation after the timer fired.
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	s.gen++
	s.mu.Unlock()

	fn()
}

// stop cancels the pending run, if any.
func (s *settler) stop() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

func (s *settler) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

// pending reports whether a run is scheduled.
func (s *settler) pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
