package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSettler_RescheduleRunsOnce(t *testing.T) {
	s := newSettler(15 * time.Millisecond)
	var runs atomic.Int32

	for range 5 {
		s.schedule(func() { runs.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(80 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
	if s.pending() {
		t.Error("pending after run")
	}
}

func TestSettler_StopIsIdempotent(t *testing.T) {
	s := newSettler(10 * time.Millisecond)
	var runs atomic.Int32

	s.stop()
	s.schedule(func() { runs.Add(1) })
	s.stop()
	s.stop()
	time.Sleep(40 * time.Millisecond)

	if runs.Load() != 0 {
		t.Error("stopped run executed")
	}
}

func TestSettler_ZeroDelayIsSynchronous(t *testing.T) {
	s := newSettler(0)
	ran := false
	s.schedule(func() { ran = true })
	if !ran || s.pending() {
		t.Errorf("ran=%v pending=%v", ran, s.pending())
	}
}
