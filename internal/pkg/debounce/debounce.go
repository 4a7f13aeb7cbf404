// Package debounce provides a per-key coalescing write scheduler.
//
// Free-text fields (combat notes) update local state on every keystroke but
// should only hit the store after the user pauses. Each key gets its own
// timer: a new value for the same key cancels the pending flush and
// reschedules it. Close flushes everything still pending so the last edit
// is never lost on teardown.
package debounce

import (
	"context"
	"sync"
	"time"
)

// FlushFunc receives the latest value for a key when its timer fires
type FlushFunc func(ctx context.Context, key, value string)

// Scheduler coalesces writes per key
type Scheduler struct {
	window time.Duration
	flush  FlushFunc

	mu      sync.Mutex
	pending map[string]*entry
	closed  bool
}

type entry struct {
	value string
	timer *time.Timer
}

// Config holds the dependencies for a Scheduler
type Config struct {
	// Window is the inactivity period before a pending value is flushed
	Window time.Duration
	// Flush is invoked with the latest value once the window elapses
	Flush FlushFunc
}

// DefaultWindow is the debounce window used when none is configured
const DefaultWindow = 500 * time.Millisecond

// New creates a scheduler. A zero window falls back to DefaultWindow.
func New(cfg *Config) *Scheduler {
	window := DefaultWindow
	if cfg != nil && cfg.Window > 0 {
		window = cfg.Window
	}

	var flush FlushFunc
	if cfg != nil {
		flush = cfg.Flush
	}
	if flush == nil {
		flush = func(context.Context, string, string) {}
	}

	return &Scheduler{
		window:  window,
		flush:   flush,
		pending: make(map[string]*entry),
	}
}

// Set records the latest value for key and (re)starts its flush timer
func (s *Scheduler) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if e, ok := s.pending[key]; ok {
		e.value = value
		e.timer.Reset(s.window)
		return
	}

	e := &entry{value: value}
	e.timer = time.AfterFunc(s.window, func() {
		s.fire(key)
	})
	s.pending[key] = e
}

// Flush immediately writes the pending value for key, if any
func (s *Scheduler) Flush(key string) {
	s.mu.Lock()
	e, ok := s.pending[key]
	if ok {
		e.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if ok {
		s.flush(context.Background(), key, e.value)
	}
}

// Close flushes all pending values and stops the scheduler
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	remaining := s.pending
	s.pending = make(map[string]*entry)
	for _, e := range remaining {
		e.timer.Stop()
	}
	s.mu.Unlock()

	for key, e := range remaining {
		s.flush(context.Background(), key, e.value)
	}
}

func (s *Scheduler) fire(key string) {
	s.mu.Lock()
	e, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if ok {
		s.flush(context.Background(), key, e.value)
	}
}
