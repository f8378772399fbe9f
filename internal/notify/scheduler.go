// Package notify provides cancellable timers and the notification stream
// that carries timed feedback events to the presentation layer.
package notify

import (
	"sync"
	"time"
)

// Scheduler manages named, cancellable timers. Scheduling a key that already
// has a pending timer replaces it: the previous timer is stopped without
// firing. Callbacks run on their own goroutine once the duration elapses.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler creates a new Scheduler instance.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms a timer for key that invokes fn after d. Any pending timer
// for the same key is cancelled first and never fires.
func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, exists := s.timers[key]; exists {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		// A timer may fire concurrently with a Schedule that replaced it.
		// Only the current owner of the key clears the entry.
		if s.timers[key] == timer {
			delete(s.timers, key)
		}
		s.mu.Unlock()

		fn()
	})

	s.timers[key] = timer
}

// Cancel aborts the pending timer for key without firing it. It reports
// whether a timer was pending and successfully stopped before expiry.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, exists := s.timers[key]
	if !exists {
		return false
	}

	delete(s.timers, key)
	return timer.Stop()
}

// Stop cancels all pending timers. Used during shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
