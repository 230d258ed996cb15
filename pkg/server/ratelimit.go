package server

import (
	"time"

	"github.com/benbjohnson/clock"
)

// slidingWindow admits at most limit events per rolling window per key.
// It is owned by a single shard loop and needs no locking.
type slidingWindow struct {
	clock  clock.Clock
	limit  int
	window time.Duration
	events map[string][]time.Time
}

func newSlidingWindow(clk clock.Clock, limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		clock:  clk,
		limit:  limit,
		window: window,
		events: make(map[string][]time.Time),
	}
}

// Allow records an event for the key if the window has room.
func (w *slidingWindow) Allow(key string) bool {
	now := w.clock.Now()
	cutoff := now.Add(-w.window)

	kept := w.events[key][:0]
	for _, t := range w.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= w.limit {
		w.events[key] = kept
		return false
	}
	w.events[key] = append(kept, now)
	return true
}

// Forget drops a key's history, e.g. when the player leaves.
func (w *slidingWindow) Forget(key string) {
	delete(w.events, key)
}
