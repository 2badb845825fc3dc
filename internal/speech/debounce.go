package speech

import (
	"sync"
	"time"
)

// DefaultDebounce is the minimum gap between two speak requests.
const DefaultDebounce = 2 * time.Second

// Debouncer admits at most one event per window. Events inside the window
// are dropped, not queued.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
}

// NewDebouncer creates a Debouncer. A non-positive window selects DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

// Allow reports whether an event at now is admitted and, if so, records it.
// The first event is always admitted.
func (d *Debouncer) Allow(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.last.IsZero() && now.Sub(d.last) <= d.window {
		return false
	}
	d.last = now
	return true
}

// Last returns the time of the last admitted event.
func (d *Debouncer) Last() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Window returns the configured debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
