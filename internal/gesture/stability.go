package gesture

import "time"

// DefaultHold is how long a smoothed symbol must stay unchanged before it is
// committed.
const DefaultHold = 1500 * time.Millisecond

// StabilityTracker measures how long the smoothed symbol has been held and
// emits at most one commit per continuous hold. Time is supplied by the
// caller so the tracker never reads a clock itself.
type StabilityTracker struct {
	hold         time.Duration
	current      Symbol
	since        time.Time
	lastAppended Symbol
}

// NewStabilityTracker creates a tracker. A non-positive hold selects DefaultHold.
func NewStabilityTracker(hold time.Duration) *StabilityTracker {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &StabilityTracker{hold: hold}
}

// Tick advances the tracker with the frame's smoothed symbol. It returns the
// symbol to commit and true when the hold has just been satisfied.
func (t *StabilityTracker) Tick(smoothed Symbol, now time.Time) (Symbol, bool) {
	if !smoothed.IsReal() {
		t.current = ""
		t.lastAppended = ""
		return "", false
	}

	if smoothed != t.current {
		t.current = smoothed
		t.since = now
		return "", false
	}

	if now.Sub(t.since) >= t.hold && smoothed != t.lastAppended {
		t.lastAppended = smoothed
		return smoothed, true
	}
	return "", false
}

// Rearm records a manual commit of sym at now, restarting the hold clock so
// the same hold does not auto-commit again.
func (t *StabilityTracker) Rearm(sym Symbol, now time.Time) {
	t.current = sym
	t.lastAppended = sym
	t.since = now
}

// Reset forgets the held and last committed symbols.
func (t *StabilityTracker) Reset() {
	t.current = ""
	t.lastAppended = ""
	t.since = time.Time{}
}

// Current returns the symbol being held.
func (t *StabilityTracker) Current() Symbol {
	return t.current
}

// LastAppended returns the symbol committed during the current hold.
func (t *StabilityTracker) LastAppended() Symbol {
	return t.lastAppended
}

// HeldFor returns how long the current symbol has been held at now.
func (t *StabilityTracker) HeldFor(now time.Time) time.Duration {
	if t.current == "" {
		return 0
	}
	return now.Sub(t.since)
}
