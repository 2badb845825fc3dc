package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestStabilityTracker_CommitsOncePerHold(t *testing.T) {
	tr := NewStabilityTracker(0)

	_, ok := tr.Tick("B", at(0))
	assert.False(t, ok, "first sighting only starts the clock")

	_, ok = tr.Tick("B", at(1499))
	assert.False(t, ok)

	sym, ok := tr.Tick("B", at(1500))
	assert.True(t, ok)
	assert.Equal(t, Symbol("B"), sym)

	for ms := 1600; ms < 10000; ms += 100 {
		_, ok = tr.Tick("B", at(ms))
		assert.False(t, ok, "no repeat commit at %dms", ms)
	}
}

func TestStabilityTracker_ChangeRestartsClock(t *testing.T) {
	tr := NewStabilityTracker(DefaultHold)
	tr.Tick("A", at(0))
	tr.Tick("A", at(1000))
	tr.Tick("C", at(1200))

	_, ok := tr.Tick("C", at(2000))
	assert.False(t, ok)

	sym, ok := tr.Tick("C", at(2700))
	assert.True(t, ok)
	assert.Equal(t, Symbol("C"), sym)
	assert.Equal(t, 1500*time.Millisecond, tr.HeldFor(at(2700)))
}

func TestStabilityTracker_ChangeAwayAndBackRearms(t *testing.T) {
	tr := NewStabilityTracker(DefaultHold)
	tr.Tick("A", at(0))
	_, ok := tr.Tick("A", at(1500))
	assert.True(t, ok)

	// A brief flick to B does not clear the last commit.
	tr.Tick("B", at(1600))
	tr.Tick("A", at(1700))
	_, ok = tr.Tick("A", at(3200))
	assert.False(t, ok)

	// B held long enough commits, which re-arms A.
	tr.Tick("B", at(3300))
	sym, ok := tr.Tick("B", at(4800))
	assert.True(t, ok)
	assert.Equal(t, Symbol("B"), sym)

	tr.Tick("A", at(4900))
	sym, ok = tr.Tick("A", at(6400))
	assert.True(t, ok)
	assert.Equal(t, Symbol("A"), sym)
}

func TestStabilityTracker_SentinelResets(t *testing.T) {
	tr := NewStabilityTracker(DefaultHold)
	tr.Tick("A", at(0))
	tr.Tick("A", at(1500))

	_, ok := tr.Tick(NoHand, at(1600))
	assert.False(t, ok)
	assert.Equal(t, Symbol(""), tr.Current())
	assert.Equal(t, Symbol(""), tr.LastAppended())

	tr.Tick("A", at(1700))
	_, ok = tr.Tick("A", at(3200))
	assert.True(t, ok)

	_, ok = tr.Tick(Unknown, at(3300))
	assert.False(t, ok)
	_, ok = tr.Tick("", at(3400))
	assert.False(t, ok)
	assert.Equal(t, time.Duration(0), tr.HeldFor(at(3400)))
}

func TestStabilityTracker_Rearm(t *testing.T) {
	tr := NewStabilityTracker(DefaultHold)
	tr.Tick("K", at(0))
	tr.Tick("K", at(500))

	tr.Rearm("K", at(600))

	_, ok := tr.Tick("K", at(2500))
	assert.False(t, ok, "manual append blocks the pending auto commit")
}

func TestStabilityTracker_Reset(t *testing.T) {
	tr := NewStabilityTracker(DefaultHold)
	tr.Tick("K", at(0))
	tr.Tick("K", at(1500))

	tr.Reset()

	_, ok := tr.Tick("K", at(1600))
	assert.False(t, ok)
	_, ok = tr.Tick("K", at(3100))
	assert.True(t, ok)
}
