package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func observeN(s *Smoother, sym Symbol, n int) (Symbol, bool) {
	var out Symbol
	var changed bool
	for i := 0; i < n; i++ {
		out, changed = s.Observe(sym)
	}
	return out, changed
}

func TestSmoother_BufferBounded(t *testing.T) {
	s := NewSmoother(0, 0)

	for i := 0; i < 25; i++ {
		s.Observe(Symbol(rune('A' + i)))
		assert.LessOrEqual(t, s.Len(), DefaultBufferSize)
	}

	buf := s.Buffer()
	assert.Len(t, buf, 10)
	assert.Equal(t, Symbol("P"), buf[0], "oldest entries evicted first")
	assert.Equal(t, Symbol("Y"), buf[9])
}

func TestSmoother_SevenVotesWin(t *testing.T) {
	s := NewSmoother(DefaultBufferSize, DefaultVoteThreshold)

	out, changed := observeN(s, "B", 6)
	assert.Equal(t, Symbol(""), out, "six votes are not enough")
	assert.False(t, changed)

	out, changed = s.Observe("B")
	assert.Equal(t, Symbol("B"), out)
	assert.True(t, changed)

	out, changed = s.Observe("B")
	assert.Equal(t, Symbol("B"), out)
	assert.False(t, changed, "unchanged output is not a transition")
}

func TestSmoother_KeepsPreviousUntilMajority(t *testing.T) {
	s := NewSmoother(DefaultBufferSize, DefaultVoteThreshold)
	observeN(s, "A", 10)
	assert.Equal(t, Symbol("A"), s.Current())

	// Six of the last ten are C: still A.
	out, _ := observeN(s, "C", 6)
	assert.Equal(t, Symbol("A"), out)

	out, changed := s.Observe("C")
	assert.Equal(t, Symbol("C"), out)
	assert.True(t, changed)
}

func TestSmoother_InterleavedNoiseDelaysSwitch(t *testing.T) {
	s := NewSmoother(DefaultBufferSize, DefaultVoteThreshold)
	for i := 0; i < 4; i++ {
		s.Observe("B")
		s.Observe("D")
	}
	assert.Equal(t, Symbol(""), s.Current())
	assert.Equal(t, 8, s.Len())
}

func TestSmoother_SentinelsDecayVotes(t *testing.T) {
	s := NewSmoother(DefaultBufferSize, DefaultVoteThreshold)
	observeN(s, "L", 8)
	assert.Equal(t, Symbol("L"), s.Current())

	out, changed := s.Observe(NoHand)
	assert.Equal(t, Symbol("L"), out, "output holds through sentinels")
	assert.False(t, changed)
	assert.Equal(t, 7, s.Len())

	s.Observe(Unknown)
	assert.Equal(t, 6, s.Len())

	observeN(s, NoHand, 20)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, Symbol("L"), s.Current())
}

func TestSmoother_SentinelsNeverWin(t *testing.T) {
	s := NewSmoother(DefaultBufferSize, DefaultVoteThreshold)
	out, _ := observeN(s, Unknown, 12)
	assert.Equal(t, Symbol(""), out)
	assert.Equal(t, 0, s.Len())
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother(DefaultBufferSize, DefaultVoteThreshold)
	observeN(s, "Y", 9)

	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, Symbol(""), s.Current())

	_, changed := observeN(s, "Y", 7)
	assert.True(t, changed, "a reset smoother transitions again")
}

func TestSmoother_CustomThreshold(t *testing.T) {
	s := NewSmoother(4, 2)
	out, _ := observeN(s, "V", 2)
	assert.Equal(t, Symbol(""), out)

	out, _ = s.Observe("V")
	assert.Equal(t, Symbol("V"), out)
}
