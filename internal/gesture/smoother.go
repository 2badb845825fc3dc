package gesture

// Smoothing defaults.
const (
	// DefaultBufferSize is how many recent real symbols take part in the vote.
	DefaultBufferSize = 10
	// DefaultVoteThreshold is the count a symbol must strictly exceed to win.
	DefaultVoteThreshold = 6
)

// Smoother damps single-frame misclassifications with a majority vote over
// the most recent raw symbols. It is not safe for concurrent use.
type Smoother struct {
	size      int
	threshold int
	buf       []Symbol
	last      Symbol
}

// NewSmoother creates a Smoother. Non-positive arguments select the defaults.
func NewSmoother(size, threshold int) *Smoother {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if threshold <= 0 {
		threshold = DefaultVoteThreshold
	}
	return &Smoother{
		size:      size,
		threshold: threshold,
		buf:       make([]Symbol, 0, size),
	}
}

// Observe feeds one raw symbol and returns the smoothed symbol together with
// whether it differs from the previous call's result.
//
// A real symbol is pushed (evicting the oldest entry when full) and becomes
// the output once it holds more than threshold votes. A sentinel pushes
// nothing and instead evicts the oldest entry, so stale votes decay while no
// hand is visible.
func (s *Smoother) Observe(raw Symbol) (Symbol, bool) {
	prev := s.last
	out := prev

	if raw.IsReal() {
		if len(s.buf) >= s.size {
			copy(s.buf, s.buf[1:])
			s.buf = s.buf[:s.size-1]
		}
		s.buf = append(s.buf, raw)

		if s.count(raw) > s.threshold {
			out = raw
		}
	} else if len(s.buf) > 0 {
		copy(s.buf, s.buf[1:])
		s.buf = s.buf[:len(s.buf)-1]
	}

	s.last = out
	return out, out != prev
}

// Current returns the last smoothed symbol, or "" if none has won a vote.
func (s *Smoother) Current() Symbol {
	return s.last
}

// Len returns the number of buffered votes.
func (s *Smoother) Len() int {
	return len(s.buf)
}

// Buffer returns a copy of the buffered votes, oldest first.
func (s *Smoother) Buffer() []Symbol {
	out := make([]Symbol, len(s.buf))
	copy(out, s.buf)
	return out
}

// Reset drops every vote and forgets the smoothed symbol.
func (s *Smoother) Reset() {
	s.buf = s.buf[:0]
	s.last = ""
}

func (s *Smoother) count(sym Symbol) int {
	n := 0
	for _, v := range s.buf {
		if v == sym {
			n++
		}
	}
	return n
}
