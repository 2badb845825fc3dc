// Package practice runs a letter drill: the user is shown a target letter and
// scored on signing it.
package practice

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

const (
	// DefaultHold is how long a letter must be held before it is judged.
	DefaultHold = 1200 * time.Millisecond
	// DefaultFeedback is how long a judgement is shown before the drill resumes.
	DefaultFeedback = 1500 * time.Millisecond
)

// Feedback is the outcome shown after a judgement.
type Feedback string

const (
	None     Feedback = ""
	Correct  Feedback = "correct"
	TryAgain Feedback = "tryagain"
)

var alphabets = map[gesture.Language][]gesture.Symbol{
	gesture.English: {
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	},
	gesture.Arabic: {
		"أ", "ب", "ت", "ث", "ج", "ح", "خ", "د", "ذ", "ر", "ز", "س", "ش", "ص",
		"ض", "ط", "ظ", "ع", "غ", "ف", "ق", "ك", "ل", "م", "ن", "ه", "و", "ي",
	},
}

// Alphabet returns the practice letters for lang.
func Alphabet(lang gesture.Language) []gesture.Symbol {
	return append([]gesture.Symbol(nil), alphabets[lang]...)
}

// Excluded reports whether sym is never judged. The love-you handshape is in
// the letters table but is not a letter.
func Excluded(sym gesture.Symbol) bool {
	return !sym.IsReal() || sym == "🤟"
}

// Judgement is emitted when a held letter has been scored.
type Judgement struct {
	Target   gesture.Symbol `json:"target"`
	Signed   gesture.Symbol `json:"signed"`
	Feedback Feedback       `json:"feedback"`
	Time     time.Time      `json:"time"`
}

// Status is the drill state exposed to clients.
type Status struct {
	Language gesture.Language `json:"language"`
	Target   gesture.Symbol   `json:"target"`
	Score    int              `json:"score"`
	Attempts int              `json:"attempts"`
	Feedback Feedback         `json:"feedback"`
	Active   bool             `json:"active"`
}

// Drill is a letter drill session. It is safe for concurrent use.
type Drill struct {
	mu       sync.Mutex
	rng      *rand.Rand
	hold     time.Duration
	feedback time.Duration

	active   bool
	lang     gesture.Language
	target   gesture.Symbol
	score    int
	attempts int

	shown      Feedback
	shownUntil time.Time

	stable      gesture.Symbol
	stableSince time.Time
}

// NewDrill creates an inactive drill. rng picks targets; a nil rng uses a
// time-seeded source.
func NewDrill(rng *rand.Rand) *Drill {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Drill{
		rng:      rng,
		hold:     DefaultHold,
		feedback: DefaultFeedback,
		lang:     gesture.English,
	}
}

// Start activates the drill for lang with a fresh target and zeroed score.
func (d *Drill) Start(lang gesture.Language) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = true
	d.resetLocked(lang)
}

// Stop deactivates the drill. The score is kept until the next Start.
func (d *Drill) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = false
}

// SetLanguage resets target, score and attempts when lang differs from the
// drill's language.
func (d *Drill) SetLanguage(lang gesture.Language) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if lang == d.lang {
		return
	}
	d.resetLocked(lang)
}

// Skip picks a new target without scoring.
func (d *Drill) Skip() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = d.pickLocked()
	d.shown = None
	d.stable = ""
}

func (d *Drill) resetLocked(lang gesture.Language) {
	d.lang = lang
	d.score = 0
	d.attempts = 0
	d.shown = None
	d.stable = ""
	d.target = d.pickLocked()
}

func (d *Drill) pickLocked() gesture.Symbol {
	letters := alphabets[d.lang]
	if len(letters) == 0 {
		return ""
	}
	return letters[d.rng.Intn(len(letters))]
}

// Observe feeds the smoothed letter seen at now. present reports whether the
// frame itself showed a recognized hand; the smoothed letter outlives the hand,
// so a frame without one resets the hold. It returns a Judgement when a letter
// has been held long enough to be scored.
func (d *Drill) Observe(sym gesture.Symbol, present bool, now time.Time) (Judgement, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active || d.target == "" {
		return Judgement{}, false
	}

	// Feedback period: ignore input, then move on.
	if d.shown != None {
		if now.Before(d.shownUntil) {
			return Judgement{}, false
		}
		if d.shown == Correct {
			d.target = d.pickLocked()
		}
		d.shown = None
		d.stable = ""
	}

	if !present || Excluded(sym) {
		d.stable = ""
		return Judgement{}, false
	}

	if sym != d.stable {
		d.stable = sym
		d.stableSince = now
	}
	if now.Sub(d.stableSince) < d.hold {
		return Judgement{}, false
	}

	j := Judgement{Target: d.target, Signed: sym, Time: now}
	d.attempts++
	if sym == d.target {
		d.score++
		j.Feedback = Correct
	} else {
		j.Feedback = TryAgain
	}
	d.shown = j.Feedback
	d.shownUntil = now.Add(d.feedback)
	return j, true
}

// Status returns the current drill state. A pending feedback period that has
// elapsed is still reported until the next Observe.
func (d *Drill) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		Language: d.lang,
		Target:   d.target,
		Score:    d.score,
		Attempts: d.attempts,
		Feedback: d.shown,
		Active:   d.active,
	}
}
