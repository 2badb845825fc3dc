// Package session drives the per-frame recognition pipeline for one hand
// stream and applies user commands between frames.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/speech"
	"github.com/ayusman/mudra/internal/textbuf"
)

// State is the active language and mode.
type State struct {
	Language gesture.Language `json:"language"`
	Mode     gesture.Mode     `json:"mode"`
}

// Commit records a symbol appended to the text.
type Commit struct {
	Symbol   gesture.Symbol   `json:"symbol"`
	Language gesture.Language `json:"language"`
	Mode     gesture.Mode     `json:"mode"`
	Manual   bool             `json:"manual"`
	Time     time.Time        `json:"time"`
}

// SpeakRequest asks the host to voice a symbol.
type SpeakRequest struct {
	Text     string           `json:"text"`
	Language gesture.Language `json:"language"`
}

// FrameResult is everything the pipeline produced for one frame.
type FrameResult struct {
	Time     time.Time            `json:"time"`
	Hand     bool                 `json:"hand"`
	Fingers  *gesture.FingerState `json:"fingers,omitempty"`
	Raw      gesture.Symbol       `json:"raw"`
	Smoothed gesture.Symbol       `json:"smoothed"`
	Commit   *Commit              `json:"commit,omitempty"`
	Speak    *SpeakRequest        `json:"speak,omitempty"`
	Text     string               `json:"text"`
	Session  State                `json:"session"`
}

// Snapshot is the engine state outside of frame processing.
type Snapshot struct {
	Session      State          `json:"session"`
	Text         string         `json:"text"`
	Smoothed     gesture.Symbol `json:"smoothed"`
	Stable       gesture.Symbol `json:"stable"`
	LastAppended gesture.Symbol `json:"lastAppended"`
	Buffered     int            `json:"buffered"`
}

// Config holds the pipeline tunables.
type Config struct {
	BufferSize    int
	VoteThreshold int
	Hold          time.Duration
	SpeakDebounce time.Duration
	Language      gesture.Language
	Mode          gesture.Mode
	InitialText   string
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:    gesture.DefaultBufferSize,
		VoteThreshold: gesture.DefaultVoteThreshold,
		Hold:          gesture.DefaultHold,
		SpeakDebounce: speech.DefaultDebounce,
		Language:      gesture.English,
		Mode:          gesture.Letters,
	}
}

// Engine owns the session state and every stateful pipeline component.
// ProcessFrame and all commands serialize on one mutex, so a command is
// always applied between two frames.
type Engine struct {
	mu       sync.Mutex
	state    State
	smoother *gesture.Smoother
	tracker  *gesture.StabilityTracker
	text     *textbuf.Accumulator
	debounce *speech.Debouncer
	last     FrameResult

	logger   zerolog.Logger
	onCommit func(Commit)
	onSwitch func(State)

	quitOnce sync.Once
	done     chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l.With().Str("component", "session").Logger() }
}

// WithCommitHook registers fn to be called after every commit, automatic or
// manual. fn runs without the engine lock held.
func WithCommitHook(fn func(Commit)) Option {
	return func(e *Engine) { e.onCommit = fn }
}

// WithSwitchHook registers fn to be called after the language or mode changes.
func WithSwitchHook(fn func(State)) Option {
	return func(e *Engine) { e.onSwitch = fn }
}

// NewEngine creates an Engine. Invalid language or mode values fall back to
// English letters.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if _, err := gesture.ParseLanguage(string(cfg.Language)); err != nil {
		cfg.Language = gesture.English
	}
	if _, err := gesture.ParseMode(string(cfg.Mode)); err != nil {
		cfg.Mode = gesture.Letters
	}

	e := &Engine{
		state:    State{Language: cfg.Language, Mode: cfg.Mode},
		smoother: gesture.NewSmoother(cfg.BufferSize, cfg.VoteThreshold),
		tracker:  gesture.NewStabilityTracker(cfg.Hold),
		text:     textbuf.New(cfg.InitialText),
		debounce: speech.NewDebouncer(cfg.SpeakDebounce),
		logger:   zerolog.Nop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.last.Session = e.state
	e.last.Raw = gesture.NoHand
	return e
}

// ProcessFrame runs one frame through the pipeline. A nil hand means no hand
// was detected.
func (e *Engine) ProcessFrame(hand *detector.HandLandmarks, now time.Time) FrameResult {
	e.mu.Lock()

	res := FrameResult{Time: now, Session: e.state}

	// Classify
	if hand == nil {
		res.Raw = gesture.NoHand
	} else {
		fs, sym := gesture.ClassifyHand(hand, e.state.Mode, e.state.Language)
		res.Hand = true
		res.Fingers = &fs
		res.Raw = sym
	}

	// Smooth
	smoothed, changed := e.smoother.Observe(res.Raw)
	res.Smoothed = smoothed

	// Speak on transition, debounced
	if changed && smoothed.IsReal() && e.debounce.Allow(now) {
		res.Speak = &SpeakRequest{Text: string(smoothed), Language: e.state.Language}
	}

	// Commit after a stable hold
	if sym, ok := e.tracker.Tick(smoothed, now); ok {
		e.text.AutoAppend(sym, e.state.Mode)
		res.Commit = &Commit{
			Symbol:   sym,
			Language: e.state.Language,
			Mode:     e.state.Mode,
			Time:     now,
		}
	}

	res.Text = e.text.String()
	e.last = res
	onCommit := e.onCommit
	e.mu.Unlock()

	if res.Commit != nil {
		e.logger.Info().Str("symbol", string(res.Commit.Symbol)).Str("text", res.Text).Msg("symbol committed")
		if onCommit != nil {
			onCommit(*res.Commit)
		}
	}
	return res
}

// Apply runs a command at time now and returns the resulting snapshot.
func (e *Engine) Apply(cmd Command, now time.Time) (Snapshot, error) {
	switch cmd {
	case ToggleLanguage:
		e.mu.Lock()
		st, ok := e.switchLocked(State{Language: e.state.Language.Next(), Mode: e.state.Mode})
		e.mu.Unlock()
		if ok {
			e.switched(st)
		}
	case ToggleMode:
		e.mu.Lock()
		st, ok := e.switchLocked(State{Language: e.state.Language, Mode: e.state.Mode.Next()})
		e.mu.Unlock()
		if ok {
			e.switched(st)
		}
	case Append:
		e.manualAppend(now)
	case Space:
		e.mu.Lock()
		e.text.AppendSpace()
		e.mu.Unlock()
	case Backspace:
		e.mu.Lock()
		e.text.Backspace()
		e.mu.Unlock()
	case Clear:
		e.mu.Lock()
		e.text.Clear()
		e.tracker.Reset()
		e.mu.Unlock()
		e.logger.Info().Msg("text cleared")
	case Quit:
		e.quitOnce.Do(func() { close(e.done) })
		e.logger.Info().Msg("quit requested")
	default:
		return e.Snapshot(), ErrUnknownCommand
	}
	return e.Snapshot(), nil
}

func (e *Engine) manualAppend(now time.Time) {
	e.mu.Lock()
	sym := e.smoother.Current()
	if !e.text.ManualAppend(sym, e.state.Mode) {
		e.mu.Unlock()
		return
	}
	e.tracker.Rearm(sym, now)
	c := Commit{
		Symbol:   sym,
		Language: e.state.Language,
		Mode:     e.state.Mode,
		Manual:   true,
		Time:     now,
	}
	onCommit := e.onCommit
	e.mu.Unlock()

	e.logger.Info().Str("symbol", string(sym)).Msg("manual append")
	if onCommit != nil {
		onCommit(c)
	}
}

// SetLanguage switches the language. Any change clears the prediction buffer
// and all stability state; the text and speech debounce are kept.
func (e *Engine) SetLanguage(lang gesture.Language) {
	e.mu.Lock()
	st, ok := e.switchLocked(State{Language: lang, Mode: e.state.Mode})
	e.mu.Unlock()
	if ok {
		e.switched(st)
	}
}

// SetMode switches the mode with the same reset rules as SetLanguage.
func (e *Engine) SetMode(mode gesture.Mode) {
	e.mu.Lock()
	st, ok := e.switchLocked(State{Language: e.state.Language, Mode: mode})
	e.mu.Unlock()
	if ok {
		e.switched(st)
	}
}

func (e *Engine) switchLocked(next State) (State, bool) {
	if next == e.state {
		return e.state, false
	}
	e.state = next
	e.smoother.Reset()
	e.tracker.Reset()
	e.last.Smoothed = ""
	e.last.Session = e.state
	return e.state, true
}

func (e *Engine) switched(st State) {
	e.logger.Info().Str("language", string(st.Language)).Str("mode", string(st.Mode)).Msg("session switched")
	if e.onSwitch != nil {
		e.onSwitch(st)
	}
}

// AllowSpeech reports whether a speak request outside the frame pipeline may
// be made at now. It shares the frame pipeline's debounce window.
func (e *Engine) AllowSpeech(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debounce.Allow(now)
}

// State returns the current language and mode.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Text returns the accumulated text.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text.String()
}

// Last returns the most recent frame result.
func (e *Engine) Last() FrameResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Session:      e.state,
		Text:         e.text.String(),
		Smoothed:     e.smoother.Current(),
		Stable:       e.tracker.Current(),
		LastAppended: e.tracker.LastAppended(),
		Buffered:     e.smoother.Len(),
	}
}

// Done is closed once Quit has been applied.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}
