// Package app wires the camera, hand detector and session engine into the
// running sign recognizer.
package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/observability"
	"github.com/ayusman/mudra/internal/practice"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/speech"
	"github.com/ayusman/mudra/internal/store"
)

// subscriberBuffer is the per-subscriber result queue length. Slow
// subscribers lose results rather than stall the pipeline.
const subscriberBuffer = 32

// Config holds configuration options for the application.
type Config struct {
	Session  session.Config
	Camera   capture.Camera
	Detector detector.Detector
	Speaker  speech.Speaker
	Store    *store.Store
	Metrics  *observability.Metrics
	Logger   zerolog.Logger
	Drill    *practice.Drill
}

// App is the main application that turns camera frames into text.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	engine     *session.Engine
	dispatcher *speech.Dispatcher
	drill      *practice.Drill
	store      *store.Store
	metrics    *observability.Metrics
	logger     zerolog.Logger

	enabled atomic.Bool

	mu     sync.RWMutex
	subs   map[int]chan session.FrameResult
	nextID int

	frameMu   sync.RWMutex
	lastJPEG  []byte
	watchers  atomic.Int32
	lastFrame time.Time
}

// New creates a new App. When a store is configured, the last used language
// and mode are restored from it.
func New(config Config) *App {
	a := &App{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		drill:    config.Drill,
		store:    config.Store,
		metrics:  config.Metrics,
		logger:   config.Logger.With().Str("component", "app").Logger(),
		subs:     make(map[int]chan session.FrameResult),
	}
	if a.metrics == nil {
		a.metrics = observability.NewMetrics()
	}
	if a.drill == nil {
		a.drill = practice.NewDrill(nil)
	}
	a.enabled.Store(true)

	speaker := config.Speaker
	if speaker == nil {
		speaker = speech.Nop{}
	}
	a.dispatcher = speech.NewDispatcher(speaker, config.Logger)
	a.dispatcher.OnError = func(error) { a.metrics.RecordSpeak("error") }

	cfg := config.Session
	if a.store != nil {
		settings := a.store.Settings()
		if l, err := gesture.ParseLanguage(settings.GetOr(store.SettingLanguage, "")); err == nil {
			cfg.Language = l
		}
		if m, err := gesture.ParseMode(settings.GetOr(store.SettingMode, "")); err == nil {
			cfg.Mode = m
		}
	}

	a.engine = session.NewEngine(cfg,
		session.WithLogger(config.Logger),
		session.WithCommitHook(a.recordCommit),
		session.WithSwitchHook(a.recordSwitch),
	)
	a.drill.SetLanguage(a.engine.State().Language)

	return a
}

// Engine returns the session engine.
func (a *App) Engine() *session.Engine {
	return a.engine
}

// Drill returns the practice drill.
func (a *App) Drill() *practice.Drill {
	return a.drill
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.store
}

// Metrics returns the metrics collectors.
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// SetEnabled enables or disables recognition. Frames are not read while
// disabled.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
	a.logger.Info().Bool("enabled", enabled).Msg("recognition toggled")
}

// IsEnabled returns whether recognition is currently enabled.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera, which may be nil in headless mode.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Subscribe registers for frame results. The returned cancel function must be
// called to release the subscription.
func (a *App) Subscribe() (<-chan session.FrameResult, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	ch := make(chan session.FrameResult, subscriberBuffer)
	a.subs[id] = ch

	return ch, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if c, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(c)
		}
	}
}

func (a *App) publish(res session.FrameResult) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, ch := range a.subs {
		select {
		case ch <- res:
		default:
		}
	}
}

// WatchFrames asks the pipeline to keep JPEG copies of camera frames until
// the returned release function is called.
func (a *App) WatchFrames() func() {
	a.watchers.Add(1)
	var once sync.Once
	return func() { once.Do(func() { a.watchers.Add(-1) }) }
}

// LatestJPEG returns the most recent encoded camera frame and its capture
// time. It is nil until a frame has been captured while watched.
func (a *App) LatestJPEG() ([]byte, time.Time) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.lastJPEG, a.lastFrame
}

func (a *App) setJPEG(data []byte, at time.Time) {
	a.frameMu.Lock()
	a.lastJPEG = data
	a.lastFrame = at
	a.frameMu.Unlock()
}

// Apply runs a session command.
func (a *App) Apply(cmd session.Command, now time.Time) (session.Snapshot, error) {
	snap, err := a.engine.Apply(cmd, now)
	if err == nil {
		a.metrics.TextLength.Set(float64(len([]rune(snap.Text))))
	}
	return snap, err
}

// StartPractice starts the drill in the session language. Practice is
// judged on letters, so the session switches to letters mode.
func (a *App) StartPractice() practice.Status {
	a.engine.SetMode(gesture.Letters)
	a.drill.Start(a.engine.State().Language)
	return a.drill.Status()
}

// StopPractice stops the drill.
func (a *App) StopPractice() practice.Status {
	a.drill.Stop()
	return a.drill.Status()
}

// Close stops background speech. The camera and detector are closed by Run.
func (a *App) Close() {
	a.dispatcher.Close()
	a.mu.Lock()
	for id, ch := range a.subs {
		delete(a.subs, id)
		close(ch)
	}
	a.mu.Unlock()
}

func (a *App) recordCommit(c session.Commit) {
	source := "auto"
	if c.Manual {
		source = "manual"
	}
	a.metrics.Commits.WithLabelValues(string(c.Language), string(c.Mode), source).Inc()

	if a.store == nil {
		return
	}
	err := a.store.Commits().Record(&store.Commit{
		Symbol:    string(c.Symbol),
		Language:  string(c.Language),
		Mode:      string(c.Mode),
		Manual:    c.Manual,
		CreatedAt: c.Time,
	})
	if err != nil {
		a.metrics.RecordError("store")
		a.logger.Error().Err(err).Str("symbol", string(c.Symbol)).Msg("failed to record commit")
	}
}

func (a *App) recordSwitch(st session.State) {
	a.metrics.Switches.WithLabelValues(string(st.Language), string(st.Mode)).Inc()
	a.drill.SetLanguage(st.Language)

	if a.store == nil {
		return
	}
	settings := a.store.Settings()
	if err := settings.Set(store.SettingLanguage, string(st.Language)); err != nil {
		a.logger.Error().Err(err).Msg("failed to save language")
	}
	if err := settings.Set(store.SettingMode, string(st.Mode)); err != nil {
		a.logger.Error().Err(err).Msg("failed to save mode")
	}
}
