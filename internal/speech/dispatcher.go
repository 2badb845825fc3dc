package speech

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/gesture"
)

// Dispatcher hands speak requests to a Speaker on a background goroutine.
// Submit never blocks; a request that arrives while another is being spoken
// is dropped.
type Dispatcher struct {
	speaker Speaker
	logger  zerolog.Logger

	busy    atomic.Bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	dropped atomic.Int64

	// OnError, if set, is called after a failed Speak.
	OnError func(err error)
}

// NewDispatcher creates a Dispatcher for speaker.
func NewDispatcher(speaker Speaker, logger zerolog.Logger) *Dispatcher {
	if speaker == nil {
		speaker = Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		speaker: speaker,
		logger:  logger.With().Str("component", "speech").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit starts speaking text in the background and reports whether the
// request was accepted.
func (d *Dispatcher) Submit(text string, lang gesture.Language) bool {
	if text == "" || d.ctx.Err() != nil {
		return false
	}
	if !d.busy.CompareAndSwap(false, true) {
		d.dropped.Add(1)
		d.logger.Debug().Str("text", text).Msg("speaker busy, request dropped")
		return false
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.busy.Store(false)

		if err := d.speaker.Speak(d.ctx, text, lang); err != nil {
			d.logger.Warn().Err(err).Str("text", text).Str("lang", string(lang)).Msg("speak failed")
			if d.OnError != nil {
				d.OnError(err)
			}
		}
	}()
	return true
}

// Busy reports whether a request is in flight.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Dropped returns how many requests were dropped because the speaker was busy.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close cancels any in-flight request and waits for it to return.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
