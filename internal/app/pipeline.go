package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/practice"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// ErrNoCamera is returned by Run when the app has no camera.
var ErrNoCamera = errors.New("no camera configured")

// Run opens the camera and processes frames until ctx is cancelled or a quit
// command is applied. The camera and detector are closed on return.
//
// Each tick:
// 1. Read a frame (skip the tick on error)
// 2. Keep a JPEG copy if the stream is being watched
// 3. Detect hands (skip the tick on error; this is not a NoHand frame)
// 4. Feed the first hand, or none, to the engine
// 5. Dispatch speech, judge practice, publish the result
func (a *App) Run(ctx context.Context) error {
	if a.camera == nil {
		return ErrNoCamera
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.logger.Error().Err(err).Msg("error closing camera")
		}
		if d := a.Detector(); d != nil {
			if err := d.Close(); err != nil {
				a.logger.Error().Err(err).Msg("error closing detector")
			}
		}
	}()

	interval := time.Second / time.Duration(a.camera.FPS())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info().Dur("interval", interval).Msg("recognition pipeline started")
	defer a.logger.Info().Msg("recognition pipeline stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.engine.Done():
			return nil
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			a.Step(now)
		}
	}
}

// Step processes one camera frame captured at now. It reports false when the
// frame was skipped because of a read or detection error.
func (a *App) Step(now time.Time) (session.FrameResult, bool) {
	if a.camera == nil {
		return session.FrameResult{}, false
	}

	start := time.Now()
	defer func() { a.metrics.FrameDuration.Observe(time.Since(start).Seconds()) }()

	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.metrics.RecordError("camera")
		a.logger.Warn().Err(err).Msg("error reading frame")
		return session.FrameResult{}, false
	}
	defer frame.Close()

	if a.watchers.Load() > 0 {
		if data, err := capture.EncodeJPEG(frame); err == nil {
			a.setJPEG(data, now)
		}
	}

	d := a.Detector()
	if d == nil {
		return session.FrameResult{}, false
	}

	hands, err := d.Detect(frame)
	if err != nil {
		a.metrics.RecordError("detector")
		a.logger.Warn().Err(err).Msg("error detecting hands")
		return session.FrameResult{}, false
	}

	return a.Submit(detector.FirstHand(hands), now), true
}

// Submit runs one hand observation through the engine and handles the
// result. A nil hand is a frame without a hand. It is used by the camera
// loop and by clients that run detection themselves.
func (a *App) Submit(hand *detector.HandLandmarks, now time.Time) session.FrameResult {
	res := a.engine.ProcessFrame(hand, now)
	a.metrics.Frames.WithLabelValues(strconv.FormatBool(res.Hand)).Inc()

	if res.Speak != nil {
		if a.dispatcher.Submit(res.Speak.Text, res.Speak.Language) {
			a.metrics.RecordSpeak("sent")
		} else {
			a.metrics.RecordSpeak("dropped")
		}
	}

	if res.Commit != nil {
		a.metrics.TextLength.Set(float64(len([]rune(res.Text))))
	}

	a.judgePractice(res)
	a.publish(res)
	return res
}

func (a *App) judgePractice(res session.FrameResult) {
	// Only letters are judged, and only while a hand is in frame.
	present := res.Hand && res.Raw.IsReal() && res.Session.Mode == gesture.Letters
	j, ok := a.drill.Observe(res.Smoothed, present, res.Time)
	if !ok {
		return
	}

	st := a.drill.Status()
	a.metrics.Practice.WithLabelValues(string(st.Language), string(j.Feedback)).Inc()
	a.logger.Info().
		Str("target", string(j.Target)).
		Str("signed", string(j.Signed)).
		Str("feedback", string(j.Feedback)).
		Msg("practice judged")

	if j.Feedback == practice.Correct && a.engine.AllowSpeech(j.Time) {
		if a.dispatcher.Submit(string(j.Signed), st.Language) {
			a.metrics.RecordSpeak("sent")
		} else {
			a.metrics.RecordSpeak("dropped")
		}
	}

	if a.store == nil {
		return
	}
	err := a.store.Practice().Record(&store.PracticeRun{
		Language:  string(st.Language),
		Target:    string(j.Target),
		Signed:    string(j.Signed),
		Result:    string(j.Feedback),
		Attempt:   st.Attempts,
		CreatedAt: j.Time,
	})
	if err != nil {
		a.metrics.RecordError("store")
		a.logger.Error().Err(err).Msg("failed to record practice run")
	}
}
