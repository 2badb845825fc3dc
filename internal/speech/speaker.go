// Package speech voices recognized symbols without stalling the frame loop.
package speech

import (
	"context"

	"github.com/ayusman/mudra/internal/gesture"
)

// Speaker renders text as audio in the voice for lang.
type Speaker interface {
	Speak(ctx context.Context, text string, lang gesture.Language) error
}

// Nop is a Speaker that discards everything. It is used when speech is disabled.
type Nop struct{}

// Speak implements Speaker.
func (Nop) Speak(context.Context, string, gesture.Language) error { return nil }

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, text string, lang gesture.Language) error

// Speak implements Speaker.
func (f SpeakerFunc) Speak(ctx context.Context, text string, lang gesture.Language) error {
	return f(ctx, text, lang)
}
