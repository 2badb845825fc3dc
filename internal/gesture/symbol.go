// Package gesture turns hand landmarks into stabilized sign symbols.
//
// The pipeline runs once per frame: ExtractFingerState reduces a hand to five
// open/closed flags, Classify maps the flags to a Symbol through an ordered
// rule table, the Smoother votes over recent raw symbols, and the
// StabilityTracker decides when a held symbol is committed.
package gesture

import (
	"fmt"
	"strings"
)

// Symbol is a recognized letter or word, or one of the sentinels.
type Symbol string

const (
	// NoHand means no hand was detected in the frame.
	NoHand Symbol = "..."
	// Unknown means a hand was seen but its finger state matched no rule.
	Unknown Symbol = "?"
)

// IsReal reports whether s is an actual letter or word. Sentinels and the
// empty symbol are not real: they never gain votes, never commit and are
// never spoken.
func (s Symbol) IsReal() bool {
	return s != "" && s != NoHand && s != Unknown
}

// String implements fmt.Stringer.
func (s Symbol) String() string {
	return string(s)
}

// Language selects which alphabet the rule tables produce.
type Language string

const (
	English Language = "EN"
	Arabic  Language = "AR"
)

// Mode selects between fingerspelled letters and whole words.
type Mode string

const (
	Letters Mode = "LETTERS"
	Words   Mode = "WORDS"
)

// Languages lists every supported language in toggle order.
var Languages = []Language{English, Arabic}

// Modes lists every supported mode in toggle order.
var Modes = []Mode{Letters, Words}

// ParseLanguage accepts "EN"/"AR" in any case.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToUpper(strings.TrimSpace(s))) {
	case English:
		return English, nil
	case Arabic:
		return Arabic, nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// ParseMode accepts "LETTERS"/"WORDS" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case Letters:
		return Letters, nil
	case Words:
		return Words, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Next returns the other language.
func (l Language) Next() Language {
	if l == English {
		return Arabic
	}
	return English
}

// Next returns the other mode.
func (m Mode) Next() Mode {
	if m == Letters {
		return Words
	}
	return Letters
}

// Voice returns the BCP 47 primary tag used when speaking this language.
func (l Language) Voice() string {
	if l == Arabic {
		return "ar"
	}
	return "en"
}
