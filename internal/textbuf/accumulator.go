// Package textbuf holds the text composed from committed sign symbols.
package textbuf

import (
	"strings"
	"unicode/utf8"

	"github.com/ayusman/mudra/internal/gesture"
)

// Accumulator is the growing output text. It is not safe for concurrent use;
// the session engine serializes access.
type Accumulator struct {
	b strings.Builder
}

// New returns an Accumulator seeded with initial text.
func New(initial string) *Accumulator {
	a := &Accumulator{}
	a.b.WriteString(initial)
	return a
}

// AutoAppend appends a committed symbol. In Words mode a single space
// separates it from existing text; in Letters mode it is appended directly.
// Sentinels are ignored.
func (a *Accumulator) AutoAppend(sym gesture.Symbol, mode gesture.Mode) {
	if !sym.IsReal() {
		return
	}
	if mode == gesture.Words && a.b.Len() > 0 {
		a.b.WriteByte(' ')
	}
	a.b.WriteString(string(sym))
}

// ManualAppend appends sym with the same separator rule as AutoAppend and
// reports whether anything was appended.
func (a *Accumulator) ManualAppend(sym gesture.Symbol, mode gesture.Mode) bool {
	if !sym.IsReal() {
		return false
	}
	a.AutoAppend(sym, mode)
	return true
}

// AppendSpace appends one space unconditionally.
func (a *Accumulator) AppendSpace() {
	a.b.WriteByte(' ')
}

// Backspace removes the last character. It is a no-op on empty text.
func (a *Accumulator) Backspace() {
	s := a.b.String()
	if s == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s)
	s = s[:len(s)-size]
	a.b.Reset()
	a.b.WriteString(s)
}

// Clear empties the text.
func (a *Accumulator) Clear() {
	a.b.Reset()
}

// String returns the accumulated text.
func (a *Accumulator) String() string {
	return a.b.String()
}

// Len returns the number of characters.
func (a *Accumulator) Len() int {
	return utf8.RuneCountInString(a.b.String())
}
