package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned for a command name the engine does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a user action applied between frames.
type Command string

const (
	ToggleLanguage Command = "toggle-language"
	ToggleMode     Command = "toggle-mode"
	Append         Command = "append"
	Space          Command = "space"
	Backspace      Command = "backspace"
	Clear          Command = "clear"
	Quit           Command = "quit"
)

// Commands lists every command in menu order.
var Commands = []Command{ToggleLanguage, ToggleMode, Append, Space, Backspace, Clear, Quit}

// ParseCommand converts a command name to a Command. A few short aliases
// matching the keyboard shortcuts (l, m, a, c, q) are accepted.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toggle-language", "language", "l":
		return ToggleLanguage, nil
	case "toggle-mode", "mode", "m":
		return ToggleMode, nil
	case "append", "manual-append", "a":
		return Append, nil
	case "space":
		return Space, nil
	case "backspace":
		return Backspace, nil
	case "clear", "c":
		return Clear, nil
	case "quit", "q":
		return Quit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}
