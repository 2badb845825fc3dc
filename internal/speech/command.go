package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrEmptyCommand is returned when a CommandSpeaker has no program configured.
var ErrEmptyCommand = errors.New("speech command not configured")

// CommandSpeaker speaks by running an external text-to-speech program such as
// espeak-ng. Args may contain the placeholders {voice} and {text}; when no
// argument contains {text} the text is written to the program's stdin.
type CommandSpeaker struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandSpeaker creates a CommandSpeaker. A non-positive timeout means 10s.
func NewCommandSpeaker(command string, args []string, timeout time.Duration) *CommandSpeaker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CommandSpeaker{
		command: command,
		args:    append([]string(nil), args...),
		timeout: timeout,
	}
}

// Speak runs the configured program and waits for it to finish or time out.
func (s *CommandSpeaker) Speak(ctx context.Context, text string, lang gesture.Language) error {
	if s.command == "" {
		return ErrEmptyCommand
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args, usesText := s.expandArgs(text, lang.Voice())
	cmd := exec.CommandContext(ctx, s.command, args...)
	if !usesText {
		cmd.Stdin = strings.NewReader(text)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("speech command timeout after %s", s.timeout)
	}

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("speech command failed: %w, stderr: %s", err, msg)
		}
		return fmt.Errorf("speech command failed: %w", err)
	}

	return nil
}

func (s *CommandSpeaker) expandArgs(text, voice string) ([]string, bool) {
	out := make([]string, len(s.args))
	usesText := false
	for i, a := range s.args {
		if strings.Contains(a, "{text}") {
			usesText = true
		}
		a = strings.ReplaceAll(a, "{voice}", voice)
		out[i] = strings.ReplaceAll(a, "{text}", text)
	}
	return out, usesText
}
