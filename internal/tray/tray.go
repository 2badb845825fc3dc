// Package tray provides a system tray control surface for the mudra sign
// recognizer.
package tray

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
)

// previewRunes is how much of the accumulated text the menu shows.
const previewRunes = 32

// Tray represents the system tray application.
type Tray struct {
	onCommand  func(cmd session.Command)
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	state      session.State
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuLanguage *systray.MenuItem
	menuMode     *systray.MenuItem
	menuLast     *systray.MenuItem
	menuText     *systray.MenuItem
}

// New creates a new Tray instance with recognition enabled and the given
// initial session state.
func New(state session.State) *Tray {
	return &Tray{
		enabled: true,
		state:   state,
	}
}

// OnCommand sets the callback for session commands chosen from the menu.
func (t *Tray) OnCommand(fn func(cmd session.Command)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommand = fn
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra sign to text")

	t.mu.Lock()
	st := t.state

	t.menuToggle = systray.AddMenuItem("● Enabled", "Toggle sign recognition")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastTitle(""), "Last recognized sign")
	t.menuLast.Disable()
	t.menuText = systray.AddMenuItem(textTitle(""), "Accumulated text")
	t.menuText.Disable()
	systray.AddSeparator()

	t.menuLanguage = systray.AddMenuItem(languageTitle(st.Language), "Switch between English and Arabic")
	t.menuMode = systray.AddMenuItem(modeTitle(st.Mode), "Switch between letters and words")
	t.mu.Unlock()
	systray.AddSeparator()

	menuAppend := systray.AddMenuItem("Append current sign", "Append the recognized sign now")
	menuSpace := systray.AddMenuItem("Space", "Append a space")
	menuBackspace := systray.AddMenuItem("Backspace", "Delete the last character")
	menuClear := systray.AddMenuItem("Clear", "Clear the text")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuLanguage.ClickedCh:
				t.handleCommand(session.ToggleLanguage)
			case <-t.menuMode.ClickedCh:
				t.handleCommand(session.ToggleMode)
			case <-menuAppend.ClickedCh:
				t.handleCommand(session.Append)
			case <-menuSpace.ClickedCh:
				t.handleCommand(session.Space)
			case <-menuBackspace.ClickedCh:
				t.handleCommand(session.Backspace)
			case <-menuClear.ClickedCh:
				t.handleCommand(session.Clear)
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleCommand(cmd session.Command) {
	t.mu.RLock()
	callback := t.onCommand
	t.mu.RUnlock()

	if callback != nil {
		callback(cmd)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Update refreshes the menu from a frame result.
func (t *Tray) Update(res session.FrameResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.menuLast == nil {
		t.state = res.Session
		return
	}

	t.menuLast.SetTitle(lastTitle(res.Smoothed))
	t.menuText.SetTitle(textTitle(res.Text))
	if res.Session != t.state {
		t.state = res.Session
		t.menuLanguage.SetTitle(languageTitle(res.Session.Language))
		t.menuMode.SetTitle(modeTitle(res.Session.Mode))
	}
}

// Follow updates the menu from results until ctx is done or results closes.
func (t *Tray) Follow(ctx context.Context, results <-chan session.FrameResult) {
	var last session.FrameResult
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			// Skip redundant menu redraws at frame rate.
			if res.Smoothed == last.Smoothed && res.Text == last.Text && res.Session == last.Session {
				continue
			}
			last = res
			t.Update(res)
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// State returns the session state last shown in the menu.
func (t *Tray) State() session.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func lastTitle(sym gesture.Symbol) string {
	if !sym.IsReal() {
		return "Last: none"
	}
	return "Last: " + string(sym)
}

func textTitle(text string) string {
	if text == "" {
		return "Text: (empty)"
	}
	return "Text: " + preview(text, previewRunes)
}

func languageTitle(lang gesture.Language) string {
	return fmt.Sprintf("Language: %s", lang)
}

func modeTitle(mode gesture.Mode) string {
	return fmt.Sprintf("Mode: %s", mode)
}

// preview returns the last n runes of text, prefixed with an ellipsis when
// truncated.
func preview(text string, n int) string {
	count := utf8.RuneCountInString(text)
	if count <= n {
		return text
	}
	r := []rune(text)
	return "…" + string(r[count-n:])
}
