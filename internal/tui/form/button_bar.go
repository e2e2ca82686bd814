package form

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling and a focus
// cursor. Disabled buttons are skipped by focus movement.
type ButtonBar struct {
	buttons []Button
	focus   int // -1 when the bar is not focused
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		focus:   -1,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetLabel relabels the button at i.
func (b *ButtonBar) SetLabel(i int, label string) {
	if i >= 0 && i < len(b.buttons) {
		b.buttons[i].Label = label
	}
}

// SetEnabled enables or disables the button at i. A focused button that
// becomes disabled loses focus to the nearest enabled one.
func (b *ButtonBar) SetEnabled(i int, enabled bool) {
	if i < 0 || i >= len(b.buttons) {
		return
	}
	if enabled {
		b.buttons[i].State = ButtonNormal
		return
	}
	b.buttons[i].State = ButtonDisabled
	if b.focus == i {
		if !b.move(1) && !b.move(-1) {
			b.focus = -1
		}
	}
}

// FocusFirst focuses the first enabled button.
func (b *ButtonBar) FocusFirst() {
	b.focus = -1
	b.move(1)
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() {
	b.focus = len(b.buttons)
	if !b.move(-1) {
		b.focus = -1
	}
}

// FocusNext moves focus right. It returns false at the last enabled button.
func (b *ButtonBar) FocusNext() bool { return b.move(1) }

// FocusPrev moves focus left. It returns false at the first enabled button.
func (b *ButtonBar) FocusPrev() bool { return b.move(-1) }

func (b *ButtonBar) move(dir int) bool {
	for i := b.focus + dir; i >= 0 && i < len(b.buttons); i += dir {
		if b.buttons[i].State != ButtonDisabled {
			b.focus = i
			return true
		}
	}
	return false
}

// Blur removes focus from the bar.
func (b *ButtonBar) Blur() { b.focus = -1 }

// Focused returns the focused button index, or -1.
func (b *ButtonBar) Focused() int { return b.focus }

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}
	s := theme.Current().S()

	renderedButtons := make([]string, 0, len(b.buttons))
	for i, btn := range b.buttons {
		var rendered string
		switch {
		case btn.State == ButtonDisabled:
			rendered = s.ButtonDisabled.Render(btn.Label)
		case i == b.focus:
			rendered = s.ButtonFocused.Render(btn.Label)
		default:
			rendered = s.ButtonNormal.Render(btn.Label)
		}
		renderedButtons = append(renderedButtons, rendered)
	}

	// Center the button bar
	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(renderedButtons, ""))
}
