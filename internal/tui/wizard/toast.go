package wizard

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// toastDuration is how long a toast stays on screen.
const toastDuration = 3 * time.Second

// ToastDismissMsg is sent when the toast should be dismissed.
type ToastDismissMsg struct {
	seq int
}

// toastKind selects the toast colours.
type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

// Toast is a one-line notification at the bottom of the screen that
// dismisses itself. A newer toast replaces the current one.
type Toast struct {
	message string
	kind    toastKind
	visible bool
	seq     int // identifies the toast a dismissal belongs to
}

// NewToast creates a new Toast component.
func NewToast() *Toast {
	return &Toast{}
}

// Show displays a toast and returns the command that dismisses it.
func (t *Toast) Show(msg string, kind toastKind) tea.Cmd {
	t.seq++
	t.message = msg
	t.kind = kind
	t.visible = true
	seq := t.seq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastDismissMsg{seq: seq}
	})
}

// Update handles messages for the toast component.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	if m, ok := msg.(ToastDismissMsg); ok && m.seq == t.seq {
		t.visible = false
		t.message = ""
	}
	return nil
}

// View renders the toast right-aligned in width. Returns empty string if
// the toast is not visible.
func (t *Toast) View(width int) string {
	if !t.visible || t.message == "" {
		return ""
	}

	th := theme.Current()
	bg := th.Info
	switch t.kind {
	case toastSuccess:
		bg = th.Success
	case toastError:
		bg = th.Error
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(th.BgBase)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Bold(true)

	content := style.Render(t.message)
	if lipgloss.Width(content) > width-2 {
		content = style.Width(max(10, width-2)).Render(t.message)
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Right).
		PaddingRight(1).
		Render(content)
}

// IsVisible returns whether the toast is currently visible.
func (t *Toast) IsVisible() bool {
	return t.visible
}

// Message returns the current toast message (empty if not visible).
func (t *Toast) Message() string {
	if !t.visible {
		return ""
	}
	return t.message
}
