package wizard

import (
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// RetryModal asks whether to retry a save that failed for a transient
// reason. Nothing the user entered is lost either way.
type RetryModal struct {
	title   string
	message string
	visible bool
}

// NewRetryModal creates a hidden retry modal.
func NewRetryModal() *RetryModal {
	return &RetryModal{}
}

// Show makes the modal visible with the given title and message.
func (m *RetryModal) Show(title, message string) {
	m.title = title
	m.message = message
	m.visible = true
}

// Hide hides the modal.
func (m *RetryModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is currently visible.
func (m *RetryModal) IsVisible() bool {
	return m.visible
}

// Render renders the modal.
func (m *RetryModal) Render() string {
	return renderDialog(m.title, m.message, "Press Y to retry, N or ESC to keep editing", theme.Current().Warning)
}

// renderFatal renders the screen shown when the wizard cannot continue.
func renderFatal(message string) string {
	return renderDialog("Cannot continue", message, "Press any key to exit", theme.Current().Error)
}

func renderDialog(title, message, prompt, accent string) string {
	t := theme.Current()

	titleText := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(accent)).
		MarginBottom(1).
		Render("⚠ " + title)

	messageText := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgBase)).
		MarginBottom(1).
		Render(message)

	promptText := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgMuted)).
		Render(prompt)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleText,
		messageText,
		"",
		promptText,
	)

	return lipgloss.NewStyle().
		Width(50).
		Padding(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(accent)).
		Render(content)
}
