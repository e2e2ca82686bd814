package wizard

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/tui/form"
)

// jumpMsg asks the wizard to go back to an earlier step.
type jumpMsg struct {
	step listing.Step
}

// ReviewStep shows the read-only preview of the whole draft.
type ReviewStep struct {
	viewport viewport.Model // Scrollable viewport for the preview
	content  string         // Preview markdown
	width    int
	height   int
}

// NewReviewStep creates a new review step.
func NewReviewStep() *ReviewStep {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return &ReviewStep{
		viewport: vp,
		width:    60,
		height:   20,
	}
}

// renderMarkdown renders markdown with glamour, falling back to plain text
// if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

// Load renders the preview of d and scrolls to the top.
func (s *ReviewStep) Load(d listing.Draft) {
	s.content = listing.Markdown(d)
	s.viewport.SetContent(renderMarkdown(s.content, s.width))
	s.viewport.GotoTop()
}

// Content returns the preview markdown.
func (s *ReviewStep) Content() string {
	return s.content
}

// SetSize updates the dimensions for the review step.
func (s *ReviewStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.SetWidth(width)

	// Reserve space for hint bar
	s.viewport.SetHeight(max(5, height-2))
	if s.content != "" {
		s.viewport.SetContent(renderMarkdown(s.content, width))
	}
}

// Update handles messages for the review step.
func (s *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch key := k.String(); key {
		case "tab":
			return func() tea.Msg { return form.ExitForwardMsg{} }
		case "shift+tab":
			return func() tea.Msg { return form.ExitBackwardMsg{} }
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			step := listing.Step(key[0] - '1')
			return func() tea.Msg { return jumpMsg{step: step} }
		}
	}

	// Forward viewport messages (scrolling, etc.)
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// View renders the review step.
func (s *ReviewStep) View() string {
	var b strings.Builder
	b.WriteString(s.viewport.View())
	b.WriteString("\n")
	b.WriteString(form.RenderHintBar(
		"↑↓", "scroll",
		"1-9", "edit step",
		"tab", "buttons",
		"ctrl+n", "submit",
	))
	return b.String()
}
