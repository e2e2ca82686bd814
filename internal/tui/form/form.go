package form

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// ExitForwardMsg is sent when focus leaves the last field forwards.
type ExitForwardMsg struct{}

// ExitBackwardMsg is sent when focus leaves the first field backwards.
type ExitBackwardMsg struct{}

// Form cycles focus through its fields and marks fields named by
// validation failures.
type Form struct {
	fields     []Field
	focus      int
	width      int
	violations []string
}

// New creates a form. No field is focused until Focus is called.
func New(fields ...Field) *Form {
	return &Form{fields: fields, width: 60}
}

// Fields returns the form fields.
func (f *Form) Fields() []Field {
	return f.fields
}

// SetWidth sets the render width.
func (f *Form) SetWidth(w int) {
	f.width = w
}

// Focus focuses the first field.
func (f *Form) Focus() tea.Cmd {
	return f.focusAt(0)
}

// FocusLast focuses the last field.
func (f *Form) FocusLast() tea.Cmd {
	return f.focusAt(len(f.fields) - 1)
}

// Blur removes focus from every field.
func (f *Form) Blur() {
	for _, fd := range f.fields {
		fd.Blur()
	}
}

// FocusedField returns the focused field, or nil.
func (f *Form) FocusedField() Field {
	for _, fd := range f.fields {
		if fd.Focused() {
			return fd
		}
	}
	return nil
}

func (f *Form) focusAt(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.Blur()
	f.focus = max(0, min(i, len(f.fields)-1))
	return f.fields[f.focus].Focus()
}

// MarkInvalid flags every field a violation refers to and remembers the
// violations for display. Fields not named are cleared.
func (f *Form) MarkInvalid(violations []string) {
	f.violations = violations
	for _, fd := range f.fields {
		bad := false
		for _, v := range violations {
			if fd.Matches(v) {
				bad = true
				break
			}
		}
		fd.SetInvalid(bad)
	}
}

// Violations returns the labels passed to the last MarkInvalid.
func (f *Form) Violations() []string {
	return f.violations
}

// Update handles focus movement and forwards everything else to the
// focused field.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "tab", "down", "enter":
			if f.focus >= len(f.fields)-1 {
				f.Blur()
				return func() tea.Msg { return ExitForwardMsg{} }
			}
			return f.focusAt(f.focus + 1)
		case "shift+tab", "up":
			if f.focus == 0 {
				f.Blur()
				return func() tea.Msg { return ExitBackwardMsg{} }
			}
			return f.focusAt(f.focus - 1)
		}
	}
	if fd := f.FocusedField(); fd != nil {
		return fd.Update(msg)
	}
	return nil
}

// View renders the fields, then the outstanding violations.
func (f *Form) View() string {
	return f.ViewWindow(0)
}

// ViewWindow is View with the fields cut to at most height lines, scrolled
// so the focused field stays visible. A height of zero shows every field.
func (f *Form) ViewWindow(height int) string {
	s := theme.Current().S()
	views := make([]string, len(f.fields))
	for i, fd := range f.fields {
		views[i] = fd.View(f.width)
	}
	body := strings.Join(views, "\n\n")

	lines := strings.Split(body, "\n")
	if height > 0 && len(lines) > height && len(views) > 0 {
		top := 0
		for i := 0; i < f.focus && i < len(views); i++ {
			top += lipgloss.Height(views[i]) + 1
		}
		bottom := top + lipgloss.Height(views[min(f.focus, len(views)-1)])
		start := max(0, bottom-height)
		if top < start {
			start = top
		}
		body = strings.Join(lines[start:min(len(lines), start+height)], "\n")
	}

	if len(f.violations) > 0 {
		body += "\n\n" + s.ErrorText.Width(f.width).Render("Please fill in: "+strings.Join(f.violations, ", "))
	}
	return body
}
