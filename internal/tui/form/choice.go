package form

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// NotSelected is shown for a choice nobody picked.
const NotSelected = "Not selected"

// SelectField picks one value from a fixed list with ←/→.
type SelectField struct {
	base
	options  []string
	selected int // -1 when nothing is picked
}

// NewSelect creates a single-choice field with nothing selected.
func NewSelect(label string, options []string, opts ...Option) *SelectField {
	return &SelectField{base: newBase(label, opts), options: options, selected: -1}
}

// Value returns the picked option, or "".
func (f *SelectField) Value() string {
	if f.selected < 0 {
		return ""
	}
	return f.options[f.selected]
}

// SetValue picks v. Values outside the option list clear the field.
func (f *SelectField) SetValue(v string) {
	f.selected = slices.Index(f.options, v)
}

func (f *SelectField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *SelectField) Blur() { f.focused = false }

func (f *SelectField) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyPressMsg)
	if !ok || !f.focused || len(f.options) == 0 {
		return nil
	}
	switch k.String() {
	case "right", "l", "space":
		f.selected = (f.selected + 1) % len(f.options)
	case "left", "h":
		if f.selected <= 0 {
			f.selected = len(f.options) - 1
		} else {
			f.selected--
		}
	case "backspace", "delete":
		f.selected = -1
	default:
		return nil
	}
	f.invalid = false
	return nil
}

func (f *SelectField) View(width int) string {
	s := theme.Current().S()
	var value string
	if f.selected < 0 {
		value = s.Placeholder.Render(NotSelected)
	} else {
		value = s.Value.Render(f.options[f.selected])
	}
	line := value
	if f.focused {
		pos := "-"
		if f.selected >= 0 {
			pos = fmt.Sprint(f.selected + 1)
		}
		line = s.HintKey.Render("‹ ") + value + s.HintKey.Render(" ›") +
			s.MutedText.Render(fmt.Sprintf("  %s/%d", pos, len(f.options)))
	}
	return f.renderLabel() + "\n" + lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// CheckboxGroup picks any number of values. ←/→ move, space toggles.
type CheckboxGroup struct {
	base
	options []string
	checked []bool
	cursor  int
}

// NewCheckboxGroup creates a multi-choice field with nothing checked.
func NewCheckboxGroup(label string, options []string, opts ...Option) *CheckboxGroup {
	return &CheckboxGroup{base: newBase(label, opts), options: options, checked: make([]bool, len(options))}
}

// Values returns the checked options in list order.
func (f *CheckboxGroup) Values() []string {
	var out []string
	for i, ok := range f.checked {
		if ok {
			out = append(out, f.options[i])
		}
	}
	return out
}

// SetValues checks exactly the given options.
func (f *CheckboxGroup) SetValues(values []string) {
	for i, o := range f.options {
		f.checked[i] = slices.Contains(values, o)
	}
}

// IsChecked reports whether option is checked.
func (f *CheckboxGroup) IsChecked(option string) bool {
	i := slices.Index(f.options, option)
	return i >= 0 && f.checked[i]
}

func (f *CheckboxGroup) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *CheckboxGroup) Blur() { f.focused = false }

func (f *CheckboxGroup) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyPressMsg)
	if !ok || !f.focused || len(f.options) == 0 {
		return nil
	}
	switch k.String() {
	case "right", "l":
		f.cursor = (f.cursor + 1) % len(f.options)
	case "left", "h":
		f.cursor = (f.cursor - 1 + len(f.options)) % len(f.options)
	case "space", "x":
		f.checked[f.cursor] = !f.checked[f.cursor]
		f.invalid = false
	}
	return nil
}

func (f *CheckboxGroup) View(width int) string {
	s := theme.Current().S()
	items := make([]string, len(f.options))
	for i, o := range f.options {
		box := "[ ] "
		if f.checked[i] {
			box = "[x] "
		}
		style := s.Option
		if f.focused && i == f.cursor {
			style = s.Selected
		} else if f.checked[i] {
			style = s.Value.Padding(0, 1)
		}
		items[i] = style.Render(box + o)
	}

	// Wrap items to the available width
	var lines []string
	var line string
	for _, item := range items {
		if line != "" && lipgloss.Width(line)+lipgloss.Width(item) > width {
			lines = append(lines, line)
			line = ""
		}
		line += item
	}
	if line != "" {
		lines = append(lines, line)
	}
	return f.renderLabel() + "\n" + strings.Join(lines, "\n")
}
