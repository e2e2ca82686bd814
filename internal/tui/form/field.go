// Package form provides the field primitives the listing editors are built
// from: single-line text, single choice, multi choice, a focus-cycling form
// container, a button bar and the hint bar.
package form

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// Field is one focusable form control.
type Field interface {
	Label() string
	// Matches reports whether a validation label refers to this field.
	Matches(violation string) bool
	Focus() tea.Cmd
	Blur()
	Focused() bool
	SetInvalid(bool)
	Invalid() bool
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
}

// Option configures a field.
type Option func(*base)

// Reports makes the field light up for an extra validation label, e.g. a
// latitude input for "Coordinates".
func Reports(violations ...string) Option {
	return func(b *base) { b.reports = append(b.reports, violations...) }
}

// Required marks the label with an asterisk.
func Required() Option {
	return func(b *base) { b.required = true }
}

// base holds the state every field shares.
type base struct {
	label    string
	reports  []string
	required bool
	focused  bool
	invalid  bool
}

func newBase(label string, opts []Option) base {
	b := base{label: label}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Label() string { return b.label }

func (b *base) Matches(violation string) bool {
	if violation == b.label || strings.HasPrefix(violation, b.label+" (") {
		return true
	}
	for _, r := range b.reports {
		if violation == r {
			return true
		}
	}
	return false
}

func (b *base) Focused() bool     { return b.focused }
func (b *base) SetInvalid(v bool) { b.invalid = v }
func (b *base) Invalid() bool     { return b.invalid }

func (b *base) renderLabel() string {
	s := theme.Current().S()
	text := b.label
	if b.required {
		text += " *"
	}
	switch {
	case b.invalid:
		return s.LabelError.Render(text)
	case b.focused:
		return s.LabelFocused.Render(text)
	}
	return s.Label.Render(text)
}

// navKey reports whether the key moves focus between fields.
func navKey(msg tea.Msg) bool {
	k, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false
	}
	switch k.String() {
	case "tab", "shift+tab", "up", "down", "enter":
		return true
	}
	return false
}
