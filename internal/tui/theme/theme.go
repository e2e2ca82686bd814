// Package theme holds the color palette and pre-built styles of the TUI.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var (
	current     *Theme
	currentOnce sync.Once
)

// Current returns the active theme.
func Current() *Theme {
	currentOnce.Do(func() {
		current = NewCatppuccinMocha()
	})
	return current
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)
	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		StepDone:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		StepCurrent: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true),
		StepPending: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),

		Label:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
		LabelFocused: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Bold(true),
		LabelError:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true),
		Value:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
		Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		Selected:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgBase)).Background(lipgloss.Color(t.Secondary)).Padding(0, 1),
		Option:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Padding(0, 1),
		ErrorText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)),
		SuccessText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		MutedText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),

		HintKey:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface1)),

		ButtonNormal:   button.Foreground(lipgloss.Color(t.FgBase)).Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.Foreground(lipgloss.Color(t.FgMuted)).Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused:  button.Foreground(lipgloss.Color(t.BgBase)).Background(lipgloss.Color(t.Secondary)).Bold(true),

		ModalContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Secondary)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
	}
}
