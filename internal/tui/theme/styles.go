package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style

	// Step indicator
	StepDone    lipgloss.Style
	StepCurrent lipgloss.Style
	StepPending lipgloss.Style

	// Form fields
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	LabelError   lipgloss.Style
	Value        lipgloss.Style
	Placeholder  lipgloss.Style
	Selected     lipgloss.Style
	Option       lipgloss.Style
	ErrorText    lipgloss.Style
	SuccessText  lipgloss.Style
	MutedText    lipgloss.Style

	// Hint bar
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	// Buttons
	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	// Modal
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style
}
