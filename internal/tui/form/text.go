package form

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

type inputKind int

const (
	kindText inputKind = iota
	kindInteger
	kindDecimal
)

// TextField is a single-line text input.
type TextField struct {
	base
	kind  inputKind
	input textinput.Model
}

// NewText creates a free text input.
func NewText(label, placeholder string, opts ...Option) *TextField {
	return newTextField(label, placeholder, kindText, opts)
}

// NewInteger creates an input that accepts digits only.
func NewInteger(label, placeholder string, opts ...Option) *TextField {
	return newTextField(label, placeholder, kindInteger, opts)
}

// NewDecimal creates an input that accepts a signed decimal number.
func NewDecimal(label, placeholder string, opts ...Option) *TextField {
	return newTextField(label, placeholder, kindDecimal, opts)
}

func newTextField(label, placeholder string, kind inputKind, opts []Option) *TextField {
	t := theme.Current()
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	input.SetWidth(40)
	if kind != kindText {
		input.CharLimit = 16
	}
	return &TextField{base: newBase(label, opts), kind: kind, input: input}
}

// Value returns the trimmed input.
func (f *TextField) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// SetValue replaces the input.
func (f *TextField) SetValue(v string) {
	f.input.SetValue(v)
}

// Int parses the input as a whole number. Empty or invalid input is zero.
func (f *TextField) Int() int {
	n, _ := strconv.Atoi(f.Value())
	return n
}

// IntPtr is Int with empty or invalid input reported as nil.
func (f *TextField) IntPtr() *int {
	n, err := strconv.Atoi(f.Value())
	if err != nil {
		return nil
	}
	return &n
}

// Float parses the input as a decimal. Empty or invalid input is zero.
func (f *TextField) Float() float64 {
	v, _ := strconv.ParseFloat(f.Value(), 64)
	return v
}

// FloatPtr is nil for empty input and NaN for input that does not parse,
// so that validation rejects it instead of treating it as absent.
func (f *TextField) FloatPtr() *float64 {
	if f.Value() == "" {
		return nil
	}
	v, err := strconv.ParseFloat(f.Value(), 64)
	if err != nil {
		v = math.NaN()
	}
	return &v
}

// SetInt shows n, or clears the input when n is zero.
func (f *TextField) SetInt(n int) {
	if n == 0 {
		f.SetValue("")
		return
	}
	f.SetValue(strconv.Itoa(n))
}

// SetIntPtr shows *p, or clears the input when p is nil.
func (f *TextField) SetIntPtr(p *int) {
	if p == nil {
		f.SetValue("")
		return
	}
	f.SetValue(strconv.Itoa(*p))
}

// SetFloat shows v, or clears the input when v is zero.
func (f *TextField) SetFloat(v float64) {
	if v == 0 {
		f.SetValue("")
		return
	}
	f.SetValue(strconv.FormatFloat(v, 'f', -1, 64))
}

// SetFloatPtr shows *p, or clears the input when p is nil.
func (f *TextField) SetFloatPtr(p *float64) {
	if p == nil {
		f.SetValue("")
		return
	}
	f.SetValue(strconv.FormatFloat(*p, 'f', -1, 64))
}

func (f *TextField) Focus() tea.Cmd {
	f.focused = true
	return f.input.Focus()
}

func (f *TextField) Blur() {
	f.focused = false
	f.input.Blur()
}

// accepts filters typed text for numeric inputs.
func (f *TextField) accepts(text string) bool {
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
		case f.kind == kindDecimal && (r == '.' || r == '-'):
		case f.kind == kindText:
		default:
			return false
		}
	}
	return true
}

func (f *TextField) Update(msg tea.Msg) tea.Cmd {
	if !f.focused || navKey(msg) {
		return nil
	}
	if k, ok := msg.(tea.KeyPressMsg); ok && len(k.Text) > 0 && !f.accepts(k.Text) {
		return nil
	}
	if p, ok := msg.(tea.PasteMsg); ok && !f.accepts(p.Content) {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.invalid = false
	return cmd
}

func (f *TextField) View(width int) string {
	f.input.SetWidth(max(10, width-2))
	return f.renderLabel() + "\n" + f.input.View()
}
