// Package wizard is the full-screen listing wizard: one section editor per
// data step, the media step, the review step, toasts for background events
// and a retry prompt for failed saves. All state changes go through the
// listing controller.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	xeditor "github.com/charmbracelet/x/editor"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/logger"
	"github.com/mark3labs/rentr/internal/tui/form"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// ErrCancelled is returned by Run when the user leaves before completing.
var ErrCancelled = errors.New("wizard cancelled by user")

// Result holds the outcome of a wizard run.
type Result struct {
	PropertyID string // Empty if the listing was never created
	Completed  bool
}

// advanceDoneMsg carries the outcome of a controller Advance.
type advanceDoneMsg struct {
	res listing.AdvanceResult
	err error
}

// descriptionEditedMsg is sent when $EDITOR returns with a new description.
type descriptionEditedMsg struct {
	content string
}

const (
	buttonBack = iota
	buttonNext
)

// Model is the BubbleTea model of the listing wizard.
type Model struct {
	ctrl    *listing.Controller
	editors map[listing.Step]*editor
	media   *MediaStep
	review  *ReviewStep
	buttons *form.ButtonBar
	toast   *Toast
	retry   *RetryModal

	buttonsFocused bool
	advancing      bool  // an Advance is waiting on the backend
	hadProperty    bool  // a property id existed when the advance started
	fatal          error // shown full screen; any key exits
	cancelled      bool
	completed      bool
	width          int
	height         int
}

// New creates the wizard model for ctrl, positioned on the controller's
// current step.
func New(ctrl *listing.Controller) *Model {
	m := &Model{
		ctrl:    ctrl,
		editors: newEditors(),
		media:   NewMediaStep(ctrl),
		review:  NewReviewStep(),
		buttons: form.NewButtonBar([]form.Button{{Label: "← Back"}, {Label: "Next →"}}),
		toast:   NewToast(),
		retry:   NewRetryModal(),
		width:   100,
		height:  40,
	}
	m.resize()
	m.enterStep()
	return m
}

// Run is the entry point for the listing wizard. It runs a standalone
// BubbleTea program until the listing is completed or the user quits.
func Run(ctrl *listing.Controller) (*Result, error) {
	m := New(ctrl)

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wm, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if wm.fatal != nil {
		return nil, wm.fatal
	}

	result := &Result{PropertyID: ctrl.PropertyID(), Completed: wm.completed}
	if wm.cancelled {
		return result, ErrCancelled
	}
	return result, nil
}

// Cancelled reports whether the user quit before completing.
func (m *Model) Cancelled() bool { return m.cancelled }

// Completed reports whether the review step was submitted.
func (m *Model) Completed() bool { return m.completed }

// Fatal returns the error the wizard stopped on, if any.
func (m *Model) Fatal() error { return m.fatal }

// Init focuses the current step.
func (m *Model) Init() tea.Cmd {
	return m.focusCurrent()
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case advanceDoneMsg:
		return m, m.advanceDone(msg)

	case uploadDoneMsg:
		m.media.Update(msg)
		switch {
		case errors.Is(msg.err, listing.ErrSuperseded):
			return m, nil
		case msg.err != nil:
			return m, m.toast.Show(msg.key.Label()+": "+msg.err.Error(), toastError)
		}
		return m, m.toast.Show("Uploaded "+msg.key.Label(), toastSuccess)

	case descriptionEditedMsg:
		if ed := m.editors[listing.StepFeatures]; ed.description != nil {
			ed.description.SetValue(strings.Join(strings.Fields(msg.content), " "))
		}
		return m, nil

	case jumpMsg:
		return m, m.jump(msg.step)

	case ToastDismissMsg:
		return m, m.toast.Update(msg)

	case form.ExitForwardMsg:
		m.buttonsFocused = true
		m.buttons.FocusLast()
		return m, nil

	case form.ExitBackwardMsg:
		m.buttonsFocused = true
		m.buttons.FocusFirst()
		return m, nil
	}

	return m, m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancelled = true
		return tea.Quit
	}
	if m.fatal != nil {
		return tea.Quit
	}
	if m.retry.IsVisible() {
		switch key {
		case "y", "Y":
			m.retry.Hide()
			return m.startAdvance()
		case "n", "N", "esc":
			m.retry.Hide()
		}
		return nil
	}
	if m.advancing {
		return nil
	}

	switch key {
	case "esc":
		if m.ctrl.Current() == listing.StepMedia && m.media.Editing() {
			return m.media.Update(msg)
		}
		if m.ctrl.Index() == 0 {
			m.cancelled = true
			return tea.Quit
		}
		return m.back()
	case "ctrl+n":
		return m.startAdvance()
	case "ctrl+e":
		if ed, ok := m.editors[m.ctrl.Current()]; ok && ed.description != nil && ed.description.Focused() {
			return openDescriptionEditor(ed.description.Value())
		}
	}

	if m.buttonsFocused {
		return m.updateButtons(key)
	}
	return m.forward(msg)
}

// forward passes msg to the component of the current step.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	step := m.ctrl.Current()
	if ed, ok := m.editors[step]; ok {
		return ed.form.Update(msg)
	}
	switch step {
	case listing.StepMedia:
		return m.media.Update(msg)
	case listing.StepReview:
		return m.review.Update(msg)
	}
	return nil
}

func (m *Model) updateButtons(key string) tea.Cmd {
	switch key {
	case "tab", "right":
		if !m.buttons.FocusNext() && key == "tab" {
			return m.focusCurrent()
		}
	case "shift+tab", "left":
		if !m.buttons.FocusPrev() && key == "shift+tab" {
			return m.focusCurrentLast()
		}
	case "up":
		return m.focusCurrentLast()
	case "enter", "space":
		switch m.buttons.Focused() {
		case buttonBack:
			return m.back()
		case buttonNext:
			return m.startAdvance()
		}
	}
	return nil
}

// applyCurrent writes the current editor into the draft.
func (m *Model) applyCurrent() tea.Cmd {
	ed, ok := m.editors[m.ctrl.Current()]
	if !ok {
		return nil
	}
	if notice := ed.apply(m.ctrl); notice != "" {
		return m.toast.Show(notice, toastInfo)
	}
	return nil
}

// startAdvance applies the current editor and runs Advance in the
// background. The result arrives as advanceDoneMsg.
func (m *Model) startAdvance() tea.Cmd {
	if m.advancing {
		return nil
	}
	notice := m.applyCurrent()
	m.advancing = true
	m.hadProperty = m.ctrl.PropertyID() != ""
	m.buttons.SetLabel(buttonNext, "Saving…")

	ctrl := m.ctrl
	advance := func() tea.Msg {
		res, err := ctrl.Advance(context.Background())
		return advanceDoneMsg{res: res, err: err}
	}
	if notice == nil {
		return advance
	}
	return tea.Batch(notice, advance)
}

func (m *Model) advanceDone(msg advanceDoneMsg) tea.Cmd {
	m.advancing = false
	m.syncButtons()

	if msg.err == nil {
		res := msg.res
		if res.Completed {
			m.completed = true
			return tea.Quit
		}
		focus := m.enterStep()
		switch {
		case res.Persisted && !m.hadProperty:
			return tea.Batch(focus, m.toast.Show("Listing created #"+res.PropertyID, toastSuccess))
		case res.Persisted:
			return tea.Batch(focus, m.toast.Show("Saved "+res.From.Title(), toastSuccess))
		}
		return focus
	}

	var (
		ve *listing.ValidationError
		pe *listing.PersistenceError
		ce *listing.PreconditionError
	)
	switch {
	case errors.As(msg.err, &ve):
		if ed, ok := m.editors[ve.Step]; ok {
			ed.form.MarkInvalid(ve.Fields)
			m.buttonsFocused = false
			m.buttons.Blur()
			return ed.form.Focus()
		}
		return m.toast.Show(ve.Error(), toastError)
	case errors.As(msg.err, &ce):
		logger.Error("Wizard stopped: %v", msg.err)
		m.fatal = msg.err
		return nil
	case errors.As(msg.err, &pe) && pe.Retryable:
		m.retry.Show("Could not save "+pe.Step.Title(), msg.err.Error())
		return nil
	case errors.Is(msg.err, listing.ErrAdvanceInProgress):
		return nil
	case errors.Is(msg.err, listing.ErrCompleted):
		m.completed = true
		return tea.Quit
	}
	return m.toast.Show(msg.err.Error(), toastError)
}

// back applies the current editor and moves one step back.
func (m *Model) back() tea.Cmd {
	if m.ctrl.Index() == 0 {
		return nil
	}
	notice := m.applyCurrent()
	if err := m.ctrl.Retreat(); err != nil {
		return m.toast.Show(err.Error(), toastError)
	}
	return tea.Batch(notice, m.enterStep())
}

// jump applies the current editor and moves back to step.
func (m *Model) jump(step listing.Step) tea.Cmd {
	if m.advancing {
		return nil
	}
	notice := m.applyCurrent()
	if err := m.ctrl.JumpTo(step); err != nil {
		return tea.Batch(notice, m.toast.Show(err.Error(), toastError))
	}
	return tea.Batch(notice, m.enterStep())
}

// enterStep loads the current step's component from the draft and
// focuses it.
func (m *Model) enterStep() tea.Cmd {
	for _, ed := range m.editors {
		ed.form.Blur()
	}
	m.media.Blur()
	m.buttonsFocused = false
	m.buttons.Blur()
	m.syncButtons()

	step := m.ctrl.Current()
	draft := m.ctrl.Draft()
	if ed, ok := m.editors[step]; ok {
		ed.load(draft)
		ed.form.MarkInvalid(nil)
	}
	switch step {
	case listing.StepMedia:
		m.media.Refresh()
	case listing.StepReview:
		m.review.Load(draft)
	}
	return m.focusCurrent()
}

func (m *Model) syncButtons() {
	m.buttons.SetEnabled(buttonBack, m.ctrl.Index() > 0)
	if m.ctrl.Current() == listing.StepReview {
		m.buttons.SetLabel(buttonNext, "Submit ✓")
	} else {
		m.buttons.SetLabel(buttonNext, "Next →")
	}
}

func (m *Model) focusCurrent() tea.Cmd {
	m.buttonsFocused = false
	m.buttons.Blur()
	step := m.ctrl.Current()
	if ed, ok := m.editors[step]; ok {
		return ed.form.Focus()
	}
	if step == listing.StepMedia {
		return m.media.Focus()
	}
	return nil
}

func (m *Model) focusCurrentLast() tea.Cmd {
	m.buttonsFocused = false
	m.buttons.Blur()
	step := m.ctrl.Current()
	if ed, ok := m.editors[step]; ok {
		return ed.form.FocusLast()
	}
	if step == listing.StepMedia {
		return m.media.Focus()
	}
	return nil
}

// contentSize returns the space available to a step inside the modal.
func (m *Model) contentSize() (int, int) {
	return max(40, min(m.width, 100)-10), max(8, m.height-16)
}

func (m *Model) resize() {
	w, h := m.contentSize()
	for _, ed := range m.editors {
		ed.form.SetWidth(w)
	}
	m.media.SetSize(w, h)
	m.review.SetSize(w, h)
	m.buttons.SetWidth(w)
}

// openDescriptionEditor launches $EDITOR on the description.
func openDescriptionEditor(content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "rentr_description_*.md")
	if err != nil {
		return nil
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	path := tmpfile.Name()

	cmd, err := xeditor.Command("rentr", path)
	if err != nil {
		_ = os.Remove(path)
		return nil
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			logger.Warn("Editor exited with error: %v", err)
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return descriptionEditedMsg{content: string(data)}
	})
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	var content string
	switch {
	case m.fatal != nil:
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, renderFatal(m.fatal.Error()))
	case m.retry.IsVisible():
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.retry.Render())
	default:
		content = m.renderModal(m.renderStep())
	}

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderStep renders the body of the current step.
func (m *Model) renderStep() string {
	_, h := m.contentSize()
	step := m.ctrl.Current()
	if ed, ok := m.editors[step]; ok {
		hints := []string{"tab", "next field", "←→", "choose", "space", "toggle", "ctrl+n", "save & next", "esc", "back"}
		if ed.description != nil && ed.description.Focused() && os.Getenv("EDITOR") != "" {
			hints = append(hints, "ctrl+e", "edit in $EDITOR")
		}
		return ed.form.ViewWindow(h) + "\n\n" + form.RenderHintBar(hints...)
	}
	switch step {
	case listing.StepMedia:
		return m.media.View()
	case listing.StepReview:
		return m.review.View()
	}
	return ""
}

// renderModal wraps the step body with the title, the step trail, the
// buttons and the toast, centred on screen.
func (m *Model) renderModal(body string) string {
	w, _ := m.contentSize()
	sections := []string{
		renderTitle(m.ctrl.Current(), m.ctrl.Index(), len(listing.Steps()), m.ctrl.PropertyID()),
		renderStepIndicator(m.ctrl, w),
		"",
		body,
		"",
		m.buttons.Render(),
	}
	if toast := m.toast.View(w); toast != "" {
		sections = append(sections, toast)
	}

	modal := theme.Current().S().ModalContainer.Width(w + 6).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
