package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/tui/form"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// uploadDoneMsg is sent when an upload started from the media step returns.
type uploadDoneMsg struct {
	key listing.SlotKey
	ref listing.MediaRef
	err error
}

// MediaStep lists the photo slots of the draft and uploads a local file to
// the selected slot. Uploads run in the background; the step keeps working
// while they are in flight.
type MediaStep struct {
	ctrl     *listing.Controller
	slots    []listing.SlotKey
	cursor   int
	path     *form.TextField
	editing  bool // path input has focus
	focused  bool
	pending  map[listing.SlotKey]bool
	failures map[listing.SlotKey]string
	width    int
	height   int
}

// NewMediaStep creates the media step for ctrl.
func NewMediaStep(ctrl *listing.Controller) *MediaStep {
	s := &MediaStep{
		ctrl:     ctrl,
		path:     form.NewText("File", "path/to/photo.jpg"),
		pending:  make(map[listing.SlotKey]bool),
		failures: make(map[listing.SlotKey]string),
		width:    60,
		height:   20,
	}
	s.Refresh()
	return s
}

// Refresh reloads the slot list from the draft. The cursor stays on the
// same slot when it still exists.
func (s *MediaStep) Refresh() {
	var current listing.SlotKey
	if s.cursor < len(s.slots) {
		current = s.slots[s.cursor]
	}
	s.slots = s.ctrl.Draft().Media.Slots()
	s.cursor = 0
	for i, k := range s.slots {
		if k == current {
			s.cursor = i
			break
		}
	}
}

// SetSize updates the dimensions of the step.
func (s *MediaStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Focus gives the slot list focus.
func (s *MediaStep) Focus() tea.Cmd {
	s.focused = true
	return nil
}

// Blur removes focus from the step.
func (s *MediaStep) Blur() {
	s.focused = false
	s.editing = false
	s.path.Blur()
}

// Editing reports whether the path input has focus.
func (s *MediaStep) Editing() bool {
	return s.editing
}

// Selected returns the slot under the cursor.
func (s *MediaStep) Selected() (listing.SlotKey, bool) {
	if s.cursor < 0 || s.cursor >= len(s.slots) {
		return listing.SlotKey{}, false
	}
	return s.slots[s.cursor], true
}

// Update handles messages for the media step.
func (s *MediaStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case uploadDoneMsg:
		return s.finish(msg)
	case tea.KeyPressMsg:
		if s.editing {
			return s.updatePath(msg)
		}
		if !s.focused {
			return nil
		}
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.slots)-1 {
				s.cursor++
			}
		case "enter":
			if _, ok := s.Selected(); ok {
				s.editing = true
				s.path.SetValue("")
				return s.path.Focus()
			}
		case "tab":
			s.Blur()
			return func() tea.Msg { return form.ExitForwardMsg{} }
		case "shift+tab":
			s.Blur()
			return func() tea.Msg { return form.ExitBackwardMsg{} }
		}
		return nil
	case tea.PasteMsg:
		if s.editing {
			return s.path.Update(msg)
		}
	}
	return nil
}

func (s *MediaStep) updatePath(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.editing = false
		s.path.Blur()
		return nil
	case "enter":
		path := s.path.Value()
		key, ok := s.Selected()
		s.editing = false
		s.path.Blur()
		if path == "" || !ok {
			return nil
		}
		return s.startUpload(key, path)
	}
	return s.path.Update(msg)
}

func (s *MediaStep) startUpload(key listing.SlotKey, path string) tea.Cmd {
	s.pending[key] = true
	delete(s.failures, key)
	media := s.ctrl.Media()
	return func() tea.Msg {
		f, err := listing.OpenFile(path)
		if err != nil {
			return uploadDoneMsg{key: key, err: err}
		}
		ref, err := media.UploadSlot(context.Background(), key, f)
		return uploadDoneMsg{key: key, ref: ref, err: err}
	}
}

// finish records the outcome of an upload. A superseded upload leaves the
// slot to the newer one.
func (s *MediaStep) finish(msg uploadDoneMsg) tea.Cmd {
	if errors.Is(msg.err, listing.ErrSuperseded) {
		return nil
	}
	delete(s.pending, msg.key)
	if msg.err != nil {
		s.failures[msg.key] = msg.err.Error()
		return nil
	}
	delete(s.failures, msg.key)
	return nil
}

// Pending returns the number of uploads this step is waiting on.
func (s *MediaStep) Pending() int {
	return len(s.pending)
}

// View renders the media step.
func (s *MediaStep) View() string {
	st := theme.Current().S()
	media := s.ctrl.Draft().Media

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", st.MutedText.Render(fmt.Sprintf("%d of %d photos uploaded • max %s each",
		media.Uploaded(), len(s.slots), humanSize(s.ctrl.Media().MaxBytes()))))

	// Keep the cursor visible in a window of slots
	visible := max(3, s.height-6)
	start := 0
	if s.cursor >= visible {
		start = s.cursor - visible + 1
	}
	end := min(len(s.slots), start+visible)

	for i := start; i < end; i++ {
		key := s.slots[i]
		var status string
		switch {
		case s.pending[key]:
			status = st.HintKey.Render("uploading…")
		case s.failures[key] != "":
			status = st.ErrorText.Render(s.failures[key])
		case media.Ref(key) != "":
			status = st.SuccessText.Render("✓ " + string(media.Ref(key)))
		default:
			status = st.Placeholder.Render("no photo")
		}
		label := lipgloss.NewStyle().Width(20).Render(key.Label())
		line := label + " " + status
		if s.focused && i == s.cursor {
			line = st.Selected.Render(key.Label()) + strings.Repeat(" ", max(1, 21-lipgloss.Width(key.Label())-2)) + status
		}
		b.WriteString(lipgloss.NewStyle().MaxWidth(s.width).Render(line))
		b.WriteString("\n")
	}

	if s.editing {
		b.WriteString("\n")
		b.WriteString(s.path.View(s.width))
		b.WriteString("\n")
		b.WriteString(form.RenderHintBar("enter", "upload", "esc", "cancel"))
	} else {
		b.WriteString("\n")
		b.WriteString(form.RenderHintBar("↑↓", "select", "enter", "choose file", "tab", "buttons"))
	}
	return b.String()
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
