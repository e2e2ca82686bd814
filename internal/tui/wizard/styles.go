package wizard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/tui/theme"
)

// renderTitle renders "Step n of N: Title" with the property id once known.
func renderTitle(step listing.Step, index, total int, propertyID string) string {
	s := theme.Current().S()
	title := s.HeaderTitle.Render(fmt.Sprintf("New Listing - Step %d of %d: %s", index+1, total, step.Title()))
	if propertyID != "" {
		title += s.MutedText.Render("  #" + propertyID)
	}
	return title
}

// renderStepIndicator renders the step trail: saved steps, the current one
// and the steps still ahead, wrapped to width.
func renderStepIndicator(ctrl *listing.Controller, width int) string {
	s := theme.Current().S()
	current := ctrl.Current()

	items := make([]string, 0, len(listing.Steps()))
	for i, step := range listing.Steps() {
		label := fmt.Sprintf("%d %s", i+1, step.Title())
		switch {
		case step == current:
			items = append(items, s.StepCurrent.Render("● "+label))
		case i < ctrl.Index() || ctrl.Saved(step):
			items = append(items, s.StepDone.Render("✓ "+label))
		default:
			items = append(items, s.StepPending.Render("○ "+label))
		}
	}

	var lines []string
	var line string
	for _, item := range items {
		if line != "" && lipgloss.Width(line)+2+lipgloss.Width(item) > width {
			lines = append(lines, line)
			line = ""
		}
		if line != "" {
			line += "  "
		}
		line += item
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
