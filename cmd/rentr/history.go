package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/session"
	"github.com/mark3labs/rentr/internal/tui/theme"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	events bool
	json   bool
}

var historyCmd = &cobra.Command{
	Use:   "history <property-id>",
	Short: "Show the local journal of a listing",
	Long: `Replay the local journal of wizard activity for a listing: the steps
that were saved, the photos that were uploaded and the failures along
the way. Use "unsaved" for activity before the listing was created.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVarP(&historyFlags.events, "events", "e", false, "List every journal event")
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "Print the history as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	h, err := rt.journal.LoadHistory(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if historyFlags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	}
	renderHistory(cmd.OutOrStdout(), h, historyFlags.events)
	return nil
}

// renderHistory writes a human summary of h, in wizard step order.
func renderHistory(w io.Writer, h *session.History, events bool) {
	s := theme.Current().S()

	if len(h.Events) == 0 {
		fmt.Fprintf(w, "No journal entries for %s\n", h.PropertyID)
		return
	}

	status := "in progress"
	if h.Completed {
		status = "complete"
	}
	fmt.Fprintln(w, s.HeaderTitle.Render(fmt.Sprintf("Listing %s (%s)", h.PropertyID, status)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, s.LabelFocused.Render("Steps"))
	for _, step := range listing.Steps() {
		if !step.Persisted() {
			continue
		}
		rec, ok := h.Steps[step.ID()]
		if !ok {
			fmt.Fprintf(w, "  ○ %-18s not saved\n", step.Title())
			continue
		}
		fmt.Fprintf(w, "  ✓ %-18s saved %d× (last %s)\n", step.Title(), rec.Saves, rec.LastSaved.Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.LabelFocused.Render("Photos"))
	slots := h.MediaSlots()
	if len(slots) == 0 {
		fmt.Fprintln(w, "  none uploaded")
	}
	for _, slot := range slots {
		fmt.Fprintf(w, "  %s  %s\n", slot, h.Media[slot])
	}

	if h.Failures > 0 || h.Rejections > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d failed saves, %d rejected by validation\n", h.Failures, h.Rejections)
	}

	if !events {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.LabelFocused.Render("Events"))
	for _, e := range h.Events {
		fmt.Fprintf(w, "  %s  %-10s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Kind, describeEvent(e))
	}
}

// describeEvent renders the detail column of one journal event.
func describeEvent(e session.Event) string {
	var parts []string
	if e.Step != "" {
		parts = append(parts, e.Step)
	}
	if e.Slot != "" {
		parts = append(parts, e.Slot)
	}
	if len(e.Fields) > 0 {
		parts = append(parts, strings.Join(e.Fields, ", "))
	}
	if e.Error != "" {
		parts = append(parts, e.Error)
	}
	return strings.Join(parts, "  ")
}
