package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/logger"
	"github.com/mark3labs/rentr/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var listFlags struct {
	saveDraft string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a property with the step-by-step wizard",
	Long: `Open the listing wizard.

Each step is validated before you can move on and is saved to the backend
as soon as it passes. Photos upload in the background while you keep
editing. Leaving early keeps whatever was already saved; use --save-draft
to also keep a local copy of the form for 'rentr preview' and
'rentr payload'.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFlags.saveDraft, "save-draft", "", "Write the draft to this file (or directory) when the wizard exits")
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl, err := rt.newController(cmd.Context())
	if err != nil {
		return err
	}

	result, runErr := wizard.Run(ctrl)
	if runErr != nil && !errors.Is(runErr, wizard.ErrCancelled) {
		return runErr
	}

	if listFlags.saveDraft != "" {
		path := draftPath(listFlags.saveDraft, ctrl.Draft(), ctrl.PropertyID())
		if err := listing.SaveDraft(path, ctrl.Draft(), ctrl.PropertyID()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Draft written to: %s\n", path)
	}

	out := cmd.OutOrStdout()
	switch {
	case result.Completed:
		fmt.Fprintf(out, "Listing %s is complete.\n", result.PropertyID)
	case result.PropertyID != "":
		logger.Info("Wizard left early, listing %s kept", result.PropertyID)
		fmt.Fprintf(out, "Listing %s was saved up to the last completed step.\n", result.PropertyID)
		fmt.Fprintf(out, "Run 'rentr history %s' to see what was saved.\n", result.PropertyID)
	default:
		fmt.Fprintln(out, "Nothing was saved.")
	}
	return nil
}

// draftPath returns target itself, or a file named after the listing when
// target is an existing directory.
func draftPath(target string, d listing.Draft, propertyID string) string {
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return target
	}
	return filepath.Join(target, draftFileName(d, propertyID))
}

// draftFileName builds a file name from the configuration, locality and
// property id, e.g. "2bhk-koramangala-p1.yml".
func draftFileName(d listing.Draft, propertyID string) string {
	parts := []string{d.BasicInfo.Configuration, d.Location.Locality, propertyID}
	name := slug.Make(strings.Join(parts, " "))
	if name == "" {
		name = "draft"
	}
	return name + ".yml"
}
