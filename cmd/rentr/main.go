package main

import (
	"context"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/mark3labs/rentr/internal/logger"
	"github.com/mark3labs/rentr/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀█ █▀▀ █▄ █ ▀█▀ █▀█"
	logoText2 = "█▀▄ ██▄ █ ▀█  █  █▀▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootFlags struct {
	apiURL  string
	dataDir string
}

var rootCmd = &cobra.Command{
	Use:   "rentr",
	Short: "Create rental property listings from the terminal",
}

// renderLogo renders the two logo lines in the theme's accent colours.
func renderLogo() string {
	t := theme.Current()
	line1 := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Render(logoText1)
	line2 := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Render(logoText2)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

rentr walks you through listing a rental property: basic details, location,
features, amenities, restrictions, commercials, availability and photos.
Each step is validated and saved to the backend as you go, photos are
uploaded as soon as you pick them, and the last step shows a preview of
the whole listing.

Your identity and a journal of wizard activity are kept locally in an
embedded NATS JetStream store.`

	rootCmd.PersistentFlags().StringVar(&rootFlags.apiURL, "api-url", "", "Backend base URL (overrides api_base_url)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.dataDir, "data-dir", "", "Directory for the local session store (overrides data_dir)")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(payloadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(doctorCmd)
}
