package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/rentr/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project bool
	force   bool
	apiURL  string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create rentr configuration file",
	Long: `Create a rentr configuration file with sensible defaults.

By default, creates a global config at ~/.config/rentr/rentr.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.apiURL, "backend", "http://localhost:8080", "Backend base URL to write")
}

// defaultConfig returns the config setup writes.
func defaultConfig(apiURL string) *config.Config {
	return &config.Config{
		APIBaseURL:     apiURL,
		RequestTimeout: 15 * time.Second,
		UploadTimeout:  60 * time.Second,
		MaxUploadBytes: 2 << 20,
		DataDir:        config.DefaultDataDir(),
		LogLevel:       "info",
		LogFile:        "",
		MCPPort:        0,
	}
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Determine target path
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	// Check if config already exists
	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := defaultConfig(setupFlags.apiURL)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config written to: %s\n\n", targetPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'rentr login' and then 'rentr list' to get started.")
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
