package main

import (
	"context"
	"fmt"
	"io"

	"github.com/mark3labs/rentr/internal/config"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/tui/theme"
	"github.com/spf13/cobra"
)

var doctorFlags struct {
	rules bool
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, sign-in and backend reachability",
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFlags.rules, "rules", false, "Also print the validation rules of every step")
}

// check is the outcome of one doctor probe.
type check struct {
	name   string
	detail string
	err    error
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	checks := runChecks(cmd.Context())
	failed := printChecks(out, checks)

	if doctorFlags.rules {
		fmt.Fprintln(out)
		printRules(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

// runChecks probes config, the session store, the identity and the
// backend. Later checks are skipped when the config is unusable.
func runChecks(ctx context.Context) []check {
	var checks []check

	source := "defaults"
	if config.Exists() {
		source = "config file"
	}
	cfg, err := loadConfig()
	checks = append(checks, check{name: "config", detail: source, err: err})
	if err != nil {
		return checks
	}

	rt, err := openRuntime(ctx)
	checks = append(checks, check{name: "session store", detail: cfg.DataDir, err: err})
	if err != nil {
		return checks
	}
	defer rt.Close()

	actor, err := rt.actor(ctx)
	checks = append(checks, check{name: "signed in", detail: actor.Username, err: err})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	checks = append(checks, check{name: "backend", detail: cfg.APIBaseURL, err: rt.client.Ping(pingCtx)})
	return checks
}

// printChecks writes one line per check and returns how many failed.
func printChecks(w io.Writer, checks []check) int {
	s := theme.Current().S()
	failed := 0
	for _, c := range checks {
		if c.err != nil {
			failed++
			fmt.Fprintf(w, "%s %-14s %v\n", s.ErrorText.Render("✗"), c.name, c.err)
			continue
		}
		fmt.Fprintf(w, "%s %-14s %s\n", s.SuccessText.Render("✓"), c.name, c.detail)
	}
	return failed
}

// printRules lists what every step requires before it can be saved.
func printRules(w io.Writer) {
	s := theme.Current().S()
	for i, step := range listing.Steps() {
		rules := listing.Rules(step)
		if len(rules) == 0 {
			continue
		}
		fmt.Fprintln(w, s.LabelFocused.Render(fmt.Sprintf("%d %s", i+1, step.Title())))
		for _, r := range rules {
			fmt.Fprintf(w, "  %-22s %s\n", r.Field, r.Desc)
		}
	}
}
