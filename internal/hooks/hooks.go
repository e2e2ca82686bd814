// Package hooks runs user commands when the listing wizard saves a step,
// uploads a photo, fails, or completes.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/logger"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".rentr.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables holds template variables that can be expanded in hook commands.
type Variables struct {
	Property string
	Step     string
	Slot     string
	Ref      string
	Error    string
}

// env returns the variables as RENTR_* environment entries.
func (v Variables) env() []string {
	return []string{
		"RENTR_PROPERTY=" + v.Property,
		"RENTR_STEP=" + v.Step,
		"RENTR_SLOT=" + v.Slot,
		"RENTR_REF=" + v.Ref,
		"RENTR_ERROR=" + v.Error,
	}
}

// Execute runs a hook command and returns its output.
// The variables reach the command only through the environment
// (RENTR_PROPERTY, RENTR_STEP, RENTR_SLOT, RENTR_REF, RENTR_ERROR). The
// placeholders {{property}}, {{step}}, {{slot}}, {{ref}} and {{error}}
// expand to quoted references to those variables, never to their values.
// On error, returns an error message as output and nil error (graceful degradation).
// Only returns error for context cancellation.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), vars.env()...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Check for context cancellation (propagate this)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	if err != nil {
		logger.Warn("Hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		output += "\n[stderr]\n" + stderr.String()
	}

	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return output, nil
}

// expandVariables replaces {{variable}} placeholders with double-quoted
// shell references to the matching RENTR_* environment variable.
func expandVariables(command string) string {
	replacements := map[string]string{
		"{{property}}": `"${RENTR_PROPERTY}"`,
		"{{step}}":     `"${RENTR_STEP}"`,
		"{{slot}}":     `"${RENTR_SLOT}"`,
		"{{ref}}":      `"${RENTR_REF}"`,
		"{{error}}":    `"${RENTR_ERROR}"`,
	}

	result := command
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// Runner is a listing.Observer that runs the configured hooks for each
// event in the background. Call Wait before exiting.
type Runner struct {
	cfg     *Config
	workDir string
	ctx     context.Context
	wg      sync.WaitGroup
}

// NewRunner creates a runner for cfg. A nil cfg runs nothing.
func NewRunner(ctx context.Context, cfg *Config, workDir string) *Runner {
	return &Runner{cfg: cfg, workDir: workDir, ctx: ctx}
}

// hooksFor returns the hooks configured for kind.
func (r *Runner) hooksFor(kind listing.EventKind) []*HookConfig {
	if r.cfg == nil {
		return nil
	}
	switch kind {
	case listing.EventPersisted:
		return r.cfg.Hooks.OnSaved
	case listing.EventUploaded:
		return r.cfg.Hooks.OnUploaded
	case listing.EventPersistFailed, listing.EventUploadFailed:
		return r.cfg.Hooks.OnFailed
	case listing.EventCompleted:
		return r.cfg.Hooks.OnCompleted
	}
	return nil
}

// Notify starts the hooks for e. Hooks of one event run in order.
func (r *Runner) Notify(e listing.Event) {
	hooks := r.hooksFor(e.Kind)
	if len(hooks) == 0 {
		return
	}

	vars := Variables{
		Property: e.PropertyID,
		Step:     e.Step.ID(),
		Slot:     e.Slot,
		Ref:      string(e.Ref),
	}
	if e.Err != nil {
		vars.Error = e.Err.Error()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for _, hook := range hooks {
			output, err := Execute(r.ctx, hook, r.workDir, vars)
			if err != nil {
				logger.Warn("Hooks for %s cancelled: %v", e.Kind, err)
				return
			}
			if output != "" {
				logger.Debug("Hook output (%s): %s", e.Kind, strings.TrimSpace(output))
			}
		}
	}()
}

// Wait blocks until every started hook has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
