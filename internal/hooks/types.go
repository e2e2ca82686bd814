package hooks

// Config is the top-level configuration for hooks loaded from .rentr.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the commands run for each wizard event.
type HooksConfig struct {
	OnSaved     []*HookConfig `yaml:"on_saved"`     // a step was persisted
	OnUploaded  []*HookConfig `yaml:"on_uploaded"`  // a photo was uploaded
	OnFailed    []*HookConfig `yaml:"on_failed"`    // a save or upload failed
	OnCompleted []*HookConfig `yaml:"on_completed"` // the listing was submitted
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
