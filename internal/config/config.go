// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for rentr.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url" yaml:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	UploadTimeout  time.Duration `mapstructure:"upload_timeout" yaml:"upload_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	MCPPort        int           `mapstructure:"mcp_port" yaml:"mcp_port"`
}

// envKeys lists every key bound to a RENTR_ environment variable.
var envKeys = []string{
	"api_base_url",
	"request_timeout",
	"upload_timeout",
	"max_upload_bytes",
	"data_dir",
	"log_level",
	"log_file",
	"mcp_port",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars (.env included) > project config > XDG global config > defaults
func Load() (*Config, error) {
	// .env never overrides variables already set in the environment
	if fileExists(DotEnvPath()) {
		if err := godotenv.Load(DotEnvPath()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", DotEnvPath(), err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("rentr")

	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("upload_timeout", "60s")
	v.SetDefault("max_upload_bytes", 2<<20)
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("mcp_port", 0)

	// Setup ENV binding with RENTR_ prefix
	v.SetEnvPrefix("RENTR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings so Unmarshal sees keys that only exist in the env
	for _, key := range envKeys {
		if err := v.BindEnv(key, "RENTR_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.UploadTimeout <= 0 {
		return errors.New("upload_timeout must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.MCPPort < 0 || c.MCPPort > 65535 {
		return fmt.Errorf("mcp_port out of range: %d", c.MCPPort)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/rentr/rentr.yml or $XDG_CONFIG_HOME/rentr/rentr.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rentr", "rentr.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rentr", "rentr.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./rentr.yml in the current working directory.
func ProjectPath() string {
	return "rentr.yml"
}

// DotEnvPath returns the path of the optional .env file.
func DotEnvPath() string {
	return ".env"
}

// DefaultDataDir returns where the session store and journal live:
// $XDG_DATA_HOME/rentr or ~/.local/share/rentr.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "rentr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "rentr")
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return writeFile(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return writeFile(ProjectPath(), cfg)
}

func writeFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
