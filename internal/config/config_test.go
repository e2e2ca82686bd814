package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG at a temp dir, moves into it and clears RENTR_ vars.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp dir: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	for _, key := range envKeys {
		name := "RENTR_" + strings.ToUpper(key)
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	tests := []struct {
		name        string
		xdgConfig   string
		wantContain string
	}{
		{
			name:        "with XDG_CONFIG_HOME set",
			xdgConfig:   "/custom/config",
			wantContain: "/custom/config/rentr/rentr.yml",
		},
		{
			name:        "without XDG_CONFIG_HOME",
			xdgConfig:   "",
			wantContain: ".config/rentr/rentr.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)

			got := GlobalPath()
			if tt.xdgConfig != "" {
				assert.Equal(t, tt.wantContain, got)
				return
			}
			assert.True(t, filepath.IsAbs(got), "GlobalPath() should return absolute path, got %v", got)
			assert.True(t, strings.HasSuffix(got, tt.wantContain), got)
		})
	}
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, "rentr.yml", ProjectPath())
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/rentr", DefaultDataDir())
}

func TestExists(t *testing.T) {
	isolate(t)

	t.Run("no config exists", func(t *testing.T) {
		assert.False(t, Exists())
	})

	t.Run("global config exists", func(t *testing.T) {
		globalPath := GlobalPath()
		require.NoError(t, os.MkdirAll(filepath.Dir(globalPath), 0755))
		require.NoError(t, os.WriteFile(globalPath, []byte("log_level: debug\n"), 0644))
		defer func() { _ = os.Remove(globalPath) }()

		assert.True(t, Exists())
	})

	t.Run("project config exists", func(t *testing.T) {
		require.NoError(t, os.WriteFile(ProjectPath(), []byte("log_level: debug\n"), 0644))
		defer func() { _ = os.Remove(ProjectPath()) }()

		assert.True(t, Exists())
	})
}

func TestWriteGlobal(t *testing.T) {
	isolate(t)

	cfg := &Config{
		APIBaseURL:     "https://api.example.com",
		RequestTimeout: 10 * time.Second,
		UploadTimeout:  time.Minute,
		MaxUploadBytes: 1024,
		DataDir:        ".test",
		LogLevel:       "debug",
		LogFile:        "/tmp/test.log",
		MCPPort:        7070,
	}
	require.NoError(t, WriteGlobal(cfg))

	data, err := os.ReadFile(GlobalPath())
	require.NoError(t, err)
	content := string(data)
	for _, field := range []string{
		"api_base_url: https://api.example.com",
		"request_timeout: 10s",
		"upload_timeout: 1m0s",
		"max_upload_bytes: 1024",
		"data_dir: .test",
		"log_level: debug",
		"log_file: /tmp/test.log",
		"mcp_port: 7070",
	} {
		assert.Contains(t, content, field)
	}
}

func TestWriteProject(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteProject(&Config{APIBaseURL: "http://localhost:9000", LogLevel: "info"}))
	data, err := os.ReadFile(ProjectPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_base_url: http://localhost:9000")
}

func TestLoad_NoConfig(t *testing.T) {
	tmpDir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60*time.Second, cfg.UploadTimeout)
	assert.EqualValues(t, 2<<20, cfg.MaxUploadBytes)
	assert.Equal(t, filepath.Join(tmpDir, "data", "rentr"), cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.MCPPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteGlobal(&Config{
		APIBaseURL:     "https://global.example.com",
		RequestTimeout: 5 * time.Second,
		UploadTimeout:  time.Minute,
		MaxUploadBytes: 100,
		DataDir:        ".global",
		LogLevel:       "warn",
	}))
	require.NoError(t, os.WriteFile(ProjectPath(), []byte("log_level: error\nmax_upload_bytes: 200\n"), 0644))
	t.Setenv("RENTR_MAX_UPLOAD_BYTES", "300")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://global.example.com", cfg.APIBaseURL, "from global")
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout, "from global")
	assert.Equal(t, "error", cfg.LogLevel, "project overrides global")
	assert.EqualValues(t, 300, cfg.MaxUploadBytes, "env overrides project")
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(DotEnvPath(), []byte("RENTR_API_BASE_URL=https://dotenv.example.com\nRENTR_MCP_PORT=9100\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com", cfg.APIBaseURL)
	assert.Equal(t, 9100, cfg.MCPPort)
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIBaseURL:     "https://api.example.com",
		RequestTimeout: time.Second,
		UploadTimeout:  time.Second,
		MaxUploadBytes: 1,
		DataDir:        "/tmp/rentr",
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.APIBaseURL = "api.example.com" }, true},
		{"ftp url", func(c *Config) { c.APIBaseURL = "ftp://api.example.com" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"zero upload timeout", func(c *Config) { c.UploadTimeout = 0 }, true},
		{"zero max bytes", func(c *Config) { c.MaxUploadBytes = 0 }, true},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
		{"bad port", func(c *Config) { c.MCPPort = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
