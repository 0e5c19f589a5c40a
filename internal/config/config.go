// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for innertalk.
//
// Configuration is read from ~/.innertalk/config.toml with sensible defaults
// and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete innertalk configuration.
type Config struct {
	// DefaultModel is the model used for new conversations.
	DefaultModel string `toml:"default_model"`

	// DataDir is where conversations and preferences are persisted
	// (default: ~/.innertalk).
	DataDir string `toml:"data_dir"`

	// Server holds the Ollama connection settings.
	Server ServerConfig `toml:"server"`

	// Context holds the folder-watching settings.
	Context ContextConfig `toml:"context"`

	// UI holds terminal UI settings.
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains Ollama server settings.
type ServerConfig struct {
	// URL of the Ollama server.
	URL string `toml:"url"`

	// TimeoutSecs is the timeout for non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ContextConfig contains context folder settings.
type ContextConfig struct {
	// WatchDebounceMs is how long to coalesce file change events before
	// refreshing a folder.
	WatchDebounceMs int `toml:"watch_debounce_ms"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// SidebarWidth is the conversation sidebar width in columns.
	SidebarWidth int `toml:"sidebar_width"`

	// Markdown enables glamour rendering of assistant messages.
	Markdown bool `toml:"markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DefaultModel: "llama3.2",
		DataDir:      filepath.Join(home, ".innertalk"),
		Server: ServerConfig{
			URL:         "http://127.0.0.1:11434",
			TimeoutSecs: 30,
		},
		Context: ContextConfig{
			WatchDebounceMs: 2000,
		},
		UI: UIConfig{
			SidebarWidth: 30,
			Markdown:     true,
		},
	}
}

// ConfigPath returns the TOML config file location.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".innertalk", "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, falling back to defaults when it is absent,
// then applies environment overrides. A malformed file is an error; a missing
// one is not.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	return cfg, nil
}

// LoadTOML decodes a TOML file over an existing config.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variables over the loaded config.
//
// Supported environment variables:
//   - INNERTALK_MODEL: overrides default_model
//   - INNERTALK_OLLAMA_URL: overrides server.url
//   - INNERTALK_DATA_DIR: overrides data_dir
//   - INNERTALK_WATCH_DEBOUNCE_MS: overrides context.watch_debounce_ms
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("INNERTALK_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if url := os.Getenv("INNERTALK_OLLAMA_URL"); url != "" {
		c.Server.URL = url
	}
	if dir := os.Getenv("INNERTALK_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if ms := os.Getenv("INNERTALK_WATCH_DEBOUNCE_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			c.Context.WatchDebounceMs = v
		}
	}
}

// SetDefaults fills any zero-valued fields a partial config file left empty.
func (c *Config) SetDefaults() {
	def := Default()
	if c.DefaultModel == "" {
		c.DefaultModel = def.DefaultModel
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Server.URL == "" {
		c.Server.URL = def.Server.URL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.Context.WatchDebounceMs <= 0 {
		c.Context.WatchDebounceMs = def.Context.WatchDebounceMs
	}
	if c.UI.SidebarWidth <= 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// WatchDebounce returns the folder debounce window as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Context.WatchDebounceMs) * time.Millisecond
}

// StorePath returns the key/value store file location.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "store.json")
}
