package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const appDirName = "image-selector"

// Config represents the application configuration
type Config struct {
	AssetsDir     string   `toml:"assets_dir"`
	BundledAssets []string `toml:"bundled_assets"`
	LogLevel      string   `toml:"log_level"`
	JSONLogs      bool     `toml:"json_logs"`
	ThumbnailSize int      `toml:"thumbnail_size"`
	PreviewSize   int      `toml:"preview_size"`
	WatchAssets   bool     `toml:"watch_assets"`

	// path is where the config was read from; saved.toml lives next to it.
	path string
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		AssetsDir:     filepath.Join("assets", "images"),
		BundledAssets: []string{"img1", "img2", "img3"},
		LogLevel:      "info",
		ThumbnailSize: 160,
		PreviewSize:   640,
		WatchAssets:   true,
	}
}

// DefaultPath returns <user config dir>/image-selector/config.toml, falling
// back to the home directory and finally the working directory.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, appDirName, "config.toml")
}

// Load reads path (DefaultPath when empty), then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration back to the path it was loaded from
func (c *Config) Save() error {
	if c.path == "" {
		c.path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the file the configuration belongs to
func (c *Config) Path() string {
	return c.path
}

// SavedPath is the saved-images state file next to the config file
func (c *Config) SavedPath() string {
	dir := filepath.Dir(c.path)
	if c.path == "" {
		dir = filepath.Dir(DefaultPath())
	}
	return filepath.Join(dir, "saved.toml")
}

// ResolvedAssetsDir returns AssetsDir as an absolute path
func (c *Config) ResolvedAssetsDir() (string, error) {
	abs, err := filepath.Abs(c.AssetsDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve assets directory: %w", err)
	}
	return abs, nil
}

// Validate rejects configurations the application cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AssetsDir) == "" {
		return fmt.Errorf("assets_dir must not be empty")
	}
	if c.ThumbnailSize <= 0 {
		return fmt.Errorf("thumbnail_size must be positive, got %d", c.ThumbnailSize)
	}
	if c.PreviewSize <= 0 {
		return fmt.Errorf("preview_size must be positive, got %d", c.PreviewSize)
	}
	for _, name := range c.BundledAssets {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("bundled asset %q must be a bare name", name)
		}
	}
	return nil
}

// applyEnv overrides file values from the environment
func (c *Config) applyEnv() {
	if dir := os.Getenv("IMAGE_SELECTOR_ASSETS_DIR"); dir != "" {
		c.AssetsDir = dir
	}

	switch level := os.Getenv("LOG_LEVEL"); level {
	case "debug", "info", "warn", "error":
		c.LogLevel = level
	default:
		if os.Getenv("DEBUG") == "1" {
			c.LogLevel = "debug"
		}
	}

	if v := os.Getenv("IMAGE_SELECTOR_JSON_LOGS"); v != "" {
		c.JSONLogs = v == "true" || v == "1"
	}
	if v := os.Getenv("IMAGE_SELECTOR_WATCH"); v != "" {
		c.WatchAssets = !(v == "false" || v == "0")
	}
}
