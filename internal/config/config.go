package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all scales configuration.
type Config struct {
	// Directory holding practice files, the practice log and the history database.
	PracticeDir string `yaml:"practice_dir"`

	// File name of the JSON counter file inside PracticeDir.
	LogFile string `yaml:"log_file"`

	// Optional external catalog. Empty means the built-in catalog.
	CatalogPath string `yaml:"catalog_path"`

	History HistoryConfig `yaml:"history"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// HistoryConfig configures the SQLite session journal.
type HistoryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabaseFile string `yaml:"database_file"`
}

// WatchConfig configures `validate --watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PracticeDir: defaultPracticeDir(),
		LogFile:     "practice_log.json",
		History: HistoryConfig{
			Enabled:      true,
			DatabaseFile: "history.db",
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultPracticeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scales")
	}
	return filepath.Join(home, ".local", "share", "scales")
}

// DefaultConfigPath returns ~/.config/scales/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "scales.yaml"
	}
	return filepath.Join(dir, "scales", "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.PracticeDir = expandHome(cfg.PracticeDir)
	cfg.CatalogPath = expandHome(cfg.CatalogPath)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("SCALES_PRACTICE_DIR"); dir != "" {
		c.PracticeDir = dir
	}
	if path := os.Getenv("SCALES_CATALOG"); path != "" {
		c.CatalogPath = path
	}
	if v := os.Getenv("SCALES_DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = on
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PracticeDir) == "" {
		return fmt.Errorf("practice_dir must not be empty")
	}
	if c.LogFile == "" || filepath.Base(c.LogFile) != c.LogFile {
		return fmt.Errorf("log_file must be a bare file name, got %q", c.LogFile)
	}
	if c.History.Enabled && c.History.DatabaseFile == "" {
		return fmt.Errorf("history.database_file must be set when history is enabled")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}

// LogPath returns the absolute path of the practice log.
func (c *Config) LogPath() string {
	return filepath.Join(c.PracticeDir, c.LogFile)
}

// HistoryPath returns the path of the history database, or "" when history is disabled.
func (c *Config) HistoryPath() string {
	if !c.History.Enabled {
		return ""
	}
	return filepath.Join(c.PracticeDir, c.History.DatabaseFile)
}

// LogsDir returns the directory used for debug logs.
func (c *Config) LogsDir() string {
	return filepath.Join(c.PracticeDir, "logs")
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
