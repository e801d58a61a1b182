package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/harrison/scour/internal/fileutil"
	"github.com/harrison/scour/internal/logger"
	"github.com/harrison/scour/internal/models"
	"github.com/harrison/scour/internal/pattern"
)

// DirName is the per-project directory holding config, logs and history.
const DirName = ".scour"

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every run, not only those started with --record
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`

	// Keep is the number of most recent runs retained (0 = keep all)
	Keep int `yaml:"keep"`
}

// Config represents scour configuration options
type Config struct {
	// Workers is the size of the search worker pool (0 = one per CPU)
	Workers int `yaml:"workers"`

	// IgnoreCase folds case when matching
	IgnoreCase bool `yaml:"ignore_case"`

	// Stats prints the statistics block after the matches
	Stats bool `yaml:"stats"`

	// Mode selects how patterns compile: auto, regex or literal
	Mode string `yaml:"mode"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir"`

	// FileLog enables the per-run log file under LogDir
	FileLog bool `yaml:"file_log"`

	// ExcludeDirs are directory names never descended into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// UseIgnoreFiles honours .gitignore and .ignore files found while walking
	UseIgnoreFiles bool `yaml:"use_ignore_files"`

	// SkipHidden skips dot-entries found below the search roots
	SkipHidden bool `yaml:"skip_hidden"`

	// Extensions limits searched files to these extensions (empty = all)
	Extensions []string `yaml:"extensions"`

	// MaxDepth limits recursion below a directory root (0 = unlimited)
	MaxDepth int `yaml:"max_depth"`

	// Progress shows the progress bar on a terminal
	Progress bool `yaml:"progress"`

	// Color is auto, always or never
	Color string `yaml:"color"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Workers:        0, // One per CPU
		IgnoreCase:     false,
		Stats:          false,
		Mode:           string(pattern.ModeAuto),
		LogLevel:       "warn",
		LogDir:         filepath.Join(DirName, "logs"),
		FileLog:        false,
		ExcludeDirs:    slices.Clone(fileutil.DefaultExcludeDirs),
		UseIgnoreFiles: true,
		SkipHidden:     true,
		Extensions:     nil,
		MaxDepth:       0,
		Progress:       false,
		Color:          ColorAuto,
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(DirName, "history.db"),
			Keep:    100,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointers tell an explicit false or zero apart from an absent key
	type yamlConfig struct {
		Workers        *int          `yaml:"workers"`
		IgnoreCase     *bool         `yaml:"ignore_case"`
		Stats          *bool         `yaml:"stats"`
		Mode           string        `yaml:"mode"`
		LogLevel       string        `yaml:"log_level"`
		LogDir         string        `yaml:"log_dir"`
		FileLog        *bool         `yaml:"file_log"`
		ExcludeDirs    *[]string     `yaml:"exclude_dirs"`
		UseIgnoreFiles *bool         `yaml:"use_ignore_files"`
		SkipHidden     *bool         `yaml:"skip_hidden"`
		Extensions     []string      `yaml:"extensions"`
		MaxDepth       *int          `yaml:"max_depth"`
		Progress       *bool         `yaml:"progress"`
		Color          string        `yaml:"color"`
		History        HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Workers != nil {
		cfg.Workers = *yamlCfg.Workers
	}
	if yamlCfg.IgnoreCase != nil {
		cfg.IgnoreCase = *yamlCfg.IgnoreCase
	}
	if yamlCfg.Stats != nil {
		cfg.Stats = *yamlCfg.Stats
	}
	if yamlCfg.Mode != "" {
		cfg.Mode = yamlCfg.Mode
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.FileLog != nil {
		cfg.FileLog = *yamlCfg.FileLog
	}
	if yamlCfg.ExcludeDirs != nil {
		cfg.ExcludeDirs = *yamlCfg.ExcludeDirs
	}
	if yamlCfg.UseIgnoreFiles != nil {
		cfg.UseIgnoreFiles = *yamlCfg.UseIgnoreFiles
	}
	if yamlCfg.SkipHidden != nil {
		cfg.SkipHidden = *yamlCfg.SkipHidden
	}
	if len(yamlCfg.Extensions) > 0 {
		cfg.Extensions = yamlCfg.Extensions
	}
	if yamlCfg.MaxDepth != nil {
		cfg.MaxDepth = *yamlCfg.MaxDepth
	}
	if yamlCfg.Progress != nil {
		cfg.Progress = *yamlCfg.Progress
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}

	// Merge the history section field by field, only for keys that are present
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			history := yamlCfg.History
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = history.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = history.DBPath
			}
			if _, exists := historyMap["keep"]; exists {
				cfg.History.Keep = history.Keep
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .scour/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DirName, "config.yaml"))
}

// FlagOverrides carries CLI flag values. A nil field means the flag was not given.
type FlagOverrides struct {
	Workers    *int
	IgnoreCase *bool
	Stats      *bool
	Mode       *string
	LogLevel   *string
	LogDir     *string
	NoIgnore   *bool
	SkipHidden *bool
	Extensions []string
	MaxDepth   *int
	Progress   *bool
	Color      *string
	Record     *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(flags FlagOverrides) {
	if flags.Workers != nil {
		c.Workers = *flags.Workers
	}
	if flags.IgnoreCase != nil {
		c.IgnoreCase = *flags.IgnoreCase
	}
	if flags.Stats != nil {
		c.Stats = *flags.Stats
	}
	if flags.Mode != nil {
		c.Mode = *flags.Mode
	}
	if flags.LogLevel != nil {
		c.LogLevel = *flags.LogLevel
	}
	if flags.LogDir != nil {
		c.LogDir = *flags.LogDir
		c.FileLog = true
	}
	if flags.NoIgnore != nil && *flags.NoIgnore {
		c.UseIgnoreFiles = false
		c.ExcludeDirs = nil
	}
	if flags.SkipHidden != nil {
		c.SkipHidden = *flags.SkipHidden
	}
	if len(flags.Extensions) > 0 {
		c.Extensions = flags.Extensions
	}
	if flags.MaxDepth != nil {
		c.MaxDepth = *flags.MaxDepth
	}
	if flags.Progress != nil {
		c.Progress = *flags.Progress
	}
	if flags.Color != nil {
		c.Color = *flags.Color
	}
	if flags.Record != nil && *flags.Record {
		c.History.Enabled = true
	}
}

// Validate validates the configuration values
// Returns a ConfigError if any values are invalid
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return models.NewConfigError("workers must be >= 0, got %d", c.Workers)
	}

	if _, err := pattern.ParseMode(c.Mode); err != nil {
		return models.NewConfigError("invalid mode %q, must be one of: auto, regex, literal", c.Mode)
	}

	if !logger.IsValidLevel(c.LogLevel) {
		return models.NewConfigError("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return models.NewConfigError("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	if c.MaxDepth < 0 {
		return models.NewConfigError("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	if c.FileLog && c.LogDir == "" {
		return models.NewConfigError("log_dir cannot be empty when file_log is enabled")
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return models.NewConfigError("history.db_path cannot be empty when history is enabled")
	}
	if c.History.Keep < 0 {
		return models.NewConfigError("history.keep must be >= 0, got %d", c.History.Keep)
	}

	return nil
}

// EnumerateOptions builds the walker options the configuration describes.
func (c *Config) EnumerateOptions() fileutil.EnumerateOptions {
	rules := fileutil.NewIgnoreRules(fileutil.IgnoreOptions{
		ExcludeDirs:    c.ExcludeDirs,
		UseIgnoreFiles: c.UseIgnoreFiles,
	})
	return fileutil.EnumerateOptions{
		Ignore:     rules,
		SkipHidden: c.SkipHidden,
		Extensions: c.Extensions,
		MaxDepth:   c.MaxDepth,
	}
}
