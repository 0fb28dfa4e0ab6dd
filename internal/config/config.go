package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/compass/internal/scoring"
	"github.com/spf13/viper"
)

// Default evaluation settings
const (
	// DefaultEvaluationTimeoutSeconds bounds a single file's evaluation
	DefaultEvaluationTimeoutSeconds = 30

	// DefaultMinScore is the score a file must reach for `check` to pass
	DefaultMinScore = 7.0

	// DefaultOutputFormat is used by the single-file command
	DefaultOutputFormat = "json"
)

// Default performance settings
const (
	DefaultMaxGoroutines  = 4
	DefaultTimeoutSeconds = 300
)

// EnvPrefix is the prefix of environment variables that override config values,
// e.g. COMPASS_CHECK_MIN_SCORE
const EnvPrefix = "COMPASS"

// EnvConfigPath names a config file when none is found by discovery
const EnvConfigPath = "COMPASS_CONFIG"

// Config represents the main configuration structure
type Config struct {
	// Scoring holds the penalty, threshold and precision constants
	Scoring scoring.Config `json:"scoring" mapstructure:"scoring" yaml:"scoring"`

	// Evaluation holds per-file evaluation settings
	Evaluation EvaluationConfig `json:"evaluation" mapstructure:"evaluation" yaml:"evaluation"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Performance holds batch execution settings
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Analysis holds file discovery configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Check holds quality gate settings
	Check CheckConfig `json:"check" mapstructure:"check" yaml:"check"`
}

// EvaluationConfig holds per-file evaluation settings
type EvaluationConfig struct {
	// TimeoutSeconds aborts one file's evaluation after this many seconds
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// RulesFile is an override rule file used when none is given on the command line
	RulesFile string `json:"rules_file" mapstructure:"rules_file" yaml:"rules_file"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: json, yaml, text, html
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// PerformanceConfig holds batch execution settings
type PerformanceConfig struct {
	// MaxGoroutines limits the number of files evaluated concurrently
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole batch
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// AnalysisConfig holds file discovery configuration
type AnalysisConfig struct {
	// ExcludePatterns specifies gitignore-style patterns to skip
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// RespectGitignore skips files matched by .gitignore in the walked directories
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`
}

// CheckConfig holds quality gate settings
type CheckConfig struct {
	// MinScore is the lowest passing score
	MinScore float64 `json:"min_score" mapstructure:"min_score" yaml:"min_score"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scoring: scoring.DefaultConfig(),
		Evaluation: EvaluationConfig{
			TimeoutSeconds: DefaultEvaluationTimeoutSeconds,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  DefaultMaxGoroutines,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Analysis: AnalysisConfig{
			ExcludePatterns: []string{
				// Dependencies
				"node_modules",
				"vendor",
				"third_party",
				// Build outputs
				"target",
				"dist",
				"build",
				"out",
				// Version control
				".git",
				// Minified and generated files
				"*.min.js",
				"*.pb.go",
			},
			RespectGitignore: true,
			Recursive:        true,
			FollowSymlinks:   false,
		},
		Check: CheckConfig{
			MinScore: DefaultMinScore,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// An empty configPath triggers discovery starting at targetPath.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads a configuration file, layering it over the defaults
// and under COMPASS_* environment variables
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := newViper()
	config := DefaultConfig()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults make every key visible to AutomaticEnv during Unmarshal
	d := DefaultConfig()
	v.SetDefault("scoring.max_score", d.Scoring.MaxScore)
	v.SetDefault("scoring.precision", d.Scoring.Precision)
	v.SetDefault("scoring.penalties.error", d.Scoring.Penalties.Error)
	v.SetDefault("scoring.penalties.warning", d.Scoring.Penalties.Warning)
	v.SetDefault("scoring.penalties.info", d.Scoring.Penalties.Info)
	v.SetDefault("scoring.penalties.style", d.Scoring.Penalties.Style)
	v.SetDefault("scoring.thresholds.excellent", d.Scoring.Thresholds.Excellent)
	v.SetDefault("scoring.thresholds.good", d.Scoring.Thresholds.Good)
	v.SetDefault("scoring.thresholds.fair", d.Scoring.Thresholds.Fair)
	v.SetDefault("scoring.thresholds.poor", d.Scoring.Thresholds.Poor)
	v.SetDefault("evaluation.timeout_seconds", d.Evaluation.TimeoutSeconds)
	v.SetDefault("evaluation.rules_file", d.Evaluation.RulesFile)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("performance.max_goroutines", d.Performance.MaxGoroutines)
	v.SetDefault("performance.timeout_seconds", d.Performance.TimeoutSeconds)
	v.SetDefault("analysis.exclude_patterns", d.Analysis.ExcludePatterns)
	v.SetDefault("analysis.respect_gitignore", d.Analysis.RespectGitignore)
	v.SetDefault("analysis.recursive", d.Analysis.Recursive)
	v.SetDefault("analysis.follow_symlinks", d.Analysis.FollowSymlinks)
	v.SetDefault("check.min_score", d.Check.MinScore)
	return v
}

// configCandidates are the file names searched in each directory, in order
var configCandidates = []string{
	"compass.yaml",
	"compass.yml",
	".compass.yaml",
	".compass.yml",
	".compass.toml",
	"compass.json",
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// FindDefaultConfig returns the config file discovery would pick for targetPath
func FindDefaultConfig(targetPath string) string {
	return findDefaultConfig(targetPath)
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the file or directory being evaluated.
func findDefaultConfig(targetPath string) string {
	// If targetPath is provided, search from there upward
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	// Check XDG config directory (Linux/Mac standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "compass"), configCandidates); config != "" {
			return config
		}
	}

	// Check ~/.config/compass/ (XDG default), then the home directory
	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "compass"), configCandidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, configCandidates); config != "" {
			return config
		}
	}

	// COMPASS_CONFIG environment variable as fallback
	if envConfig := os.Getenv(EnvConfigPath); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	if c.Evaluation.TimeoutSeconds < 0 {
		return fmt.Errorf("evaluation.timeout_seconds must be >= 0, got %d", c.Evaluation.TimeoutSeconds)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"html": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, html", c.Output.Format)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	if c.Check.MinScore < 0 || c.Check.MinScore > c.Scoring.MaxScore {
		return fmt.Errorf("check.min_score must be between 0 and scoring.max_score (%v), got %v",
			c.Scoring.MaxScore, c.Check.MinScore)
	}

	return nil
}
