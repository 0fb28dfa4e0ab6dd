package service

import (
	"fmt"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/config"
)

// ConfigOverrides holds values given on the command line. Zero values leave
// the configuration untouched.
type ConfigOverrides struct {
	Format         string
	TimeoutSeconds int
	MaxScore       float64
	MinScore       *float64
	RulesFile      string
	Workers        int
}

// ConfigurationLoaderImpl loads the tool configuration and layers CLI overrides on top
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads the configuration at path, or discovers one starting at
// targetPath when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// FindDefaultConfigFile returns the configuration file discovery would use for targetPath
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile(targetPath string) string {
	return config.FindDefaultConfig(targetPath)
}

// MergeConfig returns a copy of base with the non-zero overrides applied
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, override ConfigOverrides) *config.Config {
	merged := *base
	merged.Analysis.ExcludePatterns = append([]string(nil), base.Analysis.ExcludePatterns...)

	if override.Format != "" {
		merged.Output.Format = override.Format
	}
	if override.TimeoutSeconds > 0 {
		merged.Evaluation.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.MaxScore > 0 {
		merged.Scoring.MaxScore = override.MaxScore
	}
	if override.MinScore != nil {
		merged.Check.MinScore = *override.MinScore
	}
	if override.RulesFile != "" {
		merged.Evaluation.RulesFile = override.RulesFile
	}
	if override.Workers > 0 {
		merged.Performance.MaxGoroutines = override.Workers
	}

	return &merged
}

// ValidateConfig validates a merged configuration
func (c *ConfigurationLoaderImpl) ValidateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return domain.NewConfigError(fmt.Sprintf("invalid configuration: %v", err), nil)
	}
	if !domain.OutputFormat(cfg.Output.Format).Valid() {
		return domain.NewUnsupportedFormatError(cfg.Output.Format)
	}
	return nil
}
