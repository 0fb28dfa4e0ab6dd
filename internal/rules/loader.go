// Package rules resolves the active rule set for a language from the
// built-in definitions or an override file
package rules

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/compass/domain"
	"github.com/spf13/viper"
)

// Definition is one rule as written in a rule file
type Definition struct {
	Name       string   `mapstructure:"name" yaml:"name" json:"name"`
	Query      string   `mapstructure:"query" yaml:"query" json:"query"`
	Severity   string   `mapstructure:"severity" yaml:"severity" json:"severity"`
	Message    string   `mapstructure:"message" yaml:"message" json:"message"`
	Suggestion string   `mapstructure:"suggestion" yaml:"suggestion,omitempty" json:"suggestion,omitempty"`
	Enabled    *bool    `mapstructure:"enabled" yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Weight     *float64 `mapstructure:"weight" yaml:"weight,omitempty" json:"weight,omitempty"`
	// Language is informational; files are already separated per language
	Language string `mapstructure:"language" yaml:"language,omitempty" json:"language,omitempty"`
}

// File is the top-level layout of a rule file
type File struct {
	Rules []Definition `mapstructure:"rules" yaml:"rules" json:"rules"`
}

// formatForPath picks the decoder from the file extension. Unknown
// extensions are read as TOML.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

// Decode parses rule file content in the given format (toml, yaml or json)
func Decode(data []byte, format string) (*File, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and decodes a rule file from disk
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("cannot read rule file %s", path), err)
	}

	f, err := Decode(data, formatForPath(path))
	if err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("cannot decode rule file %s", path), err)
	}
	return f, nil
}

// Build validates definitions and converts them into a rule set for lang
func Build(lang domain.Language, source string, defs []Definition) (*domain.RuleSet, error) {
	if len(defs) == 0 {
		return nil, domain.NewConfigError(fmt.Sprintf("no rules defined in %s", source), nil)
	}

	rules := make([]domain.Rule, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	var warnings []string
	enabled := 0

	for i, def := range defs {
		rule, warning, err := convert(lang, def)
		if err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("invalid rule #%d in %s", i+1, source), err)
		}
		if seen[rule.Name] {
			return nil, domain.NewConfigError(fmt.Sprintf("duplicate rule name '%s' in %s", rule.Name, source), nil)
		}
		seen[rule.Name] = true

		if warning != "" {
			warnings = append(warnings, warning)
		}
		if rule.Enabled {
			enabled++
		}
		rules = append(rules, rule)
	}

	// An override with every rule disabled is rejected rather than scored as clean
	if enabled == 0 {
		return nil, domain.NewConfigError(
			fmt.Sprintf("%s contains no enabled rules for language '%s': all %d rules are disabled, enable at least one or remove the override",
				source, lang, len(rules)), nil)
	}

	return domain.NewRuleSet(lang, source, rules, warnings...)
}

func convert(lang domain.Language, def Definition) (domain.Rule, string, error) {
	name := strings.TrimSpace(def.Name)
	required := []struct{ field, value string }{
		{"name", name},
		{"query", def.Query},
		{"severity", def.Severity},
		{"message", def.Message},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.Rule{}, "", fmt.Errorf("missing required field '%s'", r.field)
		}
	}

	severity, err := domain.ParseSeverity(def.Severity)
	if err != nil {
		return domain.Rule{}, "", fmt.Errorf("rule '%s': %w", name, err)
	}

	weight := domain.DefaultRuleWeight
	if def.Weight != nil {
		weight = *def.Weight
		if weight <= 0 {
			return domain.Rule{}, "", fmt.Errorf("rule '%s': weight must be positive, got %v", name, weight)
		}
	}

	enabled := true
	if def.Enabled != nil {
		enabled = *def.Enabled
	}

	var scope domain.Language
	var warning string
	if strings.TrimSpace(def.Language) != "" {
		parsed, ok := domain.ParseLanguage(def.Language)
		switch {
		case !ok:
			warning = fmt.Sprintf("rule '%s' declares unknown language '%s'", name, def.Language)
		case parsed != lang:
			scope = parsed
			warning = fmt.Sprintf("rule '%s' declares language '%s' but is applied to %s", name, parsed, lang)
		default:
			scope = parsed
		}
	}

	return domain.Rule{
		Name:          name,
		LanguageScope: scope,
		Pattern:       def.Query,
		Severity:      severity,
		Message:       def.Message,
		Suggestion:    def.Suggestion,
		Weight:        weight,
		Enabled:       enabled,
	}, warning, nil
}

// Definitions converts a rule set back into file definitions
func Definitions(rs *domain.RuleSet) []Definition {
	rules := rs.Rules()
	defs := make([]Definition, 0, len(rules))
	for _, r := range rules {
		def := Definition{
			Name:       r.Name,
			Query:      r.Pattern,
			Severity:   r.Severity.String(),
			Message:    r.Message,
			Suggestion: r.Suggestion,
			Language:   string(r.LanguageScope),
		}
		if !r.Enabled {
			enabled := false
			def.Enabled = &enabled
		}
		if r.Weight != domain.DefaultRuleWeight {
			weight := r.Weight
			def.Weight = &weight
		}
		defs = append(defs, def)
	}
	return defs
}
