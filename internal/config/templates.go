package config

import (
	"strconv"
	"strings"
)

// Strictness represents how demanding the generated quality gate is
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// AllStrictness returns the strictness levels from most lenient to strictest
func AllStrictness() []Strictness {
	return []Strictness{StrictnessRelaxed, StrictnessStandard, StrictnessStrict}
}

// StrictnessPreset holds the values a strictness level writes into a config template
type StrictnessPreset struct {
	MinScore       float64
	ErrorPenalty   float64
	WarningPenalty float64
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MinScore:       5.0,
			ErrorPenalty:   1.5,
			WarningPenalty: 0.75,
		},
		StrictnessStandard: {
			MinScore:       DefaultMinScore,
			ErrorPenalty:   2.0,
			WarningPenalty: 1.0,
		},
		StrictnessStrict: {
			MinScore:       8.5,
			ErrorPenalty:   3.0,
			WarningPenalty: 1.5,
		},
	}
}

// GetConfigTemplate returns a documented .compass.yaml for the given strictness.
// An unknown strictness falls back to standard.
func GetConfigTemplate(strictness Strictness) string {
	preset, ok := GetStrictnessPresets()[strictness]
	if !ok {
		preset = GetStrictnessPresets()[StrictnessStandard]
	}
	d := DefaultConfig()

	return `# compass configuration
# Values can be overridden with COMPASS_* environment variables,
# e.g. COMPASS_CHECK_MIN_SCORE=8

# Scoring: every issue deducts penalty[severity] x rule weight from max_score
scoring:
  max_score: ` + formatFloat(d.Scoring.MaxScore) + `
  # decimal places kept in the reported score
  precision: ` + strconv.Itoa(d.Scoring.Precision) + `
  penalties:
    error: ` + formatFloat(preset.ErrorPenalty) + `
    warning: ` + formatFloat(preset.WarningPenalty) + `
    info: ` + formatFloat(d.Scoring.Penalties.Info) + `
    style: ` + formatFloat(d.Scoring.Penalties.Style) + `
  # lower bounds of score / max_score for each rating
  thresholds:
    excellent: ` + formatFloat(d.Scoring.Thresholds.Excellent) + `
    good: ` + formatFloat(d.Scoring.Thresholds.Good) + `
    fair: ` + formatFloat(d.Scoring.Thresholds.Fair) + `
    poor: ` + formatFloat(d.Scoring.Thresholds.Poor) + `

evaluation:
  # abort a single file after this many seconds
  timeout_seconds: ` + strconv.Itoa(d.Evaluation.TimeoutSeconds) + `
  # override rule file replacing the built-in rules (empty = built-in)
  rules_file: ""

output:
  # json, yaml, text or html
  format: ` + d.Output.Format + `

performance:
  # files evaluated in parallel by 'compass check' (0 = default)
  max_goroutines: ` + strconv.Itoa(d.Performance.MaxGoroutines) + `
  timeout_seconds: ` + strconv.Itoa(d.Performance.TimeoutSeconds) + `

analysis:
  recursive: true
  respect_gitignore: true
  exclude_patterns:
` + formatYAMLList(d.Analysis.ExcludePatterns, "    ") + `

check:
  # 'compass check' fails when a file scores below this
  min_score: ` + formatFloat(preset.MinScore) + `
`
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatYAMLList formats a string slice as a block sequence with the given indent
func formatYAMLList(items []string, indent string) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent + "- " + strconv.Quote(item))
	}
	return sb.String()
}
