// Package scoring turns a list of issues into a bounded, rated quality score
package scoring

import (
	"fmt"
	"math"

	"github.com/ludo-technologies/compass/domain"
)

// Default penalty per severity, before rule weight is applied
const (
	DefaultErrorPenalty   = 2.0
	DefaultWarningPenalty = 1.0
	DefaultInfoPenalty    = 0.5
	DefaultStylePenalty   = 0.25
)

// Default rating thresholds as fractions of the max score
const (
	DefaultExcellentThreshold = 0.90
	DefaultGoodThreshold      = 0.75
	DefaultFairThreshold      = 0.50
	DefaultPoorThreshold      = 0.30
)

// DefaultPrecision is the number of decimals kept in the reported score
const DefaultPrecision = 1

const maxPrecision = 6

// Penalties holds the base deduction for each severity
type Penalties struct {
	Error   float64 `mapstructure:"error" yaml:"error" json:"error"`
	Warning float64 `mapstructure:"warning" yaml:"warning" json:"warning"`
	Info    float64 `mapstructure:"info" yaml:"info" json:"info"`
	Style   float64 `mapstructure:"style" yaml:"style" json:"style"`
}

// For returns the base penalty for a severity
func (p Penalties) For(s domain.Severity) float64 {
	switch s {
	case domain.SeverityError:
		return p.Error
	case domain.SeverityWarning:
		return p.Warning
	case domain.SeverityInfo:
		return p.Info
	default:
		return p.Style
	}
}

// Thresholds holds the lower bound of score/max for each rating above Critical
type Thresholds struct {
	Excellent float64 `mapstructure:"excellent" yaml:"excellent" json:"excellent"`
	Good      float64 `mapstructure:"good" yaml:"good" json:"good"`
	Fair      float64 `mapstructure:"fair" yaml:"fair" json:"fair"`
	Poor      float64 `mapstructure:"poor" yaml:"poor" json:"poor"`
}

// Config holds the tunable scoring constants
type Config struct {
	MaxScore   float64    `mapstructure:"max_score" yaml:"max_score" json:"max_score"`
	Precision  int        `mapstructure:"precision" yaml:"precision" json:"precision"`
	Penalties  Penalties  `mapstructure:"penalties" yaml:"penalties" json:"penalties"`
	Thresholds Thresholds `mapstructure:"thresholds" yaml:"thresholds" json:"thresholds"`
}

// DefaultConfig returns the default scoring configuration
func DefaultConfig() Config {
	return Config{
		MaxScore:  domain.DefaultMaxScore,
		Precision: DefaultPrecision,
		Penalties: Penalties{
			Error:   DefaultErrorPenalty,
			Warning: DefaultWarningPenalty,
			Info:    DefaultInfoPenalty,
			Style:   DefaultStylePenalty,
		},
		Thresholds: Thresholds{
			Excellent: DefaultExcellentThreshold,
			Good:      DefaultGoodThreshold,
			Fair:      DefaultFairThreshold,
			Poor:      DefaultPoorThreshold,
		},
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MaxScore <= 0 {
		return fmt.Errorf("max_score must be > 0, got %v", c.MaxScore)
	}
	if c.Precision < 0 || c.Precision > maxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", maxPrecision, c.Precision)
	}

	for _, s := range domain.AllSeverities() {
		if p := c.Penalties.For(s); p <= 0 {
			return fmt.Errorf("%s penalty must be > 0, got %v", s, p)
		}
	}

	t := c.Thresholds
	if t.Excellent > 1 || t.Poor <= 0 {
		return fmt.Errorf("thresholds must lie in (0, 1], got excellent=%v poor=%v", t.Excellent, t.Poor)
	}
	if !(t.Excellent > t.Good && t.Good > t.Fair && t.Fair > t.Poor) {
		return fmt.Errorf("thresholds must be strictly decreasing: excellent=%v good=%v fair=%v poor=%v",
			t.Excellent, t.Good, t.Fair, t.Poor)
	}
	return nil
}

var summaries = map[domain.Rating]string{
	domain.RatingExcellent: "Excellent code quality with minimal issues",
	domain.RatingGood:      "Good code quality with room for minor improvements",
	domain.RatingFair:      "Code needs improvement in several areas",
	domain.RatingPoor:      "Code has significant quality problems",
	domain.RatingCritical:  "Code has critical quality problems that need immediate attention",
}

// Summary returns the fixed summary sentence for a rating
func Summary(r domain.Rating) string {
	return summaries[r]
}

// Scorer computes scores from issues. It holds no mutable state.
type Scorer struct {
	config Config
}

// NewScorer creates a scorer after validating its configuration
func NewScorer(config Config) (*Scorer, error) {
	if err := config.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid scoring configuration", err)
	}
	return &Scorer{config: config}, nil
}

// NewDefaultScorer creates a scorer with the default configuration
func NewDefaultScorer() *Scorer {
	return &Scorer{config: DefaultConfig()}
}

// Config returns the scorer's configuration
func (s *Scorer) Config() Config {
	return s.config
}

// Penalty returns the deduction for a single issue
func (s *Scorer) Penalty(issue domain.Issue) float64 {
	return s.config.Penalties.For(issue.Severity) * weightOf(issue)
}

// Score aggregates issues into a score, rating, summary and breakdown
func (s *Scorer) Score(issues []domain.Issue) domain.Score {
	var breakdown domain.ScoreBreakdown
	for _, issue := range issues {
		penalty := s.Penalty(issue)
		bucket := breakdown.For(issue.Severity)
		bucket.Count++
		bucket.Deduction += penalty
		breakdown.TotalDeduction += penalty
	}

	for _, sev := range domain.AllSeverities() {
		bucket := breakdown.For(sev)
		bucket.Deduction = round(bucket.Deduction, maxPrecision)
	}
	breakdown.TotalDeduction = round(breakdown.TotalDeduction, maxPrecision)

	maxScore := s.config.MaxScore
	value := clamp(maxScore-breakdown.TotalDeduction, 0, maxScore)
	value = round(value, s.config.Precision)

	rating := s.Rate(value)
	return domain.Score{
		Value:     value,
		MaxScore:  maxScore,
		Rating:    rating,
		Summary:   Summary(rating),
		Breakdown: breakdown,
	}
}

// Rate maps a score onto a rating using the configured thresholds
func (s *Scorer) Rate(score float64) domain.Rating {
	ratio := score / s.config.MaxScore
	t := s.config.Thresholds
	switch {
	case ratio >= t.Excellent:
		return domain.RatingExcellent
	case ratio >= t.Good:
		return domain.RatingGood
	case ratio >= t.Fair:
		return domain.RatingFair
	case ratio >= t.Poor:
		return domain.RatingPoor
	default:
		return domain.RatingCritical
	}
}

func weightOf(issue domain.Issue) float64 {
	if issue.Weight <= 0 {
		return domain.DefaultRuleWeight
	}
	return issue.Weight
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// round rounds half away from zero to the given number of decimals
func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
