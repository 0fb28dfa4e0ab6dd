package domain

import (
	"fmt"
	"strings"
)

// Rating is a discrete quality label derived from score / max score
type Rating int

const (
	RatingExcellent Rating = iota
	RatingGood
	RatingFair
	RatingPoor
	RatingCritical
)

// AllRatings returns the ratings from best to worst
func AllRatings() []Rating {
	return []Rating{RatingExcellent, RatingGood, RatingFair, RatingPoor, RatingCritical}
}

func (r Rating) String() string {
	switch r {
	case RatingExcellent:
		return "Excellent"
	case RatingGood:
		return "Good"
	case RatingFair:
		return "Fair"
	case RatingPoor:
		return "Poor"
	case RatingCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// MarshalText serializes the rating by label
func (r Rating) MarshalText() ([]byte, error) {
	if r < RatingExcellent || r > RatingCritical {
		return nil, fmt.Errorf("invalid rating %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText parses a rating label
func (r *Rating) UnmarshalText(text []byte) error {
	parsed, ok := ParseRating(string(text))
	if !ok {
		return fmt.Errorf("invalid rating '%s'", string(text))
	}
	*r = parsed
	return nil
}

// ParseRating converts a label such as "Good" (case-insensitive) to a Rating
func ParseRating(s string) (Rating, bool) {
	for _, r := range AllRatings() {
		if strings.EqualFold(strings.TrimSpace(s), r.String()) {
			return r, true
		}
	}
	return 0, false
}

// DefaultMaxScore is the score of a file with no issues
const DefaultMaxScore = 10.0

// SeverityBreakdown holds the issue count and deduction for one severity
type SeverityBreakdown struct {
	Count     int     `json:"count" yaml:"count"`
	Deduction float64 `json:"deduction" yaml:"deduction"`
}

// ScoreBreakdown explains how the score was reached
type ScoreBreakdown struct {
	Errors   SeverityBreakdown `json:"errors" yaml:"errors"`
	Warnings SeverityBreakdown `json:"warnings" yaml:"warnings"`
	Info     SeverityBreakdown `json:"info" yaml:"info"`
	Style    SeverityBreakdown `json:"style" yaml:"style"`
	// TotalDeduction is the unclamped sum of all deductions
	TotalDeduction float64 `json:"total_deduction" yaml:"total_deduction"`
}

// For returns a pointer to the bucket for the given severity
func (b *ScoreBreakdown) For(s Severity) *SeverityBreakdown {
	switch s {
	case SeverityError:
		return &b.Errors
	case SeverityWarning:
		return &b.Warnings
	case SeverityInfo:
		return &b.Info
	default:
		return &b.Style
	}
}

// Score is the scorer's verdict for a list of issues
type Score struct {
	Value     float64
	MaxScore  float64
	Rating    Rating
	Summary   string
	Breakdown ScoreBreakdown
}

// Report is the terminal artifact of one file's evaluation
type Report struct {
	File        string         `json:"file" yaml:"file"`
	Language    Language       `json:"language" yaml:"language"`
	RuleSource  string         `json:"rule_source" yaml:"rule_source"`
	Score       float64        `json:"score" yaml:"score"`
	MaxScore    float64        `json:"max_score" yaml:"max_score"`
	Rating      Rating         `json:"rating" yaml:"rating"`
	Summary     string         `json:"summary" yaml:"summary"`
	TotalIssues int            `json:"total_issues" yaml:"total_issues"`
	Breakdown   ScoreBreakdown `json:"breakdown" yaml:"breakdown"`
	Issues      []Issue        `json:"issues" yaml:"issues"`
	Warnings    []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
