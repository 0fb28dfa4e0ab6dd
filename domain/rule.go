package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Severity is the importance of a rule's findings
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityStyle
)

// AllSeverities returns the severities from most to least severe
func AllSeverities() []Severity {
	return []Severity{SeverityError, SeverityWarning, SeverityInfo, SeverityStyle}
}

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityStyle:
		return "style"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the four recognized severities
func (s Severity) Valid() bool {
	return s >= SeverityError && s <= SeverityStyle
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "style":
		return SeverityStyle, nil
	}
	return 0, fmt.Errorf("invalid severity '%s', must be one of: error, warning, info, style", s)
}

// MarshalText serializes the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DefaultRuleWeight is the weight of a rule that does not set one
const DefaultRuleWeight = 1.0

// Rule is a structural pattern plus the metadata reported when it matches
type Rule struct {
	Name string
	// LanguageScope is informational; empty means unscoped
	LanguageScope Language
	Pattern       string
	Severity      Severity
	Message       string
	Suggestion    string
	Weight        float64
	Enabled       bool
}

// RuleSet is the validated, ordered collection of rules active for one language
type RuleSet struct {
	language Language
	source   string
	rules    []Rule
	index    map[string]int
	digest   string
	warnings []string
}

// NewRuleSet builds a rule set, failing if two rules share a name.
// Warnings are load-time notes that do not invalidate the set.
func NewRuleSet(language Language, source string, rules []Rule, warnings ...string) (*RuleSet, error) {
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		if _, dup := index[r.Name]; dup {
			return nil, NewConfigError(fmt.Sprintf("duplicate rule name '%s' in %s", r.Name, source), nil)
		}
		index[r.Name] = i
	}

	copied := make([]Rule, len(rules))
	copy(copied, rules)

	return &RuleSet{
		language: language,
		source:   source,
		rules:    copied,
		index:    index,
		digest:   digestRules(language, copied),
		warnings: append([]string(nil), warnings...),
	}, nil
}

// Language returns the language the set was resolved for
func (rs *RuleSet) Language() Language { return rs.language }

// Source returns where the rules came from, e.g. "builtin:cpp" or an override file path
func (rs *RuleSet) Source() string { return rs.source }

// Digest is a content hash of the rules, stable across loads of identical content
func (rs *RuleSet) Digest() string { return rs.digest }

// Warnings returns the notes recorded while loading the rules
func (rs *RuleSet) Warnings() []string {
	return append([]string(nil), rs.warnings...)
}

// Len returns the number of rules, enabled or not
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns a copy of the rules in load order
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// EnabledRules returns the enabled rules in load order
func (rs *RuleSet) EnabledRules() []Rule {
	out := make([]Rule, 0, len(rs.rules))
	for _, r := range rs.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// Rule looks up a rule by name
func (rs *RuleSet) Rule(name string) (Rule, bool) {
	i, ok := rs.index[name]
	if !ok {
		return Rule{}, false
	}
	return rs.rules[i], true
}

func digestRules(language Language, rules []Rule) string {
	h := sha256.New()
	h.Write([]byte(language))
	for _, r := range rules {
		for _, field := range []string{
			r.Name,
			string(r.LanguageScope),
			r.Pattern,
			r.Severity.String(),
			r.Message,
			r.Suggestion,
			strconv.FormatFloat(r.Weight, 'g', -1, 64),
			strconv.FormatBool(r.Enabled),
		} {
			h.Write([]byte{0})
			h.Write([]byte(field))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
