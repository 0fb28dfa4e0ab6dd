package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ludo-technologies/compass/domain"
)

const maxSnippetLength = 80

// BuildIssues collapses matches that share a (rule, anchor) key and returns
// one issue per surviving match, sorted by line, rule name and column.
//
// The anchor includes the byte span of the primary capture. Captures that
// start at the same line and column but cover nodes of different lengths,
// such as a call and its callee, are reported as separate issues. Anchor a
// rule on a single node to get one issue per site.
func BuildIssues(rs *domain.RuleSet, matches []domain.Match) []domain.Issue {
	seen := make(map[domain.MatchKey]struct{}, len(matches))
	type keyed struct {
		issue  domain.Issue
		anchor domain.Position
	}
	collected := make([]keyed, 0, len(matches))

	for _, m := range matches {
		key := m.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rule, ok := rs.Rule(m.Rule)
		if !ok {
			continue
		}

		collected = append(collected, keyed{
			issue: domain.Issue{
				Rule:       rule.Name,
				Severity:   rule.Severity,
				Line:       m.Anchor.Line,
				Column:     m.Anchor.Column,
				Message:    rule.Message,
				Suggestion: rule.Suggestion,
				Text:       snippet(m.Text),
				Weight:     rule.Weight,
			},
			anchor: m.Anchor,
		})
	}

	sort.SliceStable(collected, func(i, j int) bool {
		a, b := collected[i], collected[j]
		if a.anchor.Line != b.anchor.Line {
			return a.anchor.Line < b.anchor.Line
		}
		if a.issue.Rule != b.issue.Rule {
			return a.issue.Rule < b.issue.Rule
		}
		return a.anchor.Less(b.anchor)
	})

	issues := make([]domain.Issue, len(collected))
	for i, k := range collected {
		issues[i] = k.issue
	}
	return issues
}

// snippet returns the first line of text, trimmed and shortened
func snippet(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxSnippetLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxSnippetLength-3]) + "..."
}
