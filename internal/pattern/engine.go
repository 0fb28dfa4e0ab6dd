// Package pattern compiles and executes tree-sitter queries as structural patterns
package pattern

import (
	"context"
	"errors"
	"fmt"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrNoCaptures is returned for a pattern that names no capture, so its matches have no anchor
var ErrNoCaptures = errors.New("pattern has no captures")

// Query is a compiled tree-sitter query. It is immutable and may be executed
// concurrently; every execution uses its own cursor.
type Query struct {
	query    *sitter.Query
	language domain.Language
	captures []string
}

// Language returns the language the query was compiled for
func (q *Query) Language() domain.Language { return q.language }

// CaptureCount returns the number of distinct capture names in the query
func (q *Query) CaptureCount() int { return len(q.captures) }

// Engine implements domain.PatternEngine over tree-sitter queries
type Engine struct{}

// NewEngine creates a pattern engine
func NewEngine() *Engine {
	return &Engine{}
}

// Compile compiles query text for a language
func (e *Engine) Compile(lang domain.Language, text string) (domain.CompiledPattern, error) {
	grammar, err := parser.Grammar(lang)
	if err != nil {
		return nil, err
	}

	q, err := sitter.NewQuery([]byte(text), grammar)
	if err != nil {
		return nil, err
	}

	count := q.CaptureCount()
	if count == 0 {
		q.Close()
		return nil, ErrNoCaptures
	}

	captures := make([]string, count)
	for i := uint32(0); i < count; i++ {
		captures[i] = q.CaptureNameForId(i)
	}

	return &Query{
		query:    q,
		language: lang,
		captures: captures,
	}, nil
}

// Execute runs a compiled query over a tree and returns every match that
// satisfies the query's text predicates
func (e *Engine) Execute(ctx context.Context, compiled domain.CompiledPattern, tree domain.SyntaxTree) ([]domain.PatternMatch, error) {
	q, ok := compiled.(*Query)
	if !ok {
		return nil, fmt.Errorf("unsupported compiled pattern type %T", compiled)
	}
	if tree == nil {
		return nil, nil
	}
	t, ok := tree.(*parser.Tree)
	if !ok {
		return nil, fmt.Errorf("unsupported syntax tree type %T", tree)
	}
	if q.language != t.Language() {
		return nil, fmt.Errorf("pattern compiled for %s cannot run on a %s tree", q.language, t.Language())
	}

	root := t.Root()
	if root == nil {
		return nil, nil
	}
	source := t.Source()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q.query, root)

	var matches []domain.PatternMatch
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)
		if m == nil || len(m.Captures) == 0 {
			continue
		}

		captures := make([]domain.PatternCapture, 0, len(m.Captures))
		for _, c := range m.Captures {
			captures = append(captures, domain.PatternCapture{
				Name:     q.query.CaptureNameForId(c.Index),
				Position: nodePosition(c.Node),
				Text:     c.Node.Content(source),
			})
		}
		matches = append(matches, domain.PatternMatch{Captures: captures})
	}

	return matches, nil
}

func nodePosition(n *sitter.Node) domain.Position {
	start := n.StartPoint()
	return domain.Position{
		Line:      int(start.Row) + 1,
		Column:    int(start.Column) + 1,
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}
