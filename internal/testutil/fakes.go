package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/compass/domain"
)

// FakeTree is an in-memory SyntaxTree holding only the source text
type FakeTree struct {
	Lang      domain.Language
	Src       []byte
	SyntaxErr bool
	closed    bool
}

func (t *FakeTree) Language() domain.Language { return t.Lang }
func (t *FakeTree) Source() []byte            { return t.Src }
func (t *FakeTree) HasErrors() bool           { return t.SyntaxErr }
func (t *FakeTree) Close()                    { t.closed = true }

// Closed reports whether Close was called
func (t *FakeTree) Closed() bool { return t.closed }

// FakeParser returns FakeTrees. Source containing "<<syntax-error>>" yields a
// tree flagged with syntax errors; source containing "<<unparseable>>" fails.
type FakeParser struct{}

func (FakeParser) Parse(ctx context.Context, lang domain.Language, src []byte) (domain.SyntaxTree, error) {
	if strings.Contains(string(src), "<<unparseable>>") {
		return nil, domain.NewParseError("<input>", errors.New("fake parser rejected input"))
	}
	return &FakeTree{
		Lang:      lang,
		Src:       src,
		SyntaxErr: strings.Contains(string(src), "<<syntax-error>>"),
	}, nil
}

// FakePattern is compiled by FakeEngine
type FakePattern struct {
	Lang    domain.Language
	Literal string
	Repeat  int
}

func (p *FakePattern) Language() domain.Language { return p.Lang }
func (p *FakePattern) CaptureCount() int         { return 1 }

// FakeEngine is a PatternEngine over literal text search. Patterns have the
// form "find:<literal>", which matches every occurrence of literal, or
// "twice:<literal>", which yields every match two times. Anything else fails
// to compile.
type FakeEngine struct {
	// Delay is slept before each execution, or until ctx is done
	Delay time.Duration

	mu       sync.Mutex
	compiles map[string]int
}

// NewFakeEngine creates a FakeEngine
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{compiles: make(map[string]int)}
}

// Compiles returns how often pattern was compiled
func (e *FakeEngine) Compiles(pattern string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compiles[pattern]
}

func (e *FakeEngine) Compile(lang domain.Language, pattern string) (domain.CompiledPattern, error) {
	e.mu.Lock()
	if e.compiles == nil {
		e.compiles = make(map[string]int)
	}
	e.compiles[pattern]++
	e.mu.Unlock()

	repeat := 1
	literal, ok := strings.CutPrefix(pattern, "find:")
	if !ok {
		literal, ok = strings.CutPrefix(pattern, "twice:")
		repeat = 2
	}
	if !ok || literal == "" {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	return &FakePattern{Lang: lang, Literal: literal, Repeat: repeat}, nil
}

func (e *FakeEngine) Execute(ctx context.Context, compiled domain.CompiledPattern, tree domain.SyntaxTree) ([]domain.PatternMatch, error) {
	p, ok := compiled.(*FakePattern)
	if !ok {
		return nil, fmt.Errorf("unexpected pattern type %T", compiled)
	}

	if e.Delay > 0 {
		select {
		case <-time.After(e.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if tree == nil {
		return nil, nil
	}

	src := string(tree.Source())
	var matches []domain.PatternMatch
	for offset := 0; ; {
		i := strings.Index(src[offset:], p.Literal)
		if i < 0 {
			break
		}
		start := offset + i
		pos := positionAt(src, start, start+len(p.Literal))
		for r := 0; r < p.Repeat; r++ {
			matches = append(matches, domain.PatternMatch{Captures: []domain.PatternCapture{
				{Name: "primary", Position: pos, Text: p.Literal},
			}})
		}
		offset = start + len(p.Literal)
	}
	return matches, nil
}

func positionAt(src string, start, end int) domain.Position {
	line := 1 + strings.Count(src[:start], "\n")
	col := start + 1
	if nl := strings.LastIndex(src[:start], "\n"); nl >= 0 {
		col = start - nl
	}
	return domain.Position{Line: line, Column: col, StartByte: start, EndByte: end}
}
