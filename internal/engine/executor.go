// Package engine runs compiled rule patterns against a parse tree and turns
// the raw matches into deduplicated issues
package engine

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/registry"
)

// PrimaryCapture is the capture name that marks a pattern's anchor node
const PrimaryCapture = "primary"

// Result is the output of running a registry against one tree
type Result struct {
	Matches []domain.Match
	// Warnings holds rules whose execution failed without aborting the run
	Warnings []string
}

// Executor runs every compiled pattern of a registry against a tree
type Executor struct {
	engine domain.PatternEngine
}

// NewExecutor creates an executor backed by engine
func NewExecutor(engine domain.PatternEngine) *Executor {
	return &Executor{engine: engine}
}

// Execute collects the raw matches of every compiled rule. It stops with an
// EXECUTION_TIMEOUT error once ctx is done.
func (x *Executor) Execute(ctx context.Context, reg *registry.Registry, tree domain.SyntaxTree) (*Result, error) {
	result := &Result{}
	if tree == nil || reg == nil {
		return result, nil
	}

	for _, entry := range reg.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, timeoutError(entry.Rule.Name, err)
		}

		matches, err := x.engine.Execute(ctx, entry.Pattern, tree)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, timeoutError(entry.Rule.Name, ctxErr)
			}
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rule '%s' failed to execute: %v", entry.Rule.Name, err))
			continue
		}

		for _, m := range matches {
			anchor, ok := Anchor(entry.Rule.Name, m)
			if !ok {
				continue
			}
			result.Matches = append(result.Matches, domain.Match{
				Rule:   entry.Rule.Name,
				Anchor: anchor.Position,
				Text:   anchor.Text,
			})
		}
	}

	return result, nil
}

// Anchor picks the capture that locates a match: the capture named "primary"
// or named after the rule, otherwise the first capture
func Anchor(rule string, m domain.PatternMatch) (domain.PatternCapture, bool) {
	if len(m.Captures) == 0 {
		return domain.PatternCapture{}, false
	}
	for _, c := range m.Captures {
		if c.Name == PrimaryCapture {
			return c, true
		}
	}
	for _, c := range m.Captures {
		if c.Name == rule {
			return c, true
		}
	}
	return m.Captures[0], true
}

func timeoutError(rule string, cause error) error {
	return domain.NewDomainError(domain.ErrCodeExecutionTimeout,
		fmt.Sprintf("pattern execution aborted at rule '%s'", rule), cause)
}
