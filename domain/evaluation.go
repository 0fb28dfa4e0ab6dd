package domain

import (
	"context"
	"io"
	"time"
)

// SyntaxTree is a parsed source file
type SyntaxTree interface {
	Language() Language
	Source() []byte
	// HasErrors reports whether the parser had to recover from syntax errors
	HasErrors() bool
	Close()
}

// SourceParser turns source text into a SyntaxTree
type SourceParser interface {
	Parse(ctx context.Context, language Language, source []byte) (SyntaxTree, error)
}

// CompiledPattern is an opaque, immutable compiled structural pattern.
// It may be executed concurrently against any number of trees.
type CompiledPattern interface {
	Language() Language
	CaptureCount() int
}

// PatternCapture is one named node captured by a pattern match
type PatternCapture struct {
	Name     string
	Position Position
	Text     string
}

// PatternMatch is one match yielded by the pattern engine
type PatternMatch struct {
	Captures []PatternCapture
}

// PatternEngine compiles and executes structural patterns
type PatternEngine interface {
	Compile(language Language, pattern string) (CompiledPattern, error)
	Execute(ctx context.Context, pattern CompiledPattern, tree SyntaxTree) ([]PatternMatch, error)
}

// RuleSetResolver produces the active rule set for a language.
// An empty overridePath selects the built-in rules.
type RuleSetResolver interface {
	Resolve(language Language, overridePath string) (*RuleSet, error)
}

// EvaluateRequest describes one file evaluation
type EvaluateRequest struct {
	Path string
	// Source is read from Path when nil
	Source []byte
	// RulesPath names an override rule file; empty selects built-in rules
	RulesPath string
	Timeout   time.Duration
}

// EvaluationService evaluates source files into reports
type EvaluationService interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (*Report, error)
}

// ReportFormatter writes reports in a given output format
type ReportFormatter interface {
	Write(report *Report, format OutputFormat, writer io.Writer) error
}

// ExecutableTask is a unit of work for the parallel executor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs tasks concurrently
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
	SetMaxConcurrency(max int)
	SetTimeout(timeout time.Duration)
}

// ProgressManager creates progress trackers for long-running work
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// CheckService evaluates batches of files against a minimum score
type CheckService interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)
}

// CheckFormatter writes batch check results
type CheckFormatter interface {
	WriteCheck(result *CheckResult, format OutputFormat, writer io.Writer) error
}
