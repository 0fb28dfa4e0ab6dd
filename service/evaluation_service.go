package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/config"
	"github.com/ludo-technologies/compass/internal/engine"
	"github.com/ludo-technologies/compass/internal/language"
	"github.com/ludo-technologies/compass/internal/parser"
	"github.com/ludo-technologies/compass/internal/pattern"
	"github.com/ludo-technologies/compass/internal/registry"
	"github.com/ludo-technologies/compass/internal/rules"
	"github.com/ludo-technologies/compass/internal/scoring"
)

// DefaultEvaluationTimeout bounds one file's evaluation when neither the request nor the service sets one
const DefaultEvaluationTimeout = config.DefaultEvaluationTimeoutSeconds * time.Second

const syntaxErrorWarning = "source contains syntax errors; results may be incomplete"

// EvaluationComponents are the collaborators of the evaluation pipeline.
// Nil fields are replaced by the tree-sitter backed defaults.
type EvaluationComponents struct {
	Resolver   domain.RuleSetResolver
	Parser     domain.SourceParser
	Engine     domain.PatternEngine
	Registries *registry.Cache
}

// EvaluationServiceImpl implements domain.EvaluationService
type EvaluationServiceImpl struct {
	resolver   domain.RuleSetResolver
	parser     domain.SourceParser
	engine     domain.PatternEngine
	registries *registry.Cache
	scorer     *scoring.Scorer
	timeout    time.Duration
}

// NewEvaluationService creates an evaluation service backed by tree-sitter and the built-in rules
func NewEvaluationService(scorer *scoring.Scorer) *EvaluationServiceImpl {
	return NewEvaluationServiceWithComponents(EvaluationComponents{}, scorer)
}

// NewEvaluationServiceWithComponents creates an evaluation service with explicit collaborators
func NewEvaluationServiceWithComponents(c EvaluationComponents, scorer *scoring.Scorer) *EvaluationServiceImpl {
	if c.Resolver == nil {
		c.Resolver = rules.DefaultResolver()
	}
	if c.Parser == nil {
		c.Parser = parser.NewSourceParser()
	}
	if c.Engine == nil {
		c.Engine = pattern.NewEngine()
	}
	if c.Registries == nil {
		if _, ok := c.Engine.(*pattern.Engine); ok {
			c.Registries = registry.DefaultCache()
		} else {
			c.Registries = registry.NewCache()
		}
	}
	if scorer == nil {
		scorer = scoring.NewDefaultScorer()
	}
	return &EvaluationServiceImpl{
		resolver:   c.Resolver,
		parser:     c.Parser,
		engine:     c.Engine,
		registries: c.Registries,
		scorer:     scorer,
		timeout:    DefaultEvaluationTimeout,
	}
}

// NewEvaluationServiceFromConfig creates an evaluation service using the scoring and timeout settings of cfg
func NewEvaluationServiceFromConfig(cfg *config.Config) (*EvaluationServiceImpl, error) {
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	s := NewEvaluationService(scorer)
	s.SetTimeout(time.Duration(cfg.Evaluation.TimeoutSeconds) * time.Second)
	return s, nil
}

// SetTimeout sets the default per-file timeout; non-positive values are ignored
func (s *EvaluationServiceImpl) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.timeout = timeout
	}
}

// Scorer returns the scorer used for reports
func (s *EvaluationServiceImpl) Scorer() *scoring.Scorer {
	return s.scorer
}

// Evaluate runs the full pipeline for one file: language resolution, rule
// resolution, pattern compilation, parsing, matching, issue building and scoring.
// Rule-level problems become report warnings; file-level problems are returned as errors.
func (s *EvaluationServiceImpl) Evaluate(ctx context.Context, req domain.EvaluateRequest) (*domain.Report, error) {
	if req.Path == "" {
		return nil, domain.NewValidationError("source path is required")
	}

	lang, err := language.FromPath(req.Path)
	if err != nil {
		return nil, err
	}

	source := req.Source
	if source == nil {
		source, err = readSource(req.Path)
		if err != nil {
			return nil, err
		}
	}

	ruleSet, err := s.resolver.Resolve(lang, req.RulesPath)
	if err != nil {
		return nil, err
	}
	reg := s.registries.Get(s.engine, ruleSet)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		report *domain.Report
		err    error
	}
	done := make(chan outcome, 1)

	// The goroutine owns the parse tree; on timeout it is abandoned and
	// closes the tree itself once the executor notices the cancelled context.
	go func() {
		report, err := s.run(evalCtx, req.Path, lang, reg, source)
		done <- outcome{report: report, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && domain.IsErrorCode(o.err, domain.ErrCodeExecutionTimeout) {
			return nil, domain.NewExecutionTimeoutError(req.Path, o.err)
		}
		return o.report, o.err
	case <-evalCtx.Done():
		return nil, domain.NewExecutionTimeoutError(req.Path, evalCtx.Err())
	}
}

func (s *EvaluationServiceImpl) run(ctx context.Context, path string, lang domain.Language, reg *registry.Registry, source []byte) (*domain.Report, error) {
	tree, err := s.parser.Parse(ctx, lang, source)
	if err != nil {
		if domain.ErrorCode(err) == "" {
			err = domain.NewParseError(path, err)
		}
		return nil, err
	}
	if tree == nil {
		return nil, domain.NewParseError(path, errors.New("parser returned no tree"))
	}
	defer tree.Close()

	ruleSet := reg.RuleSet()
	var warnings []string
	warnings = append(warnings, ruleSet.Warnings()...)
	warnings = append(warnings, reg.Warnings()...)
	if tree.HasErrors() {
		warnings = append(warnings, syntaxErrorWarning)
	}

	result, err := engine.NewExecutor(s.engine).Execute(ctx, reg, tree)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, result.Warnings...)

	issues := engine.BuildIssues(ruleSet, result.Matches)
	score := s.scorer.Score(issues)

	return &domain.Report{
		File:        path,
		Language:    lang,
		RuleSource:  ruleSet.Source(),
		Score:       score.Value,
		MaxScore:    score.MaxScore,
		Rating:      score.Rating,
		Summary:     score.Summary,
		TotalIssues: len(issues),
		Breakdown:   score.Breakdown,
		Issues:      issues,
		Warnings:    warnings,
	}, nil
}

// readSource reads a source file, mapping a missing file to FILE_NOT_FOUND
// and any other read failure to PARSE_ERROR
func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return nil, domain.NewParseError(path, err)
}
