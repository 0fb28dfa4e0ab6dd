package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/constants"
	"github.com/ludo-technologies/compass/internal/version"
)

const notEvaluatedMessage = "not evaluated before the batch deadline"

// CheckServiceImpl evaluates a batch of files in parallel and applies the
// minimum score gate. One file's failure is recorded on that file only.
type CheckServiceImpl struct {
	evaluator domain.EvaluationService
	executor  *ParallelExecutorImpl
}

// NewCheckService creates a check service. A nil executor uses NewParallelExecutor.
func NewCheckService(evaluator domain.EvaluationService, executor *ParallelExecutorImpl) *CheckServiceImpl {
	if executor == nil {
		executor = NewParallelExecutor()
	}
	return &CheckServiceImpl{
		evaluator: evaluator,
		executor:  executor,
	}
}

// fileTask evaluates one file and stores the outcome in its slot
type fileTask struct {
	path string
	run  func(ctx context.Context) error
}

func (t *fileTask) Name() string { return t.path }

func (t *fileTask) Execute(ctx context.Context) (interface{}, error) {
	return nil, t.run(ctx)
}

func (t *fileTask) IsEnabled() bool { return true }

// Check evaluates every path of req and builds the batch result
func (s *CheckServiceImpl) Check(ctx context.Context, req domain.CheckRequest) (*domain.CheckResult, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("no files to check", nil)
	}
	if req.MinScore < 0 {
		return nil, domain.NewValidationError(fmt.Sprintf("min score must not be negative, got %v", req.MinScore))
	}
	if req.Workers > 0 {
		s.executor.SetMaxConcurrency(req.Workers)
	}

	start := time.Now()
	files := make([]domain.FileResult, len(req.Paths))
	tasks := make([]domain.ExecutableTask, len(req.Paths))
	for i, path := range req.Paths {
		files[i] = domain.FileResult{
			Path:      path,
			Status:    domain.FileStatusFailed,
			ErrorCode: domain.ErrCodeExecutionTimeout,
			Error:     notEvaluatedMessage,
		}
		tasks[i] = &fileTask{
			path: path,
			run: func(ctx context.Context) error {
				report, err := s.evaluator.Evaluate(ctx, domain.EvaluateRequest{
					Path:      path,
					RulesPath: req.RulesPath,
				})
				files[i] = toFileResult(path, report, err)
				return err
			},
		}
	}

	// Per-file failures are already recorded in files
	_ = s.executor.Execute(ctx, tasks)

	result := summarize(files, req.MinScore)
	result.Duration = time.Since(start).Milliseconds()
	result.GeneratedAt = time.Now().Format(time.RFC3339)
	result.Version = version.GetVersion()
	return result, nil
}

func toFileResult(path string, report *domain.Report, err error) domain.FileResult {
	if err != nil {
		code := domain.ErrorCode(err)
		if code == "" {
			code = domain.ErrCodeAnalysisError
		}
		return domain.FileResult{
			Path:      path,
			Status:    domain.FileStatusFailed,
			ErrorCode: code,
			Error:     err.Error(),
		}
	}
	return domain.FileResult{Path: path, Status: domain.FileStatusOK, Report: report}
}

// summarize applies the score gate and computes exit code and statistics.
// Evaluation failures take precedence over threshold violations.
func summarize(files []domain.FileResult, minScore float64) *domain.CheckResult {
	result := &domain.CheckResult{
		MinScore:   minScore,
		Files:      files,
		Violations: []domain.CheckViolation{},
	}

	var total float64
	lowest := math.Inf(1)
	for _, f := range files {
		if f.Failed() {
			result.Summary.FilesFailed++
			result.Violations = append(result.Violations, domain.CheckViolation{
				File:     f.Path,
				Rule:     constants.RuleEvaluationFailed,
				Severity: "error",
				Message:  f.Error,
				Actual:   f.ErrorCode,
			})
			continue
		}

		r := f.Report
		result.Summary.FilesAnalyzed++
		result.Summary.TotalIssues += r.TotalIssues
		total += r.Score
		lowest = math.Min(lowest, r.Score)

		if r.Score < minScore {
			result.Violations = append(result.Violations, domain.CheckViolation{
				File:      f.Path,
				Rule:      constants.RuleMinScore,
				Severity:  "error",
				Message:   fmt.Sprintf("score %s (%s) is below the minimum %s", formatScore(r.Score), r.Rating, formatScore(minScore)),
				Actual:    formatScore(r.Score),
				Threshold: formatScore(minScore),
			})
		}
	}

	if n := result.Summary.FilesAnalyzed; n > 0 {
		result.Summary.AverageScore = math.Round(total/float64(n)*100) / 100
		result.Summary.LowestScore = lowest
	}
	result.Summary.TotalViolations = len(result.Violations)

	switch {
	case result.Summary.FilesFailed > 0:
		result.ExitCode = constants.ExitAnalysisError
	case len(result.Violations) > 0:
		result.ExitCode = constants.ExitThresholdFailed
	default:
		result.ExitCode = constants.ExitOK
	}
	result.Passed = result.ExitCode == constants.ExitOK
	return result
}
