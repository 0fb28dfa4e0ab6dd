package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ludo-technologies/compass/domain"
)

// EvaluateConfig holds the inputs of a single-file evaluation
type EvaluateConfig struct {
	Path      string
	RulesPath string
	Timeout   time.Duration

	OutputFormat domain.OutputFormat
	OutputWriter io.Writer
}

// EvaluateUseCase evaluates one file and writes its report
type EvaluateUseCase struct {
	service   domain.EvaluationService
	formatter domain.ReportFormatter
}

// NewEvaluateUseCase creates a new evaluate use case
func NewEvaluateUseCase(service domain.EvaluationService, formatter domain.ReportFormatter) *EvaluateUseCase {
	return &EvaluateUseCase{
		service:   service,
		formatter: formatter,
	}
}

// Execute evaluates the configured file. The report is returned even when
// writing it fails.
func (uc *EvaluateUseCase) Execute(ctx context.Context, cfg EvaluateConfig) (*domain.Report, error) {
	if err := uc.validateConfig(cfg); err != nil {
		return nil, err
	}

	report, err := uc.service.Evaluate(ctx, domain.EvaluateRequest{
		Path:      cfg.Path,
		RulesPath: cfg.RulesPath,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	if cfg.OutputWriter != nil {
		if err := uc.formatter.Write(report, cfg.OutputFormat, cfg.OutputWriter); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (uc *EvaluateUseCase) validateConfig(cfg EvaluateConfig) error {
	if cfg.Path == "" {
		return domain.NewValidationError("a source file is required")
	}
	if cfg.OutputFormat != "" && !cfg.OutputFormat.Valid() {
		return domain.NewUnsupportedFormatError(string(cfg.OutputFormat))
	}
	if cfg.Timeout < 0 {
		return domain.NewValidationError(fmt.Sprintf("timeout must not be negative, got %v", cfg.Timeout))
	}
	return nil
}

// EvaluateUseCaseBuilder provides a builder pattern for creating EvaluateUseCase
type EvaluateUseCaseBuilder struct {
	service   domain.EvaluationService
	formatter domain.ReportFormatter
}

// NewEvaluateUseCaseBuilder creates a new builder
func NewEvaluateUseCaseBuilder() *EvaluateUseCaseBuilder {
	return &EvaluateUseCaseBuilder{}
}

// WithService sets the evaluation service
func (b *EvaluateUseCaseBuilder) WithService(service domain.EvaluationService) *EvaluateUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the report formatter
func (b *EvaluateUseCaseBuilder) WithFormatter(formatter domain.ReportFormatter) *EvaluateUseCaseBuilder {
	b.formatter = formatter
	return b
}

// Build creates the EvaluateUseCase with the configured dependencies
func (b *EvaluateUseCaseBuilder) Build() (*EvaluateUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("evaluation service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("report formatter is required")
	}
	return NewEvaluateUseCase(b.service, b.formatter), nil
}
