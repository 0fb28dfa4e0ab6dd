package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/compass/domain"
)

// CheckConfig holds the inputs of a batch check
type CheckConfig struct {
	Paths     []string
	RulesPath string
	MinScore  float64
	Workers   int
	Collect   CollectOptions

	OutputFormat domain.OutputFormat
	OutputWriter io.Writer
}

// CheckUseCase discovers source files, evaluates them and writes the batch result
type CheckUseCase struct {
	service    domain.CheckService
	formatter  domain.CheckFormatter
	fileHelper *FileHelper
}

// NewCheckUseCase creates a new check use case
func NewCheckUseCase(service domain.CheckService, formatter domain.CheckFormatter) *CheckUseCase {
	return &CheckUseCase{
		service:    service,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute runs the check. A nil error means the batch ran; whether it passed
// is carried by the result's exit code.
func (uc *CheckUseCase) Execute(ctx context.Context, cfg CheckConfig) (*domain.CheckResult, error) {
	if len(cfg.Paths) == 0 {
		return nil, domain.NewValidationError("no paths specified")
	}

	files, err := uc.fileHelper.CollectSourceFiles(cfg.Paths, cfg.Collect)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no supported source files found in the specified paths", nil)
	}

	result, err := uc.service.Check(ctx, domain.CheckRequest{
		Paths:     files,
		RulesPath: cfg.RulesPath,
		MinScore:  cfg.MinScore,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return nil, err
	}

	if cfg.OutputWriter != nil {
		if err := uc.formatter.WriteCheck(result, cfg.OutputFormat, cfg.OutputWriter); err != nil {
			return result, fmt.Errorf("failed to write check result: %w", err)
		}
	}
	return result, nil
}
