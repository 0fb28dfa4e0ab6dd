package main

import (
	"fmt"

	"github.com/ludo-technologies/compass/app"
	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/constants"
	"github.com/ludo-technologies/compass/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

type checkOptions struct {
	rulesPath  string
	minScore   float64
	workers    int
	verbose    bool
	json       bool
	html       bool
	configPath string
}

func checkCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Fast quality check for CI/CD pipelines",
		Long: `Evaluate every supported source file under the given paths and fail when
a file scores below the minimum.

Directories are walked recursively. Files matched by .gitignore or by the
configured exclude patterns are skipped.

Exit codes:
  0 - All files pass
  1 - A file scored below --min-score
  2 - Analysis error (unsupported file, parse error, timeout, etc.)

Examples:
  # Basic check with defaults
  compass check src/

  # Stricter gate
  compass check --min-score 8.5 src/

  # Custom rules, JSON output for machine parsing
  compass check --rules team-rules.toml --json .

  # HTML report
  compass check --html src/ > report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringVarP(&opts.rulesPath, "rules", "r", "",
		"Override rule file replacing the built-in rules")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0,
		"Minimum passing score per file (default from config, 7.0)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0,
		"Number of files evaluated in parallel (default from config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Output results as JSON")
	cmd.Flags().BoolVar(&opts.html, "html", false,
		"Output results as a standalone HTML page")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	if len(args) == 0 {
		return &CheckExitError{Code: constants.ExitAnalysisError, Message: "no paths specified"}
	}

	loader := service.NewConfigurationLoader()
	base, err := loader.LoadConfig(opts.configPath, args[0])
	if err != nil {
		return &CheckExitError{Code: constants.ExitAnalysisError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	// Apply flags only when explicitly set on the CLI
	overrides := service.ConfigOverrides{
		RulesFile: opts.rulesPath,
		Workers:   opts.workers,
	}
	if cmd.Flags().Changed("min-score") {
		overrides.MinScore = &opts.minScore
	}
	cfg := loader.MergeConfig(base, overrides)
	if err := loader.ValidateConfig(cfg); err != nil {
		return &CheckExitError{Code: constants.ExitAnalysisError, Message: err.Error()}
	}

	if opts.verbose {
		source := opts.configPath
		if source == "" {
			source = loader.FindDefaultConfigFile(args[0])
		}
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Using configuration: %s\n", source)
	}

	evaluator, err := service.NewEvaluationServiceFromConfig(cfg)
	if err != nil {
		return &CheckExitError{Code: constants.ExitAnalysisError, Message: err.Error()}
	}

	// Create progress manager (auto-disabled for JSON output or non-TTY/CI)
	pm := service.NewProgressManager(!opts.json && !opts.html)
	defer pm.Close()

	executor := service.NewParallelExecutorWithProgress(&cfg.Performance, pm)
	executor.SetDescription("Checking")

	format := domain.OutputFormatText
	switch {
	case opts.json:
		format = domain.OutputFormatJSON
	case opts.html:
		format = domain.OutputFormatHTML
	}

	useCase := app.NewCheckUseCase(service.NewCheckService(evaluator, executor), service.NewOutputFormatter())
	result, err := useCase.Execute(cmd.Context(), app.CheckConfig{
		Paths:     args,
		RulesPath: cfg.Evaluation.RulesFile,
		MinScore:  cfg.Check.MinScore,
		Workers:   cfg.Performance.MaxGoroutines,
		Collect: app.CollectOptions{
			Recursive:        cfg.Analysis.Recursive,
			RespectGitignore: cfg.Analysis.RespectGitignore,
			FollowSymlinks:   cfg.Analysis.FollowSymlinks,
			ExcludePatterns:  cfg.Analysis.ExcludePatterns,
		},
		OutputFormat: format,
		OutputWriter: cmd.OutOrStdout(),
	})
	if err != nil {
		return &CheckExitError{Code: constants.ExitAnalysisError, Message: err.Error()}
	}

	if opts.verbose && format == domain.OutputFormatText {
		printCheckDetails(cmd, result)
	}

	if result.ExitCode != constants.ExitOK {
		return &CheckExitError{Code: result.ExitCode}
	}
	return nil
}

// printCheckDetails lists every issue and warning per file on stderr
func printCheckDetails(cmd *cobra.Command, result *domain.CheckResult) {
	w := cmd.ErrOrStderr()
	for _, f := range result.Files {
		if f.Report == nil {
			continue
		}
		for _, issue := range f.Report.Issues {
			fmt.Fprintf(w, "%s:%d:%d: %s [%s] %s\n",
				f.Path, issue.Line, issue.Column, issue.Severity, issue.Rule, issue.Message)
		}
		for _, warning := range f.Report.Warnings {
			fmt.Fprintf(w, "Warning: %s: %s\n", f.Path, warning)
		}
	}
}
