package main

import (
	"fmt"

	"github.com/ludo-technologies/compass/app"
	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/service"
	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	format     string
	configPath string
	timeout    int
	maxScore   float64
}

func evaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "compass <source-file> [override-rules-file]",
		Short: "compass - structural rule checker and code quality scorer",
		Long: `compass parses a source file with tree-sitter, runs a set of structural
rules against it and reports every finding together with a quality score.

Supported languages: Rust, Go, JavaScript, Java, C++, Swift and Zig. The language
is chosen from the file extension. An optional second argument names a rule
file (TOML, YAML or JSON) that replaces the built-in rules.

Examples:
  # Evaluate a file with the built-in rules
  compass src/main.rs

  # Use a custom rule file
  compass src/main.rs my-rules.toml

  # Human-readable output
  compass -f text src/server.go

  # Score on a 0-100 scale
  compass --max-score 100 src/App.java`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "",
		"Output format: json, yaml, text, html (default from config, json)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0,
		"Evaluation timeout in seconds (default from config, 30)")
	cmd.Flags().Float64Var(&opts.maxScore, "max-score", 0,
		"Score of a file without issues (default from config, 10)")

	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string, opts *evaluateOptions) error {
	path := args[0]
	var rulesPath string
	if len(args) > 1 {
		rulesPath = args[1]
	}

	loader := service.NewConfigurationLoader()
	base, err := loader.LoadConfig(opts.configPath, path)
	if err != nil {
		return err
	}
	cfg := loader.MergeConfig(base, service.ConfigOverrides{
		Format:         opts.format,
		TimeoutSeconds: opts.timeout,
		MaxScore:       opts.maxScore,
		RulesFile:      rulesPath,
	})
	if err := loader.ValidateConfig(cfg); err != nil {
		return err
	}

	evaluator, err := service.NewEvaluationServiceFromConfig(cfg)
	if err != nil {
		return err
	}
	useCase, err := app.NewEvaluateUseCaseBuilder().
		WithService(evaluator).
		WithFormatter(service.NewOutputFormatter()).
		Build()
	if err != nil {
		return err
	}

	report, err := useCase.Execute(cmd.Context(), app.EvaluateConfig{
		Path:         path,
		RulesPath:    cfg.Evaluation.RulesFile,
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		OutputWriter: cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	for _, w := range report.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	return nil
}
