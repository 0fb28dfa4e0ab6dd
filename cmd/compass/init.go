package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/config"
	"github.com/ludo-technologies/compass/internal/constants"
	"github.com/ludo-technologies/compass/internal/rules"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

type initOptions struct {
	output      string
	force       bool
	interactive bool
	toolConfig  bool
	strictness  string
}

func initCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init [language]",
		Short: "Generate an override rule file",
		Long: `Generate a rule file seeded with a language's built-in rules. Edit it and
pass it to compass to replace the built-in set.

The file format follows the output extension: .toml (default), .yaml/.yml
or .json. Use --interactive for a guided setup.

Examples:
  # Create compass-rules.toml with the C++ rules
  compass init cpp

  # Custom output path and format
  compass init rust --output rules/rust.yaml

  # Also write a .compass.yaml tool configuration
  compass init go --tool-config --strictness strict

  # Interactive setup wizard
  compass init -i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", constants.RulesFileName,
		"Output path for the rule file")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false,
		"Overwrite existing files")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false,
		"Interactive setup wizard")
	cmd.Flags().BoolVar(&opts.toolConfig, "tool-config", false,
		"Also write "+constants.ConfigFileName+" next to the rule file")
	cmd.Flags().StringVar(&opts.strictness, "strictness", string(config.StrictnessStandard),
		"Quality gate of the tool config: relaxed, standard, strict")

	return cmd
}

func runInit(cmd *cobra.Command, args []string, opts *initOptions) error {
	var lang domain.Language
	if len(args) == 1 {
		parsed, ok := domain.ParseLanguage(args[0])
		if !ok {
			return domain.NewDomainError(domain.ErrCodeUnsupportedLanguage,
				fmt.Sprintf("unsupported language '%s'", args[0]), nil)
		}
		lang = parsed
	}

	strictness := config.Strictness(opts.strictness)
	if opts.interactive {
		var err error
		lang, strictness, err = runInteractiveSetup(lang, opts)
		if err != nil {
			return err
		}
	}
	if lang == "" {
		return fmt.Errorf("a language is required, e.g. 'compass init cpp' (or use --interactive)")
	}
	if _, ok := config.GetStrictnessPresets()[strictness]; !ok {
		return fmt.Errorf("invalid strictness '%s', must be one of: relaxed, standard, strict", strictness)
	}

	content, err := rules.Export(lang, rules.FormatForPath(opts.output))
	if err != nil {
		return err
	}
	if err := writeNewFile(opts.output, content, opts.force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", displayPath(opts.output))

	if opts.toolConfig {
		configPath := filepath.Join(filepath.Dir(opts.output), constants.ConfigFileName)
		if err := writeNewFile(configPath, []byte(config.GetConfigTemplate(strictness)), opts.force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", displayPath(configPath))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'compass <file> %s' to evaluate with these rules.\n", opts.output)
	return nil
}

// writeNewFile writes content to path, refusing to replace an existing file unless force is set
func writeNewFile(path string, content []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", path)
		}
	}

	// Check if parent directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// displayPath returns the absolute path if possible, otherwise path itself
func displayPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func runInteractiveSetup(lang domain.Language, opts *initOptions) (domain.Language, config.Strictness, error) {
	fmt.Println()
	fmt.Println("compass Rule Setup")
	fmt.Println("==================")
	fmt.Println()

	if lang == "" {
		languages := domain.AllLanguages()
		items := make([]struct {
			Label string
			Value domain.Language
		}, len(languages))
		for i, l := range languages {
			items[i].Label = l.DisplayName()
			items[i].Value = l
		}

		languagePrompt := promptui.Select{
			Label: "Which language are the rules for?",
			Items: items,
			Templates: &promptui.SelectTemplates{
				Label:    "{{ . }}",
				Active:   "\U0001F449 {{ .Label | cyan }}",
				Inactive: "   {{ .Label | white }}",
				Selected: "\U00002705 {{ .Label | green }}",
			},
		}

		idx, _, err := languagePrompt.Run()
		if err != nil {
			return "", "", fmt.Errorf("language selection cancelled: %w", err)
		}
		lang = items[idx].Value
		fmt.Println()
	}

	strictness := config.Strictness(opts.strictness)
	if opts.toolConfig {
		levels := []struct {
			Label       string
			Description string
			Value       config.Strictness
		}{
			{"Standard (recommended)", "Fail files below 7.0", config.StrictnessStandard},
			{"Relaxed", "Fail files below 5.0, lighter penalties", config.StrictnessRelaxed},
			{"Strict", "Fail files below 8.5, heavier penalties", config.StrictnessStrict},
		}

		strictnessPrompt := promptui.Select{
			Label: "How strict should the quality gate be?",
			Items: levels,
			Templates: &promptui.SelectTemplates{
				Label:    "{{ . }}",
				Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
				Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
				Selected: "\U00002705 {{ .Label | green }}",
			},
		}

		idx, _, err := strictnessPrompt.Run()
		if err != nil {
			return "", "", fmt.Errorf("strictness selection cancelled: %w", err)
		}
		strictness = levels[idx].Value
		fmt.Println()
	}

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: opts.output,
	}
	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath != "" {
		opts.output = outputPath
	}

	fmt.Println()
	return lang, strictness, nil
}
