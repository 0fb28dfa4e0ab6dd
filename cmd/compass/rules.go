package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/language"
	"github.com/ludo-technologies/compass/internal/pattern"
	"github.com/ludo-technologies/compass/internal/registry"
	"github.com/ludo-technologies/compass/internal/rules"
	"github.com/ludo-technologies/compass/service"
	"github.com/spf13/cobra"
)

type rulesOptions struct {
	rulesPath string
	json      bool
}

func rulesCmd() *cobra.Command {
	opts := &rulesOptions{}

	cmd := &cobra.Command{
		Use:   "rules <language|file>",
		Short: "List the active rules for a language",
		Long: `List the rules that would be applied to a language, either the built-in
set or the one from an override file.

The argument is a language name (rust, go, javascript, java, cpp, swift, zig) or a
source file whose extension selects the language. Rules whose pattern does
not compile are marked invalid.

Examples:
  compass rules cpp
  compass rules src/main.rs --rules team-rules.toml
  compass rules go --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd, args[0], opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opts.rulesPath, "rules", "r", "",
		"Override rule file to list instead of the built-in rules")
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Output the rules as JSON in rule-file layout")

	return cmd
}

// parseLanguageArg accepts a language name or a path with a known extension
func parseLanguageArg(arg string) (domain.Language, error) {
	if lang, ok := domain.ParseLanguage(arg); ok {
		return lang, nil
	}
	return language.FromPath(arg)
}

func runRules(cmd *cobra.Command, arg string, opts *rulesOptions) error {
	lang, err := parseLanguageArg(arg)
	if err != nil {
		return err
	}

	rs, err := rules.DefaultResolver().Resolve(lang, opts.rulesPath)
	if err != nil {
		return err
	}

	if opts.json {
		return service.WriteJSON(cmd.OutOrStdout(), rules.File{Rules: rules.Definitions(rs)})
	}

	reg := registry.DefaultCache().Get(pattern.NewEngine(), rs)
	failed := make(map[string]bool)
	for _, f := range reg.Failures() {
		failed[f.Rule] = true
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s rules from %s\n", lang.DisplayName(), rs.Source())

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Severity", "Weight", "Enabled", "Status"})
	for _, r := range rs.Rules() {
		status := "ok"
		switch {
		case !r.Enabled:
			status = "-"
		case failed[r.Name]:
			status = "invalid"
		}
		t.AppendRow(table.Row{r.Name, r.Severity, strconv.FormatFloat(r.Weight, 'f', -1, 64), r.Enabled, status})
	}
	t.Render()

	fmt.Fprintf(w, "%d rules, %d enabled, %d invalid\n", rs.Len(), len(rs.EnabledRules()), len(failed))
	for _, warning := range append(rs.Warnings(), reg.Warnings()...) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
	}
	return nil
}
