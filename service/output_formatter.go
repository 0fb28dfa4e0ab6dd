package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ludo-technologies/compass/domain"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements domain.ReportFormatter
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write writes a single-file report in the specified format
func (f *OutputFormatterImpl) Write(report *domain.Report, format domain.OutputFormat, writer io.Writer) error {
	if report == nil {
		return domain.NewOutputError("no report to write", nil)
	}

	var err error
	switch format {
	case domain.OutputFormatJSON, "":
		err = WriteJSON(writer, report)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, report)
	case domain.OutputFormatText:
		err = f.writeReportText(report, writer)
	case domain.OutputFormatHTML:
		err = f.writeReportHTML(report, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError("failed to write report", err)
	}
	return nil
}

// WriteCheck writes a batch check result in the specified format
func (f *OutputFormatterImpl) WriteCheck(result *domain.CheckResult, format domain.OutputFormat, writer io.Writer) error {
	if result == nil {
		return domain.NewOutputError("no check result to write", nil)
	}

	var err error
	switch format {
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, result)
	case domain.OutputFormatText, "":
		err = f.writeCheckText(result, writer)
	case domain.OutputFormatHTML:
		err = f.writeCheckHTML(result, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError("failed to write check result", err)
	}
	return nil
}

// writeReportText writes a report as a human-readable table
func (f *OutputFormatterImpl) writeReportText(report *domain.Report, writer io.Writer) error {
	fmt.Fprintf(writer, "File: %s (%s)\n", report.File, report.Language.DisplayName())
	fmt.Fprintf(writer, "Rules: %s\n", report.RuleSource)
	fmt.Fprintf(writer, "Score: %s / %s (%s)\n",
		formatScore(report.Score), formatScore(report.MaxScore), report.Rating)
	fmt.Fprintf(writer, "%s\n\n", report.Summary)

	if len(report.Issues) == 0 {
		fmt.Fprintf(writer, "No issues found.\n")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(writer)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Line", "Col", "Severity", "Rule", "Message", "Suggestion"})
		for _, issue := range report.Issues {
			t.AppendRow(table.Row{issue.Line, issue.Column, issue.Severity, issue.Rule, issue.Message, issue.Suggestion})
		}
		t.Render()
	}

	b := report.Breakdown
	fmt.Fprintf(writer, "\nBreakdown:\n")
	writeBreakdownLine(writer, "Errors", b.Errors)
	writeBreakdownLine(writer, "Warnings", b.Warnings)
	writeBreakdownLine(writer, "Info", b.Info)
	writeBreakdownLine(writer, "Style", b.Style)
	fmt.Fprintf(writer, "  Total issues: %d\n", report.TotalIssues)

	if len(report.Warnings) > 0 {
		fmt.Fprintf(writer, "\nWarnings:\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
	}

	return nil
}

func writeBreakdownLine(writer io.Writer, label string, b domain.SeverityBreakdown) {
	fmt.Fprintf(writer, "  %-9s %d (-%s)\n", label+":", b.Count, formatScore(b.Deduction))
}

// writeCheckText writes a batch result with one row per file
func (f *OutputFormatterImpl) writeCheckText(result *domain.CheckResult, writer io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Status", "Score", "Rating", "Issues"})
	for _, file := range result.Files {
		if file.Failed() {
			t.AppendRow(table.Row{file.Path, strings.ToUpper(string(file.Status)), "-", file.ErrorCode, "-"})
			continue
		}
		r := file.Report
		t.AppendRow(table.Row{file.Path, strings.ToUpper(string(file.Status)), formatScore(r.Score), r.Rating, r.TotalIssues})
	}
	t.Render()

	s := result.Summary
	fmt.Fprintf(writer, "\nFiles: %d evaluated, %d failed\n", s.FilesAnalyzed, s.FilesFailed)
	if s.FilesAnalyzed > 0 {
		fmt.Fprintf(writer, "Scores: average %s, lowest %s (minimum %s)\n",
			formatScore(s.AverageScore), formatScore(s.LowestScore), formatScore(result.MinScore))
	}

	if len(result.Violations) > 0 {
		fmt.Fprintf(writer, "\nViolations:\n")
		for _, v := range result.Violations {
			fmt.Fprintf(writer, "  [%s] %s: %s\n", strings.ToUpper(v.Severity), v.File, v.Message)
		}
	}

	if result.Passed {
		fmt.Fprintf(writer, "\nCheck passed\n")
	} else {
		fmt.Fprintf(writer, "\nCheck failed\n")
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
