package service

import (
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/version"
)

// reportHTMLData is the data of the single-file HTML template
type reportHTMLData struct {
	Version string
	Report  *domain.Report
}

// checkHTMLData is the data of the batch HTML template
type checkHTMLData struct {
	Result *domain.CheckResult
}

var htmlFuncs = template.FuncMap{
	"ratingClass": func(r domain.Rating) string {
		return strings.ToLower(r.String())
	},
	"percent": func(score, maxScore float64) int {
		if maxScore <= 0 {
			return 0
		}
		return int(math.Round(score / maxScore * 100))
	},
	"score": formatScore,
	"upper": strings.ToUpper,
}

var htmlTemplates = template.Must(template.New("html").Funcs(htmlFuncs).Parse(htmlTemplate))

// writeReportHTML writes a report as a standalone HTML page. The page carries
// no timestamp so identical reports render identically.
func (f *OutputFormatterImpl) writeReportHTML(report *domain.Report, writer io.Writer) error {
	return htmlTemplates.ExecuteTemplate(writer, "report", reportHTMLData{
		Version: version.Version,
		Report:  report,
	})
}

// writeCheckHTML writes a batch check result as a standalone HTML page
func (f *OutputFormatterImpl) writeCheckHTML(result *domain.CheckResult, writer io.Writer) error {
	return htmlTemplates.ExecuteTemplate(writer, "check", checkHTMLData{Result: result})
}

const htmlTemplate = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .card {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .card h1 { color: #667eea; margin-bottom: 10px; }
        .subtitle { color: #666; font-size: 14px; }
        .score-badge {
            display: inline-block;
            padding: 10px 20px;
            border-radius: 50px;
            font-size: 24px;
            font-weight: bold;
            margin: 10px 0;
            color: white;
        }
        .excellent { background: #4caf50; }
        .good { background: #8bc34a; }
        .fair { background: #ff9800; }
        .poor { background: #ff5722; }
        .critical { background: #f44336; }
        .score-bar-container {
            width: 100%;
            height: 12px;
            background: #e0e0e0;
            border-radius: 6px;
            overflow: hidden;
        }
        .score-bar-fill { height: 100%; border-radius: 6px; }
        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }
        .metric-card { background: #f8f9fa; padding: 20px; border-radius: 8px; text-align: center; }
        .metric-value { font-size: 32px; font-weight: bold; color: #667eea; }
        .metric-label { color: #666; margin-top: 5px; }
        .table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        .table th, .table td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
        .table th { background: #f8f9fa; font-weight: 600; }
        .severity-error { color: #f44336; }
        .severity-warning { color: #ff9800; }
        .severity-info { color: #2196f3; }
        .severity-style { color: #666; }
        .status-failed { color: #f44336; font-weight: bold; }
        .warnings li { margin-left: 20px; color: #ff5722; }
        .ok { color: #4caf50; font-weight: bold; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
{{end}}

{{define "foot"}}    </div>
</body>
</html>
{{end}}

{{define "report"}}{{template "head" printf "compass Report: %s" .Report.File}}        {{with .Report}}
        <div class="card">
            <h1>{{.File}}</h1>
            <p class="subtitle">{{.Language.DisplayName}} | Rules: {{.RuleSource}} | compass {{$.Version}}</p>
            <div class="score-badge {{ratingClass .Rating}}">{{score .Score}} / {{score .MaxScore}} ({{.Rating}})</div>
            <div class="score-bar-container">
                <div class="score-bar-fill {{ratingClass .Rating}}" style="width: {{percent .Score .MaxScore}}%"></div>
            </div>
            <p class="subtitle">{{.Summary}}</p>
        </div>

        <div class="card">
            <h2>Breakdown</h2>
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-value">{{.Breakdown.Errors.Count}}</div>
                    <div class="metric-label">Errors (-{{score .Breakdown.Errors.Deduction}})</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Breakdown.Warnings.Count}}</div>
                    <div class="metric-label">Warnings (-{{score .Breakdown.Warnings.Deduction}})</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Breakdown.Info.Count}}</div>
                    <div class="metric-label">Info (-{{score .Breakdown.Info.Deduction}})</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Breakdown.Style.Count}}</div>
                    <div class="metric-label">Style (-{{score .Breakdown.Style.Deduction}})</div>
                </div>
            </div>

            {{if .Issues}}
            <h2>Issues</h2>
            <table class="table">
                <thead>
                    <tr><th>Line</th><th>Col</th><th>Severity</th><th>Rule</th><th>Message</th><th>Suggestion</th></tr>
                </thead>
                <tbody>
                    {{range .Issues}}
                    <tr>
                        <td>{{.Line}}</td>
                        <td>{{.Column}}</td>
                        <td class="severity-{{.Severity}}">{{.Severity}}</td>
                        <td>{{.Rule}}</td>
                        <td>{{.Message}}</td>
                        <td>{{.Suggestion}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
            {{else}}
            <p class="ok">No issues found</p>
            {{end}}

            {{if .Warnings}}
            <h2>Warnings</h2>
            <ul class="warnings">
                {{range .Warnings}}<li>{{.}}</li>
                {{end}}
            </ul>
            {{end}}
        </div>
        {{end}}
{{template "foot"}}{{end}}

{{define "check"}}{{template "head" "compass Check Report"}}        {{with .Result}}
        <div class="card">
            <h1>compass Check Report</h1>
            <p class="subtitle">Generated: {{.GeneratedAt}} | Duration: {{.Duration}}ms | Version: {{.Version}}</p>
            {{if .Passed}}<div class="score-badge excellent">Check passed</div>{{else}}<div class="score-badge critical">Check failed</div>{{end}}
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-value">{{.Summary.FilesAnalyzed}}</div>
                    <div class="metric-label">Files Evaluated</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Summary.FilesFailed}}</div>
                    <div class="metric-label">Failed</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{score .Summary.AverageScore}}</div>
                    <div class="metric-label">Average Score</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{score .Summary.LowestScore}}</div>
                    <div class="metric-label">Lowest Score</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Summary.TotalIssues}}</div>
                    <div class="metric-label">Issues</div>
                </div>
            </div>
        </div>

        <div class="card">
            <h2>Files</h2>
            <table class="table">
                <thead>
                    <tr><th>File</th><th>Status</th><th>Score</th><th>Rating</th><th>Issues</th></tr>
                </thead>
                <tbody>
                    {{range .Files}}
                    {{if .Report}}
                    <tr>
                        <td>{{.Path}}</td>
                        <td>{{upper (printf "%s" .Status)}}</td>
                        <td>{{score .Report.Score}}</td>
                        <td><span class="score-badge {{ratingClass .Report.Rating}}" style="font-size: 13px; padding: 4px 12px; margin: 0;">{{.Report.Rating}}</span></td>
                        <td>{{.Report.TotalIssues}}</td>
                    </tr>
                    {{else}}
                    <tr>
                        <td>{{.Path}}</td>
                        <td class="status-failed">{{upper (printf "%s" .Status)}}</td>
                        <td>-</td>
                        <td>{{.ErrorCode}}</td>
                        <td>{{.Error}}</td>
                    </tr>
                    {{end}}
                    {{end}}
                </tbody>
            </table>

            {{if .Violations}}
            <h2>Violations</h2>
            <table class="table">
                <thead>
                    <tr><th>File</th><th>Rule</th><th>Severity</th><th>Message</th></tr>
                </thead>
                <tbody>
                    {{range .Violations}}
                    <tr>
                        <td>{{.File}}</td>
                        <td>{{.Rule}}</td>
                        <td class="severity-{{.Severity}}">{{.Severity}}</td>
                        <td>{{.Message}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
            {{end}}
        </div>
        {{end}}
{{template "foot"}}{{end}}`
