package domain

// FileStatus is the outcome of evaluating one file in a batch
type FileStatus string

const (
	FileStatusOK     FileStatus = "ok"
	FileStatusFailed FileStatus = "failed"
)

// FileResult is one file's entry in a batch check
type FileResult struct {
	Path      string     `json:"path" yaml:"path"`
	Status    FileStatus `json:"status" yaml:"status"`
	Report    *Report    `json:"report,omitempty" yaml:"report,omitempty"`
	ErrorCode string     `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the evaluation of this file did not produce a report
func (r FileResult) Failed() bool {
	return r.Status == FileStatusFailed
}

// CheckRequest describes a batch check
type CheckRequest struct {
	Paths     []string
	RulesPath string
	MinScore  float64
	Workers   int
}

// CheckResult represents the result of a quality check
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	MinScore    float64          `json:"min_score"`
	Files       []FileResult     `json:"files"`
	Violations  []CheckViolation `json:"violations"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single threshold violation
type CheckViolation struct {
	File      string `json:"file"`
	Rule      string `json:"rule"`     // min-score, evaluation-failed
	Severity  string `json:"severity"` // error, warning
	Message   string `json:"message"`
	Actual    string `json:"actual,omitempty"`
	Threshold string `json:"threshold,omitempty"`
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	FilesAnalyzed   int     `json:"files_analyzed"`
	FilesFailed     int     `json:"files_failed"`
	TotalViolations int     `json:"total_violations"`
	TotalIssues     int     `json:"total_issues"`
	AverageScore    float64 `json:"average_score"`
	LowestScore     float64 `json:"lowest_score"`
}

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatHTML OutputFormat = "html"
)

// Valid reports whether f is a supported output format
func (f OutputFormat) Valid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatHTML:
		return true
	}
	return false
}
