package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "compass"

	// ConfigFileName is the default config file name written by `compass init --tool-config`
	ConfigFileName = ".compass.yaml"

	// RulesFileName is the default override rule file written by `compass init`
	RulesFileName = "compass-rules.toml"
)

// Check violation rules
const (
	RuleMinScore         = "min-score"
	RuleEvaluationFailed = "evaluation-failed"
)

// Exit codes of the check command
const (
	ExitOK              = 0
	ExitThresholdFailed = 1
	ExitAnalysisError   = 2
)
