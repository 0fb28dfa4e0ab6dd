package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/config"
	"github.com/ludo-technologies/compass/internal/rules"
	"github.com/ludo-technologies/compass/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	rs  *domain.RuleSet
	err error
}

func (r staticResolver) Resolve(domain.Language, string) (*domain.RuleSet, error) {
	return r.rs, r.err
}

type issueAt struct {
	Rule string
	Line int
}

func issuePositions(report *domain.Report) []issueAt {
	out := make([]issueAt, 0, len(report.Issues))
	for _, is := range report.Issues {
		out = append(out, issueAt{Rule: is.Rule, Line: is.Line})
	}
	return out
}

func fakeService(t *testing.T, engine *testutil.FakeEngine, ruleSet ...domain.Rule) *EvaluationServiceImpl {
	t.Helper()
	rs := testutil.NewRuleSet(t, domain.LanguageGo, ruleSet...)
	return NewEvaluationServiceWithComponents(EvaluationComponents{
		Resolver: staticResolver{rs: rs},
		Parser:   testutil.FakeParser{},
		Engine:   engine,
	}, nil)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestEvaluate_CPPResourceFixture(t *testing.T) {
	svc := NewEvaluationService(nil)

	report, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		Path: filepath.Join("testdata", "resource.cpp"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.LanguageCPP, report.Language)
	assert.Equal(t, rules.BuiltinSource(domain.LanguageCPP), report.RuleSource)
	assert.Subset(t, issuePositions(report), []issueAt{
		{"unmanaged-allocation", 8},
		{"manual-deallocation", 12},
		{"magic-number", 20},
		{"console-output", 24},
		{"console-output", 28},
		{"unsafe-cast", 32},
		{"explicit-throw", 36},
		{"unmanaged-allocation", 46},
		{"manual-deallocation", 53},
	})
	assert.Equal(t, len(report.Issues), report.TotalIssues)
	assert.Less(t, report.Score, report.MaxScore)
	assert.Empty(t, report.Warnings)

	for i := 1; i < len(report.Issues); i++ {
		assert.LessOrEqual(t, report.Issues[i-1].Line, report.Issues[i].Line, "issues must be ordered by line")
	}
}

func TestEvaluate_CleanFile(t *testing.T) {
	svc := NewEvaluationService(nil)

	report, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		Path:   "geometry.cpp",
		Source: readFixture(t, "clean.cpp"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultMaxScore, report.Score)
	assert.Equal(t, domain.RatingExcellent, report.Rating)
	assert.NotNil(t, report.Issues)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Warnings)
}

func TestEvaluate_InvalidPatternIsolated(t *testing.T) {
	override := testutil.WriteFile(t, "rules.toml", `
[[rules]]
name = "broken"
query = "(not_a_real_node) @primary"
severity = "error"
message = "never compiles"

[[rules]]
name = "allocation"
query = "(new_expression) @primary"
severity = "warning"
message = "raw new"

[[rules]]
name = "deallocation"
query = "(delete_expression) @primary"
severity = "warning"
message = "raw delete"

[[rules]]
name = "cast"
query = "(cast_expression) @primary"
severity = "warning"
message = "c-style cast"

[[rules]]
name = "throw"
query = "(throw_statement) @primary"
severity = "info"
message = "throw"
`)
	source := "int f(float v) {\n    int* p = new int(1);\n    delete p;\n    int x = (int)v;\n    throw x;\n}\n"

	report, err := NewEvaluationService(nil).Evaluate(context.Background(), domain.EvaluateRequest{
		Path:      "f.cpp",
		Source:    []byte(source),
		RulesPath: override,
	})
	require.NoError(t, err)

	assert.Equal(t, []issueAt{
		{"allocation", 2},
		{"deallocation", 3},
		{"cast", 4},
		{"throw", 5},
	}, issuePositions(report))
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "broken")
	assert.Equal(t, override, report.RuleSource)
}

func TestEvaluate_GoPanic(t *testing.T) {
	source := "package main\n\nfunc main() {\n\tpanic(\"boom\")\n}\n"

	report, err := NewEvaluationService(nil).Evaluate(context.Background(), domain.EvaluateRequest{
		Path:   "main.go",
		Source: []byte(source),
	})
	require.NoError(t, err)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, "panic-call", issue.Rule)
	assert.Equal(t, domain.SeverityError, issue.Severity)
	assert.Equal(t, 4, issue.Line)
	assert.Equal(t, 2, issue.Column)
	assert.Equal(t, 8.0, report.Score)
	assert.Equal(t, domain.RatingGood, report.Rating)
	assert.Equal(t, 1, report.Breakdown.Errors.Count)
}

func TestEvaluate_Errors(t *testing.T) {
	badRules := testutil.WriteFile(t, "bad.toml", "[[rules]]\nname = \"x\"\n")

	tests := []struct {
		name string
		req  domain.EvaluateRequest
		code string
	}{
		{"empty path", domain.EvaluateRequest{}, domain.ErrCodeInvalidInput},
		{"unknown extension", domain.EvaluateRequest{Path: "main.cob", Source: []byte("")}, domain.ErrCodeUnsupportedLanguage},
		{"missing file", domain.EvaluateRequest{Path: filepath.Join(t.TempDir(), "gone.go")}, domain.ErrCodeFileNotFound},
		{"invalid override", domain.EvaluateRequest{Path: "main.go", Source: []byte("package main\n"), RulesPath: badRules}, domain.ErrCodeConfigError},
		{"invalid utf-8", domain.EvaluateRequest{Path: "main.go", Source: []byte{0xff, 0xfe, 0x00}}, domain.ErrCodeParseError},
	}

	svc := NewEvaluationService(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.Evaluate(context.Background(), tt.req)
			assert.Nil(t, report)
			testutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestEvaluate_ReadsSourceFromDisk(t *testing.T) {
	path := testutil.WriteFile(t, "main.go", "alpha beta alpha\n")
	svc := fakeService(t, testutil.NewFakeEngine(), testutil.Rule("alpha", "find:alpha", domain.SeverityWarning))

	report, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, path, report.File)
	assert.Equal(t, 2, report.TotalIssues)
	assert.Equal(t, 8.0, report.Score)
}

func TestEvaluate_Timeout(t *testing.T) {
	engine := testutil.NewFakeEngine()
	engine.Delay = time.Second
	svc := fakeService(t, engine, testutil.Rule("alpha", "find:alpha", domain.SeverityError))

	start := time.Now()
	_, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		Path:    "main.go",
		Source:  []byte("alpha"),
		Timeout: 20 * time.Millisecond,
	})

	testutil.AssertErrorCode(t, err, domain.ErrCodeExecutionTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestEvaluate_ServiceTimeout(t *testing.T) {
	engine := testutil.NewFakeEngine()
	engine.Delay = time.Second
	svc := fakeService(t, engine, testutil.Rule("alpha", "find:alpha", domain.SeverityError))
	svc.SetTimeout(20 * time.Millisecond)

	_, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{Path: "main.go", Source: []byte("alpha")})
	testutil.AssertErrorCode(t, err, domain.ErrCodeExecutionTimeout)
}

func TestEvaluate_ParseFailure(t *testing.T) {
	svc := fakeService(t, testutil.NewFakeEngine(), testutil.Rule("alpha", "find:alpha", domain.SeverityError))

	_, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		Path:   "main.go",
		Source: []byte("<<unparseable>>"),
	})
	testutil.AssertErrorCode(t, err, domain.ErrCodeParseError)
}

func TestEvaluate_Warnings(t *testing.T) {
	svc := fakeService(t, testutil.NewFakeEngine(),
		testutil.Rule("alpha", "find:alpha", domain.SeverityError),
		testutil.Rule("broken", "nonsense", domain.SeverityError),
	)

	report, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		Path:   "main.go",
		Source: []byte("alpha <<syntax-error>>"),
	})
	require.NoError(t, err)

	require.Len(t, report.Warnings, 2)
	assert.Contains(t, report.Warnings[0], "broken")
	assert.Equal(t, syntaxErrorWarning, report.Warnings[1])
	assert.Equal(t, 1, report.TotalIssues)
}

func TestEvaluate_Deterministic(t *testing.T) {
	svc := fakeService(t, testutil.NewFakeEngine(),
		testutil.Rule("alpha", "find:alpha", domain.SeverityError),
		testutil.Rule("beta", "twice:beta", domain.SeverityInfo),
	)
	req := domain.EvaluateRequest{Path: "main.go", Source: []byte("alpha beta\nbeta alpha\n")}

	first, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, first.TotalIssues)
}

func TestEvaluate_MoreFindingsNeverRaiseScore(t *testing.T) {
	svc := fakeService(t, testutil.NewFakeEngine(), testutil.Rule("alpha", "find:alpha", domain.SeverityWarning))

	prev := domain.DefaultMaxScore + 1
	source := ""
	for i := 0; i < 15; i++ {
		report, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{Path: "main.go", Source: []byte(source)})
		require.NoError(t, err)
		assert.LessOrEqual(t, report.Score, prev)
		assert.GreaterOrEqual(t, report.Score, 0.0)
		prev = report.Score
		source += "alpha\n"
	}
	assert.Equal(t, 0.0, prev)
}

func TestEvaluate_DisablingRuleNeverLowersScore(t *testing.T) {
	const rulesTemplate = `
[[rules]]
name = "panic-call"
query = "((call_expression function: (identifier) @fn) @primary (#eq? @fn \"panic\"))"
severity = "error"
message = "panic"
enabled = %s

[[rules]]
name = "goto-statement"
query = "(goto_statement) @primary"
severity = "warning"
message = "goto"
`
	source := "package main\n\nfunc main() {\n\tpanic(\"a\")\n\tgoto end\nend:\n\tpanic(\"b\")\n}\n"
	svc := NewEvaluationService(nil)

	evaluate := func(enabled string) *domain.Report {
		override := testutil.WriteFile(t, "rules-"+enabled+".toml", fmt.Sprintf(rulesTemplate, enabled))
		report, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
			Path:      "main.go",
			Source:    []byte(source),
			RulesPath: override,
		})
		require.NoError(t, err)
		return report
	}

	before := evaluate("true")
	after := evaluate("false")

	assert.Equal(t, []issueAt{{"panic-call", 4}, {"goto-statement", 5}, {"panic-call", 7}}, issuePositions(before))
	assert.Equal(t, []issueAt{{"goto-statement", 5}}, issuePositions(after))
	assert.GreaterOrEqual(t, after.Score, before.Score)
	assert.Equal(t, 5.0, before.Score)
	assert.Equal(t, 9.0, after.Score)
}

func TestEvaluate_ZigPanic(t *testing.T) {
	source := "const std = @import(\"std\");\n\npub fn main() void {\n    @panic(\"boom\");\n}\n"

	report, err := NewEvaluationService(nil).Evaluate(context.Background(), domain.EvaluateRequest{
		Path:   "main.zig",
		Source: []byte(source),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.LanguageZig, report.Language)
	assert.Empty(t, report.Warnings)
	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, "panic-builtin", issue.Rule)
	assert.Equal(t, domain.SeverityError, issue.Severity)
	assert.Equal(t, 4, issue.Line)
	assert.Equal(t, 5, issue.Column)
	assert.Equal(t, 8.0, report.Score)
}

func TestNewEvaluationServiceFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scoring.MaxScore = 100
	cfg.Evaluation.TimeoutSeconds = 3

	svc, err := NewEvaluationServiceFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 100.0, svc.Scorer().Config().MaxScore)
	assert.Equal(t, 3*time.Second, svc.timeout)

	cfg.Scoring.MaxScore = 0
	_, err = NewEvaluationServiceFromConfig(cfg)
	testutil.AssertErrorCode(t, err, domain.ErrCodeConfigError)
}
