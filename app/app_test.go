package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/testutil"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	contents := make(map[string]string, len(files))
	for _, f := range files {
		contents[f] = "// test\n"
	}
	testutil.WriteFiles(t, dir, contents)
	return dir
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFileHelperCollectSourceFiles(t *testing.T) {
	dir := writeTree(t, "main.go", "lib.rs", "app.js", "Main.java", "core.cpp", "view.swift", "notes.txt", "build.zig", "report.cob", "pkg/util.go")

	files, err := NewFileHelper().CollectSourceFiles([]string{dir}, CollectOptions{Recursive: true})
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}

	want := []string{"Main.java", "app.js", "build.zig", "core.cpp", "lib.rs", "main.go", "pkg/util.go", "view.swift"}
	if got := relPaths(t, dir, files); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFileHelperNonRecursive(t *testing.T) {
	dir := writeTree(t, "main.go", "pkg/util.go")

	files, err := NewFileHelper().CollectSourceFiles([]string{dir}, CollectOptions{Recursive: false})
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	if got := relPaths(t, dir, files); !reflect.DeepEqual(got, []string{"main.go"}) {
		t.Errorf("got %v", got)
	}
}

func TestFileHelperExcludePatterns(t *testing.T) {
	dir := writeTree(t,
		"src/app.js",
		"src/app.min.js",
		"node_modules/lib/index.js",
		"vendor/dep/dep.go",
		"api/api.pb.go",
		"api/api.go",
	)

	files, err := NewFileHelper().CollectSourceFiles([]string{dir}, CollectOptions{
		Recursive:       true,
		ExcludePatterns: []string{"node_modules", "vendor", "*.min.js", "*.pb.go"},
	})
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}

	want := []string{"api/api.go", "src/app.js"}
	if got := relPaths(t, dir, files); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFileHelperRespectsGitignore(t *testing.T) {
	dir := writeTree(t, "main.go", "gen/out.go", "pkg/keep.go", "pkg/skip_test.go", "pkg/local/tmp.go")
	testutil.WriteFiles(t, dir, map[string]string{
		".gitignore":     "gen/\n",
		"pkg/.gitignore": "*_test.go\nlocal/\n",
	})

	helper := NewFileHelper()

	files, err := helper.CollectSourceFiles([]string{dir}, CollectOptions{Recursive: true, RespectGitignore: true})
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	want := []string{"main.go", "pkg/keep.go"}
	if got := relPaths(t, dir, files); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	files, err = helper.CollectSourceFiles([]string{dir}, CollectOptions{Recursive: true})
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	if len(files) != 5 {
		t.Errorf("expected all 5 files without gitignore, got %v", relPaths(t, dir, files))
	}
}

func TestFileHelperExplicitFiles(t *testing.T) {
	dir := writeTree(t, "vendor/dep.go", "notes.txt")
	dep := filepath.Join(dir, "vendor", "dep.go")

	files, err := NewFileHelper().CollectSourceFiles(
		[]string{dep, dep, filepath.Join(dir, "notes.txt")},
		CollectOptions{ExcludePatterns: []string{"vendor"}},
	)
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{dep}) {
		t.Errorf("expected the explicit file once, got %v", files)
	}
}

func TestFileHelperMissingPath(t *testing.T) {
	_, err := NewFileHelper().CollectSourceFiles([]string{filepath.Join(t.TempDir(), "nope")}, CollectOptions{})
	if err == nil {
		t.Error("expected an error for a missing path")
	}
}

func TestFileHelperFileExists(t *testing.T) {
	helper := NewFileHelper()
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	if err := os.WriteFile(file, []byte("package a"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{file, true},
		{dir, false},
		{filepath.Join(dir, "missing.go"), false},
	}
	for _, tt := range tests {
		got, err := helper.FileExists(tt.path)
		if err != nil {
			t.Fatalf("FileExists(%s) failed: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FileExists(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

type fakeEvaluationService struct {
	req    domain.EvaluateRequest
	report *domain.Report
	err    error
}

func (f *fakeEvaluationService) Evaluate(_ context.Context, req domain.EvaluateRequest) (*domain.Report, error) {
	f.req = req
	return f.report, f.err
}

type fakeFormatter struct {
	reports int
	checks  int
	format  domain.OutputFormat
}

func (f *fakeFormatter) Write(_ *domain.Report, format domain.OutputFormat, w io.Writer) error {
	f.reports++
	f.format = format
	_, err := io.WriteString(w, "report")
	return err
}

func (f *fakeFormatter) WriteCheck(_ *domain.CheckResult, format domain.OutputFormat, w io.Writer) error {
	f.checks++
	f.format = format
	_, err := io.WriteString(w, "check")
	return err
}

func TestEvaluateUseCase(t *testing.T) {
	svc := &fakeEvaluationService{report: &domain.Report{File: "main.go", Score: 10}}
	formatter := &fakeFormatter{}
	uc, err := NewEvaluateUseCaseBuilder().WithService(svc).WithFormatter(formatter).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var buf bytes.Buffer
	report, err := uc.Execute(context.Background(), EvaluateConfig{
		Path:         "main.go",
		RulesPath:    "rules.toml",
		OutputFormat: domain.OutputFormatYAML,
		OutputWriter: &buf,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if report.Score != 10 {
		t.Errorf("unexpected report %+v", report)
	}
	if svc.req.RulesPath != "rules.toml" {
		t.Errorf("rules path not forwarded: %+v", svc.req)
	}
	if formatter.reports != 1 || formatter.format != domain.OutputFormatYAML || buf.String() != "report" {
		t.Errorf("report not written as yaml")
	}
}

func TestEvaluateUseCase_Errors(t *testing.T) {
	failing := &fakeEvaluationService{err: domain.NewUnsupportedLanguageError("x.cob")}
	uc := NewEvaluateUseCase(failing, &fakeFormatter{})

	tests := []struct {
		name string
		cfg  EvaluateConfig
		code string
	}{
		{"missing path", EvaluateConfig{}, domain.ErrCodeInvalidInput},
		{"bad format", EvaluateConfig{Path: "a.go", OutputFormat: "xml"}, domain.ErrCodeUnsupportedFormat},
		{"negative timeout", EvaluateConfig{Path: "a.go", Timeout: -1}, domain.ErrCodeInvalidInput},
		{"service error passes through", EvaluateConfig{Path: "x.cob"}, domain.ErrCodeUnsupportedLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.cfg)
			testutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestEvaluateUseCaseBuilder_RequiresDependencies(t *testing.T) {
	if _, err := NewEvaluateUseCaseBuilder().Build(); err == nil {
		t.Error("expected error without service")
	}
	if _, err := NewEvaluateUseCaseBuilder().WithService(&fakeEvaluationService{}).Build(); err == nil {
		t.Error("expected error without formatter")
	}
}

type fakeCheckService struct {
	req domain.CheckRequest
}

func (f *fakeCheckService) Check(_ context.Context, req domain.CheckRequest) (*domain.CheckResult, error) {
	f.req = req
	return &domain.CheckResult{Passed: true}, nil
}

func TestCheckUseCase(t *testing.T) {
	dir := writeTree(t, "b.go", "a.rs", "node_modules/x.js", "README.md")
	svc := &fakeCheckService{}
	formatter := &fakeFormatter{}

	var buf bytes.Buffer
	result, err := NewCheckUseCase(svc, formatter).Execute(context.Background(), CheckConfig{
		Paths:        []string{dir},
		MinScore:     7,
		Workers:      3,
		Collect:      CollectOptions{Recursive: true, ExcludePatterns: []string{"node_modules"}},
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: &buf,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Passed {
		t.Error("expected the fake result to be returned")
	}
	if got := relPaths(t, dir, svc.req.Paths); !reflect.DeepEqual(got, []string{"a.rs", "b.go"}) {
		t.Errorf("unexpected collected files %v", got)
	}
	if svc.req.MinScore != 7 || svc.req.Workers != 3 {
		t.Errorf("request fields not forwarded: %+v", svc.req)
	}
	if formatter.checks != 1 || buf.String() != "check" {
		t.Error("expected the check result to be written")
	}
}

func TestCheckUseCase_NoFiles(t *testing.T) {
	dir := writeTree(t, "README.md")
	uc := NewCheckUseCase(&fakeCheckService{}, &fakeFormatter{})

	_, err := uc.Execute(context.Background(), CheckConfig{Paths: []string{dir}, Collect: CollectOptions{Recursive: true}})
	testutil.AssertErrorCode(t, err, domain.ErrCodeInvalidInput)

	_, err = uc.Execute(context.Background(), CheckConfig{})
	testutil.AssertErrorCode(t, err, domain.ErrCodeInvalidInput)

	_, err = uc.Execute(context.Background(), CheckConfig{Paths: []string{filepath.Join(dir, "missing")}})
	testutil.AssertErrorCode(t, err, domain.ErrCodeFileNotFound)
}
