// Package testutil provides helper functions for testing compass components
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/compass/domain"
)

// WriteFile writes content to name inside a fresh temp directory and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

// WriteFiles writes a set of relative paths into dir
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

// NewRuleSet builds a rule set for tests, failing the test on error
func NewRuleSet(t *testing.T, lang domain.Language, rules ...domain.Rule) *domain.RuleSet {
	t.Helper()
	rs, err := domain.NewRuleSet(lang, "test", rules)
	if err != nil {
		t.Fatalf("Failed to build rule set: %v", err)
	}
	return rs
}

// Rule returns an enabled rule with default weight
func Rule(name, pattern string, severity domain.Severity) domain.Rule {
	return domain.Rule{
		Name:     name,
		Pattern:  pattern,
		Severity: severity,
		Message:  name + " found",
		Weight:   domain.DefaultRuleWeight,
		Enabled:  true,
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertErrorCode fails the test unless err carries the given domain error code
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error but got nil", code)
	}
	if got := domain.ErrorCode(err); got != code {
		t.Fatalf("Expected error code %s, got %q (%v)", code, got, err)
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}
