package service

import (
	"bytes"
	"testing"

	"github.com/ludo-technologies/compass/domain"
)

func TestNewProgressManager_Disabled(t *testing.T) {
	pm := NewProgressManager(false)
	if pm.IsInteractive() {
		t.Error("expected non-interactive progress manager when disabled")
	}
	var _ domain.ProgressManager = pm
}

func TestNewProgressManager_CI(t *testing.T) {
	t.Setenv("CI", "true")
	if NewProgressManager(true).IsInteractive() {
		t.Error("expected progress to be disabled under CI")
	}
	if IsInteractiveEnvironment() {
		t.Error("expected non-interactive environment under CI")
	}
}

func TestProgressManagerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManagerWithWriter(&buf)
	if !pm.IsInteractive() {
		t.Error("expected interactive progress manager")
	}

	task := pm.StartTask("Evaluating files", 2)
	task.Describe("main.go")
	task.Increment(1)
	task.Increment(1)
	task.Complete()
	pm.Close()

	if buf.Len() == 0 {
		t.Error("expected progress output to be written")
	}
}

func TestNoOpProgressManager(t *testing.T) {
	pm := &NoOpProgressManager{}
	if pm.IsInteractive() {
		t.Error("expected NoOpProgressManager.IsInteractive() to return false")
	}

	task := pm.StartTask("test", 100)
	if task == nil {
		t.Fatal("expected non-nil task from StartTask")
	}
	task.Increment(10)
	task.Describe("testing")
	task.Complete()
	pm.Close()
}

func TestProgressManagerImpl_Interface(t *testing.T) {
	var _ domain.ProgressManager = &ProgressManagerImpl{}
	var _ domain.TaskProgress = &TaskProgressImpl{}
	var _ domain.TaskProgress = &NoOpTaskProgress{}
}
