package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/compass/domain"
	"github.com/ludo-technologies/compass/internal/config"
)

// mockTask implements domain.ExecutableTask for testing
type mockTask struct {
	name     string
	enabled  bool
	execFunc func(ctx context.Context) (interface{}, error)
}

func (t *mockTask) Name() string {
	return t.name
}

func (t *mockTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execFunc != nil {
		return t.execFunc(ctx)
	}
	return nil, nil
}

func (t *mockTask) IsEnabled() bool {
	return t.enabled
}

func newMockTask(name string, enabled bool) *mockTask {
	return &mockTask{name: name, enabled: enabled}
}

func newMockTaskWithExec(name string, enabled bool, execFunc func(ctx context.Context) (interface{}, error)) *mockTask {
	return &mockTask{name: name, enabled: enabled, execFunc: execFunc}
}

func TestNewParallelExecutor(t *testing.T) {
	executor := NewParallelExecutor()

	if executor.maxConcurrency <= 0 {
		t.Errorf("maxConcurrency should be > 0, got %d", executor.maxConcurrency)
	}
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout should be %v, got %v", DefaultTimeout, executor.timeout)
	}
	if executor.description != "Evaluating files" {
		t.Errorf("unexpected description %q", executor.description)
	}
}

func TestNewParallelExecutorFromConfig(t *testing.T) {
	tests := []struct {
		name            string
		cfg             config.PerformanceConfig
		wantConcurrency int
		wantTimeout     time.Duration
	}{
		{"explicit", config.PerformanceConfig{MaxGoroutines: 8, TimeoutSeconds: 120}, 8, 120 * time.Second},
		{"zero falls back", config.PerformanceConfig{}, DefaultMaxConcurrency, DefaultTimeout},
		{"negative falls back", config.PerformanceConfig{MaxGoroutines: -1, TimeoutSeconds: -5}, DefaultMaxConcurrency, DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewParallelExecutorFromConfig(&tt.cfg)
			if executor.maxConcurrency != tt.wantConcurrency {
				t.Errorf("maxConcurrency = %d, want %d", executor.maxConcurrency, tt.wantConcurrency)
			}
			if executor.timeout != tt.wantTimeout {
				t.Errorf("timeout = %v, want %v", executor.timeout, tt.wantTimeout)
			}
		})
	}
}

func TestParallelExecutor_EmptyTaskList(t *testing.T) {
	if err := NewParallelExecutor().Execute(context.Background(), nil); err != nil {
		t.Errorf("expected nil error for empty task list, got %v", err)
	}
}

func TestParallelExecutor_AllTasksSucceed(t *testing.T) {
	var count atomic.Int32
	tasks := make([]domain.ExecutableTask, 0, 10)
	for i := 0; i < 10; i++ {
		tasks = append(tasks, newMockTaskWithExec("file.go", true, func(ctx context.Context) (interface{}, error) {
			count.Add(1)
			return nil, nil
		}))
	}

	if err := NewParallelExecutor().Execute(context.Background(), tasks); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if count.Load() != 10 {
		t.Errorf("expected 10 executions, got %d", count.Load())
	}
}

func TestParallelExecutor_FailureDoesNotCancelSiblings(t *testing.T) {
	var finished atomic.Int32
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(2)

	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("b.go", true, func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("boom")
		}),
		newMockTaskWithExec("a.go", true, func(ctx context.Context) (interface{}, error) {
			time.Sleep(20 * time.Millisecond)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			finished.Add(1)
			return nil, nil
		}),
		newMockTaskWithExec("c.go", true, func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("bang")
		}),
	}

	err := executor.Execute(context.Background(), tasks)

	var aggErr *AggregatedError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregatedError, got %T", err)
	}
	if len(aggErr.Errors) != 2 {
		t.Fatalf("expected 2 task errors, got %d", len(aggErr.Errors))
	}
	if aggErr.Errors[0].TaskName != "b.go" || aggErr.Errors[1].TaskName != "c.go" {
		t.Errorf("expected errors sorted by task name, got %s, %s", aggErr.Errors[0].TaskName, aggErr.Errors[1].TaskName)
	}
	if finished.Load() != 1 {
		t.Error("the succeeding task should run to completion")
	}
}

func TestParallelExecutor_PanicIsolated(t *testing.T) {
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("panics.go", true, func(ctx context.Context) (interface{}, error) {
			panic("nil map")
		}),
		newMockTask("fine.go", true),
	}

	err := NewParallelExecutor().Execute(context.Background(), tasks)

	var aggErr *AggregatedError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregatedError, got %v", err)
	}
	if len(aggErr.Errors) != 1 || aggErr.Errors[0].TaskName != "panics.go" {
		t.Fatalf("expected only panics.go to fail, got %v", aggErr.Errors)
	}
	if !domain.IsErrorCode(aggErr.Errors[0].Err, domain.ErrCodeAnalysisError) {
		t.Errorf("expected ANALYSIS_ERROR, got %v", aggErr.Errors[0].Err)
	}
}

func TestParallelExecutor_Timeout(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetTimeout(50 * time.Millisecond)

	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("slow.rs", true, func(ctx context.Context) (interface{}, error) {
			select {
			case <-time.After(2 * time.Second):
				return nil, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
	}

	err := executor.Execute(context.Background(), tasks)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestParallelExecutor_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("cancellable.go", true, func(ctx context.Context) (interface{}, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- NewParallelExecutor().Execute(ctx, tasks)
	}()

	<-started
	cancel()

	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestParallelExecutor_DisabledTasksSkipped(t *testing.T) {
	var ran atomic.Int32
	exec := func(ctx context.Context) (interface{}, error) {
		ran.Add(1)
		return nil, nil
	}
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("on.go", true, exec),
		newMockTaskWithExec("off.go", false, exec),
	}

	if err := NewParallelExecutor().Execute(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran.Load() != 1 {
		t.Errorf("expected 1 execution, got %d", ran.Load())
	}
}

func TestParallelExecutor_ConcurrencyLimit(t *testing.T) {
	const limit = 2
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(limit)

	var current, peak atomic.Int32
	tasks := make([]domain.ExecutableTask, 0, 8)
	for i := 0; i < 8; i++ {
		tasks = append(tasks, newMockTaskWithExec("t", true, func(ctx context.Context) (interface{}, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return nil, nil
		}))
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.Load() > limit {
		t.Errorf("peak concurrency %d exceeded limit %d", peak.Load(), limit)
	}
}

func TestParallelExecutor_Setters_IgnoreInvalid(t *testing.T) {
	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 3, TimeoutSeconds: 10})

	executor.SetMaxConcurrency(0)
	executor.SetTimeout(-time.Second)
	executor.SetDescription("")

	if executor.maxConcurrency != 3 {
		t.Errorf("maxConcurrency changed to %d", executor.maxConcurrency)
	}
	if executor.timeout != 10*time.Second {
		t.Errorf("timeout changed to %v", executor.timeout)
	}
	if executor.description != "Evaluating files" {
		t.Errorf("description changed to %q", executor.description)
	}
}

func TestParallelExecutor_ProgressIntegration(t *testing.T) {
	var incrementCount atomic.Int32
	var completed atomic.Bool
	var mu sync.Mutex
	var described []string
	var gotDescription string

	mockPM := &mockProgressManager{
		startTaskFunc: func(description string, total int) domain.TaskProgress {
			gotDescription = description
			return &mockTaskProgress{
				incrementFunc: func(n int) { incrementCount.Add(int32(n)) },
				describeFunc: func(d string) {
					mu.Lock()
					described = append(described, d)
					mu.Unlock()
				},
				completeFunc: func() { completed.Store(true) },
			}
		},
	}

	executor := NewParallelExecutorWithProgress(&config.PerformanceConfig{MaxGoroutines: 4, TimeoutSeconds: 60}, mockPM)
	executor.SetDescription("Checking")

	tasks := []domain.ExecutableTask{
		newMockTask("a.go", true),
		newMockTask("b.go", true),
		newMockTask("c.go", true),
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if gotDescription != "Checking" {
		t.Errorf("expected description Checking, got %q", gotDescription)
	}
	if incrementCount.Load() != 3 {
		t.Errorf("expected 3 increments, got %d", incrementCount.Load())
	}
	if len(described) != 3 {
		t.Errorf("expected each file to be described, got %v", described)
	}
	if !completed.Load() {
		t.Error("expected Complete() to be called")
	}
}

func TestAggregatedError_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   []TaskError
		contains string
	}{
		{"empty", nil, "no errors"},
		{"single", []TaskError{{TaskName: "a.go", Err: errors.New("boom")}}, "[a.go] boom"},
		{
			"multiple",
			[]TaskError{{TaskName: "a.go", Err: errors.New("x")}, {TaskName: "b.go", Err: errors.New("y")}},
			"2 tasks failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &AggregatedError{Errors: tt.errors}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected %q in %q", tt.contains, err.Error())
			}
		})
	}
}

func TestAggregatedError_Unwrap(t *testing.T) {
	first := domain.NewExecutionTimeoutError("a.go", context.DeadlineExceeded)
	err := &AggregatedError{Errors: []TaskError{{TaskName: "a.go", Err: first}}}

	if !domain.IsErrorCode(err, domain.ErrCodeExecutionTimeout) {
		t.Error("expected the timeout code to be visible through the aggregate")
	}
	if (&AggregatedError{}).Unwrap() != nil {
		t.Error("expected nil unwrap for empty aggregate")
	}
}

func TestTaskError(t *testing.T) {
	inner := errors.New("inner")
	err := TaskError{TaskName: "x.java", Err: inner}

	if err.Error() != "[x.java] inner" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("TaskError should unwrap to original error")
	}
}

type mockProgressManager struct {
	startTaskFunc func(description string, total int) domain.TaskProgress
}

func (m *mockProgressManager) StartTask(description string, total int) domain.TaskProgress {
	if m.startTaskFunc != nil {
		return m.startTaskFunc(description, total)
	}
	return &NoOpTaskProgress{}
}

func (m *mockProgressManager) IsInteractive() bool {
	return false
}

func (m *mockProgressManager) Close() {}

type mockTaskProgress struct {
	incrementFunc func(n int)
	describeFunc  func(description string)
	completeFunc  func()
}

func (m *mockTaskProgress) Increment(n int) {
	if m.incrementFunc != nil {
		m.incrementFunc(n)
	}
}

func (m *mockTaskProgress) Describe(description string) {
	if m.describeFunc != nil {
		m.describeFunc(description)
	}
}

func (m *mockTaskProgress) Complete() {
	if m.completeFunc != nil {
		m.completeFunc()
	}
}
