package runner

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jorge-barreto/reqtrack/internal/dispatch"
)

// mockDispatcher records calls and returns configurable results.
type mockDispatcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string]dispatch.Result
	onCall  func(tool string)
}

func newMock() *mockDispatcher {
	return &mockDispatcher{results: make(map[string]dispatch.Result)}
}

func (m *mockDispatcher) Dispatch(ctx context.Context, call dispatch.Call) dispatch.Result {
	m.mu.Lock()
	m.calls = append(m.calls, call.Tool)
	res, ok := m.results[call.Tool]
	hook := m.onCall
	m.mu.Unlock()

	if hook != nil {
		hook(call.Tool)
	}
	if ok {
		return res
	}
	return dispatch.OK(call.Tool + " ok")
}

func (m *mockDispatcher) callNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := make([]string, len(m.calls))
	copy(c, m.calls)
	return c
}

func plan(tools ...string) []dispatch.Call {
	out := make([]dispatch.Call, len(tools))
	for i, tool := range tools {
		out[i] = dispatch.Call{Tool: tool, Input: json.RawMessage(`{}`)}
	}
	return out
}

func TestRun_AllStepsSucceed(t *testing.T) {
	mock := newMock()
	r := &Runner{Dispatcher: mock, Log: zaptest.NewLogger(t)}

	rep := r.Run(context.Background(), plan("a", "b", "c"))
	if len(rep.Steps) != 3 {
		t.Fatalf("steps = %d", len(rep.Steps))
	}
	if f := rep.Failed(); len(f) != 0 {
		t.Fatalf("failed = %v", f)
	}
	calls := mock.callNames()
	if len(calls) != 3 || calls[0] != "a" || calls[1] != "b" || calls[2] != "c" {
		t.Fatalf("calls = %v", calls)
	}
	if rep.Succeeded() != 3 {
		t.Fatalf("succeeded = %d", rep.Succeeded())
	}
}

func TestRun_FailureDoesNotStopLaterSteps(t *testing.T) {
	mock := newMock()
	mock.results["b"] = dispatch.Fail("no task matches %q", "x")
	r := &Runner{Dispatcher: mock, Log: zaptest.NewLogger(t)}

	rep := r.Run(context.Background(), plan("a", "b", "c"))
	if got := mock.callNames(); len(got) != 3 {
		t.Fatalf("calls = %v, want all three", got)
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0] != 1 {
		t.Fatalf("failed = %v", failed)
	}
	retry := rep.Retry()
	if len(retry) != 1 || retry[0].Tool != "b" {
		t.Fatalf("retry = %v", retry)
	}
	if !rep.Steps[2].Result.Success {
		t.Fatal("step after the failure should still succeed")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := newMock()
	mock.onCall = func(tool string) {
		if tool == "b" {
			cancel()
		}
	}
	r := &Runner{Dispatcher: mock, Log: zaptest.NewLogger(t)}

	rep := r.Run(ctx, plan("a", "b", "c", "d"))
	if !rep.Interrupted {
		t.Fatal("expected Interrupted")
	}
	if got := mock.callNames(); len(got) != 2 {
		t.Fatalf("calls = %v, want a and b only", got)
	}
	if len(rep.Steps) != 4 {
		t.Fatalf("steps = %d, want every planned step reported", len(rep.Steps))
	}
	for _, i := range []int{2, 3} {
		if !rep.Steps[i].Skipped || rep.Steps[i].Result.Success {
			t.Fatalf("step %d = %+v, want skipped", i, rep.Steps[i])
		}
	}
	if !rep.Steps[0].Result.Success || !rep.Steps[1].Result.Success {
		t.Fatal("steps before cancellation stay committed")
	}
	failed := rep.Failed()
	if len(failed) != 2 || failed[0] != 2 || failed[1] != 3 {
		t.Fatalf("failed = %v", failed)
	}
}

func TestRun_EmptyPlan(t *testing.T) {
	r := &Runner{Dispatcher: newMock()}
	rep := r.Run(context.Background(), nil)
	if len(rep.Steps) != 0 || rep.Interrupted {
		t.Fatalf("report = %+v", rep)
	}
}

func TestReport_WarningsAndSummary(t *testing.T) {
	mock := newMock()
	warned := dispatch.OK("Created task")
	warned.Warning = "change applied but not saved: disk full"
	mock.results["create_task"] = warned
	mock.results["link_task_to_milestone"] = dispatch.Fail("no milestone matches %q", "beta")
	r := &Runner{Dispatcher: mock}

	rep := r.Run(context.Background(), plan("create_task", "link_task_to_milestone"))
	if w := rep.Warnings(); len(w) != 1 {
		t.Fatalf("warnings = %v", w)
	}
	want := "1. create_task: Created task\n2. link_task_to_milestone failed: no milestone matches \"beta\"\n"
	if got := rep.Summary(); got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}
