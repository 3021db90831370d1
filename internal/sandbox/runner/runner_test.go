package runner

import (
	"context"
	"os"
	"testing"

	"judgecore/internal/processor"
	"judgecore/internal/sandbox/result"
	sandboxspec "judgecore/internal/sandbox/spec"
	"judgecore/internal/sandbox/workspace"
)

type fakeEngine struct {
	exitCode int
	logs     string
	onRun    func(req sandboxspec.ContainerRequest)
}

func (f *fakeEngine) Run(ctx context.Context, req sandboxspec.ContainerRequest) (sandboxspec.ContainerResult, error) {
	if f.onRun != nil {
		f.onRun(req)
	}
	return sandboxspec.ContainerResult{ExitCode: f.exitCode, Logs: f.logs}, nil
}

func TestCompileNonZeroExitReturnsCompilationError(t *testing.T) {
	layout, _ := workspace.New(t.TempDir(), "main.cpp")
	defer layout.Remove()

	r := New(&fakeEngine{exitCode: 1, logs: "syntax error"})
	p, _ := processor.Lookup("c++17")

	err := r.Compile(context.Background(), p, layout, 0)
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestCompileSkippedWhenNotNeeded(t *testing.T) {
	layout, _ := workspace.New(t.TempDir(), "main.py")
	defer layout.Remove()

	r := New(&fakeEngine{exitCode: 1}) // would fail if invoked
	p, _ := processor.Lookup("python3")

	if err := r.Compile(context.Background(), p, layout, 0); err != nil {
		t.Fatalf("python3 compile should be a no-op, got %v", err)
	}
}

func TestRunSuccessReadsOutputAndTime(t *testing.T) {
	layout, _ := workspace.New(t.TempDir(), "main.cpp")
	defer layout.Remove()

	engine := &fakeEngine{
		exitCode: 0,
		onRun: func(req sandboxspec.ContainerRequest) {
			_ = os.WriteFile(layout.OutputFile, []byte("6\n"), 0o644)
			_ = os.WriteFile(layout.TimeFile, []byte("0.01\n"), 0o644)
		},
	}
	r := New(engine)
	p, _ := processor.Lookup("c++17")

	res := r.Run(context.Background(), p, layout, "3\n1 2 3", 2)
	if res.Status != result.StatusOK {
		t.Fatalf("expected OK, got %v", res.Status)
	}
	if res.Output != "6\n" {
		t.Fatalf("expected output 6, got %q", res.Output)
	}
	if res.Elapsed <= 0 {
		t.Fatalf("expected positive elapsed time")
	}
}

func TestRunClassifiesTimeout(t *testing.T) {
	layout, _ := workspace.New(t.TempDir(), "main.py")
	defer layout.Remove()

	r := New(&fakeEngine{exitCode: 124})
	p, _ := processor.Lookup("python3")

	res := r.Run(context.Background(), p, layout, "", 1)
	if res.Status != result.StatusTimeLimitExceeded {
		t.Fatalf("expected tle, got %v", res.Status)
	}
}
