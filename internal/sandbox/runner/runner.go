// Package runner orchestrates a processor's compile/run commands against
// the engine and a job's workspace.Layout (C2's public compile/run
// operations from spec.md 4.2), grounded on the teacher's
// default_runner.go shape.
package runner

import (
	"context"
	"time"

	"github.com/google/shlex"

	"judgecore/internal/processor"
	"judgecore/internal/sandbox/result"
	sandboxspec "judgecore/internal/sandbox/spec"
	"judgecore/internal/sandbox/workspace"
	"judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"
)

// Container is the narrow surface Runner needs from the sandbox engine.
type Container interface {
	Run(ctx context.Context, req sandboxspec.ContainerRequest) (sandboxspec.ContainerResult, error)
}

// Runner compiles and runs processor commands inside containers.
type Runner struct {
	engine Container
}

// New builds a Runner over the given container engine.
func New(engine Container) *Runner {
	return &Runner{engine: engine}
}

// RunResult is the outcome of a single Run invocation: either a
// classified sandbox status, or OK with output + elapsed wall-time.
type RunResult struct {
	Status   result.Status
	Output   string
	Elapsed  time.Duration
	ExitCode int
	Logs     string
}

// Compile runs p's compile command in a fresh container. Returns an
// *errors.Error wrapping errors.CompilationError on non-zero exit,
// carrying the container logs as detail.
func (r *Runner) Compile(ctx context.Context, p processor.Processor, layout workspace.Layout, timeout time.Duration) error {
	cmd := p.CompileCmd(layout.Dir)
	if cmd == "" {
		return nil
	}
	logCompileCommand(cmd)

	res, err := r.engine.Run(ctx, sandboxspec.ContainerRequest{
		Image:   p.Image,
		Command: cmd,
		WorkDir: layout.Dir,
		Limits:  sandboxspec.DefaultLimits(),
		Timeout: timeout,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.Newf(errors.CompilationError, "compile failed: exit %d", res.ExitCode).
			WithDetail("exit_code", res.ExitCode).
			WithDetail("logs", res.Logs)
	}
	return nil
}

// Run writes input to the workspace, runs p's final command in a fresh
// container, and classifies the outcome. On success it reads output.txt
// and time.txt from the mounted work dir (never container logs, per
// spec.md's stated rationale).
func (r *Runner) Run(ctx context.Context, p processor.Processor, layout workspace.Layout, input string, timeoutSec int) RunResult {
	if err := layout.WriteInput(input); err != nil {
		return RunResult{Status: result.StatusFileNotFound}
	}

	cmd := p.FinalCmd(layout.Dir, timeoutSec)
	res, err := r.engine.Run(ctx, sandboxspec.ContainerRequest{
		Image:   p.Image,
		Command: cmd,
		WorkDir: layout.Dir,
		Limits:  sandboxspec.DefaultLimits(),
		Timeout: time.Duration(timeoutSec+2) * time.Second,
	})
	if err != nil {
		return RunResult{Status: result.StatusFileNotFound, Logs: err.Error()}
	}

	status := result.Classify(res.ExitCode)
	if status != result.StatusOK {
		return RunResult{Status: status, ExitCode: res.ExitCode, Logs: res.Logs}
	}

	output, err := layout.ReadOutput()
	if err != nil {
		return RunResult{Status: result.StatusFileNotFound, ExitCode: res.ExitCode}
	}
	elapsedSec, err := layout.ReadElapsedSeconds()
	if err != nil {
		elapsedSec = 0
	}
	return RunResult{
		Status:   result.StatusOK,
		Output:   output,
		Elapsed:  time.Duration(elapsedSec * float64(time.Second)),
		ExitCode: res.ExitCode,
	}
}

// logCompileCommand logs the executable name parsed out of the compile
// command line for operator visibility.
func logCompileCommand(cmd string) {
	fields, err := shlex.Split(cmd)
	if err != nil || len(fields) == 0 {
		return
	}
	logger.Debugf(context.Background(), "sandbox compile invoking %s", fields[0])
}
