// Execute implements the one-shot, unscored run path (C3's execute
// operation), grounded on original_source/.../code_executor.py: compile
// once if needed, run once with the caller's stdin, return status/
// output/execution_time, always cleaning up the work dir.
package worker

import (
	"context"

	"judgecore/internal/judgemodel"
	"judgecore/internal/processor"
	"judgecore/internal/sandbox/result"
	"judgecore/internal/sandbox/runner"
	"judgecore/internal/sandbox/workspace"
	"judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"
)

// Execute runs req's code once against req.Stdin and returns the raw
// ExecuteResult.
func Execute(ctx context.Context, run *runner.Runner, workRoot string, req judgemodel.ExecuteRequest) (judgemodel.ExecuteResult, error) {
	p, err := processor.Lookup(req.ProcessorID)
	if err != nil {
		return judgemodel.ExecuteResult{}, err
	}

	layout, err := workspace.New(workRoot, p.CodeFilename)
	if err != nil {
		return judgemodel.ExecuteResult{}, errors.Wrap(err, errors.JudgeSystemError)
	}
	defer func() {
		if rmErr := layout.Remove(); rmErr != nil {
			logger.Warnf(ctx, "execute: failed to clean up work dir %s: %v", layout.Dir, rmErr)
		}
	}()

	if err := layout.WriteSource(req.Code); err != nil {
		return judgemodel.ExecuteResult{}, errors.Wrap(err, errors.JudgeSystemError)
	}

	if p.NeedsCompile {
		if compileErr := run.Compile(ctx, p, layout, compileTimeout); compileErr != nil {
			return judgemodel.ExecuteResult{Status: "error", ErrorMessage: compileErr.Error()}, nil
		}
	}

	rr := run.Run(ctx, p, layout, req.Stdin, executeTimeoutSec)
	if rr.Status != result.StatusOK {
		exitCode := rr.ExitCode
		return judgemodel.ExecuteResult{
			Status:       "error",
			ErrorMessage: failureMessage(rr.Status),
			ExitCode:     &exitCode,
		}, nil
	}

	return judgemodel.ExecuteResult{
		Status:        "success",
		Output:        rr.Output,
		ExecutionTime: rr.Elapsed.Seconds(),
	}, nil
}
