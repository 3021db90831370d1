// Evaluation procedure (C3's evaluate operation), grounded verbatim on
// original_source/services/code_execute_worker/app/services/
// code_evaluate.py: compile once, short-circuit every testcase to
// compile_error on failure, otherwise run testcases sequentially with
// right-trimmed output comparison, and sum per-testcase scores.
package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"judgecore/internal/judgemodel"
	"judgecore/internal/processor"
	"judgecore/internal/sandbox/result"
	"judgecore/internal/sandbox/runner"
	"judgecore/internal/sandbox/workspace"
	"judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"
)

const (
	executeTimeoutSec = 10
	compileTimeout    = 10 * time.Second
)

// Evaluate runs req's code against every testcase, classifying and
// scoring each one, and returns the aggregated EvaluationResult.
// workRoot is the base directory new per-job Layouts are created under.
func Evaluate(ctx context.Context, run *runner.Runner, workRoot string, req judgemodel.EvaluateRequest) (judgemodel.EvaluationResult, error) {
	p, err := processor.Lookup(req.ProcessorID)
	if err != nil {
		return judgemodel.EvaluationResult{}, err
	}
	if len(req.Testcases) == 0 {
		return judgemodel.EvaluationResult{}, errors.New(errors.InvalidParams).WithMessage("no testcases provided in request")
	}

	layout, err := workspace.New(workRoot, p.CodeFilename)
	if err != nil {
		return judgemodel.EvaluationResult{}, errors.Wrap(err, errors.JudgeSystemError)
	}
	defer func() {
		if rmErr := layout.Remove(); rmErr != nil {
			logger.Warnf(ctx, "evaluate: failed to clean up work dir %s: %v", layout.Dir, rmErr)
		}
	}()

	if err := layout.WriteSource(req.Code); err != nil {
		return judgemodel.EvaluationResult{}, errors.Wrap(err, errors.JudgeSystemError)
	}

	if p.NeedsCompile {
		if compileErr := run.Compile(ctx, p, layout, compileTimeout); compileErr != nil {
			return compileErrorResult(req.Testcases, compileErr), nil
		}
	}

	results := make([]judgemodel.TestcaseResult, 0, len(req.Testcases))
	passed, totalScore := 0, 0

	for idx, tc := range req.Testcases {
		testID := fmt.Sprintf("test%02d", idx+1)
		expected := strings.TrimRight(tc.Expected, " \n\r")

		rr := run.Run(ctx, p, layout, tc.Input, executeTimeoutSec)
		results = append(results, testcaseResult(testID, tc, expected, rr))
		if rr.Status == result.StatusOK && strings.TrimRight(rr.Output, " \n\r") == expected {
			passed++
			totalScore += tc.Score
		}
	}

	failed := len(req.Testcases) - passed
	return judgemodel.EvaluationResult{
		Results: results,
		Summary: judgemodel.Summary{
			Passed:     passed,
			Failed:     failed,
			Total:      len(req.Testcases),
			TotalScore: totalScore,
		},
	}, nil
}

func testcaseResult(testID string, tc judgemodel.Testcase, expected string, rr runner.RunResult) judgemodel.TestcaseResult {
	exitCode := rr.ExitCode
	if rr.Status != result.StatusOK {
		return judgemodel.TestcaseResult{
			TestID:       testID,
			Status:       statusLabel(rr.Status),
			Score:        0,
			ErrorMessage: failureMessage(rr.Status),
			ExitCode:     &exitCode,
		}
	}

	output := strings.TrimRight(rr.Output, " \n\r")
	if output == expected {
		return judgemodel.TestcaseResult{
			TestID:        testID,
			Status:        "passed",
			Output:        output,
			Score:         tc.Score,
			ExecutionTime: rr.Elapsed.Seconds(),
			ExitCode:      &exitCode,
		}
	}

	tr := judgemodel.TestcaseResult{
		TestID:        testID,
		Status:        "failed",
		Output:        output,
		Score:         0,
		ExecutionTime: rr.Elapsed.Seconds(),
		ExitCode:      &exitCode,
	}
	if tc.IsPublic {
		tr.Expected = expected
	}
	return tr
}

// compileErrorResult mirrors the original's shortcut: when compilation
// fails, every testcase is marked compile_error with zero score, the
// container never runs.
func compileErrorResult(testcases []judgemodel.Testcase, compileErr error) judgemodel.EvaluationResult {
	results := make([]judgemodel.TestcaseResult, 0, len(testcases))
	for idx := range testcases {
		results = append(results, judgemodel.TestcaseResult{
			TestID:       fmt.Sprintf("test%02d", idx+1),
			Status:       "compile_error",
			ErrorMessage: compileErr.Error(),
			Score:        0,
		})
	}
	return judgemodel.EvaluationResult{
		Results: results,
		Summary: judgemodel.Summary{
			Passed: 0, Failed: len(testcases), Total: len(testcases), TotalScore: 0,
		},
	}
}

// statusLabel reports the testcase status string. file_not_found has no
// explicit case in the original's evaluation loop and falls through its
// catch-all "error" branch, so it's relabeled here to match.
func statusLabel(s result.Status) string {
	if s == result.StatusFileNotFound {
		return "error"
	}
	return string(s)
}

// failureMessage reproduces the original exception detail strings for a
// classified sandbox status.
func failureMessage(s result.Status) string {
	switch s {
	case result.StatusTimeLimitExceeded:
		return "Time Limit Exceeded: Code execution took too long"
	case result.StatusMemoryLimitExceeded:
		return "Memory Limit Exceeded: Code execution used too much memory"
	case result.StatusSegmentationFault:
		return "Segmentation Fault"
	case result.StatusFileNotFound:
		return "File not found"
	default:
		return "Runtime Error"
	}
}
