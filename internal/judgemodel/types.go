// Package judgemodel holds the wire types shared by the gateway and
// worker (spec.md 3: Task, ExecuteRequest, EvaluateRequest, Testcase,
// TestcaseResult, EvaluationResult).
package judgemodel

import "encoding/json"

// TaskType is either "execute" or "evaluate".
type TaskType string

const (
	TaskExecute  TaskType = "execute"
	TaskEvaluate TaskType = "evaluate"
)

// Task is the unit flowing through the broker.
type Task struct {
	Type          TaskType        `json:"type"`
	Payload       json.RawMessage `json:"payload"`
	CorrelationID string          `json:"correlation_id"`
}

// ExecuteRequest is a one-shot run with no scoring.
type ExecuteRequest struct {
	ProcessorID string `json:"processor_id"`
	Code        string `json:"code"`
	Stdin       string `json:"stdin"`
}

// Testcase is an input/expected-output pair with a score and a public
// flag.
type Testcase struct {
	ID       string `json:"id"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Score    int    `json:"score"`
	IsPublic bool   `json:"is_public"`
}

// EvaluateRequest scores a submission against an ordered list of
// testcases. ContestID/ProblemID/UserID/Testcases are filled in
// server-side by the gateway (spec.md 4.3.2), not supplied by the caller.
type EvaluateRequest struct {
	ProcessorID string     `json:"processor_id"`
	Code        string     `json:"code"`
	ContestID   string     `json:"contest_id"`
	ProblemID   string     `json:"problem_id"`
	UserID      string     `json:"user_id"`
	Testcases   []Testcase `json:"testcases"`
}

// TestcaseResult is the per-testcase outcome of an evaluation.
type TestcaseResult struct {
	TestID        string  `json:"test_id"`
	Status        string  `json:"status"`
	Output        string  `json:"output,omitempty"`
	Expected      string  `json:"expected,omitempty"`
	Score         int     `json:"score"`
	ExecutionTime float64 `json:"execution_time,omitempty"`
	ExitCode      *int    `json:"exit_code,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// Summary aggregates TestcaseResults per spec.md's invariants: passed +
// failed = total; total = len(testcases); total_score is the sum of
// passing testcases' scores.
type Summary struct {
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
	TotalScore int `json:"total_score"`
}

// EvaluationResult is the full scored outcome of an evaluate task.
type EvaluationResult struct {
	Results []TestcaseResult `json:"results"`
	Summary Summary          `json:"summary"`
}

// ExecuteResult is the outcome of an execute task.
type ExecuteResult struct {
	Status        string  `json:"status"`
	Output        string  `json:"output,omitempty"`
	ExecutionTime float64 `json:"execution_time,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	ExitCode      *int    `json:"exit_code,omitempty"`
}

// Response is what the worker publishes to the response queue, keyed by
// the originating Task's correlation id.
type Response struct {
	CorrelationID string          `json:"correlation_id"`
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
}
