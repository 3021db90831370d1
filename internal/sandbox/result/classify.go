// Package result classifies a container exit code into the sandbox
// failure taxonomy spec.md 4.2 names (exit-code classification is a total
// function from {0, 124, 126, 127, 137, 139, other} to the status enum).
package result

// Status is a classified sandbox outcome.
type Status string

const (
	StatusOK                 Status = "ok"
	StatusTimeLimitExceeded   Status = "tle"
	StatusMemoryLimitExceeded Status = "mle"
	StatusSegmentationFault   Status = "segmentation_fault"
	StatusFileNotFound        Status = "file_not_found"
	StatusRuntimeError        Status = "runtime_error"
)

// Classify maps a container exit code to a Status per spec.md's table:
// 124 TLE, 137 OOM, 139 SIGSEGV, 126/127 not found/not executable, any
// other non-zero RuntimeError, 0 OK.
func Classify(exitCode int) Status {
	switch exitCode {
	case 0:
		return StatusOK
	case 124:
		return StatusTimeLimitExceeded
	case 137:
		return StatusMemoryLimitExceeded
	case 139:
		return StatusSegmentationFault
	case 126, 127:
		return StatusFileNotFound
	default:
		return StatusRuntimeError
	}
}
