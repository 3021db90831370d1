// Package spec holds the value types passed into the sandbox engine: the
// request to compile or run something, the resource limits applied to
// every container, and the result handed back to the caller.
package spec

import "time"

// ResourceLimits is applied identically to compile and run containers
// (spec.md 4.2): network disabled, memory/cpu/pids/ulimit caps, not
// privileged.
type ResourceLimits struct {
	MemoryBytes          int64
	MemoryReservationBytes int64
	MemorySwapBytes      int64
	MemorySwappiness     int64
	CPUPeriod            int64
	CPUQuota             int64
	PidsLimit            int64
	NofileSoft, NofileHard int64
	NprocSoft, NprocHard   int64
}

// DefaultLimits returns the container policy fixed by spec.md 4.2: 300MiB
// memory cap, 200MiB reservation, 300MiB swap cap, swappiness 0, one full
// CPU, 50 pids, nofile 1024/2048, nproc 50/100.
func DefaultLimits() ResourceLimits {
	const mib = 1024 * 1024
	return ResourceLimits{
		MemoryBytes:            300 * mib,
		MemoryReservationBytes: 200 * mib,
		MemorySwapBytes:        300 * mib,
		MemorySwappiness:       0,
		CPUPeriod:              100000,
		CPUQuota:               100000,
		PidsLimit:              50,
		NofileSoft:             1024,
		NofileHard:             2048,
		NprocSoft:              50,
		NprocHard:              100,
	}
}

// ContainerRequest is a single fresh-container-per-invocation compile or
// run request.
type ContainerRequest struct {
	Image      string
	Command    string // shell command line, run via "sh -c"
	WorkDir    string // bind-mounted at the same path inside the container
	Limits     ResourceLimits
	Timeout    time.Duration // hard wall-clock cap enforced by the caller as a backstop
}

// ContainerResult is what the engine returns after a container exits or
// is killed.
type ContainerResult struct {
	ExitCode int
	Logs     string // combined stdout/stderr from the container, for error reporting only
}
