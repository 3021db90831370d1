// Package engine runs a single compile or run command inside a fresh,
// resource-capped container (C2 — spec.md 4.2), grounded on the Docker
// Engine API usage pattern in the pack's docker_executor.go (container
// create/start/wait/kill/remove, bind mounts, resource limits), adapted
// from the moby/moby split-module import paths to the classic
// github.com/docker/docker/client module and to this spec's file-based
// I/O contract (stdin/stdout/time all live on the bind-mounted work dir,
// so no stdin attach or log streaming is required).
package engine

import (
	"context"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	units "github.com/docker/go-units"

	sandboxspec "judgecore/internal/sandbox/spec"
	"judgecore/pkg/errors"
)

// Engine runs containers against the fixed policy in spec.ResourceLimits.
type Engine struct {
	cli *client.Client
}

// New connects to the Docker daemon using the standard DOCKER_HOST/TLS
// environment, negotiating the API version once for the process.
func New() (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, errors.EngineUnavailable)
	}
	return &Engine{cli: cli}, nil
}

// Close releases the underlying client connection.
func (e *Engine) Close() error {
	return e.cli.Close()
}

// Run creates a fresh container for req, starts it, waits for it to exit
// (or for req.Timeout to elapse, at which point it is force-killed as a
// backstop — the per-testcase timeout itself is enforced inside the
// container by the `timeout` wrapper per spec.md 9), and removes it
// unconditionally on return.
func (e *Engine) Run(ctx context.Context, req sandboxspec.ContainerRequest) (sandboxspec.ContainerResult, error) {
	limits := req.Limits

	containerConfig := &container.Config{
		Image:      req.Image,
		Cmd:        []string{"sh", "-c", req.Command},
		WorkingDir: req.WorkDir,
		Tty:        false,
	}

	hostConfig := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: req.WorkDir,
				Target: req.WorkDir,
			},
		},
		NetworkMode: "none",
		Privileged:  false,
		Resources: container.Resources{
			Memory:            limits.MemoryBytes,
			MemoryReservation: limits.MemoryReservationBytes,
			MemorySwap:        limits.MemorySwapBytes,
			MemorySwappiness:  &limits.MemorySwappiness,
			CPUPeriod:         limits.CPUPeriod,
			CPUQuota:          limits.CPUQuota,
			PidsLimit:         &limits.PidsLimit,
			Ulimits: []*units.Ulimit{
				{Name: "nofile", Soft: limits.NofileSoft, Hard: limits.NofileHard},
				{Name: "nproc", Soft: limits.NprocSoft, Hard: limits.NprocHard},
			},
		},
	}

	resp, err := e.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return sandboxspec.ContainerResult{}, errors.Wrap(err, errors.EngineUnavailable)
	}
	defer e.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})

	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return sandboxspec.ContainerResult{}, errors.Wrap(err, errors.EngineUnavailable)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	statusCh, errCh := e.cli.ContainerWait(runCtx, resp.ID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		if err != nil {
			_ = e.cli.ContainerKill(context.Background(), resp.ID, "SIGKILL")
			exitCode = 124
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	case <-runCtx.Done():
		_ = e.cli.ContainerKill(context.Background(), resp.ID, "SIGKILL")
		exitCode = 124
	}

	logs := e.readLogs(resp.ID)
	return sandboxspec.ContainerResult{ExitCode: int(exitCode), Logs: logs}, nil
}

// readLogs pulls combined stdout/stderr for error reporting only; program
// output itself is read from output.txt on the bind mount per spec.md's
// stated rationale (avoids interleaving with the `time` wrapper's stderr).
func (e *Engine) readLogs(containerID string) string {
	rc, err := e.cli.ContainerLogs(context.Background(), containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return ""
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if len(b) > 4096 {
		b = b[len(b)-4096:]
	}
	return string(b)
}
