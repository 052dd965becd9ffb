package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// LocalExecutor runs commands on the host shell.
type LocalExecutor struct {
	shell string
	dir   string
}

// NewLocalExecutor builds a new executor, shell defaults to /bin/sh. An empty
// dir runs commands in the current working directory.
func NewLocalExecutor(shell, dir string) *LocalExecutor {
	if shell == "" {
		shell = domain.DefaultShell
	}
	return &LocalExecutor{shell: shell, dir: dir}
}

// Execute implements ports.CommandExecutor. A non-zero exit is returned as an
// error alongside the captured output.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (domain.ShellResult, error) {
	c := exec.CommandContext(ctx, e.shell, "-c", command)
	c.Dir = e.dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()

	result := domain.ShellResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, err
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
