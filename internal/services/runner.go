package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Command describes one external tool invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string

	// Stdout and Stderr, when set, receive the live output stream in addition
	// to the captured buffers.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// CommandResult captures one finished invocation.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner executes external tools. Tests substitute fakes.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct {
	// Timeout bounds each invocation; zero means no limit.
	Timeout time.Duration
}

// Run executes the command, capturing stdout and stderr. A non-zero exit is
// reported as an error that carries the trimmed stderr tail.
func (r ExecRunner) Run(ctx context.Context, c Command) (CommandResult, error) {
	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, c.Name, c.Args...) //nolint:gosec
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = c.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, c.Stdout)
	}
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	}

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return result, fmt.Errorf("%w: %s exceeded %s", ErrTimeout, c.Name, r.Timeout)
	}
	if detail := tail(stderr.String(), 512); detail != "" {
		return result, fmt.Errorf("%s: %w: %s", c.Name, err, detail)
	}
	return result, fmt.Errorf("%s: %w", c.Name, err)
}

func tail(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return "..." + value[len(value)-limit:]
}
