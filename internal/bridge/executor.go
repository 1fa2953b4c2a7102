package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.smsbridge.org/internal/errorbehavior"
)

var (
	// ErrExecutableNotFound means the adb binary is missing. Fatal; there is
	// no point retrying until the server is reconfigured.
	ErrExecutableNotFound = errors.New("adb binary not found")

	// ErrTimeout means the process did not finish within the allotted
	// duration. The caller may retry.
	ErrTimeout = errors.New("adb command timed out")
)

// Result is the outcome of one process invocation. The exit code is surfaced
// as data, not as an error; callers decide what a non-zero code means.
type Result struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Execute runs the adb binary with the given arguments and the default
// timeout. One external process per call, no retries.
func (b *Bridge) Execute(ctx context.Context, args ...string) (Result, error) {
	return b.ExecuteTimeout(ctx, b.timeout, args...)
}

// ExecuteTimeout runs the adb binary with a per-call timeout.
func (b *Bridge) ExecuteTimeout(ctx context.Context, timeout time.Duration, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b.loggerDebug.Printf("executing: %s %v (timeout %s)", b.path, args, timeout)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Args:   append([]string{b.path}, args...),
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return result, errorbehavior.WrapRetryable(fmt.Errorf("%w after %s: %s %v", ErrTimeout, timeout, b.path, args))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The process ran and exited non-zero. That is data, not failure.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// The binary disappeared between construction and the call.
		return result, errorbehavior.WrapNonRetryable(fmt.Errorf("%w: %s", ErrExecutableNotFound, err))
	}
	result.ExitCode = cmd.ProcessState.ExitCode()
	return result, nil
}
