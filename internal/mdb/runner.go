package mdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/logger"
)

const waitDelay = 2 * time.Second

// Runner runs an external command to completion and returns its standard
// output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands as local processes via os/exec.
// Cancelling ctx kills the process.
type ExecRunner struct {
	Logger *logger.Logger
}

// Run starts name with args, waits for it to exit and returns stdout.
// Stderr is captured and attached to the error on failure.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Stop waiting on pipes held open by orphaned children after a kill.
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	if r.Logger != nil {
		r.Logger.Command(name, args, time.Since(start), err)
	}
	if err != nil {
		return nil, commandError(ctx, name, stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// commandError maps a failed invocation onto an errs kind.
func commandError(ctx context.Context, name, stderr string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errs.Wrap(errs.ErrKindTimeout, fmt.Sprintf("%s did not finish", name), ctxErr)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return errs.Wrap(errs.ErrKindExecution, fmt.Sprintf("%s is no longer available; %s", name, installHint), err)
	}

	msg := fmt.Sprintf("%s failed", name)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg = fmt.Sprintf("%s exited with status %d", name, exitErr.ExitCode())
	}
	if s := strings.TrimSpace(stderr); s != "" {
		msg += ": " + s
	}
	return errs.Wrap(errs.ErrKindExecution, msg, err)
}
