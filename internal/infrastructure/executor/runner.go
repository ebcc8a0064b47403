package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/ports"
)

// TimeoutRunner runs commands on the host with a hard deadline.
type TimeoutRunner struct {
	timeout time.Duration
}

// NewTimeoutRunner builds a runner, timeout defaults to domain.DefaultCommandTimeout.
func NewTimeoutRunner(timeout time.Duration) *TimeoutRunner {
	if timeout <= 0 {
		timeout = domain.DefaultCommandTimeout
	}
	return &TimeoutRunner{timeout: timeout}
}

// Run implements ports.CommandRunner. A deadline overrun returns
// domain.ErrCommandTimeout; a non-zero exit returns the trimmed stderr.
func (r *TimeoutRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.WaitDelay = 100 * time.Millisecond
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%s: %w", name, domain.ErrCommandTimeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			return "", fmt.Errorf("%s exited %d: %s", name, exitErr.ExitCode(), msg)
		}
		return "", fmt.Errorf("run %s: %w", name, err)
	}
	return stdout.String(), nil
}

var _ ports.CommandRunner = (*TimeoutRunner)(nil)
