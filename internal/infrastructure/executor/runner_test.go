package executor

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/promptline/internal/domain"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell based test")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunReturnsStdout(t *testing.T) {
	requireShell(t)
	r := NewTimeoutRunner(time.Second)
	out, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Fatalf("stdout = %q, want hello", out)
	}
}

func TestRunTimeout(t *testing.T) {
	requireShell(t)
	r := NewTimeoutRunner(50 * time.Millisecond)
	start := time.Now()
	_, err := r.Run(context.Background(), "", "sh", "-c", "sleep 5")
	if !errors.Is(err, domain.ErrCommandTimeout) {
		t.Fatalf("err = %v, want ErrCommandTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	requireShell(t)
	r := NewTimeoutRunner(time.Second)
	_, err := r.Run(context.Background(), "", "sh", "-c", "echo fatal: nope >&2; exit 128")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "fatal: nope") {
		t.Fatalf("error should carry stderr, got %v", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := NewTimeoutRunner(time.Second)
	if _, err := r.Run(context.Background(), "", "promptline-definitely-missing-binary"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
