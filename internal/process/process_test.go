//go:build !windows

package process

import (
	"strings"
	"testing"
	"time"

	"unityhub/internal/logging"
)

func testLogger(t *testing.T) (*logging.ScopedLogger, *logging.TestLogManager) {
	t.Helper()
	lm := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = lm.Close() })
	return lm.For("test"), lm
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process was not reaped")
	}
}

func TestLauncher_StartsAndReaps(t *testing.T) {
	logger, _ := testLogger(t)
	l := NewLauncher(logger)

	h, err := l.Launch(Config{Name: "true", Binary: "true"})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if h.Pid <= 0 {
		t.Errorf("Pid = %d", h.Pid)
	}
	waitDone(t, h)
	if code := h.ExitCode(); code != 0 {
		t.Errorf("ExitCode() = %d, want 0", code)
	}
}

func TestLauncher_NonZeroExit(t *testing.T) {
	logger, _ := testLogger(t)
	l := NewLauncher(logger)

	h, err := l.Launch(Config{Name: "false", Binary: "false"})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	waitDone(t, h)
	if code := h.ExitCode(); code != 1 {
		t.Errorf("ExitCode() = %d, want 1", code)
	}
}

func TestLauncher_PassesArgs(t *testing.T) {
	logger, lm := testLogger(t)
	l := NewLauncher(logger)

	h, err := l.Launch(Config{Name: "sh", Binary: "sh", Args: []string{"-c", "exit 3"}})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	waitDone(t, h)
	if code := h.ExitCode(); code != 3 {
		t.Errorf("ExitCode() = %d, want 3", code)
	}

	entry := <-lm.Channel()
	if entry.Message != "starting process" || !strings.Contains(entry.Fields["args"].(string), "exit 3") {
		t.Errorf("unexpected first entry %+v", entry)
	}
}

func TestLauncher_MissingBinary(t *testing.T) {
	logger, _ := testLogger(t)
	l := NewLauncher(logger)

	if _, err := l.Launch(Config{Name: "ghost", Binary: "/nonexistent/unity-editor"}); err == nil {
		t.Fatal("expected start error for missing binary")
	}
	if _, err := l.Launch(Config{Name: "empty"}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
