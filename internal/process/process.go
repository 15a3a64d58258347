// pattern: Imperative Shell

// Package process starts detached child processes: the editor for a project
// and the desktop file manager.
package process

import (
	"errors"
	"fmt"
	"os/exec"

	"unityhub/internal/logging"
)

// Config describes a child process to launch.
type Config struct {
	Name   string
	Binary string
	Args   []string
	Dir    string
}

// Handle tracks a launched process. Nobody is required to wait on it.
type Handle struct {
	Pid  int
	done chan struct{}
	code int
}

// Done is closed once the process has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// ExitCode is valid after Done is closed. -1 means the exit status was not available.
func (h *Handle) ExitCode() int {
	<-h.done
	return h.code
}

// Launcher starts processes without waiting for them. The child gets its own
// session so it outlives the launcher.
type Launcher struct {
	logger *logging.ScopedLogger
}

// NewLauncher creates a Launcher.
func NewLauncher(logger *logging.ScopedLogger) *Launcher {
	return &Launcher{logger: logger}
}

// Launch starts the process and returns immediately. A start failure is
// returned; the exit status is only logged.
func (l *Launcher) Launch(cfg Config) (*Handle, error) {
	if cfg.Binary == "" {
		return nil, errors.New("process: empty binary")
	}
	cmd := exec.Command(cfg.Binary, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.SysProcAttr = detachAttrs()

	l.logger.Info("starting process", "process", cfg.Name, "binary", cfg.Binary, "args", fmt.Sprintf("%v", cfg.Args))

	if err := cmd.Start(); err != nil {
		l.logger.Error("failed to start process", "error", err, "process", cfg.Name)
		return nil, fmt.Errorf("starting %s: %w", cfg.Name, err)
	}

	h := &Handle{Pid: cmd.Process.Pid, done: make(chan struct{})}
	go l.reap(cfg.Name, cmd, h)
	return h, nil
}

func (l *Launcher) reap(name string, cmd *exec.Cmd, h *Handle) {
	defer close(h.done)

	err := cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			h.code = exitErr.ExitCode()
			l.logger.Warn("process exited", "process", name, "exit_code", h.code)
			return
		}
		h.code = -1
		l.logger.Info("process stopped", "process", name, "error", err)
		return
	}
	l.logger.Debug("process exited cleanly", "process", name)
}
