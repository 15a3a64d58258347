// pattern: Imperative Shell
package instance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName  = "unityhub.lock"
	pidFileName   = "unityhub.pid"
	writeLockName = "config.lock"

	writeLockTimeout = 5 * time.Second
	writeLockRetry   = 25 * time.Millisecond
)

// ErrAlreadyRunning is returned by Lock when another interactive session holds the lock.
var ErrAlreadyRunning = errors.New("another unityhub instance is already running")

// Lock acquires an exclusive file lock for the interactive session and
// records the process id. The caller must defer Cleanup.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		if pid, ok := readPID(dataDir); ok {
			return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
		return nil, ErrAlreadyRunning
	}
	pidPath := filepath.Join(dataDir, pidFileName)
	_ = os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0600)
	return fl, nil
}

// Cleanup removes the pid file and releases the file lock.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dataDir, pidFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}

// Running reports the pid of the interactive session holding the lock, if any.
func Running(dataDir string) (int, bool) {
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return 0, false
	}
	if locked {
		_ = fl.Unlock()
		return 0, false
	}
	return readPID(dataDir)
}

func readPID(dataDir string) (int, bool) {
	data, err := os.ReadFile(filepath.Join(dataDir, pidFileName))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// WithWriteLock runs fn while holding the config write lock. Writers in other
// processes wait up to a few seconds for it.
func WithWriteLock(dataDir string, fn func() error) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeLockTimeout)
	defer cancel()

	fl := flock.New(filepath.Join(dataDir, writeLockName))
	locked, err := fl.TryLockContext(ctx, writeLockRetry)
	if err != nil {
		return fmt.Errorf("waiting for config lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("config lock not acquired")
	}
	defer func() { _ = fl.Unlock() }()
	return fn()
}
