package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLockHeld is returned when another process holds the run lock. Callers
// must exit without side effects, not block or retry.
var ErrLockHeld = errors.New("run lock held by another process")

// RunLock is a process-level exclusive lock backed by an O_EXCL lock file
// containing the owner pid. It guarantees at most one pipeline instance runs
// at a time; a second invocation fails fast with ErrLockHeld.
type RunLock struct {
	path string
	file *os.File
}

// AcquireRunLock takes the exclusive lock at path. A lock file whose owner
// pid no longer exists is treated as stale and reclaimed.
func AcquireRunLock(path string) (*RunLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}
		if !isStaleLock(path) {
			return nil, ErrLockHeld
		}
		// Stale owner: reclaim
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
		}
		file, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			if os.IsExist(err) {
				return nil, ErrLockHeld
			}
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}
	}

	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return &RunLock{path: path, file: file}, nil
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *RunLock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// isStaleLock reports whether the lock file's owner pid is gone.
func isStaleLock(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// Unreadable owner: treat as stale rather than deadlock forever
		return true
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	// Signal 0 probes existence without delivering a signal
	return proc.Signal(syscall.Signal(0)) != nil
}
