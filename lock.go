package vision

import (
	"fmt"
	"os"
	"time"
)

// Locker provides cross-process mutual exclusion for an output directory
// or the run ledger.
type Locker interface {
	// Lock acquires an exclusive lock on the file.
	// Blocks until lock is acquired or timeout expires.
	Lock() error

	// Unlock releases the lock.
	// Safe to call multiple times.
	Unlock() error
}

// fileLock implements Locker with an advisory (Unix) or mandatory (Windows)
// lock on a dedicated lock file.
type fileLock struct {
	// file is the lock file handle.
	file *os.File

	// timeout is the maximum duration to wait for lock acquisition.
	timeout time.Duration

	// locked tracks whether the lock is currently held.
	locked bool
}

// Ensure fileLock implements Locker.
var _ Locker = (*fileLock)(nil)

// newFileLock creates a new file lock for the given path.
// Creates the lock file if it doesn't exist.
func newFileLock(path string, timeout time.Duration) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	return &fileLock{
		file:    file,
		timeout: timeout,
	}, nil
}

// Lock acquires the lock, polling with backoff until the timeout expires.
func (l *fileLock) Lock() error {
	if l.locked {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("lock file already closed")
	}

	deadline := time.Now().Add(l.timeout)
	sleepDuration := 10 * time.Millisecond

	for {
		if err := tryLockFile(l.file); err == nil {
			l.locked = true
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("lock timeout after %v", l.timeout)
		}

		time.Sleep(sleepDuration)
		if sleepDuration < 100*time.Millisecond {
			sleepDuration *= 2
		}
	}
}

// Unlock releases the lock and closes the file handle.
func (l *fileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	var unlockErr error
	if l.locked {
		unlockErr = unlockFile(l.file)
		l.locked = false
	}
	l.file.Close()
	l.file = nil

	return unlockErr
}
