package fileutil

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the target lock.
var ErrLocked = errors.New("target is locked by another process")

// TargetLock guards one output path with an advisory lock on a hidden
// .<name>.lock file beside it. The lock file is left in place on release: an
// unlinked lock file could be held by one process while another locks its
// replacement.
type TargetLock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for target.
func LockPath(target string) string {
	return filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".lock")
}

// LockTarget acquires a non-blocking exclusive lock for target.
func LockTarget(target string) (*TargetLock, error) {
	lockPath := LockPath(target)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	return &TargetLock{path: lockPath, lock: lock}, nil
}

// Path returns the lock file path.
func (l *TargetLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks the target.
func (l *TargetLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
