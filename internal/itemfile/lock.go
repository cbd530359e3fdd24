package itemfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when the item file lock cannot be acquired in time.
var ErrLocked = errors.New("item file is locked by another fifoq process")

const lockRetryDelay = 25 * time.Millisecond

// LockPath returns the sidecar lock file guarding path.
func LockPath(path string) string {
	return path + ".lock"
}

// FileLock is a held advisory lock on an item file.
type FileLock struct {
	lock *flock.Flock
}

// Lock acquires the advisory lock for path, waiting up to timeout. A zero
// timeout makes a single attempt.
func Lock(ctx context.Context, path string, timeout time.Duration, exclusive bool) (*FileLock, error) {
	lockPath := LockPath(path)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(lockPath)

	var (
		ok  bool
		err error
	)
	if timeout <= 0 {
		if exclusive {
			ok, err = fl.TryLock()
		} else {
			ok, err = fl.TryRLock()
		}
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if exclusive {
			ok, err = fl.TryLockContext(lockCtx, lockRetryDelay)
		} else {
			ok, err = fl.TryRLockContext(lockCtx, lockRetryDelay)
		}
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, lockPath)
	}
	return &FileLock{lock: fl}, nil
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *FileLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
