// Package lock serializes mutating runs against one repository with an
// advisory file lock. A second invocation fails fast instead of
// interleaving filesystem mutations with the first; dry runs never
// take the lock.
package lock

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/logging"
)

// Locker hands out exclusive run locks.
type Locker interface {
	Acquire() (Release, error)
}

// Release frees an acquired lock. It must run on every exit path,
// including failures.
type Release func() error

// FileLocker implements Locker with flock on a per-repository file.
type FileLocker struct {
	path   string
	logger zerolog.Logger
}

// New creates a locker for the given lock file path, normally
// Paths.LockPath().
func New(path string) *FileLocker {
	return &FileLocker{
		path:   path,
		logger: logging.GetLogger("lock"),
	}
}

// Acquire takes the exclusive lock, failing fast with ErrLockHeld when
// another invocation holds it. The file records the holder's pid and
// start time for postmortems; the flock itself is the exclusion. The
// file persists after release — a leftover from a crashed run carries
// no lock, so it never blocks the next invocation.
func (l *FileLocker) Acquire() (Release, error) {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLockAcquire, "opening lock file %s", l.path)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		if err == unix.EWOULDBLOCK {
			return nil, errors.Newf(errors.ErrLockHeld,
				"another dotfold run holds the lock at %s", l.path)
		}
		return nil, errors.Wrapf(err, errors.ErrLockAcquire, "locking %s", l.path)
	}

	_ = file.Truncate(0)
	_, _ = fmt.Fprintf(file, "pid=%d\nstarted=%s\n", os.Getpid(), time.Now().Format(time.RFC3339))

	l.logger.Debug().Str("path", l.path).Msg("lock acquired")

	return func() error {
		defer func() { _ = file.Close() }()
		if err := unix.Flock(int(file.Fd()), unix.LOCK_UN); err != nil {
			return errors.Wrapf(err, errors.ErrLockAcquire, "unlocking %s", l.path)
		}
		l.logger.Debug().Str("path", l.path).Msg("lock released")
		return nil
	}, nil
}

// Nop is a Locker that always succeeds without locking anything.
type Nop struct{}

// Acquire implements Locker.
func (Nop) Acquire() (Release, error) {
	return func() error { return nil }, nil
}
