package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Iron-Ham/clawteam/internal/errors"
)

// locksDirName is the directory under the teams root holding lock files.
// It is dot-prefixed so team listing skips it.
const locksDirName = ".locks"

// defaultPollInterval is how often a blocked FlockLocker retries.
const defaultPollInterval = 25 * time.Millisecond

// Locker serialises read-modify-write cycles on a single team.
// The returned unlock function must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, team string) (unlock func() error, err error)
}

// -----------------------------------------------------------------------------
// FlockLocker
// -----------------------------------------------------------------------------

// FlockLocker provides cross-process mutual exclusion per team using flock(2)
// on <root>/.locks/<team>.lock. The lock lives outside the team directory so
// that creating a team can be serialised before its directory exists.
type FlockLocker struct {
	dir          string
	timeout      time.Duration
	pollInterval time.Duration
}

// NewFlockLocker creates a FlockLocker for the teams root. A zero timeout
// waits until ctx is done.
func NewFlockLocker(root string, timeout time.Duration) *FlockLocker {
	return &FlockLocker{
		dir:          filepath.Join(root, locksDirName),
		timeout:      timeout,
		pollInterval: defaultPollInterval,
	}
}

// LockPath returns the lock file used for team.
func (l *FlockLocker) LockPath(team string) string {
	return filepath.Join(l.dir, team+".lock")
}

// Lock acquires an exclusive lock on team, polling with LOCK_NB until it is
// acquired, ctx is done, or the timeout elapses. Timeouts return
// errors.ErrLockTimeout.
func (l *FlockLocker) Lock(ctx context.Context, team string) (func() error, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, errors.IOFailure(err, "create lock directory")
	}

	f, err := os.OpenFile(l.LockPath(team), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.IOFailure(err, "open lock file")
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return func() error { return unlockFile(f) }, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			return nil, errors.IOFailure(err, "flock %s", team)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("lock team %s: %w", team, errors.Join(errors.ErrLockTimeout, ctx.Err()))
		case <-ticker.C:
		}
	}
}

func unlockFile(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("funlock: %w", err)
	}
	return f.Close()
}

// -----------------------------------------------------------------------------
// MutexLocker
// -----------------------------------------------------------------------------

// MutexLocker serialises access per team within a single process. It is used
// with in-memory filesystems and in tests.
type MutexLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMutexLocker creates an empty MutexLocker.
func NewMutexLocker() *MutexLocker {
	return &MutexLocker{slots: make(map[string]chan struct{})}
}

func (l *MutexLocker) slot(team string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[team]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[team] = ch
	}
	return ch
}

// Lock blocks until team is free or ctx is done.
func (l *MutexLocker) Lock(ctx context.Context, team string) (func() error, error) {
	ch := l.slot(team)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() error {
			once.Do(func() { <-ch })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock team %s: %w", team, errors.Join(errors.ErrLockTimeout, ctx.Err()))
	}
}
