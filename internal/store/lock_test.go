package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Iron-Ham/clawteam/internal/errors"
)

func TestFlockLocker_LockUnlock(t *testing.T) {
	root := t.TempDir()
	locker := NewFlockLocker(root, time.Second)

	unlock, err := locker.Lock(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if _, err := os.Stat(locker.LockPath("alpha")); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	if err := unlock(); err != nil {
		t.Errorf("unlock() error = %v", err)
	}

	// Re-acquirable after release.
	unlock, err = locker.Lock(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("second Lock() error = %v", err)
	}
	_ = unlock()
}

func TestFlockLocker_Timeout(t *testing.T) {
	root := t.TempDir()
	holder := NewFlockLocker(root, time.Second)
	waiter := NewFlockLocker(root, 100*time.Millisecond)

	unlock, err := holder.Lock(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer func() { _ = unlock() }()

	start := time.Now()
	_, err = waiter.Lock(context.Background(), "alpha")
	if !errors.Is(err, errors.ErrLockTimeout) {
		t.Fatalf("Lock() error = %v, want ErrLockTimeout", err)
	}
	if errors.KindOf(err) != errors.KindIOFailure {
		t.Errorf("KindOf() = %q, want %q", errors.KindOf(err), errors.KindIOFailure)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Lock() returned after %v, before the timeout", elapsed)
	}

	// Other teams are unaffected.
	other, err := waiter.Lock(context.Background(), "bravo")
	if err != nil {
		t.Fatalf("Lock(bravo) error = %v", err)
	}
	_ = other()
}

func TestFlockLocker_ContextCancel(t *testing.T) {
	root := t.TempDir()
	locker := NewFlockLocker(root, 0)

	unlock, err := locker.Lock(context.Background(), "alpha")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = unlock() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locker.Lock(ctx, "alpha"); !errors.Is(err, context.Canceled) {
		t.Errorf("Lock() error = %v, want context.Canceled", err)
	}
}

func TestMutexLocker(t *testing.T) {
	locker := NewMutexLocker()

	unlock, err := locker.Lock(context.Background(), "alpha")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "alpha"); !errors.Is(err, errors.ErrLockTimeout) {
		t.Errorf("Lock() while held error = %v, want ErrLockTimeout", err)
	}

	other, err := locker.Lock(context.Background(), "bravo")
	if err != nil {
		t.Fatalf("Lock(bravo) error = %v", err)
	}
	_ = other()

	_ = unlock()
	_ = unlock() // second call is a no-op

	again, err := locker.Lock(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}
	_ = again()
}
