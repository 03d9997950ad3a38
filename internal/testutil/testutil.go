// Package testutil provides testing utilities for clawteam tests.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/clawteam/internal/store"
)

// Epoch is the default start time of a Clock.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Clock is a deterministic clock that advances one second on every call to
// Now, so successive timestamps are strictly increasing.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock creates a Clock whose first reading is one second after start.
func NewClock(start time.Time) *Clock {
	return &Clock{t: start}
}

// Now advances the clock and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// MemStore creates a store over an in-memory filesystem rooted at /teams,
// serialised with a MutexLocker.
func MemStore(t *testing.T) (*store.Store, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	return store.New(store.NewFileBackend(fs, "/teams"), store.NewMutexLocker(), nil), fs
}

// DiskStore creates a store over a temporary directory, serialised with
// flock. Returns the store and its root.
func DiskStore(t *testing.T) (*store.Store, string) {
	t.Helper()

	root := t.TempDir()
	backend := store.NewFileBackend(afero.NewOsFs(), root)
	return store.New(backend, store.NewFlockLocker(root, 10*time.Second), nil), root
}

// SeedTeam writes a minimal active team definition without touching the
// task board or message log.
func SeedTeam(t *testing.T, st *store.Store, name string, createdAt time.Time) {
	t.Helper()

	doc := struct {
		Name      string    `json:"name"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	}{name, "active", createdAt}
	if err := st.Save(context.Background(), name, store.DocTeam, &doc); err != nil {
		t.Fatalf("failed to seed team %s: %v", name, err)
	}
}

// ReadFile returns a file's contents, or "" if it does not exist.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// RedisAddr returns the address of a Redis server for integration tests,
// or skips the test when CLAWTEAM_TEST_REDIS_ADDR is unset.
func RedisAddr(t *testing.T) string {
	t.Helper()

	addr := os.Getenv("CLAWTEAM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLAWTEAM_TEST_REDIS_ADDR not set, skipping test")
	}
	return addr
}
