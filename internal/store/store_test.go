package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/clawteam/internal/errors"
)

type counterDoc struct {
	Count int      `json:"count"`
	Seen  []string `json:"seen"`
}

func newMemStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return New(NewFileBackend(fs, "/teams"), NewMutexLocker(), nil), fs
}

func TestCheckTeamName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"alpha", false},
		{"team-42_b", false},
		{"Équipe", false},
		{"", true},
		{"   ", true},
		{"a/b", true},
		{`a\b`, true},
		{"..", true},
		{".locks", true},
		{"bad\nname", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.name), func(t *testing.T) {
			err := CheckTeamName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckTeamName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && errors.KindOf(err) != errors.KindInvalidInput {
				t.Errorf("KindOf() = %q, want %q", errors.KindOf(err), errors.KindInvalidInput)
			}
		})
	}
}

func TestStore_LoadMissing(t *testing.T) {
	st, _ := newMemStore(t)

	var doc counterDoc
	found, err := st.Load(context.Background(), "alpha", DocTasks, &doc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("Load() found = true for a missing document")
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	st, fs := newMemStore(t)
	ctx := context.Background()

	in := counterDoc{Count: 3, Seen: []string{"a", "b"}}
	if err := st.Save(ctx, "alpha", DocTasks, &in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := afero.ReadFile(fs, "/teams/alpha/tasks.json")
	if err != nil {
		t.Fatalf("document not written at expected path: %v", err)
	}
	if !json.Valid(raw) {
		t.Errorf("document is not valid JSON: %s", raw)
	}

	var out counterDoc
	found, err := st.Load(ctx, "alpha", DocTasks, &out)
	if err != nil || !found {
		t.Fatalf("Load() = %v, %v", found, err)
	}
	if out.Count != 3 || len(out.Seen) != 2 {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}

	// Saving what was loaded leaves the bytes unchanged.
	if err := st.Save(ctx, "alpha", DocTasks, &out); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, _ := afero.ReadFile(fs, "/teams/alpha/tasks.json")
	if string(again) != string(raw) {
		t.Errorf("re-saved document differs:\n%s\nvs\n%s", again, raw)
	}
}

func TestStore_MalformedLoadsAsEmpty(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"count": 4, "seen": [`},
		{"wrong type", `{"count": "four", "seen": ["x"]}`},
		{"not json", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, fs := newMemStore(t)
			if err := afero.WriteFile(fs, "/teams/alpha/tasks.json", []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}

			doc := counterDoc{Count: 99}
			found, err := st.Load(context.Background(), "alpha", DocTasks, &doc)
			if err != nil {
				t.Fatalf("Load() error = %v, want nil", err)
			}
			if found {
				t.Error("Load() found = true for malformed document")
			}
			if doc.Count != 0 || doc.Seen != nil {
				t.Errorf("malformed document left value %+v, want zero", doc)
			}
		})
	}
}

func TestStore_RejectsBadTeamName(t *testing.T) {
	st, _ := newMemStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, "../escape", DocTeam, &counterDoc{}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Save() error = %v, want ErrInvalidInput", err)
	}
	if _, err := st.Load(ctx, "a/b", DocTeam, &counterDoc{}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Load() error = %v, want ErrInvalidInput", err)
	}
	err := st.Update(ctx, "", func(tx *Tx) error { return nil })
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Update() error = %v, want ErrInvalidInput", err)
	}
}

func TestStore_UpdateCommitsInOrder(t *testing.T) {
	st, fs := newMemStore(t)
	ctx := context.Background()

	err := st.Update(ctx, "alpha", func(tx *Tx) error {
		if tx.Team() != "alpha" {
			t.Errorf("Team() = %q, want alpha", tx.Team())
		}
		if err := tx.Save(DocTasks, &counterDoc{Count: 1}); err != nil {
			return err
		}
		// Staged saves are visible inside the transaction.
		var staged counterDoc
		found, err := tx.Load(DocTasks, &staged)
		if err != nil || !found || staged.Count != 1 {
			t.Errorf("tx.Load() = %+v, %v, %v", staged, found, err)
		}
		// Nothing reaches the backend before commit.
		if ok, _ := afero.Exists(fs, "/teams/alpha/tasks.json"); ok {
			t.Error("document written before commit")
		}
		return tx.Save(DocTeam, &counterDoc{Count: 2})
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	for _, doc := range []Doc{DocTasks, DocTeam} {
		ok, err := st.Exists(ctx, "alpha", doc)
		if err != nil || !ok {
			t.Errorf("Exists(%s) = %v, %v", doc, ok, err)
		}
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	st, _ := newMemStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, "alpha", DocTasks, &counterDoc{Count: 1}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := st.Update(ctx, "alpha", func(tx *Tx) error {
		if err := tx.Save(DocTasks, &counterDoc{Count: 2}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	var doc counterDoc
	if _, err := st.Load(ctx, "alpha", DocTasks, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Count != 1 {
		t.Errorf("Count = %d after failed update, want 1", doc.Count)
	}
}

func TestStore_ConcurrentUpdatesSerialize(t *testing.T) {
	tests := []struct {
		name  string
		store func(t *testing.T) *Store
	}{
		{
			name: "mutex locker on memory fs",
			store: func(t *testing.T) *Store {
				st, _ := newMemStore(t)
				return st
			},
		},
		{
			name: "flock locker on os fs",
			store: func(t *testing.T) *Store {
				root := t.TempDir()
				return New(NewFileBackend(afero.NewOsFs(), root), NewFlockLocker(root, 10*time.Second), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.store(t)
			ctx := context.Background()

			const workers = 20
			var wg conc.WaitGroup
			for i := range workers {
				wg.Go(func() {
					err := st.Update(ctx, "alpha", func(tx *Tx) error {
						var doc counterDoc
						if _, err := tx.Load(DocTasks, &doc); err != nil {
							return err
						}
						doc.Count++
						doc.Seen = append(doc.Seen, fmt.Sprintf("w%d", i))
						return tx.Save(DocTasks, &doc)
					})
					if err != nil {
						t.Errorf("Update() error = %v", err)
					}
				})
			}
			wg.Wait()

			var doc counterDoc
			if _, err := st.Load(ctx, "alpha", DocTasks, &doc); err != nil {
				t.Fatal(err)
			}
			if doc.Count != workers || len(doc.Seen) != workers {
				t.Errorf("Count = %d, Seen = %d, want %d (lost updates)", doc.Count, len(doc.Seen), workers)
			}
		})
	}
}

func TestStore_Teams(t *testing.T) {
	st, fs := newMemStore(t)
	ctx := context.Background()

	teams, err := st.Teams(ctx)
	if err != nil || len(teams) != 0 {
		t.Fatalf("Teams() on empty root = %v, %v", teams, err)
	}

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		if err := st.Save(ctx, name, DocTeam, &counterDoc{}); err != nil {
			t.Fatal(err)
		}
	}
	_ = fs.MkdirAll(filepath.Join("/teams", locksDirName), 0755)
	_ = afero.WriteFile(fs, "/teams/clawteam.log", []byte("{}"), 0644)

	teams, err = st.Teams(ctx)
	if err != nil {
		t.Fatalf("Teams() error = %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	if fmt.Sprint(teams) != fmt.Sprint(want) {
		t.Errorf("Teams() = %v, want %v", teams, want)
	}
}
