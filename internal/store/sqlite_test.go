package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/clawteam/internal/errors"
)

func TestSQLiteBackend(t *testing.T) {
	backend, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	ctx := context.Background()

	_, err = backend.Read(ctx, "alpha", DocTeam)
	assert.ErrorIs(t, err, ErrNoDocument)

	ok, err := backend.Exists(ctx, "alpha", DocTeam)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Write(ctx, "alpha", DocTeam, []byte(`{"name":"alpha"}`)))
	require.NoError(t, backend.Write(ctx, "alpha", DocTeam, []byte(`{"name":"alpha","status":"closed"}`)))
	require.NoError(t, backend.Write(ctx, "bravo", DocTasks, []byte(`{"tasks":[]}`)))

	data, err := backend.Read(ctx, "alpha", DocTeam)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"alpha","status":"closed"}`, string(data))

	ok, err = backend.Exists(ctx, "alpha", DocTeam)
	require.NoError(t, err)
	assert.True(t, ok)

	teams, err := backend.Teams(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo"}, teams)
}

func TestSQLiteBackend_WithStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "clawteam.db")
	backend, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	st := New(backend, NewMutexLocker(), nil)
	ctx := context.Background()

	err = st.Update(ctx, "alpha", func(tx *Tx) error {
		return tx.Save(DocTasks, &counterDoc{Count: 7})
	})
	require.NoError(t, err)

	var doc counterDoc
	found, err := st.Load(ctx, "alpha", DocTasks, &doc)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, doc.Count)

	require.NoError(t, backend.Write(ctx, "alpha", DocMessages, []byte("{broken")))
	found, err = st.Load(ctx, "alpha", DocMessages, &doc)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteBackend_UpdateIsAtomic(t *testing.T) {
	backend, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	st := New(backend, NewMutexLocker(), nil)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, "alpha", DocTeam, []byte(`{"count":1}`)))
	require.NoError(t, backend.Write(ctx, "alpha", DocTasks, []byte(`{"count":5}`)))

	// Any write to the team document now fails.
	_, err = backend.db.Exec(`
		CREATE TRIGGER reject_team_insert BEFORE INSERT ON documents WHEN NEW.kind = 'team'
		BEGIN SELECT RAISE(ABORT, 'team document is read-only'); END;
		CREATE TRIGGER reject_team_update BEFORE UPDATE ON documents WHEN NEW.kind = 'team'
		BEGIN SELECT RAISE(ABORT, 'team document is read-only'); END;`)
	require.NoError(t, err)

	err = st.Update(ctx, "alpha", func(tx *Tx) error {
		if err := tx.Save(DocTasks, &counterDoc{Count: 0}); err != nil {
			return err
		}
		return tx.Save(DocTeam, &counterDoc{Count: 2})
	})
	require.Error(t, err)
	assert.Equal(t, errors.KindIOFailure, errors.KindOf(err))

	data, err := backend.Read(ctx, "alpha", DocTasks)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":5}`, string(data), "tasks document changed by a failed update")
}
