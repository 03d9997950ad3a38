package store

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/logging"
)

// Store reads and writes team documents as JSON through a Backend and
// serialises read-modify-write cycles with a Locker.
type Store struct {
	backend Backend
	locker  Locker
	logger  *logging.Logger
}

// New creates a Store. A nil logger discards warnings.
func New(backend Backend, locker Locker, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{
		backend: backend,
		locker:  locker,
		logger:  logger,
	}
}

// Load decodes the document into v. It reports found=false, leaving v at its
// zero value, when the document is missing or is not valid JSON. Malformed
// documents are logged and otherwise treated as absent.
func (s *Store) Load(ctx context.Context, team string, doc Doc, v any) (bool, error) {
	if err := CheckTeamName(team); err != nil {
		return false, err
	}

	data, err := s.backend.Read(ctx, team, doc)
	if errors.Is(err, ErrNoDocument) {
		return false, nil
	}
	if err != nil {
		return false, errors.IOFailure(err, "load %s/%s", team, doc.FileName())
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("malformed document treated as empty",
			"team", team,
			"doc", doc.FileName(),
			"error", err.Error(),
		)
		resetValue(v)
		return false, nil
	}
	return true, nil
}

// Save encodes v as indented JSON and replaces the document.
func (s *Store) Save(ctx context.Context, team string, doc Doc, v any) error {
	if err := CheckTeamName(team); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, team, doc, data); err != nil {
		return errors.IOFailure(err, "save %s/%s", team, doc.FileName())
	}
	return nil
}

// Exists reports whether the document has been written.
func (s *Store) Exists(ctx context.Context, team string, doc Doc) (bool, error) {
	if err := CheckTeamName(team); err != nil {
		return false, err
	}
	ok, err := s.backend.Exists(ctx, team, doc)
	if err != nil {
		return false, errors.IOFailure(err, "stat %s/%s", team, doc.FileName())
	}
	return ok, nil
}

// Teams lists every team key known to the backend.
func (s *Store) Teams(ctx context.Context) ([]string, error) {
	teams, err := s.backend.Teams(ctx)
	if err != nil {
		return nil, errors.IOFailure(err, "list teams")
	}
	return teams, nil
}

// Update runs fn while holding the team lock. Documents saved through the
// Tx are written only if fn returns nil. A backend implementing BatchWriter
// commits them all or none. Other backends write them one by one in the
// order they were first saved, so a failed write leaves the earlier
// documents replaced.
func (s *Store) Update(ctx context.Context, team string, fn func(*Tx) error) error {
	if err := CheckTeamName(team); err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, team)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			s.logger.Warn("failed to release team lock", "team", team, "error", uerr.Error())
		}
	}()

	tx := &Tx{store: s, ctx: ctx, team: team, pending: make(map[Doc][]byte)}
	if err := fn(tx); err != nil {
		return err
	}

	return s.commit(ctx, tx)
}

func (s *Store) commit(ctx context.Context, tx *Tx) error {
	if bw, ok := s.backend.(BatchWriter); ok && len(tx.order) > 0 {
		entries := make([]Entry, 0, len(tx.order))
		for _, doc := range tx.order {
			entries = append(entries, Entry{Doc: doc, Data: tx.pending[doc]})
		}
		if err := bw.WriteBatch(ctx, tx.team, entries); err != nil {
			return errors.IOFailure(err, "save %s", tx.team)
		}
		return nil
	}

	for _, doc := range tx.order {
		if err := s.backend.Write(ctx, tx.team, doc, tx.pending[doc]); err != nil {
			return errors.IOFailure(err, "save %s/%s", tx.team, doc.FileName())
		}
	}
	return nil
}

// Tx is the view of a team's documents inside Store.Update.
type Tx struct {
	store   *Store
	ctx     context.Context
	team    string
	pending map[Doc][]byte
	order   []Doc
}

// Team returns the team the transaction is scoped to.
func (tx *Tx) Team() string {
	return tx.team
}

// Load decodes a document, seeing earlier saves from the same transaction.
func (tx *Tx) Load(doc Doc, v any) (bool, error) {
	if data, ok := tx.pending[doc]; ok {
		return true, json.Unmarshal(data, v)
	}
	return tx.store.Load(tx.ctx, tx.team, doc, v)
}

// Save stages a document to be written when the transaction commits.
func (tx *Tx) Save(doc Doc, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	if _, ok := tx.pending[doc]; !ok {
		tx.order = append(tx.order, doc)
	}
	tx.pending[doc] = data
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return data, nil
}

// resetValue zeroes the value v points to after a partial decode.
func resetValue(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv.Elem().SetZero()
	}
}
