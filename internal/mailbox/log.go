package mailbox

import (
	"context"
	"slices"
	"time"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/logging"
	"github.com/Iron-Ham/clawteam/internal/store"
	"github.com/Iron-Ham/clawteam/internal/validate"
)

const defaultPollInterval = 500 * time.Millisecond

// Log appends to and reads team message logs.
type Log struct {
	store        *store.Store
	logger       *logging.Logger
	now          func() time.Time
	pollInterval time.Duration
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(lg *Log) {
		if l != nil {
			lg.logger = l
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(lg *Log) {
		lg.now = now
	}
}

// WithPollInterval sets how often Watch re-reads the log. Zero or negative
// values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(lg *Log) {
		if d > 0 {
			lg.pollInterval = d
		}
	}
}

// New creates a Log backed by st.
func New(st *store.Store, opts ...Option) *Log {
	lg := &Log{
		store:        st,
		logger:       logging.NopLogger(),
		now:          time.Now,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

type teamRef struct {
	Name string `json:"name"`
}

// Send appends an unread message with a fresh id and the current time.
// The team must have a definition.
func (l *Log) Send(ctx context.Context, team string, req SendRequest) (*Message, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}

	var msg Message
	err := l.store.Update(ctx, team, func(tx *store.Tx) error {
		var ref teamRef
		found, err := tx.Load(store.DocTeam, &ref)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewCoordinationError("send message", errors.ErrTeamNotFound).WithTeam(team)
		}

		var doc document
		if _, err := tx.Load(store.DocMessages, &doc); err != nil {
			return err
		}

		msg = Message{
			ID:        uniqueID(doc.Messages),
			From:      req.From,
			To:        req.To,
			Body:      req.Body,
			Timestamp: l.now().UTC(),
		}
		doc.Messages = append(doc.Messages, msg)
		return tx.Save(store.DocMessages, &doc)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("message sent", "team", team, "message", msg.ID, "from", msg.From, "to", msg.To)
	return &msg, nil
}

func uniqueID(existing []Message) string {
	for {
		id := newID()
		if !slices.ContainsFunc(existing, func(m Message) bool { return m.ID == id }) {
			return id
		}
	}
}

// List returns the team's messages in append order, narrowed by f.
func (l *Log) List(ctx context.Context, team string, f Filter) ([]Message, error) {
	var doc document
	if _, err := l.store.Load(ctx, team, store.DocMessages, &doc); err != nil {
		return nil, err
	}
	return f.apply(doc.Messages), nil
}

// MarkRead sets the read flag on the given messages and returns them once
// each, in the order first named. If
// any id is unknown nothing is written and the error wraps
// errors.ErrMessageNotFound.
func (l *Log) MarkRead(ctx context.Context, team string, ids ...string) ([]Message, error) {
	if len(ids) == 0 {
		return nil, errors.NewValidationError("id", ids, "at least one message id is required")
	}

	var marked []Message
	err := l.store.Update(ctx, team, func(tx *store.Tx) error {
		var doc document
		if _, err := tx.Load(store.DocMessages, &doc); err != nil {
			return err
		}

		marked = marked[:0]
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			i := slices.IndexFunc(doc.Messages, func(m Message) bool { return m.ID == id })
			if i < 0 {
				return errors.NewCoordinationError("mark read", errors.Wrapf(errors.ErrMessageNotFound, "message %s", id)).WithTeam(team)
			}
			doc.Messages[i].Read = true
			marked = append(marked, doc.Messages[i])
		}
		return tx.Save(store.DocMessages, &doc)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("messages marked read", "team", team, "count", len(marked))
	return marked, nil
}
