package team

import (
	"context"
	"maps"
	"strings"
	"time"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/logging"
	"github.com/Iron-Ham/clawteam/internal/store"
	"github.com/Iron-Ham/clawteam/internal/validate"
)

// Registry reads and writes team definitions.
type Registry struct {
	store    *store.Store
	defaults Defaults
	logger   *logging.Logger
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a Registry backed by st.
func NewRegistry(st *store.Store, defaults Defaults, opts ...Option) *Registry {
	r := &Registry{
		store:    st,
		defaults: defaults,
		logger:   logging.NopLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// emptyBoard and emptyLog are the documents a fresh team starts with.
type emptyBoard struct {
	Tasks []struct{} `json:"tasks"`
}

type emptyLog struct {
	Messages []struct{} `json:"messages"`
}

// Create writes a new active team and resets its task board and message
// log. It fails with errors.ErrAlreadyActive when an active team with the
// same name exists.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (*Team, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}

	agents, lead := Roster(req.Agents, req.Lead, r.defaults)
	if len(agents) == 0 {
		return nil, errors.NewValidationError("agents", req.Agents, "team needs at least one agent")
	}

	t := &Team{
		Name:      req.Name,
		Status:    StatusActive,
		CreatedAt: r.now().UTC(),
		GroupRef:  strings.TrimSpace(req.GroupRef),
		RepoPath:  req.RepoPath,
		Agents:    agents,
		Lead:      lead,
		TopicMap:  map[string]int{},
	}

	err := r.store.Update(ctx, req.Name, func(tx *store.Tx) error {
		var existing Team
		found, err := tx.Load(store.DocTeam, &existing)
		if err != nil {
			return err
		}
		if found && existing.IsActive() {
			return errors.NewCoordinationError("create team", errors.ErrAlreadyActive).WithTeam(req.Name)
		}

		// The team document goes last so a team never exists without its
		// board and log.
		if err := tx.Save(store.DocTasks, &emptyBoard{Tasks: []struct{}{}}); err != nil {
			return err
		}
		if err := tx.Save(store.DocMessages, &emptyLog{Messages: []struct{}{}}); err != nil {
			return err
		}
		return tx.Save(store.DocTeam, t)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("team created", "team", t.Name, "agents", len(t.Agents), "lead", t.Lead)
	return t, nil
}

// Get returns the named team or errors.ErrTeamNotFound.
func (r *Registry) Get(ctx context.Context, name string) (*Team, error) {
	var t Team
	found, err := r.store.Load(ctx, name, store.DocTeam, &t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewCoordinationError("get team", errors.ErrTeamNotFound).WithTeam(name)
	}
	return &t, nil
}

// Exists reports whether the named team has a definition.
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	return r.store.Exists(ctx, name, store.DocTeam)
}

// List returns every team in lexicographic order regardless of status.
// Directories without a readable team document are skipped.
func (r *Registry) List(ctx context.Context) ([]*Team, error) {
	names, err := r.store.Teams(ctx)
	if err != nil {
		return nil, err
	}

	teams := make([]*Team, 0, len(names))
	for _, name := range names {
		if store.CheckTeamName(name) != nil {
			continue
		}
		var t Team
		found, err := r.store.Load(ctx, name, store.DocTeam, &t)
		if err != nil {
			return nil, err
		}
		if !found {
			r.logger.Debug("skipping team without definition", "team", name)
			continue
		}
		teams = append(teams, &t)
	}
	return teams, nil
}

// Close marks the team closed and stamps closed_at. Closing a closed team
// succeeds and refreshes the stamp.
func (r *Registry) Close(ctx context.Context, name string) (*Team, error) {
	var closed Team
	err := r.store.Update(ctx, name, func(tx *store.Tx) error {
		found, err := tx.Load(store.DocTeam, &closed)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewCoordinationError("close team", errors.ErrTeamNotFound).WithTeam(name)
		}

		now := r.now().UTC()
		closed.Status = StatusClosed
		closed.ClosedAt = &now
		return tx.Save(store.DocTeam, &closed)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("team closed", "team", name)
	return &closed, nil
}

// SetRouting records the chat group and merges topic ids into the team's
// topic map. Existing topics not named in req are kept unless req.Replace
// is set.
func (r *Registry) SetRouting(ctx context.Context, name string, req RoutingRequest) (*Team, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}

	var t Team
	err := r.store.Update(ctx, name, func(tx *store.Tx) error {
		found, err := tx.Load(store.DocTeam, &t)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewCoordinationError("set routing", errors.ErrTeamNotFound).WithTeam(name)
		}

		if ref := strings.TrimSpace(req.GroupRef); ref != "" {
			t.GroupRef = ref
		}
		if t.TopicMap == nil || req.Replace {
			t.TopicMap = map[string]int{}
		}
		maps.Copy(t.TopicMap, positiveTopics(req.Topics))
		return tx.Save(store.DocTeam, &t)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("team routing updated", "team", name, "topics", len(t.TopicMap))
	return &t, nil
}

func positiveTopics(topics map[string]int) map[string]int {
	out := make(map[string]int, len(topics))
	for name, id := range topics {
		name = strings.TrimSpace(name)
		if name == "" || id <= 0 {
			continue
		}
		out[name] = id
	}
	return out
}
