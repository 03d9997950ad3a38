package taskboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/logging"
	"github.com/Iron-Ham/clawteam/internal/store"
	"github.com/Iron-Ham/clawteam/internal/validate"
)

// Board reads and mutates team task boards.
type Board struct {
	store  *store.Store
	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// New creates a Board backed by st.
func New(st *store.Store, opts ...Option) *Board {
	b := &Board{
		store:  st,
		logger: logging.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// teamRef is the part of team.json the board needs to confirm the team exists.
type teamRef struct {
	Name string `json:"name"`
}

func requireTeam(tx *store.Tx, op string) error {
	var ref teamRef
	found, err := tx.Load(store.DocTeam, &ref)
	if err != nil {
		return err
	}
	if !found {
		return errors.NewCoordinationError(op, errors.ErrTeamNotFound).WithTeam(tx.Team())
	}
	return nil
}

// Add appends a todo task with the next free id. The team must have a
// definition. Dependencies are stored as given.
func (b *Board) Add(ctx context.Context, team string, req AddRequest) (*Task, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}

	assignee := strings.TrimSpace(req.AssignTo)
	if assignee == "" {
		assignee = Unassigned
	}
	deps := req.DependsOn
	if deps == nil {
		deps = []string{}
	}

	var task Task
	err := b.store.Update(ctx, team, func(tx *store.Tx) error {
		if err := requireTeam(tx, "add task"); err != nil {
			return err
		}

		var doc document
		if _, err := tx.Load(store.DocTasks, &doc); err != nil {
			return err
		}

		now := b.now().UTC()
		task = Task{
			ID:         NextID(doc.Tasks),
			Title:      req.Title,
			AssignedTo: assignee,
			Status:     StatusTodo,
			CreatedAt:  now,
			UpdatedAt:  now,
			DependsOn:  deps,
		}
		doc.Tasks = append(doc.Tasks, task)
		return tx.Save(store.DocTasks, &doc)
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("task added", "team", team, "task", task.ID, "assigned_to", task.AssignedTo)
	return &task, nil
}

type claimRequest struct {
	Agent string `json:"agent" validate:"notblank,max=128"`
}

// Claim assigns the task to agent. A todo task moves to in_progress; any
// other status is kept.
func (b *Board) Claim(ctx context.Context, team, id, agent string) (*Task, error) {
	if err := validate.Struct(&claimRequest{Agent: agent}); err != nil {
		return nil, err
	}

	return b.mutate(ctx, team, id, "claim task", func(t *Task) error {
		t.AssignedTo = strings.TrimSpace(agent)
		if t.Status == StatusTodo {
			t.Status = StatusInProgress
		}
		return nil
	})
}

// Update sets the status and notes of a task. Any valid status may follow
// any other. An invalid status fails with errors.ErrInvalidStatus and
// nothing is written.
func (b *Board) Update(ctx context.Context, team, id string, req UpdateRequest) (*Task, error) {
	if req.Status != "" && !req.Status.IsValid() {
		cause := fmt.Errorf("%w: %q (valid: %s)", errors.ErrInvalidStatus, req.Status, validStatusList())
		return nil, errors.NewCoordinationError("update task", cause).WithTeam(team).WithTask(id)
	}

	return b.mutate(ctx, team, id, "update task", func(t *Task) error {
		if req.Status != "" {
			t.Status = req.Status
		}
		if req.Notes != "" {
			t.Notes = req.Notes
		}
		return nil
	})
}

// mutate applies fn to one task under the team lock and refreshes
// updated_at. Unknown ids fail with errors.ErrTaskNotFound.
func (b *Board) mutate(ctx context.Context, team, id, op string, fn func(*Task) error) (*Task, error) {
	var task Task
	err := b.store.Update(ctx, team, func(tx *store.Tx) error {
		if err := requireTeam(tx, op); err != nil {
			return err
		}

		var doc document
		if _, err := tx.Load(store.DocTasks, &doc); err != nil {
			return err
		}
		i := doc.find(id)
		if i < 0 {
			return errors.NewCoordinationError(op, errors.ErrTaskNotFound).WithTeam(team).WithTask(id)
		}

		if err := fn(&doc.Tasks[i]); err != nil {
			return err
		}
		doc.Tasks[i].UpdatedAt = b.now().UTC()
		task = doc.Tasks[i]
		return tx.Save(store.DocTasks, &doc)
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info(op, "team", team, "task", task.ID, "status", task.Status.String(), "assigned_to", task.AssignedTo)
	return &task, nil
}

// List returns the team's tasks in creation order. A team without a task
// board has no tasks.
func (b *Board) List(ctx context.Context, team string) ([]Task, error) {
	var doc document
	if _, err := b.store.Load(ctx, team, store.DocTasks, &doc); err != nil {
		return nil, err
	}
	if doc.Tasks == nil {
		return []Task{}, nil
	}
	return doc.Tasks, nil
}

func validStatusList() string {
	names := make([]string, 0, len(Statuses()))
	for _, s := range Statuses() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}
