package coordinator

import (
	"context"
	"time"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/event"
	"github.com/Iron-Ham/clawteam/internal/logging"
	"github.com/Iron-Ham/clawteam/internal/mailbox"
	"github.com/Iron-Ham/clawteam/internal/store"
	"github.com/Iron-Ham/clawteam/internal/taskboard"
	"github.com/Iron-Ham/clawteam/internal/team"
)

// Config holds required dependencies for creating a Coordinator.
type Config struct {
	Store    *store.Store
	Bus      *event.Bus
	Defaults team.Defaults
}

// Coordinator composes the team registry, task board and message log.
type Coordinator struct {
	teams  *team.Registry
	board  *taskboard.Board
	log    *mailbox.Log
	bus    *event.Bus
	logger *logging.Logger
}

// New creates a Coordinator. A nil Bus gets a private bus with no
// subscribers.
func New(cfg Config, opts ...Option) (*Coordinator, error) {
	if cfg.Store == nil {
		return nil, errors.New("coordinator: Store is required")
	}

	cc := &coordinatorConfig{}
	for _, opt := range opts {
		opt(cc)
	}
	logger := cc.logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus(logger)
	}

	teamOpts := []team.Option{team.WithLogger(logger)}
	boardOpts := []taskboard.Option{taskboard.WithLogger(logger)}
	logOpts := []mailbox.Option{mailbox.WithLogger(logger), mailbox.WithPollInterval(cc.pollInterval)}
	if cc.now != nil {
		teamOpts = append(teamOpts, team.WithClock(cc.now))
		boardOpts = append(boardOpts, taskboard.WithClock(cc.now))
		logOpts = append(logOpts, mailbox.WithClock(cc.now))
	}

	return &Coordinator{
		teams:  team.NewRegistry(cfg.Store, cfg.Defaults, teamOpts...),
		board:  taskboard.New(cfg.Store, boardOpts...),
		log:    mailbox.New(cfg.Store, logOpts...),
		bus:    bus,
		logger: logger,
	}, nil
}

// TeamStatus is a team with its board and recent traffic.
type TeamStatus struct {
	Team     *team.Team        `json:"team"`
	Tasks    []taskboard.Task  `json:"tasks"`
	Summary  taskboard.Summary `json:"summary"`
	Ready    []string          `json:"ready"`
	Messages []mailbox.Message `json:"messages"`
}

// TaskList is a board listing with its counts.
type TaskList struct {
	Tasks   []taskboard.Task  `json:"tasks"`
	Summary taskboard.Summary `json:"summary"`
}

// -----------------------------------------------------------------------------
// Teams
// -----------------------------------------------------------------------------

// CreateTeam creates a team, or replaces a closed one of the same name.
func (c *Coordinator) CreateTeam(ctx context.Context, req team.CreateRequest) (*team.Team, error) {
	t, err := c.teams.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(event.NewTeamCreatedEvent(t.Name, t.Agents, t.Lead))
	return t, nil
}

// ListTeams returns every team, active or closed, by name.
func (c *Coordinator) ListTeams(ctx context.Context) ([]*team.Team, error) {
	return c.teams.List(ctx)
}

// TeamStatus returns the team, its whole board and the last recent
// messages. A recent of zero or less returns every message.
func (c *Coordinator) TeamStatus(ctx context.Context, name string, recent int) (*TeamStatus, error) {
	t, err := c.teams.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	tasks, err := c.board.List(ctx, name)
	if err != nil {
		return nil, err
	}
	msgs, err := c.log.List(ctx, name, mailbox.Filter{Limit: max(recent, 0)})
	if err != nil {
		return nil, err
	}

	return &TeamStatus{
		Team:     t,
		Tasks:    tasks,
		Summary:  taskboard.Summarize(tasks),
		Ready:    taskIDs(taskboard.Ready(tasks)),
		Messages: msgs,
	}, nil
}

// CloseTeam marks a team closed. Closing twice re-stamps closed_at.
func (c *Coordinator) CloseTeam(ctx context.Context, name string) (*team.Team, error) {
	t, err := c.teams.Close(ctx, name)
	if err != nil {
		return nil, err
	}
	closedAt := time.Time{}
	if t.ClosedAt != nil {
		closedAt = *t.ClosedAt
	}
	c.bus.Publish(event.NewTeamClosedEvent(t.Name, closedAt))
	return t, nil
}

// SetRouting records a team's chat group and topic ids.
func (c *Coordinator) SetRouting(ctx context.Context, name string, req team.RoutingRequest) (*team.Team, error) {
	t, err := c.teams.SetRouting(ctx, name, req)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(event.NewTeamRoutingEvent(t.Name, t.GroupRef, t.TopicMap))
	return t, nil
}

// -----------------------------------------------------------------------------
// Tasks
// -----------------------------------------------------------------------------

// AddTask appends a todo task to the team's board.
func (c *Coordinator) AddTask(ctx context.Context, name string, req taskboard.AddRequest) (*taskboard.Task, error) {
	task, err := c.board.Add(ctx, name, req)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(event.NewTaskAddedEvent(name, task.ID, task.Title, task.AssignedTo, task.DependsOn))
	return task, nil
}

// ClaimTask assigns a task to agent and starts it if it was todo.
func (c *Coordinator) ClaimTask(ctx context.Context, name, taskID, agent string) (*taskboard.Task, error) {
	task, err := c.board.Claim(ctx, name, taskID, agent)
	if err != nil {
		return nil, err
	}
	if task.Status.IsTerminal() {
		c.logger.Warn("claimed a finished task", "team", name, "task", task.ID, "status", task.Status.String())
	}
	c.bus.Publish(event.NewTaskClaimedEvent(name, task.ID, task.AssignedTo, task.Status.String()))
	return task, nil
}

// UpdateTask changes a task's status and notes.
func (c *Coordinator) UpdateTask(ctx context.Context, name, taskID string, req taskboard.UpdateRequest) (*taskboard.Task, error) {
	task, err := c.board.Update(ctx, name, taskID, req)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(event.NewTaskUpdatedEvent(name, task.ID, task.Status.String(), task.Notes))

	if task.Status == taskboard.StatusDone {
		if tasks, err := c.board.List(ctx, name); err == nil {
			if unblocked := taskboard.UnblockedBy(tasks, task.ID); len(unblocked) > 0 {
				c.logger.Info("tasks unblocked", "team", name, "task", task.ID, "unblocked", unblocked)
			}
		}
	}
	return task, nil
}

// ListTasks returns the team's board and its counts.
func (c *Coordinator) ListTasks(ctx context.Context, name string) (*TaskList, error) {
	if err := c.requireTeam(ctx, "list tasks", name); err != nil {
		return nil, err
	}
	tasks, err := c.board.List(ctx, name)
	if err != nil {
		return nil, err
	}
	return &TaskList{Tasks: tasks, Summary: taskboard.Summarize(tasks)}, nil
}

// ReadyTasks returns the todo tasks whose dependencies are all done.
func (c *Coordinator) ReadyTasks(ctx context.Context, name string) (*TaskList, error) {
	list, err := c.ListTasks(ctx, name)
	if err != nil {
		return nil, err
	}
	ready := taskboard.Ready(list.Tasks)
	if ready == nil {
		ready = []taskboard.Task{}
	}
	return &TaskList{Tasks: ready, Summary: list.Summary}, nil
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

// SendMessage appends an unread message to the team's log.
func (c *Coordinator) SendMessage(ctx context.Context, name string, req mailbox.SendRequest) (*mailbox.Message, error) {
	msg, err := c.log.Send(ctx, name, req)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(event.NewMessageSentEvent(name, msg.ID, msg.From, msg.To, msg.Body))
	return msg, nil
}

// ListMessages returns the team's messages in append order.
func (c *Coordinator) ListMessages(ctx context.Context, name string, f mailbox.Filter) ([]mailbox.Message, error) {
	if err := c.requireTeam(ctx, "list messages", name); err != nil {
		return nil, err
	}
	return c.log.List(ctx, name, f)
}

// MarkRead flags messages as read.
func (c *Coordinator) MarkRead(ctx context.Context, name string, ids ...string) ([]mailbox.Message, error) {
	if err := c.requireTeam(ctx, "mark read", name); err != nil {
		return nil, err
	}
	msgs, err := c.log.MarkRead(ctx, name, ids...)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(event.NewMessagesReadEvent(name, messageIDs(msgs)))
	return msgs, nil
}

// WatchMessages calls handler for every new message matching f until ctx
// is done.
func (c *Coordinator) WatchMessages(ctx context.Context, name string, f mailbox.Filter, handler func(mailbox.Message)) error {
	if err := c.requireTeam(ctx, "watch messages", name); err != nil {
		return err
	}
	return c.log.Watch(ctx, name, f, handler)
}

func (c *Coordinator) requireTeam(ctx context.Context, op, name string) error {
	ok, err := c.teams.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewCoordinationError(op, errors.ErrTeamNotFound).WithTeam(name)
	}
	return nil
}

func taskIDs(tasks []taskboard.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func messageIDs(msgs []mailbox.Message) []string {
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids
}
