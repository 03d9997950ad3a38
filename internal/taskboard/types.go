package taskboard

import (
	"slices"
	"time"
)

// Status is the state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
	StatusCancelled  Status = "cancelled"
)

// Unassigned is the assignee of a task nobody has claimed.
const Unassigned = "unassigned"

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if this is a recognized status value.
func (s Status) IsValid() bool {
	return slices.Contains(Statuses(), s)
}

// IsTerminal returns true for done and cancelled.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Statuses returns every valid status in board order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone, StatusBlocked, StatusCancelled}
}

// Task is a unit of work on the board.
type Task struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	AssignedTo string    `json:"assigned_to"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	DependsOn  []string  `json:"depends_on"`
	Notes      string    `json:"notes"`
}

// document is the on-disk shape of tasks.json.
type document struct {
	Tasks []Task `json:"tasks"`
}

func (d *document) find(id string) int {
	return slices.IndexFunc(d.Tasks, func(t Task) bool { return t.ID == id })
}

// AddRequest describes a new task.
type AddRequest struct {
	Title     string   `json:"title" validate:"notblank,max=500"`
	AssignTo  string   `json:"assign_to" validate:"max=128"`
	DependsOn []string `json:"depends_on"`
}

// UpdateRequest changes a task. An empty Status or Notes leaves the field
// unchanged.
type UpdateRequest struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
}

// Summary counts tasks per status.
type Summary struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Blocked    int `json:"blocked"`
	Cancelled  int `json:"cancelled"`
}
