package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier, e.g. "task.claimed".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time

	// TeamName returns the team the event belongs to.
	TeamName() string
}

// Event type identifiers.
const (
	TypeTeamCreated  = "team.created"
	TypeTeamClosed   = "team.closed"
	TypeTeamRouting  = "team.routing_updated"
	TypeTaskAdded    = "task.added"
	TypeTaskClaimed  = "task.claimed"
	TypeTaskUpdated  = "task.updated"
	TypeMessageSent  = "message.sent"
	TypeMessagesRead = "message.read"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
	team      string
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }
func (e baseEvent) TeamName() string     { return e.team }

func newBaseEvent(eventType, team string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now().UTC(),
		team:      team,
	}
}

// -----------------------------------------------------------------------------
// Team Events
// -----------------------------------------------------------------------------

// TeamCreatedEvent is emitted after a team definition is written.
type TeamCreatedEvent struct {
	baseEvent
	Agents []string `json:"agents"`
	Lead   string   `json:"lead"`
}

// NewTeamCreatedEvent creates a TeamCreatedEvent.
func NewTeamCreatedEvent(team string, agents []string, lead string) TeamCreatedEvent {
	return TeamCreatedEvent{
		baseEvent: newBaseEvent(TypeTeamCreated, team),
		Agents:    agents,
		Lead:      lead,
	}
}

// TeamClosedEvent is emitted when a team is closed.
type TeamClosedEvent struct {
	baseEvent
	ClosedAt time.Time `json:"closed_at"`
}

// NewTeamClosedEvent creates a TeamClosedEvent.
func NewTeamClosedEvent(team string, closedAt time.Time) TeamClosedEvent {
	return TeamClosedEvent{
		baseEvent: newBaseEvent(TypeTeamClosed, team),
		ClosedAt:  closedAt,
	}
}

// TeamRoutingEvent is emitted when a team's chat group or topic map changes.
type TeamRoutingEvent struct {
	baseEvent
	GroupRef string         `json:"group_ref"`
	Topics   map[string]int `json:"topics"`
}

// NewTeamRoutingEvent creates a TeamRoutingEvent.
func NewTeamRoutingEvent(team, groupRef string, topics map[string]int) TeamRoutingEvent {
	return TeamRoutingEvent{
		baseEvent: newBaseEvent(TypeTeamRouting, team),
		GroupRef:  groupRef,
		Topics:    topics,
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskAddedEvent is emitted when a task is appended to a board.
type TaskAddedEvent struct {
	baseEvent
	TaskID     string   `json:"task_id"`
	Title      string   `json:"title"`
	AssignedTo string   `json:"assigned_to"`
	DependsOn  []string `json:"depends_on"`
}

// NewTaskAddedEvent creates a TaskAddedEvent.
func NewTaskAddedEvent(team, taskID, title, assignedTo string, dependsOn []string) TaskAddedEvent {
	return TaskAddedEvent{
		baseEvent:  newBaseEvent(TypeTaskAdded, team),
		TaskID:     taskID,
		Title:      title,
		AssignedTo: assignedTo,
		DependsOn:  dependsOn,
	}
}

// TaskClaimedEvent is emitted when an agent claims a task.
type TaskClaimedEvent struct {
	baseEvent
	TaskID string `json:"task_id"`
	Agent  string `json:"agent"`
	Status string `json:"status"`
}

// NewTaskClaimedEvent creates a TaskClaimedEvent.
func NewTaskClaimedEvent(team, taskID, agent, status string) TaskClaimedEvent {
	return TaskClaimedEvent{
		baseEvent: newBaseEvent(TypeTaskClaimed, team),
		TaskID:    taskID,
		Agent:     agent,
		Status:    status,
	}
}

// TaskUpdatedEvent is emitted when a task's status or notes change.
type TaskUpdatedEvent struct {
	baseEvent
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// NewTaskUpdatedEvent creates a TaskUpdatedEvent.
func NewTaskUpdatedEvent(team, taskID, status, notes string) TaskUpdatedEvent {
	return TaskUpdatedEvent{
		baseEvent: newBaseEvent(TypeTaskUpdated, team),
		TaskID:    taskID,
		Status:    status,
		Notes:     notes,
	}
}

// -----------------------------------------------------------------------------
// Message Events
// -----------------------------------------------------------------------------

// MessageSentEvent is emitted when a message is appended to a team's log.
type MessageSentEvent struct {
	baseEvent
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"body"`
}

// NewMessageSentEvent creates a MessageSentEvent.
func NewMessageSentEvent(team, messageID, from, to, body string) MessageSentEvent {
	return MessageSentEvent{
		baseEvent: newBaseEvent(TypeMessageSent, team),
		MessageID: messageID,
		From:      from,
		To:        to,
		Body:      body,
	}
}

// MessagesReadEvent is emitted when messages are marked read.
type MessagesReadEvent struct {
	baseEvent
	MessageIDs []string `json:"message_ids"`
}

// NewMessagesReadEvent creates a MessagesReadEvent.
func NewMessagesReadEvent(team string, ids []string) MessagesReadEvent {
	return MessagesReadEvent{
		baseEvent:  newBaseEvent(TypeMessagesRead, team),
		MessageIDs: ids,
	}
}
