package mailbox

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Broadcast is the recipient for messages meant for the whole team.
const Broadcast = "all"

// Message is one entry in a team's message log.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// IsBroadcast returns true if the message is addressed to all agents.
func (m Message) IsBroadcast() bool {
	return m.To == Broadcast
}

// For reports whether an agent reading its inbox should see m.
func (m Message) For(agent string) bool {
	return m.To == agent || m.IsBroadcast()
}

// document is the on-disk shape of messages.json.
type document struct {
	Messages []Message `json:"messages"`
}

// SendRequest describes a message to append.
type SendRequest struct {
	From string `json:"from" validate:"notblank,max=128"`
	To   string `json:"to" validate:"notblank,max=128"`
	Body string `json:"body" validate:"max=65536"`
}

// Filter narrows List. The zero Filter returns everything.
type Filter struct {
	// To keeps messages addressed to this agent or broadcast.
	To string
	// UnreadOnly drops messages already marked read.
	UnreadOnly bool
	// Limit keeps only the last Limit matches. Zero means no limit.
	Limit int
}

func (f Filter) apply(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if f.To != "" && !m.For(f.To) {
			continue
		}
		if f.UnreadOnly && m.Read {
			continue
		}
		out = append(out, m)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// newID returns "M" followed by eight hex characters of a random UUID.
func newID() string {
	return "M" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
