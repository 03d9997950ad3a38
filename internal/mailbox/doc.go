// Package mailbox implements a team's append-only inter-agent message log.
//
// Messages live in the team's messages.json document as
// {"messages": [...]} in the order they were sent. Sender and recipient ids
// are free-form and never checked against the roster. A message addressed
// to [Broadcast] is for every agent.
//
// Sending never marks anything read; [Log.MarkRead] is the only operation
// that flips the flag. There is no push delivery here: [Log.Watch] polls
// the log and a chat bridge may subscribe to message events instead.
package mailbox
