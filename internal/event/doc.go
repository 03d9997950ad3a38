// Package event provides the in-process event bus over which the coordinator
// announces completed writes.
//
// Every mutating coordinator operation publishes exactly one event after its
// documents are saved. Subscribers (the Redis notifier, tests) never see an
// event for a write that failed.
//
// # Event Types
//
//   - team.created, team.closed, team.routing_updated
//   - task.added, task.claimed, task.updated
//   - message.sent, message.read
//
// Events carry their team name so a subscriber can route per team:
//
//	bus := event.NewBus(logger)
//	bus.SubscribeAll(func(e event.Event) {
//	    fmt.Println(e.TeamName(), e.EventType())
//	})
package event
