// Package coordinator is the single command surface over the team registry,
// the task board and the message log.
//
// Every method re-reads what it needs through the store, so a Coordinator
// is safe to build for one command and throw away, which is how the CLI
// uses it. Successful writes publish a domain event on the [event.Bus];
// subscribers such as the Redis notifier fan them out.
//
// [Envelope] turns any method's result into the uniform shape printed by
// the CLI:
//
//	{"ok": true, "data": {...}}
//	{"ok": false, "error": {"kind": "not_found", "message": "..."}}
package coordinator
