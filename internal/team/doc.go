// Package team manages team definitions: the roster of agents, the lead and
// the chat routing that belong to one named workspace.
//
// # Lifecycle
//
// A [Registry] creates, lists, reads and closes teams through a
// [store.Store]. At most one active team exists per name. Creating a team
// whose previous incarnation is closed replaces it and resets its task board
// and message log.
//
//	reg := team.NewRegistry(st, team.Defaults{
//	    Agents: []string{"artist", "assistant", "developer"},
//	    Lead:   "developer",
//	})
//	t, err := reg.Create(ctx, team.CreateRequest{Name: "alpha"})
//
// # Routing
//
// [Registry.SetRouting] records the external chat group and the forum topic
// ids that a chat bridge uses to deliver team traffic. Topic names are not
// validated and ids are not unique across teams.
package team
