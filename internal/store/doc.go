// Package store is the persistence layer for team workspaces.
//
// Each team owns three JSON documents: its definition (team.json), its task
// board (tasks.json) and its message log (messages.json). A [Backend] maps a
// team name to those documents; [FileBackend] keeps them as files under the
// teams root and [SQLiteBackend] keeps them as rows in one table.
//
// [Store.Update] is the only way to mutate a team. It holds the team's
// [Locker] for the whole read-modify-write cycle:
//
//	err := st.Update(ctx, "alpha", func(tx *store.Tx) error {
//	    var board Board
//	    if _, err := tx.Load(store.DocTasks, &board); err != nil {
//	        return err
//	    }
//	    board.Tasks = append(board.Tasks, task)
//	    return tx.Save(store.DocTasks, &board)
//	})
//
// [FlockLocker] serialises separate CLI processes on one host; [MutexLocker]
// serialises goroutines in one process.
package store
