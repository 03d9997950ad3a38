// Package taskboard implements a team's dependency-aware task board.
//
// Tasks live in the team's tasks.json document as {"tasks": [...]} in
// creation order. Ids are "T001", "T002", ... taking the first free slot, so
// an id freed by hand-editing the document is reused.
//
// The board keeps dependencies verbatim. Dependency ids are never checked
// against the board, cycles are representable, and [Ready] is a read-only
// view: a todo task is ready when every id it depends on names a done task.
//
// Status changes are deliberately loose. [Board.Claim] moves a todo task to
// in_progress; [Board.Update] sets any valid status from any other.
package taskboard
