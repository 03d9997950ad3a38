package taskboard

import "slices"

// Ready returns the todo tasks whose dependencies are all done, in board
// order. A dependency on an id that is not on the board is unresolved.
func Ready(tasks []Task) []Task {
	byID := index(tasks)
	var ready []Task
	for _, t := range tasks {
		if t.Status == StatusTodo && len(unresolved(byID, t)) == 0 {
			ready = append(ready, t)
		}
	}
	return ready
}

// UnresolvedDeps returns the dependency ids of task that do not name a done
// task, in the order they were declared.
func UnresolvedDeps(tasks []Task, task Task) []string {
	return unresolved(index(tasks), task)
}

// UnblockedBy returns the ids of todo tasks that depend on id and have no
// other unresolved dependency. It is meaningful right after id becomes done.
func UnblockedBy(tasks []Task, id string) []string {
	byID := index(tasks)
	var out []string
	for _, t := range tasks {
		if t.Status != StatusTodo {
			continue
		}
		if slices.Contains(t.DependsOn, id) && len(unresolved(byID, t)) == 0 {
			out = append(out, t.ID)
		}
	}
	return out
}

// Summarize counts tasks per status. Tasks with an unknown status count
// toward Total only.
func Summarize(tasks []Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusTodo:
			s.Todo++
		case StatusInProgress:
			s.InProgress++
		case StatusDone:
			s.Done++
		case StatusBlocked:
			s.Blocked++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

func index(tasks []Task) map[string]*Task {
	m := make(map[string]*Task, len(tasks))
	for i := range tasks {
		m[tasks[i].ID] = &tasks[i]
	}
	return m
}

func unresolved(byID map[string]*Task, t Task) []string {
	var out []string
	for _, dep := range t.DependsOn {
		d, ok := byID[dep]
		if !ok || d.Status != StatusDone {
			out = append(out, dep)
		}
	}
	return out
}
