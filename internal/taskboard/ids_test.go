package taskboard

import (
	"fmt"
	"strings"
	"testing"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty board", nil, "T001"},
		{"sequential", []string{"T001", "T002"}, "T003"},
		{"fills gap", []string{"T001", "T003"}, "T002"},
		{"ignores foreign ids", []string{"X1", "T001", "Tabcdef"}, "T002"},
		{"four digits", seqIDs(999), "T1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextID(tasksWithIDs(tt.ids...)); got != tt.want {
				t.Errorf("NextID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextID_Overflow(t *testing.T) {
	tasks := tasksWithIDs(seqIDs(maxSequentialID)...)

	id := NextID(tasks)
	if len(id) != 7 || !strings.HasPrefix(id, "T") {
		t.Fatalf("NextID() = %q, want T + 6 hex chars", id)
	}
	for _, r := range id[1:] {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Fatalf("NextID() = %q has non-hex suffix", id)
		}
	}
	for _, task := range tasks {
		if task.ID == id {
			t.Fatalf("NextID() = %q collides", id)
		}
	}
}

func seqIDs(n int) []string {
	ids := make([]string, n)
	for i := range n {
		ids[i] = fmt.Sprintf("T%03d", i+1)
	}
	return ids
}

func tasksWithIDs(ids ...string) []Task {
	tasks := make([]Task, len(ids))
	for i, id := range ids {
		tasks[i] = Task{ID: id, Status: StatusTodo}
	}
	return tasks
}
