package taskboard

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxSequentialID is the last id handed out as T###. Past it ids fall back
// to a random suffix.
const maxSequentialID = 9998

// NextID returns the first free id among T001..T9998, or "T" followed by six
// random hex characters when every slot is taken.
func NextID(tasks []Task) string {
	taken := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		taken[t.ID] = struct{}{}
	}
	for i := 1; i <= maxSequentialID; i++ {
		id := fmt.Sprintf("T%03d", i)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
	for {
		id := "T" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}
