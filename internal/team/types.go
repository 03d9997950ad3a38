package team

import (
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of a team.
type Status string

const (
	// StatusActive is the state of a newly created team.
	StatusActive Status = "active"

	// StatusClosed is the state after Close. The team's documents are kept.
	StatusClosed Status = "closed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Team is the persisted team definition (team.json).
type Team struct {
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	// GroupRef is the opaque chat group identifier. The JSON key is kept
	// for compatibility with existing operator tooling.
	GroupRef string `json:"telegram_group_id"`
	RepoPath string `json:"repo_path"`

	Agents   []string       `json:"agents"`
	Lead     string         `json:"lead"`
	TopicMap map[string]int `json:"topic_map"`
}

// IsActive reports whether the team accepts work.
func (t *Team) IsActive() bool {
	return t.Status == StatusActive
}

// HasAgent reports whether id is on the roster.
func (t *Team) HasAgent(id string) bool {
	return slices.Contains(t.Agents, id)
}

// Defaults supplies the roster used when a create request leaves it empty.
type Defaults struct {
	Agents []string
	Lead   string
}

// CreateRequest describes a new team.
type CreateRequest struct {
	Name     string   `json:"name" validate:"teamname,max=128"`
	Agents   []string `json:"agents"`
	Lead     string   `json:"lead" validate:"max=128"`
	GroupRef string   `json:"group_id" validate:"max=128"`
	RepoPath string   `json:"repo" validate:"max=4096"`
}

// RoutingRequest updates a team's chat routing. An empty GroupRef keeps the
// current one. Topics with a non-positive id are ignored. Topics are merged
// into the current map unless Replace is set.
type RoutingRequest struct {
	GroupRef string         `json:"group_id" validate:"max=128"`
	Topics   map[string]int `json:"topics"`
	Replace  bool           `json:"replace"`
}

// Roster resolves the agent list and lead for a request. Agent ids are
// trimmed, blanks dropped and duplicates removed keeping the first
// occurrence. An empty result falls back to the defaults. The lead is
// appended when it is not already on the roster.
func Roster(agents []string, lead string, defaults Defaults) ([]string, string) {
	roster := normalize(agents)
	if len(roster) == 0 {
		roster = normalize(defaults.Agents)
	}

	lead = strings.TrimSpace(lead)
	if lead == "" {
		lead = strings.TrimSpace(defaults.Lead)
	}
	if lead != "" && !slices.Contains(roster, lead) {
		roster = append(roster, lead)
	}
	return roster, lead
}

func normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SplitAgents parses a comma separated roster such as "a, b,c".
func SplitAgents(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return normalize(strings.Split(s, ","))
}
