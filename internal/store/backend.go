package store

import (
	"context"
	"strings"

	"github.com/Iron-Ham/clawteam/internal/errors"
)

// Doc identifies one of the three documents every team owns.
type Doc string

const (
	// DocTeam is the team definition.
	DocTeam Doc = "team"
	// DocTasks is the task board.
	DocTasks Doc = "tasks"
	// DocMessages is the message log.
	DocMessages Doc = "messages"
)

// FileName returns the on-disk file name of the document.
func (d Doc) FileName() string {
	return string(d) + ".json"
}

// ErrNoDocument is returned by a Backend when a document has never been written.
var ErrNoDocument = errors.New("document does not exist")

// Backend is a keyed document store: team name to a bundle of documents.
// Implementations must replace a document in full on Write so that readers
// never observe a partial document.
type Backend interface {
	// Read returns the raw document, or ErrNoDocument.
	Read(ctx context.Context, team string, doc Doc) ([]byte, error)
	// Write replaces the document.
	Write(ctx context.Context, team string, doc Doc, data []byte) error
	// Exists reports whether the document has been written.
	Exists(ctx context.Context, team string, doc Doc) (bool, error)
	// Teams lists team keys that have at least one document, sorted.
	Teams(ctx context.Context) ([]string, error)
}

// Entry is one document staged for writing.
type Entry struct {
	Doc  Doc
	Data []byte
}

// BatchWriter is implemented by backends that can replace several
// documents of one team atomically.
type BatchWriter interface {
	WriteBatch(ctx context.Context, team string, entries []Entry) error
}

// CheckTeamName rejects names that cannot be used as a storage key.
// Team names become directory names, so path separators, dot-prefixed
// names and control characters are refused.
func CheckTeamName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.NewValidationError("name", name, "team name is required")
	case strings.ContainsAny(name, `/\`):
		return errors.NewValidationError("name", name, "team name must not contain path separators")
	case strings.HasPrefix(name, "."):
		return errors.NewValidationError("name", name, "team name must not start with a dot")
	case strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }):
		return errors.NewValidationError("name", name, "team name must not contain control characters")
	}
	return nil
}
