package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileBackend stores each document as <root>/<team>/<doc>.json.
type FileBackend struct {
	fs   afero.Fs
	root string
}

// NewFileBackend creates a FileBackend rooted at root on fs.
// Pass afero.NewOsFs() in production and afero.NewMemMapFs() in tests.
func NewFileBackend(fs afero.Fs, root string) *FileBackend {
	return &FileBackend{fs: fs, root: root}
}

// TeamDir returns the directory holding a team's documents.
func (b *FileBackend) TeamDir(team string) string {
	return filepath.Join(b.root, team)
}

func (b *FileBackend) docPath(team string, doc Doc) string {
	return filepath.Join(b.TeamDir(team), doc.FileName())
}

// Read returns the document contents.
func (b *FileBackend) Read(_ context.Context, team string, doc Doc) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.docPath(team, doc))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("read %s: %w", doc.FileName(), err)
	}
	return data, nil
}

// Write replaces the document, creating the team directory if needed.
func (b *FileBackend) Write(_ context.Context, team string, doc Doc, data []byte) error {
	dir := b.TeamDir(team)
	if err := b.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create team directory: %w", err)
	}
	return atomicWriteFile(b.fs, b.docPath(team, doc), data, 0644)
}

// Exists reports whether the document file exists.
func (b *FileBackend) Exists(_ context.Context, team string, doc Doc) (bool, error) {
	ok, err := afero.Exists(b.fs, b.docPath(team, doc))
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", doc.FileName(), err)
	}
	return ok, nil
}

// Teams lists the subdirectories of the root, skipping dot-directories.
// A missing root yields no teams.
func (b *FileBackend) Teams(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(b.fs, b.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read teams directory: %w", err)
	}

	var teams []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		teams = append(teams, entry.Name())
	}
	sort.Strings(teams)
	return teams, nil
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it over path, so the target is never partially written.
func atomicWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	tmpFile, err := afero.TempFile(fs, filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
