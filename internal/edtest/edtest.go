// Package edtest provides small test helpers shared across package
// test files: an in-memory session-state store and a scratch source
// file, both registered for automatic cleanup.
package edtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eddy-editor/eddy/estate"
)

// NewStore opens an in-memory estate.Store with its schema applied,
// closed automatically at test end.
func NewStore(t *testing.T) *estate.Store {
	t.Helper()
	s, err := estate.Open(":memory:")
	if err != nil {
		t.Fatalf("edtest: open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// WriteFile writes contents to name under a fresh t.TempDir and
// returns its absolute path.
func WriteFile(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("edtest: write %q: %v", path, err)
	}
	return path
}
