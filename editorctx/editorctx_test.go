package editorctx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eddy-editor/eddy/econfig"
)

func TestOpenWithNoMatchingLanguageStillSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx := New(&econfig.Config{ProjectDir: dir})
	doc, err := ctx.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if doc.Buffer.Text() != "hello" {
		t.Fatalf("expected text %q, got %q", "hello", doc.Buffer.Text())
	}
	if doc.Mode != nil {
		t.Fatalf("expected no mode attached without a registered language")
	}
}

func TestOpenIsIdempotentForTheSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx := New(&econfig.Config{ProjectDir: dir})
	first, err := ctx.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	second, err := ctx.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected re-opening an already-open path to return the same document")
	}
	if len(ctx.Documents()) != 1 {
		t.Fatalf("expected exactly one open document, got %d", len(ctx.Documents()))
	}
}

func TestCloseForgetsDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx := New(&econfig.Config{ProjectDir: dir})
	if _, err := ctx.Open(context.Background(), path); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	ctx.Close(path)
	if len(ctx.Documents()) != 0 {
		t.Fatalf("expected no open documents after Close, got %d", len(ctx.Documents()))
	}
}
