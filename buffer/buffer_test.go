package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eddy-editor/eddy/lexer"
)

type fixedBinding struct{ lang *lexer.Language }

func (f fixedBinding) NewLexer() *lexer.Lexer { return lexer.New(f.lang) }

func TestInsertBumpsVersionAndBroadcasts(t *testing.T) {
	b := New()
	var events []Event
	b.AddListener(func(_ *Buffer, e Event) { events = append(events, e) })

	b.Insert("hello", 0)

	if b.Text() != "hello" {
		t.Fatalf("expected text %q, got %q", "hello", b.Text())
	}
	if b.Version() != 1 {
		t.Fatalf("expected version 1, got %d", b.Version())
	}
	if len(events) != 1 || events[0].Type != ETInsert {
		t.Fatalf("expected one Insert event, got %+v", events)
	}
}

func TestDeleteCapturesDeletedBytesForUndo(t *testing.T) {
	b := New()
	b.Insert("hello world", 0)
	b.Delete(5, 6) // removes " world"

	if b.Text() != "hello" {
		t.Fatalf("expected %q, got %q", "hello", b.Text())
	}

	b.Undo()
	if b.Text() != "hello world" {
		t.Fatalf("undo: expected %q, got %q", "hello world", b.Text())
	}

	b.Redo()
	if b.Text() != "hello" {
		t.Fatalf("redo: expected %q, got %q", "hello", b.Text())
	}
}

func TestReplaceUndoRedo(t *testing.T) {
	b := New()
	b.Insert("foo bar", 0)
	b.Replace(4, 3, "baz")

	if b.Text() != "foo baz" {
		t.Fatalf("expected %q, got %q", "foo baz", b.Text())
	}
	b.Undo()
	if b.Text() != "foo bar" {
		t.Fatalf("undo: expected %q, got %q", "foo bar", b.Text())
	}
	b.Redo()
	if b.Text() != "foo baz" {
		t.Fatalf("redo: expected %q, got %q", "foo baz", b.Text())
	}
}

func TestEditClampsOutOfRangePosition(t *testing.T) {
	b := New()
	b.Insert("abc", 0)
	b.Insert("!", 1000) // clamps to end
	if b.Text() != "abc!" {
		t.Fatalf("expected %q, got %q", "abc!", b.Text())
	}
}

func TestReplaceClampsOutOfRangeOverwrittenCount(t *testing.T) {
	b := New()
	b.Insert("abc", 0)
	b.Replace(1, 1000, "X") // overwritten count clamps to the remaining 2 bytes ("bc")
	if b.Text() != "aX" {
		t.Fatalf("expected %q, got %q", "aX", b.Text())
	}
	b.Undo()
	if b.Text() != "abc" {
		t.Fatalf("undo: expected %q, got %q", "abc", b.Text())
	}
}

func TestNoOpDeleteDoesNotRecordUndo(t *testing.T) {
	b := New()
	b.Insert("abc", 0)
	before := b.Version()
	b.Delete(1, 0)
	if b.Version() != before {
		t.Fatalf("no-op delete should not bump version, got %d -> %d", before, b.Version())
	}
	b.Undo()
	if b.Text() != "" {
		t.Fatalf("expected undo of the insert to empty the buffer, got %q", b.Text())
	}
}

func TestSaveSetsVersionInvariant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")

	b := New()
	b.Name = path
	b.Insert("saved text", 0)

	if b.SavedVersion >= b.Version() {
		t.Fatalf("expected unsaved buffer to have SavedVersion < Version")
	}
	if err := b.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if b.SavedVersion != b.Version() {
		t.Fatalf("expected SavedVersion == Version after save, got %d != %d", b.SavedVersion, b.Version())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "saved text" {
		t.Fatalf("expected file contents %q, got %q", "saved text", data)
	}
}

func TestCloseFiresCloseFirst(t *testing.T) {
	b := New()
	b.Insert("x", 0)
	var order []EventType
	b.AddListener(func(_ *Buffer, e Event) { order = append(order, e.Type) })
	b.Close()
	if len(order) == 0 || order[0] != ETClose {
		t.Fatalf("expected Close to be the first (and only) event fired to listeners, got %+v", order)
	}
	if b.Text() != "" {
		t.Fatalf("expected text cleared after close, got %q", b.Text())
	}
}

func TestBuildIndicesNoOpWhenClean(t *testing.T) {
	b := New()
	b.Insert("a\nb\n", 0)
	b.BuildIndices()
	firstIndexed := b.IndexedVersion
	var fired int
	b.AddListener(func(_ *Buffer, e Event) {
		if e.Type == ETIndexed {
			fired++
		}
	})
	b.BuildIndices() // no-op: IndexedVersion == Version already
	if fired != 0 {
		t.Fatalf("expected no Indexed event on a clean no-op rebuild, got %d", fired)
	}
	if b.IndexedVersion != firstIndexed {
		t.Fatalf("IndexedVersion should not change on no-op rebuild")
	}
}

func TestBuildIndicesWithLanguageBindingProducesTokens(t *testing.T) {
	lang := &lexer.Language{Name: "tiny"}
	b := New()
	b.SetLanguageBinding(fixedBinding{lang: lang})
	b.Insert("foo bar\nbaz", 0)
	b.BuildIndices()

	if len(b.Lines()) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(b.Lines()), b.Lines())
	}
	if len(b.Tokens()) == 0 {
		t.Fatalf("expected display tokens to be populated")
	}
	for _, tok := range b.Tokens() {
		if tok.StyleIndex != NoStyle {
			t.Fatalf("expected fresh tokens to carry NoStyle, got %+v", tok)
		}
	}
}

func TestWordBoundaries(t *testing.T) {
	b := New()
	b.Insert("foo bar baz", 0)
	if l := b.WordBoundaryLeft(5); l != 4 {
		t.Fatalf("expected left boundary of 'bar' at 4, got %d", l)
	}
	if r := b.WordBoundaryRight(5); r != 7 {
		t.Fatalf("expected right boundary of 'bar' at 7, got %d", r)
	}
}
