package buffer

import (
	"os"
	"strings"

	"github.com/eddy-editor/eddy/ederrors"
	"github.com/eddy-editor/eddy/elog"
	"github.com/eddy-editor/eddy/lexer"
)

// Listener observes every event a Buffer applies, in registration
// order. Listeners are modelled as values (a callback plus whatever
// non-owning context it closed over), never as back-pointers into the
// buffer, so a buffer's listener list carries no ownership cycle.
type Listener func(b *Buffer, e Event)

// LanguageBinding supplies a fresh Lexer for (re)building a buffer's
// line/token index. Mode glue sets this when it attaches to a buffer;
// an unbound buffer's build_indices only produces a single whole-file
// line with no tokens.
type LanguageBinding interface {
	NewLexer() *lexer.Lexer
}

// Buffer owns a document's text, undo arena, line/token index,
// listener list, and LSP correspondence state (name, URI, versions,
// diagnostics). The zero value is a closed, empty buffer; use New or
// Open to obtain a usable one.
type Buffer struct {
	Name string
	URI  string

	text string
	undo Arena

	// version is the single monotonic edit counter. SavedVersion and
	// IndexedVersion are both markers into this counter (the REDESIGN
	// FLAG fix for the original C buffer's saved_version/undo_stack.size split):
	// a diagnostic-triggered version bump can no longer desynchronise
	// SavedVersion from what was actually on disk at last save, because
	// SavedVersion is stamped from the current version at save time.
	version        int
	SavedVersion   int
	IndexedVersion int

	lines  []Line
	tokens []DisplayToken

	Diagnostics []Diagnostic

	undoStack  []Event
	undoCursor int

	listeners []Listener

	binding LanguageBinding
}

// New returns an empty, unattached buffer ready for Insert calls.
func New() *Buffer {
	return &Buffer{lines: []Line{{}}}
}

// Open loads a file's contents into a new Buffer and builds its line
// index (with no lexer attached, so a single whole-file line).
func Open(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ederrors.Wrap(err, "buffer: open")
	}
	b := &Buffer{Name: path, text: string(data)}
	b.BuildIndices()
	return b, nil
}

// Version is the buffer's current monotonic edit counter.
func (b *Buffer) Version() int { return b.version }

// Text returns the buffer's current full text.
func (b *Buffer) Text() string { return b.text }

// Len returns the current text length in bytes.
func (b *Buffer) Len() int { return len(b.text) }

// Lines returns the current line index (valid only up to the last
// BuildIndices call; callers needing fresh data should call
// BuildIndices first).
func (b *Buffer) Lines() []Line { return b.lines }

// Tokens returns the current display-token index.
func (b *Buffer) Tokens() []DisplayToken { return b.tokens }

// TextAt returns the bytes a Ref points to in the buffer's undo arena --
// used by listeners (mode's did_change glue) that need an event's own
// insert/replacement text rather than the whole document.
func (b *Buffer) TextAt(ref Ref) string { return b.undo.Slice(ref) }

// SetLanguageBinding attaches (or detaches, with nil) the lexer source
// used by BuildIndices. Mode glue calls this on attach.
func (b *Buffer) SetLanguageBinding(lb LanguageBinding) { b.binding = lb }

// AddListener registers a listener, invoked for every event this buffer
// applies from now on, in registration order.
func (b *Buffer) AddListener(l Listener) {
	b.listeners = append(b.listeners, l)
}

func (b *Buffer) broadcast(e Event) {
	for _, l := range b.listeners {
		l(b, e)
	}
}

// IndexToPosition converts a byte offset into a (line, column) pair
// using the current line index.
func (b *Buffer) IndexToPosition(index int) Position {
	line := lineForIndex(b.lines, index)
	return Position{Line: line, Column: index - b.lines[line].StartOffset}
}

// PositionToIndex converts a (line, column) pair back into a byte
// offset using the current line index.
func (b *Buffer) PositionToIndex(pos Position) int {
	if pos.Line < 0 || pos.Line >= len(b.lines) {
		return len(b.text)
	}
	return b.lines[pos.Line].StartOffset + pos.Column
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// apply performs the actual mutation for an event whose fields are
// already clamped and (for Delete/Replace) have captured their
// overwritten bytes. It stamps event.Range from the pre-mutation text,
// mutates text, bumps version, and broadcasts. It does not touch the
// undo stack -- callers decide whether to push (Edit) or not (Undo/Redo).
func (b *Buffer) apply(e Event) Event {
	// pos scans the pre-mutation text rather than the line index, which
	// is only rebuilt by BuildIndices and may predate earlier edits.
	pos := func(index int) Position {
		before := b.text[:index]
		return Position{Line: strings.Count(before, "\n"), Column: index - strings.LastIndexByte(before, '\n') - 1}
	}
	switch e.Type {
	case ETInsert:
		if e.InsertText.Length == 0 {
			return e
		}
		start := pos(e.Position)
		e.Range = Range{Start: start, End: start}
		sv := b.undo.Slice(e.InsertText)
		b.text = b.text[:e.Position] + sv + b.text[e.Position:]
		b.version++
	case ETDelete:
		if e.DeleteCount == 0 {
			return e
		}
		e.Range = Range{
			Start: pos(e.Position),
			End:   pos(e.Position + e.DeleteCount),
		}
		b.text = b.text[:e.Position] + b.text[e.Position+e.DeleteCount:]
		b.version++
	case ETReplace:
		overwrittenLen := e.ReplaceOverwrittenN
		if overwrittenLen == 0 {
			overwrittenLen = e.ReplaceOverwritten.Length
		}
		if overwrittenLen == 0 && e.ReplaceReplacement.Length == 0 {
			return e
		}
		e.Range = Range{
			Start: pos(e.Position),
			End:   pos(e.Position + overwrittenLen),
		}
		b.text = b.text[:e.Position] + b.text[e.Position+overwrittenLen:]
		sv := b.undo.Slice(e.ReplaceReplacement)
		b.text = b.text[:e.Position] + sv + b.text[e.Position:]
		b.version++
	case ETSave:
		name := b.undo.Slice(e.SaveFileName)
		if name == "" && b.SavedVersion == b.version {
			return e
		}
		if name != "" {
			b.Name = name
			b.URI = ""
		}
		if b.Name == "" {
			return e
		}
		if err := os.WriteFile(b.Name, []byte(b.text), 0o644); err != nil {
			elog.Warnw("buffer save failed", "name", b.Name, "error", err)
			return e
		}
		b.SavedVersion = b.version
	case ETClose:
		b.broadcast(e)
		b.text = ""
		b.lines = nil
		b.tokens = nil
		b.undoStack = nil
		b.listeners = nil
		return e
	}
	b.broadcast(e)
	return e
}

// edit clamps, captures undo payload, applies, and (for user edits)
// pushes onto the undo stack -- the Insert/Delete/Replace path.
func (b *Buffer) edit(e Event) {
	switch e.Type {
	case ETInsert:
		if e.InsertText.Length == 0 {
			return
		}
		e.Position = clamp(e.Position, 0, len(b.text))
	case ETDelete:
		e.Position = clamp(e.Position, 0, len(b.text))
		e.DeleteCount = clamp(e.DeleteCount, 0, len(b.text)-e.Position)
		if e.DeleteCount == 0 {
			return
		}
		e.DeleteDeleted = b.undo.Append(b.text[e.Position : e.Position+e.DeleteCount])
	case ETReplace:
		e.Position = clamp(e.Position, 0, len(b.text))
		count := clamp(e.ReplaceOverwrittenN, 0, len(b.text)-e.Position)
		if count <= 0 {
			return
		}
		e.ReplaceOverwrittenN = count
		e.ReplaceOverwritten = b.undo.Append(b.text[e.Position : e.Position+count])
	}
	b.apply(e)
	b.undoStack = append(b.undoStack, e)
	b.undoCursor = len(b.undoStack)
}

// Insert inserts text at the given byte position.
func (b *Buffer) Insert(text string, pos int) {
	b.edit(Event{Type: ETInsert, Position: pos, InsertText: b.undo.Append(text)})
}

// Delete removes count bytes starting at at.
func (b *Buffer) Delete(at, count int) {
	b.edit(Event{Type: ETDelete, Position: at, DeleteCount: count})
}

// Replace removes num bytes starting at at and inserts replacement in
// their place. If num, clamped to the text, is zero, the call changes
// nothing and records no event (replacement is not inserted).
func (b *Buffer) Replace(at, num int, replacement string) {
	b.edit(Event{
		Type:                ETReplace,
		Position:            at,
		ReplaceReplacement:  b.undo.Append(replacement),
		ReplaceOverwrittenN: num,
	})
}

// MergeLines joins line topLine with the line below it by replacing its
// trailing newline with a single space.
func (b *Buffer) MergeLines(topLine int) {
	if topLine > len(b.lines)-1 {
		return
	}
	if topLine < 0 {
		topLine = 0
	}
	line := b.lines[topLine]
	b.Replace(line.StartOffset+line.Length, 1, " ")
}

// Save writes the buffer's current text back to Name.
func (b *Buffer) Save() error {
	return b.saveAs("")
}

// SaveAs writes the buffer's current text to name, adopts name as the
// buffer's new Name, and clears URI.
func (b *Buffer) SaveAs(name string) error {
	return b.saveAs(name)
}

func (b *Buffer) saveAs(name string) error {
	if name == "" && b.Name == "" {
		return nil
	}
	if name == "" && b.SavedVersion == b.version {
		return nil
	}
	ref := Ref{}
	if name != "" {
		ref = b.undo.Append(name)
	}
	// apply stamps SavedVersion only when the write succeeds; a sentinel
	// tells failure apart from a SaveAs of an already-saved buffer.
	before := b.SavedVersion
	b.SavedVersion = -1
	b.apply(Event{Type: ETSave, SaveFileName: ref})
	if b.SavedVersion == -1 {
		b.SavedVersion = before
		return ederrors.Newf("buffer: failed to save %q", b.Name)
	}
	return nil
}

// Undo applies the inverse of the most recently applied edit, if any,
// without recording a new undo entry.
func (b *Buffer) Undo() {
	if b.undoCursor == 0 {
		return
	}
	b.undoCursor--
	b.apply(invert(b.undoStack[b.undoCursor]))
}

// Redo re-applies the edit at the current undo cursor, if any, without
// recording a new undo entry.
func (b *Buffer) Redo() {
	if b.undoCursor >= len(b.undoStack) {
		return
	}
	// Re-apply the original forward event, not its inverse -- inverting
	// here would undo the same edit twice instead of redoing it.
	b.apply(b.undoStack[b.undoCursor])
	b.undoCursor++
}

// Close tears the buffer down, firing Close first so listeners can
// flush, per the spec's close() contract.
func (b *Buffer) Close() {
	b.apply(Event{Type: ETClose})
}

// WordBoundaryLeft returns the start of the maximal word (or
// non-word) run containing or abutting index.
func (b *Buffer) WordBoundaryLeft(index int) int {
	if index >= len(b.text) {
		index = len(b.text) - 1
	}
	if index < 0 {
		return 0
	}
	word := isWordByte(b.text[index])
	for index > 0 && isWordByte(b.text[index]) == word {
		index--
	}
	if isWordByte(b.text[index]) != word {
		index++
	}
	return index
}

// WordBoundaryRight returns the end of the maximal word (or non-word)
// run starting at index.
func (b *Buffer) WordBoundaryRight(index int) int {
	max := len(b.text)
	if index >= max {
		return max
	}
	word := isWordByte(b.text[index])
	for index < max && isWordByte(b.text[index]) == word {
		index++
	}
	return index
}

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

// BuildIndices re-lexes the buffer (if a language binding is attached)
// and rebuilds the line/token index, firing Indexed. It is a no-op
// if IndexedVersion already equals the current version and an index
// already exists.
func (b *Buffer) BuildIndices() {
	if b.IndexedVersion == b.version && len(b.lines) > 0 {
		return
	}

	if b.binding == nil {
		b.lines = []Line{{StartOffset: 0, Length: len(b.text)}}
		b.tokens = nil
		b.IndexedVersion = b.version
		b.apply(Event{Type: ETIndexed})
		return
	}

	lx := b.binding.NewLexer()
	lx.WhitespaceSignificant = true
	lx.IncludeComments = true
	lx.PushSource(b.text, b.Name)

	var lines []Line
	var tokens []DisplayToken

	lineno := 0
	dix := 0
	cur := Line{StartOffset: 0}
	assignDiagnostics := func(l *Line) {
		l.FirstDiagnostic = 0
		l.NumDiagnostics = 0
		if dix >= len(b.Diagnostics) {
			return
		}
		l.FirstDiagnostic = dix
		for dix < len(b.Diagnostics) && b.Diagnostics[dix].Range.Start.Line == lineno {
			l.NumDiagnostics++
			dix++
		}
	}
	assignDiagnostics(&cur)

	for {
		t := lx.Lex()
		if t.Kind == lexer.EndOfLine || t.Kind == lexer.EndOfFile {
			cur.Length = t.Location.Index - cur.StartOffset
			lines = append(lines, cur)
			if t.Kind == lexer.EndOfFile {
				break
			}
			lineno++
			cur = Line{StartOffset: t.Location.Index + len(t.Text)}
			assignDiagnostics(&cur)
			continue
		}
		if t.Kind == lexer.Whitespace {
			continue
		}
		if cur.NumTokens == 0 {
			cur.FirstToken = len(tokens)
		}
		cur.NumTokens++
		tokens = append(tokens, DisplayToken{
			Index:      t.Location.Index,
			Length:     len(t.Text),
			Line:       lineno,
			StyleIndex: NoStyle,
		})
	}

	b.lines = lines
	b.tokens = tokens
	b.IndexedVersion = b.version
	b.apply(Event{Type: ETIndexed})
}
