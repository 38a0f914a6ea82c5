// Package buffer implements the editor's document model: text, the
// append-only undo arena, the lazily-rebuilt line/token index, the
// listener-broadcast event log, and undo/redo by event inversion.
package buffer

// Ref is a stable byte-range reference into a Buffer's undo arena. Refs
// never relocate once created; the arena only grows.
type Ref struct {
	Offset int
	Length int
}

// Arena is an append-only byte store. Buffer owns exactly one Arena for
// its lifetime; it backs every Insert/Delete/Replace event's text
// payload so undo/redo can replay an edit without touching the live
// document text to recover what was there before.
type Arena struct {
	data []byte
}

// Append copies sv into the arena and returns a stable reference to it.
func (a *Arena) Append(sv string) Ref {
	ref := Ref{Offset: len(a.data), Length: len(sv)}
	a.data = append(a.data, sv...)
	return ref
}

// Slice returns the text a Ref points to. A zero-length Ref yields "".
func (a *Arena) Slice(ref Ref) string {
	if ref.Length == 0 {
		return ""
	}
	return string(a.data[ref.Offset : ref.Offset+ref.Length])
}
