package buffer

// Position is a zero-based line/column pair, matching the LSP wire
// convention used throughout the mode/lsp packages.
type Position struct {
	Line   int
	Column int
}

// Range is a half-open [Start, End) span stamped onto every applied
// Insert/Delete/Replace event from the text as it stood before the
// edit, so listeners always see coordinates valid at the moment the
// event fires.
type Range struct {
	Start Position
	End   Position
}

// EventType tags an Event's active variant.
type EventType int

const (
	ETInsert EventType = iota
	ETDelete
	ETReplace
	ETSave
	ETClose
	ETIndexed
	ETOther
)

func (t EventType) String() string {
	switch t {
	case ETInsert:
		return "Insert"
	case ETDelete:
		return "Delete"
	case ETReplace:
		return "Replace"
	case ETSave:
		return "Save"
	case ETClose:
		return "Close"
	case ETIndexed:
		return "Indexed"
	default:
		return "Other"
	}
}

// Event is a tagged record describing one applied mutation (or
// lifecycle occurrence) of a Buffer. Only the fields relevant to Type
// are meaningful. Range is computed during apply, from the text as it
// stood *before* the edit.
type Event struct {
	Type     EventType
	Position int
	Range    Range

	InsertText Ref // ETInsert: text to insert

	DeleteCount   int // ETDelete: number of bytes to remove
	DeleteDeleted Ref // ETDelete: captured overwritten bytes (for undo)

	ReplaceOverwritten  Ref // ETReplace: captured overwritten bytes
	ReplaceReplacement  Ref // ETReplace: new bytes
	ReplaceOverwrittenN int // ETReplace: length of run to remove, before capture

	SaveFileName Ref // ETSave: optional new name
}

// invert computes the event that undoes this one: Insert<->Delete, and
// overwritten<->replacement for Replace. Save/Close/Indexed/Other have
// no inverse and are never pushed onto the undo stack.
func invert(e Event) Event {
	switch e.Type {
	case ETInsert:
		return Event{Type: ETDelete, Position: e.Position, DeleteCount: e.InsertText.Length}
	case ETDelete:
		return Event{Type: ETInsert, Position: e.Position, InsertText: e.DeleteDeleted}
	case ETReplace:
		return Event{
			Type:                ETReplace,
			Position:            e.Position,
			ReplaceOverwritten:  e.ReplaceReplacement,
			ReplaceReplacement:  e.ReplaceOverwritten,
			ReplaceOverwrittenN: e.ReplaceReplacement.Length,
		}
	default:
		return Event{Type: ETOther}
	}
}
