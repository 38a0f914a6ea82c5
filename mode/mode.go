// Package mode binds a Buffer to a language: a lexer factory for
// syntax highlighting and the LSP runtime that provides diagnostics
// and semantic tokens for it. It is the explicit glue the original's
// global lsp_on_open/lsp_did_save/lsp_did_close/lsp_did_change free
// functions implied -- reshaped so a buffer never needs to know about
// LSP, and the LSP runtime never needs to know about buffers, only the
// narrow Document/LanguageBinding interfaces each side already exposes.
package mode

import (
	"context"
	"strings"

	"github.com/eddy-editor/eddy/buffer"
	"github.com/eddy-editor/eddy/ederrors"
	"github.com/eddy-editor/eddy/elog"
	"github.com/eddy-editor/eddy/lexer"
	"github.com/eddy-editor/eddy/lsp"
)

// Language describes one supported language: its display name, the
// file extensions that select it, a lexer grammar, and the command
// line for its LSP server.
type Language struct {
	Name       string
	Extensions []string
	Grammar    *lexer.Language
	Command    string
	Args       []string
}

// Matches reports whether path's extension selects this language.
func (l Language) Matches(path string) bool {
	for _, ext := range l.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Mode attaches a Buffer to a Language: it supplies the buffer's
// lexer (via LanguageBinding), tracks the LSP runtime for the
// language, and mirrors buffer edits to the server as did_change /
// did_save / did_close notifications, requesting fresh semantic
// tokens whenever the buffer re-indexes.
type Mode struct {
	lang *Language
	buf  *buffer.Buffer
	rt   *lsp.Runtime

	styleOf func(tokenType string) (int, bool)
}

// Attach binds buf to lang, wiring buffer listeners to the given
// runtime (already Initialized by the caller -- Mode does not own the
// runtime's lifecycle, only its per-document traffic). themeStyle
// maps a semantic-token type name to a display style index; pass nil
// to leave all tokens unstyled.
func Attach(buf *buffer.Buffer, lang *Language, rt *lsp.Runtime, themeStyle func(tokenType string) (int, bool)) *Mode {
	m := &Mode{lang: lang, buf: buf, rt: rt, styleOf: themeStyle}
	buf.SetLanguageBinding(lexerBinding{lang.Grammar})
	buf.AddListener(m.onEvent)
	return m
}

type lexerBinding struct{ grammar *lexer.Language }

func (lb lexerBinding) NewLexer() *lexer.Lexer { return lexer.New(lb.grammar) }

// toLSPRange converts a buffer.Range (the editor's own line/column type)
// into the wire Position/Range shape did_change sends.
func toLSPRange(r buffer.Range) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: r.Start.Line, Character: r.Start.Column},
		End:   lsp.Position{Line: r.End.Line, Character: r.End.Column},
	}
}

// URI, LanguageID, Version, and Text implement lsp.Document.
func (m *Mode) URI() string        { return "file://" + m.buf.Name }
func (m *Mode) LanguageID() string { return m.lang.Name }
func (m *Mode) Version() int       { return m.buf.Version() }
func (m *Mode) Text() string       { return m.buf.Text() }

// HandleLSPResponse implements lsp.Sender for requests Mode itself
// originated (currently only semantic-tokens/full).
func (m *Mode) HandleLSPResponse(resp lsp.Response) {
	if resp.Method != "textDocument/semanticTokens/full" {
		return
	}
	if resp.Err != nil {
		elog.Warnw("semantic tokens request failed", "language", m.lang.Name, "code", resp.Err.Code, "message", resp.Err.Message)
		return
	}
	data, err := lsp.DecodeSemanticTokens(resp.Result)
	if err != nil {
		elog.Warnw("semantic tokens decode failed", "language", m.lang.Name, "error", err)
		return
	}
	legend := m.rt.Capabilities.SemanticTokenTypes
	m.buf.ApplySemanticTokens(data, func(typeIndex int) (int, bool) {
		if typeIndex < 0 || typeIndex >= len(legend) || m.styleOf == nil {
			return buffer.NoStyle, false
		}
		return m.styleOf(legend[typeIndex])
	})
}

// Open sends textDocument/didOpen for the buffer's current contents --
// call this once after Attach, when the buffer is first shown.
func (m *Mode) Open() error {
	if m.rt == nil {
		return nil
	}
	return m.rt.DidOpen(m)
}

func (m *Mode) onEvent(b *buffer.Buffer, e buffer.Event) {
	if m.rt == nil {
		return
	}
	switch e.Type {
	case buffer.ETInsert:
		if err := m.rt.DidChange(m, toLSPRange(e.Range), b.TextAt(e.InsertText)); err != nil {
			elog.Warnw("did_change notification failed", "language", m.lang.Name, "error", err)
		}
	case buffer.ETDelete:
		if err := m.rt.DidChange(m, toLSPRange(e.Range), ""); err != nil {
			elog.Warnw("did_change notification failed", "language", m.lang.Name, "error", err)
		}
	case buffer.ETReplace:
		if err := m.rt.DidChange(m, toLSPRange(e.Range), b.TextAt(e.ReplaceReplacement)); err != nil {
			elog.Warnw("did_change notification failed", "language", m.lang.Name, "error", err)
		}
	case buffer.ETSave:
		if err := m.rt.DidSave(m); err != nil {
			elog.Warnw("did_save notification failed", "language", m.lang.Name, "error", err)
		}
	case buffer.ETClose:
		if err := m.rt.DidClose(m); err != nil {
			elog.Warnw("did_close notification failed", "language", m.lang.Name, "error", err)
		}
	case buffer.ETIndexed:
		if err := m.rt.SemanticTokensFull(m, m); err != nil {
			elog.Warnw("semantic tokens request failed", "language", m.lang.Name, "error", err)
		}
	}
}

// Registry selects a Language by file path, matching the longest
// extension among registered languages so e.g. ".test.go" (were it
// ever registered) would win over ".go".
type Registry struct {
	languages []*Language
}

// NewRegistry returns an empty language registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds lang to the registry.
func (r *Registry) Register(lang *Language) { r.languages = append(r.languages, lang) }

// ForPath returns the language whose extension list matches path.
func (r *Registry) ForPath(path string) (*Language, bool) {
	var best *Language
	for _, l := range r.languages {
		if !l.Matches(path) {
			continue
		}
		if best == nil || longestExtMatch(l, path) > longestExtMatch(best, path) {
			best = l
		}
	}
	return best, best != nil
}

func longestExtMatch(l *Language, path string) int {
	best := 0
	for _, ext := range l.Extensions {
		if strings.HasSuffix(path, ext) && len(ext) > best {
			best = len(ext)
		}
	}
	return best
}

// ErrUnsupportedLanguage is returned by callers that require a match
// from Registry.ForPath but found none.
var ErrUnsupportedLanguage = ederrors.New("mode: no language registered for this file")

// InitializeServer starts (or reuses) rt for projectDir.
func InitializeServer(ctx context.Context, rt *lsp.Runtime, projectDir string) error {
	return rt.Initialize(ctx, projectDir)
}
