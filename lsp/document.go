package lsp

import (
	"encoding/json"

	"github.com/eddy-editor/eddy/ederrors"
)

// Document is the minimal view of an editor buffer the LSP runtime
// needs to synchronise server state, kept as an interface so this
// package never imports buffer (mode owns the glue, breaking what
// would otherwise be an lsp<->buffer import cycle).
type Document interface {
	URI() string
	LanguageID() string
	Version() int
	Text() string
}

// DidOpen sends textDocument/didOpen for doc's full current text.
func (r *Runtime) DidOpen(doc Document) error {
	return r.writeNotification("textDocument/didOpen", map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":        doc.URI(),
			"languageId": doc.LanguageID(),
			"version":    doc.Version(),
			"text":       doc.Text(),
		},
	})
}

// DidChange sends an incremental textDocument/didChange: a single range
// (the span the triggering edit touched, in the text as it stood just
// before the edit) plus that edit's own replacement text -- never
// the whole document, per the single-range content change the wire
// protocol's range-based sync expects.
func (r *Runtime) DidChange(doc Document, rng Range, text string) error {
	return r.writeNotification("textDocument/didChange", map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":     doc.URI(),
			"version": doc.Version(),
		},
		"contentChanges": []map[string]interface{}{
			{"range": rng, "text": text},
		},
	})
}

// DidSave sends textDocument/didSave, including text per the
// includeText-on-save convention most servers request.
func (r *Runtime) DidSave(doc Document) error {
	return r.writeNotification("textDocument/didSave", map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": doc.URI()},
		"text":         doc.Text(),
	})
}

// DidClose sends textDocument/didClose.
func (r *Runtime) DidClose(doc Document) error {
	return r.writeNotification("textDocument/didClose", map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": doc.URI()},
	})
}

type semanticTokensResult struct {
	Data []uint32 `json:"data"`
}

// SemanticTokensFull requests textDocument/semanticTokens/full for doc.
// The response is delivered asynchronously to sender's HandleLSPResponse
// with Method "textDocument/semanticTokens/full"; callers decode its
// Result with DecodeSemanticTokens.
func (r *Runtime) SemanticTokensFull(doc Document, sender Sender) error {
	id := r.registerPending("textDocument/semanticTokens/full", sender)
	return r.writeRequest(id, "textDocument/semanticTokens/full", map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": doc.URI()},
	})
}

// DecodeSemanticTokens unpacks a semanticTokens/full response's raw
// delta-encoded data array: [deltaLine, deltaChar, length, tokenType,
// modifierBitmask] quintuples, relative to the previous token (or to
// 0,0 for the first).
func DecodeSemanticTokens(result json.RawMessage) ([]uint32, error) {
	if len(result) == 0 {
		return nil, nil
	}
	var parsed semanticTokensResult
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, ederrors.Wrap(err, "lsp: decode semantic tokens")
	}
	return parsed.Data, nil
}
