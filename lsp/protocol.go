package lsp

import "encoding/json"

// rpcRequest is a JSON-RPC 2.0 request or notification (ID omitted for
// notifications).
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcMessage is the shape of any frame arriving over stdout: either a
// response (has "id") or a notification (has "method" and no "id").
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError mirrors a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Position is a zero-based line/character pair, the LSP wire convention.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open LSP range.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Response is handed to a Sender for a request it originated, with the
// JSON-RPC envelope already stripped.
type Response struct {
	Method string
	Result json.RawMessage
	Err    *RPCError
}

// Notification is handed to a registered handler for an unsolicited
// server notification.
type Notification struct {
	Method string
	Params json.RawMessage
}

// ServerCapabilities captures the subset of InitializeResult.capabilities
// the runtime cares about: the semantic-tokens legend, used to map a
// server's reported tokenTypes to slot indices in semantic-token
// responses.
type ServerCapabilities struct {
	SemanticTokenTypes     []string `json:"-"`
	SemanticTokenModifiers []string `json:"-"`
}

type initializeResult struct {
	Capabilities struct {
		SemanticTokensProvider *struct {
			Legend struct {
				TokenTypes     []string `json:"tokenTypes"`
				TokenModifiers []string `json:"tokenModifiers"`
			} `json:"legend"`
		} `json:"semanticTokensProvider"`
	} `json:"capabilities"`
	ServerInfo *struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
}
