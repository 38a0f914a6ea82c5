package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	got []Response
}

func (r *recordingSender) HandleLSPResponse(resp Response) {
	r.got = append(r.got, resp)
}

func TestPendingTableReusesEmptySlots(t *testing.T) {
	r := New("stub")

	id1 := r.registerPending("textDocument/hover", nil)
	id2 := r.registerPending("textDocument/definition", nil)

	_, ok := r.takePending(id1)
	require.True(t, ok, "expected id1 to be pending")

	// id1's slot is now empty; the next registration should reuse it
	// rather than growing the table.
	id3 := r.registerPending("textDocument/references", nil)
	assert.Len(t, r.pending, 2, "expected the empty slot to be reused")

	p2, ok := r.takePending(id2)
	require.True(t, ok)
	assert.Equal(t, "textDocument/definition", p2.method)

	p3, ok := r.takePending(id3)
	require.True(t, ok)
	assert.Equal(t, "textDocument/references", p3.method)

	_, ok = r.takePending(id1)
	assert.False(t, ok, "expected id1 to already be taken")
}

func TestTakePendingMissingIDReturnsFalse(t *testing.T) {
	r := New("stub")
	_, ok := r.takePending(999)
	assert.False(t, ok)
}

func TestHandleFrameRoutesResponseToRegisteredSender(t *testing.T) {
	r := New("stub")
	sender := &recordingSender{}
	id := r.registerPending("textDocument/hover", sender)

	body, err := json.Marshal(rpcMessage{
		JSONRPC: "2.0",
		ID:      &id,
		Result:  json.RawMessage(`{"contents":"docs"}`),
	})
	require.NoError(t, err)

	r.handleFrame(body)
	r.Pump()

	require.Len(t, sender.got, 1)
	assert.Equal(t, "textDocument/hover", sender.got[0].Method)
}

func TestHandleFrameRoutesGlobalNotification(t *testing.T) {
	r := New("stub")
	var seen []string
	r.OnNotification("textDocument/publishDiagnostics", func(n Notification) {
		seen = append(seen, n.Method)
	})

	body, err := json.Marshal(rpcMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  json.RawMessage(`{"uri":"file:///a.go"}`),
	})
	require.NoError(t, err)

	r.handleFrame(body)
	r.Pump()

	require.Len(t, seen, 1)
	assert.Equal(t, "textDocument/publishDiagnostics", seen[0])
}

// TestInitializeIsReentrant exercises the scenario where several callers
// race to Initialize the same Runtime: all must block on the one-shot
// barrier and see the same result, and the child must receive exactly
// one "initialize" request regardless of how many callers there are.
func TestInitializeIsReentrant(t *testing.T) {
	r := New("stub")

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	var spawnCount int32
	r.spawn = func() error {
		atomic.AddInt32(&spawnCount, 1)
		r.stdin = stdinW
		r.stdoutR = stdoutR
		r.stderrR = io.NopCloser(strings.NewReader(""))
		return nil
	}

	var methodsMu sync.Mutex
	var methods []string
	serverDone := make(chan struct{})

	// Fake server: reply to "initialize" with a canned legend, record
	// every method it sees, and signal once it has seen "initialized".
	go func() {
		var scanner frameScanner
		chunk := make([]byte, 4096)
		for {
			n, err := stdinR.Read(chunk)
			if n > 0 {
				scanner.feed(chunk[:n])
				for {
					body, ok := scanner.next()
					if !ok {
						break
					}
					var msg rpcMessage
					if jsonErr := json.Unmarshal(body, &msg); jsonErr == nil {
						methodsMu.Lock()
						methods = append(methods, msg.Method)
						methodsMu.Unlock()

						if msg.Method == "initialize" {
							resp, _ := json.Marshal(rpcMessage{
								JSONRPC: "2.0",
								ID:      msg.ID,
								Result: json.RawMessage(
									`{"capabilities":{"semanticTokensProvider":{"legend":{"tokenTypes":["keyword"],"tokenModifiers":[]}}}}`,
								),
							})
							var frame bytes.Buffer
							fmt.Fprintf(&frame, "Content-Length: %d\r\n\r\n", len(resp))
							frame.Write(resp)
							stdoutW.Write(frame.Bytes())
						}
						if msg.Method == "initialized" {
							close(serverDone)
						}
					}
				}
				scanner.compact()
			}
			if err != nil {
				return
			}
		}
	}()

	const callers = 5
	results := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i] = r.Initialize(context.Background(), "/project")
		}()
	}
	wg.Wait()
	<-serverDone // wait for the child to have fully processed "initialized" too

	for i, err := range results {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&spawnCount), "expected exactly one caller to spawn the child process")

	methodsMu.Lock()
	defer methodsMu.Unlock()
	var initCount int
	for _, m := range methods {
		if m == "initialize" {
			initCount++
		}
	}
	assert.Equal(t, 1, initCount, "expected exactly one initialize request written to the child, got %v", methods)
	assert.Equal(t, Ready, r.State())
	assert.Equal(t, []string{"keyword"}, r.Capabilities.SemanticTokenTypes)
}

func TestHandleFrameInitializeResponseIsNotEnqueued(t *testing.T) {
	r := New("stub")
	r.mu.Lock()
	r.state = Starting
	r.mu.Unlock()
	id := r.registerPending("initialize", nil)

	body, err := json.Marshal(rpcMessage{
		JSONRPC: "2.0",
		ID:      &id,
		Result:  json.RawMessage(`{"capabilities":{}}`),
	})
	require.NoError(t, err)

	r.handleFrame(body)

	assert.Equal(t, Ready, r.State())
	select {
	case d := <-r.Submissions:
		t.Fatalf("expected initialize response to bypass Submissions, got %+v", d)
	default:
	}
}
