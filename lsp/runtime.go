// Package lsp implements a single language server's JSON-RPC-over-stdio
// client: the Uninitialised->Starting->Ready->Shut state machine, the
// Content-Length wire codec, the slot-reusing pending-request table, and
// the document-sync helpers mode glue drives.
package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/google/uuid"

	"github.com/eddy-editor/eddy/ederrors"
	"github.com/eddy-editor/eddy/elog"
)

// State is a runtime's position in the ready/barrier state machine.
type State int

const (
	Uninitialised State = iota
	Starting
	Ready
	Shut
)

func (s State) String() string {
	switch s {
	case Starting:
		return "Starting"
	case Ready:
		return "Ready"
	case Shut:
		return "Shut"
	default:
		return "Uninitialised"
	}
}

// Sender receives the response to a request it originated, demultiplexed
// by the pending-request table. Implementations must be total -- the
// runtime does not catch panics from a Sender (mirrors the buffer
// package's listener contract).
type Sender interface {
	HandleLSPResponse(resp Response)
}

// Dispatch is one unit of work handed from the read goroutine to
// whatever drains Submissions -- the only cross-goroutine interface
// besides the one-shot initialize barrier.
type Dispatch struct {
	Response     *Response
	Notification *Notification
	Sender       Sender // nil for global notifications
}

type pendingRequest struct {
	id     int
	method string
	sender Sender
}

// Runtime manages one language server child process.
type Runtime struct {
	Command string
	Args    []string

	mu    sync.Mutex
	cond  *sync.Cond
	state State

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdoutR io.ReadCloser
	stderrR io.ReadCloser
	nextID  int
	pending []pendingRequest

	// spawn starts the child process and wires stdin/stdoutR/stderrR.
	// New sets this to spawnProcess; tests substitute a fake that wires
	// in-memory pipes instead of exec'ing a real server, the seam
	// Initialize's reentrancy guarantee is exercised through.
	spawn func() error

	Capabilities ServerCapabilities

	Submissions chan Dispatch

	notifyMu      sync.Mutex
	notifications map[string]func(Notification)
}

// New returns a runtime for the given server command line. Start it
// with Initialize; it does nothing until then.
func New(command string, args ...string) *Runtime {
	r := &Runtime{
		Command:       command,
		Args:          args,
		Submissions:   make(chan Dispatch, 64),
		notifications: make(map[string]func(Notification)),
	}
	r.cond = sync.NewCond(&r.mu)
	r.spawn = r.spawnProcess
	return r
}

// State returns the runtime's current phase.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// OnNotification registers the handler invoked (via the submission
// queue) for an unsolicited server notification of the given method,
// e.g. "textDocument/publishDiagnostics".
func (r *Runtime) OnNotification(method string, fn func(Notification)) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	r.notifications[method] = fn
}

// Initialize is idempotent: if Ready, returns immediately. If another
// caller's Initialize is already Starting, blocks on the one-shot
// barrier. Otherwise it spawns the child process, sends one
// "initialize" request, and blocks until the response arrives (handled
// specially by the read goroutine, which also sends "initialized" and
// transitions to Ready) or ctx is done.
func (r *Runtime) Initialize(ctx context.Context, projectDir string) error {
	r.mu.Lock()
	switch r.state {
	case Ready:
		r.mu.Unlock()
		return nil
	case Starting:
		for r.state == Starting {
			r.cond.Wait()
		}
		ready := r.state == Ready
		r.mu.Unlock()
		if !ready {
			return ederrors.New("lsp: initialize failed")
		}
		return nil
	case Shut:
		r.mu.Unlock()
		return ederrors.New("lsp: runtime is shut down")
	}
	r.state = Starting
	r.mu.Unlock()

	if err := r.spawn(); err != nil {
		r.mu.Lock()
		r.state = Uninitialised
		r.cond.Broadcast()
		r.mu.Unlock()
		return ederrors.Wrap(err, "lsp: failed to start server")
	}

	go r.readLoop()

	id := r.registerPending("initialize", nil)
	params := initializeParams(projectDir)
	if err := r.writeRequest(id, "initialize", params); err != nil {
		r.mu.Lock()
		r.state = Uninitialised
		r.cond.Broadcast()
		r.mu.Unlock()
		return ederrors.Wrap(err, "lsp: failed to send initialize")
	}

	done := make(chan struct{})
	go func() {
		r.mu.Lock()
		for r.state == Starting {
			r.cond.Wait()
		}
		r.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		if r.State() != Ready {
			return ederrors.New("lsp: initialize failed")
		}
		return nil
	case <-ctx.Done():
		return ederrors.Wrap(ctx.Err(), "lsp: initialize timed out")
	}
}

func initializeParams(projectDir string) map[string]interface{} {
	return map[string]interface{}{
		"processId": nil,
		"rootUri":   "file://" + projectDir,
		"capabilities": map[string]interface{}{
			"textDocument": map[string]interface{}{
				"synchronization": map[string]interface{}{
					"didSave": true,
				},
				"semanticTokens": map[string]interface{}{
					"requests": map[string]interface{}{"full": true},
					"tokenTypes": []string{
						"comment", "keyword", "variable", "type", "string", "number", "function",
					},
					"tokenModifiers":        []string{},
					"multilineTokenSupport": true,
				},
			},
		},
	}
}

func (r *Runtime) spawnProcess() error {
	cmd := exec.Command(r.Command, r.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return ederrors.Wrap(err, "stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return ederrors.Wrap(err, "stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return ederrors.Wrap(err, "stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		return ederrors.Wrap(err, "start server process")
	}
	r.cmd = cmd
	r.stdin = stdin
	r.stdoutR = stdout
	r.stderrR = stderr
	go r.stderrLoop()
	return nil
}

// Shutdown sends the shutdown request and exit notification, then
// waits for the child process to exit.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.state == Shut {
		r.mu.Unlock()
		return nil
	}
	r.state = Shut
	cmd := r.cmd
	stdin := r.stdin
	r.mu.Unlock()

	id := r.registerPending("shutdown", nil)
	_ = r.writeRequest(id, "shutdown", nil)
	_ = r.writeNotification("exit", nil)

	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ederrors.Wrap(ctx.Err(), "lsp: timed out waiting for server to exit")
	}
}

// ForceKill terminates the child process without the shutdown handshake.
func (r *Runtime) ForceKill() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Shut {
		return nil
	}
	r.state = Shut
	if r.stdin != nil {
		_ = r.stdin.Close()
		r.stdin = nil
	}
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	return r.cmd.Process.Kill()
}

func (r *Runtime) registerPending(method string, sender Sender) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	for i := range r.pending {
		if r.pending[i].method == "" {
			r.pending[i] = pendingRequest{id: id, method: method, sender: sender}
			return id
		}
	}
	r.pending = append(r.pending, pendingRequest{id: id, method: method, sender: sender})
	return id
}

func (r *Runtime) takePending(id int) (pendingRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.pending {
		if r.pending[i].method != "" && r.pending[i].id == id {
			p := r.pending[i]
			r.pending[i] = pendingRequest{}
			return p, true
		}
	}
	return pendingRequest{}, false
}

func (r *Runtime) writeRequest(id int, method string, params interface{}) error {
	corr := uuid.New()
	elog.Debugw("lsp request", "method", method, "id", id, "correlation", corr.String())
	return r.writeMessage(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
}

func (r *Runtime) writeNotification(method string, params interface{}) error {
	corr := uuid.New()
	elog.Debugw("lsp notification", "method", method, "correlation", corr.String())
	return r.writeMessage(rpcRequest{JSONRPC: "2.0", Method: method, Params: params})
}

func (r *Runtime) writeMessage(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return ederrors.Wrap(err, "lsp: marshal request")
	}
	r.mu.Lock()
	stdin := r.stdin
	r.mu.Unlock()
	if stdin == nil {
		return ederrors.New("lsp: not started")
	}
	var frame bytes.Buffer
	fmt.Fprintf(&frame, "Content-Length: %d\r\n\r\n", len(data))
	frame.Write(data)
	_, err = stdin.Write(frame.Bytes())
	return err
}

// readLoop feeds the frame scanner from the server's stdout and, for
// each complete frame, either resolves the initialize barrier directly
// (the one suspension point this runtime exposes) or enqueues a
// Dispatch onto Submissions for the main loop to drain. It never
// touches buffer or mode state itself.
func (r *Runtime) readLoop() {
	reader := bufio.NewReaderSize(r.stdoutR, 64*1024)
	var scanner frameScanner
	chunk := make([]byte, 32*1024)

	for {
		n, err := reader.Read(chunk)
		if n > 0 {
			scanner.feed(chunk[:n])
			for {
				body, ok := scanner.next()
				if !ok {
					break
				}
				r.handleFrame(body)
			}
			scanner.compact()
		}
		if err != nil {
			return
		}
	}
}

func (r *Runtime) handleFrame(body []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		elog.Warnw("lsp: failed to decode frame", "error", err, "raw", string(body))
		return
	}

	if msg.ID != nil {
		pending, ok := r.takePending(*msg.ID)
		if !ok {
			elog.Warnw("lsp: no pending request for response id", "id", *msg.ID)
			return
		}
		if pending.method == "initialize" {
			r.completeInitialize(msg)
			return
		}
		resp := Response{Method: pending.method, Result: msg.Result, Err: msg.Error}
		if pending.sender != nil {
			r.Submissions <- Dispatch{Response: &resp, Sender: pending.sender}
		}
		return
	}

	if msg.Method != "" {
		note := Notification{Method: msg.Method, Params: msg.Params}
		r.Submissions <- Dispatch{Notification: &note}
	}
}

func (r *Runtime) completeInitialize(msg rpcMessage) {
	if msg.Error == nil && msg.Result != nil {
		var result initializeResult
		if err := json.Unmarshal(msg.Result, &result); err != nil {
			elog.Warnw("lsp: failed to decode initialize result", "error", err)
		} else if result.Capabilities.SemanticTokensProvider != nil {
			r.Capabilities.SemanticTokenTypes = result.Capabilities.SemanticTokensProvider.Legend.TokenTypes
			r.Capabilities.SemanticTokenModifiers = result.Capabilities.SemanticTokensProvider.Legend.TokenModifiers
		}
	}
	_ = r.writeNotification("initialized", map[string]interface{}{})
	r.mu.Lock()
	r.state = Ready
	r.cond.Broadcast()
	r.mu.Unlock()
}

// Pump drains currently-queued dispatches without blocking, the
// cooperative main loop's per-tick call into this runtime.
func (r *Runtime) Pump() {
	for {
		select {
		case d := <-r.Submissions:
			r.dispatch(d)
		default:
			return
		}
	}
}

func (r *Runtime) dispatch(d Dispatch) {
	if d.Response != nil && d.Sender != nil {
		d.Sender.HandleLSPResponse(*d.Response)
		return
	}
	if d.Notification != nil {
		r.notifyMu.Lock()
		fn := r.notifications[d.Notification.Method]
		r.notifyMu.Unlock()
		if fn != nil {
			fn(*d.Notification)
		}
	}
}

func (r *Runtime) stderrLoop() {
	r.mu.Lock()
	stderr := r.stderrR
	r.mu.Unlock()
	if stderr == nil {
		return
	}
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			elog.Debugw("lsp server stderr", "line", line)
		}
	}
}
