// Package editorctx provides the explicit replacement for the
// original's process-wide statics (eddy, app, the_lsp): a single
// Context struct threaded through operations, owning the set of open
// buffers, the language registry, and one LSP runtime per language
// (started lazily, on first use of that language).
package editorctx

import (
	"context"
	"sync"

	"github.com/eddy-editor/eddy/buffer"
	"github.com/eddy-editor/eddy/econfig"
	"github.com/eddy-editor/eddy/ederrors"
	"github.com/eddy-editor/eddy/elog"
	"github.com/eddy-editor/eddy/lsp"
	"github.com/eddy-editor/eddy/mode"
)

// OpenDocument pairs a buffer with the mode glue attaching it to its
// language and LSP runtime.
type OpenDocument struct {
	Buffer *buffer.Buffer
	Mode   *mode.Mode
}

// Context owns everything a running editor session needs: config,
// the language registry, open documents, and the per-language LSP
// runtimes backing them. There is exactly one Context per process;
// every operation that used to read a global now takes one of these.
type Context struct {
	Config   *econfig.Config
	Registry *mode.Registry

	mu        sync.Mutex
	documents map[string]*OpenDocument // keyed by the path given to Open
	runtimes  map[string]*lsp.Runtime  // keyed by language name
}

// New returns a Context configured from cfg with an empty registry and
// no open documents; callers register languages before opening files.
func New(cfg *econfig.Config) *Context {
	return &Context{
		Config:    cfg,
		Registry:  mode.NewRegistry(),
		documents: make(map[string]*OpenDocument),
		runtimes:  make(map[string]*lsp.Runtime),
	}
}

// runtimeFor returns the (lazily started) LSP runtime for lang,
// spawning its server process on first use.
func (c *Context) runtimeFor(ctx context.Context, lang *mode.Language) (*lsp.Runtime, error) {
	c.mu.Lock()
	rt, ok := c.runtimes[lang.Name]
	if !ok {
		// Prefer the config's current entry, so a command line changed by
		// econfig's hot reload reaches runtimes started after the change.
		command, args := lang.Command, lang.Args
		if srv, found := c.Config.ServerFor(lang.Name); found {
			command, args = srv.Command, srv.Args
		}
		rt = lsp.New(command, args...)
		c.runtimes[lang.Name] = rt
	}
	c.mu.Unlock()

	if err := rt.Initialize(ctx, c.Config.ProjectDir); err != nil {
		return nil, ederrors.Wrapf(err, "editorctx: starting %s language server", lang.Name)
	}
	return rt, nil
}

// Open loads path into a new buffer, attaches it to its matching
// language (if the project config names an LSP server for it), starts
// that language's runtime on demand, and registers the document.
// Opening a file with no matching language still succeeds, just
// without indexing or LSP support.
func (c *Context) Open(ctx context.Context, path string) (*OpenDocument, error) {
	c.mu.Lock()
	if existing, ok := c.documents[path]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.mu.Unlock()

	buf, err := buffer.Open(path)
	if err != nil {
		return nil, ederrors.Wrapf(err, "editorctx: open %s", path)
	}

	doc := &OpenDocument{Buffer: buf}

	lang, ok := c.Registry.ForPath(path)
	if ok {
		rt, err := c.runtimeFor(ctx, lang)
		if err != nil {
			elog.Warnw("language server unavailable, opening without LSP support", "path", path, "language", lang.Name, "error", err)
		} else {
			m := mode.Attach(buf, lang, rt, nil)
			if err := m.Open(); err != nil {
				elog.Warnw("did_open notification failed", "path", path, "error", err)
			}
			doc.Mode = m
		}
	}

	c.mu.Lock()
	c.documents[path] = doc
	c.mu.Unlock()

	return doc, nil
}

// Close releases a document: closes its buffer (firing ETClose, which
// mode mirrors to did_close) and forgets it.
func (c *Context) Close(path string) {
	c.mu.Lock()
	doc, ok := c.documents[path]
	delete(c.documents, path)
	c.mu.Unlock()
	if !ok {
		return
	}
	doc.Buffer.Close()
}

// Documents returns the paths, as given to Open, of all currently open
// documents.
func (c *Context) Documents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	paths := make([]string, 0, len(c.documents))
	for p := range c.documents {
		paths = append(paths, p)
	}
	return paths
}

// Shutdown stops every running language server runtime, in no
// particular order, without stopping early on an error; it returns the
// first error encountered.
func (c *Context) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	runtimes := make([]*lsp.Runtime, 0, len(c.runtimes))
	for _, rt := range c.runtimes {
		runtimes = append(runtimes, rt)
	}
	c.mu.Unlock()

	var firstErr error
	for _, rt := range runtimes {
		if err := rt.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Pump drains every running runtime's submission queue once -- the
// cooperative main loop's single per-tick call into the LSP layer.
func (c *Context) Pump() {
	c.mu.Lock()
	runtimes := make([]*lsp.Runtime, 0, len(c.runtimes))
	for _, rt := range c.runtimes {
		runtimes = append(runtimes, rt)
	}
	c.mu.Unlock()

	for _, rt := range runtimes {
		rt.Pump()
	}
}
