package plugin

import (
	"go.uber.org/zap"

	"github.com/gnolang/plint/internal/sink"
	"github.com/gnolang/plint/internal/source"
	tt "github.com/gnolang/plint/internal/types"
)

// DiagnosticInput is what a plugin hands to AddDiagnostics. Filename
// defaults to the file under analysis. Span is passed through untouched.
type DiagnosticInput struct {
	Filename string
	Code     string
	Message  string
	Hint     string
	Span     source.Span
}

// Context is the blackboard shared by every plugin of a session, both while
// factories run and during traversal.
//
// Core-owned state: the current filename and the plugin binding used for
// attribution. Everything stored through Set belongs to plugins and is
// last-write-wins across all of them; State gives each plugin a private
// namespace instead.
//
// A Context is not safe for concurrent use. Callbacks of one traversal run
// one at a time.
type Context struct {
	filename string
	sink     *sink.Sink
	logger   *zap.Logger
	current  *Plugin
	values   map[string]any
	states   map[int]map[string]any
}

// NewContext creates a context writing into s.
func NewContext(logger *zap.Logger, s *sink.Sink) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		sink:   s,
		logger: logger,
		values: make(map[string]any),
		states: make(map[int]map[string]any),
	}
}

// Filename returns the file currently being analyzed. Plugins must read it
// on every call rather than caching it at registration time.
func (c *Context) Filename() string { return c.filename }

// SetFilename is called by the session before each run.
func (c *Context) SetFilename(name string) { c.filename = name }

// Bind attributes subsequent emissions to p. The registry and the
// dispatcher call it around every plugin invocation.
func (c *Context) Bind(p *Plugin) { c.current = p }

// Plugin returns the reference of the currently bound plugin.
func (c *Context) Plugin() tt.PluginRef {
	if c.current == nil {
		return tt.CoreRef
	}
	return c.current.Ref
}

func (c *Context) Logger() *zap.Logger { return c.logger }

func (c *Context) Sink() *sink.Sink { return c.sink }

// AddDiagnostics records a diagnostic attributed to the bound plugin.
func (c *Context) AddDiagnostics(in DiagnosticInput) {
	d := tt.Diagnostic{
		Plugin:   c.Plugin(),
		Filename: in.Filename,
		Code:     in.Code,
		Message:  in.Message,
		Hint:     in.Hint,
		Span:     in.Span,
	}
	if d.Filename == "" {
		d.Filename = c.filename
	}
	if c.current != nil {
		d.Severity = c.current.Severity
	}
	c.sink.Add(d)
}

// Report is shorthand for AddDiagnostics on the current file.
func (c *Context) Report(span source.Span, code, message string) {
	c.AddDiagnostics(DiagnosticInput{Code: code, Message: message, Span: span})
}

// Set stores a value on the shared blackboard.
func (c *Context) Set(key string, v any) { c.values[key] = v }

// Get reads a value from the shared blackboard.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// State returns the private store of the bound plugin. The map persists
// across files for the lifetime of the session.
func (c *Context) State() map[string]any {
	id := c.Plugin().ID
	m, ok := c.states[id]
	if !ok {
		m = make(map[string]any)
		c.states[id] = m
	}
	return m
}
