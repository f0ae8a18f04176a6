package internal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/dispatch"
	"github.com/gnolang/plint/internal/goast"
	"github.com/gnolang/plint/internal/lints"
	"github.com/gnolang/plint/internal/nolint"
	"github.com/gnolang/plint/internal/plugin"
	"github.com/gnolang/plint/internal/sink"
	tt "github.com/gnolang/plint/internal/types"
)

// PluginEntry names a plugin to load and the severity of what it reports.
type PluginEntry struct {
	ID       string
	Severity tt.Severity
}

// Entries turns plugin identifiers into entries with error severity,
// applying overrides from rules.
func Entries(ids []string, rules map[string]tt.ConfigRule) []PluginEntry {
	entries := make([]PluginEntry, 0, len(ids))
	for _, id := range ids {
		e := PluginEntry{ID: id, Severity: tt.SeverityError}
		if rule, ok := rules[id]; ok {
			e.Severity = rule.Severity
		}
		entries = append(entries, e)
	}
	return entries
}

type options struct {
	catalog       lints.Catalog
	failFast      bool
	reportUnused  bool
	fileDirective string
	lineDirective string
	values        map[string]any
}

// Option configures an Engine.
type Option func(*options)

// WithCatalog resolves plugin identifiers against c instead of the
// built-in catalog.
func WithCatalog(c lints.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithFailFast makes NewEngine return the first startup error instead of
// skipping the faulty plugin.
func WithFailFast(v bool) Option {
	return func(o *options) { o.failFast = v }
}

// WithReportUnusedDirectives reports ignore directives that suppressed
// nothing.
func WithReportUnusedDirectives(v bool) Option {
	return func(o *options) { o.reportUnused = v }
}

// WithDirectives overrides the names of the file and line ignore
// directives. Empty names keep the defaults.
func WithDirectives(file, line string) Option {
	return func(o *options) {
		if file != "" {
			o.fileDirective = file
		}
		if line != "" {
			o.lineDirective = line
		}
	}
}

// WithValue seeds the shared blackboard before any factory runs.
func WithValue(key string, v any) Option {
	return func(o *options) { o.values[key] = v }
}

// Engine is a lint session: a fixed set of plugins loaded once and run
// against any number of files, one at a time.
type Engine struct {
	logger    *zap.Logger
	opts      options
	sink      *sink.Sink
	ctx       *plugin.Context
	table     *plugin.Table
	startup   []error
	initDiags []tt.Diagnostic
	known     map[string]struct{}
}

// NewEngine loads entries in order. A plugin that cannot be resolved, fails
// to initialize or returns an invalid descriptor is left out and recorded in
// StartupErrors; the others still load. Entries with SeverityOff are not
// loaded at all but keep their index.
func NewEngine(logger *zap.Logger, entries []PluginEntry, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{
		catalog:       lints.Default(),
		fileDirective: nolint.DefaultFileDirective,
		lineDirective: nolint.DefaultLineDirective,
		values:        make(map[string]any),
	}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	s := sink.New()
	ctx := plugin.NewContext(logger, s)
	for k, v := range o.values {
		ctx.Set(k, v)
	}

	reg := plugin.NewRegistry(ctx)
	for _, entry := range entries {
		if entry.Severity == tt.SeverityOff {
			logger.Debug("plugin disabled", zap.String("plugin", entry.ID))
			reg.Skip()
			continue
		}
		factory, err := o.catalog.Resolve(entry.ID)
		if err != nil {
			err = reg.Fail(plugin.InvalidPlugin, entry.ID, err)
		} else {
			_, err = reg.Register(entry.ID, factory, entry.Severity)
		}
		if err != nil && o.failFast {
			return nil, err
		}
	}

	e := &Engine{
		logger:    logger,
		opts:      o,
		sink:      s,
		ctx:       ctx,
		table:     reg.Build(),
		startup:   reg.Errors(),
		initDiags: s.Drain(),
		known:     knownNames(o.catalog, reg.Plugins()),
	}
	logger.Debug("engine ready",
		zap.Int("plugins", len(e.table.Plugins())),
		zap.Int("startupErrors", len(e.startup)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return e, nil
}

// StartupErrors returns the faults met while loading plugins, in entry
// order.
func (e *Engine) StartupErrors() []error { return e.startup }

// InitDiagnostics returns what factories reported while being registered.
func (e *Engine) InitDiagnostics() []tt.Diagnostic { return e.initDiags }

// Plugins returns the loaded plugins in load order.
func (e *Engine) Plugins() []tt.PluginRef {
	refs := make([]tt.PluginRef, 0, len(e.table.Plugins()))
	for _, p := range e.table.Plugins() {
		refs = append(refs, p.Ref)
	}
	return refs
}

// Context exposes the shared plugin context, mostly for hosts that want to
// read what plugins published on the blackboard.
func (e *Engine) Context() *plugin.Context { return e.ctx }

// Run lints one tree. The result holds every diagnostic emitted during the
// traversal and the OnEnd phase, in emission order, minus those suppressed by
// ignore directives when root is a Program. Directive entries naming no
// known plugin or code are reported after them.
func (e *Engine) Run(root ast.Node, filename string) []tt.Diagnostic {
	start := time.Now()
	e.ctx.SetFilename(filename)
	dispatch.Walk(root, e.table, e.ctx)
	diags := e.sink.Drain()

	if prog, ok := root.(*ast.Program); ok {
		emitted := make(map[string]struct{})
		for _, d := range diags {
			emitted[d.Code] = struct{}{}
		}
		known := func(name string) bool {
			if _, ok := e.known[name]; ok {
				return true
			}
			_, ok := emitted[name]
			return ok
		}

		mgr := nolint.ParseComments(prog, e.opts.fileDirective, e.opts.lineDirective)
		diags = mgr.Filter(diags, plugin.RuntimeErrorCode)
		if e.opts.reportUnused {
			diags = append(diags, mgr.Unused(filename)...)
		}
		diags = append(diags, mgr.Unknown(filename, known)...)
	}

	e.logger.Debug("file linted",
		zap.String("file", filename),
		zap.Int("diagnostics", len(diags)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return diags
}

// knownNames lists what an ignore directive may name: every catalog entry,
// every loaded plugin and the codes raised by the engine itself.
func knownNames(catalog lints.Catalog, plugins []*plugin.Plugin) map[string]struct{} {
	known := map[string]struct{}{
		tt.CoreRef.Name:         {},
		plugin.RuntimeErrorCode: {},
		nolint.UnusedCode:       {},
		nolint.UnknownCode:      {},
	}
	for _, name := range catalog.Names() {
		known[name] = struct{}{}
	}
	for _, p := range plugins {
		known[p.Name()] = struct{}{}
	}
	return known
}

// RunSource parses Go source and lints it. src follows go/parser: nil reads
// filename from disk.
func (e *Engine) RunSource(filename string, src any) ([]tt.Diagnostic, error) {
	prog, err := goast.ParseFile(filename, src)
	if err != nil {
		return nil, fmt.Errorf("error parsing content: %w", err)
	}
	return e.Run(prog, filename), nil
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
