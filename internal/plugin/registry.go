// Package plugin loads lint plugins and builds the kind-indexed dispatch
// table the traversal runs against.
package plugin

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/plint/internal/ast"
	tt "github.com/gnolang/plint/internal/types"
)

// VisitFunc handles one node. Returning an error (or panicking) marks the
// invocation as failed without stopping the walk.
type VisitFunc func(ctx *Context, n ast.Node) error

// EndFunc runs once per file after the traversal.
type EndFunc func(ctx *Context) error

// Descriptor is what a plugin factory returns. Visitor and OnEnd are both
// optional; a plugin with neither is valid and contributes nothing.
type Descriptor struct {
	Name    string
	Visitor map[ast.Kind]VisitFunc
	OnEnd   EndFunc
}

// Factory instantiates a plugin against the session's shared context.
type Factory func(ctx *Context) (*Descriptor, error)

// Plugin is a successfully registered descriptor.
type Plugin struct {
	Ref        tt.PluginRef
	Descriptor *Descriptor
	Severity   tt.Severity
}

func (p *Plugin) Name() string { return p.Ref.Name }

// Registry validates descriptors and records them in load order.
type Registry struct {
	ctx     *Context
	plugins []*Plugin
	errs    []error
	next    int
}

func NewRegistry(ctx *Context) *Registry {
	return &Registry{ctx: ctx}
}

// Register invokes factory exactly once and validates its result. id names
// the plugin in errors; the descriptor's own Name is used for attribution.
// Every call consumes one load-order index, whether it succeeds or not.
func (r *Registry) Register(id string, factory Factory, severity tt.Severity) (*Plugin, error) {
	index := r.next
	r.next++

	if factory == nil {
		return nil, r.fail(InvalidPlugin, id, index, errors.New("nil factory"))
	}

	// bind a provisional plugin so emissions made by the factory are attributed
	provisional := &Plugin{Ref: tt.PluginRef{Name: id, ID: index}, Severity: severity}
	r.ctx.Bind(provisional)
	defer r.ctx.Bind(nil)

	var desc *Descriptor
	err := Guard(func() error {
		var ferr error
		desc, ferr = factory(r.ctx)
		return ferr
	})
	if err != nil {
		return nil, r.fail(PluginInitFailed, id, index, err)
	}
	if err := validate(desc); err != nil {
		return nil, r.fail(InvalidPlugin, id, index, err)
	}

	p := &Plugin{
		Ref:        tt.PluginRef{Name: desc.Name, ID: index},
		Descriptor: desc,
		Severity:   severity,
	}
	r.plugins = append(r.plugins, p)
	r.ctx.Logger().Debug("plugin registered",
		zap.String("plugin", desc.Name),
		zap.Int("index", index),
		zap.Int("visitors", len(desc.Visitor)),
		zap.Bool("onEnd", desc.OnEnd != nil),
	)
	return p, nil
}

// Skip consumes a load-order index without registering anything, keeping
// plugin IDs aligned with the caller's identifier list.
func (r *Registry) Skip() {
	r.next++
}

// Fail records a fault detected by the caller before a factory was
// available, e.g. an identifier that resolves to nothing.
func (r *Registry) Fail(kind ErrorKind, id string, cause error) error {
	index := r.next
	r.next++
	return r.fail(kind, id, index, cause)
}

func (r *Registry) fail(kind ErrorKind, id string, index int, cause error) error {
	err := &Error{Kind: kind, Plugin: id, Index: index, Err: cause}
	r.errs = append(r.errs, err)
	r.ctx.Logger().Debug("plugin rejected",
		zap.String("plugin", id),
		zap.Stringer("kind", kind),
		zap.Error(cause),
	)
	return err
}

func validate(desc *Descriptor) error {
	if desc == nil {
		return errors.New("factory returned no descriptor")
	}
	if desc.Name == "" {
		return errors.New("missing name")
	}
	for k, fn := range desc.Visitor {
		if !k.Known() {
			return fmt.Errorf("visitor for unknown node kind %s", k)
		}
		if fn == nil {
			return fmt.Errorf("nil visitor for %s", k)
		}
	}
	return nil
}

// Plugins returns registered plugins in load order.
func (r *Registry) Plugins() []*Plugin { return r.plugins }

// Errors returns every startup fault in the order it occurred.
func (r *Registry) Errors() []error { return r.errs }

// Entry pairs a plugin with one of its visitor callbacks.
type Entry struct {
	Plugin *Plugin
	Visit  VisitFunc
}

// Table maps node kinds to callbacks in plugin load order. It is immutable
// once built and may be read from several goroutines.
type Table struct {
	byKind  [ast.NumKinds][]Entry
	plugins []*Plugin
}

// Build snapshots the registered plugins into a dispatch table.
func (r *Registry) Build() *Table {
	t := &Table{plugins: append([]*Plugin(nil), r.plugins...)}
	for _, p := range t.plugins {
		for k, fn := range p.Descriptor.Visitor {
			t.byKind[k] = append(t.byKind[k], Entry{Plugin: p, Visit: fn})
		}
	}
	return t
}

// Lookup returns the callbacks registered for k, or nil.
func (t *Table) Lookup(k ast.Kind) []Entry {
	if int(k) >= len(t.byKind) {
		return nil
	}
	return t.byKind[k]
}

// Plugins returns every plugin in load order, including those without
// visitors.
func (t *Table) Plugins() []*Plugin { return t.plugins }
