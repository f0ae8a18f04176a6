// Package dispatch walks a syntax tree once and routes every node to the
// plugin callbacks registered for its kind.
package dispatch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/plugin"
	"github.com/gnolang/plint/internal/source"
	tt "github.com/gnolang/plint/internal/types"
)

// Walk traverses root depth-first in pre-order and invokes, for each node,
// the callbacks of table.Lookup(node.Kind()) in plugin load order. Once the
// tree is exhausted every plugin's OnEnd runs once, also in load order.
//
// Diagnostics go straight to ctx's sink, so their order follows node
// visitation order first and load order second. A callback that fails is
// reported as a plugin-runtime-error diagnostic and the walk goes on.
func Walk(root ast.Node, table *plugin.Table, ctx *plugin.Context) {
	w := walker{table: table, ctx: ctx}
	defer ctx.Bind(nil)

	if root != nil {
		w.visit(root)
	}

	var end source.Span
	if root != nil {
		end = root.Span()
	}
	for _, p := range table.Plugins() {
		if p.Descriptor.OnEnd == nil {
			continue
		}
		ctx.Bind(p)
		fn := p.Descriptor.OnEnd
		if err := plugin.Guard(func() error { return fn(ctx) }); err != nil {
			w.fault(p, "onEnd", end, err)
		}
	}
}

type walker struct {
	table *plugin.Table
	ctx   *plugin.Context
}

func (w *walker) visit(n ast.Node) {
	for _, e := range w.table.Lookup(n.Kind()) {
		w.ctx.Bind(e.Plugin)
		visit := e.Visit
		if err := plugin.Guard(func() error { return visit(w.ctx, n) }); err != nil {
			w.fault(e.Plugin, n.Kind().String(), n.Span(), err)
		}
	}
	for _, c := range n.Children() {
		if c != nil {
			w.visit(c)
		}
	}
}

func (w *walker) fault(p *plugin.Plugin, where string, span source.Span, cause error) {
	err := &plugin.Error{
		Kind:   plugin.PluginRuntimeError,
		Plugin: p.Name(),
		Index:  p.Ref.ID,
		Err:    cause,
	}
	w.ctx.Logger().Error("plugin callback failed",
		zap.String("plugin", p.Name()),
		zap.String("callback", where),
		zap.String("file", w.ctx.Filename()),
		zap.Error(err),
	)
	w.ctx.Sink().Add(tt.Diagnostic{
		Plugin:   p.Ref,
		Filename: w.ctx.Filename(),
		Code:     plugin.RuntimeErrorCode,
		Message:  fmt.Sprintf("%s callback failed: %v", where, cause),
		Severity: tt.SeverityError,
		Span:     span,
	})
}
