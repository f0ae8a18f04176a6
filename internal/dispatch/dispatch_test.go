package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/plugin"
	"github.com/gnolang/plint/internal/sink"
	"github.com/gnolang/plint/internal/source"
	tt "github.com/gnolang/plint/internal/types"
)

type harness struct {
	ctx  *plugin.Context
	sink *sink.Sink
	reg  *plugin.Registry
}

func newHarness(t *testing.T, logger *zap.Logger) *harness {
	t.Helper()
	s := sink.New()
	ctx := plugin.NewContext(logger, s)
	ctx.SetFilename("test.go")
	return &harness{ctx: ctx, sink: s, reg: plugin.NewRegistry(ctx)}
}

func (h *harness) add(t *testing.T, d *plugin.Descriptor) {
	t.Helper()
	_, err := h.reg.Register(d.Name, func(*plugin.Context) (*plugin.Descriptor, error) {
		return d, nil
	}, tt.SeverityError)
	require.NoError(t, err)
}

func (h *harness) walk(root ast.Node) []tt.Diagnostic {
	Walk(root, h.reg.Build(), h.ctx)
	return h.sink.Drain()
}

// reportX emits "X" spanning the visited node.
func reportX(ctx *plugin.Context, n ast.Node) error {
	ctx.Report(n.Span(), "", "X")
	return nil
}

func scenarioTree() (*ast.Program, *ast.CallExpr) {
	call := &ast.CallExpr{Base: ast.Base{Sp: source.NewSpan(10, 20)}, Callee: "f"}
	root := &ast.Program{Base: ast.Base{Sp: source.NewSpan(0, 50), Kids: []ast.Node{call}}}
	return root, call
}

// nestedTree builds Program{FuncDecl{Block{ExprStmt{CallExpr{Ident}}}}, Generic(999){Ident}}.
func nestedTree() ast.Node {
	ident := &ast.Ident{Base: ast.Base{Sp: source.NewSpan(12, 13)}, Name: "x"}
	call := &ast.CallExpr{Base: ast.Base{Sp: source.NewSpan(10, 14), Kids: []ast.Node{ident}}, Callee: "f"}
	stmt := &ast.ExprStmt{Base: ast.Base{Sp: source.NewSpan(10, 14), Kids: []ast.Node{call}}}
	block := &ast.Block{Base: ast.Base{Sp: source.NewSpan(8, 16), Kids: []ast.Node{stmt}}}
	fn := &ast.FuncDecl{Base: ast.Base{Sp: source.NewSpan(0, 16), Kids: []ast.Node{block}}, Name: "main"}
	inner := &ast.Ident{Base: ast.Base{Sp: source.NewSpan(20, 21)}, Name: "y"}
	unknown := &ast.Generic{K: ast.Kind(999), Base: ast.Base{Sp: source.NewSpan(18, 30), Kids: []ast.Node{inner}}}
	return &ast.Program{Base: ast.Base{Sp: source.NewSpan(0, 30), Kids: []ast.Node{fn, unknown}}}
}

func TestWalkProgramCallScenario(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.add(t, &plugin.Descriptor{
		Name: "x",
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindProgram:  reportX,
			ast.KindCallExpr: reportX,
		},
	})

	root, call := scenarioTree()
	got := h.walk(root)

	require.Len(t, got, 2)
	assert.Equal(t, "X", got[0].Message)
	assert.Equal(t, root.Span(), got[0].Span)
	assert.Equal(t, source.NewSpan(0, 50), got[0].Span)
	assert.Equal(t, call.Span(), got[1].Span)
	assert.Equal(t, source.NewSpan(10, 20), got[1].Span)
	for _, d := range got {
		assert.Equal(t, "x", d.PluginName())
		assert.Equal(t, "test.go", d.Filename)
	}
}

func TestWalkPluginOrderWithinNode(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	for _, name := range []string{"A", "B"} {
		h.add(t, &plugin.Descriptor{
			Name: name,
			Visitor: map[ast.Kind]plugin.VisitFunc{
				ast.KindProgram: func(ctx *plugin.Context, n ast.Node) error {
					ctx.Report(n.Span(), "", ctx.Plugin().Name)
					return nil
				},
			},
		})
	}

	root, _ := scenarioTree()
	got := h.walk(root)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].PluginName())
	assert.Equal(t, "B", got[1].PluginName())
}

func TestWalkPreOrderAndUnknownKinds(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	var visited []string
	record := func(_ *plugin.Context, n ast.Node) error {
		visited = append(visited, fmt.Sprintf("%s@%d", n.Kind(), n.Span().Start.Offset))
		return nil
	}
	visitor := map[ast.Kind]plugin.VisitFunc{}
	for _, k := range ast.Kinds() {
		visitor[k] = record
	}
	h.add(t, &plugin.Descriptor{Name: "all", Visitor: visitor})

	got := h.walk(nestedTree())
	assert.Empty(t, got)
	assert.Equal(t, []string{
		"Program@0",
		"FuncDecl@0",
		"Block@8",
		"ExprStmt@10",
		"CallExpr@10",
		"Ident@12",
		// the Generic node with kind 999 has no callbacks but its child is visited
		"Ident@20",
	}, visited)
}

func TestWalkSkipsKindsWithoutCallbacks(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	calls := 0
	h.add(t, &plugin.Descriptor{
		Name: "idents",
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindIdent: func(*plugin.Context, ast.Node) error {
				calls++
				return nil
			},
		},
	})

	h.walk(nestedTree())
	// both identifiers sit below nodes nobody registered for
	assert.Equal(t, 2, calls)
}

func TestWalkIsDeterministic(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	for _, name := range []string{"first", "second"} {
		h.add(t, &plugin.Descriptor{
			Name: name,
			Visitor: map[ast.Kind]plugin.VisitFunc{
				ast.KindProgram:  reportX,
				ast.KindCallExpr: reportX,
				ast.KindIdent:    reportX,
				ast.KindBlock:    reportX,
			},
			OnEnd: func(ctx *plugin.Context) error {
				ctx.Report(source.Span{}, "end", "done")
				return nil
			},
		})
	}

	tree := nestedTree()
	first := h.walk(tree)
	second := h.walk(tree)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestWalkOnEndOncePerFileInOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	var order []string
	for _, name := range []string{"visitorless", "withVisitor"} {
		name := name
		d := &plugin.Descriptor{
			Name: name,
			OnEnd: func(*plugin.Context) error {
				order = append(order, name)
				return nil
			},
		}
		if name == "withVisitor" {
			d.Visitor = map[ast.Kind]plugin.VisitFunc{ast.KindCallExpr: reportX}
		}
		h.add(t, d)
	}
	h.add(t, &plugin.Descriptor{Name: "silent"})

	root, _ := scenarioTree()
	got := h.walk(root)
	assert.Equal(t, []string{"visitorless", "withVisitor"}, order)
	assert.Len(t, got, 1)

	h.walk(root)
	assert.Equal(t, []string{"visitorless", "withVisitor", "visitorless", "withVisitor"}, order)
}

func TestWalkIsolatesRuntimeFailures(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.ErrorLevel)
	h := newHarness(t, zap.New(core))

	h.add(t, &plugin.Descriptor{
		Name: "faulty",
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindCallExpr: func(*plugin.Context, ast.Node) error {
				return errors.New("cannot handle call")
			},
			ast.KindIdent: func(*plugin.Context, ast.Node) error {
				panic("nil map")
			},
		},
		OnEnd: func(*plugin.Context) error {
			return errors.New("finalize failed")
		},
	})
	h.add(t, &plugin.Descriptor{
		Name: "healthy",
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindIdent: reportX,
		},
	})

	tree := nestedTree()
	got := h.walk(tree)

	var faults, healthy []tt.Diagnostic
	for _, d := range got {
		switch d.PluginName() {
		case "faulty":
			faults = append(faults, d)
		case "healthy":
			healthy = append(healthy, d)
		}
	}

	// call error + two ident panics + onEnd error
	require.Len(t, faults, 4)
	for _, d := range faults {
		assert.Equal(t, plugin.RuntimeErrorCode, d.Code)
		assert.Equal(t, tt.SeverityError, d.Severity)
	}
	assert.Contains(t, faults[0].Message, "cannot handle call")
	assert.Contains(t, faults[1].Message, "nil map")
	assert.Contains(t, faults[3].Message, "finalize failed")
	assert.Equal(t, tree.Span(), faults[3].Span)

	// the healthy plugin still saw both identifiers
	assert.Len(t, healthy, 2)
	assert.Equal(t, 4, logs.Len())
	assert.Equal(t, "faulty", logs.All()[0].ContextMap()["plugin"])
}

func TestWalkZeroPlugins(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	assert.Empty(t, h.walk(nestedTree()))
	assert.Empty(t, h.walk(nil))
}

func TestWalkSpansStayWithinNode(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	visitor := map[ast.Kind]plugin.VisitFunc{}
	for _, k := range ast.Kinds() {
		visitor[k] = reportX
	}
	h.add(t, &plugin.Descriptor{
		Name:    "narrow",
		Visitor: visitor,
	})

	// record which node produced which diagnostic
	var nodes []ast.Node
	ast.Inspect(nestedTree(), func(n ast.Node) bool {
		if n.Kind().Known() {
			nodes = append(nodes, n)
		}
		return true
	})

	got := h.walk(nestedTree())
	require.Len(t, got, len(nodes))
	for i, d := range got {
		assert.True(t, nodes[i].Span().Contains(d.Span), "diagnostic %d escapes its node", i)
	}
}
