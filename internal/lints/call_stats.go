package lints

import (
	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/plugin"
)

const (
	CallStatsName = "call-stats"

	// CallStatsFileKey holds a map[string]int of callee counts for the file
	// being analyzed. It is rebuilt on every Program node.
	CallStatsFileKey = "call-stats.file"
	// CallStatsTotalKey holds the number of calls seen across every file of
	// the session so far.
	CallStatsTotalKey = "call-stats.total"
)

// NewCallStats counts function calls and publishes them on the blackboard.
// It never reports anything.
func NewCallStats(*plugin.Context) (*plugin.Descriptor, error) {
	return &plugin.Descriptor{
		Name: CallStatsName,
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindProgram: func(ctx *plugin.Context, _ ast.Node) error {
				ctx.Set(CallStatsFileKey, map[string]int{})
				return nil
			},
			ast.KindCallExpr: countCall,
		},
		OnEnd: func(ctx *plugin.Context) error {
			state := ctx.State()
			total, _ := state["total"].(int)
			ctx.Set(CallStatsTotalKey, total)
			return nil
		},
	}, nil
}

func countCall(ctx *plugin.Context, n ast.Node) error {
	call, ok := n.(*ast.CallExpr)
	if !ok {
		return nil
	}
	counts, ok := ctx.Get(CallStatsFileKey)
	if !ok {
		counts = map[string]int{}
		ctx.Set(CallStatsFileKey, counts)
	}
	m, ok := counts.(map[string]int)
	if !ok {
		return nil
	}
	m[call.Callee]++

	state := ctx.State()
	total, _ := state["total"].(int)
	state["total"] = total + 1
	return nil
}
