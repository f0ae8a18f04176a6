package lints

import (
	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/plugin"
)

const UselessBreakName = "useless-break"

// NewUselessBreak detects unlabeled break statements at the end of a case
// clause of a switch or select statement.
func NewUselessBreak(*plugin.Context) (*plugin.Descriptor, error) {
	return &plugin.Descriptor{
		Name: UselessBreakName,
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindCaseClause: checkUselessBreak,
		},
	}, nil
}

func checkUselessBreak(ctx *plugin.Context, n ast.Node) error {
	cc, ok := n.(*ast.CaseClause)
	if !ok || len(cc.Body) == 0 {
		return nil
	}

	last, ok := cc.Body[len(cc.Body)-1].(*ast.BranchStmt)
	if !ok || last.Tok != "break" || last.Label != "" {
		return nil
	}
	ctx.AddDiagnostics(plugin.DiagnosticInput{
		Code:    UselessBreakName,
		Message: "useless break statement at the end of case clause",
		Hint:    "case clauses do not fall through, remove the break",
		Span:    last.Span(),
	})
	return nil
}
