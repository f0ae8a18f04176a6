package lints

import (
	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/plugin"
)

const EmptyIfName = "empty-if"

// NewEmptyIf flags if statements whose body is empty and that have no else
// branch.
func NewEmptyIf(*plugin.Context) (*plugin.Descriptor, error) {
	return &plugin.Descriptor{
		Name: EmptyIfName,
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindIfStmt: checkEmptyIf,
		},
	}, nil
}

func checkEmptyIf(ctx *plugin.Context, n ast.Node) error {
	is, ok := n.(*ast.IfStmt)
	if !ok || is.HasElse || is.Then == nil {
		return nil
	}
	if len(is.Then.Children()) > 0 {
		return nil
	}
	ctx.AddDiagnostics(plugin.DiagnosticInput{
		Code:    EmptyIfName,
		Message: "if statement has an empty body",
		Hint:    "remove the statement or fill in its body",
		Span:    is.Span(),
	})
	return nil
}
