package lints

import (
	"fmt"

	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/plugin"
)

const NoInferrableTypesName = "no-inferrable-types"

// literalTypes maps a literal kind to the type Go infers for it.
var literalTypes = map[string]string{
	"INT":    "int",
	"FLOAT":  "float64",
	"IMAG":   "complex128",
	"CHAR":   "rune",
	"STRING": "string",
}

// NewNoInferrableTypes reports var declarations that spell out the type the
// compiler would infer from their initializer anyway, e.g. `var x int = 0`.
func NewNoInferrableTypes(*plugin.Context) (*plugin.Descriptor, error) {
	return &plugin.Descriptor{
		Name: NoInferrableTypesName,
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindVarSpec: checkInferrableType,
		},
	}, nil
}

func checkInferrableType(ctx *plugin.Context, n ast.Node) error {
	vs, ok := n.(*ast.VarSpec)
	if !ok || vs.Type == "" || len(vs.Values) == 0 {
		return nil
	}
	for _, v := range vs.Values {
		if inferredType(v) != vs.Type {
			return nil
		}
	}
	ctx.AddDiagnostics(plugin.DiagnosticInput{
		Code:    NoInferrableTypesName,
		Message: fmt.Sprintf("type %s is inferred from the initializer", vs.Type),
		Hint:    fmt.Sprintf("drop the explicit %s", vs.Type),
		Span:    vs.Span(),
	})
	return nil
}

func inferredType(n ast.Node) string {
	switch v := n.(type) {
	case *ast.BasicLit:
		return literalTypes[v.LitKind]
	case *ast.Ident:
		if v.Name == "true" || v.Name == "false" {
			return "bool"
		}
	}
	return ""
}
