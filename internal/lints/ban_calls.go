package lints

import (
	"fmt"

	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/plugin"
)

const (
	BanCallsName = "ban-calls"

	// BanCallsNamesKey is the blackboard key listing the banned callees.
	// Values may be a []string or a []any of strings, as decoded from YAML.
	BanCallsNamesKey = "ban-calls.names"
)

var defaultBannedCalls = []string{"panic", "print", "println"}

// NewBanCalls reports calls to banned functions. When the blackboard holds
// no list, the factory seeds it with the defaults so other plugins can see
// the effective list.
func NewBanCalls(ctx *plugin.Context) (*plugin.Descriptor, error) {
	if v, ok := ctx.Get(BanCallsNamesKey); ok {
		if _, err := bannedNames(v); err != nil {
			return nil, err
		}
	} else {
		ctx.Set(BanCallsNamesKey, append([]string(nil), defaultBannedCalls...))
	}

	return &plugin.Descriptor{
		Name: BanCallsName,
		Visitor: map[ast.Kind]plugin.VisitFunc{
			ast.KindCallExpr: checkBannedCall,
		},
	}, nil
}

func checkBannedCall(ctx *plugin.Context, n ast.Node) error {
	call, ok := n.(*ast.CallExpr)
	if !ok {
		return nil
	}
	// read on every call, a previous plugin may have changed the list
	v, _ := ctx.Get(BanCallsNamesKey)
	names, err := bannedNames(v)
	if err != nil {
		return err
	}
	if _, banned := names[call.Callee]; !banned {
		return nil
	}
	ctx.AddDiagnostics(plugin.DiagnosticInput{
		Code:    BanCallsName,
		Message: fmt.Sprintf("call to %s is not allowed", call.Callee),
		Span:    call.Span(),
	})
	return nil
}

func bannedNames(v any) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	switch list := v.(type) {
	case nil:
	case []string:
		for _, name := range list {
			out[name] = struct{}{}
		}
	case []any:
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected a list of strings, got element %T", BanCallsNamesKey, item)
			}
			out[name] = struct{}{}
		}
	default:
		return nil, fmt.Errorf("%s: expected a list of strings, got %T", BanCallsNamesKey, v)
	}
	return out, nil
}
