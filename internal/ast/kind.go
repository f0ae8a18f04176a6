package ast

import "fmt"

// Kind tags a node variant. The set is closed: plugins may attach handlers
// to existing kinds but cannot introduce new ones.
type Kind uint16

const (
	KindInvalid Kind = iota
	KindProgram
	KindFuncDecl
	KindVarSpec
	KindBlock
	KindIfStmt
	KindForStmt
	KindSwitchStmt
	KindCaseClause
	KindReturnStmt
	KindBranchStmt
	KindExprStmt
	KindAssignStmt
	KindCallExpr
	KindIdent
	KindBasicLit
	// KindOther marks constructs the model does not describe in detail.
	KindOther

	numKinds
)

var kindNames = [...]string{
	KindInvalid:    "Invalid",
	KindProgram:    "Program",
	KindFuncDecl:   "FuncDecl",
	KindVarSpec:    "VarSpec",
	KindBlock:      "Block",
	KindIfStmt:     "IfStmt",
	KindForStmt:    "ForStmt",
	KindSwitchStmt: "SwitchStmt",
	KindCaseClause: "CaseClause",
	KindReturnStmt: "ReturnStmt",
	KindBranchStmt: "BranchStmt",
	KindExprStmt:   "ExprStmt",
	KindAssignStmt: "AssignStmt",
	KindCallExpr:   "CallExpr",
	KindIdent:      "Ident",
	KindBasicLit:   "BasicLit",
	KindOther:      "Other",
}

// NumKinds is the size of a table indexed by Kind.
const NumKinds = int(numKinds)

// Known reports whether k is one of the declared kinds (Invalid excluded).
func (k Kind) Known() bool {
	return k > KindInvalid && k < numKinds
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k := KindProgram; k < numKinds; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown node kind %q", name)
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds-1)
	for k := KindProgram; k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}
