// Package ast defines the read-only syntax tree consumed by the lint core.
//
// Trees are produced once per file by a frontend (see internal/goast) and are
// never modified afterwards. Every node reports its Kind, its Span and its
// children in source order; kind-specific data lives on the concrete types.
package ast

import "github.com/gnolang/plint/internal/source"

// Node is implemented by every tree node.
type Node interface {
	Kind() Kind
	Span() source.Span
	Children() []Node
}

// Base holds the fields common to all nodes. Frontends fill it in;
// plugins should treat it as read-only.
type Base struct {
	Sp   source.Span
	Kids []Node
}

func (b *Base) Span() source.Span { return b.Sp }
func (b *Base) Children() []Node  { return b.Kids }

// Comment is a source comment attached to the Program.
type Comment struct {
	Text string
	Span source.Span
}

// Program is the root of a file. Its children are the top-level declarations.
type Program struct {
	Base
	Package  string
	Comments []Comment
}

func (*Program) Kind() Kind { return KindProgram }

// Body returns the top-level declarations in source order.
func (p *Program) Body() []Node { return p.Kids }

type FuncDecl struct {
	Base
	Name   string
	Params int
}

func (*FuncDecl) Kind() Kind { return KindFuncDecl }

// VarSpec is a single `var` specification: names, optional type and values.
type VarSpec struct {
	Base
	Names []string
	// Type is the rendered declared type, empty when omitted.
	Type   string
	Values []Node
}

func (*VarSpec) Kind() Kind { return KindVarSpec }

type Block struct {
	Base
}

func (*Block) Kind() Kind { return KindBlock }

type IfStmt struct {
	Base
	Then    *Block
	HasElse bool
}

func (*IfStmt) Kind() Kind { return KindIfStmt }

type ForStmt struct {
	Base
	Range bool
}

func (*ForStmt) Kind() Kind { return KindForStmt }

type SwitchStmt struct {
	Base
	TypeSwitch bool
}

func (*SwitchStmt) Kind() Kind { return KindSwitchStmt }

// CaseClause is one arm of a switch or select. Body holds the statements
// following the colon; Kids also includes the case expressions.
type CaseClause struct {
	Base
	Default bool
	Body    []Node
}

func (*CaseClause) Kind() Kind { return KindCaseClause }

type ReturnStmt struct {
	Base
	Results int
}

func (*ReturnStmt) Kind() Kind { return KindReturnStmt }

// BranchStmt is break, continue, goto or fallthrough.
type BranchStmt struct {
	Base
	Tok   string
	Label string
}

func (*BranchStmt) Kind() Kind { return KindBranchStmt }

type ExprStmt struct {
	Base
}

func (*ExprStmt) Kind() Kind { return KindExprStmt }

type AssignStmt struct {
	Base
	Tok string
}

func (*AssignStmt) Kind() Kind { return KindAssignStmt }

type CallExpr struct {
	Base
	// Callee is the rendered function expression, e.g. "fmt.Println".
	Callee string
	Args   int
}

func (*CallExpr) Kind() Kind { return KindCallExpr }

type Ident struct {
	Base
	Name string
}

func (*Ident) Kind() Kind { return KindIdent }

type BasicLit struct {
	Base
	// LitKind is the token class: INT, FLOAT, IMAG, CHAR or STRING.
	LitKind string
	Value   string
}

func (*BasicLit) Kind() Kind { return KindBasicLit }

// Generic is a node the model does not describe in detail. K may be any
// kind, including values outside the declared set.
type Generic struct {
	Base
	K Kind
	// Label names the construct in the frontend's vocabulary.
	Label string
}

func (g *Generic) Kind() Kind { return g.K }
