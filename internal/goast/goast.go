// Package goast converts Go syntax trees into the lint core's tree model.
package goast

import (
	"fmt"
	gast "go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/source"
)

// ParseFile parses Go source and converts it. src may be nil, in which case
// the file is read from disk, as with go/parser.
func ParseFile(filename string, src any) (*ast.Program, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return FromFile(fset, f)
}

// FromFile converts an already parsed file. Comments are copied onto the
// returned Program so ignore directives can be resolved.
func FromFile(fset *token.FileSet, f *gast.File) (*ast.Program, error) {
	b := &builder{fset: fset, file: f, nodes: make(map[gast.Node]ast.Node)}

	in := inspector.New([]*gast.File{f})
	in.Nodes(nil, func(n gast.Node, push bool) bool {
		if b.err != nil {
			return false
		}
		if push {
			return b.push(n)
		}
		b.pop(n)
		return true
	})
	if b.err != nil {
		return nil, b.err
	}

	prog, ok := b.nodes[f].(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("no program node built for %s", fset.Position(f.Pos()).Filename)
	}
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			sp, err := b.span(c)
			if err != nil {
				return nil, err
			}
			prog.Comments = append(prog.Comments, ast.Comment{Text: c.Text, Span: sp})
		}
	}
	return prog, nil
}

type frame struct {
	gonode gast.Node
	node   ast.Node
	base   *ast.Base
}

type builder struct {
	fset  *token.FileSet
	file  *gast.File
	stack []frame
	nodes map[gast.Node]ast.Node
	err   error
}

func (b *builder) push(n gast.Node) bool {
	switch n.(type) {
	case *gast.CommentGroup, *gast.Comment:
		return false
	}
	if n == gast.Node(b.file.Name) {
		return false
	}

	sp, err := b.span(n)
	if err != nil {
		b.err = err
		return false
	}
	var parent gast.Node
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1].gonode
	}
	node, base := convert(n, parent)
	base.Sp = sp

	if len(b.stack) > 0 {
		pb := b.stack[len(b.stack)-1].base
		pb.Kids = append(pb.Kids, node)
	}
	b.stack = append(b.stack, frame{gonode: n, node: node, base: base})
	b.nodes[n] = node
	return true
}

func (b *builder) pop(n gast.Node) {
	if len(b.stack) == 0 || b.stack[len(b.stack)-1].gonode != n {
		return
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.finish(n, top)
}

// finish fills fields that refer to converted children.
func (b *builder) finish(n gast.Node, f frame) {
	kids := f.base.Kids
	switch n := n.(type) {
	case *gast.ValueSpec:
		if vs, ok := f.node.(*ast.VarSpec); ok && len(n.Values) <= len(kids) {
			vs.Values = kids[len(kids)-len(n.Values):]
		}
	case *gast.IfStmt:
		if is, ok := f.node.(*ast.IfStmt); ok {
			is.Then, _ = b.nodes[n.Body].(*ast.Block)
		}
	case *gast.CaseClause:
		if cc, ok := f.node.(*ast.CaseClause); ok && len(n.Body) <= len(kids) {
			cc.Body = kids[len(kids)-len(n.Body):]
		}
	case *gast.CommClause:
		if cc, ok := f.node.(*ast.CaseClause); ok && len(n.Body) <= len(kids) {
			cc.Body = kids[len(kids)-len(n.Body):]
		}
	}
}

func (b *builder) span(n gast.Node) (source.Span, error) {
	start, err := b.pos(n.Pos())
	if err != nil {
		return source.Span{}, err
	}
	end, err := b.pos(n.End())
	if err != nil {
		return source.Span{}, err
	}
	return source.Span{Start: start, End: end}, nil
}

func (b *builder) pos(p token.Pos) (source.Pos, error) {
	position := b.fset.Position(p)
	offset, err := safecast.Conv[uint32](position.Offset)
	if err != nil {
		return source.Pos{}, fmt.Errorf("offset %d out of range: %w", position.Offset, err)
	}
	line, err := safecast.Conv[uint32](position.Line)
	if err != nil {
		return source.Pos{}, fmt.Errorf("line %d out of range: %w", position.Line, err)
	}
	col, err := safecast.Conv[uint32](position.Column)
	if err != nil {
		return source.Pos{}, fmt.Errorf("column %d out of range: %w", position.Column, err)
	}
	return source.Pos{Offset: offset, Line: line, Column: col}, nil
}

// convert allocates the node for n and returns it with its Base.
func convert(n, parent gast.Node) (ast.Node, *ast.Base) {
	switch n := n.(type) {
	case *gast.File:
		p := &ast.Program{Package: n.Name.Name}
		return p, &p.Base
	case *gast.FuncDecl:
		fd := &ast.FuncDecl{Name: n.Name.Name, Params: countFields(n.Type.Params)}
		return fd, &fd.Base
	case *gast.ValueSpec:
		if isVarDecl(parent) {
			vs := &ast.VarSpec{Names: identNames(n.Names)}
			if n.Type != nil {
				vs.Type = types.ExprString(n.Type)
			}
			return vs, &vs.Base
		}
	case *gast.BlockStmt:
		bl := &ast.Block{}
		return bl, &bl.Base
	case *gast.IfStmt:
		is := &ast.IfStmt{HasElse: n.Else != nil}
		return is, &is.Base
	case *gast.ForStmt:
		fs := &ast.ForStmt{}
		return fs, &fs.Base
	case *gast.RangeStmt:
		fs := &ast.ForStmt{Range: true}
		return fs, &fs.Base
	case *gast.SwitchStmt:
		ss := &ast.SwitchStmt{}
		return ss, &ss.Base
	case *gast.TypeSwitchStmt:
		ss := &ast.SwitchStmt{TypeSwitch: true}
		return ss, &ss.Base
	case *gast.CaseClause:
		cc := &ast.CaseClause{Default: n.List == nil}
		return cc, &cc.Base
	case *gast.CommClause:
		cc := &ast.CaseClause{Default: n.Comm == nil}
		return cc, &cc.Base
	case *gast.ReturnStmt:
		rs := &ast.ReturnStmt{Results: len(n.Results)}
		return rs, &rs.Base
	case *gast.BranchStmt:
		bs := &ast.BranchStmt{Tok: n.Tok.String()}
		if n.Label != nil {
			bs.Label = n.Label.Name
		}
		return bs, &bs.Base
	case *gast.ExprStmt:
		es := &ast.ExprStmt{}
		return es, &es.Base
	case *gast.AssignStmt:
		as := &ast.AssignStmt{Tok: n.Tok.String()}
		return as, &as.Base
	case *gast.CallExpr:
		ce := &ast.CallExpr{Callee: types.ExprString(n.Fun), Args: len(n.Args)}
		return ce, &ce.Base
	case *gast.Ident:
		id := &ast.Ident{Name: n.Name}
		return id, &id.Base
	case *gast.BasicLit:
		bl := &ast.BasicLit{LitKind: n.Kind.String(), Value: n.Value}
		return bl, &bl.Base
	}
	g := &ast.Generic{K: ast.KindOther, Label: strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")}
	return g, &g.Base
}

// isVarDecl reports whether parent is a var declaration. Specs of const
// declarations stay generic.
func isVarDecl(parent gast.Node) bool {
	gd, ok := parent.(*gast.GenDecl)
	return ok && gd.Tok == token.VAR
}

func countFields(fl *gast.FieldList) int {
	if fl == nil {
		return 0
	}
	count := 0
	for _, f := range fl.List {
		if len(f.Names) == 0 {
			count++
			continue
		}
		count += len(f.Names)
	}
	return count
}

func identNames(ids []*gast.Ident) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.Name)
	}
	return names
}
