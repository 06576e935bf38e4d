package compiler

import (
	"fmt"
	"io"
	"strings"
)

// Children returns the direct sub-nodes of n in source order. It is the one
// place that knows the shape of every node kind; Walk, Dump and the image
// renderer only see kind + children.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Program:
		out := []Node{n.Main}
		for _, c := range n.Classes {
			out = append(out, c)
		}
		return out
	case *MainClass:
		out := make([]Node, 0, len(n.Vars)+len(n.Body))
		for _, v := range n.Vars {
			out = append(out, v)
		}
		for _, s := range n.Body {
			out = append(out, s)
		}
		return out
	case *ClassDecl:
		out := make([]Node, 0, len(n.Fields)+len(n.Methods))
		for _, f := range n.Fields {
			out = append(out, f)
		}
		for _, m := range n.Methods {
			out = append(out, m)
		}
		return out
	case *MethodDecl:
		var out []Node
		for _, p := range n.Params {
			out = append(out, p)
		}
		for _, v := range n.Vars {
			out = append(out, v)
		}
		for _, s := range n.Body {
			out = append(out, s)
		}
		return append(out, n.Return)
	case *VarDecl, *Param:
		return nil
	case *Block:
		out := make([]Node, len(n.Stmts))
		for i, s := range n.Stmts {
			out[i] = s
		}
		return out
	case *If:
		return []Node{n.Cond, n.Then, n.Else}
	case *While:
		return []Node{n.Cond, n.Body}
	case *Print:
		return []Node{n.Expr}
	case *Assign:
		return []Node{n.Value}
	case *ArrayAssign:
		return []Node{n.Index, n.Value}
	case *IntLit, *BoolLit, *VarRef, *NewObject, *This:
		return nil
	case *Binary:
		return []Node{n.Left, n.Right}
	case *Unary:
		return []Node{n.Operand}
	case *ArrayAccess:
		return []Node{n.Array, n.Index}
	case *ArrayLength:
		return []Node{n.Array}
	case *MethodCall:
		out := []Node{n.Receiver}
		for _, a := range n.Args {
			out = append(out, a)
		}
		return out
	case *NewArray:
		return []Node{n.Size}
	}
	panic(fmt.Sprintf("compiler: unknown node %T", n))
}

// Walk visits n and its descendants depth-first in source order. If fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Kind is the short node-kind name, e.g. "Binary" or "While".
func Kind(n Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*compiler.")
}

// Label is a one-line description of n for tree views: the kind plus the
// fields that are not children.
func Label(n Node) string {
	switch n := n.(type) {
	case *Program:
		return "Program"
	case *MainClass:
		return "MainClass " + n.Name
	case *ClassDecl:
		return "Class " + n.Name
	case *MethodDecl:
		return "Method " + n.String()
	case *VarDecl:
		return "VarDecl " + n.String()
	case *Param:
		return "Param " + n.String()
	case *Assign:
		return "Assign " + n.Name
	case *ArrayAssign:
		return "ArrayAssign " + n.Name
	case *Binary:
		return "Binary " + n.Op
	case *Unary:
		return "Unary " + n.Op
	case *IntLit:
		return fmt.Sprintf("Int %d", n.Value)
	case *BoolLit:
		return fmt.Sprintf("Bool %t", n.Value)
	case *VarRef:
		return "Var " + n.Name
	case *MethodCall:
		return "Call " + n.Method
	case *NewObject:
		return "New " + n.Class
	}
	return Kind(n)
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n Node) int {
	count := 0
	Walk(n, func(Node) bool {
		count++
		return true
	})
	return count
}

// Dump writes an indented outline of the tree rooted at n.
func Dump(w io.Writer, n Node) error {
	var dump func(n Node, depth int) error
	dump = func(n Node, depth int) error {
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), Label(n)); err != nil {
			return err
		}
		for _, c := range Children(n) {
			if err := dump(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return dump(n, 0)
}
