package compiler

import (
	"fmt"
	"strings"
)

// Node is implemented by every AST node. The set of node kinds is closed:
// Children and the type switches in the analyzer and IR generator list every
// implementation and panic on anything else.
type Node interface {
	node()
	String() string
}

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Declarations

// Program is the root: exactly one entry class followed by auxiliary classes.
type Program struct {
	Main    *MainClass
	Classes []*ClassDecl
}

func (*Program) node() {}
func (p *Program) String() string {
	return fmt.Sprintf("Program(%s, %d classes)", p.Main.Name, len(p.Classes))
}

// MainClass is the entry class. Its single method is always
//
//	public static void main(String[] ArgName)
//
// The parser reads declarations and statements interleaved and partitions
// them into Vars and Body afterwards.
type MainClass struct {
	Name    string
	ArgName string
	Vars    []*VarDecl
	Body    []Stmt
}

func (*MainClass) node()            {}
func (m *MainClass) String() string { return "MainClass " + m.Name }

// ClassDecl is an auxiliary class.
type ClassDecl struct {
	Name    string
	Fields  []*VarDecl
	Methods []*MethodDecl
}

func (*ClassDecl) node()            {}
func (c *ClassDecl) String() string { return "Class " + c.Name }

// VarDecl declares a field or a local variable.
//
//	int[] a;
//	^^^^^ ^  VarDecl{Type: IntArray, Name: "a"}
type VarDecl struct {
	Type Type
	Name string
	Line int
}

func (*VarDecl) node()            {}
func (*VarDecl) stmtNode()        {}
func (v *VarDecl) String() string { return fmt.Sprintf("%s %s", v.Type, v.Name) }

// Param is one formal parameter of a method.
type Param struct {
	Type Type
	Name string
}

func (*Param) node()            {}
func (p *Param) String() string { return fmt.Sprintf("%s %s", p.Type, p.Name) }

// MethodDecl is a method of an auxiliary class. Every method ends in exactly
// one return expression.
type MethodDecl struct {
	Name       string
	ReturnType Type
	Params     []*Param
	Vars       []*VarDecl
	Body       []Stmt
	Return     Expr
}

func (*MethodDecl) node() {}
func (m *MethodDecl) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s %s(%s)", m.ReturnType, m.Name, strings.Join(params, ", "))
}

// Statements

// Block is a braced statement list.
type Block struct {
	Stmts []Stmt
}

func (*Block) node()     {}
func (*Block) stmtNode() {}
func (b *Block) String() string {
	return fmt.Sprintf("Block(%d stmts)", len(b.Stmts))
}

// If always carries an else branch.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*If) node()            {}
func (*If) stmtNode()        {}
func (s *If) String() string { return fmt.Sprintf("if (%s)", s.Cond) }

type While struct {
	Cond Expr
	Body Stmt
}

func (*While) node()            {}
func (*While) stmtNode()        {}
func (s *While) String() string { return fmt.Sprintf("while (%s)", s.Cond) }

// Print is System.out.println(Expr).
type Print struct {
	Expr Expr
}

func (*Print) node()            {}
func (*Print) stmtNode()        {}
func (s *Print) String() string { return fmt.Sprintf("println(%s)", s.Expr) }

// Assign stores Value into a named variable.
//
//	x = y + 1;
//	^   ^^^^^  Assign{Name: "x", Value: Binary{...}}
type Assign struct {
	Name  string
	Value Expr
}

func (*Assign) node()            {}
func (*Assign) stmtNode()        {}
func (s *Assign) String() string { return fmt.Sprintf("%s = %s", s.Name, s.Value) }

// ArrayAssign stores Value into one element of a named array.
type ArrayAssign struct {
	Name  string
	Index Expr
	Value Expr
}

func (*ArrayAssign) node()     {}
func (*ArrayAssign) stmtNode() {}
func (s *ArrayAssign) String() string {
	return fmt.Sprintf("%s[%s] = %s", s.Name, s.Index, s.Value)
}

// Expressions

type IntLit struct {
	Value int
}

func (*IntLit) node()            {}
func (*IntLit) exprNode()        {}
func (e *IntLit) String() string { return fmt.Sprintf("%d", e.Value) }

type BoolLit struct {
	Value bool
}

func (*BoolLit) node()            {}
func (*BoolLit) exprNode()        {}
func (e *BoolLit) String() string { return fmt.Sprintf("%t", e.Value) }

// VarRef is a read of a named local, parameter or field.
type VarRef struct {
	Name string
}

func (*VarRef) node()            {}
func (*VarRef) exprNode()        {}
func (e *VarRef) String() string { return e.Name }

// Binary is Left Op Right for Op in + - * < && ||. All binary operators
// share one precedence level and associate to the left.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
	Line  int
}

func (*Binary) node()     {}
func (*Binary) exprNode() {}
func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// Unary is Op Operand; the only unary operator is "!".
type Unary struct {
	Op      string
	Operand Expr
	Line    int
}

func (*Unary) node()            {}
func (*Unary) exprNode()        {}
func (e *Unary) String() string { return fmt.Sprintf("%s%s", e.Op, e.Operand) }

// ArrayAccess is Array[Index].
type ArrayAccess struct {
	Array Expr
	Index Expr
}

func (*ArrayAccess) node()            {}
func (*ArrayAccess) exprNode()        {}
func (e *ArrayAccess) String() string { return fmt.Sprintf("%s[%s]", e.Array, e.Index) }

// ArrayLength is Array.length.
type ArrayLength struct {
	Array Expr
}

func (*ArrayLength) node()            {}
func (*ArrayLength) exprNode()        {}
func (e *ArrayLength) String() string { return fmt.Sprintf("%s.length", e.Array) }

// MethodCall is Receiver.Method(Args...).
type MethodCall struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Line     int
}

func (*MethodCall) node()     {}
func (*MethodCall) exprNode() {}
func (e *MethodCall) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s.%s(%s)", e.Receiver, e.Method, strings.Join(args, ", "))
}

// NewArray is new int[Size].
type NewArray struct {
	Size Expr
}

func (*NewArray) node()            {}
func (*NewArray) exprNode()        {}
func (e *NewArray) String() string { return fmt.Sprintf("new int[%s]", e.Size) }

// NewObject is new Class().
type NewObject struct {
	Class string
}

func (*NewObject) node()            {}
func (*NewObject) exprNode()        {}
func (e *NewObject) String() string { return fmt.Sprintf("new %s()", e.Class) }

// This refers to the instance whose method is executing.
type This struct{}

func (*This) node()          {}
func (*This) exprNode()      {}
func (*This) String() string { return "this" }
