package compiler

import (
	"strings"
	"testing"
)

func TestDump(t *testing.T) {
	prog := parseSource(t, `class Main {
  public static void main(String[] args) {
    int x;
    x = 1 + 2;
    while (x < 5) { System.out.println(x); }
    if (!true) a[0] = new int[2].length; else c = new A();
  }
}
class A {
  int f;
  public boolean m(int p) { return this.n(p)[0] < f; }
}
`)
	var sb strings.Builder
	if err := Dump(&sb, prog); err != nil {
		t.Fatal(err)
	}
	want := `Program
  MainClass Main
    VarDecl int x
    Assign x
      Binary +
        Int 1
        Int 2
    While
      Binary <
        Var x
        Int 5
      Block
        Print
          Var x
    If
      Unary !
        Bool true
      ArrayAssign a
        Int 0
        ArrayLength
          NewArray
            Int 2
      Assign c
        New A
  Class A
    VarDecl int f
    Method boolean m(int p)
      Param int p
      Binary <
        ArrayAccess
          Call n
            This
            Var p
          Int 0
        Var f
`
	if got := sb.String(); got != want {
		t.Errorf("dump:\n%s\nwant:\n%s", got, want)
	}
	if n := CountNodes(prog); n != strings.Count(want, "\n") {
		t.Errorf("CountNodes = %d, want %d", n, strings.Count(want, "\n"))
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	prog := parseSource(t, mainWith("x = 1 + 2; y = 3;"))
	var kinds []string
	Walk(prog, func(n Node) bool {
		kinds = append(kinds, Kind(n))
		_, isAssign := n.(*Assign)
		return !isAssign
	})
	want := "Program MainClass Assign Assign"
	if got := strings.Join(kinds, " "); got != want {
		t.Errorf("visited %q, want %q", got, want)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&IntLit{Value: 7}, "Int 7"},
		{&BoolLit{Value: true}, "Bool true"},
		{&Unary{Op: "!", Operand: &BoolLit{}}, "Unary !"},
		{&NewObject{Class: "C"}, "New C"},
		{&NewArray{Size: &IntLit{Value: 1}}, "NewArray"},
		{&ArrayAssign{Name: "a"}, "ArrayAssign a"},
		{&ArrayLength{Array: &VarRef{Name: "a"}}, "ArrayLength"},
	}
	for _, tt := range tests {
		if got := Label(tt.node); got != tt.want {
			t.Errorf("Label(%T) = %q, want %q", tt.node, got, tt.want)
		}
	}
}
