package compiler

import (
	"fmt"
	"strings"
	"testing"
)

const preamble = `section .data
  fmt_int: db "%d", 10, 0

section .text
  global main
  extern printf

main:
`

func TestCodeGenListing(t *testing.T) {
	quads := []Quad{
		{Op: OpBeginMain},
		{Op: OpAssign, A: Const(5), Result: Name("x")},
		{Op: OpLess, A: Name("x"), B: Const(9), Result: Name("t1")},
		{Op: OpIfFalse, A: Name("t1"), B: LabelRef("ELSE1")},
		{Op: OpMul, A: Name("x"), B: Name("x"), Result: Name("t2")},
		{Op: OpPrint, A: Name("t2")},
		{Op: OpGoto, A: LabelRef("END_IF2")},
		{Op: OpLabel, A: LabelRef("ELSE1")},
		{Op: OpSub, A: Name("x"), B: Const(1), Result: Name("x")},
		{Op: OpLabel, A: LabelRef("END_IF2")},
		{Op: OpEndMain},
	}
	want := preamble + `  mov eax, 5
  mov ebx, eax
  cmp ebx, 9
  setl al
  movzx ebx, al
  cmp ebx, 0
  je ELSE1
  mov ecx, eax
  imul ecx, eax
  push dword ecx
  push dword fmt_int
  call printf
  add esp, 8
  jmp END_IF2
ELSE1:
  mov eax, eax
  sub eax, 1
END_IF2:
  mov eax, 0
  ret`

	if got := GenerateX86(quads); got != want {
		t.Errorf("listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestCodeGenBindings(t *testing.T) {
	var quads []Quad
	for i := 1; i <= 8; i++ {
		quads = append(quads, Quad{Op: OpAssign, A: Const(i), Result: Name(fmt.Sprintf("v%d", i))})
	}
	quads = append(quads, Quad{Op: OpAdd, A: Name("v1"), B: Name("v8"), Result: Name("v7")})

	cg := NewCodeGen()
	out := cg.Generate(quads)

	bindings := cg.Bindings()
	if len(bindings) != 8 {
		t.Fatalf("got %d bindings, want 8", len(bindings))
	}
	for i, b := range bindings {
		want := fmt.Sprintf("mem_v%d", i+1)
		if i < len(Registers) {
			want = Registers[i]
		}
		if b[0] != fmt.Sprintf("v%d", i+1) || b[1] != want {
			t.Errorf("binding %d = %v, want v%d -> %s", i, b, i+1, want)
		}
	}

	// a later use never rebinds
	if loc, _ := cg.Binding("v7"); loc != "mem_v7" {
		t.Errorf("v7 bound to %s", loc)
	}
	if _, ok := cg.Binding("v9"); ok {
		t.Error("unused name has a binding")
	}
	for _, line := range []string{"  mov mem_v8, 8", "  mov mem_v7, eax", "  add mem_v7, mem_v8"} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output lacks %q:\n%s", line, out)
		}
	}
}

func TestCodeGenBindsDestinationFirst(t *testing.T) {
	cg := NewCodeGen()
	cg.Generate([]Quad{{Op: OpAdd, A: Name("a"), B: Name("b"), Result: Name("c")}})
	want := [][2]string{{"c", "eax"}, {"a", "ebx"}, {"b", "ecx"}}
	got := cg.Bindings()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("bindings = %v, want %v", got, want)
	}
}

func TestCodeGenConstantsAreNotBound(t *testing.T) {
	cg := NewCodeGen()
	out := cg.Generate([]Quad{
		{Op: OpPrint, A: Const(42)},
		{Op: OpReturn, A: Const(3)},
	})
	if len(cg.Bindings()) != 0 {
		t.Errorf("constants were bound: %v", cg.Bindings())
	}
	for _, line := range []string{"  push 42", "  mov eax, 3"} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output lacks %q", line)
		}
	}
}

func TestCodeGenUnsupported(t *testing.T) {
	out := GenerateX86([]Quad{
		{Op: OpBeginMain},
		{Op: OpParam, A: Name("t1")},
		{Op: OpCall, A: LabelRef("Calc.twice"), B: Const(1), Result: Name("t2")},
		{Op: OpEndMain},
	})
	for _, line := range []string{
		"  ; unsupported: (param, t1, _, _)",
		"  ; unsupported: (call, Calc.twice, 1, t2)",
	} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output lacks %q:\n%s", line, out)
		}
	}
}

func TestCodeGenAlwaysReturns(t *testing.T) {
	tests := []struct {
		name  string
		quads []Quad
	}{
		{"empty", nil},
		{"no end_main", []Quad{{Op: OpBeginMain}, {Op: OpPrint, A: Const(1)}}},
		{"end_main", []Quad{{Op: OpBeginMain}, {Op: OpEndMain}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := GenerateX86(tt.quads)
			if !strings.HasPrefix(out, preamble) {
				t.Errorf("missing preamble:\n%s", out)
			}
			if !strings.HasSuffix(out, "  mov eax, 0\n  ret") {
				t.Errorf("missing final return:\n%s", out)
			}
			if n := strings.Count(out, "  ret"); n != 1 {
				t.Errorf("%d returns", n)
			}
		})
	}
}
