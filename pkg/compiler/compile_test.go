package compiler

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const squares = `class Squares {
  public static void main(String[] args) {
    int z;
    int a;
    int b;
    z = 0;
    a = 3;
    b = 4;
    System.out.println((a * a) + (b * b));
  }
}
`

func TestCompile(t *testing.T) {
	res, err := Compile(squares, Options{EmitLLVM: true})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.AST == nil || res.Symbols == nil || len(res.Diagnostics) != 0 {
		t.Errorf("incomplete result: %+v", res)
	}
	if !strings.HasPrefix(res.Assembly, preamble) {
		t.Errorf("assembly lacks preamble:\n%s", res.Assembly)
	}
	if res.Program == nil || len(res.Program.Text) == 0 {
		t.Fatal("assembly was not checked")
	}
	if got := res.Bindings[0]; got != [2]string{"z", "eax"} {
		t.Errorf("first binding = %v", got)
	}
	if !strings.Contains(res.LLVM, "define i32 @main()") {
		t.Errorf("missing LLVM output:\n%s", res.LLVM)
	}
}

func TestCompileStageErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		stage  string
		target func(error) bool
	}{
		{
			name:  "syntax",
			src:   mainWith("x = ;"),
			stage: "parse: ",
			target: func(err error) bool {
				var se *SyntaxError
				return errors.As(err, &se)
			},
		},
		{
			name:  "semantic",
			src:   mainWith("x = 1;"),
			stage: "semantic analysis: ",
			target: func(err error) bool {
				var se SemanticErrors
				return errors.As(err, &se) && len(se) == 1
			},
		},
		{
			name:  "ir",
			src:   mainWith("boolean b; b = true && false;"),
			stage: "ir generation: ",
			target: func(err error) bool {
				var ue *UnsupportedOperatorError
				return errors.As(err, &ue) && ue.Op == "&&"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.src, Options{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), tt.stage) {
				t.Errorf("error %q does not name stage %q", err, tt.stage)
			}
			if !tt.target(err) {
				t.Errorf("error %v has the wrong type", err)
			}
			if res == nil || len(res.Tokens) == 0 {
				t.Error("tokens of the completed stage were dropped")
			}
		})
	}
}

func TestCompileKeepsLexErrors(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	res, err := Compile(mainWith("int x; x = 1; #"), Options{Logger: log})
	if len(res.LexErrors) != 1 || res.LexErrors[0].Char != '#' {
		t.Errorf("lex errors = %v", res.LexErrors)
	}
	if err != nil {
		t.Errorf("an illegal character should not stop the pipeline: %v", err)
	}
	if !strings.Contains(logs.String(), "lexical error") {
		t.Errorf("lex error not logged:\n%s", logs.String())
	}
}

func TestCompileReportsUnusedMethods(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	src := mainWith("System.out.println(1);") + `
class Idle {
  public int nothing() { return 0; }
}`
	res, err := Compile(src, Options{Logger: log})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Unused) != 1 || res.Unused[0] != "Idle.nothing" {
		t.Errorf("unused = %v", res.Unused)
	}
	if !strings.Contains(logs.String(), "method=Idle.nothing") {
		t.Errorf("warning not logged:\n%s", logs.String())
	}
}

func TestCompileSkipsLLVMForObjects(t *testing.T) {
	src := mainWith("int x; x = new Calc().twice(2); System.out.println(x);") + `
class Calc {
  public int twice(int v) { return v + v; }
}`
	res, err := Compile(src, Options{EmitLLVM: true})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.LLVM != "" {
		t.Error("LLVM emitted for a program with method calls")
	}
	if !strings.Contains(res.Assembly, "; unsupported: (call, Calc.twice, 2, t.2)") {
		t.Errorf("call not degraded to a comment:\n%s", res.Assembly)
	}
}

func TestCompileMethodLabelsNeverCollide(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		labels []string
	}{
		{
			name: "underscore in class and method names",
			src: mainWith("System.out.println(1);") + `
class A_b { public int c() { return 1; } }
class A { public int b_c() { return 2; } }`,
			labels: []string{"A_b.c", "A.b_c"},
		},
		{
			name: "method named like a branch label",
			src: mainWith("int x; x = 0; if (x < 1) x = 1; else x = 2;") + `
class END { public int IF2() { return 1; } }`,
			labels: []string{"ELSE1", "END_IF2", "END.IF2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.src, Options{})
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			for _, l := range tt.labels {
				if _, ok := res.Program.Labels[l]; !ok {
					t.Errorf("label %s missing:\n%s", l, res.Assembly)
				}
			}
		})
	}
}
