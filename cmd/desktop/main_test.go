package main

import (
	"strings"
	"testing"
)

const program = `class Main {
  public static void main(String[] args) {
    int z;
    int x;
    z = 0;
    x = 6;
    System.out.println(x * 7);
  }
}
`

func paneByTitle(t *testing.T, g *Game, title string) pane {
	t.Helper()
	for _, p := range g.panes {
		if p.title == title {
			return p
		}
	}
	t.Fatalf("no pane %q", title)
	return pane{}
}

func TestNewGameWiring(t *testing.T) {
	g := newGame(program, 1000)
	if g.vm == nil || g.prog == nil || g.runErr != nil {
		t.Fatalf("machine not loaded: %v", g.runErr)
	}
	if g.ast == nil {
		t.Error("AST image not rendered")
	}

	want := []string{"Source", "Tokens", "AST", "Symbols", "Diagnostics", "Three-address code", "Assembly", "LLVM IR"}
	if len(g.panes) != len(want) {
		t.Fatalf("got %d panes, want %d", len(g.panes), len(want))
	}
	for i, title := range want {
		if g.panes[i].title != title {
			t.Errorf("pane %d = %q, want %q", i, g.panes[i].title, title)
		}
	}

	asmPane := paneByTitle(t, g, "Assembly")
	if asmPane.lines[0] != "section .data" {
		t.Errorf("assembly pane starts with %q", asmPane.lines[0])
	}
	if !strings.Contains(strings.Join(asmPane.lines, "\n"), ";   z            eax") {
		t.Error("bindings missing from the assembly pane")
	}
	if g.paneCount() != len(want)+2 {
		t.Errorf("paneCount = %d", g.paneCount())
	}
}

func TestMachinePaneTracksExecution(t *testing.T) {
	g := newGame(program, 1000)
	g.current = g.machinePane()

	before := strings.Join(g.lines(), "\n")
	if !strings.Contains(before, "next: mov eax, 0") {
		t.Errorf("first instruction not shown:\n%s", before)
	}

	if err := g.vm.Run(); err != nil {
		t.Fatal(err)
	}
	after := strings.Join(machineLines(g.vm, g.prog, nil), "\n")
	for _, want := range []string{"halted true", "output:\n  42", "ebx"} {
		if !strings.Contains(after, want) {
			t.Errorf("machine pane lacks %q:\n%s", want, after)
		}
	}
}

func TestNewGameOpensOnDiagnostics(t *testing.T) {
	g := newGame(strings.Replace(program, "int x;", "", 1), 1000)
	if g.vm != nil {
		t.Error("a program that failed analysis was loaded")
	}
	if g.panes[g.current].title != "Diagnostics" {
		t.Errorf("opened on %q", g.panes[g.current].title)
	}
	diags := strings.Join(g.panes[g.current].lines, "\n")
	if !strings.Contains(diags, "Undeclared variable x for assignment") {
		t.Errorf("diagnostics pane:\n%s", diags)
	}

	g.current = g.machinePane()
	if got := g.lines(); len(got) != 1 || got[0] != "(nothing to run)" {
		t.Errorf("machine pane = %q", got)
	}
}
