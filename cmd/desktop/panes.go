package main

import (
	"fmt"
	"sort"
	"strings"

	"minijavac/pkg/asm"
	"minijavac/pkg/compiler"
	"minijavac/pkg/cpu"
)

// pane is one scrollable text view.
type pane struct {
	title string
	lines []string
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// buildPanes turns a compile result into the static text panes. Stages that
// did not run get a placeholder line.
func buildPanes(src string, res *compiler.Result, compileErr error) []pane {
	panes := []pane{{title: "Source", lines: splitLines(src)}}

	var tokens []string
	for _, tok := range res.Tokens {
		tokens = append(tokens, tok.String())
	}
	for _, le := range res.LexErrors {
		tokens = append(tokens, "lex error: "+le.Error())
	}
	panes = append(panes, pane{title: "Tokens", lines: tokens})

	ast := []string{"(not parsed)"}
	if res.AST != nil {
		var sb strings.Builder
		compiler.Dump(&sb, res.AST)
		ast = splitLines(sb.String())
	}
	panes = append(panes, pane{title: "AST", lines: ast})

	syms := []string{"(not analyzed)"}
	if res.Symbols != nil {
		syms = splitLines(res.Symbols.String())
	}
	panes = append(panes, pane{title: "Symbols", lines: syms})

	diags := []string{"no errors"}
	if compileErr != nil {
		diags = splitLines(compileErr.Error())
	}
	for _, m := range res.Unused {
		diags = append(diags, "warning: method "+m+" is never called")
	}
	panes = append(panes, pane{title: "Diagnostics", lines: diags})

	tac := []string{"(no IR)"}
	if res.IR != nil {
		var sb strings.Builder
		compiler.WriteTAC(&sb, res.IR)
		tac = splitLines(sb.String())
	}
	panes = append(panes, pane{title: "Three-address code", lines: tac})

	listing := []string{"(no assembly)"}
	if res.Assembly != "" {
		listing = splitLines(res.Assembly)
		if len(res.Bindings) > 0 {
			listing = append(listing, "", "; bindings")
			for _, b := range res.Bindings {
				listing = append(listing, fmt.Sprintf(";   %-12s %s", b[0], b[1]))
			}
		}
	}
	panes = append(panes, pane{title: "Assembly", lines: listing})
	return panes
}

// machineLines renders the VM state: registers, flags, spilled names, the
// next instruction and everything printed so far.
func machineLines(vm *cpu.CPU, prog *asm.Program, runErr error) []string {
	lines := []string{
		fmt.Sprintf("steps %d  depth %d  halted %t  exit %d", vm.Steps, vm.CallDepth, vm.Halted, vm.ExitCode),
		fmt.Sprintf("Z=%t L=%t", vm.Z, vm.L),
		"",
	}
	for _, r := range asm.Registers {
		lines = append(lines, fmt.Sprintf("%-4s %11d  0x%08x", r, vm.Regs[r], uint32(vm.Regs[r])))
	}

	if len(vm.Mem) > 0 {
		lines = append(lines, "")
		names := make([]string, 0, len(vm.Mem))
		for n := range vm.Mem {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			lines = append(lines, fmt.Sprintf("%-16s %d", n, vm.Mem[n]))
		}
	}

	lines = append(lines, "")
	if prog != nil && vm.PC >= 0 && vm.PC < len(prog.Text) {
		lines = append(lines, fmt.Sprintf("next: %s", prog.Text[vm.PC]))
	} else {
		lines = append(lines, "next: (none)")
	}
	if runErr != nil {
		lines = append(lines, "error: "+runErr.Error())
	}

	lines = append(lines, "", "output:")
	for _, v := range vm.Printed {
		lines = append(lines, fmt.Sprintf("  %d", v))
	}
	return lines
}
