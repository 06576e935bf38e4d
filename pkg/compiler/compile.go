package compiler

import (
	"fmt"
	"log/slog"

	"minijavac/pkg/asm"
)

// Options configures one Compile run.
type Options struct {
	Logger   *slog.Logger // nil discards logging
	EmitLLVM bool         // also lower the entry method to LLVM IR when possible
}

// Result holds every artifact a run produced. On failure it holds the
// artifacts of the stages that completed.
type Result struct {
	Tokens      []Token
	LexErrors   []LexError
	AST         *Program
	Symbols     *SymbolTable
	Diagnostics []Diagnostic
	Unused      []string
	IR          []Quad
	Assembly    string
	Bindings    [][2]string
	Program     *asm.Program
	LLVM        string
}

// Compile runs the whole pipeline over src. Lexical errors are logged and
// kept in the result; any later failure stops the pipeline and is returned
// wrapped with the name of its stage.
func Compile(src string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	res := &Result{}

	res.Tokens, res.LexErrors = Lex(src)
	for _, le := range res.LexErrors {
		log.Warn("lexical error", "line", le.Line, "error", le.Error())
	}
	log.Debug("lexing complete", "tokens", len(res.Tokens), "errors", len(res.LexErrors))

	prog, err := Parse(res.Tokens, src)
	if err != nil {
		return res, fmt.Errorf("parse: %w", err)
	}
	res.AST = prog
	log.Debug("parsing complete", "classes", len(prog.Classes)+1, "nodes", CountNodes(prog))

	an := NewAnalyzer()
	res.Diagnostics = an.Analyze(prog)
	res.Symbols = an.Symbols()
	if len(res.Diagnostics) > 0 {
		return res, fmt.Errorf("semantic analysis: %w", SemanticErrors(res.Diagnostics))
	}
	res.Unused = UnusedMethods(prog, an.CallTargets())
	for _, m := range res.Unused {
		log.Warn("method is never called", "method", m)
	}
	log.Debug("semantic analysis complete", "classes", len(prog.Classes)+1)

	gen := NewIRGen(an.CallTargets())
	res.IR, err = gen.Generate(prog)
	if err != nil {
		return res, fmt.Errorf("ir generation: %w", err)
	}
	log.Debug("ir generation complete", "quads", len(res.IR), "temps", gen.Temps(), "labels", gen.Labels())

	cg := NewCodeGen()
	res.Assembly = cg.Generate(res.IR)
	res.Bindings = cg.Bindings()
	log.Debug("code generation complete", "bindings", len(res.Bindings))

	res.Program, err = asm.Parse(res.Assembly)
	if err != nil {
		return res, fmt.Errorf("assembly check: %w", err)
	}
	log.Debug("assembly check complete", "instructions", len(res.Program.Text))

	if opts.EmitLLVM {
		// programs using objects or arrays have no LLVM lowering yet; the
		// x86 output is still valid for them
		res.LLVM, err = GenerateLLVM(res.IR)
		if err != nil {
			log.Warn("llvm lowering skipped", "error", err)
		} else {
			log.Debug("llvm lowering complete", "bytes", len(res.LLVM))
		}
	}
	return res, nil
}
