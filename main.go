package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"minijavac/pkg/compiler"
	"minijavac/pkg/cpu"
	"minijavac/pkg/logger"
	"minijavac/pkg/utils"
	"minijavac/pkg/vfs"
	"minijavac/pkg/viz"
)

// Exit codes, one per failing stage.
const (
	exitOK = iota
	exitUsage
	exitSyntax
	exitSemantic
	exitUnsupported
	exitInternal
	exitRuntime
)

type options struct {
	inPath    string
	outDir    string
	run       bool
	llvm      bool
	png       bool
	maxSteps  int
	logLevel  string
	logFormat string
}

func main() {
	var opts options
	flag.StringVar(&opts.inPath, "in", "", "input source file path")
	flag.StringVar(&opts.outDir, "out", "output", "directory for the generated artifacts")
	flag.BoolVar(&opts.run, "run", false, "run the generated assembly on the virtual CPU")
	flag.BoolVar(&opts.llvm, "llvm", false, "also emit LLVM IR for the main method")
	flag.BoolVar(&opts.png, "png", false, "render the AST to a PNG image")
	flag.IntVar(&opts.maxSteps, "max-steps", cpu.DefaultMaxSteps, "instruction limit for -run")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flag.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	flag.Parse()

	if opts.inPath == "" && flag.NArg() > 0 {
		opts.inPath = flag.Arg(0)
	}
	if opts.inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <file>")
		flag.Usage()
		os.Exit(exitUsage)
	}

	os.Exit(run(opts, os.Stdout, os.Stderr))
}

// run compiles opts.inPath, writes its artifacts and optionally executes it.
// It returns the process exit code.
func run(opts options, stdout, stderr io.Writer) int {
	log, err := logger.FromFlags(opts.logLevel, opts.logFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	source, err := os.ReadFile(opts.inPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read input file %q: %v\n", opts.inPath, err)
		return exitUsage
	}

	res, compileErr := compiler.Compile(string(source), compiler.Options{Logger: log, EmitLLVM: opts.llvm})
	for _, le := range res.LexErrors {
		fmt.Fprintf(stderr, "lexical error: %v\n", le)
	}

	store := vfs.NewStore()
	if err := writeArtifacts(store, opts, res); err != nil {
		fmt.Fprintf(stderr, "failed to build artifacts: %v\n", err)
		return exitInternal
	}

	code := exitOK
	if compileErr != nil {
		fmt.Fprintf(stderr, "compilation failed: %v\n", compileErr)
		code = exitCode(compileErr)
	} else {
		for _, m := range res.Unused {
			fmt.Fprintf(stderr, "warning: method %s is never called\n", m)
		}
		fmt.Fprintf(stdout, "compiled %s: %d quadruples, %d assembly lines\n",
			opts.inPath, len(res.IR), strings.Count(res.Assembly, "\n")+1)

		if opts.run {
			code = execute(store, opts, res, stdout, stderr, log)
		}
	}

	if err := store.PersistTo(opts.outDir); err != nil {
		fmt.Fprintf(stderr, "failed to write artifacts to %q: %v\n", opts.outDir, err)
		if code == exitOK {
			code = exitInternal
		}
	}
	return code
}

// exitCode maps a Compile error to the exit code of its stage.
func exitCode(err error) int {
	var syntaxErr *compiler.SyntaxError
	var semErr compiler.SemanticErrors
	var opErr *compiler.UnsupportedOperatorError
	switch {
	case errors.As(err, &syntaxErr):
		return exitSyntax
	case errors.As(err, &semErr):
		return exitSemantic
	case errors.As(err, &opErr):
		return exitUnsupported
	}
	return exitInternal
}

// writeArtifacts stores whatever the completed stages produced.
func writeArtifacts(store *vfs.Store, opts options, res *compiler.Result) error {
	name := func(ext string) string { return utils.ArtifactName(opts.inPath, ext) }

	var tokens strings.Builder
	for _, tok := range res.Tokens {
		fmt.Fprintln(&tokens, tok)
	}
	if err := store.WriteString(name("tokens"), tokens.String()); err != nil {
		return err
	}

	if res.AST != nil {
		var ast bytes.Buffer
		if err := compiler.Dump(&ast, res.AST); err != nil {
			return err
		}
		if err := store.Write(name("ast"), ast.Bytes()); err != nil {
			return err
		}
		if opts.png {
			var img bytes.Buffer
			if err := viz.WritePNG(&img, res.AST); err != nil {
				return err
			}
			if err := store.Write(name("png"), img.Bytes()); err != nil {
				return err
			}
		}
	}

	if res.Symbols != nil {
		if err := store.WriteString(name("sym"), res.Symbols.String()); err != nil {
			return err
		}
	}
	if len(res.Diagnostics) > 0 {
		if err := store.WriteString(name("err"), compiler.SemanticErrors(res.Diagnostics).Error()+"\n"); err != nil {
			return err
		}
	}

	if res.IR != nil {
		var tac bytes.Buffer
		if err := compiler.WriteTAC(&tac, res.IR); err != nil {
			return err
		}
		if err := store.Write(name("tac"), tac.Bytes()); err != nil {
			return err
		}
	}
	if res.Assembly != "" {
		if err := store.WriteString(name("asm"), res.Assembly+"\n"); err != nil {
			return err
		}
	}
	if res.LLVM != "" {
		if err := store.WriteString(name("ll"), res.LLVM); err != nil {
			return err
		}
	}
	return nil
}

func execute(store *vfs.Store, opts options, res *compiler.Result, stdout, stderr io.Writer, log *slog.Logger) int {
	vm := cpu.NewCPU(cpu.Config{MaxSteps: opts.maxSteps, Output: stdout})
	if err := vm.Load(res.Program); err != nil {
		fmt.Fprintf(stderr, "load failed: %v\n", err)
		return exitRuntime
	}

	runErr := vm.Run()
	log.Info("run complete", "steps", vm.Steps, "exit", vm.ExitCode, "halted", vm.Halted)

	snap, err := vm.SnapshotToBytes()
	if err == nil {
		err = store.Write(utils.ArtifactName(opts.inPath, "vm.zip"), snap)
	}
	if err != nil {
		log.Warn("snapshot not saved", "error", err)
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "run failed: %v\n", runErr)
		return exitRuntime
	}
	return exitOK
}
