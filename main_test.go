package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const countdown = `class Countdown {
  public static void main(String[] args) {
    int z;
    int n;
    z = 0;
    n = 3;
    while (0 < n) {
      System.out.println(n);
      n = n - 1;
    }
  }
}
`

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("expected %q in:\n%s", want, got)
	}
}

// compileFile writes src to a temp dir and runs the driver on it.
func compileFile(t *testing.T, name, src string, opts options) (int, string, string) {
	t.Helper()
	dir := t.TempDir()
	opts.inPath = filepath.Join(dir, name)
	if err := os.WriteFile(opts.inPath, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	if opts.outDir == "" {
		opts.outDir = filepath.Join(dir, "output")
	}
	if opts.logLevel == "" {
		opts.logLevel, opts.logFormat = "error", "text"
	}
	var stdout, stderr bytes.Buffer
	code := run(opts, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWritesArtifacts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "artifacts")
	code, stdout, stderr := compileFile(t, "Countdown.java", countdown, options{
		outDir: out, run: true, llvm: true, png: true, maxSteps: 10000,
	})
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	assertContains(t, stdout, "3\n2\n1\n")

	for _, ext := range []string{"tokens", "ast", "sym", "tac", "asm", "ll", "png", "vm.zip"} {
		path := filepath.Join(out, "Countdown."+ext)
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("artifact %s missing or empty (%v)", path, err)
		}
	}

	asm, _ := os.ReadFile(filepath.Join(out, "Countdown.asm"))
	assertContains(t, string(asm), "section .text")
	tac, _ := os.ReadFile(filepath.Join(out, "Countdown.tac"))
	assertContains(t, string(tac), "if_false t.1 goto ENDL2")
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		opts   options
		code   int
		stderr string
	}{
		{
			name:   "syntax",
			src:    "class Main { public static void main(String[] a) { x = ; } }",
			code:   exitSyntax,
			stderr: "parse: line 1",
		},
		{
			name:   "semantic",
			src:    "class Main { public static void main(String[] a) { x = 1; } }",
			code:   exitSemantic,
			stderr: "Error in class 'Main', method 'main': Undeclared variable x for assignment",
		},
		{
			name:   "unsupported operator",
			src:    "class Main { public static void main(String[] a) { boolean b; b = true || false; } }",
			code:   exitUnsupported,
			stderr: `operator "||"`,
		},
		{
			name:   "step limit",
			src:    "class Main { public static void main(String[] a) { int z; z = 0; while (true) z = 1; } }",
			opts:   options{run: true, maxSteps: 100},
			code:   exitRuntime,
			stderr: "step limit",
		},
		{
			name:   "bad log level",
			src:    countdown,
			opts:   options{logLevel: "loud", logFormat: "text"},
			code:   exitUsage,
			stderr: "loud",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := compileFile(t, "Main.java", tt.src, tt.opts)
			if code != tt.code {
				t.Errorf("exit %d, want %d", code, tt.code)
			}
			assertContains(t, stderr, tt.stderr)
		})
	}
}

func TestRunKeepsPartialArtifacts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "o")
	code, _, _ := compileFile(t, "Bad.java", "class Bad { public static void main(String[] a) { y = 2; } }", options{outDir: out})
	if code != exitSemantic {
		t.Fatalf("exit %d", code)
	}
	for _, ext := range []string{"tokens", "ast", "err"} {
		if _, err := os.Stat(filepath.Join(out, "Bad."+ext)); err != nil {
			t.Errorf("missing Bad.%s: %v", ext, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "Bad.asm")); err == nil {
		t.Error("assembly written for a program that failed analysis")
	}
}

func TestRunMissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(options{inPath: filepath.Join(t.TempDir(), "nope.java"), logLevel: "error", logFormat: "text"}, &stdout, &stderr)
	if code != exitUsage {
		t.Errorf("exit %d", code)
	}
	assertContains(t, stderr.String(), "failed to read input file")
}
