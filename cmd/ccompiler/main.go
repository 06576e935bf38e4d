package main

import (
	"flag"
	"fmt"
	"os"

	"minijavac/pkg/compiler"
	"minijavac/pkg/logger"
)

const testSource = `class Main {
  public static void main(String[] args) {
    int x;
    int y;
    x = 10;
    y = 20;
    if (x < y) System.out.println(y - x); else System.out.println(0);
  }
}
`

func main() {
	logLevel := flag.String("log-level", "debug", "log level: debug, info, warn or error")
	flag.Parse()

	log, err := logger.FromFlags(*logLevel, "text")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	src := testSource
	if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	res, err := compiler.Compile(src, compiler.Options{Logger: log, EmitLLVM: true})

	fmt.Printf("Tokens (%d)\n", len(res.Tokens))
	for _, tok := range res.Tokens {
		fmt.Println(" ", tok)
	}
	for _, le := range res.LexErrors {
		fmt.Println("  lex error:", le)
	}
	fmt.Println()

	if res.AST != nil {
		fmt.Println("AST")
		compiler.Dump(os.Stdout, res.AST)
		fmt.Println()
	}

	if res.Symbols != nil {
		fmt.Print(res.Symbols)
		fmt.Println()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Three-address code")
	compiler.WriteTAC(os.Stdout, res.IR)
	fmt.Println()

	fmt.Println("Generated Assembly")
	fmt.Println(res.Assembly)
	fmt.Println()

	fmt.Println("Register bindings")
	for _, b := range res.Bindings {
		fmt.Printf("  %-12s %s\n", b[0], b[1])
	}

	if res.LLVM != "" {
		fmt.Println()
		fmt.Println("LLVM IR")
		fmt.Print(res.LLVM)
	}
}
