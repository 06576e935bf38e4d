package compiler

import (
	"fmt"
	"strings"
)

// LexError is an illegal character (or unterminated comment). The lexer
// records it and keeps scanning.
type LexError struct {
	Line int
	Char rune
	Msg  string // set for errors that are not a single bad character
}

func (e LexError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: illegal character %q", e.Line, e.Char)
}

// SyntaxError is a grammar violation. Parsing stops at the first one.
type SyntaxError struct {
	Line    int
	Token   string // offending lexeme, or "end of input"
	Msg     string
	Snippet string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s\n  |> %s", e.Line, e.Msg, e.Snippet)
}

// Diagnostic is one semantic violation, tagged with the class and method
// being checked when it was found.
type Diagnostic struct {
	Class  string
	Method string
	Msg    string
}

func (d Diagnostic) String() string {
	switch {
	case d.Class == "":
		return "Error: " + d.Msg
	case d.Method == "":
		return fmt.Sprintf("Error in class '%s': %s", d.Class, d.Msg)
	}
	return fmt.Sprintf("Error in class '%s', method '%s': %s", d.Class, d.Method, d.Msg)
}

// SemanticErrors is the accumulated output of a failed analysis pass.
type SemanticErrors []Diagnostic

func (e SemanticErrors) Error() string {
	lines := make([]string, len(e))
	for i, d := range e {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// UnsupportedOperatorError aborts IR generation when an operator has no
// three-address lowering.
type UnsupportedOperatorError struct {
	Op   string
	Line int
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("line %d: operator %q is not supported by the IR generator", e.Line, e.Op)
}
