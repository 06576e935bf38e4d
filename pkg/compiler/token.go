package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // class / method / variable name
	INTEGER    // decimal integer literal

	// Keywords
	CLASS   // "class"
	PUBLIC  // "public"
	STATIC  // "static"
	VOID    // "void"
	MAIN    // "main"
	STRING  // "String"
	INT     // "int"
	BOOLEAN // "boolean"
	IF      // "if"
	ELSE    // "else"
	WHILE   // "while"
	RETURN  // "return"
	SYSTEM  // "System"
	OUT     // "out"
	PRINTLN // "println"
	TRUE    // "true"
	FALSE   // "false"
	NEW     // "new"
	THIS    // "this"

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // .
	SEMICOLON // ;
	COMMA     // ,
	ASSIGN    // =

	// Operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	LESS        // <
	NOT         // !
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
)

var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INTEGER:     "INTEGER",
	CLASS:       "CLASS",
	PUBLIC:      "PUBLIC",
	STATIC:      "STATIC",
	VOID:        "VOID",
	MAIN:        "MAIN",
	STRING:      "STRING",
	INT:         "INT",
	BOOLEAN:     "BOOLEAN",
	IF:          "IF",
	ELSE:        "ELSE",
	WHILE:       "WHILE",
	RETURN:      "RETURN",
	SYSTEM:      "SYSTEM",
	OUT:         "OUT",
	PRINTLN:     "PRINTLN",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	NEW:         "NEW",
	THIS:        "THIS",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
	DOT:         "DOT",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	ASSIGN:      "ASSIGN",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	LESS:        "LESS",
	NOT:         "NOT",
	AND_LOGICAL: "AND_LOGICAL",
	OR_LOGICAL:  "OR_LOGICAL",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-11s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

// describe renders a token for diagnostics; EOF has no lexeme of its own.
func (t Token) describe() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}
