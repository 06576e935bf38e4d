package compiler

import (
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"class":   CLASS,
	"public":  PUBLIC,
	"static":  STATIC,
	"void":    VOID,
	"main":    MAIN,
	"String":  STRING,
	"int":     INT,
	"boolean": BOOLEAN,
	"if":      IF,
	"else":    ELSE,
	"while":   WHILE,
	"return":  RETURN,
	"System":  SYSTEM,
	"out":     OUT,
	"println": PRINTLN,
	"true":    TRUE,
	"false":   FALSE,
	"new":     NEW,
	"this":    THIS,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	errs []LexError
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed.
func (l *Lexer) skipBlockComment() bool {
	startLine := l.line
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance() // *
			l.advance() // /
			return true
		}
		l.advance()
	}
	l.errs = append(l.errs, LexError{Line: startLine, Msg: "unterminated block comment"})
	return false
}

// scanIdent collects a full identifier or keyword token.
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !isIdentRune(r) {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanInt collects a decimal integer literal.
func (l *Lexer) scanInt() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: INTEGER, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// Identifiers are ASCII only, matching [A-Za-z_][A-Za-z0-9_]*.
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// nextToken skips whitespace/comments and returns the next Token. Illegal
// characters are recorded and skipped, so the only way to stop the scan is EOF.
func (l *Lexer) nextToken() Token {
	for {
		for {
			l.skipWhitespace()
			if l.pos >= len(l.src) {
				return Token{Type: EOF, Lexeme: "", Line: l.line}
			}
			if l.peek() == '/' && l.peek2() == '/' {
				l.advance()
				l.advance()
				l.skipLineComment()
				continue
			}
			if l.peek() == '/' && l.peek2() == '*' {
				l.advance()
				l.advance()
				if !l.skipBlockComment() {
					return Token{Type: EOF, Lexeme: "", Line: l.line}
				}
				continue
			}
			break
		}

		ch := l.peek()
		line := l.line

		if isIdentStart(ch) {
			return l.scanIdent()
		}
		if isDigit(ch) {
			return l.scanInt()
		}

		l.advance()
		switch ch {
		case '{':
			return Token{LBRACE, "{", line}
		case '}':
			return Token{RBRACE, "}", line}
		case '(':
			return Token{LPAREN, "(", line}
		case ')':
			return Token{RPAREN, ")", line}
		case '[':
			return Token{LBRACKET, "[", line}
		case ']':
			return Token{RBRACKET, "]", line}
		case '.':
			return Token{DOT, ".", line}
		case ';':
			return Token{SEMICOLON, ";", line}
		case ',':
			return Token{COMMA, ",", line}
		case '=':
			return Token{ASSIGN, "=", line}
		case '+':
			return Token{PLUS, "+", line}
		case '-':
			return Token{MINUS, "-", line}
		case '*':
			return Token{STAR, "*", line}
		case '<':
			return Token{LESS, "<", line}
		case '!':
			return Token{NOT, "!", line}
		case '&':
			if l.peek() == '&' {
				l.advance()
				return Token{AND_LOGICAL, "&&", line}
			}
		case '|':
			if l.peek() == '|' {
				l.advance()
				return Token{OR_LOGICAL, "||", line}
			}
		}
		l.errs = append(l.errs, LexError{Line: line, Char: ch})
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Illegal characters do not stop the scan; each one is reported in the
// returned error slice and skipped.
func Lex(src string) ([]Token, []LexError) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, l.errs
		}
	}
}
