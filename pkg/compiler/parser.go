package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = mainClass classDecl* EOF
//	mainClass  = ["public"] "class" ID "{" "public" "static" "void" "main"
//	             "(" "String" "[" "]" ID ")" "{" (varDecl | statement)* "}" "}"
//	classDecl  = "class" ID "{" varDecl* methodDecl* "}"
//	methodDecl = "public" type ID "(" [type ID ("," type ID)*] ")"
//	             "{" varDecl* statement* "return" expr ";" "}"
//	varDecl    = type ID ";"
//	type       = "int" "[" "]" | "boolean" | "int" | ID
//	statement  = "{" statement* "}"
//	           | "if" "(" expr ")" statement "else" statement
//	           | "while" "(" expr ")" statement
//	           | "System" "." "out" "." "println" "(" expr ")" ";"
//	           | ID "=" expr ";"
//	           | ID "[" expr "]" "=" expr ";"
//	expr       = unary (("+" | "-" | "*" | "<" | "&&" | "||") unary)*
//	unary      = "!" unary | postfix
//	postfix    = primary ("[" expr "]" | "." "length" | "." ID "(" [expr ("," expr)*] ")")*
//	primary    = INTEGER | "true" | "false" | ID | "this"
//	           | "new" "int" "[" expr "]" | "new" ID "(" ")" | "(" expr ")"
//
// Binary operators share a single precedence level and associate left, so
// a + b * c parses as (a + b) * c.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError builds a SyntaxError pointing at tok, with the source line it
// appears on.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return &SyntaxError{
		Line:    tok.Line,
		Token:   tok.describe(),
		Msg:     fmt.Sprintf(format, args...),
		Snippet: snippet,
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		line := 0
		if len(p.tokens) > 0 {
			line = p.tokens[len(p.tokens)-1].Line
		}
		return Token{Type: EOF, Line: line}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s", tt, tok.describe())
	}
	return tok, nil
}

// expectAll consumes a fixed run of tokens.
func (p *Parser) expectAll(tts ...TokenType) error {
	for _, tt := range tts {
		if _, err := p.expect(tt); err != nil {
			return err
		}
	}
	return nil
}

// isVarDeclStart reports whether the upcoming tokens begin a declaration
// rather than a statement. "Foo x" is a declaration, "x = ..." is not.
func (p *Parser) isVarDeclStart() bool {
	switch p.peek().Type {
	case INT, BOOLEAN:
		return true
	case IDENTIFIER:
		return p.peekAt(1).Type == IDENTIFIER
	}
	return false
}

func (p *Parser) parseType() (Type, error) {
	tok := p.advance()
	switch tok.Type {
	case INT:
		if p.peek().Type == LBRACKET {
			p.advance()
			if _, err := p.expect(RBRACKET); err != nil {
				return Invalid, err
			}
			return IntArray, nil
		}
		return Int, nil
	case BOOLEAN:
		return Boolean, nil
	case IDENTIFIER:
		return ClassRef(tok.Lexeme), nil
	}
	return Invalid, p.fmtError(tok, "expected a type, got %s", tok.describe())
}

func (p *Parser) parseVarDecl() (*VarDecl, error) {
	line := p.peek().Line
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &VarDecl{Type: typ, Name: name.Lexeme, Line: line}, nil
}

func (p *Parser) parseMainClass() (*MainClass, error) {
	if p.peek().Type == PUBLIC {
		p.advance()
	}
	if _, err := p.expect(CLASS); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if err := p.expectAll(LBRACE, PUBLIC, STATIC, VOID, MAIN, LPAREN, STRING, LBRACKET, RBRACKET); err != nil {
		return nil, err
	}
	arg, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if err := p.expectAll(RPAREN, LBRACE); err != nil {
		return nil, err
	}

	var items []Stmt
	for p.peek().Type != RBRACE {
		if p.isVarDeclStart() {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			items = append(items, decl)
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		items = append(items, stmt)
	}
	if err := p.expectAll(RBRACE, RBRACE); err != nil {
		return nil, err
	}

	// Declarations and statements may interleave in the source; split them
	// by kind.
	main := &MainClass{Name: name.Lexeme, ArgName: arg.Lexeme}
	for _, item := range items {
		if decl, ok := item.(*VarDecl); ok {
			main.Vars = append(main.Vars, decl)
		} else {
			main.Body = append(main.Body, item)
		}
	}
	return main, nil
}

func (p *Parser) parseClassDecl() (*ClassDecl, error) {
	if _, err := p.expect(CLASS); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	cls := &ClassDecl{Name: name.Lexeme}
	for p.isVarDeclStart() {
		field, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		cls.Fields = append(cls.Fields, field)
	}
	for p.peek().Type == PUBLIC {
		m, err := p.parseMethodDecl()
		if err != nil {
			return nil, err
		}
		cls.Methods = append(cls.Methods, m)
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return cls, nil
}

func (p *Parser) parseMethodDecl() (*MethodDecl, error) {
	if _, err := p.expect(PUBLIC); err != nil {
		return nil, err
	}
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	m := &MethodDecl{Name: name.Lexeme, ReturnType: ret}
	if p.peek().Type != RPAREN {
		for {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pname, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			m.Params = append(m.Params, &Param{Type: typ, Name: pname.Lexeme})
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if err := p.expectAll(RPAREN, LBRACE); err != nil {
		return nil, err
	}

	for p.isVarDeclStart() {
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		m.Vars = append(m.Vars, decl)
	}
	for p.peek().Type != RETURN {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		m.Body = append(m.Body, stmt)
	}
	p.advance() // return

	m.Return, err = p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectAll(SEMICOLON, RBRACE); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseBlock() (*Block, error) {
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	block := &Block{}
	for p.peek().Type != RBRACE {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	p.advance() // }
	return block, nil
}

// parseCondition parses "(" expr ")".
func (p *Parser) parseCondition() (Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // if
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ELSE); err != nil {
		return nil, err
	}
	els, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &If{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	p.advance() // while
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: body}, nil
}

func (p *Parser) parsePrint() (Stmt, error) {
	if err := p.expectAll(SYSTEM, DOT, OUT, DOT, PRINTLN, LPAREN); err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectAll(RPAREN, SEMICOLON); err != nil {
		return nil, err
	}
	return &Print{Expr: e}, nil
}

// parseAssignment handles both "x = e;" and "x[i] = e;".
func (p *Parser) parseAssignment() (Stmt, error) {
	name := p.advance()
	var index Expr
	switch p.peek().Type {
	case ASSIGN:
	case LBRACKET:
		p.advance()
		var err error
		index, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
	default:
		tok := p.peek()
		return nil, p.fmtError(tok, "expected ASSIGN or LBRACKET after %q, got %s", name.Lexeme, tok.describe())
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	if index != nil {
		return &ArrayAssign{Name: name.Lexeme, Index: index, Value: value}, nil
	}
	return &Assign{Name: name.Lexeme, Value: value}, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.peek().Type {
	case LBRACE:
		return p.parseBlock()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case SYSTEM:
		return p.parsePrint()
	case IDENTIFIER:
		return p.parseAssignment()
	}
	tok := p.peek()
	return nil, p.fmtError(tok, "unexpected %s, expected a statement", tok.describe())
}

// binaryOps are the operators of the single binary precedence level.
var binaryOps = map[TokenType]bool{
	PLUS:        true,
	MINUS:       true,
	STAR:        true,
	LESS:        true,
	AND_LOGICAL: true,
	OR_LOGICAL:  true,
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for binaryOps[p.peek().Type] {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Op: op.Lexeme, Left: expr, Right: right, Line: op.Line}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.peek().Type == NOT {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op.Lexeme, Operand: operand, Line: op.Line}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case LBRACKET:
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			expr = &ArrayAccess{Array: expr, Index: index}
		case DOT:
			p.advance()
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			if name.Lexeme == "length" && p.peek().Type != LPAREN {
				expr = &ArrayLength{Array: expr}
				continue
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &MethodCall{Receiver: expr, Method: name.Lexeme, Args: args, Line: name.Line}
		default:
			return expr, nil
		}
	}
}

// parseArgs parses "(" [expr ("," expr)*] ")".
func (p *Parser) parseArgs() ([]Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case INTEGER:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, p.fmtError(tok, "integer literal %s out of range", tok.Lexeme)
		}
		return &IntLit{Value: int(v)}, nil
	case TRUE:
		return &BoolLit{Value: true}, nil
	case FALSE:
		return &BoolLit{Value: false}, nil
	case IDENTIFIER:
		return &VarRef{Name: tok.Lexeme}, nil
	case THIS:
		return &This{}, nil
	case NEW:
		if p.peek().Type == INT {
			p.advance()
			if _, err := p.expect(LBRACKET); err != nil {
				return nil, err
			}
			size, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			return &NewArray{Size: size}, nil
		}
		cls, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if err := p.expectAll(LPAREN, RPAREN); err != nil {
			return nil, err
		}
		return &NewObject{Class: cls.Lexeme}, nil
	case LPAREN:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.fmtError(tok, "unexpected %s in expression", tok.describe())
}

// Parse builds the AST for a whole program. It stops at the first syntax
// error and returns no tree in that case.
func Parse(tokens []Token, rawSource string) (*Program, error) {
	p := NewParser(tokens, rawSource)
	main, err := p.parseMainClass()
	if err != nil {
		return nil, err
	}
	prog := &Program{Main: main}
	for p.peek().Type == CLASS {
		cls, err := p.parseClassDecl()
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, cls)
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.fmtError(tok, "unexpected %s after last class", tok.describe())
	}
	return prog, nil
}
