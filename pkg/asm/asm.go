package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// arity lists every accepted mnemonic with its operand count.
var arity = map[string]int{
	"nop":   0,
	"ret":   0,
	"push":  1,
	"pop":   1,
	"jmp":   1,
	"je":    1,
	"jne":   1,
	"call":  1,
	"setl":  1,
	"sete":  1,
	"mov":   2,
	"movzx": 2,
	"add":   2,
	"sub":   2,
	"imul":  2,
	"cmp":   2,
}

// writesFirst marks mnemonics whose first operand is a destination.
var writesFirst = map[string]bool{
	"pop": true, "setl": true, "sete": true,
	"mov": true, "movzx": true, "add": true, "sub": true, "imul": true,
}

var jumps = map[string]bool{"jmp": true, "je": true, "jne": true}

// Registers holds the 32-bit general purpose registers.
var Registers = []string{"eax", "ebx", "ecx", "edx", "esi", "edi", "esp", "ebp"}

// ByteRegisters maps each low-byte register to its 32-bit parent.
var ByteRegisters = map[string]string{"al": "eax", "bl": "ebx", "cl": "ecx", "dl": "edx"}

type OperandKind int

const (
	RegOperand OperandKind = iota
	ByteRegOperand
	ImmOperand
	MemOperand // mem_<name> spill slot
	SymOperand // code label, data label or extern
)

type Operand struct {
	Kind OperandKind
	Reg  string // RegOperand, ByteRegOperand
	Imm  int64  // ImmOperand
	Sym  string // MemOperand, SymOperand
	Size string // optional "dword" or "byte" qualifier
}

func (o Operand) String() string {
	var s string
	switch o.Kind {
	case RegOperand, ByteRegOperand:
		s = o.Reg
	case ImmOperand:
		s = strconv.FormatInt(o.Imm, 10)
	default:
		s = o.Sym
	}
	if o.Size != "" {
		return o.Size + " " + s
	}
	return s
}

type Instr struct {
	Line     int
	Mnemonic string
	Operands []Operand
}

func (in Instr) String() string {
	if len(in.Operands) == 0 {
		return in.Mnemonic
	}
	ops := make([]string, len(in.Operands))
	for i, o := range in.Operands {
		ops[i] = o.String()
	}
	return in.Mnemonic + " " + strings.Join(ops, ", ")
}

// Data is one db definition.
type Data struct {
	Line  int
	Label string
	Bytes []byte
}

// Program is a checked listing. Labels index into Text.
type Program struct {
	Text    []Instr
	Data    map[string]*Data
	Labels  map[string]int
	Globals []string
	Externs []string
}

// Entry returns the instruction index of label.
func (p *Program) Entry(label string) (int, bool) {
	idx, ok := p.Labels[label]
	return idx, ok
}

// CString returns the data bytes for label up to the first NUL.
func (p *Program) CString(label string) (string, bool) {
	d, ok := p.Data[label]
	if !ok {
		return "", false
	}
	b := d.Bytes
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return string(b), true
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

type section int

const (
	noSection section = iota
	dataSection
	textSection
)

type Parser struct {
	prog  *Program
	lines []parsedLine
}

func NewParser() *Parser {
	return &Parser{prog: &Program{
		Data:   make(map[string]*Data),
		Labels: make(map[string]int),
	}}
}

// Parse checks an assembly listing and returns its structured form.
func Parse(code string) (*Program, error) {
	return NewParser().Parse(code)
}

func (a *Parser) Parse(code string) (*Program, error) {
	for i, raw := range strings.Split(code, "\n") {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, err
		}
		a.lines = append(a.lines, p)
	}
	if err := a.pass1(); err != nil {
		return nil, err
	}
	if err := a.pass2(); err != nil {
		return nil, err
	}
	return a.prog, nil
}

// pass1 assigns every label and handles directives.
func (a *Parser) pass1() error {
	sec := noSection
	seen := make(map[string]bool)
	count := 0

	for _, p := range a.lines {
		for _, lbl := range p.labels {
			if seen[lbl] {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, p.lineNo)
			}
			seen[lbl] = true
			if sec != dataSection {
				a.prog.Labels[lbl] = count
			}
		}

		switch p.mnemonic {
		case "":
			continue
		case "section":
			if len(p.operands) != 1 {
				return fmt.Errorf("section expects one name on line %d", p.lineNo)
			}
			switch p.operands[0] {
			case ".data":
				sec = dataSection
			case ".text":
				sec = textSection
			default:
				return fmt.Errorf("unknown section '%s' on line %d", p.operands[0], p.lineNo)
			}
		case "global":
			a.prog.Globals = append(a.prog.Globals, p.operands...)
		case "extern":
			a.prog.Externs = append(a.prog.Externs, p.operands...)
		case "db":
			if sec != dataSection {
				return fmt.Errorf("db outside .data on line %d", p.lineNo)
			}
			if len(p.labels) != 1 {
				return fmt.Errorf("db needs exactly one label on line %d", p.lineNo)
			}
			b, err := parseBytes(p.operands, p.lineNo)
			if err != nil {
				return err
			}
			a.prog.Data[p.labels[0]] = &Data{Line: p.lineNo, Label: p.labels[0], Bytes: b}
		default:
			if sec != textSection {
				return fmt.Errorf("instruction outside .text on line %d: %s", p.lineNo, p.mnemonic)
			}
			count++
		}
	}

	for _, g := range a.prog.Globals {
		if _, ok := a.prog.Labels[g]; !ok {
			return fmt.Errorf("global '%s' is not defined", g)
		}
	}
	return nil
}

// pass2 decodes operands and checks every reference.
func (a *Parser) pass2() error {
	for _, p := range a.lines {
		switch p.mnemonic {
		case "", "section", "global", "extern", "db":
			continue
		}

		n, ok := arity[p.mnemonic]
		if !ok {
			return fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
		}
		ops, err := parseOperands(p.operands, p.lineNo)
		if err != nil {
			return err
		}
		if len(ops) != n {
			return fmt.Errorf("%s expects %d operands on line %d", p.mnemonic, n, p.lineNo)
		}
		in := Instr{Line: p.lineNo, Mnemonic: p.mnemonic, Operands: ops}
		if err := a.check(in); err != nil {
			return err
		}
		a.prog.Text = append(a.prog.Text, in)
	}
	return nil
}

func (a *Parser) check(in Instr) error {
	if len(in.Operands) > 0 && writesFirst[in.Mnemonic] {
		switch dst := in.Operands[0]; dst.Kind {
		case ImmOperand, SymOperand:
			return fmt.Errorf("%s cannot write to '%s' on line %d", in.Mnemonic, dst, in.Line)
		}
	}
	switch in.Mnemonic {
	case "setl", "sete":
		if in.Operands[0].Kind != ByteRegOperand {
			return fmt.Errorf("%s needs a byte register on line %d", in.Mnemonic, in.Line)
		}
	case "movzx":
		if in.Operands[1].Kind != ByteRegOperand {
			return fmt.Errorf("movzx needs a byte register source on line %d", in.Line)
		}
	}

	for i, o := range in.Operands {
		if o.Kind != SymOperand {
			continue
		}
		_, isCode := a.prog.Labels[o.Sym]
		_, isData := a.prog.Data[o.Sym]
		switch {
		case jumps[in.Mnemonic]:
			if !isCode {
				return fmt.Errorf("undefined label '%s' on line %d", o.Sym, in.Line)
			}
		case in.Mnemonic == "call":
			if !isCode && !a.isExtern(o.Sym) {
				return fmt.Errorf("undefined label '%s' on line %d", o.Sym, in.Line)
			}
		case !isData:
			return fmt.Errorf("unknown symbol '%s' in operand %d on line %d", o.Sym, i+1, in.Line)
		}
	}
	return nil
}

func (a *Parser) isExtern(name string) bool {
	for _, e := range a.prog.Externs {
		if e == name {
			return true
		}
	}
	return false
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}
		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t\"") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}
		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	p.mnemonic = strings.ToLower(strings.TrimSpace(mnemonic))
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return p, nil
	}

	switch p.mnemonic {
	case "section", "global", "extern":
		p.operands = strings.Fields(strings.ReplaceAll(rest, ",", " "))
	default:
		ops, err := splitOperands(rest, lineNo)
		if err != nil {
			return p, err
		}
		p.operands = ops
	}
	return p, nil
}

// splitOperands splits on commas outside double quotes.
func splitOperands(s string, lineNo int) ([]string, error) {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("invalid string literal on line %d", lineNo)
	}
	out = append(out, strings.TrimSpace(cur.String()))
	for _, o := range out {
		if o == "" {
			return nil, fmt.Errorf("empty operand on line %d", lineNo)
		}
	}
	return out, nil
}

// stripComments cuts at the first ';' outside a string literal.
func stripComments(line string) string {
	inQuote := false
	for i, r := range line {
		switch r {
		case '"':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return line[:i]
			}
		}
	}
	return line
}

func parseBytes(items []string, lineNo int) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("db expects at least one value on line %d", lineNo)
	}
	var out []byte
	for _, it := range items {
		if strings.HasPrefix(it, "\"") {
			if len(it) < 2 || !strings.HasSuffix(it, "\"") {
				return nil, fmt.Errorf("invalid string literal on line %d", lineNo)
			}
			out = append(out, it[1:len(it)-1]...)
			continue
		}
		v, err := strconv.ParseInt(it, 0, 16)
		if err != nil || v < -128 || v > 255 {
			return nil, fmt.Errorf("invalid byte '%s' on line %d", it, lineNo)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func parseOperands(raw []string, lineNo int) ([]Operand, error) {
	ops := make([]Operand, 0, len(raw))
	for _, r := range raw {
		o, err := parseOperand(r, lineNo)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, nil
}

func parseOperand(token string, lineNo int) (Operand, error) {
	var o Operand
	if size, rest, ok := strings.Cut(token, " "); ok {
		switch strings.ToLower(size) {
		case "dword", "byte":
			o.Size = strings.ToLower(size)
			token = strings.TrimSpace(rest)
		default:
			return o, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
		}
	}

	lower := strings.ToLower(token)
	if isRegister(lower) {
		o.Kind, o.Reg = RegOperand, lower
		return o, nil
	}
	if _, ok := ByteRegisters[lower]; ok {
		o.Kind, o.Reg = ByteRegOperand, lower
		return o, nil
	}
	if v, err := strconv.ParseInt(token, 0, 64); err == nil {
		if v < -1<<31 || v > 1<<32-1 {
			return o, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		o.Kind, o.Imm = ImmOperand, v
		return o, nil
	}
	if !isIdentifier(token) {
		return o, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
	}
	if strings.HasPrefix(token, "mem_") {
		o.Kind, o.Sym = MemOperand, token
		return o, nil
	}
	o.Kind, o.Sym = SymOperand, token
	return o, nil
}

func isRegister(s string) bool {
	for _, r := range Registers {
		if r == s {
			return true
		}
	}
	return false
}

// isIdentifier accepts names the compiler emits. A '.' may appear after the
// first character; it separates class and method in method labels and the
// counter in temporaries.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}

	return true
}
