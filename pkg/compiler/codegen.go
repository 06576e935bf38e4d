package compiler

import (
	"fmt"
	"strings"
)

// Registers is the pool names are bound to, in binding order.
var Registers = [...]string{"eax", "ebx", "ecx", "edx", "esi", "edi"}

// CodeGen lowers quadruples to x86-style assembly text in a single forward
// pass. Each distinct name is bound on first use to the next free register,
// then to a mem_<name> operand once the pool is exhausted. Bindings never
// change afterwards. Constants are emitted as literals and never bound.
type CodeGen struct {
	out      strings.Builder
	bindings map[string]string
	order    []string // names in binding order
	nextReg  int
}

func NewCodeGen() *CodeGen {
	return &CodeGen{bindings: make(map[string]string)}
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) comment(format string, args ...any) {
	cg.line("  ; "+format, args...)
}

// bind returns the location of name, binding it if this is its first use.
func (cg *CodeGen) bind(name string) string {
	if loc, ok := cg.bindings[name]; ok {
		return loc
	}
	loc := "mem_" + name
	if cg.nextReg < len(Registers) {
		loc = Registers[cg.nextReg]
		cg.nextReg++
	}
	cg.bindings[name] = loc
	cg.order = append(cg.order, name)
	return loc
}

// operand renders o as an instruction operand.
func (cg *CodeGen) operand(o Operand) string {
	switch o.Kind {
	case ConstOperand:
		return fmt.Sprintf("%d", o.Value)
	case NameOperand:
		return cg.bind(o.Name)
	}
	return o.Name
}

// Binding returns the location bound to name, if any.
func (cg *CodeGen) Binding(name string) (string, bool) {
	loc, ok := cg.bindings[name]
	return loc, ok
}

// Bindings lists name -> location pairs in the order they were bound.
func (cg *CodeGen) Bindings() [][2]string {
	out := make([][2]string, len(cg.order))
	for i, n := range cg.order {
		out[i] = [2]string{n, cg.bindings[n]}
	}
	return out
}

func (cg *CodeGen) preamble() {
	cg.line("section .data")
	cg.line(`  fmt_int: db "%%d", 10, 0`)
	cg.line("")
	cg.line("section .text")
	cg.line("  global main")
	cg.line("  extern printf")
	cg.line("")
	cg.line("main:")
}

// Generate emits the whole program. Opcodes without a lowering become
// "; unsupported:" comments. The output always ends with a return from main.
func (cg *CodeGen) Generate(quads []Quad) string {
	cg.preamble()

	sawEnd := false
	for _, q := range quads {
		switch q.Op {
		case OpBeginMain:
			// main: is part of the preamble

		case OpLabel:
			if q.A.Name != "main" {
				cg.line("%s:", q.A.Name)
			}

		case OpAssign:
			dest := cg.operand(q.Result)
			cg.line("  mov %s, %s", dest, cg.operand(q.A))

		case OpAdd, OpSub, OpMul, OpLess:
			dest := cg.operand(q.Result)
			cg.line("  mov %s, %s", dest, cg.operand(q.A))
			rhs := cg.operand(q.B)
			switch q.Op {
			case OpAdd:
				cg.line("  add %s, %s", dest, rhs)
			case OpSub:
				cg.line("  sub %s, %s", dest, rhs)
			case OpMul:
				cg.line("  imul %s, %s", dest, rhs)
			case OpLess:
				cg.line("  cmp %s, %s", dest, rhs)
				cg.line("  setl al")
				cg.line("  movzx %s, al", dest)
			}

		case OpIfFalse:
			cg.line("  cmp %s, 0", cg.operand(q.A))
			cg.line("  je %s", q.B.Name)

		case OpGoto:
			cg.line("  jmp %s", q.A.Name)

		case OpPrint:
			if q.A.IsConst() {
				cg.line("  push %d", q.A.Value)
			} else {
				cg.line("  push dword %s", cg.operand(q.A))
			}
			cg.line("  push dword fmt_int")
			cg.line("  call printf")
			cg.line("  add esp, 8")

		case OpEndMain:
			cg.line("  mov eax, 0")
			cg.line("  ret")
			sawEnd = true

		case OpReturn:
			cg.line("  mov eax, %s", cg.operand(q.A))
			cg.line("  ret")

		default:
			cg.comment("unsupported: %s", q)
		}
	}

	if !sawEnd {
		cg.line("  mov eax, 0")
		cg.line("  ret")
	}
	return strings.TrimSuffix(cg.out.String(), "\n")
}

// GenerateX86 lowers quads with a fresh code generator.
func GenerateX86(quads []Quad) string {
	return NewCodeGen().Generate(quads)
}
