package cpu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"minijavac/pkg/asm"
)

// ErrStepLimit is returned by Run when a program executes more than
// Config.MaxSteps instructions.
var ErrStepLimit = errors.New("cpu: step limit exceeded")

const (
	DefaultMaxSteps = 1_000_000

	// StackTop is the initial esp. The stack grows down in 4-byte slots.
	StackTop int32 = 0x10000

	// DataBase is the address of the first data definition.
	DataBase int32 = 0x1000

	// returnMark tags return addresses pushed by internal calls.
	returnMark int32 = 0x40000000
)

type Config struct {
	MaxSteps int       // 0 means DefaultMaxSteps
	Output   io.Writer // nil means os.Stdout
}

// CPU executes a checked asm.Program. Registers are 32 bits wide; the low
// byte registers alias their parents, so writing al changes eax. mem_<name>
// operands live in a named store that reads zero until written.
type CPU struct {
	Regs  map[string]int32
	Mem   map[string]int32
	Stack map[int32]int32

	PC int

	// flags from the last cmp
	Z bool
	L bool

	Halted    bool
	Steps     int
	CallDepth int
	ExitCode  int32

	// Printed collects every value passed to printf, in order.
	Printed []int32

	prog     *asm.Program
	cfg      Config
	dataAddr map[string]int32
	addrData map[int32]string
}

func NewCPU(cfg Config) *CPU {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	c := &CPU{cfg: cfg}
	c.Reset()
	return c
}

func (c *CPU) outputSink() io.Writer {
	if c.cfg.Output != nil {
		return c.cfg.Output
	}
	return os.Stdout
}

// Reset clears all machine state. A loaded program stays loaded and the
// program counter returns to its entry point.
func (c *CPU) Reset() {
	c.Regs = make(map[string]int32, len(asm.Registers))
	for _, r := range asm.Registers {
		c.Regs[r] = 0
	}
	c.Regs["esp"] = StackTop
	c.Mem = make(map[string]int32)
	c.Stack = make(map[int32]int32)
	c.Z, c.L = false, false
	c.Halted = false
	c.Steps, c.CallDepth, c.ExitCode = 0, 0, 0
	c.Printed = nil
	c.PC = 0
	if c.prog != nil {
		c.PC, _ = c.prog.Entry("main")
	}
}

// Load installs prog and points the program counter at main.
func (c *CPU) Load(prog *asm.Program) error {
	entry, ok := prog.Entry("main")
	if !ok {
		return errors.New("cpu: program has no main label")
	}
	c.prog = prog
	c.dataAddr = make(map[string]int32, len(prog.Data))
	c.addrData = make(map[int32]string, len(prog.Data))
	next := DataBase
	for _, d := range sortedData(prog) {
		c.dataAddr[d.Label] = next
		c.addrData[next] = d.Label
		next += int32(len(d.Bytes)+3) &^ 3
	}
	c.Reset()
	c.PC = entry
	return nil
}

// sortedData orders data definitions by source line so addresses are stable.
func sortedData(prog *asm.Program) []*asm.Data {
	out := make([]*asm.Data, 0, len(prog.Data))
	for _, d := range prog.Data {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

func (c *CPU) read(o asm.Operand) int32 {
	switch o.Kind {
	case asm.RegOperand:
		return c.Regs[o.Reg]
	case asm.ByteRegOperand:
		return c.Regs[asm.ByteRegisters[o.Reg]] & 0xFF
	case asm.ImmOperand:
		return int32(o.Imm)
	case asm.MemOperand:
		return c.Mem[o.Sym]
	case asm.SymOperand:
		return c.dataAddr[o.Sym]
	}
	return 0
}

func (c *CPU) write(o asm.Operand, v int32) {
	switch o.Kind {
	case asm.RegOperand:
		c.Regs[o.Reg] = v
	case asm.ByteRegOperand:
		parent := asm.ByteRegisters[o.Reg]
		c.Regs[parent] = c.Regs[parent]&^0xFF | v&0xFF
	case asm.MemOperand:
		c.Mem[o.Sym] = v
	}
}

func (c *CPU) push(v int32) {
	c.Regs["esp"] -= 4
	c.Stack[c.Regs["esp"]] = v
}

func (c *CPU) pop() int32 {
	v := c.Stack[c.Regs["esp"]]
	c.Regs["esp"] += 4
	return v
}

// Step executes one instruction.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	if c.prog == nil {
		return errors.New("cpu: no program loaded")
	}
	if c.PC < 0 || c.PC >= len(c.prog.Text) {
		c.Halted = true
		return nil
	}

	in := c.prog.Text[c.PC]
	c.PC++
	c.Steps++
	ops := in.Operands

	switch in.Mnemonic {
	case "nop":

	case "mov":
		c.write(ops[0], c.read(ops[1]))

	case "movzx":
		c.write(ops[0], c.read(ops[1])&0xFF)

	case "add":
		c.write(ops[0], c.read(ops[0])+c.read(ops[1]))

	case "sub":
		c.write(ops[0], c.read(ops[0])-c.read(ops[1]))

	case "imul":
		c.write(ops[0], c.read(ops[0])*c.read(ops[1]))

	case "cmp":
		a, b := c.read(ops[0]), c.read(ops[1])
		c.Z = a == b
		c.L = a < b

	case "setl":
		c.write(ops[0], boolByte(c.L))

	case "sete":
		c.write(ops[0], boolByte(c.Z))

	case "jmp":
		c.PC = c.prog.Labels[ops[0].Sym]

	case "je":
		if c.Z {
			c.PC = c.prog.Labels[ops[0].Sym]
		}

	case "jne":
		if !c.Z {
			c.PC = c.prog.Labels[ops[0].Sym]
		}

	case "push":
		c.push(c.read(ops[0]))

	case "pop":
		c.write(ops[0], c.pop())

	case "call":
		if target, ok := c.prog.Labels[ops[0].Sym]; ok {
			c.push(returnMark | int32(c.PC))
			c.CallDepth++
			c.PC = target
			return nil
		}
		return c.callExtern(in)

	case "ret":
		if c.CallDepth == 0 {
			c.ExitCode = c.Regs["eax"]
			c.Halted = true
			return nil
		}
		c.CallDepth--
		c.PC = int(c.pop() &^ returnMark)

	default:
		return fmt.Errorf("cpu: cannot execute %q on line %d", in.Mnemonic, in.Line)
	}
	return nil
}

func boolByte(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// callExtern services calls into the C library. Only printf is provided:
// the format is taken from the top of the stack and each %d consumes the
// next slot above it.
func (c *CPU) callExtern(in asm.Instr) error {
	name := in.Operands[0].Sym
	if name != "printf" {
		return fmt.Errorf("cpu: unknown external %q on line %d", name, in.Line)
	}
	esp := c.Regs["esp"]
	label, ok := c.addrData[c.Stack[esp]]
	if !ok {
		return fmt.Errorf("cpu: printf format is not a data label on line %d", in.Line)
	}
	format, _ := c.prog.CString(label)

	var sb strings.Builder
	arg := esp + 4
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) && format[i+1] == 'd' {
			v := c.Stack[arg]
			arg += 4
			c.Printed = append(c.Printed, v)
			fmt.Fprintf(&sb, "%d", v)
			i++
			continue
		}
		sb.WriteByte(format[i])
	}
	n, err := io.WriteString(c.outputSink(), sb.String())
	if err != nil {
		return fmt.Errorf("cpu: printf: %w", err)
	}
	c.Regs["eax"] = int32(n)
	return nil
}

// Run steps until the program returns from main or the step limit is hit.
func (c *CPU) Run() error {
	for !c.Halted {
		if c.Steps >= c.cfg.MaxSteps {
			return ErrStepLimit
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Execute parses listing, loads it into a fresh CPU and runs it.
func Execute(listing string, cfg Config) (*CPU, error) {
	prog, err := asm.Parse(listing)
	if err != nil {
		return nil, err
	}
	c := NewCPU(cfg)
	if err := c.Load(prog); err != nil {
		return nil, err
	}
	return c, c.Run()
}
