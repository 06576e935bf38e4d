package compiler

import (
	"fmt"
	"io"
	"strconv"
)

// Op is a three-address opcode.
type Op int

const (
	OpAssign      Op = iota // Result = A
	OpAdd                   // Result = A + B
	OpSub                   // Result = A - B
	OpMul                   // Result = A * B
	OpLess                  // Result = A < B (0 or 1)
	OpIfFalse               // if A == 0 goto B
	OpGoto                  // goto A
	OpLabel                 // A:
	OpPrint                 // print A
	OpReturn                // return A
	OpBeginMain             // start of the entry method
	OpEndMain               // end of the entry method
	OpParam                 // push argument A for the next call
	OpCall                  // Result = call A with B arguments
	OpArrayLoad             // Result = A[B]
	OpArrayStore            // Result[A] = B
	OpArrayLength           // Result = A.length
	OpNewArray              // Result = new int[A]
	OpNewObject             // Result = new A()
)

var opNames = [...]string{
	OpAssign:      "=",
	OpAdd:         "+",
	OpSub:         "-",
	OpMul:         "*",
	OpLess:        "<",
	OpIfFalse:     "if_false",
	OpGoto:        "goto",
	OpLabel:       "label",
	OpPrint:       "print",
	OpReturn:      "return",
	OpBeginMain:   "begin_main",
	OpEndMain:     "end_main",
	OpParam:       "param",
	OpCall:        "call",
	OpArrayLoad:   "[]",
	OpArrayStore:  "[]=",
	OpArrayLength: "length",
	OpNewArray:    "new_array",
	OpNewObject:   "new",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// binaryOpFor maps a source operator to its opcode. Only the operators with
// a three-address lowering are present.
var binaryOpFor = map[string]Op{
	"+": OpAdd,
	"-": OpSub,
	"*": OpMul,
	"<": OpLess,
}

// OperandKind tags an Operand.
type OperandKind int

const (
	Absent OperandKind = iota
	ConstOperand
	NameOperand
	LabelOperand
)

// Operand is one field of a Quad: nothing, an integer constant, a variable
// or temporary name, or a label.
type Operand struct {
	Kind  OperandKind
	Value int    // ConstOperand
	Name  string // NameOperand, LabelOperand
}

func Const(v int) Operand       { return Operand{Kind: ConstOperand, Value: v} }
func Name(n string) Operand     { return Operand{Kind: NameOperand, Name: n} }
func LabelRef(l string) Operand { return Operand{Kind: LabelOperand, Name: l} }
func (o Operand) IsConst() bool { return o.Kind == ConstOperand }
func (o Operand) IsName() bool  { return o.Kind == NameOperand }

func (o Operand) String() string {
	switch o.Kind {
	case ConstOperand:
		return strconv.Itoa(o.Value)
	case NameOperand, LabelOperand:
		return o.Name
	}
	return "_"
}

// Quad is one three-address instruction.
type Quad struct {
	Op     Op
	A      Operand
	B      Operand
	Result Operand
}

func (q Quad) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", q.Op, q.A, q.B, q.Result)
}

// TAC renders q in the conventional three-address form, e.g. "t.1 = a * b".
func (q Quad) TAC() string {
	switch q.Op {
	case OpAssign:
		return fmt.Sprintf("%s = %s", q.Result, q.A)
	case OpAdd, OpSub, OpMul, OpLess:
		return fmt.Sprintf("%s = %s %s %s", q.Result, q.A, q.Op, q.B)
	case OpIfFalse:
		return fmt.Sprintf("if_false %s goto %s", q.A, q.B)
	case OpGoto:
		return "goto " + q.A.String()
	case OpLabel:
		return q.A.String() + ":"
	case OpPrint, OpReturn, OpParam:
		return fmt.Sprintf("%s %s", q.Op, q.A)
	case OpBeginMain, OpEndMain:
		return q.Op.String()
	case OpCall:
		return fmt.Sprintf("%s = call %s, %s", q.Result, q.A, q.B)
	case OpArrayLoad:
		return fmt.Sprintf("%s = %s[%s]", q.Result, q.A, q.B)
	case OpArrayStore:
		return fmt.Sprintf("%s[%s] = %s", q.Result, q.A, q.B)
	case OpArrayLength:
		return fmt.Sprintf("%s = %s.length", q.Result, q.A)
	case OpNewArray:
		return fmt.Sprintf("%s = new int[%s]", q.Result, q.A)
	case OpNewObject:
		return fmt.Sprintf("%s = new %s()", q.Result, q.A)
	}
	return q.String()
}

// WriteTAC writes one instruction per line, labels flush left and
// everything else indented.
func WriteTAC(w io.Writer, quads []Quad) error {
	for _, q := range quads {
		indent := "  "
		if q.Op == OpLabel {
			indent = ""
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, q.TAC()); err != nil {
			return err
		}
	}
	return nil
}
