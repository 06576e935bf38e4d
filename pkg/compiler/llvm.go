package compiler

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// LLVMGen lowers the entry-method quadruples to an LLVM module. Every name
// gets an i32 stack slot in the entry block and every label a basic block,
// so the output is valid before mem2reg.
type LLVMGen struct {
	module  *ir.Module
	fn      *ir.Func
	cur     *ir.Block
	printf  *ir.Func
	fmtInt  *ir.Global
	slots   map[string]*ir.InstAlloca
	blocks  map[string]*ir.Block
	nextBlk int
}

func NewLLVMGen() *LLVMGen {
	return &LLVMGen{
		slots:  make(map[string]*ir.InstAlloca),
		blocks: make(map[string]*ir.Block),
	}
}

// GenerateLLVM returns the textual LLVM IR for quads.
func GenerateLLVM(quads []Quad) (string, error) {
	m, err := NewLLVMGen().Generate(quads)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// mainBody returns the quads between begin_main and end_main. Class methods
// follow end_main and are not lowered.
func mainBody(quads []Quad) []Quad {
	start := 0
	for i, q := range quads {
		if q.Op == OpBeginMain {
			start = i + 1
			break
		}
	}
	for i := start; i < len(quads); i++ {
		if quads[i].Op == OpEndMain {
			return quads[start:i]
		}
	}
	return quads[start:]
}

func (g *LLVMGen) Generate(quads []Quad) (*ir.Module, error) {
	g.module = ir.NewModule()
	g.fmtInt = g.module.NewGlobalDef("fmt_int", constant.NewCharArrayFromString("%d\n\x00"))
	g.fmtInt.Immutable = true
	g.printf = g.module.NewFunc("printf", types.I32, ir.NewParam("format", types.NewPointer(types.I8)))
	g.printf.Sig.Variadic = true

	g.fn = g.module.NewFunc("main", types.I32)
	entry := g.fn.NewBlock("entry")
	g.cur = entry

	body := mainBody(quads)
	for _, q := range body {
		for _, o := range []Operand{q.A, q.B, q.Result} {
			if o.IsName() {
				g.slot(o.Name)
			}
		}
		switch q.Op {
		case OpLabel, OpGoto:
			g.block(q.A.Name)
		case OpIfFalse:
			g.block(q.B.Name)
		}
	}

	for _, q := range body {
		if err := g.quad(q); err != nil {
			return nil, err
		}
	}

	zero := constant.NewInt(types.I32, 0)
	for _, b := range g.fn.Blocks {
		if b.Term == nil {
			b.NewRet(zero)
		}
	}
	return g.module, nil
}

// slot returns the stack slot for name, allocating it in the entry block.
func (g *LLVMGen) slot(name string) *ir.InstAlloca {
	if s, ok := g.slots[name]; ok {
		return s
	}
	s := g.fn.Blocks[0].NewAlloca(types.I32)
	s.SetName(name + ".addr")
	g.slots[name] = s
	return s
}

func (g *LLVMGen) block(label string) *ir.Block {
	if b, ok := g.blocks[label]; ok {
		return b
	}
	b := g.fn.NewBlock(label)
	g.blocks[label] = b
	return b
}

// fresh starts an anonymous block for code following a terminator.
func (g *LLVMGen) fresh(prefix string) {
	g.nextBlk++
	g.cur = g.fn.NewBlock(fmt.Sprintf("%s.%d", prefix, g.nextBlk))
}

func (g *LLVMGen) load(o Operand) value.Value {
	if o.IsConst() {
		return constant.NewInt(types.I32, int64(o.Value))
	}
	return g.cur.NewLoad(types.I32, g.slots[o.Name])
}

func (g *LLVMGen) quad(q Quad) error {
	switch q.Op {
	case OpAssign:
		g.cur.NewStore(g.load(q.A), g.slots[q.Result.Name])

	case OpAdd, OpSub, OpMul, OpLess:
		a, b := g.load(q.A), g.load(q.B)
		var v value.Value
		switch q.Op {
		case OpAdd:
			v = g.cur.NewAdd(a, b)
		case OpSub:
			v = g.cur.NewSub(a, b)
		case OpMul:
			v = g.cur.NewMul(a, b)
		case OpLess:
			v = g.cur.NewZExt(g.cur.NewICmp(enum.IPredSLT, a, b), types.I32)
		}
		g.cur.NewStore(v, g.slots[q.Result.Name])

	case OpIfFalse:
		isZero := g.cur.NewICmp(enum.IPredEQ, g.load(q.A), constant.NewInt(types.I32, 0))
		target := g.blocks[q.B.Name]
		prev := g.cur
		g.fresh("then")
		prev.NewCondBr(isZero, target, g.cur)

	case OpGoto:
		g.cur.NewBr(g.blocks[q.A.Name])
		g.fresh("dead")

	case OpLabel:
		next := g.blocks[q.A.Name]
		if g.cur.Term == nil {
			g.cur.NewBr(next)
		}
		g.cur = next

	case OpPrint:
		zero := constant.NewInt(types.I64, 0)
		format := g.cur.NewGetElementPtr(g.fmtInt.ContentType, g.fmtInt, zero, zero)
		g.cur.NewCall(g.printf, format, g.load(q.A))

	case OpReturn:
		g.cur.NewRet(g.load(q.A))
		g.fresh("dead")

	default:
		return fmt.Errorf("llvm: no lowering for %s", q)
	}
	return nil
}
