package compiler

import "fmt"

// IRGen lowers a checked Program to quadruples. Counters for temporaries
// and labels belong to one IRGen, so every name it produces is unique within
// its run and independent of any other run.
type IRGen struct {
	quads     []Quad
	tempCount int
	labelNum  int
	class     string // class whose method is being lowered
	targets   map[*MethodCall]string
}

// NewIRGen returns a generator. targets maps each call site to the class
// that declares the called method, as resolved by the Analyzer; it may be nil.
func NewIRGen(targets map[*MethodCall]string) *IRGen {
	return &IRGen{targets: targets}
}

func (g *IRGen) emit(op Op, a, b, r Operand) {
	g.quads = append(g.quads, Quad{Op: op, A: a, B: b, Result: r})
}

// newTemp returns t.1, t.2, ... The dot keeps temporaries apart from every
// source identifier.
func (g *IRGen) newTemp() Operand {
	g.tempCount++
	return Name(fmt.Sprintf("t.%d", g.tempCount))
}

// newLabel returns prefix followed by a counter shared by all prefixes.
func (g *IRGen) newLabel(prefix string) Operand {
	g.labelNum++
	return LabelRef(fmt.Sprintf("%s%d", prefix, g.labelNum))
}

// Temps and Labels report how many of each this generator has allocated.
func (g *IRGen) Temps() int  { return g.tempCount }
func (g *IRGen) Labels() int { return g.labelNum }

// GenerateIR lowers prog with a fresh generator.
func GenerateIR(prog *Program) ([]Quad, error) {
	return NewIRGen(nil).Generate(prog)
}

// Generate lowers the entry method followed by every class method. An
// operator without a lowering aborts the run with an
// *UnsupportedOperatorError.
func (g *IRGen) Generate(prog *Program) (quads []Quad, err error) {
	defer func() {
		if r := recover(); r != nil {
			uerr, ok := r.(*UnsupportedOperatorError)
			if !ok {
				panic(r)
			}
			quads, err = nil, uerr
		}
	}()

	g.emit(OpBeginMain, Operand{}, Operand{}, Operand{})
	for _, s := range prog.Main.Body {
		g.stmt(s)
	}
	g.emit(OpEndMain, Operand{}, Operand{}, Operand{})

	for _, cls := range prog.Classes {
		g.class = cls.Name
		for _, m := range cls.Methods {
			g.method(m)
		}
	}
	return g.quads, nil
}

// MethodLabel is the label a class method's code starts at. Identifiers
// cannot contain '.', so the label is unique per class and method and never
// matches a generated ELSE/END_IF/LOOP/ENDL label.
func MethodLabel(class, method string) string {
	return class + "." + method
}

func (g *IRGen) method(m *MethodDecl) {
	g.emit(OpLabel, LabelRef(MethodLabel(g.class, m.Name)), Operand{}, Operand{})
	for _, s := range m.Body {
		g.stmt(s)
	}
	g.emit(OpReturn, g.named(g.expr(m.Return)), Operand{}, Operand{})
}

// named moves an immediate into a fresh temporary; names pass through.
func (g *IRGen) named(v Operand) Operand {
	if !v.IsConst() {
		return v
	}
	t := g.newTemp()
	g.emit(OpAssign, v, Operand{}, t)
	return t
}

func (g *IRGen) stmt(s Stmt) {
	switch s := s.(type) {
	case *Block:
		for _, st := range s.Stmts {
			g.stmt(st)
		}

	case *If:
		cond := g.named(g.expr(s.Cond))
		elseL := g.newLabel("ELSE")
		endL := g.newLabel("END_IF")
		g.emit(OpIfFalse, cond, elseL, Operand{})
		g.stmt(s.Then)
		g.emit(OpGoto, endL, Operand{}, Operand{})
		g.emit(OpLabel, elseL, Operand{}, Operand{})
		g.stmt(s.Else)
		g.emit(OpLabel, endL, Operand{}, Operand{})

	case *While:
		startL := g.newLabel("LOOP")
		endL := g.newLabel("ENDL")
		g.emit(OpLabel, startL, Operand{}, Operand{})
		cond := g.named(g.expr(s.Cond))
		g.emit(OpIfFalse, cond, endL, Operand{})
		g.stmt(s.Body)
		g.emit(OpGoto, startL, Operand{}, Operand{})
		g.emit(OpLabel, endL, Operand{}, Operand{})

	case *Print:
		g.emit(OpPrint, g.named(g.expr(s.Expr)), Operand{}, Operand{})

	case *Assign:
		g.emit(OpAssign, g.expr(s.Value), Operand{}, Name(s.Name))

	case *ArrayAssign:
		index := g.expr(s.Index)
		value := g.expr(s.Value)
		g.emit(OpArrayStore, index, value, Name(s.Name))

	default:
		panic(fmt.Sprintf("compiler: unexpected statement %T", s))
	}
}

// expr evaluates e and returns the operand holding its value: a constant
// for literals, a name for variables, a fresh temporary for everything else.
func (g *IRGen) expr(e Expr) Operand {
	switch e := e.(type) {
	case *IntLit:
		return Const(e.Value)

	case *BoolLit:
		if e.Value {
			return Const(1)
		}
		return Const(0)

	case *VarRef:
		return Name(e.Name)

	case *This:
		return Name("this")

	case *Binary:
		op, ok := binaryOpFor[e.Op]
		if !ok {
			panic(&UnsupportedOperatorError{Op: e.Op, Line: e.Line})
		}
		left := g.expr(e.Left)
		right := g.expr(e.Right)
		dest := g.newTemp()
		g.emit(op, left, right, dest)
		return dest

	case *Unary:
		panic(&UnsupportedOperatorError{Op: e.Op, Line: e.Line})

	case *ArrayAccess:
		arr := g.expr(e.Array)
		index := g.expr(e.Index)
		dest := g.newTemp()
		g.emit(OpArrayLoad, arr, index, dest)
		return dest

	case *ArrayLength:
		arr := g.expr(e.Array)
		dest := g.newTemp()
		g.emit(OpArrayLength, arr, Operand{}, dest)
		return dest

	case *NewArray:
		size := g.expr(e.Size)
		dest := g.newTemp()
		g.emit(OpNewArray, size, Operand{}, dest)
		return dest

	case *NewObject:
		dest := g.newTemp()
		g.emit(OpNewObject, LabelRef(e.Class), Operand{}, dest)
		return dest

	case *MethodCall:
		recv := g.expr(e.Receiver)
		args := make([]Operand, len(e.Args))
		for i, a := range e.Args {
			args[i] = g.expr(a)
		}
		g.emit(OpParam, recv, Operand{}, Operand{})
		for _, a := range args {
			g.emit(OpParam, a, Operand{}, Operand{})
		}
		target := e.Method
		if cls, ok := g.targets[e]; ok {
			target = MethodLabel(cls, e.Method)
		}
		dest := g.newTemp()
		g.emit(OpCall, LabelRef(target), Const(len(args)+1), dest)
		return dest
	}
	panic(fmt.Sprintf("compiler: unexpected expression %T", e))
}
