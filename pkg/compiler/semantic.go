package compiler

import "fmt"

// Analyzer checks a parsed Program in three gated passes:
//
//  1. registration: every class name, plus the synthesized main signature
//  2. members: fields, method signatures and parameter names
//  3. bodies: declarations, statements and expression types
//
// A pass that reports anything stops the analysis; the diagnostics collected
// so far are returned together.
type Analyzer struct {
	syms      *SymbolTable
	diags     []Diagnostic
	class     *ClassInfo // class being checked, nil during registration
	method    string     // method being checked, "" outside bodies
	mainClass string
	calls     map[*MethodCall]string
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{syms: NewSymbolTable(), calls: make(map[*MethodCall]string)}
}

// Symbols exposes the table built by the last Analyze call.
func (a *Analyzer) Symbols() *SymbolTable { return a.syms }

// CallTargets maps every resolved call site to the class declaring the
// called method.
func (a *Analyzer) CallTargets() map[*MethodCall]string { return a.calls }

func (a *Analyzer) errorf(format string, args ...any) {
	d := Diagnostic{Method: a.method, Msg: fmt.Sprintf(format, args...)}
	if a.class != nil {
		d.Class = a.class.Name
	}
	a.diags = append(a.diags, d)
}

// Analyze runs the passes over prog and returns every diagnostic found, or
// nil if the program is well formed.
func (a *Analyzer) Analyze(prog *Program) []Diagnostic {
	a.register(prog)
	if len(a.diags) > 0 {
		return a.diags
	}

	for _, cls := range prog.Classes {
		a.class, _ = a.syms.LookupClass(cls.Name)
		a.populate(cls)
	}
	if len(a.diags) > 0 {
		return a.diags
	}

	a.checkMain(prog.Main)
	for _, cls := range prog.Classes {
		a.class, _ = a.syms.LookupClass(cls.Name)
		for _, m := range cls.Methods {
			a.method = m.Name
			a.checkMethod(m)
		}
	}
	a.class, a.method = nil, ""
	return a.diags
}

// Analyze is a convenience wrapper returning the symbol table, or the
// diagnostics as a SemanticErrors.
func Analyze(prog *Program) (*SymbolTable, error) {
	a := NewAnalyzer()
	if diags := a.Analyze(prog); len(diags) > 0 {
		return a.syms, SemanticErrors(diags)
	}
	return a.syms, nil
}

// Pass 1: registration

func (a *Analyzer) register(prog *Program) {
	a.mainClass = prog.Main.Name
	mainInfo, _ := a.syms.DefineClass(prog.Main.Name)
	mainInfo.Methods["main"] = &MethodInfo{
		Name:       "main",
		Params:     []*Param{{Type: Type{Kind: ArrayType, Elem: StringType}, Name: prog.Main.ArgName}},
		ReturnType: Void,
	}

	for _, cls := range prog.Classes {
		if _, ok := a.syms.DefineClass(cls.Name); !ok {
			a.errorf("Duplicate class %s", cls.Name)
		}
	}
}

// Pass 2: members

func (a *Analyzer) populate(cls *ClassDecl) {
	info := a.class
	for _, f := range cls.Fields {
		if _, ok := info.Fields[f.Name]; ok {
			a.errorf("Duplicate field %s", f.Name)
			continue
		}
		info.Fields[f.Name] = f.Type
	}

	for _, m := range cls.Methods {
		if _, ok := info.Methods[m.Name]; ok {
			a.errorf("Duplicate method %s", m.Name)
			continue
		}
		seen := make(map[string]bool, len(m.Params))
		for _, p := range m.Params {
			if seen[p.Name] {
				a.errorf("Duplicate parameter name '%s' in method '%s'", p.Name, m.Name)
			}
			seen[p.Name] = true
		}
		info.Methods[m.Name] = &MethodInfo{
			Name:       m.Name,
			Params:     m.Params,
			ReturnType: m.ReturnType,
			Decl:       m,
		}
	}
}

// Pass 3: bodies

func (a *Analyzer) checkMain(main *MainClass) {
	a.class, _ = a.syms.LookupClass(main.Name)
	a.method = "main"

	scope := NewScope()
	for _, v := range main.Vars {
		if !scope.Declare(v.Name, v.Type) {
			a.errorf("Variable '%s' is already defined in main.", v.Name)
		}
	}
	for _, s := range main.Body {
		a.checkStmt(s, scope)
	}
}

func (a *Analyzer) checkMethod(m *MethodDecl) {
	scope := NewScope()
	for _, p := range m.Params {
		// duplicates were reported while populating members
		scope.Declare(p.Name, p.Type)
	}
	for _, v := range m.Vars {
		if !scope.Declare(v.Name, v.Type) {
			a.errorf("Variable '%s' is already defined in this scope.", v.Name)
		}
	}
	for _, s := range m.Body {
		a.checkStmt(s, scope)
	}

	ret := a.exprType(m.Return, scope)
	if !Compatible(m.ReturnType, ret) {
		a.errorf("Return type mismatch. Expected %s but got %s", m.ReturnType, ret)
	}
}

// lookupVar resolves a name through the scope (locals and parameters) and
// then the fields of the current class.
func (a *Analyzer) lookupVar(name string, scope *Scope) (Type, bool) {
	if t, ok := scope.Lookup(name); ok {
		return t, true
	}
	if a.class != nil {
		if t, ok := a.class.Fields[name]; ok {
			return t, true
		}
	}
	return Invalid, false
}

func (a *Analyzer) checkStmt(s Stmt, scope *Scope) {
	switch s := s.(type) {
	case *Block:
		inner := scope.Copy()
		for _, st := range s.Stmts {
			a.checkStmt(st, inner)
		}

	case *If:
		if t := a.exprType(s.Cond, scope); t.Kind != BooleanType {
			a.errorf("Condition of if must be boolean")
		}
		a.checkStmt(s.Then, scope.Copy())
		a.checkStmt(s.Else, scope.Copy())

	case *While:
		if t := a.exprType(s.Cond, scope); t.Kind != BooleanType {
			a.errorf("Condition of while must be boolean")
		}
		a.checkStmt(s.Body, scope.Copy())

	case *Print:
		if t := a.exprType(s.Expr, scope); t.Kind != IntType {
			a.errorf("System.out.println expects an int expression")
		}

	case *Assign:
		valT := a.exprType(s.Value, scope)
		varT, ok := a.lookupVar(s.Name, scope)
		if !ok {
			a.errorf("Undeclared variable %s for assignment", s.Name)
		} else if !Compatible(varT, valT) {
			a.errorf("Type mismatch in assignment to %s: expected %s, got %s", s.Name, varT, valT)
		}

	case *ArrayAssign:
		varT, ok := a.lookupVar(s.Name, scope)
		switch {
		case !ok:
			a.errorf("Undeclared array %s", s.Name)
		case varT.Kind != ArrayType:
			a.errorf("Variable %s is not an array", s.Name)
		default:
			if t := a.exprType(s.Index, scope); t.Kind != IntType {
				a.errorf("Array index must be an integer")
			}
			elem := Type{Kind: varT.Elem}
			if t := a.exprType(s.Value, scope); !Compatible(elem, t) {
				a.errorf("Type mismatch in array assignment to %s: expected %s but got %s", s.Name, elem, t)
			}
		}

	default:
		panic(fmt.Sprintf("compiler: unexpected statement %T", s))
	}
}

// exprType computes the type of e, reporting any violation inside it.
// Invalid means the type could not be determined.
func (a *Analyzer) exprType(e Expr, scope *Scope) Type {
	switch e := e.(type) {
	case *IntLit:
		return Int

	case *BoolLit:
		return Boolean

	case *VarRef:
		t, ok := a.lookupVar(e.Name, scope)
		if !ok {
			a.errorf("Undeclared variable %s", e.Name)
			return Invalid
		}
		return t

	case *Binary:
		left := a.exprType(e.Left, scope)
		right := a.exprType(e.Right, scope)
		switch e.Op {
		case "+", "-", "*":
			if left.Kind == IntType && right.Kind == IntType {
				return Int
			}
			a.errorf("Arithmetic operator %q requires int operands", e.Op)
		case "<":
			if left.Kind == IntType && right.Kind == IntType {
				return Boolean
			}
			a.errorf("%q requires int operands", e.Op)
		case "&&", "||":
			if left.Kind == BooleanType && right.Kind == BooleanType {
				return Boolean
			}
			a.errorf("Logical operator %q requires boolean operands", e.Op)
		default:
			a.errorf("Unknown operator %q", e.Op)
		}
		return Invalid

	case *Unary:
		t := a.exprType(e.Operand, scope)
		if e.Op == "!" && t.Kind == BooleanType {
			return Boolean
		}
		a.errorf("! operator expects a boolean operand")
		return Invalid

	case *ArrayAccess:
		arr := a.exprType(e.Array, scope)
		if arr.Kind != ArrayType {
			a.errorf("%s is not an array", e.Array)
			return Invalid
		}
		if t := a.exprType(e.Index, scope); t.Kind != IntType {
			a.errorf("Array index must be int")
		}
		return Type{Kind: arr.Elem}

	case *ArrayLength:
		if arr := a.exprType(e.Array, scope); arr.Kind != ArrayType {
			a.errorf("%s is not an array for length", e.Array)
		}
		return Int

	case *MethodCall:
		return a.callType(e, scope)

	case *NewArray:
		if t := a.exprType(e.Size, scope); t.Kind != IntType {
			a.errorf("Array size must be an integer")
		}
		return IntArray

	case *NewObject:
		if _, ok := a.syms.LookupClass(e.Class); !ok {
			a.errorf("Class '%s' not found.", e.Class)
			return Invalid
		}
		return ClassRef(e.Class)

	case *This:
		if a.class == nil || a.class.Name == a.mainClass {
			a.errorf("'this' cannot be used in static method main")
			return Invalid
		}
		return ClassRef(a.class.Name)
	}
	panic(fmt.Sprintf("compiler: unexpected expression %T", e))
}

func (a *Analyzer) callType(call *MethodCall, scope *Scope) Type {
	recv := a.exprType(call.Receiver, scope)
	if recv.Kind != ClassType {
		a.errorf("Variable '%s' is not a class instance.", call.Receiver)
		return Invalid
	}
	cls, ok := a.syms.LookupClass(recv.Class)
	if !ok {
		a.errorf("Class '%s' not found.", recv.Class)
		return Invalid
	}
	m, ok := cls.Methods[call.Method]
	if !ok {
		a.errorf("Method '%s' not found in class '%s'.", call.Method, cls.Name)
		return Invalid
	}
	a.calls[call] = cls.Name
	if len(call.Args) != len(m.Params) {
		a.errorf("Method '%s' expects %d arguments, but got %d.", call.Method, len(m.Params), len(call.Args))
		return Invalid
	}
	for i, arg := range call.Args {
		want := m.Params[i].Type
		if got := a.exprType(arg, scope); !Compatible(want, got) {
			a.errorf("Type mismatch for argument %d of method '%s'. Expected %s but got %s.", i+1, call.Method, want, got)
		}
	}
	return m.ReturnType
}
