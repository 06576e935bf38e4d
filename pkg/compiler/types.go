package compiler

// TypeKind is the shape of a Type.
type TypeKind int

const (
	InvalidType TypeKind = iota // no type; the result of a failed check
	IntType
	BooleanType
	StringType // only appears as the element of main's String[] parameter
	VoidType   // only appears as main's return type
	ArrayType
	ClassType
)

// Type is a structural value type. Two types are the same when their shapes
// match; see Compatible.
type Type struct {
	Kind  TypeKind
	Elem  TypeKind // element kind for ArrayType
	Class string   // class name for ClassType
}

var (
	Int      = Type{Kind: IntType}
	Boolean  = Type{Kind: BooleanType}
	Void     = Type{Kind: VoidType}
	IntArray = Type{Kind: ArrayType, Elem: IntType}
	Invalid  = Type{}
)

// ClassRef returns the type of an instance of the named class.
func ClassRef(name string) Type {
	return Type{Kind: ClassType, Class: name}
}

func (t Type) String() string {
	switch t.Kind {
	case IntType:
		return "int"
	case BooleanType:
		return "boolean"
	case StringType:
		return "String"
	case VoidType:
		return "void"
	case ArrayType:
		return Type{Kind: t.Elem}.String() + "[]"
	case ClassType:
		return t.Class
	}
	return "<invalid>"
}

// IsValid reports whether t is a real type rather than a failed lookup.
func (t Type) IsValid() bool { return t.Kind != InvalidType }

// Compatible reports whether a value of type src may be stored where dst is
// expected. Primitives must match exactly, arrays need the same element type
// and classes the same name. There is no widening and no subtyping.
func Compatible(dst, src Type) bool {
	if !dst.IsValid() || !src.IsValid() {
		return false
	}
	if dst.Kind != src.Kind {
		return false
	}
	switch dst.Kind {
	case ArrayType:
		return dst.Elem == src.Elem
	case ClassType:
		return dst.Class == src.Class
	}
	return true
}
