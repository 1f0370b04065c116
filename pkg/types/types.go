package types

// BasicType is one non-union type shape. Unions live one level up in Ty.
type BasicType interface {
	String() string
	isBasic()
}

type PrimitiveKind string

const (
	PrimitiveNone   PrimitiveKind = "None"
	PrimitiveBool   PrimitiveKind = "bool"
	PrimitiveInt    PrimitiveKind = "int"
	PrimitiveFloat  PrimitiveKind = "float"
	PrimitiveString PrimitiveKind = "str"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (PrimitiveType) isBasic() {}

type ListType struct {
	Elem Ty
}

func (ListType) isBasic() {}

// TupleType is either fixed-length (Elems) or, when Variadic, any length with
// every element typed Rest.
type TupleType struct {
	Elems    []Ty
	Variadic bool
	Rest     Ty
}

func (TupleType) isBasic() {}

// KnownLength reports whether the tuple has a statically known number of elements.
func (t TupleType) KnownLength() bool { return !t.Variadic }

// ElementUnion returns the union of every element type.
func (t TupleType) ElementUnion() Ty {
	if t.Variadic {
		return t.Rest
	}
	return Union(t.Elems...)
}

type DictType struct {
	Key   Ty
	Value Ty
}

func (DictType) isBasic() {}

type IterableType struct {
	Elem Ty
}

func (IterableType) isBasic() {}

// FunctionType is a callable value. A nil Sig means "some callable, signature unknown".
type FunctionType struct {
	Sig *Signature
}

func (FunctionType) isBasic() {}

// CustomType is a named runtime type. Hook, when set, supplies its typed surface.
type CustomType struct {
	Name string
	Hook Custom
}

func (CustomType) isBasic() {}

// AnyType is the gradual unknown: compatible with everything in both directions.
type AnyType struct{}

func (AnyType) isBasic() {}

var (
	noneBasic   = PrimitiveType{Kind: PrimitiveNone}
	boolBasic   = PrimitiveType{Kind: PrimitiveBool}
	intBasic    = PrimitiveType{Kind: PrimitiveInt}
	floatBasic  = PrimitiveType{Kind: PrimitiveFloat}
	stringBasic = PrimitiveType{Kind: PrimitiveString}
)

func None() Ty   { return Basic(noneBasic) }
func Bool() Ty   { return Basic(boolBasic) }
func Int() Ty    { return Basic(intBasic) }
func Float() Ty  { return Basic(floatBasic) }
func String() Ty { return Basic(stringBasic) }

func List(elem Ty) Ty { return Basic(ListType{Elem: elem}) }

func Tuple(elems ...Ty) Ty {
	return Basic(TupleType{Elems: append([]Ty(nil), elems...)})
}

// TupleOf is a tuple of unknown length whose elements are all elem.
func TupleOf(elem Ty) Ty { return Basic(TupleType{Variadic: true, Rest: elem}) }

func Dict(key, value Ty) Ty { return Basic(DictType{Key: key, Value: value}) }

func Iterable(elem Ty) Ty { return Basic(IterableType{Elem: elem}) }

func Function(sig *Signature) Ty { return Basic(FunctionType{Sig: sig}) }

func Named(name string) Ty { return Basic(CustomType{Name: name}) }

func WithHook(name string, hook Custom) Ty { return Basic(CustomType{Name: name, Hook: hook}) }

func StructOf(s StructType) Ty { return Basic(s) }

func isPrimitive(b BasicType, kind PrimitiveKind) bool {
	p, ok := b.(PrimitiveType)
	return ok && p.Kind == kind
}
