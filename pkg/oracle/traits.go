package oracle

import (
	"fmt"

	"startyping/checker-go/pkg/types"
)

// Status is the three-way answer of an oracle query.
type Status int

const (
	// Unknown means the oracle has no opinion; callers fall back to another
	// oracle or to Any.
	Unknown Status = iota
	// Known means the returned type is authoritative.
	Known
	// Unsupported means the oracle knows the operation is invalid.
	Unsupported
)

func (s Status) String() string {
	switch s {
	case Known:
		return "known"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// TypingOracle supplies typing facts about builtins that the algebra cannot derive.
type TypingOracle interface {
	Attribute(recv types.BasicType, name string) (types.Ty, Status)
	BinOp(op string, left, right types.BasicType) (types.Ty, Status)
	Signature(name string) (*types.Signature, Status)
}

// UnaryOracle is implemented by oracles that also type unary operators.
type UnaryOracle interface {
	UnOp(op string, operand types.BasicType) (types.Ty, Status)
}

// Refiner sharpens the result of a named builtin call from its argument
// types, where the declared signature alone is too coarse (list(x), sorted(x)).
type Refiner interface {
	Refine(name string, args []types.Arg) (types.Ty, bool)
}

// KindKey names the receiver kind used to key oracle tables.
func KindKey(b types.BasicType) string {
	switch v := b.(type) {
	case types.PrimitiveType:
		return string(v.Kind)
	case types.ListType:
		return "list"
	case types.TupleType:
		return "tuple"
	case types.DictType:
		return "dict"
	case types.IterableType:
		return "iterable"
	case types.FunctionType:
		return "function"
	case types.StructType:
		return "struct"
	case types.CustomType:
		return v.Name
	case types.AnyType:
		return "Any"
	}
	return fmt.Sprintf("%T", b)
}

// builtinKinds are the receiver kinds whose full surface the standard oracle knows.
var builtinKinds = map[string]struct{}{
	"None": {}, "bool": {}, "int": {}, "float": {}, "str": {},
	"list": {}, "tuple": {}, "dict": {}, "function": {}, "struct": {},
}

func isBuiltinKind(key string) bool {
	_, ok := builtinKinds[key]
	return ok
}
