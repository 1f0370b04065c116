package types

// Custom is the hook a host registers for a domain-specific runtime type.
// Each optional capability below is detected with a type assertion; a hook
// that lacks one defers that question to the oracle.
type Custom interface {
	TypeName() string
}

// CustomAttributes answers attribute lookups. ok=false means the attribute
// does not exist on the type.
type CustomAttributes interface {
	Attribute(name string) (ty Ty, ok bool)
}

// CustomCallable makes values of the type callable.
type CustomCallable interface {
	CallSignature() *Signature
}

// CustomBinOp types binary operators where the custom value is the left operand.
// ok=false means the operator is not supported for that right operand.
type CustomBinOp interface {
	BinOp(op string, right BasicType) (ty Ty, ok bool)
}

// CustomIterable yields the element type when iterating the value.
type CustomIterable interface {
	IterElem() Ty
}
