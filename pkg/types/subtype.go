package types

// Subtype reports whether every value of sub is acceptable where super is
// expected. Any is compatible in both directions; Never is a subtype of
// everything.
func Subtype(sub, super Ty) bool {
	if super.IsAny() || sub.IsAny() {
		return true
	}
	for _, s := range sub.alts {
		if !basicSubtypeOfUnion(s, super) {
			return false
		}
	}
	return true
}

func basicSubtypeOfUnion(sub BasicType, super Ty) bool {
	for _, candidate := range super.alts {
		if basicSubtype(sub, candidate) {
			return true
		}
	}
	return false
}

func basicSubtype(sub, super BasicType) bool {
	if _, ok := sub.(AnyType); ok {
		return true
	}
	if _, ok := super.(AnyType); ok {
		return true
	}
	switch sup := super.(type) {
	case PrimitiveType:
		s, ok := sub.(PrimitiveType)
		return ok && s.Kind == sup.Kind
	case ListType:
		s, ok := sub.(ListType)
		return ok && Subtype(s.Elem, sup.Elem)
	case TupleType:
		s, ok := sub.(TupleType)
		return ok && tupleSubtype(s, sup)
	case DictType:
		s, ok := sub.(DictType)
		return ok && Subtype(s.Key, sup.Key) && Subtype(s.Value, sup.Value)
	case IterableType:
		elem, ok := iterElem(sub)
		return ok && Subtype(elem, sup.Elem)
	case FunctionType:
		switch s := sub.(type) {
		case FunctionType:
			if sup.Sig == nil || s.Sig == nil {
				return true
			}
			return Subtype(s.Sig.Result, sup.Sig.Result)
		case CustomType:
			if sup.Sig == nil {
				_, ok := s.Hook.(CustomCallable)
				return ok
			}
		}
		return false
	case StructType:
		s, ok := sub.(StructType)
		return ok && structSubtype(s, sup)
	case CustomType:
		s, ok := sub.(CustomType)
		return ok && s.Name == sup.Name
	}
	return false
}

func tupleSubtype(sub, super TupleType) bool {
	if super.Variadic {
		return Subtype(sub.ElementUnion(), super.Rest)
	}
	if sub.Variadic || len(sub.Elems) != len(super.Elems) {
		return false
	}
	for i := range sub.Elems {
		if !Subtype(sub.Elems[i], super.Elems[i]) {
			return false
		}
	}
	return true
}

// iterElem returns the element type produced by iterating b, for the
// container shapes the type algebra knows about.
func iterElem(b BasicType) (Ty, bool) {
	switch v := b.(type) {
	case AnyType:
		return Any(), true
	case ListType:
		return v.Elem, true
	case TupleType:
		return v.ElementUnion(), true
	case DictType:
		return v.Key, true
	case IterableType:
		return v.Elem, true
	case CustomType:
		if it, ok := v.Hook.(CustomIterable); ok {
			return it.IterElem(), true
		}
	}
	return Ty{}, false
}

// IterElem exposes iterElem for callers outside the algebra.
func IterElem(b BasicType) (Ty, bool) { return iterElem(b) }
