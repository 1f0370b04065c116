package types

// Intersect is the pairwise intersection of two unions. Disjoint basics
// vanish, so the result is Never when nothing overlaps. Any acts as identity.
func Intersect(a, b Ty) Ty {
	if a.IsAny() {
		return b
	}
	if b.IsAny() {
		return a
	}
	var out []BasicType
	for _, x := range a.alts {
		for _, y := range b.alts {
			if r, ok := intersectBasic(x, y); ok {
				out = append(out, r)
			}
		}
	}
	return FromBasics(out...)
}

func intersectBasic(x, y BasicType) (BasicType, bool) {
	if _, ok := x.(AnyType); ok {
		return y, true
	}
	if _, ok := y.(AnyType); ok {
		return x, true
	}
	switch xv := x.(type) {
	case PrimitiveType:
		if yv, ok := y.(PrimitiveType); ok && yv.Kind == xv.Kind {
			return x, true
		}
	case ListType:
		switch yv := y.(type) {
		case ListType:
			return ListType{Elem: Intersect(xv.Elem, yv.Elem)}, true
		case IterableType:
			return ListType{Elem: Intersect(xv.Elem, yv.Elem)}, true
		}
	case TupleType:
		switch yv := y.(type) {
		case TupleType:
			return intersectTuple(xv, yv)
		case IterableType:
			return intersectTuple(xv, TupleType{Variadic: true, Rest: yv.Elem})
		}
	case DictType:
		switch yv := y.(type) {
		case DictType:
			return DictType{Key: Intersect(xv.Key, yv.Key), Value: Intersect(xv.Value, yv.Value)}, true
		case IterableType:
			return DictType{Key: Intersect(xv.Key, yv.Elem), Value: xv.Value}, true
		}
	case IterableType:
		switch yv := y.(type) {
		case IterableType:
			return IterableType{Elem: Intersect(xv.Elem, yv.Elem)}, true
		case ListType, TupleType, DictType:
			return intersectBasic(y, x)
		case CustomType:
			if _, ok := iterElem(yv); ok {
				return y, true
			}
		}
	case FunctionType:
		if yv, ok := y.(FunctionType); ok {
			switch {
			case xv.Sig == nil:
				return y, true
			case yv.Sig == nil:
				return x, true
			case basicSubtype(x, y):
				return x, true
			case basicSubtype(y, x):
				return y, true
			}
		}
	case StructType:
		if yv, ok := y.(StructType); ok {
			switch {
			case structSubtype(xv, yv):
				return x, true
			case structSubtype(yv, xv):
				return y, true
			}
		}
	case CustomType:
		switch yv := y.(type) {
		case CustomType:
			if yv.Name == xv.Name {
				return x, true
			}
		case IterableType:
			return intersectBasic(y, x)
		}
	}
	return nil, false
}

func intersectTuple(x, y TupleType) (BasicType, bool) {
	switch {
	case x.Variadic && y.Variadic:
		return TupleType{Variadic: true, Rest: Intersect(x.Rest, y.Rest)}, true
	case x.Variadic:
		return intersectTuple(y, x)
	case y.Variadic:
		elems := make([]Ty, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = Intersect(e, y.Rest)
		}
		return TupleType{Elems: elems}, true
	}
	if len(x.Elems) != len(y.Elems) {
		return nil, false
	}
	elems := make([]Ty, len(x.Elems))
	for i := range x.Elems {
		elems[i] = Intersect(x.Elems[i], y.Elems[i])
	}
	return TupleType{Elems: elems}, true
}
