package types

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Ty is a normalized union of basic types. The zero value is Never.
//
// Normal form: alternatives are deduplicated and sorted by their canonical
// string; Any absorbs every other alternative.
type Ty struct {
	alts []BasicType
}

func Never() Ty { return Ty{} }

func Any() Ty { return Ty{alts: []BasicType{AnyType{}}} }

// Basic lifts a single basic type into Ty.
func Basic(b BasicType) Ty {
	if b == nil {
		return Never()
	}
	return Ty{alts: []BasicType{b}}
}

// Union joins the alternatives of every input into one normalized Ty.
func Union(tys ...Ty) Ty {
	var alts []BasicType
	for _, t := range tys {
		alts = append(alts, t.alts...)
	}
	return FromBasics(alts...)
}

// FromBasics builds a normalized Ty from raw alternatives.
func FromBasics(alts ...BasicType) Ty {
	if len(alts) == 0 {
		return Never()
	}
	keyed := make([]keyedBasic, 0, len(alts))
	seen := make(map[string]struct{}, len(alts))
	for _, alt := range alts {
		if alt == nil {
			continue
		}
		if _, ok := alt.(AnyType); ok {
			return Any()
		}
		key := alt.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keyed = append(keyed, keyedBasic{key: key, basic: alt})
	}
	if len(keyed) == 0 {
		return Never()
	}
	slices.SortFunc(keyed, func(a, b keyedBasic) int { return strings.Compare(a.key, b.key) })
	out := make([]BasicType, len(keyed))
	for i, kb := range keyed {
		out[i] = kb.basic
	}
	return Ty{alts: out}
}

type keyedBasic struct {
	key   string
	basic BasicType
}

// Basics returns a copy of the alternatives in canonical order.
func (t Ty) Basics() []BasicType {
	return append([]BasicType(nil), t.alts...)
}

func (t Ty) Len() int { return len(t.alts) }

func (t Ty) IsNever() bool { return len(t.alts) == 0 }

func (t Ty) IsAny() bool {
	if len(t.alts) != 1 {
		return false
	}
	_, ok := t.alts[0].(AnyType)
	return ok
}

// Single returns the only alternative when t is not a union.
func (t Ty) Single() (BasicType, bool) {
	if len(t.alts) != 1 {
		return nil, false
	}
	return t.alts[0], true
}

// IsNone reports whether t is exactly None.
func (t Ty) IsNone() bool {
	b, ok := t.Single()
	return ok && isPrimitive(b, PrimitiveNone)
}

// Contains reports whether some alternative satisfies pred.
func (t Ty) Contains(pred func(BasicType) bool) bool {
	return slices.ContainsFunc(t.alts, pred)
}

// Filter keeps the alternatives satisfying keep.
func (t Ty) Filter(keep func(BasicType) bool) Ty {
	var out []BasicType
	for _, alt := range t.alts {
		if keep(alt) {
			out = append(out, alt)
		}
	}
	return Ty{alts: out}
}

// Map replaces every alternative with f(alt) and re-normalizes.
func (t Ty) Map(f func(BasicType) Ty) Ty {
	parts := make([]Ty, 0, len(t.alts))
	for _, alt := range t.alts {
		parts = append(parts, f(alt))
	}
	return Union(parts...)
}

// Equal is structural equality on normalized types.
func (t Ty) Equal(other Ty) bool {
	if len(t.alts) != len(other.alts) {
		return false
	}
	for i := range t.alts {
		if t.alts[i].String() != other.alts[i].String() {
			return false
		}
	}
	return true
}

// OrAny maps Never to Any; used where an absent annotation means "unknown".
func (t Ty) OrAny() Ty {
	if t.IsNever() {
		return Any()
	}
	return t
}

// HasAny reports whether Any occurs anywhere inside t, including inside
// container elements and signatures.
func (t Ty) HasAny() bool {
	for _, alt := range t.alts {
		if basicHasAny(alt) {
			return true
		}
	}
	return false
}

func basicHasAny(b BasicType) bool {
	switch v := b.(type) {
	case AnyType:
		return true
	case ListType:
		return v.Elem.HasAny()
	case IterableType:
		return v.Elem.HasAny()
	case DictType:
		return v.Key.HasAny() || v.Value.HasAny()
	case TupleType:
		if v.Variadic {
			return v.Rest.HasAny()
		}
		for _, e := range v.Elems {
			if e.HasAny() {
				return true
			}
		}
	case StructType:
		for _, f := range v.Fields {
			if f.Type.HasAny() {
				return true
			}
		}
		return v.Extra
	case FunctionType:
		return v.Sig == nil || v.Sig.Result.HasAny()
	}
	return false
}
