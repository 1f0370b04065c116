package types

import (
	"fmt"
	"strings"
)

// String renders t in the same surface syntax ParseTypeExpr accepts.
func (t Ty) String() string {
	switch len(t.alts) {
	case 0:
		return "Never"
	case 1:
		return t.alts[0].String()
	}
	parts := make([]string, len(t.alts))
	for i, alt := range t.alts {
		parts[i] = alt.String()
	}
	return strings.Join(parts, " | ")
}

func (p PrimitiveType) String() string { return string(p.Kind) }

func (l ListType) String() string { return fmt.Sprintf("list[%s]", l.Elem) }

func (t TupleType) String() string {
	if t.Variadic {
		return fmt.Sprintf("tuple[%s, ...]", t.Rest)
	}
	if len(t.Elems) == 0 {
		return "tuple[()]"
	}
	parts := make([]string, len(t.Elems))
	for i, elem := range t.Elems {
		parts[i] = elem.String()
	}
	return "tuple[" + strings.Join(parts, ", ") + "]"
}

func (d DictType) String() string { return fmt.Sprintf("dict[%s, %s]", d.Key, d.Value) }

func (i IterableType) String() string { return fmt.Sprintf("iterable[%s]", i.Elem) }

func (f FunctionType) String() string {
	if f.Sig == nil {
		return "function"
	}
	return f.Sig.String()
}

func (c CustomType) String() string { return c.Name }

func (AnyType) String() string { return "Any" }

func (s StructType) String() string {
	parts := make([]string, 0, len(s.Fields)+1)
	for _, f := range s.Fields {
		parts = append(parts, fmt.Sprintf("%s = %s", f.Name, f.Type))
	}
	if s.Extra {
		parts = append(parts, "...")
	}
	return "struct(" + strings.Join(parts, ", ") + ")"
}

func (s *Signature) String() string {
	if s == nil {
		return "function"
	}
	var parts []string
	sawPosOnly := false
	sawStar := false
	for i, p := range s.Params {
		if sawPosOnly && p.Mode != ParamPosOnly {
			parts = append(parts, "/")
			sawPosOnly = false
		}
		switch p.Mode {
		case ParamPosOnly:
			sawPosOnly = true
		case ParamArgs:
			sawStar = true
		case ParamNamedOnly:
			if !sawStar {
				parts = append(parts, "*")
				sawStar = true
			}
		}
		parts = append(parts, p.String())
		if i == len(s.Params)-1 && sawPosOnly {
			parts = append(parts, "/")
		}
	}
	return fmt.Sprintf("def(%s) -> %s", strings.Join(parts, ", "), s.Result)
}

func (p Param) String() string {
	var b strings.Builder
	switch p.Mode {
	case ParamArgs:
		b.WriteString("*")
	case ParamKwargs:
		b.WriteString("**")
	}
	b.WriteString(p.Name)
	b.WriteString(": ")
	b.WriteString(p.Type.String())
	if p.Optional {
		b.WriteString(" = ...")
	}
	return b.String()
}
