package types

import (
	"encoding/json"
	"fmt"
)

// Wire form: a Ty is a JSON array of tagged basic objects; [] is Never.
// Custom types travel by name only; hooks are re-attached by the host.

type basicJSON struct {
	Kind     string          `json:"kind"`
	Name     string          `json:"name,omitempty"`
	Elem     *Ty             `json:"elem,omitempty"`
	Elems    []Ty            `json:"elems,omitempty"`
	Variadic bool            `json:"variadic,omitempty"`
	Key      *Ty             `json:"key,omitempty"`
	Value    *Ty             `json:"value,omitempty"`
	Sig      *Signature      `json:"sig,omitempty"`
	Fields   []structFieldJS `json:"fields,omitempty"`
	Extra    bool            `json:"extra,omitempty"`
}

type structFieldJS struct {
	Name string `json:"name"`
	Type Ty     `json:"type"`
}

type paramJSON struct {
	Mode     string `json:"mode"`
	Name     string `json:"name"`
	Type     Ty     `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

type signatureJSON struct {
	Params []paramJSON `json:"params"`
	Result Ty          `json:"result"`
}

func (t Ty) MarshalJSON() ([]byte, error) {
	out := make([]basicJSON, 0, len(t.alts))
	for _, alt := range t.alts {
		out = append(out, encodeBasic(alt))
	}
	return json.Marshal(out)
}

func (t *Ty) UnmarshalJSON(data []byte) error {
	var raw []basicJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("types: decode type: %w", err)
	}
	alts := make([]BasicType, 0, len(raw))
	for _, r := range raw {
		b, err := decodeBasic(r)
		if err != nil {
			return err
		}
		alts = append(alts, b)
	}
	*t = FromBasics(alts...)
	return nil
}

func (s *Signature) MarshalJSON() ([]byte, error) {
	out := signatureJSON{Params: make([]paramJSON, 0, len(s.Params)), Result: s.Result}
	for _, p := range s.Params {
		out.Params = append(out.Params, paramJSON{Mode: p.Mode.String(), Name: p.Name, Type: p.Type, Optional: p.Optional})
	}
	return json.Marshal(out)
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var raw signatureJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("types: decode signature: %w", err)
	}
	params := make([]Param, 0, len(raw.Params))
	for _, p := range raw.Params {
		mode, err := ParseParamMode(p.Mode)
		if err != nil {
			return err
		}
		params = append(params, Param{Mode: mode, Name: p.Name, Type: p.Type, Optional: p.Optional})
	}
	*s = Signature{Params: params, Result: raw.Result}
	return nil
}

func encodeBasic(b BasicType) basicJSON {
	switch v := b.(type) {
	case PrimitiveType:
		return basicJSON{Kind: string(v.Kind)}
	case ListType:
		return basicJSON{Kind: "list", Elem: tyPtr(v.Elem)}
	case TupleType:
		if v.Variadic {
			return basicJSON{Kind: "tuple", Variadic: true, Elem: tyPtr(v.Rest)}
		}
		return basicJSON{Kind: "tuple", Elems: append(make([]Ty, 0, len(v.Elems)), v.Elems...)}
	case DictType:
		return basicJSON{Kind: "dict", Key: tyPtr(v.Key), Value: tyPtr(v.Value)}
	case IterableType:
		return basicJSON{Kind: "iterable", Elem: tyPtr(v.Elem)}
	case FunctionType:
		return basicJSON{Kind: "function", Sig: v.Sig}
	case StructType:
		fields := make([]structFieldJS, 0, len(v.Fields))
		for _, f := range v.Fields {
			fields = append(fields, structFieldJS{Name: f.Name, Type: f.Type})
		}
		return basicJSON{Kind: "struct", Fields: fields, Extra: v.Extra}
	case CustomType:
		return basicJSON{Kind: "custom", Name: v.Name}
	case AnyType:
		return basicJSON{Kind: "any"}
	}
	return basicJSON{Kind: "any"}
}

func decodeBasic(r basicJSON) (BasicType, error) {
	elem := func() Ty {
		if r.Elem == nil {
			return Any()
		}
		return *r.Elem
	}
	switch r.Kind {
	case string(PrimitiveNone), string(PrimitiveBool), string(PrimitiveInt), string(PrimitiveFloat), string(PrimitiveString):
		return PrimitiveType{Kind: PrimitiveKind(r.Kind)}, nil
	case "list":
		return ListType{Elem: elem()}, nil
	case "tuple":
		if r.Variadic {
			return TupleType{Variadic: true, Rest: elem()}, nil
		}
		return TupleType{Elems: append([]Ty(nil), r.Elems...)}, nil
	case "dict":
		key, value := Any(), Any()
		if r.Key != nil {
			key = *r.Key
		}
		if r.Value != nil {
			value = *r.Value
		}
		return DictType{Key: key, Value: value}, nil
	case "iterable":
		return IterableType{Elem: elem()}, nil
	case "function":
		return FunctionType{Sig: r.Sig}, nil
	case "struct":
		fields := make([]StructField, 0, len(r.Fields))
		for _, f := range r.Fields {
			fields = append(fields, StructField{Name: f.Name, Type: f.Type})
		}
		return NewStructType(fields, r.Extra), nil
	case "custom":
		if r.Name == "" {
			return nil, fmt.Errorf("types: custom type without name")
		}
		return CustomType{Name: r.Name}, nil
	case "any":
		return AnyType{}, nil
	}
	return nil, fmt.Errorf("types: unknown type kind %q", r.Kind)
}

func tyPtr(t Ty) *Ty { return &t }

// AttachHooks re-binds custom type hooks by name, typically after decoding.
func AttachHooks(t Ty, lookup func(name string) (Custom, bool)) Ty {
	return t.Map(func(b BasicType) Ty {
		return Basic(attachBasic(b, lookup))
	})
}

func attachBasic(b BasicType, lookup func(string) (Custom, bool)) BasicType {
	switch v := b.(type) {
	case CustomType:
		if hook, ok := lookup(v.Name); ok {
			v.Hook = hook
		}
		return v
	case ListType:
		return ListType{Elem: AttachHooks(v.Elem, lookup)}
	case TupleType:
		if v.Variadic {
			return TupleType{Variadic: true, Rest: AttachHooks(v.Rest, lookup)}
		}
		elems := make([]Ty, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = AttachHooks(e, lookup)
		}
		return TupleType{Elems: elems}
	case DictType:
		return DictType{Key: AttachHooks(v.Key, lookup), Value: AttachHooks(v.Value, lookup)}
	case IterableType:
		return IterableType{Elem: AttachHooks(v.Elem, lookup)}
	case StructType:
		fields := make([]StructField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = StructField{Name: f.Name, Type: AttachHooks(f.Type, lookup)}
		}
		return StructType{Fields: fields, Extra: v.Extra}
	}
	return b
}
