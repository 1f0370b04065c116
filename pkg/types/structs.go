package types

import (
	"strings"

	"golang.org/x/exp/slices"
)

type StructField struct {
	Name string
	Type Ty
}

// StructType is a record. Fields are kept sorted by name; Extra marks an open
// record that may carry fields beyond the listed ones.
type StructType struct {
	Fields []StructField
	Extra  bool
}

func (StructType) isBasic() {}

// NewStructType sorts fields by name; a repeated name keeps its last type.
func NewStructType(fields []StructField, extra bool) StructType {
	byName := make(map[string]Ty, len(fields))
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := byName[f.Name]; !ok {
			order = append(order, f.Name)
		}
		byName[f.Name] = f.Type
	}
	slices.Sort(order)
	out := make([]StructField, 0, len(order))
	for _, name := range order {
		out = append(out, StructField{Name: name, Type: byName[name]})
	}
	return StructType{Fields: out, Extra: extra}
}

// Struct builds a closed record type.
func Struct(fields ...StructField) Ty {
	return Basic(NewStructType(fields, false))
}

// Field looks up a field by name.
func (s StructType) Field(name string) (Ty, bool) {
	idx, ok := slices.BinarySearchFunc(s.Fields, name, func(f StructField, target string) int {
		return strings.Compare(f.Name, target)
	})
	if !ok {
		return Ty{}, false
	}
	return s.Fields[idx].Type, true
}

// structSubtype implements record width subtyping: every field of the
// supertype must be present in the subtype with a compatible type. An open
// subtype never fits a closed supertype.
func structSubtype(sub, super StructType) bool {
	for _, f := range super.Fields {
		t, ok := sub.Field(f.Name)
		if !ok {
			return false
		}
		if !Subtype(t, f.Type) {
			return false
		}
	}
	return super.Extra || !sub.Extra
}
