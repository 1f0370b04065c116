package types

import (
	"testing"

	"github.com/eaburns/pretty"
	"github.com/google/go-cmp/cmp"
)

var tyComparer = cmp.Comparer(func(a, b Ty) bool { return a.Equal(b) })

func sampleTypes() []Ty {
	return []Ty{
		Never(),
		None(),
		Int(),
		String(),
		Union(Int(), String()),
		List(Int()),
		List(Union(Int(), None())),
		Dict(String(), Int()),
		Tuple(Int(), String()),
		TupleOf(Int()),
		Iterable(Int()),
		Struct(StructField{Name: "a", Type: Int()}),
		Struct(StructField{Name: "a", Type: Int()}, StructField{Name: "b", Type: String()}),
		Basic(NewStructType([]StructField{{Name: "a", Type: Int()}}, true)),
		Named("Label"),
	}
}

func TestUnionAlgebra(t *testing.T) {
	samples := sampleTypes()
	for _, a := range samples {
		if got := Union(a, a); !got.Equal(a) {
			t.Fatalf("union(%s, %s) = %s, want idempotent", a, a, got)
		}
		if got := Union(a, Never()); !got.Equal(a) {
			t.Fatalf("union(%s, Never) = %s", a, got)
		}
		if got := Union(a, Any()); !got.IsAny() {
			t.Fatalf("union(%s, Any) = %s, want Any", a, got)
		}
		for _, b := range samples {
			if !Union(a, b).Equal(Union(b, a)) {
				t.Fatalf("union not commutative for %s and %s", a, b)
			}
			for _, c := range samples[:5] {
				left := Union(Union(a, b), c)
				right := Union(a, Union(b, c))
				if !left.Equal(right) {
					t.Fatalf("union not associative: %s vs %s", left, right)
				}
			}
		}
	}
}

func TestUnionCanonicalOrder(t *testing.T) {
	a := Union(String(), None(), Int())
	b := Union(Int(), String(), None())
	if diff := cmp.Diff(a.String(), b.String()); diff != "" {
		t.Fatalf("canonical order differs (-a +b):\n%s", diff)
	}
	if a.Len() != 3 {
		t.Fatalf("expected 3 alternatives, got %d", a.Len())
	}
	if !FromBasics().IsNever() {
		t.Fatalf("empty union should be Never")
	}
}

func TestIntersect(t *testing.T) {
	closedA := Struct(StructField{Name: "a", Type: Int()})
	closedAB := Struct(StructField{Name: "a", Type: Int()}, StructField{Name: "b", Type: String()})
	openB := Basic(NewStructType([]StructField{{Name: "b", Type: String()}}, true))
	cases := []struct {
		name string
		a, b Ty
		want Ty
	}{
		{"any identity", Any(), Int(), Int()},
		{"never absorbs", Never(), Int(), Never()},
		{"union filter", Union(Int(), String()), Union(String(), None()), String()},
		{"disjoint", Int(), String(), Never()},
		{"list element", List(Int()), List(Any()), List(Int())},
		{"iterable with list", Iterable(Int()), List(Any()), List(Int())},
		{"tuple lengths", Tuple(Int()), Tuple(Int(), Int()), Never()},
		{"named", Named("Label"), Named("Label"), Named("Label")},
		{"struct keeps wider record", closedAB, closedA, closedAB},
		{"struct into open", closedAB, openB, closedAB},
		{"struct unrelated", closedA, openB, Never()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Intersect(tc.a, tc.b)
			if diff := cmp.Diff(tc.want, got, tyComparer); diff != "" {
				t.Fatalf("intersect(%s, %s) (-want +got):\n%s", tc.a, tc.b, diff)
			}
			if back := Intersect(tc.b, tc.a); !back.Equal(got) {
				t.Fatalf("intersect not commutative: %s vs %s", got, back)
			}
		})
	}
	for _, s := range sampleTypes() {
		if got := Intersect(s, Any()); !got.Equal(s) {
			t.Fatalf("intersect(%s, Any) = %s", s, got)
		}
	}
}

func TestSubtypeProperties(t *testing.T) {
	samples := sampleTypes()
	for _, a := range samples {
		if !Subtype(a, a) {
			t.Fatalf("%s should be a subtype of itself", a)
		}
		if !Subtype(Never(), a) {
			t.Fatalf("Never should be a subtype of %s", a)
		}
		if !Subtype(a, Any()) || !Subtype(Any(), a) {
			t.Fatalf("Any should be compatible with %s in both directions", a)
		}
		for _, b := range samples {
			for _, c := range samples {
				if Subtype(a, b) && Subtype(b, c) && !Subtype(a, c) {
					t.Fatalf("subtype not transitive: %s <: %s <: %s", a, b, c)
				}
			}
		}
	}
}

func TestSubtypeShapes(t *testing.T) {
	open := Basic(NewStructType([]StructField{{Name: "a", Type: Int()}}, true))
	closedAB := Struct(StructField{Name: "a", Type: Int()}, StructField{Name: "b", Type: String()})
	closedA := Struct(StructField{Name: "a", Type: Int()})
	cases := []struct {
		name       string
		sub, super Ty
		want       bool
	}{
		{"member of union", Int(), Union(Int(), String()), true},
		{"union into member", Union(Int(), String()), Int(), false},
		{"list covariant", List(Int()), List(Union(Int(), None())), true},
		{"list element mismatch", List(String()), List(Int()), false},
		{"list is iterable", List(Int()), Iterable(Int()), true},
		{"dict iterates keys", Dict(String(), Int()), Iterable(String()), true},
		{"fixed tuple into variadic", Tuple(Int(), Int()), TupleOf(Int()), true},
		{"variadic into fixed", TupleOf(Int()), Tuple(Int()), false},
		{"width into open", closedAB, open, true},
		{"width into closed", closedAB, closedA, true},
		{"closed missing field", closedA, closedAB, false},
		{"open into closed", open, closedA, false},
		{"int is not float", Int(), Float(), false},
		{"named by name", Named("Label"), Named("Target"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Subtype(tc.sub, tc.super); got != tc.want {
				t.Fatalf("Subtype(%s, %s) = %v, want %v", tc.sub, tc.super, got, tc.want)
			}
		})
	}
}

func TestNewSignatureValidation(t *testing.T) {
	if _, err := NewSignature([]Param{NamedOnly("k", Int(), false), Required("x", Int())}, None()); err == nil {
		t.Fatalf("expected ordering error")
	}
	if _, err := NewSignature([]Param{VarArgs("a", Any()), VarArgs("b", Any())}, None()); err == nil {
		t.Fatalf("expected repeated *args error")
	}
	if _, err := NewSignature([]Param{Required("x", Int()), Optional("x", Int())}, None()); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	sig, err := NewSignature([]Param{Required("x", Ty{})}, None())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sig.Params[0].Type.IsAny() {
		t.Fatalf("unannotated parameter should be Any, got %s", sig.Params[0].Type)
	}
}

func TestParseTypeExpr(t *testing.T) {
	cases := map[string]Ty{
		"int":                  Int(),
		"string":               String(),
		"None | str":           Union(None(), String()),
		"list[int]":            List(Int()),
		"dict[str, list[int]]": Dict(String(), List(Int())),
		"tuple[int, ...]":      TupleOf(Int()),
		"tuple[int, str]":      Tuple(Int(), String()),
		"tuple[()]":            Tuple(),
		"iterable[int]":        Iterable(Int()),
		"Callable":             Function(nil),
		"Label":                Named("Label"),
		"Any":                  Any(),
	}
	for src, want := range cases {
		got, err := ParseTypeExpr(src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q = %s, want %s", src, got, want)
		}
		if back := MustParse(got.String()); !back.Equal(got) {
			t.Fatalf("%q does not re-parse from %q", src, got.String())
		}
	}
	for _, bad := range []string{"", "list[int", "int]", "dict[int;str]"} {
		if _, err := ParseTypeExpr(bad); err == nil {
			t.Fatalf("expected parse error for %q", bad)
		}
	}
}

func TestTyJSONRoundTrip(t *testing.T) {
	sig := MustSignature(Bool(),
		PosOnly("p", Int(), false),
		Required("x", Union(Int(), None())),
		VarArgs("rest", Any()),
		NamedOnly("flag", Bool(), true),
		VarKwargs("kw", String()),
	)
	samples := append(sampleTypes(), Function(sig), Function(nil), Any())
	for _, want := range samples {
		data, err := want.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %s: %v", want, err)
		}
		var got Ty
		if err := got.UnmarshalJSON(data); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if !got.Equal(want) {
			t.Fatalf("round trip mismatch:\nwant %s\ngot  %s\nwire %s\n%s", want, got, data, pretty.String(got))
		}
	}
}

type labelHook struct{}

func (labelHook) TypeName() string { return "Label" }

func TestAttachHooks(t *testing.T) {
	lookup := func(name string) (Custom, bool) {
		if name == "Label" {
			return labelHook{}, true
		}
		return nil, false
	}
	got := AttachHooks(List(Named("Label")), lookup)
	b, _ := got.Single()
	elem, _ := b.(ListType).Elem.Single()
	if custom, ok := elem.(CustomType); !ok || custom.Hook == nil {
		t.Fatalf("expected hook attached, got %s", pretty.String(elem))
	}
}
