package oracle

import (
	"sync"

	"startyping/checker-go/pkg/types"
)

// Standard knows the builtin value kinds and global functions of the
// language. Its tables are built once and shared read-only.
type Standard struct{}

func NewStandard() Standard { return Standard{} }

type attrFn func(recv types.BasicType) types.Ty

type binopKey struct {
	op    string
	left  string
	right string
}

type binopFn func(left, right types.BasicType) types.Ty

type unopKey struct {
	op      string
	operand string
}

type standardTables struct {
	attrs   map[string]map[string]attrFn
	binops  map[binopKey]binopFn
	unops   map[unopKey]types.Ty
	globals map[string]*types.Signature
}

var (
	standardOnce sync.Once
	standardData *standardTables
)

func tables() *standardTables {
	standardOnce.Do(func() {
		standardData = buildStandardTables()
	})
	return standardData
}

func (Standard) Attribute(recv types.BasicType, name string) (types.Ty, Status) {
	methods, ok := tables().attrs[KindKey(recv)]
	if !ok {
		return types.Any(), Unknown
	}
	fn, ok := methods[name]
	if !ok {
		return types.Any(), Unsupported
	}
	return fn(recv), Known
}

func (Standard) BinOp(op string, left, right types.BasicType) (types.Ty, Status) {
	lk, rk := KindKey(left), KindKey(right)
	membership := op == "in" || op == "not in"
	if !isBuiltinKind(rk) || (!membership && !isBuiltinKind(lk)) {
		return types.Any(), Unknown
	}
	t := tables()
	for _, key := range []binopKey{{op, lk, rk}, {op, "*", rk}, {op, lk, "*"}} {
		if fn, ok := t.binops[key]; ok {
			return fn(left, right), Known
		}
	}
	return types.Any(), Unsupported
}

func (Standard) UnOp(op string, operand types.BasicType) (types.Ty, Status) {
	key := KindKey(operand)
	if !isBuiltinKind(key) {
		return types.Any(), Unknown
	}
	if ty, ok := tables().unops[unopKey{op, key}]; ok {
		return ty, Known
	}
	return types.Any(), Unsupported
}

func (Standard) Signature(name string) (*types.Signature, Status) {
	if sig, ok := tables().globals[name]; ok {
		return sig, Known
	}
	return nil, Unknown
}

// Refine sharpens container-shaped builtins whose declared result is Any-typed.
func (Standard) Refine(name string, args []types.Arg) (types.Ty, bool) {
	var positional []types.Ty
	var named []types.Ty
	for _, a := range args {
		switch a.Kind {
		case types.ArgPositional:
			positional = append(positional, a.Type)
		case types.ArgNamed:
			named = append(named, a.Type)
		}
	}
	first := func() (types.Ty, bool) {
		if len(positional) == 0 {
			return types.Ty{}, false
		}
		return positional[0], true
	}
	switch name {
	case "list", "sorted", "reversed":
		if t, ok := first(); ok {
			return types.List(ElementOf(t)), true
		}
		if name == "list" {
			return types.List(types.Never()), true
		}
	case "tuple":
		if t, ok := first(); ok {
			return types.TupleOf(ElementOf(t)), true
		}
	case "enumerate":
		if t, ok := first(); ok {
			return types.List(types.Tuple(types.Int(), ElementOf(t))), true
		}
	case "zip":
		elems := make([]types.Ty, len(positional))
		for i, t := range positional {
			elems[i] = ElementOf(t)
		}
		return types.List(types.Tuple(elems...)), true
	case "min", "max":
		switch len(positional) {
		case 0:
		case 1:
			return ElementOf(positional[0]), true
		default:
			return types.Union(positional...), true
		}
	case "abs":
		if t, ok := first(); ok {
			return t, true
		}
	case "dict":
		if t, ok := first(); ok {
			if b, single := t.Single(); single {
				if d, isDict := b.(types.DictType); isDict {
					return types.Basic(d), true
				}
			}
			return types.Ty{}, false
		}
		if len(named) > 0 {
			return types.Dict(types.String(), types.Union(named...)), true
		}
	}
	return types.Ty{}, false
}

// ElementOf is the element type produced by iterating t; members that cannot
// be iterated contribute Any.
func ElementOf(t types.Ty) types.Ty {
	if t.IsNever() {
		return types.Never()
	}
	return t.Map(func(b types.BasicType) types.Ty {
		if elem, ok := types.IterElem(b); ok {
			return elem
		}
		return types.Any()
	})
}

func fn(result types.Ty, params ...types.Param) types.Ty {
	return types.Function(types.MustSignature(result, params...))
}

func static(t types.Ty) attrFn {
	return func(types.BasicType) types.Ty { return t }
}

func arg(name string, t types.Ty) types.Param { return types.PosOnly(name, t, false) }

func optArg(name string, t types.Ty) types.Param { return types.PosOnly(name, t, true) }

func listElem(recv types.BasicType) types.Ty {
	if l, ok := recv.(types.ListType); ok {
		return l.Elem
	}
	return types.Any()
}

func dictParts(recv types.BasicType) (types.Ty, types.Ty) {
	if d, ok := recv.(types.DictType); ok {
		return d.Key, d.Value
	}
	return types.Any(), types.Any()
}

func buildStandardTables() *standardTables {
	var (
		anyT   = types.Any()
		none   = types.None()
		boolT  = types.Bool()
		intT   = types.Int()
		floatT = types.Float()
		str    = types.String()
		strs   = types.List(str)
	)
	t := &standardTables{
		attrs:   make(map[string]map[string]attrFn),
		binops:  make(map[binopKey]binopFn),
		unops:   make(map[unopKey]types.Ty),
		globals: make(map[string]*types.Signature),
	}

	strMethods := map[string]attrFn{
		"capitalize":     static(fn(str)),
		"lower":          static(fn(str)),
		"upper":          static(fn(str)),
		"title":          static(fn(str)),
		"strip":          static(fn(str, optArg("chars", types.Union(str, none)))),
		"lstrip":         static(fn(str, optArg("chars", types.Union(str, none)))),
		"rstrip":         static(fn(str, optArg("chars", types.Union(str, none)))),
		"format":         static(fn(str, types.VarArgs("args", anyT), types.VarKwargs("kwargs", anyT))),
		"join":           static(fn(str, arg("iterable", types.Iterable(str)))),
		"partition":      static(fn(types.Tuple(str, str, str), arg("sep", str))),
		"rpartition":     static(fn(types.Tuple(str, str, str), arg("sep", str))),
		"removeprefix":   static(fn(str, arg("prefix", str))),
		"removesuffix":   static(fn(str, arg("suffix", str))),
		"replace":        static(fn(str, arg("old", str), arg("new", str), optArg("count", intT))),
		"split":          static(fn(strs, optArg("sep", types.Union(str, none)), optArg("maxsplit", intT))),
		"rsplit":         static(fn(strs, optArg("sep", types.Union(str, none)), optArg("maxsplit", intT))),
		"splitlines":     static(fn(strs, optArg("keepends", boolT))),
		"elems":          static(fn(types.Iterable(str))),
		"codepoints":     static(fn(types.Iterable(str))),
		"elem_ords":      static(fn(types.Iterable(intT))),
		"codepoint_ords": static(fn(types.Iterable(intT))),
	}
	for _, name := range []string{"count", "find", "rfind", "index", "rindex"} {
		strMethods[name] = static(fn(intT, arg("sub", str), optArg("start", types.Union(intT, none)), optArg("end", types.Union(intT, none))))
	}
	for _, name := range []string{"startswith", "endswith"} {
		strMethods[name] = static(fn(boolT, arg("affix", types.Union(str, types.TupleOf(str))), optArg("start", types.Union(intT, none)), optArg("end", types.Union(intT, none))))
	}
	for _, name := range []string{"isalnum", "isalpha", "isdigit", "islower", "isspace", "istitle", "isupper"} {
		strMethods[name] = static(fn(boolT))
	}
	t.attrs["str"] = strMethods

	t.attrs["list"] = map[string]attrFn{
		"append": static(fn(none, arg("x", anyT))),
		"extend": static(fn(none, arg("x", types.Iterable(anyT)))),
		"insert": static(fn(none, arg("index", intT), arg("x", anyT))),
		"remove": static(fn(none, arg("x", anyT))),
		"clear":  static(fn(none)),
		"index":  static(fn(intT, arg("x", anyT), optArg("start", intT), optArg("end", intT))),
		"pop": func(recv types.BasicType) types.Ty {
			return fn(listElem(recv), optArg("index", intT))
		},
	}

	t.attrs["dict"] = map[string]attrFn{
		"clear":  static(fn(none)),
		"update": static(fn(none, optArg("pairs", anyT), types.VarKwargs("kwargs", anyT))),
		"get": func(recv types.BasicType) types.Ty {
			_, v := dictParts(recv)
			return fn(types.Union(v, none), arg("key", anyT), optArg("default", anyT))
		},
		"items": func(recv types.BasicType) types.Ty {
			k, v := dictParts(recv)
			return fn(types.List(types.Tuple(k, v)))
		},
		"keys": func(recv types.BasicType) types.Ty {
			k, _ := dictParts(recv)
			return fn(types.List(k))
		},
		"values": func(recv types.BasicType) types.Ty {
			_, v := dictParts(recv)
			return fn(types.List(v))
		},
		"pop": func(recv types.BasicType) types.Ty {
			_, v := dictParts(recv)
			return fn(v, arg("key", anyT), optArg("default", anyT))
		},
		"popitem": func(recv types.BasicType) types.Ty {
			k, v := dictParts(recv)
			return fn(types.Tuple(k, v))
		},
		"setdefault": func(recv types.BasicType) types.Ty {
			_, v := dictParts(recv)
			return fn(v, arg("key", anyT), optArg("default", anyT))
		},
	}

	for _, kind := range []string{"None", "bool", "int", "float", "tuple", "function"} {
		t.attrs[kind] = map[string]attrFn{}
	}

	numeric := []string{"int", "float"}
	numericResult := func(l, r string) types.Ty {
		if l == "int" && r == "int" {
			return intT
		}
		return floatT
	}
	for _, l := range numeric {
		for _, r := range numeric {
			res := numericResult(l, r)
			for _, op := range []string{"+", "-", "*", "//", "%"} {
				t.binops[binopKey{op, l, r}] = staticBinop(res)
			}
			t.binops[binopKey{"/", l, r}] = staticBinop(floatT)
			for _, op := range []string{"<", "<=", ">", ">="} {
				t.binops[binopKey{op, l, r}] = staticBinop(boolT)
			}
		}
	}
	for _, op := range []string{"&", "|", "^", "<<", ">>"} {
		t.binops[binopKey{op, "int", "int"}] = staticBinop(intT)
	}
	for _, kind := range []string{"str", "list", "tuple", "bool"} {
		for _, op := range []string{"<", "<=", ">", ">="} {
			t.binops[binopKey{op, kind, kind}] = staticBinop(boolT)
		}
	}
	for _, op := range []string{"in", "not in"} {
		t.binops[binopKey{op, "str", "str"}] = staticBinop(boolT)
		for _, container := range []string{"list", "tuple", "dict"} {
			t.binops[binopKey{op, "*", container}] = staticBinop(boolT)
		}
	}
	t.binops[binopKey{"+", "str", "str"}] = staticBinop(str)
	t.binops[binopKey{"%", "str", "*"}] = staticBinop(str)
	t.binops[binopKey{"*", "str", "int"}] = staticBinop(str)
	t.binops[binopKey{"*", "int", "str"}] = staticBinop(str)
	t.binops[binopKey{"+", "list", "list"}] = func(l, r types.BasicType) types.Ty {
		return types.List(types.Union(listElem(l), listElem(r)))
	}
	t.binops[binopKey{"*", "list", "int"}] = func(l, _ types.BasicType) types.Ty { return types.Basic(l) }
	t.binops[binopKey{"*", "int", "list"}] = func(_, r types.BasicType) types.Ty { return types.Basic(r) }
	t.binops[binopKey{"+", "tuple", "tuple"}] = concatTuples
	t.binops[binopKey{"*", "tuple", "int"}] = func(l, _ types.BasicType) types.Ty {
		return types.TupleOf(l.(types.TupleType).ElementUnion())
	}
	t.binops[binopKey{"*", "int", "tuple"}] = func(_, r types.BasicType) types.Ty {
		return types.TupleOf(r.(types.TupleType).ElementUnion())
	}
	t.binops[binopKey{"|", "dict", "dict"}] = func(l, r types.BasicType) types.Ty {
		lk, lv := dictParts(l)
		rk, rv := dictParts(r)
		return types.Dict(types.Union(lk, rk), types.Union(lv, rv))
	}

	t.unops[unopKey{"-", "int"}] = intT
	t.unops[unopKey{"+", "int"}] = intT
	t.unops[unopKey{"~", "int"}] = intT
	t.unops[unopKey{"-", "float"}] = floatT
	t.unops[unopKey{"+", "float"}] = floatT

	sig := types.MustSignature
	t.globals["len"] = sig(intT, arg("x", anyT))
	t.globals["str"] = sig(str, arg("x", anyT))
	t.globals["repr"] = sig(str, arg("x", anyT))
	t.globals["type"] = sig(str, arg("x", anyT))
	t.globals["hash"] = sig(intT, arg("x", str))
	t.globals["int"] = sig(intT, optArg("x", anyT), optArg("base", intT))
	t.globals["float"] = sig(floatT, optArg("x", anyT))
	t.globals["bool"] = sig(boolT, optArg("x", anyT))
	t.globals["range"] = sig(types.List(intT), arg("start_or_stop", intT), optArg("stop", intT), optArg("step", intT))
	t.globals["print"] = sig(none, types.VarArgs("args", anyT), types.NamedOnly("sep", str, true))
	t.globals["fail"] = sig(types.Never(), types.VarArgs("args", anyT), types.NamedOnly("msg", anyT, true))
	t.globals["list"] = sig(types.List(anyT), optArg("x", types.Iterable(anyT)))
	t.globals["tuple"] = sig(types.TupleOf(anyT), optArg("x", types.Iterable(anyT)))
	t.globals["dict"] = sig(types.Dict(anyT, anyT), optArg("pairs", anyT), types.VarKwargs("kwargs", anyT))
	t.globals["sorted"] = sig(types.List(anyT), arg("x", types.Iterable(anyT)), types.NamedOnly("key", types.Function(nil), true), types.NamedOnly("reverse", boolT, true))
	t.globals["reversed"] = sig(types.List(anyT), arg("x", types.Iterable(anyT)))
	t.globals["enumerate"] = sig(types.List(types.Tuple(intT, anyT)), arg("x", types.Iterable(anyT)), optArg("start", intT))
	t.globals["zip"] = sig(types.List(types.TupleOf(anyT)), types.VarArgs("args", types.Iterable(anyT)))
	t.globals["min"] = sig(anyT, types.VarArgs("args", anyT), types.NamedOnly("key", types.Function(nil), true))
	t.globals["max"] = sig(anyT, types.VarArgs("args", anyT), types.NamedOnly("key", types.Function(nil), true))
	t.globals["abs"] = sig(types.Union(intT, floatT), arg("x", types.Union(intT, floatT)))
	t.globals["any"] = sig(boolT, arg("x", types.Iterable(anyT)))
	t.globals["all"] = sig(boolT, arg("x", types.Iterable(anyT)))
	t.globals["dir"] = sig(strs, arg("x", anyT))
	t.globals["getattr"] = sig(anyT, arg("x", anyT), arg("name", str), optArg("default", anyT))
	t.globals["hasattr"] = sig(boolT, arg("x", anyT), arg("name", str))
	t.globals["struct"] = sig(types.Basic(types.NewStructType(nil, true)), types.VarKwargs("kwargs", anyT))
	return t
}

func staticBinop(t types.Ty) binopFn {
	return func(types.BasicType, types.BasicType) types.Ty { return t }
}

func concatTuples(l, r types.BasicType) types.Ty {
	lt, rt := l.(types.TupleType), r.(types.TupleType)
	if lt.Variadic || rt.Variadic {
		return types.TupleOf(types.Union(lt.ElementUnion(), rt.ElementUnion()))
	}
	elems := append(append([]types.Ty(nil), lt.Elems...), rt.Elems...)
	return types.Tuple(elems...)
}
