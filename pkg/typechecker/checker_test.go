package typechecker

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/oracle"
	"startyping/checker-go/pkg/types"
)

var tyComparer = cmp.Comparer(func(a, b types.Ty) bool { return a.Equal(b) })

func checkWith(t *testing.T, opts Options, module *ast.Module, loads map[string]*Interface) Result {
	t.Helper()
	res, err := New(opts).CheckModule(module, loads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func check(t *testing.T, stmts ...ast.Statement) Result {
	t.Helper()
	return checkWith(t, Options{}, ast.Mod(stmts...), nil)
}

func lookup(t *testing.T, res Result, name string) types.Ty {
	t.Helper()
	ty, err := res.Globals.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return ty
}

func expectType(t *testing.T, label string, got, want types.Ty) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s: expected %s, got %s", label, want, got)
	}
}

func expectNoErrors(t *testing.T, res Result) {
	t.Helper()
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
}

func errorKinds(errs []types.TypingError) []types.ErrorKind {
	out := make([]types.ErrorKind, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Kind)
	}
	return out
}

func TestCheckModuleRejectsNilModule(t *testing.T) {
	if _, err := New(Options{}).CheckModule(nil, nil); err == nil {
		t.Fatalf("expected error for nil module")
	}
}

func TestLiteralsAndAssignments(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("i"), ast.Int(1)),
		ast.Assign(ast.ID("s"), ast.Str("a")),
		ast.Assign(ast.ID("xs"), ast.List(ast.Int(1), ast.Str("a"))),
		ast.Assign(ast.ID("d"), ast.Dict(ast.Entry(ast.Str("k"), ast.Flt(1.5)))),
		ast.Assign(ast.ID("pair"), ast.Tuple(ast.Int(1), ast.None())),
		ast.Assign(ast.ID("sum"), ast.Bin("+", ast.ID("i"), ast.Int(2))),
	)
	expectNoErrors(t, res)
	expectType(t, "i", lookup(t, res, "i"), types.Int())
	expectType(t, "s", lookup(t, res, "s"), types.String())
	expectType(t, "xs", lookup(t, res, "xs"), types.List(types.Union(types.Int(), types.String())))
	expectType(t, "d", lookup(t, res, "d"), types.Dict(types.String(), types.Float()))
	expectType(t, "pair", lookup(t, res, "pair"), types.Tuple(types.Int(), types.None()))
	expectType(t, "sum", lookup(t, res, "sum"), types.Int())
}

func TestRedeclarationOverwrites(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("x"), ast.Int(1)),
		ast.Assign(ast.ID("x"), ast.Str("a")),
	)
	expectNoErrors(t, res)
	expectType(t, "x", lookup(t, res, "x"), types.String())
}

func TestIfBranchesMergeToUnion(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("cond"), ast.Bool(true)),
		ast.If(ast.ID("cond"),
			ast.Block(ast.Assign(ast.ID("x"), ast.Int(1))),
			ast.Block(ast.Assign(ast.ID("x"), ast.Str("a"))),
		),
	)
	expectNoErrors(t, res)
	expectType(t, "x", lookup(t, res, "x"), types.Union(types.Int(), types.String()))
}

func TestStructLiteralMissingFieldReportsOnce(t *testing.T) {
	access := ast.Member(ast.Struct(ast.Field("a", ast.Int(1)), ast.Field("b", ast.Str("x"))), "c")
	res := check(t, ast.Assign(ast.ID("v"), access))
	if diff := cmp.Diff([]types.ErrorKind{types.ErrNotSupportedAttribute}, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	expectType(t, "access", res.Types.TypeOf(access), types.Any())
	expectType(t, "v", lookup(t, res, "v"), types.Any())
}

func TestStructCallFields(t *testing.T) {
	call := ast.CallName("struct", ast.Named("name", ast.Str("n")), ast.Named("count", ast.Int(1)))
	res := check(t,
		ast.Assign(ast.ID("s"), call),
		ast.Assign(ast.ID("n"), ast.Member(ast.ID("s"), "name")),
		ast.Assign(ast.ID("open"), ast.CallName("struct", ast.StarStar(ast.Dict()))),
		ast.Assign(ast.ID("anything"), ast.Member(ast.ID("open"), "whatever")),
	)
	expectNoErrors(t, res)
	expectType(t, "n", lookup(t, res, "n"), types.String())
	expectType(t, "anything", lookup(t, res, "anything"), types.Any())
}

func TestCallBindsPositionalsAroundNamed(t *testing.T) {
	def := ast.Fn("f",
		[]*ast.FunctionParameter{
			ast.Param("x", ast.Ty("int")),
			ast.ParamDefault("y", ast.Ty("str"), ast.Str("a")),
			ast.Args("rest", ast.Ty("Any")),
		},
		ast.Block(ast.Ret(ast.Bool(true))),
		ast.Ty("bool"),
	)
	call := ast.CallName("f", ast.Int(1), ast.Named("y", ast.Str("b")), ast.Int(2), ast.Int(3))
	res := check(t, def, ast.Assign(ast.ID("r"), call))
	expectNoErrors(t, res)
	expectType(t, "call", res.Types.TypeOf(call), types.Bool())
}

func TestCallArgumentTypeMismatch(t *testing.T) {
	def := ast.Fn("g",
		[]*ast.FunctionParameter{ast.Param("x", ast.Ty("int"))},
		ast.Block(ast.Ret(ast.ID("x"))),
		ast.Ty("int"),
	)
	call := ast.At(ast.CallName("g", ast.Str("s")), 4, 1)
	res := check(t, def, ast.Assign(ast.ID("r"), call))
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	got := res.Errors[0]
	if got.Kind != types.ErrArgumentTypeMismatch || got.Param != "x" {
		t.Fatalf("unexpected error %+v", got)
	}
	expectType(t, "expected", got.Expected, types.Int())
	expectType(t, "found", got.Found, types.String())
	if got.Span.Start.Line != 4 {
		t.Fatalf("expected error on line 4, got %d", got.Span.Start.Line)
	}
	expectType(t, "r", lookup(t, res, "r"), types.Int())
}

func TestCallNamedArgumentOrderIndependent(t *testing.T) {
	def := ast.Fn("h",
		[]*ast.FunctionParameter{ast.Param("a", ast.Ty("int")), ast.Param("b", ast.Ty("str"))},
		ast.Block(ast.Ret(ast.ID("a"))),
		ast.Ty("int"),
	)
	forward := check(t, def, ast.CallName("h", ast.Named("a", ast.Str("x")), ast.Named("b", ast.Int(1))))
	reversed := check(t, def, ast.CallName("h", ast.Named("b", ast.Int(1)), ast.Named("a", ast.Str("x"))))
	if len(forward.Errors) != 2 {
		t.Fatalf("expected two mismatches, got %v", forward.Errors)
	}
	if diff := cmp.Diff(forward.Errors, reversed.Errors, tyComparer); diff != "" {
		t.Fatalf("errors depend on named argument order (-forward +reversed):\n%s", diff)
	}
}

func TestCallArityErrors(t *testing.T) {
	def := ast.Fn("k",
		[]*ast.FunctionParameter{ast.Param("a", nil)},
		ast.Block(ast.Pass()),
		nil,
	)
	res := check(t, def,
		ast.CallName("k"),
		ast.CallName("k", ast.Int(1), ast.Int(2)),
		ast.CallName("k", ast.Named("b", ast.Int(1)), ast.Named("a", ast.Int(1))),
	)
	want := []types.ErrorKind{
		types.ErrMissingRequiredArgument,
		types.ErrTooManyPositionalArguments,
		types.ErrUnexpectedKeywordArgument,
	}
	if diff := cmp.Diff(want, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestNotCallable(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("n"), ast.Int(1)),
		ast.Assign(ast.ID("r"), ast.CallName("n")),
	)
	if diff := cmp.Diff([]types.ErrorKind{types.ErrNotCallable}, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	expectType(t, "r", lookup(t, res, "r"), types.Any())
}

func TestNotInScopeRecoversWithAny(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("x"), ast.ID("missing")),
		ast.Assign(ast.ID("y"), ast.Bin("+", ast.ID("x"), ast.Int(1))),
	)
	if diff := cmp.Diff([]types.ErrorKind{types.ErrNotInScope}, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	if res.Errors[0].Param != "missing" {
		t.Fatalf("expected error to name `missing`, got %q", res.Errors[0].Param)
	}
	expectType(t, "x", lookup(t, res, "x"), types.Any())
}

func TestIncompatibleBinOp(t *testing.T) {
	expr := ast.Bin("+", ast.Str("a"), ast.Int(1))
	res := check(t, ast.Assign(ast.ID("x"), expr))
	if diff := cmp.Diff([]types.ErrorKind{types.ErrIncompatibleBinOp}, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	expectType(t, "expr", res.Types.TypeOf(expr), types.Any())
}

func TestAnnotatedAssignment(t *testing.T) {
	res := check(t,
		ast.AssignTyped(ast.ID("x"), ast.Ty("int"), ast.Int(1)),
		ast.Assign(ast.ID("x"), ast.Str("a")),
		ast.AssignTyped(ast.ID("y"), ast.UnionT(ast.Ty("int"), ast.Ty("None")), ast.None()),
	)
	if diff := cmp.Diff([]types.ErrorKind{types.ErrIncompatibleAssignment}, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	expectType(t, "x", lookup(t, res, "x"), types.Int())
	expectType(t, "y", lookup(t, res, "y"), types.Union(types.Int(), types.None()))
}

func TestTupleUnpacking(t *testing.T) {
	res := check(t,
		ast.Assign(ast.Tuple(ast.ID("a"), ast.ID("b")), ast.Tuple(ast.Int(1), ast.Str("s"))),
		ast.Assign(ast.Tuple(ast.ID("c"), ast.ID("d")), ast.Tuple(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Assign(ast.List(ast.ID("e"), ast.ID("f")), ast.List(ast.Int(1))),
	)
	if diff := cmp.Diff([]types.ErrorKind{types.ErrIncompatibleAssignment}, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	expectType(t, "a", lookup(t, res, "a"), types.Int())
	expectType(t, "b", lookup(t, res, "b"), types.String())
	expectType(t, "c", lookup(t, res, "c"), types.Any())
	expectType(t, "e", lookup(t, res, "e"), types.Int())
}

func TestListAppendWidensLocal(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("xs"), ast.List()),
		ast.Call(ast.Member(ast.ID("xs"), "append"), ast.Int(1)),
		ast.AugAssign(ast.AssignmentAdd, ast.ID("xs"), ast.List(ast.Str("a"))),
		ast.Assign(ast.ID("d"), ast.Dict()),
		ast.Assign(ast.Index(ast.ID("d"), ast.Str("k")), ast.Int(1)),
	)
	expectNoErrors(t, res)
	expectType(t, "xs", lookup(t, res, "xs"), types.List(types.Union(types.Int(), types.String())))
	expectType(t, "d", lookup(t, res, "d"), types.Dict(types.String(), types.Int()))
}

func TestBuiltinCalls(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("n"), ast.CallName("len", ast.List(ast.Int(1)))),
		ast.Assign(ast.ID("s"), ast.CallName("str", ast.Int(1))),
		ast.Assign(ast.ID("r"), ast.CallName("range", ast.Int(3))),
		ast.Assign(ast.ID("bad"), ast.CallName("len")),
	)
	if diff := cmp.Diff([]types.ErrorKind{types.ErrMissingRequiredArgument}, errorKinds(res.Errors)); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	expectType(t, "n", lookup(t, res, "n"), types.Int())
	expectType(t, "s", lookup(t, res, "s"), types.String())
	expectType(t, "r", lookup(t, res, "r"), types.List(types.Int()))
}

func TestModeLintAndCompiler(t *testing.T) {
	module := func() *ast.Module {
		return ast.Mod(ast.Fn("f",
			[]*ast.FunctionParameter{ast.Param("v", ast.UnionT(ast.Ty("int"), ast.Ty("str")))},
			ast.Block(ast.Ret(ast.Member(ast.ID("v"), "upper"))),
			nil,
		))
	}
	lint := checkWith(t, Options{Mode: oracle.ModeLint}, module(), nil)
	if diff := cmp.Diff([]types.ErrorKind{types.ErrNotSupportedAttribute}, errorKinds(lint.Errors)); diff != "" {
		t.Fatalf("lint error kinds mismatch (-want +got):\n%s", diff)
	}
	compiler := checkWith(t, Options{Mode: oracle.ModeCompiler}, module(), nil)
	expectNoErrors(t, compiler)
}

func TestExportsSkipPrivateAndLoaded(t *testing.T) {
	loads := map[string]*Interface{
		"//lib:defs.bzl": NewInterface(map[string]types.Ty{"helper": types.Int()}),
	}
	module := ast.Mod(
		ast.Load("//lib:defs.bzl", ast.Sym("helper")),
		ast.Assign(ast.ID("public"), ast.Int(1)),
		ast.Assign(ast.ID("_private"), ast.Int(2)),
		ast.Fn("run", nil, ast.Block(ast.Pass()), nil),
	)
	res := checkWith(t, Options{}, module, loads)
	expectNoErrors(t, res)
	if diff := cmp.Diff([]string{"public", "run"}, res.Interface.Names()); diff != "" {
		t.Fatalf("exports mismatch (-want +got):\n%s", diff)
	}
	run, _ := res.Interface.Get("run")
	want := types.Function(types.MustSignature(types.None()))
	expectType(t, "run", run, want)
}

func TestReboundLoadIsExported(t *testing.T) {
	loads := map[string]*Interface{
		"lib": NewInterface(map[string]types.Ty{"value": types.Int()}),
	}
	module := ast.Mod(
		ast.Load("lib", ast.Sym("value")),
		ast.Assign(ast.ID("value"), ast.Bin("+", ast.ID("value"), ast.Int(1))),
	)
	res := checkWith(t, Options{}, module, loads)
	expectNoErrors(t, res)
	if _, ok := res.Interface.Get("value"); !ok {
		t.Fatalf("expected rebound name to be exported")
	}
}

func TestApproximationFlags(t *testing.T) {
	use := ast.ID("foo")
	length := ast.CallName("len", ast.ID("foo"))
	module := ast.Mod(
		ast.Load("//missing:defs.bzl", ast.Sym("foo")),
		ast.Assign(ast.ID("y"), use),
		ast.Assign(ast.ID("n"), length),
	)
	res := checkWith(t, Options{}, module, nil)
	expectNoErrors(t, res)
	if len(res.Approximations) == 0 || res.Approximations[0].Category != "load" {
		t.Fatalf("expected a load approximation, got %v", res.Approximations)
	}
	if info, _ := res.Types.Get(use); !info.Approximate {
		t.Fatalf("expected use of unresolved load to be approximate")
	}
	info, ok := res.Types.Get(length)
	if !ok || info.Approximate {
		t.Fatalf("expected precise builtin result, got %+v", info)
	}
	expectType(t, "n", info.Type, types.Int())
	if _, ok := res.Interface.Get("foo"); ok {
		t.Fatalf("loaded names must not be exported")
	}
}
