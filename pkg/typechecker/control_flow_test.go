package typechecker

import (
	"testing"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/types"
)

func TestForLoopMergesPreAndPostBody(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("x"), ast.Int(1)),
		ast.For(ast.ID("i"), ast.List(ast.Int(1), ast.Int(2)),
			ast.Assign(ast.ID("x"), ast.Str("a")),
		),
	)
	expectNoErrors(t, res)
	expectType(t, "x", lookup(t, res, "x"), types.Union(types.Int(), types.String()))
	expectType(t, "i", lookup(t, res, "i"), types.Int())
}

func TestForLoopTupleTarget(t *testing.T) {
	pairs := ast.List(ast.Tuple(ast.Str("k"), ast.Int(1)))
	res := check(t,
		ast.For(ast.Tuple(ast.ID("k"), ast.ID("v")), pairs, ast.Pass()),
	)
	expectNoErrors(t, res)
	expectType(t, "k", lookup(t, res, "k"), types.String())
	expectType(t, "v", lookup(t, res, "v"), types.Int())
}

func TestForLoopOverNonIterable(t *testing.T) {
	res := check(t, ast.For(ast.ID("i"), ast.Int(3), ast.Pass()))
	if len(res.Errors) != 1 || res.Errors[0].Kind != types.ErrIncompatibleBinOp {
		t.Fatalf("expected one iteration error, got %v", res.Errors)
	}
	expectType(t, "i", lookup(t, res, "i"), types.Any())
}

func TestForLoopBreakAndContinueStates(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("x"), ast.Int(1)),
		ast.For(ast.ID("i"), ast.List(ast.Int(1)),
			ast.If(ast.Bin("==", ast.ID("i"), ast.Int(0)),
				ast.Block(ast.Assign(ast.ID("x"), ast.None()), ast.Break()),
				ast.Block(ast.Assign(ast.ID("x"), ast.Str("a")), ast.Continue()),
			),
		),
	)
	expectNoErrors(t, res)
	want := types.Union(types.Int(), types.None(), types.String())
	expectType(t, "x", lookup(t, res, "x"), want)
}

func TestWhileTrueKeepsOnlyBreakStates(t *testing.T) {
	ret := ast.ID("y")
	def := ast.Fn("f", nil, ast.Block(
		ast.Assign(ast.ID("y"), ast.None()),
		ast.While(ast.Bool(true),
			ast.Assign(ast.ID("y"), ast.Int(1)),
			ast.Break(),
		),
		ast.Ret(ret),
	), nil)
	res := check(t, def)
	expectNoErrors(t, res)
	expectType(t, "returned y", res.Types.TypeOf(ret), types.Int())
}

func TestWhileTrueWithoutBreakDoesNotFallThrough(t *testing.T) {
	after := ast.Assign(ast.ID("x"), ast.Bin("+", ast.Str("a"), ast.Int(1)))
	res := check(t,
		ast.While(ast.ID("True"), ast.Pass()),
		after,
	)
	expectNoErrors(t, res)
	if res.Globals.Has("x") {
		t.Fatalf("expected unreachable assignment to leave no binding")
	}
	expectType(t, "dead expression", res.Types.TypeOf(after.Right), types.Never())
}

func TestConditionalWhileMergesPreLoop(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("n"), ast.Int(0)),
		ast.Assign(ast.ID("last"), ast.None()),
		ast.While(ast.Bin("<", ast.ID("n"), ast.Int(3)),
			ast.Assign(ast.ID("last"), ast.Str("s")),
			ast.AugAssign(ast.AssignmentAdd, ast.ID("n"), ast.Int(1)),
		),
	)
	expectNoErrors(t, res)
	expectType(t, "n", lookup(t, res, "n"), types.Int())
	expectType(t, "last", lookup(t, res, "last"), types.Union(types.None(), types.String()))
}

func TestEarlyReturnBranchContributesNothing(t *testing.T) {
	ret := ast.ID("x")
	def := ast.Fn("f", []*ast.FunctionParameter{ast.Param("flag", ast.Ty("bool"))}, ast.Block(
		ast.If(ast.ID("flag"),
			ast.Block(ast.Ret(ast.Int(0))),
			ast.Block(ast.Assign(ast.ID("x"), ast.Str("a"))),
		),
		ast.Ret(ret),
	), nil)
	res := check(t, def)
	expectNoErrors(t, res)
	expectType(t, "x", res.Types.TypeOf(ret), types.String())
	f := lookup(t, res, "f")
	b, _ := f.Single()
	fn, ok := b.(types.FunctionType)
	if !ok || fn.Sig == nil {
		t.Fatalf("expected f to be a function, got %s", f)
	}
	expectType(t, "result", fn.Sig.Result, types.Union(types.Int(), types.String()))
}

func TestUnreachableCodeIsSilent(t *testing.T) {
	dead := ast.Bin("+", ast.Str("a"), ast.Int(1))
	def := ast.Fn("f", nil, ast.Block(
		ast.Ret(ast.Int(1)),
		ast.Assign(ast.ID("x"), dead),
		ast.Ret(ast.Str("never")),
	), nil)
	res := check(t, def)
	expectNoErrors(t, res)
	expectType(t, "dead", res.Types.TypeOf(dead), types.Never())
	f := lookup(t, res, "f")
	b, _ := f.Single()
	fn := b.(types.FunctionType)
	expectType(t, "result", fn.Sig.Result, types.Int())
}

func TestFailTerminatesBlock(t *testing.T) {
	def := ast.Fn("f", []*ast.FunctionParameter{ast.Param("v", ast.Ty("int"))}, ast.Block(
		ast.If(ast.Bin("<", ast.ID("v"), ast.Int(0)),
			ast.Block(ast.CallName("fail", ast.Str("negative"))),
			nil,
		),
		ast.Ret(ast.ID("v")),
	), nil)
	res := check(t, def)
	expectNoErrors(t, res)
	f := lookup(t, res, "f")
	b, _ := f.Single()
	expectType(t, "result", b.(types.FunctionType).Sig.Result, types.Int())
}

func TestNarrowingNoneComparison(t *testing.T) {
	sum := ast.Bin("+", ast.ID("v"), ast.Int(1))
	def := ast.Fn("f", []*ast.FunctionParameter{
		ast.Param("v", ast.UnionT(ast.Ty("int"), ast.Ty("None"))),
	}, ast.Block(
		ast.If(ast.Bin("==", ast.ID("v"), ast.None()), ast.Block(ast.Ret(ast.Int(0))), nil),
		ast.Ret(sum),
	), nil)
	res := check(t, def)
	expectNoErrors(t, res)
	expectType(t, "sum", res.Types.TypeOf(sum), types.Int())
}

func TestNarrowingWithoutCheckReportsNone(t *testing.T) {
	def := ast.Fn("f", []*ast.FunctionParameter{
		ast.Param("v", ast.UnionT(ast.Ty("int"), ast.Ty("None"))),
	}, ast.Block(
		ast.Ret(ast.Bin("+", ast.ID("v"), ast.Int(1))),
	), nil)
	res := check(t, def)
	if len(res.Errors) != 1 || res.Errors[0].Kind != types.ErrIncompatibleBinOp {
		t.Fatalf("expected one operator error, got %v", res.Errors)
	}
}

func TestNarrowingTypeComparison(t *testing.T) {
	upper := ast.Call(ast.Member(ast.ID("v"), "upper"))
	sum := ast.Bin("+", ast.ID("v"), ast.Int(1))
	def := ast.Fn("g", []*ast.FunctionParameter{
		ast.Param("v", ast.UnionT(ast.Ty("int"), ast.Ty("str"))),
	}, ast.Block(
		ast.If(ast.Bin("==", ast.Str("str"), ast.CallName("type", ast.ID("v"))),
			ast.Block(ast.Ret(upper)),
			nil,
		),
		ast.Ret(sum),
	), nil)
	res := check(t, def)
	expectNoErrors(t, res)
	expectType(t, "upper", res.Types.TypeOf(upper), types.String())
	expectType(t, "sum", res.Types.TypeOf(sum), types.Int())
}

func TestNarrowingNegationAndTruthiness(t *testing.T) {
	then := ast.Call(ast.Member(ast.ID("v"), "upper"))
	def := ast.Fn("f", []*ast.FunctionParameter{
		ast.Param("v", ast.UnionT(ast.Ty("str"), ast.Ty("None"))),
	}, ast.Block(
		ast.If(ast.Not(ast.Not(ast.ID("v"))), ast.Block(ast.Ret(then)), nil),
		ast.Ret(ast.Str("")),
	), nil)
	res := check(t, def)
	expectNoErrors(t, res)
	expectType(t, "then", res.Types.TypeOf(then), types.String())
}

func TestNarrowingInExpressions(t *testing.T) {
	cond := ast.Cond(
		ast.Bin("!=", ast.ID("v"), ast.None()),
		ast.Bin("+", ast.ID("v"), ast.Int(1)),
		ast.Int(0),
	)
	guarded := ast.Bin("and", ast.ID("v"), ast.Bin("+", ast.ID("v"), ast.Int(1)))
	res := check(t,
		ast.AssignTyped(ast.ID("v"), ast.UnionT(ast.Ty("int"), ast.Ty("None")), ast.None()),
		ast.Assign(ast.ID("a"), cond),
		ast.Assign(ast.ID("b"), guarded),
	)
	expectNoErrors(t, res)
	expectType(t, "a", lookup(t, res, "a"), types.Int())
	expectType(t, "v", lookup(t, res, "v"), types.Union(types.Int(), types.None()))
}

func TestComprehensionScope(t *testing.T) {
	comp := ast.ListComp(
		ast.Bin("*", ast.ID("x"), ast.Int(2)),
		ast.ForC(ast.ID("x"), ast.List(ast.Int(1), ast.None())),
		ast.IfC(ast.Bin("!=", ast.ID("x"), ast.None())),
	)
	dict := ast.DictComp(ast.ID("k"), ast.Int(1), ast.ForC(ast.ID("k"), ast.List(ast.Str("a"))))
	res := check(t,
		ast.Assign(ast.ID("doubled"), comp),
		ast.Assign(ast.ID("index"), dict),
	)
	expectNoErrors(t, res)
	expectType(t, "doubled", lookup(t, res, "doubled"), types.List(types.Int()))
	expectType(t, "index", lookup(t, res, "index"), types.Dict(types.String(), types.Int()))
	if res.Globals.Has("x") || res.Globals.Has("k") {
		t.Fatalf("comprehension variables leaked into module scope")
	}
}

func TestReturnTypeChecked(t *testing.T) {
	def := ast.Fn("f", nil, ast.Block(ast.Ret(ast.Str("s"))), ast.Ty("int"))
	res := check(t, def)
	if len(res.Errors) != 1 || res.Errors[0].Kind != types.ErrIncompatibleAssignment {
		t.Fatalf("expected one return error, got %v", res.Errors)
	}
	f := lookup(t, res, "f")
	b, _ := f.Single()
	expectType(t, "declared result", b.(types.FunctionType).Sig.Result, types.Int())
}

func TestParameterDefaultsAndVariadics(t *testing.T) {
	argsUse := ast.ID("rest")
	kwargsUse := ast.ID("opts")
	def := ast.Fn("f", []*ast.FunctionParameter{
		ast.ParamDefault("n", ast.Ty("int"), ast.Str("bad")),
		ast.Args("rest", ast.Ty("str")),
		ast.Kwargs("opts", ast.Ty("int")),
	}, ast.Block(
		argsUse,
		kwargsUse,
	), nil)
	res := check(t, def)
	if len(res.Errors) != 1 || res.Errors[0].Kind != types.ErrIncompatibleAssignment || res.Errors[0].Param != "n" {
		t.Fatalf("expected one default error on n, got %v", res.Errors)
	}
	expectType(t, "rest", res.Types.TypeOf(argsUse), types.TupleOf(types.String()))
	expectType(t, "opts", res.Types.TypeOf(kwargsUse), types.Dict(types.String(), types.Int()))
}

func TestForwardReferenceInsideFunction(t *testing.T) {
	call := ast.CallName("helper")
	res := check(t,
		ast.Fn("main", nil, ast.Block(ast.Ret(call)), nil),
		ast.Fn("helper", nil, ast.Block(ast.Ret(ast.Int(1))), ast.Ty("int")),
	)
	expectNoErrors(t, res)
	expectType(t, "call", res.Types.TypeOf(call), types.Int())
}

func TestRecursiveFunction(t *testing.T) {
	res := check(t,
		ast.Fn("count", []*ast.FunctionParameter{ast.Param("n", ast.Ty("int"))}, ast.Block(
			ast.If(ast.Bin("<=", ast.ID("n"), ast.Int(0)), ast.Block(ast.Ret(ast.Int(0))), nil),
			ast.Ret(ast.Bin("+", ast.Int(1), ast.CallName("count", ast.Bin("-", ast.ID("n"), ast.Int(1))))),
		), ast.Ty("int")),
	)
	expectNoErrors(t, res)
}

func TestLambda(t *testing.T) {
	res := check(t,
		ast.Assign(ast.ID("inc"), ast.Lambda([]*ast.FunctionParameter{ast.Param("x", nil)}, ast.Bin("+", ast.ID("x"), ast.Int(1)))),
		ast.Assign(ast.ID("r"), ast.CallName("inc", ast.Int(1))),
		ast.Assign(ast.ID("bad"), ast.CallName("inc")),
	)
	if len(res.Errors) != 1 || res.Errors[0].Kind != types.ErrMissingRequiredArgument {
		t.Fatalf("expected a missing argument error, got %v", res.Errors)
	}
}
