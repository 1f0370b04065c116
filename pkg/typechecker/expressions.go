package typechecker

import (
	"errors"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/oracle"
	"startyping/checker-go/pkg/types"
)

func (c *Checker) evalExpression(env *Bindings, expr ast.Expression) types.Ty {
	switch e := expr.(type) {
	case *ast.Identifier:
		return c.checkIdentifier(env, e)
	case *ast.StringLiteral:
		return types.String()
	case *ast.IntegerLiteral:
		return types.Int()
	case *ast.FloatLiteral:
		return types.Float()
	case *ast.BooleanLiteral:
		return types.Bool()
	case *ast.NoneLiteral:
		return types.None()
	case *ast.ListLiteral:
		return types.List(c.checkElements(env, e.Elements))
	case *ast.TupleLiteral:
		elems := make([]types.Ty, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = c.checkExpression(env, el)
		}
		return types.Tuple(elems...)
	case *ast.DictLiteral:
		var keys, values []types.Ty
		for _, entry := range e.Entries {
			keys = append(keys, c.checkExpression(env, entry.Key))
			values = append(values, c.checkExpression(env, entry.Value))
		}
		return types.Dict(types.Union(keys...), types.Union(values...))
	case *ast.StructLiteral:
		return c.checkStructLiteral(env, e)
	case *ast.FunctionCall:
		return c.checkCall(env, e)
	case *ast.MemberAccessExpression:
		obj := c.checkExpression(env, e.Object)
		return c.ctx.Attribute(obj, e.Member.Name, e.Span())
	case *ast.IndexExpression:
		obj := c.checkExpression(env, e.Object)
		index := c.checkExpression(env, e.Index)
		return c.ctx.Index(obj, index, constantIndex(e.Index), e.Span())
	case *ast.SliceExpression:
		return c.checkSlice(env, e)
	case *ast.BinaryExpression:
		return c.checkBinary(env, e)
	case *ast.UnaryExpression:
		operand := c.checkExpression(env, e.Operand)
		return c.ctx.UnOp(string(e.Operator), operand, e.Span())
	case *ast.ConditionalExpression:
		return c.checkConditional(env, e)
	case *ast.LambdaExpression:
		return c.checkLambda(env, e)
	case *ast.ListComprehension:
		scope := c.checkClauses(env, e.Clauses)
		return types.List(c.checkExpression(scope, e.Element))
	case *ast.DictComprehension:
		scope := c.checkClauses(env, e.Clauses)
		key := c.checkExpression(scope, e.Key)
		return types.Dict(key, c.checkExpression(scope, e.Value))
	}
	c.ctx.Approximate("expression", expr.Span(), "expression %s is not checked", expr.NodeType())
	return types.Any()
}

func (c *Checker) checkElements(env *Bindings, elems []ast.Expression) types.Ty {
	tys := make([]types.Ty, 0, len(elems))
	for _, el := range elems {
		tys = append(tys, c.checkExpression(env, el))
	}
	return types.Union(tys...)
}

// checkIdentifier resolves a name: bindings first, then builtins, then
// names a function body may see before their definition is walked.
func (c *Checker) checkIdentifier(env *Bindings, ident *ast.Identifier) types.Ty {
	switch ident.Name {
	case "True", "False":
		return types.Bool()
	case "None":
		return types.None()
	}
	if ty, approx, ok := env.resolve(ident.Name); ok {
		if approx {
			c.diags.taint++
		}
		return ty
	}
	if sig, status := c.oracle.Signature(ident.Name); status == oracle.Known {
		return types.Function(sig)
	}
	ty, err := env.Lookup(ident.Name)
	if err == nil {
		c.ctx.Approximate("scope", ident.Span(), "`%s` may come from a wildcard load", ident.Name)
		return ty
	}
	if fwd, ok := c.forward[ident.Name]; ok && c.inFunction() {
		if fwd.approx {
			c.diags.taint++
		}
		return fwd.ty
	}
	var notInScope *types.TypingError
	if errors.As(err, &notInScope) {
		c.report(*notInScope, ident)
	}
	return types.Any()
}

func (c *Checker) checkStructLiteral(env *Bindings, lit *ast.StructLiteral) types.Ty {
	fields := make([]types.StructField, 0, len(lit.Fields))
	for _, f := range lit.Fields {
		ty := c.checkExpression(env, f.Value)
		c.record(f, ty, false)
		fields = append(fields, types.StructField{Name: f.Name.Name, Type: ty})
	}
	return types.StructOf(types.NewStructType(fields, false))
}

func (c *Checker) checkSlice(env *Bindings, e *ast.SliceExpression) types.Ty {
	obj := c.checkExpression(env, e.Object)
	bound := types.Union(types.Int(), types.None())
	for _, part := range []ast.Expression{e.Start, e.Stop, e.Step} {
		if part == nil {
			continue
		}
		ty := c.checkExpression(env, part)
		if !types.Subtype(ty, bound) {
			c.report(types.IncompatibleBinOp("[:]", obj, ty), part)
		}
	}
	return c.ctx.Slice(obj, e.Span())
}

func (c *Checker) checkBinary(env *Bindings, e *ast.BinaryExpression) types.Ty {
	switch e.Operator {
	case "and", "or":
		left := c.checkExpression(env, e.Left)
		rightEnv := env.Clone()
		applyFacts(rightEnv, c.narrowings(env, e.Left), e.Operator == "and", true)
		right := c.checkExpression(rightEnv, e.Right)
		return types.Union(left, right)
	}
	left := c.checkExpression(env, e.Left)
	right := c.checkExpression(env, e.Right)
	return c.ctx.BinOp(e.Operator, left, right, e.Span())
}

func (c *Checker) checkConditional(env *Bindings, e *ast.ConditionalExpression) types.Ty {
	c.checkExpression(env, e.Condition)
	facts := c.narrowings(env, e.Condition)
	thenEnv := env.Clone()
	applyFacts(thenEnv, facts, true, true)
	elseEnv := env.Clone()
	applyFacts(elseEnv, facts, false, true)
	return types.Union(c.checkExpression(thenEnv, e.Then), c.checkExpression(elseEnv, e.Else))
}

// checkClauses binds comprehension clauses in a fresh scope.
func (c *Checker) checkClauses(env *Bindings, clauses []*ast.ComprehensionClause) *Bindings {
	scope := env.Extend()
	for _, clause := range clauses {
		if clause == nil {
			continue
		}
		if clause.IsFor() {
			iter := c.checkExpressionInfo(scope, clause.Iterable)
			elem := c.ctx.Iter(iter.Type, clause.Iterable.Span())
			c.bindTarget(scope, clause.Target, elem, iter.Approximate)
			continue
		}
		c.checkExpression(scope, clause.Condition)
		applyFacts(scope, c.narrowings(scope, clause.Condition), true, true)
	}
	return scope
}

// constantIndex extracts a literal integer index, including a negated one.
func constantIndex(expr ast.Expression) *int64 {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		v := e.Value
		return &v
	case *ast.UnaryExpression:
		if lit, ok := e.Operand.(*ast.IntegerLiteral); ok && e.Operator == ast.UnaryOperatorNegate {
			v := -lit.Value
			return &v
		}
	}
	return nil
}
