package typechecker

import (
	"fmt"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/oracle"
	"startyping/checker-go/pkg/types"
)

// checkBlock walks stmts in order and reports whether control can reach the
// end. Statements after a terminator are walked silently.
func (c *Checker) checkBlock(env *Bindings, stmts []ast.Statement) bool {
	for i, stmt := range stmts {
		if !c.checkStatement(env, stmt) {
			c.checkUnreachable(env, stmts[i+1:])
			return false
		}
	}
	return true
}

func (c *Checker) checkUnreachable(env *Bindings, stmts []ast.Statement) {
	if len(stmts) == 0 {
		return
	}
	c.diags.dead++
	defer func() { c.diags.dead-- }()
	scratch := env.Clone()
	for _, stmt := range stmts {
		c.checkStatement(scratch, stmt)
	}
}

func (c *Checker) checkStatement(env *Bindings, stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case nil:
		return true
	case *ast.AssignmentStatement:
		c.checkAssignment(env, s)
		return true
	case *ast.FunctionDefinition:
		c.checkFunctionDefinition(env, s)
		return true
	case *ast.ReturnStatement:
		c.checkReturn(env, s)
		return false
	case *ast.IfStatement:
		return c.checkIf(env, s)
	case *ast.ForLoop:
		return c.checkForLoop(env, s)
	case *ast.WhileLoop:
		return c.checkWhileLoop(env, s)
	case *ast.BreakStatement:
		c.exitLoop(env, true)
		return false
	case *ast.ContinueStatement:
		c.exitLoop(env, false)
		return false
	case *ast.PassStatement:
		return true
	case *ast.LoadStatement:
		c.checkLoad(env, s)
		return true
	case ast.Expression:
		ty := c.checkExpression(env, s)
		_, isCall := s.(*ast.FunctionCall)
		return !(isCall && ty.IsNever())
	}
	c.ctx.Approximate("statement", stmt.Span(), "statement %s is not checked", stmt.NodeType())
	return true
}

func (c *Checker) checkAssignment(env *Bindings, s *ast.AssignmentStatement) {
	if op := s.Operator.BinaryOperator(); op != "" {
		c.checkAugmentedAssignment(env, s, op)
		return
	}
	info := c.checkExpressionInfo(env, s.Right)
	if s.Annotation != nil {
		declared := resolveAnnotation(s.Annotation)
		if ident, ok := s.Left.(*ast.Identifier); ok {
			env.Annotate(ident.Name, declared)
		} else if !types.Subtype(info.Type, declared) {
			c.report(types.IncompatibleAssignment(declared, info.Type), s.Right)
		}
	}
	c.bindTarget(env, s.Left, info.Type, info.Approximate)
}

func (c *Checker) checkAugmentedAssignment(env *Bindings, s *ast.AssignmentStatement, op string) {
	current := c.checkTargetValue(env, s.Left)
	right := c.checkExpressionInfo(env, s.Right)
	var result types.Ty
	if op == "+" && allLists(current) {
		elem := c.ctx.Iter(right.Type, s.Right.Span())
		result = types.List(types.Union(oracle.ElementOf(current), elem))
	} else {
		result = c.ctx.BinOp(op, current, right.Type, s.Span())
	}
	if ident, ok := s.Left.(*ast.Identifier); ok {
		c.bindName(env, ident, result, right.Approximate)
	}
}

// checkTargetValue types the current value of an augmented assignment target.
func (c *Checker) checkTargetValue(env *Bindings, target ast.AssignmentTarget) types.Ty {
	expr, ok := target.(ast.Expression)
	if !ok {
		return types.Any()
	}
	return c.checkExpression(env, expr)
}

func allLists(t types.Ty) bool {
	if t.IsNever() {
		return false
	}
	for _, b := range t.Basics() {
		if _, ok := b.(types.ListType); !ok {
			return false
		}
	}
	return true
}

// bindTarget assigns ty to an assignment or loop target.
func (c *Checker) bindTarget(env *Bindings, target ast.AssignmentTarget, ty types.Ty, approx bool) {
	switch t := target.(type) {
	case *ast.Identifier:
		c.bindName(env, t, ty, approx)
	case *ast.TupleLiteral:
		c.bindUnpack(env, t, t.Elements, ty, approx)
	case *ast.ListLiteral:
		c.bindUnpack(env, t, t.Elements, ty, approx)
	case *ast.IndexExpression:
		c.bindIndex(env, t, ty)
	case *ast.MemberAccessExpression:
		obj := c.checkExpression(env, t.Object)
		c.record(t, c.ctx.Attribute(obj, t.Member.Name, t.Span()), false)
	case nil:
	default:
		c.ctx.Approximate("assign", target.Span(), "assignment target %s is not checked", target.NodeType())
	}
}

// bindName declares ident, holding it to its annotation when it has one.
func (c *Checker) bindName(env *Bindings, ident *ast.Identifier, ty types.Ty, approx bool) {
	if declared, ok := env.Annotation(ident.Name); ok {
		if !types.Subtype(ty, declared) {
			c.report(types.IncompatibleAssignment(declared, ty), ident)
		}
		ty, approx = declared, false
	}
	if approx {
		env.DeclareApprox(ident.Name, ty)
	} else {
		env.Declare(ident.Name, ty)
	}
	if env == c.global {
		delete(c.loaded, ident.Name)
	}
	c.record(ident, ty, approx)
}

func (c *Checker) bindUnpack(env *Bindings, node ast.Node, elems []ast.Expression, ty types.Ty, approx bool) {
	if fixed, ok := fixedTuple(ty); ok {
		if len(fixed) == len(elems) {
			for i, e := range elems {
				if target, ok := e.(ast.AssignmentTarget); ok {
					c.bindTarget(env, target, fixed[i], approx)
				}
			}
			return
		}
		want := make([]types.Ty, len(elems))
		for i := range want {
			want[i] = types.Any()
		}
		err := types.IncompatibleAssignment(types.Tuple(want...), ty)
		err.Message = fmt.Sprintf("cannot unpack `%s` into %d targets", ty, len(elems))
		c.report(err, node)
		ty = types.Any()
	}
	elem := c.ctx.Iter(ty, node.Span())
	for _, e := range elems {
		if target, ok := e.(ast.AssignmentTarget); ok {
			c.bindTarget(env, target, elem, approx)
		}
	}
}

func fixedTuple(t types.Ty) ([]types.Ty, bool) {
	b, ok := t.Single()
	if !ok {
		return nil, false
	}
	tuple, ok := b.(types.TupleType)
	if !ok || tuple.Variadic {
		return nil, false
	}
	return tuple.Elems, true
}

// bindIndex checks obj[index] = value. Unannotated local lists and dicts
// widen to admit the stored value.
func (c *Checker) bindIndex(env *Bindings, target *ast.IndexExpression, value types.Ty) {
	obj := c.checkExpression(env, target.Object)
	index := c.checkExpression(env, target.Index)
	if b, ok := obj.Single(); ok {
		switch container := b.(type) {
		case types.DictType:
			widened := types.Dict(types.Union(container.Key, index), types.Union(container.Value, value))
			c.widenLocal(env, target.Object, obj, widened)
			c.record(target, value, false)
			return
		case types.ListType:
			if !types.Subtype(index, types.Int()) {
				c.report(types.IncompatibleBinOp("[]", obj, index), target)
			}
			c.widenLocal(env, target.Object, obj, types.List(types.Union(container.Elem, value)))
			c.record(target, value, false)
			return
		}
	}
	c.record(target, c.ctx.Index(obj, index, constantIndex(target.Index), target.Span()), false)
}

// widenLocal retypes an unannotated identifier of the current scope.
func (c *Checker) widenLocal(env *Bindings, expr ast.Expression, before, after types.Ty) {
	ident, ok := expr.(*ast.Identifier)
	if !ok || !env.HasLocal(ident.Name) || before.Equal(after) {
		return
	}
	if _, annotated := env.Annotation(ident.Name); annotated {
		return
	}
	env.Retype(ident.Name, after)
}

func (c *Checker) exitLoop(env *Bindings, isBreak bool) {
	if len(c.loops) == 0 || c.diags.dead > 0 {
		return
	}
	frame := c.loops[len(c.loops)-1]
	if isBreak {
		frame.breaks = append(frame.breaks, env.Clone())
	} else {
		frame.continues = append(frame.continues, env.Clone())
	}
}

func (c *Checker) checkLoad(env *Bindings, s *ast.LoadStatement) {
	iface, ok := c.loads[s.Module]
	if !ok {
		c.ctx.Approximate("load", s.Span(), "module %q has no published interface", s.Module)
	}
	for _, sym := range s.Symbols {
		if sym == nil {
			continue
		}
		if sym.Name == "*" {
			c.loadWildcard(env, iface, ok)
			continue
		}
		local := sym.Local
		if local == nil {
			local = ast.NewIdentifier(sym.Name)
		}
		if !ok {
			env.DeclareApprox(local.Name, types.Any())
			c.loaded[local.Name] = struct{}{}
			c.record(local, types.Any(), true)
			continue
		}
		ty, found := iface.Get(sym.Name)
		if !found {
			err := types.NotInScope(sym.Name)
			err.Message = fmt.Sprintf("module %q does not export `%s`", s.Module, sym.Name)
			c.report(err, sym)
			ty = types.Any()
		}
		env.Declare(local.Name, ty)
		c.loaded[local.Name] = struct{}{}
		c.record(local, ty, false)
	}
}

func (c *Checker) loadWildcard(env *Bindings, iface *Interface, ok bool) {
	if !ok {
		env.MarkWildcard()
		return
	}
	for _, name := range iface.Names() {
		ty, _ := iface.Get(name)
		env.Declare(name, ty)
		c.loaded[name] = struct{}{}
	}
}
