package typechecker

import (
	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/types"
)

// fact is what a condition says about one name on each branch.
type fact struct {
	name    string
	current types.Ty
	then    types.Ty
	els     types.Ty
}

// narrowings derives per-name facts from a condition. It reads env but never
// reports: the condition has already been checked.
func (c *Checker) narrowings(env *Bindings, cond ast.Expression) []fact {
	switch e := cond.(type) {
	case *ast.UnaryExpression:
		if e.Operator != ast.UnaryOperatorNot {
			return nil
		}
		facts := c.narrowings(env, e.Operand)
		for i := range facts {
			facts[i].then, facts[i].els = facts[i].els, facts[i].then
		}
		return facts
	case *ast.BinaryExpression:
		switch e.Operator {
		case "and":
			return combineFacts(c.narrowings(env, e.Left), c.narrowings(env, e.Right), true)
		case "or":
			return combineFacts(c.narrowings(env, e.Left), c.narrowings(env, e.Right), false)
		case "==", "!=":
			f, ok := c.comparisonFact(env, e.Left, e.Right)
			if !ok {
				f, ok = c.comparisonFact(env, e.Right, e.Left)
			}
			if !ok {
				return nil
			}
			if e.Operator == "!=" {
				f.then, f.els = f.els, f.then
			}
			return []fact{f}
		}
	case *ast.Identifier:
		current, ok := lookupQuiet(env, e.Name)
		if !ok {
			return nil
		}
		return []fact{{name: e.Name, current: current, then: without(current, types.None()), els: current}}
	}
	return nil
}

// comparisonFact recognizes `type(x) == "name"` and `x == None`.
func (c *Checker) comparisonFact(env *Bindings, subject, other ast.Expression) (fact, bool) {
	if call, ok := subject.(*ast.FunctionCall); ok {
		callee, isIdent := call.Callee.(*ast.Identifier)
		lit, isStr := other.(*ast.StringLiteral)
		if !isIdent || callee.Name != "type" || !isStr || len(call.Arguments) != 1 || env.Has("type") {
			return fact{}, false
		}
		ident, ok := call.Arguments[0].Value.(*ast.Identifier)
		if !ok || call.Arguments[0].Kind != ast.ArgumentPositional {
			return fact{}, false
		}
		return narrowTo(env, ident.Name, types.ResolveName(lit.Value, nil, false))
	}
	ident, ok := subject.(*ast.Identifier)
	if !ok || !isNoneExpr(other) {
		return fact{}, false
	}
	return narrowTo(env, ident.Name, types.None())
}

func narrowTo(env *Bindings, name string, target types.Ty) (fact, bool) {
	current, ok := lookupQuiet(env, name)
	if !ok {
		return fact{}, false
	}
	return fact{
		name:    name,
		current: current,
		then:    types.Intersect(current, target),
		els:     without(current, target),
	}, true
}

func isNoneExpr(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.NoneLiteral:
		return true
	case *ast.Identifier:
		return e.Name == "None"
	}
	return false
}

func lookupQuiet(env *Bindings, name string) (types.Ty, bool) {
	ty, _, ok := env.resolve(name)
	return ty, ok
}

// without drops the members of t that are subtypes of target. Any is kept.
func without(t, target types.Ty) types.Ty {
	return t.Filter(func(b types.BasicType) bool {
		if _, isAny := b.(types.AnyType); isAny {
			return true
		}
		return !types.Subtype(types.Basic(b), target)
	})
}

// combineFacts joins the facts of two operands. For `and` both hold on the
// then-branch and either fails on the else-branch; `or` is the dual.
func combineFacts(left, right []fact, and bool) []fact {
	byName := make(map[string]int)
	var out []fact
	for _, f := range left {
		byName[f.name] = len(out)
		out = append(out, f)
	}
	for _, f := range right {
		i, ok := byName[f.name]
		if !ok {
			if and {
				f.els = types.Union(f.els, f.current)
			} else {
				f.then = types.Union(f.then, f.current)
			}
			out = append(out, f)
			continue
		}
		prev := out[i]
		if and {
			out[i].then = types.Intersect(prev.then, f.then)
			out[i].els = types.Union(prev.els, f.els)
		} else {
			out[i].then = types.Union(prev.then, f.then)
			out[i].els = types.Intersect(prev.els, f.els)
		}
	}
	for name, i := range byName {
		if containsFact(right, name) {
			continue
		}
		if and {
			out[i].els = types.Union(out[i].els, out[i].current)
		} else {
			out[i].then = types.Union(out[i].then, out[i].current)
		}
	}
	return out
}

func containsFact(facts []fact, name string) bool {
	for _, f := range facts {
		if f.name == name {
			return true
		}
	}
	return false
}

// applyFacts binds each fact's branch type. With shadow unset only names of
// the current scope are narrowed, so merging branches never invents locals.
func applyFacts(env *Bindings, facts []fact, then bool, shadow bool) {
	for _, f := range facts {
		if !shadow && !env.HasLocal(f.name) {
			continue
		}
		if then {
			env.Retype(f.name, f.then)
		} else {
			env.Retype(f.name, f.els)
		}
	}
}
