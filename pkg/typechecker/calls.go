package typechecker

import (
	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/oracle"
	"startyping/checker-go/pkg/types"
)

func (c *Checker) checkCall(env *Bindings, call *ast.FunctionCall) types.Ty {
	if ident, ok := call.Callee.(*ast.Identifier); ok && !env.Has(ident.Name) {
		if ident.Name == "struct" {
			return c.checkStructCall(env, call)
		}
		if sig, status := c.oracle.Signature(ident.Name); status == oracle.Known {
			return c.checkBuiltinCall(env, call, ident, sig)
		}
	}
	callee := c.checkExpression(env, call.Callee)
	args := c.checkArguments(env, call.Arguments)
	result := c.ctx.Call(callee, args, call.Span())
	if member, ok := call.Callee.(*ast.MemberAccessExpression); ok {
		c.widenOnMutation(env, member, args)
	}
	return result
}

// checkBuiltinCall calls a global the oracle knows. A result with no Any in
// it is precise whatever the precision of the arguments.
func (c *Checker) checkBuiltinCall(env *Bindings, call *ast.FunctionCall, ident *ast.Identifier, sig *types.Signature) types.Ty {
	c.record(ident, types.Function(sig), false)
	start := c.diags.taint
	args := c.checkArguments(env, call.Arguments)
	result := c.ctx.CallBuiltin(ident.Name, sig, args, call.Span())
	if !result.HasAny() {
		c.diags.taint = start
	}
	return result
}

func (c *Checker) checkArguments(env *Bindings, args []*ast.Argument) []types.Arg {
	out := make([]types.Arg, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		ty := c.checkExpression(env, arg.Value)
		c.record(arg, ty, false)
		out = append(out, types.Arg{Kind: argKind(arg.Kind), Name: arg.Name, Type: ty})
	}
	return out
}

// checkStructCall types struct(a = x, ...) as a closed struct literal; a
// **splat leaves it open.
func (c *Checker) checkStructCall(env *Bindings, call *ast.FunctionCall) types.Ty {
	args := c.checkArguments(env, call.Arguments)
	var fields []types.StructField
	extra := false
	positional := false
	for _, arg := range args {
		switch arg.Kind {
		case types.ArgNamed:
			fields = append(fields, types.StructField{Name: arg.Name, Type: arg.Type})
		case types.ArgKwargs:
			extra = true
		default:
			positional = true
		}
	}
	if positional {
		if sig, status := c.oracle.Signature("struct"); status == oracle.Known {
			c.ctx.Call(types.Function(sig), args, call.Span())
		}
	}
	return types.StructOf(types.NewStructType(fields, extra))
}

// widenOnMutation lets an unannotated local list grow its element type
// through append, insert and extend.
func (c *Checker) widenOnMutation(env *Bindings, member *ast.MemberAccessExpression, args []types.Arg) {
	ident, ok := member.Object.(*ast.Identifier)
	if !ok || !env.HasLocal(ident.Name) {
		return
	}
	current, _, _ := env.resolve(ident.Name)
	b, ok := current.Single()
	if !ok {
		return
	}
	list, ok := b.(types.ListType)
	if !ok {
		return
	}
	var positional []types.Ty
	for _, arg := range args {
		if arg.Kind == types.ArgPositional {
			positional = append(positional, arg.Type)
		}
	}
	var added types.Ty
	switch member.Member.Name {
	case "append":
		if len(positional) != 1 {
			return
		}
		added = positional[0]
	case "insert":
		if len(positional) != 2 {
			return
		}
		added = positional[1]
	case "extend":
		if len(positional) != 1 {
			return
		}
		added = oracle.ElementOf(positional[0])
	default:
		return
	}
	c.widenLocal(env, ident, current, types.List(types.Union(list.Elem, added)))
}
