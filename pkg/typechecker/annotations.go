package typechecker

import (
	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/types"
)

// resolveAnnotation converts a type expression to a Ty. Unknown names become
// named types, so annotations never fail.
func resolveAnnotation(expr ast.TypeExpression) types.Ty {
	switch t := expr.(type) {
	case nil:
		return types.Any()
	case *ast.SimpleTypeExpression:
		return types.ResolveName(simpleName(t), nil, false)
	case *ast.GenericTypeExpression:
		base, ok := t.Base.(*ast.SimpleTypeExpression)
		if !ok {
			return types.Any()
		}
		var args []types.Ty
		variadic := false
		for _, arg := range t.Arguments {
			if simple, ok := arg.(*ast.SimpleTypeExpression); ok && simpleName(simple) == "..." {
				variadic = true
				continue
			}
			args = append(args, resolveAnnotation(arg))
		}
		return types.ResolveName(simpleName(base), args, variadic)
	case *ast.UnionTypeExpression:
		members := make([]types.Ty, 0, len(t.Members))
		for _, m := range t.Members {
			members = append(members, resolveAnnotation(m))
		}
		return types.Union(members...)
	}
	return types.Any()
}

func simpleName(t *ast.SimpleTypeExpression) string {
	if t == nil || t.Name == nil {
		return ""
	}
	return t.Name.Name
}

func paramMode(kind ast.ParameterKind) types.ParamMode {
	switch kind {
	case ast.ParameterPositionalOnly:
		return types.ParamPosOnly
	case ast.ParameterNamedOnly:
		return types.ParamNamedOnly
	case ast.ParameterArgs:
		return types.ParamArgs
	case ast.ParameterKwargs:
		return types.ParamKwargs
	}
	return types.ParamPosOrNamed
}

func argKind(kind ast.ArgumentKind) types.ArgKind {
	switch kind {
	case ast.ArgumentNamed:
		return types.ArgNamed
	case ast.ArgumentArgs:
		return types.ArgArgs
	case ast.ArgumentKwargs:
		return types.ArgKwargs
	}
	return types.ArgPositional
}
