package typechecker

import (
	"fmt"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/types"
)

type functionFrame struct {
	declared *types.Ty
	returns  []types.Ty
	approx   bool
}

func (c *Checker) checkFunctionDefinition(env *Bindings, def *ast.FunctionDefinition) {
	if def.ID == nil {
		return
	}
	sig := c.buildSignature(env, def, def.Params, def.ReturnType)
	var declared *types.Ty
	if def.ReturnType != nil {
		d := resolveAnnotation(def.ReturnType)
		declared = &d
	}
	// Bound before the body so recursive calls resolve.
	if declared != nil {
		env.Declare(def.ID.Name, types.Function(sig))
	} else {
		env.DeclareApprox(def.ID.Name, types.Function(sig))
	}

	scope := env.Extend()
	c.bindParams(scope, def.Params, sig)
	frame := &functionFrame{declared: declared}
	c.functions = append(c.functions, frame)
	c.fnDepth++
	live := c.checkBlock(scope, def.Body)
	c.fnDepth--
	c.functions = c.functions[:len(c.functions)-1]

	var result types.Ty
	if declared != nil {
		result = *declared
	} else {
		results := frame.returns
		if live {
			results = append(results, types.None())
		}
		result = types.Union(results...)
	}
	c.bindName(env, def.ID, types.Function(withResult(sig, result)), frame.approx && declared == nil)
}

func (c *Checker) checkLambda(env *Bindings, lambda *ast.LambdaExpression) types.Ty {
	sig := c.buildSignature(env, lambda, lambda.Params, nil)
	scope := env.Extend()
	c.bindParams(scope, lambda.Params, sig)
	c.fnDepth++
	body := c.checkExpression(scope, lambda.Body)
	c.fnDepth--
	return types.Function(withResult(sig, body))
}

// buildSignature resolves parameter annotations and checks defaults against
// them. Defaults are evaluated in the defining scope.
func (c *Checker) buildSignature(env *Bindings, node ast.Node, params []*ast.FunctionParameter, ret ast.TypeExpression) *types.Signature {
	out := make([]types.Param, 0, len(params))
	for _, p := range params {
		if p == nil || p.Name == nil {
			continue
		}
		ty := types.Any()
		if p.ParamType != nil {
			ty = resolveAnnotation(p.ParamType)
		}
		if p.Default != nil {
			def := c.checkExpression(env, p.Default)
			if p.ParamType != nil && !types.Subtype(def, ty) {
				err := types.IncompatibleAssignment(ty, def)
				err.Param = p.Name.Name
				c.report(err, p.Default)
			}
		}
		mode := paramMode(p.Kind)
		out = append(out, types.Param{
			Mode:     mode,
			Name:     p.Name.Name,
			Type:     ty,
			Optional: p.Default != nil || mode == types.ParamArgs || mode == types.ParamKwargs,
		})
	}
	result := types.Any()
	if ret != nil {
		result = resolveAnnotation(ret)
	}
	sig, err := types.NewSignature(out, result)
	if err != nil {
		c.ctx.Approximate("signature", node.Span(), "%v", err)
		return nil
	}
	return sig
}

// bindParams seeds a function scope. *args is a tuple of its element type and
// **kwargs a dict from str.
func (c *Checker) bindParams(scope *Bindings, params []*ast.FunctionParameter, sig *types.Signature) {
	byName := make(map[string]types.Param)
	if sig != nil {
		for _, p := range sig.Params {
			byName[p.Name] = p
		}
	}
	for _, p := range params {
		if p == nil || p.Name == nil {
			continue
		}
		ty := types.Any()
		if param, ok := byName[p.Name.Name]; ok {
			switch param.Mode {
			case types.ParamArgs:
				ty = types.TupleOf(param.Type)
			case types.ParamKwargs:
				ty = types.Dict(types.String(), param.Type)
			default:
				ty = param.Type
			}
		}
		scope.Declare(p.Name.Name, ty)
		if p.ParamType != nil {
			scope.Annotate(p.Name.Name, ty)
		}
		c.record(p.Name, ty, false)
	}
}

func (c *Checker) checkReturn(env *Bindings, s *ast.ReturnStatement) {
	info := TypeInfo{Type: types.None()}
	if s.Argument != nil {
		info = c.checkExpressionInfo(env, s.Argument)
	}
	if len(c.functions) == 0 || c.diags.dead > 0 {
		return
	}
	frame := c.functions[len(c.functions)-1]
	if frame.declared != nil && !types.Subtype(info.Type, *frame.declared) {
		err := types.IncompatibleAssignment(*frame.declared, info.Type)
		err.Message = fmt.Sprintf("return type `%s` is incompatible with declared `%s`", info.Type, *frame.declared)
		c.report(err, s)
	}
	frame.returns = append(frame.returns, info.Type)
	frame.approx = frame.approx || info.Approximate
}

func withResult(sig *types.Signature, result types.Ty) *types.Signature {
	if sig == nil {
		return nil
	}
	out := *sig
	out.Result = result
	return &out
}
