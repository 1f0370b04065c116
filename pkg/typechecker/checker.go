package typechecker

import (
	"fmt"
	"strings"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/oracle"
	"startyping/checker-go/pkg/types"
)

// Options configure a Checker.
type Options struct {
	// Oracle supplies builtin facts; nil means the standard oracle.
	Oracle oracle.TypingOracle
	Mode   oracle.Mode
}

// Checker walks one module at a time and records diagnostics. A Checker is
// not safe for concurrent use; ProgramChecker creates one per module.
type Checker struct {
	oracle oracle.TypingOracle
	mode   oracle.Mode

	ctx       *oracle.Ctx
	diags     *diagnostics
	global    *Bindings
	infer     *TypeMap
	loads     map[string]*Interface
	forward   map[string]forwardDecl
	loaded    map[string]struct{}
	functions []*functionFrame
	loops     []*loopFrame
	fnDepth   int
}

// Result is everything learned from checking one module.
type Result struct {
	Interface      *Interface
	Errors         []types.TypingError
	Approximations []types.Approximation
	Types          *TypeMap
	Globals        *Bindings
}

type forwardDecl struct {
	ty     types.Ty
	approx bool
}

// diagnostics implements oracle.Sink. Reports made while walking dead code
// are dropped; taint counts approximations so expressions built on them can
// be flagged.
type diagnostics struct {
	errors         []types.TypingError
	approximations []types.Approximation
	dead           int
	taint          int
}

func (d *diagnostics) Error(err types.TypingError) {
	if d.dead > 0 {
		return
	}
	d.errors = append(d.errors, err)
}

func (d *diagnostics) Approximate(a types.Approximation) {
	d.taint++
	if d.dead > 0 {
		return
	}
	d.approximations = append(d.approximations, a)
}

// New returns a checker instance.
func New(opts Options) *Checker {
	o := opts.Oracle
	if o == nil {
		o = oracle.NewStandard()
	}
	return &Checker{oracle: o, mode: opts.Mode}
}

// CheckModule performs typechecking on a module AST. loads maps the module
// identifiers named by load statements to their published interfaces.
// Typing problems are returned in Result.Errors; the error return is
// reserved for unusable input.
func (c *Checker) CheckModule(module *ast.Module, loads map[string]*Interface) (Result, error) {
	if module == nil {
		return Result{}, fmt.Errorf("typechecker: module is nil")
	}
	c.diags = &diagnostics{}
	c.ctx = oracle.NewCtx(c.oracle, c.mode, c.diags)
	c.global = NewBindings(nil)
	c.infer = newTypeMap()
	c.loads = loads
	c.forward = make(map[string]forwardDecl)
	c.loaded = make(map[string]struct{})
	c.functions = nil
	c.loops = nil
	c.fnDepth = 0

	c.predeclare(module.Body)
	c.checkBlock(c.global, module.Body)

	return Result{
		Interface:      InterfaceOf(c.global, c.exported),
		Errors:         c.diags.errors,
		Approximations: c.diags.approximations,
		Types:          c.infer,
		Globals:        c.global,
	}, nil
}

// exported reports whether a top-level name is part of the module interface.
func (c *Checker) exported(name string) bool {
	if strings.HasPrefix(name, "_") {
		return false
	}
	_, viaLoad := c.loaded[name]
	return !viaLoad
}

// predeclare collects the top-level names a function body may reference
// before their definition has been walked.
func (c *Checker) predeclare(body []ast.Statement) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.FunctionDefinition:
			if s.ID != nil {
				c.forward[s.ID.Name] = forwardDecl{ty: c.forwardSignature(s), approx: s.ReturnType == nil}
			}
		case *ast.AssignmentStatement:
			for _, name := range targetNames(s.Left) {
				if _, ok := c.forward[name]; !ok {
					c.forward[name] = forwardDecl{ty: types.Any(), approx: true}
				}
			}
		case *ast.IfStatement:
			c.predeclare(s.Then)
			c.predeclare(s.Else)
		case *ast.ForLoop:
			c.predeclare(s.Body)
		case *ast.WhileLoop:
			c.predeclare(s.Body)
		}
	}
}

func (c *Checker) forwardSignature(def *ast.FunctionDefinition) types.Ty {
	params := make([]types.Param, 0, len(def.Params))
	for _, p := range def.Params {
		if p == nil || p.Name == nil {
			continue
		}
		ty := types.Any()
		if p.ParamType != nil {
			ty = resolveAnnotation(p.ParamType)
		}
		params = append(params, types.Param{
			Mode:     paramMode(p.Kind),
			Name:     p.Name.Name,
			Type:     ty,
			Optional: p.Default != nil,
		})
	}
	result := types.Any()
	if def.ReturnType != nil {
		result = resolveAnnotation(def.ReturnType)
	}
	sig, err := types.NewSignature(params, result)
	if err != nil {
		return types.Function(nil)
	}
	return types.Function(sig)
}

func targetNames(target ast.AssignmentTarget) []string {
	switch t := target.(type) {
	case *ast.Identifier:
		return []string{t.Name}
	case *ast.TupleLiteral:
		return elementNames(t.Elements)
	case *ast.ListLiteral:
		return elementNames(t.Elements)
	}
	return nil
}

func elementNames(elems []ast.Expression) []string {
	var out []string
	for _, e := range elems {
		if target, ok := e.(ast.AssignmentTarget); ok {
			out = append(out, targetNames(target)...)
		}
	}
	return out
}

func (c *Checker) inFunction() bool { return c.fnDepth > 0 }

// checkExpressionInfo types expr and records it in the type map. The result
// is approximate when an approximation was made anywhere beneath it.
func (c *Checker) checkExpressionInfo(env *Bindings, expr ast.Expression) TypeInfo {
	if expr == nil {
		return TypeInfo{Type: types.None()}
	}
	start := c.diags.taint
	ty := c.evalExpression(env, expr)
	info := TypeInfo{Type: ty, Approximate: c.diags.taint != start}
	c.record(expr, info.Type, info.Approximate)
	return info
}

func (c *Checker) checkExpression(env *Bindings, expr ast.Expression) types.Ty {
	return c.checkExpressionInfo(env, expr).Type
}

func (c *Checker) record(node ast.Node, ty types.Ty, approx bool) {
	if c.diags.dead > 0 {
		ty, approx = types.Never(), false
	}
	c.infer.set(node, TypeInfo{Type: ty, Approximate: approx})
}

func (c *Checker) report(err types.TypingError, node ast.Node) {
	c.ctx.Report(err, node.Span())
}
