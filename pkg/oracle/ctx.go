package oracle

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/types"
)

// Mode controls how failures on part of a union are reported.
type Mode int

const (
	// ModeLint reports an operation that fails on any member of a union.
	ModeLint Mode = iota
	// ModeCompiler reports only operations that fail on every member.
	ModeCompiler
)

func (m Mode) String() string {
	if m == ModeCompiler {
		return "compiler"
	}
	return "lint"
}

func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "lint":
		return ModeLint, nil
	case "compiler":
		return ModeCompiler, nil
	}
	return ModeLint, fmt.Errorf("oracle: unknown mode %q (want lint or compiler)", name)
}

// Sink receives the diagnostics and approximations of one module check.
type Sink interface {
	Error(types.TypingError)
	Approximate(types.Approximation)
}

// Ctx binds an oracle to the diagnostic sink of the module being checked and
// resolves operations over whole unions.
type Ctx struct {
	oracle TypingOracle
	mode   Mode
	sink   Sink
}

func NewCtx(o TypingOracle, mode Mode, sink Sink) *Ctx {
	if o == nil {
		o = NewStandard()
	}
	return &Ctx{oracle: o, mode: mode, sink: sink}
}

func (c *Ctx) Oracle() TypingOracle { return c.oracle }

func (c *Ctx) Mode() Mode { return c.mode }

func (c *Ctx) Report(err types.TypingError, span ast.Span) {
	c.sink.Error(err.Located(span))
}

func (c *Ctx) Approximate(category string, span ast.Span, format string, args ...any) {
	c.sink.Approximate(types.Approximation{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

// settle applies the mode policy to a per-member resolution and returns the
// union of the members that succeeded, or Any if none did.
func (c *Ctx) settle(ok []types.Ty, failed, total int, err types.TypingError, span ast.Span) types.Ty {
	if failed > 0 && (c.mode == ModeLint || failed == total) {
		c.Report(err, span)
	}
	if len(ok) == 0 {
		return types.Any()
	}
	return types.Union(ok...)
}

// Attribute resolves recv.name.
func (c *Ctx) Attribute(recv types.Ty, name string, span ast.Span) types.Ty {
	if recv.IsNever() {
		return types.Never()
	}
	var ok []types.Ty
	failed := 0
	for _, b := range recv.Basics() {
		ty, supported := c.attributeOf(b, name, span)
		if !supported {
			failed++
			continue
		}
		ok = append(ok, ty)
	}
	return c.settle(ok, failed, recv.Len(), types.NotSupportedAttribute(recv, name), span)
}

// HasAttribute reports whether every member of recv is known to carry name,
// without reporting anything.
func (c *Ctx) HasAttribute(recv types.Ty, name string) bool {
	for _, b := range recv.Basics() {
		switch v := b.(type) {
		case types.AnyType:
			continue
		case types.StructType:
			if _, ok := v.Field(name); ok || v.Extra {
				continue
			}
			return false
		}
		if _, status := c.oracle.Attribute(b, name); status == Unsupported {
			return false
		}
	}
	return true
}

func (c *Ctx) attributeOf(b types.BasicType, name string, span ast.Span) (types.Ty, bool) {
	switch v := b.(type) {
	case types.AnyType:
		return types.Any(), true
	case types.StructType:
		if ty, ok := v.Field(name); ok {
			return ty, true
		}
		if v.Extra {
			return types.Any(), true
		}
		return types.Ty{}, false
	case types.CustomType:
		if hook, ok := v.Hook.(types.CustomAttributes); ok {
			return hook.Attribute(name)
		}
	}
	ty, status := c.oracle.Attribute(b, name)
	switch status {
	case Known:
		return ty, true
	case Unsupported:
		return types.Ty{}, false
	}
	c.Approximate("attribute", span, "attribute `%s` of `%s` is not known", name, b)
	return types.Any(), true
}

// BinOp types `left op right`. Equality never fails; and/or are the
// caller's concern since they short-circuit.
func (c *Ctx) BinOp(op string, left, right types.Ty, span ast.Span) types.Ty {
	if left.IsNever() || right.IsNever() {
		return types.Never()
	}
	if op == "==" || op == "!=" {
		return types.Bool()
	}
	var ok []types.Ty
	failed, total := 0, 0
	for _, l := range left.Basics() {
		for _, r := range right.Basics() {
			total++
			ty, supported := c.binopOf(op, l, r, span)
			if !supported {
				failed++
				continue
			}
			ok = append(ok, ty)
		}
	}
	return c.settle(ok, failed, total, types.IncompatibleBinOp(op, left, right), span)
}

func (c *Ctx) binopOf(op string, l, r types.BasicType, span ast.Span) (types.Ty, bool) {
	if isAnyBasic(l) || isAnyBasic(r) {
		return types.Any(), true
	}
	if custom, ok := l.(types.CustomType); ok {
		if hook, ok := custom.Hook.(types.CustomBinOp); ok {
			return hook.BinOp(op, r)
		}
	}
	ty, status := c.oracle.BinOp(op, l, r)
	switch status {
	case Known:
		return ty, true
	case Unsupported:
		return types.Ty{}, false
	}
	c.Approximate("binop", span, "operator `%s` on `%s` and `%s` is not known", op, l, r)
	return types.Any(), true
}

// UnOp types a prefix operator.
func (c *Ctx) UnOp(op string, operand types.Ty, span ast.Span) types.Ty {
	if op == string(ast.UnaryOperatorNot) {
		return types.Bool()
	}
	if operand.IsNever() {
		return types.Never()
	}
	unary, _ := c.oracle.(UnaryOracle)
	var ok []types.Ty
	failed := 0
	for _, b := range operand.Basics() {
		if isAnyBasic(b) {
			ok = append(ok, types.Any())
			continue
		}
		status := Unknown
		var ty types.Ty
		if unary != nil {
			ty, status = unary.UnOp(op, b)
		}
		switch status {
		case Known:
			ok = append(ok, ty)
		case Unsupported:
			failed++
		default:
			c.Approximate("unop", span, "operator `%s` on `%s` is not known", op, b)
			ok = append(ok, types.Any())
		}
	}
	return c.settle(ok, failed, operand.Len(), types.IncompatibleUnOp(op, operand), span)
}

// Index types obj[index]. constant carries a literal integer index when the
// source has one, which sharpens fixed-length tuples.
func (c *Ctx) Index(obj, index types.Ty, constant *int64, span ast.Span) types.Ty {
	if obj.IsNever() || index.IsNever() {
		return types.Never()
	}
	isInt := types.Subtype(index, types.Int())
	var ok []types.Ty
	failed := 0
	for _, b := range obj.Basics() {
		ty, supported := c.indexOf(b, index, isInt, constant, span)
		if !supported {
			failed++
			continue
		}
		ok = append(ok, ty)
	}
	return c.settle(ok, failed, obj.Len(), types.IncompatibleBinOp("[]", obj, index), span)
}

func (c *Ctx) indexOf(b types.BasicType, index types.Ty, isInt bool, constant *int64, span ast.Span) (types.Ty, bool) {
	switch v := b.(type) {
	case types.AnyType:
		return types.Any(), true
	case types.ListType:
		return v.Elem, isInt
	case types.TupleType:
		if !isInt {
			return types.Ty{}, false
		}
		if constant != nil && !v.Variadic {
			i := *constant
			if i < 0 {
				i += int64(len(v.Elems))
			}
			if i >= 0 && i < int64(len(v.Elems)) {
				return v.Elems[i], true
			}
		}
		return v.ElementUnion(), true
	case types.DictType:
		return v.Value, types.Subtype(index, v.Key)
	case types.PrimitiveType:
		return types.String(), v.Kind == types.PrimitiveString && isInt
	case types.FunctionType, types.StructType, types.IterableType:
		return types.Ty{}, false
	}
	var ok []types.Ty
	for _, idx := range index.Basics() {
		ty, supported := c.binopOf("[]", b, idx, span)
		if !supported {
			return types.Ty{}, false
		}
		ok = append(ok, ty)
	}
	return types.Union(ok...), true
}

// Slice types obj[a:b:c].
func (c *Ctx) Slice(obj types.Ty, span ast.Span) types.Ty {
	if obj.IsNever() {
		return types.Never()
	}
	var ok []types.Ty
	failed := 0
	for _, b := range obj.Basics() {
		switch v := b.(type) {
		case types.AnyType, types.ListType:
			ok = append(ok, types.Basic(b))
		case types.TupleType:
			ok = append(ok, types.TupleOf(v.ElementUnion()))
		case types.PrimitiveType:
			if v.Kind != types.PrimitiveString {
				failed++
				continue
			}
			ok = append(ok, types.String())
		case types.CustomType:
			c.Approximate("slice", span, "slicing `%s` is not modeled", v)
			ok = append(ok, types.Any())
		default:
			failed++
		}
	}
	return c.settle(ok, failed, obj.Len(), types.IncompatibleBinOp("[]", obj, types.Any()), span)
}

// Iter is the element type of iterating t.
func (c *Ctx) Iter(t types.Ty, span ast.Span) types.Ty {
	if t.IsNever() {
		return types.Never()
	}
	var ok []types.Ty
	failed := 0
	for _, b := range t.Basics() {
		if elem, iterable := types.IterElem(b); iterable {
			ok = append(ok, elem)
			continue
		}
		if custom, isCustom := b.(types.CustomType); isCustom {
			c.Approximate("iter", span, "iteration over `%s` is not modeled", custom)
			ok = append(ok, types.Any())
			continue
		}
		failed++
	}
	return c.settle(ok, failed, t.Len(), types.NotIterable(t), span)
}

// Call matches args against every callable member of callee and returns
// the union of their results. Matching errors are reported once per
// distinct kind and parameter.
func (c *Ctx) Call(callee types.Ty, args []types.Arg, span ast.Span) types.Ty {
	if callee.IsNever() {
		return types.Never()
	}
	var results []types.Ty
	notCallable := 0
	reported := set.New[string](0)
	for _, b := range callee.Basics() {
		sig, callable, precise := c.signatureOf(b)
		if !callable {
			notCallable++
			continue
		}
		if !precise {
			c.Approximate("call", span, "call on `%s` is not checked", b)
			results = append(results, types.Any())
			continue
		}
		result, errs := types.MatchCall(sig, args)
		for _, err := range errs {
			if reported.Insert(err.Kind.String() + "/" + err.Param) {
				c.Report(err, span)
			}
		}
		results = append(results, result)
	}
	return c.settle(results, notCallable, callee.Len(), types.NotCallable(callee), span)
}

// CallBuiltin calls a global function the oracle knows by name, sharpening
// the result when the oracle can refine it.
func (c *Ctx) CallBuiltin(name string, sig *types.Signature, args []types.Arg, span ast.Span) types.Ty {
	result := c.Call(types.Function(sig), args, span)
	if refiner, ok := c.oracle.(Refiner); ok {
		if refined, ok := refiner.Refine(name, args); ok {
			return refined
		}
	}
	return result
}

// signatureOf finds the call signature of b. precise=false means the value
// is callable but its signature is unknown.
func (c *Ctx) signatureOf(b types.BasicType) (sig *types.Signature, callable bool, precise bool) {
	switch v := b.(type) {
	case types.AnyType:
		return nil, true, false
	case types.FunctionType:
		return v.Sig, true, v.Sig != nil
	case types.CustomType:
		if hook, ok := v.Hook.(types.CustomCallable); ok {
			s := hook.CallSignature()
			return s, true, s != nil
		}
		if v.Hook == nil {
			return nil, true, false
		}
	}
	return nil, false, false
}

func isAnyBasic(b types.BasicType) bool {
	_, ok := b.(types.AnyType)
	return ok
}
