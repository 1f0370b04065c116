package types

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"golang.org/x/exp/slices"
)

// MatchCall binds args against sig and returns the call's result type along
// with every problem found. Matching never stops at the first error.
//
// Named arguments bind first, then positional arguments fill the remaining
// positional slots in order, with overflow going to *args. A splat of
// unknown length suppresses arity errors for positional slots; a ** splat
// satisfies every named-capable slot it could reach.
func MatchCall(sig *Signature, args []Arg) (Ty, []TypingError) {
	if sig == nil {
		return Any(), nil
	}
	var (
		positional        []Ty
		named             []Arg
		unknownPositional bool
		unknownNamed      bool
	)
	for _, a := range args {
		switch a.Kind {
		case ArgPositional:
			positional = append(positional, a.Type)
		case ArgNamed:
			named = append(named, a)
		case ArgArgs:
			if elems, ok := fixedTupleElems(a.Type); ok {
				positional = append(positional, elems...)
			} else {
				unknownPositional = true
			}
		case ArgKwargs:
			unknownNamed = true
		}
	}

	filled := make([]Ty, len(sig.Params))
	bound := make([]bool, len(sig.Params))
	unexpected := set.New[string](0)
	duplicate := set.New[string](0)
	var extraNamed []Arg
	_, hasKwargs := sig.variadic(ParamKwargs)
	for _, a := range named {
		if idx, ok := sig.named(a.Name); ok {
			if bound[idx] {
				duplicate.Insert(a.Name)
				continue
			}
			filled[idx] = a.Type
			bound[idx] = true
			continue
		}
		if hasKwargs {
			extraNamed = append(extraNamed, a)
			continue
		}
		unexpected.Insert(a.Name)
	}

	var extraPositional []Ty
	_, hasArgs := sig.variadic(ParamArgs)
	overflow := 0
	slot := 0
	for _, t := range positional {
		for slot < len(sig.Params) && sig.Params[slot].Mode.accepts(true) && bound[slot] {
			slot++
		}
		if slot < len(sig.Params) && sig.Params[slot].Mode.accepts(true) {
			filled[slot] = t
			bound[slot] = true
			slot++
			continue
		}
		if hasArgs {
			extraPositional = append(extraPositional, t)
			continue
		}
		overflow++
	}

	var errs []TypingError
	if overflow > 0 && !unknownPositional {
		e := newError(ErrTooManyPositionalArguments,
			"too many positional arguments: accepts at most %d, got %d",
			positionalCapacity(sig), len(positional))
		errs = append(errs, e)
	}
	for _, name := range sortedSlice(unexpected) {
		e := newError(ErrUnexpectedKeywordArgument, "unexpected keyword argument `%s`", name)
		e.Param = name
		errs = append(errs, e)
	}
	for _, name := range sortedSlice(duplicate) {
		e := newError(ErrUnexpectedKeywordArgument, "multiple values for parameter `%s`", name)
		e.Param = name
		errs = append(errs, e)
	}
	for i, p := range sig.Params {
		if bound[i] || p.Optional || p.Mode == ParamArgs || p.Mode == ParamKwargs {
			continue
		}
		if unknownPositional && p.Mode.accepts(true) {
			continue
		}
		if unknownNamed && p.Mode.accepts(false) {
			continue
		}
		e := newError(ErrMissingRequiredArgument, "missing required argument `%s`", p.Name)
		e.Param = p.Name
		e.Expected = p.Type
		errs = append(errs, e)
	}
	for i, p := range sig.Params {
		switch {
		case bound[i]:
			errs = appendMismatch(errs, p, filled[i])
		case p.Mode == ParamArgs:
			for _, t := range extraPositional {
				errs = appendMismatch(errs, p, t)
			}
		case p.Mode == ParamKwargs:
			slices.SortStableFunc(extraNamed, func(a, b Arg) int { return strings.Compare(a.Name, b.Name) })
			for _, a := range extraNamed {
				errs = appendMismatch(errs, p, a.Type)
			}
		}
	}
	return sig.Result, errs
}

func positionalCapacity(sig *Signature) int {
	n := 0
	for _, p := range sig.Params {
		if p.Mode.accepts(true) {
			n++
		}
	}
	return n
}

func appendMismatch(errs []TypingError, p Param, found Ty) []TypingError {
	if Subtype(found, p.Type) {
		return errs
	}
	e := newError(ErrArgumentTypeMismatch, "argument `%s`: expected type `%s`, found `%s`", p.Name, p.Type, found)
	e.Param = p.Name
	e.Expected = p.Type
	e.Found = found
	return append(errs, e)
}

// fixedTupleElems returns the element types of a splat whose length is known.
func fixedTupleElems(t Ty) ([]Ty, bool) {
	b, ok := t.Single()
	if !ok {
		return nil, false
	}
	tuple, ok := b.(TupleType)
	if !ok || tuple.Variadic {
		return nil, false
	}
	return tuple.Elems, true
}

func sortedSlice(s *set.Set[string]) []string {
	out := s.Slice()
	slices.Sort(out)
	return out
}

// Describe renders a short human form of an argument list for diagnostics.
func Describe(args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch a.Kind {
		case ArgNamed:
			parts[i] = fmt.Sprintf("%s=%s", a.Name, a.Type)
		case ArgArgs:
			parts[i] = "*" + a.Type.String()
		case ArgKwargs:
			parts[i] = "**" + a.Type.String()
		default:
			parts[i] = a.Type.String()
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
