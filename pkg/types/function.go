package types

import (
	"fmt"
)

type ParamMode int

const (
	ParamPosOnly ParamMode = iota
	ParamPosOrNamed
	ParamArgs
	ParamNamedOnly
	ParamKwargs
)

var paramModeNames = [...]string{
	ParamPosOnly:    "pos_only",
	ParamPosOrNamed: "pos_or_named",
	ParamArgs:       "args",
	ParamNamedOnly:  "named_only",
	ParamKwargs:     "kwargs",
}

func (m ParamMode) String() string {
	if int(m) >= 0 && int(m) < len(paramModeNames) {
		return paramModeNames[m]
	}
	return fmt.Sprintf("ParamMode(%d)", int(m))
}

// ParseParamMode accepts the names produced by ParamMode.String.
func ParseParamMode(name string) (ParamMode, error) {
	for i, n := range paramModeNames {
		if n == name {
			return ParamMode(i), nil
		}
	}
	return 0, fmt.Errorf("types: unknown parameter kind %q", name)
}

func (m ParamMode) accepts(positional bool) bool {
	if positional {
		return m == ParamPosOnly || m == ParamPosOrNamed
	}
	return m == ParamPosOrNamed || m == ParamNamedOnly
}

type Param struct {
	Mode     ParamMode
	Name     string
	Type     Ty
	Optional bool
}

func Required(name string, ty Ty) Param {
	return Param{Mode: ParamPosOrNamed, Name: name, Type: ty}
}

func Optional(name string, ty Ty) Param {
	return Param{Mode: ParamPosOrNamed, Name: name, Type: ty, Optional: true}
}

func PosOnly(name string, ty Ty, optional bool) Param {
	return Param{Mode: ParamPosOnly, Name: name, Type: ty, Optional: optional}
}

func NamedOnly(name string, ty Ty, optional bool) Param {
	return Param{Mode: ParamNamedOnly, Name: name, Type: ty, Optional: optional}
}

func VarArgs(name string, ty Ty) Param {
	return Param{Mode: ParamArgs, Name: name, Type: ty, Optional: true}
}

func VarKwargs(name string, ty Ty) Param {
	return Param{Mode: ParamKwargs, Name: name, Type: ty, Optional: true}
}

// Signature is a callable's parameter list and declared result.
type Signature struct {
	Params []Param
	Result Ty
}

// NewSignature validates parameter ordering: positional-only, then
// positional-or-named, then *args, then named-only, then **kwargs, with
// at most one of each variadic and no repeated names.
func NewSignature(params []Param, result Ty) (*Signature, error) {
	params = append([]Param(nil), params...)
	seen := make(map[string]struct{}, len(params))
	last := ParamPosOnly
	var args, kwargs int
	for i, p := range params {
		if p.Mode < last {
			return nil, fmt.Errorf("types: parameter %q (%s) out of order", p.Name, p.Mode)
		}
		last = p.Mode
		switch p.Mode {
		case ParamArgs:
			args++
		case ParamKwargs:
			kwargs++
		}
		if args > 1 || kwargs > 1 {
			return nil, fmt.Errorf("types: parameter %q repeats a variadic kind", p.Name)
		}
		if p.Name != "" {
			if _, dup := seen[p.Name]; dup {
				return nil, fmt.Errorf("types: duplicate parameter %q", p.Name)
			}
			seen[p.Name] = struct{}{}
		}
		if p.Type.IsNever() {
			params[i].Type = Any()
		}
	}
	return &Signature{Params: params, Result: result}, nil
}

// MustSignature is NewSignature for static tables; it panics on invalid input.
func MustSignature(result Ty, params ...Param) *Signature {
	sig, err := NewSignature(params, result)
	if err != nil {
		panic(err)
	}
	return sig
}

// named finds a parameter that may be passed by name.
func (s *Signature) named(name string) (int, bool) {
	for i, p := range s.Params {
		if p.Name == name && p.Mode.accepts(false) {
			return i, true
		}
	}
	return -1, false
}

func (s *Signature) variadic(mode ParamMode) (int, bool) {
	for i, p := range s.Params {
		if p.Mode == mode {
			return i, true
		}
	}
	return -1, false
}

type ArgKind int

const (
	ArgPositional ArgKind = iota
	ArgNamed
	ArgArgs
	ArgKwargs
)

// Arg is the type-level view of one call-site argument.
type Arg struct {
	Kind ArgKind
	Name string
	Type Ty
}

func PosArg(ty Ty) Arg                { return Arg{Kind: ArgPositional, Type: ty} }
func NamedArg(name string, ty Ty) Arg { return Arg{Kind: ArgNamed, Name: name, Type: ty} }
func StarArg(ty Ty) Arg               { return Arg{Kind: ArgArgs, Type: ty} }
func StarStarArg(ty Ty) Arg           { return Arg{Kind: ArgKwargs, Type: ty} }
