package types

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseTypeExpr parses the textual type grammar used in docs files and
// rendered by Ty.String:
//
//	union := term ('|' term)*
//	term  := name ('[' union (',' union)* ']')?
//
// Unknown names become custom named types.
func ParseTypeExpr(src string) (Ty, error) {
	p := &typeParser{src: src}
	t, err := p.parseUnion()
	if err != nil {
		return Ty{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return Ty{}, fmt.Errorf("types: unexpected %q at offset %d in %q", p.src[p.pos:], p.pos, src)
	}
	return t, nil
}

// MustParse is ParseTypeExpr for static tables.
func MustParse(src string) Ty {
	t, err := ParseTypeExpr(src)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) consume(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) parseUnion() (Ty, error) {
	first, err := p.parseTerm()
	if err != nil {
		return Ty{}, err
	}
	members := []Ty{first}
	for p.consume("|") {
		next, err := p.parseTerm()
		if err != nil {
			return Ty{}, err
		}
		members = append(members, next)
	}
	return Union(members...), nil
}

func (p *typeParser) parseTerm() (Ty, error) {
	name := p.parseName()
	if name == "" {
		return Ty{}, fmt.Errorf("types: expected type name at offset %d in %q", p.pos, p.src)
	}
	if !p.consume("[") {
		return ResolveName(name, nil, false), nil
	}
	if name == "tuple" && p.consume("()") {
		if !p.consume("]") {
			return Ty{}, fmt.Errorf("types: expected ']' at offset %d in %q", p.pos, p.src)
		}
		return Tuple(), nil
	}
	var args []Ty
	variadic := false
	for {
		if p.consume("...") {
			variadic = true
		} else {
			arg, err := p.parseUnion()
			if err != nil {
				return Ty{}, err
			}
			args = append(args, arg)
		}
		if p.consume("]") {
			break
		}
		if !p.consume(",") {
			return Ty{}, fmt.Errorf("types: expected ',' or ']' at offset %d in %q", p.pos, p.src)
		}
	}
	return ResolveName(name, args, variadic), nil
}

func (p *typeParser) parseName() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c == '_' || c == '.' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// ResolveName maps a type name plus its bracketed arguments to a Ty. It is
// shared by the text parser and by annotation resolution in the checker.
func ResolveName(name string, args []Ty, variadic bool) Ty {
	arg := func(i int) Ty {
		if i < len(args) {
			return args[i]
		}
		return Any()
	}
	switch name {
	case "None", "NoneType":
		return None()
	case "bool":
		return Bool()
	case "int":
		return Int()
	case "float":
		return Float()
	case "str", "string":
		return String()
	case "Any", "typing.Any", "":
		return Any()
	case "Never", "typing.Never":
		return Never()
	case "list", "List", "typing.List":
		return List(arg(0))
	case "dict", "Dict", "typing.Dict":
		return Dict(arg(0), arg(1))
	case "iterable", "Iterable", "typing.Iterable":
		return Iterable(arg(0))
	case "tuple", "Tuple", "typing.Tuple":
		if len(args) == 0 {
			return TupleOf(Any())
		}
		if variadic && len(args) == 1 {
			return TupleOf(args[0])
		}
		return Tuple(args...)
	case "function", "Callable", "typing.Callable":
		return Function(nil)
	case "struct":
		return Basic(NewStructType(nil, true))
	}
	return Named(name)
}
