package types

import (
	"errors"
	"fmt"

	"startyping/checker-go/pkg/ast"
)

type ErrorKind int

const (
	ErrNotSupportedAttribute ErrorKind = iota + 1
	ErrNotCallable
	ErrTooManyPositionalArguments
	ErrMissingRequiredArgument
	ErrUnexpectedKeywordArgument
	ErrArgumentTypeMismatch
	ErrIncompatibleBinOp
	ErrIncompatibleAssignment
	ErrNotInScope
)

var errorKindNames = map[ErrorKind]string{
	ErrNotSupportedAttribute:      "NotSupportedAttribute",
	ErrNotCallable:                "NotCallable",
	ErrTooManyPositionalArguments: "TooManyPositionalArguments",
	ErrMissingRequiredArgument:    "MissingRequiredArgument",
	ErrUnexpectedKeywordArgument:  "UnexpectedKeywordArgument",
	ErrArgumentTypeMismatch:       "ArgumentTypeMismatch",
	ErrIncompatibleBinOp:          "IncompatibleBinOp",
	ErrIncompatibleAssignment:     "IncompatibleAssignment",
	ErrNotInScope:                 "NotInScope",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// MarshalText lets kinds appear by name in JSON reports.
func (k ErrorKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ErrorKind) UnmarshalText(text []byte) error {
	for kind, name := range errorKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("types: unknown error kind %q", text)
}

// TypingError is a located diagnostic. Call-matching errors also carry the
// parameter and the expected/found types involved.
type TypingError struct {
	Kind     ErrorKind `json:"kind"`
	Span     ast.Span  `json:"span"`
	Message  string    `json:"message"`
	Param    string    `json:"param,omitempty"`
	Expected Ty        `json:"expected"`
	Found    Ty        `json:"found"`
}

func (e *TypingError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Located returns a copy of e stamped with span.
func (e TypingError) Located(span ast.Span) TypingError {
	e.Span = span
	return e
}

// KindOf extracts the kind of a TypingError wrapped anywhere in err.
func KindOf(err error) (ErrorKind, bool) {
	var te *TypingError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, format string, args ...any) TypingError {
	return TypingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotSupportedAttribute(recv Ty, attr string) TypingError {
	e := newError(ErrNotSupportedAttribute, "type `%s` has no attribute `%s`", recv, attr)
	e.Found = recv
	e.Param = attr
	return e
}

func NotCallable(ty Ty) TypingError {
	e := newError(ErrNotCallable, "type `%s` is not callable", ty)
	e.Found = ty
	return e
}

func IncompatibleBinOp(op string, left, right Ty) TypingError {
	e := newError(ErrIncompatibleBinOp, "binary operator `%s` is not supported for `%s` and `%s`", op, left, right)
	e.Param = op
	e.Expected = left
	e.Found = right
	return e
}

func IncompatibleUnOp(op string, operand Ty) TypingError {
	e := newError(ErrIncompatibleBinOp, "unary operator `%s` is not supported for `%s`", op, operand)
	e.Param = op
	e.Found = operand
	return e
}

func NotIterable(ty Ty) TypingError {
	e := newError(ErrIncompatibleBinOp, "type `%s` is not iterable", ty)
	e.Param = "iter"
	e.Found = ty
	return e
}

func IncompatibleAssignment(declared, found Ty) TypingError {
	e := newError(ErrIncompatibleAssignment, "expected type `%s`, found `%s`", declared, found)
	e.Expected = declared
	e.Found = found
	return e
}

func NotInScope(name string) TypingError {
	e := newError(ErrNotInScope, "name `%s` is not defined", name)
	e.Param = name
	return e
}

// Approximation records a place where the checker knowingly gave up precision.
type Approximation struct {
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Span     ast.Span `json:"span"`
}

func (a Approximation) String() string {
	return fmt.Sprintf("%s: %s", a.Category, a.Message)
}
