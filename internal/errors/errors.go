// Package errors defines the closed error taxonomy raised across parsing,
// symbol resolution, and lowering: a structured CompileError carrying a
// Kind and a source location.
package errors

import "fmt"

// Kind is the closed set of error categories a compile run can raise.
type Kind string

const (
	ParseError          Kind = "ParseError"
	UnknownOpcode       Kind = "UnknownOpcode"
	OpcodeArityError    Kind = "OpcodeArityError"
	UndefinedSymbol     Kind = "UndefinedSymbol"
	RecursiveDefinition Kind = "RecursiveDefinition"
	PushTooLarge        Kind = "PushTooLarge"
	InternalInvariant   Kind = "InternalInvariant"
)

// Location pins an error to a line/column in the source that produced it.
type Location struct {
	File string
	Line int
	Col  int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// CompileError is the single structured error type raised by every stage
// of the toolchain. Cause, when set, is the lower-level error it wraps.
type CompileError struct {
	Kind     Kind
	Message  string
	Location Location
	Cause    error
}

func (e *CompileError) Error() string {
	if e.Location.Line == 0 && e.Location.Col == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.Location)
}

func (e *CompileError) Unwrap() error { return e.Cause }

func New(kind Kind, loc Location, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

func Wrap(kind Kind, loc Location, cause error, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc, Cause: cause}
}
