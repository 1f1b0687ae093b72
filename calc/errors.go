package calc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNumericConversion = errors.New("numeric conversion")
	ErrVariableNotSet    = errors.New("variable not set")
	ErrParse             = errors.New("parse expression")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrDivisionByZero    = errors.New("division by zero")
)

// NumericConversionError is returned when a symbolic value is used where a
// concrete number is required.
type NumericConversionError struct {
	Value string // the unresolved expression
}

func (e *NumericConversionError) Error() string {
	return fmt.Sprintf("symbolic value %q cannot be converted to float", e.Value)
}

func (e *NumericConversionError) Unwrap() error {
	return ErrNumericConversion
}

// VariableNotSetError names a symbol that has no value in the calculator.
type VariableNotSetError struct {
	Name string
}

func (e *VariableNotSetError) Error() string {
	return fmt.Sprintf("variable %q is not set", e.Name)
}

func (e *VariableNotSetError) Unwrap() error {
	return ErrVariableNotSet
}

// ParseError reports an expression the grammar does not accept.
type ParseError struct {
	Expression string
	Err        error // underlying parser error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %v", e.Expression, e.Err)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// UnknownFunctionError names a function call the calculator does not support,
// or a supported function called with the wrong number of arguments.
type UnknownFunctionError struct {
	Name  string
	Arity int
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %s/%d", e.Name, e.Arity)
}

func (e *UnknownFunctionError) Unwrap() error {
	return ErrUnknownFunction
}
