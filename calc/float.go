package calc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CalculatorFloat is a parameter that is either a concrete float64 or a
// symbolic expression that still has to be resolved by a Calculator.
// The zero value is the concrete number 0.
type CalculatorFloat struct {
	value float64
	expr  string // non-empty when symbolic
}

// Float returns a concrete CalculatorFloat.
func Float(v float64) CalculatorFloat {
	return CalculatorFloat{value: v}
}

// Str returns a symbolic CalculatorFloat holding expr.
// An empty expression is treated as the number 0.
func Str(expr string) CalculatorFloat {
	return CalculatorFloat{expr: strings.TrimSpace(expr)}
}

// Parse returns a concrete value when s is a plain number and a symbolic one otherwise.
func Parse(s string) CalculatorFloat {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(v)
	}
	return Str(s)
}

// IsFloat reports whether c holds a concrete number.
func (c CalculatorFloat) IsFloat() bool {
	return c.expr == ""
}

// Float64 resolves c to a float64. Symbolic values fail with a *NumericConversionError.
func (c CalculatorFloat) Float64() (float64, error) {
	if !c.IsFloat() {
		return 0, &NumericConversionError{Value: c.expr}
	}
	return c.value, nil
}

// String returns the number or expression in a form the Calculator can parse.
func (c CalculatorFloat) String() string {
	if c.IsFloat() {
		return formatExact(c.value)
	}
	return c.expr
}

func formatExact(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// operand renders c for embedding into a larger expression. Anything but a
// non-negative number, a bare identifier or one parenthesized group is wrapped.
func (c CalculatorFloat) operand() string {
	if c.IsFloat() {
		if c.value < 0 {
			return "(" + formatExact(c.value) + ")"
		}
		return formatExact(c.value)
	}
	if identifier.MatchString(c.expr) || grouped(c.expr) {
		return c.expr
	}
	return "(" + c.expr + ")"
}

// grouped reports whether the parenthesis opening expr closes at its last byte.
func grouped(expr string) bool {
	if len(expr) < 2 || expr[0] != '(' {
		return false
	}
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(expr)-1
			}
		}
	}
	return false
}

func (c CalculatorFloat) isValue(v float64) bool {
	return c.IsFloat() && c.value == v
}

// Add returns c + other.
func (c CalculatorFloat) Add(other CalculatorFloat) CalculatorFloat {
	switch {
	case c.IsFloat() && other.IsFloat():
		return Float(c.value + other.value)
	case c.isValue(0):
		return other
	case other.isValue(0):
		return c
	}
	return Str("(" + c.operand() + " + " + other.operand() + ")")
}

// Sub returns c - other.
func (c CalculatorFloat) Sub(other CalculatorFloat) CalculatorFloat {
	switch {
	case c.IsFloat() && other.IsFloat():
		return Float(c.value - other.value)
	case other.isValue(0):
		return c
	}
	return Str("(" + c.operand() + " - " + other.operand() + ")")
}

// Mul returns c * other.
func (c CalculatorFloat) Mul(other CalculatorFloat) CalculatorFloat {
	switch {
	case c.IsFloat() && other.IsFloat():
		return Float(c.value * other.value)
	case c.isValue(0), other.isValue(0):
		return Float(0)
	case c.isValue(1):
		return other
	case other.isValue(1):
		return c
	}
	return Str("(" + c.operand() + " * " + other.operand() + ")")
}

// Div returns c / other. A zero denominator keeps the quotient symbolic, so it
// fails with ErrDivisionByZero once evaluated, like the same text would.
func (c CalculatorFloat) Div(other CalculatorFloat) CalculatorFloat {
	switch {
	case c.IsFloat() && other.IsFloat() && other.value != 0:
		return Float(c.value / other.value)
	case other.isValue(1):
		return c
	case c.isValue(0) && !other.isValue(0):
		return Float(0)
	}
	return Str("(" + c.operand() + " / " + other.operand() + ")")
}

// Neg returns -c.
func (c CalculatorFloat) Neg() CalculatorFloat {
	if c.IsFloat() {
		return Float(-c.value)
	}
	return Str("(-" + c.operand() + ")")
}

// Exp returns e^c.
func (c CalculatorFloat) Exp() CalculatorFloat {
	if c.IsFloat() {
		return Float(math.Exp(c.value))
	}
	return Str("exp(" + c.expr + ")")
}

// Sqrt returns the square root of c.
func (c CalculatorFloat) Sqrt() CalculatorFloat {
	if c.IsFloat() {
		return Float(math.Sqrt(c.value))
	}
	return Str("sqrt(" + c.expr + ")")
}
