package calc

import (
	"fmt"
	"math"
)

// piForm is a recognized multiple of pi and its display string.
type piForm struct {
	value   float64
	display string
}

var piForms = []piForm{
	{2 * math.Pi, "2*pi"},
	{math.Pi, "pi"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
	{3 * math.Pi / 4, "3*pi/4"},
	{3 * math.Pi / 2, "3*pi/2"},
	{2 * math.Pi / 3, "2*pi/3"},
}

// FormatFloat formats val for display, using pi notation when possible.
// The result is accepted by Calculator.ParseGet.
func FormatFloat(val float64) string {
	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}
	return fmt.Sprintf("%g", val)
}

// Format renders cf for display: concrete values through FormatFloat,
// symbolic values verbatim.
func Format(cf CalculatorFloat) string {
	if cf.IsFloat() {
		return FormatFloat(cf.value)
	}
	return cf.expr
}
