package calc

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGet(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		// Plain numbers
		{"1.5707", 1.5707},
		{"-0.5", -0.5},
		{"0", 0},
		{"42", 42},
		{"1e-3", 0.001},
		{".5", 0.5},

		// Pi expressions
		{"pi", math.Pi},
		{"pi/2", math.Pi / 2},
		{"3*pi/4", 3 * math.Pi / 4},
		{"2*pi/3", 2 * math.Pi / 3},
		{"-pi", -math.Pi},
		{"-3*pi/4", -3 * math.Pi / 4},
		{" 3 * pi / 4 ", 3 * math.Pi / 4},

		// Precedence
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"2^3", 8},
		{"2**3", 8},
		{"-2^2", -4},
		{"2^-1", 0.5},
		{"8 / 2 / 2", 2},
		{"1 - 2 - 3", -4},

		// Functions
		{"exp(0)", 1},
		{"sqrt(4)", 2},
		{"atan2(1, 1)", math.Pi / 4},
		{"e", math.E},
		{"ln(e)", 1},
		{"sign(-3)", -1},
	}

	c := NewCalculator()
	for _, tt := range tests {
		got, err := c.ParseGet(tt.input)
		if !assert.NoError(t, err, "ParseGet(%q)", tt.input) {
			continue
		}
		assert.InDelta(t, tt.want, got, 1e-10, "ParseGet(%q)", tt.input)
	}
}

func TestParseGetErrors(t *testing.T) {
	c := NewCalculator()

	_, err := c.ParseGet("")
	assert.ErrorIs(t, err, ErrParse)

	_, err = c.ParseGet("1 +")
	assert.ErrorIs(t, err, ErrParse)

	_, err = c.ParseGet("2pi")
	assert.ErrorIs(t, err, ErrParse)

	_, err = c.ParseGet("pi/0")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = c.ParseGet("gamma * 2")
	var notSet *VariableNotSetError
	require.ErrorAs(t, err, &notSet)
	assert.Equal(t, "gamma", notSet.Name)
	assert.ErrorIs(t, err, ErrVariableNotSet)

	_, err = c.ParseGet("foo(1)")
	var unknown *UnknownFunctionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "foo", unknown.Name)
	assert.Equal(t, 1, unknown.Arity)

	_, err = c.ParseGet("exp(1, 2)")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestVariables(t *testing.T) {
	c := NewCalculator()
	c.SetVariable("t", 2)

	got, err := c.ParseGet("t * 3")
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)

	v, err := c.Assign("gamma", "t / 4")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	g, ok := c.Variable("gamma")
	assert.True(t, ok)
	assert.Equal(t, 0.5, g)

	vars := c.Variables()
	vars["t"] = 100
	tv, _ := c.Variable("t")
	assert.Equal(t, 2.0, tv, "Variables must return a copy")

	_, err = c.Assign("", "1")
	assert.Error(t, err)

	_, err = c.Assign("x", "unknown")
	assert.ErrorIs(t, err, ErrVariableNotSet)
}

func TestZeroValueCalculator(t *testing.T) {
	var c Calculator
	c.SetVariable("x", 3)
	got, err := c.ParseGet("x^2")
	require.NoError(t, err)
	assert.Equal(t, 9.0, got)
}

func TestCalculatorFloatArithmetic(t *testing.T) {
	x := Str("x")

	assert.Equal(t, Float(5), Float(2).Add(Float(3)))
	assert.Equal(t, Float(-1), Float(2).Sub(Float(3)))
	assert.Equal(t, Float(6), Float(2).Mul(Float(3)))
	assert.Equal(t, Float(0.5), Float(1).Div(Float(2)))

	assert.Equal(t, x, x.Add(Float(0)))
	assert.Equal(t, x, Float(0).Add(x))
	assert.Equal(t, x, x.Sub(Float(0)))
	assert.Equal(t, x, x.Mul(Float(1)))
	assert.Equal(t, x, Float(1).Mul(x))
	assert.Equal(t, Float(0), x.Mul(Float(0)))
	assert.Equal(t, x, x.Div(Float(1)))

	assert.Equal(t, "(x * 2)", x.Mul(Float(2)).String())
	assert.Equal(t, "((-1) * x)", Float(-1).Mul(x).String())
	assert.Equal(t, "(x + y)", x.Add(Str("y")).String())
	assert.Equal(t, "exp(x)", x.Exp().String())
	assert.Equal(t, "sqrt(x)", x.Sqrt().String())
	assert.Equal(t, "(-x)", x.Neg().String())
	assert.Equal(t, "(2 * (t + 1))", Float(2).Mul(Str("t + 1")).String())
	assert.Equal(t, "((a - b) + c)", Str("a - b").Add(Str("c")).String())
	assert.Equal(t, "(-(a - b))", Str("a - b").Neg().String())
	assert.Equal(t, "((a) * b)", Str("(a)").Mul(Str("b")).String())
	assert.Equal(t, "(((a) + (b)) * 2)", Str("(a) + (b)").Mul(Float(2)).String())
	assert.Equal(t, Float(-2), Float(2).Neg())
	assert.InDelta(t, math.E, Float(1).Exp().value, 1e-12)
}

func TestSymbolicArithmeticEvaluates(t *testing.T) {
	c := NewCalculator()
	c.SetVariable("t", 0.5)
	c.SetVariable("gamma", 2)

	// 0.5 * (1 - exp(-2 * t * gamma))
	p := Str("t").Mul(Str("gamma")).Mul(Float(-2)).Exp().Mul(Float(-1)).Add(Float(1)).Mul(Float(0.5))
	assert.False(t, p.IsFloat())

	got, err := c.Evaluate(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*(1-math.Exp(-2)), got, 1e-12)

	sub, err := c.Substitute(p)
	require.NoError(t, err)
	assert.True(t, sub.IsFloat())

	compound := []struct {
		value CalculatorFloat
		want  float64
	}{
		{Str("t + 1").Mul(Float(2)), 3},
		{Float(2).Mul(Str("t + 1")), 3},
		{Str("gamma - t").Mul(Str("t + 1")), 2.25},
		{Str("gamma - t").Neg(), -1.5},
		{Str("gamma - t").Sub(Str("gamma - t")), 0},
		{Str("-t").Mul(Float(2)), -1},
		{Str("1 / t").Div(Str("t * 2")), 2},
		{Str("t + 1").Add(Float(1)).Mul(Str("gamma")), 5},
		{Str("t * gamma").Exp().Mul(Float(0)), 0},
	}
	for _, tt := range compound {
		got, err := c.Evaluate(tt.value)
		require.NoError(t, err, tt.value.String())
		assert.InDelta(t, tt.want, got, 1e-12, tt.value.String())
	}
}

func TestDivisionByZeroFailsOnEvaluate(t *testing.T) {
	c := NewCalculator()
	c.SetVariable("x", 1)
	for _, q := range []CalculatorFloat{
		Float(1).Div(Float(0)),
		Float(0).Div(Float(0)),
		Str("x").Div(Float(0)),
	} {
		assert.False(t, q.IsFloat(), q.String())
		_, err := c.Evaluate(q)
		assert.ErrorIs(t, err, ErrDivisionByZero, q.String())
	}
}

func TestFloat64Conversion(t *testing.T) {
	v, err := Float(1.25).Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.25, v)

	_, err = Str("theta").Float64()
	var conv *NumericConversionError
	require.True(t, errors.As(err, &conv))
	assert.Equal(t, "theta", conv.Value)
	assert.ErrorIs(t, err, ErrNumericConversion)
}

func TestParse(t *testing.T) {
	assert.True(t, Parse("1.5").IsFloat())
	assert.True(t, Parse(" -2e-3 ").IsFloat())
	assert.False(t, Parse("theta").IsFloat())
	assert.False(t, Parse("pi/2").IsFloat())
	assert.True(t, Str("").IsFloat())
	assert.Equal(t, Float(0), CalculatorFloat{})
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 3, "pi/3"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi, "-pi"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0"},
		{0.01, "0.01"},
	}

	c := NewCalculator()
	for _, tt := range tests {
		got := FormatFloat(tt.input)
		assert.Equal(t, tt.want, got, "FormatFloat(%g)", tt.input)

		back, err := c.ParseGet(got)
		require.NoError(t, err)
		assert.InDelta(t, tt.input, back, 1e-10)
	}

	assert.Equal(t, "pi/2", Format(Float(math.Pi/2)))
	assert.Equal(t, "theta", Format(Str("theta")))
}

func TestConcurrentEvaluation(t *testing.T) {
	c := NewCalculator()
	c.SetVariable("t", 1)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Evaluate(Str("exp(-t) * 2")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
