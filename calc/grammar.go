package calc

import (
	"math"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer tokenizes arithmetic expressions such as "3*pi/4" or "exp(-t * gamma)".
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `\*\*|[-+*/^(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Grammar, lowest precedence first:
//
//	expression = term { ("+" | "-") term }
//	term       = factor { ("*" | "/") factor }
//	factor     = ("-" | "+") factor | power
//	power      = primary [ ("^" | "**") factor ]
//	primary    = Number | Ident [ "(" args ")" ] | "(" expression ")"
//
//nolint:govet // participle grammar tags are not standard struct tags
type expression struct {
	Left  *term     `parser:"@@"`
	Right []*opTerm `parser:"@@*"`
}

//nolint:govet
type opTerm struct {
	Op   string `parser:"@(\"+\" | \"-\")"`
	Term *term  `parser:"@@"`
}

//nolint:govet
type term struct {
	Left  *factor     `parser:"@@"`
	Right []*opFactor `parser:"@@*"`
}

//nolint:govet
type opFactor struct {
	Op     string  `parser:"@(\"*\" | \"/\")"`
	Factor *factor `parser:"@@"`
}

//nolint:govet
type factor struct {
	Negated *factor `parser:"  \"-\" @@"`
	Plus    *factor `parser:"| \"+\" @@"`
	Power   *power  `parser:"| @@"`
}

//nolint:govet
type power struct {
	Base     *primary `parser:"@@"`
	Exponent *factor  `parser:"( ( \"^\" | \"**\" ) @@ )?"`
}

//nolint:govet
type primary struct {
	Number *float64    `parser:"  @Number"`
	Symbol *symbol     `parser:"| @@"`
	Sub    *expression `parser:"| \"(\" @@ \")\""`
}

//nolint:govet
type symbol struct {
	Name string     `parser:"@Ident"`
	Call *arguments `parser:"@@?"`
}

//nolint:govet
type arguments struct {
	Args []*expression `parser:"\"(\" ( @@ ( \",\" @@ )* )? \")\""`
}

var exprParser = participle.MustBuild[expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

// constants resolved before the variable table.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var unaryFuncs = map[string]func(float64) float64{
	"exp":   math.Exp,
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"ln":    math.Log,
	"log":   math.Log,
	"log10": math.Log10,
	"abs":   math.Abs,
	"sign": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	},
}

var binaryFuncs = map[string]func(float64, float64) float64{
	"atan2": math.Atan2,
	"pow":   math.Pow,
	"max":   math.Max,
	"min":   math.Min,
}

// lookup resolves a bare identifier.
type lookup func(name string) (float64, bool)

func (x *expression) eval(vars lookup) (float64, error) {
	acc, err := x.Left.eval(vars)
	if err != nil {
		return 0, err
	}
	for _, r := range x.Right {
		v, err := r.Term.eval(vars)
		if err != nil {
			return 0, err
		}
		if r.Op == "+" {
			acc += v
		} else {
			acc -= v
		}
	}
	return acc, nil
}

func (t *term) eval(vars lookup) (float64, error) {
	acc, err := t.Left.eval(vars)
	if err != nil {
		return 0, err
	}
	for _, r := range t.Right {
		v, err := r.Factor.eval(vars)
		if err != nil {
			return 0, err
		}
		if r.Op == "*" {
			acc *= v
			continue
		}
		if v == 0 {
			return 0, ErrDivisionByZero
		}
		acc /= v
	}
	return acc, nil
}

func (f *factor) eval(vars lookup) (float64, error) {
	switch {
	case f.Negated != nil:
		v, err := f.Negated.eval(vars)
		return -v, err
	case f.Plus != nil:
		return f.Plus.eval(vars)
	}
	return f.Power.eval(vars)
}

func (p *power) eval(vars lookup) (float64, error) {
	base, err := p.Base.eval(vars)
	if err != nil || p.Exponent == nil {
		return base, err
	}
	exp, err := p.Exponent.eval(vars)
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *primary) eval(vars lookup) (float64, error) {
	switch {
	case p.Number != nil:
		return *p.Number, nil
	case p.Sub != nil:
		return p.Sub.eval(vars)
	}
	return p.Symbol.eval(vars)
}

func (s *symbol) eval(vars lookup) (float64, error) {
	if s.Call == nil {
		if v, ok := constants[s.Name]; ok {
			return v, nil
		}
		if v, ok := vars(s.Name); ok {
			return v, nil
		}
		return 0, &VariableNotSetError{Name: s.Name}
	}

	args := make([]float64, len(s.Call.Args))
	for i, a := range s.Call.Args {
		v, err := a.eval(vars)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch len(args) {
	case 1:
		if fn, ok := unaryFuncs[s.Name]; ok {
			return fn(args[0]), nil
		}
	case 2:
		if fn, ok := binaryFuncs[s.Name]; ok {
			return fn(args[0], args[1]), nil
		}
	}
	return 0, &UnknownFunctionError{Name: s.Name, Arity: len(args)}
}
