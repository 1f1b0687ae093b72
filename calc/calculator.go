package calc

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const parseCacheSize = 256

// Calculator resolves symbolic expressions against a table of named variables.
// It is safe for concurrent use; the variable table is owned by the caller
// and never consulted implicitly.
type Calculator struct {
	mu        sync.RWMutex
	variables map[string]float64
	parsed    *lru.Cache[string, *expression]
}

// NewCalculator returns a Calculator with an empty variable table.
func NewCalculator() *Calculator {
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *expression](parseCacheSize)
	return &Calculator{
		variables: make(map[string]float64),
		parsed:    cache,
	}
}

// SetVariable assigns value to name, replacing any previous value.
func (c *Calculator) SetVariable(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.variables == nil {
		c.variables = make(map[string]float64)
	}
	c.variables[name] = value
}

// Variable returns the value of name and whether it is set.
func (c *Calculator) Variable(name string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.variables[name]
	return v, ok
}

// Variables returns a copy of the variable table.
func (c *Calculator) Variables() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64, len(c.variables))
	for k, v := range c.variables {
		out[k] = v
	}
	return out
}

// Assign evaluates expr and stores the result under name.
func (c *Calculator) Assign(name, expr string) (float64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.Wrapf(ErrParse, "empty variable name in assignment of %q", expr)
	}
	v, err := c.ParseGet(expr)
	if err != nil {
		return 0, errors.Wrapf(err, "assign %s", name)
	}
	c.SetVariable(name, v)
	return v, nil
}

// ParseGet parses expr and evaluates it with the current variables.
func (c *Calculator) ParseGet(expr string) (float64, error) {
	ast, err := c.parse(expr)
	if err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ast.eval(func(name string) (float64, bool) {
		v, ok := c.variables[name]
		return v, ok
	})
}

// Evaluate resolves cf to a concrete number.
func (c *Calculator) Evaluate(cf CalculatorFloat) (float64, error) {
	if cf.IsFloat() {
		return cf.value, nil
	}
	return c.ParseGet(cf.expr)
}

// Substitute resolves cf and returns it as a concrete CalculatorFloat.
func (c *Calculator) Substitute(cf CalculatorFloat) (CalculatorFloat, error) {
	v, err := c.Evaluate(cf)
	if err != nil {
		return CalculatorFloat{}, err
	}
	return Float(v), nil
}

func (c *Calculator) parse(expr string) (*expression, error) {
	expr = strings.TrimSpace(expr)
	if c.parsed != nil {
		if ast, ok := c.parsed.Get(expr); ok {
			return ast, nil
		}
	}
	ast, err := exprParser.ParseString("", expr)
	if err != nil {
		return nil, &ParseError{Expression: expr, Err: err}
	}
	if c.parsed != nil {
		c.parsed.Add(expr, ast)
	}
	return ast, nil
}
