package circuitfile

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseMapping reads a qubit mapping written as "0:3,2:4".
func ParseMapping(s string) (map[int]int, error) {
	mapping := make(map[int]int)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, errors.Errorf("mapping entry %q is not of the form old:new", pair)
		}
		oldQubit, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, errors.Wrapf(err, "mapping entry %q", pair)
		}
		newQubit, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, errors.Wrapf(err, "mapping entry %q", pair)
		}
		if _, dup := mapping[oldQubit]; dup {
			return nil, errors.Errorf("qubit %d mapped twice", oldQubit)
		}
		mapping[oldQubit] = newQubit
	}
	if len(mapping) == 0 {
		return nil, errors.New("empty qubit mapping")
	}
	return mapping, nil
}

// ParseAssignment splits "name=expression".
func ParseAssignment(s string) (Variable, error) {
	name, expr, ok := strings.Cut(s, "=")
	name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
	if !ok || name == "" || expr == "" {
		return Variable{}, errors.Errorf("assignment %q is not of the form name=expression", s)
	}
	return Variable{Name: name, Expr: expr}, nil
}
