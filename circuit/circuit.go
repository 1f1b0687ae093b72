// Package circuit is an ordered container of PRAGMA operations.
package circuit

import (
	"slices"

	"qpragma/calc"
	"qpragma/operations"
)

// Circuit holds operations in program order.
type Circuit struct {
	ops []operations.Operation
}

var _ operations.Circuit = (*Circuit)(nil)

// New returns a circuit holding ops in the given order.
func New(ops ...operations.Operation) *Circuit {
	return &Circuit{ops: slices.Clone(ops)}
}

// Add appends an operation to the circuit.
func (c *Circuit) Add(op operations.Operation) {
	c.ops = append(c.ops, op)
}

// Remove deletes the operation at index i and reports whether it existed.
func (c *Circuit) Remove(i int) bool {
	if i < 0 || i >= len(c.ops) {
		return false
	}
	c.ops = slices.Delete(c.ops, i, i+1)
	return true
}

// Len returns the number of operations.
func (c *Circuit) Len() int {
	return len(c.ops)
}

// Get returns the operation at index i.
func (c *Circuit) Get(i int) (operations.Operation, bool) {
	if i < 0 || i >= len(c.ops) {
		return nil, false
	}
	return c.ops[i], true
}

// Operations returns the operations in order. The slice is a copy.
func (c *Circuit) Operations() []operations.Operation {
	return slices.Clone(c.ops)
}

// InvolvedQubits aggregates the involvement of every operation.
// An empty circuit involves the empty set.
func (c *Circuit) InvolvedQubits() operations.InvolvedQubits {
	involved := operations.QubitSet()
	for _, op := range c.ops {
		involved = involved.Union(op.InvolvedQubits())
	}
	return involved
}

// RemapQubits remaps every operation. The first failure is returned as is.
func (c *Circuit) RemapQubits(mapping map[int]int) (operations.Circuit, error) {
	out := &Circuit{ops: make([]operations.Operation, 0, len(c.ops))}
	for _, op := range c.ops {
		remapped, err := op.RemapQubits(mapping)
		if err != nil {
			return nil, err
		}
		out.ops = append(out.ops, remapped)
	}
	return out, nil
}

// SubstituteParameters resolves the parameters of every operation.
func (c *Circuit) SubstituteParameters(calculator *calc.Calculator) (operations.Circuit, error) {
	out := &Circuit{ops: make([]operations.Operation, 0, len(c.ops))}
	for _, op := range c.ops {
		sub, err := op.SubstituteParameters(calculator)
		if err != nil {
			return nil, err
		}
		out.ops = append(out.ops, sub)
	}
	return out, nil
}

// Clone returns a deep copy. Operations are immutable values and are shared,
// except conditionals which own a sub-circuit.
func (c *Circuit) Clone() operations.Circuit {
	out := &Circuit{ops: make([]operations.Operation, len(c.ops))}
	for i, op := range c.ops {
		if cond, ok := op.(operations.PragmaConditional); ok {
			op = cond.Clone()
		}
		out.ops[i] = op
	}
	return out
}

// IsParametrized reports whether any operation still has a symbolic parameter.
func (c *Circuit) IsParametrized() bool {
	return slices.ContainsFunc(c.ops, operations.Operation.IsParametrized)
}

// FilterByTag returns the operations carrying tag, in order.
func (c *Circuit) FilterByTag(tag string) []operations.Operation {
	var out []operations.Operation
	for _, op := range c.ops {
		if operations.HasTag(op, tag) {
			out = append(out, op)
		}
	}
	return out
}

// CountOccurrences counts the operations carrying any of tags.
func (c *Circuit) CountOccurrences(tags ...string) int {
	n := 0
	for _, op := range c.ops {
		if slices.ContainsFunc(tags, func(tag string) bool { return operations.HasTag(op, tag) }) {
			n++
		}
	}
	return n
}

// NoiseOperations returns the operations that describe a noise channel.
func (c *Circuit) NoiseOperations() []operations.PragmaNoiseOperation {
	var out []operations.PragmaNoiseOperation
	for _, op := range c.ops {
		if noise, ok := op.(operations.PragmaNoiseOperation); ok {
			out = append(out, noise)
		}
	}
	return out
}
