package operations

import (
	"qpragma/calc"
)

// PragmaConditional runs a sub-circuit when a classical bit is set.
// It owns its sub-circuit: the circuit is cloned on the way in and out.
type PragmaConditional struct {
	conditionRegister string
	conditionIndex    int
	circuit           Circuit
}

// NewPragmaConditional returns a pragma running a clone of circuit when
// bit conditionIndex of conditionRegister is set. A nil circuit stays nil.
func NewPragmaConditional(conditionRegister string, conditionIndex int, circuit Circuit) PragmaConditional {
	return PragmaConditional{
		conditionRegister: conditionRegister,
		conditionIndex:    conditionIndex,
		circuit:           cloneCircuit(circuit),
	}
}

func (p PragmaConditional) ConditionRegister() string { return p.conditionRegister }
func (p PragmaConditional) ConditionIndex() int       { return p.conditionIndex }
func (p PragmaConditional) Circuit() Circuit          { return cloneCircuit(p.circuit) }

func (p PragmaConditional) Hqslang() string { return NameConditional }
func (p PragmaConditional) Tags() []string  { return TagsFor(NameConditional) }

// IsParametrized asks the sub-circuit when it can tell.
func (p PragmaConditional) IsParametrized() bool {
	if pc, ok := p.circuit.(interface{ IsParametrized() bool }); ok {
		return pc.IsParametrized()
	}
	return false
}

func (p PragmaConditional) InvolvedQubits() InvolvedQubits {
	if p.circuit == nil {
		return NoQubits()
	}
	return p.circuit.InvolvedQubits()
}

func (p PragmaConditional) RemapQubits(mapping map[int]int) (Operation, error) {
	if p.circuit == nil {
		return p, nil
	}
	c, err := p.circuit.RemapQubits(mapping)
	if err != nil {
		return nil, err
	}
	return PragmaConditional{conditionRegister: p.conditionRegister, conditionIndex: p.conditionIndex, circuit: c}, nil
}

func (p PragmaConditional) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	if p.circuit == nil {
		return p, nil
	}
	c, err := p.circuit.SubstituteParameters(calculator)
	if err != nil {
		return nil, err
	}
	return PragmaConditional{conditionRegister: p.conditionRegister, conditionIndex: p.conditionIndex, circuit: c}, nil
}

// Clone returns a copy with a deep copy of the sub-circuit.
func (p PragmaConditional) Clone() PragmaConditional {
	out := p
	out.circuit = cloneCircuit(p.circuit)
	return out
}

func cloneCircuit(c Circuit) Circuit {
	if c == nil {
		return nil
	}
	return c.Clone()
}
