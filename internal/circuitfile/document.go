// Package circuitfile reads and writes circuit descriptions in YAML.
//
// A document has an ordered variables section, evaluated top to bottom into a
// calculator, and a list of operations:
//
//	variables:
//	  t: 0.5
//	  gamma: 2 * t
//	operations:
//	  - type: PragmaDamping
//	    qubit: 0
//	    gate_time: t
//	    rate: gamma
package circuitfile

import (
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qpragma/calc"
)

// Document is the on-disk form of a circuit.
type Document struct {
	Variables  Variables `yaml:"variables,omitempty"`
	Operations []Entry   `yaml:"operations"`
}

// Variable is one named expression of the variables section.
type Variable struct {
	Name string
	Expr string
}

// Variables keeps the order in which variables were written.
type Variables []Variable

func (v *Variables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: variables must be a mapping", node.Line)
	}
	out := make(Variables, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return errors.Errorf("line %d: variable %s must be a scalar", value.Line, key.Value)
		}
		out = append(out, Variable{Name: key.Value, Expr: value.Value})
	}
	*v = out
	return nil
}

func (v Variables) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, variable := range v {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: variable.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: variable.Expr},
		)
	}
	return node, nil
}

// Entry describes one operation. Which fields apply depends on Type.
type Entry struct {
	Type string `yaml:"type"`

	Qubit  *int  `yaml:"qubit,omitempty"`
	Qubits []int `yaml:"qubits,omitempty"`

	GateTime         Param `yaml:"gate_time,omitempty"`
	Rate             Param `yaml:"rate,omitempty"`
	DepolarisingRate Param `yaml:"depolarising_rate,omitempty"`
	DephasingRate    Param `yaml:"dephasing_rate,omitempty"`
	Time             Param `yaml:"time,omitempty"`
	Phase            Param `yaml:"phase,omitempty"`
	Coefficient      Param `yaml:"coefficient,omitempty"`

	NumberMeasurements    int    `yaml:"number_measurements,omitempty"`
	Readout               string `yaml:"readout,omitempty"`
	RepetitionCoefficient int    `yaml:"repetition_coefficient,omitempty"`

	Gate      string  `yaml:"gate,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	Variance  float64 `yaml:"variance,omitempty"`

	Reordering map[int]int `yaml:"reordering,omitempty"`

	StateVector   []Complex   `yaml:"statevector,omitempty"`
	DensityMatrix [][]Complex `yaml:"density_matrix,omitempty"`
	Operators     [][]Complex `yaml:"operators,omitempty"`

	Register string  `yaml:"register,omitempty"`
	Index    int     `yaml:"index,omitempty"`
	Circuit  []Entry `yaml:"circuit,omitempty"`

	// Line is the source line of the entry, zero when not read from YAML.
	Line int `yaml:"-"`
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	type plain Entry
	if err := node.Decode((*plain)(e)); err != nil {
		return err
	}
	e.Line = node.Line
	return nil
}

// Param is a numeric or symbolic parameter.
type Param struct {
	set   bool
	value calc.CalculatorFloat
}

// NewParam wraps cf as a set parameter.
func NewParam(cf calc.CalculatorFloat) Param {
	return Param{set: true, value: cf}
}

func (p Param) IsZero() bool                { return !p.set }
func (p Param) Value() calc.CalculatorFloat { return p.value }

func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: parameter must be a number or an expression", node.Line)
	}
	*p = NewParam(calc.Parse(node.Value))
	return nil
}

func (p Param) MarshalYAML() (any, error) {
	if v, err := p.value.Float64(); err == nil {
		return v, nil
	}
	return p.value.String(), nil
}

// Complex is a complex number written like "1", "0.5i" or "(1+2i)".
type Complex complex128

func (c *Complex) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: complex number must be a scalar", node.Line)
	}
	v, err := strconv.ParseComplex(node.Value, 128)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*c = Complex(v)
	return nil
}

func (c Complex) MarshalYAML() (any, error) {
	v := complex128(c)
	if imag(v) == 0 {
		return real(v), nil
	}
	return strconv.FormatComplex(v, 'g', -1, 128), nil
}
