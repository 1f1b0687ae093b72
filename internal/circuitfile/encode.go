package circuitfile

import (
	"maps"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"qpragma/calc"
	"qpragma/circuit"
	"qpragma/operations"
)

// Marshal writes c as a document without a variables section.
func Marshal(c *circuit.Circuit) ([]byte, error) {
	return Encode(c, nil)
}

// Encode writes c as a document. The variables of calculator, if any, are
// written sorted by name so the document loads back into the same state.
func Encode(c *circuit.Circuit, calculator *calc.Calculator) ([]byte, error) {
	entries, err := entriesOf(c)
	if err != nil {
		return nil, err
	}
	doc := Document{Operations: entries}
	if calculator != nil {
		vars := calculator.Variables()
		for _, name := range slices.Sorted(maps.Keys(vars)) {
			doc.Variables = append(doc.Variables, Variable{Name: name, Expr: strconv.FormatFloat(vars[name], 'g', -1, 64)})
		}
	}
	out, err := yaml.Marshal(doc)
	return out, errors.Wrap(err, "encode circuit document")
}

func entriesOf(c *circuit.Circuit) ([]Entry, error) {
	entries := make([]Entry, 0, c.Len())
	for i, op := range c.Operations() {
		e, err := EntryOf(op)
		if err != nil {
			return nil, errors.Wrapf(err, "operation %d", i)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// EntryOf describes op as an entry.
func EntryOf(op operations.Operation) (Entry, error) {
	e := Entry{Type: op.Hqslang()}
	switch o := op.(type) {
	case operations.PragmaSetNumberOfMeasurements:
		e.NumberMeasurements = o.NumberMeasurements()
		e.Readout = o.Readout()
	case operations.PragmaSetStateVector:
		for _, c := range o.Statevector() {
			e.StateVector = append(e.StateVector, Complex(c))
		}
	case operations.PragmaSetDensityMatrix:
		e.DensityMatrix = rowsOf(o.DensityMatrix())
	case operations.PragmaRepeatGate:
		e.RepetitionCoefficient = o.RepetitionCoefficient()
	case operations.PragmaOverrotation:
		e.Gate = o.GateHqslang()
		e.Qubits = o.Qubits()
		e.Amplitude = o.Amplitude()
		e.Variance = o.Variance()
	case operations.PragmaBoostNoise:
		e.Coefficient = NewParam(o.NoiseCoefficient())
	case operations.PragmaStopParallelBlock:
		e.Qubits = o.Qubits()
		e.Time = NewParam(o.ExecutionTime())
	case operations.PragmaGlobalPhase:
		e.Phase = NewParam(o.Phase())
	case operations.PragmaSleep:
		e.Qubits = o.Qubits()
		e.Time = NewParam(o.SleepTime())
	case operations.PragmaActiveReset:
		e.Qubit = intPtr(o.Qubit())
	case operations.PragmaStartDecompositionBlock:
		e.Qubits = o.Qubits()
		e.Reordering = o.ReorderingDictionary()
	case operations.PragmaStopDecompositionBlock:
		e.Qubits = o.Qubits()
	case operations.PragmaDamping:
		e.setRateNoise(o.Qubit(), o.GateTime(), o.Rate())
	case operations.PragmaDepolarising:
		e.setRateNoise(o.Qubit(), o.GateTime(), o.Rate())
	case operations.PragmaDephasing:
		e.setRateNoise(o.Qubit(), o.GateTime(), o.Rate())
	case operations.PragmaRandomNoise:
		e.Qubit = intPtr(o.Qubit())
		e.GateTime = NewParam(o.GateTime())
		e.DepolarisingRate = NewParam(o.DepolarisingRate())
		e.DephasingRate = NewParam(o.DephasingRate())
	case operations.PragmaGeneralNoise:
		e.setRateNoise(o.Qubit(), o.GateTime(), o.Rate())
		e.Operators = rowsOf(o.Operators())
	case operations.PragmaConditional:
		e.Register = o.ConditionRegister()
		e.Index = o.ConditionIndex()
		sub, ok := o.Circuit().(*circuit.Circuit)
		if !ok {
			return Entry{}, errors.Errorf("conditional circuit of type %T cannot be encoded", o.Circuit())
		}
		entries, err := entriesOf(sub)
		if err != nil {
			return Entry{}, errors.Wrap(err, "conditional circuit")
		}
		e.Circuit = entries
	default:
		return Entry{}, errors.Wrapf(ErrUnknownOperation, "%T", op)
	}
	return e, nil
}

func (e *Entry) setRateNoise(qubit int, gateTime, rate calc.CalculatorFloat) {
	e.Qubit = intPtr(qubit)
	e.GateTime = NewParam(gateTime)
	e.Rate = NewParam(rate)
}

func rowsOf(m *mat.CDense) [][]Complex {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	rows := make([][]Complex, r)
	for i := range rows {
		rows[i] = make([]Complex, c)
		for j := range rows[i] {
			rows[i][j] = Complex(m.At(i, j))
		}
	}
	return rows
}

func intPtr(v int) *int {
	return &v
}
