// Package operations holds the PRAGMA instructions of the circuit IR.
//
// Every operation is an immutable value. Analysis reads it, substitution
// returns a fresh copy and noise operations additionally describe the single
// qubit channel they stand for. Which capabilities a variant carries is
// discoverable through its tag list without naming the concrete type.
package operations

import (
	"gonum.org/v1/gonum/mat"

	"qpragma/calc"
)

// Operation is implemented by every PRAGMA variant.
type Operation interface {
	// Hqslang returns the variant name, which is also its last tag.
	Hqslang() string
	// Tags returns the ordered capability labels of the variant.
	Tags() []string
	// IsParametrized reports whether any parameter is still symbolic.
	IsParametrized() bool
	InvolvedQubits() InvolvedQubits
	// RemapQubits returns a copy with every qubit index sent through mapping.
	RemapQubits(mapping map[int]int) (Operation, error)
	// SubstituteParameters returns a copy with every symbolic parameter
	// resolved by calculator.
	SubstituteParameters(calculator *calc.Calculator) (Operation, error)
}

// SingleQubitOperation is an operation tied to exactly one qubit.
type SingleQubitOperation interface {
	Operation
	Qubit() int
}

// MultiQubitOperation is an operation tied to an ordered list of qubits.
type MultiQubitOperation interface {
	Operation
	Qubits() []int
}

// PragmaNoiseOperation is a single qubit noise channel.
type PragmaNoiseOperation interface {
	SingleQubitOperation
	GateTime() calc.CalculatorFloat
	// Superoperator returns the 4x4 channel matrix. It fails with
	// *calc.NumericConversionError while gate time or rate is symbolic.
	Superoperator() (*mat.Dense, error)
	// Probability returns the chance that the qubit is affected, symbolic
	// when the inputs are.
	Probability() calc.CalculatorFloat
	// PowerCF returns a copy whose gate time is multiplied by power.
	PowerCF(power calc.CalculatorFloat) PragmaNoiseOperation
}

// Circuit is the part of the circuit container a PragmaConditional needs.
type Circuit interface {
	InvolvedQubits() InvolvedQubits
	RemapQubits(mapping map[int]int) (Circuit, error)
	SubstituteParameters(calculator *calc.Calculator) (Circuit, error)
	Clone() Circuit
}

func remapQubit(qubit int, mapping map[int]int) (int, error) {
	nq, ok := mapping[qubit]
	if !ok {
		return 0, &QubitMappingError{Qubit: qubit}
	}
	return nq, nil
}

func remapQubitList(qubits []int, mapping map[int]int) ([]int, error) {
	out := make([]int, len(qubits))
	for i, q := range qubits {
		nq, err := remapQubit(q, mapping)
		if err != nil {
			return nil, err
		}
		out[i] = nq
	}
	return out, nil
}

// substituteAll resolves each parameter in place. Callers pass pointers into
// their own copy so the receiver stays untouched.
func substituteAll(calculator *calc.Calculator, params ...*calc.CalculatorFloat) error {
	if calculator == nil {
		calculator = calc.NewCalculator()
	}
	for _, p := range params {
		v, err := calculator.Substitute(*p)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

func anySymbolic(params ...calc.CalculatorFloat) bool {
	for _, p := range params {
		if !p.IsFloat() {
			return true
		}
	}
	return false
}

var (
	_ Operation            = PragmaSetNumberOfMeasurements{}
	_ Operation            = PragmaSetStateVector{}
	_ Operation            = PragmaSetDensityMatrix{}
	_ Operation            = PragmaRepeatGate{}
	_ MultiQubitOperation  = PragmaOverrotation{}
	_ Operation            = PragmaBoostNoise{}
	_ MultiQubitOperation  = PragmaStopParallelBlock{}
	_ Operation            = PragmaGlobalPhase{}
	_ MultiQubitOperation  = PragmaSleep{}
	_ SingleQubitOperation = PragmaActiveReset{}
	_ MultiQubitOperation  = PragmaStartDecompositionBlock{}
	_ MultiQubitOperation  = PragmaStopDecompositionBlock{}
	_ PragmaNoiseOperation = PragmaDamping{}
	_ PragmaNoiseOperation = PragmaDepolarising{}
	_ PragmaNoiseOperation = PragmaDephasing{}
	_ PragmaNoiseOperation = PragmaRandomNoise{}
	_ SingleQubitOperation = PragmaGeneralNoise{}
	_ Operation            = PragmaConditional{}
)
