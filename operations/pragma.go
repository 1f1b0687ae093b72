package operations

import (
	"maps"
	"math/bits"
	"slices"

	"gonum.org/v1/gonum/mat"

	"qpragma/calc"
)

// PragmaSetNumberOfMeasurements sets how often a readout register is measured.
type PragmaSetNumberOfMeasurements struct {
	numberMeasurements int
	readout            string
}

// NewPragmaSetNumberOfMeasurements returns a pragma running the circuit numberMeasurements times into readout.
func NewPragmaSetNumberOfMeasurements(numberMeasurements int, readout string) PragmaSetNumberOfMeasurements {
	return PragmaSetNumberOfMeasurements{numberMeasurements: numberMeasurements, readout: readout}
}

func (p PragmaSetNumberOfMeasurements) NumberMeasurements() int { return p.numberMeasurements }
func (p PragmaSetNumberOfMeasurements) Readout() string         { return p.readout }

func (p PragmaSetNumberOfMeasurements) Hqslang() string { return NameSetNumberOfMeasurements }
func (p PragmaSetNumberOfMeasurements) Tags() []string  { return TagsFor(NameSetNumberOfMeasurements) }
func (p PragmaSetNumberOfMeasurements) IsParametrized() bool {
	return false
}
func (p PragmaSetNumberOfMeasurements) InvolvedQubits() InvolvedQubits { return NoQubits() }

func (p PragmaSetNumberOfMeasurements) RemapQubits(map[int]int) (Operation, error) {
	return p, nil
}

func (p PragmaSetNumberOfMeasurements) SubstituteParameters(*calc.Calculator) (Operation, error) {
	return p, nil
}

// PragmaSetStateVector initializes the whole register to a state vector.
type PragmaSetStateVector struct {
	statevector []complex128
}

// NewPragmaSetStateVector copies statevector, whose length must be a power of two.
func NewPragmaSetStateVector(statevector []complex128) (PragmaSetStateVector, error) {
	if !isPowerOfTwo(len(statevector)) {
		return PragmaSetStateVector{}, invalidPayload("state vector length %d is not a power of two", len(statevector))
	}
	return PragmaSetStateVector{statevector: slices.Clone(statevector)}, nil
}

func (p PragmaSetStateVector) Statevector() []complex128 { return slices.Clone(p.statevector) }

func (p PragmaSetStateVector) Hqslang() string                { return NameSetStateVector }
func (p PragmaSetStateVector) Tags() []string                 { return TagsFor(NameSetStateVector) }
func (p PragmaSetStateVector) IsParametrized() bool           { return false }
func (p PragmaSetStateVector) InvolvedQubits() InvolvedQubits { return AllQubits() }
func (p PragmaSetStateVector) RemapQubits(map[int]int) (Operation, error) {
	return PragmaSetStateVector{statevector: slices.Clone(p.statevector)}, nil
}
func (p PragmaSetStateVector) SubstituteParameters(*calc.Calculator) (Operation, error) {
	return PragmaSetStateVector{statevector: slices.Clone(p.statevector)}, nil
}

// PragmaSetDensityMatrix initializes the whole register to a density matrix.
type PragmaSetDensityMatrix struct {
	densityMatrix *mat.CDense
}

// NewPragmaSetDensityMatrix copies m, which must be square with a power of two dimension.
func NewPragmaSetDensityMatrix(m mat.CMatrix) (PragmaSetDensityMatrix, error) {
	if m == nil {
		return PragmaSetDensityMatrix{}, invalidPayload("nil density matrix")
	}
	r, c := m.Dims()
	if r != c || !isPowerOfTwo(r) {
		return PragmaSetDensityMatrix{}, invalidPayload("density matrix of shape %dx%d", r, c)
	}
	return PragmaSetDensityMatrix{densityMatrix: cloneCMatrix(m)}, nil
}

func (p PragmaSetDensityMatrix) DensityMatrix() *mat.CDense { return cloneCDense(p.densityMatrix) }

func (p PragmaSetDensityMatrix) Hqslang() string                { return NameSetDensityMatrix }
func (p PragmaSetDensityMatrix) Tags() []string                 { return TagsFor(NameSetDensityMatrix) }
func (p PragmaSetDensityMatrix) IsParametrized() bool           { return false }
func (p PragmaSetDensityMatrix) InvolvedQubits() InvolvedQubits { return AllQubits() }
func (p PragmaSetDensityMatrix) RemapQubits(map[int]int) (Operation, error) {
	return PragmaSetDensityMatrix{densityMatrix: cloneCDense(p.densityMatrix)}, nil
}
func (p PragmaSetDensityMatrix) SubstituteParameters(*calc.Calculator) (Operation, error) {
	return PragmaSetDensityMatrix{densityMatrix: cloneCDense(p.densityMatrix)}, nil
}

// PragmaRepeatGate repeats the following gate. It frames the next instruction
// regardless of its qubits, so it involves the whole register.
type PragmaRepeatGate struct {
	repetitionCoefficient int
}

// NewPragmaRepeatGate returns a pragma repeating the next gate repetitionCoefficient times.
func NewPragmaRepeatGate(repetitionCoefficient int) PragmaRepeatGate {
	return PragmaRepeatGate{repetitionCoefficient: repetitionCoefficient}
}

func (p PragmaRepeatGate) RepetitionCoefficient() int { return p.repetitionCoefficient }

func (p PragmaRepeatGate) Hqslang() string                                          { return NameRepeatGate }
func (p PragmaRepeatGate) Tags() []string                                           { return TagsFor(NameRepeatGate) }
func (p PragmaRepeatGate) IsParametrized() bool                                     { return false }
func (p PragmaRepeatGate) InvolvedQubits() InvolvedQubits                           { return AllQubits() }
func (p PragmaRepeatGate) RemapQubits(map[int]int) (Operation, error)               { return p, nil }
func (p PragmaRepeatGate) SubstituteParameters(*calc.Calculator) (Operation, error) { return p, nil }

// PragmaOverrotation applies a random overrotation to gates of one type.
type PragmaOverrotation struct {
	gateHqslang string
	qubits      []int
	amplitude   float64
	variance    float64
}

// NewPragmaOverrotation returns a pragma over-rotating gateHqslang on qubits. qubits is copied.
func NewPragmaOverrotation(gateHqslang string, qubits []int, amplitude, variance float64) PragmaOverrotation {
	return PragmaOverrotation{
		gateHqslang: gateHqslang,
		qubits:      slices.Clone(qubits),
		amplitude:   amplitude,
		variance:    variance,
	}
}

func (p PragmaOverrotation) GateHqslang() string { return p.gateHqslang }
func (p PragmaOverrotation) Qubits() []int       { return slices.Clone(p.qubits) }
func (p PragmaOverrotation) Amplitude() float64  { return p.amplitude }
func (p PragmaOverrotation) Variance() float64   { return p.variance }

func (p PragmaOverrotation) Hqslang() string                { return NameOverrotation }
func (p PragmaOverrotation) Tags() []string                 { return TagsFor(NameOverrotation) }
func (p PragmaOverrotation) IsParametrized() bool           { return false }
func (p PragmaOverrotation) InvolvedQubits() InvolvedQubits { return QubitSet(p.qubits...) }

func (p PragmaOverrotation) RemapQubits(mapping map[int]int) (Operation, error) {
	qubits, err := remapQubitList(p.qubits, mapping)
	if err != nil {
		return nil, err
	}
	out := p
	out.qubits = qubits
	return out, nil
}

func (p PragmaOverrotation) SubstituteParameters(*calc.Calculator) (Operation, error) {
	out := p
	out.qubits = slices.Clone(p.qubits)
	return out, nil
}

// PragmaBoostNoise scales the noise of the whole device.
type PragmaBoostNoise struct {
	noiseCoefficient calc.CalculatorFloat
}

// NewPragmaBoostNoise returns a pragma scaling all noise by noiseCoefficient.
func NewPragmaBoostNoise(noiseCoefficient calc.CalculatorFloat) PragmaBoostNoise {
	return PragmaBoostNoise{noiseCoefficient: noiseCoefficient}
}

func (p PragmaBoostNoise) NoiseCoefficient() calc.CalculatorFloat { return p.noiseCoefficient }

func (p PragmaBoostNoise) Hqslang() string                { return NameBoostNoise }
func (p PragmaBoostNoise) Tags() []string                 { return TagsFor(NameBoostNoise) }
func (p PragmaBoostNoise) IsParametrized() bool           { return anySymbolic(p.noiseCoefficient) }
func (p PragmaBoostNoise) InvolvedQubits() InvolvedQubits { return NoQubits() }

func (p PragmaBoostNoise) RemapQubits(map[int]int) (Operation, error) { return p, nil }

func (p PragmaBoostNoise) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	out := p
	if err := substituteAll(calculator, &out.noiseCoefficient); err != nil {
		return nil, err
	}
	return out, nil
}

// PragmaStopParallelBlock closes a block of gates executed in parallel.
type PragmaStopParallelBlock struct {
	qubits        []int
	executionTime calc.CalculatorFloat
}

// NewPragmaStopParallelBlock returns a pragma closing a parallel block on qubits. qubits is copied.
func NewPragmaStopParallelBlock(qubits []int, executionTime calc.CalculatorFloat) PragmaStopParallelBlock {
	return PragmaStopParallelBlock{qubits: slices.Clone(qubits), executionTime: executionTime}
}

func (p PragmaStopParallelBlock) Qubits() []int                       { return slices.Clone(p.qubits) }
func (p PragmaStopParallelBlock) ExecutionTime() calc.CalculatorFloat { return p.executionTime }

func (p PragmaStopParallelBlock) Hqslang() string                { return NameStopParallelBlock }
func (p PragmaStopParallelBlock) Tags() []string                 { return TagsFor(NameStopParallelBlock) }
func (p PragmaStopParallelBlock) IsParametrized() bool           { return anySymbolic(p.executionTime) }
func (p PragmaStopParallelBlock) InvolvedQubits() InvolvedQubits { return QubitSet(p.qubits...) }

func (p PragmaStopParallelBlock) RemapQubits(mapping map[int]int) (Operation, error) {
	qubits, err := remapQubitList(p.qubits, mapping)
	if err != nil {
		return nil, err
	}
	return PragmaStopParallelBlock{qubits: qubits, executionTime: p.executionTime}, nil
}

func (p PragmaStopParallelBlock) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	out := PragmaStopParallelBlock{qubits: slices.Clone(p.qubits), executionTime: p.executionTime}
	if err := substituteAll(calculator, &out.executionTime); err != nil {
		return nil, err
	}
	return out, nil
}

// PragmaGlobalPhase adds a global phase to the register.
type PragmaGlobalPhase struct {
	phase calc.CalculatorFloat
}

// NewPragmaGlobalPhase returns a pragma adding phase to the global phase.
func NewPragmaGlobalPhase(phase calc.CalculatorFloat) PragmaGlobalPhase {
	return PragmaGlobalPhase{phase: phase}
}

func (p PragmaGlobalPhase) Phase() calc.CalculatorFloat { return p.phase }

func (p PragmaGlobalPhase) Hqslang() string                { return NameGlobalPhase }
func (p PragmaGlobalPhase) Tags() []string                 { return TagsFor(NameGlobalPhase) }
func (p PragmaGlobalPhase) IsParametrized() bool           { return anySymbolic(p.phase) }
func (p PragmaGlobalPhase) InvolvedQubits() InvolvedQubits { return NoQubits() }

func (p PragmaGlobalPhase) RemapQubits(map[int]int) (Operation, error) { return p, nil }

func (p PragmaGlobalPhase) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	out := p
	if err := substituteAll(calculator, &out.phase); err != nil {
		return nil, err
	}
	return out, nil
}

// PragmaSleep idles the given qubits for sleepTime.
type PragmaSleep struct {
	qubits    []int
	sleepTime calc.CalculatorFloat
}

// NewPragmaSleep returns a pragma idling qubits for sleepTime. qubits is copied.
func NewPragmaSleep(qubits []int, sleepTime calc.CalculatorFloat) PragmaSleep {
	return PragmaSleep{qubits: slices.Clone(qubits), sleepTime: sleepTime}
}

func (p PragmaSleep) Qubits() []int                   { return slices.Clone(p.qubits) }
func (p PragmaSleep) SleepTime() calc.CalculatorFloat { return p.sleepTime }

func (p PragmaSleep) Hqslang() string                { return NameSleep }
func (p PragmaSleep) Tags() []string                 { return TagsFor(NameSleep) }
func (p PragmaSleep) IsParametrized() bool           { return anySymbolic(p.sleepTime) }
func (p PragmaSleep) InvolvedQubits() InvolvedQubits { return QubitSet(p.qubits...) }

func (p PragmaSleep) RemapQubits(mapping map[int]int) (Operation, error) {
	qubits, err := remapQubitList(p.qubits, mapping)
	if err != nil {
		return nil, err
	}
	return PragmaSleep{qubits: qubits, sleepTime: p.sleepTime}, nil
}

func (p PragmaSleep) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	out := PragmaSleep{qubits: slices.Clone(p.qubits), sleepTime: p.sleepTime}
	if err := substituteAll(calculator, &out.sleepTime); err != nil {
		return nil, err
	}
	return out, nil
}

// PragmaActiveReset resets one qubit to the zero state.
type PragmaActiveReset struct {
	qubit int
}

// NewPragmaActiveReset returns a pragma resetting qubit to |0⟩.
func NewPragmaActiveReset(qubit int) PragmaActiveReset {
	return PragmaActiveReset{qubit: qubit}
}

func (p PragmaActiveReset) Qubit() int { return p.qubit }

func (p PragmaActiveReset) Hqslang() string                { return NameActiveReset }
func (p PragmaActiveReset) Tags() []string                 { return TagsFor(NameActiveReset) }
func (p PragmaActiveReset) IsParametrized() bool           { return false }
func (p PragmaActiveReset) InvolvedQubits() InvolvedQubits { return QubitSet(p.qubit) }

func (p PragmaActiveReset) RemapQubits(mapping map[int]int) (Operation, error) {
	q, err := remapQubit(p.qubit, mapping)
	if err != nil {
		return nil, err
	}
	return PragmaActiveReset{qubit: q}, nil
}

func (p PragmaActiveReset) SubstituteParameters(*calc.Calculator) (Operation, error) {
	return p, nil
}

// PragmaStartDecompositionBlock opens a block that is decomposed as a unit.
// The reordering dictionary maps old qubit indices to new ones inside the block.
type PragmaStartDecompositionBlock struct {
	qubits               []int
	reorderingDictionary map[int]int
}

// NewPragmaStartDecompositionBlock returns a pragma opening a decomposition block. Both arguments are copied.
func NewPragmaStartDecompositionBlock(qubits []int, reorderingDictionary map[int]int) PragmaStartDecompositionBlock {
	return PragmaStartDecompositionBlock{
		qubits:               slices.Clone(qubits),
		reorderingDictionary: cloneMapping(reorderingDictionary),
	}
}

func (p PragmaStartDecompositionBlock) Qubits() []int { return slices.Clone(p.qubits) }
func (p PragmaStartDecompositionBlock) ReorderingDictionary() map[int]int {
	return cloneMapping(p.reorderingDictionary)
}

func (p PragmaStartDecompositionBlock) Hqslang() string      { return NameStartDecompositionBlock }
func (p PragmaStartDecompositionBlock) Tags() []string       { return TagsFor(NameStartDecompositionBlock) }
func (p PragmaStartDecompositionBlock) IsParametrized() bool { return false }
func (p PragmaStartDecompositionBlock) InvolvedQubits() InvolvedQubits {
	return QubitSet(p.qubits...)
}

// RemapQubits sends the block qubits and both sides of the reordering
// dictionary through mapping.
func (p PragmaStartDecompositionBlock) RemapQubits(mapping map[int]int) (Operation, error) {
	qubits, err := remapQubitList(p.qubits, mapping)
	if err != nil {
		return nil, err
	}
	reordering := make(map[int]int, len(p.reorderingDictionary))
	for _, oldQubit := range sortedKeys(p.reorderingDictionary) {
		k, err := remapQubit(oldQubit, mapping)
		if err != nil {
			return nil, err
		}
		v, err := remapQubit(p.reorderingDictionary[oldQubit], mapping)
		if err != nil {
			return nil, err
		}
		reordering[k] = v
	}
	return PragmaStartDecompositionBlock{qubits: qubits, reorderingDictionary: reordering}, nil
}

func (p PragmaStartDecompositionBlock) SubstituteParameters(*calc.Calculator) (Operation, error) {
	return NewPragmaStartDecompositionBlock(p.qubits, p.reorderingDictionary), nil
}

// PragmaStopDecompositionBlock closes a decomposition block.
type PragmaStopDecompositionBlock struct {
	qubits []int
}

// NewPragmaStopDecompositionBlock returns a pragma closing the decomposition block on qubits.
func NewPragmaStopDecompositionBlock(qubits []int) PragmaStopDecompositionBlock {
	return PragmaStopDecompositionBlock{qubits: slices.Clone(qubits)}
}

func (p PragmaStopDecompositionBlock) Qubits() []int { return slices.Clone(p.qubits) }

func (p PragmaStopDecompositionBlock) Hqslang() string      { return NameStopDecompositionBlock }
func (p PragmaStopDecompositionBlock) Tags() []string       { return TagsFor(NameStopDecompositionBlock) }
func (p PragmaStopDecompositionBlock) IsParametrized() bool { return false }
func (p PragmaStopDecompositionBlock) InvolvedQubits() InvolvedQubits {
	return QubitSet(p.qubits...)
}

func (p PragmaStopDecompositionBlock) RemapQubits(mapping map[int]int) (Operation, error) {
	qubits, err := remapQubitList(p.qubits, mapping)
	if err != nil {
		return nil, err
	}
	return PragmaStopDecompositionBlock{qubits: qubits}, nil
}

func (p PragmaStopDecompositionBlock) SubstituteParameters(*calc.Calculator) (Operation, error) {
	return NewPragmaStopDecompositionBlock(p.qubits), nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

func cloneCDense(m *mat.CDense) *mat.CDense {
	if m == nil {
		return nil
	}
	return cloneCMatrix(m)
}

func cloneCMatrix(m mat.CMatrix) *mat.CDense {
	r, c := m.Dims()
	data := make([]complex128, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return mat.NewCDense(r, c, data)
}

func cloneMapping(m map[int]int) map[int]int {
	if m == nil {
		return map[int]int{}
	}
	return maps.Clone(m)
}

// sortedKeys makes remap failures name the same qubit on every run.
func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
