package operations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"qpragma/calc"
)

// sampleOperations returns one instance of every variant that does not need
// a sub-circuit.
func sampleOperations(t *testing.T) []Operation {
	t.Helper()

	sv, err := NewPragmaSetStateVector([]complex128{1, 0, 0, 0})
	require.NoError(t, err)
	dm, err := NewPragmaSetDensityMatrix(mat.NewCDense(2, 2, []complex128{1, 0, 0, 0}))
	require.NoError(t, err)
	gn, err := NewPragmaGeneralNoise(2, calc.Float(0.1), calc.Str("gamma"),
		mat.NewCDense(3, 3, []complex128{1, 0, 0, 0, 1, 0, 0, 0, 1}))
	require.NoError(t, err)

	return []Operation{
		NewPragmaSetNumberOfMeasurements(100, "ro"),
		sv,
		dm,
		NewPragmaRepeatGate(3),
		NewPragmaOverrotation("RotateX", []int{0, 1}, 0.03, 0.001),
		NewPragmaBoostNoise(calc.Float(1.5)),
		NewPragmaStopParallelBlock([]int{1, 0}, calc.Str("t")),
		NewPragmaGlobalPhase(calc.Float(math.Pi / 2)),
		NewPragmaSleep([]int{0, 2}, calc.Float(0.001)),
		NewPragmaActiveReset(1),
		NewPragmaStartDecompositionBlock([]int{0, 1}, map[int]int{0: 1, 1: 0}),
		NewPragmaStopDecompositionBlock([]int{0, 1}),
		NewPragmaDamping(0, calc.Float(0.01), calc.Float(2)),
		NewPragmaDepolarising(1, calc.Str("t"), calc.Float(2)),
		NewPragmaDephasing(2, calc.Float(0.01), calc.Float(2)),
		NewPragmaRandomNoise(0, calc.Float(0.01), calc.Float(1), calc.Float(2)),
		gn,
	}
}

func shiftMapping() map[int]int {
	m := make(map[int]int)
	for q := 0; q < 10; q++ {
		m[q] = q + 10
	}
	return m
}

func identityMapping() map[int]int {
	m := make(map[int]int)
	for q := 0; q < 10; q++ {
		m[q] = q
	}
	return m
}

func TestInvolvedQubitsPerVariant(t *testing.T) {
	want := map[string]InvolvedQubits{
		NameSetNumberOfMeasurements: NoQubits(),
		NameSetStateVector:          AllQubits(),
		NameSetDensityMatrix:        AllQubits(),
		NameRepeatGate:              AllQubits(),
		NameOverrotation:            QubitSet(0, 1),
		NameBoostNoise:              NoQubits(),
		NameStopParallelBlock:       QubitSet(0, 1),
		NameGlobalPhase:             NoQubits(),
		NameSleep:                   QubitSet(0, 2),
		NameActiveReset:             QubitSet(1),
		NameStartDecompositionBlock: QubitSet(0, 1),
		NameStopDecompositionBlock:  QubitSet(0, 1),
		NameDamping:                 QubitSet(0),
		NameDepolarising:            QubitSet(1),
		NameDephasing:               QubitSet(2),
		NameRandomNoise:             QubitSet(0),
		NameGeneralNoise:            QubitSet(2),
	}

	for _, op := range sampleOperations(t) {
		expected, ok := want[op.Hqslang()]
		require.True(t, ok, op.Hqslang())
		assert.Equal(t, expected, op.InvolvedQubits(), op.Hqslang())
		assert.Equal(t, op.InvolvedQubits(), op.InvolvedQubits(), "%s must be deterministic", op.Hqslang())
	}
}

func TestRemapQubitsIsHomomorphism(t *testing.T) {
	mapping := shiftMapping()
	for _, op := range sampleOperations(t) {
		remapped, err := op.RemapQubits(mapping)
		require.NoError(t, err, op.Hqslang())
		assert.Equal(t, op.Hqslang(), remapped.Hqslang())

		before := op.InvolvedQubits()
		after := remapped.InvolvedQubits()
		if before.Kind != InvolveSet {
			assert.Equal(t, before, after, op.Hqslang())
			continue
		}
		expected := make([]int, len(before.Qubits))
		for i, q := range before.Qubits {
			expected[i] = mapping[q]
		}
		assert.Equal(t, QubitSet(expected...), after, op.Hqslang())
	}
}

func TestRemapQubitsIdentity(t *testing.T) {
	for _, op := range sampleOperations(t) {
		remapped, err := op.RemapQubits(identityMapping())
		require.NoError(t, err, op.Hqslang())
		assert.Equal(t, op, remapped, op.Hqslang())
	}
}

func TestRemapQubitsMissingQubit(t *testing.T) {
	_, err := NewPragmaActiveReset(5).RemapQubits(map[int]int{0: 1})
	var mappingErr *QubitMappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, 5, mappingErr.Qubit)
	assert.ErrorIs(t, err, ErrQubitMapping)

	tests := []struct {
		name    string
		op      Operation
		mapping map[int]int
		missing int
	}{
		{"sleep", NewPragmaSleep([]int{0, 3}, calc.Float(1)), map[int]int{0: 0}, 3},
		{"damping", NewPragmaDamping(4, calc.Float(1), calc.Float(1)), map[int]int{0: 0}, 4},
		{"reordering key", NewPragmaStartDecompositionBlock([]int{0}, map[int]int{2: 0}), map[int]int{0: 1}, 2},
		{"reordering value", NewPragmaStartDecompositionBlock([]int{0}, map[int]int{0: 7}), map[int]int{0: 1}, 7},
		{"stop block", NewPragmaStopDecompositionBlock([]int{6}), map[int]int{}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.op.RemapQubits(tt.mapping)
			assert.Nil(t, out)
			var mErr *QubitMappingError
			require.ErrorAs(t, err, &mErr)
			assert.Equal(t, tt.missing, mErr.Qubit)
		})
	}
}

func TestRemapOperationsWithoutQubits(t *testing.T) {
	ops := []Operation{
		NewPragmaSetNumberOfMeasurements(10, "ro"),
		NewPragmaBoostNoise(calc.Float(2)),
		NewPragmaGlobalPhase(calc.Str("phi")),
		NewPragmaRepeatGate(2),
	}
	for _, op := range ops {
		remapped, err := op.RemapQubits(map[int]int{})
		require.NoError(t, err, op.Hqslang())
		assert.Equal(t, op, remapped)
	}
}

func TestStartDecompositionBlockRemapsReordering(t *testing.T) {
	op := NewPragmaStartDecompositionBlock([]int{0, 1}, map[int]int{0: 1, 1: 0})
	remapped, err := op.RemapQubits(map[int]int{0: 5, 1: 6})
	require.NoError(t, err)

	block := remapped.(PragmaStartDecompositionBlock)
	assert.Equal(t, []int{5, 6}, block.Qubits())
	assert.Equal(t, map[int]int{5: 6, 6: 5}, block.ReorderingDictionary())
	assert.Equal(t, map[int]int{0: 1, 1: 0}, op.ReorderingDictionary(), "receiver must not change")
}

func TestSubstituteParameters(t *testing.T) {
	c := calc.NewCalculator()
	c.SetVariable("t", 0.25)
	c.SetVariable("phi", math.Pi)

	sleep := NewPragmaSleep([]int{0, 1}, calc.Str("2 * t"))
	assert.True(t, sleep.IsParametrized())

	out, err := sleep.SubstituteParameters(c)
	require.NoError(t, err)
	got := out.(PragmaSleep)
	assert.False(t, got.IsParametrized())
	assert.Equal(t, calc.Float(0.5), got.SleepTime())
	assert.Equal(t, []int{0, 1}, got.Qubits())
	assert.Equal(t, calc.Str("2 * t"), sleep.SleepTime(), "receiver must not change")

	phase, err := NewPragmaGlobalPhase(calc.Str("phi / 2")).SubstituteParameters(c)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, mustFloat(t, phase.(PragmaGlobalPhase).Phase()), 1e-12)

	for _, op := range sampleOperations(t) {
		if op.Hqslang() == NameGeneralNoise {
			continue
		}
		sub, err := op.SubstituteParameters(c)
		require.NoError(t, err, op.Hqslang())
		assert.False(t, sub.IsParametrized(), op.Hqslang())
		assert.Equal(t, op.InvolvedQubits(), sub.InvolvedQubits())
	}
}

func TestSubstituteParametersErrors(t *testing.T) {
	c := calc.NewCalculator()

	_, err := NewPragmaBoostNoise(calc.Str("boost")).SubstituteParameters(c)
	var notSet *calc.VariableNotSetError
	require.ErrorAs(t, err, &notSet)
	assert.Equal(t, "boost", notSet.Name)

	op := NewPragmaStopParallelBlock([]int{0}, calc.Str("1 +"))
	out, err := op.SubstituteParameters(c)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, calc.ErrParse)
}

func TestDecompositionMarkersSubstituteToCopy(t *testing.T) {
	start := NewPragmaStartDecompositionBlock([]int{0, 1}, map[int]int{0: 1})
	out, err := start.SubstituteParameters(nil)
	require.NoError(t, err)
	assert.Equal(t, start, out)

	stop := NewPragmaStopDecompositionBlock([]int{0, 1})
	out, err = stop.SubstituteParameters(nil)
	require.NoError(t, err)
	assert.Equal(t, stop, out)
}

func TestAccessorsReturnCopies(t *testing.T) {
	sleep := NewPragmaSleep([]int{0, 1}, calc.Float(1))
	qubits := sleep.Qubits()
	qubits[0] = 9
	assert.Equal(t, []int{0, 1}, sleep.Qubits())

	input := []int{3, 4}
	block := NewPragmaStopDecompositionBlock(input)
	input[0] = 7
	assert.Equal(t, []int{3, 4}, block.Qubits())

	sv, err := NewPragmaSetStateVector([]complex128{1, 0})
	require.NoError(t, err)
	vec := sv.Statevector()
	vec[0] = 0
	assert.Equal(t, []complex128{1, 0}, sv.Statevector())

	dm, err := NewPragmaSetDensityMatrix(mat.NewCDense(2, 2, []complex128{1, 0, 0, 0}))
	require.NoError(t, err)
	m := dm.DensityMatrix()
	m.Set(0, 0, 0)
	assert.Equal(t, complex(1, 0), dm.DensityMatrix().At(0, 0))
}

func TestPayloadValidation(t *testing.T) {
	_, err := NewPragmaSetStateVector([]complex128{1, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = NewPragmaSetStateVector(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = NewPragmaSetStateVector([]complex128{1})
	assert.NoError(t, err)

	_, err = NewPragmaSetDensityMatrix(mat.NewCDense(2, 4, nil))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = NewPragmaSetDensityMatrix(mat.NewCDense(3, 3, nil))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = NewPragmaSetDensityMatrix(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestIsParametrized(t *testing.T) {
	assert.False(t, NewPragmaActiveReset(0).IsParametrized())
	assert.False(t, NewPragmaDamping(0, calc.Float(1), calc.Float(1)).IsParametrized())
	assert.True(t, NewPragmaDamping(0, calc.Float(1), calc.Str("rate")).IsParametrized())
	assert.True(t, NewPragmaRandomNoise(0, calc.Float(1), calc.Float(1), calc.Str("d")).IsParametrized())
}

func TestCapabilityInterfaces(t *testing.T) {
	for _, op := range sampleOperations(t) {
		_, single := op.(SingleQubitOperation)
		_, multi := op.(MultiQubitOperation)
		_, noise := op.(PragmaNoiseOperation)
		assert.Equal(t, HasTag(op, TagSingleQubitOperation), single, op.Hqslang())
		assert.Equal(t, HasTag(op, TagMultiQubitOperation), multi, op.Hqslang())
		assert.Equal(t, HasTag(op, TagPragmaNoiseOperation), noise, op.Hqslang())
	}
}

func mustFloat(t *testing.T, cf calc.CalculatorFloat) float64 {
	t.Helper()
	v, err := cf.Float64()
	require.NoError(t, err)
	return v
}
