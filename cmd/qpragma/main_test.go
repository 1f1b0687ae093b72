package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qpragma/calc"
	"qpragma/circuit"
	"qpragma/internal/circuitfile"
	"qpragma/operations"
)

const testCircuit = `
variables:
  t: 0.5
operations:
  - type: PragmaActiveReset
    qubit: 0
  - type: PragmaDamping
    qubit: 1
    gate_time: t
    rate: 0.01
  - type: PragmaSleep
    qubits: [0, 1]
    time: gamma
`

func writeCircuit(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "circuit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCircuit), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(args, &out)
	return out.String(), err
}

func TestShow(t *testing.T) {
	path := writeCircuit(t)

	out, err := run(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, operations.NameActiveReset)
	assert.Contains(t, out, operations.NameDamping)
	assert.Contains(t, out, "{0, 1}")
	assert.Contains(t, out, "3 operation(s)")

	t.Setenv("QPRAGMA_FILE", path)
	fromEnv, err := run(t, "show")
	require.NoError(t, err)
	assert.Equal(t, out, fromEnv)
}

func TestShowWithoutFile(t *testing.T) {
	t.Setenv("QPRAGMA_FILE", "")
	_, err := run(t, "show")
	assert.ErrorContains(t, err, "no circuit file")
}

func TestTags(t *testing.T) {
	out, err := run(t, "tags", operations.NameDamping)
	require.NoError(t, err)
	assert.Contains(t, out, operations.TagPragmaNoiseOperation)
	assert.NotContains(t, out, operations.NameSleep)

	out, err = run(t, "tags")
	require.NoError(t, err)
	for _, name := range operations.Variants() {
		assert.Contains(t, out, name)
	}

	_, err = run(t, "tags", "PragmaNope")
	assert.ErrorContains(t, err, "PragmaNope")
}

func TestRemap(t *testing.T) {
	path := writeCircuit(t)
	dst := filepath.Join(t.TempDir(), "remapped.yaml")

	_, err := run(t, "remap", path, "--map", "0:2,1:3", "--out", dst)
	require.NoError(t, err)
	res, err := circuitfile.NewLoader(nil).Load(dst)
	require.NoError(t, err)
	assert.Equal(t, operations.QubitSet(2, 3), res.Circuit.InvolvedQubits())

	_, err = run(t, "remap", path, "--map", "0:2")
	var mappingErr *operations.QubitMappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, 1, mappingErr.Qubit)
}

func TestSubstitute(t *testing.T) {
	path := writeCircuit(t)

	_, err := run(t, "substitute", path)
	assert.ErrorIs(t, err, calc.ErrVariableNotSet)

	out, err := run(t, "substitute", path, "--set", "gamma=2*t")
	require.NoError(t, err)
	res, err := circuitfile.NewLoader(nil).Parse([]byte(out))
	require.NoError(t, err)
	assert.False(t, res.Circuit.IsParametrized())
	want := circuit.New(
		operations.NewPragmaActiveReset(0),
		operations.NewPragmaDamping(1, calc.Float(0.5), calc.Float(0.01)),
		operations.NewPragmaSleep([]int{0, 1}, calc.Float(1)),
	)
	assert.Equal(t, want, res.Circuit)
}

func TestNoise(t *testing.T) {
	path := writeCircuit(t)

	out, err := run(t, "noise", path)
	require.NoError(t, err)
	assert.Contains(t, out, operations.NameDamping)
	assert.NotContains(t, out, operations.NameSleep)

	powered, err := run(t, "noise", path, "--power", "2")
	require.NoError(t, err)
	assert.NotEqual(t, out, powered)
}
