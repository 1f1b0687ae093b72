package circuitfile

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"qpragma/calc"
	"qpragma/circuit"
	"qpragma/operations"
)

var (
	// ErrUnknownOperation is returned for an entry whose type is not a variant name.
	ErrUnknownOperation = errors.New("unknown operation type")
	// ErrMissingField is returned when an entry lacks a field its type needs.
	ErrMissingField = errors.New("missing field")
)

// Result is a loaded circuit together with the calculator seeded from the
// variables section.
type Result struct {
	Circuit    *circuit.Circuit
	Calculator *calc.Calculator
}

// Loader turns documents into circuits.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads the document at path.
func (l *Loader) Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read circuit file")
	}
	res, err := l.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	l.logger.Debug("loaded circuit",
		zap.String("path", path),
		zap.Int("operations", res.Circuit.Len()),
		zap.Int("variables", len(res.Calculator.Variables())),
	)
	return res, nil
}

// Parse decodes data and builds the circuit. Every invalid variable and entry
// is reported, not only the first one.
func (l *Loader) Parse(data []byte) (*Result, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode circuit document")
	}
	return l.Build(doc)
}

// Build evaluates the variables of doc and constructs its operations.
func (l *Loader) Build(doc Document) (*Result, error) {
	calculator := calc.NewCalculator()
	var errs error
	for _, v := range doc.Variables {
		value, err := calculator.Assign(v.Name, v.Expr)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "variables"))
			continue
		}
		l.logger.Debug("variable", zap.String("name", v.Name), zap.Float64("value", value))
	}

	ops, err := buildEntries(doc.Operations)
	errs = multierr.Append(errs, err)
	if errs != nil {
		l.logger.Warn("invalid circuit document", zap.Int("errors", len(multierr.Errors(errs))))
		return nil, errs
	}
	return &Result{Circuit: circuit.New(ops...), Calculator: calculator}, nil
}

func buildEntries(entries []Entry) ([]operations.Operation, error) {
	ops := make([]operations.Operation, 0, len(entries))
	var errs error
	for i, e := range entries {
		op, err := e.Build()
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "operation %d (line %d)", i, e.Line))
			continue
		}
		ops = append(ops, op)
	}
	return ops, errs
}

// Build constructs the operation described by e.
func (e Entry) Build() (operations.Operation, error) {
	switch e.Type {
	case operations.NameSetNumberOfMeasurements:
		return operations.NewPragmaSetNumberOfMeasurements(e.NumberMeasurements, e.Readout), nil
	case operations.NameSetStateVector:
		vec := make([]complex128, len(e.StateVector))
		for i, c := range e.StateVector {
			vec[i] = complex128(c)
		}
		return built(operations.NewPragmaSetStateVector(vec))
	case operations.NameSetDensityMatrix:
		m, err := matrix("density_matrix", e.DensityMatrix)
		if err != nil {
			return nil, err
		}
		return built(operations.NewPragmaSetDensityMatrix(m))
	case operations.NameRepeatGate:
		return operations.NewPragmaRepeatGate(e.RepetitionCoefficient), nil
	case operations.NameOverrotation:
		if e.Gate == "" {
			return nil, missing("gate")
		}
		return operations.NewPragmaOverrotation(e.Gate, e.Qubits, e.Amplitude, e.Variance), nil
	case operations.NameBoostNoise:
		coefficient, err := required("coefficient", e.Coefficient)
		if err != nil {
			return nil, err
		}
		return operations.NewPragmaBoostNoise(coefficient), nil
	case operations.NameStopParallelBlock:
		t, err := required("time", e.Time)
		if err != nil {
			return nil, err
		}
		return operations.NewPragmaStopParallelBlock(e.Qubits, t), nil
	case operations.NameGlobalPhase:
		phase, err := required("phase", e.Phase)
		if err != nil {
			return nil, err
		}
		return operations.NewPragmaGlobalPhase(phase), nil
	case operations.NameSleep:
		t, err := required("time", e.Time)
		if err != nil {
			return nil, err
		}
		return operations.NewPragmaSleep(e.Qubits, t), nil
	case operations.NameActiveReset:
		q, err := e.qubit()
		if err != nil {
			return nil, err
		}
		return operations.NewPragmaActiveReset(q), nil
	case operations.NameStartDecompositionBlock:
		return operations.NewPragmaStartDecompositionBlock(e.Qubits, e.Reordering), nil
	case operations.NameStopDecompositionBlock:
		return operations.NewPragmaStopDecompositionBlock(e.Qubits), nil
	case operations.NameDamping, operations.NameDepolarising, operations.NameDephasing:
		return e.rateNoise()
	case operations.NameRandomNoise:
		q, err := e.qubit()
		if err != nil {
			return nil, err
		}
		gateTime, err := required("gate_time", e.GateTime)
		if err != nil {
			return nil, err
		}
		dep, err := required("depolarising_rate", e.DepolarisingRate)
		if err != nil {
			return nil, err
		}
		deph, err := required("dephasing_rate", e.DephasingRate)
		if err != nil {
			return nil, err
		}
		return operations.NewPragmaRandomNoise(q, gateTime, dep, deph), nil
	case operations.NameGeneralNoise:
		q, err := e.qubit()
		if err != nil {
			return nil, err
		}
		gateTime, err := required("gate_time", e.GateTime)
		if err != nil {
			return nil, err
		}
		rate, err := required("rate", e.Rate)
		if err != nil {
			return nil, err
		}
		m, err := matrix("operators", e.Operators)
		if err != nil {
			return nil, err
		}
		return built(operations.NewPragmaGeneralNoise(q, gateTime, rate, m))
	case operations.NameConditional:
		if e.Register == "" {
			return nil, missing("register")
		}
		ops, err := buildEntries(e.Circuit)
		if err != nil {
			return nil, errors.Wrap(err, "conditional circuit")
		}
		return operations.NewPragmaConditional(e.Register, e.Index, circuit.New(ops...)), nil
	case "":
		return nil, missing("type")
	}
	return nil, errors.Wrapf(ErrUnknownOperation, "%q", e.Type)
}

func (e Entry) rateNoise() (operations.Operation, error) {
	q, err := e.qubit()
	if err != nil {
		return nil, err
	}
	gateTime, err := required("gate_time", e.GateTime)
	if err != nil {
		return nil, err
	}
	rate, err := required("rate", e.Rate)
	if err != nil {
		return nil, err
	}
	switch e.Type {
	case operations.NameDamping:
		return operations.NewPragmaDamping(q, gateTime, rate), nil
	case operations.NameDepolarising:
		return operations.NewPragmaDepolarising(q, gateTime, rate), nil
	}
	return operations.NewPragmaDephasing(q, gateTime, rate), nil
}

func (e Entry) qubit() (int, error) {
	if e.Qubit == nil {
		return 0, missing("qubit")
	}
	return *e.Qubit, nil
}

func required(field string, p Param) (calc.CalculatorFloat, error) {
	if !p.set {
		return calc.CalculatorFloat{}, missing(field)
	}
	return p.value, nil
}

func missing(field string) error {
	return errors.Wrap(ErrMissingField, field)
}

func built[T operations.Operation](op T, err error) (operations.Operation, error) {
	if err != nil {
		return nil, err
	}
	return op, nil
}

func matrix(field string, rows [][]Complex) (*mat.CDense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, missing(field)
	}
	cols := len(rows[0])
	data := make([]complex128, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(operations.ErrInvalidPayload, "%s row %d has %d columns, want %d", field, i, len(row), cols)
		}
		for _, c := range row {
			data = append(data, complex128(c))
		}
	}
	return mat.NewCDense(len(rows), cols, data), nil
}
