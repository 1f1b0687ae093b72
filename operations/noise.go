package operations

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"qpragma/calc"
)

// rateNoise is the payload shared by the single rate noise channels.
type rateNoise struct {
	qubit    int
	gateTime calc.CalculatorFloat
	rate     calc.CalculatorFloat
}

func (n rateNoise) Qubit() int                     { return n.qubit }
func (n rateNoise) GateTime() calc.CalculatorFloat { return n.gateTime }
func (n rateNoise) Rate() calc.CalculatorFloat     { return n.rate }
func (n rateNoise) InvolvedQubits() InvolvedQubits { return QubitSet(n.qubit) }
func (n rateNoise) IsParametrized() bool           { return anySymbolic(n.gateTime, n.rate) }

func (n rateNoise) remap(mapping map[int]int) (rateNoise, error) {
	q, err := remapQubit(n.qubit, mapping)
	if err != nil {
		return rateNoise{}, err
	}
	n.qubit = q
	return n, nil
}

func (n rateNoise) substitute(calculator *calc.Calculator) (rateNoise, error) {
	if err := substituteAll(calculator, &n.gateTime, &n.rate); err != nil {
		return rateNoise{}, err
	}
	return n, nil
}

// decay returns 1 - exp(coefficient * gateTime * rate) for concrete parameters.
func (n rateNoise) decay(coefficient float64) (float64, error) {
	return decay(n.gateTime, n.rate, coefficient)
}

// probability is factor * (1 - exp(coefficient * gateTime * rate)), kept symbolic.
func (n rateNoise) probability(coefficient, factor float64) calc.CalculatorFloat {
	return n.gateTime.Mul(n.rate).Mul(calc.Float(coefficient)).
		Exp().Mul(calc.Float(-1)).Add(calc.Float(1)).
		Mul(calc.Float(factor))
}

func (n rateNoise) power(power calc.CalculatorFloat) rateNoise {
	n.gateTime = power.Mul(n.gateTime)
	return n
}

func decay(gateTime, rate calc.CalculatorFloat, coefficient float64) (float64, error) {
	gt, err := gateTime.Float64()
	if err != nil {
		return 0, err
	}
	r, err := rate.Float64()
	if err != nil {
		return 0, err
	}
	return 1 - math.Exp(coefficient*gt*r), nil
}

func dephasingSuperoperator(prob float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1 - 2*prob, 0, 0,
		0, 0, 1 - 2*prob, 0,
		0, 0, 0, 1,
	})
}

// PragmaDamping is amplitude damping of one qubit towards the zero state.
type PragmaDamping struct {
	rateNoise
}

// NewPragmaDamping returns an amplitude damping channel on qubit.
func NewPragmaDamping(qubit int, gateTime, rate calc.CalculatorFloat) PragmaDamping {
	return PragmaDamping{rateNoise{qubit: qubit, gateTime: gateTime, rate: rate}}
}

func (p PragmaDamping) Hqslang() string { return NameDamping }
func (p PragmaDamping) Tags() []string  { return TagsFor(NameDamping) }

func (p PragmaDamping) RemapQubits(mapping map[int]int) (Operation, error) {
	n, err := p.remap(mapping)
	if err != nil {
		return nil, err
	}
	return PragmaDamping{n}, nil
}

func (p PragmaDamping) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	n, err := p.substitute(calculator)
	if err != nil {
		return nil, err
	}
	return PragmaDamping{n}, nil
}

func (p PragmaDamping) Superoperator() (*mat.Dense, error) {
	prob, err := p.decay(-1)
	if err != nil {
		return nil, err
	}
	sqrt := math.Sqrt(1 - prob)
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, prob,
		0, sqrt, 0, 0,
		0, 0, sqrt, 0,
		0, 0, 0, 1 - prob,
	}), nil
}

func (p PragmaDamping) Probability() calc.CalculatorFloat {
	return p.probability(-2, 0.5)
}

func (p PragmaDamping) PowerCF(power calc.CalculatorFloat) PragmaNoiseOperation {
	return PragmaDamping{p.power(power)}
}

// PragmaDepolarising is depolarising noise on one qubit.
type PragmaDepolarising struct {
	rateNoise
}

// NewPragmaDepolarising returns a depolarising channel on qubit.
func NewPragmaDepolarising(qubit int, gateTime, rate calc.CalculatorFloat) PragmaDepolarising {
	return PragmaDepolarising{rateNoise{qubit: qubit, gateTime: gateTime, rate: rate}}
}

func (p PragmaDepolarising) Hqslang() string { return NameDepolarising }
func (p PragmaDepolarising) Tags() []string  { return TagsFor(NameDepolarising) }

func (p PragmaDepolarising) RemapQubits(mapping map[int]int) (Operation, error) {
	n, err := p.remap(mapping)
	if err != nil {
		return nil, err
	}
	return PragmaDepolarising{n}, nil
}

func (p PragmaDepolarising) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	n, err := p.substitute(calculator)
	if err != nil {
		return nil, err
	}
	return PragmaDepolarising{n}, nil
}

func (p PragmaDepolarising) Superoperator() (*mat.Dense, error) {
	d, err := p.decay(-1)
	if err != nil {
		return nil, err
	}
	prob := 0.75 * d
	a1 := 1 - (2.0/3.0)*prob
	a2 := 1 - (4.0/3.0)*prob
	a3 := (2.0 / 3.0) * prob
	return mat.NewDense(4, 4, []float64{
		a1, 0, 0, a3,
		0, a2, 0, 0,
		0, 0, a2, 0,
		a3, 0, 0, a1,
	}), nil
}

func (p PragmaDepolarising) Probability() calc.CalculatorFloat {
	return p.probability(-1, 0.75)
}

func (p PragmaDepolarising) PowerCF(power calc.CalculatorFloat) PragmaNoiseOperation {
	return PragmaDepolarising{p.power(power)}
}

// PragmaDephasing is pure dephasing of one qubit.
type PragmaDephasing struct {
	rateNoise
}

// NewPragmaDephasing returns a dephasing channel on qubit.
func NewPragmaDephasing(qubit int, gateTime, rate calc.CalculatorFloat) PragmaDephasing {
	return PragmaDephasing{rateNoise{qubit: qubit, gateTime: gateTime, rate: rate}}
}

func (p PragmaDephasing) Hqslang() string { return NameDephasing }
func (p PragmaDephasing) Tags() []string  { return TagsFor(NameDephasing) }

func (p PragmaDephasing) RemapQubits(mapping map[int]int) (Operation, error) {
	n, err := p.remap(mapping)
	if err != nil {
		return nil, err
	}
	return PragmaDephasing{n}, nil
}

func (p PragmaDephasing) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	n, err := p.substitute(calculator)
	if err != nil {
		return nil, err
	}
	return PragmaDephasing{n}, nil
}

func (p PragmaDephasing) Superoperator() (*mat.Dense, error) {
	d, err := p.decay(-2)
	if err != nil {
		return nil, err
	}
	return dephasingSuperoperator(0.5 * d), nil
}

func (p PragmaDephasing) Probability() calc.CalculatorFloat {
	return p.probability(-2, 0.5)
}

func (p PragmaDephasing) PowerCF(power calc.CalculatorFloat) PragmaNoiseOperation {
	return PragmaDephasing{p.power(power)}
}

// PragmaRandomNoise is stochastic depolarising and dephasing noise on one qubit.
type PragmaRandomNoise struct {
	qubit            int
	gateTime         calc.CalculatorFloat
	depolarisingRate calc.CalculatorFloat
	dephasingRate    calc.CalculatorFloat
}

// NewPragmaRandomNoise returns a stochastic mix of depolarising and dephasing noise on qubit.
func NewPragmaRandomNoise(qubit int, gateTime, depolarisingRate, dephasingRate calc.CalculatorFloat) PragmaRandomNoise {
	return PragmaRandomNoise{
		qubit:            qubit,
		gateTime:         gateTime,
		depolarisingRate: depolarisingRate,
		dephasingRate:    dephasingRate,
	}
}

func (p PragmaRandomNoise) Qubit() int                             { return p.qubit }
func (p PragmaRandomNoise) GateTime() calc.CalculatorFloat         { return p.gateTime }
func (p PragmaRandomNoise) DepolarisingRate() calc.CalculatorFloat { return p.depolarisingRate }
func (p PragmaRandomNoise) DephasingRate() calc.CalculatorFloat    { return p.dephasingRate }

func (p PragmaRandomNoise) Hqslang() string { return NameRandomNoise }
func (p PragmaRandomNoise) Tags() []string  { return TagsFor(NameRandomNoise) }
func (p PragmaRandomNoise) IsParametrized() bool {
	return anySymbolic(p.gateTime, p.depolarisingRate, p.dephasingRate)
}
func (p PragmaRandomNoise) InvolvedQubits() InvolvedQubits { return QubitSet(p.qubit) }

func (p PragmaRandomNoise) RemapQubits(mapping map[int]int) (Operation, error) {
	q, err := remapQubit(p.qubit, mapping)
	if err != nil {
		return nil, err
	}
	out := p
	out.qubit = q
	return out, nil
}

func (p PragmaRandomNoise) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	out := p
	if err := substituteAll(calculator, &out.gateTime, &out.depolarisingRate, &out.dephasingRate); err != nil {
		return nil, err
	}
	return out, nil
}

// Superoperator averages the stochastic trajectories, which leaves only the
// dephasing part of the noise.
func (p PragmaRandomNoise) Superoperator() (*mat.Dense, error) {
	d, err := decay(p.gateTime, p.dephasingRate, -2)
	if err != nil {
		return nil, err
	}
	return dephasingSuperoperator(0.5 * d), nil
}

// Probability is the first order estimate gateTime * (3*dep/4 + deph).
func (p PragmaRandomNoise) Probability() calc.CalculatorFloat {
	quarter := p.depolarisingRate.Div(calc.Float(4))
	rates := []calc.CalculatorFloat{quarter, quarter, quarter.Add(p.dephasingRate)}
	return rates[0].Add(rates[1]).Add(rates[2]).Mul(p.gateTime)
}

func (p PragmaRandomNoise) PowerCF(power calc.CalculatorFloat) PragmaNoiseOperation {
	out := p
	out.gateTime = power.Mul(p.gateTime)
	return out
}

// PragmaGeneralNoise is a Lindblad type noise on one qubit whose 3x3
// coefficient matrix is supplied by the caller.
type PragmaGeneralNoise struct {
	qubit     int
	gateTime  calc.CalculatorFloat
	rate      calc.CalculatorFloat
	operators *mat.CDense
}

// NewPragmaGeneralNoise copies operators, which must be 3x3.
func NewPragmaGeneralNoise(qubit int, gateTime, rate calc.CalculatorFloat, operators mat.CMatrix) (PragmaGeneralNoise, error) {
	if operators == nil {
		return PragmaGeneralNoise{}, invalidPayload("nil noise operators")
	}
	if r, c := operators.Dims(); r != 3 || c != 3 {
		return PragmaGeneralNoise{}, invalidPayload("noise operators of shape %dx%d, want 3x3", r, c)
	}
	return PragmaGeneralNoise{
		qubit:     qubit,
		gateTime:  gateTime,
		rate:      rate,
		operators: cloneCMatrix(operators),
	}, nil
}

func (p PragmaGeneralNoise) Qubit() int                     { return p.qubit }
func (p PragmaGeneralNoise) GateTime() calc.CalculatorFloat { return p.gateTime }
func (p PragmaGeneralNoise) Rate() calc.CalculatorFloat     { return p.rate }
func (p PragmaGeneralNoise) Operators() *mat.CDense         { return cloneCDense(p.operators) }

func (p PragmaGeneralNoise) Hqslang() string                { return NameGeneralNoise }
func (p PragmaGeneralNoise) Tags() []string                 { return TagsFor(NameGeneralNoise) }
func (p PragmaGeneralNoise) IsParametrized() bool           { return anySymbolic(p.gateTime, p.rate) }
func (p PragmaGeneralNoise) InvolvedQubits() InvolvedQubits { return QubitSet(p.qubit) }

func (p PragmaGeneralNoise) RemapQubits(mapping map[int]int) (Operation, error) {
	q, err := remapQubit(p.qubit, mapping)
	if err != nil {
		return nil, err
	}
	out := p
	out.qubit = q
	out.operators = cloneCDense(p.operators)
	return out, nil
}

func (p PragmaGeneralNoise) SubstituteParameters(calculator *calc.Calculator) (Operation, error) {
	out := p
	out.operators = cloneCDense(p.operators)
	if err := substituteAll(calculator, &out.gateTime, &out.rate); err != nil {
		return nil, err
	}
	return out, nil
}
