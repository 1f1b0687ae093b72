package operations

import (
	"fmt"
	"slices"
	"strings"
)

// Involvement says how an operation relates to the qubits of a circuit.
type Involvement int

const (
	// InvolveNone means no qubit is structurally tied to the operation.
	InvolveNone Involvement = iota
	// InvolveAll means the operation acts on the whole register.
	InvolveAll
	// InvolveSet means the operation acts on an enumerable set of qubits.
	InvolveSet
)

func (i Involvement) String() string {
	switch i {
	case InvolveNone:
		return "None"
	case InvolveAll:
		return "All"
	case InvolveSet:
		return "Set"
	}
	return fmt.Sprintf("Involvement(%d)", int(i))
}

// InvolvedQubits is the result of qubit-involvement analysis.
// Qubits is sorted, duplicate free and only populated for InvolveSet.
type InvolvedQubits struct {
	Kind   Involvement
	Qubits []int
}

// NoQubits returns the None involvement.
func NoQubits() InvolvedQubits {
	return InvolvedQubits{Kind: InvolveNone}
}

// AllQubits returns the All involvement.
func AllQubits() InvolvedQubits {
	return InvolvedQubits{Kind: InvolveAll}
}

// QubitSet returns an explicit set involvement of qubits.
func QubitSet(qubits ...int) InvolvedQubits {
	set := slices.Clone(qubits)
	if set == nil {
		set = []int{}
	}
	slices.Sort(set)
	return InvolvedQubits{Kind: InvolveSet, Qubits: slices.Compact(set)}
}

// Contains reports whether qubit is touched. All contains every qubit.
func (iq InvolvedQubits) Contains(qubit int) bool {
	switch iq.Kind {
	case InvolveAll:
		return true
	case InvolveSet:
		_, found := slices.BinarySearch(iq.Qubits, qubit)
		return found
	}
	return false
}

// Union combines two involvements the way a circuit aggregates its operations:
// All absorbs everything and None is the identity.
func (iq InvolvedQubits) Union(other InvolvedQubits) InvolvedQubits {
	switch {
	case iq.Kind == InvolveAll || other.Kind == InvolveAll:
		return AllQubits()
	case iq.Kind == InvolveNone:
		return other.clone()
	case other.Kind == InvolveNone:
		return iq.clone()
	}
	return QubitSet(append(slices.Clone(iq.Qubits), other.Qubits...)...)
}

// Overlaps reports whether two involvements may touch a common qubit.
// All overlaps everything except None.
func (iq InvolvedQubits) Overlaps(other InvolvedQubits) bool {
	switch {
	case iq.Kind == InvolveNone || other.Kind == InvolveNone:
		return false
	case iq.Kind == InvolveAll || other.Kind == InvolveAll:
		return true
	}
	for _, q := range iq.Qubits {
		if other.Contains(q) {
			return true
		}
	}
	return false
}

func (iq InvolvedQubits) clone() InvolvedQubits {
	if iq.Kind != InvolveSet {
		return InvolvedQubits{Kind: iq.Kind}
	}
	return QubitSet(iq.Qubits...)
}

func (iq InvolvedQubits) String() string {
	if iq.Kind != InvolveSet {
		return iq.Kind.String()
	}
	parts := make([]string, len(iq.Qubits))
	for i, q := range iq.Qubits {
		parts[i] = fmt.Sprint(q)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
