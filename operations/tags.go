package operations

import (
	"slices"
	"sort"
)

// Capability tags shared across variants.
const (
	TagOperation            = "Operation"
	TagPragmaOperation      = "PragmaOperation"
	TagSingleQubitOperation = "SingleQubitOperation"
	TagMultiQubitOperation  = "MultiQubitOperation"
	TagPragmaNoiseOperation = "PragmaNoiseOperation"
)

// Variant names as returned by Hqslang.
const (
	NameSetNumberOfMeasurements = "PragmaSetNumberOfMeasurements"
	NameSetStateVector          = "PragmaSetStateVector"
	NameSetDensityMatrix        = "PragmaSetDensityMatrix"
	NameRepeatGate              = "PragmaRepeatGate"
	NameOverrotation            = "PragmaOverrotation"
	NameBoostNoise              = "PragmaBoostNoise"
	NameStopParallelBlock       = "PragmaStopParallelBlock"
	NameGlobalPhase             = "PragmaGlobalPhase"
	NameSleep                   = "PragmaSleep"
	NameActiveReset             = "PragmaActiveReset"
	NameStartDecompositionBlock = "PragmaStartDecompositionBlock"
	NameStopDecompositionBlock  = "PragmaStopDecompositionBlock"
	NameDamping                 = "PragmaDamping"
	NameDepolarising            = "PragmaDepolarising"
	NameDephasing               = "PragmaDephasing"
	NameRandomNoise             = "PragmaRandomNoise"
	NameGeneralNoise            = "PragmaGeneralNoise"
	NameConditional             = "PragmaConditional"
)

func pragma(name string) []string {
	return []string{TagOperation, TagPragmaOperation, name}
}

func multiQubitPragma(name string) []string {
	return []string{TagOperation, TagMultiQubitOperation, TagPragmaOperation, name}
}

func singleQubitPragma(name string) []string {
	return []string{TagOperation, TagSingleQubitOperation, TagPragmaOperation, name}
}

func noisePragma(name string) []string {
	return []string{TagOperation, TagSingleQubitOperation, TagPragmaOperation, TagPragmaNoiseOperation, name}
}

// variantTags is filled once at package init and only read afterwards.
var variantTags = map[string][]string{
	NameSetNumberOfMeasurements: pragma(NameSetNumberOfMeasurements),
	NameSetStateVector:          pragma(NameSetStateVector),
	NameSetDensityMatrix:        pragma(NameSetDensityMatrix),
	NameRepeatGate:              pragma(NameRepeatGate),
	NameOverrotation:            multiQubitPragma(NameOverrotation),
	NameBoostNoise:              pragma(NameBoostNoise),
	NameStopParallelBlock:       multiQubitPragma(NameStopParallelBlock),
	NameGlobalPhase:             pragma(NameGlobalPhase),
	NameSleep:                   multiQubitPragma(NameSleep),
	NameActiveReset:             singleQubitPragma(NameActiveReset),
	NameStartDecompositionBlock: multiQubitPragma(NameStartDecompositionBlock),
	NameStopDecompositionBlock:  multiQubitPragma(NameStopDecompositionBlock),
	NameDamping:                 noisePragma(NameDamping),
	NameDepolarising:            noisePragma(NameDepolarising),
	NameDephasing:               noisePragma(NameDephasing),
	NameRandomNoise:             noisePragma(NameRandomNoise),
	NameGeneralNoise:            singleQubitPragma(NameGeneralNoise),
	// Carries SingleQubitOperation although its qubits come from the sub-circuit
	// and it does not implement SingleQubitOperation.
	NameConditional: singleQubitPragma(NameConditional),
}

// TagsFor returns the tag list of the named variant, or nil if unknown.
func TagsFor(name string) []string {
	return slices.Clone(variantTags[name])
}

// Variants returns the names of all variants in sorted order.
func Variants() []string {
	names := make([]string, 0, len(variantTags))
	for name := range variantTags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTag reports whether op carries tag.
func HasTag(op Operation, tag string) bool {
	return slices.Contains(variantTags[op.Hqslang()], tag)
}
