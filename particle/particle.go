// Package particle holds the particle type codes stored in injection
// configurations and event records.
//
// Codes follow the LeptonInjector ParticleType enumeration, which uses PDG
// numbers for elementary particles and large non-PDG values for composite
// final states such as a hadronic shower.
package particle

import (
	"fmt"
	"sort"
)

// Type is a particle type code (4-byte signed on the wire).
type Type int32

const (
	Unknown Type = 0

	EMinus   Type = 11
	EPlus    Type = -11
	MuMinus  Type = 13
	MuPlus   Type = -13
	TauMinus Type = 15
	TauPlus  Type = -15

	NuE      Type = 12
	NuEBar   Type = -12
	NuMu     Type = 14
	NuMuBar  Type = -14
	NuTau    Type = 16
	NuTauBar Type = -16

	PPlus   Type = 2212
	Neutron Type = 2112

	Hadrons Type = -2000001006
)

var names = map[Type]string{
	Unknown:  "Unknown",
	EMinus:   "EMinus",
	EPlus:    "EPlus",
	MuMinus:  "MuMinus",
	MuPlus:   "MuPlus",
	TauMinus: "TauMinus",
	TauPlus:  "TauPlus",
	NuE:      "NuE",
	NuEBar:   "NuEBar",
	NuMu:     "NuMu",
	NuMuBar:  "NuMuBar",
	NuTau:    "NuTau",
	NuTauBar: "NuTauBar",
	PPlus:    "PPlus",
	Neutron:  "Neutron",
	Hadrons:  "Hadrons",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int32(t))
}

// IsTau reports whether t is a charged tau.
func (t Type) IsTau() bool { return t == TauMinus || t == TauPlus }

// IsNeutrino reports whether t is a neutrino or antineutrino.
func (t Type) IsNeutrino() bool {
	switch t {
	case NuE, NuEBar, NuMu, NuMuBar, NuTau, NuTauBar:
		return true
	}
	return false
}

// AnyTau reports whether any of ts is a charged tau.
func AnyTau(ts ...Type) bool {
	for _, t := range ts {
		if t.IsTau() {
			return true
		}
	}
	return false
}

// Sorted returns a sorted copy of ts. Final states are compared as sorted
// sequences so that the order in which they were recorded does not matter.
func Sorted(ts []Type) []Type {
	out := append([]Type(nil), ts...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Classifier decides which target a final state interacts with.
//
// Implementations live with the interaction registry of the simulation
// framework; this package only names the question.
type Classifier interface {
	// IsElectronMediated reports whether the interaction producing the final
	// state scatters off atomic electrons rather than nucleons.
	IsElectronMediated(finalState []Type) bool
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(finalState []Type) bool

func (f ClassifierFunc) IsElectronMediated(finalState []Type) bool { return f(finalState) }

// NucleonOnly classifies every final state as nucleon-mediated.
var NucleonOnly Classifier = ClassifierFunc(func([]Type) bool { return false })
