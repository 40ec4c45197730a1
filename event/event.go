// Package event defines the simulated event records that weights are
// computed for.
package event

import (
	"fmt"

	"leptonweight.io/lw/earth"
	"leptonweight.io/lw/particle"
)

// Event is one simulated interaction. Energy is in GeV, angles in radians,
// Position in meters and TotalColumnDepth in g/cm².
type Event struct {
	Energy           float64
	Zenith           float64
	Azimuth          float64
	Particle         particle.Type
	FinalState       [2]particle.Type
	BjorkenX         float64
	BjorkenY         float64
	Position         earth.Vec
	TotalColumnDepth float64
}

// Direction returns the unit vector of the incident particle.
func (e Event) Direction() earth.Vec { return earth.Direction(e.Zenith, e.Azimuth) }

// IsTau reports whether either final-state particle is a charged tau.
func (e Event) IsTau() bool { return particle.AnyTau(e.FinalState[0], e.FinalState[1]) }

// Signature identifies an interaction channel: the incident particle and the
// final state, sorted so that the recorded order does not matter.
type Signature struct {
	Particle   particle.Type
	FinalState [2]particle.Type
}

// NewSignature returns the signature of an incident particle and a final state.
func NewSignature(p particle.Type, finalState [2]particle.Type) Signature {
	if finalState[1] < finalState[0] {
		finalState[0], finalState[1] = finalState[1], finalState[0]
	}
	return Signature{Particle: p, FinalState: finalState}
}

// Signature returns the channel of e.
func (e Event) Signature() Signature { return NewSignature(e.Particle, e.FinalState) }

func (s Signature) String() string {
	return fmt.Sprintf("%s -> %s %s", s.Particle, s.FinalState[0], s.FinalState[1])
}

// GroupBySignature returns the indices of events for each signature, and the
// signatures in first-seen order.
func GroupBySignature(events []Event) (map[Signature][]int, []Signature) {
	groups := make(map[Signature][]int)
	var order []Signature
	for i, e := range events {
		s := e.Signature()
		if _, ok := groups[s]; !ok {
			order = append(order, s)
		}
		groups[s] = append(groups[s], i)
	}
	return groups, order
}
