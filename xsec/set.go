package xsec

import (
	"fmt"

	"leptonweight.io/lw/event"
	"leptonweight.io/lw/particle"
)

// Set is an immutable collection of interactions with unique signatures.
type Set struct {
	all          []Interaction
	byParticle   map[particle.Type][]Interaction
	byFinalState map[[2]particle.Type][]Interaction
	bySignature  map[event.Signature][]Interaction
	byKey        map[Key]Interaction
}

// NewSet indexes interactions. Two interactions with the same signature are
// an error.
func NewSet(interactions ...Interaction) (*Set, error) {
	s := &Set{
		byParticle:   make(map[particle.Type][]Interaction),
		byFinalState: make(map[[2]particle.Type][]Interaction),
		bySignature:  make(map[event.Signature][]Interaction),
		byKey:        make(map[Key]Interaction),
	}
	for _, in := range interactions {
		in = NewInteraction(in.Name, in.Particle, in.FinalState, in.Differential, in.Total)
		sig := in.Signature()
		if prev, ok := s.bySignature[sig]; ok {
			return nil, fmt.Errorf("xsec: interaction %s duplicates signature of %s", in, prev[0])
		}
		s.all = append(s.all, in)
		s.byParticle[in.Particle] = append(s.byParticle[in.Particle], in)
		s.byFinalState[sig.FinalState] = append(s.byFinalState[sig.FinalState], in)
		s.bySignature[sig] = append(s.bySignature[sig], in)
		s.byKey[in.Key()] = in
	}
	return s, nil
}

// MustNewSet is like NewSet but panics on error.
func MustNewSet(interactions ...Interaction) *Set {
	s, err := NewSet(interactions...)
	if err != nil {
		panic(err)
	}
	return s
}

// All returns every interaction in insertion order.
func (s *Set) All() []Interaction { return append([]Interaction(nil), s.all...) }

// Interactions returns the interactions of a channel. The final state may be
// given in any order. An unknown channel has no interactions.
func (s *Set) Interactions(p particle.Type, finalState [2]particle.Type) []Interaction {
	return s.bySignature[event.NewSignature(p, finalState)]
}

// ParticleInteractions returns every interaction of an incident particle.
func (s *Set) ParticleInteractions(p particle.Type) []Interaction {
	return s.byParticle[p]
}

// FinalStateInteractions returns every interaction producing finalState.
func (s *Set) FinalStateInteractions(finalState [2]particle.Type) []Interaction {
	return s.byFinalState[event.NewSignature(particle.Unknown, finalState).FinalState]
}

// Interaction looks up one interaction by name and channel.
func (s *Set) Interaction(name string, p particle.Type, finalState [2]particle.Type) (Interaction, bool) {
	in, ok := s.byKey[Key{Name: name, Signature: event.NewSignature(p, finalState)}]
	return in, ok
}

// Len returns the number of interactions.
func (s *Set) Len() int { return len(s.all) }
