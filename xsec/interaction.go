// Package xsec indexes interaction channels and evaluates their cross
// sections through a shared spline cache.
package xsec

import (
	"fmt"

	"leptonweight.io/lw/event"
	"leptonweight.io/lw/particle"
	"leptonweight.io/lw/spline"
)

// Interaction is one interaction channel with its cross-section tables.
// Tables store log10 of the cross section in cm²; the total table is a
// function of log10(E), the differential one of log10(E), log10(x), log10(y).
type Interaction struct {
	Name       string
	Particle   particle.Type
	FinalState [2]particle.Type
	// Differential and Total are spline.Cache identifiers.
	Differential string
	Total        string
}

// NewInteraction returns an interaction with its final state sorted.
func NewInteraction(name string, p particle.Type, finalState [2]particle.Type, differential, total string) Interaction {
	sig := event.NewSignature(p, finalState)
	return Interaction{
		Name:         name,
		Particle:     p,
		FinalState:   sig.FinalState,
		Differential: differential,
		Total:        total,
	}
}

// Signature returns the channel the interaction describes.
func (i Interaction) Signature() event.Signature {
	return event.NewSignature(i.Particle, i.FinalState)
}

// Key identifies an interaction by name and channel.
type Key struct {
	Name      string
	Signature event.Signature
}

func (i Interaction) Key() Key { return Key{Name: i.Name, Signature: i.Signature()} }

func (i Interaction) String() string {
	return fmt.Sprintf("%s %s", i.Name, i.Signature())
}

// TotalCrossSection evaluates the total table at rows of [log10(E)].
func (i Interaction) TotalCrossSection(c *spline.Cache, rows [][]float64) ([]float64, error) {
	return c.Evaluate(i.Total, rows, 0)
}

// DifferentialCrossSection evaluates the differential table at rows of
// [log10(E), log10(x), log10(y)].
func (i Interaction) DifferentialCrossSection(c *spline.Cache, rows [][]float64) ([]float64, error) {
	return c.Evaluate(i.Differential, rows, 0)
}
