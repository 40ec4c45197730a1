// Package weight combines generation probabilities with the physical
// interaction model into per-event Monte-Carlo weights.
//
// A weight is the physical probability of an event divided by the total
// probability that any of the simulated configurations produced it. With
// several configurations the inverse weights add:
//
//	1/w = Σ_g gen_g / phys_g
//
// where phys_g is evaluated over the range generator g considered for the
// event. Multiplying a weight by a flux (per GeV·sr·cm²) gives an event rate.
package weight

import (
	"fmt"

	"leptonweight.io/lw/event"
	"leptonweight.io/lw/generator"
	"leptonweight.io/lw/lic"
	"leptonweight.io/lw/xsec"
)

// Weighter weights events against a set of generators.
type Weighter struct {
	Generators []generator.Generator
	Model      xsec.Model
}

// New builds a Weighter for the injection blocks of a configuration.
func New(blocks []lic.Block, model xsec.Model, opts generator.Options) (*Weighter, error) {
	if opts.Cache == nil {
		opts.Cache = model.Cache
	}
	if opts.Medium == nil {
		opts.Medium = model.Medium
	}
	if opts.Classifier == nil {
		opts.Classifier = model.Classifier
	}
	gens, err := generator.FromBlocks(blocks, opts)
	if err != nil {
		return nil, err
	}
	return &Weighter{Generators: gens, Model: model}, nil
}

// GenerationProbability returns, per event, the summed probability that any
// generator produced it.
func (w *Weighter) GenerationProbability(events []event.Event) ([]float64, error) {
	out := make([]float64, len(events))
	for k, g := range w.Generators {
		p, err := g.Probability(events)
		if err != nil {
			return nil, fmt.Errorf("weight: generator %d: %w", k, err)
		}
		for i, v := range p {
			out[i] += v
		}
	}
	return out, nil
}

// PhysicalProbability returns, per event, the probability that nature
// produces the event's channel, kinematics and vertex on the given paths.
func (w *Weighter) PhysicalProbability(events []event.Event, g generator.Generator) ([]float64, error) {
	paths := g.ConsideredRange(events)
	pint, err := w.Model.ProbInteraction(events, paths)
	if err != nil {
		return nil, err
	}
	pos, err := w.Model.ProbPos(events, paths)
	if err != nil {
		return nil, err
	}
	kin, err := w.Model.ProbKinematics(events)
	if err != nil {
		return nil, err
	}
	channel, err := w.Model.ProbChannel(events)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(events))
	for i := range out {
		out[i] = pint[i] * pos[i] * kin[i] * channel[i]
	}
	return out, nil
}

// Weights returns the weight of every event. Events no generator could have
// produced, or that are physically impossible, weigh 0.
func (w *Weighter) Weights(events []event.Event) ([]float64, error) {
	inverse := make([]float64, len(events))
	for k, g := range w.Generators {
		gen, err := g.Probability(events)
		if err != nil {
			return nil, fmt.Errorf("weight: generator %d: %w", k, err)
		}
		var idx []int
		for i, p := range gen {
			if p > 0 {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}
		sub := make([]event.Event, len(idx))
		for j, i := range idx {
			sub[j] = events[i]
		}
		phys, err := w.PhysicalProbability(sub, g)
		if err != nil {
			return nil, fmt.Errorf("weight: generator %d: %w", k, err)
		}
		for j, i := range idx {
			if phys[j] > 0 {
				inverse[i] += gen[i] / phys[j]
			}
		}
	}
	out := make([]float64, len(events))
	for i, v := range inverse {
		if v > 0 {
			out[i] = 1 / v
		}
	}
	return out, nil
}
