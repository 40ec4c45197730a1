package xsec

import (
	"fmt"
	"math"

	"leptonweight.io/lw/earth"
	"leptonweight.io/lw/event"
	"leptonweight.io/lw/particle"
	"leptonweight.io/lw/pathint"
	"leptonweight.io/lw/spline"
)

// Model is the physical side of the weight: how likely the simulated
// interaction is in nature, given the medium along its path.
type Model struct {
	Interactions *Set
	Cache        *spline.Cache
	Medium       earth.Medium
	// Classifier selects electron targets for a final state. Nil means
	// every interaction scatters off nucleons.
	Classifier particle.Classifier
}

// Sigma is a total cross section split by target, in cm².
type Sigma struct {
	Nucleon  float64
	Electron float64
}

func (m Model) classifier() particle.Classifier {
	if m.Classifier == nil {
		return particle.NucleonOnly
	}
	return m.Classifier
}

func log10Rows(events []event.Event, idx []int, kinematics bool) [][]float64 {
	rows := make([][]float64, len(idx))
	for j, i := range idx {
		e := events[i]
		if kinematics {
			rows[j] = []float64{math.Log10(e.Energy), math.Log10(e.BjorkenX), math.Log10(e.BjorkenY)}
		} else {
			rows[j] = []float64{math.Log10(e.Energy)}
		}
	}
	return rows
}

// sumTotal evaluates the total table of every interaction in list at rows
// and hands each linear cross section to add.
func (m Model) sumTotal(list []Interaction, rows [][]float64, add func(in Interaction, j int, sigma float64)) error {
	for _, in := range list {
		vals, err := in.TotalCrossSection(m.Cache, rows)
		if err != nil {
			return fmt.Errorf("xsec: %s: %w", in, err)
		}
		for j, v := range vals {
			add(in, j, math.Pow(10, v))
		}
	}
	return nil
}

// ProbKinematics returns, per event, the differential cross section at the
// event's kinematics divided by the total cross section, both summed over the
// interactions of the event's channel. Events of unknown channels get 0.
func (m Model) ProbKinematics(events []event.Event) ([]float64, error) {
	out := make([]float64, len(events))
	groups, order := event.GroupBySignature(events)
	for _, sig := range order {
		idx := groups[sig]
		list := m.Interactions.Interactions(sig.Particle, sig.FinalState)
		if len(list) == 0 {
			continue
		}
		diff := make([]float64, len(idx))
		total := make([]float64, len(idx))
		kin := log10Rows(events, idx, true)
		for _, in := range list {
			vals, err := in.DifferentialCrossSection(m.Cache, kin)
			if err != nil {
				return nil, fmt.Errorf("xsec: %s: %w", in, err)
			}
			for j, v := range vals {
				diff[j] += math.Pow(10, v)
			}
		}
		err := m.sumTotal(list, log10Rows(events, idx, false), func(_ Interaction, j int, s float64) {
			total[j] += s
		})
		if err != nil {
			return nil, err
		}
		for j, i := range idx {
			if total[j] > 0 {
				out[i] = diff[j] / total[j]
			}
		}
	}
	return out, nil
}

// ProbChannel returns, per event, the fraction of the incident particle's
// total cross section taken by the event's channel.
func (m Model) ProbChannel(events []event.Event) ([]float64, error) {
	out := make([]float64, len(events))
	groups, order := event.GroupBySignature(events)
	for _, sig := range order {
		idx := groups[sig]
		channel := make([]float64, len(idx))
		all := make([]float64, len(idx))
		err := m.sumTotal(m.Interactions.ParticleInteractions(sig.Particle), log10Rows(events, idx, false),
			func(in Interaction, j int, s float64) {
				all[j] += s
				if in.Signature() == sig {
					channel[j] += s
				}
			})
		if err != nil {
			return nil, err
		}
		for j, i := range idx {
			if all[j] > 0 {
				out[i] = channel[j] / all[j]
			}
		}
	}
	return out, nil
}

// TotalCrossSections returns, per event, the total cross section of the
// incident particle over all its interactions, split into nucleon and
// electron targets by the classifier.
func (m Model) TotalCrossSections(events []event.Event) ([]Sigma, error) {
	out := make([]Sigma, len(events))
	cls := m.classifier()
	byParticle := make(map[particle.Type][]int)
	var order []particle.Type
	for i, e := range events {
		if _, ok := byParticle[e.Particle]; !ok {
			order = append(order, e.Particle)
		}
		byParticle[e.Particle] = append(byParticle[e.Particle], i)
	}
	for _, p := range order {
		idx := byParticle[p]
		err := m.sumTotal(m.Interactions.ParticleInteractions(p), log10Rows(events, idx, false),
			func(in Interaction, j int, s float64) {
				if cls.IsElectronMediated(in.FinalState[:]) {
					out[idx[j]].Electron += s
				} else {
					out[idx[j]].Nucleon += s
				}
			})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkPaths(events []event.Event, paths []earth.Path) error {
	if len(paths) != len(events) {
		return fmt.Errorf("xsec: %d paths for %d events", len(paths), len(events))
	}
	return nil
}

// ProbInteraction returns, per event, the probability of interacting
// anywhere along its path.
func (m Model) ProbInteraction(events []event.Event, paths []earth.Path) ([]float64, error) {
	if err := checkPaths(events, paths); err != nil {
		return nil, err
	}
	sigmas, err := m.TotalCrossSections(events)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(events))
	for i, p := range paths {
		cdN := m.Medium.ColumnDepth(p.First, p.Last, false)
		cdE := m.Medium.ColumnDepth(p.First, p.Last, true)
		out[i] = pathint.InteractionProbability(sigmas[i].Nucleon, sigmas[i].Electron, cdN, cdE)
	}
	return out, nil
}

// ProbPos returns, per event, the probability density (per meter) of the
// interaction vertex at the event position, given an interaction on its path.
func (m Model) ProbPos(events []event.Event, paths []earth.Path) ([]float64, error) {
	if err := checkPaths(events, paths); err != nil {
		return nil, err
	}
	sigmas, err := m.TotalCrossSections(events)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(events))
	for i, p := range paths {
		segs := m.Medium.DensitySegments(p.Last, p.First, false)
		out[i] = pathint.VertexDensity(segs, p.Along(events[i].Position), sigmas[i].Nucleon, sigmas[i].Electron)
	}
	return out, nil
}
