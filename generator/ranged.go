package generator

import (
	"math"

	"leptonweight.io/lw/earth"
	"leptonweight.io/lw/event"
	"leptonweight.io/lw/lic"
	"leptonweight.io/lw/particle"
)

// columnDepthTolerance is how far (g/cm²) the column depth reachable in the
// medium may fall short of the requested one before the shorter value is used.
const columnDepthTolerance = 1.0

// Ranged models injection along lines through a disk of the configured radius
// centered on the detector, perpendicular to the event direction. Vertices
// are spread over the charged-lepton range upstream of an endcap around the
// point of closest approach.
type Ranged struct {
	base
	length     float64
	medium     earth.Medium
	classifier particle.Classifier
}

var _ Generator = (*Ranged)(nil)

func (r *Ranged) Kind() lic.BlockKind { return lic.KindRanged }

// Length returns the endcap length in meters.
func (r *Ranged) Length() float64 { return r.length }

func (r *Ranged) finalState() []particle.Type {
	return []particle.Type{r.cfg.FinalType0, r.cfg.FinalType1}
}

func (r *Ranged) isTau() bool { return particle.AnyTau(r.cfg.FinalType0, r.cfg.FinalType1) }

func (r *Ranged) electrons() bool { return r.classifier.IsElectronMediated(r.finalState()) }

// rangedPath is a considered range with the column depth it spans.
type rangedPath struct {
	earth.Path
	ColumnDepth float64
}

func (r *Ranged) consider(e event.Event) rangedPath {
	dir := e.Direction()
	useE := r.electrons()
	pca := earth.PCA(dir, e.Position, earth.Vec{})
	front := pca.Add(dir.Scale(r.length))
	back := pca.Sub(dir.Scale(r.length))

	lepton := r.medium.RangeToColumnDepth(r.medium.LeptonRange(e.Energy, r.isTau()))
	endcap := r.medium.ColumnDepth(back, front, useE)
	total := lepton + endcap

	maxDist := r.medium.DistanceForColumnDepth(front, dir, total, useE) - r.length
	first := pca.Sub(dir.Scale(maxDist))
	if actual := r.medium.ColumnDepth(first, front, useE); actual < total-columnDepthTolerance {
		total = actual
	}
	return rangedPath{Path: earth.Path{First: first, Last: front}, ColumnDepth: total}
}

func (r *Ranged) ConsideredRange(events []event.Event) []earth.Path {
	out := make([]earth.Path, len(events))
	for i, e := range events {
		out[i] = r.consider(e).Path
	}
	return out
}

// ColumnDepths returns the column depth (g/cm²) of each event's considered range.
func (r *Ranged) ColumnDepths(events []event.Event) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = r.consider(e).ColumnDepth
	}
	return out
}

// ProbArea is uniform over the injection disk, in cm⁻².
func (r *Ranged) ProbArea(events []event.Event) []float64 {
	p := 1 / (math.Pi * r.cfg.Radius * r.cfg.Radius) / 1e4
	out := make([]float64, len(events))
	for i := range out {
		out[i] = p
	}
	return out
}

// ProbPos is the target density at the vertex over the column depth of the
// considered range, per meter.
func (r *Ranged) ProbPos(events []event.Event) []float64 {
	useE := r.electrons()
	out := make([]float64, len(events))
	for i, e := range events {
		cd := r.consider(e).ColumnDepth
		if cd <= 0 {
			continue
		}
		density := r.medium.Density(e.Position)
		if useE {
			density *= r.medium.ProtonToElectronRatio(e.Position)
		}
		out[i] = density / cd * earth.CentimetersPerMeter
	}
	return out
}

func (r *Ranged) Probability(events []event.Event) ([]float64, error) {
	return probability(r, events)
}
