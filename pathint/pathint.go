// Package pathint computes interaction probabilities along a propagation
// path through a medium of piecewise-constant density.
//
// Cross sections are in cm², densities in g/cm³ and lengths in meters, as
// produced by earth.Medium. Densities are converted to target number
// densities with earth.Avogadro.
package pathint

import (
	"math"

	"leptonweight.io/lw/earth"
)

// taylorCutoff is where Log1mExp and OneMinusExp switch from their series
// to the direct formula.
const taylorCutoff = 0.1

// Log1mExp returns log(1 - exp(-x)) for x >= 0.
func Log1mExp(x float64) float64 {
	if x < taylorCutoff {
		x2 := x * x
		return math.Log(x) - x/2 + x2/24 - x2*x2/2880
	}
	return math.Log(-math.Expm1(-x))
}

// OneMinusExp returns 1 - exp(-x) for x >= 0.
func OneMinusExp(x float64) float64 {
	if x < taylorCutoff {
		return x * (1 - x/2*(1-x/3*(1-x/4*(1-x/5))))
	}
	return 1 - math.Exp(-x)
}

// LogSumExp returns log(Σ exp(x)). It is -Inf for an empty input.
func LogSumExp(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	if math.IsInf(m, 0) {
		return m
	}
	var s float64
	for _, x := range xs {
		s += math.Exp(x - m)
	}
	return m + math.Log(s)
}

// rate is the interaction rate per meter of a segment.
func rate(s earth.Segment, sigmaNucleon, sigmaElectron float64) float64 {
	return earth.Avogadro * (sigmaNucleon*s.NucleonDensity + sigmaElectron*s.ElectronDensity) * earth.CentimetersPerMeter
}

// VertexDensity returns the probability density, per meter, that an
// interaction along the path happens vertexDistance meters from the path's
// first point, given that one happens somewhere on the path.
//
// reversed lists the path's segments from the last point back to the first
// point. The density is the local interaction rate times the survival
// probability up to the vertex, normalized by the interaction probability of
// the whole path. Segments without targets contribute no probability; a path
// without any targets yields the uniform density 1/length.
func VertexDensity(reversed []earth.Segment, vertexDistance, sigmaNucleon, sigmaElectron float64) float64 {
	n := len(reversed)
	if n == 0 || vertexDistance < 0 {
		return 0
	}
	segs := make([]earth.Segment, n)
	var total float64
	for i, s := range reversed {
		segs[n-1-i] = s
		total += s.Length
	}
	if total <= 0 {
		return 0
	}
	if vertexDistance > total {
		if vertexDistance-total > 1e-9*total {
			return 0
		}
		vertexDistance = total
	}

	var (
		logSurvival float64
		terms       = make([]float64, 0, n)
		logVertex   = math.Inf(-1)
		start       float64
		found       bool
	)
	for i, s := range segs {
		r := rate(s, sigmaNucleon, sigmaElectron)
		end := start + s.Length
		if !found && (vertexDistance < end || i == n-1) {
			found = true
			if r > 0 {
				logVertex = logSurvival - r*(vertexDistance-start) + math.Log(r)
			}
		}
		if r > 0 && s.Length > 0 {
			tau := r * s.Length
			terms = append(terms, logSurvival+Log1mExp(tau))
			logSurvival -= tau
		}
		start = end
	}
	if len(terms) == 0 {
		return 1 / total
	}
	return math.Exp(logVertex - LogSumExp(terms))
}

// InteractionProbability returns the probability of interacting at least once
// over column depths cdNucleon and cdElectron (g/cm²).
func InteractionProbability(sigmaNucleon, sigmaElectron, cdNucleon, cdElectron float64) float64 {
	return OneMinusExp(earth.Avogadro * (sigmaNucleon*cdNucleon + sigmaElectron*cdElectron))
}
