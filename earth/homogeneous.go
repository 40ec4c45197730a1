package earth

import "math"

// Lepton energy-loss parametrisation, dE/dX = -(a + b·E) with X in m.w.e.
const (
	muonA = 0.212 / 1.2    // GeV per m.w.e.
	muonB = 0.251e-3 / 1.2 // per m.w.e.
	tauA  = 0.212 / 1.2
	tauB  = 0.8e-4
)

// DefaultLeptonRange is the continuous-loss range of a charged lepton of the
// given energy (GeV) in meters water equivalent.
func DefaultLeptonRange(energy float64, isTau bool) float64 {
	if energy <= 0 {
		return 0
	}
	a, b := muonA, muonB
	if isTau {
		a, b = tauA, tauB
	}
	return math.Log1p(energy*b/a) / b
}

// Homogeneous is a sphere of uniform material centered on the detector origin.
// A zero Radius fills all of space.
type Homogeneous struct {
	Radius float64 // meters
	// MassDensity is in g/cm³.
	MassDensity float64
	// ElectronRatio is the number of electrons per nucleon (Z/A).
	ElectronRatio float64
	// Range overrides DefaultLeptonRange when set.
	Range func(energy float64, isTau bool) float64
}

var _ Medium = Homogeneous{}

func (h Homogeneous) targetDensity(electrons bool) float64 {
	if electrons {
		return h.MassDensity * h.ElectronRatio
	}
	return h.MassDensity
}

// inside returns the parameter interval of the line p0 + t·d (|d| = 1) that
// lies inside the sphere, clipped to [0, length].
func (h Homogeneous) inside(p0, d Vec, length float64) (float64, float64, bool) {
	if h.Radius <= 0 {
		return 0, length, length > 0
	}
	b := p0.Dot(d)
	c := p0.Dot(p0) - h.Radius*h.Radius
	disc := b*b - c
	if disc <= 0 {
		return 0, 0, false
	}
	root := math.Sqrt(disc)
	t0 := math.Max(-b-root, 0)
	t1 := math.Min(-b+root, length)
	if t1 <= t0 {
		return 0, 0, false
	}
	return t0, t1, true
}

func unit(p0, p1 Vec) (Vec, float64) {
	v := p1.Sub(p0)
	l := v.Norm()
	if l == 0 {
		return Vec{}, 0
	}
	return v.Scale(1 / l), l
}

func (h Homogeneous) ColumnDepth(p0, p1 Vec, electrons bool) float64 {
	d, l := unit(p0, p1)
	t0, t1, ok := h.inside(p0, d, l)
	if !ok {
		return 0
	}
	return h.targetDensity(electrons) * (t1 - t0) * CentimetersPerMeter
}

func (h Homogeneous) DistanceForColumnDepth(end, direction Vec, columnDepth float64, electrons bool) float64 {
	rho := h.targetDensity(electrons) * CentimetersPerMeter
	if rho <= 0 || columnDepth <= 0 {
		return 0
	}
	if h.Radius <= 0 {
		return columnDepth / rho
	}
	back := direction.Scale(-1)
	t0, t1, ok := h.inside(end, back, math.Inf(1))
	if !ok {
		return 0
	}
	need := columnDepth / rho
	if need > t1-t0 {
		return t1
	}
	return t0 + need
}

func (h Homogeneous) DensitySegments(p0, p1 Vec, electrons bool) []Segment {
	d, l := unit(p0, p1)
	if l == 0 {
		return nil
	}
	t0, t1, ok := h.inside(p0, d, l)
	if !ok {
		return []Segment{{Length: l}}
	}
	var out []Segment
	if t0 > 0 {
		out = append(out, Segment{Length: t0})
	}
	out = append(out, Segment{
		NucleonDensity:  h.MassDensity,
		ElectronDensity: h.MassDensity * h.ElectronRatio,
		Length:          t1 - t0,
	})
	if t1 < l {
		out = append(out, Segment{Length: l - t1})
	}
	return out
}

func (h Homogeneous) Density(p Vec) float64 {
	if h.Radius > 0 && p.Norm() > h.Radius {
		return 0
	}
	return h.MassDensity
}

func (h Homogeneous) ProtonToElectronRatio(p Vec) float64 { return h.ElectronRatio }

func (h Homogeneous) LeptonRange(energy float64, isTau bool) float64 {
	if h.Range != nil {
		return h.Range(energy, isTau)
	}
	return DefaultLeptonRange(energy, isTau)
}

// RangeToColumnDepth converts m.w.e. to g/cm²: one meter of water is 100 g/cm².
func (h Homogeneous) RangeToColumnDepth(mwe float64) float64 {
	return mwe * CentimetersPerMeter
}
