package generator

import (
	"math"

	"leptonweight.io/lw/earth"
	"leptonweight.io/lw/event"
	"leptonweight.io/lw/lic"
)

// surfaceTolerance bounds how far (m) a chord endpoint may sit from the
// cylinder surface before it is reported.
const surfaceTolerance = 1e-4

// Volume models injection uniformly inside an upright cylinder of the
// configured radius and height, centered on the detector.
type Volume struct {
	base
	height float64
}

var _ Generator = (*Volume)(nil)

func (v *Volume) Kind() lic.BlockKind { return lic.KindVolume }

// Height returns the cylinder height in meters.
func (v *Volume) Height() float64 { return v.height }

// Inside reports whether p lies in the cylinder.
func (v *Volume) Inside(p earth.Vec) bool {
	return math.Abs(p.Z) <= v.height/2 && math.Hypot(p.X, p.Y) < v.cfg.Radius
}

// chord returns the segment of the line through pos along dir that lies in
// the cylinder, ordered along dir. ok is false when the line misses it.
func (v *Volume) chord(pos, dir earth.Vec) (earth.Path, bool) {
	r := v.cfg.Radius
	zLow, zHigh := -v.height/2, v.height/2

	if dir.X == 0 && dir.Y == 0 {
		if math.Hypot(pos.X, pos.Y) >= r {
			return earth.Path{}, false
		}
		s := math.Copysign(1, dir.Z)
		return earth.Path{
			First: earth.Vec{X: pos.X, Y: pos.Y, Z: -s * v.height / 2},
			Last:  earth.Vec{X: pos.X, Y: pos.Y, Z: s * v.height / 2},
		}, true
	}

	nr2 := dir.X*dir.X + dir.Y*dir.Y
	nSum := -(dir.X*pos.X + dir.Y*pos.Y)
	r02 := pos.X*pos.X + pos.Y*pos.Y
	disc := nSum*nSum - nr2*(r02-r*r)
	if disc < 0 {
		return earth.Path{}, false
	}
	root := math.Sqrt(disc)
	ends := [2]float64{(nSum - root) / nr2, (nSum + root) / nr2}

	var pts [2]earth.Vec
	for k, t := range ends {
		p := pos.Add(dir.Scale(t))
		switch {
		case p.Z < zLow:
			p = pos.Add(dir.Scale((zLow - pos.Z) / dir.Z))
			p.Z = zLow
		case p.Z > zHigh:
			p = pos.Add(dir.Scale((zHigh - pos.Z) / dir.Z))
			p.Z = zHigh
		}
		pts[k] = p
	}
	for _, p := range pts {
		if !v.onSurface(p) {
			v.log.Warn("chord endpoint off cylinder surface",
				"x", p.X, "y", p.Y, "z", p.Z,
				"radius", v.cfg.Radius, "height", v.height)
		}
	}
	return earth.Path{First: pts[0], Last: pts[1]}, true
}

func (v *Volume) onSurface(p earth.Vec) bool {
	h := v.height / 2
	onSide := math.Abs(math.Hypot(p.X, p.Y)-v.cfg.Radius) < surfaceTolerance && math.Abs(p.Z) <= h
	onCap := math.Abs(p.Z+h) < surfaceTolerance || math.Abs(p.Z-h) < surfaceTolerance
	return onSide || onCap
}

// ConsideredRange returns the chord through each event. Events outside the
// cylinder get a zero-length path at their position.
func (v *Volume) ConsideredRange(events []event.Event) []earth.Path {
	out := make([]earth.Path, len(events))
	for i, e := range events {
		out[i] = earth.Path{First: e.Position, Last: e.Position}
		if !v.Inside(e.Position) {
			continue
		}
		if p, ok := v.chord(e.Position, e.Direction()); ok {
			out[i] = p
		}
	}
	return out
}

// ChordLengths returns the chord length through each event, 0 outside.
func (v *Volume) ChordLengths(events []event.Event) []float64 {
	out := make([]float64, len(events))
	for i, p := range v.ConsideredRange(events) {
		out[i] = p.Length()
	}
	return out
}

// ProbArea is the chord length over the cylinder volume, in cm⁻².
func (v *Volume) ProbArea(events []event.Event) []float64 {
	volume := math.Pi * v.cfg.Radius * v.cfg.Radius * v.height
	out := v.ChordLengths(events)
	for i, l := range out {
		out[i] = l / volume / 1e4
	}
	return out
}

// ProbPos is uniform along the chord, per meter.
func (v *Volume) ProbPos(events []event.Event) []float64 {
	out := v.ChordLengths(events)
	for i, l := range out {
		if l > 0 {
			out[i] = 1 / l
		}
	}
	return out
}

func (v *Volume) Probability(events []event.Event) ([]float64, error) {
	return probability(v, events)
}
