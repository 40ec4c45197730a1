package earth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionIsUnit(t *testing.T) {
	for _, zen := range []float64{0, 0.3, math.Pi / 2, 2.9} {
		for _, az := range []float64{0, 1.1, 4.5} {
			assert.InDelta(t, 1.0, Direction(zen, az).Norm(), 1e-12)
		}
	}
	assert.InDelta(t, 1.0, Direction(0, 0).Z, 1e-12)
}

func TestPCA(t *testing.T) {
	dir := Vec{1, 0, 0}
	pos := Vec{-5, 3, 0}
	pca := PCA(dir, pos, Vec{})
	assert.InDelta(t, 0.0, pca.X, 1e-12)
	assert.InDelta(t, 3.0, pca.Y, 1e-12)
	// The offset from the origin is perpendicular to the direction.
	assert.InDelta(t, 0.0, pca.Dot(dir), 1e-12)
}

func TestHomogeneousColumnDepth(t *testing.T) {
	h := Homogeneous{Radius: 10, MassDensity: 2, ElectronRatio: 0.5}

	// Chord through the center, starting and ending outside.
	cd := h.ColumnDepth(Vec{-20, 0, 0}, Vec{20, 0, 0}, false)
	assert.InDelta(t, 2*20*100.0, cd, 1e-9)
	assert.InDelta(t, cd*0.5, h.ColumnDepth(Vec{-20, 0, 0}, Vec{20, 0, 0}, true), 1e-9)

	// Line missing the sphere.
	assert.Equal(t, 0.0, h.ColumnDepth(Vec{-20, 11, 0}, Vec{20, 11, 0}, false))

	// Unbounded medium.
	u := Homogeneous{MassDensity: 1}
	assert.InDelta(t, 300.0, u.ColumnDepth(Vec{}, Vec{0, 0, 3}, false), 1e-9)
}

func TestHomogeneousDistanceForColumnDepth(t *testing.T) {
	h := Homogeneous{Radius: 10, MassDensity: 2, ElectronRatio: 0.5}
	end := Vec{5, 0, 0}
	dir := Vec{1, 0, 0}

	// 1000 g/cm² at 200 g/cm² per meter is 5 m.
	d := h.DistanceForColumnDepth(end, dir, 1000, false)
	assert.InDelta(t, 5.0, d, 1e-9)
	assert.InDelta(t, 1000.0, h.ColumnDepth(end.Sub(dir.Scale(d)), end, false), 1e-9)

	// More column than the sphere holds stops at the far boundary.
	d = h.DistanceForColumnDepth(end, dir, 1e9, false)
	assert.InDelta(t, 15.0, d, 1e-9)
}

func TestHomogeneousSegments(t *testing.T) {
	h := Homogeneous{Radius: 10, MassDensity: 2, ElectronRatio: 0.5}
	segs := h.DensitySegments(Vec{-20, 0, 0}, Vec{20, 0, 0}, false)
	require.Len(t, segs, 3)
	assert.InDelta(t, 10.0, segs[0].Length, 1e-9)
	assert.Equal(t, 0.0, segs[0].NucleonDensity)
	assert.InDelta(t, 20.0, segs[1].Length, 1e-9)
	assert.Equal(t, 2.0, segs[1].NucleonDensity)
	assert.Equal(t, 1.0, segs[1].ElectronDensity)
	assert.InDelta(t, 10.0, segs[2].Length, 1e-9)

	total := 0.0
	for _, s := range segs {
		total += s.Length
	}
	assert.InDelta(t, 40.0, total, 1e-9)
}

func TestDefaultLeptonRange(t *testing.T) {
	assert.Equal(t, 0.0, DefaultLeptonRange(0, false))
	mu := DefaultLeptonRange(100, false)
	assert.Greater(t, mu, 0.0)
	assert.Greater(t, DefaultLeptonRange(1000, false), mu)
	// At low energy ionisation dominates: range ≈ E/a.
	assert.InDelta(t, 1.0/muonA, DefaultLeptonRange(1, false), 0.01)
}

func TestPathAlong(t *testing.T) {
	p := Path{First: Vec{0, 0, -5}, Last: Vec{0, 0, 5}}
	assert.InDelta(t, 10.0, p.Length(), 1e-12)
	assert.InDelta(t, 7.0, p.Along(Vec{0, 0, 2}), 1e-12)
}
