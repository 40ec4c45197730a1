// Package earth describes the target medium events propagate through.
//
// The density model itself (layered Earth profiles, detector materials) is a
// separate physics library; this package names the queries the weighting code
// makes of it and provides a homogeneous-sphere medium for small setups and
// tests.
package earth

// Physical constants and unit conversions used with Medium values.
const (
	// Avogadro is the number of nucleons per gram (per mole of nucleons).
	Avogadro = 6.022140857e+23
	// CentimetersPerMeter converts lengths in meters to the CGS lengths
	// column depths and densities are expressed in.
	CentimetersPerMeter = 1e2
)

// Segment is a straight stretch of a path with constant target densities.
// Densities are in g/cm³ (multiply by Avogadro for targets per cm³); Length is in meters.
type Segment struct {
	NucleonDensity  float64
	ElectronDensity float64
	Length          float64
}

// Medium answers density and column-depth queries along straight lines.
//
// Positions are detector coordinates in meters, column depths are in g/cm².
type Medium interface {
	// ColumnDepth integrates target density between p0 and p1.
	ColumnDepth(p0, p1 Vec, electrons bool) float64

	// DistanceForColumnDepth walks backwards from end, against direction,
	// and returns the distance at which columnDepth has been accumulated. When
	// the medium runs out first, it returns the distance to the farthest point
	// that still accumulates column depth.
	DistanceForColumnDepth(end, direction Vec, columnDepth float64, electrons bool) float64

	// DensitySegments splits the line from p0 to p1 into constant-density
	// segments, ordered from p0 to p1.
	DensitySegments(p0, p1 Vec, electrons bool) []Segment

	// Density returns the mass density at p in g/cm³.
	Density(p Vec) float64

	// ProtonToElectronRatio returns the number of electrons per nucleon of the material at p.
	ProtonToElectronRatio(p Vec) float64

	// LeptonRange returns the range of a charged lepton in meters water equivalent.
	LeptonRange(energy float64, isTau bool) float64

	// RangeToColumnDepth converts meters water equivalent to g/cm².
	RangeToColumnDepth(mwe float64) float64
}
