package earth

import "math"

// Vec is a position or direction in detector coordinates, in meters.
type Vec struct {
	X, Y, Z float64
}

func (v Vec) Add(w Vec) Vec          { return Vec{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }
func (v Vec) Sub(w Vec) Vec          { return Vec{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }
func (v Vec) Scale(s float64) Vec    { return Vec{v.X * s, v.Y * s, v.Z * s} }
func (v Vec) Dot(w Vec) float64      { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }
func (v Vec) Norm() float64          { return math.Sqrt(v.Dot(v)) }
func (v Vec) Distance(w Vec) float64 { return v.Sub(w).Norm() }

// Direction returns the unit vector for a zenith and azimuth in radians.
func Direction(zenith, azimuth float64) Vec {
	sz, cz := math.Sincos(zenith)
	sa, ca := math.Sincos(azimuth)
	return Vec{ca * sz, sa * sz, cz}
}

// PCA returns the point on the line through position along direction that
// is closest to origin. direction must be a unit vector.
func PCA(direction, position, origin Vec) Vec {
	return direction.Scale(direction.Dot(origin.Sub(position))).Add(position)
}

// Path is the straight propagation path considered for an event, from the
// first (upstream) point to the last (downstream) point.
type Path struct {
	First, Last Vec
}

func (p Path) Length() float64 { return p.First.Distance(p.Last) }

// Along returns the distance of x from the first point, projected on the path.
func (p Path) Along(x Vec) float64 {
	l := p.Length()
	if l == 0 {
		return 0
	}
	return x.Sub(p.First).Dot(p.Last.Sub(p.First)) / l
}
