// README: Route path: length and point-to-path projection queries.
package route

import (
	"errors"
	"math"

	"mashwar/internal/modules/geo"
	"mashwar/internal/types"
)

// ErrDegeneratePath reports a route with fewer than two points, for which
// projection is undefined.
var ErrDegeneratePath = errors.New("degenerate path")

// Projection is the closest point on a path to some query point.
type Projection struct {
	Point types.Point
	// Fraction is the route-relative position of the projection in [0,1]:
	// 0 at the path origin, 1 at its destination.
	Fraction float64
	// DistanceKm is the great-circle distance from the query point to the
	// projected point.
	DistanceKm float64
}

// Path is an ordered sequence of at least two geographic points with
// precomputed cumulative segment lengths.
type Path struct {
	points []types.Point
	cum    []float64
	total  float64
}

// NewPath builds a Path from decoded polyline points.
func NewPath(points []types.Point) (*Path, error) {
	if len(points) < 2 {
		return nil, ErrDegeneratePath
	}
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cum[i] = cum[i-1] + geo.HaversineKm(points[i-1], points[i])
	}
	return &Path{points: points, cum: cum, total: cum[len(points)-1]}, nil
}

// DecodePath decodes an encoded polyline and builds a Path from it.
func DecodePath(encoded string) (*Path, error) {
	points, err := Decode(encoded)
	if err != nil {
		return nil, err
	}
	return NewPath(points)
}

// LengthKm is the total path length: the sum of its segment lengths.
func (p *Path) LengthKm() float64 { return p.total }

// Points returns the underlying point sequence.
func (p *Path) Points() []types.Point { return p.points }

// ClosestPoint projects pt onto every segment of the path (clamped to the
// segment endpoints) and returns the projection with the smallest
// great-circle distance to pt. A zero-length path reports fraction 0.
func (p *Path) ClosestPoint(pt types.Point) Projection {
	best := Projection{DistanceKm: math.MaxFloat64}
	for i := 0; i < len(p.points)-1; i++ {
		proj := projectOnSegment(p.points[i], p.points[i+1], pt)
		d := geo.HaversineKm(pt, proj)
		if d < best.DistanceKm {
			along := p.cum[i] + geo.HaversineKm(p.points[i], proj)
			frac := 0.0
			if p.total > 0 {
				frac = along / p.total
			}
			best = Projection{Point: proj, Fraction: frac, DistanceKm: d}
		}
	}
	return best
}

// projectOnSegment computes the perpendicular projection of pt onto the
// segment a→b, clamped to the endpoints. The projection parameter uses a
// local planar approximation (longitude scaled by the cosine of the mean
// latitude); the distance metric stays haversine.
func projectOnSegment(a, b, pt types.Point) types.Point {
	scale := math.Cos((a.Lat + b.Lat) / 2 * math.Pi / 180)
	ax, ay := a.Lng*scale, a.Lat
	bx, by := b.Lng*scale, b.Lat
	px, py := pt.Lng*scale, pt.Lat

	dx, dy := bx-ax, by-ay
	segLen2 := dx*dx + dy*dy
	if segLen2 == 0 {
		return a
	}
	t := ((px-ax)*dx + (py-ay)*dy) / segLen2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return types.Point{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lng: a.Lng + t*(b.Lng-a.Lng),
	}
}
