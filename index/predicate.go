package index

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Predicate selects the exact spatial test applied to candidate pairs.
type Predicate int

const (
	// Intersects matches pairs sharing at least one point.
	Intersects Predicate = iota
	// Contains matches pairs where the areal side strictly contains the
	// point-like side.
	Contains
)

func (p Predicate) String() string {
	switch p {
	case Intersects:
		return "intersects"
	case Contains:
		return "contains"
	default:
		return "unknown"
	}
}

// evaluate applies the predicate to a concrete geometry pair. Kind pairs with
// no defined rule report no match, never an error.
func (p Predicate) evaluate(left, right orb.Geometry) bool {
	switch p {
	case Contains:
		return contains(left, right)
	case Intersects:
		return intersects(left, right)
	default:
		return false
	}
}

// contains matches on the concrete kind pair: point-like against areal
// resolves to point-in-polygon regardless of which side holds the points. A
// point on the boundary is not contained; containment means the interior.
func contains(left, right orb.Geometry) bool {
	if pts, ok := pointsOf(right); ok {
		return allPointsContained(left, pts)
	}
	if pts, ok := pointsOf(left); ok {
		return allPointsContained(right, pts)
	}
	return false
}

func allPointsContained(g orb.Geometry, pts []orb.Point) bool {
	if len(pts) == 0 {
		return false
	}
	for _, pt := range pts {
		if !containsPoint(g, pt) {
			return false
		}
	}
	return true
}

// containsPoint tests strict interior containment. The planar helpers count
// boundary points as in, so those are filtered back out.
func containsPoint(g orb.Geometry, pt orb.Point) bool {
	switch v := g.(type) {
	case orb.Point:
		return v == pt
	case orb.Ring, orb.Polygon, orb.MultiPolygon, orb.Bound:
		return coversPoint(g, pt) && !onBoundary(g, pt)
	default:
		return false
	}
}

// coversPoint tests containment with the boundary included.
func coversPoint(g orb.Geometry, pt orb.Point) bool {
	switch v := g.(type) {
	case orb.Point:
		return v == pt
	case orb.Ring:
		return planar.RingContains(v, pt)
	case orb.Polygon:
		return planar.PolygonContains(v, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, pt)
	case orb.Bound:
		return v.Contains(pt)
	default:
		return false
	}
}

// intersects decomposes both sides into points, segments and areal parts and
// tests every defined combination. Undefined combinations report no match.
func intersects(left, right orb.Geometry) bool {
	// Point-like sides reduce to containment in the other geometry.
	if pts, ok := pointsOf(left); ok {
		return anyPointIn(right, pts)
	}
	if pts, ok := pointsOf(right); ok {
		return anyPointIn(left, pts)
	}

	segsL := segmentsOf(left)
	segsR := segmentsOf(right)
	for _, a := range segsL {
		for _, b := range segsR {
			if segmentsIntersect(a[0], a[1], b[0], b[1]) {
				return true
			}
		}
	}

	// Disjoint boundaries can still mean full containment of one side.
	if isAreal(left) && len(segsR) > 0 && coversPoint(left, segsR[0][0]) {
		return true
	}
	if isAreal(right) && len(segsL) > 0 && coversPoint(right, segsL[0][0]) {
		return true
	}
	return false
}

// pointsOf returns the points of a point-like geometry.
func pointsOf(g orb.Geometry) ([]orb.Point, bool) {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}, true
	case orb.MultiPoint:
		return v, true
	default:
		return nil, false
	}
}

func anyPointIn(g orb.Geometry, pts []orb.Point) bool {
	for _, pt := range pts {
		if coversPoint(g, pt) || onBoundary(g, pt) {
			return true
		}
	}
	return false
}

// onBoundary reports whether pt lies on one of g's segments. It covers the
// line-kind geometries, which have no interior for containsPoint to test.
func onBoundary(g orb.Geometry, pt orb.Point) bool {
	for _, s := range segmentsOf(g) {
		if onSegment(s[0], s[1], pt) {
			return true
		}
	}
	return false
}

func isAreal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Ring, orb.Polygon, orb.MultiPolygon, orb.Bound:
		return true
	default:
		return false
	}
}

// segmentsOf flattens a geometry into its line segments.
func segmentsOf(g orb.Geometry) [][2]orb.Point {
	var segs [][2]orb.Point
	add := func(pts []orb.Point) {
		for i := 1; i < len(pts); i++ {
			segs = append(segs, [2]orb.Point{pts[i-1], pts[i]})
		}
	}
	switch v := g.(type) {
	case orb.LineString:
		add(v)
	case orb.MultiLineString:
		for _, ls := range v {
			add(ls)
		}
	case orb.Ring:
		add(v)
	case orb.Polygon:
		for _, r := range v {
			add(r)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			for _, r := range p {
				add(r)
			}
		}
	case orb.Bound:
		segs = segmentsOf(v.ToPolygon())
	}
	return segs
}

// segmentsIntersect reports whether segments ab and cd share a point,
// touching endpoints and collinear overlap included.
func segmentsIntersect(a, b, c, d orb.Point) bool {
	d1 := orientation(c, d, a)
	d2 := orientation(c, d, b)
	d3 := orientation(a, b, c)
	d4 := orientation(a, b, d)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

// orientation is the signed area of the triangle abc: positive for
// counter-clockwise, zero for collinear.
func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// onSegment reports whether collinear point p lies within segment ab.
func onSegment(a, b, p orb.Point) bool {
	if orientation(a, b, p) != 0 {
		return false
	}
	return min(a[0], b[0]) <= p[0] && p[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= p[1] && p[1] <= max(a[1], b[1])
}
