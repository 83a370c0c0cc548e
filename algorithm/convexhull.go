package algorithm

import (
	"sort"

	"github.com/paulmach/orb"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// ConvexHull returns the convex hull of every row as a single-ring polygon.
// Rows with fewer than three distinct points produce a degenerate hull over
// the points that exist. Null rows stay null.
func ConvexHull(arr geoarrow.GeometryArray) (*geoarrow.PolygonArray, error) {
	switch arr.(type) {
	case *geoarrow.PointArray, *geoarrow.MultiPointArray,
		*geoarrow.LineStringArray, *geoarrow.MultiLineStringArray,
		*geoarrow.PolygonArray, *geoarrow.MultiPolygonArray, *geoarrow.WKBArray:
	default:
		return nil, &geoarrow.UnsupportedGeometryError{Op: "convex hull"}
	}

	b := geoarrow.NewPolygonBuilder()
	for i := range arr.Len() {
		g, err := rowGeometry(arr, i)
		if err != nil {
			return nil, err
		}
		if g == nil {
			b.Push(nil)
			continue
		}
		hull := orb.Polygon{convexHull(collectPoints(g))}
		b.Push(&hull)
	}
	return b.Finish(), nil
}

// collectPoints flattens a geometry into its constituent points.
func collectPoints(g orb.Geometry) []orb.Point {
	var pts []orb.Point
	switch v := g.(type) {
	case orb.Point:
		pts = append(pts, v)
	case orb.MultiPoint:
		pts = append(pts, v...)
	case orb.LineString:
		pts = append(pts, v...)
	case orb.MultiLineString:
		for _, ls := range v {
			pts = append(pts, ls...)
		}
	case orb.Ring:
		pts = append(pts, v...)
	case orb.Polygon:
		for _, r := range v {
			pts = append(pts, r...)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			for _, r := range p {
				pts = append(pts, r...)
			}
		}
	case orb.Bound:
		pts = collectPoints(v.ToPolygon())
	}
	return pts
}

// convexHull runs the monotone chain algorithm and returns a closed
// counter-clockwise ring.
func convexHull(pts []orb.Point) orb.Ring {
	if len(pts) == 0 {
		return orb.Ring{}
	}

	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	// Drop duplicates so collinear handling stays simple.
	unique := sorted[:1]
	for _, p := range sorted[1:] {
		if p != unique[len(unique)-1] {
			unique = append(unique, p)
		}
	}
	if len(unique) == 1 {
		p := unique[0]
		return orb.Ring{p, p}
	}

	var lower, upper []orb.Point
	for _, p := range unique {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(unique) - 1; i >= 0; i-- {
		p := unique[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Each chain's last point opens the other chain; the ring closes on the
	// first point of the lower chain.
	ring := make(orb.Ring, 0, len(lower)+len(upper)-1)
	ring = append(ring, lower...)
	ring = append(ring, upper[1:]...)
	return ring
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
