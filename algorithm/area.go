package algorithm

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// Area returns the planar area of every row. Holes subtract from their
// polygon's area. Points and lines have zero area. Null rows stay null.
func Area(arr geoarrow.GeometryArray) ([]float64, *geoarrow.Bitmap, error) {
	switch arr.(type) {
	case *geoarrow.PointArray, *geoarrow.MultiPointArray,
		*geoarrow.LineStringArray, *geoarrow.MultiLineStringArray:
		return make([]float64, arr.Len()), arr.Validity(), nil
	case *geoarrow.PolygonArray, *geoarrow.MultiPolygonArray, *geoarrow.WKBArray:
		return mapFloat(arr, planar.Area)
	default:
		return nil, nil, &geoarrow.UnsupportedGeometryError{Op: "area"}
	}
}

// Centroid returns the area-weighted centroid of every row. Point rows are
// their own centroid; polygon centroids account for holes. Null rows stay
// null.
func Centroid(arr geoarrow.GeometryArray) (*geoarrow.PointArray, error) {
	switch arr.(type) {
	case *geoarrow.PointArray, *geoarrow.MultiPointArray,
		*geoarrow.LineStringArray, *geoarrow.MultiLineStringArray,
		*geoarrow.PolygonArray, *geoarrow.MultiPolygonArray, *geoarrow.WKBArray:
	default:
		return nil, &geoarrow.UnsupportedGeometryError{Op: "centroid"}
	}

	b := geoarrow.NewPointBuilderWithCapacity(arr.Len())
	for i := range arr.Len() {
		g, err := rowGeometry(arr, i)
		if err != nil {
			return nil, err
		}
		if g == nil {
			b.Push(nil)
			continue
		}
		c, _ := planar.CentroidArea(g)
		b.Push(&c)
	}
	return b.Finish(), nil
}

// Envelope returns the bounding rectangle of every row. Null rows produce a
// zero bound and a cleared validity bit.
func Envelope(arr geoarrow.GeometryArray) ([]orb.Bound, *geoarrow.Bitmap, error) {
	out := make([]orb.Bound, arr.Len())
	validity := geoarrow.NewBitmapBuilder(arr.Len())

	bound := func(i int) (orb.Bound, error) {
		switch a := arr.(type) {
		case *geoarrow.PointArray:
			return a.Value(i).Bound(), nil
		case *geoarrow.LineStringArray:
			return a.Value(i).Bound(), nil
		case *geoarrow.MultiPointArray:
			return a.Value(i).Bound(), nil
		case *geoarrow.PolygonArray:
			return a.Value(i).Bound(), nil
		case *geoarrow.MultiLineStringArray:
			return a.Value(i).Bound(), nil
		case *geoarrow.MultiPolygonArray:
			return a.Value(i).Bound(), nil
		case *geoarrow.WKBArray:
			g, err := a.DecodeValue(i)
			if err != nil {
				return orb.Bound{}, err
			}
			return g.Bound(), nil
		default:
			return orb.Bound{}, &geoarrow.UnsupportedGeometryError{Op: "envelope"}
		}
	}

	for i := range arr.Len() {
		if arr.IsNull(i) {
			validity.Push(false)
			continue
		}
		b, err := bound(i)
		if err != nil {
			return nil, nil, err
		}
		out[i] = b
		validity.Push(true)
	}
	return out, validity.Finish(), nil
}
