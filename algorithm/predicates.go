package algorithm

import (
	"github.com/paulmach/orb"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// IsEmpty reports, per row, whether the geometry has no coordinates. Null
// rows stay null.
func IsEmpty(arr geoarrow.GeometryArray) ([]bool, *geoarrow.Bitmap, error) {
	switch arr.(type) {
	case *geoarrow.PointArray, *geoarrow.MultiPointArray,
		*geoarrow.LineStringArray, *geoarrow.MultiLineStringArray,
		*geoarrow.PolygonArray, *geoarrow.MultiPolygonArray, *geoarrow.WKBArray:
	default:
		return nil, nil, &geoarrow.UnsupportedGeometryError{Op: "is empty"}
	}

	out := make([]bool, arr.Len())
	validity := geoarrow.NewBitmapBuilder(arr.Len())
	for i := range arr.Len() {
		g, err := rowGeometry(arr, i)
		if err != nil {
			return nil, nil, err
		}
		if g == nil {
			validity.Push(false)
			continue
		}
		out[i] = len(collectPoints(g)) == 0
		validity.Push(true)
	}
	return out, validity.Finish(), nil
}

// IsRing reports, per row, whether the line is closed with at least three
// distinct positions. It is defined for line string arrays; WKB rows that do
// not decode to a line string report false. Other array kinds return
// ErrNotImplemented.
func IsRing(arr geoarrow.GeometryArray) ([]bool, *geoarrow.Bitmap, error) {
	switch arr.(type) {
	case *geoarrow.LineStringArray, *geoarrow.WKBArray:
	default:
		return nil, nil, geoarrow.ErrNotImplemented
	}

	out := make([]bool, arr.Len())
	validity := geoarrow.NewBitmapBuilder(arr.Len())
	for i := range arr.Len() {
		g, err := rowGeometry(arr, i)
		if err != nil {
			return nil, nil, err
		}
		if g == nil {
			validity.Push(false)
			continue
		}
		if ls, ok := g.(orb.LineString); ok {
			out[i] = len(ls) >= 4 && ls[0] == ls[len(ls)-1]
		}
		validity.Push(true)
	}
	return out, validity.Finish(), nil
}
