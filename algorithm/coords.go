package algorithm

import (
	geoarrow "github.com/tingold/orb-geoarrow"
)

// X returns the x coordinate of every row of a point array. Non-point arrays,
// WKB included, are rejected.
func X(arr geoarrow.GeometryArray) ([]float64, *geoarrow.Bitmap, error) {
	pts, ok := arr.(*geoarrow.PointArray)
	if !ok {
		return nil, nil, &geoarrow.UnsupportedGeometryError{Op: "x"}
	}
	x, _ := pts.Coords()
	return x, pts.Validity(), nil
}

// Y returns the y coordinate of every row of a point array. Non-point arrays,
// WKB included, are rejected.
func Y(arr geoarrow.GeometryArray) ([]float64, *geoarrow.Bitmap, error) {
	pts, ok := arr.(*geoarrow.PointArray)
	if !ok {
		return nil, nil, &geoarrow.UnsupportedGeometryError{Op: "y"}
	}
	_, y := pts.Coords()
	return y, pts.Validity(), nil
}

// Exterior returns the exterior ring of every polygon row as a line string.
// Polygons without rings and null rows become null. Non-polygon arrays are
// rejected.
func Exterior(arr geoarrow.GeometryArray) (*geoarrow.LineStringArray, error) {
	polys, ok := arr.(*geoarrow.PolygonArray)
	if !ok {
		return nil, &geoarrow.UnsupportedGeometryError{Op: "exterior"}
	}

	b := geoarrow.NewLineStringBuilder()
	for i := range polys.Len() {
		if polys.IsNull(i) {
			if err := b.Push(nil); err != nil {
				return nil, err
			}
			continue
		}
		ring, ok := polys.Value(i).Exterior()
		if !ok {
			if err := b.Push(nil); err != nil {
				return nil, err
			}
			continue
		}
		ls := ring.AsGeo()
		if err := b.Push(&ls); err != nil {
			return nil, err
		}
	}
	return b.Finish(), nil
}
