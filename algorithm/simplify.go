package algorithm

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// Simplify reduces every row with the Douglas-Peucker algorithm at the given
// threshold, in coordinate units. Point and multipoint arrays have nothing to
// simplify and are returned unchanged. Null rows stay null.
func Simplify(arr geoarrow.GeometryArray, threshold float64) (geoarrow.GeometryArray, error) {
	s := simplify.DouglasPeucker(threshold)

	switch arr.(type) {
	case *geoarrow.PointArray, *geoarrow.MultiPointArray:
		return arr, nil

	case *geoarrow.LineStringArray, *geoarrow.MultiLineStringArray,
		*geoarrow.PolygonArray, *geoarrow.MultiPolygonArray:
		geoms := make([]orb.Geometry, arr.Len())
		for i := range arr.Len() {
			g, err := rowGeometry(arr, i)
			if err != nil {
				return nil, err
			}
			if g == nil {
				continue
			}
			geoms[i] = s.Simplify(g)
		}
		return rebuildAs(arr.GeometryType(), geoms)

	case *geoarrow.WKBArray:
		b := geoarrow.NewWKBBuilder()
		for i := range arr.Len() {
			g, err := rowGeometry(arr, i)
			if err != nil {
				return nil, err
			}
			if g == nil {
				if err := b.Push(nil); err != nil {
					return nil, err
				}
				continue
			}
			switch g.(type) {
			case orb.Point, orb.MultiPoint:
				// nothing to simplify
			default:
				g = s.Simplify(g)
			}
			if err := b.Push(g); err != nil {
				return nil, err
			}
		}
		return b.Finish(), nil

	default:
		return nil, &geoarrow.UnsupportedGeometryError{Op: "simplify"}
	}
}

// rebuildAs assembles geoms into a typed array of kind t, keeping nil entries
// as null rows.
func rebuildAs(t geoarrow.GeometryType, geoms []orb.Geometry) (geoarrow.GeometryArray, error) {
	switch t {
	case geoarrow.TypeLineString:
		b := geoarrow.NewLineStringBuilder()
		return finishTyped(b, b.Finish, geoms)
	case geoarrow.TypeMultiPoint:
		b := geoarrow.NewMultiPointBuilder()
		return finishTyped(b, b.Finish, geoms)
	case geoarrow.TypePolygon:
		b := geoarrow.NewPolygonBuilder()
		return finishTyped(b, b.Finish, geoms)
	case geoarrow.TypeMultiLineString:
		b := geoarrow.NewMultiLineStringBuilder()
		return finishTyped(b, b.Finish, geoms)
	case geoarrow.TypeMultiPolygon:
		b := geoarrow.NewMultiPolygonBuilder()
		return finishTyped(b, b.Finish, geoms)
	default:
		return nil, &geoarrow.UnsupportedGeometryError{Op: "rebuild"}
	}
}

type geometryPusher interface {
	PushGeometry(orb.Geometry) error
}

// finishTyped pushes every geometry, nils included as nulls, and freezes the
// builder.
func finishTyped[T geoarrow.GeometryArray](b geometryPusher, finish func() T, geoms []orb.Geometry) (geoarrow.GeometryArray, error) {
	for _, g := range geoms {
		if err := b.PushGeometry(g); err != nil {
			return nil, err
		}
	}
	return finish(), nil
}
