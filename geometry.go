package geoarrow

import (
	"github.com/paulmach/orb"
)

// FromGeometries builds the narrowest array for a slice of geometries: when
// every non-nil element has the same layout the matching typed array is
// built, otherwise the geometries are encoded into a WKBArray. Nil elements
// become nulls in either case.
func FromGeometries(geoms []orb.Geometry) (GeometryArray, error) {
	typ, homogeneous := commonType(geoms)
	if !homogeneous {
		b := NewWKBBuilderWithCapacity(0, len(geoms))
		for _, g := range geoms {
			if err := b.Push(g); err != nil {
				return nil, err
			}
		}
		return b.Finish(), nil
	}
	return buildTyped(typ, geoms)
}

// commonType resolves the single array type shared by all non-nil elements.
// An all-nil or empty slice defaults to WKB, as does any unsupported or mixed
// input.
func commonType(geoms []orb.Geometry) (GeometryType, bool) {
	typ := TypeWKB
	seen := false
	for _, g := range geoms {
		if g == nil {
			continue
		}
		t, ok := geometryTypeOf(g)
		if !ok {
			return TypeWKB, false
		}
		if seen && t != typ {
			return TypeWKB, false
		}
		typ, seen = t, true
	}
	if !seen {
		return TypeWKB, false
	}
	return typ, true
}

// buildTyped pushes every geometry through the builder matching typ.
func buildTyped(typ GeometryType, geoms []orb.Geometry) (GeometryArray, error) {
	var b interface {
		PushGeometry(orb.Geometry) error
	}
	var finish func() GeometryArray

	switch typ {
	case TypePoint:
		pb := NewPointBuilderWithCapacity(len(geoms))
		b, finish = pb, func() GeometryArray { return pb.Finish() }
	case TypeLineString:
		lb := NewLineStringBuilderWithCapacity(0, len(geoms))
		b, finish = lb, func() GeometryArray { return lb.Finish() }
	case TypePolygon:
		pb := NewPolygonBuilderWithCapacity(0, len(geoms), 0)
		b, finish = pb, func() GeometryArray { return pb.Finish() }
	case TypeMultiPoint:
		mb := NewMultiPointBuilderWithCapacity(0, len(geoms))
		b, finish = mb, func() GeometryArray { return mb.Finish() }
	case TypeMultiLineString:
		mb := NewMultiLineStringBuilderWithCapacity(0, len(geoms), 0)
		b, finish = mb, func() GeometryArray { return mb.Finish() }
	case TypeMultiPolygon:
		mb := NewMultiPolygonBuilderWithCapacity(0, len(geoms), 0, 0)
		b, finish = mb, func() GeometryArray { return mb.Finish() }
	default:
		wb := NewWKBBuilderWithCapacity(0, len(geoms))
		b, finish = wb, func() GeometryArray { return wb.Finish() }
	}

	for _, g := range geoms {
		if err := b.PushGeometry(g); err != nil {
			return nil, err
		}
	}
	return finish(), nil
}

// FromWKBArray decodes every blob of a WKBArray into the typed array for
// targetType. A decoded kind that does not fit the target builder returns
// ErrInvalidGeomType; null rows stay null. Passing TypeWKB returns the input
// unchanged.
func FromWKBArray(w *WKBArray, targetType GeometryType) (GeometryArray, error) {
	if targetType == TypeWKB {
		return w, nil
	}
	geoms := make([]orb.Geometry, w.Len())
	for i := range w.Len() {
		if w.IsNull(i) {
			continue
		}
		g, err := w.DecodeValue(i)
		if err != nil {
			return nil, err
		}
		geoms[i] = g
	}
	return buildTyped(targetType, geoms)
}
