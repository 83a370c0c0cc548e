// Package geoarrow provides a columnar, Arrow-compatible in-memory encoding
// for orb geometries. Geometries are stored as flat coordinate buffers plus
// nested offset buffers, so large arrays can be held and sliced without
// per-geometry allocation, and round-trip losslessly through Well-Known-Binary
// and the Arrow LargeList/Struct interchange layouts.
package geoarrow

import (
	"math"

	"github.com/paulmach/orb"
)

// GeometryType identifies the concrete layout of a GeometryArray.
type GeometryType int

const (
	TypePoint GeometryType = iota
	TypeLineString
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
	TypeWKB
)

// String returns the GeoJSON-style name of the geometry type.
func (t GeometryType) String() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypeLineString:
		return "LineString"
	case TypePolygon:
		return "Polygon"
	case TypeMultiPoint:
		return "MultiPoint"
	case TypeMultiLineString:
		return "MultiLineString"
	case TypeMultiPolygon:
		return "MultiPolygon"
	case TypeWKB:
		return "WKB"
	default:
		return "Unknown"
	}
}

// GeometryArray is the closed set of geometry array variants: the six typed
// arrays plus WKBArray. Algorithms that need to be generic over the concrete
// variant accept a GeometryArray and switch over GeometryType; there is no way
// to implement this interface outside the package.
type GeometryArray interface {
	// Len returns the number of geometries in the array.
	Len() int
	// GeometryType returns the tag of the concrete variant.
	GeometryType() GeometryType
	// Validity returns the optional validity bitmap, or nil when all
	// elements are valid.
	Validity() *Bitmap
	// IsNull reports whether element i is logically null.
	IsNull(i int) bool
	// ValueAsGeo materializes element i as an orb geometry, ignoring
	// validity. The caller combines it with IsNull where nulls matter.
	ValueAsGeo(i int) orb.Geometry
	// GeoIter iterates elements in order as orb geometries, yielding nil
	// for null elements. Iteration is restartable and finite.
	GeoIter() func(yield func(int, orb.Geometry) bool)
	// Slice returns a zero-copy window of the array. It panics if
	// offset+length exceeds Len.
	Slice(offset, length int) GeometryArray

	geometryArray() // closed set marker
}

// checkCoords validates the invariants shared by every coordinate-backed
// variant: x and y must have equal lengths and the validity bitmap, when
// present, must cover exactly n elements.
func checkCoords(x, y []float64, validity *Bitmap, n int) error {
	if len(x) != len(y) {
		return layoutErrorf("x and y buffers must have the same length, got %d and %d", len(x), len(y))
	}
	if validity != nil && validity.Len() != n {
		return layoutErrorf("validity mask length %d must match the number of elements %d", validity.Len(), n)
	}
	return nil
}

func sliceValidity(v *Bitmap, offset, length int) *Bitmap {
	if v == nil {
		return nil
	}
	return v.Slice(offset, length)
}

// boundOf folds min/max over the coordinate range [start, end). An empty
// range yields an infinite-initialized bound.
func boundOf(x, y []float64, start, end int) orb.Bound {
	b := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	for i := start; i < end; i++ {
		b.Min[0] = math.Min(b.Min[0], x[i])
		b.Min[1] = math.Min(b.Min[1], y[i])
		b.Max[0] = math.Max(b.Max[0], x[i])
		b.Max[1] = math.Max(b.Max[1], y[i])
	}
	return b
}

// geoIter adapts an array's per-element accessors into the shared
// validity-aware iteration contract.
func geoIter(a GeometryArray) func(yield func(int, orb.Geometry) bool) {
	return func(yield func(int, orb.Geometry) bool) {
		for i := 0; i < a.Len(); i++ {
			var g orb.Geometry
			if !a.IsNull(i) {
				g = a.ValueAsGeo(i)
			}
			if !yield(i, g) {
				return
			}
		}
	}
}

// geometryTypeOf maps an orb geometry to its array tag. Ring and Bound map to
// Polygon, matching how they are encoded.
func geometryTypeOf(g orb.Geometry) (GeometryType, bool) {
	switch g.(type) {
	case orb.Point:
		return TypePoint, true
	case orb.LineString:
		return TypeLineString, true
	case orb.Ring, orb.Polygon, orb.Bound:
		return TypePolygon, true
	case orb.MultiPoint:
		return TypeMultiPoint, true
	case orb.MultiLineString:
		return TypeMultiLineString, true
	case orb.MultiPolygon:
		return TypeMultiPolygon, true
	default:
		return TypeWKB, false
	}
}

// TotalBounds returns the bounding rectangle of every coordinate in the array
// as (minX, minY, maxX, maxY). Null elements are skipped. If the array holds
// no coordinates at all, the bounds are infinite-initialized, i.e.
// (+Inf, +Inf, -Inf, -Inf). WKB arrays decode through ValueAsGeo, which
// panics on malformed bytes; validate untrusted blobs with DecodeValue first.
func TotalBounds(arr GeometryArray) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, g := range arr.GeoIter() {
		if g == nil {
			continue
		}
		b := g.Bound()
		minX = math.Min(minX, b.Min[0])
		minY = math.Min(minY, b.Min[1])
		maxX = math.Max(maxX, b.Max[0])
		maxY = math.Max(maxY, b.Max[1])
	}
	return minX, minY, maxX, maxY
}
