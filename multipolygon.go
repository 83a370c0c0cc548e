package geoarrow

import (
	"github.com/paulmach/orb"
)

// MultiPolygonArray stores multi-polygons as flat x/y buffers delimited by
// three offset levels: geometry offsets slice polygon indices, polygon
// offsets slice ring indices, ring offsets slice coordinate indices.
type MultiPolygonArray struct {
	x              []float64
	y              []float64
	geomOffsets    Offsets
	polygonOffsets Offsets
	ringOffsets    Offsets
	validity       *Bitmap
}

// NewMultiPolygonArray validates buffer lengths and wraps them without
// copying.
func NewMultiPolygonArray(x, y []float64, geomOffsets, polygonOffsets, ringOffsets Offsets, validity *Bitmap) (*MultiPolygonArray, error) {
	if err := checkCoords(x, y, validity, geomOffsets.Len()); err != nil {
		return nil, err
	}
	if geomOffsets.Last() > int64(polygonOffsets.Len()) {
		return nil, layoutErrorf("geometry offsets end at %d but only %d polygons exist", geomOffsets.Last(), polygonOffsets.Len())
	}
	if polygonOffsets.Last() > int64(ringOffsets.Len()) {
		return nil, layoutErrorf("polygon offsets end at %d but only %d rings exist", polygonOffsets.Last(), ringOffsets.Len())
	}
	if ringOffsets.Last() > int64(len(x)) {
		return nil, layoutErrorf("ring offsets end at %d but only %d coordinates exist", ringOffsets.Last(), len(x))
	}
	return &MultiPolygonArray{
		x:              x,
		y:              y,
		geomOffsets:    geomOffsets,
		polygonOffsets: polygonOffsets,
		ringOffsets:    ringOffsets,
		validity:       validity,
	}, nil
}

// MustNewMultiPolygonArray is NewMultiPolygonArray, panicking on invalid
// layout.
func MustNewMultiPolygonArray(x, y []float64, geomOffsets, polygonOffsets, ringOffsets Offsets, validity *Bitmap) *MultiPolygonArray {
	a, err := NewMultiPolygonArray(x, y, geomOffsets, polygonOffsets, ringOffsets, validity)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of multi-polygons in the array.
func (a *MultiPolygonArray) Len() int { return a.geomOffsets.Len() }

// GeometryType returns TypeMultiPolygon.
func (a *MultiPolygonArray) GeometryType() GeometryType { return TypeMultiPolygon }

// Validity returns the optional validity bitmap.
func (a *MultiPolygonArray) Validity() *Bitmap { return a.validity }

// IsNull reports whether element i is logically null.
func (a *MultiPolygonArray) IsNull(i int) bool {
	return a.validity != nil && !a.validity.Get(i)
}

// Value returns a zero-copy scalar view of element i. Validity is not
// checked.
func (a *MultiPolygonArray) Value(i int) MultiPolygon {
	return MultiPolygon{
		x:              a.x,
		y:              a.y,
		geomOffsets:    a.geomOffsets,
		polygonOffsets: a.polygonOffsets,
		ringOffsets:    a.ringOffsets,
		geomIndex:      i,
	}
}

// ValueAsGeo materializes element i as an orb.MultiPolygon, ignoring
// validity.
func (a *MultiPolygonArray) ValueAsGeo(i int) orb.Geometry {
	return a.Value(i).AsGeo()
}

// GetAsGeo materializes element i, reporting false when the element is null.
func (a *MultiPolygonArray) GetAsGeo(i int) (orb.MultiPolygon, bool) {
	if a.IsNull(i) {
		return nil, false
	}
	return a.Value(i).AsGeo(), true
}

// GeoIter iterates elements as orb geometries, yielding nil for null rows.
func (a *MultiPolygonArray) GeoIter() func(yield func(int, orb.Geometry) bool) {
	return geoIter(a)
}

// Iter iterates scalar views of every element, ignoring validity.
func (a *MultiPolygonArray) Iter() func(yield func(int, MultiPolygon) bool) {
	return func(yield func(int, MultiPolygon) bool) {
		for i := range a.Len() {
			if !yield(i, a.Value(i)) {
				return
			}
		}
	}
}

// Slice returns a zero-copy window of the array. It panics if offset+length
// exceeds Len.
func (a *MultiPolygonArray) Slice(offset, length int) GeometryArray {
	if offset+length > a.Len() {
		panic("geoarrow: multipolygon array slice out of bounds")
	}
	return a.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (a *MultiPolygonArray) SliceUnchecked(offset, length int) *MultiPolygonArray {
	return &MultiPolygonArray{
		x:              a.x,
		y:              a.y,
		geomOffsets:    a.geomOffsets.SliceUnchecked(offset, length),
		polygonOffsets: a.polygonOffsets,
		ringOffsets:    a.ringOffsets,
		validity:       sliceValidity(a.validity, offset, length),
	}
}

// Coords returns the shared coordinate buffers. They must not be mutated.
func (a *MultiPolygonArray) Coords() (x, y []float64) { return a.x, a.y }

// GeomOffsets returns the geometry-to-polygon offsets buffer.
func (a *MultiPolygonArray) GeomOffsets() Offsets { return a.geomOffsets }

// PolygonOffsets returns the polygon-to-ring offsets buffer.
func (a *MultiPolygonArray) PolygonOffsets() Offsets { return a.polygonOffsets }

// RingOffsets returns the ring-to-coordinate offsets buffer.
func (a *MultiPolygonArray) RingOffsets() Offsets { return a.ringOffsets }

func (a *MultiPolygonArray) geometryArray() {}

// MultiPolygon is a zero-copy view of one element of a MultiPolygonArray.
type MultiPolygon struct {
	x, y           []float64
	geomOffsets    Offsets
	polygonOffsets Offsets
	ringOffsets    Offsets
	geomIndex      int
}

// NumPolygons returns the number of polygons in the multi-polygon.
func (m MultiPolygon) NumPolygons() int {
	start, end := m.geomOffsets.Range(m.geomIndex)
	return end - start
}

// PolygonAt returns polygon i as a polygon view, reporting false when i is
// out of range.
func (m MultiPolygon) PolygonAt(i int) (Polygon, bool) {
	start, end := m.geomOffsets.Range(m.geomIndex)
	if i < 0 || start+i >= end {
		return Polygon{}, false
	}
	return Polygon{
		x:           m.x,
		y:           m.y,
		geomOffsets: m.polygonOffsets,
		ringOffsets: m.ringOffsets,
		geomIndex:   start + i,
	}, true
}

// AsGeo copies the view into an orb.MultiPolygon.
func (m MultiPolygon) AsGeo() orb.MultiPolygon {
	polyStart, polyEnd := m.geomOffsets.Range(m.geomIndex)
	mp := make(orb.MultiPolygon, 0, polyEnd-polyStart)
	for pi := polyStart; pi < polyEnd; pi++ {
		ringStart, ringEnd := m.polygonOffsets.Range(pi)
		poly := make(orb.Polygon, 0, ringEnd-ringStart)
		for r := ringStart; r < ringEnd; r++ {
			coordStart, coordEnd := m.ringOffsets.Range(r)
			ring := make(orb.Ring, 0, coordEnd-coordStart)
			for i := coordStart; i < coordEnd; i++ {
				ring = append(ring, orb.Point{m.x[i], m.y[i]})
			}
			poly = append(poly, ring)
		}
		mp = append(mp, poly)
	}
	return mp
}

// Bound returns the bounding rectangle of the multi-polygon.
func (m MultiPolygon) Bound() orb.Bound {
	polyStart, polyEnd := m.geomOffsets.Range(m.geomIndex)
	if polyStart == polyEnd {
		return boundOf(m.x, m.y, 0, 0)
	}
	firstRing, _ := m.polygonOffsets.Range(polyStart)
	_, lastRing := m.polygonOffsets.Range(polyEnd - 1)
	if firstRing == lastRing {
		return boundOf(m.x, m.y, 0, 0)
	}
	coordStart, _ := m.ringOffsets.Range(firstRing)
	_, coordEnd := m.ringOffsets.Range(lastRing - 1)
	return boundOf(m.x, m.y, coordStart, coordEnd)
}

// MultiPolygonBuilder accumulates multi-polygons into a MultiPolygonArray.
type MultiPolygonBuilder struct {
	x              []float64
	y              []float64
	geomOffsets    *OffsetsBuilder
	polygonOffsets *OffsetsBuilder
	ringOffsets    *OffsetsBuilder
	validity       *BitmapBuilder
}

// NewMultiPolygonBuilder creates an empty builder.
func NewMultiPolygonBuilder() *MultiPolygonBuilder {
	return NewMultiPolygonBuilderWithCapacity(0, 0, 0, 0)
}

// NewMultiPolygonBuilderWithCapacity creates a builder with room for coordCap
// coordinates, ringCap rings and polygonCap polygons across geomCap
// multi-polygons.
func NewMultiPolygonBuilderWithCapacity(coordCap, geomCap, ringCap, polygonCap int) *MultiPolygonBuilder {
	return &MultiPolygonBuilder{
		x:              make([]float64, 0, coordCap),
		y:              make([]float64, 0, coordCap),
		geomOffsets:    NewOffsetsBuilder(geomCap),
		polygonOffsets: NewOffsetsBuilder(polygonCap),
		ringOffsets:    NewOffsetsBuilder(ringCap),
	}
}

// Push appends one multi-polygon depth-first: coordinates, then ring counts,
// then polygon counts. A nil value appends a null element covering zero
// polygons.
func (b *MultiPolygonBuilder) Push(mp *orb.MultiPolygon) error {
	if mp == nil {
		b.ensureValidity()
		if err := b.geomOffsets.Push(0); err != nil {
			return err
		}
		b.validity.Push(false)
		return nil
	}
	for _, poly := range *mp {
		for _, ring := range poly {
			for _, p := range ring {
				b.x = append(b.x, p[0])
				b.y = append(b.y, p[1])
			}
			if err := b.ringOffsets.Push(len(ring)); err != nil {
				return err
			}
		}
		if err := b.polygonOffsets.Push(len(poly)); err != nil {
			return err
		}
	}
	if err := b.geomOffsets.Push(len(*mp)); err != nil {
		return err
	}
	if b.validity != nil {
		b.validity.Push(true)
	}
	return nil
}

// PushGeometry appends g if it is an orb.MultiPolygon, a nil g as null, and
// returns ErrInvalidGeomType otherwise.
func (b *MultiPolygonBuilder) PushGeometry(g orb.Geometry) error {
	if g == nil {
		return b.Push(nil)
	}
	mp, ok := g.(orb.MultiPolygon)
	if !ok {
		return ErrInvalidGeomType
	}
	return b.Push(&mp)
}

// Len returns the number of elements pushed so far.
func (b *MultiPolygonBuilder) Len() int { return b.geomOffsets.Len() }

// Finish freezes the builder into an immutable array in O(1). The builder
// must not be reused.
func (b *MultiPolygonBuilder) Finish() *MultiPolygonArray {
	var validity *Bitmap
	if b.validity != nil {
		validity = b.validity.Finish()
	}
	return &MultiPolygonArray{
		x:              b.x,
		y:              b.y,
		geomOffsets:    b.geomOffsets.Finish(),
		polygonOffsets: b.polygonOffsets.Finish(),
		ringOffsets:    b.ringOffsets.Finish(),
		validity:       validity,
	}
}

func (b *MultiPolygonBuilder) ensureValidity() {
	if b.validity == nil {
		b.validity = NewBitmapBuilder(b.geomOffsets.Len())
		b.validity.PushN(true, b.geomOffsets.Len())
	}
}
