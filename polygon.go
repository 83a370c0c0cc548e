package geoarrow

import (
	"github.com/paulmach/orb"
)

// PolygonArray stores polygons as flat x/y buffers delimited by two offset
// levels: geometry offsets slice ring indices, ring offsets slice coordinate
// indices. Ring 0 of each geometry's range is the exterior ring, the rest are
// holes.
type PolygonArray struct {
	x           []float64
	y           []float64
	geomOffsets Offsets
	ringOffsets Offsets
	validity    *Bitmap
}

// NewPolygonArray validates buffer lengths and wraps them without copying.
func NewPolygonArray(x, y []float64, geomOffsets, ringOffsets Offsets, validity *Bitmap) (*PolygonArray, error) {
	if err := checkCoords(x, y, validity, geomOffsets.Len()); err != nil {
		return nil, err
	}
	if geomOffsets.Last() > int64(ringOffsets.Len()) {
		return nil, layoutErrorf("geometry offsets end at %d but only %d rings exist", geomOffsets.Last(), ringOffsets.Len())
	}
	if ringOffsets.Last() > int64(len(x)) {
		return nil, layoutErrorf("ring offsets end at %d but only %d coordinates exist", ringOffsets.Last(), len(x))
	}
	return &PolygonArray{x: x, y: y, geomOffsets: geomOffsets, ringOffsets: ringOffsets, validity: validity}, nil
}

// MustNewPolygonArray is NewPolygonArray, panicking on invalid layout.
func MustNewPolygonArray(x, y []float64, geomOffsets, ringOffsets Offsets, validity *Bitmap) *PolygonArray {
	a, err := NewPolygonArray(x, y, geomOffsets, ringOffsets, validity)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of polygons in the array.
func (a *PolygonArray) Len() int { return a.geomOffsets.Len() }

// GeometryType returns TypePolygon.
func (a *PolygonArray) GeometryType() GeometryType { return TypePolygon }

// Validity returns the optional validity bitmap.
func (a *PolygonArray) Validity() *Bitmap { return a.validity }

// IsNull reports whether element i is logically null.
func (a *PolygonArray) IsNull(i int) bool {
	return a.validity != nil && !a.validity.Get(i)
}

// Value returns a zero-copy scalar view of element i. Validity is not
// checked.
func (a *PolygonArray) Value(i int) Polygon {
	return Polygon{x: a.x, y: a.y, geomOffsets: a.geomOffsets, ringOffsets: a.ringOffsets, geomIndex: i}
}

// ValueAsGeo materializes element i as an orb.Polygon, ignoring validity.
func (a *PolygonArray) ValueAsGeo(i int) orb.Geometry {
	return a.Value(i).AsGeo()
}

// GetAsGeo materializes element i, reporting false when the element is null.
func (a *PolygonArray) GetAsGeo(i int) (orb.Polygon, bool) {
	if a.IsNull(i) {
		return nil, false
	}
	return a.Value(i).AsGeo(), true
}

// GeoIter iterates elements as orb geometries, yielding nil for null rows.
func (a *PolygonArray) GeoIter() func(yield func(int, orb.Geometry) bool) {
	return geoIter(a)
}

// Iter iterates scalar views of every element, ignoring validity.
func (a *PolygonArray) Iter() func(yield func(int, Polygon) bool) {
	return func(yield func(int, Polygon) bool) {
		for i := range a.Len() {
			if !yield(i, a.Value(i)) {
				return
			}
		}
	}
}

// Slice returns a zero-copy window of the array. It panics if offset+length
// exceeds Len.
func (a *PolygonArray) Slice(offset, length int) GeometryArray {
	if offset+length > a.Len() {
		panic("geoarrow: polygon array slice out of bounds")
	}
	return a.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (a *PolygonArray) SliceUnchecked(offset, length int) *PolygonArray {
	return &PolygonArray{
		x:           a.x,
		y:           a.y,
		geomOffsets: a.geomOffsets.SliceUnchecked(offset, length),
		ringOffsets: a.ringOffsets,
		validity:    sliceValidity(a.validity, offset, length),
	}
}

// AsMultiLineString re-tags the array as a MultiLineStringArray. Polygon and
// MultiLineString share a binary layout, so this is O(1) and the buffers stay
// shared.
func (a *PolygonArray) AsMultiLineString() *MultiLineStringArray {
	return &MultiLineStringArray{
		x:           a.x,
		y:           a.y,
		geomOffsets: a.geomOffsets,
		ringOffsets: a.ringOffsets,
		validity:    a.validity,
	}
}

// Coords returns the shared coordinate buffers. They must not be mutated.
func (a *PolygonArray) Coords() (x, y []float64) { return a.x, a.y }

// GeomOffsets returns the geometry-to-ring offsets buffer.
func (a *PolygonArray) GeomOffsets() Offsets { return a.geomOffsets }

// RingOffsets returns the ring-to-coordinate offsets buffer.
func (a *PolygonArray) RingOffsets() Offsets { return a.ringOffsets }

func (a *PolygonArray) geometryArray() {}

// Polygon is a zero-copy view of one element of a PolygonArray.
type Polygon struct {
	x, y        []float64
	geomOffsets Offsets
	ringOffsets Offsets
	geomIndex   int
}

// NumRings returns the total number of rings, exterior included.
func (p Polygon) NumRings() int {
	start, end := p.geomOffsets.Range(p.geomIndex)
	return end - start
}

// NumInteriors returns the number of holes.
func (p Polygon) NumInteriors() int {
	n := p.NumRings()
	if n == 0 {
		return 0
	}
	return n - 1
}

// Ring returns ring i (0 is the exterior) as a line-string view, reporting
// false when i is out of range.
func (p Polygon) Ring(i int) (LineString, bool) {
	start, end := p.geomOffsets.Range(p.geomIndex)
	if i < 0 || start+i >= end {
		return LineString{}, false
	}
	return LineString{x: p.x, y: p.y, geomOffsets: p.ringOffsets, geomIndex: start + i}, true
}

// Exterior returns the exterior ring view, reporting false for an empty
// polygon.
func (p Polygon) Exterior() (LineString, bool) {
	return p.Ring(0)
}

// AsGeo copies the view into an orb.Polygon.
func (p Polygon) AsGeo() orb.Polygon {
	ringStart, ringEnd := p.geomOffsets.Range(p.geomIndex)
	poly := make(orb.Polygon, 0, ringEnd-ringStart)
	for r := ringStart; r < ringEnd; r++ {
		coordStart, coordEnd := p.ringOffsets.Range(r)
		ring := make(orb.Ring, 0, coordEnd-coordStart)
		for i := coordStart; i < coordEnd; i++ {
			ring = append(ring, orb.Point{p.x[i], p.y[i]})
		}
		poly = append(poly, ring)
	}
	return poly
}

// Bound returns the bounding rectangle of the polygon. Its rings cover one
// contiguous coordinate region, so a single scan suffices.
func (p Polygon) Bound() orb.Bound {
	ringStart, ringEnd := p.geomOffsets.Range(p.geomIndex)
	if ringStart == ringEnd {
		return boundOf(p.x, p.y, 0, 0)
	}
	coordStart, _ := p.ringOffsets.Range(ringStart)
	_, coordEnd := p.ringOffsets.Range(ringEnd - 1)
	return boundOf(p.x, p.y, coordStart, coordEnd)
}

// PolygonBuilder accumulates polygons into a PolygonArray.
type PolygonBuilder struct {
	x           []float64
	y           []float64
	geomOffsets *OffsetsBuilder
	ringOffsets *OffsetsBuilder
	validity    *BitmapBuilder
}

// NewPolygonBuilder creates an empty builder.
func NewPolygonBuilder() *PolygonBuilder {
	return NewPolygonBuilderWithCapacity(0, 0, 0)
}

// NewPolygonBuilderWithCapacity creates a builder with room for coordCap
// coordinates and ringCap rings across geomCap polygons.
func NewPolygonBuilderWithCapacity(coordCap, geomCap, ringCap int) *PolygonBuilder {
	return &PolygonBuilder{
		x:           make([]float64, 0, coordCap),
		y:           make([]float64, 0, coordCap),
		geomOffsets: NewOffsetsBuilder(geomCap),
		ringOffsets: NewOffsetsBuilder(ringCap),
	}
}

// Push appends one polygon, exterior ring first, then holes. A nil value
// appends a null element covering zero rings.
func (b *PolygonBuilder) Push(poly *orb.Polygon) error {
	if poly == nil {
		b.ensureValidity()
		if err := b.geomOffsets.Push(0); err != nil {
			return err
		}
		b.validity.Push(false)
		return nil
	}
	for _, ring := range *poly {
		for _, p := range ring {
			b.x = append(b.x, p[0])
			b.y = append(b.y, p[1])
		}
		if err := b.ringOffsets.Push(len(ring)); err != nil {
			return err
		}
	}
	if err := b.geomOffsets.Push(len(*poly)); err != nil {
		return err
	}
	if b.validity != nil {
		b.validity.Push(true)
	}
	return nil
}

// PushGeometry appends polygons and the polygon-shaped orb kinds: Ring and
// Bound are normalized to single-ring polygons. A nil g appends null; other
// kinds return ErrInvalidGeomType.
func (b *PolygonBuilder) PushGeometry(g orb.Geometry) error {
	if g == nil {
		return b.Push(nil)
	}
	switch v := g.(type) {
	case orb.Polygon:
		return b.Push(&v)
	case orb.Ring:
		poly := orb.Polygon{v}
		return b.Push(&poly)
	case orb.Bound:
		poly := v.ToPolygon()
		return b.Push(&poly)
	default:
		return ErrInvalidGeomType
	}
}

// Len returns the number of elements pushed so far.
func (b *PolygonBuilder) Len() int { return b.geomOffsets.Len() }

// Finish freezes the builder into an immutable array in O(1). The builder
// must not be reused.
func (b *PolygonBuilder) Finish() *PolygonArray {
	var validity *Bitmap
	if b.validity != nil {
		validity = b.validity.Finish()
	}
	return &PolygonArray{
		x:           b.x,
		y:           b.y,
		geomOffsets: b.geomOffsets.Finish(),
		ringOffsets: b.ringOffsets.Finish(),
		validity:    validity,
	}
}

func (b *PolygonBuilder) ensureValidity() {
	if b.validity == nil {
		b.validity = NewBitmapBuilder(b.geomOffsets.Len())
		b.validity.PushN(true, b.geomOffsets.Len())
	}
}
