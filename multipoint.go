package geoarrow

import (
	"github.com/paulmach/orb"
)

// MultiPointArray stores multi-points as flat x/y buffers delimited by one
// level of geometry offsets. It shares its binary layout with
// LineStringArray; only the semantic tag differs.
type MultiPointArray struct {
	x           []float64
	y           []float64
	geomOffsets Offsets
	validity    *Bitmap
}

// NewMultiPointArray validates buffer lengths and wraps them without copying.
func NewMultiPointArray(x, y []float64, geomOffsets Offsets, validity *Bitmap) (*MultiPointArray, error) {
	if err := checkCoords(x, y, validity, geomOffsets.Len()); err != nil {
		return nil, err
	}
	if geomOffsets.Last() > int64(len(x)) {
		return nil, layoutErrorf("geometry offsets end at %d but only %d coordinates exist", geomOffsets.Last(), len(x))
	}
	return &MultiPointArray{x: x, y: y, geomOffsets: geomOffsets, validity: validity}, nil
}

// MustNewMultiPointArray is NewMultiPointArray, panicking on invalid layout.
func MustNewMultiPointArray(x, y []float64, geomOffsets Offsets, validity *Bitmap) *MultiPointArray {
	a, err := NewMultiPointArray(x, y, geomOffsets, validity)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of multi-points in the array.
func (a *MultiPointArray) Len() int { return a.geomOffsets.Len() }

// GeometryType returns TypeMultiPoint.
func (a *MultiPointArray) GeometryType() GeometryType { return TypeMultiPoint }

// Validity returns the optional validity bitmap.
func (a *MultiPointArray) Validity() *Bitmap { return a.validity }

// IsNull reports whether element i is logically null.
func (a *MultiPointArray) IsNull(i int) bool {
	return a.validity != nil && !a.validity.Get(i)
}

// Value returns a zero-copy scalar view of element i. Validity is not
// checked.
func (a *MultiPointArray) Value(i int) MultiPoint {
	return MultiPoint{x: a.x, y: a.y, geomOffsets: a.geomOffsets, geomIndex: i}
}

// ValueAsGeo materializes element i as an orb.MultiPoint, ignoring validity.
func (a *MultiPointArray) ValueAsGeo(i int) orb.Geometry {
	return a.Value(i).AsGeo()
}

// GetAsGeo materializes element i, reporting false when the element is null.
func (a *MultiPointArray) GetAsGeo(i int) (orb.MultiPoint, bool) {
	if a.IsNull(i) {
		return nil, false
	}
	return a.Value(i).AsGeo(), true
}

// GeoIter iterates elements as orb geometries, yielding nil for null rows.
func (a *MultiPointArray) GeoIter() func(yield func(int, orb.Geometry) bool) {
	return geoIter(a)
}

// Iter iterates scalar views of every element, ignoring validity.
func (a *MultiPointArray) Iter() func(yield func(int, MultiPoint) bool) {
	return func(yield func(int, MultiPoint) bool) {
		for i := range a.Len() {
			if !yield(i, a.Value(i)) {
				return
			}
		}
	}
}

// Slice returns a zero-copy window of the array. It panics if offset+length
// exceeds Len.
func (a *MultiPointArray) Slice(offset, length int) GeometryArray {
	if offset+length > a.Len() {
		panic("geoarrow: multipoint array slice out of bounds")
	}
	return a.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (a *MultiPointArray) SliceUnchecked(offset, length int) *MultiPointArray {
	return &MultiPointArray{
		x:           a.x,
		y:           a.y,
		geomOffsets: a.geomOffsets.SliceUnchecked(offset, length),
		validity:    sliceValidity(a.validity, offset, length),
	}
}

// AsLineString re-tags the array as a LineStringArray in O(1); the buffers
// stay shared.
func (a *MultiPointArray) AsLineString() *LineStringArray {
	return &LineStringArray{x: a.x, y: a.y, geomOffsets: a.geomOffsets, validity: a.validity}
}

// Coords returns the shared coordinate buffers. They must not be mutated.
func (a *MultiPointArray) Coords() (x, y []float64) { return a.x, a.y }

// GeomOffsets returns the geometry offsets buffer.
func (a *MultiPointArray) GeomOffsets() Offsets { return a.geomOffsets }

func (a *MultiPointArray) geometryArray() {}

// MultiPoint is a zero-copy view of one element of a MultiPointArray.
type MultiPoint struct {
	x, y        []float64
	geomOffsets Offsets
	geomIndex   int
}

// NumPoints returns the number of points in the multi-point.
func (m MultiPoint) NumPoints() int {
	start, end := m.geomOffsets.Range(m.geomIndex)
	return end - start
}

// PointAt returns point i, reporting false when i is out of range.
func (m MultiPoint) PointAt(i int) (orb.Point, bool) {
	start, end := m.geomOffsets.Range(m.geomIndex)
	if i < 0 || start+i >= end {
		return orb.Point{}, false
	}
	return orb.Point{m.x[start+i], m.y[start+i]}, true
}

// AsGeo copies the view into an orb.MultiPoint.
func (m MultiPoint) AsGeo() orb.MultiPoint {
	start, end := m.geomOffsets.Range(m.geomIndex)
	mp := make(orb.MultiPoint, 0, end-start)
	for i := start; i < end; i++ {
		mp = append(mp, orb.Point{m.x[i], m.y[i]})
	}
	return mp
}

// Bound returns the bounding rectangle of the multi-point.
func (m MultiPoint) Bound() orb.Bound {
	start, end := m.geomOffsets.Range(m.geomIndex)
	return boundOf(m.x, m.y, start, end)
}

// MultiPointBuilder accumulates multi-points into a MultiPointArray.
type MultiPointBuilder struct {
	x           []float64
	y           []float64
	geomOffsets *OffsetsBuilder
	validity    *BitmapBuilder
}

// NewMultiPointBuilder creates an empty builder.
func NewMultiPointBuilder() *MultiPointBuilder {
	return NewMultiPointBuilderWithCapacity(0, 0)
}

// NewMultiPointBuilderWithCapacity creates a builder with room for coordCap
// coordinates across geomCap multi-points.
func NewMultiPointBuilderWithCapacity(coordCap, geomCap int) *MultiPointBuilder {
	return &MultiPointBuilder{
		x:           make([]float64, 0, coordCap),
		y:           make([]float64, 0, coordCap),
		geomOffsets: NewOffsetsBuilder(geomCap),
	}
}

// Push appends one multi-point. A nil value appends a null element covering a
// zero-length coordinate range.
func (b *MultiPointBuilder) Push(mp *orb.MultiPoint) error {
	if mp == nil {
		b.ensureValidity()
		if err := b.geomOffsets.Push(0); err != nil {
			return err
		}
		b.validity.Push(false)
		return nil
	}
	for _, p := range *mp {
		b.x = append(b.x, p[0])
		b.y = append(b.y, p[1])
	}
	if err := b.geomOffsets.Push(len(*mp)); err != nil {
		return err
	}
	if b.validity != nil {
		b.validity.Push(true)
	}
	return nil
}

// PushGeometry appends g if it is an orb.MultiPoint, a nil g as null, and
// returns ErrInvalidGeomType otherwise.
func (b *MultiPointBuilder) PushGeometry(g orb.Geometry) error {
	if g == nil {
		return b.Push(nil)
	}
	mp, ok := g.(orb.MultiPoint)
	if !ok {
		return ErrInvalidGeomType
	}
	return b.Push(&mp)
}

// Len returns the number of elements pushed so far.
func (b *MultiPointBuilder) Len() int { return b.geomOffsets.Len() }

// Finish freezes the builder into an immutable array in O(1). The builder
// must not be reused.
func (b *MultiPointBuilder) Finish() *MultiPointArray {
	var validity *Bitmap
	if b.validity != nil {
		validity = b.validity.Finish()
	}
	return &MultiPointArray{
		x:           b.x,
		y:           b.y,
		geomOffsets: b.geomOffsets.Finish(),
		validity:    validity,
	}
}

func (b *MultiPointBuilder) ensureValidity() {
	if b.validity == nil {
		b.validity = NewBitmapBuilder(b.geomOffsets.Len())
		b.validity.PushN(true, b.geomOffsets.Len())
	}
}
