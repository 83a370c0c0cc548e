package geoarrow

import (
	"github.com/paulmach/orb"
)

// MultiLineStringArray stores multi-line-strings as flat x/y buffers
// delimited by two offset levels: geometry offsets slice line indices, ring
// offsets slice coordinate indices. It shares its binary layout with
// PolygonArray; only the semantic tag differs.
type MultiLineStringArray struct {
	x           []float64
	y           []float64
	geomOffsets Offsets
	ringOffsets Offsets
	validity    *Bitmap
}

// NewMultiLineStringArray validates buffer lengths and wraps them without
// copying.
func NewMultiLineStringArray(x, y []float64, geomOffsets, ringOffsets Offsets, validity *Bitmap) (*MultiLineStringArray, error) {
	if err := checkCoords(x, y, validity, geomOffsets.Len()); err != nil {
		return nil, err
	}
	if geomOffsets.Last() > int64(ringOffsets.Len()) {
		return nil, layoutErrorf("geometry offsets end at %d but only %d lines exist", geomOffsets.Last(), ringOffsets.Len())
	}
	if ringOffsets.Last() > int64(len(x)) {
		return nil, layoutErrorf("line offsets end at %d but only %d coordinates exist", ringOffsets.Last(), len(x))
	}
	return &MultiLineStringArray{x: x, y: y, geomOffsets: geomOffsets, ringOffsets: ringOffsets, validity: validity}, nil
}

// MustNewMultiLineStringArray is NewMultiLineStringArray, panicking on
// invalid layout.
func MustNewMultiLineStringArray(x, y []float64, geomOffsets, ringOffsets Offsets, validity *Bitmap) *MultiLineStringArray {
	a, err := NewMultiLineStringArray(x, y, geomOffsets, ringOffsets, validity)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of multi-line-strings in the array.
func (a *MultiLineStringArray) Len() int { return a.geomOffsets.Len() }

// GeometryType returns TypeMultiLineString.
func (a *MultiLineStringArray) GeometryType() GeometryType { return TypeMultiLineString }

// Validity returns the optional validity bitmap.
func (a *MultiLineStringArray) Validity() *Bitmap { return a.validity }

// IsNull reports whether element i is logically null.
func (a *MultiLineStringArray) IsNull(i int) bool {
	return a.validity != nil && !a.validity.Get(i)
}

// Value returns a zero-copy scalar view of element i. Validity is not
// checked.
func (a *MultiLineStringArray) Value(i int) MultiLineString {
	return MultiLineString{x: a.x, y: a.y, geomOffsets: a.geomOffsets, ringOffsets: a.ringOffsets, geomIndex: i}
}

// ValueAsGeo materializes element i as an orb.MultiLineString, ignoring
// validity.
func (a *MultiLineStringArray) ValueAsGeo(i int) orb.Geometry {
	return a.Value(i).AsGeo()
}

// GetAsGeo materializes element i, reporting false when the element is null.
func (a *MultiLineStringArray) GetAsGeo(i int) (orb.MultiLineString, bool) {
	if a.IsNull(i) {
		return nil, false
	}
	return a.Value(i).AsGeo(), true
}

// GeoIter iterates elements as orb geometries, yielding nil for null rows.
func (a *MultiLineStringArray) GeoIter() func(yield func(int, orb.Geometry) bool) {
	return geoIter(a)
}

// Iter iterates scalar views of every element, ignoring validity.
func (a *MultiLineStringArray) Iter() func(yield func(int, MultiLineString) bool) {
	return func(yield func(int, MultiLineString) bool) {
		for i := range a.Len() {
			if !yield(i, a.Value(i)) {
				return
			}
		}
	}
}

// Slice returns a zero-copy window of the array. It panics if offset+length
// exceeds Len.
func (a *MultiLineStringArray) Slice(offset, length int) GeometryArray {
	if offset+length > a.Len() {
		panic("geoarrow: multilinestring array slice out of bounds")
	}
	return a.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (a *MultiLineStringArray) SliceUnchecked(offset, length int) *MultiLineStringArray {
	return &MultiLineStringArray{
		x:           a.x,
		y:           a.y,
		geomOffsets: a.geomOffsets.SliceUnchecked(offset, length),
		ringOffsets: a.ringOffsets,
		validity:    sliceValidity(a.validity, offset, length),
	}
}

// AsPolygon re-tags the array as a PolygonArray in O(1); the buffers stay
// shared.
func (a *MultiLineStringArray) AsPolygon() *PolygonArray {
	return &PolygonArray{
		x:           a.x,
		y:           a.y,
		geomOffsets: a.geomOffsets,
		ringOffsets: a.ringOffsets,
		validity:    a.validity,
	}
}

// Coords returns the shared coordinate buffers. They must not be mutated.
func (a *MultiLineStringArray) Coords() (x, y []float64) { return a.x, a.y }

// GeomOffsets returns the geometry-to-line offsets buffer.
func (a *MultiLineStringArray) GeomOffsets() Offsets { return a.geomOffsets }

// RingOffsets returns the line-to-coordinate offsets buffer.
func (a *MultiLineStringArray) RingOffsets() Offsets { return a.ringOffsets }

func (a *MultiLineStringArray) geometryArray() {}

// MultiLineString is a zero-copy view of one element of a
// MultiLineStringArray.
type MultiLineString struct {
	x, y        []float64
	geomOffsets Offsets
	ringOffsets Offsets
	geomIndex   int
}

// NumLines returns the number of line strings in the multi-line-string.
func (m MultiLineString) NumLines() int {
	start, end := m.geomOffsets.Range(m.geomIndex)
	return end - start
}

// Line returns line i as a line-string view, reporting false when i is out of
// range.
func (m MultiLineString) Line(i int) (LineString, bool) {
	start, end := m.geomOffsets.Range(m.geomIndex)
	if i < 0 || start+i >= end {
		return LineString{}, false
	}
	return LineString{x: m.x, y: m.y, geomOffsets: m.ringOffsets, geomIndex: start + i}, true
}

// AsGeo copies the view into an orb.MultiLineString.
func (m MultiLineString) AsGeo() orb.MultiLineString {
	lineStart, lineEnd := m.geomOffsets.Range(m.geomIndex)
	mls := make(orb.MultiLineString, 0, lineEnd-lineStart)
	for l := lineStart; l < lineEnd; l++ {
		coordStart, coordEnd := m.ringOffsets.Range(l)
		ls := make(orb.LineString, 0, coordEnd-coordStart)
		for i := coordStart; i < coordEnd; i++ {
			ls = append(ls, orb.Point{m.x[i], m.y[i]})
		}
		mls = append(mls, ls)
	}
	return mls
}

// Bound returns the bounding rectangle of the multi-line-string.
func (m MultiLineString) Bound() orb.Bound {
	lineStart, lineEnd := m.geomOffsets.Range(m.geomIndex)
	if lineStart == lineEnd {
		return boundOf(m.x, m.y, 0, 0)
	}
	coordStart, _ := m.ringOffsets.Range(lineStart)
	_, coordEnd := m.ringOffsets.Range(lineEnd - 1)
	return boundOf(m.x, m.y, coordStart, coordEnd)
}

// MultiLineStringBuilder accumulates multi-line-strings into a
// MultiLineStringArray.
type MultiLineStringBuilder struct {
	x           []float64
	y           []float64
	geomOffsets *OffsetsBuilder
	ringOffsets *OffsetsBuilder
	validity    *BitmapBuilder
}

// NewMultiLineStringBuilder creates an empty builder.
func NewMultiLineStringBuilder() *MultiLineStringBuilder {
	return NewMultiLineStringBuilderWithCapacity(0, 0, 0)
}

// NewMultiLineStringBuilderWithCapacity creates a builder with room for
// coordCap coordinates and lineCap lines across geomCap multi-line-strings.
func NewMultiLineStringBuilderWithCapacity(coordCap, geomCap, lineCap int) *MultiLineStringBuilder {
	return &MultiLineStringBuilder{
		x:           make([]float64, 0, coordCap),
		y:           make([]float64, 0, coordCap),
		geomOffsets: NewOffsetsBuilder(geomCap),
		ringOffsets: NewOffsetsBuilder(lineCap),
	}
}

// Push appends one multi-line-string. A nil value appends a null element
// covering zero lines.
func (b *MultiLineStringBuilder) Push(mls *orb.MultiLineString) error {
	if mls == nil {
		b.ensureValidity()
		if err := b.geomOffsets.Push(0); err != nil {
			return err
		}
		b.validity.Push(false)
		return nil
	}
	for _, ls := range *mls {
		for _, p := range ls {
			b.x = append(b.x, p[0])
			b.y = append(b.y, p[1])
		}
		if err := b.ringOffsets.Push(len(ls)); err != nil {
			return err
		}
	}
	if err := b.geomOffsets.Push(len(*mls)); err != nil {
		return err
	}
	if b.validity != nil {
		b.validity.Push(true)
	}
	return nil
}

// PushGeometry appends g if it is an orb.MultiLineString, a nil g as null,
// and returns ErrInvalidGeomType otherwise.
func (b *MultiLineStringBuilder) PushGeometry(g orb.Geometry) error {
	if g == nil {
		return b.Push(nil)
	}
	mls, ok := g.(orb.MultiLineString)
	if !ok {
		return ErrInvalidGeomType
	}
	return b.Push(&mls)
}

// Len returns the number of elements pushed so far.
func (b *MultiLineStringBuilder) Len() int { return b.geomOffsets.Len() }

// Finish freezes the builder into an immutable array in O(1). The builder
// must not be reused.
func (b *MultiLineStringBuilder) Finish() *MultiLineStringArray {
	var validity *Bitmap
	if b.validity != nil {
		validity = b.validity.Finish()
	}
	return &MultiLineStringArray{
		x:           b.x,
		y:           b.y,
		geomOffsets: b.geomOffsets.Finish(),
		ringOffsets: b.ringOffsets.Finish(),
		validity:    validity,
	}
}

func (b *MultiLineStringBuilder) ensureValidity() {
	if b.validity == nil {
		b.validity = NewBitmapBuilder(b.geomOffsets.Len())
		b.validity.PushN(true, b.geomOffsets.Len())
	}
}
