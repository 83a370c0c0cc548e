package geoarrow

import (
	"github.com/paulmach/orb"
)

// LineStringArray stores line strings as flat x/y buffers delimited by one
// level of geometry offsets.
type LineStringArray struct {
	x           []float64
	y           []float64
	geomOffsets Offsets
	validity    *Bitmap
}

// NewLineStringArray validates buffer lengths and wraps them without copying.
func NewLineStringArray(x, y []float64, geomOffsets Offsets, validity *Bitmap) (*LineStringArray, error) {
	if err := checkCoords(x, y, validity, geomOffsets.Len()); err != nil {
		return nil, err
	}
	if geomOffsets.Last() > int64(len(x)) {
		return nil, layoutErrorf("geometry offsets end at %d but only %d coordinates exist", geomOffsets.Last(), len(x))
	}
	return &LineStringArray{x: x, y: y, geomOffsets: geomOffsets, validity: validity}, nil
}

// MustNewLineStringArray is NewLineStringArray, panicking on invalid layout.
func MustNewLineStringArray(x, y []float64, geomOffsets Offsets, validity *Bitmap) *LineStringArray {
	a, err := NewLineStringArray(x, y, geomOffsets, validity)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of line strings in the array.
func (a *LineStringArray) Len() int { return a.geomOffsets.Len() }

// GeometryType returns TypeLineString.
func (a *LineStringArray) GeometryType() GeometryType { return TypeLineString }

// Validity returns the optional validity bitmap.
func (a *LineStringArray) Validity() *Bitmap { return a.validity }

// IsNull reports whether element i is logically null.
func (a *LineStringArray) IsNull(i int) bool {
	return a.validity != nil && !a.validity.Get(i)
}

// Value returns a zero-copy scalar view of element i. Validity is not
// checked.
func (a *LineStringArray) Value(i int) LineString {
	return LineString{x: a.x, y: a.y, geomOffsets: a.geomOffsets, geomIndex: i}
}

// ValueAsGeo materializes element i as an orb.LineString, ignoring validity.
func (a *LineStringArray) ValueAsGeo(i int) orb.Geometry {
	return a.Value(i).AsGeo()
}

// GetAsGeo materializes element i, reporting false when the element is null.
func (a *LineStringArray) GetAsGeo(i int) (orb.LineString, bool) {
	if a.IsNull(i) {
		return nil, false
	}
	return a.Value(i).AsGeo(), true
}

// GeoIter iterates elements as orb geometries, yielding nil for null rows.
func (a *LineStringArray) GeoIter() func(yield func(int, orb.Geometry) bool) {
	return geoIter(a)
}

// Iter iterates scalar views of every element, ignoring validity.
func (a *LineStringArray) Iter() func(yield func(int, LineString) bool) {
	return func(yield func(int, LineString) bool) {
		for i := range a.Len() {
			if !yield(i, a.Value(i)) {
				return
			}
		}
	}
}

// Slice returns a zero-copy window of the array: the coordinate buffers stay
// shared, only the offsets window and validity move. It panics if
// offset+length exceeds Len.
func (a *LineStringArray) Slice(offset, length int) GeometryArray {
	if offset+length > a.Len() {
		panic("geoarrow: linestring array slice out of bounds")
	}
	return a.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (a *LineStringArray) SliceUnchecked(offset, length int) *LineStringArray {
	return &LineStringArray{
		x:           a.x,
		y:           a.y,
		geomOffsets: a.geomOffsets.SliceUnchecked(offset, length),
		validity:    sliceValidity(a.validity, offset, length),
	}
}

// AsMultiPoint re-tags the array as a MultiPointArray. LineString and
// MultiPoint share a binary layout, so this is O(1) and the buffers stay
// shared.
func (a *LineStringArray) AsMultiPoint() *MultiPointArray {
	return &MultiPointArray{x: a.x, y: a.y, geomOffsets: a.geomOffsets, validity: a.validity}
}

// Coords returns the shared coordinate buffers. They must not be mutated.
func (a *LineStringArray) Coords() (x, y []float64) { return a.x, a.y }

// GeomOffsets returns the geometry offsets buffer.
func (a *LineStringArray) GeomOffsets() Offsets { return a.geomOffsets }

func (a *LineStringArray) geometryArray() {}

// LineString is a zero-copy view of one element of a LineStringArray.
type LineString struct {
	x, y        []float64
	geomOffsets Offsets
	geomIndex   int
}

// NumPoints returns the number of coordinates in the line string.
func (l LineString) NumPoints() int {
	start, end := l.geomOffsets.Range(l.geomIndex)
	return end - start
}

// PointAt returns coordinate i of the line string, reporting false when i is
// out of range.
func (l LineString) PointAt(i int) (orb.Point, bool) {
	start, end := l.geomOffsets.Range(l.geomIndex)
	if i < 0 || start+i >= end {
		return orb.Point{}, false
	}
	return orb.Point{l.x[start+i], l.y[start+i]}, true
}

// AsGeo copies the view into an orb.LineString.
func (l LineString) AsGeo() orb.LineString {
	start, end := l.geomOffsets.Range(l.geomIndex)
	ls := make(orb.LineString, 0, end-start)
	for i := start; i < end; i++ {
		ls = append(ls, orb.Point{l.x[i], l.y[i]})
	}
	return ls
}

// Bound returns the bounding rectangle of the line string by scanning its
// coordinate range once.
func (l LineString) Bound() orb.Bound {
	start, end := l.geomOffsets.Range(l.geomIndex)
	return boundOf(l.x, l.y, start, end)
}

// LineStringBuilder accumulates line strings into a LineStringArray.
type LineStringBuilder struct {
	x           []float64
	y           []float64
	geomOffsets *OffsetsBuilder
	validity    *BitmapBuilder
}

// NewLineStringBuilder creates an empty builder.
func NewLineStringBuilder() *LineStringBuilder {
	return NewLineStringBuilderWithCapacity(0, 0)
}

// NewLineStringBuilderWithCapacity creates a builder with room for coordCap
// coordinates across geomCap line strings.
func NewLineStringBuilderWithCapacity(coordCap, geomCap int) *LineStringBuilder {
	return &LineStringBuilder{
		x:           make([]float64, 0, coordCap),
		y:           make([]float64, 0, coordCap),
		geomOffsets: NewOffsetsBuilder(geomCap),
	}
}

// Push appends one line string. A nil value appends a null element covering a
// zero-length coordinate range.
func (b *LineStringBuilder) Push(ls *orb.LineString) error {
	if ls == nil {
		b.ensureValidity()
		if err := b.geomOffsets.Push(0); err != nil {
			return err
		}
		b.validity.Push(false)
		return nil
	}
	for _, p := range *ls {
		b.x = append(b.x, p[0])
		b.y = append(b.y, p[1])
	}
	if err := b.geomOffsets.Push(len(*ls)); err != nil {
		return err
	}
	if b.validity != nil {
		b.validity.Push(true)
	}
	return nil
}

// PushGeometry appends g if it is an orb.LineString, a nil g as null, and
// returns ErrInvalidGeomType otherwise.
func (b *LineStringBuilder) PushGeometry(g orb.Geometry) error {
	if g == nil {
		return b.Push(nil)
	}
	ls, ok := g.(orb.LineString)
	if !ok {
		return ErrInvalidGeomType
	}
	return b.Push(&ls)
}

// Len returns the number of elements pushed so far.
func (b *LineStringBuilder) Len() int { return b.geomOffsets.Len() }

// Finish freezes the builder into an immutable array in O(1). The builder
// must not be reused.
func (b *LineStringBuilder) Finish() *LineStringArray {
	var validity *Bitmap
	if b.validity != nil {
		validity = b.validity.Finish()
	}
	return &LineStringArray{
		x:           b.x,
		y:           b.y,
		geomOffsets: b.geomOffsets.Finish(),
		validity:    validity,
	}
}

func (b *LineStringBuilder) ensureValidity() {
	if b.validity == nil {
		b.validity = NewBitmapBuilder(b.geomOffsets.Len())
		b.validity.PushN(true, b.geomOffsets.Len())
	}
}
