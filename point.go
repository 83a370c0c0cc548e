package geoarrow

import (
	"github.com/paulmach/orb"
)

// PointArray stores one x/y coordinate pair per element in two flat shared
// buffers.
type PointArray struct {
	x        []float64
	y        []float64
	validity *Bitmap
}

// NewPointArray validates buffer lengths and wraps them without copying.
func NewPointArray(x, y []float64, validity *Bitmap) (*PointArray, error) {
	if err := checkCoords(x, y, validity, len(x)); err != nil {
		return nil, err
	}
	return &PointArray{x: x, y: y, validity: validity}, nil
}

// MustNewPointArray is NewPointArray, panicking on invalid layout.
func MustNewPointArray(x, y []float64, validity *Bitmap) *PointArray {
	a, err := NewPointArray(x, y, validity)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of points in the array.
func (a *PointArray) Len() int { return len(a.x) }

// GeometryType returns TypePoint.
func (a *PointArray) GeometryType() GeometryType { return TypePoint }

// Validity returns the optional validity bitmap.
func (a *PointArray) Validity() *Bitmap { return a.validity }

// IsNull reports whether element i is logically null.
func (a *PointArray) IsNull(i int) bool {
	return a.validity != nil && !a.validity.Get(i)
}

// Value returns a zero-copy scalar view of element i. Validity is not
// checked.
func (a *PointArray) Value(i int) Point {
	return Point{x: a.x, y: a.y, geomIndex: i}
}

// ValueAsGeo materializes element i as an orb.Point, ignoring validity.
func (a *PointArray) ValueAsGeo(i int) orb.Geometry {
	return orb.Point{a.x[i], a.y[i]}
}

// GetAsGeo materializes element i, reporting false when the element is null.
func (a *PointArray) GetAsGeo(i int) (orb.Point, bool) {
	if a.IsNull(i) {
		return orb.Point{}, false
	}
	return orb.Point{a.x[i], a.y[i]}, true
}

// GeoIter iterates elements as orb geometries, yielding nil for null rows.
func (a *PointArray) GeoIter() func(yield func(int, orb.Geometry) bool) {
	return geoIter(a)
}

// Iter iterates scalar views of every element, ignoring validity.
func (a *PointArray) Iter() func(yield func(int, Point) bool) {
	return func(yield func(int, Point) bool) {
		for i := range a.Len() {
			if !yield(i, a.Value(i)) {
				return
			}
		}
	}
}

// Slice returns a zero-copy window of the array. It panics if offset+length
// exceeds Len.
func (a *PointArray) Slice(offset, length int) GeometryArray {
	if offset+length > a.Len() {
		panic("geoarrow: point array slice out of bounds")
	}
	return a.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (a *PointArray) SliceUnchecked(offset, length int) *PointArray {
	return &PointArray{
		x:        a.x[offset : offset+length],
		y:        a.y[offset : offset+length],
		validity: sliceValidity(a.validity, offset, length),
	}
}

// Coords returns the shared coordinate buffers. They must not be mutated.
func (a *PointArray) Coords() (x, y []float64) { return a.x, a.y }

func (a *PointArray) geometryArray() {}

// Point is a zero-copy view of one element of a PointArray.
type Point struct {
	x, y      []float64
	geomIndex int
}

// X returns the x coordinate.
func (p Point) X() float64 { return p.x[p.geomIndex] }

// Y returns the y coordinate.
func (p Point) Y() float64 { return p.y[p.geomIndex] }

// AsGeo copies the view into an orb.Point.
func (p Point) AsGeo() orb.Point { return orb.Point{p.X(), p.Y()} }

// Bound returns the degenerate bounding rectangle of the point.
func (p Point) Bound() orb.Bound {
	return orb.Bound{Min: p.AsGeo(), Max: p.AsGeo()}
}

// PointBuilder accumulates points into a PointArray.
type PointBuilder struct {
	x        []float64
	y        []float64
	validity *BitmapBuilder
}

// NewPointBuilder creates an empty builder.
func NewPointBuilder() *PointBuilder {
	return NewPointBuilderWithCapacity(0)
}

// NewPointBuilderWithCapacity creates a builder with room for geomCap points.
func NewPointBuilderWithCapacity(geomCap int) *PointBuilder {
	return &PointBuilder{
		x: make([]float64, 0, geomCap),
		y: make([]float64, 0, geomCap),
	}
}

// Push appends one point. A nil point appends a null element; its coordinate
// slots hold zeros but carry no meaning.
func (b *PointBuilder) Push(p *orb.Point) error {
	if p == nil {
		b.ensureValidity()
		b.x = append(b.x, 0)
		b.y = append(b.y, 0)
		b.validity.Push(false)
		return nil
	}
	b.x = append(b.x, p[0])
	b.y = append(b.y, p[1])
	if b.validity != nil {
		b.validity.Push(true)
	}
	return nil
}

// PushGeometry appends g if it is an orb.Point, a nil g as null, and returns
// ErrInvalidGeomType otherwise.
func (b *PointBuilder) PushGeometry(g orb.Geometry) error {
	if g == nil {
		return b.Push(nil)
	}
	p, ok := g.(orb.Point)
	if !ok {
		return ErrInvalidGeomType
	}
	return b.Push(&p)
}

// Len returns the number of elements pushed so far.
func (b *PointBuilder) Len() int { return len(b.x) }

// Finish freezes the builder into an immutable array in O(1). The builder
// must not be reused.
func (b *PointBuilder) Finish() *PointArray {
	var validity *Bitmap
	if b.validity != nil {
		validity = b.validity.Finish()
	}
	return &PointArray{x: b.x, y: b.y, validity: validity}
}

// ensureValidity lazily allocates the validity builder on the first null,
// backfilling valid bits for everything already pushed.
func (b *PointBuilder) ensureValidity() {
	if b.validity == nil {
		b.validity = NewBitmapBuilder(cap(b.x))
		b.validity.PushN(true, len(b.x))
	}
}
