package geoarrow

import (
	"github.com/paulmach/orb"
)

// WKBArray stores one Well-Known-Binary blob per element in a flat byte
// buffer delimited by offsets. Each blob is independently decodable; there
// are no shared coordinate buffers.
type WKBArray struct {
	data     []byte
	offsets  Offsets
	validity *Bitmap
}

// NewWKBArray validates buffer lengths and wraps them without copying.
func NewWKBArray(data []byte, offsets Offsets, validity *Bitmap) (*WKBArray, error) {
	if validity != nil && validity.Len() != offsets.Len() {
		return nil, layoutErrorf("validity mask length %d must match the number of elements %d", validity.Len(), offsets.Len())
	}
	if offsets.Last() > int64(len(data)) {
		return nil, layoutErrorf("offsets end at %d but only %d data bytes exist", offsets.Last(), len(data))
	}
	return &WKBArray{data: data, offsets: offsets, validity: validity}, nil
}

// MustNewWKBArray is NewWKBArray, panicking on invalid layout.
func MustNewWKBArray(data []byte, offsets Offsets, validity *Bitmap) *WKBArray {
	a, err := NewWKBArray(data, offsets, validity)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of blobs in the array.
func (a *WKBArray) Len() int { return a.offsets.Len() }

// GeometryType returns TypeWKB.
func (a *WKBArray) GeometryType() GeometryType { return TypeWKB }

// Validity returns the optional validity bitmap.
func (a *WKBArray) Validity() *Bitmap { return a.validity }

// IsNull reports whether element i is logically null.
func (a *WKBArray) IsNull(i int) bool {
	return a.validity != nil && !a.validity.Get(i)
}

// Value returns the raw WKB bytes of element i without copying. The slice
// must not be mutated.
func (a *WKBArray) Value(i int) []byte {
	start, end := a.offsets.Range(i)
	return a.data[start:end]
}

// DecodeValue decodes element i into an orb geometry, surfacing a
// *WKBDecodeError on malformed bytes.
func (a *WKBArray) DecodeValue(i int) (orb.Geometry, error) {
	return DecodeWKB(a.Value(i))
}

// ValueAsGeo decodes element i, ignoring validity. It panics on malformed
// bytes; use DecodeValue for the checked path.
func (a *WKBArray) ValueAsGeo(i int) orb.Geometry {
	g, err := a.DecodeValue(i)
	if err != nil {
		panic(err)
	}
	return g
}

// GetAsGeo decodes element i, reporting false when the element is null.
func (a *WKBArray) GetAsGeo(i int) (orb.Geometry, bool) {
	if a.IsNull(i) {
		return nil, false
	}
	return a.ValueAsGeo(i), true
}

// GeoIter iterates elements as orb geometries, yielding nil for null rows.
// Like ValueAsGeo it panics on malformed bytes; decode untrusted data with
// DecodeValue first.
func (a *WKBArray) GeoIter() func(yield func(int, orb.Geometry) bool) {
	return geoIter(a)
}

// Slice returns a zero-copy window of the array. It panics if offset+length
// exceeds Len.
func (a *WKBArray) Slice(offset, length int) GeometryArray {
	if offset+length > a.Len() {
		panic("geoarrow: wkb array slice out of bounds")
	}
	return a.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (a *WKBArray) SliceUnchecked(offset, length int) *WKBArray {
	return &WKBArray{
		data:     a.data,
		offsets:  a.offsets.SliceUnchecked(offset, length),
		validity: sliceValidity(a.validity, offset, length),
	}
}

// Offsets returns the blob offsets buffer.
func (a *WKBArray) Offsets() Offsets { return a.offsets }

// Data returns the shared blob buffer. It must not be mutated.
func (a *WKBArray) Data() []byte { return a.data }

func (a *WKBArray) geometryArray() {}

// WKBBuilder accumulates WKB blobs into a WKBArray.
type WKBBuilder struct {
	data     []byte
	offsets  *OffsetsBuilder
	validity *BitmapBuilder
}

// NewWKBBuilder creates an empty builder.
func NewWKBBuilder() *WKBBuilder {
	return NewWKBBuilderWithCapacity(0, 0)
}

// NewWKBBuilderWithCapacity creates a builder with room for dataCap blob
// bytes across geomCap elements.
func NewWKBBuilderWithCapacity(dataCap, geomCap int) *WKBBuilder {
	return &WKBBuilder{
		data:    make([]byte, 0, dataCap),
		offsets: NewOffsetsBuilder(geomCap),
	}
}

// Push encodes one geometry to WKB and appends it. A nil geometry appends a
// null element covering a zero-length byte range.
func (b *WKBBuilder) Push(g orb.Geometry) error {
	if g == nil {
		b.ensureValidity()
		if err := b.offsets.Push(0); err != nil {
			return err
		}
		b.validity.Push(false)
		return nil
	}
	encoded, err := EncodeWKB(g)
	if err != nil {
		return err
	}
	return b.PushRaw(encoded)
}

// PushGeometry is Push; it exists so WKBBuilder satisfies the same builder
// shape as the typed builders.
func (b *WKBBuilder) PushGeometry(g orb.Geometry) error {
	return b.Push(g)
}

// PushRaw appends already-encoded WKB bytes without validating them.
func (b *WKBBuilder) PushRaw(blob []byte) error {
	b.data = append(b.data, blob...)
	if err := b.offsets.Push(len(blob)); err != nil {
		return err
	}
	if b.validity != nil {
		b.validity.Push(true)
	}
	return nil
}

// Len returns the number of elements pushed so far.
func (b *WKBBuilder) Len() int { return b.offsets.Len() }

// Finish freezes the builder into an immutable array in O(1). The builder
// must not be reused.
func (b *WKBBuilder) Finish() *WKBArray {
	var validity *Bitmap
	if b.validity != nil {
		validity = b.validity.Finish()
	}
	return &WKBArray{data: b.data, offsets: b.offsets.Finish(), validity: validity}
}

func (b *WKBBuilder) ensureValidity() {
	if b.validity == nil {
		b.validity = NewBitmapBuilder(b.offsets.Len())
		b.validity.PushN(true, b.offsets.Len())
	}
}

// ToWKBArray encodes every element of any geometry array into a WKBArray,
// preserving the validity pattern.
func ToWKBArray(arr GeometryArray) (*WKBArray, error) {
	if w, ok := arr.(*WKBArray); ok {
		return w, nil
	}
	b := NewWKBBuilderWithCapacity(0, arr.Len())
	for _, g := range arr.GeoIter() {
		if err := b.Push(g); err != nil {
			return nil, err
		}
	}
	return b.Finish(), nil
}
