package geoarrow

import (
	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// Bitmap is an immutable validity mask: bit i unset means element i is
// logically null. A nil *Bitmap means "all valid". The bit offset allows
// zero-copy slicing at non-byte boundaries.
type Bitmap struct {
	data   []byte
	offset int
	length int
}

// NewBitmap wraps a packed little-endian bit buffer holding length bits.
func NewBitmap(data []byte, length int) (*Bitmap, error) {
	if need := int(bitutil.BytesForBits(int64(length))); len(data) < need {
		return nil, layoutErrorf("bitmap needs %d bytes for %d bits, got %d", need, length, len(data))
	}
	return &Bitmap{data: data, length: length}, nil
}

// Len returns the number of bits in the bitmap. A nil bitmap has none.
func (b *Bitmap) Len() int {
	if b == nil {
		return 0
	}
	return b.length
}

// Get reports whether bit i is set, i.e. whether element i is valid. On a nil
// bitmap every element is valid.
func (b *Bitmap) Get(i int) bool {
	if b == nil {
		return true
	}
	return bitutil.BitIsSet(b.data, b.offset+i)
}

// NullCount returns the number of unset bits.
func (b *Bitmap) NullCount() int {
	if b == nil {
		return 0
	}
	return b.length - bitutil.CountSetBits(b.data, b.offset, b.length)
}

// Slice returns a zero-copy window of the bitmap. It panics if offset+length
// exceeds Len.
func (b *Bitmap) Slice(offset, length int) *Bitmap {
	if offset+length > b.length {
		panic("geoarrow: bitmap slice out of bounds")
	}
	return &Bitmap{data: b.data, offset: b.offset + offset, length: length}
}

// Bytes returns the backing buffer and the bit offset of the first element.
// The buffer must not be mutated.
func (b *Bitmap) Bytes() ([]byte, int) { return b.data, b.offset }

// BitmapBuilder accumulates validity bits. Its zero value is ready to use.
type BitmapBuilder struct {
	data   []byte
	length int
	nulls  int
}

// NewBitmapBuilder creates a builder with room for capacity bits.
func NewBitmapBuilder(capacity int) *BitmapBuilder {
	return &BitmapBuilder{data: make([]byte, 0, bitutil.BytesForBits(int64(capacity)))}
}

// Push appends one bit.
func (b *BitmapBuilder) Push(valid bool) {
	if b.length%8 == 0 {
		b.data = append(b.data, 0)
	}
	if valid {
		bitutil.SetBit(b.data, b.length)
	} else {
		b.nulls++
	}
	b.length++
}

// PushN appends n copies of the same bit.
func (b *BitmapBuilder) PushN(valid bool, n int) {
	for range n {
		b.Push(valid)
	}
}

// Len returns the number of bits pushed so far.
func (b *BitmapBuilder) Len() int { return b.length }

// Finish freezes the accumulated bits. It returns nil when every bit is set,
// since an absent bitmap already means "all valid". The builder must not be
// reused.
func (b *BitmapBuilder) Finish() *Bitmap {
	if b.nulls == 0 {
		return nil
	}
	return &Bitmap{data: b.data, length: b.length}
}
