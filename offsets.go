package geoarrow

import "math"

// Offsets is an immutable, monotonically non-decreasing int64 offset buffer.
// For a parent of n elements it holds n+1 values; offsets[i]..offsets[i+1] is
// the half-open range into the next buffer level belonging to element i.
//
// Slicing an Offsets keeps the underlying values untouched: ranges stay
// absolute indices into the child buffer, only the visible window moves.
type Offsets struct {
	values []int64
}

// NewOffsets validates and wraps an offset slice. The slice must be non-empty
// and non-decreasing.
func NewOffsets(values []int64) (Offsets, error) {
	if len(values) == 0 {
		return Offsets{}, layoutErrorf("offsets buffer must hold at least one value")
	}
	if values[0] < 0 {
		return Offsets{}, layoutErrorf("offsets buffer starts at negative value %d", values[0])
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return Offsets{}, layoutErrorf("offsets buffer decreases at index %d: %d < %d", i, values[i], values[i-1])
		}
	}
	return Offsets{values: values}, nil
}

// ZeroOffsets returns an offsets buffer describing n empty ranges.
func ZeroOffsets(n int) Offsets {
	return Offsets{values: make([]int64, n+1)}
}

// Len returns the number of parent elements described, i.e. one less than the
// number of stored values.
func (o Offsets) Len() int {
	if len(o.values) == 0 {
		return 0
	}
	return len(o.values) - 1
}

// Range returns the half-open child range of element i.
func (o Offsets) Range(i int) (start, end int) {
	return int(o.values[i]), int(o.values[i+1])
}

// First returns the first visible offset value.
func (o Offsets) First() int64 { return o.values[0] }

// Last returns the last visible offset value, which equals the exclusive end
// of the child region covered by this window.
func (o Offsets) Last() int64 { return o.values[len(o.values)-1] }

// Values returns the underlying offset values. The slice must not be mutated.
func (o Offsets) Values() []int64 { return o.values }

// Slice returns a window of length elements starting at offset. It panics if
// the window exceeds Len.
func (o Offsets) Slice(offset, length int) Offsets {
	if offset+length > o.Len() {
		panic("geoarrow: offsets slice out of bounds")
	}
	return o.SliceUnchecked(offset, length)
}

// SliceUnchecked is Slice without the bounds check. The caller must ensure
// offset+length <= Len.
func (o Offsets) SliceUnchecked(offset, length int) Offsets {
	return Offsets{values: o.values[offset : offset+length+1]}
}

// OffsetsBuilder accumulates offsets one parent element at a time. Its zero
// value is ready to use and already holds the leading zero.
type OffsetsBuilder struct {
	values []int64
}

// NewOffsetsBuilder creates a builder with room for capacity parent elements.
func NewOffsetsBuilder(capacity int) *OffsetsBuilder {
	values := make([]int64, 1, capacity+1)
	return &OffsetsBuilder{values: values}
}

// Push appends one parent element covering count new child items. The stored
// entry is previous+count, so pushes stay correct after zero-count (null)
// entries. It returns ErrOffsetOverflow if the running total would exceed the
// int64 range.
func (b *OffsetsBuilder) Push(count int) error {
	b.ensureLeadingZero()
	last := b.values[len(b.values)-1]
	if count < 0 || last > math.MaxInt64-int64(count) {
		return ErrOffsetOverflow
	}
	b.values = append(b.values, last+int64(count))
	return nil
}

// Len returns the number of parent elements pushed so far.
func (b *OffsetsBuilder) Len() int {
	b.ensureLeadingZero()
	return len(b.values) - 1
}

// Finish freezes the accumulated offsets. The builder must not be reused.
func (b *OffsetsBuilder) Finish() Offsets {
	b.ensureLeadingZero()
	return Offsets{values: b.values}
}

func (b *OffsetsBuilder) ensureLeadingZero() {
	if len(b.values) == 0 {
		b.values = append(b.values, 0)
	}
}
