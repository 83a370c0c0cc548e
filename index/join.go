package index

import (
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paulmach/orb"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// JoinType selects how matched pairs are assembled into joined rows.
type JoinType int

const (
	// InnerJoin keeps matched pairs only.
	InnerJoin JoinType = iota
	// LeftJoin keeps every left row, with a null right side when unmatched.
	LeftJoin
	// OuterJoin is not implemented.
	OuterJoin
	// CrossJoin is not implemented.
	CrossJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case OuterJoin:
		return "outer"
	case CrossJoin:
		return "cross"
	default:
		return "unknown"
	}
}

// Pairs holds the matched row indexes of a spatial join as two parallel
// lists.
type Pairs struct {
	Left  []int64
	Right []int64
}

// Len returns the number of matched pairs.
func (p Pairs) Len() int { return len(p.Left) }

// Join matches the rows of two indexed arrays under the given predicate.
// Candidate pairs come from a dual-tree traversal over bounding rectangles
// and are refined by evaluating the predicate on the decoded geometries.
// Pairs whose geometry kinds have no predicate rule are dropped, not failed.
// The result is sorted by left then right row index.
func Join(left, right *SpatialIndex, pred Predicate) (Pairs, error) {
	leftGeoms := make(map[int]orb.Geometry)
	rightGeoms := make(map[int]orb.Geometry)

	var pairs Pairs
	var decodeErr error
	left.tree.joinCandidates(right.tree, func(l, r int) {
		if decodeErr != nil {
			return
		}
		lg, err := cachedGeometry(left.arr, l, leftGeoms)
		if err != nil {
			decodeErr = err
			return
		}
		rg, err := cachedGeometry(right.arr, r, rightGeoms)
		if err != nil {
			decodeErr = err
			return
		}
		if pred.evaluate(lg, rg) {
			pairs.Left = append(pairs.Left, int64(l))
			pairs.Right = append(pairs.Right, int64(r))
		}
	})
	if decodeErr != nil {
		return Pairs{}, decodeErr
	}

	sort.Sort(byLeftRight(pairs))

	if left.logger != nil {
		left.logger.Debug("spatial join finished",
			"predicate", pred.String(),
			"matches", pairs.Len())
	}
	return pairs, nil
}

func cachedGeometry(arr geoarrow.GeometryArray, i int, cache map[int]orb.Geometry) (orb.Geometry, error) {
	if g, ok := cache[i]; ok {
		return g, nil
	}
	var g orb.Geometry
	if w, ok := arr.(*geoarrow.WKBArray); ok {
		var err error
		g, err = w.DecodeValue(i)
		if err != nil {
			return nil, err
		}
	} else {
		g = arr.ValueAsGeo(i)
	}
	cache[i] = g
	return g, nil
}

type byLeftRight Pairs

func (p byLeftRight) Len() int { return len(p.Left) }
func (p byLeftRight) Less(i, j int) bool {
	if p.Left[i] != p.Left[j] {
		return p.Left[i] < p.Left[j]
	}
	return p.Right[i] < p.Right[j]
}
func (p byLeftRight) Swap(i, j int) {
	p.Left[i], p.Left[j] = p.Left[j], p.Left[i]
	p.Right[i], p.Right[j] = p.Right[j], p.Right[i]
}

// JoinRecords assembles matched pairs into one joined record batch: the left
// record's columns followed by the right record's columns, gathered row by
// row. An inner join emits one row per pair; a left join additionally emits
// every unmatched left row with nulls on the right side. Other join types
// return ErrNotImplemented.
func JoinRecords(mem memory.Allocator, left, right arrow.Record, pairs Pairs, joinType JoinType) (arrow.Record, error) {
	var leftRows, rightRows []int64
	switch joinType {
	case InnerJoin:
		leftRows, rightRows = pairs.Left, pairs.Right
	case LeftJoin:
		matches := make(map[int64][]int64, pairs.Len())
		for i := range pairs.Left {
			matches[pairs.Left[i]] = append(matches[pairs.Left[i]], pairs.Right[i])
		}
		for row := int64(0); row < left.NumRows(); row++ {
			rs, ok := matches[row]
			if !ok {
				leftRows = append(leftRows, row)
				rightRows = append(rightRows, -1)
				continue
			}
			for _, r := range rs {
				leftRows = append(leftRows, row)
				rightRows = append(rightRows, r)
			}
		}
	default:
		return nil, fmt.Errorf("%s join: %w", joinType, geoarrow.ErrNotImplemented)
	}

	fields := make([]arrow.Field, 0, len(left.Schema().Fields())+len(right.Schema().Fields()))
	cols := make([]arrow.Array, 0, cap(fields))
	for i, f := range left.Schema().Fields() {
		col, err := takeColumn(mem, left.Column(i), leftRows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		cols = append(cols, col)
	}
	for i, f := range right.Schema().Fields() {
		col, err := takeColumn(mem, right.Column(i), rightRows)
		if err != nil {
			return nil, err
		}
		if joinType == LeftJoin {
			f.Nullable = true
		}
		fields = append(fields, f)
		cols = append(cols, col)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewRecord(schema, cols, int64(len(leftRows))), nil
}

// takeColumn gathers the given rows of one column through its builder. A row
// of -1 appends a null.
func takeColumn(mem memory.Allocator, col arrow.Array, rows []int64) (arrow.Array, error) {
	take := func(b array.Builder, appendValue func(int)) arrow.Array {
		b.Reserve(len(rows))
		for _, row := range rows {
			if row < 0 || col.IsNull(int(row)) {
				b.AppendNull()
				continue
			}
			appendValue(int(row))
		}
		return b.NewArray()
	}

	switch c := col.(type) {
	case *array.Int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	case *array.Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	case *array.Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	case *array.Boolean:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	case *array.String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	case *array.LargeString:
		b := array.NewLargeStringBuilder(mem)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	case *array.Binary:
		b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	case *array.LargeBinary:
		b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.LargeBinary)
		defer b.Release()
		return take(b, func(i int) { b.Append(c.Value(i)) }), nil
	default:
		return nil, fmt.Errorf("gather column %s: %w", col.DataType(), geoarrow.ErrNotImplemented)
	}
}
