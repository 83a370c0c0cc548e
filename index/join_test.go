package index

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paulmach/orb"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// fixtureIndexes builds the point and polygon indexes used across the join
// tests: nine points around the origin against a single square in the upper
// right quadrant. Two points fall strictly inside the square and two sit on
// its boundary.
func fixtureIndexes(t *testing.T) (points, polygons *SpatialIndex) {
	t.Helper()
	pts := []orb.Geometry{
		orb.Point{0, 10},
		orb.Point{1, 1},
		orb.Point{10, 1},
		orb.Point{1, -1},
		orb.Point{0, -10},
		orb.Point{-1, -1},
		orb.Point{-10, 0},
		orb.Point{-1, 1},
		orb.Point{0, 10},
	}
	points, err := New(mustFromGeometries(t, pts))
	if err != nil {
		t.Fatal(err)
	}
	polygons, err = New(mustFromGeometries(t, []orb.Geometry{
		orb.Polygon{{{0, 0}, {20, 0}, {20, 20}, {0, 20}, {0, 0}}},
	}))
	if err != nil {
		t.Fatal(err)
	}
	return points, polygons
}

func TestJoin_Contains(t *testing.T) {
	points, polygons := fixtureIndexes(t)

	pairs, err := Join(points, polygons, Contains)
	if err != nil {
		t.Fatal(err)
	}
	// The two boundary points at (0, 10) are candidates but not contained.
	if pairs.Len() != 2 {
		t.Fatalf("expected 2 pairs, got %d: %+v", pairs.Len(), pairs)
	}
	if pairs.Left[0] != 1 || pairs.Left[1] != 2 {
		t.Errorf("expected left rows [1 2], got %v", pairs.Left)
	}
	if pairs.Right[0] != 0 || pairs.Right[1] != 0 {
		t.Errorf("expected right rows [0 0], got %v", pairs.Right)
	}
}

func TestJoin_Intersects(t *testing.T) {
	points, polygons := fixtureIndexes(t)

	pairs, err := Join(points, polygons, Intersects)
	if err != nil {
		t.Fatal(err)
	}
	// Intersection keeps the boundary points, rows 0 and 8.
	if pairs.Len() != 4 {
		t.Fatalf("expected 4 pairs, got %d: %+v", pairs.Len(), pairs)
	}
	want := []int64{0, 1, 2, 8}
	for i, l := range pairs.Left {
		if l != want[i] {
			t.Errorf("expected left rows %v, got %v", want, pairs.Left)
			break
		}
	}
}

func TestJoin_SortedByLeftThenRight(t *testing.T) {
	left, err := New(mustFromGeometries(t, []orb.Geometry{
		orb.Point{5, 5},
		orb.Point{15, 15},
	}))
	if err != nil {
		t.Fatal(err)
	}
	right, err := New(mustFromGeometries(t, []orb.Geometry{
		orb.Polygon{{{0, 0}, {30, 0}, {30, 30}, {0, 30}, {0, 0}}},
		orb.Polygon{{{1, 1}, {20, 1}, {20, 20}, {1, 20}, {1, 1}}},
	}))
	if err != nil {
		t.Fatal(err)
	}

	pairs, err := Join(left, right, Contains)
	if err != nil {
		t.Fatal(err)
	}
	if pairs.Len() != 4 {
		t.Fatalf("expected 4 pairs, got %d", pairs.Len())
	}
	for i := 1; i < pairs.Len(); i++ {
		if pairs.Left[i] < pairs.Left[i-1] {
			t.Fatalf("left rows out of order: %v", pairs.Left)
		}
		if pairs.Left[i] == pairs.Left[i-1] && pairs.Right[i] < pairs.Right[i-1] {
			t.Fatalf("right rows out of order: %v", pairs.Right)
		}
	}
}

func int64Record(mem memory.Allocator, name string, values []int64) arrow.Record {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(values, nil)
	col := b.NewArray()

	schema := arrow.NewSchema([]arrow.Field{{Name: name, Type: arrow.PrimitiveTypes.Int64}}, nil)
	return array.NewRecord(schema, []arrow.Array{col}, int64(len(values)))
}

func TestJoinRecords_Inner(t *testing.T) {
	mem := memory.NewGoAllocator()
	points, polygons := fixtureIndexes(t)
	pairs, err := Join(points, polygons, Contains)
	if err != nil {
		t.Fatal(err)
	}

	left := int64Record(mem, "point_id", []int64{0, 1, 2, 3, 4, 5, 6, 7, 8})
	right := int64Record(mem, "poly_id", []int64{100})

	joined, err := JoinRecords(mem, left, right, pairs, InnerJoin)
	if err != nil {
		t.Fatal(err)
	}
	if joined.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", joined.NumRows())
	}
	if joined.NumCols() != 2 {
		t.Fatalf("expected 2 columns, got %d", joined.NumCols())
	}

	ids := joined.Column(0).(*array.Int64)
	if ids.Value(0) != 1 || ids.Value(1) != 2 {
		t.Errorf("expected point ids [1 2], got [%d %d]", ids.Value(0), ids.Value(1))
	}
	polyIDs := joined.Column(1).(*array.Int64)
	if polyIDs.Value(0) != 100 || polyIDs.Value(1) != 100 {
		t.Errorf("expected poly ids [100 100], got [%d %d]", polyIDs.Value(0), polyIDs.Value(1))
	}
}

func TestJoinRecords_Left(t *testing.T) {
	mem := memory.NewGoAllocator()
	points, polygons := fixtureIndexes(t)
	pairs, err := Join(points, polygons, Contains)
	if err != nil {
		t.Fatal(err)
	}

	left := int64Record(mem, "point_id", []int64{0, 1, 2, 3, 4, 5, 6, 7, 8})
	right := int64Record(mem, "poly_id", []int64{100})

	joined, err := JoinRecords(mem, left, right, pairs, LeftJoin)
	if err != nil {
		t.Fatal(err)
	}
	if joined.NumRows() != 9 {
		t.Fatalf("expected 9 rows, got %d", joined.NumRows())
	}

	ids := joined.Column(0).(*array.Int64)
	polyIDs := joined.Column(1).(*array.Int64)
	if ids.NullN() != 0 {
		t.Errorf("left column should have no nulls, got %d", ids.NullN())
	}
	if polyIDs.NullN() != 7 {
		t.Errorf("expected 7 null right rows, got %d", polyIDs.NullN())
	}
	for row := 0; row < 9; row++ {
		matched := row == 1 || row == 2
		if polyIDs.IsValid(row) != matched {
			t.Errorf("row %d: expected matched=%v", row, matched)
		}
		if matched && polyIDs.Value(row) != 100 {
			t.Errorf("row %d: expected poly id 100, got %d", row, polyIDs.Value(row))
		}
	}
	if !joined.Schema().Field(1).Nullable {
		t.Error("right field should be nullable after a left join")
	}
}

func TestJoinRecords_Unsupported(t *testing.T) {
	mem := memory.NewGoAllocator()
	left := int64Record(mem, "a", []int64{1})
	right := int64Record(mem, "b", []int64{2})

	for _, jt := range []JoinType{OuterJoin, CrossJoin} {
		_, err := JoinRecords(mem, left, right, Pairs{}, jt)
		if !errors.Is(err, geoarrow.ErrNotImplemented) {
			t.Errorf("%s join: expected ErrNotImplemented, got %v", jt, err)
		}
	}
}

func TestJoin_WKBArray(t *testing.T) {
	b := geoarrow.NewWKBBuilder()
	if err := b.Push(orb.Point{5, 5}); err != nil {
		t.Fatal(err)
	}
	if err := b.Push(orb.Point{50, 50}); err != nil {
		t.Fatal(err)
	}
	left, err := New(b.Finish())
	if err != nil {
		t.Fatal(err)
	}
	right, err := New(mustFromGeometries(t, []orb.Geometry{
		orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
	}))
	if err != nil {
		t.Fatal(err)
	}

	pairs, err := Join(left, right, Contains)
	if err != nil {
		t.Fatal(err)
	}
	if pairs.Len() != 1 || pairs.Left[0] != 0 || pairs.Right[0] != 0 {
		t.Errorf("expected the single pair (0, 0), got %+v", pairs)
	}
}
