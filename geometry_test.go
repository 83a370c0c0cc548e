package geoarrow

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeometryTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		geom     orb.Geometry
		expected GeometryType
	}{
		{"Point", orb.Point{1, 2}, TypePoint},
		{"MultiPoint", orb.MultiPoint{{1, 2}, {3, 4}}, TypeMultiPoint},
		{"LineString", orb.LineString{{0, 0}, {1, 1}}, TypeLineString},
		{"MultiLineString", orb.MultiLineString{{{0, 0}, {1, 1}}}, TypeMultiLineString},
		{"Ring", orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, TypePolygon},
		{"Polygon", orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, TypePolygon},
		{"MultiPolygon", orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}, TypeMultiPolygon},
		{"Bound", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, TypePolygon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := geometryTypeOf(tt.geom)
			if !ok {
				t.Fatal("expected a supported geometry kind")
			}
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestGeometryTypeOf_Collection(t *testing.T) {
	_, ok := geometryTypeOf(orb.Collection{orb.Point{1, 2}})
	if ok {
		t.Error("expected collections to be unsupported")
	}
}

func TestFromGeometries_Homogeneous(t *testing.T) {
	geoms := []orb.Geometry{
		orb.Point{1, 2},
		orb.Point{3, 4},
		orb.Point{5, 6},
	}

	arr, err := FromGeometries(geoms)
	if err != nil {
		t.Fatal(err)
	}

	pts, ok := arr.(*PointArray)
	if !ok {
		t.Fatalf("expected *PointArray, got %T", arr)
	}
	if pts.Len() != 3 {
		t.Fatalf("expected 3 elements, got %d", pts.Len())
	}
	for i, want := range geoms {
		if got := pts.ValueAsGeo(i); !orb.Equal(got, want) {
			t.Errorf("element %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestFromGeometries_Mixed(t *testing.T) {
	geoms := []orb.Geometry{
		orb.Point{1, 2},
		orb.LineString{{0, 0}, {1, 1}},
	}

	arr, err := FromGeometries(geoms)
	if err != nil {
		t.Fatal(err)
	}

	w, ok := arr.(*WKBArray)
	if !ok {
		t.Fatalf("expected *WKBArray for mixed input, got %T", arr)
	}
	for i, want := range geoms {
		got, err := w.DecodeValue(i)
		if err != nil {
			t.Fatalf("element %d: %v", i, err)
		}
		if !orb.Equal(got, want) {
			t.Errorf("element %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestFromGeometries_WithNils(t *testing.T) {
	geoms := []orb.Geometry{
		orb.Point{1, 2},
		nil,
		orb.Point{5, 6},
	}

	arr, err := FromGeometries(geoms)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := arr.(*PointArray); !ok {
		t.Fatalf("expected *PointArray, got %T", arr)
	}
	if !arr.IsNull(1) {
		t.Error("expected element 1 to be null")
	}
	if arr.IsNull(0) || arr.IsNull(2) {
		t.Error("expected elements 0 and 2 to be valid")
	}
}

func TestFromGeometries_AllNil(t *testing.T) {
	arr, err := FromGeometries([]orb.Geometry{nil, nil})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := arr.(*WKBArray); !ok {
		t.Fatalf("expected *WKBArray for all-nil input, got %T", arr)
	}
	if !arr.IsNull(0) || !arr.IsNull(1) {
		t.Error("expected both elements to be null")
	}
}

func TestFromWKBArray(t *testing.T) {
	geoms := []orb.Geometry{
		orb.LineString{{0, 0}, {1, 1}},
		nil,
		orb.LineString{{2, 2}, {3, 3}, {4, 4}},
	}
	b := NewWKBBuilder()
	for _, g := range geoms {
		if err := b.Push(g); err != nil {
			t.Fatal(err)
		}
	}
	w := b.Finish()

	arr, err := FromWKBArray(w, TypeLineString)
	if err != nil {
		t.Fatal(err)
	}
	lines, ok := arr.(*LineStringArray)
	if !ok {
		t.Fatalf("expected *LineStringArray, got %T", arr)
	}
	if !lines.IsNull(1) {
		t.Error("expected element 1 to stay null")
	}
	if got := lines.ValueAsGeo(2); !orb.Equal(got, geoms[2]) {
		t.Errorf("expected %v, got %v", geoms[2], got)
	}
}

func TestFromWKBArray_WrongTarget(t *testing.T) {
	b := NewWKBBuilder()
	if err := b.Push(orb.Point{1, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := FromWKBArray(b.Finish(), TypePolygon); err == nil {
		t.Error("expected an error decoding a point into a polygon array")
	}
}

func TestTotalBounds(t *testing.T) {
	geoms := []orb.Geometry{
		orb.Point{5, 5},
		orb.Point{15, 20},
		nil,
		orb.Point{0, 0},
	}
	arr, err := FromGeometries(geoms)
	if err != nil {
		t.Fatal(err)
	}

	minX, minY, maxX, maxY := TotalBounds(arr)
	if minX != 0 || minY != 0 || maxX != 15 || maxY != 20 {
		t.Errorf("expected (0 0 15 20), got (%v %v %v %v)", minX, minY, maxX, maxY)
	}
}

func TestTotalBounds_Empty(t *testing.T) {
	arr := MustNewPointArray(nil, nil, nil)
	minX, minY, maxX, maxY := TotalBounds(arr)
	if !math.IsInf(minX, 1) || !math.IsInf(minY, 1) || !math.IsInf(maxX, -1) || !math.IsInf(maxY, -1) {
		t.Errorf("expected infinite bounds for an empty array, got (%v %v %v %v)", minX, minY, maxX, maxY)
	}
}
