package geoarrow

import (
	"testing"

	"github.com/paulmach/orb"
)

var testPolygons = []orb.Polygon{
	{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}}, // hole
	},
	{
		{{20, 20}, {30, 20}, {30, 30}, {20, 20}},
	},
}

func buildPolygons(t *testing.T, polys []orb.Polygon) *PolygonArray {
	t.Helper()
	b := NewPolygonBuilder()
	for i := range polys {
		if err := b.Push(&polys[i]); err != nil {
			t.Fatal(err)
		}
	}
	return b.Finish()
}

func TestPolygonArray_ValueAsGeo(t *testing.T) {
	arr := buildPolygons(t, testPolygons)
	for i := range testPolygons {
		if got := arr.ValueAsGeo(i); !orb.Equal(got, testPolygons[i]) {
			t.Errorf("element %d: expected %v, got %v", i, testPolygons[i], got)
		}
	}
}

func TestPolygonScalar_Rings(t *testing.T) {
	arr := buildPolygons(t, testPolygons)

	p := arr.Value(0)
	if p.NumRings() != 2 {
		t.Fatalf("expected 2 rings, got %d", p.NumRings())
	}
	if p.NumInteriors() != 1 {
		t.Errorf("expected 1 interior ring, got %d", p.NumInteriors())
	}

	exterior, ok := p.Exterior()
	if !ok {
		t.Fatal("expected an exterior ring")
	}
	if exterior.NumPoints() != 5 {
		t.Errorf("expected 5 exterior points, got %d", exterior.NumPoints())
	}

	hole, ok := p.Ring(1)
	if !ok {
		t.Fatal("expected a second ring")
	}
	if pt, _ := hole.PointAt(0); pt != (orb.Point{2, 2}) {
		t.Errorf("expected hole to start at (2, 2), got %v", pt)
	}

	if _, ok := p.Ring(2); ok {
		t.Error("expected no third ring")
	}
}

func TestPolygonArray_AsMultiLineString(t *testing.T) {
	arr := buildPolygons(t, testPolygons)

	mls := arr.AsMultiLineString()
	want := orb.MultiLineString{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
	}
	if got := mls.ValueAsGeo(0); !orb.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	back := mls.AsPolygon()
	for i := 0; i < back.Len(); i++ {
		if !orb.Equal(back.ValueAsGeo(i), arr.ValueAsGeo(i)) {
			t.Errorf("element %d changed through re-tagging", i)
		}
	}
}

func TestPolygonArray_SliceConsistency(t *testing.T) {
	b := NewPolygonBuilder()
	if err := b.Push(&testPolygons[0]); err != nil {
		t.Fatal(err)
	}
	if err := b.Push(nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Push(&testPolygons[1]); err != nil {
		t.Fatal(err)
	}
	arr := b.Finish()

	s := arr.Slice(1, 2)
	if !s.IsNull(0) {
		t.Error("expected element 0 of the slice to be null")
	}
	if !orb.Equal(s.ValueAsGeo(1), arr.ValueAsGeo(2)) {
		t.Error("slice disagrees with parent")
	}
}

func TestPolygonBuilder_PushGeometryRingAndBound(t *testing.T) {
	b := NewPolygonBuilder()
	if err := b.PushGeometry(orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := b.PushGeometry(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}); err != nil {
		t.Fatal(err)
	}
	arr := b.Finish()

	if arr.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", arr.Len())
	}
	got, ok := arr.GetAsGeo(1)
	if !ok {
		t.Fatal("expected a valid polygon")
	}
	if len(got) != 1 || len(got[0]) != 5 {
		t.Errorf("expected a single 5-point ring from the bound, got %v", got)
	}
}

func TestMultiPolygonArray_RoundTrip(t *testing.T) {
	mps := []orb.MultiPolygon{
		{
			{{{0, 0}, {5, 0}, {5, 5}, {0, 5}, {0, 0}}},
			{{{10, 10}, {15, 10}, {15, 15}, {10, 15}, {10, 10}}},
		},
		{
			{
				{{20, 20}, {40, 20}, {40, 40}, {20, 40}, {20, 20}},
				{{25, 25}, {35, 25}, {35, 35}, {25, 35}, {25, 25}}, // hole
			},
		},
	}

	b := NewMultiPolygonBuilder()
	for i := range mps {
		if err := b.Push(&mps[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Push(nil); err != nil {
		t.Fatal(err)
	}
	arr := b.Finish()

	if arr.Len() != 3 {
		t.Fatalf("expected 3 elements, got %d", arr.Len())
	}
	for i := range mps {
		if got := arr.ValueAsGeo(i); !orb.Equal(got, mps[i]) {
			t.Errorf("element %d: expected %v, got %v", i, mps[i], got)
		}
	}
	if !arr.IsNull(2) {
		t.Error("expected element 2 to be null")
	}

	mp := arr.Value(0)
	if mp.NumPolygons() != 2 {
		t.Fatalf("expected 2 polygons, got %d", mp.NumPolygons())
	}
	poly, ok := mp.PolygonAt(1)
	if !ok {
		t.Fatal("expected a second polygon")
	}
	if ring, _ := poly.Exterior(); ring.NumPoints() != 5 {
		t.Errorf("expected 5 points, got %d", ring.NumPoints())
	}
}
