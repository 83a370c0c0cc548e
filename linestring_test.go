package geoarrow

import (
	"testing"

	"github.com/paulmach/orb"
)

func buildLineStrings(t *testing.T, lines []orb.LineString, nullAt ...int) *LineStringArray {
	t.Helper()
	nulls := make(map[int]bool, len(nullAt))
	for _, i := range nullAt {
		nulls[i] = true
	}
	b := NewLineStringBuilder()
	for i := range lines {
		var err error
		if nulls[i] {
			err = b.Push(nil)
		} else {
			err = b.Push(&lines[i])
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	return b.Finish()
}

func TestLineStringBuilder_OffsetsAfterNull(t *testing.T) {
	arr := buildLineStrings(t, []orb.LineString{
		{{0, 0}, {1, 1}},
		{}, // becomes null
		{{2, 2}, {3, 3}, {4, 4}},
	}, 1)

	offsets := arr.GeomOffsets()
	want := []int64{0, 2, 2, 5}
	got := offsets.Values()
	if len(got) != len(want) {
		t.Fatalf("expected %d offsets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offset %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestLineStringArray_ValueAsGeo(t *testing.T) {
	lines := []orb.LineString{
		{{0, 0}, {1, 1}},
		{{2, 2}, {3, 3}, {4, 4}},
	}
	arr := buildLineStrings(t, lines)

	for i := range lines {
		if got := arr.ValueAsGeo(i); !orb.Equal(got, lines[i]) {
			t.Errorf("element %d: expected %v, got %v", i, lines[i], got)
		}
	}
}

func TestLineStringArray_SliceConsistency(t *testing.T) {
	lines := []orb.LineString{
		{{0, 0}, {1, 1}},
		{{2, 2}, {3, 3}},
		{{4, 4}, {5, 5}, {6, 6}},
		{{7, 7}, {8, 8}},
	}
	arr := buildLineStrings(t, lines, 1)

	s := arr.Slice(1, 3)
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) != arr.IsNull(1+i) {
			t.Errorf("element %d: slice validity disagrees with parent", i)
			continue
		}
		if s.IsNull(i) {
			continue
		}
		if !orb.Equal(s.ValueAsGeo(i), arr.ValueAsGeo(1+i)) {
			t.Errorf("element %d: slice disagrees with parent", i)
		}
	}
}

func TestLineStringArray_SliceSharesBuffers(t *testing.T) {
	arr := buildLineStrings(t, []orb.LineString{
		{{0, 0}, {1, 1}},
		{{2, 2}, {3, 3}},
	})

	s := arr.SliceUnchecked(1, 1)
	sx, sy := s.Coords()
	x, y := arr.Coords()
	if &sx[0] != &x[0] || &sy[0] != &y[0] {
		t.Error("expected the slice to share coordinate buffers with its parent")
	}
}

func TestLineStringArray_AsMultiPoint(t *testing.T) {
	arr := buildLineStrings(t, []orb.LineString{
		{{0, 0}, {1, 1}},
		{{2, 2}, {3, 3}, {4, 4}},
	})

	mp := arr.AsMultiPoint()
	if mp.Len() != arr.Len() {
		t.Fatalf("expected length %d, got %d", arr.Len(), mp.Len())
	}
	want := orb.MultiPoint{{2, 2}, {3, 3}, {4, 4}}
	if got := mp.ValueAsGeo(1); !orb.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Re-tagging shares buffers, no coordinate copy.
	mx, _ := mp.Coords()
	x, _ := arr.Coords()
	if &mx[0] != &x[0] {
		t.Error("expected the multipoint view to share coordinate buffers")
	}

	// And it is lossless both ways.
	back := mp.AsLineString()
	for i := 0; i < back.Len(); i++ {
		if !orb.Equal(back.ValueAsGeo(i), arr.ValueAsGeo(i)) {
			t.Errorf("element %d changed through re-tagging", i)
		}
	}
}

func TestLineStringScalar_PointAt(t *testing.T) {
	arr := buildLineStrings(t, []orb.LineString{
		{{0, 0}, {1, 1}, {2, 2}},
	})

	ls := arr.Value(0)
	if ls.NumPoints() != 3 {
		t.Fatalf("expected 3 points, got %d", ls.NumPoints())
	}
	if p, ok := ls.PointAt(1); !ok || p != (orb.Point{1, 1}) {
		t.Errorf("expected (1, 1), got %v", p)
	}
	if _, ok := ls.PointAt(3); ok {
		t.Error("expected no point past the end")
	}
}
