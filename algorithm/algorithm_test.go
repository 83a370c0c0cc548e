package algorithm

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	geoarrow "github.com/tingold/orb-geoarrow"
)

func mustFromGeometries(t *testing.T, geoms []orb.Geometry) geoarrow.GeometryArray {
	t.Helper()
	arr, err := geoarrow.FromGeometries(geoms)
	if err != nil {
		t.Fatal(err)
	}
	return arr
}

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestArea_PolygonWithHole(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.Polygon{
			{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
			{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}}, // hole
		},
		nil,
	})

	areas, validity, err := Area(arr)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(math.Abs(areas[0]), 64, 1e-9) {
		t.Errorf("expected area 64, got %v", areas[0])
	}
	if validity == nil || validity.Get(1) {
		t.Error("expected element 1 to stay null")
	}
}

func TestArea_Points(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{orb.Point{1, 2}, orb.Point{3, 4}})
	areas, validity, err := Area(arr)
	if err != nil {
		t.Fatal(err)
	}
	if areas[0] != 0 || areas[1] != 0 {
		t.Errorf("expected zero areas, got %v", areas)
	}
	if validity != nil {
		t.Error("expected no null mask")
	}
}

func TestCentroid(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
		nil,
	})

	centroids, err := Centroid(arr)
	if err != nil {
		t.Fatal(err)
	}
	if centroids.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", centroids.Len())
	}
	c, ok := centroids.GetAsGeo(0)
	if !ok {
		t.Fatal("expected a centroid")
	}
	if !approxEqual(c[0], 5, 1e-9) || !approxEqual(c[1], 5, 1e-9) {
		t.Errorf("expected (5, 5), got %v", c)
	}
	if !centroids.IsNull(1) {
		t.Error("expected element 1 to stay null")
	}
}

func TestCentroid_PointIdentity(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{orb.Point{3, 7}})
	centroids, err := Centroid(arr)
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := centroids.GetAsGeo(0); c != (orb.Point{3, 7}) {
		t.Errorf("expected (3, 7), got %v", c)
	}
}

func TestLength_Euclidean(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.LineString{{0, 0}, {3, 4}},
		nil,
		orb.LineString{{0, 0}, {1, 0}, {1, 1}},
	})

	lengths, validity, err := Length(arr, Euclidean)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(lengths[0], 5, 1e-9) {
		t.Errorf("expected length 5, got %v", lengths[0])
	}
	if !approxEqual(lengths[2], 2, 1e-9) {
		t.Errorf("expected length 2, got %v", lengths[2])
	}
	if validity == nil || validity.Get(1) {
		t.Error("expected element 1 to stay null")
	}
}

func TestLength_PointsAlwaysZero(t *testing.T) {
	// Points have no intrinsic length; the output is 0.0 with no null mask
	// even when the input holds nulls.
	arr := mustFromGeometries(t, []orb.Geometry{orb.Point{1, 2}, nil, orb.Point{3, 4}})

	lengths, validity, err := Length(arr, Euclidean)
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range lengths {
		if l != 0 {
			t.Errorf("element %d: expected 0, got %v", i, l)
		}
	}
	if validity != nil {
		t.Error("expected no null mask for point lengths")
	}
}

func TestLength_PolygonNotImplemented(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
	})
	_, _, err := Length(arr, Euclidean)
	if !errors.Is(err, geoarrow.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}

func TestLength_GeodesicMethods(t *testing.T) {
	// One degree of longitude along the equator.
	arr := mustFromGeometries(t, []orb.Geometry{orb.LineString{{0, 0}, {1, 0}}})

	haversine, _, err := Length(arr, Haversine)
	if err != nil {
		t.Fatal(err)
	}
	vincenty, _, err := Length(arr, Vincenty)
	if err != nil {
		t.Fatal(err)
	}
	geodesic, _, err := Length(arr, Geodesic)
	if err != nil {
		t.Fatal(err)
	}

	// Both earth models agree to a tenth of a percent here.
	if !approxEqual(haversine[0], 111319.49, 120) {
		t.Errorf("unexpected haversine length %v", haversine[0])
	}
	if !approxEqual(vincenty[0], haversine[0], haversine[0]*0.001) {
		t.Errorf("vincenty %v too far from haversine %v", vincenty[0], haversine[0])
	}
	if geodesic[0] != vincenty[0] {
		t.Errorf("expected geodesic %v to equal vincenty %v", geodesic[0], vincenty[0])
	}
}

func TestConvexHull(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.MultiPoint{{0, 0}, {10, 0}, {5, 5}, {10, 10}, {0, 10}, {5, 3}},
	})

	hulls, err := ConvexHull(arr)
	if err != nil {
		t.Fatal(err)
	}
	hull, ok := hulls.GetAsGeo(0)
	if !ok || len(hull) != 1 {
		t.Fatalf("expected a one-ring hull, got %v", hull)
	}
	// Four corners plus the closing point; interior points dropped.
	if len(hull[0]) != 5 {
		t.Errorf("expected a closed 4-corner ring, got %v", hull[0])
	}
	if hull[0][0] != hull[0][len(hull[0])-1] {
		t.Error("expected a closed ring")
	}
}

func TestEnvelope(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.LineString{{0, 5}, {10, -5}},
		nil,
	})

	bounds, validity, err := Envelope(arr)
	if err != nil {
		t.Fatal(err)
	}
	want := orb.Bound{Min: orb.Point{0, -5}, Max: orb.Point{10, 5}}
	if bounds[0] != want {
		t.Errorf("expected %v, got %v", want, bounds[0])
	}
	if validity == nil || validity.Get(1) {
		t.Error("expected element 1 to stay null")
	}
}

func TestSimplify_LineString(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.LineString{{0, 0}, {1, 0.0001}, {2, 0}},
	})

	out, err := Simplify(arr, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	lines, ok := out.(*geoarrow.LineStringArray)
	if !ok {
		t.Fatalf("expected *LineStringArray, got %T", out)
	}
	got, _ := lines.GetAsGeo(0)
	if len(got) != 2 {
		t.Errorf("expected the middle vertex to be dropped, got %v", got)
	}
}

func TestSimplify_PointPassThrough(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{orb.Point{1, 2}})
	out, err := Simplify(arr, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if out != arr {
		t.Error("expected point arrays to pass through unchanged")
	}
}

func TestIsEmpty(t *testing.T) {
	b := geoarrow.NewLineStringBuilder()
	empty := orb.LineString{}
	full := orb.LineString{{0, 0}, {1, 1}}
	if err := b.Push(&empty); err != nil {
		t.Fatal(err)
	}
	if err := b.Push(&full); err != nil {
		t.Fatal(err)
	}

	out, _, err := IsEmpty(b.Finish())
	if err != nil {
		t.Fatal(err)
	}
	if !out[0] {
		t.Error("expected the zero-point line to be empty")
	}
	if out[1] {
		t.Error("expected the two-point line to be non-empty")
	}
}

func TestIsRing(t *testing.T) {
	closed := orb.LineString{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	open := orb.LineString{{0, 0}, {1, 0}, {1, 1}}
	arr := mustFromGeometries(t, []orb.Geometry{closed, open})

	out, _, err := IsRing(arr)
	if err != nil {
		t.Fatal(err)
	}
	if !out[0] {
		t.Error("expected the closed line to be a ring")
	}
	if out[1] {
		t.Error("expected the open line to not be a ring")
	}
}

func TestIsRing_NotDefinedForPoints(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{orb.Point{1, 2}})
	_, _, err := IsRing(arr)
	if !errors.Is(err, geoarrow.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}

func TestXY(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{orb.Point{1, 2}, orb.Point{3, 4}})

	x, _, err := X(arr)
	if err != nil {
		t.Fatal(err)
	}
	y, _, err := Y(arr)
	if err != nil {
		t.Fatal(err)
	}
	if x[0] != 1 || x[1] != 3 || y[0] != 2 || y[1] != 4 {
		t.Errorf("unexpected coordinates x=%v y=%v", x, y)
	}
}

func TestXY_RejectsNonPoints(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{orb.LineString{{0, 0}, {1, 1}}})
	if _, _, err := X(arr); err == nil {
		t.Error("expected an error extracting x from a line array")
	}
	if _, _, err := Y(arr); err == nil {
		t.Error("expected an error extracting y from a line array")
	}
}

func TestExterior(t *testing.T) {
	arr := mustFromGeometries(t, []orb.Geometry{
		orb.Polygon{
			{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
			{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
		},
		nil,
	})

	lines, err := Exterior(arr)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := lines.GetAsGeo(0)
	if !ok {
		t.Fatal("expected an exterior ring")
	}
	want := orb.LineString{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	if !orb.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !lines.IsNull(1) {
		t.Error("expected element 1 to stay null")
	}
}

func TestWKBArrayDispatch(t *testing.T) {
	// Generic operations work on WKB arrays by decoding per row.
	b := geoarrow.NewWKBBuilder()
	if err := b.Push(orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}); err != nil {
		t.Fatal(err)
	}
	arr := b.Finish()

	areas, _, err := Area(arr)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(math.Abs(areas[0]), 16, 1e-9) {
		t.Errorf("expected area 16, got %v", areas[0])
	}
}
