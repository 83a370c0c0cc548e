package algorithm

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// LengthMethod selects the distance function used to measure line length.
type LengthMethod int

const (
	// Euclidean measures straight-line distance in coordinate units.
	Euclidean LengthMethod = iota
	// Haversine measures great-circle distance on a spherical earth, in
	// meters, treating coordinates as lon/lat degrees.
	Haversine
	// Geodesic measures distance on the WGS84 ellipsoid, in meters. It is
	// computed with the Vincenty inverse formula.
	Geodesic
	// Vincenty measures distance on the WGS84 ellipsoid with the Vincenty
	// inverse formula, in meters.
	Vincenty
)

func (m LengthMethod) distance(a, b orb.Point) float64 {
	switch m {
	case Haversine:
		return geo.DistanceHaversine(a, b)
	case Geodesic, Vincenty:
		return vincentyDistance(a, b)
	default:
		return planar.Distance(a, b)
	}
}

// Length returns the length of every row measured with the given method.
//
// Points and multipoints have no intrinsic length: their output is always
// 0.0 with no null mask, regardless of the input validity bitmap. This
// asymmetry with the usual null-in/null-out rule is deliberate and relied on
// by callers. Line rows follow the usual rule: null in, null out. Polygon
// rows have no defined length and return ErrNotImplemented; perimeter is a
// different measure.
func Length(arr geoarrow.GeometryArray, method LengthMethod) ([]float64, *geoarrow.Bitmap, error) {
	switch arr.(type) {
	case *geoarrow.PointArray, *geoarrow.MultiPointArray:
		return make([]float64, arr.Len()), nil, nil
	case *geoarrow.LineStringArray, *geoarrow.MultiLineStringArray:
		return mapFloat(arr, func(g orb.Geometry) float64 {
			return geomLength(g, method)
		})
	case *geoarrow.PolygonArray, *geoarrow.MultiPolygonArray, *geoarrow.WKBArray:
		return nil, nil, geoarrow.ErrNotImplemented
	default:
		return nil, nil, &geoarrow.UnsupportedGeometryError{Op: "length"}
	}
}

func geomLength(g orb.Geometry, method LengthMethod) float64 {
	switch v := g.(type) {
	case orb.LineString:
		return lineLength(v, method)
	case orb.MultiLineString:
		var sum float64
		for _, ls := range v {
			sum += lineLength(ls, method)
		}
		return sum
	default:
		return 0
	}
}

func lineLength(ls orb.LineString, method LengthMethod) float64 {
	var sum float64
	for i := 1; i < len(ls); i++ {
		sum += method.distance(ls[i-1], ls[i])
	}
	return sum
}

// WGS84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84B = 6356752.314245
	wgs84F = 1 / 298.257223563
)

// vincentyDistance solves the inverse geodesic problem on the WGS84
// ellipsoid. It falls back to the haversine distance for nearly antipodal
// point pairs where the iteration does not converge.
func vincentyDistance(p1, p2 orb.Point) float64 {
	if p1 == p2 {
		return 0
	}

	l := (p2[0] - p1[0]) * math.Pi / 180
	u1 := math.Atan((1 - wgs84F) * math.Tan(p1[1]*math.Pi/180))
	u2 := math.Atan((1 - wgs84F) * math.Tan(p2[1]*math.Pi/180))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	for range 200 {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(
			(cosU2*sinLambda)*(cosU2*sinLambda) +
				(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda))
		if sinSigma == 0 {
			return 0 // coincident points
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			cos2SigmaM = 0 // equatorial line
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		c := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < 1e-12 {
			uSq := cosSqAlpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
			a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := b * sinSigma * (cos2SigmaM + b/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return wgs84B * a * (sigma - deltaSigma)
		}
	}
	return geo.DistanceHaversine(p1, p2)
}
