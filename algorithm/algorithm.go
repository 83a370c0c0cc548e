// Package algorithm implements per-row geometric computations over geoarrow
// arrays. Every operation handles each array variant explicitly, propagates
// null rows to null outputs, and returns plain Go buffers or new arrays of the
// same length as the input.
package algorithm

import (
	"github.com/paulmach/orb"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// rowGeometry materializes row i as an orb geometry. Null rows return
// (nil, nil); malformed WKB rows surface a decode error instead of panicking.
func rowGeometry(arr geoarrow.GeometryArray, i int) (orb.Geometry, error) {
	if arr.IsNull(i) {
		return nil, nil
	}
	if w, ok := arr.(*geoarrow.WKBArray); ok {
		return w.DecodeValue(i)
	}
	return arr.ValueAsGeo(i), nil
}

// mapFloat computes one float64 per row, carrying the input's validity
// pattern through to the output bitmap.
func mapFloat(arr geoarrow.GeometryArray, f func(orb.Geometry) float64) ([]float64, *geoarrow.Bitmap, error) {
	out := make([]float64, arr.Len())
	validity := geoarrow.NewBitmapBuilder(arr.Len())
	for i := range arr.Len() {
		g, err := rowGeometry(arr, i)
		if err != nil {
			return nil, nil, err
		}
		if g == nil {
			validity.Push(false)
			continue
		}
		out[i] = f(g)
		validity.Push(true)
	}
	return out, validity.Finish(), nil
}
