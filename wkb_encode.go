package geoarrow

import (
	"encoding/binary"
	"math"

	"github.com/paulmach/orb"
)

// OGC WKB geometry type codes, 2-D only.
const (
	wkbPoint           uint32 = 1
	wkbLineString      uint32 = 2
	wkbPolygon         uint32 = 3
	wkbMultiPoint      uint32 = 4
	wkbMultiLineString uint32 = 5
	wkbMultiPolygon    uint32 = 6
)

const (
	wkbBigEndian    byte = 0
	wkbLittleEndian byte = 1
)

// EWKB/ISO flag bits in the type word. This package is strictly 2-D xy, so
// any of these in the input is a decode error.
const wkbFlagMask uint32 = 0xE0000000

// EncodeWKB serializes a geometry to little-endian Well-Known-Binary. Ring
// and Bound are normalized to Polygon before encoding. Collections and nil
// geometries are not encodable and return an error.
func EncodeWKB(g orb.Geometry) ([]byte, error) {
	if g == nil {
		return nil, ErrNilGeometry
	}
	buf := make([]byte, 0, encodedWKBSize(g))
	return appendWKB(buf, g)
}

// encodedWKBSize returns the exact encoded size so the buffer is allocated
// once.
func encodedWKBSize(g orb.Geometry) int {
	const header = 1 + 4
	switch v := g.(type) {
	case orb.Point:
		return header + 16
	case orb.LineString:
		return header + 4 + 16*len(v)
	case orb.Ring:
		return header + 4 + 4 + 16*len(v)
	case orb.Polygon:
		n := header + 4
		for _, ring := range v {
			n += 4 + 16*len(ring)
		}
		return n
	case orb.Bound:
		return encodedWKBSize(v.ToPolygon())
	case orb.MultiPoint:
		return header + 4 + len(v)*(header+16)
	case orb.MultiLineString:
		n := header + 4
		for _, ls := range v {
			n += encodedWKBSize(ls)
		}
		return n
	case orb.MultiPolygon:
		n := header + 4
		for _, poly := range v {
			n += encodedWKBSize(poly)
		}
		return n
	default:
		return 0
	}
}

func appendWKB(buf []byte, g orb.Geometry) ([]byte, error) {
	switch v := g.(type) {
	case orb.Point:
		buf = appendWKBHeader(buf, wkbPoint)
		buf = appendWKBPoint(buf, v)
		return buf, nil

	case orb.LineString:
		buf = appendWKBHeader(buf, wkbLineString)
		buf = appendWKBCount(buf, len(v))
		for _, p := range v {
			buf = appendWKBPoint(buf, p)
		}
		return buf, nil

	case orb.Ring:
		return appendWKB(buf, orb.Polygon{v})

	case orb.Polygon:
		buf = appendWKBHeader(buf, wkbPolygon)
		buf = appendWKBCount(buf, len(v))
		for _, ring := range v {
			buf = appendWKBCount(buf, len(ring))
			for _, p := range ring {
				buf = appendWKBPoint(buf, p)
			}
		}
		return buf, nil

	case orb.Bound:
		return appendWKB(buf, v.ToPolygon())

	case orb.MultiPoint:
		buf = appendWKBHeader(buf, wkbMultiPoint)
		buf = appendWKBCount(buf, len(v))
		for _, p := range v {
			buf = appendWKBHeader(buf, wkbPoint)
			buf = appendWKBPoint(buf, p)
		}
		return buf, nil

	case orb.MultiLineString:
		buf = appendWKBHeader(buf, wkbMultiLineString)
		buf = appendWKBCount(buf, len(v))
		var err error
		for _, ls := range v {
			if buf, err = appendWKB(buf, ls); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case orb.MultiPolygon:
		buf = appendWKBHeader(buf, wkbMultiPolygon)
		buf = appendWKBCount(buf, len(v))
		var err error
		for _, poly := range v {
			if buf, err = appendWKB(buf, poly); err != nil {
				return nil, err
			}
		}
		return buf, nil

	default:
		return nil, &UnsupportedGeometryError{Op: "encode wkb", Geometry: g}
	}
}

func appendWKBHeader(buf []byte, typ uint32) []byte {
	buf = append(buf, wkbLittleEndian)
	return binary.LittleEndian.AppendUint32(buf, typ)
}

func appendWKBCount(buf []byte, n int) []byte {
	return binary.LittleEndian.AppendUint32(buf, uint32(n))
}

func appendWKBPoint(buf []byte, p orb.Point) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p[0]))
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(p[1]))
}
