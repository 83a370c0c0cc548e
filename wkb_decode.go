package geoarrow

import (
	"encoding/binary"
	"math"

	"github.com/paulmach/orb"
)

// wkbReader walks a WKB byte sequence, tracking the absolute offset for
// error reporting.
type wkbReader struct {
	buf []byte
	pos int
}

// DecodeWKB parses a Well-Known-Binary byte sequence into an orb geometry.
// Both byte orders are accepted; only the 2-D xy type codes 1-6 are
// supported. Malformed or trailing bytes surface a *WKBDecodeError.
func DecodeWKB(buf []byte) (orb.Geometry, error) {
	r := &wkbReader{buf: buf}
	g, err := r.geometry()
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.buf) {
		return nil, wkbDecodeErrorf(r.pos, "%d trailing bytes", len(r.buf)-r.pos)
	}
	return g, nil
}

func (r *wkbReader) geometry() (orb.Geometry, error) {
	order, typ, err := r.header()
	if err != nil {
		return nil, err
	}
	switch typ {
	case wkbPoint:
		return r.point(order)
	case wkbLineString:
		return r.lineString(order)
	case wkbPolygon:
		return r.polygon(order)
	case wkbMultiPoint:
		return r.multi(order, wkbPoint)
	case wkbMultiLineString:
		return r.multi(order, wkbLineString)
	case wkbMultiPolygon:
		return r.multi(order, wkbPolygon)
	default:
		return nil, wkbDecodeErrorf(r.pos-4, "unsupported geometry type code %d", typ)
	}
}

// header reads the byte-order flag and the type word, rejecting Z/M/SRID
// extension bits.
func (r *wkbReader) header() (binary.ByteOrder, uint32, error) {
	flag, err := r.byte()
	if err != nil {
		return nil, 0, err
	}
	var order binary.ByteOrder
	switch flag {
	case wkbBigEndian:
		order = binary.BigEndian
	case wkbLittleEndian:
		order = binary.LittleEndian
	default:
		return nil, 0, wkbDecodeErrorf(r.pos-1, "invalid byte order flag 0x%02x", flag)
	}
	typ, err := r.uint32(order)
	if err != nil {
		return nil, 0, err
	}
	if typ&wkbFlagMask != 0 {
		return nil, 0, wkbDecodeErrorf(r.pos-4, "Z/M/SRID extension bits 0x%08x are not supported", typ&wkbFlagMask)
	}
	return order, typ, nil
}

func (r *wkbReader) point(order binary.ByteOrder) (orb.Point, error) {
	x, err := r.float64(order)
	if err != nil {
		return orb.Point{}, err
	}
	y, err := r.float64(order)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{x, y}, nil
}

func (r *wkbReader) lineString(order binary.ByteOrder) (orb.LineString, error) {
	n, err := r.count(order, 16)
	if err != nil {
		return nil, err
	}
	ls := make(orb.LineString, 0, n)
	for range n {
		p, err := r.point(order)
		if err != nil {
			return nil, err
		}
		ls = append(ls, p)
	}
	return ls, nil
}

func (r *wkbReader) polygon(order binary.ByteOrder) (orb.Polygon, error) {
	n, err := r.count(order, 4)
	if err != nil {
		return nil, err
	}
	poly := make(orb.Polygon, 0, n)
	for range n {
		ls, err := r.lineString(order)
		if err != nil {
			return nil, err
		}
		poly = append(poly, orb.Ring(ls))
	}
	return poly, nil
}

// multi reads a multi-geometry: a count followed by that many full WKB child
// geometries, each carrying its own header. Children must match the expected
// child type code.
func (r *wkbReader) multi(order binary.ByteOrder, childType uint32) (orb.Geometry, error) {
	n, err := r.count(order, 5)
	if err != nil {
		return nil, err
	}
	switch childType {
	case wkbPoint:
		mp := make(orb.MultiPoint, 0, n)
		for range n {
			childOrder, typ, err := r.header()
			if err != nil {
				return nil, err
			}
			if typ != wkbPoint {
				return nil, wkbDecodeErrorf(r.pos-4, "multipoint child has type code %d, want %d", typ, wkbPoint)
			}
			p, err := r.point(childOrder)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil

	case wkbLineString:
		mls := make(orb.MultiLineString, 0, n)
		for range n {
			childOrder, typ, err := r.header()
			if err != nil {
				return nil, err
			}
			if typ != wkbLineString {
				return nil, wkbDecodeErrorf(r.pos-4, "multilinestring child has type code %d, want %d", typ, wkbLineString)
			}
			ls, err := r.lineString(childOrder)
			if err != nil {
				return nil, err
			}
			mls = append(mls, ls)
		}
		return mls, nil

	default: // wkbPolygon
		mp := make(orb.MultiPolygon, 0, n)
		for range n {
			childOrder, typ, err := r.header()
			if err != nil {
				return nil, err
			}
			if typ != wkbPolygon {
				return nil, wkbDecodeErrorf(r.pos-4, "multipolygon child has type code %d, want %d", typ, wkbPolygon)
			}
			poly, err := r.polygon(childOrder)
			if err != nil {
				return nil, err
			}
			mp = append(mp, poly)
		}
		return mp, nil
	}
}

// count reads an element count and checks that at least minElemSize bytes per
// element remain, so malformed counts fail instead of allocating.
func (r *wkbReader) count(order binary.ByteOrder, minElemSize int) (int, error) {
	n, err := r.uint32(order)
	if err != nil {
		return 0, err
	}
	if int64(n)*int64(minElemSize) > int64(len(r.buf)-r.pos) {
		return 0, wkbDecodeErrorf(r.pos-4, "count %d exceeds remaining %d bytes", n, len(r.buf)-r.pos)
	}
	return int(n), nil
}

func (r *wkbReader) byte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, wkbDecodeErrorf(r.pos, "unexpected end of input")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *wkbReader) uint32(order binary.ByteOrder) (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, wkbDecodeErrorf(r.pos, "unexpected end of input")
	}
	v := order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *wkbReader) float64(order binary.ByteOrder) (float64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, wkbDecodeErrorf(r.pos, "unexpected end of input")
	}
	v := math.Float64frombits(order.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}
