package geoarrow

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Common errors returned by this package.
var (
	ErrOffsetOverflow  = errors.New("geoarrow: offset value overflows int64")
	ErrNotImplemented  = errors.New("geoarrow: not implemented")
	ErrNilGeometry     = errors.New("geoarrow: nil geometry")
	ErrInvalidGeomType = errors.New("geoarrow: geometry type does not match array type")
)

// LayoutError reports a buffer-length or validity-length mismatch detected at
// array construction time. It is always surfaced to the caller, never
// auto-corrected.
type LayoutError struct {
	Reason string
}

func (e *LayoutError) Error() string {
	return "geoarrow: invalid layout: " + e.Reason
}

// Is supports errors.Is by matching any *LayoutError target.
func (e *LayoutError) Is(target error) bool {
	_, ok := target.(*LayoutError)
	return ok
}

func layoutErrorf(format string, args ...any) error {
	return &LayoutError{Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedGeometryError reports that an operation encountered a geometry
// kind it has no rule for.
type UnsupportedGeometryError struct {
	Op       string
	Geometry orb.Geometry
}

func (e *UnsupportedGeometryError) Error() string {
	if e.Geometry == nil {
		return fmt.Sprintf("geoarrow: %s: unsupported geometry kind", e.Op)
	}
	return fmt.Sprintf("geoarrow: %s: unsupported geometry kind %s", e.Op, e.Geometry.GeoJSONType())
}

// Is supports errors.Is by matching any *UnsupportedGeometryError target.
func (e *UnsupportedGeometryError) Is(target error) bool {
	_, ok := target.(*UnsupportedGeometryError)
	return ok
}

// WKBDecodeError reports a malformed Well-Known-Binary byte sequence. The
// offending input is never silently defaulted to an empty geometry.
type WKBDecodeError struct {
	Offset int
	Reason string
}

func (e *WKBDecodeError) Error() string {
	return fmt.Sprintf("geoarrow: invalid wkb at byte %d: %s", e.Offset, e.Reason)
}

// Is supports errors.Is by matching any *WKBDecodeError target.
func (e *WKBDecodeError) Is(target error) bool {
	_, ok := target.(*WKBDecodeError)
	return ok
}

func wkbDecodeErrorf(offset int, format string, args ...any) error {
	return &WKBDecodeError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
