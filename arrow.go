package geoarrow

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Arrow interchange layouts. Coordinates are a non-nullable
// Struct{x: f64, y: f64}; each nesting level is a LargeList, matching the
// GeoArrow separated-coordinate encoding:
//
//	Point           Struct{x, y}
//	LineString      LargeList<vertices: Struct{x, y}>
//	MultiPoint      LargeList<points: Struct{x, y}>
//	Polygon         LargeList<rings: LargeList<vertices: Struct{x, y}>>
//	MultiLineString LargeList<lines: LargeList<vertices: Struct{x, y}>>
//	MultiPolygon    LargeList<polygons: LargeList<rings: LargeList<vertices: Struct{x, y}>>>
//	WKB             LargeBinary
var (
	coordFieldX = arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Float64}
	coordFieldY = arrow.Field{Name: "y", Type: arrow.PrimitiveTypes.Float64}

	// ArrowCoordType is the coordinate struct every nested layout bottoms
	// out in.
	ArrowCoordType = arrow.StructOf(coordFieldX, coordFieldY)
)

// ArrowType returns the interchange data type for a geometry array variant.
func ArrowType(t GeometryType) arrow.DataType {
	switch t {
	case TypePoint:
		return ArrowCoordType
	case TypeLineString:
		return arrow.LargeListOfField(arrow.Field{Name: "vertices", Type: ArrowCoordType})
	case TypeMultiPoint:
		return arrow.LargeListOfField(arrow.Field{Name: "points", Type: ArrowCoordType})
	case TypePolygon:
		return arrow.LargeListOfField(arrow.Field{
			Name: "rings",
			Type: arrow.LargeListOfField(arrow.Field{Name: "vertices", Type: ArrowCoordType}),
		})
	case TypeMultiLineString:
		return arrow.LargeListOfField(arrow.Field{
			Name: "lines",
			Type: arrow.LargeListOfField(arrow.Field{Name: "vertices", Type: ArrowCoordType}),
		})
	case TypeMultiPolygon:
		return arrow.LargeListOfField(arrow.Field{
			Name: "polygons",
			Type: arrow.LargeListOfField(arrow.Field{
				Name: "rings",
				Type: arrow.LargeListOfField(arrow.Field{Name: "vertices", Type: ArrowCoordType}),
			}),
		})
	default:
		return arrow.BinaryTypes.LargeBinary
	}
}

// ToArrow converts any geometry array into its Arrow interchange form.
// Coordinate and offset buffers are wrapped without copying; only a validity
// bitmap sliced to a mid-byte boundary is repacked.
func ToArrow(arr GeometryArray) arrow.Array {
	switch a := arr.(type) {
	case *PointArray:
		return a.ToArrow()
	case *LineStringArray:
		return a.ToArrow()
	case *PolygonArray:
		return a.ToArrow()
	case *MultiPointArray:
		return a.ToArrow()
	case *MultiLineStringArray:
		return a.ToArrow()
	case *MultiPolygonArray:
		return a.ToArrow()
	case *WKBArray:
		return a.ToArrow()
	default:
		panic("geoarrow: unknown geometry array variant")
	}
}

// ToArrow converts the array into a Struct{x, y} arrow array.
func (a *PointArray) ToArrow() *array.Struct {
	validity, nulls := validityBuffer(a.validity)
	data := array.NewData(
		ArrowType(TypePoint), a.Len(),
		[]*memory.Buffer{validity},
		coordChildren(a.x, a.y), nulls, 0,
	)
	defer data.Release()
	return array.NewStructData(data)
}

// ToArrow converts the array into a LargeList<Struct{x, y}> arrow array.
func (a *LineStringArray) ToArrow() *array.LargeList {
	return listToArrow(ArrowType(TypeLineString), a.geomOffsets, a.validity,
		coordStructData(a.x, a.y))
}

// ToArrow converts the array into a LargeList<Struct{x, y}> arrow array.
func (a *MultiPointArray) ToArrow() *array.LargeList {
	return listToArrow(ArrowType(TypeMultiPoint), a.geomOffsets, a.validity,
		coordStructData(a.x, a.y))
}

// ToArrow converts the array into a LargeList<LargeList<Struct{x, y}>> arrow
// array.
func (a *PolygonArray) ToArrow() *array.LargeList {
	typ := ArrowType(TypePolygon).(*arrow.LargeListType)
	inner := listData(typ.Elem(), a.ringOffsets, nil, coordStructData(a.x, a.y))
	return listToArrow(typ, a.geomOffsets, a.validity, inner)
}

// ToArrow converts the array into a LargeList<LargeList<Struct{x, y}>> arrow
// array.
func (a *MultiLineStringArray) ToArrow() *array.LargeList {
	typ := ArrowType(TypeMultiLineString).(*arrow.LargeListType)
	inner := listData(typ.Elem(), a.ringOffsets, nil, coordStructData(a.x, a.y))
	return listToArrow(typ, a.geomOffsets, a.validity, inner)
}

// ToArrow converts the array into a triple-nested LargeList arrow array.
func (a *MultiPolygonArray) ToArrow() *array.LargeList {
	typ := ArrowType(TypeMultiPolygon).(*arrow.LargeListType)
	ringList := typ.Elem().(*arrow.LargeListType)
	rings := listData(ringList.Elem(), a.ringOffsets, nil, coordStructData(a.x, a.y))
	polygons := listData(ringList, a.polygonOffsets, nil, rings)
	return listToArrow(typ, a.geomOffsets, a.validity, polygons)
}

// ToArrow converts the array into a LargeBinary arrow array.
func (a *WKBArray) ToArrow() *array.LargeBinary {
	validity, nulls := validityBuffer(a.validity)
	data := array.NewData(
		arrow.BinaryTypes.LargeBinary, a.Len(),
		[]*memory.Buffer{
			validity,
			memory.NewBufferBytes(arrow.Int64Traits.CastToBytes(a.offsets.Values())),
			memory.NewBufferBytes(a.data),
		},
		nil, nulls, 0,
	)
	defer data.Release()
	return array.NewLargeBinaryData(data)
}

// coordChildren wraps x and y as non-nullable Float64 array data.
func coordChildren(x, y []float64) []arrow.ArrayData {
	xData := array.NewData(arrow.PrimitiveTypes.Float64, len(x),
		[]*memory.Buffer{nil, memory.NewBufferBytes(arrow.Float64Traits.CastToBytes(x))}, nil, 0, 0)
	yData := array.NewData(arrow.PrimitiveTypes.Float64, len(y),
		[]*memory.Buffer{nil, memory.NewBufferBytes(arrow.Float64Traits.CastToBytes(y))}, nil, 0, 0)
	return []arrow.ArrayData{xData, yData}
}

// coordStructData wraps x and y as one Struct{x, y} array data covering the
// whole coordinate buffer.
func coordStructData(x, y []float64) arrow.ArrayData {
	return array.NewData(ArrowCoordType, len(x), []*memory.Buffer{nil}, coordChildren(x, y), 0, 0)
}

// listData wraps one offsets level over a child as LargeList array data.
// listType is the list type itself, not its element.
func listData(listType arrow.DataType, offsets Offsets, validity *Bitmap, child arrow.ArrayData) arrow.ArrayData {
	buf, nulls := validityBuffer(validity)
	return array.NewData(
		listType, offsets.Len(),
		[]*memory.Buffer{buf, memory.NewBufferBytes(arrow.Int64Traits.CastToBytes(offsets.Values()))},
		[]arrow.ArrayData{child}, nulls, 0,
	)
}

func listToArrow(dt arrow.DataType, offsets Offsets, validity *Bitmap, child arrow.ArrayData) *array.LargeList {
	buf, nulls := validityBuffer(validity)
	data := array.NewData(
		dt, offsets.Len(),
		[]*memory.Buffer{buf, memory.NewBufferBytes(arrow.Int64Traits.CastToBytes(offsets.Values()))},
		[]arrow.ArrayData{child}, nulls, 0,
	)
	defer data.Release()
	return array.NewLargeListData(data)
}

// validityBuffer converts a Bitmap into an arrow validity buffer, repacking
// when the bitmap does not start on bit zero.
func validityBuffer(v *Bitmap) (*memory.Buffer, int) {
	if v == nil {
		return nil, 0
	}
	data, off := v.Bytes()
	if off != 0 {
		packed := make([]byte, bitutil.BytesForBits(int64(v.Len())))
		for i := range v.Len() {
			if v.Get(i) {
				bitutil.SetBit(packed, i)
			}
		}
		data = packed
	}
	return memory.NewBufferBytes(data), v.NullCount()
}

// FromArrow converts an Arrow array back into the geometry array for typ.
// Coordinate buffers are shared where the input exposes them; offsets are
// re-read per element so sliced Arrow inputs stay correct.
func FromArrow(arr arrow.Array, typ GeometryType) (GeometryArray, error) {
	switch typ {
	case TypePoint:
		st, ok := arr.(*array.Struct)
		if !ok {
			return nil, layoutErrorf("point interchange requires a struct array, got %s", arr.DataType())
		}
		x, y, err := structCoords(st)
		if err != nil {
			return nil, err
		}
		return NewPointArray(x, y, arrowValidity(arr))

	case TypeLineString, TypeMultiPoint:
		list, ok := arr.(*array.LargeList)
		if !ok {
			return nil, layoutErrorf("%s interchange requires a large list array, got %s", typ, arr.DataType())
		}
		st, ok := list.ListValues().(*array.Struct)
		if !ok {
			return nil, layoutErrorf("%s interchange requires Struct{x, y} values, got %s", typ, list.ListValues().DataType())
		}
		x, y, err := structCoords(st)
		if err != nil {
			return nil, err
		}
		geomOffsets, err := listOffsets(list)
		if err != nil {
			return nil, err
		}
		if typ == TypeMultiPoint {
			return NewMultiPointArray(x, y, geomOffsets, arrowValidity(arr))
		}
		return NewLineStringArray(x, y, geomOffsets, arrowValidity(arr))

	case TypePolygon, TypeMultiLineString:
		outer, ok := arr.(*array.LargeList)
		if !ok {
			return nil, layoutErrorf("%s interchange requires a large list array, got %s", typ, arr.DataType())
		}
		inner, ok := outer.ListValues().(*array.LargeList)
		if !ok {
			return nil, layoutErrorf("%s interchange requires two list levels, got %s", typ, outer.ListValues().DataType())
		}
		st, ok := inner.ListValues().(*array.Struct)
		if !ok {
			return nil, layoutErrorf("%s interchange requires Struct{x, y} values, got %s", typ, inner.ListValues().DataType())
		}
		x, y, err := structCoords(st)
		if err != nil {
			return nil, err
		}
		geomOffsets, err := listOffsets(outer)
		if err != nil {
			return nil, err
		}
		ringOffsets, err := listOffsets(inner)
		if err != nil {
			return nil, err
		}
		if typ == TypeMultiLineString {
			return NewMultiLineStringArray(x, y, geomOffsets, ringOffsets, arrowValidity(arr))
		}
		return NewPolygonArray(x, y, geomOffsets, ringOffsets, arrowValidity(arr))

	case TypeMultiPolygon:
		outer, ok := arr.(*array.LargeList)
		if !ok {
			return nil, layoutErrorf("multipolygon interchange requires a large list array, got %s", arr.DataType())
		}
		polygons, ok := outer.ListValues().(*array.LargeList)
		if !ok {
			return nil, layoutErrorf("multipolygon interchange requires three list levels, got %s", outer.ListValues().DataType())
		}
		rings, ok := polygons.ListValues().(*array.LargeList)
		if !ok {
			return nil, layoutErrorf("multipolygon interchange requires three list levels, got %s", polygons.ListValues().DataType())
		}
		st, ok := rings.ListValues().(*array.Struct)
		if !ok {
			return nil, layoutErrorf("multipolygon interchange requires Struct{x, y} values, got %s", rings.ListValues().DataType())
		}
		x, y, err := structCoords(st)
		if err != nil {
			return nil, err
		}
		geomOffsets, err := listOffsets(outer)
		if err != nil {
			return nil, err
		}
		polygonOffsets, err := listOffsets(polygons)
		if err != nil {
			return nil, err
		}
		ringOffsets, err := listOffsets(rings)
		if err != nil {
			return nil, err
		}
		return NewMultiPolygonArray(x, y, geomOffsets, polygonOffsets, ringOffsets, arrowValidity(arr))

	case TypeWKB:
		bin, ok := arr.(*array.LargeBinary)
		if !ok {
			return nil, layoutErrorf("wkb interchange requires a large binary array, got %s", arr.DataType())
		}
		// ValueBytes returns the window covered by the array slice, so
		// offsets are rebased to its start.
		offs := make([]int64, bin.Len()+1)
		for i := range bin.Len() {
			offs[i+1] = offs[i] + int64(bin.ValueLen(i))
		}
		offsets, err := NewOffsets(offs)
		if err != nil {
			return nil, err
		}
		return NewWKBArray(bin.ValueBytes(), offsets, arrowValidity(arr))

	default:
		return nil, layoutErrorf("unknown geometry type %d", typ)
	}
}

// structCoords extracts the x and y float64 buffers of a Struct{x, y} array.
func structCoords(st *array.Struct) (x, y []float64, err error) {
	if st.NumField() != 2 {
		return nil, nil, layoutErrorf("coordinate struct needs fields x and y, got %d fields", st.NumField())
	}
	xs, ok := st.Field(0).(*array.Float64)
	if !ok {
		return nil, nil, layoutErrorf("coordinate field x must be float64, got %s", st.Field(0).DataType())
	}
	ys, ok := st.Field(1).(*array.Float64)
	if !ok {
		return nil, nil, layoutErrorf("coordinate field y must be float64, got %s", st.Field(1).DataType())
	}
	return xs.Values(), ys.Values(), nil
}

// listOffsets re-reads one offsets level per element, staying correct for
// sliced Arrow inputs whose offsets window does not begin at zero.
func listOffsets(list *array.LargeList) (Offsets, error) {
	offs := make([]int64, list.Len()+1)
	for i := range list.Len() {
		start, end := list.ValueOffsets(i)
		offs[i] = start
		offs[i+1] = end
	}
	return NewOffsets(offs)
}

// arrowValidity wraps an arrow array's null bitmap as a Bitmap.
func arrowValidity(arr arrow.Array) *Bitmap {
	if arr.NullN() == 0 {
		return nil
	}
	return &Bitmap{
		data:   arr.NullBitmapBytes(),
		offset: arr.Data().Offset(),
		length: arr.Len(),
	}
}
