// Package index builds R-tree spatial indexes over geoarrow arrays and joins
// two indexed arrays on a spatial predicate.
package index

import (
	"log/slog"

	"github.com/paulmach/orb"

	geoarrow "github.com/tingold/orb-geoarrow"
)

// TreeNode is one indexed row: its position in the source array and its
// bounding rectangle. The tree stores row references, never geometries.
type TreeNode struct {
	Index    int
	Envelope BoundingRect
}

// SpatialIndex is an immutable R-tree over the rows of one geometry array.
type SpatialIndex struct {
	arr       geoarrow.GeometryArray
	tree      *rtree
	unindexed []int
	logger    *slog.Logger
}

// Option configures index construction.
type Option func(*SpatialIndex)

// WithLogger enables debug logging during construction and joins. The index
// is silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(idx *SpatialIndex) { idx.logger = l }
}

// New indexes every valid row of arr by its bounding rectangle. Point rows
// are indexed by their exact location. Null rows are skipped and recorded as
// unindexed. Arrays holding a geometry kind with no rectangle rule fail with
// an error rather than being partially indexed.
func New(arr geoarrow.GeometryArray, opts ...Option) (*SpatialIndex, error) {
	idx := &SpatialIndex{arr: arr, tree: newRTree()}
	for _, opt := range opts {
		opt(idx)
	}

	for i := range arr.Len() {
		if arr.IsNull(i) {
			idx.unindexed = append(idx.unindexed, i)
			continue
		}
		rect, err := Envelope(arr, i)
		if err != nil {
			return nil, err
		}
		idx.tree.insert(rect, i)
	}

	if idx.logger != nil {
		idx.logger.Debug("spatial index built",
			"rows", arr.Len(),
			"indexed", arr.Len()-len(idx.unindexed),
			"unindexed", len(idx.unindexed),
			"nodes", len(idx.tree.nodes))
	}
	return idx, nil
}

// Len returns the row count of the indexed array, null rows included.
func (idx *SpatialIndex) Len() int { return idx.arr.Len() }

// Array returns the indexed array.
func (idx *SpatialIndex) Array() geoarrow.GeometryArray { return idx.arr }

// Unindexed returns the row indexes that were skipped as null, in order.
func (idx *SpatialIndex) Unindexed() []int { return idx.unindexed }

// Search calls fn with every indexed node whose rectangle intersects rect.
func (idx *SpatialIndex) Search(rect BoundingRect, fn func(TreeNode)) {
	idx.tree.search(rect, func(row int) {
		r, _ := Envelope(idx.arr, row)
		fn(TreeNode{Index: row, Envelope: r})
	})
}

// Envelope computes the bounding rectangle of row i with one pass over its
// coordinates. Point rows yield a zero-area rectangle at the point.
func Envelope(arr geoarrow.GeometryArray, i int) (BoundingRect, error) {
	var b orb.Bound
	switch a := arr.(type) {
	case *geoarrow.PointArray:
		b = a.Value(i).Bound()
	case *geoarrow.LineStringArray:
		b = a.Value(i).Bound()
	case *geoarrow.MultiPointArray:
		b = a.Value(i).Bound()
	case *geoarrow.PolygonArray:
		b = a.Value(i).Bound()
	case *geoarrow.MultiLineStringArray:
		b = a.Value(i).Bound()
	case *geoarrow.MultiPolygonArray:
		b = a.Value(i).Bound()
	case *geoarrow.WKBArray:
		g, err := a.DecodeValue(i)
		if err != nil {
			return BoundingRect{}, err
		}
		b = g.Bound()
	default:
		return BoundingRect{}, &geoarrow.UnsupportedGeometryError{Op: "bounding rect"}
	}
	return BoundingRect{
		MinX: b.Min[0], MinY: b.Min[1],
		MaxX: b.Max[0], MaxY: b.Max[1],
	}, nil
}
