package index

import (
	"math"
	"math/bits"
)

// BoundingRect is an axis-aligned bounding rectangle.
type BoundingRect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether the two rectangles share any point, edges
// included.
func (r BoundingRect) Intersects(o BoundingRect) bool {
	return r.MinX <= o.MaxX && r.MaxX >= o.MinX &&
		r.MinY <= o.MaxY && r.MaxY >= o.MinY
}

// Union returns the smallest rectangle containing both r and o.
func (r BoundingRect) Union(o BoundingRect) BoundingRect {
	return BoundingRect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Area returns the rectangle's area. Point rectangles have zero area.
func (r BoundingRect) Area() float64 {
	return (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
}

// enlargement is the extra area r would need to also cover o.
func (r BoundingRect) enlargement(o BoundingRect) float64 {
	return r.Union(o).Area() - r.Area()
}

// treeEntry leads either to a data row (leaf node) or to a child node.
type treeEntry struct {
	rect  BoundingRect
	index int
}

type treeNode struct {
	leaf    bool
	entries []treeEntry
}

// rtree is an in-memory R-tree over row indexes. Nodes live in a flat slice
// and reference each other by index. Splits are exhaustive minimal-area
// splits, workable because nodes stay small.
type rtree struct {
	root  int
	nodes []treeNode

	minChildren int
	maxChildren int
}

func newRTree() *rtree {
	return &rtree{minChildren: 2, maxChildren: 8}
}

func (t *rtree) empty() bool { return len(t.nodes) == 0 }

// insert adds one data row keyed by its bounding rectangle.
func (t *rtree) insert(rect BoundingRect, row int) {
	if t.empty() {
		t.nodes = append(t.nodes, treeNode{leaf: true})
		t.root = 0
	}

	leaf := t.chooseLeaf(rect)
	t.nodes[leaf].entries = append(t.nodes[leaf].entries, treeEntry{rect: rect, index: row})

	// Widen ancestor rectangles on the way back up.
	for current := leaf; current != t.root; {
		parent := t.parentOf(current)
		for i := range t.nodes[parent].entries {
			e := &t.nodes[parent].entries[i]
			if e.index == current {
				e.rect = e.rect.Union(rect)
				break
			}
		}
		current = parent
	}

	if len(t.nodes[leaf].entries) <= t.maxChildren {
		return
	}
	split := t.splitNode(leaf)
	root1, root2 := t.adjust(leaf, split)
	if root2 != -1 {
		t.growRoot(root1, root2)
	}
}

// search calls fn with every data row whose rectangle intersects rect.
func (t *rtree) search(rect BoundingRect, fn func(row int)) {
	if t.empty() {
		return
	}
	t.searchNode(t.root, rect, fn)
}

func (t *rtree) searchNode(n int, rect BoundingRect, fn func(row int)) {
	node := &t.nodes[n]
	for _, e := range node.entries {
		if !e.rect.Intersects(rect) {
			continue
		}
		if node.leaf {
			fn(e.index)
		} else {
			t.searchNode(e.index, rect, fn)
		}
	}
}

// joinCandidates calls fn with every (left row, right row) pair whose
// rectangles intersect, descending both trees together and skipping subtree
// pairs whose envelopes are disjoint. Worst case is quadratic; pruning makes
// the common case far cheaper.
func (t *rtree) joinCandidates(u *rtree, fn func(left, right int)) {
	if t.empty() || u.empty() {
		return
	}
	t.joinNodes(u, t.root, u.root, fn)
}

func (t *rtree) joinNodes(u *rtree, a, b int, fn func(left, right int)) {
	na, nb := &t.nodes[a], &u.nodes[b]
	switch {
	case na.leaf && nb.leaf:
		for _, ea := range na.entries {
			for _, eb := range nb.entries {
				if ea.rect.Intersects(eb.rect) {
					fn(ea.index, eb.index)
				}
			}
		}
	case na.leaf:
		bound := t.nodeBound(a)
		for _, eb := range nb.entries {
			if bound.Intersects(eb.rect) {
				t.joinNodes(u, a, eb.index, fn)
			}
		}
	case nb.leaf:
		bound := u.nodeBound(b)
		for _, ea := range na.entries {
			if ea.rect.Intersects(bound) {
				t.joinNodes(u, ea.index, b, fn)
			}
		}
	default:
		for _, ea := range na.entries {
			for _, eb := range nb.entries {
				if ea.rect.Intersects(eb.rect) {
					t.joinNodes(u, ea.index, eb.index, fn)
				}
			}
		}
	}
}

// parentOf finds the parent of a non-root node by walking all internal nodes.
func (t *rtree) parentOf(n int) int {
	for i, node := range t.nodes {
		if node.leaf {
			continue
		}
		for _, e := range node.entries {
			if e.index == n {
				return i
			}
		}
	}
	panic("index: rtree node has no parent")
}

// nodeBound is the smallest rectangle covering all of a node's entries.
func (t *rtree) nodeBound(n int) BoundingRect {
	entries := t.nodes[n].entries
	rect := entries[0].rect
	for _, e := range entries[1:] {
		rect = rect.Union(e.rect)
	}
	return rect
}

func (t *rtree) growRoot(r1, r2 int) {
	t.nodes = append(t.nodes, treeNode{
		entries: []treeEntry{
			{rect: t.nodeBound(r1), index: r1},
			{rect: t.nodeBound(r2), index: r2},
		},
	})
	t.root = len(t.nodes) - 1
}

// adjust propagates a split upward. It returns the final pair of top nodes;
// the second is -1 unless the root itself split.
func (t *rtree) adjust(n, nn int) (int, int) {
	for {
		if n == t.root {
			return n, nn
		}
		parent := t.parentOf(n)
		for i := range t.nodes[parent].entries {
			if t.nodes[parent].entries[i].index == n {
				t.nodes[parent].entries[i].rect = t.nodeBound(n)
				break
			}
		}
		pp := -1
		if nn != -1 {
			t.nodes[parent].entries = append(t.nodes[parent].entries, treeEntry{
				rect:  t.nodeBound(nn),
				index: nn,
			})
			if len(t.nodes[parent].entries) > t.maxChildren {
				pp = t.splitNode(parent)
			}
		}
		n, nn = parent, pp
	}
}

// splitNode splits an overfull node in two, minimizing the summed area of the
// halves over every valid assignment. The first half replaces n; the index of
// the new second half is returned.
func (t *rtree) splitNode(n int) int {
	entries := t.nodes[n].entries

	// Bit i of a split assigns entry i to the second half. The top bit stays
	// zero so mirrored assignments are not tried twice.
	var (
		bestSplit uint64
		bestArea  = math.Inf(1)
		maxSplit  = uint64(1<<(len(entries)-1)) - 1
	)
	for split := uint64(1); split <= maxSplit; split++ {
		if n := bits.OnesCount64(split); n < t.minChildren || len(entries)-n < t.minChildren {
			continue
		}
		var rectA, rectB BoundingRect
		var hasA, hasB bool
		for i, e := range entries {
			if split&(1<<i) == 0 {
				if hasA {
					rectA = rectA.Union(e.rect)
				} else {
					rectA, hasA = e.rect, true
				}
			} else {
				if hasB {
					rectB = rectB.Union(e.rect)
				} else {
					rectB, hasB = e.rect, true
				}
			}
		}
		if total := rectA.Area() + rectB.Area(); total < bestArea {
			bestArea = total
			bestSplit = split
		}
	}

	var entriesA, entriesB []treeEntry
	for i, e := range entries {
		if bestSplit&(1<<i) == 0 {
			entriesA = append(entriesA, e)
		} else {
			entriesB = append(entriesB, e)
		}
	}
	t.nodes[n].entries = entriesA
	t.nodes = append(t.nodes, treeNode{leaf: t.nodes[n].leaf, entries: entriesB})
	return len(t.nodes) - 1
}

// chooseLeaf descends to the leaf whose rectangle needs the least enlargement
// to cover rect, breaking ties by smaller area.
func (t *rtree) chooseLeaf(rect BoundingRect) int {
	node := t.root
	for {
		if t.nodes[node].leaf {
			return node
		}
		entries := t.nodes[node].entries
		best := 0
		bestDelta := entries[0].rect.enlargement(rect)
		for i := 1; i < len(entries); i++ {
			delta := entries[i].rect.enlargement(rect)
			if delta < bestDelta ||
				(delta == bestDelta && entries[i].rect.Area() < entries[best].rect.Area()) {
				best = i
				bestDelta = delta
			}
		}
		node = entries[best].index
	}
}
