// Package heightfield provides the voxel heightfield consumed by the
// walkability filtering pipeline and the filters themselves. Spans are stored
// in a flat arena indexed by SpanIndex; each column keeps the index of its
// lowest span and spans link upward by index.
package heightfield

import (
	"voxwalk/common"
)

const (
	// SpanHeightBits is the number of bits used to encode a span height limit.
	SpanHeightBits = 13
	// SpanMaxHeight is the maximum value for Span.SMin and Span.SMax.
	SpanMaxHeight = (1 << SpanHeightBits) - 1
	// MaxHeight is the effective ceiling of a span with nothing above it.
	MaxHeight = 0xffff
)

// AreaID is the terrain-category tag carried by every span.
type AreaID uint8

const (
	// NullArea marks a span as un-walkable. When a span is given this value
	// it is no longer assigned to a usable area.
	NullArea AreaID = 0
	// WalkableArea is the default area id used for walkable spans. This is
	// also the maximum allowed area id.
	WalkableArea AreaID = 63
)

// SpanIndex addresses a span inside a heightfield's arena.
type SpanIndex int32

// NilSpan terminates a column's span chain and marks an empty column.
const NilSpan SpanIndex = -1

// Span is a solid interval within a column. The walkable floor is SMax; the
// effective ceiling is the SMin of the next span up, or MaxHeight.
type Span struct {
	SMin int32     // The lower limit of the span. [Limit: < SMax]
	SMax int32     // The upper limit of the span. [Limit: <= SpanMaxHeight]
	Area AreaID    // The area id assigned to the span.
	Next SpanIndex // The next span higher up in the column, or NilSpan.
}

// Heightfield is a dynamic field of spans representing obstructed space.
// Columns are indexed x + z*Width.
type Heightfield struct {
	Width      int32       // The width of the heightfield. (Along the x-axis in cell units.)
	Depth      int32       // The depth of the heightfield. (Along the z-axis in cell units.)
	BMin       common.Vec3 // The minimum bounds in world space. [(x, y, z)]
	BMax       common.Vec3 // The maximum bounds in world space. [(x, y, z)]
	CellSize   float32     // The size of each cell on the xz-plane.
	CellHeight float32     // The height increment along the y-axis.

	columns  []SpanIndex // Head span per column (Width*Depth), NilSpan when empty.
	spans    []Span      // Span arena; chains thread through it by index.
	freelist SpanIndex   // Head of the free span list inside the arena.
}

// New creates an initialized heightfield with no spans.
func New(sizeX, sizeZ int32, bmin, bmax common.Vec3, cellSize, cellHeight float32) *Heightfield {
	assert(sizeX > 0 && sizeZ > 0, "heightfield grid size must be positive")
	assert(cellSize > 0 && cellHeight > 0, "heightfield cell dimensions must be positive")

	hf := &Heightfield{
		Width:      sizeX,
		Depth:      sizeZ,
		BMin:       bmin,
		BMax:       bmax,
		CellSize:   cellSize,
		CellHeight: cellHeight,
		columns:    make([]SpanIndex, sizeX*sizeZ),
		freelist:   NilSpan,
	}
	for i := range hf.columns {
		hf.columns[i] = NilSpan
	}
	return hf
}

// ColumnIndex returns the index of column (x, z) into the head slice.
func (hf *Heightfield) ColumnIndex(x, z int32) int32 {
	return x + z*hf.Width
}

// HeadAt returns the lowest span of column (x, z), or NilSpan.
func (hf *Heightfield) HeadAt(x, z int32) SpanIndex {
	return hf.columns[hf.ColumnIndex(x, z)]
}

// SpanAt resolves a span index into the arena. The returned pointer stays
// valid until the next AddSpan call.
func (hf *Heightfield) SpanAt(i SpanIndex) *Span {
	return &hf.spans[i]
}

// SpanCount returns the number of live spans across all columns.
func (hf *Heightfield) SpanCount() int {
	n := len(hf.spans)
	for i := hf.freelist; i != NilSpan; i = hf.spans[i].Next {
		n--
	}
	return n
}

// Reset drops every span so the heightfield can be repopulated for a new
// build without reallocating the arena.
func (hf *Heightfield) Reset() {
	for i := range hf.columns {
		hf.columns[i] = NilSpan
	}
	hf.spans = hf.spans[:0]
	hf.freelist = NilSpan
}

// allocSpan pops a span from the free list, growing the arena when empty.
func (hf *Heightfield) allocSpan() SpanIndex {
	if hf.freelist != NilSpan {
		i := hf.freelist
		hf.freelist = hf.spans[i].Next
		return i
	}
	hf.spans = append(hf.spans, Span{})
	return SpanIndex(len(hf.spans) - 1)
}

// freeSpan returns a span to the front of the free list for re-use.
func (hf *Heightfield) freeSpan(i SpanIndex) {
	hf.spans[i].Next = hf.freelist
	hf.freelist = i
}

// AddSpan inserts the span [smin, smax] into column (x, z), keeping the chain
// height-sorted and non-overlapping. Overlapping spans are merged into the new
// one; when the merged maximum is within flagMergeThreshold of an absorbed
// span's maximum, the higher area id wins.
func (hf *Heightfield) AddSpan(x, z, smin, smax int32, area AreaID, flagMergeThreshold int32) {
	assert(x >= 0 && z >= 0 && x < hf.Width && z < hf.Depth, "span column out of bounds")
	assert(smin <= smax, "span min must not exceed span max")

	newIdx := hf.allocSpan()
	hf.spans[newIdx] = Span{SMin: smin, SMax: smax, Area: area, Next: NilSpan}

	column := hf.ColumnIndex(x, z)
	previous := NilSpan
	current := hf.columns[column]

	// Insert the new span, merging it with any spans it overlaps.
	for current != NilSpan {
		cur := &hf.spans[current]
		newSpan := &hf.spans[newIdx]
		if cur.SMin > newSpan.SMax {
			// Current span is completely above the new span.
			break
		}
		if cur.SMax < newSpan.SMin {
			// Current span is completely below the new span. Keep going.
			previous = current
			current = cur.Next
		} else {
			// Overlap: absorb the current span into the new one.
			newSpan.SMin = common.Min(newSpan.SMin, cur.SMin)
			newSpan.SMax = common.Max(newSpan.SMax, cur.SMax)
			if common.Abs(newSpan.SMax-cur.SMax) <= flagMergeThreshold {
				// Higher area ids take priority when surfaces coincide.
				newSpan.Area = AreaID(common.Max(uint8(newSpan.Area), uint8(cur.Area)))
			}
			next := cur.Next
			hf.freeSpan(current)
			if previous != NilSpan {
				hf.spans[previous].Next = next
			} else {
				hf.columns[column] = next
			}
			current = next
		}
	}

	if previous != NilSpan {
		hf.spans[newIdx].Next = hf.spans[previous].Next
		hf.spans[previous].Next = newIdx
	} else {
		hf.spans[newIdx].Next = hf.columns[column]
		hf.columns[column] = newIdx
	}
}

// CalcBounds computes the axis-aligned bounding box of a flat vertex array.
func CalcBounds(verts []float32) (bmin, bmax common.Vec3) {
	if len(verts) < 3 {
		return
	}
	bmin = common.Vec3{verts[0], verts[1], verts[2]}
	bmax = bmin
	for i := 3; i+2 < len(verts); i += 3 {
		for c := 0; c < 3; c++ {
			bmin[c] = common.Min(bmin[c], verts[i+c])
			bmax[c] = common.Max(bmax[c], verts[i+c])
		}
	}
	return bmin, bmax
}

// CalcGridSize returns the grid dimensions covering the bounds at the given
// cell size.
func CalcGridSize(bmin, bmax common.Vec3, cellSize float32) (sizeX, sizeZ int32) {
	sizeX = int32((bmax[0]-bmin[0])/cellSize + 0.5)
	sizeZ = int32((bmax[2]-bmin[2])/cellSize + 0.5)
	return sizeX, sizeZ
}
