package heightfield

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxwalk/common"
)

func newTestField(t *testing.T, sizeX, sizeZ int32) *Heightfield {
	t.Helper()
	bmin := common.Vec3{0, 0, 0}
	bmax := common.Vec3{float32(sizeX), 10, float32(sizeZ)}
	return New(sizeX, sizeZ, bmin, bmax, 1.0, 1.0)
}

// nthSpan returns the n-th span from the bottom of column (x, z).
func nthSpan(t *testing.T, hf *Heightfield, x, z int32, n int) *Span {
	t.Helper()
	si := hf.HeadAt(x, z)
	for ; n > 0; n-- {
		require.NotEqual(t, NilSpan, si, "column (%d,%d) has no span %d", x, z, n)
		si = hf.SpanAt(si).Next
	}
	require.NotEqual(t, NilSpan, si, "column (%d,%d) is empty", x, z)
	return hf.SpanAt(si)
}

func TestNew(t *testing.T) {
	hf := newTestField(t, 4, 3)
	require.Equal(t, int32(4), hf.Width)
	require.Equal(t, int32(3), hf.Depth)
	require.Equal(t, 0, hf.SpanCount())
	for z := int32(0); z < 3; z++ {
		for x := int32(0); x < 4; x++ {
			require.Equal(t, NilSpan, hf.HeadAt(x, z))
		}
	}
}

func TestAddSpanEmptyColumn(t *testing.T) {
	hf := newTestField(t, 2, 2)
	hf.AddSpan(0, 0, 0, 1, 42, 1)

	span := nthSpan(t, hf, 0, 0, 0)
	require.Equal(t, int32(0), span.SMin)
	require.Equal(t, int32(1), span.SMax)
	require.Equal(t, AreaID(42), span.Area)
	require.Equal(t, NilSpan, span.Next)
	require.Equal(t, 1, hf.SpanCount())
}

func TestAddSpanMergesOverlap(t *testing.T) {
	hf := newTestField(t, 2, 2)
	hf.AddSpan(0, 0, 0, 1, 42, 1)
	hf.AddSpan(0, 0, 0, 1, 42, 1)
	require.Equal(t, 1, hf.SpanCount())

	// Touching span above extends the existing one.
	hf.AddSpan(0, 0, 1, 2, 42, 1)
	require.Equal(t, 1, hf.SpanCount())
	span := nthSpan(t, hf, 0, 0, 0)
	require.Equal(t, int32(0), span.SMin)
	require.Equal(t, int32(2), span.SMax)
	require.Equal(t, AreaID(42), span.Area)
}

func TestAddSpanMergesAboveAndBelow(t *testing.T) {
	hf := newTestField(t, 2, 2)
	hf.AddSpan(0, 0, 0, 1, 10, 1)
	hf.AddSpan(0, 0, 2, 3, 20, 1)
	require.Equal(t, 2, hf.SpanCount())

	// Bridges both existing spans into one.
	hf.AddSpan(0, 0, 1, 2, 30, 1)
	require.Equal(t, 1, hf.SpanCount())
	span := nthSpan(t, hf, 0, 0, 0)
	require.Equal(t, int32(0), span.SMin)
	require.Equal(t, int32(3), span.SMax)
}

func TestAddSpanKeepsColumnSorted(t *testing.T) {
	hf := newTestField(t, 2, 2)
	hf.AddSpan(1, 1, 0, 1, 1, 0)
	hf.AddSpan(1, 1, 6, 7, 3, 0)
	hf.AddSpan(1, 1, 3, 4, 2, 0)
	require.Equal(t, 3, hf.SpanCount())

	var floors []int32
	for si := hf.HeadAt(1, 1); si != NilSpan; si = hf.SpanAt(si).Next {
		floors = append(floors, hf.SpanAt(si).SMax)
	}
	require.Equal(t, []int32{1, 4, 7}, floors)
}

func TestAddSpanAreaMergePriority(t *testing.T) {
	hf := newTestField(t, 2, 2)

	// Same surface height within the merge threshold: higher area id wins.
	hf.AddSpan(0, 0, 0, 2, 1, 1)
	hf.AddSpan(0, 0, 0, 2, 2, 1)
	require.Equal(t, AreaID(2), nthSpan(t, hf, 0, 0, 0).Area)

	// Surfaces further apart than the threshold: the new area stands.
	hf.AddSpan(1, 0, 0, 2, WalkableArea, 1)
	hf.AddSpan(1, 0, 0, 6, 5, 1)
	require.Equal(t, AreaID(5), nthSpan(t, hf, 1, 0, 0).Area)
}

func TestReset(t *testing.T) {
	hf := newTestField(t, 2, 2)
	hf.AddSpan(0, 0, 0, 1, WalkableArea, 1)
	hf.AddSpan(1, 1, 0, 1, WalkableArea, 1)
	require.Equal(t, 2, hf.SpanCount())

	hf.Reset()
	require.Equal(t, 0, hf.SpanCount())
	require.Equal(t, NilSpan, hf.HeadAt(0, 0))
	require.Equal(t, NilSpan, hf.HeadAt(1, 1))

	// The field is usable again after a reset.
	hf.AddSpan(0, 1, 2, 3, WalkableArea, 1)
	span := nthSpan(t, hf, 0, 1, 0)
	require.Equal(t, int32(3), span.SMax)
}

func TestCalcBounds(t *testing.T) {
	verts := []float32{
		1, 2, 3,
		0, 2, 6,
	}
	bmin, bmax := CalcBounds(verts)
	require.Equal(t, common.Vec3{0, 2, 3}, bmin)
	require.Equal(t, common.Vec3{1, 2, 6}, bmax)
}

func TestCalcGridSize(t *testing.T) {
	verts := []float32{
		1, 2, 3,
		0, 2, 6,
	}
	bmin, bmax := CalcBounds(verts)
	sizeX, sizeZ := CalcGridSize(bmin, bmax, 1.5)
	require.Equal(t, int32(1), sizeX)
	require.Equal(t, int32(2), sizeZ)
}
