package heightfield

import (
	"voxwalk/common"
)

// maxSlopeSampleSteps bounds how many column pairs a rugged-area probe walks
// along one axis.
const maxSlopeSampleSteps = 9

// Config groups the agent-derived parameters consumed by the filtering
// pipeline. Heights and climb are in voxel units.
type Config struct {
	// WalkableHeight is the minimum floor-to-ceiling clearance an agent
	// requires to occupy a span. [Limit: >= 0] [Units: vx]
	WalkableHeight int32
	// WalkableClimb is the maximum step an agent can ascend or descend in one
	// move. [Limit: >= 0] [Units: vx]
	WalkableClimb int32
	// SlopeThreshold is the average absolute per-hop height delta at which
	// terrain is reclassified as rugged. [Limit: > 0]
	SlopeThreshold float64
	// RuggedArea is the area id assigned to rugged terrain. Must be distinct
	// from NullArea and WalkableArea.
	RuggedArea AreaID
}

// ApplyFilters runs the fixed-order walkability pipeline over the
// heightfield. Later filters rely on the relabeling of earlier ones.
func ApplyFilters(ctx *Context, cfg Config, hf *Heightfield) {
	FilterLowHangingWalkableObstacles(ctx, cfg.WalkableClimb, hf)
	FilterLedgeSpans(ctx, cfg.WalkableHeight, cfg.WalkableClimb, hf)
	FilterWalkableLowHeightSpans(ctx, cfg.WalkableHeight, hf)
	FilterRuggedSpans(ctx, cfg.WalkableHeight, cfg.WalkableClimb, cfg.SlopeThreshold, cfg.RuggedArea, hf)
}

// FilterLowHangingWalkableObstacles relabels un-walkable spans that sit
// within walkableClimb above a walkable surface, turning short obstacles into
// steps. The carried state is read after each potential relabel, so a stack
// of short obstacles absorbs one step at a time while a single gap beyond the
// climb distance breaks the chain.
func FilterLowHangingWalkableObstacles(ctx *Context, walkableClimb int32, hf *Heightfield) {
	assert(ctx != nil, "nil context")
	assert(hf != nil && len(hf.columns) == int(hf.Width*hf.Depth), "inconsistent heightfield grid")
	ctx.StartTimer(TimerFilterLowObstacles)
	defer ctx.StopTimer(TimerFilterLowObstacles)

	xSize := hf.Width
	zSize := hf.Depth

	for z := int32(0); z < zSize; z++ {
		for x := int32(0); x < xSize; x++ {
			previousWalkable := false
			previousArea := NullArea
			previousFloor := int32(0)

			for si := hf.columns[x+z*xSize]; si != NilSpan; si = hf.spans[si].Next {
				span := &hf.spans[si]
				walkable := span.Area != NullArea
				// An un-walkable span just above a walkable surface becomes a
				// step when the rise is climbable.
				if !walkable && previousWalkable &&
					common.Abs(span.SMax-previousFloor) <= walkableClimb {
					span.Area = previousArea
				}
				previousWalkable = span.Area != NullArea
				previousArea = span.Area
				previousFloor = span.SMax
			}
		}
	}
}

// FilterLedgeSpans marks spans adjacent to ledges as un-walkable: spans whose
// drop to some traversable neighbor exceeds walkableClimb, or whose
// traversable neighbors span a height range wider than walkableClimb. A
// neighbor column outside the grid counts as a maximal drop.
func FilterLedgeSpans(ctx *Context, walkableHeight, walkableClimb int32, hf *Heightfield) {
	assert(ctx != nil, "nil context")
	assert(hf != nil && len(hf.columns) == int(hf.Width*hf.Depth), "inconsistent heightfield grid")
	ctx.StartTimer(TimerFilterBorder)
	defer ctx.StopTimer(TimerFilterBorder)

	xSize := hf.Width
	zSize := hf.Depth

	for z := int32(0); z < zSize; z++ {
		for x := int32(0); x < xSize; x++ {
			for si := hf.columns[x+z*xSize]; si != NilSpan; si = hf.spans[si].Next {
				span := &hf.spans[si]
				// Skip non-walkable spans.
				if span.Area == NullArea {
					continue
				}

				floor := span.SMax
				ceiling := int32(MaxHeight)
				if span.Next != NilSpan {
					ceiling = hf.spans[span.Next].SMin
				}

				// The difference between this floor and the lowest neighbor
				// floor with enough headroom between them, ignoring slope.
				lowestNeighborFloorDifference := int32(MaxHeight)

				// Min and max floor among neighbors within climbing reach.
				lowestTraversableNeighborFloor := floor
				highestTraversableNeighborFloor := floor

				for direction := int32(0); direction < 4; direction++ {
					neighborX := x + common.GetDirOffsetX(direction)
					neighborZ := z + common.GetDirOffsetZ(direction)

					// A neighbor outside the grid is a ledge at the world
					// boundary; the span's fate is decided.
					if neighborX < 0 || neighborZ < 0 || neighborX >= xSize || neighborZ >= zSize {
						lowestNeighborFloorDifference = -walkableClimb - 1
						break
					}

					ni := hf.columns[neighborX+neighborZ*xSize]
					neighborCeiling := int32(MaxHeight)
					if ni != NilSpan {
						neighborCeiling = hf.spans[ni].SMin
					}

					// An agent-sized gap between this floor and the underside
					// of the neighbor's first span is a drop into open space.
					if common.Min(ceiling, neighborCeiling)-floor >= walkableHeight {
						lowestNeighborFloorDifference = -walkableClimb - 1
						break
					}

					for ; ni != NilSpan; ni = hf.spans[ni].Next {
						neighborSpan := &hf.spans[ni]
						neighborFloor := neighborSpan.SMax
						neighborCeiling = int32(MaxHeight)
						if neighborSpan.Next != NilSpan {
							neighborCeiling = hf.spans[neighborSpan.Next].SMin
						}

						// Not enough shared headroom to traverse between the
						// spans.
						if common.Min(ceiling, neighborCeiling)-common.Max(floor, neighborFloor) < walkableHeight {
							continue
						}

						neighborFloorDifference := neighborFloor - floor
						lowestNeighborFloorDifference = common.Min(lowestNeighborFloorDifference, neighborFloorDifference)

						if common.Abs(neighborFloorDifference) <= walkableClimb {
							lowestTraversableNeighborFloor = common.Min(lowestTraversableNeighborFloor, neighborFloor)
							highestTraversableNeighborFloor = common.Max(highestTraversableNeighborFloor, neighborFloor)
						} else if neighborFloorDifference < -walkableClimb {
							// Already known to be a ledge span, stop scanning
							// this column.
							break
						}
					}
				}

				if lowestNeighborFloorDifference < -walkableClimb {
					// A drop deeper than the agent can climb down.
					span.Area = NullArea
				} else if highestTraversableNeighborFloor-lowestTraversableNeighborFloor > walkableClimb {
					// Every single step was climbable but the combined slope
					// across the neighbors is too steep.
					span.Area = NullArea
				}
			}
		}
	}
}

// FilterWalkableLowHeightSpans marks spans un-walkable when the clearance to
// the span above is too small for an agent to stand.
func FilterWalkableLowHeightSpans(ctx *Context, walkableHeight int32, hf *Heightfield) {
	assert(ctx != nil, "nil context")
	assert(hf != nil && len(hf.columns) == int(hf.Width*hf.Depth), "inconsistent heightfield grid")
	ctx.StartTimer(TimerFilterWalkable)
	defer ctx.StopTimer(TimerFilterWalkable)

	xSize := hf.Width
	zSize := hf.Depth

	for z := int32(0); z < zSize; z++ {
		for x := int32(0); x < xSize; x++ {
			for si := hf.columns[x+z*xSize]; si != NilSpan; si = hf.spans[si].Next {
				span := &hf.spans[si]
				floor := span.SMax
				ceiling := int32(MaxHeight)
				if span.Next != NilSpan {
					ceiling = hf.spans[span.Next].SMin
				}
				if ceiling-floor < walkableHeight {
					span.Area = NullArea
				}
			}
		}
	}
}

// FilterRuggedSpans reclassifies terrain that passes the per-step filters but
// accumulates too much unevenness over consecutive steps. Each walkable span
// is probed along the x axis and then, if still unclassified, the z axis:
// connectivity chains of climbable steps are grown for up to
// maxSlopeSampleSteps hops, and every chain whose average absolute per-hop
// floor delta reaches slopeThreshold is relabeled to ruggedArea. ruggedArea
// must differ from NullArea and WalkableArea.
func FilterRuggedSpans(ctx *Context, walkableHeight, walkableClimb int32, slopeThreshold float64, ruggedArea AreaID, hf *Heightfield) {
	assert(ctx != nil, "nil context")
	assert(hf != nil && len(hf.columns) == int(hf.Width*hf.Depth), "inconsistent heightfield grid")
	assert(ruggedArea != NullArea && ruggedArea != WalkableArea, "rugged area id must be distinct")
	assert(walkableHeight >= 0 && walkableClimb >= 0, "negative agent dimensions")
	ctx.StartTimer(TimerFilterRugged)
	defer ctx.StopTimer(TimerFilterRugged)

	xSize := hf.Width
	zSize := hf.Depth

	for z := int32(0); z < zSize; z++ {
		for x := int32(0); x < xSize; x++ {
			for si := hf.columns[x+z*xSize]; si != NilSpan; si = hf.spans[si].Next {
				// Skip non-walkable spans.
				if hf.spans[si].Area == NullArea {
					continue
				}

				chains := hf.seedChains(si)
				hf.advanceChains(chains, x, z, false, walkableClimb)
				hf.markRuggedChains(chains, slopeThreshold, ruggedArea)

				// The z probe only runs when the x probe left the span alone.
				if hf.spans[si].Area == ruggedArea {
					continue
				}
				chains = hf.seedChains(si)
				hf.advanceChains(chains, x, z, true, walkableClimb)
				hf.markRuggedChains(chains, slopeThreshold, ruggedArea)
			}
		}
	}
}

// seedChains starts one connectivity chain per span from seed upward in its
// column; each chain begins holding only its seed.
func (hf *Heightfield) seedChains(seed SpanIndex) [][]SpanIndex {
	var chains [][]SpanIndex
	for si := seed; si != NilSpan; si = hf.spans[si].Next {
		chains = append(chains, []SpanIndex{si})
	}
	return chains
}

// advanceChains grows the chains by walking a pair of adjacent sample columns
// away from (x, z) along one axis, for at most maxSlopeSampleSteps hops. At
// each hop the lowest neighbor span within walkableClimb of a current span
// extends the first chain ending at that span; one extension per chain per
// hop. Advancement stops at the grid edge.
func (hf *Heightfield) advanceChains(chains [][]SpanIndex, x, z int32, alongZ bool, walkableClimb int32) {
	xSize := hf.Width
	zSize := hf.Depth

	currentX, currentZ := x, z
	neighborX, neighborZ := x, z
	if alongZ {
		neighborZ++
	} else {
		neighborX++
	}

	for step := 0; step < maxSlopeSampleSteps; step++ {
		if currentX < 0 || currentX >= xSize || currentZ < 0 || currentZ >= zSize ||
			neighborX < 0 || neighborX >= xSize || neighborZ < 0 || neighborZ >= zSize {
			break
		}

		for ci := hf.columns[currentX+currentZ*xSize]; ci != NilSpan; ci = hf.spans[ci].Next {
			if hf.spans[ci].Area == NullArea {
				// An un-walkable span ends every path through this column.
				break
			}
			currentFloor := hf.spans[ci].SMax

			for ni := hf.columns[neighborX+neighborZ*xSize]; ni != NilSpan; ni = hf.spans[ni].Next {
				if hf.spans[ni].Area == NullArea {
					continue
				}
				if common.Abs(currentFloor-hf.spans[ni].SMax) > walkableClimb {
					continue
				}
				// Branching or merging terrain can bring several chains to
				// the same span; the first chain ending here takes this
				// neighbor, later neighbors may extend the rest.
				for i := range chains {
					if chain := chains[i]; chain[len(chain)-1] == ci {
						chains[i] = append(chain, ni)
						break
					}
				}
			}
		}

		if alongZ {
			currentZ++
			neighborZ++
		} else {
			currentX++
			neighborX++
		}
	}
}

// markRuggedChains relabels every chain seeded from a plainly walkable span
// whose average absolute per-hop floor delta reaches slopeThreshold. Chains
// seeded from already-custom-classified spans are left alone, which keeps the
// filter idempotent.
func (hf *Heightfield) markRuggedChains(chains [][]SpanIndex, slopeThreshold float64, ruggedArea AreaID) {
	for _, chain := range chains {
		if hf.spans[chain[0]].Area != WalkableArea {
			continue
		}
		hops := len(chain) - 1
		if hops <= 0 {
			continue
		}
		totalDiff := int32(0)
		for i := 1; i < len(chain); i++ {
			totalDiff += common.Abs(hf.spans[chain[i-1]].SMax - hf.spans[chain[i]].SMax)
		}
		if avgSlope := float64(totalDiff) / float64(hops); avgSlope >= slopeThreshold {
			for _, si := range chain {
				hf.spans[si].Area = ruggedArea
			}
		}
	}
}
