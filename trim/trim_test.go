package trim

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
	"github.com/rogelgarcia/bus-simulator-sub007/network"
)

func footprint(id string, from, to orb.Point, half float64) EdgeFootprint {
	e := &network.Edge{
		ID:   network.EdgeID(id),
		From: from,
		To:   to,
	}
	return EdgeFootprint{
		Edge: e,
		Box: geom.OBB{
			Center:     geom.Mid(from, to),
			Axis:       geom.Unit(geom.Sub(to, from)),
			HalfLength: geom.Dist(from, to) / 2,
			HalfRight:  half,
			HalfLeft:   half,
		},
	}
}

var testCfg = Config{Threshold: 0.25, LaneWidth: 4}

func TestDisjointEdgesKeptWhole(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	edges := []EdgeFootprint{
		footprint("a#0", geom.Pt(0, 0), geom.Pt(100, 0), 4),
		footprint("b#0", geom.Pt(0, 50), geom.Pt(100, 50), 4),
	}
	res := Run(edges, nil, testCfg)
	require.Empty(t, res.Overlaps)
	require.Empty(t, res.Dropped)
	require.Len(t, res.Kept, 2)
	for _, p := range res.Kept {
		require.Equal(t, 0.0, p.T0)
		require.Equal(t, 1.0, p.T1)
	}
	require.True(t, res.Clean)
}

func TestToleranceIgnoresTouchingNeighbors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// Interpenetration of 0.1 against a tolerance of 0.25*4 = 1.
	edges := []EdgeFootprint{
		footprint("a#0", geom.Pt(0, 0), geom.Pt(100, 0), 4),
		footprint("b#0", geom.Pt(0, 7.9), geom.Pt(100, 7.9), 4),
	}
	res := Run(edges, nil, testCfg)
	require.Empty(t, res.Overlaps)
	require.Len(t, res.Kept, 2)
	require.True(t, res.Clean)
}

func TestShorterEdgeWinsOverlap(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	long := footprint("main#0", geom.Pt(0, 0), geom.Pt(100, 0), 4)
	short := footprint("cross#0", geom.Pt(50, -10), geom.Pt(50, 10), 4)
	res := Run([]EdgeFootprint{long, short}, nil, testCfg)

	require.Len(t, res.Overlaps, 1)
	ov := res.Overlaps[0]
	require.Equal(t, short.Edge.ID, ov.Winner)
	require.Greater(t, ov.Penetration, testCfg.Tolerance())
	require.NotEmpty(t, ov.Region)
	require.InDelta(t, 50.0, ov.At[0], 1e-6, "overlap anchors at the region centroid")
	require.InDelta(t, 0.0, ov.At[1], 1e-6)

	// The crossing edge survives whole; the long edge loses its middle as a
	// removed interval, nothing is dropped outright.
	require.Empty(t, res.Dropped)
	require.Len(t, res.Removed, 1)
	require.Equal(t, long.Edge.ID, res.Removed[0].EdgeID)
	require.InDelta(t, 0.46, res.Removed[0].T0, 1e-9)
	require.InDelta(t, 0.54, res.Removed[0].T1, 1e-9)

	var longKept, shortKept []Piece
	for _, p := range res.Kept {
		if p.EdgeID == long.Edge.ID {
			longKept = append(longKept, p)
		} else {
			shortKept = append(shortKept, p)
		}
	}
	require.Len(t, shortKept, 1)
	require.Len(t, longKept, 2)
	require.InDelta(t, 0.46, longKept[0].T1, 1e-9)
	require.InDelta(t, 0.54, longKept[1].T0, 1e-9)
	require.True(t, res.Clean, "trimmed footprints must not overlap anymore")
}

func TestEqualLengthTiebreakIsEdgeID(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := footprint("a#0", geom.Pt(0, 0), geom.Pt(20, 0), 4)
	b := footprint("b#0", geom.Pt(10, -10), geom.Pt(10, 10), 4)
	res := Run([]EdgeFootprint{a, b}, nil, testCfg)
	require.Len(t, res.Overlaps, 1)
	require.Equal(t, a.Edge.ID, res.Overlaps[0].Winner)
}

func TestFullyCoveredEdgeDroppedWhole(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// The wide crossing is shorter, so it wins, and its footprint shadows the
	// loser's entire chord: the loser is dropped in one piece, not cut.
	long := footprint("main#0", geom.Pt(0, 0), geom.Pt(10, 0), 4)
	wide := footprint("x#0", geom.Pt(5, -2), geom.Pt(5, 2), 6)
	res := Run([]EdgeFootprint{long, wide}, nil, testCfg)

	require.Len(t, res.Overlaps, 1)
	require.Equal(t, wide.Edge.ID, res.Overlaps[0].Winner)
	require.Len(t, res.Dropped, 1)
	drop := res.Dropped[0]
	require.Equal(t, long.Edge.ID, drop.EdgeID)
	require.Equal(t, 0.0, drop.T0)
	require.Equal(t, 1.0, drop.T1)
	require.Empty(t, res.Removed)
	require.Len(t, res.Kept, 1)
	require.Equal(t, wide.Edge.ID, res.Kept[0].EdgeID)
}

func TestJunctionZoneRemovesCoveredSpan(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	edge := footprint("main#0", geom.Pt(0, 0), geom.Pt(100, 0), 4)
	zone := JunctionZone{
		NodeID: "n0:0",
		Ring:   orb.Ring{geom.Pt(40, -5), geom.Pt(60, -5), geom.Pt(60, 5), geom.Pt(40, 5)},
	}
	res := Run([]EdgeFootprint{edge}, []JunctionZone{zone}, testCfg)
	require.Len(t, res.Removed, 1)
	require.InDelta(t, 0.4, res.Removed[0].T0, 1e-9)
	require.InDelta(t, 0.6, res.Removed[0].T1, 1e-9)
	require.Len(t, res.Kept, 2)
	require.Empty(t, res.Dropped)
}

func TestRunOrderIndependent(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	edges := []EdgeFootprint{
		footprint("main#0", geom.Pt(0, 0), geom.Pt(100, 0), 4),
		footprint("cross#0", geom.Pt(50, -10), geom.Pt(50, 10), 4),
		footprint("far#0", geom.Pt(0, 80), geom.Pt(100, 80), 4),
	}
	reversed := []EdgeFootprint{edges[2], edges[1], edges[0]}
	first := Run(edges, nil, testCfg)
	second := Run(reversed, nil, testCfg)
	require.Equal(t, first, second)
}

func TestPieceEndpointsFollowParameters(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	edge := footprint("main#0", geom.Pt(0, 0), geom.Pt(100, 0), 4)
	zone := JunctionZone{
		NodeID: "n0:0",
		Ring:   orb.Ring{geom.Pt(40, -5), geom.Pt(60, -5), geom.Pt(60, 5), geom.Pt(40, 5)},
	}
	res := Run([]EdgeFootprint{edge}, []JunctionZone{zone}, testCfg)
	for _, p := range append(res.Kept, res.Removed...) {
		require.Equal(t, geom.Lerp(edge.Edge.From, edge.Edge.To, p.T0), p.From)
		require.Equal(t, geom.Lerp(edge.Edge.From, edge.Edge.To, p.T1), p.To)
	}
}
