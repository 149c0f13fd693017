package network

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

func line(pts ...orb.Point) orb.LineString {
	return orb.LineString(pts)
}

func TestBuildRejectsShortRoad(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := Build([]RoadDef{{ID: "r", Waypoints: line(geom.Pt(0, 0))}}, 0)
	if !errors.Is(err, ErrRoadTooShort) {
		t.Fatalf("expected ErrRoadTooShort, got %v", err)
	}
}

func TestBuildRejectsDuplicateRoadID(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	roads := []RoadDef{
		{ID: "r", Waypoints: line(geom.Pt(0, 0), geom.Pt(1, 0))},
		{ID: "r", Waypoints: line(geom.Pt(0, 1), geom.Pt(1, 1))},
	}
	_, err := Build(roads, 0)
	if !errors.Is(err, ErrDuplicateRoadID) {
		t.Fatalf("expected ErrDuplicateRoadID, got %v", err)
	}
}

func TestWaypointCountYieldsPieceCount(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// N waypoints, no crossings: exactly N-1 edge pieces.
	road := RoadDef{ID: "r", Waypoints: line(
		geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(20, 10), geom.Pt(20, 20),
	)}
	net, err := Build([]RoadDef{road}, 0)
	require.NoError(t, err)
	require.Len(t, net.Edges, 4)
	for i, e := range net.Edges {
		require.Equal(t, EdgeID(edgeIDFor("r", i)), e.ID)
	}
	// Interior waypoints are 2-edge nodes; road ends stay free.
	require.Len(t, net.Nodes, 3)
	for _, n := range net.Nodes {
		require.Len(t, n.Edges, 2)
	}
}

func TestPerpendicularCrossing(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// Two perpendicular roads crossing mid-tile on a 12x12 grid: one node,
	// four incident pieces, four edges total.
	roads := []RoadDef{
		{ID: "ew", Waypoints: line(geom.Pt(0, 66), geom.Pt(144, 66))},
		{ID: "ns", Waypoints: line(geom.Pt(66, 0), geom.Pt(66, 144))},
	}
	net, err := Build(roads, 0)
	require.NoError(t, err)
	require.Len(t, net.Nodes, 1)
	require.Len(t, net.Edges, 4)
	node := net.Nodes[0]
	require.Len(t, node.Edges, 4)
	if !geom.Equal(node.Pos, geom.Pt(66, 66)) {
		t.Errorf("crossing node at %v, want (66,66)", node.Pos)
	}
	for _, e := range net.IncidentEdges(node.ID) {
		if e.A != node.ID && e.B != node.ID {
			t.Errorf("edge %s not incident to crossing node", e.ID)
		}
	}
}

func TestTJunction(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	roads := []RoadDef{
		{ID: "main", Waypoints: line(geom.Pt(0, 0), geom.Pt(20, 0))},
		{ID: "stub", Waypoints: line(geom.Pt(8, 12), geom.Pt(8, 0))},
	}
	net, err := Build(roads, 0)
	require.NoError(t, err)
	require.Len(t, net.Nodes, 1)
	node := net.Nodes[0]
	require.Len(t, node.Edges, 3)
	require.Len(t, net.Edges, 3)
	if !geom.Equal(node.Pos, geom.Pt(8, 0)) {
		t.Errorf("T node at %v, want (8,0)", node.Pos)
	}
}

func TestEndpointSnapsToNearbyChord(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// The stub stops a hair short of the main centerline, so no segment
	// intersection exists. Its endpoint still joins the graph.
	roads := []RoadDef{
		{ID: "main", Waypoints: line(geom.Pt(0, 0), geom.Pt(20, 0))},
		{ID: "stub", Waypoints: line(geom.Pt(8, 12), geom.Pt(8, 0.001))},
	}
	net, err := Build(roads, 0)
	require.NoError(t, err)
	node := net.NodeAt(geom.Pt(8, 0))
	require.NotNil(t, node, "stub endpoint must snap onto the main chord")
	require.Len(t, node.Edges, 3)
	stub := net.Edge(EdgeID(edgeIDFor("stub", 0)))
	require.Equal(t, node.ID, stub.B)
	require.Equal(t, node.Pos, stub.To)
}

func TestSelfCrossingLoop(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// A road looping back across its own earlier segment.
	road := RoadDef{ID: "loop", Waypoints: line(
		geom.Pt(0, 0), geom.Pt(20, 0), geom.Pt(20, 10), geom.Pt(10, 10), geom.Pt(10, -10),
	)}
	net, err := Build([]RoadDef{road}, 0)
	require.NoError(t, err)
	cross := net.NodeAt(geom.Pt(10, 0))
	require.NotNil(t, cross, "self-crossing must become a node")
	require.Len(t, cross.Edges, 4)
	for _, eid := range cross.Edges {
		require.Equal(t, "loop", net.Edge(eid).RoadID)
	}
}

func TestEndpointToEndpointJoin(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// Collinear continuation: crossing test is blind to it, the endpoint
	// cell merge is not.
	roads := []RoadDef{
		{ID: "west", Waypoints: line(geom.Pt(0, 0), geom.Pt(10, 0))},
		{ID: "east", Waypoints: line(geom.Pt(10, 0), geom.Pt(20, 0))},
	}
	net, err := Build(roads, 0)
	require.NoError(t, err)
	node := net.NodeAt(geom.Pt(10, 0))
	require.NotNil(t, node)
	require.Len(t, node.Edges, 2)
}

func TestDeterministicRebuild(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	roads := []RoadDef{
		{ID: "a", Waypoints: line(geom.Pt(0, 5), geom.Pt(30, 5))},
		{ID: "b", Waypoints: line(geom.Pt(10, -5), geom.Pt(10, 15))},
		{ID: "c", Waypoints: line(geom.Pt(20, -5), geom.Pt(20, 15), geom.Pt(35, 15))},
	}
	first, err := Build(roads, 0)
	require.NoError(t, err)
	second, err := Build(roads, 0)
	require.NoError(t, err)
	require.Equal(t, first.Nodes, second.Nodes)
	require.Equal(t, first.Edges, second.Edges)
}

func TestNodeIDsIgnoreFloatNoise(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := quantizeID(geom.Pt(10, 10), DefaultQuantum)
	b := quantizeID(geom.Pt(10+1e-9, 10-1e-9), DefaultQuantum)
	require.Equal(t, a, b)
}

func TestCrossingSplitsOrdinalsAlongRoad(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	roads := []RoadDef{
		{ID: "long", Waypoints: line(geom.Pt(0, 0), geom.Pt(30, 0))},
		{ID: "c1", Waypoints: line(geom.Pt(10, -5), geom.Pt(10, 5))},
		{ID: "c2", Waypoints: line(geom.Pt(20, -5), geom.Pt(20, 5))},
	}
	net, err := Build(roads, 0)
	require.NoError(t, err)
	var longPieces []*Edge
	for _, e := range net.Edges {
		if e.RoadID == "long" {
			longPieces = append(longPieces, e)
		}
	}
	require.Len(t, longPieces, 3)
	prev := -1.0
	for i, e := range longPieces {
		require.Equal(t, i, e.Ordinal)
		require.Greater(t, e.From[0], prev, "pieces must advance along the road")
		prev = e.From[0]
	}
}
