/*
Package network builds the road graph: authored centerlines are split into
edge pieces at crossings, T-junctions, and interior waypoints, yielding a
node/edge graph with stable, order-independent identities. Crossing another
centerline only creates a graph node here; whether a node grows a rendered
junction polygon is decided downstream.
*/
package network

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

// tracer writes to trace with key 'network'
func tracer() tracing.Trace {
	return tracing.Select("network")
}

var (
	// ErrRoadTooShort indicates a road definition with fewer than 2 waypoints.
	ErrRoadTooShort = errors.New("road needs at least 2 waypoints")
	// ErrDuplicateRoadID indicates two road definitions sharing an id.
	ErrDuplicateRoadID = errors.New("duplicate road id")
)

// DefaultQuantum is the node-id grid cell size used when the caller does not
// supply one. Intersection points closer than this snap to the same node.
const DefaultQuantum = 1.0 / 256

// RoadDef is an authored centerline: either a straight two-point segment or
// a waypoint polyline. Corner-fillet sampling does not belong here; the graph
// topology depends only on the authored waypoints.
type RoadDef struct {
	ID        string         `json:"id"`
	Waypoints orb.LineString `json:"waypoints"`
}

// NodeID identifies a graph node. It is derived from the node position
// quantized to the id grid, so identical graphs produce identical ids
// regardless of build order.
type NodeID string

// EdgeID identifies an edge piece, derived from the owning road id and the
// piece's ordinal position along the road.
type EdgeID string

// Node is a point where two or more edge pieces meet.
type Node struct {
	ID    NodeID    `json:"id"`
	Pos   orb.Point `json:"pos"`
	Edges []EdgeID  `json:"edges"` // sorted, for deterministic iteration
}

// Edge is a maximal straight sub-segment of an authored centerline between
// two nodes, or between a node and a free endpoint (empty NodeID).
type Edge struct {
	ID      EdgeID    `json:"id"`
	RoadID  string    `json:"roadId"`
	Ordinal int       `json:"ordinal"`
	A       NodeID    `json:"a,omitempty"`
	B       NodeID    `json:"b,omitempty"`
	From    orb.Point `json:"from"`
	To      orb.Point `json:"to"`
}

// Length returns the edge piece length.
func (e *Edge) Length() float64 {
	return geom.Dist(e.From, e.To)
}

// Dir returns the unit direction from A-end to B-end.
func (e *Edge) Dir() orb.Point {
	return geom.Unit(geom.Sub(e.To, e.From))
}

// Network is the derived node/edge graph.
type Network struct {
	Nodes []*Node // sorted by id
	Edges []*Edge // road order, then ordinal

	quantum   float64
	nodeIndex map[NodeID]*Node
	edgeIndex map[EdgeID]*Edge
}

// Node returns the node with the given id, or nil.
func (n *Network) Node(id NodeID) *Node {
	return n.nodeIndex[id]
}

// Edge returns the edge with the given id, or nil.
func (n *Network) Edge(id EdgeID) *Edge {
	return n.edgeIndex[id]
}

// NodeAt returns the node occupying the id-grid cell of p, or nil.
func (n *Network) NodeAt(p orb.Point) *Node {
	return n.nodeIndex[quantizeID(p, n.quantum)]
}

// IncidentEdges returns the edges meeting at a node, in id order.
func (n *Network) IncidentEdges(id NodeID) []*Edge {
	node := n.nodeIndex[id]
	if node == nil {
		return nil
	}
	out := make([]*Edge, 0, len(node.Edges))
	for _, eid := range node.Edges {
		out = append(out, n.edgeIndex[eid])
	}
	return out
}

func quantizeID(p orb.Point, quantum float64) NodeID {
	qx := int64(math.Round(p[0] / quantum))
	qz := int64(math.Round(p[1] / quantum))
	return NodeID(fmt.Sprintf("n%d:%d", qx, qz))
}

func snap(p orb.Point, quantum float64) orb.Point {
	return orb.Point{
		math.Round(p[0]/quantum) * quantum,
		math.Round(p[1]/quantum) * quantum,
	}
}

// Build derives the graph from a set of road definitions. quantum is the
// node-id grid cell size; values <= 0 select DefaultQuantum. Building the
// same road set twice yields identical node ids, edge ids, and ordering.
func Build(roads []RoadDef, quantum float64) (*Network, error) {
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	seen := make(map[string]bool, len(roads))
	for _, r := range roads {
		if len(r.Waypoints) < 2 {
			return nil, fmt.Errorf("%w: road %q has %d waypoints", ErrRoadTooShort, r.ID, len(r.Waypoints))
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoadID, r.ID)
		}
		seen[r.ID] = true
	}

	b := &builder{
		quantum: quantum,
		net: &Network{
			quantum:   quantum,
			nodeIndex: make(map[NodeID]*Node),
			edgeIndex: make(map[EdgeID]*Edge),
		},
	}
	b.collectChords(roads)
	b.markWaypointJoints()
	b.detectCrossings()
	b.snapEndpoints()
	b.mergeCoincidentEndpoints()
	b.split()
	b.finish()
	tracer().Debugf("network: %d roads -> %d nodes, %d edges",
		len(roads), len(b.net.Nodes), len(b.net.Edges))
	return b.net, nil
}

func (b *builder) finish() {
	net := b.net
	for _, node := range net.nodeIndex {
		sort.Slice(node.Edges, func(i, j int) bool { return node.Edges[i] < node.Edges[j] })
		net.Nodes = append(net.Nodes, node)
	}
	sort.Slice(net.Nodes, func(i, j int) bool { return net.Nodes[i].ID < net.Nodes[j].ID })
}
