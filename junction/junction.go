/*
Package junction synthesizes the boundary polygons drawn where road edges
meet: corner joins at 2-edge nodes and declared N-way intersections. Each
incident edge's cross-section is recessed from the node center by a cutback
large enough that the boundary stays clear of the corner fillets, and the
resulting ring is simple and wound clockwise.
*/
package junction

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
	"github.com/rogelgarcia/bus-simulator-sub007/lanes"
	"github.com/rogelgarcia/bus-simulator-sub007/network"
)

// tracer writes to trace with key 'network'
func tracer() tracing.Trace {
	return tracing.Select("network")
}

var (
	// ErrTooFewEdges indicates a node with fewer than 2 incident edges.
	ErrTooFewEdges = errors.New("junction needs at least 2 incident edges")
	// ErrDegenerateEdge indicates an incident edge with no usable direction.
	ErrDegenerateEdge = errors.New("junction has degenerate incident edge")
)

// Arc describes a circular corner fillet tangent to two road edge lines.
type Arc struct {
	Center   orb.Point `json:"center"`
	Radius   float64   `json:"radius"`
	CCW      bool      `json:"ccw"`
	Tangent0 orb.Point `json:"tangent0"`
	Tangent1 orb.Point `json:"tangent1"`
}

// Connector pairs two same-road edges passing through a junction (a road
// crossing its own earlier segment). Merging a connector is edit-time
// bookkeeping; it never changes the derived geometry.
type Connector struct {
	ID             string         `json:"id"`
	RoadID         string         `json:"roadId"`
	EdgeIn         network.EdgeID `json:"edgeIn"`
	EdgeOut        network.EdgeID `json:"edgeOut"`
	MergedIntoRoad bool           `json:"mergedIntoRoad"`
}

// EdgeCutback records how far one incident edge's cross-section is recessed
// from the node center.
type EdgeCutback struct {
	EdgeID   network.EdgeID `json:"edgeId"`
	Distance float64        `json:"distance"`
}

// Junction is the synthesized boundary polygon at a node.
type Junction struct {
	NodeID     network.NodeID `json:"nodeId"`
	Points     orb.Ring       `json:"points"` // clockwise, simple; empty when no simple boundary exists
	Cutbacks   []EdgeCutback  `json:"cutbacks"`
	Fillets    []Arc          `json:"fillets,omitempty"`
	Connectors []Connector    `json:"connectors,omitempty"`
}

// Incident couples an edge meeting the node with its lane configuration.
type Incident struct {
	Edge *network.Edge
	Cfg  lanes.Config
}

// Params tunes the synthesis.
type Params struct {
	FilletRadius float64 // corner-join fillet radius; <= 0 disables fillets
	ChordLength  float64 // arc sample spacing
	MinCutback   float64 // lower bound for every cutback; <= 0 selects 0.5
}

// arm is an incident edge oriented away from the node: dir points outward,
// right/left are the lateral extents as seen walking away.
type arm struct {
	edge    *network.Edge
	dir     orb.Point
	right   float64
	left    float64
	heading s1.Angle
	cutback float64
}

// Build synthesizes the junction polygon for a node. 2-edge nodes get corner
// joins with fillet arcs tangent to the adjoining road edge lines; nodes with
// 3 or more edges (declared junctions) connect consecutive recessed
// cross-sections directly in angular order.
func Build(node *network.Node, incident []Incident, p Params) (*Junction, error) {
	if len(incident) < 2 {
		return nil, fmt.Errorf("%w: node %s has %d", ErrTooFewEdges, node.ID, len(incident))
	}
	if p.MinCutback <= 0 {
		p.MinCutback = 0.5
	}
	if p.ChordLength <= 0 {
		p.ChordLength = 1
	}

	arms := make([]*arm, 0, len(incident))
	for _, inc := range incident {
		a, err := orient(node, inc)
		if err != nil {
			return nil, err
		}
		arms = append(arms, a)
	}
	// Ascending heading gives a counterclockwise walk around the node; the
	// assembled ring is reversed into clockwise at the end.
	sort.Slice(arms, func(i, j int) bool {
		if arms[i].heading != arms[j].heading {
			return arms[i].heading < arms[j].heading
		}
		return arms[i].edge.ID < arms[j].edge.ID
	})

	computeCutbacks(node, arms, p)

	j := &Junction{NodeID: node.ID}
	if len(arms) == 2 {
		buildCornerJoin(node, arms, p, j)
	} else {
		buildNWay(node, arms, j)
	}
	for _, a := range arms {
		j.Cutbacks = append(j.Cutbacks, EdgeCutback{EdgeID: a.edge.ID, Distance: a.cutback})
	}
	j.Connectors = findConnectors(node, arms)
	orientRing(j)
	if !geom.IsSimple(j.Points) {
		// Conservative fallback for extreme angular arrangements: drop the
		// fillets and connect the recessed cross-sections directly.
		tracer().Infof("junction %s: filleted ring not simple, falling back to direct joins", node.ID)
		j.Fillets = nil
		j.Points = nil
		buildNWay(node, arms, j)
		orientRing(j)
	}
	if !geom.IsSimple(j.Points) {
		// Near-reversal arms saturate their cutbacks at the full edge length
		// and the recessed cross-sections interleave. No boundary polygon is
		// emitted then: every ring this package hands out must be simple.
		tracer().Infof("junction %s: cross-sections interleave, emitting no polygon", node.ID)
		j.Points = nil
		j.Fillets = nil
	}
	return j, nil
}

// orientRing rewinds the counterclockwise assembly walk into the clockwise
// convention. Fillet descriptors track the final traversal, so reversing the
// ring also reverses each arc.
func orientRing(j *Junction) {
	if len(j.Points) < 3 || geom.IsClockwise(j.Points) {
		return
	}
	j.Points = geom.EnsureClockwise(j.Points)
	for i := range j.Fillets {
		f := &j.Fillets[i]
		f.Tangent0, f.Tangent1 = f.Tangent1, f.Tangent0
		f.CCW = !f.CCW
	}
}

// orient flips an edge so its direction points away from the node and maps
// the lane half-widths onto that orientation.
func orient(node *network.Node, inc Incident) (*arm, error) {
	e := inc.Edge
	cfg := inc.Cfg.Normalized()
	a := &arm{edge: e}
	switch node.ID {
	case e.A:
		a.dir = geom.Unit(geom.Sub(e.To, e.From))
		a.right = cfg.HalfWidthRight()
		a.left = halfLeftOrMargin(cfg)
	case e.B:
		a.dir = geom.Unit(geom.Sub(e.From, e.To))
		a.right = halfLeftOrMargin(cfg)
		a.left = cfg.HalfWidthRight()
	default:
		return nil, fmt.Errorf("%w: edge %s not incident to node %s", ErrDegenerateEdge, e.ID, node.ID)
	}
	if geom.Is0(geom.Length(a.dir)) {
		return nil, fmt.Errorf("%w: edge %s", ErrDegenerateEdge, e.ID)
	}
	a.heading = geom.Heading(a.dir)
	return a, nil
}

// halfLeftOrMargin keeps one-way roads from collapsing to a zero-width side
// inside a junction polygon: the shoulder still needs covering.
func halfLeftOrMargin(cfg lanes.Config) float64 {
	if w := cfg.HalfWidthLeft(); w > 0 {
		return w
	}
	return cfg.Margin()
}

// computeCutbacks recesses each arm far enough that its cross-section clears
// every side-line intersection with its neighbors, plus the fillet tangent
// allowance on corner joins.
func computeCutbacks(node *network.Node, arms []*arm, p Params) {
	for i, a := range arms {
		needed := p.MinCutback
		for k, b := range arms {
			if k == i {
				continue
			}
			needed = math.Max(needed, clearance(node, a, b))
		}
		if len(arms) == 2 && p.FilletRadius > 0 {
			theta := angleBetween(a.dir, arms[1-i].dir)
			if tanHalf := math.Tan(theta.Radians() / 2); tanHalf > geom.Epsilon {
				needed += p.FilletRadius / tanHalf
			}
		}
		a.cutback = math.Min(needed+p.MinCutback, math.Max(a.edge.Length(), p.MinCutback))
	}
}

// clearance returns how far along arm a the side-line intersections with arm
// b reach.
func clearance(node *network.Node, a, b *arm) float64 {
	far := 0.0
	for _, wa := range []float64{a.right, -a.left} {
		pa := geom.Add(node.Pos, geom.Scale(geom.PerpRight(a.dir), wa))
		for _, wb := range []float64{b.right, -b.left} {
			pb := geom.Add(node.Pos, geom.Scale(geom.PerpRight(b.dir), wb))
			x, ok := geom.LineIntersection(pa, a.dir, pb, b.dir)
			if !ok {
				continue
			}
			if t := geom.Dot(geom.Sub(x, node.Pos), a.dir); t > far {
				far = t
			}
		}
	}
	return far
}

func angleBetween(u, v orb.Point) s1.Angle {
	return s1.Angle(math.Atan2(math.Abs(geom.Cross(u, v)), geom.Dot(u, v)))
}

// cut returns the recessed cross-section endpoints of an arm: left and right
// boundary points as seen walking away from the node.
func (a *arm) cut(node *network.Node) (left, right orb.Point) {
	c := geom.Add(node.Pos, geom.Scale(a.dir, a.cutback))
	left = geom.Add(c, geom.Scale(geom.PerpLeft(a.dir), a.left))
	right = geom.Add(c, geom.Scale(geom.PerpRight(a.dir), a.right))
	return left, right
}
