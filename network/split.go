package network

import (
	"sort"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

// chord is one authored waypoint segment of a road, the unit of crossing
// detection and splitting.
type chord struct {
	roadIdx int
	roadID  string
	ordinal int // waypoint segment index within the road
	a, b    orb.Point
	cuts    []float64 // interior parametric cut positions
}

type builder struct {
	quantum float64
	net     *Network
	chords  []*chord
	roads   []RoadDef
}

func (b *builder) collectChords(roads []RoadDef) {
	b.roads = roads
	for ri, r := range roads {
		for s := 0; s+1 < len(r.Waypoints); s++ {
			b.chords = append(b.chords, &chord{
				roadIdx: ri,
				roadID:  r.ID,
				ordinal: s,
				a:       r.Waypoints[s],
				b:       r.Waypoints[s+1],
			})
		}
	}
}

// markWaypointJoints makes every interior authored waypoint a node: two edge
// pieces meet there, which is what qualifies the joint as a corner-join
// candidate downstream.
func (b *builder) markWaypointJoints() {
	for _, r := range b.roads {
		for i := 1; i+1 < len(r.Waypoints); i++ {
			b.ensureNode(r.Waypoints[i])
		}
	}
}

// detectCrossings intersects every chord pair (other roads, and non-adjacent
// chords of the same road for self-crossing loops) and records nodes + cuts.
func (b *builder) detectCrossings() {
	for i := 0; i < len(b.chords); i++ {
		for j := i + 1; j < len(b.chords); j++ {
			ca, cb := b.chords[i], b.chords[j]
			if ca.roadIdx == cb.roadIdx && abs(ca.ordinal-cb.ordinal) <= 1 {
				continue // same or adjacent segment of one road
			}
			hit, ok := geom.SegmentIntersection(ca.a, ca.b, cb.a, cb.b)
			if !ok {
				continue
			}
			b.ensureNode(hit.Point)
			ca.addCut(hit.TA)
			cb.addCut(hit.TB)
		}
	}
}

// snapEndpoints attaches road endpoints that stop within one id cell of
// another road's chord. The crossing test cannot see these: a stub ending a
// hair short of a centerline never intersects it.
func (b *builder) snapEndpoints() {
	for ri, r := range b.roads {
		for _, p := range []orb.Point{r.Waypoints[0], r.Waypoints[len(r.Waypoints)-1]} {
			cell := quantizeID(p, b.quantum)
			for _, c := range b.chords {
				if c.roadIdx == ri {
					continue
				}
				hit, t, dist := geom.NearestOnSegment(p, c.a, c.b)
				if dist > b.quantum || quantizeID(hit, b.quantum) != cell {
					continue
				}
				b.ensureNode(hit)
				c.addCut(t)
			}
		}
	}
}

// mergeCoincidentEndpoints promotes road endpoints that land in the same id
// cell as another road's endpoint to shared nodes (collinear continuations
// that the crossing test cannot see).
func (b *builder) mergeCoincidentEndpoints() {
	type endpoint struct {
		roadIdx int
		pos     orb.Point
	}
	cells := make(map[NodeID][]endpoint)
	for ri, r := range b.roads {
		for _, p := range []orb.Point{r.Waypoints[0], r.Waypoints[len(r.Waypoints)-1]} {
			id := quantizeID(p, b.quantum)
			cells[id] = append(cells[id], endpoint{ri, p})
		}
	}
	for _, owners := range cells {
		for _, ep := range owners[1:] {
			if ep.roadIdx != owners[0].roadIdx {
				b.ensureNode(owners[0].pos)
				break
			}
		}
	}
}

// ensureNode registers a node for the id cell of p. The node position is the
// snapped cell point, so ids and positions never depend on discovery order.
func (b *builder) ensureNode(p orb.Point) *Node {
	id := quantizeID(p, b.quantum)
	if node, ok := b.net.nodeIndex[id]; ok {
		return node
	}
	node := &Node{ID: id, Pos: snap(p, b.quantum)}
	b.net.nodeIndex[id] = node
	return node
}

// split cuts every chord at its recorded cut positions and emits edge
// pieces with along-road ordinals.
func (b *builder) split() {
	counters := make([]int, len(b.roads))
	for _, c := range b.chords {
		bounds := c.boundaries()
		for k := 0; k+1 < len(bounds); k++ {
			from := geom.Lerp(c.a, c.b, bounds[k])
			to := geom.Lerp(c.a, c.b, bounds[k+1])
			if geom.Dist(from, to) <= b.quantum {
				continue // collapsed sliver between near-identical cuts
			}
			b.emitEdge(c, from, to, &counters[c.roadIdx])
		}
	}
}

func (b *builder) emitEdge(c *chord, from, to orb.Point, counter *int) {
	e := &Edge{
		RoadID:  c.roadID,
		Ordinal: *counter,
		From:    from,
		To:      to,
	}
	e.ID = EdgeID(edgeIDFor(c.roadID, *counter))
	*counter++

	if node, ok := b.net.nodeIndex[quantizeID(from, b.quantum)]; ok {
		e.A = node.ID
		e.From = node.Pos
		node.Edges = append(node.Edges, e.ID)
	}
	if node, ok := b.net.nodeIndex[quantizeID(to, b.quantum)]; ok {
		e.B = node.ID
		e.To = node.Pos
		node.Edges = append(node.Edges, e.ID)
	}
	b.net.Edges = append(b.net.Edges, e)
	b.net.edgeIndex[e.ID] = e
}

func edgeIDFor(roadID string, ordinal int) string {
	return roadID + "#" + strconv.Itoa(ordinal)
}

func (c *chord) addCut(t float64) {
	if t <= 1e-9 || t >= 1-1e-9 {
		return // falls on a chord endpoint, already a waypoint or road end
	}
	c.cuts = append(c.cuts, t)
}

// boundaries returns the sorted, deduplicated piece boundaries including the
// chord endpoints.
func (c *chord) boundaries() []float64 {
	bounds := make([]float64, 0, len(c.cuts)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, c.cuts...)
	bounds = append(bounds, 1)
	sort.Float64s(bounds)
	out := bounds[:1]
	for _, t := range bounds[1:] {
		if t-out[len(out)-1] > 1e-9 {
			out = append(out, t)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
