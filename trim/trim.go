/*
Package trim resolves overlapping road surfaces. Edge footprints are tested
pairwise with a separating-axis check; when two footprints interpenetrate
beyond the configured tolerance, the losing edge has the overlapped span of
its centerline cut out. Junction polygons likewise carve away the edge spans
they cover. The result is a deterministic partition of every edge into kept
pieces, removed intervals (partial cuts), and dropped pieces (edges whose
entire span is subsumed).
*/
package trim

import (
	"math"
	"sort"

	polyclip "github.com/akavel/polyclip-go"
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

// Config tunes overlap detection. The tolerance below which interpenetration
// is ignored is Threshold times the lane width, so touching neighbors and
// shared-node fans do not count as overlaps.
type Config struct {
	Threshold float64 `json:"threshold"`
	LaneWidth float64 `json:"laneWidth"`
}

// Tolerance returns the interpenetration depth below which two footprints
// are considered merely touching.
func (c Config) Tolerance() float64 {
	w := c.LaneWidth
	if w <= 0 {
		w = lanes.DefaultLaneWidth
	}
	if c.Threshold < 0 {
		return 0
	}
	return c.Threshold * w
}

// EdgeFootprint couples an edge with its asphalt footprint.
type EdgeFootprint struct {
	Edge *network.Edge
	Box  geom.OBB
}

// JunctionZone is a junction polygon that carves covered spans out of the
// edges it was built over.
type JunctionZone struct {
	NodeID network.NodeID
	Ring   orb.Ring
}

// Piece is a parametric span of an edge chord.
type Piece struct {
	EdgeID network.EdgeID `json:"edgeId"`
	T0     float64        `json:"t0"`
	T1     float64        `json:"t1"`
	From   orb.Point      `json:"from"`
	To     orb.Point      `json:"to"`
}

// Overlap records one resolved footprint conflict. At anchors diagnostics at
// the centroid of the overlapping region.
type Overlap struct {
	EdgeA       network.EdgeID `json:"edgeA"`
	EdgeB       network.EdgeID `json:"edgeB"`
	Winner      network.EdgeID `json:"winner"`
	Penetration float64        `json:"penetration"`
	At          orb.Point      `json:"at"`
	Region      []orb.Ring     `json:"region,omitempty"`
}

// Result is the outcome of a trim pass. Removed holds intervals cut out of
// edges that otherwise survive; Dropped holds edges that lost their entire
// span, whether to a winning footprint or to junction coverage.
type Result struct {
	Kept     []Piece   `json:"kept"`
	Dropped  []Piece   `json:"dropped,omitempty"`
	Removed  []Piece   `json:"removed,omitempty"`
	Overlaps []Overlap `json:"overlaps,omitempty"`
	Clean    bool      `json:"clean"` // kept pieces verified overlap-free
}

const sliver = 1e-9

type span struct {
	t0, t1 float64
}

// Run trims every edge against all other edge footprints and the junction
// zones. Input order does not matter; conflicts are resolved by priority
// (shorter edge wins, edge id breaks ties) and all emitted pieces are in
// edge-id order.
func Run(edges []EdgeFootprint, zones []JunctionZone, cfg Config) *Result {
	sorted := make([]EdgeFootprint, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Edge.ID < sorted[j].Edge.ID
	})

	tol := cfg.Tolerance()
	res := &Result{}
	cut := make(map[network.EdgeID][]span)

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if !a.Box.Overlaps(b.Box, tol) {
				continue
			}
			winner, loser := resolve(a, b)
			region := intersectionRegion(a.Box.Corners(), b.Box.Corners())
			ov := Overlap{
				EdgeA:       a.Edge.ID,
				EdgeB:       b.Edge.ID,
				Winner:      winner.Edge.ID,
				Penetration: a.Box.Penetration(b.Box),
				At:          geom.Mid(a.Box.Center, b.Box.Center),
				Region:      region,
			}
			if len(region) > 0 {
				ov.At = geom.Centroid(region[0])
			}
			res.Overlaps = append(res.Overlaps, ov)
			if s, ok := shadow(loser.Edge, winner.Box); ok {
				cut[loser.Edge.ID] = append(cut[loser.Edge.ID], s)
			}
		}
	}

	for _, ef := range sorted {
		for _, z := range zones {
			for _, s := range coveredSpans(ef.Edge, z.Ring) {
				cut[ef.Edge.ID] = append(cut[ef.Edge.ID], s)
			}
		}
	}

	for _, ef := range sorted {
		partition(ef.Edge, cut[ef.Edge.ID], res)
	}
	res.Clean = verify(sorted, res.Kept, tol)
	return res
}

// resolve picks the surviving edge of an overlapping pair: the shorter edge
// keeps its surface, and equal lengths fall back to the smaller edge id.
func resolve(a, b EdgeFootprint) (winner, loser EdgeFootprint) {
	la, lb := a.Edge.Length(), b.Edge.Length()
	switch {
	case la < lb:
		return a, b
	case lb < la:
		return b, a
	case a.Edge.ID < b.Edge.ID:
		return a, b
	default:
		return b, a
	}
}

// shadow projects a winning footprint onto the loser's chord and returns the
// covered parametric span.
func shadow(loser *network.Edge, winner geom.OBB) (span, bool) {
	length := loser.Length()
	if length <= sliver {
		return span{}, false
	}
	axis := loser.Dir()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range winner.Corners() {
		t := geom.Dot(geom.Sub(c, loser.From), axis) / length
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	lo, hi = math.Max(lo, 0), math.Min(hi, 1)
	if hi-lo <= sliver {
		return span{}, false
	}
	return span{lo, hi}, true
}

// coveredSpans returns the parametric spans of the edge chord lying inside
// the ring.
func coveredSpans(e *network.Edge, ring orb.Ring) []span {
	cuts := []float64{0, 1}
	for i := 0; i < len(ring); i++ {
		q0, q1 := ring[i], ring[(i+1)%len(ring)]
		if hit, ok := geom.SegmentIntersection(e.From, e.To, q0, q1); ok {
			cuts = append(cuts, hit.TA)
		}
	}
	sort.Float64s(cuts)
	var out []span
	for k := 0; k+1 < len(cuts); k++ {
		t0, t1 := cuts[k], cuts[k+1]
		if t1-t0 <= sliver {
			continue
		}
		mid := geom.Lerp(e.From, e.To, (t0+t1)/2)
		if geom.RingContains(ring, mid) {
			out = append(out, span{t0, t1})
		}
	}
	return out
}

// partition cuts the edge chord at the lost spans. Lost intervals become
// removed pieces and the rest stays kept, unless the cuts swallow the whole
// chord: an edge with nothing left is dropped in one piece.
func partition(e *network.Edge, cut []span, res *Result) {
	cuts := []float64{0, 1}
	for _, s := range cut {
		cuts = append(cuts, s.t0, s.t1)
	}
	sort.Float64s(cuts)

	emit := func(list *[]Piece, t0, t1 float64) {
		n := len(*list)
		if n > 0 && math.Abs((*list)[n-1].T1-t0) <= sliver {
			(*list)[n-1].T1 = t1
			(*list)[n-1].To = geom.Lerp(e.From, e.To, t1)
			return
		}
		*list = append(*list, Piece{
			EdgeID: e.ID,
			T0:     t0,
			T1:     t1,
			From:   geom.Lerp(e.From, e.To, t0),
			To:     geom.Lerp(e.From, e.To, t1),
		})
	}

	var kept, lost []Piece
	for k := 0; k+1 < len(cuts); k++ {
		t0, t1 := cuts[k], cuts[k+1]
		if t1-t0 <= sliver {
			continue
		}
		if inside(cut, (t0+t1)/2) {
			emit(&lost, t0, t1)
		} else {
			emit(&kept, t0, t1)
		}
	}
	if len(kept) == 0 && len(lost) > 0 {
		res.Dropped = append(res.Dropped, Piece{
			EdgeID: e.ID, T0: 0, T1: 1, From: e.From, To: e.To,
		})
		return
	}
	res.Kept = append(res.Kept, kept...)
	res.Removed = append(res.Removed, lost...)
}

func inside(spans []span, t float64) bool {
	for _, s := range spans {
		if t > s.t0 && t < s.t1 {
			return true
		}
	}
	return false
}

// verify re-runs the separating-axis test over the kept pieces. A dirty
// result means the single-pass interval subtraction left residual overlap,
// which the trace surfaces for diagnosis.
func verify(edges []EdgeFootprint, kept []Piece, tol float64) bool {
	byID := make(map[network.EdgeID]EdgeFootprint, len(edges))
	for _, ef := range edges {
		byID[ef.Edge.ID] = ef
	}
	boxes := make([]geom.OBB, len(kept))
	for i, p := range kept {
		boxes[i] = pieceBox(byID[p.EdgeID].Box, p)
	}
	clean := true
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if kept[i].EdgeID == kept[j].EdgeID {
				continue
			}
			if boxes[i].Overlaps(boxes[j], tol) {
				tracer().Infof("trim: residual overlap between %s and %s", kept[i].EdgeID, kept[j].EdgeID)
				clean = false
			}
		}
	}
	return clean
}

// pieceBox shrinks an edge footprint along its axis to a kept span.
func pieceBox(full geom.OBB, p Piece) geom.OBB {
	box := full
	box.Center = geom.Mid(p.From, p.To)
	box.HalfLength = geom.Dist(p.From, p.To) / 2
	return box
}

// intersectionRegion computes the overlapping area of two footprints for
// diagnostics.
func intersectionRegion(a, b orb.Ring) []orb.Ring {
	pa := polyclip.Polygon{toContour(a)}
	pb := polyclip.Polygon{toContour(b)}
	clipped := pa.Construct(polyclip.INTERSECTION, pb)
	var out []orb.Ring
	for _, c := range clipped {
		ring := make(orb.Ring, len(c))
		for i, pt := range c {
			ring[i] = geom.Pt(pt.X, pt.Y)
		}
		out = append(out, ring)
	}
	return out
}

func toContour(r orb.Ring) polyclip.Contour {
	c := make(polyclip.Contour, len(r))
	for i, p := range r {
		c[i] = polyclip.Point{X: p[0], Y: p[1]}
	}
	return c
}
