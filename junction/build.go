package junction

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
	"github.com/rogelgarcia/bus-simulator-sub007/network"
)

// buildCornerJoin walks the 2-edge ring: each arm contributes its recessed
// cross-section (right point, then left point), and the gap from one arm's
// left side to the next arm's right side is rounded with a fillet arc tangent
// to both road edge lines. The walk runs counterclockwise; Build reverses it
// into the clockwise convention afterwards.
func buildCornerJoin(node *network.Node, arms []*arm, p Params, j *Junction) {
	for i, a := range arms {
		next := arms[(i+1)%len(arms)]
		la, ra := a.cut(node)
		appendRing(&j.Points, ra)
		appendRing(&j.Points, la)
		filletJoin(node, a, next, la, p, j)
	}
}

// buildNWay connects consecutive recessed cross-sections directly, in
// ascending angular order. Declared junctions get no fillets.
func buildNWay(node *network.Node, arms []*arm, j *Junction) {
	for _, a := range arms {
		la, ra := a.cut(node)
		appendRing(&j.Points, ra)
		appendRing(&j.Points, la)
	}
}

// filletJoin rounds the join between arm a's left edge line and arm b's right
// edge line. When the lines are parallel or the radius is disabled, the ring
// simply connects the two cut points directly.
func filletJoin(node *network.Node, a, b *arm, la orb.Point, p Params, j *Junction) {
	if p.FilletRadius <= 0 {
		return
	}
	_, rb := b.cut(node)
	x, ok := geom.LineIntersection(la, a.dir, rb, b.dir)
	if !ok {
		return
	}
	da := geom.Sub(la, x)
	db := geom.Sub(rb, x)
	distA, distB := geom.Length(da), geom.Length(db)
	if geom.Is0(distA) || geom.Is0(distB) {
		return
	}
	da, db = geom.Scale(da, 1/distA), geom.Scale(db, 1/distB)
	alpha := angleBetween(da, db).Radians()
	if alpha < geom.Epsilon || math.Pi-alpha < geom.Epsilon {
		return
	}
	r := p.FilletRadius
	tangentDist := r / math.Tan(alpha/2)
	if limit := 0.9 * math.Min(distA, distB); tangentDist > limit {
		tangentDist = limit
		r = tangentDist * math.Tan(alpha/2)
	}
	if geom.Is0(r) {
		return
	}
	t0 := geom.Add(x, geom.Scale(da, tangentDist))
	t1 := geom.Add(x, geom.Scale(db, tangentDist))
	bisector := geom.Unit(geom.Add(da, db))
	center := geom.Add(x, geom.Scale(bisector, r/math.Sin(alpha/2)))

	arc := Arc{Center: center, Radius: r, Tangent0: t0, Tangent1: t1}
	sampleArc(&j.Points, arc, p.ChordLength)
	v0, v1 := geom.Sub(t0, center), geom.Sub(t1, center)
	arc.CCW = geom.Cross(v0, v1) > 0
	j.Fillets = append(j.Fillets, arc)
}

// sampleArc appends the arc points from Tangent0 to Tangent1, taking the
// short way around the center.
func sampleArc(ring *orb.Ring, arc Arc, chordLength float64) {
	v0 := geom.Sub(arc.Tangent0, arc.Center)
	v1 := geom.Sub(arc.Tangent1, arc.Center)
	sweep := math.Atan2(geom.Cross(v0, v1), geom.Dot(v0, v1))
	steps := int(math.Ceil(math.Abs(sweep) * arc.Radius / chordLength))
	if steps < 2 {
		steps = 2
	}
	for s := 0; s <= steps; s++ {
		phi := sweep * float64(s) / float64(steps)
		appendRing(ring, geom.RotateAround(arc.Tangent0, arc.Center, phi))
	}
}

// appendRing adds a point unless it repeats the last one.
func appendRing(ring *orb.Ring, p orb.Point) {
	if n := len(*ring); n > 0 && geom.Equal((*ring)[n-1], p) {
		return
	}
	*ring = append(*ring, p)
}

// findConnectors pairs consecutive same-road pieces passing through a true
// junction (3 or more incident edges). A 2-edge joint is the road itself, not
// a crossing, so it gets none.
func findConnectors(node *network.Node, arms []*arm) []Connector {
	if len(arms) < 3 {
		return nil
	}
	byRoad := make(map[string][]*arm)
	for _, a := range arms {
		byRoad[a.edge.RoadID] = append(byRoad[a.edge.RoadID], a)
	}
	roadIDs := make([]string, 0, len(byRoad))
	for id, group := range byRoad {
		if len(group) >= 2 {
			roadIDs = append(roadIDs, id)
		}
	}
	sort.Strings(roadIDs)

	var out []Connector
	for _, roadID := range roadIDs {
		group := byRoad[roadID]
		sort.Slice(group, func(i, k int) bool {
			return group[i].edge.Ordinal < group[k].edge.Ordinal
		})
		for _, in := range group {
			if in.edge.B != node.ID {
				continue
			}
			for _, next := range group {
				if next.edge.A == node.ID && next.edge.Ordinal == in.edge.Ordinal+1 {
					out = append(out, Connector{
						ID:      fmt.Sprintf("%s/%s#%d", node.ID, roadID, in.edge.Ordinal),
						RoadID:  roadID,
						EdgeIn:  in.edge.ID,
						EdgeOut: next.edge.ID,
					})
					break
				}
			}
		}
	}
	return out
}
