package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// OBB is the oriented rectangular footprint of an edge piece. The axis runs
// along the edge; lateral extents may differ between the right and left side
// of the direction of travel (one-way roads have no left extent).
type OBB struct {
	Center     orb.Point `json:"center"`
	Axis       orb.Point `json:"axis"` // unit vector along the edge
	HalfLength float64   `json:"halfLength"`
	HalfRight  float64   `json:"halfRight"`
	HalfLeft   float64   `json:"halfLeft"`
}

// Corners returns the rectangle corners wound clockwise, starting at the
// rear-right corner (against the axis direction).
func (o OBB) Corners() orb.Ring {
	along := Scale(o.Axis, o.HalfLength)
	right := Scale(PerpRight(o.Axis), o.HalfRight)
	left := Scale(PerpLeft(o.Axis), o.HalfLeft)
	rear := Sub(o.Center, along)
	front := Add(o.Center, along)
	return orb.Ring{
		Add(rear, right),
		Add(rear, left),
		Add(front, left),
		Add(front, right),
	}
}

// Width returns the full lateral extent of the footprint.
func (o OBB) Width() float64 {
	return o.HalfRight + o.HalfLeft
}

// Overlaps performs a separating-axis test between two footprints. The axes
// tested are the edge normals of both rectangles. A separating axis exists —
// and the footprints do not overlap — when the projected intervals
// interpenetrate by no more than tolerance on any axis; the tolerance keeps
// touching-but-not-truly-overlapping neighbors from being flagged.
func (o OBB) Overlaps(other OBB, tolerance float64) bool {
	axes := [4]orb.Point{
		o.Axis, PerpRight(o.Axis),
		other.Axis, PerpRight(other.Axis),
	}
	ca, cb := o.Corners(), other.Corners()
	for _, axis := range axes {
		minA, maxA := projectOnto(ca, axis)
		minB, maxB := projectOnto(cb, axis)
		penetration := math.Min(maxA, maxB) - math.Max(minA, minB)
		if penetration <= tolerance {
			return false
		}
	}
	return true
}

// Penetration returns the smallest interpenetration across the separating
// axes of both footprints. A negative value means they are separated; the
// value matches the threshold Overlaps tests against.
func (o OBB) Penetration(other OBB) float64 {
	axes := [4]orb.Point{
		o.Axis, PerpRight(o.Axis),
		other.Axis, PerpRight(other.Axis),
	}
	ca, cb := o.Corners(), other.Corners()
	depth := math.Inf(1)
	for _, axis := range axes {
		minA, maxA := projectOnto(ca, axis)
		minB, maxB := projectOnto(cb, axis)
		if p := math.Min(maxA, maxB) - math.Max(minA, minB); p < depth {
			depth = p
		}
	}
	return depth
}

func projectOnto(ring orb.Ring, axis orb.Point) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, p := range ring {
		d := Dot(p, axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}
