package geom

import (
	"github.com/paulmach/orb"
)

// SegmentHit describes an intersection between two segments.
type SegmentHit struct {
	Point orb.Point
	TA    float64 // parametric position on segment a, in [0,1]
	TB    float64 // parametric position on segment b, in [0,1]
}

// SegmentIntersection intersects segments a1-a2 and b1-b2. Touching cases
// (an endpoint lying on the other segment) count as intersections; collinear
// or near-parallel pairs do not.
func SegmentIntersection(a1, a2, b1, b2 orb.Point) (SegmentHit, bool) {
	da := Sub(a2, a1)
	db := Sub(b2, b1)
	denom := Cross(da, db)
	if Is0(denom) {
		return SegmentHit{}, false
	}
	ab := Sub(b1, a1)
	ta := Cross(ab, db) / denom
	tb := Cross(ab, da) / denom
	if ta < -Epsilon || ta > 1+Epsilon || tb < -Epsilon || tb > 1+Epsilon {
		return SegmentHit{}, false
	}
	return SegmentHit{
		Point: Add(a1, Scale(da, clamp01(ta))),
		TA:    clamp01(ta),
		TB:    clamp01(tb),
	}, true
}

// LineIntersection intersects the infinite lines through p1 with direction d1
// and p2 with direction d2. Returns false for (near-)parallel lines.
func LineIntersection(p1, d1, p2, d2 orb.Point) (orb.Point, bool) {
	denom := Cross(d1, d2)
	if Is0(denom) {
		return orb.Point{}, false
	}
	t := Cross(Sub(p2, p1), d2) / denom
	return Add(p1, Scale(d1, t)), true
}

// NearestOnSegment returns the closest point on segment a-b to p, its
// parametric position, and the distance to p.
func NearestOnSegment(p, a, b orb.Point) (orb.Point, float64, float64) {
	ab := Sub(b, a)
	len2 := Dot(ab, ab)
	if len2 <= Epsilon*Epsilon {
		return a, 0, Dist(p, a)
	}
	t := clamp01(Dot(Sub(p, a), ab) / len2)
	closest := Add(a, Scale(ab, t))
	return closest, t, Dist(p, closest)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
