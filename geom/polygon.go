package geom

import (
	"github.com/paulmach/orb"
)

// SignedArea returns the shoelace signed area of a ring. Positive for
// counterclockwise winding on the ground plane, negative for clockwise.
// The ring is treated as implicitly closed.
func SignedArea(ring orb.Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return area / 2
}

// IsClockwise reports whether a ring follows the project's drivable-surface
// winding (negative signed area).
func IsClockwise(ring orb.Ring) bool {
	return SignedArea(ring) < 0
}

// EnsureClockwise returns the ring wound clockwise, reversing if necessary.
func EnsureClockwise(ring orb.Ring) orb.Ring {
	if len(ring) < 3 || IsClockwise(ring) {
		return ring
	}
	rev := make(orb.Ring, len(ring))
	for i, p := range ring {
		rev[len(ring)-1-i] = p
	}
	return rev
}

// IsSimple reports whether no pair of non-adjacent ring edges intersects.
// The ring is treated as implicitly closed; consecutive duplicate vertices
// are tolerated.
func IsSimple(ring orb.Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent across the closure
			}
			b1, b2 := ring[j], ring[(j+1)%n]
			if _, hit := SegmentIntersection(a1, a2, b1, b2); hit {
				return false
			}
		}
	}
	return true
}

// Centroid returns the area centroid of a ring, falling back to the vertex
// average for degenerate input.
func Centroid(ring orb.Ring) orb.Point {
	n := len(ring)
	if n == 0 {
		return orb.Point{}
	}
	a := SignedArea(ring)
	if n < 3 || Is0(a) {
		tracer().Debugf("centroid of degenerate ring with %d vertices", n)
		sum := orb.Point{}
		for _, p := range ring {
			sum = Add(sum, p)
		}
		return Scale(sum, 1/float64(n))
	}
	var cx, cz float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
		cx += (ring[i][0] + ring[j][0]) * cross
		cz += (ring[i][1] + ring[j][1]) * cross
	}
	f := 1 / (6 * a)
	return orb.Point{cx * f, cz * f}
}

// RingContains reports whether pt lies inside the ring (ray casting).
func RingContains(ring orb.Ring, pt orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := ring[i], ring[j]
		if (vi[1] > pt[1]) != (vj[1] > pt[1]) &&
			pt[0] < (vj[0]-vi[0])*(pt[1]-vi[1])/(vj[1]-vi[1])+vi[0] {
			inside = !inside
		}
		j = i
	}
	return inside
}
