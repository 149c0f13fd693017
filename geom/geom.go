/*
Package geom provides the planar primitives shared by the road-network
geometry engine: epsilon arithmetic, vector helpers on the XZ ground plane,
segment intersection, and polygon predicates.

Points are orb.Point values. The first slot is the world X coordinate and the
second slot carries the ground-plane Z coordinate; Y is up in the 3D scene and
never appears here. Winding follows the ground convention of the renderer:
drivable-surface polygons are wound clockwise, i.e. their shoelace signed area
is negative.
*/
package geom

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// tracer writes to trace with key 'geom'
func tracer() tracing.Trace {
	return tracing.Select("geom")
}

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Is1 is a predicate: is n = 1.0 ?
func Is1(n float64) bool {
	return math.Abs(1-n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// Pt constructs a ground-plane point from world x and z.
func Pt(x, z float64) orb.Point {
	return orb.Point{x, z}
}

// Add returns p + q.
func Add(p, q orb.Point) orb.Point {
	return orb.Point{p[0] + q[0], p[1] + q[1]}
}

// Sub returns p - q.
func Sub(p, q orb.Point) orb.Point {
	return orb.Point{p[0] - q[0], p[1] - q[1]}
}

// Scale returns v * s.
func Scale(v orb.Point, s float64) orb.Point {
	return orb.Point{v[0] * s, v[1] * s}
}

// Dot returns the dot product of v and w.
func Dot(v, w orb.Point) float64 {
	return v[0]*w[0] + v[1]*w[1]
}

// Cross returns the 2D cross product (the up-component of the 3D cross).
func Cross(v, w orb.Point) float64 {
	return v[0]*w[1] - v[1]*w[0]
}

// Length returns the Euclidean length of the vector.
func Length(v orb.Point) float64 {
	return math.Hypot(v[0], v[1])
}

// Dist returns the distance between two points.
func Dist(p, q orb.Point) float64 {
	return planar.Distance(p, q)
}

// Unit returns the unit vector in the direction of v, or the zero vector for
// a degenerate input.
func Unit(v orb.Point) orb.Point {
	l := Length(v)
	if l <= Epsilon {
		return orb.Point{}
	}
	return orb.Point{v[0] / l, v[1] / l}
}

// PerpRight returns v rotated 90 degrees to the right of the direction of
// travel (clockwise on the ground plane).
func PerpRight(v orb.Point) orb.Point {
	return orb.Point{v[1], -v[0]}
}

// PerpLeft returns v rotated 90 degrees to the left of the direction of
// travel.
func PerpLeft(v orb.Point) orb.Point {
	return orb.Point{-v[1], v[0]}
}

// Lerp returns the linear interpolation between p and q at t in [0,1].
func Lerp(p, q orb.Point, t float64) orb.Point {
	return orb.Point{p[0] + (q[0]-p[0])*t, p[1] + (q[1]-p[1])*t}
}

// Mid returns the midpoint between p and q.
func Mid(p, q orb.Point) orb.Point {
	return Lerp(p, q, 0.5)
}

// Heading returns the angle of v measured from the positive X axis.
func Heading(v orb.Point) s1.Angle {
	return s1.Angle(math.Atan2(v[1], v[0]))
}

// Rotate returns v rotated by theta around the origin. Positive theta turns
// counterclockwise on the ground plane.
func Rotate(v orb.Point, theta float64) orb.Point {
	sin, cos := math.Sincos(theta)
	return orb.Point{v[0]*cos - v[1]*sin, v[0]*sin + v[1]*cos}
}

// RotateAround returns p rotated by theta around center.
func RotateAround(p, center orb.Point, theta float64) orb.Point {
	return Add(Rotate(Sub(p, center), theta), center)
}

// Equal compares two points under Epsilon.
func Equal(p, q orb.Point) bool {
	return Is0(p[0]-q[0]) && Is0(p[1]-q[1])
}

// PolylineLength returns the arc length of a polyline.
func PolylineLength(ls orb.LineString) float64 {
	return planar.Length(ls)
}
