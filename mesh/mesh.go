/*
Package mesh triangulates the simple polygons produced for road surfaces and
junction patches. Ear clipping is used: not the fastest method, but exact,
dependency-free on the geometry side, and fully deterministic for identical
input rings.
*/
package mesh

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

// tracer writes to trace with key 'geom'
func tracer() tracing.Trace {
	return tracing.Select("geom")
}

var (
	// ErrDegeneratePolygon indicates a ring with fewer than 3 vertices or no
	// interior area.
	ErrDegeneratePolygon = errors.New("polygon has no interior")
	// ErrNotSimple indicates a self-intersecting ring.
	ErrNotSimple = errors.New("polygon is not simple")
)

// Mesh is an indexed triangle list. Every consecutive index triple is one
// triangle wound clockwise, matching the drivable-surface convention.
type Mesh struct {
	Vertices []orb.Point `json:"vertices"`
	Indices  []int       `json:"indices"`
}

// Triangulate ear-clips a simple polygon. The ring is normalized to
// clockwise winding first; the result has exactly len(ring)-2 triangles.
func Triangulate(ring orb.Ring) (*Mesh, error) {
	n := len(ring)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, n)
	}
	if geom.Is0(geom.SignedArea(ring)) {
		return nil, ErrDegeneratePolygon
	}
	if !geom.IsSimple(ring) {
		return nil, ErrNotSimple
	}
	poly := geom.EnsureClockwise(ring)

	m := &Mesh{
		Vertices: poly,
		Indices:  make([]int, 0, (n-2)*3),
	}
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	for len(remaining) > 3 {
		clipped := false
		for k := range remaining {
			if !isEar(poly, remaining, k) {
				continue
			}
			prev := remaining[(k+len(remaining)-1)%len(remaining)]
			next := remaining[(k+1)%len(remaining)]
			m.Indices = append(m.Indices, prev, remaining[k], next)
			remaining = append(remaining[:k], remaining[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// A simple polygon always has an ear; reaching this means the
			// input defeated the simplicity test numerically.
			tracer().Errorf("triangulation stuck with %d vertices left", len(remaining))
			return nil, ErrNotSimple
		}
	}
	m.Indices = append(m.Indices, remaining[0], remaining[1], remaining[2])
	return m, nil
}

// isEar reports whether remaining[k] is a convex corner whose triangle
// contains no other remaining vertex.
func isEar(poly orb.Ring, remaining []int, k int) bool {
	n := len(remaining)
	prev := poly[remaining[(k+n-1)%n]]
	cur := poly[remaining[k]]
	next := poly[remaining[(k+1)%n]]
	// Clockwise polygon: convex corners turn clockwise (negative cross).
	if geom.Cross(geom.Sub(cur, prev), geom.Sub(next, cur)) > geom.Epsilon {
		return false
	}
	for _, idx := range remaining {
		p := poly[idx]
		if geom.Equal(p, prev) || geom.Equal(p, cur) || geom.Equal(p, next) {
			continue
		}
		if inTriangle(p, prev, cur, next) {
			return false
		}
	}
	return true
}

// inTriangle tests strict containment in a clockwise triangle.
func inTriangle(p, a, b, c orb.Point) bool {
	d1 := geom.Cross(geom.Sub(b, a), geom.Sub(p, a))
	d2 := geom.Cross(geom.Sub(c, b), geom.Sub(p, b))
	d3 := geom.Cross(geom.Sub(a, c), geom.Sub(p, c))
	return d1 < geom.Epsilon && d2 < geom.Epsilon && d3 < geom.Epsilon
}

// Area returns the summed area of all triangles; for a valid triangulation
// it equals the polygon area.
func (m *Mesh) Area() float64 {
	total := 0.0
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		total += geom.Cross(geom.Sub(b, a), geom.Sub(c, a)) / 2
	}
	if total < 0 {
		total = -total
	}
	return total
}
