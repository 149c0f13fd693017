package fillet

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

// Fillet computes the corner-rounded sampling of a waypoint polyline.
// defaultRadius applies to interior waypoints without a radius of their own;
// chordLength controls the approximate spacing of arc samples. Corners whose
// clamped radius collapses to zero report OK:false and the path passes
// straight through the original vertex.
func Fillet(points []Waypoint, defaultRadius, chordLength float64) (Result, error) {
	if err := Validate(points); err != nil {
		return Result{}, err
	}
	if chordLength <= 0 {
		chordLength = 1
	}
	n := len(points)
	segLens := chords(points)
	corners := make([]Corner, 0, n-2)
	claimed := make([]float64, n-1) // tangent length already taken per segment

	for i := 1; i < n-1; i++ {
		c := solveCorner(points, segLens, claimed, i, defaultRadius)
		if c.OK && c.RadiusUsed > 0 {
			tIn := geom.Dist(points[i].Pos, c.InTangent)
			tOut := geom.Dist(points[i].Pos, c.OutTangent)
			claimed[i-1] += tIn
			claimed[i] += tOut
		}
		corners = append(corners, c)
	}

	out := assemble(points, corners, chordLength)
	tracer().Debugf("filleted %d waypoints into %d samples", n, len(out))
	return Result{OK: true, Points: out, Corners: corners}, nil
}

// solveCorner clamps the requested radius at interior waypoint i and places
// the tangent points on the two adjacent segments.
func solveCorner(points []Waypoint, segLens, claimed []float64, i int, defaultRadius float64) Corner {
	wp := points[i]
	corner := Corner{
		Index:           i,
		RadiusRequested: wp.radiusOr(defaultRadius),
		InTangent:       wp.Pos,
		OutTangent:      wp.Pos,
		Center:          wp.Pos,
	}
	u := geom.Unit(geom.Sub(wp.Pos, points[i-1].Pos))
	v := geom.Unit(geom.Sub(points[i+1].Pos, wp.Pos))
	cross := geom.Cross(u, v)
	dot := geom.Dot(u, v)
	if geom.Is0(cross) {
		if dot > 0 {
			// Colinear: nothing to round, zero-length corner.
			corner.OK = true
			return corner
		}
		// Full reversal, no arc fits between antiparallel segments.
		return corner
	}

	turn := s1.Angle(math.Atan2(math.Abs(cross), dot)) // in (0, π)
	tanHalf := math.Tan(turn.Radians() / 2)

	// A corner may consume the whole of a terminal segment but only half of a
	// shared one; earlier corners' claims shrink the incoming side further.
	availIn := segLens[i-1] - claimed[i-1]
	if i-1 > 0 {
		availIn = math.Min(availIn, segLens[i-1]/2)
	}
	availOut := segLens[i]
	if i+1 < len(points)-1 {
		availOut = segLens[i] / 2
	}
	maxTangent := math.Min(availIn, availOut)
	if maxTangent <= geom.Epsilon || tanHalf <= geom.Epsilon {
		return corner
	}
	maxRadius := maxTangent / tanHalf
	corner.RadiusUsed = math.Min(corner.RadiusRequested, maxRadius)
	if corner.RadiusUsed <= geom.Epsilon {
		corner.RadiusUsed = 0
		return corner
	}

	t := corner.RadiusUsed * tanHalf
	tIn := math.Min(t*wp.tangentFactor(), availIn)
	corner.InTangent = geom.Sub(wp.Pos, geom.Scale(u, tIn))
	corner.OutTangent = geom.Add(wp.Pos, geom.Scale(v, t))
	corner.CCW = cross > 0
	if geom.Is1(wp.tangentFactor()) {
		// Exact tangent arc: the center sits on the corner's turn side,
		// one radius off the incoming segment at the in-tangent point.
		side := geom.PerpRight(u)
		if corner.CCW {
			side = geom.PerpLeft(u)
		}
		corner.Center = geom.Add(corner.InTangent, geom.Scale(side, corner.RadiusUsed))
	}
	corner.OK = true
	return corner
}

// assemble emits the sampled path: straight runs between corners, arc or
// blend samples across each successful corner.
func assemble(points []Waypoint, corners []Corner, chordLength float64) orb.LineString {
	out := orb.LineString{points[0].Pos}
	for _, c := range corners {
		if !c.OK || c.RadiusUsed == 0 {
			appendPoint(&out, points[c.Index].Pos)
			continue
		}
		appendPoint(&out, c.InTangent)
		for _, p := range sampleCorner(points[c.Index].Pos, c, chordLength) {
			appendPoint(&out, p)
		}
		appendPoint(&out, c.OutTangent)
	}
	appendPoint(&out, points[len(points)-1].Pos)
	return out
}

func appendPoint(out *orb.LineString, p orb.Point) {
	if len(*out) > 0 && geom.Equal((*out)[len(*out)-1], p) {
		return
	}
	*out = append(*out, p)
}
