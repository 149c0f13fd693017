/*
Package fillet rounds the corners of authored road centerlines. Each interior
waypoint of a polyline is replaced by a circular arc tangent to both adjacent
straight segments, with the arc radius clamped to what the segment lengths
allow. The sampled output curve is G1-continuous at every tangent point.
*/
package fillet

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

// tracer writes to trace with key 'geom'
func tracer() tracing.Trace {
	return tracing.Select("geom")
}

var (
	// ErrTooFewWaypoints indicates a path with fewer than 2 waypoints.
	ErrTooFewWaypoints = errors.New("fillet path needs at least 2 waypoints")
	// ErrInvalidWaypoint indicates a waypoint coordinate contains NaN/Inf.
	ErrInvalidWaypoint = errors.New("fillet path has invalid waypoint coordinate")
)

// Waypoint is an authored point on a road centerline. Radius overrides the
// default corner radius when positive; TangentFactor scales how far the
// incoming tangent point sits from the corner (1 = symmetric circular arc).
type Waypoint struct {
	Pos           orb.Point `json:"pos"`
	Radius        float64   `json:"radius,omitempty"`
	TangentFactor float64   `json:"tangentFactor,omitempty"`
}

// Corner records the fillet computed for one interior waypoint. When OK is
// false no arc could be fit and the sampled path passes straight through the
// original vertex.
type Corner struct {
	Index           int       `json:"index"`
	RadiusRequested float64   `json:"radiusRequested"`
	RadiusUsed      float64   `json:"radiusUsed"`
	InTangent       orb.Point `json:"inTangent"`
	OutTangent      orb.Point `json:"outTangent"`
	Center          orb.Point `json:"center"`
	CCW             bool      `json:"ccw"`
	OK              bool      `json:"ok"`
}

// Result is a sampled, corner-rounded centerline. Points holds the samples in
// path order; every successful corner's InTangent and OutTangent appear
// verbatim among them.
type Result struct {
	OK      bool           `json:"ok"`
	Points  orb.LineString `json:"points"`
	Corners []Corner       `json:"corners"`
}

// Validate checks a waypoint sequence before solving. Non-finite coordinates
// are a programming error of the caller and are rejected here rather than
// handled downstream.
func Validate(points []Waypoint) error {
	if len(points) < 2 {
		return ErrTooFewWaypoints
	}
	for i, wp := range points {
		x, z := wp.Pos[0], wp.Pos[1]
		if math.IsNaN(x) || math.IsNaN(z) || math.IsInf(x, 0) || math.IsInf(z, 0) {
			return fmt.Errorf("%w at waypoint %d", ErrInvalidWaypoint, i)
		}
	}
	return nil
}

func (wp Waypoint) radiusOr(def float64) float64 {
	if wp.Radius > 0 {
		return wp.Radius
	}
	return def
}

func (wp Waypoint) tangentFactor() float64 {
	if wp.TangentFactor > 0 {
		return wp.TangentFactor
	}
	return 1
}

func chords(points []Waypoint) []float64 {
	lens := make([]float64, len(points)-1)
	for i := range lens {
		lens[i] = geom.Dist(points[i].Pos, points[i+1].Pos)
	}
	return lens
}
