/*
Package lanes derives the parallel cross-section polylines of an edge piece
from its lane configuration. Every offset is an exact linear function of lane
counts, lane width, and the shoulder margin; there is no iteration or
approximation anywhere in this package.
*/
package lanes

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

// tracer writes to trace with key 'network'
func tracer() tracing.Trace {
	return tracing.Select("network")
}

// DefaultLaneWidth is used when a configuration omits the lane width.
const DefaultLaneWidth = 4.8

// Config is the per-road lane configuration. LanesF is the forward lane
// count (a road always has a usable forward direction), LanesB the backward
// count (0 means one-way). MarginFactor is the shoulder fraction of the lane
// width.
type Config struct {
	LanesF       int     `json:"lanesF"`
	LanesB       int     `json:"lanesB"`
	LaneWidth    float64 `json:"laneWidth"`
	MarginFactor float64 `json:"marginFactor"`
}

// Normalized corrects invalid authoring input at the boundary: the forward
// lane count is floored at 1, the backward count at 0, and a missing lane
// width falls back to DefaultLaneWidth. The engine never sees an invalid
// configuration.
func (c Config) Normalized() Config {
	if c.LanesF < 1 {
		tracer().Debugf("lane config: clamping lanesF %d to 1", c.LanesF)
		c.LanesF = 1
	}
	if c.LanesB < 0 {
		c.LanesB = 0
	}
	if c.LaneWidth <= 0 {
		c.LaneWidth = DefaultLaneWidth
	}
	if c.MarginFactor < 0 {
		c.MarginFactor = 0
	}
	return c
}

// OneWay reports whether the road has no backward lanes.
func (c Config) OneWay() bool {
	return c.LanesB == 0
}

// Margin returns the shoulder width.
func (c Config) Margin() float64 {
	return c.MarginFactor * c.LaneWidth
}

// HalfWidthRight returns the asphalt extent right of the divider.
func (c Config) HalfWidthRight() float64 {
	return float64(c.LanesF)*c.LaneWidth + c.Margin()
}

// HalfWidthLeft returns the asphalt extent left of the divider; a one-way
// road has none.
func (c Config) HalfWidthLeft() float64 {
	if c.OneWay() {
		return 0
	}
	return float64(c.LanesB)*c.LaneWidth + c.Margin()
}

// Offsets is the derived cross-section of an edge piece. Polylines on the
// backward side are nil for one-way roads; the numeric offsets are always
// populated (AsphaltLeft collapses to the margin for one-way roads).
type Offsets struct {
	Centerline         orb.LineString `json:"centerline"` // the divider
	ForwardCenterline  orb.LineString `json:"forwardCenterline"`
	BackwardCenterline orb.LineString `json:"backwardCenterline,omitempty"`
	LaneEdgeRight      orb.LineString `json:"laneEdgeRight"`
	LaneEdgeLeft       orb.LineString `json:"laneEdgeLeft,omitempty"`
	AsphaltEdgeRight   orb.LineString `json:"asphaltEdgeRight"`
	AsphaltEdgeLeft    orb.LineString `json:"asphaltEdgeLeft,omitempty"`

	ForwardOffset  float64  `json:"forwardOffset"`
	BackwardOffset float64  `json:"backwardOffset"`
	LaneRight      float64  `json:"laneRight"`
	LaneLeft       float64  `json:"laneLeft"`
	AsphaltRight   float64  `json:"asphaltRight"`
	AsphaltLeft    float64  `json:"asphaltLeft"`
	OBB            geom.OBB `json:"obb"`
}

// Derive computes the cross-section polylines of a centerline. The forward
// direction runs along the polyline; "right" is right of travel. The divider
// centerline is not the road edge: a one-way road still keeps its forward
// lanes fully right of the divider.
func Derive(centerline orb.LineString, cfg Config) Offsets {
	cfg = cfg.Normalized()
	w := cfg.LaneWidth
	off := Offsets{
		Centerline:     centerline,
		ForwardOffset:  float64(cfg.LanesF) * w / 2,
		BackwardOffset: float64(cfg.LanesB) * w / 2,
		LaneRight:      float64(cfg.LanesF) * w,
		LaneLeft:       float64(cfg.LanesB) * w,
		AsphaltRight:   float64(cfg.LanesF)*w + cfg.Margin(),
		AsphaltLeft:    float64(cfg.LanesB)*w + cfg.Margin(),
	}
	off.ForwardCenterline = OffsetPolyline(centerline, off.ForwardOffset)
	off.LaneEdgeRight = OffsetPolyline(centerline, off.LaneRight)
	off.AsphaltEdgeRight = OffsetPolyline(centerline, off.AsphaltRight)
	if !cfg.OneWay() {
		off.BackwardCenterline = OffsetPolyline(centerline, -off.BackwardOffset)
		off.LaneEdgeLeft = OffsetPolyline(centerline, -off.LaneLeft)
		off.AsphaltEdgeLeft = OffsetPolyline(centerline, -off.AsphaltLeft)
	}
	off.OBB = footprint(centerline, cfg)
	return off
}

// footprint returns the oriented rectangle spanned by the asphalt extents
// along the piece chord.
func footprint(centerline orb.LineString, cfg Config) geom.OBB {
	if len(centerline) < 2 {
		return geom.OBB{}
	}
	from := centerline[0]
	to := centerline[len(centerline)-1]
	return geom.OBB{
		Center:     geom.Mid(from, to),
		Axis:       geom.Unit(geom.Sub(to, from)),
		HalfLength: geom.Dist(from, to) / 2,
		HalfRight:  cfg.HalfWidthRight(),
		HalfLeft:   cfg.HalfWidthLeft(),
	}
}

// OffsetPolyline shifts a polyline laterally; positive distance moves it
// right of the direction of travel. Interior joints use the averaged segment
// normals.
func OffsetPolyline(ls orb.LineString, distance float64) orb.LineString {
	n := len(ls)
	if n < 2 {
		return nil
	}
	out := make(orb.LineString, n)
	for i := 0; i < n; i++ {
		var dir orb.Point
		switch i {
		case 0:
			dir = geom.Unit(geom.Sub(ls[1], ls[0]))
		case n - 1:
			dir = geom.Unit(geom.Sub(ls[n-1], ls[n-2]))
		default:
			d1 := geom.Unit(geom.Sub(ls[i], ls[i-1]))
			d2 := geom.Unit(geom.Sub(ls[i+1], ls[i]))
			dir = geom.Unit(geom.Add(d1, d2))
		}
		out[i] = geom.Add(ls[i], geom.Scale(geom.PerpRight(dir), distance))
	}
	return out
}
