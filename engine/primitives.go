package engine

import (
	"github.com/paulmach/orb"
)

// Primitive kinds emitted by Derive.
const (
	KindCenterline         = "centerline"
	KindForwardCenterline  = "forward_centerline"
	KindBackwardCenterline = "backward_centerline"
	KindLaneEdgeRight      = "lane_edge_right"
	KindLaneEdgeLeft       = "lane_edge_left"
	KindAsphaltEdgeRight   = "asphalt_edge_right"
	KindAsphaltEdgeLeft    = "asphalt_edge_left"
	KindJunctionSurface    = "junction_surface"
	KindTrimDroppedPiece   = "trim_dropped_piece"
	KindTrimRemovedPiece   = "trim_removed_piece"
)

// Primitive is a renderable debug/display element. The type is sealed: only
// PolylinePrimitive and PolygonPrimitive implement it.
type Primitive interface {
	Kind() string
	isPrimitive()
}

// PolylinePrimitive is an open polyline with a kind tag.
type PolylinePrimitive struct {
	PrimitiveKind string         `json:"kind"`
	Owner         string         `json:"owner,omitempty"` // road, edge or node id
	Points        orb.LineString `json:"points"`
}

func (p PolylinePrimitive) Kind() string { return p.PrimitiveKind }
func (p PolylinePrimitive) isPrimitive() {}

// PolygonPrimitive is a closed ring with a kind tag.
type PolygonPrimitive struct {
	PrimitiveKind string   `json:"kind"`
	Owner         string   `json:"owner,omitempty"`
	Ring          orb.Ring `json:"ring"`
}

func (p PolygonPrimitive) Kind() string { return p.PrimitiveKind }
func (p PolygonPrimitive) isPrimitive() {}

func polyline(kind, owner string, pts orb.LineString) Primitive {
	return PolylinePrimitive{PrimitiveKind: kind, Owner: owner, Points: pts}
}

func polygon(kind, owner string, ring orb.Ring) Primitive {
	return PolygonPrimitive{PrimitiveKind: kind, Owner: owner, Ring: ring}
}
