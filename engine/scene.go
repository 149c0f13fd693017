package engine

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/fillet"
	"github.com/rogelgarcia/bus-simulator-sub007/lanes"
	"github.com/rogelgarcia/bus-simulator-sub007/network"
)

var (
	// ErrEmptyRoadID indicates a road without an identifier.
	ErrEmptyRoadID = errors.New("road id must not be empty")
	// ErrUnknownConnector indicates a merged-connector id that no junction
	// produces.
	ErrUnknownConnector = errors.New("unknown connector id")
	// ErrUnknownCandidate indicates a manual junction referencing a node id
	// that the road network does not contain.
	ErrUnknownCandidate = errors.New("unknown junction candidate id")
)

// RoadWaypoint is one authored waypoint: a tile-relative position plus the
// optional corner rounding overrides.
type RoadWaypoint struct {
	Tile          TileRef `json:"tile"`
	Radius        float64 `json:"radius,omitempty"`
	TangentFactor float64 `json:"tangentFactor,omitempty"`
}

// Road is one authored road.
type Road struct {
	ID        string         `json:"id"`
	Waypoints []RoadWaypoint `json:"waypoints"`
	Lanes     lanes.Config   `json:"lanes"`
}

// Scene is the complete authored state. Deriving a scene is pure: the same
// scene always yields the same snapshot, byte for byte.
type Scene struct {
	Settings         Settings `json:"settings"`
	Roads            []Road   `json:"roads"`
	MergedConnectors []string `json:"mergedConnectors,omitempty"`
}

// worldLine maps a road's waypoints to world coordinates.
func (r Road) worldLine(s Settings) orb.LineString {
	ls := make(orb.LineString, len(r.Waypoints))
	for i, wp := range r.Waypoints {
		ls[i] = wp.Tile.World(s)
	}
	return ls
}

// filletWaypoints maps a road to the corner-rounding solver input.
func (r Road) filletWaypoints(s Settings) []fillet.Waypoint {
	wps := make([]fillet.Waypoint, len(r.Waypoints))
	for i, wp := range r.Waypoints {
		wps[i] = fillet.Waypoint{
			Pos:           wp.Tile.World(s),
			Radius:        wp.Radius,
			TangentFactor: wp.TangentFactor,
		}
	}
	return wps
}

// validate checks the authored state before derivation. Derivation is
// all-or-nothing: any invalid road aborts the whole scene.
func (sc *Scene) validate() error {
	for _, r := range sc.Roads {
		if r.ID == "" {
			return ErrEmptyRoadID
		}
		if len(r.Waypoints) < 2 {
			return fmt.Errorf("%w: road %s has %d waypoints", network.ErrRoadTooShort, r.ID, len(r.Waypoints))
		}
	}
	return nil
}

// MergeConnectorIntoRoad records that a same-road connector should be treated
// as part of its road again. The id must come from the current derivation.
func (sc *Scene) MergeConnectorIntoRoad(d *Derived, id string) error {
	if !d.hasConnector(id) {
		return fmt.Errorf("%w: %s", ErrUnknownConnector, id)
	}
	for _, m := range sc.MergedConnectors {
		if m == id {
			return nil
		}
	}
	sc.MergedConnectors = append(sc.MergedConnectors, id)
	return nil
}

// UnmergeConnector reverts MergeConnectorIntoRoad.
func (sc *Scene) UnmergeConnector(id string) {
	out := sc.MergedConnectors[:0]
	for _, m := range sc.MergedConnectors {
		if m != id {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		sc.MergedConnectors = nil
		return
	}
	sc.MergedConnectors = out
}
