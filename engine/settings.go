package engine

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
	"github.com/rogelgarcia/bus-simulator-sub007/lanes"
)

// Defaults applied by Settings.Normalized.
const (
	DefaultTileSize     = 12.0
	DefaultCornerRadius = 4.0
	DefaultChordLength  = 1.0
	DefaultThreshold    = 0.25
)

// DebugSettings toggles diagnostic primitives in the derived output.
type DebugSettings struct {
	DroppedPieces bool `json:"droppedPieces,omitempty"`
	RemovedPieces bool `json:"removedPieces,omitempty"`
}

// TrimSettings tunes the overlap trim pass.
type TrimSettings struct {
	Threshold float64       `json:"threshold"`
	Debug     DebugSettings `json:"debug,omitempty"`
}

// ManualJunction promotes junction candidates (node ids) to declared
// junctions with synthesized boundary polygons.
type ManualJunction struct {
	CandidateIDs []string `json:"candidateIds"`
}

// JunctionSettings tunes junction synthesis.
type JunctionSettings struct {
	ManualJunctions []ManualJunction `json:"manualJunctions,omitempty"`
	FilletRadius    float64          `json:"filletRadius"`
}

// Settings is the scene-wide configuration. All geometry is derived in world
// units; authored coordinates are tile-relative and mapped through Origin and
// TileSize.
type Settings struct {
	Origin              orb.Point        `json:"origin"`
	TileSize            float64          `json:"tileSize"`
	LaneWidth           float64          `json:"laneWidth"`
	MarginFactor        float64          `json:"marginFactor"`
	DefaultCornerRadius float64          `json:"defaultCornerRadius"`
	ChordLength         float64          `json:"chordLength"`
	Trim                TrimSettings     `json:"trim"`
	Junctions           JunctionSettings `json:"junctions"`
}

// Normalized fills in defaults for omitted values.
func (s Settings) Normalized() Settings {
	if s.TileSize <= 0 {
		s.TileSize = DefaultTileSize
	}
	if s.LaneWidth <= 0 {
		s.LaneWidth = lanes.DefaultLaneWidth
	}
	if s.MarginFactor < 0 {
		s.MarginFactor = 0
	}
	if s.DefaultCornerRadius <= 0 {
		s.DefaultCornerRadius = DefaultCornerRadius
	}
	if s.ChordLength <= 0 {
		s.ChordLength = DefaultChordLength
	}
	if s.Trim.Threshold <= 0 {
		s.Trim.Threshold = DefaultThreshold
	}
	if s.Junctions.FilletRadius <= 0 {
		s.Junctions.FilletRadius = s.DefaultCornerRadius
	}
	return s
}

// TileRef addresses a point by tile cell plus a fractional offset from the
// tile center, each component in [-0.5, 0.5). Authoring tools may produce an
// offset of exactly +0.5; Canonical moves it to -0.5 of the adjacent tile so
// every point has one representation and node ids cannot depend on which
// neighbor authored them.
type TileRef struct {
	TileX   int     `json:"tileX"`
	TileY   int     `json:"tileY"`
	OffsetU float64 `json:"offsetU,omitempty"`
	OffsetV float64 `json:"offsetV,omitempty"`
}

// Canonical normalizes the offsets into [-0.5, 0.5), carrying overflow into
// the tile coordinates.
func (t TileRef) Canonical() TileRef {
	t.TileX, t.OffsetU = carry(t.TileX, t.OffsetU)
	t.TileY, t.OffsetV = carry(t.TileY, t.OffsetV)
	return t
}

func carry(tile int, offset float64) (int, float64) {
	shifted := offset + 0.5
	cells := math.Floor(shifted)
	return tile + int(cells), shifted - cells - 0.5
}

// World maps the reference to a ground-plane point: tile centers sit at
// Origin + TileSize*(index + 0.5).
func (t TileRef) World(s Settings) orb.Point {
	c := t.Canonical()
	return geom.Add(s.Origin, geom.Pt(
		s.TileSize*(float64(c.TileX)+0.5+c.OffsetU),
		s.TileSize*(float64(c.TileY)+0.5+c.OffsetV),
	))
}
