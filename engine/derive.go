/*
Package engine ties the geometry pipeline together: authored scenes (tile
coordinates, roads, settings) are derived into a renderable snapshot of road
segments, junction patches, and display primitives. Derivation is pure and
deterministic; the exported snapshot can be re-derived byte for byte.
*/
package engine

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/fillet"
	"github.com/rogelgarcia/bus-simulator-sub007/junction"
	"github.com/rogelgarcia/bus-simulator-sub007/lanes"
	"github.com/rogelgarcia/bus-simulator-sub007/mesh"
	"github.com/rogelgarcia/bus-simulator-sub007/network"
	"github.com/rogelgarcia/bus-simulator-sub007/trim"
)

// tracer writes to trace with key 'engine'
func tracer() tracing.Trace {
	return tracing.Select("engine")
}

// Segment is one surviving piece of road surface after trimming. Corners are
// the asphalt boundary points at both ends, clockwise from the rear-right.
type Segment struct {
	EdgeID  network.EdgeID `json:"edgeId"`
	RoadID  string         `json:"roadId"`
	Span    trim.Piece     `json:"span"`
	Offsets lanes.Offsets  `json:"offsets"`
	Corners orb.Ring       `json:"corners"`
	Surface *mesh.Mesh     `json:"surface,omitempty"`
}

// JunctionPatch is a synthesized junction with its triangulated surface.
type JunctionPatch struct {
	junction.Junction
	Surface *mesh.Mesh `json:"surface,omitempty"`
}

// EndpointCandidate is a free road end that could be joined to a junction.
type EndpointCandidate struct {
	RoadID string         `json:"roadId"`
	End    string         `json:"end"` // "start" or "end"
	Pos    orb.Point      `json:"pos"`
	Edge   network.EdgeID `json:"edge"` // terminal piece of the road
}

// CornerCandidate is a 2-edge node eligible for junction promotion.
type CornerCandidate struct {
	NodeID network.NodeID   `json:"nodeId"`
	Pos    orb.Point        `json:"pos"`
	Edges  []network.EdgeID `json:"edges"`
}

// Candidates lists the places a junction could be declared.
type Candidates struct {
	Endpoints []EndpointCandidate `json:"endpoints,omitempty"`
	Corners   []CornerCandidate   `json:"corners,omitempty"`
}

// Derived is the complete snapshot computed from a scene.
type Derived struct {
	Segments   []Segment       `json:"segments"`
	Junctions  []JunctionPatch `json:"junctions,omitempty"`
	Candidates Candidates      `json:"candidates"`
	Overlaps   []trim.Overlap  `json:"overlaps,omitempty"`
	Primitives []Primitive     `json:"primitives"`
}

func (d *Derived) hasConnector(id string) bool {
	for _, jp := range d.Junctions {
		for _, c := range jp.Connectors {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

// Derive computes the full snapshot for a scene: road graph, junction
// patches, lane offsets, trimmed segments, triangulated surfaces, and display
// primitives. It never mutates the scene.
func Derive(sc Scene) (*Derived, error) {
	s := sc.Settings.Normalized()
	if err := sc.validate(); err != nil {
		return nil, err
	}

	defs := make([]network.RoadDef, len(sc.Roads))
	cfgs := make(map[string]lanes.Config, len(sc.Roads))
	for i, r := range sc.Roads {
		defs[i] = network.RoadDef{ID: r.ID, Waypoints: r.worldLine(s)}
		cfgs[r.ID] = roadLanes(r, s)
	}
	net, err := network.Build(defs, 0)
	if err != nil {
		return nil, err
	}

	d := &Derived{}
	if err := d.buildJunctions(net, cfgs, s); err != nil {
		return nil, err
	}
	if err := d.applyMergedConnectors(sc.MergedConnectors); err != nil {
		return nil, err
	}
	res := d.runTrim(net, cfgs, s)
	d.buildSegments(net, cfgs, res)
	d.collectCandidates(net, sc, s)
	if err := d.buildPrimitives(net, cfgs, sc, s, res); err != nil {
		return nil, err
	}
	tracer().Debugf("derived %d segments, %d junctions, %d primitives",
		len(d.Segments), len(d.Junctions), len(d.Primitives))
	return d, nil
}

// roadLanes resolves the per-road lane configuration against the scene-wide
// defaults.
func roadLanes(r Road, s Settings) lanes.Config {
	cfg := r.Lanes
	if cfg.LaneWidth <= 0 {
		cfg.LaneWidth = s.LaneWidth
	}
	if cfg.MarginFactor <= 0 {
		cfg.MarginFactor = s.MarginFactor
	}
	return cfg.Normalized()
}

// buildJunctions synthesizes corner joins at every 2-edge node and declared
// junctions at the manually promoted nodes.
func (d *Derived) buildJunctions(net *network.Network, cfgs map[string]lanes.Config, s Settings) error {
	declared := make(map[network.NodeID]bool)
	for _, mj := range s.Junctions.ManualJunctions {
		for _, id := range mj.CandidateIDs {
			nid := network.NodeID(id)
			if net.Node(nid) == nil {
				return fmt.Errorf("%w: %s", ErrUnknownCandidate, id)
			}
			declared[nid] = true
		}
	}

	params := junction.Params{
		FilletRadius: s.Junctions.FilletRadius,
		ChordLength:  s.ChordLength,
	}
	for _, node := range net.Nodes {
		if len(node.Edges) != 2 && !declared[node.ID] {
			continue
		}
		var incident []junction.Incident
		for _, e := range net.IncidentEdges(node.ID) {
			incident = append(incident, junction.Incident{Edge: e, Cfg: cfgs[e.RoadID]})
		}
		j, err := junction.Build(node, incident, params)
		if err != nil {
			return err
		}
		patch := JunctionPatch{Junction: *j}
		if len(j.Points) >= 3 {
			if m, err := mesh.Triangulate(j.Points); err == nil {
				patch.Surface = m
			} else {
				tracer().Infof("junction %s surface not triangulated: %v", node.ID, err)
			}
		}
		d.Junctions = append(d.Junctions, patch)
	}
	return nil
}

// applyMergedConnectors marks the connectors the author merged back into
// their road. Unknown ids abort the derivation.
func (d *Derived) applyMergedConnectors(ids []string) error {
	for _, id := range ids {
		if !d.hasConnector(id) {
			return fmt.Errorf("%w: %s", ErrUnknownConnector, id)
		}
		for ji := range d.Junctions {
			for ci := range d.Junctions[ji].Connectors {
				if d.Junctions[ji].Connectors[ci].ID == id {
					d.Junctions[ji].Connectors[ci].MergedIntoRoad = true
				}
			}
		}
	}
	return nil
}

// runTrim resolves overlapping footprints and junction coverage.
func (d *Derived) runTrim(net *network.Network, cfgs map[string]lanes.Config, s Settings) *trim.Result {
	footprints := make([]trim.EdgeFootprint, 0, len(net.Edges))
	for _, e := range net.Edges {
		off := lanes.Derive(orb.LineString{e.From, e.To}, cfgs[e.RoadID])
		footprints = append(footprints, trim.EdgeFootprint{Edge: e, Box: off.OBB})
	}
	zones := make([]trim.JunctionZone, 0, len(d.Junctions))
	for _, jp := range d.Junctions {
		if len(jp.Points) < 3 {
			continue // no boundary polygon, nothing to carve
		}
		zones = append(zones, trim.JunctionZone{NodeID: jp.NodeID, Ring: jp.Points})
	}
	res := trim.Run(footprints, zones, trim.Config{
		Threshold: s.Trim.Threshold,
		LaneWidth: s.LaneWidth,
	})
	d.Overlaps = res.Overlaps
	return res
}

// buildSegments derives lane offsets and surfaces for every kept piece.
func (d *Derived) buildSegments(net *network.Network, cfgs map[string]lanes.Config, res *trim.Result) {
	for _, p := range res.Kept {
		e := net.Edge(p.EdgeID)
		off := lanes.Derive(orb.LineString{p.From, p.To}, cfgs[e.RoadID])
		seg := Segment{
			EdgeID:  p.EdgeID,
			RoadID:  e.RoadID,
			Span:    p,
			Offsets: off,
			Corners: off.OBB.Corners(),
		}
		if m, err := mesh.Triangulate(off.OBB.Corners()); err == nil {
			seg.Surface = m
		} else {
			tracer().Infof("segment %s surface not triangulated: %v", p.EdgeID, err)
		}
		d.Segments = append(d.Segments, seg)
	}
}

// collectCandidates lists free road ends and 2-edge corner nodes.
func (d *Derived) collectCandidates(net *network.Network, sc Scene, s Settings) {
	for _, r := range sc.Roads {
		var first, last *network.Edge
		for _, e := range net.Edges {
			if e.RoadID != r.ID {
				continue
			}
			if first == nil {
				first = e
			}
			last = e
		}
		if first == nil {
			continue
		}
		line := r.worldLine(s)
		if net.NodeAt(line[0]) == nil {
			d.Candidates.Endpoints = append(d.Candidates.Endpoints,
				EndpointCandidate{RoadID: r.ID, End: "start", Pos: line[0], Edge: first.ID})
		}
		if net.NodeAt(line[len(line)-1]) == nil {
			d.Candidates.Endpoints = append(d.Candidates.Endpoints,
				EndpointCandidate{RoadID: r.ID, End: "end", Pos: line[len(line)-1], Edge: last.ID})
		}
	}
	for _, node := range net.Nodes {
		if len(node.Edges) == 2 {
			d.Candidates.Corners = append(d.Candidates.Corners, CornerCandidate{
				NodeID: node.ID,
				Pos:    node.Pos,
				Edges:  node.Edges,
			})
		}
	}
}

// buildPrimitives assembles the display primitives in a fixed order: road
// centerlines, segment offset polylines, junction surfaces, then the debug
// pieces enabled by the trim settings.
func (d *Derived) buildPrimitives(net *network.Network, cfgs map[string]lanes.Config, sc Scene, s Settings, res *trim.Result) error {
	for _, r := range sc.Roads {
		result, err := fillet.Fillet(r.filletWaypoints(s), s.DefaultCornerRadius, s.ChordLength)
		if err != nil {
			return fmt.Errorf("road %s: %w", r.ID, err)
		}
		d.Primitives = append(d.Primitives, polyline(KindCenterline, r.ID, result.Points))
	}
	for _, seg := range d.Segments {
		owner := string(seg.EdgeID)
		off := seg.Offsets
		d.Primitives = append(d.Primitives,
			polyline(KindForwardCenterline, owner, off.ForwardCenterline),
			polyline(KindLaneEdgeRight, owner, off.LaneEdgeRight),
			polyline(KindAsphaltEdgeRight, owner, off.AsphaltEdgeRight),
		)
		if off.BackwardCenterline != nil {
			d.Primitives = append(d.Primitives,
				polyline(KindBackwardCenterline, owner, off.BackwardCenterline),
				polyline(KindLaneEdgeLeft, owner, off.LaneEdgeLeft),
				polyline(KindAsphaltEdgeLeft, owner, off.AsphaltEdgeLeft),
			)
		}
	}
	for _, jp := range d.Junctions {
		if len(jp.Points) < 3 {
			continue
		}
		d.Primitives = append(d.Primitives, polygon(KindJunctionSurface, string(jp.NodeID), jp.Points))
	}
	if s.Trim.Debug.DroppedPieces {
		for _, p := range res.Dropped {
			d.Primitives = append(d.Primitives,
				polygon(KindTrimDroppedPiece, string(p.EdgeID), pieceRing(net, cfgs, p)))
		}
	}
	if s.Trim.Debug.RemovedPieces {
		for _, p := range res.Removed {
			d.Primitives = append(d.Primitives,
				polygon(KindTrimRemovedPiece, string(p.EdgeID), pieceRing(net, cfgs, p)))
		}
	}
	return nil
}

// pieceRing rebuilds the asphalt footprint of a trimmed-away piece.
func pieceRing(net *network.Network, cfgs map[string]lanes.Config, p trim.Piece) orb.Ring {
	e := net.Edge(p.EdgeID)
	off := lanes.Derive(orb.LineString{p.From, p.To}, cfgs[e.RoadID])
	return off.OBB.Corners()
}
