package engine

import (
	"encoding/json"
)

// History is an undo/redo stack of authored scenes. Snapshots are deep
// copies; edits to the current scene never leak into stored states.
type History struct {
	stack []Scene
	pos   int
}

// NewHistory starts a history at the given scene.
func NewHistory(initial Scene) *History {
	return &History{stack: []Scene{cloneScene(initial)}}
}

// Current returns a copy of the scene at the history cursor.
func (h *History) Current() Scene {
	return cloneScene(h.stack[h.pos])
}

// Push records a new state and truncates any redo tail.
func (h *History) Push(sc Scene) {
	h.stack = append(h.stack[:h.pos+1], cloneScene(sc))
	h.pos = len(h.stack) - 1
}

// Undo steps back one state. It reports false at the oldest state.
func (h *History) Undo() (Scene, bool) {
	if h.pos == 0 {
		return h.Current(), false
	}
	h.pos--
	return h.Current(), true
}

// Redo steps forward one state. It reports false at the newest state.
func (h *History) Redo() (Scene, bool) {
	if h.pos == len(h.stack)-1 {
		return h.Current(), false
	}
	h.pos++
	return h.Current(), true
}

// CanUndo reports whether an older state exists.
func (h *History) CanUndo() bool { return h.pos > 0 }

// CanRedo reports whether a newer state exists.
func (h *History) CanRedo() bool { return h.pos < len(h.stack)-1 }

// cloneScene deep-copies a scene through its JSON form. Scenes are plain
// data, so the round trip is lossless.
func cloneScene(sc Scene) Scene {
	raw, err := json.Marshal(sc)
	if err != nil {
		panic("scene not serializable: " + err.Error())
	}
	var out Scene
	if err := json.Unmarshal(raw, &out); err != nil {
		panic("scene clone failed: " + err.Error())
	}
	return out
}
