package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FormatVersion is the on-disk schema version written by Export.
const FormatVersion = 1

var (
	// ErrUnsupportedVersion indicates a file written by an incompatible
	// schema version.
	ErrUnsupportedVersion = errors.New("unsupported file version")
	// ErrSnapshotMismatch indicates an imported file whose embedded snapshot
	// does not match re-derivation of its scene.
	ErrSnapshotMismatch = errors.New("derived snapshot does not match scene")
)

// envelope is the file layout: the authored scene plus the derived snapshot
// at the time of export. The snapshot is kept as raw JSON so Import can
// compare it against a fresh derivation without a second decoding schema.
type envelope struct {
	Version int             `json:"version"`
	Scene   Scene           `json:"scene"`
	Derived json.RawMessage `json:"derived,omitempty"`
}

// Export derives the scene and serializes scene and snapshot together.
func Export(sc Scene) ([]byte, error) {
	d, err := Derive(sc)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return json.MarshalIndent(envelope{
		Version: FormatVersion,
		Scene:   sc,
		Derived: raw,
	}, "", "  ")
}

// Import parses an exported file. Loading is all-or-nothing: unknown fields,
// invalid roads, or a stale embedded snapshot reject the whole file. On
// success the returned snapshot is freshly derived from the scene.
func Import(data []byte) (*Scene, *Derived, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, nil, fmt.Errorf("import: %w", err)
	}
	if env.Version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	d, err := Derive(env.Scene)
	if err != nil {
		return nil, nil, fmt.Errorf("import: %w", err)
	}
	if env.Derived != nil {
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, nil, fmt.Errorf("import: %w", err)
		}
		same, err := jsonEqual(raw, env.Derived)
		if err != nil {
			return nil, nil, fmt.Errorf("import: %w", err)
		}
		if !same {
			return nil, nil, ErrSnapshotMismatch
		}
	}
	return &env.Scene, d, nil
}

// jsonEqual compares two JSON documents ignoring whitespace.
func jsonEqual(a, b []byte) (bool, error) {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, a); err != nil {
		return false, err
	}
	if err := json.Compact(&cb, b); err != nil {
		return false, err
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes()), nil
}
