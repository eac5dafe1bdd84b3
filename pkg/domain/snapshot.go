package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is the only snapshot layout version accepted on load.
const SnapshotVersion = 1

// Snapshot is the JSON document exchanged with file import/export and stored
// in the persistence slot.
type Snapshot struct {
	Version       int            `json:"version"`
	Metadata      Metadata       `json:"metadata"`
	Objects       []Object       `json:"objects"`
	Relationships []Relationship `json:"relationships"`
	UpdatedAt     string         `json:"updatedAt"`
}

// Model returns the repository content carried by the snapshot.
func (s Snapshot) Model() Model {
	return Model{Metadata: s.Metadata, Objects: s.Objects, Relationships: s.Relationships}.Clone()
}

// MarshalJSON renders nil attribute maps as empty objects so nil and empty
// serialize identically.
func (a Attributes) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Value(a))
}

// EncodeSnapshot renders m as a versioned snapshot document.
func EncodeSnapshot(m Model, updatedAt time.Time) ([]byte, error) {
	m = normalized(m)
	doc := Snapshot{
		Version:       SnapshotVersion,
		Metadata:      m.Metadata,
		Objects:       m.Objects,
		Relationships: m.Relationships,
		UpdatedAt:     updatedAt.UTC().Format(time.RFC3339),
	}
	return json.Marshal(doc)
}

type rawSnapshot struct {
	Version       *int            `json:"version"`
	Metadata      json.RawMessage `json:"metadata"`
	Objects       json.RawMessage `json:"objects"`
	Relationships json.RawMessage `json:"relationships"`
	UpdatedAt     string          `json:"updatedAt"`
}

// DecodeSnapshot parses and structurally validates a snapshot document.
// Metadata is validated before objects and relationships are accepted; any
// mismatch fails the whole document.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, &MalformedSnapshotError{Reason: "invalid JSON", Err: err}
	}
	if raw.Version == nil {
		return Snapshot{}, &MalformedSnapshotError{Reason: "version is missing"}
	}
	if *raw.Version != SnapshotVersion {
		return Snapshot{}, &MalformedSnapshotError{Reason: fmt.Sprintf("unsupported version %d", *raw.Version)}
	}
	if isAbsent(raw.Metadata) {
		return Snapshot{}, &MalformedSnapshotError{Reason: "metadata is missing"}
	}
	var meta Metadata
	if err := json.Unmarshal(raw.Metadata, &meta); err != nil {
		return Snapshot{}, &MalformedSnapshotError{Reason: "metadata", Err: err}
	}
	if err := meta.Validate(); err != nil {
		return Snapshot{}, &MalformedSnapshotError{Reason: "metadata", Err: err}
	}

	objects := []Object{}
	if !isAbsent(raw.Objects) {
		if err := json.Unmarshal(raw.Objects, &objects); err != nil {
			return Snapshot{}, &MalformedSnapshotError{Reason: "objects", Err: err}
		}
	}
	relationships := []Relationship{}
	if !isAbsent(raw.Relationships) {
		if err := json.Unmarshal(raw.Relationships, &relationships); err != nil {
			return Snapshot{}, &MalformedSnapshotError{Reason: "relationships", Err: err}
		}
	}
	records := Model{Objects: objects, Relationships: relationships}
	if err := records.CheckRecords(); err != nil {
		return Snapshot{}, &MalformedSnapshotError{Reason: "records", Err: err}
	}

	return Snapshot{
		Version:       SnapshotVersion,
		Metadata:      meta,
		Objects:       objects,
		Relationships: relationships,
		UpdatedAt:     raw.UpdatedAt,
	}, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Canonical returns the deterministic serialization of m used for change
// detection and history. Keys are ordered lexicographically at every level
// and numbers keep their literal text.
func Canonical(m Model) ([]byte, error) {
	raw, err := json.Marshal(normalized(m))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// ModelFromCanonical restores a model previously produced by Canonical.
func ModelFromCanonical(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("decode canonical model: %w", err)
	}
	return normalized(m), nil
}

func normalized(m Model) Model {
	if m.Objects == nil {
		m.Objects = []Object{}
	}
	if m.Relationships == nil {
		m.Relationships = []Relationship{}
	}
	return m
}
