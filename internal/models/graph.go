// Package models defines the JSON records exchanged with the editor: full
// snapshots, compacted change diffs and the loosely typed import records.
package models

import "github.com/pathbuilder/core/internal/geometry"

const (
	TypeLocation = "Location"
	TypeEdge     = "Edge"
	TypeMod      = "mod"
	TypeMove     = "move"
)

// Record is a Location or Edge export record.
type Record interface {
	RecordKey() string
	RecordType() string
}

// Snapshot is the full export of a graph.
type Snapshot struct {
	Locations []LocationRecord `json:"locations"`
	Edges     []EdgeRecord     `json:"edges"`
	Stats     *Stats           `json:"stats,omitempty"`
}

type LocationRecord struct {
	Type         string   `json:"type"`
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Shape        string   `json:"shape"`
	Data         any      `json:"data"`
	NeighborKeys []string `json:"neighborKeys"`
}

func (r *LocationRecord) RecordKey() string  { return r.Key }
func (r *LocationRecord) RecordType() string { return TypeLocation }

type EdgeRecord struct {
	Type   string  `json:"type"`
	Key    string  `json:"key"`
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Weight float64 `json:"weight"`
}

func (r *EdgeRecord) RecordKey() string  { return r.Key }
func (r *EdgeRecord) RecordType() string { return TypeEdge }

// Diff is the compacted form of a change history.
type Diff struct {
	Added   []Record     `json:"added"`
	Removed []Record     `json:"removed"`
	Modded  []ModRecord  `json:"modded"`
	Moved   []MoveRecord `json:"moved"`
}

type ModRecord struct {
	Type     string `json:"type"`
	Target   string `json:"target"`
	Property string `json:"property"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

type MoveRecord struct {
	Type     string          `json:"type"`
	Target   string          `json:"target"`
	OldValue *geometry.Point `json:"oldValue,omitempty"`
	NewValue geometry.Point  `json:"newValue"`
}

type Stats struct {
	TotalLocations   int            `json:"total_locations"`
	TotalEdges       int            `json:"total_edges"`
	LocationsByShape map[string]int `json:"locations_by_shape,omitempty"`
}

// NewStats summarizes a snapshot.
func NewStats(s *Snapshot) *Stats {
	stats := &Stats{
		TotalLocations:   len(s.Locations),
		TotalEdges:       len(s.Edges),
		LocationsByShape: map[string]int{},
	}
	for _, loc := range s.Locations {
		stats.LocationsByShape[loc.Shape]++
	}
	return stats
}
