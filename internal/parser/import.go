// Package parser provides utilities for parsing and transforming input data.
// It handles import normalization, validation, and conversion between formats.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/graph"
	"github.com/pathbuilder/core/internal/models"
)

var ErrEmptyImport = errors.New("empty import data")

type document struct {
	Locations []json.RawMessage `json:"locations"`
	Edges     []json.RawMessage `json:"edges"`
}

// ParseImport reads a snapshot object or a flat array of location and edge
// records. Records that cannot be used are listed in Skipped with a reason;
// only a document that is not JSON at all is an error.
func ParseImport(data []byte) (*models.ImportBatch, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyImport
	}

	var records []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal import: %w", err)
		}
	case '{':
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal import: %w", err)
		}
		if doc.Locations == nil && doc.Edges == nil {
			return nil, fmt.Errorf("invalid import: missing locations and edges")
		}
		records = append(doc.Locations, doc.Edges...)
	default:
		return nil, fmt.Errorf("invalid import: expected an object or an array")
	}

	batch := &models.ImportBatch{
		Locations: []models.LocationImport{},
		Edges:     []models.EdgeImport{},
		Total:     len(records),
	}
	for i, raw := range records {
		if err := parseRecord(batch, i, raw); err != nil {
			batch.Skipped = append(batch.Skipped, models.SkippedRecord{Index: i, Reason: err.Error()})
		}
	}
	return batch, nil
}

func parseRecord(batch *models.ImportBatch, index int, raw json.RawMessage) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || probe == nil {
		return fmt.Errorf("record is not an object")
	}

	_, hasStart := probe["start"]
	_, hasEnd := probe["end"]
	if hasStart || hasEnd {
		edge, err := parseEdge(raw)
		if err != nil {
			return fmt.Errorf("edge: %w", err)
		}
		edge.Index = index
		batch.Edges = append(batch.Edges, edge)
		return nil
	}

	loc, err := parseLocation(raw)
	if err != nil {
		return fmt.Errorf("location: %w", err)
	}
	loc.Index = index
	batch.Locations = append(batch.Locations, loc)
	return nil
}

func parseEdge(raw json.RawMessage) (models.EdgeImport, error) {
	var edge models.EdgeImport
	if err := json.Unmarshal(raw, &edge); err != nil {
		return edge, err
	}
	if err := ValidateStruct(edge); err != nil {
		return edge, err
	}
	return edge, nil
}

func parseLocation(raw json.RawMessage) (models.LocationImport, error) {
	var loc models.LocationImport
	if err := json.Unmarshal(raw, &loc); err != nil {
		return loc, err
	}
	if err := ValidateStruct(loc); err != nil {
		return loc, err
	}

	key := loc.EffectiveKey()
	if key == "" {
		return loc, fmt.Errorf("key or name is required")
	}
	if strings.Contains(key, graph.KeySeparator) {
		return loc, fmt.Errorf("key %q contains a tab", key)
	}
	if loc.Shape != "" {
		if _, ok := drawables.ParseKind(loc.Shape); !ok {
			return loc, fmt.Errorf("unknown shape %q", loc.Shape)
		}
	}
	return loc, nil
}
