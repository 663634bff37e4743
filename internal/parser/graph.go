package parser

import (
	"fmt"
	"slices"

	"github.com/pathbuilder/core/internal/graph"
	"github.com/pathbuilder/core/internal/models"
)

// BuildSnapshot normalizes an import batch into the export shape without a
// live graph: duplicate keys keep their first record, edges need both
// endpoints, neighbor keys are derived from the surviving edges. Records
// dropped here are returned with the batch's own skips.
func BuildSnapshot(batch *models.ImportBatch) (*models.Snapshot, []models.SkippedRecord) {
	snap := &models.Snapshot{
		Locations: []models.LocationRecord{},
		Edges:     []models.EdgeRecord{},
	}
	skipped := slices.Clone(batch.Skipped)
	index := make(map[string]int)

	for _, imp := range batch.Locations {
		key := imp.EffectiveKey()
		if _, exists := index[key]; exists {
			skipped = append(skipped, models.SkippedRecord{
				Index:  imp.Index,
				Reason: fmt.Sprintf("location: duplicate key %q", key),
			})
			continue
		}
		index[key] = len(snap.Locations)
		snap.Locations = append(snap.Locations, buildLocation(imp))
	}

	seen := make(map[string]bool)
	for _, imp := range batch.Edges {
		start, end := string(imp.Start), string(imp.End)
		si, okStart := index[start]
		ei, okEnd := index[end]
		if !okStart || !okEnd {
			skipped = append(skipped, models.SkippedRecord{
				Index:  imp.Index,
				Reason: fmt.Sprintf("edge: missing endpoint for %s-%s", start, end),
			})
			continue
		}

		key := graph.EdgeKey(start, end)
		if seen[key] {
			continue
		}
		seen[key] = true

		snap.Edges = append(snap.Edges, models.EdgeRecord{
			Type:   models.TypeEdge,
			Key:    key,
			Start:  start,
			End:    end,
			Weight: edgeWeight(imp.Weight),
		})
		addNeighbor(&snap.Locations[si], end)
		addNeighbor(&snap.Locations[ei], start)
	}

	slices.SortFunc(skipped, func(a, b models.SkippedRecord) int { return a.Index - b.Index })
	snap.Stats = models.NewStats(snap)
	return snap, skipped
}

func buildLocation(imp models.LocationImport) models.LocationRecord {
	key := imp.EffectiveKey()
	name := string(imp.Name)
	if name == "" {
		name = key
	}
	shape := imp.Shape
	if shape == "" {
		shape = string(graph.DefaultKind)
	}

	return models.LocationRecord{
		Type:         models.TypeLocation,
		Key:          key,
		Name:         name,
		X:            float64(*imp.X),
		Y:            float64(*imp.Y),
		Shape:        shape,
		Data:         imp.Data,
		NeighborKeys: []string{},
	}
}

// edgeWeight applies the edge rule: missing or non-positive weights are 1.
func edgeWeight(w *models.FlexFloat) float64 {
	if w == nil || !(*w > 0) {
		return 1
	}
	return float64(*w)
}

func addNeighbor(rec *models.LocationRecord, key string) {
	if !slices.Contains(rec.NeighborKeys, key) {
		rec.NeighborKeys = append(rec.NeighborKeys, key)
	}
}
