package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathbuilder/core/internal/models"
)

func flex(v float64) *models.FlexFloat {
	f := models.FlexFloat(v)
	return &f
}

func loc(index int, key string, x, y float64) models.LocationImport {
	return models.LocationImport{Index: index, Key: models.FlexString(key), X: flex(x), Y: flex(y)}
}

func TestBuildSnapshot(t *testing.T) {
	t.Run("empty batch returns empty snapshot", func(t *testing.T) {
		snap, skipped := BuildSnapshot(&models.ImportBatch{})

		assert.NotNil(t, snap)
		assert.Empty(t, snap.Locations)
		assert.Empty(t, snap.Edges)
		assert.Empty(t, skipped)
		assert.Equal(t, 0, snap.Stats.TotalLocations)
	})

	t.Run("locations get defaults", func(t *testing.T) {
		snap, _ := BuildSnapshot(&models.ImportBatch{
			Locations: []models.LocationImport{loc(0, "a", 1, 2)},
		})

		require.Len(t, snap.Locations, 1)
		rec := snap.Locations[0]
		assert.Equal(t, "Location", rec.Type)
		assert.Equal(t, "a", rec.Name)
		assert.Equal(t, "Star", rec.Shape)
		assert.Equal(t, 1.0, rec.X)
		assert.Equal(t, 2.0, rec.Y)
		assert.Equal(t, []string{}, rec.NeighborKeys)
	})

	t.Run("edges derive keys and neighbors", func(t *testing.T) {
		snap, skipped := BuildSnapshot(&models.ImportBatch{
			Locations: []models.LocationImport{loc(0, "b", 0, 0), loc(1, "a", 10, 0)},
			Edges: []models.EdgeImport{
				{Index: 2, Start: "b", End: "a", Weight: flex(-5)},
				{Index: 3, Start: "a", End: "b", Weight: flex(3)},
			},
		})

		assert.Empty(t, skipped)
		require.Len(t, snap.Edges, 1, "duplicate pairs are not added")
		assert.Equal(t, "a\tb", snap.Edges[0].Key)
		assert.Equal(t, 1.0, snap.Edges[0].Weight)
		assert.Equal(t, []string{"a"}, snap.Locations[0].NeighborKeys)
		assert.Equal(t, []string{"b"}, snap.Locations[1].NeighborKeys)
		assert.Equal(t, 1, snap.Stats.TotalEdges)
		assert.Equal(t, map[string]int{"Star": 2}, snap.Stats.LocationsByShape)
	})

	t.Run("duplicates and dangling edges are skipped", func(t *testing.T) {
		snap, skipped := BuildSnapshot(&models.ImportBatch{
			Locations: []models.LocationImport{loc(0, "a", 0, 0), loc(2, "a", 5, 5)},
			Edges:     []models.EdgeImport{{Index: 3, Start: "a", End: "zz"}},
			Skipped:   []models.SkippedRecord{{Index: 1, Reason: "record is not an object"}},
		})

		require.Len(t, snap.Locations, 1)
		assert.Equal(t, 0.0, snap.Locations[0].X, "first record wins")
		assert.Empty(t, snap.Edges)
		require.Len(t, skipped, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{skipped[0].Index, skipped[1].Index, skipped[2].Index})
		assert.Contains(t, skipped[1].Reason, "duplicate key")
		assert.Contains(t, skipped[2].Reason, "missing endpoint")
	})
}
