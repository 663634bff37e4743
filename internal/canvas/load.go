package canvas

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
	"github.com/pathbuilder/core/internal/models"
	"github.com/pathbuilder/core/internal/parser"
)

// ExportData returns a full snapshot in insertion order.
func (s *Store) ExportData() *models.Snapshot {
	snap := &models.Snapshot{
		Locations: make([]models.LocationRecord, 0, s.locations.Len()),
		Edges:     make([]models.EdgeRecord, 0, s.edges.Len()),
	}
	for loc := range s.locations.Values() {
		snap.Locations = append(snap.Locations, *loc.ToRecord())
	}
	for e := range s.edges.Values() {
		snap.Edges = append(snap.Edges, *e.ToRecord())
	}
	return snap
}

// ExportChanges compacts the change history into a diff.
func (s *Store) ExportChanges() models.Diff {
	return s.log.ExportChanges()
}

// LoadResult reports how much of an import was loaded.
type LoadResult struct {
	Loaded  int                    `json:"loaded"`
	Total   int                    `json:"total"`
	Skipped []models.SkippedRecord `json:"skipped,omitempty"`
}

// LoadData replaces the graph with batch. Locations load before edges; bad
// records are skipped and logged. Nothing is recorded in the change log,
// which is reset along with the selection.
func (s *Store) LoadData(batch *models.ImportBatch) LoadResult {
	s.Clear()
	res := LoadResult{Total: batch.Total}
	skip := func(index int, reason string) {
		s.logger.Warn("skipping import record", zap.Int("index", index), zap.String("reason", reason))
		res.Skipped = append(res.Skipped, models.SkippedRecord{Index: index, Reason: reason})
	}
	for _, sk := range batch.Skipped {
		skip(sk.Index, sk.Reason)
	}

	for _, imp := range batch.Locations {
		loc, err := s.NewLocation(graph.LocationInit{
			Key:      imp.EffectiveKey(),
			Name:     string(imp.Name),
			Position: geometry.Pt(float64(*imp.X), float64(*imp.Y)),
			Kind:     drawables.Kind(imp.Shape),
			Data:     imp.Data,
		})
		if err == nil {
			err = s.insertLocation(loc)
		}
		if err != nil {
			skip(imp.Index, fmt.Sprintf("location: %v", err))
			continue
		}
		res.Loaded++
	}

	for _, imp := range batch.Edges {
		start, end := string(imp.Start), string(imp.End)
		a, okA := s.locations.Get(start)
		b, okB := s.locations.Get(end)
		if !okA || !okB {
			skip(imp.Index, fmt.Sprintf("edge: missing endpoint for %s-%s", start, end))
			continue
		}
		if s.edges.Has(graph.EdgeKey(start, end)) {
			skip(imp.Index, fmt.Sprintf("edge: duplicate %s-%s", start, end))
			continue
		}
		weight := 1.0
		if imp.Weight != nil {
			weight = float64(*imp.Weight)
		}
		e, err := graph.NewEdge(a, b, s, weight, drawables.Style{Stroke: s.params.EdgeStroke})
		if err != nil {
			skip(imp.Index, fmt.Sprintf("edge: %v", err))
			continue
		}
		s.insertEdge(e)
		res.Loaded++
	}

	s.logger.Info("import loaded", zap.Int("loaded", res.Loaded), zap.Int("total", res.Total))
	return res
}

// ImportJSON parses data and loads it. Only a document that cannot be read at
// all is an error; the graph is left untouched then.
func (s *Store) ImportJSON(data []byte) (LoadResult, error) {
	batch, err := parser.ParseImport(data)
	if err != nil {
		return LoadResult{}, err
	}
	return s.LoadData(batch), nil
}
