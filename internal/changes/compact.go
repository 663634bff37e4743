package changes

import (
	"slices"

	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
	"github.com/pathbuilder/core/internal/models"
)

type move struct {
	target Target
	from   *geometry.Point
	to     geometry.Point
}

// Compact reduces a change sequence, oldest first, to the minimal diff
// against the state before the first change. Targets created in the sequence
// are exported with their live state; their later edits are folded in rather
// than listed. Ordering within each bucket follows first appearance.
func Compact(changes []Change) models.Diff {
	var (
		additions []Target
		removals  []Target
		mutations []Change
		moves     []move
		grabs     = map[Target]geometry.Point{}
	)
	sameTarget := func(t Target) func(Target) bool {
		return func(o Target) bool { return o == t }
	}

	for _, c := range changes {
		switch c.Kind {
		case Add:
			additions = append(additions, c.Target)
		case Remove:
			mutations = slices.DeleteFunc(mutations, func(m Change) bool { return m.Target == c.Target })
			moves = slices.DeleteFunc(moves, func(m move) bool { return m.target == c.Target })
			if i := slices.IndexFunc(additions, sameTarget(c.Target)); i >= 0 {
				additions = slices.Delete(additions, i, i+1)
				continue
			}
			removals = append(removals, c.Target)
		case MutateLocation, MutateEdge:
			i := slices.IndexFunc(mutations, func(m Change) bool {
				return m.Target == c.Target && m.Property == c.Property
			})
			if i < 0 {
				mutations = append(mutations, c)
				continue
			}
			mutations[i] = c
		case Grab:
			grabs[c.Target] = c.Point()
		case Drop:
			i := slices.IndexFunc(moves, func(m move) bool { return m.target == c.Target })
			if i >= 0 {
				moves[i].to = c.Point()
				continue
			}
			m := move{target: c.Target, to: c.Point()}
			if from, ok := grabs[c.Target]; ok {
				m.from = &from
			}
			moves = append(moves, m)
		}
	}

	diff := models.Diff{
		Added:   []models.Record{},
		Removed: []models.Record{},
		Modded:  []models.ModRecord{},
		Moved:   []models.MoveRecord{},
	}

	added := make(map[Target]models.Record, len(additions))
	for _, t := range additions {
		rec := record(t)
		if rec == nil {
			continue
		}
		added[t] = rec
		diff.Added = append(diff.Added, rec)
	}
	for _, t := range removals {
		if rec := record(t); rec != nil {
			diff.Removed = append(diff.Removed, rec)
		}
	}

	for _, m := range mutations {
		if rec, ok := added[m.Target]; ok {
			foldMutation(rec, m)
			continue
		}
		diff.Modded = append(diff.Modded, models.ModRecord{
			Type:     models.TypeMod,
			Target:   m.Target.Key(),
			Property: string(m.Property),
			OldValue: exportValue(m.Old),
			NewValue: exportValue(m.New),
		})
	}

	for _, m := range moves {
		if rec, ok := added[m.target].(*models.LocationRecord); ok {
			rec.X, rec.Y = m.to.X, m.to.Y
			continue
		}
		diff.Moved = append(diff.Moved, models.MoveRecord{
			Type:     models.TypeMove,
			Target:   m.target.Key(),
			OldValue: m.from,
			NewValue: m.to,
		})
	}
	return diff
}

func record(t Target) models.Record {
	switch t := t.(type) {
	case *graph.Location:
		return t.ToRecord()
	case *graph.Edge:
		return t.ToRecord()
	}
	return nil
}

func foldMutation(rec models.Record, m Change) {
	switch r := rec.(type) {
	case *models.LocationRecord:
		switch m.Property {
		case PropName:
			r.Name, _ = m.New.(string)
		case PropShape:
			if kind, ok := exportValue(m.New).(string); ok {
				r.Shape = kind
			}
		}
	case *models.EdgeRecord:
		if w, ok := m.New.(float64); ok {
			r.Weight = w
		}
	}
}
