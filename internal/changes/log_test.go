package changes

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
)

// memStore is a minimal graph owner that records through its log the same
// way the canvas store does.
type memStore struct {
	log         *Log
	locs        map[string]*graph.Location
	edges       map[string]*graph.Edge
	invalidated int
}

func newMemStore(opts ...Option) *memStore {
	s := &memStore{
		locs:  map[string]*graph.Location{},
		edges: map[string]*graph.Edge{},
	}
	opts = append([]Option{WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) })}, opts...)
	s.log = NewLog(s, opts...)
	return s
}

func (s *memStore) add(t *testing.T, key string, x, y float64) *graph.Location {
	t.Helper()
	loc, err := graph.NewLocation(graph.LocationInit{Key: key, Position: geometry.Pt(x, y)}, nil)
	require.NoError(t, err)
	require.NoError(t, s.RestoreLocation(loc))
	return loc
}

func (s *memStore) connect(t *testing.T, a, b *graph.Location, weight float64) *graph.Edge {
	t.Helper()
	e, err := graph.NewEdge(a, b, nil, weight, drawables.Style{})
	require.NoError(t, err)
	require.True(t, s.RestoreEdge(e))
	return e
}

func (s *memStore) RestoreLocation(loc *graph.Location) error {
	if _, ok := s.locs[loc.Key()]; ok {
		return &graph.UniquenessError{Key: loc.Key()}
	}
	s.locs[loc.Key()] = loc
	s.log.RecordAdd(loc)
	return nil
}

func (s *memStore) RemoveLocation(key string) bool {
	loc, ok := s.locs[key]
	if !ok {
		return false
	}
	for _, n := range loc.Neighbors() {
		s.RemoveEdge(key, n)
	}
	delete(s.locs, key)
	s.log.RecordRemove(loc)
	return true
}

func (s *memStore) RestoreEdge(e *graph.Edge) bool {
	if s.locs[e.Start().Key()] != e.Start() || s.locs[e.End().Key()] != e.End() {
		return false
	}
	if _, ok := s.edges[e.Key()]; ok {
		return false
	}
	s.edges[e.Key()] = e
	e.Start().AddNeighbor(e.End().Key())
	e.End().AddNeighbor(e.Start().Key())
	s.log.RecordAdd(e)
	return true
}

func (s *memStore) RemoveEdge(start, end string) bool {
	e, ok := s.edges[graph.EdgeKey(start, end)]
	if !ok {
		return false
	}
	delete(s.edges, e.Key())
	e.Start().RemoveNeighbor(e.End().Key())
	e.End().RemoveNeighbor(e.Start().Key())
	s.log.RecordRemove(e)
	return true
}

func (s *memStore) Invalidate() {
	s.invalidated++
}

func (s *memStore) keys() []string {
	var keys []string
	for k := range s.locs {
		keys = append(keys, k)
	}
	for k := range s.edges {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestUndoRedoEmpty(t *testing.T) {
	s := newMemStore()

	ok, err := s.log.Undo()
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.log.Redo()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, s.log.IsEmpty())
}

func TestAddRemoveUndo(t *testing.T) {
	s := newMemStore()
	loc := s.add(t, "a", 0, 0)
	require.True(t, s.RemoveLocation("a"))

	for range 2 {
		ok, err := s.log.Undo()
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Empty(t, s.keys())
	assert.Equal(t, 0, s.log.UndoCount())
	assert.Equal(t, 2, s.log.RedoCount())

	t.Run("redo restores the same object", func(t *testing.T) {
		ok, err := s.log.Redo()
		require.NoError(t, err)
		require.True(t, ok)

		assert.Same(t, loc, s.locs["a"])
	})
}

func TestRemoveLocationWithEdges(t *testing.T) {
	s := newMemStore()
	a := s.add(t, "a", 0, 0)
	b := s.add(t, "b", 10, 0)
	c := s.add(t, "c", 0, 10)
	s.connect(t, a, b, 2)
	s.connect(t, a, c, 1)
	before := s.keys()
	require.Equal(t, 5, s.log.UndoCount())

	require.True(t, s.RemoveLocation("a"))
	assert.Equal(t, 8, s.log.UndoCount(), "two edge removals and the location")
	assert.Empty(t, b.Neighbors())

	for range 3 {
		_, err := s.log.Undo()
		require.NoError(t, err)
	}

	assert.Equal(t, before, s.keys())
	assert.ElementsMatch(t, []string{"b", "c"}, a.Neighbors())
	assert.Equal(t, []string{"a"}, b.Neighbors())
	assert.Equal(t, 5, s.log.UndoCount())

	t.Run("redo removes again", func(t *testing.T) {
		for range 3 {
			_, err := s.log.Redo()
			require.NoError(t, err)
		}

		assert.Equal(t, []string{"b", "c"}, s.keys())
		assert.Equal(t, 8, s.log.UndoCount())
	})
}

func TestUndoAddIgnoresCascade(t *testing.T) {
	s := newMemStore()
	a := s.add(t, "a", 0, 0)
	b := s.add(t, "b", 10, 0)
	c := s.add(t, "c", 0, 10)
	s.connect(t, b, a, 1)
	s.connect(t, c, a, 1)
	s.log.Reset()
	s.log.RecordAdd(a)

	ok, err := s.log.Undo()

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, s.keys())
	assert.Equal(t, 0, s.log.UndoCount(), "cascading removals are not recorded")
	assert.Equal(t, 1, s.log.RedoCount())

	s.add(t, "d", 5, 5)
	assert.Equal(t, 1, s.log.UndoCount(), "ignore counter is back to zero")
}

func TestUndoUntilEmpty(t *testing.T) {
	s := newMemStore()
	a := s.add(t, "a", 0, 0)
	b := s.add(t, "b", 10, 0)
	e := s.connect(t, a, b, 1)
	require.NoError(t, s.log.RecordMutate(a, PropName, "a", "Atrium"))
	a.SetName("Atrium")
	require.NoError(t, s.log.RecordMutate(e, PropWeight, 1.0, 3.0))
	e.SetWeight(3)
	require.NoError(t, s.log.RecordGrab(b, b.Position()))
	b.MoveTo(geometry.Pt(40, 40))
	s.log.RecordDrop(b, b.Position())
	require.True(t, s.RemoveLocation("b"))

	for {
		ok, err := s.log.Undo()
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	assert.Empty(t, s.keys())
	assert.Equal(t, "a", a.Name())
	assert.Equal(t, geometry.Pt(10, 0), b.Position())
	assert.Equal(t, 1.0, e.Weight())

	t.Run("redo all reproduces the final state", func(t *testing.T) {
		for {
			ok, err := s.log.Redo()
			require.NoError(t, err)
			if !ok {
				break
			}
		}

		assert.Equal(t, []string{"a"}, s.keys())
		assert.Equal(t, "Atrium", a.Name())
		assert.Equal(t, geometry.Pt(40, 40), b.Position())
		assert.Equal(t, 3.0, e.Weight())
	})
}

func TestGrabDrop(t *testing.T) {
	t.Run("drop at the grab point leaves no entries", func(t *testing.T) {
		s := newMemStore()
		a := s.add(t, "a", 0, 0)
		s.add(t, "b", 10, 10)
		n := s.log.UndoCount()

		require.NoError(t, s.log.RecordGrab(a, geometry.Pt(0, 0)))
		s.log.RecordDrop(a, geometry.Pt(0, 0))

		assert.Equal(t, n, s.log.UndoCount())
	})

	t.Run("moving a fresh location is not logged", func(t *testing.T) {
		s := newMemStore()
		a := s.add(t, "a", 0, 0)

		require.NoError(t, s.log.RecordGrab(a, geometry.Pt(0, 0)))
		a.MoveTo(geometry.Pt(30, 0))
		s.log.RecordDrop(a, geometry.Pt(30, 0))

		assert.Equal(t, 1, s.log.UndoCount())
		last, ok := s.log.LastChange()
		require.True(t, ok)
		assert.Equal(t, Add, last.Kind)
	})

	t.Run("undo and redo move as one unit", func(t *testing.T) {
		s := newMemStore()
		a := s.add(t, "a", 0, 0)
		s.add(t, "b", 10, 10)
		require.NoError(t, s.log.RecordGrab(a, a.Position()))
		a.MoveTo(geometry.Pt(25, 5))
		s.log.RecordDrop(a, a.Position())

		ok, err := s.log.Undo()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, geometry.Pt(0, 0), a.Position())
		assert.Equal(t, 2, s.log.UndoCount())
		assert.Equal(t, 2, s.log.RedoCount())

		ok, err = s.log.Redo()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, geometry.Pt(25, 5), a.Position())
		assert.Equal(t, 4, s.log.UndoCount())
		assert.Equal(t, 0, s.log.RedoCount())
		assert.Positive(t, s.invalidated)
	})

	t.Run("grab over an open grab is a change error", func(t *testing.T) {
		s := newMemStore()
		a := s.add(t, "a", 0, 0)
		b := s.add(t, "b", 10, 10)
		require.NoError(t, s.log.RecordGrab(a, a.Position()))

		err := s.log.RecordGrab(b, b.Position())

		var changeErr *ChangeError
		require.True(t, errors.As(err, &changeErr))
		assert.Equal(t, Grab, changeErr.Change.Kind)
		assert.Same(t, b, changeErr.Change.Target)
		assert.Equal(t, 3, s.log.UndoCount(), "second grab is not logged")

		a.MoveTo(geometry.Pt(5, 5))
		s.log.RecordDrop(a, a.Position())
		ok, err := s.log.Undo()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, geometry.Pt(0, 0), a.Position())
	})

	t.Run("drop without grab is a change error", func(t *testing.T) {
		s := newMemStore()
		a := s.add(t, "a", 0, 0)
		s.add(t, "b", 10, 10)
		s.log.RecordDrop(a, geometry.Pt(3, 3))

		ok, err := s.log.Undo()

		assert.False(t, ok)
		var changeErr *ChangeError
		require.True(t, errors.As(err, &changeErr))
		assert.Equal(t, Drop, changeErr.Change.Kind)
		assert.Equal(t, 3, s.log.UndoCount(), "stack is left as it was")
	})
}

func TestRecordClearsRedo(t *testing.T) {
	s := newMemStore()
	s.add(t, "a", 0, 0)
	_, err := s.log.Undo()
	require.NoError(t, err)
	require.Equal(t, 1, s.log.RedoCount())

	s.add(t, "b", 0, 0)

	assert.Equal(t, 0, s.log.RedoCount())
	ok, err := s.log.Redo()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordMutate(t *testing.T) {
	s := newMemStore()
	a := s.add(t, "a", 0, 0)
	b := s.add(t, "b", 10, 0)
	e := s.connect(t, a, b, 1)

	t.Run("rejects values of the wrong type", func(t *testing.T) {
		var changeErr *ChangeError

		assert.ErrorAs(t, s.log.RecordMutate(a, PropName, 1, 2), &changeErr)
		assert.ErrorAs(t, s.log.RecordMutate(a, PropWeight, 1.0, 2.0), &changeErr)
		assert.ErrorAs(t, s.log.RecordMutate(e, PropName, "x", "y"), &changeErr)
		assert.ErrorAs(t, s.log.RecordMutate(e, PropWeight, nil, 2.0), &changeErr)
	})

	t.Run("shape undo restores the previous kind", func(t *testing.T) {
		old := a.Shape()
		shape, changed, err := a.UpdateShape(drawables.Circle)
		require.NoError(t, err)
		require.True(t, changed)
		require.NoError(t, s.log.RecordMutate(a, PropShape, old, shape))

		_, err = s.log.Undo()

		require.NoError(t, err)
		assert.Equal(t, graph.DefaultKind, a.Kind())
	})

	t.Run("stale value is a change error", func(t *testing.T) {
		require.NoError(t, s.log.RecordMutate(e, PropWeight, 1.0, 5.0))
		e.SetWeight(7)
		n := s.log.UndoCount()

		ok, err := s.log.Undo()

		assert.False(t, ok)
		var changeErr *ChangeError
		assert.ErrorAs(t, err, &changeErr)
		assert.Equal(t, n, s.log.UndoCount())
	})
}

func TestObserverAndExport(t *testing.T) {
	var events []string
	s := newMemStore(WithObserver(func(event string, c Change) {
		events = append(events, event+":"+c.Kind.String())
	}))
	s.add(t, "a", 0, 0)
	_, _ = s.log.Undo()
	_, _ = s.log.Redo()

	assert.Equal(t, []string{"record:add", "undo:add", "redo:add"}, events)

	diff := s.log.ExportChanges()
	assert.Len(t, diff.Added, 1)
	assert.Equal(t, 1, s.log.UndoCount(), "export leaves the history alone")
	assert.Len(t, s.log.Changes(), 1)
	assert.Equal(t, time.Unix(1_700_000_000, 0), s.log.Changes()[0].Timestamp)

	s.log.Reset()
	assert.True(t, s.log.IsEmpty())
}
