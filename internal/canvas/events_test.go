package canvas

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathbuilder/core/internal/changes"
	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
)

func down(x, y float64, mods Modifier) PointerEvent {
	return PointerEvent{Point: geometry.Pt(x, y), Mods: mods}
}

func TestDoubleClick(t *testing.T) {
	s := newTestStore()

	loc, err := s.DoubleClick(down(50, 50, 0))

	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, geometry.Pt(50, 50), loc.Position())
	assert.Equal(t, "(50,50)", loc.Name())
	assert.Equal(t, loc.Key(), s.SelectedKey())
	assert.Equal(t, 1, s.LocationCount())

	t.Run("on a location does nothing", func(t *testing.T) {
		again, err := s.DoubleClick(down(52, 48, 0))

		assert.NoError(t, err)
		assert.Nil(t, again)
		assert.Equal(t, 1, s.LocationCount())
	})

	t.Run("undo removes it", func(t *testing.T) {
		ok, err := s.Undo()

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, s.LocationCount())
		assert.Equal(t, "", s.SelectedKey())
	})
}

func TestDrag(t *testing.T) {
	s := newTestStore()
	a := mustCreate(t, s, "a", 0, 0)
	mustCreate(t, s, "b", 100, 0)
	n := s.Log().UndoCount()

	require.NoError(t, s.PointerDown(down(5, 5, 0)))
	assert.Equal(t, Dragging, s.State().Kind)
	assert.Same(t, a, s.State().Target)
	assert.Equal(t, geometry.Pt(5, 5), s.State().Offset)

	assert.True(t, s.PointerMove(down(25, 35, 0)))
	assert.Equal(t, geometry.Pt(20, 30), a.Position())
	assert.True(t, s.PointerUp(down(25, 35, 0)))
	assert.Equal(t, Idle, s.State().Kind)
	assert.Equal(t, n+2, s.Log().UndoCount(), "grab and drop")

	t.Run("moves after release are ignored", func(t *testing.T) {
		assert.False(t, s.PointerMove(down(90, 90, 0)))
		assert.Equal(t, geometry.Pt(20, 30), a.Position())
		assert.False(t, s.PointerUp(down(90, 90, 0)))
	})

	t.Run("undo returns to the grab point", func(t *testing.T) {
		_, err := s.Undo()

		require.NoError(t, err)
		assert.Equal(t, geometry.Pt(0, 0), a.Position())
		assert.Equal(t, n, s.Log().UndoCount())
	})

	t.Run("click without moving leaves no history", func(t *testing.T) {
		require.NoError(t, s.PointerDown(down(0, 0, 0)))
		s.PointerUp(down(0, 0, 0))

		assert.Equal(t, n, s.Log().UndoCount())
	})

	t.Run("history keys are ignored mid-drag", func(t *testing.T) {
		require.NoError(t, s.PointerDown(down(0, 0, 0)))
		s.PointerMove(down(10, 10, 0))

		used, err := s.KeyDown(KeyEvent{Key: "z", Mods: ModCtrl})
		assert.NoError(t, err)
		assert.False(t, used)
		used, err = s.KeyDown(KeyEvent{Key: KeyDelete})
		assert.NoError(t, err)
		assert.False(t, used)
		ok, err := s.Undo()
		assert.NoError(t, err)
		assert.False(t, ok)

		s.PointerUp(down(10, 10, 0))
		assert.Equal(t, 2, s.LocationCount())
	})
}

func kinds(s *Store) []changes.Kind {
	var out []changes.Kind
	for _, c := range s.Log().Changes() {
		out = append(out, c.Kind)
	}
	return out
}

func TestInterruptedDrag(t *testing.T) {
	t.Run("pointerdown without pointerup finishes the drag", func(t *testing.T) {
		s := newTestStore()
		a := mustCreate(t, s, "a", 0, 0)
		b := mustCreate(t, s, "b", 100, 0)

		require.NoError(t, s.PointerDown(down(0, 0, 0)))
		s.PointerMove(down(20, 20, 0))
		require.NoError(t, s.PointerDown(down(100, 0, 0)))
		assert.Same(t, b, s.State().Target)
		s.PointerMove(down(100, 50, 0))
		s.PointerUp(down(100, 50, 0))

		assert.Equal(t, []changes.Kind{
			changes.Add, changes.Add,
			changes.Grab, changes.Drop,
			changes.Grab, changes.Drop,
		}, kinds(s))

		for range 2 {
			ok, err := s.Undo()
			require.NoError(t, err)
			require.True(t, ok)
		}
		assert.Equal(t, geometry.Pt(0, 0), a.Position())
		assert.Equal(t, geometry.Pt(100, 0), b.Position())
		undoAll(t, s)
		assert.Equal(t, 0, s.LocationCount())
	})

	t.Run("edits during a drag finish it first", func(t *testing.T) {
		s := newTestStore()
		a := mustCreate(t, s, "a", 0, 0)
		mustCreate(t, s, "b", 100, 0)

		require.NoError(t, s.PointerDown(down(0, 0, 0)))
		s.PointerMove(down(20, 20, 0))
		name := "Bakery"
		changed, err := s.ModifyLocation("b", LocationDiff{Name: &name})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, Idle, s.State().Kind)
		assert.False(t, s.PointerUp(down(20, 20, 0)))

		assert.Equal(t, []changes.Kind{
			changes.Add, changes.Add,
			changes.Grab, changes.Drop,
			changes.MutateLocation,
		}, kinds(s))

		undoAll(t, s)
		assert.Equal(t, 0, s.LocationCount())
		assert.Equal(t, geometry.Pt(0, 0), a.Position())
	})

	t.Run("removing the dragged location keeps history whole", func(t *testing.T) {
		s := newTestStore()
		a := mustCreate(t, s, "a", 0, 0)
		mustCreate(t, s, "b", 100, 0)

		require.NoError(t, s.PointerDown(down(0, 0, 0)))
		s.PointerMove(down(20, 20, 0))
		require.True(t, s.RemoveLocation("a"))

		assert.Equal(t, Idle, s.State().Kind)
		undoAll(t, s)
		assert.Equal(t, 0, s.LocationCount())
		assert.Equal(t, geometry.Pt(0, 0), a.Position())
	})
}

func TestLinking(t *testing.T) {
	s := newTestStore()
	a := mustCreate(t, s, "A", 0, 0)
	mustCreate(t, s, "B", 100, 0)

	require.NoError(t, s.PointerDown(down(0, 0, 0)))
	s.PointerUp(down(0, 0, 0))
	require.Equal(t, "A", s.SelectedKey())

	require.NoError(t, s.PointerDown(down(100, 0, ModShift)))

	assert.Equal(t, 1, s.EdgeCount())
	assert.Equal(t, "A", s.SelectedKey(), "origin stays selected")
	assert.Equal(t, Idle, s.State().Kind)

	require.NoError(t, s.PointerDown(down(100, 0, ModShift)))

	assert.Equal(t, 1, s.EdgeCount(), "no duplicate edge")
	_, edge := s.Selection()
	require.NotNil(t, edge)
	assert.Equal(t, "A\tB", edge.Key())

	t.Run("link to empty canvas creates location and edge", func(t *testing.T) {
		require.True(t, s.Select("A"))
		n := s.Log().UndoCount()

		require.NoError(t, s.PointerDown(down(300, 300, ModShift)))

		assert.Equal(t, 3, s.LocationCount())
		assert.Equal(t, 2, s.EdgeCount())
		assert.Equal(t, n+2, s.Log().UndoCount())
		loc, _ := s.Selection()
		require.NotNil(t, loc)
		assert.Equal(t, geometry.Pt(300, 300), loc.Position())
		assert.True(t, a.HasNeighbor(loc.Key()))
	})

	t.Run("edge hit selects the edge", func(t *testing.T) {
		require.NoError(t, s.PointerDown(down(50, 0, 0)))

		_, edge := s.Selection()
		require.NotNil(t, edge)
		assert.Equal(t, "A\tB", edge.Key())
	})

	t.Run("empty click deselects", func(t *testing.T) {
		require.NoError(t, s.PointerDown(down(700, 10, 0)))

		assert.Equal(t, "", s.SelectedKey())
	})

	t.Run("secondary button is ignored", func(t *testing.T) {
		require.NoError(t, s.PointerDown(PointerEvent{Point: geometry.Pt(0, 0), Button: 2}))

		assert.Equal(t, "", s.SelectedKey())
	})
}

func TestHitTestingOrder(t *testing.T) {
	s := newTestStore()
	first := mustCreate(t, s, "first", 0, 0)
	mustCreate(t, s, "second", 10, 0)
	mustCreate(t, s, "third", 200, 0)
	_, _, err := s.CreateEdge("first", "third", 1)
	require.NoError(t, err)

	assert.Same(t, first, s.LocationAt(geometry.Pt(5, 0)), "first inserted wins")
	assert.Nil(t, s.EdgeAt(geometry.Pt(100, 50)))
	assert.NotNil(t, s.EdgeAt(geometry.Pt(100, 0)))

	require.NoError(t, s.PointerDown(down(15, 0, 0)))
	assert.Same(t, first, s.State().Target, "locations win over edges")
}

func TestKeyDown(t *testing.T) {
	t.Run("delete removes the selection", func(t *testing.T) {
		s := newTestStore()
		mustCreate(t, s, "a", 0, 0)
		mustCreate(t, s, "b", 100, 0)
		mustCreate(t, s, "c", 0, 100)
		_, _, err := s.CreateEdge("a", "b", 1)
		require.NoError(t, err)
		_, _, err = s.CreateEdge("a", "c", 1)
		require.NoError(t, err)
		require.True(t, s.Select("a"))

		used, err := s.KeyDown(KeyEvent{Key: KeyBackspace})

		require.NoError(t, err)
		assert.True(t, used)
		assert.Equal(t, 0, s.EdgeCount())
		assert.Equal(t, []string{"b", "c"}, s.LocationKeys())
		assert.Equal(t, "", s.SelectedKey())

		used, err = s.KeyDown(KeyEvent{Key: KeyDelete})
		assert.NoError(t, err)
		assert.False(t, used, "nothing selected")
	})

	t.Run("undo and redo keys follow the platform", func(t *testing.T) {
		s := newTestStore()
		mustCreate(t, s, "a", 0, 0)

		_, err := s.KeyDown(KeyEvent{Key: "z", Mods: ModCtrl})
		require.NoError(t, err)
		assert.Equal(t, 0, s.LocationCount())

		_, err = s.KeyDown(KeyEvent{Key: "y", Mods: ModCtrl})
		require.NoError(t, err)
		assert.Equal(t, 1, s.LocationCount())

		mac := PlatformMac
		s.UpdateParams(ParamsUpdate{Platform: &mac})
		used, err := s.KeyDown(KeyEvent{Key: "z", Mods: ModCtrl})
		require.NoError(t, err)
		assert.False(t, used)

		_, err = s.KeyDown(KeyEvent{Key: "z", Mods: ModMeta})
		require.NoError(t, err)
		assert.Equal(t, 0, s.LocationCount())

		_, err = s.KeyDown(KeyEvent{Key: "z", Mods: ModMeta | ModShift})
		require.NoError(t, err)
		assert.Equal(t, 1, s.LocationCount())
	})

	t.Run("arrows nudge within bounds", func(t *testing.T) {
		s := newTestStore()
		loc := mustCreate(t, s, "a", 100, 100)
		mustCreate(t, s, "b", 500, 500)
		require.True(t, s.Select("a"))
		n := s.Log().UndoCount()

		_, err := s.KeyDown(KeyEvent{Key: "ArrowRight"})
		require.NoError(t, err)
		assert.Equal(t, geometry.Pt(105, 100), loc.Position())

		_, err = s.KeyDown(KeyEvent{Key: "ArrowDown", Mods: ModShift})
		require.NoError(t, err)
		assert.Equal(t, geometry.Pt(105, 150), loc.Position())

		_, err = s.KeyDown(KeyEvent{Key: "ArrowLeft", Mods: ModCtrl})
		require.NoError(t, err)
		assert.Equal(t, geometry.Pt(104, 150), loc.Position())

		used, err := s.KeyDown(KeyEvent{Key: "ArrowLeft", Mods: ModAlt | ModShift})
		require.NoError(t, err)
		assert.False(t, used)

		for range 5 {
			_, err = s.KeyDown(KeyEvent{Key: "ArrowUp", Mods: ModShift})
			require.NoError(t, err)
		}
		assert.Equal(t, geometry.Pt(104, 0), loc.Position())
		assert.Equal(t, n+2*6, s.Log().UndoCount(), "each effective nudge is a grab and drop")
	})
}

func TestDispatch(t *testing.T) {
	s := newTestStore()

	used, err := s.Dispatch(Event{Type: EventDoubleClick, X: 40, Y: 40})
	require.NoError(t, err)
	assert.True(t, used)

	_, err = s.Dispatch(Event{Type: EventPointerDown, X: 40, Y: 40})
	require.NoError(t, err)
	used, err = s.Dispatch(Event{Type: EventPointerMove, X: 60, Y: 40})
	require.NoError(t, err)
	assert.True(t, used)
	_, err = s.Dispatch(Event{Type: EventPointerUp, X: 60, Y: 40})
	require.NoError(t, err)

	loc, _ := s.Selection()
	require.NotNil(t, loc)
	assert.Equal(t, geometry.Pt(60, 40), loc.Position())

	used, err = s.Dispatch(Event{Type: EventKeyDown, Key: "Delete"})
	require.NoError(t, err)
	assert.True(t, used)
	assert.Equal(t, 0, s.LocationCount())

	_, err = s.Dispatch(Event{Type: "wheel"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	params := DefaultParams()
	params.RefreshInterval = 5 * time.Millisecond
	s := newTestStore(WithParams(params))
	var mu sync.Mutex
	frames := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- s.Run(ctx, &mu, &drawables.Recorder{}, func() { frames <- struct{}{} })
	}()

	select {
	case <-frames:
	case <-time.After(time.Second):
		t.Fatal("no initial frame")
	}

	mu.Lock()
	_, err := s.CreateLocation(s.defaultInit(geometry.Pt(1, 1)))
	mu.Unlock()
	require.NoError(t, err)

	select {
	case <-frames:
	case <-time.After(time.Second):
		t.Fatal("no frame after a change")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
