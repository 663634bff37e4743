package canvas

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
)

// ButtonPrimary is the only pointer button the store reacts to.
const ButtonPrimary = 0

// PointerEvent carries a point already in logical canvas coordinates.
type PointerEvent struct {
	Point  geometry.Point
	Button int
	Mods   Modifier
}

// PointerDown selects, starts a drag or links locations. A drag still open
// because its pointerup was lost is finished first.
func (s *Store) PointerDown(ev PointerEvent) error {
	if ev.Button != ButtonPrimary {
		return nil
	}
	s.finishDrag()
	prev, _ := s.Selection()
	linking := ev.Mods.Has(s.params.LinkModifier)

	if loc := s.LocationAt(ev.Point); loc != nil {
		if linking && prev != nil && prev != loc {
			// A new edge keeps the origin selected for chained links; an
			// existing one gets selected.
			e, created, err := s.CreateEdge(prev.Key(), loc.Key(), 1)
			if err != nil {
				return err
			}
			if !created {
				s.Select(e.Key())
			}
			return nil
		}
		s.Select(loc.Key())
		return s.beginDrag(loc, ev.Point)
	}

	if e := s.EdgeAt(ev.Point); e != nil {
		s.Select(e.Key())
		return nil
	}

	if linking && prev != nil {
		loc, err := s.CreateLocation(s.defaultInit(ev.Point))
		if err != nil {
			return err
		}
		if _, _, err := s.CreateEdge(prev.Key(), loc.Key(), 1); err != nil {
			return err
		}
		s.Select(loc.Key())
		return nil
	}

	s.Deselect()
	return nil
}

func (s *Store) beginDrag(loc *graph.Location, at geometry.Point) error {
	if err := s.log.RecordGrab(loc, loc.Position()); err != nil {
		return err
	}
	s.state = State{Kind: Dragging, Target: loc, Offset: at.Sub(loc.Position())}
	return nil
}

// PointerMove drags the target. Moves outside a drag are ignored and it
// reports whether the event was used.
func (s *Store) PointerMove(ev PointerEvent) bool {
	if s.state.Kind != Dragging || s.state.Target == nil {
		return false
	}
	s.state.Target.MoveTo(ev.Point.Sub(s.state.Offset))
	s.Invalidate()
	return true
}

// PointerUp ends a drag and records the drop.
func (s *Store) PointerUp(ev PointerEvent) bool {
	if s.state.Kind != Dragging {
		return false
	}
	s.finishDrag()
	return true
}

// DoubleClick on empty canvas creates and selects a default location.
func (s *Store) DoubleClick(ev PointerEvent) (*graph.Location, error) {
	if s.state.Kind == Dragging || s.LocationAt(ev.Point) != nil {
		return nil, nil
	}
	loc, err := s.CreateLocation(s.defaultInit(ev.Point))
	if err != nil {
		return nil, err
	}
	s.Select(loc.Key())
	return loc, nil
}

func (s *Store) defaultInit(p geometry.Point) graph.LocationInit {
	return graph.LocationInit{
		Name:     fmt.Sprintf("(%g,%g)", p.X, p.Y),
		Position: p,
	}
}

// KeyDown runs keyboard commands: undo, redo, delete and arrow nudges. It
// reports whether the key was used. History and delete keys do nothing while
// dragging.
func (s *Store) KeyDown(ev KeyEvent) (bool, error) {
	if s.state.Kind == Dragging {
		return false, nil
	}
	platform := s.params.Platform

	switch {
	case IsUndo(ev, platform):
		_, err := s.Undo()
		return true, err
	case IsRedo(ev, platform):
		_, err := s.Redo()
		return true, err
	case IsDelete(ev):
		return s.removeSelection(), nil
	}

	if vec, ok := ArrowVector(ev.Key); ok {
		return s.nudge(vec, ev.Mods)
	}
	return false, nil
}

func (s *Store) removeSelection() bool {
	loc, e := s.Selection()
	switch {
	case loc != nil:
		return s.RemoveLocation(loc.Key())
	case e != nil:
		return s.RemoveEdge(e.Start().Key(), e.End().Key())
	}
	return false
}

func (s *Store) nudge(vec geometry.Point, mods Modifier) (bool, error) {
	loc, _ := s.Selection()
	if loc == nil {
		return false, nil
	}
	step, ok := ArrowStep(mods, s.params.Platform)
	if !ok {
		s.logger.Debug("unexpected arrow key combo", zap.Stringer("mods", mods))
		return false, nil
	}
	dest := geometry.Bound(loc.Position().Add(vec.Scale(step)), s.params.Bounds)
	return s.ModifyLocation(loc.Key(), LocationDiff{Position: &dest})
}

// Event types accepted by Dispatch.
const (
	EventPointerDown = "pointerdown"
	EventPointerMove = "pointermove"
	EventPointerUp   = "pointerup"
	EventDoubleClick = "dblclick"
	EventKeyDown     = "keydown"
)

// Event is the wire form of an input event. Device coordinates are converted
// with ToLogical first.
type Event struct {
	Type   string   `json:"type" validate:"required,oneof=pointerdown pointermove pointerup dblclick keydown"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Device bool     `json:"device,omitempty"`
	Button int      `json:"button,omitempty"`
	Key    string   `json:"key,omitempty"`
	Mods   []string `json:"mods,omitempty"`
}

// Dispatch routes ev to its handler and reports whether it had an effect.
func (s *Store) Dispatch(ev Event) (bool, error) {
	pt := geometry.Pt(ev.X, ev.Y)
	if ev.Device {
		pt = s.ToLogical(pt)
	}
	pe := PointerEvent{Point: pt, Button: ev.Button, Mods: ParseModifiers(ev.Mods)}

	switch ev.Type {
	case EventPointerDown:
		return true, s.PointerDown(pe)
	case EventPointerMove:
		return s.PointerMove(pe), nil
	case EventPointerUp:
		return s.PointerUp(pe), nil
	case EventDoubleClick:
		loc, err := s.DoubleClick(pe)
		return loc != nil, err
	case EventKeyDown:
		return s.KeyDown(KeyEvent{Key: ev.Key, Mods: pe.Mods})
	}
	return false, fmt.Errorf("unknown event type %q", ev.Type)
}
