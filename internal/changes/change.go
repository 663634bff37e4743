// Package changes records every graph mutation reversibly, replays them for
// undo and redo, and compacts a history into an export diff.
package changes

import (
	"fmt"
	"time"

	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
)

type Kind int

const (
	Add Kind = iota
	Remove
	MutateLocation
	MutateEdge
	Grab
	Drop
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case MutateLocation:
		return "mutate-loc"
	case MutateEdge:
		return "mutate-edge"
	case Grab:
		return "grab"
	case Drop:
		return "drop"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Property names a mutable attribute.
type Property string

const (
	PropName   Property = "name"
	PropShape  Property = "shape"
	PropWeight Property = "weight"
)

// Target is the entity a change applies to: a *graph.Location or *graph.Edge.
type Target interface {
	Key() string
}

// Change is one reversible mutation. Old and New hold the property values of
// a mutation; a Grab carries its point in Old, a Drop in New.
type Change struct {
	Kind      Kind
	Timestamp time.Time
	Target    Target
	Property  Property
	Old       any
	New       any
}

func (c Change) Location() (*graph.Location, bool) {
	loc, ok := c.Target.(*graph.Location)
	return loc, ok
}

func (c Change) Edge() (*graph.Edge, bool) {
	e, ok := c.Target.(*graph.Edge)
	return e, ok
}

// Point is the coordinate of a Grab or Drop.
func (c Change) Point() geometry.Point {
	var v any
	switch c.Kind {
	case Grab:
		v = c.Old
	case Drop:
		v = c.New
	}
	p, _ := v.(geometry.Point)
	return p
}

func (c Change) String() string {
	key := "<nil>"
	if c.Target != nil {
		key = c.Target.Key()
	}
	if c.Property != "" {
		return fmt.Sprintf("%s %q %s: %v -> %v", c.Kind, key, c.Property, exportValue(c.Old), exportValue(c.New))
	}
	return fmt.Sprintf("%s %q", c.Kind, key)
}

// ChangeError reports a broken log invariant: an unpaired Grab or Drop, a
// mutation whose recorded value no longer matches, an unexpected variant.
// It signals a bug in the caller, never a runtime condition.
type ChangeError struct {
	Msg    string
	Change *Change
	Err    error
}

func (e *ChangeError) Error() string {
	msg := "change error: " + e.Msg
	if e.Change != nil {
		msg += fmt.Sprintf(" (%s)", e.Change)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ChangeError) Unwrap() error {
	return e.Err
}

func changeErr(c *Change, format string, args ...any) error {
	return &ChangeError{Msg: fmt.Sprintf(format, args...), Change: c}
}

// exportValue converts a property value to its JSON form; shapes export as
// their kind name.
func exportValue(v any) any {
	if s, ok := v.(drawables.Shape); ok {
		return string(s.Kind)
	}
	return v
}

func sameShape(a, b drawables.Shape) bool {
	return a.Kind == b.Kind && a.Params == b.Params
}

// currentValue reads prop from target.
func currentValue(target Target, prop Property) (any, bool) {
	switch t := target.(type) {
	case *graph.Location:
		switch prop {
		case PropName:
			return t.Name(), true
		case PropShape:
			return t.Shape(), true
		}
	case *graph.Edge:
		if prop == PropWeight {
			return t.Weight(), true
		}
	}
	return nil, false
}

func valueEqual(a, b any) bool {
	sa, okA := a.(drawables.Shape)
	sb, okB := b.(drawables.Shape)
	if okA || okB {
		return okA && okB && sameShape(sa, sb)
	}
	return a == b
}

// validateMutation checks that prop belongs to the target and both values
// have the property's type.
func validateMutation(c *Change) error {
	if c.Old == nil || c.New == nil {
		return changeErr(c, "old or new value unset")
	}
	switch c.Kind {
	case MutateLocation:
		if _, ok := c.Location(); !ok {
			return changeErr(c, "location mutation on a non-location")
		}
		switch c.Property {
		case PropName:
			_, okOld := c.Old.(string)
			_, okNew := c.New.(string)
			if !okOld || !okNew {
				return changeErr(c, "name values must be strings")
			}
		case PropShape:
			_, okOld := c.Old.(drawables.Shape)
			_, okNew := c.New.(drawables.Shape)
			if !okOld || !okNew {
				return changeErr(c, "shape values must be shapes")
			}
		default:
			return changeErr(c, "bad location property %q", c.Property)
		}
	case MutateEdge:
		if _, ok := c.Edge(); !ok {
			return changeErr(c, "edge mutation on a non-edge")
		}
		if c.Property != PropWeight {
			return changeErr(c, "bad edge property %q", c.Property)
		}
		_, okOld := c.Old.(float64)
		_, okNew := c.New.(float64)
		if !okOld || !okNew {
			return changeErr(c, "weight values must be numbers")
		}
	default:
		return changeErr(c, "unexpected %s as mutation", c.Kind)
	}
	return nil
}

// setValue writes v into prop of target.
func setValue(target Target, prop Property, v any) {
	switch t := target.(type) {
	case *graph.Location:
		switch prop {
		case PropName:
			t.SetName(v.(string))
		case PropShape:
			t.SetShape(v.(drawables.Shape))
		}
	case *graph.Edge:
		t.SetWeight(v.(float64))
	}
}
