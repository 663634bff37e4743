package changes

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
	"github.com/pathbuilder/core/internal/models"
)

// Mutator is the graph owner the log replays changes through. Every call may
// record changes of its own; the log suppresses them while replaying.
type Mutator interface {
	// RestoreLocation re-inserts a previously removed location object.
	RestoreLocation(loc *graph.Location) error
	// RemoveLocation removes a location and every edge touching it.
	RemoveLocation(key string) bool
	// RestoreEdge re-inserts a previously removed edge object.
	RestoreEdge(e *graph.Edge) bool
	RemoveEdge(start, end string) bool
	// Invalidate marks the scene for repaint.
	Invalidate()
}

// Event names passed to an Observer.
const (
	EventRecord = "record"
	EventUndo   = "undo"
	EventRedo   = "redo"
)

type Observer func(event string, c Change)

type Option func(*Log)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func WithObserver(o Observer) Option {
	return func(l *Log) { l.observe = o }
}

// Log is the undo/redo history of one graph. It is not safe for concurrent
// use.
type Log struct {
	undo []Change
	redo []Change

	// ignore counts upcoming record calls that are echoes of a replay.
	ignore int

	store   Mutator
	now     func() time.Time
	logger  *zap.Logger
	observe Observer
}

func NewLog(store Mutator, opts ...Option) *Log {
	l := &Log{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) RecordAdd(target Target) {
	l.push(Change{Kind: Add, Target: target})
}

func (l *Log) RecordRemove(target Target) {
	l.push(Change{Kind: Remove, Target: target})
}

// RecordMutate logs a property change of a location (name, shape) or an edge
// (weight). Values of the wrong type for prop are a ChangeError.
func (l *Log) RecordMutate(target Target, prop Property, oldValue, newValue any) error {
	kind := MutateLocation
	if _, ok := target.(*graph.Edge); ok {
		kind = MutateEdge
	}
	c := Change{Kind: kind, Target: target, Property: prop, Old: oldValue, New: newValue}
	if err := validateMutation(&c); err != nil {
		return err
	}
	l.push(c)
	return nil
}

// RecordGrab logs the start of a drag. A grab of a location whose Add is the
// latest entry is dropped, like its Drop will be. A grab on top of a grab
// still waiting for its drop is a ChangeError and is not logged.
func (l *Log) RecordGrab(loc *graph.Location, at geometry.Point) error {
	if l.consumeIgnore() {
		return nil
	}
	top, ok := l.LastChange()
	switch {
	case ok && top.Kind == Grab:
		c := Change{Kind: Grab, Target: loc, Old: at}
		return changeErr(&c, "previous grab of %q has no drop", top.Target.Key())
	case ok && top.Kind == Add && top.Target == Target(loc):
		return nil
	}
	l.push(Change{Kind: Grab, Target: loc, Old: at})
	return nil
}

// RecordDrop logs the end of a drag. A drop at the grab point cancels the
// grab; a drop right after the location's Add is not logged.
func (l *Log) RecordDrop(loc *graph.Location, at geometry.Point) {
	if l.consumeIgnore() {
		return
	}
	if top, ok := l.LastChange(); ok && top.Target == Target(loc) {
		switch {
		case top.Kind == Grab && top.Point().Equal(at):
			l.undo = l.undo[:len(l.undo)-1]
			return
		case top.Kind == Add:
			return
		}
	}
	l.push(Change{Kind: Drop, Target: loc, New: at})
}

func (l *Log) consumeIgnore() bool {
	if l.ignore > 0 {
		l.ignore--
		return true
	}
	return false
}

func (l *Log) push(c Change) {
	if l.consumeIgnore() {
		return
	}
	c.Timestamp = l.now()
	l.undo = append(l.undo, c)
	l.redo = l.redo[:0]
	l.logger.Debug("change recorded", zap.Stringer("change", c))
	l.notify(EventRecord, c)
}

func (l *Log) notify(event string, c Change) {
	if l.observe != nil {
		l.observe(event, c)
	}
}

// Undo reverts the latest change. It reports false when there is nothing to
// undo. A Drop is undone together with the Grab below it.
func (l *Log) Undo() (bool, error) {
	c, ok := pop(&l.undo)
	if !ok {
		return false, nil
	}

	switch c.Kind {
	case Drop:
		grab, ok := last(l.undo)
		if !ok || grab.Kind != Grab || grab.Target != c.Target {
			l.undo = append(l.undo, c)
			return false, changeErr(&c, "drop without a matching grab")
		}
		l.undo = l.undo[:len(l.undo)-1]
		l.moveTo(c, grab.Point())
		l.redo = append(l.redo, c, grab)
	case Grab:
		l.undo = append(l.undo, c)
		return false, changeErr(&c, "grab without a drop")
	default:
		if err := l.revert(c); err != nil {
			l.undo = append(l.undo, c)
			return false, err
		}
		l.redo = append(l.redo, c)
	}

	l.logger.Debug("change undone", zap.Stringer("change", c))
	l.notify(EventUndo, c)
	return true, nil
}

// Redo reapplies the latest undone change. A Grab is redone together with the
// Drop above it; anything else in between is a ChangeError.
func (l *Log) Redo() (bool, error) {
	c, ok := pop(&l.redo)
	if !ok {
		return false, nil
	}

	switch c.Kind {
	case Grab:
		drop, ok := last(l.redo)
		if !ok || drop.Kind != Drop || drop.Target != c.Target {
			l.redo = append(l.redo, c)
			return false, changeErr(&c, "grab without a matching drop")
		}
		l.redo = l.redo[:len(l.redo)-1]
		l.moveTo(c, drop.Point())
		l.undo = append(l.undo, c, drop)
	case Drop:
		l.redo = append(l.redo, c)
		return false, changeErr(&c, "drop without a matching grab")
	default:
		if err := l.apply(c); err != nil {
			l.redo = append(l.redo, c)
			return false, err
		}
		l.undo = append(l.undo, c)
	}

	l.logger.Debug("change redone", zap.Stringer("change", c))
	l.notify(EventRedo, c)
	return true, nil
}

func (l *Log) revert(c Change) error {
	switch c.Kind {
	case Add:
		return l.remove(c)
	case Remove:
		return l.restore(c)
	case MutateLocation, MutateEdge:
		return l.assign(c, c.New, c.Old)
	}
	return changeErr(&c, "unexpected change kind")
}

func (l *Log) apply(c Change) error {
	switch c.Kind {
	case Add:
		return l.restore(c)
	case Remove:
		return l.remove(c)
	case MutateLocation, MutateEdge:
		return l.assign(c, c.Old, c.New)
	}
	return changeErr(&c, "unexpected change kind")
}

// remove deletes the target through the store, ignoring the Remove changes
// the store records: one per neighbor edge plus the target itself.
func (l *Log) remove(c Change) error {
	prev := l.ignore
	defer func() { l.ignore = prev }()

	var ok bool
	switch t := c.Target.(type) {
	case *graph.Location:
		l.ignore += len(t.Neighbors()) + 1
		ok = l.store.RemoveLocation(t.Key())
	case *graph.Edge:
		l.ignore++
		ok = l.store.RemoveEdge(t.Start().Key(), t.End().Key())
	default:
		return changeErr(&c, "unexpected target %T", c.Target)
	}
	if !ok {
		return changeErr(&c, "target is not in the graph")
	}
	return nil
}

func (l *Log) restore(c Change) error {
	prev := l.ignore
	defer func() { l.ignore = prev }()

	switch t := c.Target.(type) {
	case *graph.Location:
		l.ignore++
		if err := l.store.RestoreLocation(t); err != nil {
			return &ChangeError{Msg: "cannot restore location", Change: &c, Err: err}
		}
	case *graph.Edge:
		l.ignore++
		if !l.store.RestoreEdge(t) {
			return changeErr(&c, "cannot restore edge")
		}
	default:
		return changeErr(&c, "unexpected target %T", c.Target)
	}
	return nil
}

// assign sets the mutated property to value, after checking that it still
// holds want.
func (l *Log) assign(c Change, want, value any) error {
	cur, ok := currentValue(c.Target, c.Property)
	if !ok {
		return changeErr(&c, "unknown property")
	}
	if !valueEqual(cur, want) {
		return changeErr(&c, "stale value: have %v, recorded %v", exportValue(cur), exportValue(want))
	}
	setValue(c.Target, c.Property, value)
	l.store.Invalidate()
	return nil
}

func (l *Log) moveTo(c Change, p geometry.Point) {
	if loc, ok := c.Location(); ok {
		loc.MoveTo(p)
		l.store.Invalidate()
	}
}

// ExportChanges compacts the undo history into a diff without altering it.
func (l *Log) ExportChanges() models.Diff {
	return Compact(l.undo)
}

// Changes returns a copy of the undo history, oldest first.
func (l *Log) Changes() []Change {
	return slices.Clone(l.undo)
}

func (l *Log) LastChange() (Change, bool) {
	return last(l.undo)
}

func (l *Log) UndoCount() int {
	return len(l.undo)
}

func (l *Log) RedoCount() int {
	return len(l.redo)
}

func (l *Log) IsEmpty() bool {
	return len(l.undo) == 0 && len(l.redo) == 0
}

// Reset forgets all history.
func (l *Log) Reset() {
	l.undo = nil
	l.redo = nil
	l.ignore = 0
}

func pop(stack *[]Change) (Change, bool) {
	s := *stack
	if len(s) == 0 {
		return Change{}, false
	}
	c := s[len(s)-1]
	*stack = s[:len(s)-1]
	return c, true
}

func last(stack []Change) (Change, bool) {
	if len(stack) == 0 {
		return Change{}, false
	}
	return stack[len(stack)-1], true
}
