// Package canvas owns an editable graph and its view state. It turns pointer
// and keyboard events into graph mutations, records them in a change log and
// tracks when the scene needs repainting. A Store is single-threaded; callers
// that share one across goroutines must serialize access.
package canvas

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/changes"
	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/encoding"
	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
)

var ErrUnknownLocation = errors.New("unknown location")

type StateKind int

const (
	Idle StateKind = iota
	Dragging
)

func (k StateKind) String() string {
	if k == Dragging {
		return "dragging"
	}
	return "idle"
}

// State is the interaction state. Target and Offset are set only while
// dragging; Offset is the pointer position relative to the target's center.
type State struct {
	Kind   StateKind
	Target *graph.Location
	Offset geometry.Point
}

type Store struct {
	locations *orderedMap[*graph.Location]
	edges     *orderedMap[*graph.Edge]
	selected  string
	state     State
	params    Params
	policy    *graph.Policy
	status    string

	log        *changes.Log
	logOptions []changes.Option
	dirty      bool
	now        func() time.Time
	logger     *zap.Logger
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithParams(p Params) Option {
	return func(s *Store) { s.params = p }
}

func WithPolicy(p *graph.Policy) Option {
	return func(s *Store) { s.policy = p }
}

// WithChangeOptions passes options through to the store's change log.
func WithChangeOptions(opts ...changes.Option) Option {
	return func(s *Store) { s.logOptions = append(s.logOptions, opts...) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		locations: newOrderedMap[*graph.Location](),
		edges:     newOrderedMap[*graph.Edge](),
		params:    DefaultParams(),
		policy:    graph.DefaultPolicy(),
		now:       time.Now,
		logger:    zap.NewNop(),
		dirty:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	logOpts := append([]changes.Option{changes.WithLogger(s.logger), changes.WithClock(s.now)}, s.logOptions...)
	s.log = changes.NewLog(s, logOpts...)
	return s
}

func (s *Store) Log() *changes.Log {
	return s.log
}

func (s *Store) State() State {
	return s.state
}

func (s *Store) Policy() *graph.Policy {
	return s.policy
}

// SetPolicy replaces the set resolvers of the shared policy and restyles
// every location. Shapes are not rebuilt.
func (s *Store) SetPolicy(p graph.Policy) {
	if p.Shape != nil {
		s.policy.Shape = p.Shape
	}
	if p.Style != nil {
		s.policy.Style = p.Style
	}
	if p.Label != nil {
		s.policy.Label = p.Label
	}
	for loc := range s.locations.Values() {
		loc.UpdateStyle()
	}
	s.Invalidate()
}

func (s *Store) Location(key string) (*graph.Location, bool) {
	return s.locations.Get(key)
}

func (s *Store) Edge(start, end string) (*graph.Edge, bool) {
	return s.edges.Get(graph.EdgeKey(start, end))
}

func (s *Store) LocationCount() int {
	return s.locations.Len()
}

func (s *Store) EdgeCount() int {
	return s.edges.Len()
}

// LocationKeys and EdgeKeys list keys in insertion order.
func (s *Store) LocationKeys() []string {
	return s.locations.Keys()
}

func (s *Store) EdgeKeys() []string {
	return s.edges.Keys()
}

// NewKey derives an unused location key from the clock.
func (s *Store) NewKey() string {
	base := encoding.B64Time(s.now())
	key := base
	for i := uint64(1); s.locations.Has(key); i++ {
		key = base + "." + encoding.Base64(i)
	}
	return key
}

// NewLocation builds a location with the store's policy without adding it.
// An empty key is derived from the clock.
func (s *Store) NewLocation(init graph.LocationInit) (*graph.Location, error) {
	if init.Key == "" {
		init.Key = s.NewKey()
	}
	return graph.NewLocation(init, s.policy)
}

// CreateLocation builds and adds a location.
func (s *Store) CreateLocation(init graph.LocationInit) (*graph.Location, error) {
	loc, err := s.NewLocation(init)
	if err != nil {
		return nil, err
	}
	if err := s.AddLocation(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// AddLocation inserts loc and records the addition. An empty or taken key is
// a UniquenessError. Like every mutating call it ends a pending drag first.
func (s *Store) AddLocation(loc *graph.Location) error {
	s.finishDrag()
	if err := s.insertLocation(loc); err != nil {
		return err
	}
	s.log.RecordAdd(loc)
	return nil
}

// RestoreLocation re-inserts a location removed earlier; it is AddLocation
// for the change log. The location picks up the current policy's style.
func (s *Store) RestoreLocation(loc *graph.Location) error {
	if err := s.AddLocation(loc); err != nil {
		return err
	}
	loc.UpdateStyle()
	return nil
}

func (s *Store) insertLocation(loc *graph.Location) error {
	key := loc.Key()
	if key == "" {
		return &graph.UniquenessError{}
	}
	if strings.Contains(key, graph.KeySeparator) {
		return fmt.Errorf("%w: %q", graph.ErrKeySeparator, key)
	}
	if s.locations.Has(key) {
		return &graph.UniquenessError{Key: key}
	}
	s.locations.Set(key, loc)
	s.Invalidate()
	return nil
}

// RemoveLocation removes the location and every edge touching it, recording
// each removal. It reports false for an unknown key.
func (s *Store) RemoveLocation(key string) bool {
	s.finishDrag()
	loc, ok := s.locations.Get(key)
	if !ok {
		return false
	}

	for _, n := range loc.Neighbors() {
		if !s.locations.Has(n) {
			s.logger.Warn("location has missing neighbor", zap.String("location", key), zap.String("neighbor", n))
			loc.RemoveNeighbor(n)
			continue
		}
		s.RemoveEdge(key, n)
	}

	s.locations.Delete(key)
	if s.selected == key {
		s.selected = ""
	}
	s.log.RecordRemove(loc)
	s.Invalidate()
	return true
}

// CreateEdge connects two stored locations. If they are already connected the
// existing edge is returned with created false. A non-positive weight is 1.
func (s *Store) CreateEdge(start, end string, weight float64) (*graph.Edge, bool, error) {
	s.finishDrag()
	a, okA := s.locations.Get(start)
	b, okB := s.locations.Get(end)
	if !okA || !okB {
		return nil, false, fmt.Errorf("%w: %s-%s", ErrUnknownLocation, start, end)
	}
	if e, ok := s.edges.Get(graph.EdgeKey(start, end)); ok {
		return e, false, nil
	}

	e, err := graph.NewEdge(a, b, s, weight, drawables.Style{Stroke: s.params.EdgeStroke})
	if err != nil {
		return nil, false, err
	}
	s.insertEdge(e)
	s.log.RecordAdd(e)
	return e, true, nil
}

// RestoreEdge re-inserts an edge removed earlier. Both endpoints must be the
// stored locations and the pair must be unconnected.
func (s *Store) RestoreEdge(e *graph.Edge) bool {
	s.finishDrag()
	a, okA := s.locations.Get(e.Start().Key())
	b, okB := s.locations.Get(e.End().Key())
	if !okA || !okB || a != e.Start() || b != e.End() || s.edges.Has(e.Key()) {
		return false
	}
	s.insertEdge(e)
	s.log.RecordAdd(e)
	return true
}

func (s *Store) insertEdge(e *graph.Edge) {
	e.Start().AddNeighbor(e.End().Key())
	e.End().AddNeighbor(e.Start().Key())
	e.Rescale()
	s.edges.Set(e.Key(), e)
	s.Invalidate()
}

// RemoveEdge removes the edge between start and end and records it. It
// reports false if the pair is not connected.
func (s *Store) RemoveEdge(start, end string) bool {
	s.finishDrag()
	key := graph.EdgeKey(start, end)
	e, ok := s.edges.Get(key)
	if !ok {
		s.logger.Debug("no edge to remove", zap.String("start", start), zap.String("end", end))
		return false
	}

	e.Start().RemoveNeighbor(e.End().Key())
	e.End().RemoveNeighbor(e.Start().Key())
	s.edges.Delete(key)
	if s.selected == key {
		s.selected = ""
	}
	s.log.RecordRemove(e)
	s.Invalidate()
	return true
}

// LocationDiff lists the properties to change; nil fields are kept.
type LocationDiff struct {
	Name     *string
	Shape    *drawables.Kind
	Position *geometry.Point
}

// ModifyLocation applies diff and records each effective change. A position
// change is recorded as a grab and drop pair. It reports whether anything
// changed; an unknown key is false.
func (s *Store) ModifyLocation(key string, diff LocationDiff) (bool, error) {
	s.finishDrag()
	loc, ok := s.locations.Get(key)
	if !ok {
		return false, nil
	}
	changed := false

	if diff.Name != nil && *diff.Name != loc.Name() {
		old := loc.Name()
		loc.SetName(*diff.Name)
		if err := s.log.RecordMutate(loc, changes.PropName, old, loc.Name()); err != nil {
			return changed, err
		}
		changed = true
	}

	if diff.Shape != nil {
		old := loc.Shape()
		shape, ok, err := loc.UpdateShape(*diff.Shape)
		if err != nil {
			return changed, err
		}
		if ok {
			if err := s.log.RecordMutate(loc, changes.PropShape, old, shape); err != nil {
				return changed, err
			}
			changed = true
		}
	}

	if diff.Position != nil && !diff.Position.Equal(loc.Position()) {
		if err := s.log.RecordGrab(loc, loc.Position()); err != nil {
			return changed, err
		}
		loc.MoveTo(*diff.Position)
		s.log.RecordDrop(loc, loc.Position())
		changed = true
	}

	if changed {
		s.Invalidate()
	}
	return changed, nil
}

// ModifyEdge sets the weight of the edge between start and end. It reports
// whether the effective weight changed.
func (s *Store) ModifyEdge(start, end string, weight float64) (bool, error) {
	s.finishDrag()
	e, ok := s.edges.Get(graph.EdgeKey(start, end))
	if !ok {
		return false, nil
	}
	old := e.Weight()
	e.SetWeight(weight)
	if e.Weight() == old {
		return false, nil
	}
	s.Invalidate()
	return true, s.log.RecordMutate(e, changes.PropWeight, old, e.Weight())
}

// finishDrag ends a pending drag with a drop where the target is now, so that
// no other change lands between a grab and its drop.
func (s *Store) finishDrag() {
	if s.state.Kind != Dragging {
		return
	}
	target := s.state.Target
	s.state = State{}
	if target != nil {
		s.logger.Debug("drag finished early", zap.String("location", target.Key()))
		s.log.RecordDrop(target, target.Position())
	}
}

// Undo reverts the latest change. Nothing happens while dragging.
func (s *Store) Undo() (bool, error) {
	if s.state.Kind == Dragging {
		return false, nil
	}
	ok, err := s.log.Undo()
	s.afterHistory()
	return ok, err
}

func (s *Store) Redo() (bool, error) {
	if s.state.Kind == Dragging {
		return false, nil
	}
	ok, err := s.log.Redo()
	s.afterHistory()
	return ok, err
}

func (s *Store) afterHistory() {
	if s.selected != "" && !s.locations.Has(s.selected) && !s.edges.Has(s.selected) {
		s.selected = ""
	}
	s.Invalidate()
}

// Clear empties the graph, the selection and the history.
func (s *Store) Clear() {
	s.locations.Reset()
	s.edges.Reset()
	s.selected = ""
	s.state = State{}
	s.log.Reset()
	s.Invalidate()
}

// Selection returns the selected location or edge; at most one is non-nil.
func (s *Store) Selection() (*graph.Location, *graph.Edge) {
	if s.selected == "" {
		return nil, nil
	}
	if graph.IsEdgeKey(s.selected) {
		e, _ := s.edges.Get(s.selected)
		return nil, e
	}
	loc, _ := s.locations.Get(s.selected)
	return loc, nil
}

func (s *Store) SelectedKey() string {
	return s.selected
}

// Select selects the location or edge with key. It reports false for an
// unknown key and leaves the selection alone.
func (s *Store) Select(key string) bool {
	if !s.locations.Has(key) && !s.edges.Has(key) {
		return false
	}
	if s.selected != key {
		s.selected = key
		s.Invalidate()
	}
	return true
}

func (s *Store) Deselect() {
	if s.selected != "" {
		s.selected = ""
		s.Invalidate()
	}
}

// LocationAt returns the first location, in insertion order, containing p.
func (s *Store) LocationAt(p geometry.Point) *graph.Location {
	for loc := range s.locations.Values() {
		if loc.Contains(p) {
			return loc
		}
	}
	return nil
}

func (s *Store) EdgeAt(p geometry.Point) *graph.Edge {
	for e := range s.edges.Values() {
		if e.Contains(p) {
			return e
		}
	}
	return nil
}
