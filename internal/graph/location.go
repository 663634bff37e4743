package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/encoding"
	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/models"
)

// KeySeparator joins the two location keys of an edge key, so it may not
// appear in a location key.
const KeySeparator = "\t"

var ErrKeySeparator = errors.New("location key contains a tab character")

// UniquenessError reports an empty or duplicate location key.
type UniquenessError struct {
	Key string
}

func (e *UniquenessError) Error() string {
	if e.Key == "" {
		return `failed to add location ""`
	}
	return fmt.Sprintf("failed to add duplicate location %s", e.Key)
}

// LocationInit describes a location to build. An empty Key is derived from
// the current time, an empty Name defaults to the key, an empty Kind is left
// to the policy.
type LocationInit struct {
	Key      string
	Name     string
	Position geometry.Point
	Kind     drawables.Kind
	Data     any
}

// Location is a named, positioned node. Its shape and label always sit at
// its position; MoveTo is the only way to change it.
type Location struct {
	key       string
	name      string
	pos       geometry.Point
	shape     drawables.Shape
	label     *drawables.Label
	data      any
	neighbors []string
	policy    *Policy
}

func NewLocation(init LocationInit, policy *Policy) (*Location, error) {
	if policy == nil {
		policy = DefaultPolicy()
	}
	policy.fill()

	key := init.Key
	if key == "" {
		key = encoding.B64Time(time.Now())
	}
	if strings.Contains(key, KeySeparator) {
		return nil, fmt.Errorf("%w: %q", ErrKeySeparator, key)
	}
	name := init.Name
	if name == "" {
		name = key
	}

	loc := &Location{
		key:    key,
		name:   name,
		pos:    init.Position,
		data:   init.Data,
		policy: policy,
	}
	loc.label = drawables.NewLabel(name, init.Position, policy.Label(loc))

	kind, params := policy.Shape(loc, init.Kind)
	shape, err := drawables.New(kind, init.Position, params, policy.Style(loc))
	if err != nil {
		return nil, fmt.Errorf("location %s: %w", key, err)
	}
	loc.shape = shape
	return loc, nil
}

func (l *Location) Key() string {
	return l.key
}

func (l *Location) Name() string {
	return l.name
}

func (l *Location) SetName(name string) {
	l.name = name
	l.label.SetText(name)
}

func (l *Location) Position() geometry.Point {
	return l.pos
}

// Center makes a location usable as a connection anchor.
func (l *Location) Center() geometry.Point {
	return l.pos
}

func (l *Location) X() float64 {
	return l.pos.X
}

func (l *Location) Y() float64 {
	return l.pos.Y
}

// MoveTo sets both coordinates and refreshes shape and label once.
func (l *Location) MoveTo(p geometry.Point) {
	l.pos = p
	l.refresh()
}

func (l *Location) refresh() {
	l.shape.MoveTo(l.pos)
	l.label.MoveTo(l.pos)
}

func (l *Location) Shape() drawables.Shape {
	return l.shape
}

func (l *Location) Kind() drawables.Kind {
	return l.shape.Kind
}

func (l *Location) Label() *drawables.Label {
	return l.label
}

func (l *Location) Data() any {
	return l.data
}

func (l *Location) SetData(data any) {
	l.data = data
}

func (l *Location) Policy() *Policy {
	return l.policy
}

// UpdateShape rebuilds the shape as kind (or the policy's choice when kind is
// empty). It reports false when the resulting shape equals the current one.
func (l *Location) UpdateShape(kind drawables.Kind) (drawables.Shape, bool, error) {
	kind, params := l.policy.Shape(l, kind)
	shape, err := drawables.New(kind, l.pos, params, l.policy.Style(l))
	if err != nil {
		return l.shape, false, err
	}
	if shape == l.shape {
		return l.shape, false, nil
	}
	l.shape = shape
	return shape, true, nil
}

// SetShape installs a previously built shape at the current position, styled
// by the current policy.
func (l *Location) SetShape(shape drawables.Shape) {
	shape.MoveTo(l.pos)
	shape.Style = l.policy.Style(l)
	l.shape = shape
}

// UpdateStyle re-pulls fill, stroke and label style from the policy.
func (l *Location) UpdateStyle() {
	l.shape.Style = l.policy.Style(l)
	l.label.SetStyle(l.policy.Label(l))
}

func (l *Location) Contains(p geometry.Point) bool {
	return l.shape.Contains(p)
}

// Draw paints the shape then the label. With a highlight the shape is drawn
// with the highlight stroke; the stored style is left as it was even if the
// surface panics.
func (l *Location) Draw(sf drawables.Surface, highlight *drawables.Style) {
	if highlight == nil {
		l.shape.Draw(sf)
		l.label.Draw(sf, "")
		return
	}
	saved := l.shape.Style
	defer func() { l.shape.Style = saved }()
	l.shape.Style.Stroke = highlight.Stroke
	l.shape.Style.StrokeWidth = highlight.StrokeWidth
	l.shape.Draw(sf)
	l.label.Draw(sf, "")
}

// Neighbors returns a copy of the neighbor keys. The list mirrors the edge
// set and is maintained by the owning store.
func (l *Location) Neighbors() []string {
	return slices.Clone(l.neighbors)
}

func (l *Location) HasNeighbor(key string) bool {
	return slices.Contains(l.neighbors, key)
}

// AddNeighbor appends key unless present and reports whether it was added.
func (l *Location) AddNeighbor(key string) bool {
	if l.HasNeighbor(key) {
		return false
	}
	l.neighbors = append(l.neighbors, key)
	return true
}

func (l *Location) RemoveNeighbor(key string) bool {
	i := slices.Index(l.neighbors, key)
	if i < 0 {
		return false
	}
	l.neighbors = slices.Delete(l.neighbors, i, i+1)
	return true
}

func (l *Location) ToRecord() *models.LocationRecord {
	neighbors := l.Neighbors()
	if neighbors == nil {
		neighbors = []string{}
	}
	return &models.LocationRecord{
		Type:         models.TypeLocation,
		Key:          l.key,
		Name:         l.name,
		X:            l.pos.X,
		Y:            l.pos.Y,
		Shape:        string(l.shape.Kind),
		Data:         l.data,
		NeighborKeys: neighbors,
	}
}
