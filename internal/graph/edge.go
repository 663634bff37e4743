package graph

import (
	"errors"
	"slices"
	"strings"

	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/models"
)

var ErrSelfEdge = errors.New("edge endpoints must be two distinct locations")

// WeightScaler supplies the store-wide multiplier from weight to stroke width.
type WeightScaler interface {
	WeightScale() float64
}

// EdgeKey is the canonical key of the unordered pair (a, b).
func EdgeKey(a, b string) string {
	keys := []string{a, b}
	slices.Sort(keys)
	return strings.Join(keys, KeySeparator)
}

// SplitEdgeKey is the inverse of EdgeKey.
func SplitEdgeKey(key string) (string, string, bool) {
	return strings.Cut(key, KeySeparator)
}

// IsEdgeKey reports whether key names an edge rather than a location.
func IsEdgeKey(key string) bool {
	return strings.Contains(key, KeySeparator)
}

// Edge is an undirected, weighted connection. Its key is always derived from
// its endpoints.
type Edge struct {
	start  *Location
	end    *Location
	weight float64
	scale  WeightScaler
	conn   *drawables.Connection
}

// NewEdge connects start and end. Non-positive weights become 1.
func NewEdge(start, end *Location, scale WeightScaler, weight float64, st drawables.Style) (*Edge, error) {
	if start == nil || end == nil || start == end || start.Key() == end.Key() {
		return nil, ErrSelfEdge
	}
	e := &Edge{
		start: start,
		end:   end,
		scale: scale,
		conn:  drawables.NewConnection(start, end, st),
	}
	e.SetWeight(weight)
	return e, nil
}

func (e *Edge) Key() string {
	return EdgeKey(e.start.Key(), e.end.Key())
}

func (e *Edge) Start() *Location {
	return e.start
}

func (e *Edge) End() *Location {
	return e.end
}

// Other returns the endpoint opposite loc, or nil if loc is not an endpoint.
func (e *Edge) Other(loc *Location) *Location {
	switch loc {
	case e.start:
		return e.end
	case e.end:
		return e.start
	}
	return nil
}

func (e *Edge) Weight() float64 {
	return e.weight
}

// SetWeight clamps non-positive weights to 1 and rescales the stroke.
func (e *Edge) SetWeight(w float64) {
	if !(w > 0) {
		w = 1
	}
	e.weight = w
	e.Rescale()
}

// Rescale recomputes the stroke width from the weight multiplier.
func (e *Edge) Rescale() {
	mult := 1.0
	if e.scale != nil {
		mult = e.scale.WeightScale()
	}
	e.conn.Style.StrokeWidth = e.weight * mult
}

func (e *Edge) Connection() *drawables.Connection {
	return e.conn
}

func (e *Edge) SetStroke(stroke string) {
	e.conn.Style.Stroke = stroke
}

func (e *Edge) Contains(p geometry.Point) bool {
	return e.conn.Contains(p)
}

// Draw paints the connection, with the highlight stroke color when given.
func (e *Edge) Draw(sf drawables.Surface, highlight *drawables.Style) {
	if highlight == nil {
		e.conn.Draw(sf)
		return
	}
	saved := e.conn.Style.Stroke
	defer func() { e.conn.Style.Stroke = saved }()
	e.conn.Style.Stroke = highlight.Stroke
	e.conn.Draw(sf)
}

func (e *Edge) ToRecord() *models.EdgeRecord {
	return &models.EdgeRecord{
		Type:   models.TypeEdge,
		Key:    e.Key(),
		Start:  e.start.Key(),
		End:    e.end.Key(),
		Weight: e.weight,
	}
}
