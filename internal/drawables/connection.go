package drawables

import (
	"math"

	"github.com/pathbuilder/core/internal/geometry"
)

// minHitWidth keeps hairline connections clickable.
const minHitWidth = 4

// Anchor is anything a connection can be attached to.
type Anchor interface {
	Center() geometry.Point
}

// Connection is a straight line between two anchors. It follows the anchors
// as they move.
type Connection struct {
	Start Anchor
	End   Anchor
	Style Style
}

func NewConnection(start, end Anchor, st Style) *Connection {
	return &Connection{Start: start, End: end, Style: st}
}

func (c *Connection) Width() float64 {
	return math.Abs(c.Start.Center().X - c.End.Center().X)
}

func (c *Connection) Height() float64 {
	return math.Abs(c.Start.Center().Y - c.End.Center().Y)
}

func (c *Connection) Length() float64 {
	return geometry.Distance(c.Start.Center(), c.End.Center())
}

func (c *Connection) Midpoint() geometry.Point {
	return geometry.Mid(c.Start.Center(), c.End.Center())
}

// Contains tests the distance from pt to the segment against half the stroke
// width. The bounding box of a diagonal line would also match its empty
// corners.
func (c *Connection) Contains(pt geometry.Point) bool {
	tolerance := math.Max(c.Style.StrokeWidth, minHitWidth) / 2
	return geometry.SegmentDistance(c.Start.Center(), c.End.Center(), pt) <= tolerance
}

func (c *Connection) Draw(sf Surface) {
	sf.Line(c.Start.Center(), c.End.Center(), c.Style)
}
