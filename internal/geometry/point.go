// Package geometry provides the point arithmetic shared by shapes, labels and
// the interaction layer.
package geometry

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a width/height pair, used for canvas bounds and shape extents.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul multiplies component-wise.
func (p Point) Mul(q Point) Point {
	return Point{X: p.X * q.X, Y: p.Y * q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) Floor() Point {
	return Point{X: math.Floor(p.X), Y: math.Floor(p.Y)}
}

func (p Point) Equal(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}

func Mid(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Bound clamps p into the rectangle spanned by (0,0) and limit. Upper bounds
// are floored so a clamped point always lands on a whole pixel.
func Bound(p Point, limit Box) Point {
	switch {
	case p.X < 0:
		p.X = 0
	case p.X > limit.Width:
		p.X = math.Floor(limit.Width)
	}
	switch {
	case p.Y < 0:
		p.Y = 0
	case p.Y > limit.Height:
		p.Y = math.Floor(limit.Height)
	}
	return p
}

func Distance(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// PerpendicularDistance returns the distance between p and the infinite line
// through l1 and l2. Degenerate lines fall back to the distance to l1.
func PerpendicularDistance(l1, l2, p Point) float64 {
	length := Distance(l1, l2)
	if length == 0 {
		return Distance(l1, p)
	}
	d := l2.Sub(l1)
	return math.Abs(d.Y*p.X-d.X*p.Y+l2.X*l1.Y-l2.Y*l1.X) / length
}

// SegmentDistance returns the distance between p and the closed segment l1-l2.
func SegmentDistance(l1, l2, p Point) float64 {
	d := l2.Sub(l1)
	lengthSq := d.X*d.X + d.Y*d.Y
	if lengthSq == 0 {
		return Distance(l1, p)
	}
	t := ((p.X-l1.X)*d.X + (p.Y-l1.Y)*d.Y) / lengthSq
	switch {
	case t < 0:
		return Distance(l1, p)
	case t > 1:
		return Distance(l2, p)
	}
	return PerpendicularDistance(l1, l2, p)
}

// InBox reports whether p lies inside the axis-aligned box of the given size
// centered on c, edges inclusive.
func InBox(c Point, size Box, p Point) bool {
	return math.Abs(c.X-p.X) <= size.Width/2 && math.Abs(c.Y-p.Y) <= size.Height/2
}
