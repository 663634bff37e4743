package drawables

import (
	"fmt"
	"math"

	"github.com/pathbuilder/core/internal/geometry"
)

// Kind names a shape variant. The string value is the name used in exports.
type Kind string

const (
	Circle    Kind = "Circle"
	Rectangle Kind = "Rectangle"
	Square    Kind = "Square"
	Star      Kind = "Star"
	Triangle  Kind = "Triangle"
)

// Kinds lists every shape variant in a stable order.
var Kinds = []Kind{Circle, Rectangle, Square, Star, Triangle}

func ParseKind(name string) (Kind, bool) {
	k := Kind(name)
	_, ok := dispatch[k]
	return k, ok
}

// GeometryError reports a shape built with a non-positive dimension.
type GeometryError struct {
	Kind      Kind
	Dimension string
	Value     float64
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s %s of %v invalid", e.Kind, e.Dimension, e.Value)
}

// Params carries the dimensions of every variant; each kind reads only the
// fields it needs (Radius for Circle/Star/Triangle, Side for Square, Width
// and Height for Rectangle).
type Params struct {
	Radius float64 `json:"radius,omitempty"`
	Side   float64 `json:"side,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Shape is a closed tagged variant. Behavior per kind lives in dispatch.
type Shape struct {
	Kind   Kind
	Center geometry.Point
	Params Params
	Style  Style
}

type kindOps struct {
	validate func(Params) error
	size     func(Params) geometry.Box
	contains func(Shape, geometry.Point) bool
	outline  func(Shape) []geometry.Point
	draw     func(Shape, Surface)
}

// dispatch is filled in init; its entries call Shape methods that read it.
var dispatch map[Kind]kindOps

func init() {
	dispatch = map[Kind]kindOps{
		Circle: {
			validate: positive(Circle, "radius", func(p Params) float64 { return p.Radius }),
			size:     radialSize,
			contains: func(s Shape, pt geometry.Point) bool {
				return geometry.Distance(s.Center, pt) <= s.Params.Radius
			},
			draw: func(s Shape, sf Surface) {
				sf.Circle(s.Center, s.Params.Radius, s.Style)
			},
		},
		Rectangle: {
			validate: func(p Params) error {
				if !validDimension(p.Width) {
					return &GeometryError{Kind: Rectangle, Dimension: "width", Value: p.Width}
				}
				if !validDimension(p.Height) {
					return &GeometryError{Kind: Rectangle, Dimension: "height", Value: p.Height}
				}
				return nil
			},
			size: func(p Params) geometry.Box {
				return geometry.Box{Width: p.Width, Height: p.Height}
			},
			contains: boxContains,
			draw:     drawRect,
		},
		Square: {
			validate: positive(Square, "side", func(p Params) float64 { return p.Side }),
			size: func(p Params) geometry.Box {
				return geometry.Box{Width: p.Side, Height: p.Side}
			},
			contains: boxContains,
			draw:     drawRect,
		},
		Star: {
			validate: positive(Star, "radius", func(p Params) float64 { return p.Radius }),
			size:     radialSize,
			contains: boxContains,
			outline:  starOutline,
			draw:     drawOutline,
		},
		Triangle: {
			validate: positive(Triangle, "radius", func(p Params) float64 { return p.Radius }),
			size: func(p Params) geometry.Box {
				return geometry.Box{Width: math.Sqrt(3) * p.Radius, Height: 1.5 * p.Radius}
			},
			contains: boxContains,
			outline:  triangleOutline,
			draw:     drawOutline,
		},
	}
}

// New builds a shape of the given kind, failing with a *GeometryError when a
// dimension it uses is not positive.
func New(kind Kind, center geometry.Point, p Params, st Style) (Shape, error) {
	ops, ok := dispatch[kind]
	if !ok {
		return Shape{}, fmt.Errorf("unknown shape kind %q", kind)
	}
	if err := ops.validate(p); err != nil {
		return Shape{}, err
	}
	return Shape{Kind: kind, Center: center, Params: p, Style: st}, nil
}

func NewCircle(center geometry.Point, radius float64, st Style) (Shape, error) {
	return New(Circle, center, Params{Radius: radius}, st)
}

func NewRectangle(center geometry.Point, width, height float64, st Style) (Shape, error) {
	return New(Rectangle, center, Params{Width: width, Height: height}, st)
}

func NewSquare(center geometry.Point, side float64, st Style) (Shape, error) {
	return New(Square, center, Params{Side: side}, st)
}

func NewStar(center geometry.Point, radius float64, st Style) (Shape, error) {
	return New(Star, center, Params{Radius: radius}, st)
}

func NewTriangle(center geometry.Point, radius float64, st Style) (Shape, error) {
	return New(Triangle, center, Params{Radius: radius}, st)
}

func (s Shape) Size() geometry.Box {
	return dispatch[s.Kind].size(s.Params)
}

func (s Shape) Width() float64 {
	return s.Size().Width
}

func (s Shape) Height() float64 {
	return s.Size().Height
}

func (s Shape) Contains(pt geometry.Point) bool {
	return dispatch[s.Kind].contains(s, pt)
}

func (s Shape) Draw(sf Surface) {
	dispatch[s.Kind].draw(s, sf)
}

// Outline returns the polygon vertices for path-based kinds and nil for
// circles and rectangles.
func (s Shape) Outline() []geometry.Point {
	if ops := dispatch[s.Kind]; ops.outline != nil {
		return ops.outline(s)
	}
	return nil
}

func (s *Shape) MoveTo(center geometry.Point) {
	s.Center = center
}

func positive(kind Kind, dim string, get func(Params) float64) func(Params) error {
	return func(p Params) error {
		if v := get(p); !validDimension(v) {
			return &GeometryError{Kind: kind, Dimension: dim, Value: v}
		}
		return nil
	}
}

// validDimension rejects zero, negative, NaN and infinite sizes.
func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func radialSize(p Params) geometry.Box {
	return geometry.Box{Width: 2 * p.Radius, Height: 2 * p.Radius}
}

func boxContains(s Shape, pt geometry.Point) bool {
	return geometry.InBox(s.Center, s.Size(), pt)
}

func drawRect(s Shape, sf Surface) {
	size := s.Size()
	origin := s.Center.Sub(geometry.Pt(size.Width/2, size.Height/2))
	sf.Rect(origin, size, s.Style)
}

func drawOutline(s Shape, sf Surface) {
	sf.Polygon(s.Outline(), s.Style)
}

const starStep = 2 * math.Pi / 10

// starOutline alternates outer and inner vertices around a five-point star.
func starOutline(s Shape) []geometry.Point {
	pts := make([]geometry.Point, 0, 11)
	for i := 11; i > 0; i-- {
		r := s.Params.Radius * float64(i%2+1) / 2
		omega := starStep * float64(i)
		pts = append(pts, geometry.Pt(r*math.Sin(omega)+s.Center.X, r*math.Cos(omega)+s.Center.Y))
	}
	return pts
}

const triangleStep = 2 * math.Pi / 3

func triangleOutline(s Shape) []geometry.Point {
	pts := make([]geometry.Point, 0, 3)
	for i := 3; i > 0; i-- {
		omega := triangleStep*float64(i) + math.Pi
		pts = append(pts, geometry.Pt(
			s.Params.Radius*math.Sin(omega)+s.Center.X,
			s.Params.Radius*math.Cos(omega)+s.Center.Y,
		))
	}
	return pts
}
