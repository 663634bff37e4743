// Package graph holds the editable entities: Locations and the weighted,
// undirected Edges between them.
package graph

import (
	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
)

const (
	DefaultKind   = drawables.Star
	DefaultRadius = 20
	DefaultFill   = "rgba(0,255,0,.6)"
)

// ShapeResolver picks the shape of a location. kind is the requested variant,
// empty when the caller leaves the choice to the policy.
type ShapeResolver func(loc *Location, kind drawables.Kind) (drawables.Kind, drawables.Params)

type StyleResolver func(loc *Location) drawables.Style

type LabelStyler func(loc *Location) drawables.LabelStyle

// Policy resolves the look of every location of a graph. Locations keep a
// pointer to it, so replacing its fields restyles on the next UpdateStyle.
type Policy struct {
	Shape ShapeResolver
	Style StyleResolver
	Label LabelStyler
}

func DefaultPolicy() *Policy {
	return &Policy{
		Shape: DefaultShape,
		Style: func(*Location) drawables.Style {
			return drawables.Style{Fill: DefaultFill}
		},
		Label: func(*Location) drawables.LabelStyle {
			return drawables.LabelStyle{
				Style:  drawables.Style{Fill: "black"},
				Font:   "12px sans-serif",
				Offset: geometry.Pt(0, DefaultRadius+12),
			}
		},
	}
}

// DefaultShape sizes every variant from DefaultRadius.
func DefaultShape(_ *Location, kind drawables.Kind) (drawables.Kind, drawables.Params) {
	if kind == "" {
		kind = DefaultKind
	}
	return kind, ParamsFor(kind, DefaultRadius)
}

// ParamsFor returns dimensions for kind that fit a circle of the given radius.
func ParamsFor(kind drawables.Kind, radius float64) drawables.Params {
	switch kind {
	case drawables.Square:
		return drawables.Params{Side: 2 * radius}
	case drawables.Rectangle:
		return drawables.Params{Width: 2 * radius, Height: radius}
	default:
		return drawables.Params{Radius: radius}
	}
}

// fill completes a partially set policy with the defaults.
func (p *Policy) fill() {
	def := DefaultPolicy()
	if p.Shape == nil {
		p.Shape = def.Shape
	}
	if p.Style == nil {
		p.Style = def.Style
	}
	if p.Label == nil {
		p.Label = def.Label
	}
}
