// Package drawables implements the primitives painted on a scene: shapes,
// labels and the connections between them, plus the surfaces they paint to.
package drawables

import "github.com/pathbuilder/core/internal/geometry"

// Style is the paint applied to a primitive. Empty Fill or Stroke means the
// primitive is not filled or not outlined.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Stroked reports whether an outline would be visible.
func (s Style) Stroked() bool {
	return s.Stroke != "" && s.StrokeWidth > 0
}

type TextStyle struct {
	Style
	Font     string `json:"font,omitempty"`
	Align    string `json:"align,omitempty"`
	Baseline string `json:"baseline,omitempty"`
}

// Surface is the drawing context a scene is painted on.
type Surface interface {
	Clear(size geometry.Box)
	Image(href string, size geometry.Box)
	Circle(center geometry.Point, radius float64, st Style)
	Rect(origin geometry.Point, size geometry.Box, st Style)
	Polygon(points []geometry.Point, st Style)
	Line(from, to geometry.Point, st Style)
	Text(at geometry.Point, text string, st TextStyle)
}
