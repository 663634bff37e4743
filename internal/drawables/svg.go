package drawables

import (
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/pathbuilder/core/internal/geometry"
)

// SVGSurface renders a scene as a standalone SVG document. Coordinates are
// rounded to whole pixels.
type SVGSurface struct {
	canvas *svg.SVG
}

// NewSVGSurface starts a document of the given size on w. End must be called
// once the scene is painted.
func NewSVGSurface(w io.Writer, size geometry.Box) *SVGSurface {
	canvas := svg.New(w)
	canvas.Start(px(size.Width), px(size.Height))
	return &SVGSurface{canvas: canvas}
}

func (s *SVGSurface) End() {
	s.canvas.End()
}

// Clear is a no-op: every frame is a fresh document.
func (s *SVGSurface) Clear(geometry.Box) {}

func (s *SVGSurface) Image(href string, size geometry.Box) {
	s.canvas.Image(0, 0, px(size.Width), px(size.Height), href)
}

func (s *SVGSurface) Circle(center geometry.Point, radius float64, st Style) {
	s.canvas.Circle(px(center.X), px(center.Y), px(radius), shapeCSS(st))
}

func (s *SVGSurface) Rect(origin geometry.Point, size geometry.Box, st Style) {
	s.canvas.Rect(px(origin.X), px(origin.Y), px(size.Width), px(size.Height), shapeCSS(st))
}

func (s *SVGSurface) Polygon(points []geometry.Point, st Style) {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, p := range points {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}
	s.canvas.Polygon(xs, ys, shapeCSS(st))
}

func (s *SVGSurface) Line(from, to geometry.Point, st Style) {
	css := fmt.Sprintf("stroke:%s;stroke-width:%g", orNone(st.Stroke), st.StrokeWidth)
	s.canvas.Line(px(from.X), px(from.Y), px(to.X), px(to.Y), css)
}

func (s *SVGSurface) Text(at geometry.Point, text string, st TextStyle) {
	parts := []string{shapeCSS(st.Style)}
	if st.Font != "" {
		parts = append(parts, "font:"+st.Font)
	}
	switch st.Align {
	case "right":
		parts = append(parts, "text-anchor:end")
	case "center":
		parts = append(parts, "text-anchor:middle")
	}
	if st.Baseline == "top" {
		parts = append(parts, "dominant-baseline:hanging")
	}
	s.canvas.Text(px(at.X), px(at.Y), text, strings.Join(parts, ";"))
}

func shapeCSS(st Style) string {
	css := "fill:" + orNone(st.Fill)
	if st.Stroked() {
		css += fmt.Sprintf(";stroke:%s;stroke-width:%g", st.Stroke, st.StrokeWidth)
	}
	return css
}

func orNone(color string) string {
	if color == "" {
		return "none"
	}
	return color
}

func px(v float64) int {
	return int(math.Round(v))
}
