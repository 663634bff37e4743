package drawables

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/pathbuilder/core/internal/geometry"
)

const (
	fallbackLabelWidth  = 10
	fallbackLabelHeight = 10
)

// LabelStyle is the paint and placement of a label relative to its anchor.
type LabelStyle struct {
	Style
	Font   string         `json:"font,omitempty"`
	Offset geometry.Point `json:"offset"`
}

// Label is text drawn at an anchor plus an offset. Its extent is measured with
// a fixed-width face so hit tests do not depend on the surface.
type Label struct {
	text   string
	anchor geometry.Point
	style  LabelStyle
	size   geometry.Box
}

func NewLabel(text string, anchor geometry.Point, st LabelStyle) *Label {
	l := &Label{text: text, anchor: anchor, style: st}
	l.measure()
	return l
}

func (l *Label) Text() string {
	return l.text
}

func (l *Label) SetText(text string) {
	if text == l.text {
		return
	}
	l.text = text
	l.measure()
}

func (l *Label) Style() LabelStyle {
	return l.style
}

func (l *Label) SetStyle(st LabelStyle) {
	l.style = st
}

func (l *Label) Anchor() geometry.Point {
	return l.anchor
}

func (l *Label) MoveTo(anchor geometry.Point) {
	l.anchor = anchor
}

// Position is where the text is drawn.
func (l *Label) Position() geometry.Point {
	return l.anchor.Add(l.style.Offset)
}

func (l *Label) Width() float64 {
	return l.size.Width
}

func (l *Label) Height() float64 {
	return l.size.Height
}

func (l *Label) Contains(pt geometry.Point) bool {
	return geometry.InBox(l.Position(), l.size, pt)
}

// Draw paints the label. A non-empty selectFill replaces the fill color.
func (l *Label) Draw(sf Surface, selectFill string) {
	st := TextStyle{Style: l.style.Style, Font: l.style.Font}
	if selectFill != "" {
		st.Fill = selectFill
	}
	if st.StrokeWidth <= 0 {
		st.Stroke = ""
	}
	if st.Fill == "" && st.Stroke == "" {
		return
	}
	sf.Text(l.Position(), l.text, st)
}

func (l *Label) measure() {
	face := basicfont.Face7x13
	w := font.MeasureString(face, l.text).Ceil()
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()

	l.size = geometry.Box{Width: float64(w), Height: float64(h)}
	if w == 0 {
		l.size.Width = fallbackLabelWidth
	}
	if h == 0 {
		l.size.Height = fallbackLabelHeight
	}
}
