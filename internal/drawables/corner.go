package drawables

import (
	"fmt"
	"math"

	"github.com/pathbuilder/core/internal/geometry"
)

// Corner is a bit set of one vertical and one horizontal side.
type Corner uint8

const (
	top Corner = 1 << iota
	bottom
	right
	left
)

const (
	TopRight    = top | right
	BottomRight = bottom | right
	TopLeft     = top | left
	BottomLeft  = bottom | left
)

// DrawCornerText writes a status line in a corner of the scene. The font is
// scaled by scaleRatio so it keeps its on-screen size when the scene is
// displayed shrunk or enlarged.
func DrawCornerText(sf Surface, text string, size geometry.Box, scaleRatio float64, where Corner, baseFontSize float64) {
	if scaleRatio <= 0 {
		scaleRatio = 1
	}
	if baseFontSize <= 0 {
		baseFontSize = 10
	}
	fontSize := math.Ceil(baseFontSize / scaleRatio)

	st := TextStyle{
		Style: Style{
			Fill:        "black",
			Stroke:      "white",
			StrokeWidth: math.Ceil(2 / scaleRatio),
		},
		Font:     fmt.Sprintf("%gpx Courier New", fontSize),
		Align:    "left",
		Baseline: "bottom",
	}

	at := geometry.Pt(0, size.Height)
	if where&right != 0 {
		st.Align = "right"
		at.X = size.Width
	}
	if where&top != 0 {
		st.Baseline = "top"
		at.Y = 0
	}

	sf.Text(at, text, st)
}
