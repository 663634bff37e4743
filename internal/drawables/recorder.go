package drawables

import "github.com/pathbuilder/core/internal/geometry"

// Op is one recorded drawing call.
type Op struct {
	Op     string           `json:"op"`
	Points []geometry.Point `json:"points,omitempty"`
	Radius float64          `json:"radius,omitempty"`
	Size   *geometry.Box    `json:"size,omitempty"`
	Text   string           `json:"text,omitempty"`
	Href   string           `json:"href,omitempty"`
	Style  TextStyle        `json:"style"`
}

// Recorder is a Surface that keeps a display list instead of pixels. Frames
// pushed to live clients are recorder contents.
type Recorder struct {
	Ops []Op `json:"ops"`
}

func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

func (r *Recorder) Clear(size geometry.Box) {
	r.Reset()
	r.Ops = append(r.Ops, Op{Op: "clear", Size: &size})
}

func (r *Recorder) Image(href string, size geometry.Box) {
	r.Ops = append(r.Ops, Op{Op: "image", Href: href, Size: &size})
}

func (r *Recorder) Circle(center geometry.Point, radius float64, st Style) {
	r.Ops = append(r.Ops, Op{Op: "circle", Points: []geometry.Point{center}, Radius: radius, Style: TextStyle{Style: st}})
}

func (r *Recorder) Rect(origin geometry.Point, size geometry.Box, st Style) {
	r.Ops = append(r.Ops, Op{Op: "rect", Points: []geometry.Point{origin}, Size: &size, Style: TextStyle{Style: st}})
}

func (r *Recorder) Polygon(points []geometry.Point, st Style) {
	pts := append([]geometry.Point(nil), points...)
	r.Ops = append(r.Ops, Op{Op: "polygon", Points: pts, Style: TextStyle{Style: st}})
}

func (r *Recorder) Line(from, to geometry.Point, st Style) {
	r.Ops = append(r.Ops, Op{Op: "line", Points: []geometry.Point{from, to}, Style: TextStyle{Style: st}})
}

func (r *Recorder) Text(at geometry.Point, text string, st TextStyle) {
	r.Ops = append(r.Ops, Op{Op: "text", Points: []geometry.Point{at}, Text: text, Style: st})
}

// Count returns how many ops of the given kind were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, o := range r.Ops {
		if o.Op == op {
			n++
		}
	}
	return n
}
