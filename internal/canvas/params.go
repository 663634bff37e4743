package canvas

import (
	"time"

	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/geometry"
)

const (
	DefaultRefreshInterval = time.Second / 15
	DefaultSelectionStroke = "#C00"
	DefaultEdgeStroke      = "#333"
	// SelectionStrokeWidth is the stroke width of a highlighted location.
	SelectionStrokeWidth = 2
)

// Params are the view settings of a store.
type Params struct {
	RefreshInterval time.Duration
	// PixelOffset and PixelScale map device coordinates to logical ones.
	PixelOffset     geometry.Point
	PixelScale      float64
	WeightScale     float64
	LinkModifier    Modifier
	SelectionStroke string
	EdgeStroke      string
	Background      string
	Bounds          geometry.Box
	Platform        Platform
}

func DefaultParams() Params {
	return Params{
		RefreshInterval: DefaultRefreshInterval,
		PixelScale:      1,
		WeightScale:     1,
		LinkModifier:    ModShift,
		SelectionStroke: DefaultSelectionStroke,
		EdgeStroke:      DefaultEdgeStroke,
		Bounds:          geometry.Box{Width: 1024, Height: 768},
	}
}

// ParamsUpdate is a partial Params; nil fields are left alone.
type ParamsUpdate struct {
	RefreshInterval *time.Duration  `json:"refreshInterval,omitempty"`
	PixelOffset     *geometry.Point `json:"pixelOffset,omitempty"`
	PixelScale      *float64        `json:"pixelScale,omitempty"`
	WeightScale     *float64        `json:"weightScale,omitempty"`
	LinkModifier    *string         `json:"linkModifier,omitempty"`
	SelectionStroke *string         `json:"selectionStroke,omitempty"`
	EdgeStroke      *string         `json:"edgeStroke,omitempty"`
	Background      *string         `json:"background,omitempty"`
	Bounds          *geometry.Box   `json:"bounds,omitempty"`
	Platform        *Platform       `json:"platform,omitempty"`
}

func (s *Store) Params() Params {
	return s.params
}

// UpdateParams applies the set fields of u. Values that cannot apply (a
// non-positive scale or interval, a link modifier that is not exactly one
// modifier) are logged and skipped.
func (s *Store) UpdateParams(u ParamsUpdate) {
	p := &s.params

	if u.RefreshInterval != nil {
		if *u.RefreshInterval > 0 {
			p.RefreshInterval = *u.RefreshInterval
		} else {
			s.logger.Warn("ignoring non-positive refresh interval", zap.Duration("interval", *u.RefreshInterval))
		}
	}
	if u.PixelOffset != nil {
		p.PixelOffset = *u.PixelOffset
	}
	if u.PixelScale != nil {
		if *u.PixelScale > 0 {
			p.PixelScale = *u.PixelScale
		} else {
			s.logger.Warn("ignoring non-positive pixel scale", zap.Float64("scale", *u.PixelScale))
		}
	}
	if u.WeightScale != nil {
		if *u.WeightScale > 0 {
			p.WeightScale = *u.WeightScale
			for e := range s.edges.Values() {
				e.Rescale()
			}
		} else {
			s.logger.Warn("ignoring non-positive weight scale", zap.Float64("scale", *u.WeightScale))
		}
	}
	if u.LinkModifier != nil {
		if mod, ok := ParseModifier(*u.LinkModifier); ok {
			p.LinkModifier = mod
		} else {
			s.logger.Warn("parameter linkModifier has non-modifier value", zap.String("value", *u.LinkModifier))
		}
	}
	if u.SelectionStroke != nil {
		p.SelectionStroke = *u.SelectionStroke
	}
	if u.EdgeStroke != nil {
		p.EdgeStroke = *u.EdgeStroke
		for e := range s.edges.Values() {
			e.SetStroke(p.EdgeStroke)
		}
	}
	if u.Background != nil && *u.Background != p.Background {
		s.logger.Debug("updating background", zap.String("href", *u.Background))
		p.Background = *u.Background
	}
	if u.Bounds != nil {
		if u.Bounds.Width > 0 && u.Bounds.Height > 0 {
			p.Bounds = *u.Bounds
		} else {
			s.logger.Warn("ignoring empty canvas bounds",
				zap.Float64("width", u.Bounds.Width), zap.Float64("height", u.Bounds.Height))
		}
	}
	if u.Platform != nil {
		p.Platform = *u.Platform
	}
	s.Invalidate()
}

// WeightScale is the multiplier from edge weight to stroke width.
func (s *Store) WeightScale() float64 {
	return s.params.WeightScale
}

// ToLogical converts a device point to canvas coordinates.
func (s *Store) ToLogical(device geometry.Point) geometry.Point {
	return device.Sub(s.params.PixelOffset).Scale(1 / s.params.PixelScale)
}
