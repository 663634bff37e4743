package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/pathbuilder/core/internal/drawables"
)

// Invalidate marks the scene for repaint on the next tick.
func (s *Store) Invalidate() {
	s.dirty = true
}

func (s *Store) Dirty() bool {
	return s.dirty
}

// SetStatus sets the text shown in the bottom-right corner of the scene.
func (s *Store) SetStatus(text string) {
	if text != s.status {
		s.status = text
		s.Invalidate()
	}
}

// Draw paints the whole scene: background, edges, locations, status. The
// selection is drawn with the selection stroke.
func (s *Store) Draw(sf drawables.Surface) {
	p := s.params
	sf.Clear(p.Bounds)
	if p.Background != "" {
		sf.Image(p.Background, p.Bounds)
	}

	selLoc, selEdge := s.Selection()
	highlight := &drawables.Style{Stroke: p.SelectionStroke, StrokeWidth: SelectionStrokeWidth}

	for e := range s.edges.Values() {
		if e == selEdge {
			e.Draw(sf, highlight)
			continue
		}
		e.Draw(sf, nil)
	}
	for loc := range s.locations.Values() {
		if loc == selLoc {
			loc.Draw(sf, highlight)
			continue
		}
		loc.Draw(sf, nil)
	}

	if s.status != "" {
		drawables.DrawCornerText(sf, s.status, p.Bounds, p.PixelScale, drawables.BottomRight, 0)
	}
	s.dirty = false
}

// Paint draws the scene only if it changed since the last paint.
func (s *Store) Paint(sf drawables.Surface) bool {
	if !s.dirty {
		return false
	}
	s.Draw(sf)
	return true
}

// Run repaints on every refresh tick while the store is dirty, until ctx is
// done. mu guards the store; it is held for the dirty check and the frame
// call. frame is called with the lock held and after the store is clean.
func (s *Store) Run(ctx context.Context, mu sync.Locker, sf drawables.Surface, frame func()) error {
	mu.Lock()
	interval := s.params.RefreshInterval
	mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		mu.Lock()
		if s.Paint(sf) && frame != nil {
			frame()
		}
		if next := s.params.RefreshInterval; next != interval {
			interval = next
			ticker.Reset(interval)
		}
		mu.Unlock()
	}
}
