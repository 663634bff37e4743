package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
)

type sessionResponse struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Create()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, Created: s.Created})
}

func (a *API) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) export(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		return http.StatusOK, st.ExportData(), nil
	})
}

func (a *API) exportChanges(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		return http.StatusOK, st.ExportChanges(), nil
	})
}

// importData replaces the session graph with the request body. Records that
// cannot load are listed in the response; only unreadable JSON fails.
func (a *API) importData(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxImportBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer r.Body.Close()

	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		res, err := st.ImportJSON(body)
		if a.metrics != nil {
			a.metrics.ObserveImport(err, len(res.Skipped))
		}
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		a.logger.Info("import complete",
			zap.String("session", chi.URLParam(r, "id")),
			zap.Int("loaded", res.Loaded),
			zap.Int("skipped", len(res.Skipped)))
		return http.StatusOK, res, nil
	})
}

func (a *API) clear(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		st.Clear()
		return http.StatusNoContent, nil, nil
	})
}

type historyResponse struct {
	Applied   bool `json:"applied"`
	UndoCount int  `json:"undoCount"`
	RedoCount int  `json:"redoCount"`
}

func (a *API) undo(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		ok, err := st.Undo()
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, history(st, ok), nil
	})
}

func (a *API) redo(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		ok, err := st.Redo()
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, history(st, ok), nil
	})
}

func history(st *canvas.Store, applied bool) historyResponse {
	return historyResponse{
		Applied:   applied,
		UndoCount: st.Log().UndoCount(),
		RedoCount: st.Log().RedoCount(),
	}
}

type eventResponse struct {
	Used     bool   `json:"used"`
	Selected string `json:"selected,omitempty"`
	State    string `json:"state"`
}

func (a *API) dispatch(w http.ResponseWriter, r *http.Request) {
	var ev canvas.Event
	if err := decode(r, &ev); err != nil {
		a.fail(w, r, err)
		return
	}

	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		used, err := st.Dispatch(ev)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, eventResponse{
			Used:     used,
			Selected: st.SelectedKey(),
			State:    st.State().Kind.String(),
		}, nil
	})
}

type paramsResponse struct {
	RefreshInterval time.Duration   `json:"refreshInterval"`
	PixelOffset     geometry.Point  `json:"pixelOffset"`
	PixelScale      float64         `json:"pixelScale"`
	WeightScale     float64         `json:"weightScale"`
	LinkModifier    string          `json:"linkModifier"`
	SelectionStroke string          `json:"selectionStroke"`
	EdgeStroke      string          `json:"edgeStroke"`
	Background      string          `json:"background,omitempty"`
	Bounds          geometry.Box    `json:"bounds"`
	Platform        canvas.Platform `json:"platform"`
}

func paramsView(p canvas.Params) paramsResponse {
	return paramsResponse{
		RefreshInterval: p.RefreshInterval,
		PixelOffset:     p.PixelOffset,
		PixelScale:      p.PixelScale,
		WeightScale:     p.WeightScale,
		LinkModifier:    p.LinkModifier.String(),
		SelectionStroke: p.SelectionStroke,
		EdgeStroke:      p.EdgeStroke,
		Background:      p.Background,
		Bounds:          p.Bounds,
		Platform:        p.Platform,
	}
}

func (a *API) params(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		return http.StatusOK, paramsView(st.Params()), nil
	})
}

// updateParams applies a partial update. Unusable values are skipped by the
// store, so the response shows what took effect.
func (a *API) updateParams(w http.ResponseWriter, r *http.Request) {
	var u canvas.ParamsUpdate
	if err := decode(r, &u); err != nil {
		a.fail(w, r, err)
		return
	}

	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		st.UpdateParams(u)
		return http.StatusOK, paramsView(st.Params()), nil
	})
}

// scene renders the current scene as SVG. Rendering does not count as a
// repaint for live subscribers.
func (a *API) scene(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	_ = s.Do(func(st *canvas.Store) error {
		dirty := st.Dirty()
		sf := drawables.NewSVGSurface(&buf, st.Params().Bounds)
		st.Draw(sf)
		sf.End()
		if dirty {
			st.Invalidate()
		}
		return nil
	})

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		a.logger.Warn("writing scene", zap.Error(err))
	}
}
