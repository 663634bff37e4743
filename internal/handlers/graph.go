package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/geometry"
	"github.com/pathbuilder/core/internal/graph"
	"github.com/pathbuilder/core/internal/models"
)

type createLocationRequest struct {
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	X     *float64 `json:"x" validate:"required"`
	Y     *float64 `json:"y" validate:"required"`
	Shape string   `json:"shape" validate:"omitempty,oneof=Circle Rectangle Square Star Triangle"`
	Data  any      `json:"data"`
}

func (a *API) createLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		loc, err := st.CreateLocation(graph.LocationInit{
			Key:      req.Key,
			Name:     req.Name,
			Position: geometry.Pt(*req.X, *req.Y),
			Kind:     drawables.Kind(req.Shape),
			Data:     req.Data,
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, loc.ToRecord(), nil
	})
}

type modifyLocationRequest struct {
	Name     *string         `json:"name"`
	Shape    *string         `json:"shape" validate:"omitempty,oneof=Circle Rectangle Square Star Triangle"`
	Position *geometry.Point `json:"position"`
}

type modifyLocationResponse struct {
	Changed  bool                   `json:"changed"`
	Location *models.LocationRecord `json:"location"`
}

func (a *API) modifyLocation(w http.ResponseWriter, r *http.Request) {
	var req modifyLocationRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	key := chi.URLParam(r, "key")

	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		loc, ok := st.Location(key)
		if !ok {
			return 0, nil, fmt.Errorf("%w: %s", canvas.ErrUnknownLocation, key)
		}
		diff := canvas.LocationDiff{Name: req.Name, Position: req.Position}
		if req.Shape != nil {
			kind := drawables.Kind(*req.Shape)
			diff.Shape = &kind
		}
		changed, err := st.ModifyLocation(key, diff)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, modifyLocationResponse{Changed: changed, Location: loc.ToRecord()}, nil
	})
}

func (a *API) removeLocation(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		if !st.RemoveLocation(key) {
			return 0, nil, fmt.Errorf("%w: %s", canvas.ErrUnknownLocation, key)
		}
		return http.StatusNoContent, nil, nil
	})
}

type createEdgeRequest struct {
	Start  string  `json:"start" validate:"required"`
	End    string  `json:"end" validate:"required,nefield=Start"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

func (a *API) createEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		e, created, err := st.CreateEdge(req.Start, req.End, req.Weight)
		if err != nil {
			return 0, nil, err
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		return status, e.ToRecord(), nil
	})
}

type modifyEdgeRequest struct {
	Weight float64 `json:"weight" validate:"gt=0"`
}

type modifyEdgeResponse struct {
	Changed bool               `json:"changed"`
	Edge    *models.EdgeRecord `json:"edge"`
}

func (a *API) modifyEdge(w http.ResponseWriter, r *http.Request) {
	var req modifyEdgeRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	start, end := chi.URLParam(r, "start"), chi.URLParam(r, "end")

	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		e, ok := st.Edge(start, end)
		if !ok {
			return 0, nil, fmt.Errorf("%w: edge %s-%s", errNotFound, start, end)
		}
		changed, err := st.ModifyEdge(start, end, req.Weight)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, modifyEdgeResponse{Changed: changed, Edge: e.ToRecord()}, nil
	})
}

func (a *API) removeEdge(w http.ResponseWriter, r *http.Request) {
	start, end := chi.URLParam(r, "start"), chi.URLParam(r, "end")
	a.withSession(w, r, func(st *canvas.Store) (int, any, error) {
		if !st.RemoveEdge(start, end) {
			return 0, nil, fmt.Errorf("%w: edge %s-%s", errNotFound, start, end)
		}
		return http.StatusNoContent, nil, nil
	})
}
