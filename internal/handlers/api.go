package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/changes"
	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/graph"
	"github.com/pathbuilder/core/internal/metrics"
	"github.com/pathbuilder/core/internal/parser"
	"github.com/pathbuilder/core/internal/session"
)

// DefaultMaxImportBytes caps import bodies when no limit is configured.
const DefaultMaxImportBytes = 8 << 20

type API struct {
	sessions       *session.Manager
	metrics        *metrics.Collector
	logger         *zap.Logger
	maxImportBytes int64
}

type Option func(*API)

func WithLogger(logger *zap.Logger) Option {
	return func(a *API) { a.logger = logger }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(a *API) { a.metrics = c }
}

func WithMaxImportBytes(n int64) Option {
	return func(a *API) { a.maxImportBytes = n }
}

func NewAPI(sessions *session.Manager, opts ...Option) *API {
	a := &API{
		sessions:       sessions,
		logger:         zap.NewNop(),
		maxImportBytes: DefaultMaxImportBytes,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterRoutes mounts every endpoint on r.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/health", a.Health)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Post("/sessions", a.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", a.deleteSession)
		r.Get("/export", a.export)
		r.Post("/import", a.importData)
		r.Get("/changes", a.exportChanges)
		r.Post("/clear", a.clear)
		r.Post("/undo", a.undo)
		r.Post("/redo", a.redo)
		r.Post("/events", a.dispatch)
		r.Get("/params", a.params)
		r.Patch("/params", a.updateParams)
		r.Get("/scene.svg", a.scene)
		r.Get("/ws", a.stream)

		r.Post("/locations", a.createLocation)
		r.Patch("/locations/{key}", a.modifyLocation)
		r.Delete("/locations/{key}", a.removeLocation)

		r.Post("/edges", a.createEdge)
		r.Patch("/edges/{start}/{end}", a.modifyEdge)
		r.Delete("/edges/{start}/{end}", a.removeEdge)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	encodeJSON(w, status, v, false)
}

func encodeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		zap.L().Warn("encoding response", zap.Error(err))
	}
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var (
		uniq     *graph.UniquenessError
		geom     *drawables.GeometryError
		changeEr *changes.ChangeError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, canvas.ErrUnknownLocation),
		errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &uniq), errors.As(err, &changeEr):
		return http.StatusConflict
	case errors.As(err, &geom):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrSelfEdge), errors.Is(err, graph.ErrKeySeparator),
		errors.Is(err, parser.ErrEmptyImport), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		a.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	if a.metrics != nil {
		a.metrics.Rejected.WithLabelValues(strconv.Itoa(status)).Inc()
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %v", errBadRequest, err)
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if err := parser.ValidateStruct(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// withSession looks up the session named in the URL and runs fn on its store.
func (a *API) withSession(w http.ResponseWriter, r *http.Request, fn func(*canvas.Store) (int, any, error)) {
	s, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var (
		status int
		body   any
	)
	err = s.Do(func(st *canvas.Store) error {
		var err error
		status, body, err = fn(st)
		return err
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	encodeJSON(w, status, body, r.URL.Query().Get("pretty") == "true")
}
