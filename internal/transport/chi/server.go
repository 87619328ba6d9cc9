package chi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/logger"
	collectionuc "github.com/kailas-cloud/itemfilter/internal/usecase/collection"
	healthuc "github.com/kailas-cloud/itemfilter/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/itemfilter/internal/usecase/session"
)

// maxBodyBytes bounds request bodies; a full collection is the largest payload.
const maxBodyBytes = 32 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the itemfilter HTTP API.
type Server struct {
	collections   *collectionuc.Service
	sessions      *sessionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	collections *collectionuc.Service,
	sessions *sessionuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		collections: collections,
		sessions:    sessions,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCollectionNotFound, http.StatusNotFound, ErrorResponseCodeCollectionNotFound),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorResponseCodeSessionNotFound),
		sentinelHandler(domain.ErrViewNotFound, http.StatusNotFound, ErrorResponseCodeViewNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrInvalidItem, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidCollection, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownGroup, http.StatusBadRequest, ErrorResponseCodeUnknownGroup),
		sentinelHandler(domain.ErrUnknownToken, http.StatusBadRequest, ErrorResponseCodeUnknownToken),
		sentinelHandler(domain.ErrInvalidSortSpec, http.StatusBadRequest, ErrorResponseCodeInvalidSort),
		sentinelHandler(domain.ErrTooManySessions, http.StatusServiceUnavailable, ErrorResponseCodeTooManySessions),
	}
	return s
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/views", s.ListViews)

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", s.ListCollections)
		r.With(s.pathParam("collection")).Put("/{collection}", s.PutCollection)
		r.With(s.pathParam("collection")).Get("/{collection}", s.GetCollection)
		r.With(s.pathParam("collection")).Delete("/{collection}", s.DeleteCollection)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Route("/{session}", func(r chi.Router) {
			r.Use(s.pathParam("session"))
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/clicks", s.Click)
			r.Post("/sort", s.Sort)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "method not allowed")
	})
}

// Handler returns a router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

// pathParam rejects requests whose path parameter does not bind as a simple string.
func (s *Server) pathParam(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var v string
			err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
				runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
			if err != nil || v == "" {
				writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid format for parameter "+name)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListViews handles GET /views.
func (s *Server) ListViews(w http.ResponseWriter, _ *http.Request) {
	views := s.sessions.Views()
	resp := ViewListResponse{Items: make([]View, len(views))}
	for i, v := range views {
		resp.Items[i] = viewToWire(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCollections handles GET /collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := CollectionListResponse{Items: make([]Collection, len(cols))}
	for i, c := range cols {
		resp.Items[i] = collectionToWire(c, false)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PutCollection handles PUT /collections/{collection}.
func (s *Server) PutCollection(w http.ResponseWriter, r *http.Request) {
	var req PutCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items, err := itemsFromWire(req.Items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	col, created, err := s.collections.Put(r.Context(), chi.URLParam(r, "collection"), items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(col.Revision())))
	writeJSON(w, status, collectionToWire(col, false))
}

// GetCollection handles GET /collections/{collection}. ?items=true includes the items.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	var withItems *bool
	if err := runtime.BindQueryParameter("form", true, false, "items", r.URL.Query(), &withItems); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid format for parameter items")
		return
	}

	col, err := s.collections.Get(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(col.Revision())))
	writeJSON(w, http.StatusOK, collectionToWire(col, withItems != nil && *withItems))
}

// DeleteCollection handles DELETE /collections/{collection}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.collections.Delete(r.Context(), chi.URLParam(r, "collection")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Collection == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "collection is required")
		return
	}

	snap, err := s.sessions.Create(r.Context(), req.Collection, req.View)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/sessions/"+snap.ID)
	writeJSON(w, http.StatusCreated, sessionToWire(snap))
}

// GetSession handles GET /sessions/{session}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Get(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToWire(snap))
}

// DeleteSession handles DELETE /sessions/{session}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "session")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Click handles POST /sessions/{session}/clicks.
func (s *Server) Click(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Value == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "value is required")
		return
	}

	snap, changed, err := s.sessions.Click(r.Context(), chi.URLParam(r, "session"), req.Group, req.Value)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := sessionToWire(snap)
	resp.Changed = &changed
	writeJSON(w, http.StatusOK, resp)
}

// Sort handles POST /sessions/{session}/sort?by=&ascending=&option=.
func (s *Server) Sort(w http.ResponseWriter, r *http.Request) {
	var params SortParams
	query := r.URL.Query()
	bindings := []struct {
		name string
		dest any
	}{
		{"by", &params.By},
		{"ascending", &params.Ascending},
		{"option", &params.Option},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid format for parameter "+b.name)
			return
		}
	}
	if params.By == nil && params.Option == nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "by or option is required")
		return
	}

	req := sessionuc.SortRequest{Option: params.Option}
	if params.By != nil {
		req.By = *params.By
	}
	if params.Ascending != nil {
		req.Ascending = *params.Ascending
	}

	snap, err := s.sessions.Sort(r.Context(), chi.URLParam(r, "session"), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToWire(snap))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := sonic.ConfigDefault.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors carry user input only, so their full text is returned.
func safeDomainMessage(err error) string {
	detailed := []error{
		domain.ErrInvalidItem,
		domain.ErrInvalidCollection,
		domain.ErrUnknownGroup,
		domain.ErrUnknownToken,
		domain.ErrInvalidSortSpec,
	}
	for _, s := range detailed {
		if errors.Is(err, s) {
			return err.Error()
		}
	}

	sentinels := []error{
		domain.ErrCollectionNotFound,
		domain.ErrSessionNotFound,
		domain.ErrViewNotFound,
		domain.ErrNotFound,
		domain.ErrTooManySessions,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
