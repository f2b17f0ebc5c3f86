package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
	domquery "github.com/kailas-cloud/photodex/internal/domain/query"
	"github.com/kailas-cloud/photodex/internal/logger"
	healthuc "github.com/kailas-cloud/photodex/internal/usecase/health"
	"github.com/kailas-cloud/photodex/internal/version"
)

// maxEventBytes caps upload notification bodies.
const maxEventBytes = 1 << 20

// QueryHandler answers natural-language search queries.
type QueryHandler interface {
	HandleQuery(ctx context.Context, sessionID, rawText string) (domquery.Response, error)
}

// UploadHandler processes raw upload notifications.
type UploadHandler interface {
	HandleNotification(ctx context.Context, data []byte) error
}

// Lookuper runs a capped fuzzy search for one keyword.
type Lookuper interface {
	Lookup(ctx context.Context, keyword string) ([]domquery.Hit, error)
}

// PhotoAdmin reads and removes indexed photo documents.
type PhotoAdmin interface {
	Get(ctx context.Context, objectKey string) (domphoto.Document, error)
	Exists(ctx context.Context, objectKey string) (bool, error)
	Delete(ctx context.Context, objectKey string) error
	Count(ctx context.Context) (int, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Deps are the use cases served over HTTP.
type Deps struct {
	Query   QueryHandler
	Uploads UploadHandler
	Lookup  Lookuper
	Photos  PhotoAdmin
	Health  HealthChecker
	// PublicBaseURL prefixes object keys in lookup responses.
	PublicBaseURL string
	// IndexName is reported by GET /admin/stats.
	IndexName string
}

// Server implements the photodex HTTP API.
type Server struct {
	deps          Deps
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	s := &Server{deps: deps, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorResponseCodeEmptyQuery),
		sentinelHandler(domain.ErrInvalidEvent, http.StatusBadRequest, ErrorResponseCodeInvalidEvent),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodePhotoNotFound),
		kindHandler(domain.KindSearch, http.StatusBadGateway, ErrorResponseCodeSearchBackendError),
	}
	return s
}

// Search handles GET /search?q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, ok := bindQuery(w, r)
	if !ok {
		return
	}

	resp, err := s.deps.Query.HandleQuery(r.Context(), sessionID(r), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		StatusCode:        resp.StatusCode,
		ExtractedKeywords: resp.ExtractedKeywords,
		Body:              QueryBody{ImagePaths: resp.ImagePaths},
	})
}

// Upload handles POST /events/upload with a storage notification envelope.
// A 5xx answer tells the dispatcher to retry.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid request body")
		return
	}

	if err := s.deps.Uploads.HandleNotification(r.Context(), body); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{Status: "ok"})
}

// AdminLookup handles GET /admin/lookup?q=.
func (s *Server) AdminLookup(w http.ResponseWriter, r *http.Request) {
	q, ok := bindQuery(w, r)
	if !ok {
		return
	}
	if q == "" {
		s.handleDomainError(w, r, domain.ErrEmptyQuery)
		return
	}

	hits, err := s.deps.Lookup.Lookup(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]LookupItem, len(hits))
	for i, h := range hits {
		items[i] = LookupItem{
			ObjectKey: h.ObjectKey,
			Score:     h.Score,
			ImagePath: domquery.Locator(s.deps.PublicBaseURL, h.ObjectKey),
		}
	}
	writeJSON(w, http.StatusOK, LookupResponse{Query: q, Hits: items})
}

// AdminGetPhoto handles GET /admin/photos/{key}. Keys may contain slashes.
func (s *Server) AdminGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := photoKey(r)
	if key == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "object key is required")
		return
	}

	doc, err := s.deps.Photos.Get(r.Context(), key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PhotoResponse{
		ObjectKey:        doc.ObjectKey(),
		Bucket:           doc.Bucket(),
		CreatedTimestamp: doc.CreatedTimestamp(),
		Labels:           doc.Labels(),
	})
}

// AdminHeadPhoto handles HEAD /admin/photos/{key}: 200 when indexed, 404 otherwise.
func (s *Server) AdminHeadPhoto(w http.ResponseWriter, r *http.Request) {
	key := photoKey(r)
	if key == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ok, err := s.deps.Photos.Exists(r.Context(), key)
	switch {
	case err != nil:
		s.logger.Error("Photo exists check failed", zap.String("object_key", key), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	case !ok:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// AdminDeletePhoto handles DELETE /admin/photos/{key}.
func (s *Server) AdminDeletePhoto(w http.ResponseWriter, r *http.Request) {
	key := photoKey(r)
	if key == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "object key is required")
		return
	}

	if err := s.deps.Photos.Delete(r.Context(), key); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.logger.Info("Photo removed from index", zap.String("object_key", key))
	w.WriteHeader(http.StatusNoContent)
}

// AdminStats handles GET /admin/stats.
func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Photos.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Index: s.deps.IndexName, Documents: n})
}

// photoKey extracts the object key from the wildcard segment.
func photoKey(r *http.Request) string {
	key := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	return key
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.String(),
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindQuery binds the optional q parameter; a malformed query string is answered with 400.
func bindQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid query parameter q")
		return "", false
	}
	return q, true
}

// sessionID reuses the request id so NLU sessions correlate with request logs.
func sessionID(r *http.Request) string {
	if id := chiMiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrInvalidEvent,
		domain.ErrNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	if domain.HasKind(err, domain.KindSearch) {
		return "search backend error"
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

// kindHandler returns an errorHandler that matches a classified error anywhere in the chain.
func kindHandler(kind domain.Kind, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !domain.HasKind(err, kind) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
