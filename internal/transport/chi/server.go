package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/domain"
	domquery "github.com/indicbot/indicbot/internal/domain/query"
	"github.com/indicbot/indicbot/internal/domain/record"
	healthuc "github.com/indicbot/indicbot/internal/usecase/health"
	ingestuc "github.com/indicbot/indicbot/internal/usecase/ingest"
	"github.com/indicbot/indicbot/internal/version"
)

// Client-facing error messages.
const (
	msgMissingQuery  = "Missing 'query' string"
	msgMissingRows   = "Provide rows: [...] payload"
	msgNoValidRows   = "No valid rows to ingest"
	msgNotConfigured = "Pinecone not configured"
	msgQueryFailed   = "Query failed"
	msgIngestFailed  = "Ingestion failed"
	msgInvalidBody   = "Invalid JSON body"
	msgBodyTooLarge  = "Request body too large"
	msgInternalError = "Internal error"
)

// Searcher runs the query pipeline.
type Searcher interface {
	Search(ctx context.Context, req domquery.Request) (domquery.Result, error)
}

// Ingester stores ingest rows.
type Ingester interface {
	Ingest(ctx context.Context, rows []record.Row) (ingestuc.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search API.
type Server struct {
	search        Searcher
	ingest        Ingester
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, ingest Ingester, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		ingest: ingest,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		bodyTooLargeHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, msgInvalidBody),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, msgMissingQuery),
		sentinelHandler(domain.ErrNoRows, http.StatusBadRequest, msgMissingRows),
		sentinelHandler(domain.ErrNoValidRows, http.StatusBadRequest, msgNoValidRows),
		sentinelHandler(domain.ErrStoreNotConfigured, http.StatusInternalServerError, msgNotConfigured),
	}
	return s
}

// Query handles POST /api/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	if err := decodeBody(r, &body); err != nil {
		s.handleDomainError(w, r, err, msgQueryFailed)
		return
	}

	req, err := body.toDomain()
	if err != nil {
		s.handleDomainError(w, r, err, msgQueryFailed)
		return
	}

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err, msgQueryFailed)
		return
	}

	writeJSON(w, http.StatusOK, queryResponseFromDomain(res))
}

// Ingest handles POST /api/ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var body ingestRequest
	if err := decodeBody(r, &body); err != nil {
		s.handleDomainError(w, r, err, msgIngestFailed)
		return
	}

	res, err := s.ingest.Ingest(r.Context(), body.toDomain())
	if err != nil {
		s.handleDomainError(w, r, err, msgIngestFailed)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Status:   "ok",
		Ingested: res.Ingested,
		Skipped:  res.Skipped,
	})
}

// HealthCheck handles GET /health. Always 200; checks carry component status.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:   report.Status,
		Pinecone: report.Pinecone,
		Index:    report.Index,
		Checks:   checks,
		Version:  version.Version,
	})
}

// NotFound answers unknown routes with a JSON error.
func (s *Server) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", "")
}

// MethodNotAllowed answers known routes called with the wrong method.
func (s *Server) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &requestError{err: err}
	}
	return nil
}

// requestError marks a body that could not be decoded.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() []error { return []error{domain.ErrInvalidRequest, e.err} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Client errors carry the decoder message as details.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		details := ""
		var re *requestError
		if errors.As(err, &re) {
			details = re.err.Error()
		}
		writeError(w, status, message, details)
		return true
	}
}

func bodyTooLargeHandler(w http.ResponseWriter, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, "")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	log := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("Request rejected", zap.Error(err))
			return
		}
	}
	log.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, failure, err.Error())
}
