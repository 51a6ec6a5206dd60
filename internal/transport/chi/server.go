package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semdex/internal/domain"
	documentuc "github.com/kailas-cloud/semdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/semdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/semdex/internal/usecase/search"
)

// StatusMessage is the body of GET /status.
const StatusMessage = "Application is running!"

// Server serves the document and search HTTP API.
type Server struct {
	documents   *documentuc.Service
	search      *searchuc.Service
	health      *healthuc.Service
	filterField string
	metrics     http.Handler
	logger      *zap.Logger
}

// NewServer wires the handlers. filterField is both the metadata key and the
// query parameter of GET /searchWithFilter.
func NewServer(
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	filterField string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		documents:   documents,
		search:      search,
		health:      health,
		filterField: filterField,
		metrics:     promhttp.Handler(),
		logger:      logger,
	}
}

// AddDocuments handles POST /addDocuments.
func (s *Server) AddDocuments(w http.ResponseWriter, r *http.Request) {
	var req []json.RawMessage
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, r, func(ctx context.Context) (any, error) {
		docs, err := s.documents.Add(ctx, submissionsFromRequest(req))
		return documentsToResponse(docs), err
	})
}

// DeleteDocuments handles DELETE /delete.
func (s *Server) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if !decodeBody(w, r, &ids) {
		return
	}
	s.respond(w, r, func(ctx context.Context) (any, error) {
		return s.documents.Delete(ctx, ids)
	})
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	p, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	s.respond(w, r, func(ctx context.Context) (any, error) {
		return s.search.Search(ctx, p.Query, p.TopK, p.Threshold)
	})
}

// SearchWithFilter handles GET /searchWithFilter.
func (s *Server) SearchWithFilter(w http.ResponseWriter, r *http.Request) {
	p, err := bindFilteredSearchParams(r, s.filterField)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	s.respond(w, r, func(ctx context.Context) (any, error) {
		return s.search.SearchByField(ctx, p.Query, p.TopK, p.Threshold, s.filterField, p.Value)
	})
}

// respond runs op with an embedding usage tracker and writes its result as
// 200 JSON, or the mapped domain error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, op func(context.Context) (any, error)) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	body, err := op(ctx)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, body)
}

// Status handles GET /status.
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, StatusMessage)
}

// HealthCheck handles GET /health. Anything short of healthy is a 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	resp := healthResponse{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		resp.Checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}
