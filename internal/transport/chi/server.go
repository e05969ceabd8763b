package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qbm25/internal/domain"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/domain/search/request"
	"github.com/kailas-cloud/qbm25/internal/metrics"
	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
	catalogueuc "github.com/kailas-cloud/qbm25/internal/usecase/catalogue"
	collectionuc "github.com/kailas-cloud/qbm25/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/qbm25/internal/usecase/document"
	healthuc "github.com/kailas-cloud/qbm25/internal/usecase/health"
	scoreuc "github.com/kailas-cloud/qbm25/internal/usecase/score"
	searchuc "github.com/kailas-cloud/qbm25/internal/usecase/search"
)

// Services are the use cases the HTTP API exposes.
type Services struct {
	Collections *collectionuc.Service
	Documents   *documentuc.Service
	Batch       *batchuc.Service
	Search      *searchuc.Service
	Score       *scoreuc.Service
	Catalogue   *catalogueuc.Service
	Health      *healthuc.Service
}

// Server holds the HTTP handlers of the API.
type Server struct {
	svc           Services
	logger        *zap.Logger
	gatherer      prometheus.Gatherer
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	return &Server{
		svc:           svc,
		logger:        logger,
		gatherer:      prometheus.DefaultGatherer,
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithGatherer serves /metrics from g instead of the default registry.
func (s *Server) WithGatherer(g prometheus.Gatherer) *Server {
	if g != nil {
		s.gatherer = g
	}
	return s
}

// RouterConfig holds the middleware settings of NewRouter.
type RouterConfig struct {
	APIKeys      []string
	MaxBodyBytes int64
}

// NewRouter wires middlewares and every API route onto a fresh chi router.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())
	r.Use(MaxBodyMiddleware(cfg.MaxBodyBytes))
	s.Register(r)
	return r
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/scripts", s.ListScripts)
	r.Post("/scripts/{script}/score", s.ScoreItems)

	r.Route("/collections", func(r gochi.Router) {
		r.Post("/", s.CreateCollection)
		r.Get("/", s.ListCollections)
		r.Route("/{collection}", func(r gochi.Router) {
			r.Get("/", s.GetCollection)
			r.Delete("/", s.DeleteCollection)

			r.Get("/documents", s.ListDocuments)
			r.Post("/documents/batch", s.BatchUpsert)
			r.Put("/documents/{id}", s.UpsertDocument)
			r.Get("/documents/{id}", s.GetDocument)
			r.Delete("/documents/{id}", s.DeleteDocument)

			r.Post("/search", s.SearchDocuments)

			r.Get("/units", s.ListUnits)
			r.Post("/units/rebuild", s.RebuildUnits)
		})
	})
}

// CreateCollection handles POST /collections.
func (s *Server) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "collection name is required")
		return
	}

	col, err := s.svc.Collections.Create(r.Context(), req.Name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, collectionToResponse(col))
}

// ListCollections handles GET /collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.svc.Collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]collectionResponse, len(cols))
	for i, c := range cols {
		items[i] = collectionToResponse(c)
	}
	writeJSON(w, http.StatusOK, collectionListResponse{Items: items})
}

// GetCollection handles GET /collections/{collection}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	info, err := s.svc.Collections.Describe(r.Context(), gochi.URLParam(r, "collection"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infoToResponse(info))
}

// DeleteCollection handles DELETE /collections/{collection}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Collections.Delete(r.Context(), gochi.URLParam(r, "collection")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpsertDocument handles PUT /collections/{collection}/documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	var req upsertDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := domdoc.New(gochi.URLParam(r, "id"), req.Content, req.Units, req.Values)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	created, err := s.svc.Documents.Upsert(r.Context(), gochi.URLParam(r, "collection"), &doc)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, documentToResponse(&doc))
}

// GetDocument handles GET /collections/{collection}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Documents.Get(r.Context(), gochi.URLParam(r, "collection"), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// DeleteDocument handles DELETE /collections/{collection}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Documents.Delete(r.Context(), gochi.URLParam(r, "collection"), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments handles GET /collections/{collection}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	docs, next, err := s.svc.Documents.List(
		r.Context(), gochi.URLParam(r, "collection"), r.URL.Query().Get("cursor"), limit,
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := documentListResponse{Items: make([]documentResponse, len(docs)), HasMore: next != ""}
	for i := range docs {
		resp.Items[i] = documentToResponse(&docs[i])
	}
	if next != "" {
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// BatchUpsert handles POST /collections/{collection}/documents/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req batchUpsertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]batchuc.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = batchuc.Item{ID: it.ID, Content: it.Content, Units: it.Units, Values: it.Values}
	}

	results, err := s.svc.Batch.Upsert(r.Context(), gochi.URLParam(r, "collection"), items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchToResponse(results))
}

// SearchDocuments handles POST /collections/{collection}/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if !decodeBody(w, r, &body) {
		return
	}

	var sc *request.Script
	if body.Script != nil {
		sc = &request.Script{Lang: body.Script.Lang, Source: body.Script.Source, Params: body.Script.Params}
	}
	req, err := request.New(body.Query, sc, body.TopK, body.Limit, body.MinScore)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results, err := s.svc.Search.Search(r.Context(), gochi.URLParam(r, "collection"), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsToResponse(results))
}

// ListScripts handles GET /scripts.
func (s *Server) ListScripts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scriptsResponse{Scripts: s.svc.Score.Scripts()})
}

// ScoreItems handles POST /scripts/{script}/score.
func (s *Server) ScoreItems(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	scored, err := s.svc.Score.Score(
		r.Context(), req.Lang, gochi.URLParam(r, "script"), req.Params, scoreItemsFromRequest(req.Items),
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoredToResponse(scored))
}

// ListUnits handles GET /collections/{collection}/units.
func (s *Server) ListUnits(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "collection")
	units, err := s.svc.Catalogue.Units(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unitsResponse{Collection: name, Units: nonNil(units)})
}

// RebuildUnits handles POST /collections/{collection}/units/rebuild.
func (s *Server) RebuildUnits(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "collection")
	units, err := s.svc.Catalogue.Rebuild(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unitsResponse{Collection: name, Units: nonNil(units)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// decodeBody decodes a JSON body into v, writing a bad_request response on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// batchItemError exposes validation failures and hides storage errors.
func batchItemError(err error) string {
	if errors.Is(err, domain.ErrInvalidDocument) {
		return validationMessage(err, domain.ErrInvalidDocument)
	}
	return "internal error"
}
