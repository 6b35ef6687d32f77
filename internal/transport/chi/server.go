// Package chi exposes the estimator over HTTP: one endpoint per operator,
// the predefined query templates, sharding comparison and the catalog.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shardcost/internal/catalog"
	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	logpkg "github.com/kailas-cloud/shardcost/internal/logger"
	"github.com/kailas-cloud/shardcost/internal/metrics"
	"github.com/kailas-cloud/shardcost/internal/queries"
	"github.com/kailas-cloud/shardcost/internal/usecase/aggregate"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
	healthuc "github.com/kailas-cloud/shardcost/internal/usecase/health"
	"github.com/kailas-cloud/shardcost/internal/usecase/join"
	"github.com/kailas-cloud/shardcost/internal/usecase/sharding"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
)

// Server routes estimate requests to the operators.
type Server struct {
	cat        *catalog.Catalog
	filters    *filter.Operator
	joins      *join.Operator
	aggregates *aggregate.Operator
	analyzer   *sharding.Analyzer
	runner     *queries.Runner
	sizes      *size.Cache
	health     *healthuc.Service
	logger     *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(
	cat *catalog.Catalog,
	filters *filter.Operator,
	joins *join.Operator,
	aggregates *aggregate.Operator,
	analyzer *sharding.Analyzer,
	runner *queries.Runner,
	sizes *size.Cache,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		cat:        cat,
		filters:    filters,
		joins:      joins,
		aggregates: aggregates,
		analyzer:   analyzer,
		runner:     runner,
		sizes:      sizes,
		health:     health,
		logger:     logger,
	}
}

// Router builds the chi router with logging and metrics middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.withRequestLogger)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/estimates/filter", s.handleFilter)
		r.Post("/estimates/join", s.handleJoin)
		r.Post("/estimates/aggregate", s.handleAggregate)
		r.Get("/queries", s.handleListQueries)
		r.Get("/queries/{name}", s.handleRunQuery)
		r.Get("/compare/{collection}", s.handleCompare)
		r.Get("/catalog", s.handleCatalog)
	})
	return r
}

// withRequestLogger puts a request-scoped logger carrying the request ID into
// the context.
func (s *Server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(logpkg.ContextWithLogger(r.Context(), reqLogger)))
	})
}

type sideRequest struct {
	Collection  string   `json:"collection"`
	ShardingKey string   `json:"sharding_key,omitempty"`
	FilterKeys  []string `json:"filter_keys,omitempty"`
	OutputKeys  []string `json:"output_keys,omitempty"`
	Selectivity float64  `json:"selectivity"`
	GroupByKey  string   `json:"group_by_key,omitempty"`
}

type filterRequest struct {
	sideRequest
	UseIndex        bool             `json:"use_index"`
	ArrayItemCounts map[string]int64 `json:"array_item_counts,omitempty"`
}

type joinRequest struct {
	Left            sideRequest      `json:"left"`
	Right           sideRequest      `json:"right"`
	JoinKey         string           `json:"join_key"`
	ArrayItemCounts map[string]int64 `json:"array_item_counts,omitempty"`
}

type aggregateRequest struct {
	Left            sideRequest      `json:"left"`
	Right           *sideRequest     `json:"right,omitempty"`
	JoinKey         string           `json:"join_key,omitempty"`
	Limit           int64            `json:"limit,omitempty"`
	ArrayItemCounts map[string]int64 `json:"array_item_counts,omitempty"`
}

// resolve loads the named collection, sharded on the requested key if any.
func (s *Server) resolve(side sideRequest) (collection.Collection, map[string]int64, error) {
	entry, err := s.cat.Collection(side.Collection)
	if err != nil {
		return collection.Collection{}, nil, err
	}
	col := entry.Base
	if side.ShardingKey != "" {
		if col, err = entry.Sharded(side.ShardingKey); err != nil {
			return collection.Collection{}, nil, err
		}
	}
	return col, entry.ArrayItemCounts, nil
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	col, counts, err := s.resolve(req.sideRequest)
	if err != nil {
		s.writeDomainError(w, err, "resolve collection")
		metrics.EstimatesTotal.WithLabelValues("filter", "error").Inc()
		return
	}
	if req.ArrayItemCounts != nil {
		counts = req.ArrayItemCounts
	}

	res, err := s.filters.Estimate(filter.Request{
		Collection:      col,
		FilterKeys:      req.FilterKeys,
		OutputKeys:      req.OutputKeys,
		Selectivity:     req.Selectivity,
		UseIndex:        req.UseIndex,
		ArrayItemCounts: counts,
	})
	if err != nil {
		s.writeDomainError(w, err, "estimate filter")
		metrics.EstimatesTotal.WithLabelValues("filter", "error").Inc()
		return
	}
	metrics.EstimatesTotal.WithLabelValues("filter", "ok").Inc()
	metrics.EstimateDuration.WithLabelValues("filter").Observe(time.Since(started).Seconds())
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	left, counts, err := s.resolve(req.Left)
	if err != nil {
		s.writeDomainError(w, err, "resolve left collection")
		metrics.EstimatesTotal.WithLabelValues("join", "error").Inc()
		return
	}
	right, _, err := s.resolve(req.Right)
	if err != nil {
		s.writeDomainError(w, err, "resolve right collection")
		metrics.EstimatesTotal.WithLabelValues("join", "error").Inc()
		return
	}
	if req.ArrayItemCounts != nil {
		counts = req.ArrayItemCounts
	}

	res, err := s.joins.Estimate(join.Request{
		Left: join.Side{
			Collection:  left,
			FilterKeys:  req.Left.FilterKeys,
			Selectivity: req.Left.Selectivity,
			OutputKeys:  req.Left.OutputKeys,
		},
		Right: join.Side{
			Collection:  right,
			FilterKeys:  req.Right.FilterKeys,
			Selectivity: req.Right.Selectivity,
			OutputKeys:  req.Right.OutputKeys,
		},
		JoinKey:         req.JoinKey,
		ArrayItemCounts: counts,
	})
	if err != nil {
		s.writeDomainError(w, err, "estimate join")
		metrics.EstimatesTotal.WithLabelValues("join", "error").Inc()
		return
	}
	metrics.EstimatesTotal.WithLabelValues("join", "ok").Inc()
	metrics.EstimateDuration.WithLabelValues("join").Observe(time.Since(started).Seconds())
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req aggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	left, counts, err := s.resolve(req.Left)
	if err != nil {
		s.writeDomainError(w, err, "resolve left collection")
		metrics.EstimatesTotal.WithLabelValues("aggregate", "error").Inc()
		return
	}
	if req.ArrayItemCounts != nil {
		counts = req.ArrayItemCounts
	}

	areq := aggregate.Request{
		Left: aggregate.Side{
			Collection:  left,
			FilterKeys:  req.Left.FilterKeys,
			Selectivity: req.Left.Selectivity,
			OutputKeys:  req.Left.OutputKeys,
			GroupByKey:  req.Left.GroupByKey,
		},
		JoinKey:         req.JoinKey,
		Limit:           req.Limit,
		ArrayItemCounts: counts,
	}
	if req.Right != nil {
		right, _, err := s.resolve(*req.Right)
		if err != nil {
			s.writeDomainError(w, err, "resolve right collection")
			metrics.EstimatesTotal.WithLabelValues("aggregate", "error").Inc()
			return
		}
		areq.Right = &aggregate.Side{
			Collection:  right,
			FilterKeys:  req.Right.FilterKeys,
			Selectivity: req.Right.Selectivity,
			OutputKeys:  req.Right.OutputKeys,
			GroupByKey:  req.Right.GroupByKey,
		}
	}

	res, err := s.aggregates.Estimate(areq)
	if err != nil {
		s.writeDomainError(w, err, "estimate aggregate")
		metrics.EstimatesTotal.WithLabelValues("aggregate", "error").Inc()
		return
	}
	metrics.EstimatesTotal.WithLabelValues("aggregate", "ok").Inc()
	metrics.EstimateDuration.WithLabelValues("aggregate").Observe(time.Since(started).Seconds())
	s.writeJSON(w, http.StatusOK, res)
}

type queryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

func (s *Server) handleListQueries(w http.ResponseWriter, _ *http.Request) {
	names := queries.Names()
	infos := make([]queryInfo, 0, len(names))
	for _, name := range names {
		description, sql, _ := queries.Describe(name)
		infos = append(infos, queryInfo{Name: name, Description: description, SQL: sql})
	}
	s.writeJSON(w, http.StatusOK, infos)
}

// handleRunQuery runs a template. The sharding strategy comes from repeated
// "shard" query params of the form Collection:key.
func (s *Server) handleRunQuery(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	strategy := queries.Strategy{}
	for _, spec := range r.URL.Query()["shard"] {
		col, key, ok := strings.Cut(spec, ":")
		if !ok {
			s.writeError(w, http.StatusBadRequest, "shard param must be Collection:key")
			return
		}
		strategy[col] = key
	}

	out, err := s.runner.Run(name, strategy)
	if err != nil {
		s.writeDomainError(w, err, "run query template")
		metrics.TemplateRunsTotal.WithLabelValues(name, "error").Inc()
		return
	}
	metrics.TemplateRunsTotal.WithLabelValues(name, "ok").Inc()
	logpkg.FromContext(r.Context()).Debug("template run",
		zap.String("template", name),
		zap.Float64("time_ms", out.Cost().TimeMS),
		zap.Int("servers", out.Cost().NumServers),
	)
	s.writeJSON(w, http.StatusOK, out)
}

type compareResponse struct {
	Collection  string                  `json:"collection"`
	Strategies  []sharding.Distribution `json:"strategies"`
	Recommended string                  `json:"recommended"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	entry, err := s.cat.Collection(name)
	if err != nil {
		s.writeDomainError(w, err, "resolve collection")
		return
	}

	distributions, err := s.analyzer.CompareStrategies(entry.Base, entry.CandidateKeys)
	if err != nil {
		s.writeDomainError(w, err, "compare strategies")
		return
	}
	recommended, err := s.analyzer.Recommend(entry.Base, entry.CandidateKeys)
	if err != nil {
		s.writeDomainError(w, err, "recommend sharding key")
		return
	}
	s.writeJSON(w, http.StatusOK, compareResponse{
		Collection:  name,
		Strategies:  distributions,
		Recommended: recommended,
	})
}

type catalogEntry struct {
	Name                string           `json:"name"`
	DocumentCount       int64            `json:"document_count"`
	DocumentSizeBytes   int64            `json:"document_size_bytes"`
	CollectionSizeBytes int64            `json:"collection_size_bytes"`
	CandidateKeys       map[string]int64 `json:"candidate_sharding_keys,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	entries := s.cat.Collections()
	out := make([]catalogEntry, 0, len(entries))
	for _, e := range entries {
		docSize := s.sizes.Document(e.Base.Schema(), e.ArrayItemCounts)
		out = append(out, catalogEntry{
			Name:                e.Base.Name(),
			DocumentCount:       e.Base.DocumentCount(),
			DocumentSizeBytes:   docSize,
			CollectionSizeBytes: docSize * e.Base.DocumentCount(),
			CandidateKeys:       e.CandidateKeys,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	report := s.health.Check()
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, report)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeDomainError maps domain sentinels to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidSchema):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}
