// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/jobmarket/internal/adapters/repository"
	service "github.com/okian/jobmarket/internal/app"
	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/internal/domain/types"
	"github.com/okian/jobmarket/pkg/logger"
)

const defaultRequestTimeout = 5 * time.Second

var validate = validator.New()

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the orchestrator.
type Dependencies interface {
	FilterDependencies
	CatalogDependencies
	SnapshotDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	filterHandler   *FilterHandler
	catalogHandler  *CatalogHandler
	snapshotHandler *SnapshotHandler
	stream          *StreamHub

	requestTimeout time.Duration
	logger         logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRequestTimeout bounds how long a handler waits for its cycle.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithStreamHub serves /api/stream from h. The caller subscribes h to the
// orchestrator.
func WithStreamHub(h *StreamHub) Option {
	return func(s *Server) { s.stream = h }
}

// WithLogger sets the logger for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{requestTimeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	if s.stream == nil {
		s.stream = NewStreamHub(defaultStreamBuffer)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider, s.stream)
	s.filterHandler = NewFilterHandler(deps, s.requestTimeout, s.logger)
	s.catalogHandler = NewCatalogHandler(deps)
	s.snapshotHandler = NewSnapshotHandler(deps)
	return s
}

// Stream returns the hub behind /api/stream.
func (s *Server) Stream() *StreamHub {
	return s.stream
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/positions", MetricsMiddleware(s.catalogHandler.HandlePositions, "positions"))
	mux.HandleFunc("GET /api/regions", MetricsMiddleware(s.catalogHandler.HandleRegions, "regions"))

	mux.HandleFunc("GET /api/filter", MetricsMiddleware(s.filterHandler.HandleGetFilter, "filter"))
	mux.HandleFunc("POST /api/filter", MetricsMiddleware(s.filterHandler.HandleReplaceFilter, "filter"))
	mux.HandleFunc("POST /api/filter/salary", MetricsMiddleware(s.filterHandler.HandleSetSalary, "filter_salary"))
	mux.HandleFunc("POST /api/positions/{key}/toggle", MetricsMiddleware(s.filterHandler.HandleTogglePosition, "toggle"))
	mux.HandleFunc("POST /api/refresh", MetricsMiddleware(s.filterHandler.HandleRefresh, "refresh"))

	mux.HandleFunc("GET /api/snapshot", MetricsMiddleware(s.snapshotHandler.HandleLatest, "snapshot"))
	mux.HandleFunc("GET /api/snapshot/{kind}", MetricsMiddleware(s.snapshotHandler.HandleDataset, "snapshot_kind"))
	mux.HandleFunc("GET /api/cycles", MetricsMiddleware(s.snapshotHandler.HandleRecent, "cycles"))

	mux.HandleFunc("GET /api/stream", MetricsMiddleware(s.stream.HandleStream, "stream"))
}

// FilterDependencies mutate the filter through the orchestrator.
type FilterDependencies interface {
	OnFilterChanged(ctx context.Context, st filter.State) (*model.Bundle, error)
	SetSalaryRange(ctx context.Context, minSalary, maxSalary int) (*model.Bundle, error)
	TogglePosition(ctx context.Context, key market.PositionKey) (*model.Bundle, error)
	Refresh(ctx context.Context) (*model.Bundle, error)
	Filter() filter.State
	Defaults() filter.Defaults
}

// CatalogDependencies expose the enumerations.
type CatalogDependencies interface {
	Positions() []types.Option
	Regions() []types.RegionOption
}

// SnapshotDependencies read published datasets.
type SnapshotDependencies interface {
	Latest(ctx context.Context) (*model.Bundle, error)
	Dataset(ctx context.Context, kind model.Kind) (model.Dataset, error)
	Recent(ctx context.Context, n int) ([]repository.CycleRef, error)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates orchestrator errors into status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, "invalid_filter", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// isNotFound reports whether err is a not-found condition of any layer.
func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNotFound) ||
		errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, ErrNotFound)
}
