package server

import (
	"log/slog"
	"net/http"

	"customer-dashboard/internal/handlers"
	"customer-dashboard/internal/models"
	"customer-dashboard/internal/services"
)

type Server struct {
	analytics    *services.Analytics
	mux          *http.ServeMux
	logger       *slog.Logger
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
	metrics      http.Handler
}

// Options configures NewServer. A nil Metrics handler leaves /metrics unrouted.
type Options struct {
	Defaults models.DateRange
	Metrics  http.Handler
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, opts Options) *Server {
	parser := handlers.NewFilterParser(opts.Defaults)
	s := &Server{
		analytics:    analytics,
		mux:          http.NewServeMux(),
		logger:       logger,
		apiHandlers:  handlers.NewAPIHandlers(analytics, parser, logger),
		sseHandlers:  handlers.NewSSEHandlers(analytics, parser, logger),
		pageHandlers: handlers.NewPageHandlers(analytics, opts.Defaults, logger),
		metrics:      opts.Metrics,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.apiHandlers.HandleReload)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/states", s.apiHandlers.HandleStates)
	s.mux.HandleFunc("GET /api/region-share", s.apiHandlers.HandleRegionShare)
	s.mux.HandleFunc("GET /api/monthly-revenue", s.apiHandlers.HandleMonthlyRevenue)
	s.mux.HandleFunc("GET /api/category-gender", s.apiHandlers.HandleCategoryGender)
	s.mux.HandleFunc("GET /api/tenure-scatter", s.apiHandlers.HandleTenureScatter)
	s.mux.HandleFunc("GET /api/age-bands", s.apiHandlers.HandleAgeBands)
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/export.xlsx", s.apiHandlers.HandleExport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
