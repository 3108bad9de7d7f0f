package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/lny-platform/product-catalog/internal/catalog"
	"github.com/lny-platform/product-catalog/internal/config"
	"github.com/lny-platform/product-catalog/internal/http/apierr"
	"github.com/lny-platform/product-catalog/internal/http/metric"
	"github.com/lny-platform/product-catalog/internal/http/middleware"
	"github.com/lny-platform/product-catalog/internal/http/swagger"
	"github.com/lny-platform/product-catalog/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	authCfg   config.Auth
	rlCfg     config.RateLimit
	logger    *slog.Logger
	metrics   *metric.Metrics
	healthChk db.HealthChecker

	catalogSvc catalog.Service
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	authCfg config.Auth,
	rlCfg config.RateLimit,
	log *slog.Logger,
	catalogSvc catalog.Service,
	healthChk db.HealthChecker,
) *Service {
	return &Service{
		cfg:        cfg,
		authCfg:    authCfg,
		rlCfg:      rlCfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(),
		healthChk:  healthChk,
		catalogSvc: catalogSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.RateLimit(s.rlCfg),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.catalogSvc)
	exports := newExportHandler(s.catalogSvc)
	stats := newStatsHandler(s.catalogSvc)

	r.Route("/api", func(api chi.Router) {
		api.Get("/products", s.handle(products.listProducts))
		api.Get("/products/{productID}", s.handle(products.getProduct))
		api.Get("/categories", s.handle(products.listCategories))
		api.Get("/stats", s.handle(stats.getStats))
		api.Get("/logs", s.handle(stats.listAuditLogs))
		api.Get("/export/products", s.handle(exports.exportProducts))

		// Mutating routes require the API key.
		api.Group(func(mut chi.Router) {
			mut.Use(middleware.APIKey(s.authCfg.APIKey))
			mut.Post("/products", s.handle(products.createProduct))
			mut.Put("/products/{productID}", s.handle(products.updateProduct))
			mut.Delete("/products/{productID}", s.handle(products.deleteProduct))
		})
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle(middleware.MetricsPath, s.metrics.Handler())
}

// handle adapts an error-returning handler, translating failures through
// apierr.
func (s *Service) handle(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthChk != nil {
		if healthy, err := s.healthChk.IsHealthy(r.Context()); err != nil || !healthy {
			//nolint:errcheck
			writeJSON(w, http.StatusServiceUnavailable, dataResponse{Success: false, Data: "unhealthy"})
			return
		}
	}

	//nolint:errcheck
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: "ok"})
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

// dataResponse is the success envelope for single-entity responses.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// listResponse is the success envelope for collection responses.
type listResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
