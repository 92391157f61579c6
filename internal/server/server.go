package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/config"
	"github.com/progressio/prediction-engine/internal/database"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
	"github.com/progressio/prediction-engine/internal/modules/alerts"
	"github.com/progressio/prediction-engine/internal/modules/analytics"
	"github.com/progressio/prediction-engine/internal/modules/features"
	"github.com/progressio/prediction-engine/internal/modules/predictions"
	"github.com/progressio/prediction-engine/internal/modules/registry"
	"github.com/progressio/prediction-engine/internal/modules/training"
	"github.com/progressio/prediction-engine/internal/modules/validation"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DB      *database.DB
	Config  *config.Config
	Events  *events.Manager
	Metrics *metrics.Metrics
	Store   *training.ArtifactStore
	DevMode bool
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	db      *database.DB
	cfg     *config.Config
	events  *events.Manager
	metrics *metrics.Metrics
	store   *training.ArtifactStore

	// Exposed for the expiry sweep wiring in main
	Predictions *predictions.Repository
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		db:      cfg.DB,
		cfg:     cfg.Config,
		events:  cfg.Events,
		metrics: cfg.Metrics,
		store:   cfg.Store,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes wires every module's repositories, services and handlers
func (s *Server) setupRoutes() {
	conn := s.db.Conn()

	featureRepo := features.NewRepository(conn, s.log)
	registryRepo := registry.NewRepository(conn, s.log)
	predictionRepo := predictions.NewRepository(conn, s.log)
	alertRepo := alerts.NewRepository(conn, s.log)
	validationRepo := validation.NewRepository(conn, s.log)
	s.Predictions = predictionRepo

	registryService := registry.NewService(registryRepo, s.events, s.log)
	alertService := alerts.NewService(alertRepo, s.events, s.metrics, s.log)
	pipeline := training.NewPipeline(registryRepo, featureRepo, s.store, s.events, s.metrics, training.Config{
		TrainSplit: s.cfg.TrainSplit,
		Seed:       s.cfg.TrainSeed,
	}, s.log)
	engine := predictions.NewEngine(registryRepo, predictionRepo, s.store, featureRepo,
		alertService, s.events, s.metrics, s.cfg.DefaultConfidence, s.log)
	validationService := validation.NewService(validationRepo, predictionRepo, s.events,
		s.metrics, s.cfg.AccuracyThreshold, s.log)
	analyticsService := analytics.NewService(conn, s.log)

	featureHandler := features.NewHandler(featureRepo, s.events, s.log)
	registryHandler := registry.NewHandler(registryService, s.log)
	trainingHandler := training.NewHandler(pipeline, s.log)
	predictionHandler := predictions.NewHandler(engine, predictionRepo, s.log)
	alertHandler := alerts.NewHandler(alertService, s.log)
	validationHandler := validation.NewHandler(validationService, s.log)
	analyticsHandler := analytics.NewHandler(analyticsService, s.log)

	// Health check and metrics
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/models", func(r chi.Router) {
			r.Get("/", registryHandler.HandleListModels)
			r.Post("/", registryHandler.HandleRegisterModel)
			r.Get("/{id}", registryHandler.HandleGetModel)
			r.Post("/{id}/deactivate", registryHandler.HandleDeactivateModel)
			r.Post("/{id}/train", trainingHandler.HandleTrainModel)
		})

		r.Post("/predict", predictionHandler.HandlePredict)

		r.Route("/predictions", func(r chi.Router) {
			r.Get("/{id}", predictionHandler.HandleGetPrediction)
			r.Post("/{id}/validate", validationHandler.HandleValidatePrediction)
		})

		r.Route("/entity/{id}", func(r chi.Router) {
			r.Get("/predictions", predictionHandler.HandleGetEntityPredictions)
			r.Get("/features", featureHandler.HandleGetEntityFeatures)
			r.Put("/features", featureHandler.HandlePutEntityFeatures)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.HandleListAlerts)
			r.Put("/{id}/acknowledge", alertHandler.HandleAcknowledgeAlert)
			r.Put("/{id}/resolve", alertHandler.HandleResolveAlert)
			r.Put("/{id}/dismiss", alertHandler.HandleDismissAlert)
		})

		r.Route("/features", func(r chi.Router) {
			r.Get("/", featureHandler.HandleListFeatures)
			r.Post("/", featureHandler.HandleCreateFeature)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/accuracy", analyticsHandler.HandleAccuracy)
			r.Get("/trends", analyticsHandler.HandleTrends)
		})
	})
}

// Router exposes the chi router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
