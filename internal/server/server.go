// Package server exposes the dashboard state over HTTP. Read
// endpoints serve straight from the in-memory stores; alert actions
// go through the dashboard, which confirms them with the backend
// before anything changes locally.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/citypulse/dashboard/internal/dashboard"
	"github.com/citypulse/dashboard/pkg/config"
)

// Server is the HTTP front of the dashboard engine
type Server struct {
	httpServer *http.Server
	dash       *dashboard.Dashboard
	log        *zap.Logger
}

// NewServer assembles the router, middleware and HTTP server
func NewServer(cfg *config.ServerConfig, dash *dashboard.Dashboard, logger *zap.Logger, registry *prometheus.Registry) *Server {
	s := &Server{
		dash: dash,
		log:  logger,
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.router(registry),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the assembled route table
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// router builds the route table with logging and metrics middleware
// applied to every endpoint
func (s *Server) router(registry *prometheus.Registry) *mux.Router {
	router := mux.NewRouter()

	loggingMiddleware := NewLoggingMiddleware(s.log)
	metricsMiddleware := NewMetricsMiddleware(registry)
	router.Use(loggingMiddleware.LogRequest)
	router.Use(metricsMiddleware.CollectMetrics)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")

	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/snapshot", s.handleSnapshot).Methods("GET")
	apiV1.HandleFunc("/overview", s.handleOverview).Methods("GET")
	apiV1.HandleFunc("/sensors", s.handleSensors).Methods("GET")
	apiV1.HandleFunc("/alerts", s.handleAlerts).Methods("GET")
	apiV1.HandleFunc("/alerts/{alert_id}/acknowledge", s.handleAcknowledge).Methods("POST")
	apiV1.HandleFunc("/alerts/{alert_id}/resolve", s.handleResolve).Methods("POST")
	apiV1.HandleFunc("/metrics", s.handleMetricSummaries).Methods("GET")
	apiV1.HandleFunc("/metrics/{metric_type}", s.handleMetricSummary).Methods("GET")
	apiV1.HandleFunc("/notifications", s.handleNotifications).Methods("GET")
	apiV1.HandleFunc("/notifications/{id}", s.handleDismissNotification).Methods("DELETE")

	return router
}

// Start begins serving. It blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
