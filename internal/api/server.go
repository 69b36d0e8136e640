// Package api serves the pull-based HTTP surface: predictions, reports and alerts
// for the dashboard, plus health, readiness and metrics endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"burnout-workers/internal/alerts"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/models"
)

type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) *models.PredictionResult
}

// QuickPredictor asks the remote model directly. nil means unavailable.
type QuickPredictor interface {
	GetPrediction(ctx context.Context, subjectID, authToken string) *float64
}

type Reporter interface {
	Report(ctx context.Context, subjectID, format, authToken string) ([]byte, error)
}

type AlertStore interface {
	Evaluate(ctx context.Context, subjectID, metric string, value float64) (*models.ThresholdAlert, error)
	List(ctx context.Context, subjectID string) ([]models.ThresholdAlert, error)
}

type SmartAlerts interface {
	Get(ctx context.Context, subjectID, authToken string) *alerts.SmartAlert
}

// Pinger is one readiness dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type Deps struct {
	Predictor   Predictor
	Quick       QuickPredictor
	Reports     Reporter
	Alerts      AlertStore
	SmartAlerts SmartAlerts
	// Checks are pinged by /ready, keyed by dependency name.
	Checks       map[string]Pinger
	ReadyTimeout time.Duration
}

type Server struct {
	deps   Deps
	logger logger.Logger
	mux    *http.ServeMux
	now    func() time.Time
}

func NewServer(deps Deps, log logger.Logger) *Server {
	if deps.ReadyTimeout <= 0 {
		deps.ReadyTimeout = 2 * time.Second
	}
	s := &Server{
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
		mux:    http.NewServeMux(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /api/v1/predictions/{subjectId}", s.handlePrediction)
	s.mux.HandleFunc("GET /api/v1/predictions/{subjectId}/quick", s.handleQuickPrediction)
	s.mux.HandleFunc("GET /api/v1/reports/{subjectId}", s.handleReport)
	s.mux.HandleFunc("GET /api/v1/alerts/{subjectId}", s.handleAlerts)
	s.mux.HandleFunc("POST /api/v1/alerts/{subjectId}/metrics", s.handleMetricReading)
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.mux)
}

// NewHTTPServer binds the handler to addr with the given timeouts.
func (s *Server) NewHTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
}
