package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/sensors"
)

const maxBodyBytes = 1 << 20

// Service is the monitor surface served over HTTP.
type Service interface {
	Monitor(ctx context.Context, location string) (domain.Assessment, error)
	History(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	Correlations(ctx context.Context, limit int) (domain.CorrelationResult, error)
	Sensors(ctx context.Context) sensors.Snapshot
	Corroborate(ctx context.Context, report domain.CitizenReport) (domain.Corroboration, error)
}

// Server exposes the monitor API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Service
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /healthz, /readyz, and /metrics.
func NewServer(addr string, svc Service, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /api/monitor", s.handleMonitor)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/correlations", s.handleCorrelations)
	mux.HandleFunc("GET /api/sensors", s.handleSensors)
	mux.HandleFunc("POST /api/reports/corroborate", s.handleCorroborate)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type monitorResponse struct {
	Location       string         `json:"city"`
	Timestamp      time.Time      `json:"timestamp"`
	Data           domain.Reading `json:"data"`
	RiskScore      int            `json:"risk_score"`
	RiskLevel      string         `json:"risk_level"`
	Alerts         []domain.Alert `json:"alerts"`
	Recommendation string         `json:"recommendation,omitempty"`
	Messages       []string       `json:"messages"`
}

func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Monitor(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	alerts := a.Risk.Alerts
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, monitorResponse{
		Location:       a.Reading.Location,
		Timestamp:      a.Reading.Timestamp,
		Data:           a.Reading,
		RiskScore:      a.Risk.Score,
		RiskLevel:      a.Level,
		Alerts:         alerts,
		Recommendation: a.Risk.Recommendation.Text(),
		Messages:       a.Risk.Messages(),
	})
}

type historyResponse struct {
	History []domain.HistoryRecord `json:"history"`
	Count   int                    `json:"count"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	records, err := s.svc.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{History: records, Count: len(records)})
}

func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.Correlations(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Sensors(r.Context()))
}

func (s *Server) handleCorroborate(w http.ResponseWriter, r *http.Request) {
	var report domain.CitizenReport
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	result, err := s.svc.Corroborate(r.Context(), report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseLimit returns 0 when the limit parameter is absent.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.Join(domain.ErrInvalidLimit, errors.New("limit must be a positive integer"))
	}
	return limit, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidLimit), errors.Is(err, domain.ErrInvalidReport):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
