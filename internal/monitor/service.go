// Package monitor composes the simulator, scoring, history and sensor
// enrichment into the operations served over HTTP and by the sampler.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/couchcryptid/envwatch-service/internal/config"
	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/observability"
	"github.com/couchcryptid/envwatch-service/internal/sensors"
)

// DefaultHistoryLimit is the window used when the caller does not pass one.
const DefaultHistoryLimit = 24

// ReadingSource produces a fresh reading per call.
type ReadingSource interface {
	FetchReading(ctx context.Context, location string) domain.Reading
}

// HistoryStore persists scored readings and returns them newest first.
type HistoryStore interface {
	Append(ctx context.Context, r domain.Reading, score int) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	CheckReadiness(ctx context.Context) error
}

// Publisher forwards assessments downstream.
type Publisher interface {
	Publish(ctx context.Context, assessments []domain.Assessment) error
}

// SensorEnricher attaches live values to sensor descriptors.
type SensorEnricher interface {
	Enrich(ctx context.Context, ds []sensors.Descriptor) sensors.Snapshot
}

// Deps are the collaborators of a Service. Publisher is optional.
type Deps struct {
	Source    ReadingSource
	History   HistoryStore
	Publisher Publisher
	Enricher  SensorEnricher
	Sensors   []sensors.Descriptor

	DefaultLocation string
	HistoryLimit    int

	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Service owns the per-process monitor state and exposes its operations.
type Service struct {
	source    ReadingSource
	history   HistoryStore
	publisher Publisher
	enricher  SensorEnricher
	sensors   []sensors.Descriptor

	defaultLocation string
	historyLimit    int

	metrics *observability.Metrics
	logger  *slog.Logger
	ready   atomic.Bool
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	limit := d.HistoryLimit
	if limit <= 0 || limit > config.MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return &Service{
		source:          d.Source,
		history:         d.History,
		publisher:       d.Publisher,
		enricher:        d.Enricher,
		sensors:         d.Sensors,
		defaultLocation: d.DefaultLocation,
		historyLimit:    limit,
		metrics:         d.Metrics,
		logger:          d.Logger,
	}
}

// Monitor produces, scores and records one reading for location. An empty
// location uses the configured default. The assessment is returned even when
// the history write fails so callers can decide whether to surface it.
func (s *Service) Monitor(ctx context.Context, location string) (domain.Assessment, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = s.defaultLocation
	}

	reading := s.source.FetchReading(ctx, location)
	a := domain.Assess(reading)
	s.observe(a)

	if err := s.history.Append(ctx, a.Reading, a.Risk.Score); err != nil {
		s.metrics.HistoryWrites.WithLabelValues("error").Inc()
		return a, fmt.Errorf("append history: %w", err)
	}
	s.metrics.HistoryWrites.WithLabelValues("success").Inc()

	s.publish(ctx, a)
	s.ready.Store(true)

	s.logger.Debug("reading recorded",
		"location", location,
		"risk_score", a.Risk.Score,
		"alerts", len(a.Risk.Alerts),
		"weather", a.Reading.WeatherStatus,
	)
	return a, nil
}

func (s *Service) observe(a domain.Assessment) {
	s.metrics.ReadingsGenerated.Inc()
	s.metrics.RiskScore.Observe(float64(a.Risk.Score))
	s.metrics.WeatherLookups.WithLabelValues(string(a.Reading.WeatherStatus)).Inc()
	for _, alert := range a.Risk.Alerts {
		s.metrics.Alerts.WithLabelValues(alert.Rule).Inc()
	}
}

// publish is best effort: a broker outage must not fail the reading.
func (s *Service) publish(ctx context.Context, a domain.Assessment) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, []domain.Assessment{a}); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("publish reading failed", "location", a.Reading.Location, "error", err)
		return
	}
	s.metrics.ReadingsPublished.Inc()
}

// History returns up to limit records newest first. A zero limit uses the
// configured default; anything negative or above config.MaxHistoryLimit is
// rejected with domain.ErrInvalidLimit.
func (s *Service) History(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit == 0 {
		limit = s.historyLimit
	}
	if limit < 0 || limit > config.MaxHistoryLimit {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", domain.ErrInvalidLimit, limit, config.MaxHistoryLimit)
	}
	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return records, nil
}

// Correlations correlates the most recent limit history records.
func (s *Service) Correlations(ctx context.Context, limit int) (domain.CorrelationResult, error) {
	records, err := s.History(ctx, limit)
	if err != nil {
		return domain.CorrelationResult{}, err
	}
	return domain.Correlate(records), nil
}

// Sensors returns the enriched sensor network.
func (s *Service) Sensors(ctx context.Context) sensors.Snapshot {
	snap := s.enricher.Enrich(ctx, s.sensors)
	if snap.Cached {
		s.metrics.SensorCache.WithLabelValues("hit").Inc()
	} else {
		s.metrics.SensorCache.WithLabelValues("miss").Inc()
	}
	return snap
}

// Corroborate checks a citizen report against a fresh reading for its
// location. The reading is not recorded in history.
func (s *Service) Corroborate(ctx context.Context, report domain.CitizenReport) (domain.Corroboration, error) {
	if err := report.Validate(); err != nil {
		return domain.Corroboration{}, err
	}
	reading := s.source.FetchReading(ctx, strings.TrimSpace(report.Location))
	return domain.Corroborate(report, reading), nil
}

// CheckReadiness reports ready once a reading has been recorded and the
// history store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if !s.ready.Load() {
		return errors.New("no reading recorded yet")
	}
	return s.history.CheckReadiness(ctx)
}
