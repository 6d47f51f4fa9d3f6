package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Recorder produces and records one reading for a location.
type Recorder interface {
	Monitor(ctx context.Context, location string) (domain.Assessment, error)
}

// Sampler records a reading for every configured location on each tick so
// history accumulates without callers.
type Sampler struct {
	recorder  Recorder
	locations []string
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSampler creates a Sampler. A nil clock uses the real clock.
func NewSampler(recorder Recorder, locations []string, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Sampler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sampler{
		recorder:  recorder,
		locations: locations,
		interval:  interval,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run samples immediately and then once per interval until the context is
// cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	s.logger.Info("sampler started", "interval", s.interval, "locations", s.locations)
	s.metrics.SamplerRunning.Set(1)
	defer s.metrics.SamplerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			s.logger.Info("sampler stopping", "reason", ctx.Err())
			return nil
		}
		if !s.sampleAll(ctx, &backoff) {
			s.logger.Info("sampler stopping", "reason", ctx.Err())
			return nil
		}

		select {
		case <-ctx.Done():
			s.logger.Info("sampler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// sampleAll records one reading per location. A failed location is skipped
// for this round after sleeping the current backoff. Returns false if the
// sampler should stop.
func (s *Sampler) sampleAll(ctx context.Context, backoff *time.Duration) bool {
	for _, loc := range s.locations {
		_, err := s.recorder.Monitor(ctx, loc)
		if err == nil {
			*backoff = initialBackoff
			continue
		}
		if ctx.Err() != nil {
			return false
		}
		s.logger.Error("sample failed", "location", loc, "error", err, "backoff", *backoff)
		if !sleepWithContext(ctx, s.clock, *backoff) {
			return false
		}
		*backoff = retry.NextBackoff(*backoff, maxBackoff)
	}
	return true
}

// sleepWithContext mirrors retry.SleepWithContext on the injected clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
