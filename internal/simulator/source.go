package simulator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/envwatch-service/internal/domain"
)

// DefaultWeatherTimeout bounds a single weather lookup.
const DefaultWeatherTimeout = 3 * time.Second

// Source assembles readings: neutral defaults, an optional weather overlay,
// then one drift tick for the location.
type Source struct {
	store          *Store
	drift          *Drift
	weather        domain.WeatherLookup
	weatherTimeout time.Duration
	clock          clockwork.Clock
	logger         *slog.Logger
}

// NewSource wires a reading source. weather may be nil when no lookup is
// configured. A non-positive weatherTimeout uses DefaultWeatherTimeout.
func NewSource(store *Store, drift *Drift, weather domain.WeatherLookup, weatherTimeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *Source {
	if weatherTimeout <= 0 {
		weatherTimeout = DefaultWeatherTimeout
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Source{
		store:          store,
		drift:          drift,
		weather:        weather,
		weatherTimeout: weatherTimeout,
		clock:          clock,
		logger:         logger,
	}
}

// FetchReading returns a fresh reading for location and advances its drift
// state by exactly one tick. Weather problems never fail the call; they are
// reported through Reading.WeatherStatus.
func (s *Source) FetchReading(ctx context.Context, location string) domain.Reading {
	r := domain.NewReading(location, s.clock.Now())
	r.ID = uuid.NewString()

	if s.weather != nil {
		wctx, cancel := context.WithTimeout(ctx, s.weatherTimeout)
		r = domain.ApplyWeather(wctx, r, s.weather, s.logger)
		cancel()
	} else {
		r.WeatherStatus = domain.WeatherNotConfigured
	}

	r.PM25, r.WindKPH, r.Noise = s.drift.Advance(s.store.Get(location))
	return r
}

// State returns a snapshot of the drift state for location, creating it if
// the location has not been seen.
func (s *Source) State(location string) StateSnapshot {
	return s.store.Get(location).Snapshot()
}
