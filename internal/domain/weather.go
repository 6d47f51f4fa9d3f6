package domain

import (
	"context"
	"log/slog"
)

// WeatherStatus records how the weather fields of a reading were populated.
type WeatherStatus string

const (
	// WeatherApplied means temperature, humidity and wind direction came from the lookup.
	WeatherApplied WeatherStatus = "applied"
	// WeatherNotConfigured means no lookup is wired; defaults were kept.
	WeatherNotConfigured WeatherStatus = "not_configured"
	// WeatherFailed means the lookup errored or timed out; defaults were kept.
	WeatherFailed WeatherStatus = "failed"
)

// Weather is the subset of current conditions a lookup provides.
type Weather struct {
	TempC    float64
	Humidity float64
	WindDir  string
}

// WeatherLookup fetches current conditions for a location name.
type WeatherLookup interface {
	CurrentWeather(ctx context.Context, location string) (Weather, error)
}

// ApplyWeather overlays temperature, humidity and wind direction from the
// lookup onto r. A nil lookup or a failed call leaves those fields at their
// existing values and only sets WeatherStatus (graceful degradation).
func ApplyWeather(ctx context.Context, r Reading, lookup WeatherLookup, logger *slog.Logger) Reading {
	if lookup == nil {
		r.WeatherStatus = WeatherNotConfigured
		return r
	}

	w, err := lookup.CurrentWeather(ctx, r.Location)
	if err != nil {
		logger.Warn("weather lookup failed, using defaults",
			"location", r.Location,
			"error", err,
		)
		r.WeatherStatus = WeatherFailed
		return r
	}

	r.TempC = w.TempC
	r.Humidity = w.Humidity
	if w.WindDir != "" {
		r.WindDir = w.WindDir
	}
	r.WeatherStatus = WeatherApplied
	return r
}
