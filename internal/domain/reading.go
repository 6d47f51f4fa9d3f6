package domain

import "time"

// Neutral defaults used when assembling a reading. Particulate, wind and noise
// are always overwritten by the drift simulator; temperature, humidity and wind
// direction survive only when the weather lookup is unavailable.
const (
	DefaultPM25     = 15.0
	DefaultWindKPH  = 0.0
	DefaultWindDir  = "N"
	DefaultNoise    = 50.0
	DefaultTempC    = 25.0
	DefaultHumidity = 60.0
	DefaultAQI      = 1
)

// Reading is a single environmental sample for a named location.
type Reading struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`

	PM25     float64 `json:"pm25"`     // µg/m³
	WindKPH  float64 `json:"wind_kph"` // km/h
	WindDir  string  `json:"wind_dir"` // compass point, e.g. "NNE"
	Noise    float64 `json:"noise"`    // dB, whole numbers
	TempC    float64 `json:"temp_c"`
	Humidity float64 `json:"humidity"` // percent
	AQI      int     `json:"aqi"`      // US EPA index, 1-6

	WeatherStatus WeatherStatus `json:"weather_status"`
}

// NewReading returns a reading for location populated with the neutral defaults.
func NewReading(location string, ts time.Time) Reading {
	return Reading{
		Location:      location,
		Timestamp:     ts,
		PM25:          DefaultPM25,
		WindKPH:       DefaultWindKPH,
		WindDir:       DefaultWindDir,
		Noise:         DefaultNoise,
		TempC:         DefaultTempC,
		Humidity:      DefaultHumidity,
		AQI:           DefaultAQI,
		WeatherStatus: WeatherNotConfigured,
	}
}

// Assessment pairs a reading with its risk evaluation.
type Assessment struct {
	Reading Reading     `json:"reading"`
	Risk    ScoreResult `json:"risk"`
	Level   string      `json:"level"`
}

// Assess scores a reading and derives its risk level.
func Assess(r Reading) Assessment {
	risk := Score(r)
	return Assessment{
		Reading: r,
		Risk:    risk,
		Level:   RiskLevel(risk.Score),
	}
}

// AlertThreshold is the score at or above which a history row is flagged as
// having triggered an alert.
const AlertThreshold = 50

// HistoryRecord is a persisted reading row. Numeric components are nullable
// because older rows and partial writes may omit them.
type HistoryRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Location       string    `json:"location"`
	PM25           *float64  `json:"pm25"`
	WindKPH        *float64  `json:"wind_kph"`
	WindDir        string    `json:"wind_dir"`
	Noise          *float64  `json:"noise"`
	RiskScore      int       `json:"risk_score"`
	AlertTriggered bool      `json:"alert_triggered"`
}

// NewHistoryRecord builds the row persisted for a scored reading.
func NewHistoryRecord(r Reading, score int) HistoryRecord {
	pm, wind, noise := r.PM25, r.WindKPH, r.Noise
	return HistoryRecord{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		Location:       r.Location,
		PM25:           &pm,
		WindKPH:        &wind,
		WindDir:        r.WindDir,
		Noise:          &noise,
		RiskScore:      score,
		AlertTriggered: score >= AlertThreshold,
	}
}
