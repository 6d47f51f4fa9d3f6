package domain

import "fmt"

// Rule identifiers, one per alert the scoring engine can raise.
const (
	RulePM25Critical    = "pm25_critical"
	RulePM25Unhealthy   = "pm25_unhealthy"
	RulePM25Moderate    = "pm25_moderate"
	RuleHeatExtreme     = "heat_extreme"
	RuleHeatVeryHot     = "heat_very_hot"
	RuleHeatHot         = "heat_hot"
	RuleHumidityHigh    = "humidity_very_high"
	RuleAQIHazardous    = "aqi_hazardous"
	RuleAQIUnhealthy    = "aqi_unhealthy"
	RuleAQISensitive    = "aqi_sensitive"
	RuleWindDispersion  = "pm25_wind_dispersion"
	RuleWindTransport   = "pm25_wind_transport"
	RuleWindStagnant    = "pm25_wind_stagnant"
	RuleHeatIndex       = "heat_index"
	RuleStagnationEvent = "stagnation_event"
	RuleNoiseHazardous  = "noise_hazardous"
	RuleNoiseExcessive  = "noise_excessive"
	RuleNoiseElevated   = "noise_elevated"
	RulePollutionNoise  = "pollution_noise"
	RuleAQIHeat         = "aqi_heat"
)

// Alert is a single triggered rule. Message is display text; Values carries the
// numbers that triggered it so callers never need to parse the message.
type Alert struct {
	Rule    string             `json:"rule"`
	Points  int                `json:"points"`
	Message string             `json:"message"`
	Values  map[string]float64 `json:"values,omitempty"`
}

// Recommendation is the advisory appended after all scored rules.
type Recommendation string

const (
	RecommendNone         Recommendation = ""
	RecommendStayIndoors  Recommendation = "stay-indoors"
	RecommendLimitOutdoor Recommendation = "limit-outdoor"
	RecommendMonitor      Recommendation = "monitor"
)

// Text returns the display message for the recommendation.
func (r Recommendation) Text() string {
	switch r {
	case RecommendStayIndoors:
		return "RECOMMENDATION: Stay indoors. Close windows and use air purification if available."
	case RecommendLimitOutdoor:
		return "RECOMMENDATION: Limit outdoor activities. Vulnerable groups should stay indoors."
	case RecommendMonitor:
		return "RECOMMENDATION: Monitor conditions. Reduce strenuous outdoor activities."
	default:
		return ""
	}
}

// ScoreResult is the outcome of scoring one reading.
type ScoreResult struct {
	Score          int            `json:"score"`     // clamped to [0,100]
	RawScore       int            `json:"raw_score"` // running total before clamping
	Alerts         []Alert        `json:"alerts"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
}

// Messages returns the alert messages in evaluation order followed by the
// recommendation text, if any.
func (s ScoreResult) Messages() []string {
	out := make([]string, 0, len(s.Alerts)+1)
	for _, a := range s.Alerts {
		out = append(out, a.Message)
	}
	if text := s.Recommendation.Text(); text != "" {
		out = append(out, text)
	}
	return out
}

type scorer struct {
	points int
	alerts []Alert
}

func (s *scorer) add(rule string, points int, msg string, values map[string]float64) {
	s.points += points
	s.alerts = append(s.alerts, Alert{Rule: rule, Points: points, Message: msg, Values: values})
}

// Score evaluates the threshold rules followed by the correlation rules and
// returns the clamped score with its alerts in evaluation order. Every rule
// that applies fires; only the tiers within one rule are mutually exclusive.
func Score(r Reading) ScoreResult {
	var s scorer
	pm, temp, hum, aqi, wind, noise := r.PM25, r.TempC, r.Humidity, r.AQI, r.WindKPH, r.Noise

	switch {
	case pm > 55:
		s.add(RulePM25Critical, 40,
			fmt.Sprintf("CRITICAL: PM2.5 at %.1f µg/m³ (hazardous, avoid outdoor activity)", pm),
			map[string]float64{"pm25": pm})
	case pm > 35:
		s.add(RulePM25Unhealthy, 30,
			fmt.Sprintf("UNHEALTHY: PM2.5 at %.1f µg/m³ (sensitive groups should limit exposure)", pm),
			map[string]float64{"pm25": pm})
	case pm > 25:
		s.add(RulePM25Moderate, 15,
			fmt.Sprintf("Moderate: PM2.5 at %.1f µg/m³ (consider reducing prolonged outdoor activity)", pm),
			map[string]float64{"pm25": pm})
	}

	switch {
	case temp > 38:
		s.add(RuleHeatExtreme, 30,
			fmt.Sprintf("EXTREME HEAT: %g°C, heat stroke risk high", temp),
			map[string]float64{"temp_c": temp})
	case temp > 35:
		s.add(RuleHeatVeryHot, 20,
			fmt.Sprintf("Very hot: %g°C, stay hydrated and avoid midday sun", temp),
			map[string]float64{"temp_c": temp})
	case temp > 32:
		s.add(RuleHeatHot, 10,
			fmt.Sprintf("Hot conditions: %g°C, monitor vulnerable populations", temp),
			map[string]float64{"temp_c": temp})
	}

	switch {
	case hum > 85:
		s.add(RuleHumidityHigh, 20,
			fmt.Sprintf("Very high humidity: %g%%, heat index significantly elevated", hum),
			map[string]float64{"humidity": hum})
	case hum > 75:
		s.points += 10
	}

	switch {
	case aqi >= 5:
		s.add(RuleAQIHazardous, 40, "AIR QUALITY HAZARDOUS: everyone should avoid outdoor activity",
			map[string]float64{"aqi": float64(aqi)})
	case aqi >= 4:
		s.add(RuleAQIUnhealthy, 30, "AIR QUALITY UNHEALTHY: health alert for all groups",
			map[string]float64{"aqi": float64(aqi)})
	case aqi >= 3:
		s.add(RuleAQISensitive, 20, "AIR QUALITY UNHEALTHY for sensitive groups",
			map[string]float64{"aqi": float64(aqi)})
	}

	if pm > 25 {
		values := map[string]float64{"pm25": pm, "wind_kph": wind}
		switch {
		case wind > 20:
			s.add(RuleWindDispersion, 25,
				fmt.Sprintf("POLLUTION SPREAD RISK: high winds (%.1f km/h) from %s may be dispersing pollutants from industrial areas", wind, r.WindDir),
				values)
		case wind > 10:
			s.add(RuleWindTransport, 15,
				fmt.Sprintf("Pollution transport: moderate winds (%.1f km/h) from %s", wind, r.WindDir),
				values)
		case wind < 5:
			s.add(RuleWindStagnant, 10,
				fmt.Sprintf("Stagnant air: low wind speed (%.1f km/h), pollutants accumulating", wind),
				values)
		}
	}

	if temp > 32 && hum > 75 {
		heatIndex := HeatIndex(temp, hum)
		s.add(RuleHeatIndex, 25,
			fmt.Sprintf("HEAT INDEX WARNING: feels like %.0f°C, dangerous heat stress conditions", heatIndex),
			map[string]float64{"temp_c": temp, "humidity": hum, "heat_index": heatIndex})
	}

	if pm > 35 && wind < 5 {
		s.add(RuleStagnationEvent, 20, "STAGNATION EVENT: low wind and high pollution, air quality deteriorating rapidly",
			map[string]float64{"pm25": pm, "wind_kph": wind})
	}

	switch {
	case noise > 85:
		s.add(RuleNoiseHazardous, 35,
			fmt.Sprintf("HAZARDOUS NOISE: %g dB, hearing damage risk, use protection", noise),
			map[string]float64{"noise": noise})
	case noise > 75:
		s.add(RuleNoiseExcessive, 25,
			fmt.Sprintf("EXCESSIVE NOISE: %g dB, prolonged exposure harmful", noise),
			map[string]float64{"noise": noise})
	case noise > 70:
		s.add(RuleNoiseElevated, 15,
			fmt.Sprintf("Elevated noise: %g dB, may cause stress and sleep disruption", noise),
			map[string]float64{"noise": noise})
	}

	if pm > 35 && noise > 75 {
		s.add(RulePollutionNoise, 15, "MULTI-FACTOR ALERT: high pollution and noise exposure, limit time in affected area",
			map[string]float64{"pm25": pm, "noise": noise})
	}

	if aqi >= 3 && temp > 35 {
		s.add(RuleAQIHeat, 20, "COMPOUND RISK: poor air quality and extreme heat, severe respiratory stress",
			map[string]float64{"aqi": float64(aqi), "temp_c": temp})
	}

	return ScoreResult{
		Score:          clampScore(s.points),
		RawScore:       s.points,
		Alerts:         s.alerts,
		Recommendation: recommend(s.points),
	}
}

// HeatIndex is the approximate apparent temperature used by the heat-index rule.
func HeatIndex(tempC, humidity float64) float64 {
	return tempC + 0.5*(humidity-50)
}

// recommend picks the advisory from the running total before capping.
func recommend(points int) Recommendation {
	switch {
	case points >= 70:
		return RecommendStayIndoors
	case points >= 50:
		return RecommendLimitOutdoor
	case points >= 30:
		return RecommendMonitor
	default:
		return RecommendNone
	}
}

func clampScore(points int) int {
	return max(0, min(points, 100))
}

// RiskLevel maps a clamped score to its display level.
func RiskLevel(score int) string {
	switch {
	case score >= 70:
		return "Critical"
	case score >= 50:
		return "High"
	case score >= 30:
		return "Moderate"
	default:
		return "Low"
	}
}
