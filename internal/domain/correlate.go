package domain

import "math"

// Correlation pair keys.
const (
	PairPM25Wind  = "pm25_wind"
	PairPM25Noise = "pm25_noise"
	PairWindNoise = "wind_noise"
)

// CorrelationStatus distinguishes a computed result from a history window too
// small to correlate. Neither is an error.
type CorrelationStatus string

const (
	CorrelationOK               CorrelationStatus = "success"
	CorrelationInsufficientData CorrelationStatus = "insufficient_data"
)

// MinCorrelationSamples is the smallest aligned series Correlate will use.
const MinCorrelationSamples = 2

// CorrelationResult holds pairwise Pearson coefficients over a history window.
// Coefficients is nil when Status is CorrelationInsufficientData.
type CorrelationResult struct {
	Status       CorrelationStatus  `json:"status"`
	SampleSize   int                `json:"sample_size"`
	Coefficients map[string]float64 `json:"correlations,omitempty"`
}

// Correlate computes pairwise correlations between particulate, wind and noise
// over records ordered newest first. Records missing any of the three
// components are dropped as a whole so the series stay aligned by record.
func Correlate(records []HistoryRecord) CorrelationResult {
	pm := make([]float64, 0, len(records))
	wind := make([]float64, 0, len(records))
	noise := make([]float64, 0, len(records))
	for _, r := range records {
		if r.PM25 == nil || r.WindKPH == nil || r.Noise == nil {
			continue
		}
		pm = append(pm, *r.PM25)
		wind = append(wind, *r.WindKPH)
		noise = append(noise, *r.Noise)
	}

	n := min(len(pm), len(wind), len(noise))
	if n < MinCorrelationSamples {
		return CorrelationResult{Status: CorrelationInsufficientData, SampleSize: n}
	}
	pm, wind, noise = pm[:n], wind[:n], noise[:n]

	return CorrelationResult{
		Status:     CorrelationOK,
		SampleSize: n,
		Coefficients: map[string]float64{
			PairPM25Wind:  round3(Pearson(pm, wind)),
			PairPM25Noise: round3(Pearson(pm, noise)),
			PairWindNoise: round3(Pearson(wind, noise)),
		},
	}
}

// Pearson returns the sample correlation coefficient of x and y using the
// sum-of-products form. Mismatched or short series and a zero denominator
// all yield 0.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < MinCorrelationSamples {
		return 0
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 || math.IsNaN(denominator) {
		return 0
	}
	return numerator / denominator
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
