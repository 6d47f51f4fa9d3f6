// Package domain models environmental readings and the risk rules applied to them.
//
// # Units
//
//	PM2.5:       µg/m³, one decimal place. Drift range 5–150.
//	Wind speed:  km/h, one decimal place. Drift range 2–40.
//	Wind dir:    16-point compass string from the weather lookup, "N" by default.
//	Noise:       dB, whole numbers. Drift range 40–90.
//	Temperature: °C as reported by the weather lookup, 25 by default.
//	Humidity:    percent, 60 by default.
//	AQI:         US EPA index 1–6, 1 by default.
//
// # Risk Scoring
//
// [Score] evaluates rules in a fixed order and every applicable rule fires.
// Tiers inside a rule are mutually exclusive (first match wins):
//
//	PM2.5:        >55 +40 | >35 +30 | >25 +15
//	Temperature:  >38 +30 | >35 +20 | >32 +10
//	Humidity:     >85 +20 | >75 +10 (no alert text)
//	AQI:          ≥5 +40  | ≥4 +30  | ≥3 +20
//	PM2.5 × wind: only when PM2.5 >25: wind >20 +25 | >10 +15 | <5 +10
//	Heat index:   temp >32 and humidity >75, +25
//	Stagnation:   PM2.5 >35 and wind <5, +20
//	Noise:        >85 +35 | >75 +25 | >70 +15
//	PM2.5 × noise: PM2.5 >35 and noise >75, +15
//	AQI × heat:   AQI ≥3 and temp >35, +20
//
// The running total may exceed 100; the recommendation is chosen from the
// uncapped total (≥70 stay indoors, ≥50 limit outdoor, ≥30 monitor) and the
// reported score is clamped to [0,100]. Risk levels for display follow the
// same cut points: Critical, High, Moderate, Low.
//
// # Correlation
//
// [Correlate] takes history newest first, drops rows missing any of PM2.5,
// wind or noise, and reports Pearson coefficients rounded to three decimals.
// Fewer than two complete rows is reported as insufficient data, not an error.
package domain
