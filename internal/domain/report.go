package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidReport is returned when a citizen report fails validation.
	ErrInvalidReport = errors.New("invalid citizen report")
	// ErrInvalidLimit is returned for history window sizes outside the allowed range.
	ErrInvalidLimit = errors.New("invalid limit")
)

// Citizen report types.
const (
	ReportSmoke = "smoke"
	ReportOdor  = "odor"
	ReportNoise = "noise"
	ReportOther = "other"
)

// CitizenReport is a field observation submitted by a resident.
type CitizenReport struct {
	Location    string  `json:"location"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	ReportType  string  `json:"report_type"`
	Severity    int     `json:"severity"` // 1-5
	Description string  `json:"description,omitempty"`
}

// Validate checks the required fields and ranges of a report.
func (r CitizenReport) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidReport)
	}
	switch r.ReportType {
	case ReportSmoke, ReportOdor, ReportNoise, ReportOther:
	default:
		return fmt.Errorf("%w: unknown report type %q", ErrInvalidReport, r.ReportType)
	}
	if r.Severity < 1 || r.Severity > 5 {
		return fmt.Errorf("%w: severity must be between 1 and 5", ErrInvalidReport)
	}
	return nil
}

// Corroboration confidence values.
const (
	ConfidenceHigh    = "high"
	ConfidencePending = "pending"
)

// Corroboration is the sensor-side verdict on a citizen report.
type Corroboration struct {
	Validated  bool    `json:"validated"`
	Confidence string  `json:"confidence"`
	Notes      string  `json:"notes"`
	Reading    Reading `json:"reading"`
}

// Corroborate checks a report against a fresh reading for the same location.
// Smoke and odor reports are backed by PM2.5 above 35, noise reports by noise
// above 70. A report is validated only when backed and of severity 3 or more.
func Corroborate(report CitizenReport, r Reading) Corroboration {
	var notes []string
	switch report.ReportType {
	case ReportSmoke, ReportOdor:
		if r.PM25 > 35 {
			notes = append(notes, fmt.Sprintf("Sensors confirm elevated PM2.5: %.1f µg/m³", r.PM25))
		}
	case ReportNoise:
		if r.Noise > 70 {
			notes = append(notes, fmt.Sprintf("Sensors confirm elevated noise: %g dB", r.Noise))
		}
	}

	if len(notes) > 0 && report.Severity >= 3 {
		return Corroboration{
			Validated:  true,
			Confidence: ConfidenceHigh,
			Notes:      strings.Join(notes, " | "),
			Reading:    r,
		}
	}
	return Corroboration{
		Validated:  false,
		Confidence: ConfidencePending,
		Notes:      "Awaiting manual review or additional sensor correlation",
		Reading:    r,
	}
}
