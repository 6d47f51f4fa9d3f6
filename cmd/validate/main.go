// Command validate checks a simulated readings fixture against the invariants
// the monitor guarantees: clamp ranges and rounding of the drifted
// components, score range and re-scoring consistency, per-location time
// ordering, and a well-formed correlation over the whole window.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/readings_240426.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/simulator"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixture := flag.String("fixture", "", "path to a readings fixture written by cmd/simulate")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixture); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Readings Fixture Validation ===")
	fmt.Println()

	assessments, err := loadJSON[domain.Assessment](path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	phases := validate(assessments)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Readings: %d\n", len(assessments))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(assessments []domain.Assessment) []*phase {
	return []*phase{
		validateRanges(assessments),
		validateScores(assessments),
		validateOrdering(assessments),
		validateCorrelation(assessments),
	}
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Ranges ──
// Drifted components stay inside their clamp bounds and are rounded.

func validateRanges(assessments []domain.Assessment) *phase {
	p := &phase{name: "Phase 1: Clamp Ranges and Rounding"}
	for i := range assessments {
		r := assessments[i].Reading
		checkRange(p, i, "pm25", r.PM25, simulator.PM25Min, simulator.PM25Max)
		checkRange(p, i, "wind_kph", r.WindKPH, simulator.WindMin, simulator.WindMax)
		checkRange(p, i, "noise", r.Noise, simulator.NoiseMin, simulator.NoiseMax)

		if !floatEq(r.PM25, math.Round(r.PM25*10)/10) {
			p.errorf("reading %d: pm25 %g not rounded to one decimal", i, r.PM25)
		}
		if !floatEq(r.WindKPH, math.Round(r.WindKPH*10)/10) {
			p.errorf("reading %d: wind_kph %g not rounded to one decimal", i, r.WindKPH)
		}
		if !floatEq(r.Noise, math.Round(r.Noise)) {
			p.errorf("reading %d: noise %g is not a whole number", i, r.Noise)
		}
	}
	return p
}

func checkRange(p *phase, i int, field string, v, lo, hi float64) {
	if v < lo || v > hi || math.IsNaN(v) {
		p.errorf("reading %d: %s %g outside [%g, %g]", i, field, v, lo, hi)
	}
}

// ── Phase 2: Scores ──
// Stored scores match a fresh scoring of the stored reading.

func validateScores(assessments []domain.Assessment) *phase {
	p := &phase{name: "Phase 2: Scores (re-scored)"}
	for i := range assessments {
		a := &assessments[i]
		if a.Risk.Score < 0 || a.Risk.Score > 100 {
			p.errorf("reading %d: score %d outside [0, 100]", i, a.Risk.Score)
		}
		if want := max(0, min(a.Risk.RawScore, 100)); a.Risk.Score != want {
			p.errorf("reading %d: score %d is not raw score %d clamped", i, a.Risk.Score, a.Risk.RawScore)
		}
		if want := domain.RiskLevel(a.Risk.Score); a.Level != want {
			p.errorf("reading %d: level %q, expected %q", i, a.Level, want)
		}
		if diff := cmp.Diff(domain.Score(a.Reading), a.Risk); diff != "" {
			p.errorf("reading %d (%s): stored risk differs from re-score (-want +got):\n%s", i, a.Reading.ID, diff)
		}
	}
	return p
}

// ── Phase 3: Ordering ──
// IDs are unique and each location's readings move forward in time.

func validateOrdering(assessments []domain.Assessment) *phase {
	p := &phase{name: "Phase 3: Ordering and Identity"}
	seen := make(map[string]int, len(assessments))
	last := map[string]time.Time{}

	for i := range assessments {
		r := assessments[i].Reading
		if r.ID == "" {
			p.errorf("reading %d: missing id", i)
		} else if first, dup := seen[r.ID]; dup {
			p.errorf("reading %d: id %s duplicates reading %d", i, r.ID, first)
		} else {
			seen[r.ID] = i
		}

		if r.Location == "" {
			p.errorf("reading %d: missing location", i)
			continue
		}
		if prev, ok := last[r.Location]; ok && !r.Timestamp.After(prev) {
			p.errorf("reading %d: %s timestamp %s not after %s", i, r.Location,
				r.Timestamp.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		last[r.Location] = r.Timestamp
	}
	return p
}

// ── Phase 4: Correlation ──
// The fixture, read newest first, yields a result matching its size.

func validateCorrelation(assessments []domain.Assessment) *phase {
	p := &phase{name: "Phase 4: Correlation"}

	records := make([]domain.HistoryRecord, len(assessments))
	for i := range assessments {
		a := assessments[len(assessments)-1-i]
		records[i] = domain.NewHistoryRecord(a.Reading, a.Risk.Score)
	}
	result := domain.Correlate(records)

	if len(records) < domain.MinCorrelationSamples {
		if result.Status != domain.CorrelationInsufficientData {
			p.errorf("%d readings: expected %s, got %s", len(records), domain.CorrelationInsufficientData, result.Status)
		}
		return p
	}
	if result.Status != domain.CorrelationOK {
		p.errorf("%d readings: expected %s, got %s", len(records), domain.CorrelationOK, result.Status)
	}
	if result.SampleSize != len(records) {
		p.errorf("sample size %d, expected %d", result.SampleSize, len(records))
	}
	for _, pair := range []string{domain.PairPM25Wind, domain.PairPM25Noise, domain.PairWindNoise} {
		c, ok := result.Coefficients[pair]
		if !ok {
			p.errorf("missing coefficient %s", pair)
			continue
		}
		if c < -1 || c > 1 || math.IsNaN(c) {
			p.errorf("coefficient %s = %g outside [-1, 1]", pair, c)
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
