// Command simulate runs the drift simulator against a fixed clock and seed
// and writes the scored readings as a JSON fixture. The same flags always
// produce the same file, so fixtures can be regenerated and diffed.
//
// Usage:
//
//	go run ./cmd/simulate \
//	  -locations Kozhikode,Kochi \
//	  -ticks 288 -step 5m -seed 42 \
//	  -out data/mock/readings_240426.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/simulator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	locations := flag.String("locations", "Kozhikode", "comma-separated locations to simulate")
	ticks := flag.Int("ticks", 288, "readings per location")
	seed := flag.Uint64("seed", 42, "random seed")
	start := flag.String("start", "2024-04-26T00:00:00Z", "timestamp of the first reading (RFC3339)")
	step := flag.Duration("step", 5*time.Minute, "clock advance between ticks")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *ticks <= 0 || *step <= 0 {
		return fmt.Errorf("-ticks and -step must be positive")
	}
	startAt, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	locs := splitLocations(*locations)
	if len(locs) == 0 {
		return fmt.Errorf("no locations given")
	}

	assessments := simulate(locs, *ticks, *seed, startAt, *step)
	log.Printf("simulated %d readings across %d location(s)", len(assessments), len(locs))

	if err := writeJSON(*out, assessments); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(assessments)
	return nil
}

// simulate interleaves locations tick by tick, the way a sampler would.
// IDs are derived from seed, location and tick so reruns are byte-identical.
func simulate(locations []string, ticks int, seed uint64, start time.Time, step time.Duration) []domain.Assessment {
	clock := clockwork.NewFakeClockAt(start)
	rng := simulator.NewRand(seed)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := simulator.NewSource(simulator.NewStore(rng), simulator.NewDrift(rng, clock), nil, 0, clock, logger)

	ctx := context.Background()
	out := make([]domain.Assessment, 0, ticks*len(locations))
	for tick := range ticks {
		for _, loc := range locations {
			r := source.FetchReading(ctx, loc)
			r.ID = uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%d/%s/%d", seed, loc, tick)).String()
			out = append(out, domain.Assess(r))
		}
		clock.Advance(step)
	}
	return out
}

func splitLocations(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// locationStats aggregates one location's trajectory.
type locationStats struct {
	count               int
	pmMin, pmMax, pmSum float64
	noiseMax            float64
	windMin             float64
}

func printStats(assessments []domain.Assessment) {
	perLocation := map[string]*locationStats{}
	levels := map[string]int{}
	rules := map[string]int{}

	for i := range assessments {
		a := &assessments[i]
		levels[a.Level]++
		for _, alert := range a.Risk.Alerts {
			rules[alert.Rule]++
		}

		r := a.Reading
		st, ok := perLocation[r.Location]
		if !ok {
			st = &locationStats{pmMin: r.PM25, pmMax: r.PM25, windMin: r.WindKPH}
			perLocation[r.Location] = st
		}
		st.count++
		st.pmSum += r.PM25
		st.pmMin = min(st.pmMin, r.PM25)
		st.pmMax = max(st.pmMax, r.PM25)
		st.noiseMax = max(st.noiseMax, r.Noise)
		st.windMin = min(st.windMin, r.WindKPH)
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(assessments))
	fmt.Printf("By level: Low=%d, Moderate=%d, High=%d, Critical=%d\n",
		levels["Low"], levels["Moderate"], levels["High"], levels["Critical"])

	names := make([]string, 0, len(perLocation))
	for name := range perLocation {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nPer location:")
	for _, name := range names {
		st := perLocation[name]
		fmt.Printf("  %s (%d): pm25 min=%.1f max=%.1f mean=%.1f, wind min=%.1f, noise max=%g\n",
			name, st.count, st.pmMin, st.pmMax, st.pmSum/float64(st.count), st.windMin, st.noiseMax)
	}

	type ruleCount struct {
		rule  string
		count int
	}
	rc := make([]ruleCount, 0, len(rules))
	for rule, c := range rules {
		rc = append(rc, ruleCount{rule, c})
	}
	sort.Slice(rc, func(i, j int) bool {
		if rc[i].count != rc[j].count {
			return rc[i].count > rc[j].count
		}
		return rc[i].rule < rc[j].rule
	})
	fmt.Printf("\nAlerts by rule (%d):\n", len(rc))
	for _, r := range rc {
		fmt.Printf("  %-22s %d\n", r.rule, r.count)
	}

	records := make([]domain.HistoryRecord, len(assessments))
	for i := range assessments {
		// Newest first, as the history store returns them.
		a := assessments[len(assessments)-1-i]
		records[i] = domain.NewHistoryRecord(a.Reading, a.Risk.Score)
	}
	corr := domain.Correlate(records)
	fmt.Printf("\nCorrelations (%s, n=%d): pm25_wind=%.3f pm25_noise=%.3f wind_noise=%.3f\n",
		corr.Status, corr.SampleSize,
		corr.Coefficients[domain.PairPM25Wind], corr.Coefficients[domain.PairPM25Noise], corr.Coefficients[domain.PairWindNoise])
}
