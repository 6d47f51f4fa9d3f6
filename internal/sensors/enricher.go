package sensors

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/envwatch-service/internal/domain"
)

// DefaultTTL is how long an enrichment pass is served before recomputing.
const DefaultTTL = 4 * time.Second

// FallbackLocation is used for sensors with no location set.
const FallbackLocation = "Thiruvananthapuram"

// Sensor status tags. Critical supersedes Warning.
const (
	StatusActive   = "active"
	StatusWarning  = "Warning"
	StatusCritical = "Critical"
)

// ReadingSource produces one fresh reading per call, advancing that
// location's simulation by one tick.
type ReadingSource interface {
	FetchReading(ctx context.Context, location string) domain.Reading
}

// Rand supplies the per-sensor jitter draw.
type Rand interface {
	Float64() float64
}

// Record is a sensor descriptor with live values attached.
type Record struct {
	Descriptor
	PM25    float64 `json:"pm25"`
	Noise   float64 `json:"noise"`
	TempC   float64 `json:"temp"`
	WindKPH float64 `json:"wind_kph"`
	Status  string  `json:"status"`
}

// Snapshot is one enrichment pass. Cached reports whether it was served from
// the slot without recomputation.
type Snapshot struct {
	Records    []Record  `json:"sensors"`
	CapturedAt time.Time `json:"captured_at"`
	Cached     bool      `json:"cached"`
}

// Enricher attaches simulated readings to sensors, caching the last pass in a
// single slot for the TTL. The slot is keyed by nothing: within the TTL it is
// served regardless of which sensors are requested.
type Enricher struct {
	source ReadingSource
	rng    Rand
	clock  clockwork.Clock
	ttl    time.Duration

	mu       sync.Mutex
	slot     *Snapshot
	inflight *refresh
}

// refresh is an enrichment pass in progress. snap is set before done closes.
type refresh struct {
	done chan struct{}
	snap Snapshot
}

// NewEnricher creates an Enricher. A non-positive ttl uses DefaultTTL.
func NewEnricher(source ReadingSource, rng Rand, clock clockwork.Clock, ttl time.Duration) *Enricher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Enricher{source: source, rng: rng, clock: clock, ttl: ttl}
}

// Enrich returns enriched records for sensors. A pass younger than the TTL is
// returned as-is with no readings fetched and no randomness consumed.
// Otherwise one reading is fetched per distinct location, concurrently and
// without holding the lock, then each sensor gets its profile and jitter
// applied and the slot is replaced. Callers arriving during a refresh wait
// for it instead of starting another; if their context ends first they get
// the previous pass, or an empty one.
func (e *Enricher) Enrich(ctx context.Context, sensors []Descriptor) Snapshot {
	e.mu.Lock()
	now := e.clock.Now()
	if e.slot != nil && now.Sub(e.slot.CapturedAt) < e.ttl {
		out := e.copySlot()
		e.mu.Unlock()
		out.Cached = true
		return out
	}
	if r := e.inflight; r != nil {
		e.mu.Unlock()
		return e.wait(ctx, r)
	}
	r := &refresh{done: make(chan struct{})}
	e.inflight = r
	e.mu.Unlock()

	baselines := e.fetchBaselines(ctx, sensors)

	e.mu.Lock()
	records := make([]Record, 0, len(sensors))
	for _, s := range sensors {
		records = append(records, e.enrichOne(s, baselines[locationOf(s)]))
	}
	e.slot = &Snapshot{Records: records, CapturedAt: now}
	r.snap = e.copySlot()
	e.inflight = nil
	out := e.copySlot()
	e.mu.Unlock()

	close(r.done)
	return out
}

func (e *Enricher) wait(ctx context.Context, r *refresh) Snapshot {
	select {
	case <-r.done:
		return Snapshot{Records: slices.Clone(r.snap.Records), CapturedAt: r.snap.CapturedAt, Cached: true}
	case <-ctx.Done():
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.slot == nil {
			return Snapshot{Records: []Record{}, CapturedAt: e.clock.Now()}
		}
		out := e.copySlot()
		out.Cached = true
		return out
	}
}

// fetchBaselines fetches one reading per distinct location in parallel so a
// refresh takes as long as the slowest lookup rather than their sum.
func (e *Enricher) fetchBaselines(ctx context.Context, sensors []Descriptor) map[string]domain.Reading {
	var locations []string
	for _, s := range sensors {
		if loc := locationOf(s); !slices.Contains(locations, loc) {
			locations = append(locations, loc)
		}
	}

	readings := make([]domain.Reading, len(locations))
	var wg sync.WaitGroup
	for i, loc := range locations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			readings[i] = e.source.FetchReading(ctx, loc)
		}()
	}
	wg.Wait()

	baselines := make(map[string]domain.Reading, len(locations))
	for i, loc := range locations {
		baselines[loc] = readings[i]
	}
	return baselines
}

func locationOf(s Descriptor) string {
	if s.Location == "" {
		return FallbackLocation
	}
	return s.Location
}

func (e *Enricher) enrichOne(s Descriptor, base domain.Reading) Record {
	p := ProfileFor(s.Type)
	jitter := -1 + 2*e.rng.Float64()

	pm := math.Round((base.PM25*p.PM25Multiplier+p.PM25Offset+jitter)*10) / 10
	noise := math.Trunc(base.Noise + p.NoiseOffset + jitter)

	rec := Record{
		Descriptor: s,
		PM25:       max(pm, 5),
		Noise:      max(noise, 40),
		TempC:      base.TempC,
		WindKPH:    base.WindKPH,
	}
	rec.Status = classify(rec.PM25)
	return rec
}

func classify(pm25 float64) string {
	switch {
	case pm25 > 100:
		return StatusCritical
	case pm25 > 60:
		return StatusWarning
	default:
		return StatusActive
	}
}

// copySlot must be called with mu held.
func (e *Enricher) copySlot() Snapshot {
	return Snapshot{
		Records:    slices.Clone(e.slot.Records),
		CapturedAt: e.slot.CapturedAt,
	}
}
