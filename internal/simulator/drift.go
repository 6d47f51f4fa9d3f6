package simulator

import (
	"math"

	"github.com/jonboulle/clockwork"
)

// Clamp ranges. Every value returned by Advance lies inside these bounds.
const (
	PM25Min  = 5.0
	PM25Max  = 150.0
	WindMin  = 2.0
	WindMax  = 40.0
	NoiseMin = 40.0
	NoiseMax = 90.0
)

// Particulate drift.
const (
	pm25Smoothing   = 0.15
	pm25Jitter      = 2.0
	pm25SpikeChance = 0.05
	pm25SpikeMin    = 5.0
	pm25SpikeMax    = 15.0
	pm25Arrived     = 2.0 // retarget once this close to the target
	countdownMin    = 6
	countdownMax    = 10
)

// Wind drift.
const (
	windSmoothing  = 0.20
	windJitter     = 1.5
	windGustChance = 0.08
	windGustMin    = 5.0
	windGustMax    = 10.0
	windTargetMin  = 5.0
	windTargetMax  = 25.0
	windPeriodMin  = 8
	windPeriodMax  = 12
)

// Noise drift.
const (
	noiseSmoothing   = 0.25
	noiseJitter      = 2.0
	noiseSpikeChance = 0.12
	noiseSpikeMin    = 5.0
	noiseSpikeMax    = 12.0
	noisePeriodMin   = 5
	noisePeriodMax   = 8
)

// Drift advances location states one tick at a time. Target selection for
// particulate and noise depends on the hour of day read from the clock.
type Drift struct {
	rng   Rand
	clock clockwork.Clock
}

// NewDrift creates a Drift. A nil clock means the real clock.
func NewDrift(rng Rand, clock clockwork.Clock) *Drift {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Drift{rng: rng, clock: clock}
}

// Advance applies exactly one tick to st and returns the new particulate
// (one decimal), wind (one decimal) and noise (whole dB) values. The state is
// locked for the whole tick so concurrent readers never see it half-applied.
func (d *Drift) Advance(st *LocationState) (pm25, wind, noise float64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	hour := d.clock.Now().Hour()
	st.ticks++

	pm25 = d.stepPM25(st, hour)
	wind = d.stepWind(st)
	noise = d.stepNoise(st, hour)
	return pm25, wind, noise
}

func (d *Drift) stepPM25(st *LocationState, hour int) float64 {
	if st.countdown <= 0 || math.Abs(st.pm25-st.pm25Target) < pm25Arrived {
		lo, hi := pm25TargetRange(hour)
		st.pm25Target = uniform(d.rng, lo, hi)
		st.countdown = intBetween(d.rng, countdownMin, countdownMax)
	}
	st.countdown--

	v := st.pm25 + (st.pm25Target-st.pm25)*pm25Smoothing
	v += uniform(d.rng, -pm25Jitter, pm25Jitter)
	if chance(d.rng, pm25SpikeChance) {
		v += uniform(d.rng, pm25SpikeMin, pm25SpikeMax)
	}
	st.pm25 = clamp(v, PM25Min, PM25Max)
	return round1(st.pm25)
}

func (d *Drift) stepWind(st *LocationState) float64 {
	if st.ticks%intBetween(d.rng, windPeriodMin, windPeriodMax) == 0 {
		st.windTarget = uniform(d.rng, windTargetMin, windTargetMax)
	}

	v := st.wind + (st.windTarget-st.wind)*windSmoothing
	v += uniform(d.rng, -windJitter, windJitter)
	if chance(d.rng, windGustChance) {
		v += uniform(d.rng, windGustMin, windGustMax)
	}
	st.wind = clamp(v, WindMin, WindMax)
	return round1(st.wind)
}

func (d *Drift) stepNoise(st *LocationState, hour int) float64 {
	if st.ticks%intBetween(d.rng, noisePeriodMin, noisePeriodMax) == 0 {
		lo, hi := noiseTargetRange(hour)
		st.noiseTarget = uniform(d.rng, lo, hi)
	}

	v := st.noise + (st.noiseTarget-st.noise)*noiseSmoothing
	v += uniform(d.rng, -noiseJitter, noiseJitter)
	if chance(d.rng, noiseSpikeChance) {
		v += uniform(d.rng, noiseSpikeMin, noiseSpikeMax)
	}
	st.noise = clamp(v, NoiseMin, NoiseMax)
	return math.Trunc(st.noise)
}

// pm25TargetRange returns the particulate target range for an hour of day:
// commute windows run high, night runs low.
func pm25TargetRange(hour int) (lo, hi float64) {
	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		return 40, 70
	case hour >= 22 || hour <= 5:
		return 15, 30
	default:
		return 25, 50
	}
}

func noiseTargetRange(hour int) (lo, hi float64) {
	if hour >= 8 && hour <= 20 {
		return 58, 72
	}
	return 45, 55
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return max(lo, min(v, hi))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
