package simulator

import (
	"slices"
	"sync"
)

// Starting values for a freshly seen location.
const (
	initialPM25Min  = 25.0
	initialPM25Max  = 35.0
	initialNoiseMin = 55.0
	initialNoiseMax = 65.0
	initialWind     = 12.0
	initialPMTarget = 30.0
)

// LocationState is the drift memory of one location. Current values are kept
// unrounded; rounding applies only to the values returned by Advance.
// All fields are guarded by mu; read them through Snapshot.
type LocationState struct {
	mu sync.Mutex

	pm25  float64
	wind  float64
	noise float64

	pm25Target  float64
	windTarget  float64
	noiseTarget float64

	countdown int // ticks left before the particulate target is re-picked
	ticks     int // ticks applied so far
}

// StateSnapshot is a consistent copy of a LocationState.
type StateSnapshot struct {
	PM25        float64 `json:"pm25"`
	Wind        float64 `json:"wind_kph"`
	Noise       float64 `json:"noise"`
	PM25Target  float64 `json:"pm25_target"`
	WindTarget  float64 `json:"wind_target"`
	NoiseTarget float64 `json:"noise_target"`
	Countdown   int     `json:"countdown"`
	Ticks       int     `json:"ticks"`
}

// Snapshot returns the state as of the last completed tick.
func (s *LocationState) Snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateSnapshot{
		PM25:        s.pm25,
		Wind:        s.wind,
		Noise:       s.noise,
		PM25Target:  s.pm25Target,
		WindTarget:  s.windTarget,
		NoiseTarget: s.noiseTarget,
		Countdown:   s.countdown,
		Ticks:       s.ticks,
	}
}

func newLocationState(rng Rand) *LocationState {
	noise := uniform(rng, initialNoiseMin, initialNoiseMax)
	return &LocationState{
		pm25:        uniform(rng, initialPM25Min, initialPM25Max),
		wind:        initialWind,
		noise:       noise,
		pm25Target:  initialPMTarget,
		windTarget:  initialWind,
		noiseTarget: noise,
	}
}

// Store holds one LocationState per location, keyed by exact name. The map
// is guarded by the store lock; each state carries its own lock so ticks on
// different locations do not contend.
type Store struct {
	rng    Rand
	mu     sync.Mutex
	states map[string]*LocationState
}

// NewStore creates an empty store seeding new states from rng.
func NewStore(rng Rand) *Store {
	return &Store{
		rng:    rng,
		states: make(map[string]*LocationState),
	}
}

// Get returns the state for location, creating it on first access.
func (s *Store) Get(location string) *LocationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[location]
	if !ok {
		st = newLocationState(s.rng)
		s.states[location] = st
	}
	return st
}

// Len reports how many locations have been seen.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Locations returns the known location names in sorted order.
func (s *Store) Locations() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.states))
	for name := range s.states {
		names = append(names, name)
	}
	s.mu.Unlock()

	slices.Sort(names)
	return names
}
