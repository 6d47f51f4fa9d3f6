package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetCreatesLazily(t *testing.T) {
	store := NewStore(NewRand(3))
	assert.Equal(t, 0, store.Len())

	st := store.Get("Kozhikode")
	snap := st.Snapshot()

	assert.GreaterOrEqual(t, snap.PM25, initialPM25Min)
	assert.Less(t, snap.PM25, initialPM25Max)
	assert.GreaterOrEqual(t, snap.Noise, initialNoiseMin)
	assert.Less(t, snap.Noise, initialNoiseMax)
	assert.Equal(t, initialWind, snap.Wind)
	assert.Equal(t, initialPMTarget, snap.PM25Target)
	assert.Equal(t, initialWind, snap.WindTarget)
	assert.Equal(t, snap.Noise, snap.NoiseTarget)
	assert.Zero(t, snap.Countdown)
	assert.Zero(t, snap.Ticks)

	assert.Same(t, st, store.Get("Kozhikode"))
	assert.Equal(t, 1, store.Len())
}

func TestStore_KeysAreExact(t *testing.T) {
	store := NewStore(NewRand(3))

	store.Get("Kochi")
	store.Get("kochi")
	store.Get("Kochi ")

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, []string{"Kochi", "Kochi ", "kochi"}, store.Locations())
}

func TestNewRand_Deterministic(t *testing.T) {
	a, b := NewRand(99), NewRand(99)
	for range 10 {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.IntN(100), b.IntN(100))
	}
}

func TestRandHelpers(t *testing.T) {
	assert.Equal(t, 10.0, uniform(constRand(0), 10, 20))
	assert.Equal(t, 15.0, uniform(constRand(0.5), 10, 20))
	assert.Equal(t, 6, intBetween(constRand(0), 6, 10))
	assert.Equal(t, 10, intBetween(constRand(0.99), 6, 10))
	assert.True(t, chance(constRand(0.04), 0.05))
	assert.False(t, chance(constRand(0.05), 0.05))
}
