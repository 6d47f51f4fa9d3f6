package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/envwatch-service/internal/domain"
)

var start = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

func TestSimulate_Deterministic(t *testing.T) {
	a := simulate([]string{"Kozhikode", "Kochi"}, 50, 7, start, 5*time.Minute)
	b := simulate([]string{"Kozhikode", "Kochi"}, 50, 7, start, 5*time.Minute)

	require.Len(t, a, 100)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different fixtures (-first +second):\n%s", diff)
	}

	c := simulate([]string{"Kozhikode", "Kochi"}, 50, 8, start, 5*time.Minute)
	assert.NotEqual(t, a[10].Reading.PM25+a[11].Reading.PM25+a[30].Reading.Noise,
		c[10].Reading.PM25+c[11].Reading.PM25+c[30].Reading.Noise, "different seeds diverge")
}

func TestSimulate_InterleavesLocationsAndSteps(t *testing.T) {
	got := simulate([]string{"Kozhikode", "Kochi"}, 3, 1, start, time.Hour)

	require.Len(t, got, 6)
	assert.Equal(t, "Kozhikode", got[0].Reading.Location)
	assert.Equal(t, "Kochi", got[1].Reading.Location)
	assert.Equal(t, start, got[0].Reading.Timestamp)
	assert.Equal(t, start, got[1].Reading.Timestamp)
	assert.Equal(t, start.Add(2*time.Hour), got[5].Reading.Timestamp)
	assert.NotEqual(t, got[0].Reading.ID, got[1].Reading.ID)
	for _, a := range got {
		assert.Equal(t, domain.WeatherNotConfigured, a.Reading.WeatherStatus)
		assert.Equal(t, domain.RiskLevel(a.Risk.Score), a.Level)
	}
}

func TestSplitLocations(t *testing.T) {
	assert.Equal(t, []string{"Kozhikode", "Kochi"}, splitLocations(" Kozhikode, ,Kochi "))
	assert.Empty(t, splitLocations(" , "))
}

func TestWriteJSON_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock", "readings.json")
	fixture := simulate([]string{"Kozhikode"}, 2, 1, start, time.Minute)

	require.NoError(t, writeJSON(path, fixture))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []domain.Assessment
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
}
