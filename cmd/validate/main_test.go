package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/simulator"
)

func fixture(t *testing.T, n int) []domain.Assessment {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC))
	rng := simulator.NewRand(3)
	source := simulator.NewSource(simulator.NewStore(rng), simulator.NewDrift(rng, clock), nil, 0, clock,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	out := make([]domain.Assessment, 0, n)
	for range n {
		out = append(out, domain.Assess(source.FetchReading(context.Background(), "Kozhikode")))
		clock.Advance(5 * time.Minute)
	}
	return out
}

func failures(phases []*phase) map[string]int {
	out := map[string]int{}
	for _, p := range phases {
		if !p.passed() {
			out[p.name] = len(p.errors)
		}
	}
	return out
}

func TestValidate_SimulatedFixturePasses(t *testing.T) {
	assert.Empty(t, failures(validate(fixture(t, 200))))
}

func TestValidate_DetectsOutOfRange(t *testing.T) {
	fx := fixture(t, 5)
	fx[2].Reading.PM25 = 151.25

	got := failures(validate(fx))
	assert.Contains(t, got, "Phase 1: Clamp Ranges and Rounding")
	assert.Contains(t, got, "Phase 2: Scores (re-scored)", "risk no longer matches the reading")
}

func TestValidate_DetectsTamperedScore(t *testing.T) {
	fx := fixture(t, 5)
	fx[1].Risk.Score = 99
	fx[1].Level = "Critical"

	got := failures(validate(fx))
	assert.Equal(t, map[string]int{"Phase 2: Scores (re-scored)": 2}, got, "clamp and re-score checks")
}

func TestValidate_DetectsOrderingAndDuplicates(t *testing.T) {
	fx := fixture(t, 4)
	fx[3].Reading.Timestamp = fx[0].Reading.Timestamp
	fx[2].Reading.ID = fx[1].Reading.ID

	got := failures(validate(fx))
	assert.Equal(t, 2, got["Phase 3: Ordering and Identity"])
}

func TestValidate_SingleReadingIsInsufficient(t *testing.T) {
	assert.Empty(t, failures(validate(fixture(t, 1))))
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	data, err := json.Marshal(fixture(t, 20))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, data, 0o600))
	assert.Equal(t, 0, run(good))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o600))
	assert.Equal(t, 1, run(bad))

	assert.Equal(t, 1, run(filepath.Join(dir, "missing.json")))
}
