package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func record(pm, wind, noise *float64) HistoryRecord {
	return HistoryRecord{Location: testLocation, Timestamp: testTime, PM25: pm, WindKPH: wind, Noise: noise}
}

func TestCorrelate_PerfectPositive(t *testing.T) {
	records := []HistoryRecord{
		record(f(10), f(5), f(50)),
		record(f(20), f(15), f(50)),
	}

	result := Correlate(records)

	require.Equal(t, CorrelationOK, result.Status)
	assert.Equal(t, 2, result.SampleSize)
	assert.InDelta(t, 1.0, result.Coefficients[PairPM25Wind], 1e-9)
	// Constant noise has zero variance.
	assert.Equal(t, 0.0, result.Coefficients[PairPM25Noise])
	assert.Equal(t, 0.0, result.Coefficients[PairWindNoise])
}

func TestCorrelate_InsufficientData(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		result := Correlate(nil)
		assert.Equal(t, CorrelationInsufficientData, result.Status)
		assert.Equal(t, 0, result.SampleSize)
		assert.Nil(t, result.Coefficients)
	})

	t.Run("single record", func(t *testing.T) {
		result := Correlate([]HistoryRecord{record(f(10), f(5), f(50))})
		assert.Equal(t, CorrelationInsufficientData, result.Status)
		assert.Equal(t, 1, result.SampleSize)
		assert.Nil(t, result.Coefficients)
	})

	t.Run("only one complete record", func(t *testing.T) {
		result := Correlate([]HistoryRecord{
			record(f(10), f(5), f(50)),
			record(f(20), nil, f(60)),
		})
		assert.Equal(t, CorrelationInsufficientData, result.Status)
		assert.Equal(t, 1, result.SampleSize)
	})
}

func TestCorrelate_DropsIncompleteRecords(t *testing.T) {
	records := []HistoryRecord{
		record(f(3), f(1), f(70)),
		record(nil, f(100), f(10)),
		record(f(2), f(2), f(60)),
		record(f(1), f(3), nil),
		record(f(1), f(3), f(50)),
	}

	result := Correlate(records)

	require.Equal(t, CorrelationOK, result.Status)
	assert.Equal(t, 3, result.SampleSize)
	assert.InDelta(t, -1.0, result.Coefficients[PairPM25Wind], 1e-9)
	assert.InDelta(t, 1.0, result.Coefficients[PairPM25Noise], 1e-9)
	assert.InDelta(t, -1.0, result.Coefficients[PairWindNoise], 1e-9)
}

func TestCorrelate_RoundsToThreeDecimals(t *testing.T) {
	records := []HistoryRecord{
		record(f(1), f(1), f(40)),
		record(f(2), f(2), f(40)),
		record(f(3), f(4), f(41)),
	}

	result := Correlate(records)

	require.Equal(t, CorrelationOK, result.Status)
	// r = 9 / sqrt(84) = 0.98198...
	assert.Equal(t, 0.982, result.Coefficients[PairPM25Wind])
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"perfect negative", []float64{1, 2, 3}, []float64{3, 2, 1}, -1},
		{"partial", []float64{1, 2, 3, 4}, []float64{1, 3, 2, 4}, 0.8},
		{"zero variance", []float64{5, 5, 5}, []float64{1, 2, 3}, 0},
		{"length mismatch", []float64{1, 2}, []float64{1}, 0},
		{"too short", []float64{1}, []float64{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Pearson(tt.x, tt.y), 1e-9)
		})
	}
}
