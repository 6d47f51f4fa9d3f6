package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/envwatch-service/internal/config"
	"github.com/couchcryptid/envwatch-service/internal/domain"
)

func testAssessment() domain.Assessment {
	r := domain.NewReading("Kozhikode", time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC))
	r.ID = "reading-1"
	r.PM25 = 60
	r.WindKPH = 2.5
	return domain.Assess(r)
}

func TestSerializeToMessage(t *testing.T) {
	a := testAssessment()

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte("Kozhikode"), msg.Key)
	assert.Equal(t, a.Reading.Timestamp, msg.Time)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "location", msg.Headers[0].Key)
	assert.Equal(t, []byte("Kozhikode"), msg.Headers[0].Value)
	assert.Equal(t, "risk_level", msg.Headers[1].Key)
	assert.Equal(t, []byte("Critical"), msg.Headers[1].Value)
	assert.Equal(t, "observed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[2].Value)

	var decoded domain.Assessment
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "reading-1", decoded.Reading.ID)
	assert.Equal(t, 70, decoded.Risk.Score)
	assert.Equal(t, domain.RecommendStayIndoors, decoded.Risk.Recommendation)
	assert.Len(t, decoded.Risk.Alerts, 3)
}

func TestPublish_EmptyIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaReadingsTopic: "unused"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.NoError(t, w.Publish(context.Background(), nil))
}

func TestNewWriter_UsesReadingsTopic(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"b1:9092", "b2:9092"}, KafkaReadingsTopic: "environment-readings"}
	w := NewWriter(cfg, slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "environment-readings", w.writer.Topic)
	assert.Equal(t, "tcp", w.writer.Addr.Network())
}
