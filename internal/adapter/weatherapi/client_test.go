package weatherapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/observability"
)

const (
	testKey           = "wx-test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_CurrentWeather_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current.json", r.URL.Path)
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		assert.Equal(t, "Kozhikode", r.URL.Query().Get("q"))
		assert.Equal(t, "yes", r.URL.Query().Get("aqi"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"location": {"name": "Kozhikode", "country": "India"},
			"current": {"temp_c": 31.2, "humidity": 74, "wind_kph": 13.0, "wind_dir": "WNW",
				"air_quality": {"pm2_5": 18.4, "us-epa-index": 1}}
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	w, err := c.CurrentWeather(context.Background(), "Kozhikode")
	require.NoError(t, err)

	assert.Equal(t, 31.2, w.TempC)
	assert.Equal(t, 74.0, w.Humidity)
	assert.Equal(t, "WNW", w.WindDir)
	assert.Equal(t, 1, testutil.CollectAndCount(c.metrics.WeatherAPIDuration))
}

func TestClient_CurrentWeather_EscapesLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Kochi, Kerala", r.URL.Query().Get("q"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"current": {"temp_c": 29, "humidity": 80, "wind_dir": "S"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentWeather(context.Background(), "Kochi, Kerala")
	require.NoError(t, err)
}

func TestClient_CurrentWeather_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":2008,"message":"API key has been disabled."}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentWeather(context.Background(), "Kozhikode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "disabled")
}

func TestClient_CurrentWeather_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"current": `))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentWeather(context.Background(), "Kozhikode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_CurrentWeather_OKWithoutConditions(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty object", `{}`, ErrIncompleteResponse.Error()},
		{"error payload", `{"error":{"code":1006,"message":"No matching location found."}}`, "1006"},
		{"empty current", `{"current": {}}`, ErrIncompleteResponse.Error()},
		{"missing humidity", `{"current": {"temp_c": 30, "wind_dir": "N"}}`, ErrIncompleteResponse.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set(headerContentType, contentTypeJSON)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).CurrentWeather(context.Background(), "Nowhere")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_OKWithoutConditionsKeepsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	r := domain.ApplyWeather(context.Background(), domain.NewReading("Nowhere", time.Now()), c, c.logger)

	assert.Equal(t, domain.DefaultTempC, r.TempC)
	assert.Equal(t, domain.DefaultHumidity, r.Humidity)
	assert.Equal(t, domain.WeatherFailed, r.WeatherStatus)
}

func TestClient_CurrentWeather_ZeroValuesAreApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"current": {"temp_c": 0, "humidity": 0, "wind_dir": "N"}}`))
	}))
	defer srv.Close()

	w, err := testClient(srv.URL).CurrentWeather(context.Background(), "Leh")
	require.NoError(t, err)
	assert.Equal(t, 0.0, w.TempC)
	assert.Equal(t, 0.0, w.Humidity)
}

func TestClient_CurrentWeather_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.CurrentWeather(context.Background(), "Kozhikode")
	require.Error(t, err)
}

func TestClient_CurrentWeather_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).CurrentWeather(ctx, "Kozhikode")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(testKey, 3*time.Second, testMetrics(), slog.Default())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}
