// Package weatherapi implements domain.WeatherLookup against weatherapi.com.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/observability"
)

// DefaultBaseURL is the weatherapi.com v1 endpoint.
const DefaultBaseURL = "https://api.weatherapi.com/v1"

// Client fetches current conditions from the weatherapi.com API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a weather client. timeout bounds every request in
// addition to any deadline on the caller's context.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: DefaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentWeather returns temperature, humidity and wind direction for a
// location name.
func (c *Client) CurrentWeather(ctx context.Context, location string) (domain.Weather, error) {
	params := url.Values{
		"key": {c.apiKey},
		"q":   {location},
		"aqi": {"yes"},
	}
	fullURL := c.baseURL + "/current.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Weather{}, fmt.Errorf("current weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Weather{}, fmt.Errorf("weatherapi error: status %d: %s", resp.StatusCode, body)
	}

	var wx response
	if err := json.NewDecoder(resp.Body).Decode(&wx); err != nil {
		return domain.Weather{}, fmt.Errorf("decode response: %w", err)
	}
	if wx.Error != nil {
		return domain.Weather{}, fmt.Errorf("weatherapi error %d: %s", wx.Error.Code, wx.Error.Message)
	}
	if wx.Current == nil || wx.Current.TempC == nil || wx.Current.Humidity == nil {
		return domain.Weather{}, ErrIncompleteResponse
	}

	c.logger.Debug("weather fetched",
		"location", location,
		"temp_c", *wx.Current.TempC,
		"humidity", *wx.Current.Humidity,
		"wind_dir", wx.Current.WindDir,
	)

	return domain.Weather{
		TempC:    *wx.Current.TempC,
		Humidity: *wx.Current.Humidity,
		WindDir:  wx.Current.WindDir,
	}, nil
}

// ErrIncompleteResponse is returned when a 200 response lacks temperature or
// humidity.
var ErrIncompleteResponse = errors.New("weatherapi response missing current conditions")

// weatherapi.com response types. Required fields are pointers so an absent
// value is distinguishable from zero.

type response struct {
	Current *current  `json:"current"`
	Error   *apiError `json:"error"`
}

type current struct {
	TempC    *float64 `json:"temp_c"`
	Humidity *float64 `json:"humidity"`
	WindDir  string   `json:"wind_dir"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
