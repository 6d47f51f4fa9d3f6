package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// MaxHistoryLimit caps the history window a caller may request.
const MaxHistoryLimit = 500

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DefaultLocation string

	// Weather overlay configuration.
	WeatherAPIKey    string
	WeatherEnabled   bool
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration
	WeatherCacheSize int

	SensorCacheTTL time.Duration
	SensorsFile    string

	DBPath       string
	HistoryLimit int

	// Background sampling. A zero interval disables the sampler.
	SampleInterval  time.Duration
	SampleLocations []string

	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaReadingsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "3s")
	if err != nil {
		return nil, err
	}
	weatherCacheTTL, err := parsePositiveDuration("WEATHER_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	sensorCacheTTL, err := parsePositiveDuration("SENSOR_CACHE_TTL", "4s")
	if err != nil {
		return nil, err
	}

	sampleInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("SAMPLE_INTERVAL", "0s"))
	if err != nil || sampleInterval < 0 {
		return nil, errors.New("invalid SAMPLE_INTERVAL")
	}

	weatherCacheSize, err := parsePositiveInt("WEATHER_CACHE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	historyLimit, err := parsePositiveInt("HISTORY_LIMIT", 24)
	if err != nil {
		return nil, err
	}
	if historyLimit > MaxHistoryLimit {
		return nil, fmt.Errorf("HISTORY_LIMIT must be at most %d", MaxHistoryLimit)
	}

	weatherKey := os.Getenv("WEATHER_API_KEY")
	weatherEnabled := weatherKey != ""
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	defaultLocation := sharedcfg.EnvOrDefault("DEFAULT_LOCATION", "Kozhikode")

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		DefaultLocation: defaultLocation,

		WeatherAPIKey:    weatherKey,
		WeatherEnabled:   weatherEnabled,
		WeatherTimeout:   weatherTimeout,
		WeatherCacheTTL:  weatherCacheTTL,
		WeatherCacheSize: weatherCacheSize,

		SensorCacheTTL: sensorCacheTTL,
		SensorsFile:    sharedcfg.EnvOrDefault("SENSORS_FILE", "data/sensors.json"),

		DBPath:       sharedcfg.EnvOrDefault("DB_PATH", "data/environmental.db"),
		HistoryLimit: historyLimit,

		SampleInterval:  sampleInterval,
		SampleLocations: splitList(sharedcfg.EnvOrDefault("SAMPLE_LOCATIONS", defaultLocation)),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReadingsTopic: sharedcfg.EnvOrDefault("KAFKA_READINGS_TOPIC", "environment-readings"),
	}

	if strings.TrimSpace(cfg.DefaultLocation) == "" {
		return nil, errors.New("DEFAULT_LOCATION is required")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("DB_PATH is required")
	}
	if cfg.WeatherEnabled && cfg.WeatherAPIKey == "" {
		return nil, errors.New("WEATHER_ENABLED is true but WEATHER_API_KEY is not set")
	}
	if cfg.SampleInterval > 0 && len(cfg.SampleLocations) == 0 {
		return nil, errors.New("SAMPLE_LOCATIONS is required when SAMPLE_INTERVAL is set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaReadingsTopic == "" {
			return nil, errors.New("KAFKA_READINGS_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
