package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
)

// Config holds all widget settings, populated from environment variables.
type Config struct {
	// Collaborator base URLs, without the /v1/... path.
	GeocodingBaseURL string        `env:"GEOCODING_BASE_URL" validate:"required,url"`
	WeatherBaseURL   string        `env:"WEATHER_BASE_URL" validate:"required,url"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"`

	HTTPAddr        string `env:"HTTP_ADDR"`
	LogLevel        string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration

	// Reading feed. Disabled when KafkaBrokers is empty.
	KafkaBrokers       []string `env:"KAFKA_BROKERS" validate:"dive,hostname_port"`
	KafkaReadingsTopic string   `env:"KAFKA_READINGS_TOPIC"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	requestTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("REQUEST_TIMEOUT", "10s"))
	if err != nil || requestTimeout <= 0 {
		return nil, errors.New("invalid REQUEST_TIMEOUT")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		GeocodingBaseURL:   strings.TrimRight(sharedcfg.EnvOrDefault("GEOCODING_BASE_URL", "https://geocoding-api.open-meteo.com"), "/"),
		WeatherBaseURL:     strings.TrimRight(sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com"), "/"),
		RequestTimeout:     requestTimeout,
		HTTPAddr:           os.Getenv("HTTP_ADDR"),
		LogLevel:           strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "text")),
		ShutdownTimeout:    shutdownTimeout,
		KafkaBrokers:       brokers,
		KafkaReadingsTopic: sharedcfg.EnvOrDefault("KAFKA_READINGS_TOPIC", "weather-readings"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	if cfg.FeedEnabled() && cfg.KafkaReadingsTopic == "" {
		return nil, errors.New("KAFKA_READINGS_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// FeedEnabled reports whether readings should be published to Kafka.
func (c *Config) FeedEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

var validate = newValidator()

// newValidator returns a struct validator whose errors name the offending
// environment variable rather than the Go field.
func newValidator() func(*Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return func(cfg *Config) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return fmt.Errorf("validate config: %w", err)
		}
		fe := verrs[0]
		name := fe.Field()
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		return fmt.Errorf("invalid %s: %q fails %q", name, fmt.Sprint(fe.Value()), fe.Tag())
	}
}
