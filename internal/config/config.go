// Package config provides environment variable-based configuration loading.
//
// Purpose:
//
//	This package defines the status-service configuration structure and loads
//	it from the process environment using envconfig, optionally seeded from a
//	local dotenv file. The payload values (greeting, offset, secret) can be
//	served from the startup snapshot or re-read on every request.
//
// Dependencies:
//   - github.com/kelseyhightower/envconfig: Environment variable parsing
//   - github.com/subosito/gotenv: Optional .env file loading
//
// Thread Safety:
//   - Config is read-only after loading (safe for concurrent read access)
//
// Error Handling:
//   - Load returns wrapped errors from envconfig.Process and validation
//   - A malformed TIMEZONE_OFFSET is not a load error; see OffsetError
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/timezone"
)

// Payload holds the values rendered into the status response.
type Payload struct {
	// Greeting becomes the "message" field.
	Greeting string `envconfig:"GREETING" default:"Hello World"`
	// TimezoneOffset is the ±HH:MM offset applied to the reported timestamp.
	TimezoneOffset string `envconfig:"TIMEZONE_OFFSET" default:"+05:30"`
	// SecretMessage becomes the "secret" field.
	SecretMessage string `envconfig:"SECRET_MESSAGE" default:"N/A"`
}

// Config represents runtime configuration for the status service.
type Config struct {
	Payload

	ServiceName string `envconfig:"SERVICE_NAME" default:"status-service"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTPAddress serves the public status endpoint.
	HTTPAddress string `envconfig:"HTTP_ADDRESS" default:":8000"`
	// AdminAddress serves /metrics and /healthz. Empty disables the admin listener.
	AdminAddress string `envconfig:"ADMIN_ADDRESS" default:":9090"`

	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ReloadPerRequest bool          `envconfig:"RELOAD_PER_REQUEST" default:"false"`

	// Observability. An empty endpoint disables trace export.
	TelemetryEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TelemetryProtocol string `envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"grpc"`
	TelemetryHeaders  string `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	TelemetryInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
}

// Load reads environment variables into Config, applying defaults where necessary.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	cfg.TelemetryProtocol = strings.ToLower(strings.TrimSpace(cfg.TelemetryProtocol))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad returns Config or exits the process.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// Validate checks settings that would prevent the process from starting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return errors.New("SERVICE_NAME must be provided")
	}
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return errors.New("HTTP_ADDRESS must be provided")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if c.TelemetryProtocol != "grpc" && c.TelemetryProtocol != "http" {
		return fmt.Errorf("unsupported OTLP protocol %q", c.TelemetryProtocol)
	}
	return nil
}

// OffsetError reports whether the configured TIMEZONE_OFFSET parses.
// The service still starts with a bad offset; requests fail until it is fixed.
func (c *Config) OffsetError() error {
	_, err := timezone.Parse(c.TimezoneOffset)
	return err
}

// Headers parses OTEL_EXPORTER_OTLP_HEADERS ("k=v,k2=v2").
func (c *Config) Headers() map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(c.TelemetryHeaders, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}

// PayloadSource yields the payload values for a request.
type PayloadSource interface {
	Current() (Payload, error)
}

// Source returns the payload source selected by RELOAD_PER_REQUEST.
func (c *Config) Source() PayloadSource {
	if c.ReloadPerRequest {
		return EnvSource{}
	}
	return StaticSource(c.Payload)
}

// StaticSource always returns the snapshot it was built from.
type StaticSource Payload

// Current implements PayloadSource.
func (s StaticSource) Current() (Payload, error) {
	return Payload(s), nil
}

// EnvSource re-reads GREETING, TIMEZONE_OFFSET and SECRET_MESSAGE on every call.
type EnvSource struct{}

// Current implements PayloadSource.
func (EnvSource) Current() (Payload, error) {
	var p Payload
	if err := envconfig.Process("", &p); err != nil {
		return Payload{}, fmt.Errorf("config: process payload env: %w", err)
	}
	return p, nil
}
