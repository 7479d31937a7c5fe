package logging

import (
	"io"
	"strings"
)

// Config controls logger initialization.
type Config struct {
	// ServiceName identifies the service emitting logs.
	ServiceName string

	// Environment is the deployment environment (development, staging, production).
	Environment string

	// Level controls verbosity (debug, info, warn, error). Defaults to "info".
	Level string

	// Output is the log destination: "stdout", "stderr", or a file path.
	Output string

	// Writer overrides Output when set.
	Writer io.Writer
}

// WithServiceName sets the service name.
func (c Config) WithServiceName(name string) Config {
	c.ServiceName = name
	return c
}

// WithEnvironment sets the environment.
func (c Config) WithEnvironment(env string) Config {
	c.Environment = env
	return c
}

// WithLevel sets the log level.
func (c Config) WithLevel(level string) Config {
	c.Level = level
	return c
}

// WithWriter directs output to w.
func (c Config) WithWriter(w io.Writer) Config {
	c.Writer = w
	return c
}

// IsDevelopment returns true if environment is development.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}
