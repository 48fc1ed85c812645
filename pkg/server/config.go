package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vango-dev/shirtform/pkg/form"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address. Default: ":8080".
	Addr string

	// ReadTimeout bounds reading a request, and the idle time of a live
	// socket between client messages. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds each write. Default: 10 seconds.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 10 seconds.
	ShutdownTimeout time.Duration

	// MaxMessageBytes is the largest accepted socket message or API body.
	// Default: 4KB.
	MaxMessageBytes int64

	// MaxSessions caps concurrent live sessions. 0 means no limit.
	MaxSessions int

	// Mode selects sync or async validation for live sessions.
	Mode form.Mode

	// MetricsPath is where Prometheus metrics are served when the server
	// has Metrics. Default: "/metrics".
	MetricsPath string

	// CheckOrigin validates the Origin header of socket upgrades.
	// Default: same host only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxMessageBytes: 4 * 1024,
		MetricsPath:     "/metrics",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = d.MaxMessageBytes
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
	return c
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.MaxSessions < 0 {
		return fmt.Errorf("server: MaxSessions must be >= 0, got %d", c.MaxSessions)
	}
	if c.MetricsPath != "" && c.MetricsPath[0] != '/' {
		return fmt.Errorf("server: MetricsPath must start with /, got %q", c.MetricsPath)
	}
	return nil
}
