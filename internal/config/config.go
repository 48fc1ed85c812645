package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vango-dev/shirtform/internal/errors"
	"github.com/vango-dev/shirtform/pkg/form"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "shirtform.json"

	// EnvFileName is the dotenv file read next to the configuration file.
	EnvFileName = ".env"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SHIRTFORM_"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultMetricsPath is where metrics are served by default.
	DefaultMetricsPath = "/metrics"

	// DefaultTracerName names the tracer when none is configured.
	DefaultTracerName = "shirtform"
)

// Duration is a time.Duration written as a string such as "30s" in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete shirtform configuration.
type Config struct {
	// Server contains HTTP and live session settings.
	Server ServerConfig `json:"server"`

	// Log contains logging settings.
	Log LogConfig `json:"log"`

	// Validation selects how live sessions validate.
	Validation ValidationConfig `json:"validation"`

	// Schema is the path to a schema YAML file. Empty means the built-in
	// schema.
	Schema string `json:"schema,omitempty"`

	// Catalog is the path to a catalog YAML file. Empty means the built-in
	// catalog.
	Catalog string `json:"catalog,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing"`

	// configPath stores the path the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	Addr            string   `json:"addr,omitempty"`
	ReadTimeout     Duration `json:"readTimeout,omitempty"`
	WriteTimeout    Duration `json:"writeTimeout,omitempty"`
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`
	MaxMessageBytes int64    `json:"maxMessageBytes,omitempty"`
	MaxSessions     int      `json:"maxSessions,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// ValidationConfig contains validation settings.
type ValidationConfig struct {
	// Mode is sync or async.
	Mode string `json:"mode,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled bool   `json:"enabled"`
	Name    string `json:"name,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     Duration(60 * time.Second),
			WriteTimeout:    Duration(10 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			MaxMessageBytes: 4 * 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Validation: ValidationConfig{
			Mode: form.ModeSync.String(),
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      DefaultMetricsPath,
			Namespace: "shirtform",
		},
		Tracing: TracingConfig{
			Name: DefaultTracerName,
		},
	}
}

// Load reads shirtform.json and .env from dir, applies SHIRTFORM_*
// overrides from the process environment and validates the result. Both
// files are optional.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return nil, err
	}

	dotenv, err := readEnvFile(filepath.Join(dir, EnvFileName))
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the configuration file at path. A missing file yields the
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.New("E100").WithFile(path).Wrap(err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E101").Wrap(err).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
		if se, ok := err.(*json.SyntaxError); ok {
			line, col := position(data, se.Offset)
			return nil, e.WithLocation(path, line, col)
		}
		return nil, e.WithFile(path)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// readEnvFile parses a dotenv file without touching the process
// environment. A missing file yields no entries.
func readEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.New("E102").WithFile(path).Wrap(err)
	}
	return env, nil
}

// ApplyEnv applies SHIRTFORM_* overrides found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("VALIDATION_MODE", &c.Validation.Mode)
	str("SCHEMA", &c.Schema)
	str("CATALOG", &c.Catalog)
	str("METRICS_PATH", &c.Metrics.Path)
	str("TRACING_NAME", &c.Tracing.Name)

	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(name, v, err)
		}
		*dst = b
		return nil
	}
	if err := boolean("METRICS_ENABLED", &c.Metrics.Enabled); err != nil {
		return err
	}
	if err := boolean("TRACING_ENABLED", &c.Tracing.Enabled); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "MAX_SESSIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("MAX_SESSIONS", v, err)
		}
		c.Server.MaxSessions = n
	}
	return nil
}

func envError(name, value string, err error) error {
	return errors.New("E108").
		WithDetail(fmt.Sprintf("%s%s=%q cannot be parsed.", EnvPrefix, name, value)).
		Wrap(err)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.MaxMessageBytes == 0 {
		c.Server.MaxMessageBytes = d.Server.MaxMessageBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Validation.Mode == "" {
		c.Validation.Mode = d.Validation.Mode
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Tracing.Name == "" {
		c.Tracing.Name = d.Tracing.Name
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("E103").Wrap(err).
			WithSuggestion("Set log.level to debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E104").Wrap(fmt.Errorf("unknown format %q", c.Log.Format)).
			WithSuggestion(`Set log.format to "text" or "json"`)
	}
	if _, err := form.ParseMode(c.Validation.Mode); err != nil {
		return errors.New("E105").Wrap(err).
			WithSuggestion(`Set validation.mode to "sync" or "async"`)
	}
	if c.Server.Addr == "" {
		return errors.New("E106").WithDetail("server.addr must not be empty.")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New("E106").WithDetail("Server timeouts must not be negative.")
	}
	if c.Server.MaxMessageBytes < 0 {
		return errors.New("E106").WithDetail("server.maxMessageBytes must not be negative.")
	}
	if c.Server.MaxSessions < 0 {
		return errors.New("E106").WithDetail("server.maxSessions must be 0 (no limit) or more.")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E107").Wrap(fmt.Errorf("got %q", c.Metrics.Path)).
			WithSuggestion(`Use a path such as "/metrics"`)
	}
	return nil
}

// Mode returns the validation mode. Validate must have succeeded.
func (c *Config) Mode() form.Mode {
	m, _ := form.ParseMode(c.Validation.Mode)
	return m
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E100").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E100").WithFile(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// Exists reports whether dir holds a configuration file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// Logger builds a slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset-1 && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
