package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultRateLimit       = 5.0
	DefaultRateBurst       = 10
	DefaultLockTimeout     = 5 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultTraceSampleRate = 1.0
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Records       RecordsConfig       `yaml:"records"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// NATSConfig holds NATS configuration. An empty URL disables record-change publishing.
type NATSConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gt=0"`
	RateBurst       int           `yaml:"rate_burst" validate:"gte=1"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// RecordsConfig tunes record maintenance.
type RecordsConfig struct {
	// Tiers lists the active record tiers by abbreviation or long name. Empty
	// enables all of them.
	Tiers       []string      `yaml:"tiers" validate:"dive,oneof=WR CR NR"`
	LockTimeout time.Duration `yaml:"lock_timeout" validate:"gt=0"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// OTLPEndpoint is the OTLP/gRPC collector spans are exported to. Empty disables tracing.
	OTLPEndpoint    string  `yaml:"otlp_endpoint" validate:"omitempty,hostname_port"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	// TraceSampleRate is the fraction of root spans sampled; zero means DefaultTraceSampleRate.
	TraceSampleRate float64 `yaml:"trace_sample_rate" validate:"gte=0,lte=1"`
}

// LoadConfig loads the configuration from a YAML file, then applies environment
// overrides. When the file cannot be read the configuration comes from the
// environment alone.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides cfg with the environment variables that are set.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("RECORD_TIERS"); v != "" {
		cfg.Records.Tiers = splitList(v)
	}
	if v := os.Getenv("RECORD_LOCK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RECORD_LOCK_TIMEOUT value: %w", err)
		}
		cfg.Records.LockTimeout = d
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %w", err)
		}
		cfg.Observability.TraceSampleRate = f
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = DefaultRateLimit
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = DefaultRateBurst
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Records.LockTimeout == 0 {
		c.Records.LockTimeout = DefaultLockTimeout
	}
	if c.Observability.TraceSampleRate == 0 {
		c.Observability.TraceSampleRate = DefaultTraceSampleRate
	}
	for i, t := range c.Records.Tiers {
		c.Records.Tiers[i] = normalizeTier(t)
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// tierNames maps the long record tier names onto the stored abbreviations.
var tierNames = map[string]string{
	"national":    "NR",
	"continental": "CR",
	"world":       "WR",
}

func normalizeTier(t string) string {
	t = strings.TrimSpace(t)
	if abbr, ok := tierNames[strings.ToLower(t)]; ok {
		return abbr
	}
	return strings.ToUpper(t)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
