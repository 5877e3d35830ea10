package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/priyadarshini/finadvisor/internal/analytics"
	"github.com/priyadarshini/finadvisor/internal/recommend"
)

// envPrefix namespaces the environment variables read by Load. A double
// underscore separates nesting levels: FINADVISOR_HTTP__PORT -> http.port,
// FINADVISOR_INGEST__FETCH_TIMEOUT -> ingest.fetch_timeout.
const envPrefix = "FINADVISOR_"

// configPathEnvVar overrides the config file location.
const configPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/finadvisor/config.yaml",
}

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Store   StoreConfig   `koanf:"store"`
	Ingest  IngestConfig  `koanf:"ingest"`
	Scoring ScoringConfig `koanf:"scoring"`
	Logging LoggingConfig `koanf:"logging"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
}

// StoreConfig describes connectivity to the catalog store. An empty URI
// selects the in-memory store, which is intended for local development.
type StoreConfig struct {
	URI         string `koanf:"uri"`
	Database    string `koanf:"database"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	MaxPoolSize int    `koanf:"max_pool_size"`
}

// SourceConfig describes one external catalog source. URL and Path are
// mutually exclusive; Path selects a file-backed source.
type SourceConfig struct {
	Name string `koanf:"name"`
	Kind string `koanf:"kind"`
	URL  string `koanf:"url"`
	Path string `koanf:"path"`
}

// IngestConfig governs the catalog refresh pipeline.
type IngestConfig struct {
	FetchTimeout time.Duration  `koanf:"fetch_timeout"`
	Workers      int            `koanf:"workers"`
	Sources      []SourceConfig `koanf:"sources"`
}

// ScoringConfig bundles the heuristic constants used by the scoring engine
// and the popularity tracker.
type ScoringConfig struct {
	Weights    recommend.Weights           `koanf:"weights"`
	Loopholes  recommend.LoopholeRules     `koanf:"loopholes"`
	Popularity analytics.PopularityWeights `koanf:"popularity"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `koanf:"level"`
	Format        string `koanf:"format"` // text|json
	IncludeCaller bool   `koanf:"include_caller"`
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Database:    "finadvisor",
			MaxPoolSize: 10,
		},
		Ingest: IngestConfig{
			FetchTimeout: 10 * time.Second,
			Workers:      4,
		},
		Scoring: ScoringConfig{
			Weights:    recommend.DefaultWeights(),
			Loopholes:  recommend.DefaultLoopholeRules(),
			Popularity: analytics.DefaultPopularityWeights(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load layers configuration: struct defaults, then an optional YAML file,
// then environment variables.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load config defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load config from environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d is out of range", c.HTTP.Port)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return err
	}
	for _, src := range c.Ingest.Sources {
		if src.Name == "" {
			return fmt.Errorf("ingest source with empty name")
		}
		if (src.URL == "") == (src.Path == "") {
			return fmt.Errorf("ingest source %q must set exactly one of url or path", src.Name)
		}
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv(configPathEnvVar); path != "" {
		return path
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
