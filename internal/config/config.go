// Package config loads service settings from defaults, an optional
// config.yaml and TEMPLES_* environment variables.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Data     DataConfig     `mapstructure:"data"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Nearest  NearestConfig  `mapstructure:"nearest"`
	ORS      ORSConfig      `mapstructure:"ors"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DataConfig struct {
	// Source is "file" or "postgres".
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type SearchConfig struct {
	MinChars    int           `mapstructure:"min_chars"`
	MaxResults  int           `mapstructure:"max_results"`
	CountryCode string        `mapstructure:"country_code"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Delay       time.Duration `mapstructure:"delay"`
}

type GeocoderConfig struct {
	// Backend is "nominatim", "ors" or "none".
	Backend   string `mapstructure:"backend"`
	URL       string `mapstructure:"url"`
	UserAgent string `mapstructure:"user_agent"`
}

type RoutingConfig struct {
	// Backend is "osrm", "ors" or "none".
	Backend         string        `mapstructure:"backend"`
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Delay           time.Duration `mapstructure:"delay"`
	Stagger         time.Duration `mapstructure:"stagger"`
	Pacer           string        `mapstructure:"pacer"`
	DetourFactor    float64       `mapstructure:"detour_factor"`
	AverageSpeedKmh float64       `mapstructure:"average_speed_kmh"`
}

type NearestConfig struct {
	MaxKm      float64 `mapstructure:"max_km"`
	MaxResults int     `mapstructure:"max_results"`
}

type ORSConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Profile string `mapstructure:"profile"`
}

type CacheConfig struct {
	// Backend is "none", "redis" or "postgres".
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// HTTPConfig applies to every outbound client. One attempt by default,
// since the estimator and resolver already fall back on failure.
type HTTPConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.source", "file")
	v.SetDefault("data.path", "data/temples.json")
	v.SetDefault("database.url", "")
	v.SetDefault("search.min_chars", 2)
	v.SetDefault("search.max_results", 8)
	v.SetDefault("search.country_code", "in")
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.delay", time.Second)
	v.SetDefault("geocoder.backend", "nominatim")
	v.SetDefault("geocoder.url", "")
	v.SetDefault("geocoder.user_agent", "temple-locator-service/1.0")
	v.SetDefault("routing.backend", "osrm")
	v.SetDefault("routing.url", "")
	v.SetDefault("routing.timeout", 15*time.Second)
	v.SetDefault("routing.delay", 500*time.Millisecond)
	v.SetDefault("routing.stagger", 600*time.Millisecond)
	v.SetDefault("routing.pacer", "fixed")
	v.SetDefault("routing.detour_factor", 1.3)
	v.SetDefault("routing.average_speed_kmh", 40.0)
	v.SetDefault("nearest.max_km", 50.0)
	v.SetDefault("nearest.max_results", 10)
	v.SetDefault("ors.api_key", "")
	v.SetDefault("ors.profile", "driving-car")
	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("http.max_attempts", 1)
	v.SetDefault("http.backoff", 200*time.Millisecond)
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig()

	// Environment variables: TEMPLES_ROUTING_TIMEOUT → routing.timeout
	v.SetEnvPrefix("TEMPLES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize() {
	for _, s := range []*string{&c.Data.Source, &c.Geocoder.Backend, &c.Routing.Backend, &c.Routing.Pacer, &c.Cache.Backend, &c.Log.Format} {
		*s = strings.ToLower(strings.TrimSpace(*s))
	}
	c.Search.CountryCode = strings.ToLower(strings.TrimSpace(c.Search.CountryCode))
	c.Database.URL = strings.TrimSpace(c.Database.URL)
	c.ORS.APIKey = strings.TrimSpace(c.ORS.APIKey)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	oneOf := func(key, got string, allowed ...string) {
		if !slices.Contains(allowed, got) {
			errs = append(errs, fmt.Sprintf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), got))
		}
	}
	positive := func(key string, ok bool) {
		if !ok {
			errs = append(errs, key+" must be positive")
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	positive("server.read_timeout", c.Server.ReadTimeout > 0)
	positive("server.write_timeout", c.Server.WriteTimeout > 0)

	oneOf("log.format", c.Log.Format, "text", "json")
	oneOf("data.source", c.Data.Source, "file", "postgres")
	oneOf("geocoder.backend", c.Geocoder.Backend, "nominatim", "ors", "none")
	oneOf("routing.backend", c.Routing.Backend, "osrm", "ors", "none")
	oneOf("routing.pacer", c.Routing.Pacer, "fixed", "token")
	oneOf("cache.backend", c.Cache.Backend, "none", "redis", "postgres")

	if c.Data.Source == "file" && strings.TrimSpace(c.Data.Path) == "" {
		errs = append(errs, "data.path is required when data.source is file")
	}
	if c.NeedsDatabase() && c.Database.URL == "" {
		errs = append(errs, "database.url is required for postgres data or cache")
	}
	if c.Cache.Backend == "redis" && strings.TrimSpace(c.Redis.Addr) == "" {
		errs = append(errs, "redis.addr is required when cache.backend is redis")
	}
	if (c.Geocoder.Backend == "ors" || c.Routing.Backend == "ors") && c.ORS.APIKey == "" {
		errs = append(errs, "ors.api_key is required when an ors backend is selected")
	}

	if c.Search.MinChars < 0 {
		errs = append(errs, "search.min_chars must not be negative")
	}
	positive("search.max_results", c.Search.MaxResults > 0)
	positive("search.timeout", c.Search.Timeout > 0)
	positive("routing.timeout", c.Routing.Timeout > 0)
	positive("routing.detour_factor", c.Routing.DetourFactor > 0)
	positive("routing.average_speed_kmh", c.Routing.AverageSpeedKmh > 0)
	positive("nearest.max_km", c.Nearest.MaxKm > 0)
	positive("nearest.max_results", c.Nearest.MaxResults > 0)
	if c.Search.Delay < 0 || c.Routing.Delay < 0 || c.Routing.Stagger < 0 {
		errs = append(errs, "search.delay, routing.delay and routing.stagger must not be negative")
	}
	positive("http.max_attempts", c.HTTP.MaxAttempts > 0)
	if c.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// NeedsDatabase reports whether any selected backend uses Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Data.Source == "postgres" || c.Cache.Backend == "postgres"
}
