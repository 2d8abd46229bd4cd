package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment (and .env).
type Config struct {
	Port          string `mapstructure:"port"`
	DatabaseURL   string `mapstructure:"database_url"`
	StorageDriver string `mapstructure:"storage_driver"`
	SeedPath      string `mapstructure:"seed_path"`

	ORSAPIKey        string        `mapstructure:"ors_api_key"`
	ORSBaseURL       string        `mapstructure:"ors_base_url"`
	ORSProfile       string        `mapstructure:"ors_profile"`
	PostcodesBaseURL string        `mapstructure:"postcodes_base_url"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`

	GeocodeCache     string        `mapstructure:"geocode_cache"`
	GeocodeCachePath string        `mapstructure:"geocode_cache_path"`
	RedisAddr        string        `mapstructure:"redis_addr"`
	GeocodeCacheTTL  time.Duration `mapstructure:"geocode_cache_ttl"`

	DefaultTimezone string `mapstructure:"default_timezone"`
	JWTSecret       string `mapstructure:"jwt_secret"`

	KafkaBrokers string `mapstructure:"kafka_brokers"`
	KafkaTopic   string `mapstructure:"kafka_topic"`

	S3Region  string `mapstructure:"s3_region"`
	S3Bucket  string `mapstructure:"s3_bucket"`
	S3Prefix  string `mapstructure:"s3_prefix"`
	ExportDir string `mapstructure:"export_dir"`

	LogDebug bool   `mapstructure:"log_debug"`
	LogJSON  bool   `mapstructure:"log_json"`
	LogDir   string `mapstructure:"log_dir"`
}

var defaults = map[string]any{
	"port":               "8080",
	"database_url":       "",
	"storage_driver":     "postgres",
	"seed_path":          "data/seeds/drivers.json",
	"ors_api_key":        "",
	"ors_base_url":       "https://api.openrouteservice.org",
	"ors_profile":        "driving-hgv",
	"postcodes_base_url": "https://api.postcodes.io",
	"http_timeout":       10 * time.Second,
	"geocode_cache":      "postgres",
	"geocode_cache_path": "data/geocode.db",
	"redis_addr":         "localhost:6379",
	"geocode_cache_ttl":  30 * 24 * time.Hour,
	"default_timezone":   "Europe/London",
	"jwt_secret":         "",
	"kafka_brokers":      "",
	"kafka_topic":        "transport-ops.events",
	"s3_region":          "eu-west-2",
	"s3_bucket":          "",
	"s3_prefix":          "payroll",
	"export_dir":         "",
	"log_debug":          false,
	"log_json":           false,
	"log_dir":            "",
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config: read .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: decode: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.GeocodeCache = strings.ToLower(strings.TrimSpace(cfg.GeocodeCache))

	return &cfg, nil
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want postgres or memory)", c.StorageDriver)
	}

	switch c.GeocodeCache {
	case "postgres":
		if c.StorageDriver != "postgres" {
			return errors.New("GEOCODE_CACHE=postgres requires STORAGE_DRIVER=postgres")
		}
	case "sqlite", "redis", "none":
	default:
		return fmt.Errorf("unknown GEOCODE_CACHE %q (want postgres, sqlite, redis or none)", c.GeocodeCache)
	}

	if strings.TrimSpace(c.ORSAPIKey) == "" {
		return errors.New("ORS_API_KEY is required")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the timezone planned stop times are entered in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err)
	}
	return loc, nil
}

// Brokers splits KAFKA_BROKERS; empty disables event publishing.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
