package shared

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// ConfigPathEnvVar points at an optional YAML file layered between defaults and env.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	AppEnv      string `koanf:"app_env"`
	LogLevel    string `koanf:"log_level"`
	HTTPAddr    string `koanf:"http_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	MySQLDSN    string `koanf:"mysql_dsn"`

	Redis    RedisConfig    `koanf:"redis"`
	RulesAPI RulesAPIConfig `koanf:"rules_api"`
	Pipeline PipelineConfig `koanf:"pipeline"`

	CacheTTLSeconds        int `koanf:"cache_ttl_seconds"`
	SegmentCacheTTLSeconds int `koanf:"segment_cache_ttl_seconds"`
	RequestsPerSecond      int `koanf:"requests_per_second"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// RulesAPIConfig selects a remote segment config service. Empty BaseURL means segment
// configs are read from MySQL.
type RulesAPIConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	RPS     int    `koanf:"rps"`
}

type PipelineConfig struct {
	Workers              int     `koanf:"workers"`
	FilterCritical       bool    `koanf:"filter_critical"`
	CriticalGapThreshold float64 `koanf:"critical_gap_threshold"`
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c Config) SegmentCacheTTL() time.Duration {
	return time.Duration(c.SegmentCacheTTLSeconds) * time.Second
}

func defaultConfig() Config {
	return Config{
		AppEnv:      "prod",
		LogLevel:    "info",
		HTTPAddr:    ":8080",
		MetricsAddr: ":9100",
		MySQLDSN:    "root:root@tcp(localhost:3306)/directboost?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		Redis:       RedisConfig{Addr: "localhost:6379"},
		RulesAPI:    RulesAPIConfig{RPS: 5},
		Pipeline: PipelineConfig{
			Workers:              4,
			CriticalGapThreshold: 20,
		},
		CacheTTLSeconds:        900,
		SegmentCacheTTLSeconds: 300,
		RequestsPerSecond:      50,
	}
}

// Load layers struct defaults, an optional YAML file and environment variables, in that order.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	if c.RulesAPI.BaseURL != "" && c.RulesAPI.APIKey == "" {
		log.Warn().Msg("RULES_API_KEY is empty")
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.MySQLDSN == "" {
		errs = append(errs, errors.New("MYSQL_DSN is required"))
	}
	if c.Pipeline.Workers <= 0 {
		errs = append(errs, errors.New("PIPELINE_WORKERS must be positive"))
	}
	if c.Pipeline.CriticalGapThreshold < 0 {
		errs = append(errs, errors.New("CRITICAL_GAP_THRESHOLD must not be negative"))
	}
	if c.CacheTTLSeconds < 0 || c.SegmentCacheTTLSeconds < 0 {
		errs = append(errs, errors.New("cache ttls must not be negative"))
	}
	if c.RulesAPI.BaseURL != "" && c.RulesAPI.RPS <= 0 {
		errs = append(errs, errors.New("RULES_API_RPS must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"app_env":                "app_env",
	"log_level":              "log_level",
	"http_addr":              "http_addr",
	"metrics_addr":           "metrics_addr",
	"mysql_dsn":              "mysql_dsn",
	"redis_addr":             "redis.addr",
	"redis_password":         "redis.password",
	"redis_db":               "redis.db",
	"rules_api_base_url":     "rules_api.base_url",
	"rules_api_key":          "rules_api.api_key",
	"rules_api_rps":          "rules_api.rps",
	"pipeline_workers":       "pipeline.workers",
	"filter_critical":        "pipeline.filter_critical",
	"critical_gap_threshold": "pipeline.critical_gap_threshold",
	"cache_ttl_seconds":      "cache_ttl_seconds",
	"segment_cache_ttl":      "segment_cache_ttl_seconds",
	"requests_per_second":    "requests_per_second",
}

// envTransformFunc maps known environment variables to config paths; unknown ones are dropped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
