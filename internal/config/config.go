package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is read from an optional YAML file (REVIEW_CONFIG) and then from the
// environment; environment values win.
type AppConfig struct {
	StockfishPath  string `yaml:"stockfish_path"`
	EngineThreads  int    `yaml:"engine_threads"`
	EngineHashMB   int    `yaml:"engine_hash_mb"`
	EnginePoolSize int    `yaml:"engine_pool_size"`
	AnalysisDepth  int    `yaml:"analysis_depth"`

	EvalServiceURL string        `yaml:"eval_service_url"`
	EvalTimeout    time.Duration `yaml:"eval_timeout"`
	// EvalAPIKey is sent as a bearer token by the client and required by the service when set.
	EvalAPIKey   string `yaml:"eval_api_key"`
	EvalRetries  int    `yaml:"eval_retries"`
	EvalMaxConns int    `yaml:"eval_max_conns"`

	RedisURL        string `yaml:"redis_url"`
	EvalCacheTTLSec int    `yaml:"eval_cache_ttl_sec"`
	EvalLRUSize     int    `yaml:"eval_lru_size"`

	DatabaseURL string `yaml:"database_url"`

	HTTPAddr       string `yaml:"http_addr"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

func defaults() *AppConfig {
	return &AppConfig{
		EngineThreads:   1,
		EngineHashMB:    64,
		AnalysisDepth:   12,
		EvalTimeout:     30 * time.Second,
		EvalRetries:     3,
		EvalMaxConns:    16,
		EvalCacheTTLSec: 7 * 24 * 3600,
		EvalLRUSize:     4096,
		HTTPAddr:        ":8080",
	}
}

func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("REVIEW_CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("STOCKFISH_PATH")); v != "" {
		cfg.StockfishPath = v
	}
	envPositiveInt("ENGINE_THREADS", &cfg.EngineThreads)
	envPositiveInt("ENGINE_HASH_MB", &cfg.EngineHashMB)
	envPositiveInt("ENGINE_POOL_SIZE", &cfg.EnginePoolSize)
	envPositiveInt("ANALYSIS_DEPTH", &cfg.AnalysisDepth)

	if v := strings.TrimSpace(os.Getenv("EVAL_SERVICE_URL")); v != "" {
		cfg.EvalServiceURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("EVAL_TIMEOUT")); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("EVAL_TIMEOUT: %w", err)
		}
		cfg.EvalTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("EVAL_API_KEY")); v != "" {
		cfg.EvalAPIKey = v
	}
	envPositiveInt("EVAL_RETRIES", &cfg.EvalRetries)
	envPositiveInt("EVAL_MAX_CONNS", &cfg.EvalMaxConns)

	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	envPositiveInt("EVAL_CACHE_TTL_SEC", &cfg.EvalCacheTTLSec)
	if v := strings.TrimSpace(os.Getenv("EVAL_LRU_SIZE")); v != "" {
		// 0 disables the in-process layer
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.EvalLRUSize = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.MetricsEnabled = b
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c *AppConfig) Validate() error {
	if c.AnalysisDepth <= 0 {
		return errors.New("analysis depth must be positive")
	}
	if c.EvalTimeout <= 0 {
		return errors.New("eval timeout must be positive")
	}
	if c.EvalRetries <= 0 || c.EvalMaxConns <= 0 {
		return errors.New("eval retries and max conns must be positive")
	}
	if c.EvalServiceURL != "" && !strings.HasPrefix(c.EvalServiceURL, "http://") && !strings.HasPrefix(c.EvalServiceURL, "https://") {
		return fmt.Errorf("EVAL_SERVICE_URL must be http(s): %q", c.EvalServiceURL)
	}
	return nil
}

// Remote reports whether evaluation goes to an evaluation service instead of a local engine.
func (c *AppConfig) Remote() bool { return c.EvalServiceURL != "" }

func (c *AppConfig) EvalCacheTTL() time.Duration {
	return time.Duration(c.EvalCacheTTLSec) * time.Second
}

func (c *AppConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func envPositiveInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

// parseDuration accepts Go durations ("15s") or plain seconds ("15").
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
