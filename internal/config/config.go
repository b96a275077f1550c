package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	CheckWXAPIKey  string
	CheckWXURL     string
	CheckWXTimeout time.Duration

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	CacheBackend          string // "in_memory" or "memcached"
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	// Refresh cadence and cache TTLs. TTLs must outlive their intervals
	// so one missed trigger leaves no gap; validate() enforces a 1.3x
	// floor when a TTL is configured too tight.
	MetarRefreshInterval    time.Duration
	MetarTTL                time.Duration
	WaypointRefreshInterval time.Duration
	WaypointTTL             time.Duration
	WaypointBatchSize       int
	WaypointBatchPause      time.Duration
	RefreshJobTimeout       time.Duration

	RequestTimeout time.Duration
	MaxBatchPoints int
	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Providers struct {
		CheckWX struct {
			URL     string `yaml:"url"`
			Timeout string `yaml:"timeout"`
		} `yaml:"checkwx"`
		WeatherAPI struct {
			URL     string `yaml:"url"`
			Timeout string `yaml:"timeout"`
		} `yaml:"weatherapi"`
	} `yaml:"providers"`

	Cache struct {
		Backend   string `yaml:"backend"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Refresh struct {
		MetarInterval    string `yaml:"metar_interval"`
		MetarTTL         string `yaml:"metar_ttl"`
		WaypointInterval string `yaml:"waypoint_interval"`
		WaypointTTL      string `yaml:"waypoint_ttl"`
		BatchSize        int    `yaml:"batch_size"`
		BatchPause       string `yaml:"batch_pause"`
		JobTimeout       string `yaml:"job_timeout"`
	} `yaml:"refresh"`

	Request struct {
		Timeout        string `yaml:"timeout"`
		MaxBatchPoints int    `yaml:"max_batch_points"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	CheckWXAPIKey string `yaml:"checkwx_api_key"`
	WeatherAPIKey string `yaml:"weatherapi_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. Provider API keys come from CHECKWX_API_KEY /
// WEATHERAPI_API_KEY env or the secrets file. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	var sec secretsFile
	secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
	if secretsData, err := os.ReadFile(secretsPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read secrets file: %w", err)
		}
	} else if err := yaml.Unmarshal(secretsData, &sec); err != nil {
		return nil, fmt.Errorf("parse secrets file: %w", err)
	}

	cfg.CheckWXAPIKey = os.Getenv("CHECKWX_API_KEY")
	if cfg.CheckWXAPIKey == "" {
		cfg.CheckWXAPIKey = sec.CheckWXAPIKey
	}
	if cfg.CheckWXAPIKey == "" {
		return nil, fmt.Errorf("CHECKWX_API_KEY required (set env or config/secrets.yaml checkwx_api_key)")
	}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	if cfg.WeatherAPIKey == "" {
		cfg.WeatherAPIKey = sec.WeatherAPIKey
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHERAPI_API_KEY required (set env or config/secrets.yaml weatherapi_api_key)")
	}

	cfg.CheckWXURL = fc.Providers.CheckWX.URL
	if cfg.CheckWXURL == "" {
		cfg.CheckWXURL = "https://api.checkwx.com/metar"
	}
	cfg.CheckWXTimeout = parseDuration(fc.Providers.CheckWX.Timeout, 5*time.Second)

	cfg.WeatherAPIURL = fc.Providers.WeatherAPI.URL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.weatherapi.com/v1/current.json"
	}
	cfg.WeatherAPITimeout = parseDuration(fc.Providers.WeatherAPI.Timeout, 5*time.Second)

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.MetarRefreshInterval = parseDuration(fc.Refresh.MetarInterval, 15*time.Minute)
	cfg.MetarTTL = parseDuration(fc.Refresh.MetarTTL, 20*time.Minute)
	cfg.WaypointRefreshInterval = parseDuration(fc.Refresh.WaypointInterval, 30*time.Minute)
	cfg.WaypointTTL = parseDuration(fc.Refresh.WaypointTTL, 35*time.Minute)
	cfg.WaypointBatchSize = fc.Refresh.BatchSize
	if cfg.WaypointBatchSize <= 0 {
		cfg.WaypointBatchSize = 10
	}
	cfg.WaypointBatchPause = parseDuration(fc.Refresh.BatchPause, 500*time.Millisecond)
	cfg.RefreshJobTimeout = parseDuration(fc.Refresh.JobTimeout, 5*time.Minute)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)
	cfg.MaxBatchPoints = fc.Request.MaxBatchPoints
	if cfg.MaxBatchPoints <= 0 {
		cfg.MaxBatchPoints = 100
	}
	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 50
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal on empty
// string, parse error, or a non-positive result.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. TTLs configured at or below their
// refresh interval are raised to 1.3x the interval so a single missed
// trigger cannot expose a gap in served data.
func validate(cfg *Config) error {
	switch cfg.CacheBackend {
	case "in_memory", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory or memcached, got %q", cfg.CacheBackend)
	}
	if cfg.MetarTTL <= cfg.MetarRefreshInterval {
		cfg.MetarTTL = cfg.MetarRefreshInterval * 13 / 10
	}
	if cfg.WaypointTTL <= cfg.WaypointRefreshInterval {
		cfg.WaypointTTL = cfg.WaypointRefreshInterval * 13 / 10
	}
	if cfg.RefreshJobTimeout <= cfg.WaypointBatchPause {
		return fmt.Errorf("refresh.job_timeout must exceed refresh.batch_pause")
	}
	return nil
}
