package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Sina struct {
	Enabled               bool   `json:"enabled"`
	Endpoint              string `json:"endpoint"`
	Referer               string `json:"referer"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec"`
	CacheMaxItems         int    `json:"cache_max_items"`
}

type Eastmoney struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
}

type Config struct {
	Server    Server    `json:"server"`
	Sina      Sina      `json:"sina"`
	Eastmoney Eastmoney `json:"eastmoney"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Sina: Sina{
			Enabled:              true,
			Endpoint:             "https://hq.sinajs.cn",
			Referer:              "https://finance.sina.com.cn",
			MaxRequestsPerMinute: 60,
			Burst:                5,
			CacheTTLSeconds:      3,
			CacheMaxItems:        1024,
		},
		Eastmoney: Eastmoney{
			Enabled:  false,
			Endpoint: "https://push2.eastmoney.com/api/qt/stock/get",
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. A .env file, when present, is loaded first;
// environment variables override select fields.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := envInt("REQUEST_TIMEOUT_SEC"); v > 0 {
		cfg.Server.RequestTimeoutSec = v
	}
	if v := os.Getenv("SINA_ENDPOINT"); v != "" {
		cfg.Sina.Endpoint = v
	}
	if v := os.Getenv("SINA_REFERER"); v != "" {
		cfg.Sina.Referer = v
	}
	if v, ok := envBool("SINA_ENABLED"); ok {
		cfg.Sina.Enabled = v
	}
	if v := envInt("SINA_MAX_RPM"); v >= 0 {
		cfg.Sina.MaxRequestsPerMinute = v
	}
	if v := envInt("SINA_MIN_INTERVAL_SEC"); v >= 0 {
		cfg.Sina.MinRequestIntervalSec = v
	}
	if v := envInt("SINA_BURST"); v > 0 {
		cfg.Sina.Burst = v
	}
	if v := envInt("SINA_CACHE_TTL_SEC"); v >= 0 {
		cfg.Sina.CacheTTLSeconds = v
	}
	if v := envInt("SINA_CACHE_MAX_ITEMS"); v > 0 {
		cfg.Sina.CacheMaxItems = v
	}
	if v, ok := envBool("EASTMONEY_ENABLED"); ok {
		cfg.Eastmoney.Enabled = v
	}
	if v := os.Getenv("EASTMONEY_ENDPOINT"); v != "" {
		cfg.Eastmoney.Endpoint = v
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return -1
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err != nil {
		return -1
	}
	return x
}

func envBool(key string) (value, ok bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}
