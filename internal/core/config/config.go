package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxZoneCacheRes keeps invalidation fan-out bounded; see zones.MaxH3Res.
const maxZoneCacheRes = 7

type WMSCfg struct {
	BaseURL string
	Token   string
	Layers  []string
	Alpha   float64
}

type ZoneCacheCfg struct {
	TTL       time.Duration
	Size      int
	H3Res     int
	OpTimeout time.Duration
}

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers string
	GroupID string
}

type Config struct {
	Addr           string
	LogLevel       string
	LogConsole     bool
	BackendURL     string
	BackendToken   string
	BackendTimeout time.Duration
	WMS            WMSCfg
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPoolSize  int
	ZoneCache      ZoneCacheCfg
	Invalidation   InvalidationCfg
	MetricsEnabled bool
	MetricsAddr    string
}

func FromEnv() Config {
	res := getint("ZONE_CACHE_H3_RES", 5)
	if res < 0 {
		res = 0
	}
	if res > maxZoneCacheRes {
		res = maxZoneCacheRes
	}

	return Config{
		Addr:           getenv("ADDR", ":8090"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogConsole:     getbool("LOG_CONSOLE", false),
		BackendURL:     strings.TrimRight(getenv("BACKEND_URL", "http://localhost:8000/api"), "/"),
		BackendToken:   getenv("BACKEND_TOKEN", ""),
		BackendTimeout: getduration("BACKEND_TIMEOUT", 10*time.Second),
		WMS: WMSCfg{
			BaseURL: getenv("WMS_BASE_URL", "http://localhost:8080/geoserver/wms"),
			Token:   getenv("WMS_TOKEN", ""),
			Layers:  splitList(getenv("WMS_LAYERS", "")),
			Alpha:   getfloat("WMS_ALPHA", 0.65),
		},
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),
		RedisPoolSize: getint("REDIS_POOL_SIZE", 32),
		ZoneCache: ZoneCacheCfg{
			TTL:       getduration("ZONE_CACHE_TTL", 5*time.Minute),
			Size:      getint("ZONE_CACHE_SIZE", 1024),
			H3Res:     res,
			OpTimeout: getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		},
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "airspace-zone-updates"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "airspace-cache-invalidator"),
		},
		MetricsEnabled: getbool("METRICS_ENABLED", true),
		MetricsAddr:    getenv("METRICS_ADDR", ""),
	}
}

// Load reads the environment and then overlays the YAML file named by
// AIRSPACE_CONFIG_FILE, if any. Values set in the environment win.
func Load() (Config, error) {
	cfg := FromEnv()
	path := strings.TrimSpace(os.Getenv("AIRSPACE_CONFIG_FILE"))
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := applyFile(&cfg, raw); err != nil {
		return cfg, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

type fileConfig struct {
	WMS struct {
		BaseURL string   `yaml:"baseURL"`
		Token   string   `yaml:"token"`
		Layers  []string `yaml:"layers"`
		Alpha   float64  `yaml:"alpha"`
	} `yaml:"wms"`
	Backend struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"backend"`
}

func applyFile(cfg *Config, raw []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if fc.WMS.BaseURL != "" && !isSet("WMS_BASE_URL") {
		cfg.WMS.BaseURL = fc.WMS.BaseURL
	}
	if fc.WMS.Token != "" && !isSet("WMS_TOKEN") {
		cfg.WMS.Token = fc.WMS.Token
	}
	if len(fc.WMS.Layers) > 0 && !isSet("WMS_LAYERS") {
		cfg.WMS.Layers = fc.WMS.Layers
	}
	if fc.WMS.Alpha > 0 && !isSet("WMS_ALPHA") {
		cfg.WMS.Alpha = fc.WMS.Alpha
	}
	if fc.Backend.URL != "" && !isSet("BACKEND_URL") {
		cfg.BackendURL = strings.TrimRight(fc.Backend.URL, "/")
	}
	if fc.Backend.Token != "" && !isSet("BACKEND_TOKEN") {
		cfg.BackendToken = fc.Backend.Token
	}
	return nil
}

func isSet(k string) bool { return os.Getenv(k) != "" }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parse "a, b,,c" into [a b c]
func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
