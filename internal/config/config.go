package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"stocks/internal/directory"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type IEX struct {
	Token                 string `json:"token"`
	BaseURL               string `json:"base_url"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec"`
	CacheMaxItems         int    `json:"cache_max_items"`
}

// Redis selects the shared cache store. An empty Addr keeps the cache in memory.
type Redis struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	Namespace string `json:"namespace"`
}

type Logo struct {
	DownloadImages bool  `json:"download_images"`
	MaxBytes       int64 `json:"max_bytes"`
	CacheMaxItems  int   `json:"cache_max_items"`
}

type Config struct {
	Server    Server              `json:"server"`
	IEX       IEX                 `json:"iex"`
	Redis     Redis               `json:"redis"`
	Logo      Logo                `json:"logo"`
	Companies []directory.Company `json:"companies"`
	Debug     bool                `json:"debug"`
}

// ErrMissingToken is returned by RequireToken when no IEX token is configured.
var ErrMissingToken = errors.New("IEX API token not set; use IEX_API_TOKEN or iex.token in config.json")

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		IEX: IEX{
			BaseURL:       "https://cloud.iexapis.com/stable",
			Burst:         1,
			CacheMaxItems: 1000,
		},
		Redis: Redis{Namespace: "stocks"},
		Logo: Logo{
			DownloadImages: true,
			MaxBytes:       2 << 20,
			CacheMaxItems:  64,
		},
		Companies: directory.Default(),
	}
}

// Load reads JSON config from path. If path is empty it falls back to
// config.json in the working directory when present. A .env file is loaded
// first; environment variables then override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
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
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and the company list.
func (c Config) Validate() error {
	if c.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("server.request_timeout_sec must be positive, got %d", c.Server.RequestTimeoutSec)
	}
	if c.IEX.BaseURL == "" {
		return errors.New("iex.base_url must not be empty")
	}
	if c.IEX.MaxRequestsPerMinute < 0 || c.IEX.MinRequestIntervalSec < 0 || c.IEX.CacheTTLSeconds < 0 {
		return errors.New("iex rate limit and cache settings must not be negative")
	}
	if len(c.Companies) == 0 {
		return errors.New("companies must not be empty")
	}
	if _, err := directory.New(c.Companies); err != nil {
		return fmt.Errorf("companies: %w", err)
	}
	return nil
}

// RequireToken fails when no IEX token is configured.
func (c Config) RequireToken() error {
	if strings.TrimSpace(c.IEX.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = parseBool(v, cfg.Debug)
	}

	if v := os.Getenv("IEX_API_TOKEN"); v != "" {
		cfg.IEX.Token = v
	}
	if v := os.Getenv("IEX_BASE_URL"); v != "" {
		cfg.IEX.BaseURL = v
	}
	if x, ok := envInt("IEX_MAX_RPM"); ok && x >= 0 {
		cfg.IEX.MaxRequestsPerMinute = x
	}
	if x, ok := envInt("IEX_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.IEX.MinRequestIntervalSec = x
	}
	if x, ok := envInt("IEX_BURST"); ok && x > 0 {
		cfg.IEX.Burst = x
	}
	if x, ok := envInt("IEX_CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.IEX.CacheTTLSeconds = x
	}
	if x, ok := envInt("IEX_CACHE_MAX_ITEMS"); ok && x > 0 {
		cfg.IEX.CacheMaxItems = x
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if x, ok := envInt("REDIS_DB"); ok && x >= 0 {
		cfg.Redis.DB = x
	}

	if v := os.Getenv("LOGO_DOWNLOAD"); v != "" {
		cfg.Logo.DownloadImages = parseBool(v, cfg.Logo.DownloadImages)
	}
	if x, ok := envInt("LOGO_MAX_BYTES"); ok && x > 0 {
		cfg.Logo.MaxBytes = int64(x)
	}

	if v := os.Getenv("COMPANIES"); v != "" {
		companies, err := ParseCompanies(v)
		if err != nil {
			return fmt.Errorf("COMPANIES: %w", err)
		}
		cfg.Companies = companies
	}
	return nil
}

// ParseCompanies parses "Name=SYM;Name=SYM". Semicolons separate entries so
// names such as "Novavax, Inc." keep their commas.
func ParseCompanies(s string) ([]directory.Company, error) {
	var out []directory.Company
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i := strings.LastIndex(part, "=")
		if i <= 0 || i == len(part)-1 {
			return nil, fmt.Errorf("entry %q: want Name=SYMBOL", part)
		}
		out = append(out, directory.Company{
			Name:   strings.TrimSpace(part[:i]),
			Symbol: strings.TrimSpace(part[i+1:]),
		})
	}
	if len(out) == 0 {
		return nil, errors.New("no entries")
	}
	return out, nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return x, true
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y": return true
	case "0", "false", "no", "n": return false
	}
	return def
}
