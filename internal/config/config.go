// Package config loads service configuration from defaults, an optional YAML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
// Nested keys use a double underscore: HUSTLEHUB_DATABASE__URL -> database.url.
const EnvPrefix = "HUSTLEHUB_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = "HUSTLEHUB_CONFIG"

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Auth      AuthConfig      `koanf:"auth"`
	News      NewsConfig      `koanf:"news"`
	Redis     RedisConfig     `koanf:"redis"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AuthConfig describes the hosted auth service that issues session tokens.
type AuthConfig struct {
	StoreURL      string `koanf:"store_url"`
	AnonKey       string `koanf:"anon_key"`
	JWTSecret     string `koanf:"jwt_secret"`
	JWTAudience   string `koanf:"jwt_audience"`
	AccessCookie  string `koanf:"access_cookie"`
	RefreshCookie string `koanf:"refresh_cookie"`
	CookieDomain  string `koanf:"cookie_domain"`
	CookieSecure  bool   `koanf:"cookie_secure"`
}

// NewsConfig configures the headlines proxy.
type NewsConfig struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	APICacheTTL  time.Duration `koanf:"api_cache_ttl"`
	PageCacheTTL time.Duration `koanf:"page_cache_ttl"`
	UpstreamRPS  float64       `koanf:"upstream_rps"`
	Timeout      time.Duration `koanf:"timeout"`
}

// RedisConfig configures the optional shared cache. When disabled, caches and
// the view registry live in process memory.
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// RateLimitConfig configures per-IP limits on the JSON API routes.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// CORSConfig configures allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// aliases maps variable names used by existing deployments onto config keys.
// Earlier entries win.
var aliases = []struct {
	env string
	key string
}{
	{"DATABASE_URL", "database.url"},
	{"SUPABASE_URL", "auth.store_url"},
	{"NEXT_PUBLIC_SUPABASE_URL", "auth.store_url"},
	{"SUPABASE_ANON_KEY", "auth.anon_key"},
	{"NEXT_PUBLIC_SUPABASE_ANON_KEY", "auth.anon_key"},
	{"SUPABASE_JWT_SECRET", "auth.jwt_secret"},
	{"NEWS_API_KEY", "news.api_key"},
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Auth: AuthConfig{
			JWTAudience:   "authenticated",
			AccessCookie:  "sb-access-token",
			RefreshCookie: "sb-refresh-token",
			CookieSecure:  true,
		},
		News: NewsConfig{
			BaseURL:      "https://newsapi.org/v2",
			APICacheTTL:  5 * time.Minute,
			PageCacheTTL: time.Hour,
			UpstreamRPS:  1,
			Timeout:      10 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 60,
			Window:   time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load builds the configuration. Sources are applied in order, later ones
// overriding earlier ones: defaults, YAML file, aliases, prefixed environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	for i := len(aliases) - 1; i >= 0; i-- {
		if v := strings.TrimSpace(os.Getenv(aliases[i].env)); v != "" {
			if err := k.Set(aliases[i].key, v); err != nil {
				return nil, fmt.Errorf("apply %s: %w", aliases[i].env, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKeyValue maps HUSTLEHUB_SECTION__FIELD to section.field. List values are comma separated.
func envKeyValue(name, value string) (string, interface{}) {
	name = strings.TrimPrefix(name, EnvPrefix)
	if name == "CONFIG" {
		return "", nil
	}
	key := strings.ReplaceAll(strings.ToLower(name), "__", ".")
	if key == "cors.allowed_origins" {
		origins := strings.Split(value, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return key, origins
	}
	return key, value
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database url is required (DATABASE_URL or HUSTLEHUB_DATABASE__URL)"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required (SUPABASE_JWT_SECRET or HUSTLEHUB_AUTH__JWT_SECRET)"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("rate limit requests and window must be positive"))
	}
	if c.Auth.AccessCookie == "" {
		errs = append(errs, errors.New("access cookie name must not be empty"))
	}
	return errors.Join(errs...)
}
