package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultPath is where the YAML config is looked up when no --config flag is given.
const DefaultPath = "config/config.yaml"

// AppConfig holds the process-wide configuration. It is loaded once at boot and passed
// explicitly to every component; nothing reads it from package state.
// Secrets never have defaults in code and must come from the config file or the environment.
type AppConfig struct {
	App      AppSection      `koanf:"app"`
	Auth     AuthSection     `koanf:"auth"`
	Gin      GinSection      `koanf:"gin"`
	Database DatabaseSection `koanf:"database"`
	Redis    RedisSection    `koanf:"redis"`
	Log      LogSection      `koanf:"log"`
}

type AppSection struct {
	Port           string   `koanf:"port"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type AuthSection struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	RefreshWindow  time.Duration `koanf:"refresh_window"`
	BcryptCost     int           `koanf:"bcrypt_cost"`
	RevokeOnLogout bool          `koanf:"revoke_on_logout"`
	CookieName     string        `koanf:"cookie_name"`
	CookieDomain   string        `koanf:"cookie_domain"`
	CookieSecure   bool          `koanf:"cookie_secure"`
	// CookieSameSite is one of lax, strict, none.
	CookieSameSite string `koanf:"cookie_same_site"`
}

type GinSection struct {
	Mode    string `koanf:"mode"`
	LogPath string `koanf:"log_path"`
}

type DatabaseSection struct {
	URI         string `koanf:"uri"`
	Host        string `koanf:"host"`
	Port        string `koanf:"port"`
	User        string `koanf:"user"`
	Password    string `koanf:"password"`
	Name        string `koanf:"name"`
	AutoMigrate *bool  `koanf:"auto_migrate"`
}

type RedisSection struct {
	Enabled  bool          `koanf:"enabled"`
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	DB       int           `koanf:"db"`
	Password string        `koanf:"password"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

type LogSection struct {
	Level      string `koanf:"level"`
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// ErrMissingSecret is returned when no signing secret was configured.
var ErrMissingSecret = errors.New("auth.jwt_secret must be set (config file, JWT_SECRET or TOKEN)")

// Load builds the configuration.
// Precedence: config file -> environment variable overrides -> changed command-line flags -> defaults for zero values.
// A missing config file is not an error; an unreadable or invalid one is.
func Load(path string, flags *pflag.FlagSet) (AppConfig, error) {
	var cfg AppConfig
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(k); err != nil {
		return cfg, err
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return cfg, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Auth.JWTSecret == "" {
		return cfg, ErrMissingSecret
	}
	return cfg, nil
}

// flagKey maps command-line flag names onto config keys; flags without a mapping are ignored.
func flagKey(f *pflag.Flag) (string, interface{}) {
	switch f.Name {
	case "port":
		return "app.port", f.Value.String()
	case "log-level":
		return "log.level", f.Value.String()
	case "gin-mode":
		return "gin.mode", f.Value.String()
	}
	return "", nil
}

// envKeys lists the environment variables honoured as overrides, in application order.
// PORT, TOKEN and ATLAS_URI are accepted as aliases so existing deployments keep working.
var envKeys = []struct {
	env  string
	key  string
	list bool
}{
	{env: "PORT", key: "app.port"},
	{env: "APP_PORT", key: "app.port"},
	{env: "ALLOWED_ORIGINS", key: "app.allowed_origins", list: true},
	{env: "TOKEN", key: "auth.jwt_secret"},
	{env: "JWT_SECRET", key: "auth.jwt_secret"},
	{env: "TOKEN_TTL", key: "auth.token_ttl"},
	{env: "TOKEN_REFRESH_WINDOW", key: "auth.refresh_window"},
	{env: "BCRYPT_COST", key: "auth.bcrypt_cost"},
	{env: "REVOKE_ON_LOGOUT", key: "auth.revoke_on_logout"},
	{env: "COOKIE_NAME", key: "auth.cookie_name"},
	{env: "COOKIE_DOMAIN", key: "auth.cookie_domain"},
	{env: "COOKIE_SECURE", key: "auth.cookie_secure"},
	{env: "COOKIE_SAME_SITE", key: "auth.cookie_same_site"},
	{env: "GIN_MODE", key: "gin.mode"},
	{env: "GIN_LOG_PATH", key: "gin.log_path"},
	{env: "ATLAS_URI", key: "database.uri"},
	{env: "DATABASE_URI", key: "database.uri"},
	{env: "DB_HOST", key: "database.host"},
	{env: "DB_PORT", key: "database.port"},
	{env: "DB_USER", key: "database.user"},
	{env: "DB_PASSWORD", key: "database.password"},
	{env: "DB_NAME", key: "database.name"},
	{env: "DB_AUTO_MIGRATE", key: "database.auto_migrate"},
	{env: "REDIS_ENABLED", key: "redis.enabled"},
	{env: "REDIS_HOST", key: "redis.host"},
	{env: "REDIS_PORT", key: "redis.port"},
	{env: "REDIS_DB", key: "redis.db"},
	{env: "REDIS_PASSWORD", key: "redis.password"},
	{env: "REDIS_CACHE_TTL", key: "redis.cache_ttl"},
	{env: "LOG_LEVEL", key: "log.level"},
	{env: "LOG_PATH", key: "log.path"},
	{env: "LOG_MAX_SIZE_MB", key: "log.max_size_mb"},
	{env: "LOG_MAX_BACKUPS", key: "log.max_backups"},
	{env: "LOG_MAX_AGE_DAYS", key: "log.max_age_days"},
	{env: "LOG_COMPRESS", key: "log.compress"},
}

func applyEnvOverrides(k *koanf.Koanf) error {
	for _, e := range envKeys {
		raw := strings.TrimSpace(os.Getenv(e.env))
		if raw == "" {
			continue
		}
		var val interface{} = raw
		if e.list {
			val = splitAndTrim(raw)
		}
		if err := k.Set(e.key, val); err != nil {
			return fmt.Errorf("apply %s: %w", e.env, err)
		}
	}
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.App.Port == "" {
		c.App.Port = "8080"
	}
	if len(c.App.AllowedOrigins) == 0 {
		c.App.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 72 * time.Hour
	}
	if c.Auth.RefreshWindow <= 0 {
		c.Auth.RefreshWindow = 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "token"
	}
	if c.Auth.CookieSameSite == "" {
		c.Auth.CookieSameSite = "lax"
	}
	if c.Gin.Mode == "" {
		c.Gin.Mode = "release"
	}
	if c.Gin.LogPath == "" {
		c.Gin.LogPath = "logs/gin.log"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == "" {
		c.Database.Port = "3306"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Name == "" {
		c.Database.Name = "commentbox"
	}
	if c.Database.AutoMigrate == nil {
		on := true
		c.Database.AutoMigrate = &on
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "127.0.0.1"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 7
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
