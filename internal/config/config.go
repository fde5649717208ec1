package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	DB         DBConfig
	Server     ServerConfig
	Site       SiteConfig
	Cache      CacheConfig
	Revalidate RevalidateConfig
	Log        LogConfig
}

// DBConfig holds database configuration
type DBConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"mysql"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	Database string `envconfig:"DB_NAME" default:"icebreaker"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"require"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
}

// SiteConfig holds public site settings
type SiteConfig struct {
	BaseURL string `envconfig:"SITE_BASE_URL" default:"https://icebreakergames.video"`
	Name    string `envconfig:"SITE_NAME" default:"Icebreaker Games"`
}

// CacheConfig holds rendered page cache configuration
type CacheConfig struct {
	RevalidateTime time.Duration `envconfig:"REVALIDATE_TIME" default:"4h"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
}

// RevalidateConfig holds the on-demand revalidation settings
type RevalidateConfig struct {
	Secret string `envconfig:"REVALIDATE_SECRET"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DSN returns the data source name for the configured driver
func (c *DBConfig) DSN() string {
	if c.Driver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:     "/" + c.Database,
			RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
		}
		return u.String()
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Load loads configuration from environment variables.
// Variables from the file named by ENV_FILE (default .env) are applied first
// without overriding ones already set in the environment.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	var cfg Config

	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load db config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Site); err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Cache); err != nil {
		return nil, fmt.Errorf("failed to load cache config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Revalidate); err != nil {
		return nil, fmt.Errorf("failed to load revalidate config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}

	cfg.Site.BaseURL = strings.TrimRight(cfg.Site.BaseURL, "/")

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.DB.Driver != DriverMySQL && c.DB.Driver != DriverPostgres {
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverMySQL, DriverPostgres)
	}
	if c.DB.MaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if c.Cache.RevalidateTime <= 0 {
		return fmt.Errorf("REVALIDATE_TIME must be positive")
	}
	if !strings.HasPrefix(c.Site.BaseURL, "http://") && !strings.HasPrefix(c.Site.BaseURL, "https://") {
		return fmt.Errorf("SITE_BASE_URL must be an absolute http(s) URL")
	}
	return nil
}
