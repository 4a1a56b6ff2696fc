package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	CORS     CORSConfig     `toml:"cors"`
}

type AppConfig struct {
	Name                   string `toml:"name" env:"APP_NAME"`
	Env                    string `toml:"env" env:"APP_ENV"`
	Host                   string `toml:"host" env:"APP_HOST"`
	Port                   int    `toml:"port" env:"PORT"`
	GinMode                string `toml:"gin_mode" env:"GIN_MODE"`
	LogLevel               string `toml:"log_level" env:"LOG_LEVEL"`
	LogFormat              string `toml:"log_format" env:"LOG_FORMAT"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS"`
}

type AuthConfig struct {
	JWTSecret      string `toml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpireHours int    `toml:"jwt_expire_hours" env:"JWT_EXPIRE_HOURS"`
	BcryptCost     int    `toml:"bcrypt_cost" env:"BCRYPT_COST"`
}

type DatabaseConfig struct {
	// Driver is inferred from URL when empty.
	Driver       string `toml:"driver" env:"DB_DRIVER"`
	URL          string `toml:"url" env:"DATABASE_URL"`
	MaxOpenConns int    `toml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Load builds the configuration from defaults, an optional TOML file, an
// optional .env file and finally the process environment.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file failed: %w", err)
	}

	cfg := Default()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config failed: %w", err)
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = inferDriver(cfg.Database.URL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration. The JWT secret is deliberately
// empty so that a deployment cannot start without providing one.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:                   "todo-api",
			Env:                    "development",
			Host:                   "0.0.0.0",
			Port:                   3000,
			GinMode:                "release",
			LogLevel:               "info",
			LogFormat:              "text",
			ShutdownTimeoutSeconds: 10,
		},
		Auth: AuthConfig{
			JWTExpireHours: 30 * 24,
			BcryptCost:     10,
		},
		Database: DatabaseConfig{
			URL:          "root:@tcp(127.0.0.1:3306)/todo_api?parseTime=true&loc=UTC&charset=utf8mb4",
			MaxOpenConns: 50,
			MaxIdleConns: 10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.JWTExpireHours <= 0 {
		return fmt.Errorf("jwt_expire_hours must be positive, got %d", c.Auth.JWTExpireHours)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.App.Port)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.Auth.JWTExpireHours) * time.Hour
}

func (c *Config) ShutdownTimeout() time.Duration {
	if c.App.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.App.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development" || c.App.Env == "dev"
}

func inferDriver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}
	return DriverMySQL
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
