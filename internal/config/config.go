package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// Config configures the API server.
type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	Storage  string `env:"STORAGE" env-default:"postgres"`
	HTTP     HTTPConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	CORS     CORSConfig
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage: %s", c.Storage)
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("jwt token ttl must be positive")
	}
	return nil
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE" env-default:"tasks"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Issuer          string        `env:"JWT_ISSUER" env-default:"go-tasks"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"1h"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"168h"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL      string        `env:"TASKS_API_URL" env-default:"http://localhost:8000"`
	TokenFile   string        `env:"TASKS_TOKEN_FILE"`
	LogFile     string        `env:"TASKS_LOG_FILE"`
	LogLevel    string        `env:"TASKS_LOG_LEVEL" env-default:"info"`
	HTTPTimeout time.Duration `env:"TASKS_HTTP_TIMEOUT" env-default:"30s"`
}

// TokenFilePath returns TokenFile or, if unset, tokens.json in the user's
// config directory.
func (c *ClientConfig) TokenFilePath() (string, error) {
	if c.TokenFile != "" {
		return c.TokenFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "go-tasks", "tokens.json"), nil
}

// LogFilePath returns LogFile or, if unset, client.log next to the token file.
func (c *ClientConfig) LogFilePath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	tokenFile, err := c.TokenFilePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(tokenFile), "client.log"), nil
}
