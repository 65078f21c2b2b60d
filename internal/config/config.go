package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config centraliza la configuración del cliente.
type Config struct {
	APIBaseURL          string `env:"API_BASE_URL" envDefault:"http://localhost:3000/api"`
	APITimeoutSeconds   int    `env:"API_TIMEOUT_SECONDS" envDefault:"15"`
	SessionBackend      string `env:"SESSION_BACKEND" envDefault:"file"`
	SessionFile         string `env:"SESSION_FILE" envDefault:".tourism/session.json"`
	SessionNamespace    string `env:"SESSION_NAMESPACE" envDefault:"default"`
	SessionRemoteLogout bool   `env:"SESSION_REMOTE_LOGOUT" envDefault:"false"`
	RedisAddr           string `env:"REDIS_ADDR"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix         string `env:"REDIS_PREFIX" envDefault:"tourism:session:"`
	DatabaseURL         string `env:"DATABASE_URL"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment      bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa que el backend de sesion tenga lo que necesita.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	switch c.SessionBackend {
	case BackendFile:
		if strings.TrimSpace(c.SessionFile) == "" {
			return fmt.Errorf("SESSION_FILE is required for backend %q", c.SessionBackend)
		}
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR is required for backend %q", c.SessionBackend)
		}
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for backend %q", c.SessionBackend)
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}

func (c *Config) APITimeout() time.Duration {
	if c.APITimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.APITimeoutSeconds) * time.Second
}
