package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "github.com/Steeve208/ReeskCapital-web-sub006/libs/config"
)

// Config defines mining-service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"MINING_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"MINING_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"MINING_REDIS_ADDR"`
		Password string `yaml:"password" env:"MINING_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"MINING_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"MINING_REDIS_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret   string `yaml:"jwtSecret" env:"AUTH_JWT_SECRET"`
		TokenTTLMin int    `yaml:"tokenTtlMinutes" env:"AUTH_TOKEN_TTL_MIN"`
	} `yaml:"auth"`
	Mining struct {
		RatePerSec        float64 `yaml:"ratePerSec" env:"RATE_RSC_PER_SEC"`
		SessionTimeoutSec int     `yaml:"sessionTimeoutSec" env:"SESSION_TIMEOUT_SEC"`
		MaxConcurrent     int     `yaml:"maxConcurrentSessions" env:"MAX_CONCURRENT_SESSIONS"`
	} `yaml:"mining"`
}

// Load reads configuration via the shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8084"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 86400
	cfg.Auth.TokenTTLMin = 60
	cfg.Mining.RatePerSec = 0.002
	cfg.Mining.SessionTimeoutSec = 60
	cfg.Mining.MaxConcurrent = 1

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if cfg.Mining.RatePerSec < 0 {
		return nil, errors.New("config: rate must not be negative")
	}
	if cfg.Mining.SessionTimeoutSec <= 0 {
		return nil, errors.New("config: session timeout must be positive")
	}
	if cfg.Mining.MaxConcurrent <= 0 {
		return nil, errors.New("config: max concurrent sessions must be positive")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SessionTimeout returns the accrual clamp ceiling as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Mining.SessionTimeoutSec) * time.Second
}

// TokenTTL returns JWT lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLMin <= 0 {
		return time.Hour
	}
	return time.Duration(c.Auth.TokenTTLMin) * time.Minute
}

// ActiveSessionTTL returns the redis cache TTL.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}
