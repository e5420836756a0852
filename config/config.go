package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	DBHost         string        `env:"DB_HOST" envDefault:"db"`
	DBPort         int           `env:"DB_PORT" envDefault:"5432"`
	DBUser         string        `env:"DB_USER,required"`
	DBPassword     string        `env:"DB_PASSWORD,required"`
	DBName         string        `env:"DB_NAME,required"`
	BodyLimitMB    int           `env:"BODY_LIMIT_MB" envDefault:"4"`
	RateLimitMax   int           `env:"RATE_LIMIT_MAX" envDefault:"60"`
	RateLimitWin   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}
