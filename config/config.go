// Package config loads process-wide settings once at startup.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devSecret = "dev-secret-key-change-in-production"

// Config holds everything the server needs. It is built once by Load and
// passed by pointer to whoever needs it.
type Config struct {
	Port               string
	Environment        string
	Store              string
	DatabaseURL        string
	SecretKey          string
	Algorithm          string
	AccessTokenTTL     time.Duration
	BcryptCost         int
	RedisAddr          string
	RedisPassword      string
	CORSAllowedOrigins []string
	LogLevel           string
}

// Load reads an optional .env file (or the given files) and then the
// environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("STORE", "mysql")
	v.SetDefault("DATABASE_URL", "root:password@tcp(localhost:3306)/notes_db")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := &Config{
		Port:               v.GetString("PORT"),
		Environment:        v.GetString("ENVIRONMENT"),
		Store:              v.GetString("STORE"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		SecretKey:          v.GetString("SECRET_KEY"),
		Algorithm:          strings.ToUpper(v.GetString("JWT_ALGORITHM")),
		AccessTokenTTL:     time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:           v.GetString("LOG_LEVEL"),
	}

	if cfg.SecretKey == "" && cfg.Environment == "development" {
		cfg.SecretKey = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that would make the server unsafe or
// unable to start.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Algorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	switch c.Store {
	case "mysql", "memory":
	default:
		return fmt.Errorf("unsupported STORE %q", c.Store)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
