// Package config loads application settings from the environment.
// An optional .env file is read first; real environment variables win.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Addr string `env:"SERVER_ADDR,default=:8080"`
	// AllowedOrigins is a semicolon-separated list; "*" allows everything.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*"`
}

type DatabaseConfig struct {
	DSN string `env:"DATABASE_DSN,required"`
}

// JWTConfig holds the token issuer settings. Secret key, issuer and
// audience are required: a missing value fails startup, it never becomes
// a runtime error.
type JWTConfig struct {
	SecretKey    string `env:"JWT_SECRET_KEY,required"`
	Issuer       string `env:"JWT_ISSUER,required"`
	Audience     string `env:"JWT_AUDIENCE,required"`
	DurationDays int    `env:"JWT_DURATION_DAYS,default=7"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL,default=info"`
}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
}

// Load reads an optional .env file and decodes the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
