// Package config loads server settings.
//
// Values come from, in increasing priority: built-in defaults, an
// optional YAML file, and environment variables (a .env file in the
// working directory is loaded into the environment first).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Board  BoardConfig  `yaml:"board"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens.
	JWTSecret string `yaml:"jwt_secret"`
	// TokenTTL bounds how long a session token is accepted even if the
	// user never logs out.
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type BoardConfig struct {
	// QueueSize is the run loop's task buffer.
	QueueSize int `yaml:"queue_size"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Auth: AuthConfig{
			JWTSecret: "flockr-secret-key-change-in-production",
			TokenTTL:  7 * 24 * time.Hour,
		},
		Board: BoardConfig{QueueSize: 64},
	}
}

// Load builds a Config from path (may be empty) and the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("FLOCKR_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Board.QueueSize <= 0 {
		return fmt.Errorf("board.queue_size must be positive")
	}
	return nil
}
