package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for spincoach-engine.
// Configuration comes from config.yaml with environment variable overrides;
// secrets (PGPASSWORD, CREDENTIALS_KEY, JWT_SECRET) are env-only.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Scoring pipeline configuration
	Scoring ScoringConfig `yaml:"scoring"`

	// Evaluation orchestration configuration
	Evaluation EvaluationConfig `yaml:"evaluation"`

	// Encryption key for organization API keys. 32 bytes base64 encoded
	// (openssl rand -base64 32) or any passphrase. Server refuses to start
	// without it.
	CredentialsKey string `yaml:"-" env:"CREDENTIALS_KEY"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"spincoach"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"spincoach_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// AuthConfig holds JWT authentication configuration.
type AuthConfig struct {
	// JWTSecret signs access tokens (HS256). Secret - env only.
	JWTSecret string `yaml:"-" env:"JWT_SECRET"`
	// TokenTTLMinutes is the access token lifetime.
	TokenTTLMinutes int `yaml:"token_ttl_minutes" env:"TOKEN_TTL_MINUTES" env-default:"60"`
}

// ScoringConfig holds defaults for the scoring pipeline.
type ScoringConfig struct {
	// DefaultModel is used when a credential carries no default model.
	DefaultModel string `yaml:"default_model" env:"MODEL_NAME" env-default:"gpt-4o-mini"`
	// OpenAIBaseURL overrides the OpenAI endpoint (e.g. a compatible proxy).
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	// GoogleBaseURL is Gemini's OpenAI-compatible endpoint.
	GoogleBaseURL string `yaml:"google_base_url" env:"GOOGLE_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/openai"`
}

// EvaluationConfig bounds evaluation run parallelism.
type EvaluationConfig struct {
	// MaxConcurrent caps in-flight LLM calls per evaluation run.
	MaxConcurrent int `yaml:"max_concurrent" env:"EVAL_MAX_CONCURRENT" env-default:"4"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time. A missing
// config.yaml is tolerated; env defaults then apply.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if cfg.CredentialsKey == "" {
		return nil, fmt.Errorf("CREDENTIALS_KEY is required for credential encryption")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required for token signing")
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
