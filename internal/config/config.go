package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort     string        `yaml:"server_port"`
	DatabaseType   string        `yaml:"database_type"` // sqlite (default), postgres or mysql
	DatabaseURL    string        `yaml:"database_url"`  // DSN for postgres/mysql
	DatabasePath   string        `yaml:"database_path"` // File path for sqlite
	MigrationsPath string        `yaml:"migrations_path"`
	TokenSecret    string        `yaml:"token_secret"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	DraftDebounce  time.Duration `yaml:"draft_debounce"`
	AWSRegion      string        `yaml:"aws_region"`
	SESFromEmail   string        `yaml:"ses_from_email"`
	SESFromName    string        `yaml:"ses_from_name"`
	AppBaseURL     string        `yaml:"app_base_url"`
	SeedAuthorName string        `yaml:"seed_author_name"`
	SeedAuthorMail string        `yaml:"seed_author_email"`
	SeedAuthorCode string        `yaml:"seed_author_code"`
	Debug          bool          `yaml:"debug"`
}

// Load reads configuration from environment variables with sensible defaults.
// When CONFIG_PATH points at a YAML file, its values are applied first and
// environment variables override them.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:     "8080",
		DatabaseType:   "sqlite",
		DatabasePath:   "./lyricclash.db",
		MigrationsPath: "./migrations",
		TokenSecret:    "dev-secret-change-me",
		TokenDuration:  24 * time.Hour,
		DraftDebounce:  2 * time.Second,
		AWSRegion:      "eu-west-1",
		SESFromName:    "LyricClash",
		AppBaseURL:     "http://localhost:8080",
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg.ServerPort, "PORT")
	applyEnv(&cfg.DatabaseType, "DB_TYPE")
	applyEnv(&cfg.DatabaseURL, "DB_URL")
	applyEnv(&cfg.DatabasePath, "DB_PATH")
	applyEnv(&cfg.MigrationsPath, "MIGRATIONS_PATH")
	applyEnv(&cfg.TokenSecret, "TOKEN_SECRET")
	applyEnvDuration(&cfg.TokenDuration, "TOKEN_DURATION")
	applyEnvDuration(&cfg.DraftDebounce, "DRAFT_DEBOUNCE")
	applyEnv(&cfg.AWSRegion, "AWS_REGION")
	applyEnv(&cfg.SESFromEmail, "SES_FROM_EMAIL")
	applyEnv(&cfg.SESFromName, "SES_FROM_NAME")
	applyEnv(&cfg.AppBaseURL, "APP_BASE_URL")
	applyEnv(&cfg.SeedAuthorName, "SEED_AUTHOR_NAME")
	applyEnv(&cfg.SeedAuthorMail, "SEED_AUTHOR_EMAIL")
	applyEnv(&cfg.SeedAuthorCode, "SEED_AUTHOR_CODE")
	if value := os.Getenv("DEBUG"); value != "" {
		cfg.Debug, _ = strconv.ParseBool(value)
	}

	return cfg, nil
}

// applyEnv overrides a config value when the environment variable is set
func applyEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

// applyEnvDuration overrides a duration value when the environment variable
// holds a valid duration string
func applyEnvDuration(target *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			*target = parsed
		}
	}
}
