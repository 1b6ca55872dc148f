package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string        `yaml:"port"`
	DatabaseURL  string        `yaml:"database_url"`
	RedisURL     string        `yaml:"redis_url"`
	AppEnv       string        `yaml:"app_env"`
	BaseURL      string        `yaml:"base_url"`
	QRServiceURL string        `yaml:"qr_service_url"`
	QRTimeout    time.Duration `yaml:"qr_timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CodeLength   int           `yaml:"code_length"`
	MaxAttempts  int           `yaml:"max_attempts"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	CORSOrigin   string        `yaml:"cors_origin"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		DatabaseURL: "file:db.sqlite",
		AppEnv:      "local",
		BaseURL:     "http://localhost:8080",
		QRTimeout:   5 * time.Second,
		CacheTTL:    24 * time.Hour,
		CodeLength:  7,
		MaxAttempts: 3,
		LogLevel:    "info",
		LogFormat:   "text",
		CORSOrigin:  "*",
	}
}

// Load builds the config from defaults, an optional YAML file named by
// CONFIG_FILE, then environment variables (a .env file is read if present).
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.QRServiceURL = getEnv("QR_SERVICE_URL", cfg.QRServiceURL)
	cfg.QRTimeout = getEnvDuration("QR_TIMEOUT", cfg.QRTimeout)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.CodeLength = getEnvInt("CODE_LENGTH", cfg.CodeLength)
	cfg.MaxAttempts = getEnvInt("MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", cfg.CORSOrigin)

	if cfg.CodeLength <= 0 {
		return nil, fmt.Errorf("code length must be positive, got %d", cfg.CodeLength)
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
