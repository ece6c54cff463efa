package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting of the API process.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	CORS     CORSConfig
	RabbitMQ RabbitMQConfig
	Seed     SeedConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	URL          string // postgres DSN; empty selects sqlite
	SQLitePath   string
	MaxOpenConns int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// TTL returns the token lifetime.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type UploadConfig struct {
	Dir        string
	PublicPath string
	MaxSizeMB  int
}

// MaxBytes returns the per-file upload limit in bytes.
func (c UploadConfig) MaxBytes() int64 {
	return int64(c.MaxSizeMB) << 20
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RabbitMQConfig struct {
	URL      string // empty disables event publication
	Exchange string
	Queue    string
}

// Account is a demo login created at first boot.
type Account struct {
	Email    string
	Password string
}

type SeedConfig struct {
	Enabled bool
	Admin   Account
	Advisor Account
	Farmer  Account
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "smartfarm")
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("SQLITE_PATH", "smartfarm.sqlite")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("JWT_EXPIRY_HOURS", 24*30)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_PUBLIC_PATH", "/uploads")
	v.SetDefault("UPLOAD_MAX_MB", 5)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("RABBITMQ_EXCHANGE", "smartfarm.events")
	v.SetDefault("RABBITMQ_QUEUE", "smartfarm_audit")
	v.SetDefault("SEED_ENABLED", true)
	v.SetDefault("ADMIN_EMAIL", "admin@test.com")
	v.SetDefault("ADMIN_PASSWORD", "password")
	v.SetDefault("ADVISOR_EMAIL", "advisor@test.com")
	v.SetDefault("ADVISOR_PASSWORD", "password")
	v.SetDefault("FARMER_EMAIL", "farmer@test.com")
	v.SetDefault("FARMER_PASSWORD", "password")

	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("APP_PORT"),
			Debug:   v.GetBool("APP_DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("DATABASE_URL"),
			SQLitePath:   v.GetString("SQLITE_PATH"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Upload: UploadConfig{
			Dir:        v.GetString("UPLOAD_DIR"),
			PublicPath: strings.TrimRight(v.GetString("UPLOAD_PUBLIC_PATH"), "/"),
			MaxSizeMB:  v.GetInt("UPLOAD_MAX_MB"),
		},
		CORS: CORSConfig{
			AllowedOrigins: origins(v.GetString("CORS_ALLOWED_ORIGINS"), v.GetString("FRONTEND_URL")),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
		Seed: SeedConfig{
			Enabled: v.GetBool("SEED_ENABLED"),
			Admin:   Account{Email: v.GetString("ADMIN_EMAIL"), Password: v.GetString("ADMIN_PASSWORD")},
			Advisor: Account{Email: v.GetString("ADVISOR_EMAIL"), Password: v.GetString("ADVISOR_PASSWORD")},
			Farmer:  Account{Email: v.GetString("FARMER_EMAIL"), Password: v.GetString("FARMER_PASSWORD")},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_MB must be positive, got %d", c.Upload.MaxSizeMB)
	}
	return nil
}

// origins splits a comma list and appends extra, skipping blanks and duplicates.
func origins(list, extra string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range append(strings.Split(list, ","), extra) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}
