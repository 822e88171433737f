// Package config reads the console settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"storefront/internal/validation"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const devSessionSecret = "storefront_dev_secret"

// Config holds every setting of the console.
type Config struct {
	AppPort            string        `json:"APP_PORT" validate:"required"`
	BackendBaseURL     string        `json:"BACKEND_BASE_URL" validate:"required,url"`
	RequestTimeout     time.Duration `json:"REQUEST_TIMEOUT" validate:"gte=0"`
	StoreDriver        string        `json:"STORE_DRIVER" validate:"oneof=sqlite postgres memory"`
	StorePath          string        `json:"STORE_PATH"`
	DatabaseDSN        string        `json:"DATABASE_DSN" validate:"required_if=StoreDriver postgres"`
	SessionSecret      string        `json:"SESSION_SECRET" validate:"required"`
	SessionTTL         time.Duration `json:"SESSION_TTL" validate:"gt=0"`
	RabbitMQURL        string        `json:"RABBITMQ_URL" validate:"omitempty,url"`
	NotifyDeepLinkBase string        `json:"NOTIFY_DEEPLINK_BASE" validate:"required,url"`
	CORSOrigins        string        `json:"CORS_ORIGINS"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:3000/api")
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("STORE_PATH", "storefront.db")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("NOTIFY_DEEPLINK_BASE", "https://wa.me/")
	v.SetDefault("CORS_ORIGINS", "*")
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		BackendBaseURL:     v.GetString("BACKEND_BASE_URL"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
		StoreDriver:        v.GetString("STORE_DRIVER"),
		StorePath:          v.GetString("STORE_PATH"),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		NotifyDeepLinkBase: v.GetString("NOTIFY_DEEPLINK_BASE"),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
	}
	if cfg.DatabaseDSN != "" && cfg.StoreDriver == "sqlite" {
		cfg.StoreDriver = "postgres"
	}
	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.SessionSecret == devSessionSecret {
		log.Warn("SESSION_SECRET is not set, using the development secret")
	}
	return cfg, nil
}
