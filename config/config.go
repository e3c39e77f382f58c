package config

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// Config holds all configuration values.
type Config struct {
	AppPort   string `mapstructure:"APP_PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Database configuration.
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DBDSN       string `mapstructure:"DB_DSN"`
	DBTxRetries int    `mapstructure:"DB_TX_RETRIES"`
	DBMaxOpen   int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdle   int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	AutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	// Redis configuration. Empty address keeps locks in process and
	// disables alerts.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	LockTTLMillis int    `mapstructure:"LOCK_TTL_MS"`
	AlertsEnabled bool   `mapstructure:"ALERTS_ENABLED"`

	RateLimitPerSec float64 `mapstructure:"RATE_LIMIT_PER_SEC"`
	RateLimitBurst  int     `mapstructure:"RATE_LIMIT_BURST"`
	AllowedOrigin   string  `mapstructure:"CORS_ALLOWED_ORIGIN"`
}

var defaults = map[string]interface{}{
	"APP_PORT":            "8080",
	"GIN_MODE":            "debug",
	"LOG_LEVEL":           "info",
	"JWT_SECRET":          "",
	"DB_DRIVER":           "sqlite",
	"DB_DSN":              "fieldservice.db",
	"DB_TX_RETRIES":       3,
	"DB_MAX_OPEN_CONNS":   25,
	"DB_MAX_IDLE_CONNS":   5,
	"DB_AUTO_MIGRATE":     true,
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"LOCK_TTL_MS":         10000,
	"ALERTS_ENABLED":      false,
	"RATE_LIMIT_PER_SEC":  20.0,
	"RATE_LIMIT_BURST":    40,
	"CORS_ALLOWED_ORIGIN": "*",
}

// Load reads config.yaml from the working directory or ./config, then
// environment variables, on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		utils.InfoLogger.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set when GIN_MODE is release")

// Validate menolak konfigurasi yang tidak aman untuk production.
func (c *Config) Validate() error {
	if c.GinMode == gin.ReleaseMode && strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
