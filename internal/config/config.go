package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config maps one field per environment variable.
type Config struct {
	Port          string `mapstructure:"PORT"`
	AllowedOrigin string `mapstructure:"ALLOWED_ORIGIN"`
	ShopName      string `mapstructure:"SHOP_NAME"`
	Timezone      string `mapstructure:"TIMEZONE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	SeedDemoData bool   `mapstructure:"SEED_DEMO_DATA"`

	RedisAddr             string `mapstructure:"REDIS_ADDR"`
	RedisPassword         string `mapstructure:"REDIS_PASSWORD"`
	RedisDB               int    `mapstructure:"REDIS_DB"`
	ReportCacheTTLSeconds int    `mapstructure:"REPORT_CACHE_TTL_SECONDS"`

	AuthSecret            string `mapstructure:"AUTH_SECRET"`
	AccessTokenTTLMinutes int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	// Only used to provision a ledger that has no passwords yet.
	LoginPassword      string `mapstructure:"LOGIN_PASSWORD"`
	OperationsPassword string `mapstructure:"OPERATIONS_PASSWORD"`

	BackupCompress    bool   `mapstructure:"BACKUP_COMPRESS"`
	BackupS3Bucket    string `mapstructure:"BACKUP_S3_BUCKET"`
	BackupS3Endpoint  string `mapstructure:"BACKUP_S3_ENDPOINT"`
	BackupS3Region    string `mapstructure:"BACKUP_S3_REGION"`
	BackupS3AccessKey string `mapstructure:"BACKUP_S3_ACCESS_KEY"`
	BackupS3SecretKey string `mapstructure:"BACKUP_S3_SECRET_KEY"`
	BackupS3Prefix    string `mapstructure:"BACKUP_S3_PREFIX"`
}

// defaults lists every key; viper only unmarshals environment values for
// keys it already knows about.
var defaults = map[string]any{
	"PORT":                     "8080",
	"ALLOWED_ORIGIN":           "http://127.0.0.1:3000",
	"SHOP_NAME":                "Bakery",
	"TIMEZONE":                 "Local",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
	"DATABASE_URL":             "",
	"SEED_DEMO_DATA":           false,
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"REPORT_CACHE_TTL_SECONDS": 300,
	"AUTH_SECRET":              "",
	"ACCESS_TOKEN_TTL_MINUTES": 720,
	"LOGIN_PASSWORD":           "",
	"OPERATIONS_PASSWORD":      "",
	"BACKUP_COMPRESS":          true,
	"BACKUP_S3_BUCKET":         "",
	"BACKUP_S3_ENDPOINT":       "",
	"BACKUP_S3_REGION":         "us-east-1",
	"BACKUP_S3_ACCESS_KEY":     "",
	"BACKUP_S3_SECRET_KEY":     "",
	"BACKUP_S3_PREFIX":         "bakery-ledger",
}

// Load reads configuration from environment variables and an optional .env
// file in the working directory.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// a missing .env is fine
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	cfg.LoginPassword = strings.TrimSpace(cfg.LoginPassword)
	cfg.OperationsPassword = strings.TrimSpace(cfg.OperationsPassword)
	if cfg.ReportCacheTTLSeconds < 1 {
		cfg.ReportCacheTTLSeconds = 300
	}
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 720
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

// Location resolves TIMEZONE, which decides where calendar days start.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}
