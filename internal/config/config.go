package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"PORT"`
		Mode         string `yaml:"mode" env:"ENVIRONMENT"`
		StoragePath  string `yaml:"storage_path" env:"UPLOAD_DIR"`
		MaxUploadMB  int    `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
		AutoInitDB   bool   `yaml:"auto_init_db" env:"AUTO_INIT_DB"`
		MigrationDir string `yaml:"migration_dir" env:"MIGRATION_DIR"`
	} `yaml:"server"`

	Database struct {
		URL             string `yaml:"url" env:"DATABASE_URL"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	JWT struct {
		Secret                string `yaml:"secret" env:"SECRET_KEY"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	OTP struct {
		TTL string `yaml:"ttl" env:"OTP_TTL"`
	} `yaml:"otp"`

	Mail struct {
		Server   string `yaml:"server" env:"MAIL_SERVER"`
		Port     int    `yaml:"port" env:"MAIL_PORT"`
		Username string `yaml:"username" env:"MAIL_USERNAME"`
		Password string `yaml:"password" env:"MAIL_PASSWORD"`
		UseTLS   bool   `yaml:"use_tls" env:"MAIL_USE_TLS"`
		From     string `yaml:"from" env:"MAIL_FROM"`
	} `yaml:"mail"`

	Admin struct {
		Email    string `yaml:"email" env:"DEFAULT_ADMIN_EMAIL"`
		Password string `yaml:"password" env:"DEFAULT_ADMIN_PASSWORD"`
	} `yaml:"admin"`

	Import struct {
		PDFToText string `yaml:"pdftotext" env:"PDFTOTEXT_BIN"`
	} `yaml:"import"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from an optional .env file, a YAML file and
// environment variables, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"
	config.Server.MaxUploadMB = 20
	config.Server.AutoInitDB = true
	config.Server.MigrationDir = "migrations"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "placement"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.Redis.Addr = "localhost:6379"

	config.JWT.Secret = "dev-secret-key-change-me"
	config.JWT.AccessTokenExpiration = "12h"
	config.JWT.Issuer = "placement-cell"

	config.OTP.TTL = "10m"

	config.Mail.Port = 587
	config.Mail.UseTLS = true
	config.Mail.From = "no-reply@placement-portal.local"

	config.Import.PDFToText = "pdftotext"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database url or host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.IsProduction() && config.JWT.Secret == "dev-secret-key-change-me" {
		return fmt.Errorf("SECRET_KEY must be set in production")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.OTP.TTL); err != nil {
		return fmt.Errorf("invalid OTP TTL format: %w", err)
	}
	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns the postgres connection string.
// DATABASE_URL wins over discrete fields; legacy postgres:// URLs are
// rewritten to postgresql://.
func (c *Config) GetPostgresConnectionString() string {
	if raw := c.Database.URL; raw != "" {
		if strings.HasPrefix(raw, "postgres://") {
			raw = "postgresql://" + strings.TrimPrefix(raw, "postgres://")
		}
		return raw
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// MailConfigured reports whether an SMTP server is set
func (c *Config) MailConfigured() bool {
	return c.Mail.Server != ""
}
