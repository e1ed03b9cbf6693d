package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
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

	Token struct {
		Expiration      string `yaml:"expiration" env:"TOKEN_EXPIRATION"`
		CleanupInterval string `yaml:"cleanup_interval" env:"TOKEN_CLEANUP_INTERVAL"`
	} `yaml:"token"`

	Storage struct {
		Driver    string `yaml:"driver" env:"STORAGE_DRIVER"` // local or s3
		LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`

		S3 struct {
			Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
			Region    string `yaml:"region" env:"S3_REGION"`
			AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
			SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
			Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
			UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file, when present, is loaded into the environment first.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

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

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "studauth"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Token.Expiration = "720h"
	config.Token.CleanupInterval = "1h"

	config.Storage.Driver = "local"
	config.Storage.LocalPath = "uploads"
	config.Storage.S3.Region = "us-east-1"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if _, err := time.ParseDuration(config.Token.Expiration); err != nil {
		return fmt.Errorf("invalid token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.Token.CleanupInterval); err != nil {
		return fmt.Errorf("invalid token cleanup interval format: %w", err)
	}

	switch config.Storage.Driver {
	case "local":
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("local storage path is required")
		}
	case "s3":
		if config.Storage.S3.Endpoint == "" || config.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", config.Storage.Driver)
	}

	return nil
}

// TokenExpiration returns the parsed token TTL.
func (c *Config) TokenExpiration() time.Duration {
	d, _ := time.ParseDuration(c.Token.Expiration)
	return d
}

// TokenCleanupInterval returns the parsed cleanup sweep interval.
func (c *Config) TokenCleanupInterval() time.Duration {
	d, _ := time.ParseDuration(c.Token.CleanupInterval)
	return d
}

// GetPostgresConnectionString returns the postgres connection string
func (c *Config) GetPostgresConnectionString() string {
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
