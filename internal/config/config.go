// Package config loads service configuration from a .env file and
// POSTBASE_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       string `mapstructure:"port"`
	CORSOrigin string `mapstructure:"corsorigin"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	MigrationsPath string `mapstructure:"migrationspath"`
}

// StorageConfig holds MinIO settings. Empty Endpoint disables storage.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accesskeyid"`
	SecretAccessKey string `mapstructure:"secretaccesskey"`
	UseSSL          bool   `mapstructure:"usessl"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwtsecret"`
	TokenTTLMin int    `mapstructure:"tokenttlmin"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from .env (optional) and environment variables with
// the given prefix (e.g. "POSTBASE_"). POSTBASE_DATABASE_HOST maps to
// database.host.
func Load(prefix string, target any) error {
	v := viper.New()

	// .env is optional; environment variables below take precedence.
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()

	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]
		if strings.HasPrefix(key, prefixUpper) {
			propKey := strings.TrimPrefix(key, prefixUpper)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")
			v.Set(propKey, value)
		}
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// Default returns a Config with development defaults applied.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "3001", CORSOrigin: "http://localhost:5173"},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postbase", Name: "postbase", MigrationsPath: "migrations"},
		Auth:     AuthConfig{TokenTTLMin: 60 * 24},
		Log:      LogConfig{Level: "INFO", Format: "json"},
	}
}
