// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database     DatabaseConfig
	Redis        RedisConfig
	Server       ServerConfig
	Logging      LoggingConfig
	CORS         CORSConfig
	JWT          JWTConfig
	RoleCache    RoleCacheConfig
	Bootstrap    BootstrapConfig
	PublicOrigin string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds the settings used to verify identity tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// RoleCacheConfig holds role cache settings
type RoleCacheConfig struct {
	TTL time.Duration
}

// BootstrapConfig holds the records written once at startup
type BootstrapConfig struct {
	// SuperAdminIDs are provisioned as super admins before the server starts
	SuperAdminIDs []string
}

// Default returns the values used for every optional variable that is not set
func Default() Config {
	return Config{
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RoleCache: RoleCacheConfig{
			TTL: 5 * time.Minute,
		},
		PublicOrigin: "http://localhost:5173",
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = required("DB_HOST"); err != nil {
		return nil, err
	}
	dbPortStr, err := required("DB_PORT")
	if err != nil {
		return nil, err
	}
	if cfg.Database.Port, err = strconv.Atoi(dbPortStr); err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	if cfg.Database.User, err = required("DB_USER"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = required("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.DBName, err = required("DB_NAME"); err != nil {
		return nil, err
	}

	// JWT configuration
	if cfg.JWT.Secret, err = required("JWT_SECRET"); err != nil {
		return nil, err
	}
	cfg.JWT.Issuer = os.Getenv("JWT_ISSUER")

	// Server configuration
	if cfg.Server.Port, err = optionalInt("SERVER_PORT"); err != nil {
		return nil, err
	}

	// Redis configuration
	cfg.Redis.Host = os.Getenv("REDIS_HOST")
	if cfg.Redis.Port, err = optionalInt("REDIS_PORT"); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = optionalInt("REDIS_DB"); err != nil {
		return nil, err
	}

	cfg.Logging.Level = os.Getenv("LOG_LEVEL")
	cfg.CORS.AllowedOrigins = parseList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.Bootstrap.SuperAdminIDs = parseList(os.Getenv("SUPER_ADMIN_IDS"))
	cfg.PublicOrigin = strings.TrimRight(os.Getenv("PUBLIC_ORIGIN"), "/")

	if ttl := os.Getenv("ROLE_CACHE_TTL"); ttl != "" {
		if cfg.RoleCache.TTL, err = time.ParseDuration(ttl); err != nil {
			return nil, fmt.Errorf("invalid ROLE_CACHE_TTL: %w", err)
		}
		if cfg.RoleCache.TTL <= 0 {
			return nil, fmt.Errorf("invalid ROLE_CACHE_TTL: must be positive")
		}
	}

	// Fill every variable left unset
	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	return cfg, nil
}

// DSN returns the database connection string
//
// clientFoundRows makes UPDATE report matched rows, so an update that writes the stored
// values again is not mistaken for a missing row.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func required(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func optionalInt(key string) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// parseList splits a comma separated list, dropping empty entries
func parseList(value string) []string {
	if value == "" {
		return nil
	}
	entries := strings.Split(value, ",")
	parsed := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			parsed = append(parsed, entry)
		}
	}
	if len(parsed) == 0 {
		return nil
	}
	return parsed
}
