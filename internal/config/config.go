package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

type Config struct {
	App        AppConfig
	Gateway    GatewayConfig
	JWT        JWTConfig
	Session    SessionConfig
	Database   DatabaseConfig
	Attendance AttendanceConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name        string
	Version     string
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// GatewayConfig points at the spreadsheet-backed HTTP gateway
type GatewayConfig struct {
	URL     string
	Timeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

type SessionConfig struct {
	Store       string
	TTL         time.Duration
	RememberTTL time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AttendanceConfig struct {
	Visibility           string
	SheetIdleTTL         time.Duration
	RosterCacheTTL       time.Duration
	HousekeepingInterval time.Duration
}

// Load reads configuration from the environment, after loading .env when present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using environment only")
	}

	config, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FromEnv builds a Config from environment variables without validating it
func FromEnv() (*Config, error) {
	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:        getEnv("APP_NAME", "attendance-gateway"),
		Version:     getEnv("APP_VERSION", "dev"),
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.CORSOrigins) == 0 {
		config.App.CORSOrigins = []string{"http://localhost:3000"}
	}

	// Gateway configuration
	gatewayTimeout, err := getEnvDuration("GATEWAY_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	config.Gateway = GatewayConfig{
		URL:     getEnv("GATEWAY_URL", ""),
		Timeout: gatewayTimeout,
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Session configuration
	sessionTTL, err := getEnvDuration("SESSION_TTL", "12h")
	if err != nil {
		return nil, err
	}
	rememberTTL, err := getEnvDuration("SESSION_REMEMBER_TTL", "720h")
	if err != nil {
		return nil, err
	}

	config.Session = SessionConfig{
		Store:       strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		TTL:         sessionTTL,
		RememberTTL: rememberTTL,
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_gateway"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Attendance configuration
	idleTTL, err := getEnvDuration("ATTENDANCE_SHEET_IDLE_TTL", "2h")
	if err != nil {
		return nil, err
	}
	rosterTTL, err := getEnvDuration("ROSTER_CACHE_TTL", "1m")
	if err != nil {
		return nil, err
	}
	housekeeping, err := getEnvDuration("HOUSEKEEPING_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	config.Attendance = AttendanceConfig{
		Visibility:           strings.ToLower(getEnv("ATTENDANCE_VISIBILITY", "all")),
		SheetIdleTTL:         idleTTL,
		RosterCacheTTL:       rosterTTL,
		HousekeepingInterval: housekeeping,
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Gateway.URL == "" {
		return fmt.Errorf("GATEWAY_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when SESSION_STORE is postgres")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}
	switch c.Attendance.Visibility {
	case "", "all", "friday-or-required":
	default:
		return fmt.Errorf("unknown ATTENDANCE_VISIBILITY %q", c.Attendance.Visibility)
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return fmt.Errorf("session TTLs must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
