package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DB        DBConfig
	JWT       JWTConfig
	Server    ServerConfig
	Dashboard DashboardConfig
}

type DBConfig struct {
	// Driver selects the gorm dialect: "postgres" or "sqlite".
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the database file when Driver is "sqlite".
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port     string
	Timezone string
}

type DashboardConfig struct {
	UpcomingTaskLimit int
}

func Load() *Config {
	return &Config{
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "planhive"),
			Password:        getEnv("DB_PASSWORD", "planhive_secret"),
			Name:            getEnv("DB_NAME", "planhive"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			Path:            getEnv("DB_PATH", "planhive.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port:     getEnv("SERVER_PORT", "8080"),
			Timezone: getEnv("SERVER_TIMEZONE", "Europe/Amsterdam"),
		},
		Dashboard: DashboardConfig{
			UpcomingTaskLimit: getEnvAsInt("DASHBOARD_UPCOMING_TASK_LIMIT", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
