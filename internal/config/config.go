package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds the service settings.
type Config struct {
	AppPort         string
	ServiceName     string
	DBDriver        string
	DatabaseDSN     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	LogPretty       bool
	TracingEnabled  bool
	JaegerEndpoint  string
	ShutdownTimeout time.Duration
}

// Load reads configuration from an optional .env file and the environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is fine; the environment alone is enough.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("SERVICE_NAME", "fashionstore")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("JAEGER_ENDPOINT", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		ServiceName:     v.GetString("SERVICE_NAME"),
		DBDriver:        v.GetString("DB_DRIVER"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogPretty:       v.GetBool("LOG_PRETTY"),
		TracingEnabled:  v.GetBool("TRACING_ENABLED"),
		JaegerEndpoint:  v.GetString("JAEGER_ENDPOINT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver != DriverMemory && cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required for driver %s", cfg.DBDriver)
	}
	return cfg, nil
}
