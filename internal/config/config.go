package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

type Config struct {
	Port     string // PORT (default "8080")
	AppToken string // APP_TOKEN (shared secret; empty = all auth fails)

	Backend     string // STORAGE_BACKEND (default "file")
	DataFile    string // DATA_FILE (file backend, default "activities.json")
	DBPath      string // DB_PATH (sqlite backend, default "activities.db")
	DatabaseURL string // DATABASE_URL (postgres backend, required when selected)
	MongoURI    string // MONGO_URI (mongo backend, required when selected)
	MongoDB     string // MONGO_DB (default "dexo")

	// Timezone is the deployment's fixed zone used for date bucketing.
	Timezone *time.Location // APP_TIMEZONE (IANA name, default UTC)
}

// LoadConfig reads configuration from the environment, loading a .env file
// first if one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		AppToken:    os.Getenv("APP_TOKEN"),
		Backend:     envOrDefault("STORAGE_BACKEND", BackendFile),
		DataFile:    envOrDefault("DATA_FILE", "activities.json"),
		DBPath:      envOrDefault("DB_PATH", "activities.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDB:     envOrDefault("MONGO_DB", "dexo"),
	}

	tz := envOrDefault("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	switch cfg.Backend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the mongo backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Backend)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
