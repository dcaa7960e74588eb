package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Recents store backends selectable via RECENTS_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Recents   RecentsConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Assets    AssetsConfig
	Sessions  SessionsConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RecentsConfig struct {
	Backend    string
	MaxRecents int
	SQLitePath string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AssetsConfig struct {
	Origin   string
	Manifest string
	Prefetch bool
}

type SessionsConfig struct {
	TTL       time.Duration
	JWTSecret string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("RECENTS_BACKEND", BackendSQLite)
	viper.SetDefault("RECENTS_MAX", 3)
	viper.SetDefault("RECENTS_SQLITE_PATH", "folioview.db")
	viper.SetDefault("MONGODB_DATABASE", "folioview")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("ASSETS_MANIFEST", "/manifest.json")
	viper.SetDefault("ASSETS_PREFETCH", true)
	viper.SetDefault("SESSION_TTL_MINUTES", 1440)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 50)
	viper.SetDefault("RATE_LIMIT_BURST", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Recents: RecentsConfig{
			Backend:    viper.GetString("RECENTS_BACKEND"),
			MaxRecents: viper.GetInt("RECENTS_MAX"),
			SQLitePath: viper.GetString("RECENTS_SQLITE_PATH"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Assets: AssetsConfig{
			Origin:   viper.GetString("ASSETS_ORIGIN"),
			Manifest: viper.GetString("ASSETS_MANIFEST"),
			Prefetch: viper.GetBool("ASSETS_PREFETCH"),
		},
		Sessions: SessionsConfig{
			TTL:       time.Duration(viper.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	switch cfg.Recents.Backend {
	case BackendMemory, BackendSQLite, BackendMongo:
	default:
		return nil, fmt.Errorf("unknown recents backend %q", cfg.Recents.Backend)
	}
	if cfg.Recents.Backend == BackendMongo && cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("recents backend %q requires MONGODB_URI", BackendMongo)
	}

	// Basic validation
	if cfg.Sessions.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set; set a secure value in production")
	}

	return cfg, nil
}
