package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings read from the environment.
type Config struct {
	ServerPort     string
	MongoURI       string
	MongoDBName    string
	JWTSecret      string
	JWTTTL         time.Duration
	RedisAddr      string
	RedisPassword  string
	BlackListFile  string
	AllowedOrigins []string
	LogFile        string
	LogLevel       string
	RequestTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any env lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		ServerPort:    get("SERVER_PORT", "5000"),
		MongoURI:      get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   get("MONGO_DB_NAME", "taskcanvas"),
		JWTSecret:     get("JWT_SECRET", ""),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		BlackListFile: get("PASSWORD_BLACKLIST_FILE", ""),
		LogFile:       get("LOG_FILE", ""),
		LogLevel:      get("LOG_LEVEL", "info"),
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	var err error
	if cfg.JWTTTL, err = duration(get("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.RequestTimeout, err = duration(get("REQUEST_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	origins := get("CORS_ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}

func duration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be greater than zero")
	}
	return d, nil
}
