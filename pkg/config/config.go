package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const AppName = "bobox-units"

type Config struct {
	AppEnv   string
	HTTPAddr string

	// AllowedOrigins is the CORS allowlist for the browser client.
	// FRONTEND_URL is honoured for compatibility; ALLOWED_ORIGINS (CSV) wins.
	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	// SeedDemoData loads the demo units at startup.
	SeedDemoData bool

	MetricsEnabled bool

	// NATSURL enables unit event publishing when non-empty.
	NATSURL     string
	NATSSubject string

	ShutdownTimeout time.Duration
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":3001"
		}
	}

	origins := envList("ALLOWED_ORIGINS", "")
	if len(origins) == 0 {
		origins = envList("FRONTEND_URL", "http://localhost:3000")
	}

	return Config{
		AppEnv:          env("APP_ENV", "dev"),
		HTTPAddr:        httpAddr,
		AllowedOrigins:  origins,
		LogLevel:        env("LOG_LEVEL", "info"),
		LogFormat:       env("LOG_FORMAT", "text"),
		SeedDemoData:    envBool("SEED_DEMO_DATA", true),
		MetricsEnabled:  envBool("METRICS_ENABLED", true),
		NATSURL:         os.Getenv("NATS_URL"),
		NATSSubject:     env("NATS_SUBJECT", "units.events"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
