package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment     string
	HTTPPort        string
	ServiceName     string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Client-credentials pair for the upstream identity API. Constant
	// for the process lifetime and never exposed to the browser.
	ClientID     string
	ClientSecret string
	ChannelID    string
	ProjectID    string

	SessionBackend string
	SessionTTL     time.Duration
	CookieSecure   bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// DatabaseURL enables the Postgres audit sink when set.
	DatabaseURL string

	AdminRoles           []string
	RateLimitRPM         int
	TelemetryEndpoint    string
	TelemetryInsecure    bool
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	clientID := strings.TrimSpace(os.Getenv("UPSTREAM_CLIENT_ID"))
	if clientID == "" {
		return Config{}, fmt.Errorf("UPSTREAM_CLIENT_ID is required")
	}
	clientSecret := strings.TrimSpace(os.Getenv("UPSTREAM_CLIENT_SECRET"))
	if clientSecret == "" {
		return Config{}, fmt.Errorf("UPSTREAM_CLIENT_SECRET is required")
	}

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ServiceName:     getEnv("SERVICE_NAME", "cyber-console-gateway"),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "https://sandbox.techembryo.com"),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		ClientID:     clientID,
		ClientSecret: clientSecret,
		ChannelID:    getEnv("UPSTREAM_CHANNEL_ID", "WEB"),
		ProjectID:    getEnv("UPSTREAM_PROJECT_ID", "HPCYBER"),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionTTL:     getDuration("SESSION_TTL", 12*time.Hour),
		CookieSecure:   getBool("SESSION_COOKIE_SECURE", false),
		RedisAddr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getInt("REDIS_DB", 0),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AdminRoles:           getList("ADMIN_ROLES", []string{"ADMIN", "SUPER_ADMIN"}),
		RateLimitRPM:         getInt("RATE_LIMIT_RPM", 600),
		TelemetryEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedMethods:   getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		CORSAllowedHeaders:   getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
		CORSAllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
	}

	switch cfg.SessionBackend {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("SESSION_BACKEND must be memory or redis")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
