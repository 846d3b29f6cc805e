package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// StoreDriver selects the persistence backend: "supabase" or "sql".
	StoreDriver     string
	DatabaseDialect string
	DatabaseURL     string

	RateLimitBackend string
	RateLimitMax     int
	RateLimitWindow  time.Duration
	RedisURL         string

	// JWTSecret enables staff authentication when non-empty.
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	LogLevel  string
	LogFormat string

	APIBaseURL    string
	APIToken      string
	DashboardPort string
	CacheTTL      time.Duration
}

func NewConfig() *Config {
	allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := []string{"http://localhost:3000"}
	if allowedOriginsStr != "" {
		allowedOrigins = nil
		for _, o := range strings.Split(allowedOriginsStr, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}

	port := getEnvOrDefault("PORT", "8080")

	return &Config{
		Port:               port,
		Environment:        getEnvOrDefault("ENVIRONMENT", "development"),
		AllowedOrigins:     allowedOrigins,
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		StoreDriver:        strings.ToLower(getEnvOrDefault("STORE_DRIVER", "supabase")),
		DatabaseDialect:    strings.ToLower(getEnvOrDefault("DATABASE_DIALECT", "postgres")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RateLimitBackend:   strings.ToLower(getEnvOrDefault("RATE_LIMIT_BACKEND", "memory")),
		RateLimitMax:       getIntOrDefault("RATE_LIMIT_MAX", 100),
		RateLimitWindow:    getDurationOrDefault("RATE_LIMIT_WINDOW", time.Minute),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvOrDefault("LOG_FORMAT", "json"),
		APIBaseURL:         getEnvOrDefault("API_BASE_URL", "http://localhost:"+port),
		APIToken:           os.Getenv("API_TOKEN"),
		DashboardPort:      getEnvOrDefault("DASHBOARD_PORT", "3000"),
		CacheTTL:           getDurationOrDefault("CACHE_TTL", 30*time.Second),
	}
}

// AuthEnabled reports whether API routes require a staff token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
