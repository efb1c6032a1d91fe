package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration, loaded from environment variables.
type Config struct {
	Addr     string
	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite3"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "bazaar.db"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000"
	}
	allowed := strings.Split(origins, ",")
	for i := range allowed {
		allowed[i] = strings.TrimSpace(allowed[i])
	}

	return Config{
		Addr:           addr,
		DBDriver:       driver,
		DBDSN:          dsn,
		JWTSecret:      secret,
		TokenTTL:       ttl,
		AllowedOrigins: allowed,
	}
}
