package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// OIDC (Plex identity is carried in the token claims)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)
	RedisURL      string // Optional; empty falls back to in-memory sessions

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// External services. A service with an empty URL is treated as not
	// configured and its integration is disabled.
	OverseerrURL    string
	OverseerrAPIKey string
	TautulliURL     string
	TautulliAPIKey  string
	SonarrURL       string
	SonarrAPIKey    string
	RadarrURL       string
	RadarrAPIKey    string

	// Admins
	AdminPlexIDs []string // Plex account ids granted admin on sync

	// Sync
	SyncInterval time.Duration // Interval between scheduled full syncs
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/shelflife?sslmode=disable"),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		RedisURL:         getEnv("REDIS_URL", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		OverseerrURL:     getEnv("OVERSEERR_URL", ""),
		OverseerrAPIKey:  getEnv("OVERSEERR_API_KEY", ""),
		TautulliURL:      getEnv("TAUTULLI_URL", ""),
		TautulliAPIKey:   getEnv("TAUTULLI_API_KEY", ""),
		SonarrURL:        getEnv("SONARR_URL", ""),
		SonarrAPIKey:     getEnv("SONARR_API_KEY", ""),
		RadarrURL:        getEnv("RADARR_URL", ""),
		RadarrAPIKey:     getEnv("RADARR_API_KEY", ""),
		AdminPlexIDs:     splitList(getEnv("ADMIN_PLEX_IDS", "")),
		SyncInterval:     getDuration("SYNC_INTERVAL_MINUTES", 60) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallback)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
