package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/advait122/ROADmap/internal/matching"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	LogLevel             string
	DatabaseDriver       string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	NotificationChannel  string
	JWTSecret            string
	MatchCacheTTL        time.Duration
	SSEKeepAlive         time.Duration
	RefreshRateLimit     int
	RefreshRateWindow    time.Duration
	ForecastDays         int
	CatalogLimit         int
	MatchLimit           int
	NotificationPageSize int
	CORSOrigins          string
	AccessLog            bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ROADMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ROADmap API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("notifications.channel", "roadmap")
	v.SetDefault("matches.cache_ttl", "5m")
	v.SetDefault("sse.keepalive", "30s")
	v.SetDefault("refresh.rate_limit", 6)
	v.SetDefault("refresh.rate_window", "1m")
	v.SetDefault("forecast.days", 7)
	v.SetDefault("catalog.limit", 250)
	v.SetDefault("matches.limit", matching.DefaultLimit)
	v.SetDefault("notifications.page_size", 50)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("http.access_log", false)

	cacheTTL, err := parseDuration(v, "matches.cache_ttl", 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid match cache ttl: %w", err)
	}
	keepAlive, err := parseDuration(v, "sse.keepalive", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}
	rateWindow, err := parseDuration(v, "refresh.rate_window", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid refresh rate window: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		LogLevel:             strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:       strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		NotificationChannel:  v.GetString("notifications.channel"),
		JWTSecret:            v.GetString("jwt.secret"),
		MatchCacheTTL:        cacheTTL,
		SSEKeepAlive:         keepAlive,
		RefreshRateLimit:     v.GetInt("refresh.rate_limit"),
		RefreshRateWindow:    rateWindow,
		ForecastDays:         v.GetInt("forecast.days"),
		CatalogLimit:         v.GetInt("catalog.limit"),
		MatchLimit:           v.GetInt("matches.limit"),
		NotificationPageSize: v.GetInt("notifications.page_size"),
		CORSOrigins:          v.GetString("cors.allow_origins"),
		AccessLog:            v.GetBool("http.access_log"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ForecastDays < 0 {
		cfg.ForecastDays = 7
	}
	if cfg.CatalogLimit <= 0 {
		cfg.CatalogLimit = 250
	}
	// Matches are persisted for the top DefaultLimit opportunities only.
	if cfg.MatchLimit <= 0 || cfg.MatchLimit > matching.DefaultLimit {
		cfg.MatchLimit = matching.DefaultLimit
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
