package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/config"
	"github.com/advait122/ROADmap/internal/matching"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("ROADMAP_JWT_SECRET", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "ROADmap API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, 5*time.Minute, cfg.MatchCacheTTL)
	require.Equal(t, 7, cfg.ForecastDays)
	require.Equal(t, 250, cfg.CatalogLimit)
	require.Equal(t, 120, cfg.MatchLimit)
	require.Equal(t, "*", cfg.CORSOrigins)
	require.False(t, cfg.AccessLog)
}

func TestLoadClampsMatchLimit(t *testing.T) {
	t.Setenv("ROADMAP_JWT_SECRET", "secret")

	t.Setenv("ROADMAP_MATCHES_LIMIT", "500")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, matching.DefaultLimit, cfg.MatchLimit)

	t.Setenv("ROADMAP_MATCHES_LIMIT", "-3")
	cfg, err = config.Load()
	require.NoError(t, err)
	require.Equal(t, matching.DefaultLimit, cfg.MatchLimit)

	t.Setenv("ROADMAP_MATCHES_LIMIT", "40")
	cfg, err = config.Load()
	require.NoError(t, err)
	require.Equal(t, 40, cfg.MatchLimit)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("ROADMAP_JWT_SECRET", "secret")
	t.Setenv("ROADMAP_APP_PORT", ":9000")
	t.Setenv("ROADMAP_DATABASE_DRIVER", "SQLite")
	t.Setenv("ROADMAP_MATCHES_CACHE_TTL", "90s")
	t.Setenv("ROADMAP_FORECAST_DAYS", "14")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddress())
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 90*time.Second, cfg.MatchCacheTTL)
	require.Equal(t, 14, cfg.ForecastDays)
}

func TestLoadRequiresSecretAndValidDurations(t *testing.T) {
	t.Setenv("ROADMAP_JWT_SECRET", "")
	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("ROADMAP_JWT_SECRET", "secret")
	t.Setenv("ROADMAP_SSE_KEEPALIVE", "often")
	_, err = config.Load()
	require.ErrorContains(t, err, "sse keepalive")
}
