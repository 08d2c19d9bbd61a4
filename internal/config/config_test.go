package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-badgr-client/internal/config"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("BADGR_USERNAME", "test")
	t.Setenv("BADGR_PASSWORD", "test_pass")
	t.Setenv("BADGR_CLIENT_ID", "kewl_client")
	t.Setenv("BADGR_BASE_URL", "https://badgr.example.com")
	t.Setenv("BADGR_UNIQUE_BADGE_NAMES", "true")

	cfg := config.FromEnv()
	require.Equal(t, "test", cfg.Username)
	require.Equal(t, "test_pass", cfg.Password)
	require.Equal(t, "kewl_client", cfg.ClientID)
	require.Equal(t, "https://badgr.example.com", cfg.BaseURL)
	require.True(t, cfg.UniqueBadgeNames)
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("BADGR_CLIENT_ID", "")

	cfg := config.FromEnv()
	require.Equal(t, "public", cfg.ClientID)
	require.False(t, cfg.UniqueBadgeNames)
}
