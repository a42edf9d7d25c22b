package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenExpiry)
	assert.True(t, cfg.JWT.RefreshTokenRotation)
}

func TestLoadRefreshRotationDisabled(t *testing.T) {
	t.Setenv("JWT_REFRESH_ROTATION", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.JWT.RefreshTokenRotation)
}
