package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("DEV", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.True(t, cfg.Dev)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}
