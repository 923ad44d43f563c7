package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"stockquote/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.True(t, cfg.Sina.Enabled)
	require.Equal(t, "https://hq.sinajs.cn", cfg.Sina.Endpoint)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 10, cfg.Server.RequestTimeoutSec)
	// The Eastmoney fallback is opt-in.
	require.False(t, cfg.Eastmoney.Enabled)
	require.False(t, config.Default().Eastmoney.Enabled)
}

func TestLoad_EastmoneyOptIn(t *testing.T) {
	t.Setenv("EASTMONEY_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.True(t, cfg.Eastmoney.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": "9090", "request_timeout_sec": 3},
		"sina": {"enabled": true, "endpoint": "http://localhost:1234", "referer": "http://localhost", "cache_ttl_sec": 0},
		"eastmoney": {"enabled": false}
	}`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 3, cfg.Server.RequestTimeoutSec)
	require.Equal(t, "http://localhost:1234", cfg.Sina.Endpoint)
	require.False(t, cfg.Eastmoney.Enabled)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("SINA_ENDPOINT", "http://env.example")
	t.Setenv("SINA_MAX_RPM", "0")
	t.Setenv("EASTMONEY_ENABLED", "false")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Server.Port)
	require.Equal(t, "http://env.example", cfg.Sina.Endpoint)
	require.Zero(t, cfg.Sina.MaxRequestsPerMinute)
	require.False(t, cfg.Eastmoney.Enabled)
}
