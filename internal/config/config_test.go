package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gpst-client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "gateway: https://vpn.example.com\nsession_cookie: user=bob&authcookie=xyz\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "6.2", cfg.OSVersion)
	assert.Equal(t, "linux", cfg.ClientOS)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingGatewayFailsValidation(t *testing.T) {
	path := writeTempConfig(t, "session_cookie: user=bob\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingCookieFailsValidation(t *testing.T) {
	path := writeTempConfig(t, "gateway: https://vpn.example.com\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeTempConfig(t, "gateway: https://vpn.example.com\nsession_cookie: user=bob\n")
	t.Setenv("GPST_CLIENT_OS", "win")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "win", cfg.ClientOS)
}
