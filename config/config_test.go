package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_MissingDefaultFile(t *testing.T) {
	// Neither the variable nor ./config.yaml exist
	t.Setenv(BDAJ_CONFIG, "")
	require.NoError(t, os.Unsetenv(BDAJ_CONFIG))
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(cwd) })
	// ---------------------------
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
	require.Equal(t, 4001, cfg.HttpApi.HttpPort)
	require.Equal(t, "./db", cfg.Store.RootDir)
}

func TestLoadConfig_MissingNamedFile(t *testing.T) {
	t.Setenv(BDAJ_CONFIG, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_Yaml(t *testing.T) {
	path := writeConfig(t, `
debug: true
store:
  rootDir: /tmp/bdaj
httpApi:
  httpPort: 8080
  requireAuth: true
  allowedOrigins:
    - https://example.com
auth:
  tokenSecret: secret
`)
	t.Setenv(BDAJ_CONFIG, path)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.Debug)
	require.True(t, cfg.HttpApi.Debug)
	require.Equal(t, "/tmp/bdaj", cfg.Store.RootDir)
	require.Equal(t, 64, cfg.Store.LockStripes)
	require.Equal(t, 8080, cfg.HttpApi.HttpPort)
	require.True(t, cfg.HttpApi.RequireAuth)
	require.Equal(t, []string{"https://example.com"}, cfg.HttpApi.AllowedOrigins)
	require.Equal(t, "secret", cfg.Auth.TokenSecret)
	require.Equal(t, 3600, cfg.Auth.TokenExpiry)
}

func TestLoadConfig_EmptyYaml(t *testing.T) {
	t.Setenv(BDAJ_CONFIG, writeConfig(t, ""))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_BadYaml(t *testing.T) {
	t.Setenv(BDAJ_CONFIG, writeConfig(t, "httpApi: [1, 2"))
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_EnvOverridesYaml(t *testing.T) {
	t.Setenv(BDAJ_CONFIG, writeConfig(t, "httpApi:\n  httpPort: 8080\n"))
	t.Setenv("BDAJ_HTTP_API_HTTP_PORT", "9090")
	t.Setenv("BDAJ_STORE_ROOT_DIR", "/srv/data")
	t.Setenv("BDAJ_AUTH_TOKEN_SECRET", "fromenv")
	t.Setenv("BDAJ_DEBUG", "true")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.HttpApi.HttpPort)
	require.Equal(t, "/srv/data", cfg.Store.RootDir)
	require.Equal(t, "fromenv", cfg.Auth.TokenSecret)
	require.True(t, cfg.Debug)
}

func TestConfigMap_Redacted(t *testing.T) {
	cfg := defaultConfig()
	cfg.Auth.TokenSecret = "hunter2"
	redacted := cfg.Redacted()
	require.Equal(t, "***", redacted.Auth.TokenSecret)
	require.Equal(t, "hunter2", cfg.Auth.TokenSecret)
	require.Equal(t, cfg.HttpApi, redacted.HttpApi)
	// An unset secret stays visibly unset
	require.Empty(t, defaultConfig().Redacted().Auth.TokenSecret)
}
