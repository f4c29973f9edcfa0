package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfigEnv saves and unsets all ARTISTBAN_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{EnvPrefix + "_CONFIG"}
	for key := range defaults {
		keys = append(keys, EnvPrefix+"_"+strings.ToUpper(key))
	}
	for _, key := range keys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8787", cfg.ListenAddr)
	assert.Equal(t, "127.0.0.1:8788", cfg.ProxyAddr)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "artistban.db", cfg.DBPath)
	assert.Equal(t, ListSourceRaw, cfg.ListSource)
	assert.Contains(t, cfg.ListURL, "SpotifyAiArtists.csv")
	assert.Equal(t, "https://spclient.wg.spotify.com/collection/v2/write", cfg.WriteURL)
	assert.Equal(t, 2.0, cfg.WriteRate)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://127.0.0.1:8787", cfg.APIAddr)
	assert.Empty(t, cfg.Account)
	assert.Equal(t, "CennoxX/spotify-ai-blocker", cfg.ReportRepo)
	assert.Equal(t, "cesar.bernard@gmx.de", cfg.ReportEmail, "report mail works without extra config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ARTISTBAN_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("ARTISTBAN_STORE", "Redis")
	t.Setenv("ARTISTBAN_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("ARTISTBAN_LIST_SOURCE", "github")
	t.Setenv("ARTISTBAN_ACCOUNT", " listener42 ")
	t.Setenv("ARTISTBAN_WRITE_RATE", "0.5")
	t.Setenv("ARTISTBAN_HTTP_TIMEOUT", "5s")
	t.Setenv("ARTISTBAN_API_ADDR", "http://localhost:9999/")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, ListSourceGitHub, cfg.ListSource)
	assert.Equal(t, "listener42", cfg.Account)
	assert.Equal(t, 0.5, cfg.WriteRate)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://localhost:9999", cfg.APIAddr)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "artistban.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /data/state.db\nreport_email: reports@example.com\nhttp_timeout: 10s\n"), 0o600))
	t.Setenv("ARTISTBAN_CONFIG", path)
	t.Setenv("ARTISTBAN_HTTP_TIMEOUT", "15s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/data/state.db", cfg.DBPath)
	assert.Equal(t, "reports@example.com", cfg.ReportEmail)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout, "env overrides file")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ARTISTBAN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ARTISTBAN_HTTP_TIMEOUT", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTISTBAN_HTTP_TIMEOUT")
}

func TestLoad_NonPositiveDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ARTISTBAN_HTTP_TIMEOUT", "0s")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_InvalidRate(t *testing.T) {
	for _, value := range []string{"fast", "0", "-1"} {
		t.Run(value, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("ARTISTBAN_WRITE_RATE", value)

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "ARTISTBAN_WRITE_RATE")
		})
	}
}

func TestLoad_UnknownStore(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ARTISTBAN_STORE", "postgres")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_UnknownListSource(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ARTISTBAN_LIST_SOURCE", "ftp")

	_, err := Load()

	require.Error(t, err)
}
