package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		result, err := Apply(context.Background(), Config{Enabled: false})
		require.NoError(t, err)
		assert.False(t, result.Enabled)
		assert.Zero(t, result.Loaded)
	})

	t.Run("exports KV v2 entries into the environment", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/secret/data/claimsledger/api", r.URL.Path)
			assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"data":{"DB_PASSWORD":"hunter2","REDIS_DB":3}}}`))
		}))
		defer server.Close()

		t.Setenv("DB_PASSWORD", "")
		t.Setenv("REDIS_DB", "")

		result, err := Apply(context.Background(), Config{
			Enabled:   true,
			Addr:      server.URL,
			Token:     "test-token",
			Mount:     "secret",
			Path:      "claimsledger/api",
			KVVersion: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Loaded)
		assert.Equal(t, "hunter2", getenv(t, "DB_PASSWORD"))
		assert.Equal(t, "3", getenv(t, "REDIS_DB"))
	})

	t.Run("existing variables win without overwrite", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"data":{"DB_PASSWORD":"from-vault"}}}`))
		}))
		defer server.Close()

		t.Setenv("DB_PASSWORD", "from-env")

		result, err := Apply(context.Background(), Config{
			Enabled:   true,
			Addr:      server.URL,
			Token:     "test-token",
			Mount:     "secret",
			Path:      "claimsledger/api",
			KVVersion: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, "from-env", getenv(t, "DB_PASSWORD"))
	})

	t.Run("rejects incomplete configuration", func(t *testing.T) {
		_, err := Apply(context.Background(), Config{Enabled: true})
		assert.Error(t, err)
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "true")
	t.Setenv("VAULT_ADDR", "http://vault:8200")
	t.Setenv("VAULT_TOKEN", "tok")
	t.Setenv("VAULT_PATH", "")
	t.Setenv("VAULT_MOUNT", "")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, "claimsledger/api", cfg.Path, "engine path is the default")
	assert.Equal(t, 2, cfg.KVVersion)
}

func getenv(t *testing.T, key string) string {
	t.Helper()
	value, ok := os.LookupEnv(key)
	require.True(t, ok)
	return value
}
