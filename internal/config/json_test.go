package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads from json", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"addr":            ":9000",
			"meta_dir":        "/m",
			"chunk_dir":       "/c",
			"file_dir":        "/f",
			"meta_backend":    "bolt",
			"bolt_path":       "/m.db",
			"secret_key":      "k",
			"admin_user":      "root",
			"admin_password":  "pw",
			"token_ttl":       "30m",
			"max_chunk_bytes": 1024,
			"verify_chunks":   true,
			"allow_origin":    "http://localhost:5173",
			"log_level":       "debug",
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, &Config{
			Addr:          ":9000",
			MetaDir:       "/m",
			ChunkDir:      "/c",
			FileDir:       "/f",
			MetaBackend:   "bolt",
			BoltPath:      "/m.db",
			SecretKey:     "k",
			AdminUser:     "root",
			AdminPassword: "pw",
			TokenTTL:      30 * time.Minute,
			MaxChunkBytes: 1024,
			VerifyChunks:  true,
			AllowOrigin:   "http://localhost:5173",
			LogLevel:      "debug",
		}, cfg)
	})

	t.Run("absent fields keep values", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"addr": ":1"})
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":1", cfg.Addr)
		assert.Equal(t, "data/meta", cfg.MetaDir)
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{Addr: "defaults:1234"}
		parseJson(cfg)
		assert.Equal(t, "defaults:1234", cfg.Addr)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1h30m"`), &d))
	assert.Equal(t, 90*time.Minute, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Duration)

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	b, err := json.Marshal(Duration{2 * time.Hour})
	require.NoError(t, err)
	assert.Equal(t, `"2h0m0s"`, string(b))
}
