package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":3000", c.Addr)
	assert.Equal(t, "data/meta", c.MetaDir)
	assert.Equal(t, "data/chunk", c.ChunkDir)
	assert.Equal(t, "data/files", c.FileDir)
	assert.Equal(t, MetaBackendFile, c.MetaBackend)
	assert.Equal(t, "resource-storage-secret", c.SecretKey)
	assert.Equal(t, 2*time.Hour, c.TokenTTL)
	assert.Equal(t, int64(5<<20), c.MaxChunkBytes)
	assert.False(t, c.VerifyChunks)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"addr":     ":7000",
		"meta_dir": "/json/meta",
		"file_dir": "/json/files",
	})

	t.Setenv("RESOURCE_META_DIR", "/env/meta")
	t.Setenv("SECRET", "env-secret")
	t.Setenv("PORT", "")

	os.Args = []string{"testbin", "-c", path, "-m", "/flag/meta"}

	c := LoadConfig()
	require.NotNil(t, c)

	assert.Equal(t, ":7000", c.Addr, "json over defaults")
	assert.Equal(t, "/json/files", c.FileDir)
	assert.Equal(t, "env-secret", c.SecretKey, "env over defaults")
	assert.Equal(t, "/flag/meta", c.MetaDir, "flags over env and json")
	assert.Equal(t, "data/chunk", c.ChunkDir)
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("RESOURCE_META_DIR", "/m")
	t.Setenv("RESOURCE_CHUNK_DIR", "/c")
	t.Setenv("RESOURCE_FILE_DIR", "/f")
	t.Setenv("PORT", "8081")
	t.Setenv("SECRET", "s")
	t.Setenv("RESOURCE_ADMIN_USER", "root")
	t.Setenv("RESOURCE_ADMIN_PASSWORD", "pw")
	t.Setenv("RESOURCE_VERIFY_CHUNKS", "true")
	t.Setenv("LOG_LEVEL", "debug")

	c := &Config{}
	parseEnv(c)

	assert.Equal(t, &Config{
		Addr:          ":8081",
		MetaDir:       "/m",
		ChunkDir:      "/c",
		FileDir:       "/f",
		SecretKey:     "s",
		AdminUser:     "root",
		AdminPassword: "pw",
		VerifyChunks:  true,
		LogLevel:      "debug",
	}, c)
}

func Test_parseEnv_BadBoolIgnored(t *testing.T) {
	t.Setenv("RESOURCE_VERIFY_CHUNKS", "maybe")

	c := &Config{VerifyChunks: true}
	parseEnv(c)
	assert.True(t, c.VerifyChunks)
}

func Test_filterArgs(t *testing.T) {
	args := []string{"-c", "cfg.json", "-x", "1", "-a=:80", "-m", "/meta", "-verify", "-other=2"}

	got := filterArgs(args, []string{"-a", "-m", "-verify"})
	assert.Equal(t, []string{"-a=:80", "-m", "/meta", "-verify"}, got)

	assert.Empty(t, filterArgs(nil, []string{"-a"}))
}
