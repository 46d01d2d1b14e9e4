package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gammanik/resource-storage/internal/config"
	"github.com/Gammanik/resource-storage/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMetaStore_CreatesMetaDir(t *testing.T) {
	for _, backend := range []string{config.MetaBackendFile, config.MetaBackendBolt} {
		t.Run(backend, func(t *testing.T) {
			root := t.TempDir()
			cfg := &config.Config{
				MetaDir:     filepath.Join(root, "meta"),
				MetaBackend: backend,
				BoltPath:    filepath.Join(root, "db", "meta.db"),
			}

			store, err := openMetaStore(cfg, logging.Nop{})
			require.NoError(t, err)
			defer store.Close()

			info, err := os.Stat(cfg.MetaDir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestOpenMetaStore_UnknownBackend(t *testing.T) {
	cfg := &config.Config{MetaDir: filepath.Join(t.TempDir(), "meta"), MetaBackend: "redis"}

	_, err := openMetaStore(cfg, logging.Nop{})
	assert.Error(t, err)
}
