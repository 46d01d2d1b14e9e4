package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-m", "/m", "-k", "/c", "-f", "/f", "-b", "bolt", "-db", "/m.db",
				"-s", "secret", "-u", "root", "-p", "pw", "-t", "5", "-l", "debug", "-verify",
			},
			expected: &Config{
				Addr:          "127.0.0.1:9090",
				MetaDir:       "/m",
				ChunkDir:      "/c",
				FileDir:       "/f",
				MetaBackend:   "bolt",
				BoltPath:      "/m.db",
				SecretKey:     "secret",
				AdminUser:     "root",
				AdminPassword: "pw",
				TokenTTL:      5 * time.Minute,
				LogLevel:      "debug",
				VerifyChunks:  true,
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-zzz", "1", "-a", ":1"},
			expected: &Config{Addr: ":1"},
		},
		{
			name:        "bad ttl",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
