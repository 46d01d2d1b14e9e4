package config

import (
	"os"
	"strconv"
	"strings"
)

// parseEnv переменные окружения, совместимые с прежним развертыванием:
// RESOURCE_META_DIR, RESOURCE_CHUNK_DIR, RESOURCE_FILE_DIR, PORT, SECRET.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("RESOURCE_META_DIR"); ok && v != "" {
		config.MetaDir = v
	}
	if v, ok := os.LookupEnv("RESOURCE_CHUNK_DIR"); ok && v != "" {
		config.ChunkDir = v
	}
	if v, ok := os.LookupEnv("RESOURCE_FILE_DIR"); ok && v != "" {
		config.FileDir = v
	}
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := os.LookupEnv("SECRET"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("RESOURCE_ADMIN_USER"); ok && v != "" {
		config.AdminUser = v
	}
	if v, ok := os.LookupEnv("RESOURCE_ADMIN_PASSWORD"); ok && v != "" {
		config.AdminPassword = v
	}
	if v, ok := os.LookupEnv("RESOURCE_VERIFY_CHUNKS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.VerifyChunks = b
		}
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		config.LogLevel = v
	}
}
