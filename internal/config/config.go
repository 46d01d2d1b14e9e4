// Package config собирает настройки сервера: значения по умолчанию, затем
// JSON-файл, затем переменные окружения и в конце флаги командной строки.
package config

import "time"

// MetaBackend реализация хранилища метаданных
const (
	MetaBackendFile = "file"
	MetaBackendBolt = "bolt"
)

// Config настройки resource-server
type Config struct {
	Addr string

	MetaDir     string
	ChunkDir    string
	FileDir     string
	MetaBackend string
	BoltPath    string

	SecretKey     string
	AdminUser     string
	AdminPassword string // открытый пароль или bcrypt-хеш
	TokenTTL      time.Duration

	MaxChunkBytes int64
	VerifyChunks  bool
	AllowOrigin   string

	LogLevel string
}

// LoadDefaults значения для локального запуска; секрет и пароль нужно переопределить
func (c *Config) LoadDefaults() {
	c.Addr = ":3000"
	c.MetaDir = "data/meta"
	c.ChunkDir = "data/chunk"
	c.FileDir = "data/files"
	c.MetaBackend = MetaBackendFile
	c.BoltPath = "data/meta.db"
	c.SecretKey = "resource-storage-secret"
	c.AdminUser = "admin"
	c.AdminPassword = "admin"
	c.TokenTTL = 2 * time.Hour
	c.MaxChunkBytes = 5 << 20
	c.VerifyChunks = false
	c.AllowOrigin = "*"
	c.LogLevel = "info"
}

// LoadConfig применяет источники по порядку: defaults, JSON, env, флаги
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
