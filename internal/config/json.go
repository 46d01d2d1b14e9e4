package config

import (
	"encoding/json"
	"os"
)

// JsonConfig промежуточная структура для чтения JSON-файла. Указатели
// отличают отсутствующее поле от пустого значения.
type JsonConfig struct {
	Addr          *string   `json:"addr"`
	MetaDir       *string   `json:"meta_dir"`
	ChunkDir      *string   `json:"chunk_dir"`
	FileDir       *string   `json:"file_dir"`
	MetaBackend   *string   `json:"meta_backend"`
	BoltPath      *string   `json:"bolt_path"`
	SecretKey     *string   `json:"secret_key"`
	AdminUser     *string   `json:"admin_user"`
	AdminPassword *string   `json:"admin_password"`
	TokenTTL      *Duration `json:"token_ttl"`
	MaxChunkBytes *int64    `json:"max_chunk_bytes"`
	VerifyChunks  *bool     `json:"verify_chunks"`
	AllowOrigin   *string   `json:"allow_origin"`
	LogLevel      *string   `json:"log_level"`
}

// parseJson читает файл из -c/-config и переносит заданные поля в config.
// Без флага ничего не делает; нечитаемый файл или битый JSON приводят к панике.
func parseJson(config *Config) {
	jsonConfigFile := jsonConfigFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.Addr, c.Addr)
	setString(&config.MetaDir, c.MetaDir)
	setString(&config.ChunkDir, c.ChunkDir)
	setString(&config.FileDir, c.FileDir)
	setString(&config.MetaBackend, c.MetaBackend)
	setString(&config.BoltPath, c.BoltPath)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminUser, c.AdminUser)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.AllowOrigin, c.AllowOrigin)
	setString(&config.LogLevel, c.LogLevel)
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.MaxChunkBytes != nil {
		config.MaxChunkBytes = *c.MaxChunkBytes
	}
	if c.VerifyChunks != nil {
		config.VerifyChunks = *c.VerifyChunks
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
