package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags переносит в config значения флагов командной строки.
//
//	-a string   адрес HTTP-сервера (":3000")
//	-m string   каталог метаданных
//	-k string   каталог чанков
//	-f string   каталог готовых файлов
//	-b string   хранилище метаданных: file или bolt
//	-db string  путь к файлу bbolt
//	-s string   секрет подписи JWT
//	-u string   имя администратора
//	-p string   пароль администратора
//	-t int      время жизни токена, минуты
//	-l string   уровень логирования
//	-verify     сверять SHA-256 чанков
//
// Флаги предварительно фильтруются, чтобы не конфликтовать с -c/-config.
func parseFlags(config *Config) {
	args := filterArgs(os.Args[1:], []string{
		"-a", "-m", "-k", "-f", "-b", "-db", "-s", "-u", "-p", "-t", "-l", "-verify",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.MetaDir, "m", config.MetaDir, "metadata directory")
	fs.StringVar(&config.ChunkDir, "k", config.ChunkDir, "chunk directory")
	fs.StringVar(&config.FileDir, "f", config.FileDir, "merged files directory")
	fs.StringVar(&config.MetaBackend, "b", config.MetaBackend, "metadata backend: file or bolt")
	fs.StringVar(&config.BoltPath, "db", config.BoltPath, "bolt database path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	fs.StringVar(&config.AdminUser, "u", config.AdminUser, "admin username")
	fs.StringVar(&config.AdminPassword, "p", config.AdminPassword, "admin password or bcrypt hash")
	tokenTTL := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.VerifyChunks, "verify", config.VerifyChunks, "verify chunk SHA-256")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
}
