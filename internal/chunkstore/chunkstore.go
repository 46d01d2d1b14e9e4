// Package chunkstore хранит байты загруженных чанков на диске.
// Чанк адресуется парой (хеш файла, индекс) и лежит в файле <hash>-<index>.
package chunkstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store каталог с чанками
type Store struct {
	dir string
}

// New создает хранилище чанков в каталоге dir
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir возвращает каталог хранилища
func (s *Store) Dir() string {
	return s.dir
}

// Path путь к чанку, детерминированный по (hash, index)
func (s *Store) Path(hash string, index int) string {
	return filepath.Join(s.dir, hash+"-"+strconv.Itoa(index))
}

// Save сохраняет данные чанка. Данные пишутся во временный файл, который затем
// переименовывается поверх слота, так что повторная загрузка того же индекса
// просто заменяет байты. Возвращает число записанных байт.
func (s *Store) Save(hash string, index int, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp chunk: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("write chunk %s-%d: %w", hash, index, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, s.Path(hash, index)); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("save chunk %s-%d: %w", hash, index, err)
	}
	return n, nil
}

// Exists проверяет наличие чанка
func (s *Store) Exists(hash string, index int) bool {
	info, err := os.Stat(s.Path(hash, index))
	return err == nil && !info.IsDir()
}

// Open открывает чанк на чтение. Для отсутствующего чанка ошибка
// удовлетворяет errors.Is(err, fs.ErrNotExist).
func (s *Store) Open(hash string, index int) (*os.File, error) {
	return os.Open(s.Path(hash, index))
}

// Remove удаляет чанк; уже отсутствующий чанк ошибкой не считается
func (s *Store) Remove(hash string, index int) error {
	err := os.Remove(s.Path(hash, index))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Stats число чанков и их суммарный размер. Незавершенные временные файлы не учитываются.
func (s *Store) Stats() (count int, size int64, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, err
	}

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// чанк могли удалить между ReadDir и Info
			continue
		}
		count++
		size += info.Size()
	}
	return count, size, nil
}
