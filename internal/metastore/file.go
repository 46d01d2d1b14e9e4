package metastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Gammanik/resource-storage/internal/logging"
)

const recordExt = ".json"

// FileStore хранит каждую запись отдельным JSON-файлом <hash>.json в каталоге
type FileStore struct {
	dir string
	log logging.Logger
}

// NewFileStore создает хранилище в каталоге dir, создавая его при необходимости
func NewFileStore(dir string, log logging.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create meta dir %s: %w", dir, err)
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) path(hash string) string {
	return filepath.Join(s.dir, hash+recordExt)
}

// Get читает запись о файле
func (s *FileStore) Get(hash string) (*FileRecord, error) {
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read meta %s: %w", hash, err)
	}

	var rec FileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode meta %s: %w", hash, err)
	}
	return &rec, nil
}

// Put пишет запись во временный файл и атомарно переименовывает его,
// поэтому читатель никогда не видит наполовину записанный JSON
func (s *FileStore) Put(rec *FileRecord) error {
	encoded, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, rec.Hash+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp meta: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write meta %s: %w", rec.Hash, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync meta %s: %w", rec.Hash, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path(rec.Hash)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename meta %s: %w", rec.Hash, err)
	}
	return nil
}

// Delete удаляет файл записи
func (s *FileStore) Delete(hash string) error {
	err := os.Remove(s.path(hash))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove meta %s: %w", hash, err)
	}
	return nil
}

// List читает все *.json из каталога. Нечитаемые файлы пропускаются с
// предупреждением в лог.
func (s *FileStore) List() ([]*FileRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	result := make([]*FileRecord, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		hash := strings.TrimSuffix(e.Name(), recordExt)
		rec, err := s.Get(hash)
		if err != nil {
			s.log.Warn(context.Background(), "skip unreadable meta file", "file", filepath.Join(s.dir, e.Name()), "error", err)
			continue
		}
		result = append(result, rec)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Hash < result[j].Hash })
	return result, nil
}

// Close ничего не делает, ресурсов не держим
func (s *FileStore) Close() error {
	return nil
}
