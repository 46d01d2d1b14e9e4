package storage

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Gammanik/resource-storage/internal/metastore"
)

// UpdatePermission меняет режим доступа к файлу
func (s *Service) UpdatePermission(ctx context.Context, hash string, role metastore.Role) error {
	if err := validateHash(hash); err != nil {
		return err
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	unlock := s.locks.Lock(hash)
	defer unlock()

	rec, err := s.meta.Get(hash)
	if err != nil {
		return err
	}

	rec.Role = role
	if err := s.meta.Put(rec); err != nil {
		return fmt.Errorf("save meta %s: %w", hash, err)
	}

	s.log.Info(ctx, "permission updated", "hash", hash, "role", role)
	return nil
}

// GenerateKey выдает новый ключ доступа для файла с режимом key.
// Предыдущий ключ перестает действовать.
func (s *Service) GenerateKey(ctx context.Context, hash string) (string, error) {
	if err := validateHash(hash); err != nil {
		return "", err
	}

	unlock := s.locks.Lock(hash)
	defer unlock()

	rec, err := s.meta.Get(hash)
	if err != nil {
		return "", err
	}
	if rec.Role != metastore.RoleKey {
		return "", ErrNotKeyFile
	}

	rec.Key = s.newKey()
	if err := s.meta.Put(rec); err != nil {
		return "", fmt.Errorf("save meta %s: %w", hash, err)
	}

	s.log.Info(ctx, "access key generated", "hash", hash)
	return rec.Key, nil
}

// Delete удаляет чанки, запись о файле и сам файл
func (s *Service) Delete(ctx context.Context, hash string) error {
	if err := validateHash(hash); err != nil {
		return err
	}

	unlock := s.locks.Lock(hash)
	defer unlock()

	rec, err := s.meta.Get(hash)
	if err != nil {
		return err
	}

	s.removeChunks(ctx, hash, rec.Chunks)

	if err := s.meta.Delete(hash); err != nil {
		return fmt.Errorf("delete meta %s: %w", hash, err)
	}

	if dst, err := s.finalPath(rec.Path, rec.Name); err == nil {
		if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn(ctx, "remove file", "hash", hash, "path", dst, "error", err)
		}
	}

	s.log.Info(ctx, "file deleted", "hash", hash)
	return nil
}

// ResolveRead проверяет доступ и открывает готовый файл на чтение.
// Закрыть файл должен вызывающий.
func (s *Service) ResolveRead(ctx context.Context, hash, key string) (*metastore.FileRecord, *os.File, error) {
	if err := validateHash(hash); err != nil {
		return nil, nil, err
	}

	rec, err := s.meta.Get(hash)
	if err != nil {
		return nil, nil, err
	}

	if rec.Role == metastore.RoleKey && !keyMatches(rec.Key, key) {
		return nil, nil, ErrForbidden
	}

	dst, err := s.finalPath(rec.Path, rec.Name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrFileNotReady
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dst, err)
	}

	if info, err := f.Stat(); err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrFileNotReady
	}

	return rec, f, nil
}

// keyMatches пустой ключ в записи не совпадает ни с чем
func keyMatches(want, got string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
