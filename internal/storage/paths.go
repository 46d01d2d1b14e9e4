package storage

import (
	"path/filepath"
	"strings"
)

// validateHash хеш используется в именах файлов, поэтому не должен содержать
// разделителей пути
func validateHash(hash string) error {
	if !safeSegment(hash) {
		return ErrInvalidHash
	}
	return nil
}

func safeSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}

// finalPath путь готового файла <fileDir>/<rel>/<name>.
// Относительный путь приводится к корню, так что ".." не выводит за fileDir.
func (s *Service) finalPath(rel, name string) (string, error) {
	if !safeSegment(name) {
		return "", ErrInvalidPath
	}
	if strings.ContainsRune(rel, 0) {
		return "", ErrInvalidPath
	}
	if rel == "" {
		rel = defaultPath
	}

	sep := string(filepath.Separator)
	clean := filepath.Clean(sep + filepath.FromSlash(strings.ReplaceAll(rel, "\\", "/")))
	return filepath.Join(s.fileDir, clean, name), nil
}
