package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// CalculateSHA256 вычисляет SHA-256 хеш данных
func CalculateSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// CalculateFileSHA256 вычисляет SHA-256 хеш содержимого файла
func CalculateFileSHA256(reader io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, reader); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashingReader считает SHA-256 всего, что через него прочитано
type HashingReader struct {
	r io.Reader
	h hash.Hash
}

// NewHashingReader оборачивает reader
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		hr.h.Write(p[:n])
	}
	return n, err
}

// Sum hex-строка хеша прочитанных данных
func (hr *HashingReader) Sum() string {
	return hex.EncodeToString(hr.h.Sum(nil))
}
