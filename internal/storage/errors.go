package storage

import (
	"errors"
	"fmt"

	"github.com/Gammanik/resource-storage/internal/metastore"
)

var (
	// ErrNotFound записи для хеша нет
	ErrNotFound = metastore.ErrNotFound
	// ErrMetaNotFound записи нет на момент слияния
	ErrMetaNotFound = fmt.Errorf("meta %w", metastore.ErrNotFound)

	ErrForbidden       = errors.New("forbidden")
	ErrChunkIncomplete = errors.New("chunk incomplete")
	ErrMissingChunk    = errors.New("missing chunk")
	ErrNotKeyFile      = errors.New("not a key file")
	ErrFileNotReady    = errors.New("file not ready")

	// ошибки валидации входных данных
	ErrInvalidHash       = errors.New("invalid file hash")
	ErrInvalidPath       = errors.New("invalid file name or path")
	ErrInvalidChunk      = errors.New("invalid chunk index or count")
	ErrChunkHashMismatch = errors.New("chunk hash mismatch")
	ErrInvalidRole       = errors.New("invalid role")
)

// MissingChunkError чанк исчез между проверкой полноты и слиянием
type MissingChunkError struct {
	Index int
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("missing chunk %d", e.Index)
}

func (e *MissingChunkError) Is(target error) bool {
	return target == ErrMissingChunk
}

// ErrorCode переводит ошибку сервиса в код, который видит клиент
func ErrorCode(err error) string {
	var mc *MissingChunkError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &mc):
		return fmt.Sprintf("MISSING_CHUNK_%d", mc.Index)
	case errors.Is(err, ErrMetaNotFound):
		return "META_NOT_FOUND"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrChunkIncomplete):
		return "CHUNK_INCOMPLETE"
	case errors.Is(err, ErrNotKeyFile):
		return "NOT_KEY_FILE"
	case errors.Is(err, ErrFileNotReady):
		return "FILE_NOT_READY"
	case errors.Is(err, ErrInvalidHash):
		return "INVALID_HASH"
	case errors.Is(err, ErrInvalidPath):
		return "INVALID_PATH"
	case errors.Is(err, ErrInvalidChunk):
		return "INVALID_CHUNK"
	case errors.Is(err, ErrChunkHashMismatch):
		return "CHUNK_HASH_MISMATCH"
	case errors.Is(err, ErrInvalidRole):
		return "INVALID_ROLE"
	default:
		return "INTERNAL_ERROR"
	}
}
