package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Gammanik/resource-storage/internal/auth"
	"github.com/Gammanik/resource-storage/internal/storage"
)

// Response общий конверт всех JSON-ответов
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const maxJSONBody = 1 << 20

// ошибки разбора запроса
var (
	errBadRequest   = errors.New("bad request")
	errNoFile       = errors.New("no file")
	errChunkTooBig  = errors.New("chunk too large")
	errUnauthorized = errors.New("unauthorized")
)

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// writeError отдает код ошибки в message и подходящий HTTP-статус
func writeError(w http.ResponseWriter, err error) {
	code, status := errorStatus(err)
	writeJSON(w, status, Response{Success: false, Message: code})
}

func errorStatus(err error) (string, int) {
	switch {
	case errors.Is(err, errBadRequest):
		return "BAD_REQUEST", http.StatusBadRequest
	case errors.Is(err, errNoFile):
		return "NO_FILE", http.StatusBadRequest
	case errors.Is(err, errChunkTooBig):
		return "CHUNK_TOO_LARGE", http.StatusRequestEntityTooLarge
	case errors.Is(err, errUnauthorized):
		return "UNAUTHORIZED", http.StatusUnauthorized
	case errors.Is(err, auth.ErrTokenExpired):
		return "TOKEN_EXPIRED", http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidToken):
		return "TOKEN_INVALID", http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "INVALID_CREDENTIALS", http.StatusUnauthorized
	}

	code := storage.ErrorCode(err)
	var mc *storage.MissingChunkError
	switch {
	case errors.As(err, &mc), errors.Is(err, storage.ErrChunkIncomplete),
		errors.Is(err, storage.ErrNotKeyFile), errors.Is(err, storage.ErrFileNotReady):
		return code, http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return code, http.StatusNotFound
	case errors.Is(err, storage.ErrForbidden):
		return code, http.StatusForbidden
	case errors.Is(err, storage.ErrChunkHashMismatch):
		return code, http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrInvalidHash), errors.Is(err, storage.ErrInvalidPath),
		errors.Is(err, storage.ErrInvalidChunk), errors.Is(err, storage.ErrInvalidRole):
		return code, http.StatusBadRequest
	default:
		return code, http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
