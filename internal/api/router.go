// Package api HTTP-интерфейс хранилища: маршруты /api/file/* и /api/auth/*
package api

import (
	"net/http"

	"github.com/Gammanik/resource-storage/internal/auth"
	"github.com/Gammanik/resource-storage/internal/logging"
	"github.com/Gammanik/resource-storage/internal/storage"
	"github.com/gorilla/mux"
)

// Options зависимости роутера
type Options struct {
	Storage       *storage.Service
	Auth          *auth.Authenticator
	MaxChunkBytes int64
	AllowOrigin   string
	Logger        logging.Logger
}

// NewRouter регистрирует все маршруты. Все /api/file/*, кроме read,
// требуют токен администратора.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	log = log.With("module", "api")

	files := &FileHandler{Storage: opts.Storage, MaxChunkBytes: opts.MaxChunkBytes, Log: log}
	auths := &AuthHandler{Auth: opts.Auth, Log: log}

	r := mux.NewRouter()

	r.HandleFunc("/health", files.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/file/read", files.Read).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/auth/login", auths.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(auths.RequireAuth)
	protected.HandleFunc("/auth/verify", auths.Verify).Methods(http.MethodGet)
	protected.HandleFunc("/file/upload", files.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/file/init-upload", files.InitUpload).Methods(http.MethodPost)
	protected.HandleFunc("/file/merge", files.Merge).Methods(http.MethodPost)
	protected.HandleFunc("/file/all", files.List).Methods(http.MethodGet)
	protected.HandleFunc("/file/info", files.Info).Methods(http.MethodGet)
	protected.HandleFunc("/file/update-permission", files.UpdatePermission).Methods(http.MethodPost)
	protected.HandleFunc("/file/generate-key", files.GenerateKey).Methods(http.MethodPost)
	protected.HandleFunc("/file/delete", files.Delete).Methods(http.MethodPost)

	// CORS снаружи роутера: preflight OPTIONS не доходит до проверки методов
	return requestIDMiddleware(loggingMiddleware(log)(corsMiddleware(opts.AllowOrigin)(r)))
}
