package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gammanik/resource-storage/internal/auth"
	"github.com/Gammanik/resource-storage/internal/logging"
)

type ctxKey string

const userKey ctxKey = "user"

// UserFromContext имя пользователя, прошедшего проверку токена
func UserFromContext(ctx context.Context) string {
	s, _ := ctx.Value(userKey).(string)
	return s
}

// AuthHandler обрабатывает /api/auth/*
type AuthHandler struct {
	Auth *auth.Authenticator
	Log  logging.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login выдает JWT в data
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		h.Log.Warn(r.Context(), "login failed", "username", req.Username)
		writeError(w, err)
		return
	}

	h.Log.Info(r.Context(), "login", "username", req.Username)
	writeOK(w, "LOGIN_OK", token)
}

// Verify отвечает успехом, если токен действителен
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "TOKEN_VALID", UserFromContext(r.Context()))
}

// RequireAuth пропускает только запросы с заголовком Authorization: Bearer <jwt>
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, errUnauthorized)
			return
		}

		user, err := h.Auth.Verify(token)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
