// Package auth выдает и проверяет токены администратора
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Claims стандартные утверждения плюс имя пользователя
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

func GenerateToken(username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUsernameFromToken проверяет подпись и срок действия токена
func GetUsernameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", ErrTokenExpired
	}
	if err != nil {
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.Username == "" {
		return "", ErrInvalidToken
	}

	return claims.Username, nil
}

// Authenticator проверяет единственную учетную запись администратора.
// Пароль хранится только в виде bcrypt-хеша.
type Authenticator struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
}

// NewAuthenticator принимает открытый пароль или готовый bcrypt-хеш
func NewAuthenticator(username, password string, secret []byte, ttl time.Duration) (*Authenticator, error) {
	if username == "" || password == "" {
		return nil, errors.New("auth: admin username and password are required")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: secret key is required")
	}

	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash password: %w", err)
		}
	}

	return &Authenticator{username: username, passwordHash: hash, secret: secret, ttl: ttl}, nil
}

// Login сверяет учетные данные и выдает токен
func (a *Authenticator) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(a.username), []byte(username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}
	return GenerateToken(username, a.secret, a.ttl)
}

// Verify возвращает имя пользователя из действующего токена
func (a *Authenticator) Verify(token string) (string, error) {
	return GetUsernameFromToken(token, a.secret)
}
