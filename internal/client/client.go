// Package client HTTP-клиент API хранилища
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gammanik/resource-storage/internal/logging"
	"github.com/Gammanik/resource-storage/internal/metastore"
	"github.com/Gammanik/resource-storage/internal/storage"
	"golang.org/x/net/proxy"
)

// APIError ответ сервера с success=false
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
}

// IsCode проверяет код ошибки API
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Status состояние загрузки на сервере. All означает, что сервер не знает файл.
type Status struct {
	State   string
	Missing []int
	All     bool
}

// HTTPClient клиент API. Токен хранится после Login или задается через WithToken.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	token   string
	log     logging.Logger
}

// Option настройка клиента
type Option func(*HTTPClient) error

// WithToken задает ранее полученный токен
func WithToken(token string) Option {
	return func(c *HTTPClient) error {
		c.token = token
		return nil
	}
}

// WithTimeout таймаут одного запроса
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) error {
		c.client.Timeout = d
		return nil
	}
}

// WithLogger логгер клиента
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) error {
		c.log = l
		return nil
	}
}

// WithProxy направляет соединения через SOCKS5-прокси, например socks5://127.0.0.1:9050
func WithProxy(rawURL string) Option {
	return func(c *HTTPClient) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("parse proxy url: %w", err)
		}
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("proxy %s: %w", u.Redacted(), err)
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		c.client.Transport = transport
		return nil
	}
}

// New создает клиент для сервера baseURL
func New(baseURL string, opts ...Option) (*HTTPClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		log:     logging.Nop{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Token текущий токен
func (c *HTTPClient) Token() string {
	return c.token
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// call выполняет запрос и разбирает конверт; data декодируется в out, если он задан
func (c *HTTPClient) call(req *http.Request, out any) (string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("%s %s: status %d: decode response: %w", req.Method, req.URL.Path, resp.StatusCode, err)
	}
	if !env.Success {
		return "", &APIError{Status: resp.StatusCode, Code: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Message, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json")
	if err != nil {
		return "", err
	}
	return c.call(req, out)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	return c.call(req, out)
}

// Login получает токен и запоминает его в клиенте
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var token string
	if _, err := c.postJSON(ctx, "/api/auth/login", map[string]string{"username": username, "password": password}, &token); err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

// Verify проверяет токен и возвращает имя пользователя
func (c *HTTPClient) Verify(ctx context.Context) (string, error) {
	var user string
	_, err := c.get(ctx, "/api/auth/verify", &user)
	return user, err
}

// InitUpload запрашивает состояние загрузки файла
func (c *HTTPClient) InitUpload(ctx context.Context, hash string) (*Status, error) {
	var raw json.RawMessage
	state, err := c.postJSON(ctx, "/api/file/init-upload", map[string]string{"fileHash": hash}, &raw)
	if err != nil {
		return nil, err
	}

	st := &Status{State: state}
	if state == string(storage.StateNotExist) {
		st.All = true
		return st, nil
	}
	if err := json.Unmarshal(raw, &st.Missing); err != nil {
		return nil, fmt.Errorf("decode missing chunks: %w", err)
	}
	return st, nil
}

// UploadChunk отправляет один чанк multipart-формой
func (c *HTTPClient) UploadChunk(ctx context.Context, meta storage.ChunkMeta, data []byte) (*storage.ChunkAck, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := [][2]string{
		{"name", meta.Name},
		{"hash", meta.Hash},
		{"size", strconv.FormatInt(meta.Size, 10)},
		{"path", meta.Path},
		{"chunkCount", strconv.Itoa(meta.ChunkCount)},
		{"chunkIndex", strconv.Itoa(meta.ChunkIndex)},
		{"chunkHash", meta.ChunkHash},
		{"modifiedTime", meta.ModifiedTime},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	part, err := writer.CreateFormFile("file", meta.Name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/file/upload", body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var ack storage.ChunkAck
	if _, err := c.call(req, &ack); err != nil {
		return nil, fmt.Errorf("upload chunk %d: %w", meta.ChunkIndex, err)
	}
	return &ack, nil
}

// Merge просит сервер собрать файл; возвращает MERGED или EXIST
func (c *HTTPClient) Merge(ctx context.Context, hash string) (string, error) {
	return c.postJSON(ctx, "/api/file/merge", map[string]string{"fileHash": hash}, nil)
}

// List метаданные всех файлов
func (c *HTTPClient) List(ctx context.Context) ([]metastore.FileRecord, error) {
	var files []metastore.FileRecord
	_, err := c.get(ctx, "/api/file/all", &files)
	return files, err
}

// Info метаданные одного файла
func (c *HTTPClient) Info(ctx context.Context, hash string) (*metastore.FileRecord, error) {
	var rec metastore.FileRecord
	if _, err := c.get(ctx, "/api/file/info?"+url.Values{"hash": {hash}}.Encode(), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdatePermission меняет режим доступа
func (c *HTTPClient) UpdatePermission(ctx context.Context, hash string, role metastore.Role) error {
	_, err := c.postJSON(ctx, "/api/file/update-permission", map[string]string{"fileHash": hash, "role": string(role)}, nil)
	return err
}

// GenerateKey получает новый ключ доступа
func (c *HTTPClient) GenerateKey(ctx context.Context, hash string) (string, error) {
	var key string
	_, err := c.postJSON(ctx, "/api/file/generate-key", map[string]string{"fileHash": hash}, &key)
	return key, err
}

// Delete удаляет файл на сервере
func (c *HTTPClient) Delete(ctx context.Context, hash string) error {
	_, err := c.postJSON(ctx, "/api/file/delete", map[string]string{"fileHash": hash}, nil)
	return err
}

// Read скачивает готовый файл в w
func (c *HTTPClient) Read(ctx context.Context, hash, key string, w io.Writer) (int64, error) {
	q := url.Values{"hash": {hash}}
	if key != "" {
		q.Set("key", key)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/file/read?"+q.Encode(), nil, "")
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return 0, fmt.Errorf("failed to read file: %d", resp.StatusCode)
		}
		return 0, &APIError{Status: resp.StatusCode, Code: env.Message}
	}

	return io.Copy(w, resp.Body)
}
