package api

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/Gammanik/resource-storage/internal/logging"
	"github.com/Gammanik/resource-storage/internal/metastore"
	"github.com/Gammanik/resource-storage/internal/storage"
)

// FileHandler обрабатывает запросы /api/file/*
type FileHandler struct {
	Storage       *storage.Service
	MaxChunkBytes int64
	Log           logging.Logger
}

type hashRequest struct {
	FileHash string `json:"fileHash"`
}

type permissionRequest struct {
	FileHash string         `json:"fileHash"`
	Role     metastore.Role `json:"role"`
}

// Read отдает готовый файл. Для файлов с режимом key нужен параметр key.
func (h *FileHandler) Read(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rec, f, err := h.Storage.ResolveRead(r.Context(), q.Get("hash"), q.Get("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.Log.Error(r.Context(), "stat file", "hash", rec.Hash, "error", err)
		writeError(w, err)
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(rec.Name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", "inline; filename*=UTF-8''"+url.PathEscape(rec.Name))

	http.ServeContent(w, r, rec.Name, info.ModTime(), f)
}

// Upload принимает один чанк: multipart с частью file и полями метаданных
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// запас на поля формы сверх самого чанка
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxChunkBytes+64<<10)
	if err := r.ParseMultipartForm(h.MaxChunkBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, errChunkTooBig)
			return
		}
		writeError(w, errBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errNoFile)
		return
	}
	defer file.Close()

	if header.Size > h.MaxChunkBytes {
		writeError(w, errChunkTooBig)
		return
	}

	meta, err := chunkMetaFromForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ack, err := h.Storage.AcceptChunk(r.Context(), meta, file)
	if err != nil {
		h.Log.Warn(r.Context(), "chunk rejected", "hash", meta.Hash, "index", meta.ChunkIndex, "error", err)
		writeError(w, err)
		return
	}

	writeOK(w, "CHUNK_UPLOADED", ack)
}

func chunkMetaFromForm(r *http.Request) (storage.ChunkMeta, error) {
	size, err1 := strconv.ParseInt(r.FormValue("size"), 10, 64)
	count, err2 := strconv.Atoi(r.FormValue("chunkCount"))
	index, err3 := strconv.Atoi(r.FormValue("chunkIndex"))
	if err := errors.Join(err1, err2, err3); err != nil {
		return storage.ChunkMeta{}, errBadRequest
	}

	return storage.ChunkMeta{
		Name:         r.FormValue("name"),
		Hash:         r.FormValue("hash"),
		Size:         size,
		Path:         r.FormValue("path"),
		ChunkCount:   count,
		ChunkIndex:   index,
		ChunkHash:    r.FormValue("chunkHash"),
		ModifiedTime: r.FormValue("modifiedTime"),
	}, nil
}

// InitUpload сообщает состояние загрузки: message содержит статус, data список недостающих чанков
func (h *FileHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	var req hashRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	st, err := h.Storage.CheckStatus(r.Context(), req.FileHash)
	if err != nil {
		writeError(w, err)
		return
	}

	var missing any = st.Missing
	if st.State == storage.StateNotExist {
		missing = "all"
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: string(st.State), Data: missing})
}

// Merge собирает файл из загруженных чанков
func (h *FileHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req hashRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.Storage.Merge(r.Context(), req.FileHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, string(res), nil)
}

// List возвращает метаданные всех файлов
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.Storage.ListAll(r.Context())
	if err != nil {
		h.Log.Error(r.Context(), "list files", "error", err)
		writeError(w, err)
		return
	}
	if files == nil {
		files = []*metastore.FileRecord{}
	}
	writeOK(w, "FILES", files)
}

// Info возвращает метаданные одного файла
func (h *FileHandler) Info(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Storage.Get(r.Context(), r.URL.Query().Get("hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "FILE", rec)
}

// UpdatePermission меняет режим доступа public/key
func (h *FileHandler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Storage.UpdatePermission(r.Context(), req.FileHash, req.Role); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "UPDATED", nil)
}

// GenerateKey выдает новый ключ доступа
func (h *FileHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	var req hashRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	key, err := h.Storage.GenerateKey(r.Context(), req.FileHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "KEY_GENERATED", key)
}

// Delete удаляет файл, его чанки и метаданные
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req hashRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Storage.Delete(r.Context(), req.FileHash); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "DELETED", nil)
}
