package api

import (
	"net/http"
)

type healthData struct {
	Status     string `json:"status"`
	Files      int    `json:"files"`
	Chunks     int    `json:"chunks"`
	ChunkBytes int64  `json:"chunkBytes"`
	FreeSpace  uint64 `json:"freeSpace"`
}

// Health состояние узла: число файлов и чанков, свободное место в каталоге файлов
func (h *FileHandler) Health(w http.ResponseWriter, r *http.Request) {
	u, err := h.Storage.Usage(r.Context())
	if err != nil {
		h.Log.Error(r.Context(), "usage", "error", err)
		writeError(w, err)
		return
	}

	free, err := diskFree(h.Storage.FileDir())
	if err != nil {
		h.Log.Warn(r.Context(), "statfs", "dir", h.Storage.FileDir(), "error", err)
	}

	writeOK(w, "OK", healthData{
		Status:     "online",
		Files:      u.Files,
		Chunks:     u.Chunks,
		ChunkBytes: u.ChunkBytes,
		FreeSpace:  free,
	})
}
