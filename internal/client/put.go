package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Gammanik/resource-storage/internal/storage"
	"github.com/Gammanik/resource-storage/internal/utils"
)

// PutOptions параметры загрузки файла
type PutOptions struct {
	RemotePath string // каталог на сервере, по умолчанию "./"
	ChunkSize  int64  // по умолчанию utils.DefaultChunkSize
	// Progress вызывается после каждого отправленного чанка
	Progress func(sent, total int)
}

// PutResult итог загрузки
type PutResult struct {
	Hash     string
	Result   string // MERGED или EXIST
	Uploaded int
	Skipped  int
}

// PutFile загружает локальный файл с докачкой: считает SHA-256 файла,
// спрашивает у сервера недостающие чанки, отправляет только их и
// запрашивает слияние. Повторный вызов после обрыва продолжает с того же места.
func (c *HTTPClient) PutFile(ctx context.Context, path string, opts PutOptions) (*PutResult, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = utils.DefaultChunkSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	hash, err := utils.CalculateFileSHA256(f)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}

	size := info.Size()
	count := utils.ChunkCount(size, chunkSize)

	st, err := c.InitUpload(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("init upload: %w", err)
	}

	var todo []int
	switch {
	case st.All:
		todo = make([]int, count)
		for i := range todo {
			todo[i] = i
		}
	case st.State == string(storage.StateMissing):
		// докачка возможна только с тем же разбиением, что и у начатой загрузки
		rec, err := c.Info(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("file info: %w", err)
		}
		if rec.ChunkCount != count || rec.Size != size {
			return nil, fmt.Errorf("server expects %d chunks for %d bytes, file has %d chunks of %d bytes",
				rec.ChunkCount, rec.Size, count, chunkSize)
		}
		todo = st.Missing
	}

	c.log.Info(ctx, "upload", "file", path, "hash", hash, "chunks", count, "toSend", len(todo))

	meta := storage.ChunkMeta{
		Name:         filepath.Base(path),
		Hash:         hash,
		Size:         size,
		Path:         opts.RemotePath,
		ChunkCount:   count,
		ModifiedTime: strconv.FormatInt(info.ModTime().UnixMilli(), 10),
	}

	buf := make([]byte, chunkSize)
	for n, index := range todo {
		start, end := utils.ChunkRange(index, size, chunkSize)
		data := buf[:end-start]
		if _, err := io.ReadFull(io.NewSectionReader(f, start, end-start), data); err != nil {
			return nil, fmt.Errorf("read chunk %d: %w", index, err)
		}

		meta.ChunkIndex = index
		meta.ChunkHash = utils.CalculateSHA256(data)
		if _, err := c.UploadChunk(ctx, meta, data); err != nil {
			return nil, err
		}

		if opts.Progress != nil {
			opts.Progress(n+1, len(todo))
		}
	}

	res, err := c.Merge(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	return &PutResult{Hash: hash, Result: res, Uploaded: len(todo), Skipped: count - len(todo)}, nil
}
