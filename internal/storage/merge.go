package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Gammanik/resource-storage/internal/metastore"
)

// MergeResult итог слияния
type MergeResult string

const (
	Merged        MergeResult = "MERGED"
	AlreadyExists MergeResult = "EXIST"
)

// Merge собирает готовый файл из чанков в порядке индексов.
//
// Если итоговый файл уже есть, возвращается AlreadyExists без обращения к
// чанкам. Файл собирается во временном файле рядом с итоговым и
// переименовывается только после записи всех чанков; при любой ошибке
// временный файл удаляется. После успеха чанки удаляются, ошибки удаления
// только пишутся в лог.
func (s *Service) Merge(ctx context.Context, hash string) (MergeResult, error) {
	if err := validateHash(hash); err != nil {
		return "", err
	}

	unlock := s.locks.Lock(hash)
	defer unlock()

	rec, err := s.meta.Get(hash)
	if errors.Is(err, metastore.ErrNotFound) {
		return "", ErrMetaNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load meta %s: %w", hash, err)
	}

	if !rec.Complete() {
		return "", ErrChunkIncomplete
	}

	dst, err := s.finalPath(rec.Path, rec.Name)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dst); err == nil {
		return AlreadyExists, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", dst, err)
	}

	chunks := append([]metastore.ChunkInfo(nil), rec.Chunks...)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	for i, c := range chunks {
		if c.Index != i {
			return "", ErrChunkIncomplete
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", dst, err)
	}

	written, err := s.writeMerged(dst, hash, chunks)
	if err != nil {
		s.log.Error(ctx, "merge failed", "hash", hash, "error", err)
		return "", err
	}

	s.removeChunks(ctx, hash, chunks)

	s.log.Info(ctx, "file merged", "hash", hash, "path", dst, "bytes", written, "chunks", len(chunks))
	return Merged, nil
}

func (s *Service) writeMerged(dst, hash string, chunks []metastore.ChunkInfo) (written int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create merge file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	for _, c := range chunks {
		n, err := s.appendChunk(tmp, hash, c.Index)
		if err != nil {
			return written, err
		}
		written += n
	}

	if err = tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync merge file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return written, fmt.Errorf("close merge file: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return written, fmt.Errorf("rename merge file: %w", err)
	}
	return written, nil
}

func (s *Service) appendChunk(w io.Writer, hash string, index int) (int64, error) {
	f, err := s.chunks.Open(hash, index)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, &MissingChunkError{Index: index}
	}
	if err != nil {
		return 0, fmt.Errorf("open chunk %d: %w", index, err)
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("copy chunk %d: %w", index, err)
	}
	return n, nil
}

func (s *Service) removeChunks(ctx context.Context, hash string, chunks []metastore.ChunkInfo) {
	for _, c := range chunks {
		if err := s.chunks.Remove(hash, c.Index); err != nil {
			s.log.Warn(ctx, "remove chunk", "hash", hash, "index", c.Index, "error", err)
		}
	}
}
