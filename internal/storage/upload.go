package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Gammanik/resource-storage/internal/metastore"
	"github.com/Gammanik/resource-storage/internal/utils"
)

// ChunkMeta метаданные, которые клиент присылает вместе с каждым чанком
type ChunkMeta struct {
	Name         string
	Hash         string
	Size         int64
	Path         string
	ChunkCount   int
	ChunkIndex   int
	ChunkHash    string
	ModifiedTime string
}

// ChunkAck подтверждение приема чанка
type ChunkAck struct {
	ChunkIndex int    `json:"chunkIndex"`
	ChunkHash  string `json:"chunkHash"`
}

// UploadState состояние загрузки файла
type UploadState string

const (
	StateNotExist UploadState = "not-exist"
	StateMissing  UploadState = "missing"
	StateComplete UploadState = "complete"
)

// UploadStatus ответ на запрос состояния загрузки.
// Для неизвестного файла Missing пуст, а в JSON отдается строка "all".
type UploadStatus struct {
	State   UploadState
	Missing []int
}

func (st UploadStatus) MarshalJSON() ([]byte, error) {
	var missing any = st.Missing
	switch {
	case st.State == StateNotExist:
		missing = "all"
	case st.Missing == nil:
		missing = []int{}
	}
	return json.Marshal(struct {
		Status  UploadState `json:"status"`
		Missing any         `json:"missing"`
	}{st.State, missing})
}

// AcceptChunk принимает один чанк файла.
//
// Байты сохраняются в хранилище чанков без блокировки, затем под блокировкой
// хеша запись о файле создается или дополняется индексом чанка. Повторная
// загрузка уже принятого индекса перезаписывает байты, но список чанков не меняет.
func (s *Service) AcceptChunk(ctx context.Context, meta ChunkMeta, data io.Reader) (*ChunkAck, error) {
	if err := validateHash(meta.Hash); err != nil {
		return nil, err
	}
	if meta.Path == "" {
		meta.Path = defaultPath
	}
	if _, err := s.finalPath(meta.Path, meta.Name); err != nil {
		return nil, err
	}
	if err := s.checkChunkIndex(meta); err != nil {
		return nil, err
	}

	var hr *utils.HashingReader
	if s.verifyChunks {
		hr = utils.NewHashingReader(data)
		data = &verifyingReader{hr: hr, want: meta.ChunkHash}
	}

	n, err := s.chunks.Save(meta.Hash, meta.ChunkIndex, data)
	if err != nil {
		if errors.Is(err, ErrChunkHashMismatch) {
			s.log.Warn(ctx, "chunk hash mismatch", "hash", meta.Hash, "index", meta.ChunkIndex,
				"declared", meta.ChunkHash, "actual", hr.Sum())
			return nil, ErrChunkHashMismatch
		}
		return nil, err
	}

	unlock := s.locks.Lock(meta.Hash)
	defer unlock()

	rec, err := s.meta.Get(meta.Hash)
	switch {
	case errors.Is(err, metastore.ErrNotFound):
		rec = &metastore.FileRecord{
			Type:         recordType,
			Hash:         meta.Hash,
			Name:         meta.Name,
			Path:         meta.Path,
			Role:         metastore.RolePublic,
			Size:         meta.Size,
			ChunkCount:   meta.ChunkCount,
			Chunks:       []metastore.ChunkInfo{{Index: meta.ChunkIndex, Hash: meta.ChunkHash}},
			ModifiedTime: s.modifiedTime(meta.ModifiedTime),
		}
		s.log.Info(ctx, "upload started", "hash", meta.Hash, "name", meta.Name, "size", meta.Size,
			"chunkCount", meta.ChunkCount)
	case err != nil:
		return nil, fmt.Errorf("load meta %s: %w", meta.Hash, err)
	case meta.ChunkIndex >= rec.ChunkCount:
		// запись появилась параллельно с другим числом чанков
		if err := s.chunks.Remove(meta.Hash, meta.ChunkIndex); err != nil {
			s.log.Warn(ctx, "remove rejected chunk", "hash", meta.Hash, "index", meta.ChunkIndex, "error", err)
		}
		return nil, ErrInvalidChunk
	case rec.HasChunk(meta.ChunkIndex):
		s.log.Debug(ctx, "chunk re-uploaded", "hash", meta.Hash, "index", meta.ChunkIndex, "bytes", n)
	default:
		rec.Chunks = append(rec.Chunks, metastore.ChunkInfo{Index: meta.ChunkIndex, Hash: meta.ChunkHash})
		rec.ModifiedTime = s.modifiedTime(meta.ModifiedTime)
	}

	if err := s.meta.Put(rec); err != nil {
		return nil, fmt.Errorf("save meta %s: %w", meta.Hash, err)
	}

	s.log.Debug(ctx, "chunk accepted", "hash", meta.Hash, "index", meta.ChunkIndex, "bytes", n,
		"received", len(rec.Chunks), "chunkCount", rec.ChunkCount)

	return &ChunkAck{ChunkIndex: meta.ChunkIndex, ChunkHash: meta.ChunkHash}, nil
}

// checkChunkIndex индекс должен лежать в [0, chunkCount). Для существующей
// записи берется ее chunkCount: объявленные при создании значения не меняются.
func (s *Service) checkChunkIndex(meta ChunkMeta) error {
	if meta.ChunkIndex < 0 {
		return ErrInvalidChunk
	}

	count := meta.ChunkCount
	rec, err := s.meta.Get(meta.Hash)
	switch {
	case err == nil:
		count = rec.ChunkCount
	case !errors.Is(err, metastore.ErrNotFound):
		return fmt.Errorf("load meta %s: %w", meta.Hash, err)
	case !plausibleChunkCount(meta.Size, meta.ChunkCount):
		return ErrInvalidChunk
	}

	if count < 1 || meta.ChunkIndex >= count {
		return ErrInvalidChunk
	}
	return nil
}

// plausibleChunkCount каждый чанк непустого файла содержит хотя бы один байт,
// пустой файл передается одним чанком
func plausibleChunkCount(size int64, count int) bool {
	if size < 0 || count > MaxChunkCount {
		return false
	}
	return int64(count) <= max(size, 1)
}

func (s *Service) modifiedTime(declared string) string {
	if declared != "" {
		return declared
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10)
}

// CheckStatus сообщает, какие чанки файла еще не получены
func (s *Service) CheckStatus(ctx context.Context, hash string) (*UploadStatus, error) {
	if err := validateHash(hash); err != nil {
		return nil, err
	}

	rec, err := s.meta.Get(hash)
	if errors.Is(err, metastore.ErrNotFound) {
		return &UploadStatus{State: StateNotExist}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load meta %s: %w", hash, err)
	}

	if rec.Complete() {
		return &UploadStatus{State: StateComplete, Missing: []int{}}, nil
	}
	return &UploadStatus{State: StateMissing, Missing: missingChunks(rec)}, nil
}

// missingChunks индексы из [0, chunkCount), которых нет среди принятых
func missingChunks(rec *metastore.FileRecord) []int {
	have := make(map[int]struct{}, len(rec.Chunks))
	for _, c := range rec.Chunks {
		have[c.Index] = struct{}{}
	}

	missing := []int{}
	for i := 0; i < rec.ChunkCount; i++ {
		if _, ok := have[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// verifyingReader на EOF сверяет хеш прочитанного с объявленным и вместо EOF
// возвращает ErrChunkHashMismatch, так что чанк не попадает в хранилище
type verifyingReader struct {
	hr   *utils.HashingReader
	want string
}

func (v *verifyingReader) Read(p []byte) (int, error) {
	n, err := v.hr.Read(p)
	if err == io.EOF && v.hr.Sum() != v.want {
		return n, ErrChunkHashMismatch
	}
	return n, err
}
