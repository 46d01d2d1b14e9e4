// Package storage реализует протокол докачиваемой загрузки файла чанками:
// прием чанков, вычисление недостающих, слияние в итоговый файл, права
// доступа и удаление.
//
// Все изменения метаданных одного файла и его слияние сериализуются
// блокировкой по хешу; запись байтов чанков не блокируется.
package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Gammanik/resource-storage/internal/chunkstore"
	"github.com/Gammanik/resource-storage/internal/logging"
	"github.com/Gammanik/resource-storage/internal/metastore"
	"github.com/google/uuid"
)

const (
	recordType  = "file"
	defaultPath = "./"
)

// MaxChunkCount предел объявленного числа чанков одного файла
const MaxChunkCount = 1 << 20

// Options зависимости сервиса
type Options struct {
	Meta    metastore.MetaStore
	Chunks  *chunkstore.Store
	FileDir string // корень готовых файлов

	// VerifyChunks включает сверку SHA-256 принятых байтов с chunkHash
	VerifyChunks bool

	Logger logging.Logger
	Now    func() time.Time
	NewKey func() string
}

// Service файловое хранилище с загрузкой чанками
type Service struct {
	meta         metastore.MetaStore
	chunks       *chunkstore.Store
	fileDir      string
	verifyChunks bool

	log    logging.Logger
	now    func() time.Time
	newKey func() string

	locks *keyedMutex
}

// New создает сервис. Каталог готовых файлов создается при необходимости.
func New(opts Options) (*Service, error) {
	if opts.Meta == nil || opts.Chunks == nil {
		return nil, fmt.Errorf("storage: meta and chunk stores are required")
	}
	if opts.FileDir == "" {
		return nil, fmt.Errorf("storage: file dir is required")
	}
	if err := os.MkdirAll(opts.FileDir, 0o755); err != nil {
		return nil, fmt.Errorf("create file dir %s: %w", opts.FileDir, err)
	}

	s := &Service{
		meta:         opts.Meta,
		chunks:       opts.Chunks,
		fileDir:      opts.FileDir,
		verifyChunks: opts.VerifyChunks,
		log:          opts.Logger,
		now:          opts.Now,
		newKey:       opts.NewKey,
		locks:        newKeyedMutex(),
	}
	if s.log == nil {
		s.log = logging.Nop{}
	}
	s.log = s.log.With("module", "storage")
	if s.now == nil {
		s.now = time.Now
	}
	if s.newKey == nil {
		s.newKey = uuid.NewString
	}
	return s, nil
}

// FileDir корень готовых файлов
func (s *Service) FileDir() string {
	return s.fileDir
}

// ListAll возвращает метаданные всех файлов
func (s *Service) ListAll(ctx context.Context) ([]*metastore.FileRecord, error) {
	list, err := s.meta.List()
	if err != nil {
		return nil, fmt.Errorf("list meta: %w", err)
	}
	return list, nil
}

// Get возвращает метаданные одного файла
func (s *Service) Get(ctx context.Context, hash string) (*metastore.FileRecord, error) {
	if err := validateHash(hash); err != nil {
		return nil, err
	}
	return s.meta.Get(hash)
}

// Usage сводка по занятому месту
type Usage struct {
	Files      int   `json:"files"`
	Chunks     int   `json:"chunks"`
	ChunkBytes int64 `json:"chunkBytes"`
}

// Usage считает файлы в метаданных и чанки на диске
func (s *Service) Usage(ctx context.Context) (*Usage, error) {
	files, err := s.meta.List()
	if err != nil {
		return nil, fmt.Errorf("list meta: %w", err)
	}
	count, size, err := s.chunks.Stats()
	if err != nil {
		return nil, fmt.Errorf("chunk stats: %w", err)
	}
	return &Usage{Files: len(files), Chunks: count, ChunkBytes: size}, nil
}
