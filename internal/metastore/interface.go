package metastore

import "errors"

// ErrNotFound возвращается, когда записи для хеша нет
var ErrNotFound = errors.New("not found")

// Role режим доступа к файлу на чтение
type Role string

const (
	RolePublic Role = "public" // читать может любой
	RoleKey    Role = "key"    // чтение только с ключом доступа
)

// Valid сообщает, известен ли режим доступа
func (r Role) Valid() bool {
	return r == RolePublic || r == RoleKey
}

// ChunkInfo описывает принятый чанк файла
type ChunkInfo struct {
	Index int    `json:"index"`
	Hash  string `json:"hash"`
}

// FileRecord метаданные файла, одна запись на хеш содержимого
type FileRecord struct {
	Type         string      `json:"type"`
	Hash         string      `json:"hash"`
	Name         string      `json:"name"`
	Path         string      `json:"path"` // подкаталог внутри корня готовых файлов
	Role         Role        `json:"role"`
	Key          string      `json:"key,omitempty"`
	Size         int64       `json:"size"`
	ChunkCount   int         `json:"chunkCount"`
	Chunks       []ChunkInfo `json:"chunks"`
	ModifiedTime string      `json:"modifiedTime"`
}

// HasChunk проверяет, принят ли уже чанк с данным индексом
func (r *FileRecord) HasChunk(index int) bool {
	for _, c := range r.Chunks {
		if c.Index == index {
			return true
		}
	}
	return false
}

// Complete все объявленные чанки получены.
// Признак вычисляемый и в записи не хранится.
func (r *FileRecord) Complete() bool {
	return len(r.Chunks) == r.ChunkCount
}

// MetaStore интерфейс для хранения метаданных.
// Put перезаписывает запись целиком, частичных обновлений нет.
type MetaStore interface {
	// Get возвращает запись или ErrNotFound
	Get(hash string) (*FileRecord, error)

	// Put сохраняет запись целиком
	Put(record *FileRecord) error

	// Delete удаляет запись; отсутствие записи ошибкой не считается
	Delete(hash string) error

	// List возвращает все записи
	List() ([]*FileRecord, error)

	// Close закрывает хранилище
	Close() error
}
