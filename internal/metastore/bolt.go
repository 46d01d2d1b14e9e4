// internal/metastore/bolt.go
package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var filesBucket = []byte("files")

// BoltStore реализация MetaStore на основе BoltDB.
// Запись хранится в бакете files под ключом хеша в виде JSON.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore открывает (или создает) базу метаданных по пути path
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(filesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Get возвращает метаданные о файле
func (bs *BoltStore) Get(hash string) (*FileRecord, error) {
	var rec FileRecord

	err := bs.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(filesBucket).Get([]byte(hash))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// Put сохраняет запись целиком
func (bs *BoltStore) Put(rec *FileRecord) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(filesBucket).Put([]byte(rec.Hash), encoded)
	})
}

// Delete удаляет запись
func (bs *BoltStore) Delete(hash string) error {
	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(filesBucket).Delete([]byte(hash))
	})
}

// List возвращает все записи в порядке ключей
func (bs *BoltStore) List() ([]*FileRecord, error) {
	var result []*FileRecord

	err := bs.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(filesBucket).ForEach(func(k, v []byte) error {
			var rec FileRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode meta %s: %w", k, err)
			}
			result = append(result, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Close закрывает хранилище
func (bs *BoltStore) Close() error {
	return bs.db.Close()
}
