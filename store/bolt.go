// Package store persists the generation log.
//
// Two backends exist. BoltLog keeps records in an embedded BoltDB file, which
// needs no external database process. SQLiteLog writes the same records to a
// "logs" table so existing tooling that reads the SQLite action database keeps
// working.
//
// Both are append-only: there is no update or delete.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/arkantrust/abassist/models"
)

const bucketName = "logs"

// ErrNotFound is returned when a requested generation record does not exist.
var ErrNotFound = errors.New("generation record not found")

// BoltLog wraps a BoltDB database holding generation records keyed by their
// auto-incremented ID.
type BoltLog struct {
	db *bolt.DB
}

// NewBoltLog opens (or creates) a BoltDB database at the given path and
// ensures the logs bucket exists.
func NewBoltLog(path string) (*BoltLog, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltLog{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltLog) Close() error {
	return s.db.Close()
}

// Append stores rec under the next sequence number of the bucket and returns
// the stored copy with its ID set.
func (s *BoltLog) Append(ctx context.Context, rec *models.GenerationRecord) (*models.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := *rec
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		result.ID = id

		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		return b.Put(itob(id), data)
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Get retrieves a single record by ID.
// Returns ErrNotFound if the key does not exist.
func (s *BoltLog) Get(ctx context.Context, id uint64) (*models.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec models.GenerationRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get(itob(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// itob encodes id big-endian so bolt's byte ordering matches insert order.
func itob(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}
