package store

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"

	"github.com/cafedesk/cafedesk/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// headerKey sorts before every sequence key, so cursors meet it first.
var headerKey = []byte{0}

// boltBackend keeps one bucket per collection; rows live under big-endian
// sequence keys so a cursor walks them in insertion order.
type boltBackend struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt database file at path.
func NewBoltStore(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return newRecordStore(&boltBackend{db: db}), nil
}

func (b *boltBackend) name() string { return "bolt" }

func (b *boltBackend) read(_ context.Context, s domain.Schema) ([]domain.Row, error) {
	var rows []domain.Row
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(s.Name))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(k) == 1 && k[0] == headerKey[0] {
				continue
			}
			var row domain.Row
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

func (b *boltBackend) write(_ context.Context, s domain.Schema, rows []domain.Row) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(s.Name)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(s.Name))
		if err != nil {
			return err
		}
		if err := putHeader(bucket, s); err != nil {
			return err
		}
		for _, row := range rows {
			if err := putRow(bucket, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *boltBackend) appendRow(_ context.Context, s domain.Schema, row domain.Row) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(s.Name))
		if err != nil {
			return err
		}
		if bucket.Get(headerKey) == nil {
			if err := putHeader(bucket, s); err != nil {
				return err
			}
		}
		return putRow(bucket, row)
	})
}

func (b *boltBackend) close() error {
	return b.db.Close()
}

func putHeader(bucket *bolt.Bucket, s domain.Schema) error {
	data, err := json.Marshal(s.Fields)
	if err != nil {
		return err
	}
	return bucket.Put(headerKey, data)
}

func putRow(bucket *bolt.Bucket, row domain.Row) error {
	seq, err := bucket.NextSequence()
	if err != nil {
		return err
	}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return bucket.Put(key, data)
}
