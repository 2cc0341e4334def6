package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var bucketDocuments = []byte("documents")

// BoltStore is a disk-backed cache that survives restarts of a single
// instance. Values are an 8-byte big-endian expiry (unix nanoseconds)
// followed by the document bytes.
type BoltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// OpenBoltStore opens or creates the cache file at path.
func OpenBoltStore(path string, ttl time.Duration) (*BoltStore, error) {
	db, err := bolt.Open(filepath.Clean(path), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocuments)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}
	return &BoltStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (b *BoltStore) Close() error { return b.db.Close() }

func (b *BoltStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDocuments).Get([]byte(key))
		if len(v) < 8 {
			return nil
		}
		if b.now().UnixNano() >= int64(binary.BigEndian.Uint64(v[:8])) {
			return nil
		}
		// v is only valid inside the transaction.
		out = bytes.Clone(v[8:])
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (b *BoltStore) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(v[:8], uint64(b.now().Add(b.ttl).UnixNano()))
	copy(v[8:], data)
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(key), v)
	})
}

// GC deletes expired entries and returns how many were removed.
func (b *BoltStore) GC() (int, error) {
	now := b.now().UnixNano()
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDocuments).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) < 8 || int64(binary.BigEndian.Uint64(v[:8])) <= now {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}
