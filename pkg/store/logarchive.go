package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cuemby/livestatus/pkg/types"
	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

var bucketLog = []byte("log")

// BoltLogStore archives log events in a BoltDB file so the log table
// survives restarts. Keys are big-endian sequence numbers, which keeps the
// bucket in ingestion order.
type BoltLogStore struct {
	db    *bolt.DB
	limit int
	count atomic.Int64
}

// NewBoltLogStore opens (or creates) the archive at path. With a positive
// limit the oldest events are pruned on append.
func NewBoltLogStore(path string, limit int) (*BoltLogStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open log archive: %w", err)
	}

	var count int
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketLog)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketLog, err)
		}
		count = b.Stats().KeyN
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltLogStore{db: db, limit: limit}
	s.count.Store(int64(count))
	return s, nil
}

// Append stores ev under the next bucket sequence
func (s *BoltLogStore) Append(ev *types.LogEvent) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLog)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return err
		}
		n := s.count.Load() + 1

		if s.limit > 0 && n > int64(s.limit) {
			var stale [][]byte
			c := b.Cursor()
			for k, _ := c.First(); k != nil && n-int64(len(stale)) > int64(s.limit); k, _ = c.Next() {
				stale = append(stale, append([]byte(nil), k...))
			}
			for _, k := range stale {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			n -= int64(len(stale))
		}
		s.count.Store(n)
		return nil
	})
}

// Events reads the whole archive in ingestion order
func (s *BoltLogStore) Events() ([]*types.LogEvent, error) {
	var out []*types.LogEvent
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLog)
		return b.ForEach(func(k, v []byte) error {
			var ev types.LogEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}
			out = append(out, &ev)
			return nil
		})
	})
	return out, err
}

// Len returns the number of archived events
func (s *BoltLogStore) Len() int {
	return int(s.count.Load())
}

// Reset empties the archive
func (s *BoltLogStore) Reset() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketLog); err != nil && !errors.Is(err, bolterrors.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketLog)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to reset log archive: %w", err)
	}
	s.count.Store(0)
	return nil
}

// Close closes the database
func (s *BoltLogStore) Close() error {
	return s.db.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
