// Package journal keeps the history of asset resyncs in a bbolt database.
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/joshuaeyu/plum/internal/core/domain"
)

const bucketEvents = "events"

// Journal is a bbolt-backed ports.Journal
type Journal struct {
	db *bolt.DB
}

// Open opens (creating if needed) the journal database at path
func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEvents))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the database file lock
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores ev under the next sequence number
func (j *Journal) Append(ctx context.Context, ev domain.SyncEvent) (uint64, error) {
	var seq uint64
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append event: %w", err)
	}
	return seq, nil
}

// Recent returns up to limit events, newest first. A non-empty path keeps
// only events for that path. limit <= 0 means no limit.
func (j *Journal) Recent(ctx context.Context, limit int, path string) ([]domain.SyncEvent, error) {
	var events []domain.SyncEvent
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketEvents)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(events) >= limit {
				break
			}
			var ev domain.SyncEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("corrupt event %d: %w", unmarshalSeq(k), err)
			}
			if path != "" && ev.Path != path {
				continue
			}
			ev.Seq = unmarshalSeq(k)
			events = append(events, ev)
		}
		return nil
	})
	return events, err
}

// Prune deletes all but the newest keep events and returns how many were removed
func (j *Journal) Prune(ctx context.Context, keep int) (int, error) {
	removed := 0
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		c := b.Cursor()

		// Collect first; deleting under a moving cursor skips keys
		var stale [][]byte
		seen := 0
		for k, _ := c.Last(); k != nil; k, _ = c.Prev() {
			seen++
			if seen > keep {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
