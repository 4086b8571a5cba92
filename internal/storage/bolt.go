package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const documentBucket = "documents"

// ErrLocked indicates another process holds the database file.
var ErrLocked = errors.New("store is locked by another process")

// BoltStore provides a BoltDB-backed document store.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens a BoltDB-backed store at the provided path.
func OpenBolt(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("open storage db: %w", ErrLocked)
		}
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &BoltStore{db: db}
	if err := store.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Load fetches the document stored under key.
func (store *BoltStore) Load(key string) ([]byte, bool, error) {
	if store == nil || store.db == nil {
		return nil, false, ErrClosed
	}

	var value []byte
	err := store.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		if bucket == nil {
			return fmt.Errorf("document bucket is missing")
		}
		// Bolt values are only valid for the life of the transaction.
		if payload := bucket.Get([]byte(key)); payload != nil {
			value = append([]byte(nil), payload...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return value, value != nil, nil
}

// Save persists value under key.
func (store *BoltStore) Save(key string, value []byte) error {
	if store == nil || store.db == nil {
		return ErrClosed
	}
	return store.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		if bucket == nil {
			return fmt.Errorf("document bucket is missing")
		}
		return bucket.Put([]byte(key), value)
	})
}

// Close closes the underlying BoltDB database.
func (store *BoltStore) Close() error {
	if store == nil || store.db == nil {
		return nil
	}
	err := store.db.Close()
	store.db = nil
	return err
}

func (store *BoltStore) ensureBucket() error {
	return store.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(documentBucket)); err != nil {
			return fmt.Errorf("create document bucket: %w", err)
		}
		return nil
	})
}
