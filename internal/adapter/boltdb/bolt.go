// Package boltdb implements the local key/value store on a bbolt file.
package boltdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"ketotrack/internal/domain"
)

var bucketKV = []byte("kv")

// Store implements domain.LocalStore using BoltDB.
type Store struct {
	db       *bolt.DB
	maxValue int
}

var _ domain.LocalStore = (*Store)(nil)

// Open opens (creating if needed) ketotrack.db under dataDir. A positive
// maxValue rejects larger values with domain.ErrQuotaExceeded.
func Open(dataDir string, maxValue int) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "ketotrack.db")

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketKV, err)
	}

	return &Store{db: db, maxValue: maxValue}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketKV).Get([]byte(key))
		if data != nil {
			value, found = string(data), true
		}
		return nil
	})
	return value, found, err
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxValue > 0 && len(value) > s.maxValue {
		return fmt.Errorf("set %s (%d bytes): %w", key, len(value), domain.ErrQuotaExceeded)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), []byte(value))
	})
	if errors.Is(err, bolt.ErrValueTooLarge) {
		return fmt.Errorf("set %s: %w", key, domain.ErrQuotaExceeded)
	}
	return err
}
