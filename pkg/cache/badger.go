/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: badger.go
Description: Embedded on-disk cache backend built on BadgerDB.
*/

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// BadgerConfig configures the embedded store
type BadgerConfig struct {
	// Path is the database directory; required unless InMemory
	Path string
	// InMemory keeps everything in memory, for tests
	InMemory bool
	// SyncWrites fsyncs every write
	SyncWrites bool
	// Logger receives badger's internal logs; nil disables them
	Logger *logrus.Logger
}

// BadgerStore implements Store on a badger database
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens or creates a badger-backed store
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(cfg.Logger)
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemoryBadgerStore opens a throwaway in-memory store
func OpenInMemoryBadgerStore() (*BadgerStore, error) {
	return OpenBadgerStore(BadgerConfig{InMemory: true})
}

// Get returns the cached value or ErrMiss
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from badger: %w", err)
	}
	return out, nil
}

// Put stores a value
func (s *BadgerStore) Put(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write to badger: %w", err)
	}
	return nil
}

// Len counts cached entries
func (s *BadgerStore) Len(context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count badger keys: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
