// Package kvstore provides a small embedded key-value store backed by
// BadgerDB, used for idempotent suggestion-dismissal flags and the
// append-only adaptation feedback log.
package kvstore

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a BadgerDB instance behind a string getItem/setItem contract.
type Store struct {
	db *badger.DB
}

// Options configures a Store.
type Options struct {
	// Path is the directory for the database files. Ignored when InMemory.
	Path string
	// InMemory disables disk persistence. Useful for tests.
	InMemory bool
}

// Open opens (or creates) the store at the configured path.
func Open(opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open key-value store: %w", err)
	}
	return &Store{db: db}, nil
}

// GetItem returns the value stored under key. The second return value is
// false when the key does not exist.
func (s *Store) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, overwriting any previous value.
func (s *Store) SetItem(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
