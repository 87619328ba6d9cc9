// Package memory implements db.Store on an in-memory badger database, for
// single-instance deployments and tests. Data does not survive a restart.
package memory

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/itemfilter/internal/db"
)

var _ db.Store = (*Store)(nil)

// globMeta lists the characters that end the literal prefix of a glob.
const globMeta = `*?[\`

// Store wraps an in-memory badger instance.
type Store struct {
	db *badger.DB
}

// NewStore opens an empty in-memory store.
func NewStore() (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithNumVersionsToKeep(1).
		WithLogger(nil)

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Ping fails once the store is closed.
func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: badger.ErrDBClosed}
	}
	return nil
}

// Close releases the database and all data in it.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Get retrieves a copy of the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, wrap(db.OpGet, err)
	}
	return value, nil
}

// Set stores value without expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value))
	})
	return wrap(db.OpSet, err)
}

// SetWithTTL stores value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	return wrap(db.OpSet, err)
}

// Expire rewrites an existing key with a new TTL.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	return wrap(db.OpExpire, err)
}

// Del deletes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return wrap(db.OpDel, err)
}

// Exists reports whether key holds a live value.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
}

// Scan returns live keys matching a glob pattern in key order. Only keys
// under the pattern's literal prefix are visited.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	prefix := []byte(pattern)
	if i := strings.IndexAny(pattern, globMeta); i >= 0 {
		prefix = prefix[:i]
	}

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().KeyCopy(nil))
			if ok, _ := path.Match(pattern, key); ok {
				keys = append(keys, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}

// wrap maps badger's missing-key error to db.ErrKeyNotFound and tags the rest.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return db.ErrKeyNotFound
	default:
		return &db.Error{Op: op, Err: err}
	}
}
