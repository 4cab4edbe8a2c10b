// Package store provides Badger-backed persistence for the OpenShelf catalog.
// A SQLite backend with the same surface lives in the sqlite subpackage; the
// service layer depends on neither directly, only on its own interface.
package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store provides key-value persistence for the catalog using BadgerDB.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates a new Badger store at the given path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty; we log at the store level

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
