package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/openshelf/openshelf-server/internal/domain"
)

// Key prefixes for genre storage.
const (
	genrePrefix       = "genre:"
	genreByNamePrefix = "idx:genre:name:" // name -> genre ID
)

// CreateGenre creates a new genre. The name index inside the transaction is
// the authoritative uniqueness guard; service-level pre-checks are a fast
// path only. Returns ErrAlreadyExists when a live genre holds the name.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(genrePrefix + g.ID)
	nameKey := []byte(genreByNamePrefix + g.Name)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists.WithMessage("genre id already exists")
		}
		if _, err := txn.Get(nameKey); err == nil {
			return ErrAlreadyExists.WithMessage("genre name already exists")
		}

		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal genre: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(g.ID))
	})
}

// GetGenre retrieves a genre by ID. Soft-deleted genres are not found.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g domain.Genre
	key := []byte(genrePrefix + id)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound.WithMessage("genre not found")
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})
	if err != nil {
		return nil, err
	}

	if g.IsDeleted() {
		return nil, ErrNotFound.WithMessage("genre not found")
	}
	return &g, nil
}

// GetGenreByName retrieves a genre by its exact name (case-sensitive).
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var genreID string
	nameKey := []byte(genreByNamePrefix + name)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound.WithMessage("genre not found")
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			genreID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetGenre(ctx, genreID)
}

// ListGenres returns all live genres sorted by name, so callers see a stable
// order across calls.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var genres []*domain.Genre
	prefix := []byte(genrePrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var g domain.Genre
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &g)
			})
			if err != nil {
				continue
			}
			if !g.IsDeleted() {
				genres = append(genres, &g)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(genres, func(a, b *domain.Genre) int {
		return strings.Compare(a.Name, b.Name)
	})
	return genres, nil
}

// UpdateGenreName renames a genre in place and returns the updated record.
// Returns ErrNotFound if the id vanished, and ErrAlreadyExists if another
// live genre already holds the new name (the index is the authoritative
// guard; the lifecycle layer deliberately performs no pre-check on update).
func (s *Store) UpdateGenreName(ctx context.Context, id, name string) (*domain.Genre, error) {
	g, err := s.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}

	oldName := g.Name
	g.Name = name
	g.Touch()

	err = s.db.Update(func(txn *badger.Txn) error {
		if oldName != name {
			nameKey := []byte(genreByNamePrefix + name)
			if item, err := txn.Get(nameKey); err == nil {
				var holder string
				if err := item.Value(func(val []byte) error {
					holder = string(val)
					return nil
				}); err != nil {
					return err
				}
				if holder != id {
					return ErrAlreadyExists.WithMessage("genre name already exists")
				}
			}

			oldKey := []byte(genreByNamePrefix + oldName)
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(nameKey, []byte(id)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal genre: %w", err)
		}
		return txn.Set([]byte(genrePrefix+id), data)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGenre soft-deletes a genre and drops it from the name index.
// Returns ErrNotFound if the genre does not exist or is already deleted.
func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	g, err := s.GetGenre(ctx, id)
	if err != nil {
		return err
	}

	g.MarkDeleted()

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal genre: %w", err)
		}
		if err := txn.Set([]byte(genrePrefix+id), data); err != nil {
			return err
		}

		nameKey := []byte(genreByNamePrefix + g.Name)
		if err := txn.Delete(nameKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}
