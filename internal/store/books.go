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

// Key prefixes for book storage and the book-genre association.
const (
	bookPrefix      = "book:"
	bookGenrePrefix = "idx:book:genre:" // bookID:genreID -> empty
	genreBookPrefix = "idx:genre:book:" // genreID:bookID -> empty
)

// CreateBook inserts a new book record.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + b.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists.WithMessage("book id already exists")
		}
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
}

// GetBook retrieves a book by ID with its genre IDs populated.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b domain.Book
	key := []byte(bookPrefix + id)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound.WithMessage("book not found")
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &b)
		})
	})
	if err != nil {
		return nil, err
	}
	if b.IsDeleted() {
		return nil, ErrNotFound.WithMessage("book not found")
	}

	genreIDs, err := s.GetBookGenres(ctx, id)
	if err != nil {
		return nil, err
	}
	b.GenreIDs = genreIDs
	return &b, nil
}

// SetBookGenres replaces all genre associations for a book.
func (s *Store) SetBookGenres(ctx context.Context, bookID string, genreIDs []string) error {
	current, err := s.GetBookGenres(ctx, bookID)
	if err != nil {
		return err
	}

	newSet := make(map[string]bool, len(genreIDs))
	for _, gid := range genreIDs {
		newSet[gid] = true
	}
	currentSet := make(map[string]bool, len(current))
	for _, gid := range current {
		currentSet[gid] = true
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, gid := range current {
			if newSet[gid] {
				continue
			}
			if err := txn.Delete(assocKey(bookGenrePrefix, bookID, gid)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Delete(assocKey(genreBookPrefix, gid, bookID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		for _, gid := range genreIDs {
			if currentSet[gid] {
				continue
			}
			if err := txn.Set(assocKey(bookGenrePrefix, bookID, gid), []byte{}); err != nil {
				return err
			}
			if err := txn.Set(assocKey(genreBookPrefix, gid, bookID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBookGenres returns all genre IDs associated with a book.
func (s *Store) GetBookGenres(ctx context.Context, bookID string) ([]string, error) {
	return s.scanAssoc(ctx, bookGenrePrefix, bookID)
}

// ListBooksByGenre returns all live books referencing the genre, sorted by
// title. An empty result is the benign "no books in this genre" case, not an
// error; the caller decides whether it unblocks a delete.
func (s *Store) ListBooksByGenre(ctx context.Context, genreID string) ([]*domain.Book, error) {
	bookIDs, err := s.scanAssoc(ctx, genreBookPrefix, genreID)
	if err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(bookIDs))
	for _, id := range bookIDs {
		b, err := s.GetBook(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		books = append(books, b)
	}

	slices.SortFunc(books, func(a, b *domain.Book) int {
		return strings.Compare(a.Title, b.Title)
	})
	return books, nil
}

// assocKey builds an association index key: prefix + left + ":" + right.
func assocKey(prefix, left, right string) []byte {
	return []byte(prefix + left + ":" + right)
}

// scanAssoc returns the right-hand IDs of all association keys under
// prefix + left + ":".
func (s *Store) scanAssoc(ctx context.Context, keyPrefix, left string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := keyPrefix + left + ":"
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, prefix))
		}
		return nil
	})
	return ids, err
}
