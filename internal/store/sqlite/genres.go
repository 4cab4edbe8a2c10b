package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

// genreColumns is the ordered list of columns selected in genre queries.
// Must match the scan order in scanGenre.
const genreColumns = `id, created_at, updated_at, deleted_at, name`

// scanGenre scans a sql.Row (or sql.Rows via its Scan method) into a domain.Genre.
func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var g domain.Genre

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := scanner.Scan(
		&g.ID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&g.Name,
	)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	g.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// CreateGenre inserts a new genre.
// Returns store.ErrAlreadyExists if the id or a live genre with the same
// name already exists; the partial unique index is the authoritative guard,
// service-level pre-checks are a fast path only.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO genres (id, created_at, updated_at, deleted_at, name)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
		nullTimeString(g.DeletedAt),
		g.Name,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("genre name already exists")
		}
		return err
	}
	return nil
}

// GetGenre retrieves a genre by ID, excluding soft-deleted records.
// Returns store.ErrNotFound if the genre does not exist.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id = ? AND deleted_at IS NULL`, id)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("genre not found")
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGenreByName retrieves a live genre by exact name. Matching is
// case-sensitive: SQLite TEXT comparison is binary unless a collation says
// otherwise, and the schema deliberately says nothing.
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE name = ? AND deleted_at IS NULL`, name)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("genre not found")
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGenres returns all non-deleted genres sorted by name.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE deleted_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}

// UpdateGenreName renames a genre in place and returns the updated record.
// Returns store.ErrNotFound if the genre vanished, store.ErrAlreadyExists if
// the unique index rejects the new name (the lifecycle layer performs no
// uniqueness pre-check on update).
func (s *Store) UpdateGenreName(ctx context.Context, id, name string) (*domain.Genre, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE genres SET name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		name,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, store.ErrAlreadyExists.WithMessage("genre name already exists")
		}
		return nil, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, store.ErrNotFound.WithMessage("genre not found")
	}

	return s.GetGenre(ctx, id)
}

// DeleteGenre performs a soft delete by setting deleted_at and updated_at.
// Returns store.ErrNotFound if the genre does not exist or is already deleted.
func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	now := formatTime(time.Now())

	result, err := s.db.ExecContext(ctx, `
		UPDATE genres SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("genre not found")
	}
	return nil
}

// ListBooksByGenre returns all live books referencing the genre, sorted by
// title, with title and summary populated. An empty slice is the benign
// "no books in this genre" case.
func (s *Store) ListBooksByGenre(ctx context.Context, genreID string) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+`
		FROM books b
		JOIN book_genres bg ON bg.book_id = b.id
		WHERE bg.genre_id = ? AND b.deleted_at IS NULL
		ORDER BY b.title ASC`, genreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}
