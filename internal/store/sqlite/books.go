package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

const bookColumns = `b.id, b.created_at, b.updated_at, b.deleted_at, b.title, b.author, b.summary`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		author    sql.NullString
		summary   sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&b.Title,
		&author,
		&summary,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	b.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	b.Author = author.String
	b.Summary = summary.String

	return &b, nil
}

// CreateBook inserts a new book. Genre associations are managed separately
// via SetBookGenres.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, deleted_at, title, author, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		nullTimeString(b.DeletedAt),
		b.Title,
		nullString(b.Author),
		nullString(b.Summary),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID with its genre IDs populated.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books b WHERE b.id = ? AND b.deleted_at IS NULL`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, err
	}

	b.GenreIDs, err = s.GetBookGenres(ctx, id)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SetBookGenres replaces the book's genre associations with the given set.
func (s *Store) SetBookGenres(ctx context.Context, bookID string, genreIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM book_genres WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear book genres: %w", err)
	}
	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_genres (book_id, genre_id) VALUES (?, ?)`, bookID, gid); err != nil {
			return fmt.Errorf("insert book genre %s: %w", gid, err)
		}
	}

	return tx.Commit()
}

// GetBookGenres returns the genre IDs associated with a book.
func (s *Store) GetBookGenres(ctx context.Context, bookID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT genre_id FROM book_genres WHERE book_id = ? ORDER BY genre_id`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
