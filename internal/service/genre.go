package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/errors"
	"github.com/openshelf/openshelf-server/internal/genre"
	"github.com/openshelf/openshelf-server/internal/id"
	"github.com/openshelf/openshelf-server/internal/store"
	"github.com/openshelf/openshelf-server/internal/validation"
)

// GenreStore is the persistence surface the genre lifecycle needs.
// Both store backends satisfy it.
type GenreStore interface {
	GetGenre(ctx context.Context, id string) (*domain.Genre, error)
	GetGenreByName(ctx context.Context, name string) (*domain.Genre, error)
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
	CreateGenre(ctx context.Context, g *domain.Genre) error
	UpdateGenreName(ctx context.Context, id, name string) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, id string) error
	ListBooksByGenre(ctx context.Context, genreID string) ([]*domain.Book, error)
}

// GenreService orchestrates the genre lifecycle: list, view, create,
// rename, and delete, with uniqueness on create and deletes blocked while
// books still reference the genre.
type GenreService struct {
	store     GenreStore
	logger    *slog.Logger
	validator *validation.Validator
}

// NewGenreService creates a new genre service.
func NewGenreService(store GenreStore, logger *slog.Logger) *GenreService {
	return &GenreService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateResult reports the outcome of a create. When the name was already
// taken, Genre holds the existing record and Created is false; the caller
// redirects to it rather than surfacing an error.
type CreateResult struct {
	Genre   *domain.Genre
	Created bool
}

// Detail is a genre together with the books that reference it.
type Detail struct {
	Genre *domain.Genre
	Books []*domain.Book
}

// GenreRequest carries the proposed name for a create or rename.
// Validation runs against the normalized form.
type GenreRequest struct {
	Name string `json:"name" validate:"required,min=3,max=100"`
}

// ValidationDetails is attached to validation errors so callers can
// redisplay the submitted input alongside per-field messages.
type ValidationDetails struct {
	Fields  map[string]string `json:"fields"`
	Input   GenreRequest      `json:"input"`
	Current *domain.Genre     `json:"current,omitempty"`
}

// validate normalizes the request in place and runs struct validation,
// echoing the normalized input (and, on rename, the current record) in the
// error details.
func (s *GenreService) validate(req *GenreRequest, current *domain.Genre) error {
	req.Name = genre.NormalizeName(req.Name)

	err := s.validator.Validate(*req)
	if err == nil {
		return nil
	}

	var domainErr *errors.Error
	if !errors.As(err, &domainErr) {
		return err
	}
	fields, _ := domainErr.Details.(map[string]string)
	return domainErr.WithDetails(ValidationDetails{
		Fields:  fields,
		Input:   *req,
		Current: current,
	})
}

// ListGenres returns all genres sorted by name.
func (s *GenreService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list genres")
	}
	return genres, nil
}

// GetGenre returns a genre and the books referencing it. The two lookups
// run concurrently; either failure aborts the pair.
func (s *GenreService) GetGenre(ctx context.Context, genreID string) (*Detail, error) {
	g, books, err := s.fetchGenreWithBooks(ctx, genreID)
	if err != nil {
		return nil, err
	}
	return &Detail{Genre: g, Books: books}, nil
}

// ListGenreBooks returns the books referencing a genre. An empty slice is
// the normal "nothing references it" answer, not an error.
func (s *GenreService) ListGenreBooks(ctx context.Context, genreID string) ([]*domain.Book, error) {
	_, books, err := s.fetchGenreWithBooks(ctx, genreID)
	return books, err
}

// CreateGenre creates a genre with a unique name. If a genre with the
// normalized name already exists, the existing record is returned with
// Created=false; a second record is never written.
func (s *GenreService) CreateGenre(ctx context.Context, req GenreRequest) (*CreateResult, error) {
	if err := s.validate(&req, nil); err != nil {
		return nil, err
	}

	// Fast path: report the existing holder without attempting an insert.
	// The storage-level uniqueness guard remains authoritative.
	existing, err := s.store.GetGenreByName(ctx, req.Name)
	if err == nil {
		return &CreateResult{Genre: existing, Created: false}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(err, errors.CodeInternal, "check genre name")
	}

	genreID, err := id.Generate("genre")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate genre id")
	}

	g := &domain.Genre{
		Record: domain.Record{ID: genreID},
		Name:   req.Name,
	}
	g.InitTimestamps()

	if err := s.store.CreateGenre(ctx, g); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the create race; hand back the winner.
			winner, werr := s.store.GetGenreByName(ctx, req.Name)
			if werr != nil {
				return nil, errors.Wrap(werr, errors.CodeInternal, "resolve create race")
			}
			return &CreateResult{Genre: winner, Created: false}, nil
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "create genre")
	}

	s.logger.Info("genre created", "id", genreID, "name", g.Name)
	return &CreateResult{Genre: g, Created: true}, nil
}

// UpdateGenre renames a genre. No uniqueness pre-check runs against other
// records; a storage-level unique violation surfaces as a persistence
// fault. Validation failures echo the current record for redisplay.
func (s *GenreService) UpdateGenre(ctx context.Context, genreID string, req GenreRequest) (*domain.Genre, error) {
	current, err := s.store.GetGenre(ctx, genreID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("genre %s not found", genreID)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "get genre")
	}

	if err := s.validate(&req, current); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateGenreName(ctx, genreID, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("genre %s not found", genreID)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "update genre")
	}

	s.logger.Info("genre renamed", "id", genreID, "name", updated.Name)
	return updated, nil
}

// DeleteGenre deletes a genre unless books still reference it, in which
// case the referencing books are reported in the error details so the
// caller can show why the delete was blocked.
func (s *GenreService) DeleteGenre(ctx context.Context, genreID string) error {
	g, books, err := s.fetchGenreWithBooks(ctx, genreID)
	if err != nil {
		return err
	}

	if len(books) > 0 {
		return errors.ReferencedWithDetails("genre is referenced by books", books)
	}

	if err := s.store.DeleteGenre(ctx, genreID); err != nil {
		// Existence was just confirmed; a concurrent delete got there first
		// and the end state is what the caller asked for.
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, errors.CodeInternal, "delete genre")
	}

	s.logger.Info("genre deleted", "id", genreID, "name", g.Name)
	return nil
}

// fetchGenreWithBooks loads a genre and its referencing books concurrently.
func (s *GenreService) fetchGenreWithBooks(ctx context.Context, genreID string) (*domain.Genre, []*domain.Book, error) {
	var (
		g     *domain.Genre
		books []*domain.Book
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		g, err = s.store.GetGenre(egCtx, genreID)
		return err
	})
	eg.Go(func() error {
		var err error
		books, err = s.store.ListBooksByGenre(egCtx, genreID)
		return err
	})

	if err := eg.Wait(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.NotFoundf("genre %s not found", genreID)
		}
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "load genre")
	}
	return g, books, nil
}
