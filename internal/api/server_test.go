package api

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/id"
	"github.com/openshelf/openshelf-server/internal/service"
	"github.com/openshelf/openshelf-server/internal/store/sqlite"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
}

// setupTestServer creates a test server backed by a temp SQLite store.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)

	services := &Services{
		Genre: service.NewGenreService(st, logger),
	}

	s := NewServer(st, services, logger)

	t.Cleanup(func() {
		s.Close()
		_ = st.Close()
	})

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		store:  st,
	}
}

// createGenre inserts a genre through the service and returns it.
func (ts *testServer) createGenre(t *testing.T, name string) *domain.Genre {
	t.Helper()

	result, err := ts.services.Genre.CreateGenre(context.Background(), service.GenreRequest{Name: name})
	require.NoError(t, err)
	require.True(t, result.Created)
	return result.Genre
}

// createBookInGenre inserts a book referencing the given genre.
func (ts *testServer) createBookInGenre(t *testing.T, title, summary, genreID string) *domain.Book {
	t.Helper()
	ctx := context.Background()

	bookID, err := id.Generate("book")
	require.NoError(t, err)

	b := &domain.Book{
		Record:  domain.Record{ID: bookID},
		Title:   title,
		Summary: summary,
	}
	b.InitTimestamps()
	require.NoError(t, ts.store.CreateBook(ctx, b))
	require.NoError(t, ts.store.SetBookGenres(ctx, bookID, []string{genreID}))
	return b
}
