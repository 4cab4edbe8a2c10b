package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

func makeTestGenre(id, name string) *domain.Genre {
	g := &domain.Genre{Record: domain.Record{ID: id}, Name: name}
	g.InitTimestamps()
	return g
}

func TestCreateAndGetGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, makeTestGenre("genre-1", "Fantasy")); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	got, err := s.GetGenre(ctx, "genre-1")
	if err != nil {
		t.Fatalf("GetGenre: %v", err)
	}
	if got.ID != "genre-1" {
		t.Errorf("ID: got %q, want %q", got.ID, "genre-1")
	}
	if got.Name != "Fantasy" {
		t.Errorf("Name: got %q, want %q", got.Name, "Fantasy")
	}
	if got.DeletedAt != nil {
		t.Error("DeletedAt: expected nil")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps should round-trip")
	}
}

func TestGetGenre_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGenre(context.Background(), "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetGenreByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, makeTestGenre("genre-name-1", "Science Fiction")); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	got, err := s.GetGenreByName(ctx, "Science Fiction")
	if err != nil {
		t.Fatalf("GetGenreByName: %v", err)
	}
	if got.ID != "genre-name-1" {
		t.Errorf("ID: got %q, want %q", got.ID, "genre-name-1")
	}

	// Exact match is case-sensitive.
	if _, err := s.GetGenreByName(ctx, "science fiction"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("lowercase lookup: expected ErrNotFound, got %v", err)
	}
}

func TestCreateGenre_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, makeTestGenre("genre-dup-1", "Fantasy")); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	err := s.CreateGenre(ctx, makeTestGenre("genre-dup-2", "Fantasy"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetGenreByName(ctx, "Fantasy")
	if err != nil {
		t.Fatalf("GetGenreByName: %v", err)
	}
	if got.ID != "genre-dup-1" {
		t.Errorf("ID: got %q, want %q", got.ID, "genre-dup-1")
	}
}

func TestListGenres_SortedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, g := range []struct{ id, name string }{
		{"genre-l1", "Mystery"},
		{"genre-l2", "Biography"},
		{"genre-l3", "Fantasy"},
	} {
		if err := s.CreateGenre(ctx, makeTestGenre(g.id, g.name)); err != nil {
			t.Fatalf("CreateGenre(%s): %v", g.id, err)
		}
	}

	got, err := s.ListGenres(ctx)
	if err != nil {
		t.Fatalf("ListGenres: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 genres, got %d", len(got))
	}
	want := []string{"Biography", "Fantasy", "Mystery"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("item %d: got %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestUpdateGenreName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, makeTestGenre("genre-up", "Thriller")); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	updated, err := s.UpdateGenreName(ctx, "genre-up", "Psychological Thriller")
	if err != nil {
		t.Fatalf("UpdateGenreName: %v", err)
	}
	if updated.Name != "Psychological Thriller" {
		t.Errorf("Name: got %q, want %q", updated.Name, "Psychological Thriller")
	}
	if updated.ID != "genre-up" {
		t.Errorf("ID changed: got %q", updated.ID)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("UpdatedAt should advance on rename")
	}

	if _, err := s.GetGenreByName(ctx, "Thriller"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old name still resolves: %v", err)
	}
}

func TestUpdateGenreName_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateGenreName(context.Background(), "nonexistent", "Whatever")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateGenreName_TakenByOther(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, makeTestGenre("genre-a", "Fantasy")); err != nil {
		t.Fatalf("CreateGenre a: %v", err)
	}
	if err := s.CreateGenre(ctx, makeTestGenre("genre-b", "Horror")); err != nil {
		t.Fatalf("CreateGenre b: %v", err)
	}

	_, err := s.UpdateGenreName(ctx, "genre-b", "Fantasy")
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetGenre(ctx, "genre-b")
	if err != nil {
		t.Fatalf("GetGenre b: %v", err)
	}
	if got.Name != "Horror" {
		t.Errorf("Name: got %q, want %q", got.Name, "Horror")
	}
}

func TestDeleteGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, makeTestGenre("genre-del", "Romance")); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	if err := s.DeleteGenre(ctx, "genre-del"); err != nil {
		t.Fatalf("DeleteGenre: %v", err)
	}

	if _, err := s.GetGenre(ctx, "genre-del"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetGenre after delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetGenreByName(ctx, "Romance"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetGenreByName after delete: expected ErrNotFound, got %v", err)
	}

	// Second delete reports not found.
	if err := s.DeleteGenre(ctx, "genre-del"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}

	// The name is free for reuse once the holder is soft-deleted.
	if err := s.CreateGenre(ctx, makeTestGenre("genre-del-2", "Romance")); err != nil {
		t.Errorf("recreate with freed name: %v", err)
	}
}
