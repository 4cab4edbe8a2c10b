package domain

import (
	"testing"
	"time"
)

func TestGenreURL(t *testing.T) {
	g := &Genre{Record: Record{ID: "genre-abc123"}, Name: "Fantasy"}
	if got, want := g.URL(), "/catalog/genres/genre-abc123"; got != want {
		t.Errorf("URL: got %q, want %q", got, want)
	}

	// Renames never move the record.
	g.Name = "Epic Fantasy"
	if got, want := g.URL(), "/catalog/genres/genre-abc123"; got != want {
		t.Errorf("URL after rename: got %q, want %q", got, want)
	}
}

func TestRecordLifecycle(t *testing.T) {
	var r Record
	r.InitTimestamps()
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Fatal("InitTimestamps left zero timestamps")
	}
	if r.IsDeleted() {
		t.Fatal("new record should not be deleted")
	}

	before := r.UpdatedAt
	time.Sleep(time.Millisecond)
	r.Touch()
	if !r.UpdatedAt.After(before) {
		t.Error("Touch did not advance UpdatedAt")
	}

	r.MarkDeleted()
	if !r.IsDeleted() {
		t.Error("MarkDeleted did not set DeletedAt")
	}
}
