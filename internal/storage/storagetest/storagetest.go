// Package storagetest holds behavioural tests shared by every
// storage.Storage backend.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/Krish123-lang/movies-api/internal/storage"
	"github.com/Krish123-lang/movies-api/internal/types"
)

// Run exercises s, which must start with an empty movies table.
func Run(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	movies, err := s.GetMovies(ctx)
	if err != nil {
		t.Fatalf("GetMovies on empty table: %v", err)
	}
	if movies == nil || len(movies) != 0 {
		t.Fatalf("GetMovies on empty table = %#v, want empty non-nil slice", movies)
	}

	up, err := s.CreateMovie(ctx, types.Movie{Title: "Up", Description: "Balloon house", Year: 2009})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	if up.ID <= 0 {
		t.Fatalf("CreateMovie returned id %d, want > 0", up.ID)
	}

	got, err := s.GetMovieByID(ctx, up.ID)
	if err != nil {
		t.Fatalf("GetMovieByID: %v", err)
	}
	if got != up {
		t.Fatalf("GetMovieByID = %+v, want %+v", got, up)
	}

	heat, err := s.CreateMovie(ctx, types.Movie{Title: "Heat", Year: 1995})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	dune, err := s.CreateMovie(ctx, types.Movie{Title: "Dune", Year: 2021})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	coco, err := s.CreateMovie(ctx, types.Movie{Title: "Coco", Year: 2009})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	movies, err = s.GetMovies(ctx)
	if err != nil {
		t.Fatalf("GetMovies: %v", err)
	}
	wantOrder := []int64{dune.ID, up.ID, coco.ID, heat.ID}
	if len(movies) != len(wantOrder) {
		t.Fatalf("GetMovies returned %d movies, want %d", len(movies), len(wantOrder))
	}
	for i, id := range wantOrder {
		if movies[i].ID != id {
			t.Fatalf("GetMovies[%d].ID = %d, want %d (order year desc, id asc)", i, movies[i].ID, id)
		}
	}

	updated, err := s.UpdateMovieByID(ctx, heat.ID, types.Movie{Title: "Heat", Description: "LA crime", Year: 1996})
	if err != nil {
		t.Fatalf("UpdateMovieByID: %v", err)
	}
	want := types.Movie{ID: heat.ID, Title: "Heat", Description: "LA crime", Year: 1996}
	if updated != want {
		t.Fatalf("UpdateMovieByID = %+v, want %+v", updated, want)
	}
	if got, _ := s.GetMovieByID(ctx, heat.ID); got != want {
		t.Fatalf("after update GetMovieByID = %+v, want %+v", got, want)
	}

	// Writing identical values still counts as a match.
	if _, err := s.UpdateMovieByID(ctx, heat.ID, want); err != nil {
		t.Fatalf("UpdateMovieByID with unchanged values: %v", err)
	}

	if err := s.DeleteMovieByID(ctx, up.ID); err != nil {
		t.Fatalf("DeleteMovieByID: %v", err)
	}
	if _, err := s.GetMovieByID(ctx, up.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetMovieByID after delete err = %v, want ErrNotFound", err)
	}

	const missing = 999999
	if _, err := s.GetMovieByID(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetMovieByID(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateMovieByID(ctx, missing, want); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("UpdateMovieByID(missing) err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteMovieByID(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteMovieByID(missing) err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteMovieByID(ctx, up.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second DeleteMovieByID err = %v, want ErrNotFound", err)
	}

	movies, err = s.GetMovies(ctx)
	if err != nil {
		t.Fatalf("GetMovies: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("GetMovies after delete returned %d movies, want 3", len(movies))
	}
}
