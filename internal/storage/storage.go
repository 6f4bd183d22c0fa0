// Package storage defines the Storage interface, the contract any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so switching databases means
// implementing it for the new backend and changing one line in main.go,
// and tests can pass a fake instead of a real database.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Krish123-lang/movies-api/internal/types"
)

// ErrNotFound is returned (possibly wrapped) when no movie has the
// requested id. Check for it with errors.Is.
var ErrNotFound = errors.New("movie not found")

// QueryTimeout bounds every single database call.
const QueryTimeout = 3 * time.Second

// Storage is the database contract.
type Storage interface {
	// CreateMovie inserts a new movie and returns it with the
	// storage-generated id.
	CreateMovie(ctx context.Context, movie types.Movie) (types.Movie, error)

	// GetMovieByID fetches a single movie by primary key.
	GetMovieByID(ctx context.Context, id int64) (types.Movie, error)

	// GetMovies returns every movie ordered by year descending, then id
	// ascending. Returns an empty slice (not nil) if there are none.
	GetMovies(ctx context.Context) ([]types.Movie, error)

	// UpdateMovieByID replaces title, description and year of an existing
	// movie and returns the stored record.
	UpdateMovieByID(ctx context.Context, id int64, movie types.Movie) (types.Movie, error)

	// DeleteMovieByID removes a movie permanently.
	DeleteMovieByID(ctx context.Context, id int64) error

	// Close releases the underlying connection pool.
	Close() error
}
