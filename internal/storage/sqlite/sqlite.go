// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process, nothing to install beyond the driver. It is
// the default backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Krish123-lang/movies-api/internal/config"
	"github.com/Krish123-lang/movies-api/internal/storage"
	"github.com/Krish123-lang/movies-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is a connection pool, safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.Path, creates the movies table if
// it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg config.Storage) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), storage.QueryTimeout)
	defer cancel()

	// Idempotent: safe to run on every startup.
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS movies (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			year        INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// dsn adds a busy timeout so concurrent writers wait for the file lock
// instead of failing with "database is locked".
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000"
}

// CreateMovie inserts a new row into the movies table. Values are passed
// as ? placeholders, never concatenated into the SQL.
func (s *SQLite) CreateMovie(ctx context.Context, movie types.Movie) (types.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO movies (title, description, year) VALUES (?, ?, ?)",
	)
	if err != nil {
		return types.Movie{}, fmt.Errorf("CreateMovie: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, movie.Title, movie.Description, movie.Year)
	if err != nil {
		return types.Movie{}, fmt.Errorf("CreateMovie: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Movie{}, fmt.Errorf("CreateMovie: last insert id: %w", err)
	}

	movie.ID = lastID
	return movie, nil
}

// GetMovieByID fetches exactly one movie row matched by primary key.
func (s *SQLite) GetMovieByID(ctx context.Context, id int64) (types.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	var movie types.Movie

	err := s.Db.QueryRowContext(ctx,
		"SELECT id, title, description, year FROM movies WHERE id = ? LIMIT 1", id,
	).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Year,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Movie{}, fmt.Errorf("GetMovieByID: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Movie{}, fmt.Errorf("GetMovieByID: scan: %w", err)
	}

	return movie, nil
}

// GetMovies returns all movie rows, newest release year first.
func (s *SQLite) GetMovies(ctx context.Context) ([]types.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, title, description, year FROM movies ORDER BY year DESC, id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("GetMovies: query: %w", err)
	}
	defer rows.Close()

	movies := make([]types.Movie, 0)

	for rows.Next() {
		var movie types.Movie

		if err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.Description,
			&movie.Year,
		); err != nil {
			return nil, fmt.Errorf("GetMovies: scan row: %w", err)
		}

		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetMovies: rows iteration: %w", err)
	}

	return movies, nil
}

// UpdateMovieByID replaces a movie's data with the provided values and
// returns the stored record.
func (s *SQLite) UpdateMovieByID(ctx context.Context, id int64, movie types.Movie) (types.Movie, error) {
	execCtx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	result, err := s.Db.ExecContext(execCtx,
		"UPDATE movies SET title = ?, description = ?, year = ? WHERE id = ?",
		movie.Title, movie.Description, movie.Year, id,
	)
	if err != nil {
		return types.Movie{}, fmt.Errorf("UpdateMovieByID: exec: %w", err)
	}

	if err := requireOneRow(result, id); err != nil {
		return types.Movie{}, fmt.Errorf("UpdateMovieByID: %w", err)
	}

	// Re-fetch so we return exactly what is stored.
	return s.GetMovieByID(ctx, id)
}

// DeleteMovieByID removes a movie row by primary key.
func (s *SQLite) DeleteMovieByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	result, err := s.Db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteMovieByID: exec: %w", err)
	}

	if err := requireOneRow(result, id); err != nil {
		return fmt.Errorf("DeleteMovieByID: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func requireOneRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
