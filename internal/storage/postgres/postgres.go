// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Storage interface, for deployments that need a database server
// instead of a local SQLite file.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Krish123-lang/movies-api/internal/config"
	"github.com/Krish123-lang/movies-api/internal/storage"
	"github.com/Krish123-lang/movies-api/internal/types"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
)

// Postgres implements storage.Storage on top of a *sql.DB pool.
type Postgres struct {
	Db *sql.DB
}

var _ storage.Storage = (*Postgres)(nil)

// New connects to cfg.DSN, verifies the connection and creates the movies
// table if it does not exist.
func New(cfg config.Storage) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), storage.QueryTimeout)
	defer cancel()

	// sql.Open is lazy; PingContext forces a real connection.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS movies (
			id          bigserial PRIMARY KEY,
			title       text      NOT NULL,
			description text      NOT NULL DEFAULT '',
			year        integer   NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{Db: db}, nil
}

// CreateMovie inserts a movie; RETURNING hands back the generated id since
// lib/pq does not support LastInsertId.
func (p *Postgres) CreateMovie(ctx context.Context, movie types.Movie) (types.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	err := p.Db.QueryRowContext(ctx,
		"INSERT INTO movies (title, description, year) VALUES ($1, $2, $3) RETURNING id",
		movie.Title, movie.Description, movie.Year,
	).Scan(&movie.ID)
	if err != nil {
		return types.Movie{}, fmt.Errorf("CreateMovie: insert: %w", err)
	}

	return movie, nil
}

func (p *Postgres) GetMovieByID(ctx context.Context, id int64) (types.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	var movie types.Movie

	err := p.Db.QueryRowContext(ctx,
		"SELECT id, title, description, year FROM movies WHERE id = $1", id,
	).Scan(&movie.ID, &movie.Title, &movie.Description, &movie.Year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Movie{}, fmt.Errorf("GetMovieByID: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Movie{}, fmt.Errorf("GetMovieByID: scan: %w", err)
	}

	return movie, nil
}

func (p *Postgres) GetMovies(ctx context.Context) ([]types.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	rows, err := p.Db.QueryContext(ctx,
		"SELECT id, title, description, year FROM movies ORDER BY year DESC, id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("GetMovies: query: %w", err)
	}
	defer rows.Close()

	movies := make([]types.Movie, 0)
	for rows.Next() {
		var movie types.Movie
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.Description, &movie.Year); err != nil {
			return nil, fmt.Errorf("GetMovies: scan row: %w", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetMovies: rows iteration: %w", err)
	}

	return movies, nil
}

// UpdateMovieByID updates and returns the row in a single round trip.
func (p *Postgres) UpdateMovieByID(ctx context.Context, id int64, movie types.Movie) (types.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	var updated types.Movie

	err := p.Db.QueryRowContext(ctx, `
		UPDATE movies SET title = $1, description = $2, year = $3
		WHERE id = $4
		RETURNING id, title, description, year`,
		movie.Title, movie.Description, movie.Year, id,
	).Scan(&updated.ID, &updated.Title, &updated.Description, &updated.Year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Movie{}, fmt.Errorf("UpdateMovieByID: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Movie{}, fmt.Errorf("UpdateMovieByID: update: %w", err)
	}

	return updated, nil
}

func (p *Postgres) DeleteMovieByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, storage.QueryTimeout)
	defer cancel()

	result, err := p.Db.ExecContext(ctx, "DELETE FROM movies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("DeleteMovieByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteMovieByID: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("DeleteMovieByID: id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

func (p *Postgres) Close() error {
	return p.Db.Close()
}
