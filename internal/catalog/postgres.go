package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/songbot/core/logger"
	"log/slog"
)

// PostgresStore keeps the catalog in a songs table. It preserves the
// whole-list Store contract: Load returns every record in insertion
// order and Save replaces the table contents in one transaction.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an already connected database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load selects all songs ordered by insertion id.
func (s *PostgresStore) Load(ctx context.Context) ([]Song, error) {
	var songs []Song
	err := s.db.SelectContext(ctx, &songs,
		`SELECT name, category, audio, image, text FROM songs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	if songs == nil {
		songs = []Song{}
	}
	return songs, nil
}

// Save replaces the table contents with the given list inside a transaction.
func (s *PostgresStore) Save(ctx context.Context, songs []Song) error {
	start := time.Now()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &PersistenceError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM songs`); err != nil {
		return &PersistenceError{Err: err}
	}
	for _, song := range songs {
		if err := insertSong(ctx, tx, song); err != nil {
			return &PersistenceError{Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Err: err}
	}

	logger.Debug(ctx, "service.catalog", "catalog.save",
		slog.String("status", "ok"),
		slog.String("db", "postgres"),
		slog.Int("songs_total", len(songs)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Append inserts a single song; the database serializes concurrent writers.
func (s *PostgresStore) Append(ctx context.Context, song Song) error {
	if err := insertSong(ctx, s.db, song); err != nil {
		return &PersistenceError{Err: err}
	}
	logger.Info(ctx, "service.catalog", "catalog.append",
		slog.String("song", song.Name),
		slog.String("category", song.Category),
	)
	return nil
}

func insertSong(ctx context.Context, ext sqlx.ExtContext, song Song) error {
	_, err := sqlx.NamedExecContext(ctx, ext,
		`INSERT INTO songs (name, category, audio, image, text)
		 VALUES (:name, :category, :audio, :image, :text)`, song)
	return err
}
