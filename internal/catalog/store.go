package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m3rciful/songbot/core/logger"
	"log/slog"
)

// PersistenceError wraps a failed catalog write.
type PersistenceError struct {
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("catalog: save failed: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *PersistenceError) Unwrap() error { return e.Err }

// Code returns a stable error code for logging.
func (e *PersistenceError) Code() string { return "PERSISTENCE_FAILED" }

// Store is the sole authority on catalog reads and mutation.
type Store interface {
	// Load returns the full ordered song list. A missing or unreadable
	// backing catalog yields an empty list, never an error.
	Load(ctx context.Context) ([]Song, error)
	// Save replaces the persisted catalog with the given list.
	Save(ctx context.Context, songs []Song) error
	// Append adds one song under the store's single-writer discipline.
	Append(ctx context.Context, song Song) error
}

// FileStore persists the catalog as a single JSON file. Saves are
// serialized by a writer mutex and performed as a temp-file rename, so
// concurrent Append calls cannot lose each other's records and readers
// never observe a half-written file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore builds a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the catalog file. Corruption is treated as an
// empty catalog by design; availability wins over surfacing decode errors.
func (s *FileStore) Load(ctx context.Context) ([]Song, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn(ctx, "service.catalog", "catalog.load.unreadable",
				slog.String("path", s.path),
				slog.String("err", err.Error()),
			)
		}
		return []Song{}, nil
	}

	var songs []Song
	if err := json.Unmarshal(data, &songs); err != nil {
		logger.Warn(ctx, "service.catalog", "catalog.load.corrupt",
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
		return []Song{}, nil
	}
	if songs == nil {
		songs = []Song{}
	}
	return songs, nil
}

// Save rewrites the whole catalog file.
func (s *FileStore) Save(ctx context.Context, songs []Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, songs)
}

// Append performs a load-push-save cycle while holding the writer lock.
func (s *FileStore) Append(ctx context.Context, song Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs, err := s.Load(ctx)
	if err != nil {
		return err
	}
	songs = append(songs, song)
	if err := s.saveLocked(ctx, songs); err != nil {
		return err
	}
	logger.Info(ctx, "service.catalog", "catalog.append",
		slog.String("song", song.Name),
		slog.String("category", song.Category),
		slog.Int("songs_total", len(songs)),
	)
	return nil
}

func (s *FileStore) saveLocked(ctx context.Context, songs []Song) error {
	start := time.Now()
	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return &PersistenceError{Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".songs-*.json")
	if err != nil {
		return &PersistenceError{Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistenceError{Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Err: err}
	}

	logger.Debug(ctx, "service.catalog", "catalog.save",
		slog.String("status", "ok"),
		slog.String("path", s.path),
		slog.Int("songs_total", len(songs)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
