// Package media downloads remote Telegram files into a flat local
// directory and hands back stable paths for catalog records.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/m3rciful/songbot/core/logger"
	"log/slog"
)

// Kind tags a download so the generated file name carries a category prefix.
type Kind string

const (
	// KindAudio names downloads audio_<token>.mp3.
	KindAudio Kind = "audio"
	// KindPhoto names downloads photo_<token>.jpg.
	KindPhoto Kind = "photo"
)

func (k Kind) ext() string {
	if k == KindPhoto {
		return ".jpg"
	}
	return ".mp3"
}

// DownloadError wraps a failed media fetch.
type DownloadError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("media: download %s failed: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *DownloadError) Unwrap() error { return e.Err }

// Code returns a stable error code for logging.
func (e *DownloadError) Code() string { return "DOWNLOAD_FAILED" }

// FileOpener resolves a transport-supplied remote reference to a byte
// stream. The Telegram implementation lives in telegram.go; tests inject
// their own.
type FileOpener interface {
	OpenFile(ctx context.Context, remoteRef string) (io.ReadCloser, error)
}

// Fetcher is the capability the submission flow needs from this package.
type Fetcher interface {
	Fetch(ctx context.Context, remoteRef string, kind Kind) (string, error)
}

// Store downloads files into a single media directory. It never
// deduplicates: fetching the same remote reference twice produces two
// files, each with its own time-derived name.
type Store struct {
	dir    string
	opener FileOpener
	now    func() time.Time
}

// NewStore creates the media directory eagerly and returns the store.
func NewStore(dir string, opener FileOpener) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create dir %s: %w", dir, err)
	}
	return &Store{dir: dir, opener: opener, now: time.Now}, nil
}

// Fetch downloads the remote file and returns its local path.
func (s *Store) Fetch(ctx context.Context, remoteRef string, kind Kind) (string, error) {
	start := time.Now()

	src, err := s.opener.OpenFile(ctx, remoteRef)
	if err != nil {
		return "", &DownloadError{Ref: remoteRef, Err: err}
	}
	defer src.Close()

	path, dst, err := s.createLocal(kind)
	if err != nil {
		return "", &DownloadError{Ref: remoteRef, Err: err}
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", &DownloadError{Ref: remoteRef, Err: err}
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", &DownloadError{Ref: remoteRef, Err: err}
	}

	logger.Debug(ctx, "service.media", "media.fetch",
		slog.String("status", "ok"),
		slog.String("media_kind", string(kind)),
		slog.String("path", path),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return path, nil
}

// createLocal picks a collision-free name from the current timestamp.
// O_EXCL probes the name; on the rare same-nanosecond collision the next
// tick is used.
func (s *Store) createLocal(kind Kind) (string, *os.File, error) {
	for token := s.now().UnixNano(); ; token++ {
		name := fmt.Sprintf("%s_%d%s", kind, token, kind.ext())
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
	}
}
