package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m3rciful/songbot/core/logger"
	"github.com/m3rciful/songbot/internal/catalog"
	"github.com/m3rciful/songbot/internal/media"
	"log/slog"
)

// ErrNotReady is returned by Finalize when the user has no session at the
// lyrics step.
var ErrNotReady = errors.New("submission: session not at lyrics step")

// Manager owns the live session set, keyed by administrator user id.
// Sessions are process-local; a restart silently drops in-flight dialogs.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	media media.Fetcher
	store catalog.Store
}

// NewManager builds a Manager over the injected media fetcher and catalog store.
func NewManager(fetcher media.Fetcher, store catalog.Store) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		media:    fetcher,
		store:    store,
	}
}

// Start creates a session at the audio step. An existing session for the
// same user is silently replaced, discarding its partial input.
func (m *Manager) Start(userID int64) {
	m.mu.Lock()
	restarted := m.sessions[userID] != nil
	m.sessions[userID] = &Session{Step: StepCollectingAudio}
	m.mu.Unlock()

	logger.Info(logger.Background(), "service.sessions", "session.start",
		slog.Int64("user_id", userID),
		slog.Bool("restarted", restarted),
	)
}

// Active reports whether the user has a session in progress.
func (m *Manager) Active(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID] != nil
}

// StepOf returns the current step of the user's session.
func (m *Manager) StepOf(userID int64) (Step, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s.Step, true
	}
	return "", false
}

// PutAudio records the audio file id and advances to the photo step.
// It reports false when the session is absent or at a different step;
// mismatched input never changes state.
func (m *Manager) PutAudio(userID int64, fileID string) bool {
	return m.advance(userID, StepCollectingAudio, func(s *Session) {
		s.AudioFileID = fileID
		s.Step = StepCollectingPhoto
	})
}

// PutPhoto records the cover photo file id and advances to the name step.
func (m *Manager) PutPhoto(userID int64, fileID string) bool {
	return m.advance(userID, StepCollectingPhoto, func(s *Session) {
		s.PhotoFileID = fileID
		s.Step = StepCollectingName
	})
}

// PutName records the song name and advances to the category step.
func (m *Manager) PutName(userID int64, name string) bool {
	return m.advance(userID, StepCollectingName, func(s *Session) {
		s.Name = name
		s.Step = StepCollectingCategory
	})
}

// PutCategory records the category and advances to the lyrics step.
func (m *Manager) PutCategory(userID int64, category string) bool {
	return m.advance(userID, StepCollectingCategory, func(s *Session) {
		s.Category = category
		s.Step = StepCollectingText
	})
}

func (m *Manager) advance(userID int64, expect Step, mutate func(*Session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok || s.Step != expect {
		return false
	}
	mutate(s)
	return true
}

// Finalize consumes the session and commits the song: download audio,
// download photo, append to the catalog. The session is removed before
// any I/O starts, so it is never left dangling across a failed finalize.
// A download failure aborts before the catalog is touched; a save failure
// after both downloads leaves the two files orphaned on disk (accepted
// gap, logged below).
func (m *Manager) Finalize(ctx context.Context, userID int64, lyrics string) (catalog.Song, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if !ok || s.Step != StepCollectingText {
		m.mu.Unlock()
		return catalog.Song{}, ErrNotReady
	}
	delete(m.sessions, userID)
	m.mu.Unlock()

	start := time.Now()

	audioPath, err := m.media.Fetch(ctx, s.AudioFileID, media.KindAudio)
	if err != nil {
		m.logFail(ctx, userID, s, err)
		return catalog.Song{}, err
	}
	imagePath, err := m.media.Fetch(ctx, s.PhotoFileID, media.KindPhoto)
	if err != nil {
		m.logFail(ctx, userID, s, err)
		return catalog.Song{}, err
	}

	song := catalog.Song{
		Name:     s.Name,
		Category: s.Category,
		Audio:    audioPath,
		Image:    imagePath,
		Text:     lyrics,
	}
	if err := m.store.Append(ctx, song); err != nil {
		logger.Warn(ctx, "service.sessions", "session.orphaned_media",
			slog.Int64("user_id", userID),
			slog.String("path", audioPath),
		)
		logger.Warn(ctx, "service.sessions", "session.orphaned_media",
			slog.Int64("user_id", userID),
			slog.String("path", imagePath),
		)
		m.logFail(ctx, userID, s, err)
		return catalog.Song{}, err
	}

	logger.Info(ctx, "service.sessions", "session.finalized",
		slog.Int64("user_id", userID),
		slog.String("song", song.Name),
		slog.String("category", song.Category),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return song, nil
}

func (m *Manager) logFail(ctx context.Context, userID int64, s *Session, err error) {
	logger.Error(ctx, "service.sessions", "session.finalize_failed",
		slog.Int64("user_id", userID),
		slog.String("song", s.Name),
		slog.String("err", err.Error()),
	)
}
