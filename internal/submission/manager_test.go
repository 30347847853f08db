package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/m3rciful/songbot/internal/catalog"
	"github.com/m3rciful/songbot/internal/media"
)

type fakeFetcher struct {
	mu       sync.Mutex
	failKind media.Kind
	fetched  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, ref string, kind media.Kind) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind == f.failKind {
		return "", &media.DownloadError{Ref: ref, Err: errors.New("unresolved")}
	}
	path := fmt.Sprintf("media/%s_%d", kind, len(f.fetched))
	f.fetched = append(f.fetched, path)
	return path, nil
}

type fakeCatalog struct {
	mu        sync.Mutex
	songs     []catalog.Song
	appendErr error
}

func (f *fakeCatalog) Load(context.Context) ([]catalog.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalog.Song(nil), f.songs...), nil
}

func (f *fakeCatalog) Save(_ context.Context, songs []catalog.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.songs = append([]catalog.Song(nil), songs...)
	return nil
}

func (f *fakeCatalog) Append(_ context.Context, song catalog.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.songs = append(f.songs, song)
	return nil
}

func newTestManager() (*Manager, *fakeFetcher, *fakeCatalog) {
	fetcher := &fakeFetcher{}
	store := &fakeCatalog{}
	return NewManager(fetcher, store), fetcher, store
}

func runHappySteps(t *testing.T, m *Manager, userID int64) {
	t.Helper()
	if !m.PutAudio(userID, "audio-file") {
		t.Fatal("audio step rejected")
	}
	if !m.PutPhoto(userID, "photo-file") {
		t.Fatal("photo step rejected")
	}
	if !m.PutName(userID, "Yurak") {
		t.Fatal("name step rejected")
	}
	if !m.PutCategory(userID, "Pop") {
		t.Fatal("category step rejected")
	}
}

func TestFullDialogAddsSong(t *testing.T) {
	m, fetcher, store := newTestManager()
	const userID = int64(42)

	m.Start(userID)

	steps := []Step{
		StepCollectingAudio,
		StepCollectingPhoto,
		StepCollectingName,
		StepCollectingCategory,
		StepCollectingText,
	}
	for i, put := range []func() bool{
		func() bool { return m.PutAudio(userID, "audio-file") },
		func() bool { return m.PutPhoto(userID, "photo-file") },
		func() bool { return m.PutName(userID, "Yurak") },
		func() bool { return m.PutCategory(userID, "Pop") },
	} {
		step, ok := m.StepOf(userID)
		if !ok || step != steps[i] {
			t.Fatalf("before input %d: step = %s, want %s", i, step, steps[i])
		}
		if !put() {
			t.Fatalf("input %d rejected", i)
		}
	}
	if step, _ := m.StepOf(userID); step != StepCollectingText {
		t.Fatalf("final step = %s", step)
	}

	song, err := m.Finalize(context.Background(), userID, "lyrics text")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.Active(userID) {
		t.Fatal("session must be removed after finalize")
	}
	if song.Name != "Yurak" || song.Category != "Pop" || song.Text != "lyrics text" {
		t.Fatalf("unexpected song: %+v", song)
	}
	if len(store.songs) != 1 || store.songs[0] != song {
		t.Fatalf("catalog not updated: %+v", store.songs)
	}
	if len(fetcher.fetched) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(fetcher.fetched))
	}
	if song.Audio != fetcher.fetched[0] || song.Image != fetcher.fetched[1] {
		t.Fatalf("paths not wired: %+v", song)
	}
}

func TestOutOfOrderInputIgnored(t *testing.T) {
	m, _, store := newTestManager()
	const userID = int64(7)

	m.Start(userID)

	// Text and photo while the dialog waits for audio.
	if m.PutName(userID, "early") {
		t.Fatal("name accepted at audio step")
	}
	if m.PutPhoto(userID, "photo-file") {
		t.Fatal("photo accepted at audio step")
	}
	if step, _ := m.StepOf(userID); step != StepCollectingAudio {
		t.Fatalf("step changed to %s", step)
	}

	// Audio twice: the second one must not advance anything.
	if !m.PutAudio(userID, "audio-file") {
		t.Fatal("audio rejected")
	}
	if m.PutAudio(userID, "audio-file-2") {
		t.Fatal("second audio accepted at photo step")
	}

	if _, err := m.Finalize(context.Background(), userID, "text"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("finalize before lyrics step: %v", err)
	}
	if !m.Active(userID) {
		t.Fatal("premature finalize must not consume the session")
	}
	if len(store.songs) != 0 {
		t.Fatal("catalog mutated by ignored input")
	}
}

func TestRestartDiscardsPartialInput(t *testing.T) {
	m, _, store := newTestManager()
	const userID = int64(9)

	m.Start(userID)
	if !m.PutAudio(userID, "old-audio") {
		t.Fatal("audio rejected")
	}
	if !m.PutPhoto(userID, "old-photo") {
		t.Fatal("photo rejected")
	}
	if !m.PutName(userID, "Old Name") {
		t.Fatal("name rejected")
	}

	m.Start(userID) // restart mid-dialog

	if step, _ := m.StepOf(userID); step != StepCollectingAudio {
		t.Fatalf("restart left step %s", step)
	}
	runHappySteps(t, m, userID)
	song, err := m.Finalize(context.Background(), userID, "fresh lyrics")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if song.Name != "Yurak" {
		t.Fatalf("discarded name leaked: %+v", song)
	}
	if len(store.songs) != 1 {
		t.Fatalf("catalog length = %d", len(store.songs))
	}
}

func TestPhotoDownloadFailureAbortsWithoutMutation(t *testing.T) {
	m, fetcher, store := newTestManager()
	fetcher.failKind = media.KindPhoto
	const userID = int64(11)

	m.Start(userID)
	runHappySteps(t, m, userID)

	_, err := m.Finalize(context.Background(), userID, "lyrics")
	var derr *media.DownloadError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DownloadError, got %v", err)
	}
	if m.Active(userID) {
		t.Fatal("session must be removed after a failed finalize")
	}
	if len(store.songs) != 0 {
		t.Fatal("catalog mutated despite download failure")
	}
}

func TestSaveFailureStillClearsSession(t *testing.T) {
	m, fetcher, store := newTestManager()
	store.appendErr = &catalog.PersistenceError{Err: errors.New("disk full")}
	const userID = int64(13)

	m.Start(userID)
	runHappySteps(t, m, userID)

	_, err := m.Finalize(context.Background(), userID, "lyrics")
	var perr *catalog.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
	if m.Active(userID) {
		t.Fatal("session must be removed after a failed save")
	}
	// Both downloads happened before the save; the files stay orphaned.
	if len(fetcher.fetched) != 2 {
		t.Fatalf("expected 2 downloads before the failed save, got %d", len(fetcher.fetched))
	}
}

func TestSessionsIsolatedPerUser(t *testing.T) {
	m, _, _ := newTestManager()

	m.Start(1)
	m.Start(2)
	if !m.PutAudio(1, "a1") {
		t.Fatal("user 1 audio rejected")
	}
	if step, _ := m.StepOf(2); step != StepCollectingAudio {
		t.Fatalf("user 2 step affected: %s", step)
	}
	if m.Active(3) {
		t.Fatal("unknown user reported active")
	}
}
