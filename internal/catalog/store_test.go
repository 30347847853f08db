package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "songs.json"))
}

func sampleSongs() []Song {
	return []Song{
		{Name: "Yurak", Category: "Pop", Audio: "media/audio_1.mp3", Image: "media/photo_1.jpg", Text: "first"},
		{Name: "Bahor", Category: "Klassika", Audio: "media/audio_2.mp3", Image: "media/photo_2.jpg", Text: "second"},
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := testStore(t)
	songs, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(songs) != 0 {
		t.Fatalf("expected empty catalog, got %d songs", len(songs))
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	s := testStore(t)
	if err := os.WriteFile(s.path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	songs, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(songs) != 0 {
		t.Fatalf("corrupt catalog should read as empty, got %d songs", len(songs))
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := sampleSongs()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d songs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("song %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// save(load()) must not change contents
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	again, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("re-load: %v", err)
	}
	if len(again) != len(want) || again[0] != want[0] || again[1] != want[1] {
		t.Fatalf("round-trip changed catalog: %+v", again)
	}
}

func TestFileStoreAppendKeepsOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		song := Song{Name: fmt.Sprintf("song-%d", i), Category: "Pop"}
		if err := s.Append(ctx, song); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	songs, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(songs) != 5 {
		t.Fatalf("expected 5 songs, got %d", len(songs))
	}
	for i, song := range songs {
		if song.Name != fmt.Sprintf("song-%d", i) {
			t.Fatalf("song %d out of order: %s", i, song.Name)
		}
	}
}

func TestFileStoreConcurrentAppend(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, Song{Name: fmt.Sprintf("song-%d", i), Category: "Pop"})
		}(i)
	}
	wg.Wait()

	songs, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(songs) != writers {
		t.Fatalf("lost updates: got %d songs, want %d", len(songs), writers)
	}
}

func TestFileStoreSaveFailure(t *testing.T) {
	// Point the store into a directory that does not exist so the temp
	// file cannot be created.
	s := NewFileStore(filepath.Join(t.TempDir(), "missing", "songs.json"))
	err := s.Save(context.Background(), sampleSongs())
	if err == nil {
		t.Fatal("expected save error")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %T", err)
	}
	if perr.Code() != "PERSISTENCE_FAILED" {
		t.Fatalf("code = %s", perr.Code())
	}
}
