package catalog

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func mockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "postgres")), mock
}

func songRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"name", "category", "audio", "image", "text"}).
		AddRow("Yurak", "Pop", "media/audio_1.mp3", "media/photo_1.jpg", "lyrics")
}

func TestPostgresLoad(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery("SELECT name, category, audio, image, text FROM songs ORDER BY id").
		WillReturnRows(songRows())

	songs, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(songs) != 1 || songs[0].Name != "Yurak" || songs[0].Category != "Pop" {
		t.Fatalf("unexpected songs: %+v", songs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresLoadEmpty(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery("SELECT name, category, audio, image, text FROM songs").
		WillReturnRows(sqlmock.NewRows([]string{"name", "category", "audio", "image", "text"}))

	songs, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if songs == nil || len(songs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", songs)
	}
}

func TestPostgresAppend(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectExec("INSERT INTO songs").
		WithArgs("Yurak", "Pop", "a.mp3", "p.jpg", "lyrics").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Append(context.Background(), Song{
		Name: "Yurak", Category: "Pop", Audio: "a.mp3", Image: "p.jpg", Text: "lyrics",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresAppendFailure(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectExec("INSERT INTO songs").
		WillReturnError(errors.New("connection reset"))

	err := store.Append(context.Background(), Song{Name: "Yurak"})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
}

func TestPostgresSaveReplacesAll(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM songs").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO songs").
		WithArgs("Yurak", "Pop", "a.mp3", "p.jpg", "one").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO songs").
		WithArgs("Bahor", "Klassika", "b.mp3", "q.jpg", "two").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := store.Save(context.Background(), []Song{
		{Name: "Yurak", Category: "Pop", Audio: "a.mp3", Image: "p.jpg", Text: "one"},
		{Name: "Bahor", Category: "Klassika", Audio: "b.mp3", Image: "q.jpg", Text: "two"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
