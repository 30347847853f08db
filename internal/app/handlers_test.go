package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/m3rciful/songbot/internal/catalog"
	"github.com/m3rciful/songbot/internal/media"
	"github.com/m3rciful/songbot/internal/submission"

	tele "gopkg.in/telebot.v4"
)

type sentMessage struct {
	what any
	opts []any
}

// fakeContext overrides the handful of tele.Context methods the handlers
// touch; anything else panics on the nil embedded interface.
type fakeContext struct {
	tele.Context
	user *tele.User
	chat *tele.Chat
	msg  *tele.Message
	cb   *tele.Callback
	kv   map[string]any
	sent []sentMessage
}

func (c *fakeContext) Sender() *tele.User   { return c.user }
func (c *fakeContext) Chat() *tele.Chat     { return c.chat }
func (c *fakeContext) Message() *tele.Message {
	return c.msg
}
func (c *fakeContext) Callback() *tele.Callback { return c.cb }

func (c *fakeContext) Text() string {
	if c.msg == nil {
		return ""
	}
	return c.msg.Text
}

func (c *fakeContext) Update() tele.Update {
	return tele.Update{ID: 1, Message: c.msg, Callback: c.cb}
}

func (c *fakeContext) Get(key string) any { return c.kv[key] }

func (c *fakeContext) Set(key string, value any) {
	if c.kv == nil {
		c.kv = make(map[string]any)
	}
	c.kv[key] = value
}

func (c *fakeContext) Send(what any, opts ...any) error {
	c.sent = append(c.sent, sentMessage{what: what, opts: opts})
	return nil
}

func newContext(userID int64) *fakeContext {
	return &fakeContext{
		user: &tele.User{ID: userID},
		chat: &tele.Chat{ID: userID},
	}
}

func (c *fakeContext) lastText(t *testing.T) string {
	t.Helper()
	if len(c.sent) == 0 {
		t.Fatal("no message sent")
	}
	text, ok := c.sent[len(c.sent)-1].what.(string)
	if !ok {
		t.Fatalf("last message is %T, not text", c.sent[len(c.sent)-1].what)
	}
	return text
}

func (c *fakeContext) lastMarkup(t *testing.T) *tele.ReplyMarkup {
	t.Helper()
	if len(c.sent) == 0 {
		t.Fatal("no message sent")
	}
	for _, opt := range c.sent[len(c.sent)-1].opts {
		if so, ok := opt.(*tele.SendOptions); ok && so.ReplyMarkup != nil {
			return so.ReplyMarkup
		}
		if rm, ok := opt.(*tele.ReplyMarkup); ok {
			return rm
		}
	}
	t.Fatal("last message carries no markup")
	return nil
}

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, ref string, kind media.Kind) (string, error) {
	return fmt.Sprintf("media/%s-%s", kind, ref), nil
}

func newTestApp(t *testing.T, seed []catalog.Song) *App {
	t.Helper()
	store := catalog.NewFileStore(filepath.Join(t.TempDir(), "songs.json"))
	if len(seed) > 0 {
		if err := store.Save(context.Background(), seed); err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
	return &App{
		store:    store,
		sessions: submission.NewManager(stubFetcher{}, store),
	}
}

func TestStartListsCategoriesFirstSeenOrder(t *testing.T) {
	a := newTestApp(t, []catalog.Song{
		{Name: "Yurak", Category: "Pop"},
		{Name: "Tun", Category: "Rock"},
		{Name: "Bahor", Category: "Pop"},
	})
	c := newContext(1)

	if err := a.handleStart(c); err != nil {
		t.Fatalf("handleStart: %v", err)
	}
	if got := c.lastText(t); got != msgGreeting {
		t.Fatalf("text = %q", got)
	}
	rows := c.lastMarkup(t).ReplyKeyboard
	if len(rows) != 2 || len(rows[0]) != 1 || len(rows[1]) != 1 {
		t.Fatalf("keyboard shape: %+v", rows)
	}
	if rows[0][0].Text != "Pop" || rows[1][0].Text != "Rock" {
		t.Fatalf("category order: %q, %q", rows[0][0].Text, rows[1][0].Text)
	}
}

func TestStartEmptyCatalogOmitsKeyboard(t *testing.T) {
	a := newTestApp(t, nil)
	c := newContext(1)

	if err := a.handleStart(c); err != nil {
		t.Fatalf("handleStart: %v", err)
	}
	if got := c.lastText(t); got != msgGreeting {
		t.Fatalf("text = %q", got)
	}
	if len(c.sent[0].opts) != 0 {
		t.Fatalf("unexpected send options: %+v", c.sent[0].opts)
	}
}

func TestCategorySelectionBuildsInlineList(t *testing.T) {
	a := newTestApp(t, []catalog.Song{
		{Name: "Yurak", Category: "Pop"},
		{Name: "Tun", Category: "Rock"},
		{Name: "Bahor", Category: "Pop"},
	})
	c := newContext(1)
	c.msg = &tele.Message{Text: "Pop"}

	if err := a.handleCategory(c); err != nil {
		t.Fatalf("handleCategory: %v", err)
	}
	if got := c.lastText(t); got != msgCategoryList {
		t.Fatalf("text = %q", got)
	}
	kb := c.lastMarkup(t).InlineKeyboard
	if len(kb) != 2 {
		t.Fatalf("inline rows = %d", len(kb))
	}
	for i, want := range []string{"Yurak", "Bahor"} {
		btn := kb[i][0]
		if btn.Text != want || btn.Unique != cbSong || btn.Data != want {
			t.Fatalf("row %d: %+v", i, btn)
		}
	}
}

func TestCategoryUnknownReportsEmpty(t *testing.T) {
	a := newTestApp(t, []catalog.Song{{Name: "Yurak", Category: "Pop"}})
	c := newContext(1)
	c.msg = &tele.Message{Text: "Jazz"}

	if err := a.handleCategory(c); err != nil {
		t.Fatalf("handleCategory: %v", err)
	}
	if got := c.lastText(t); got != msgCategoryEmpty {
		t.Fatalf("text = %q", got)
	}
}

func TestDialogFlowEndToEnd(t *testing.T) {
	a := newTestApp(t, nil)
	fsm := dialogFSM{app: a}
	const adminID = int64(99)

	start := newContext(adminID)
	if err := a.handleAddSong(start); err != nil {
		t.Fatalf("handleAddSong: %v", err)
	}
	if got := start.lastText(t); got != msgPromptAudio {
		t.Fatalf("prompt = %q", got)
	}
	if !fsm.InProgress(adminID) {
		t.Fatal("dialog not started")
	}

	steps := []struct {
		msg   *tele.Message
		reply string
	}{
		{&tele.Message{Audio: &tele.Audio{File: tele.File{FileID: "aud-1"}}}, msgPromptPhoto},
		{&tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "pic-1"}}}, msgPromptName},
		{&tele.Message{Text: "Yurak"}, msgPromptCat},
		{&tele.Message{Text: "Pop"}, msgPromptText},
		{&tele.Message{Text: "qo'shiq matni"}, msgSongAdded},
	}
	for i, step := range steps {
		c := newContext(adminID)
		c.msg = step.msg
		if err := fsm.ManagerHandler(c); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := c.lastText(t); got != step.reply {
			t.Fatalf("step %d reply = %q, want %q", i, got, step.reply)
		}
	}

	if fsm.InProgress(adminID) {
		t.Fatal("dialog still active after finalize")
	}
	songs, err := a.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("catalog length = %d", len(songs))
	}
	got := songs[0]
	if got.Name != "Yurak" || got.Category != "Pop" || got.Text != "qo'shiq matni" {
		t.Fatalf("stored song: %+v", got)
	}
	if got.Audio != "media/audio-aud-1" || got.Image != "media/photo-pic-1" {
		t.Fatalf("media paths: %+v", got)
	}
}

func TestDialogIgnoresMismatchedInput(t *testing.T) {
	a := newTestApp(t, nil)
	fsm := dialogFSM{app: a}
	const adminID = int64(5)
	a.sessions.Start(adminID)

	// Text while the dialog waits for audio: no reply, no state change.
	c := newContext(adminID)
	c.msg = &tele.Message{Text: "not an audio"}
	if err := fsm.ManagerHandler(c); err != nil {
		t.Fatalf("ManagerHandler: %v", err)
	}
	if len(c.sent) != 0 {
		t.Fatalf("unexpected reply: %+v", c.sent)
	}
	if step, _ := a.sessions.StepOf(adminID); step != submission.StepCollectingAudio {
		t.Fatalf("step moved to %s", step)
	}

	// A photo carrying a caption at the name step is still not a name.
	if !a.sessions.PutAudio(adminID, "aud") || !a.sessions.PutPhoto(adminID, "pic") {
		t.Fatal("setup inputs rejected")
	}
	c = newContext(adminID)
	c.msg = &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "extra"}}, Caption: "Yurak"}
	if err := fsm.ManagerHandler(c); err != nil {
		t.Fatalf("ManagerHandler: %v", err)
	}
	if len(c.sent) != 0 {
		t.Fatalf("unexpected reply: %+v", c.sent)
	}
	if step, _ := a.sessions.StepOf(adminID); step != submission.StepCollectingName {
		t.Fatalf("step moved to %s", step)
	}
}

func TestSongSelectUnknownName(t *testing.T) {
	a := newTestApp(t, []catalog.Song{{Name: "Yurak", Category: "Pop"}})
	c := newContext(1)
	c.cb = &tele.Callback{Data: "\fsong|Ghost"}

	if err := a.handleSongSelect(c); err != nil {
		t.Fatalf("handleSongSelect: %v", err)
	}
	if got := c.lastText(t); got != msgSongNotFound {
		t.Fatalf("text = %q", got)
	}
}

func TestSongSelectSendsPhotoThenAudio(t *testing.T) {
	a := newTestApp(t, []catalog.Song{{
		Name:     "Yurak",
		Category: "Pop",
		Audio:    "media/audio_1.mp3",
		Image:    "media/photo_1.jpg",
		Text:     "matn",
	}})
	c := newContext(1)
	c.cb = &tele.Callback{Data: "\fsong|Yurak"}

	if err := a.handleSongSelect(c); err != nil {
		t.Fatalf("handleSongSelect: %v", err)
	}
	if len(c.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(c.sent))
	}
	photo, ok := c.sent[0].what.(*tele.Photo)
	if !ok {
		t.Fatalf("first message is %T", c.sent[0].what)
	}
	if photo.Caption != "🎵 Yurak" {
		t.Fatalf("photo caption = %q", photo.Caption)
	}
	audio, ok := c.sent[1].what.(*tele.Audio)
	if !ok {
		t.Fatalf("second message is %T", c.sent[1].what)
	}
	if audio.Caption != msgListenCaption {
		t.Fatalf("audio caption = %q", audio.Caption)
	}
	kb := c.lastMarkup(t).InlineKeyboard
	if len(kb) != 1 || kb[0][0].Unique != cbLyrics || kb[0][0].Data != "Yurak" {
		t.Fatalf("lyrics button: %+v", kb)
	}
}

func TestLyricsCallback(t *testing.T) {
	a := newTestApp(t, []catalog.Song{{Name: "Yurak", Category: "Pop", Text: "matn satrlari"}})

	c := newContext(1)
	c.cb = &tele.Callback{Data: "\flyrics|Yurak"}
	if err := a.handleLyrics(c); err != nil {
		t.Fatalf("handleLyrics: %v", err)
	}
	got := c.lastText(t)
	want := "📝 *Yurak* qo‘shiq matni:\n\nmatn satrlari"
	if got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}

	c = newContext(1)
	c.cb = &tele.Callback{Data: "\flyrics|Ghost"}
	if err := a.handleLyrics(c); err != nil {
		t.Fatalf("handleLyrics: %v", err)
	}
	if got := c.lastText(t); got != msgTextNotFound {
		t.Fatalf("text = %q", got)
	}
}
