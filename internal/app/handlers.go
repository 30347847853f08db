package app

import (
	"strings"

	"github.com/m3rciful/songbot/core/logger"
	tghelpers "github.com/m3rciful/songbot/core/telegram/helpers"
	"github.com/m3rciful/songbot/core/telegram/keyboard"
	"github.com/m3rciful/songbot/internal/catalog"
	"github.com/m3rciful/songbot/internal/submission"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// handleStart greets the user with a reply keyboard of known categories.
// An empty catalog offers no buttons.
func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	songs, err := a.store.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "service.catalog", "catalog.load_failed",
			slog.String("err", err.Error()),
		)
	}

	cats := catalog.Categories(songs)
	if len(cats) == 0 {
		return tghelpers.SendText(c, msgGreeting)
	}

	rows := make([][]string, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, []string{cat})
	}
	return tghelpers.SendText(c, msgGreeting, &tele.SendOptions{
		ReplyMarkup: keyboard.ReplyButtons(rows...),
	})
}

// handleAddSong starts (or silently restarts) the admin's add-song dialog.
// The admin allow-list check happens in middleware before this handler.
func (a *App) handleAddSong(c tele.Context) error {
	a.sessions.Start(c.Sender().ID)
	return tghelpers.SendText(c, msgPromptAudio)
}

// handleCategory treats free text as a category selection and answers
// with an inline keyboard of the songs in it.
func (a *App) handleCategory(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	songs, err := a.store.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "service.catalog", "catalog.load_failed",
			slog.String("err", err.Error()),
		)
	}

	matched := catalog.InCategory(songs, c.Text())
	if len(matched) == 0 {
		return tghelpers.SendText(c, msgCategoryEmpty)
	}

	buttons := make([]keyboard.InlineBtn, 0, len(matched))
	for _, song := range matched {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   song.Name,
			Unique: cbSong,
			Data:   song.Name,
		})
	}
	return tghelpers.SendText(c, msgCategoryList, &tele.SendOptions{
		ReplyMarkup: keyboard.InlineButtons(buttons),
	})
}

// dialogFSM adapts the submission manager to the message router. Input
// that does not match the expected kind for the current step is ignored
// without a reply, so unrelated chat traffic cannot corrupt a dialog.
type dialogFSM struct {
	app *App
}

// InProgress reports whether the sender has an active add-song dialog.
func (f dialogFSM) InProgress(userID int64) bool {
	return f.app.sessions.Active(userID)
}

// ManagerHandler advances the dialog with the incoming update.
func (f dialogFSM) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	step, ok := f.app.sessions.StepOf(userID)
	if !ok {
		return nil
	}
	msg := c.Message()
	if msg == nil {
		return nil
	}

	switch step {
	case submission.StepCollectingAudio:
		if msg.Audio == nil {
			return nil
		}
		if f.app.sessions.PutAudio(userID, msg.Audio.FileID) {
			return tghelpers.SendText(c, msgPromptPhoto)
		}

	case submission.StepCollectingPhoto:
		if msg.Photo == nil {
			return nil
		}
		if f.app.sessions.PutPhoto(userID, msg.Photo.FileID) {
			return tghelpers.SendText(c, msgPromptName)
		}

	case submission.StepCollectingName:
		if text, ok := dialogText(msg); ok && f.app.sessions.PutName(userID, text) {
			return tghelpers.SendText(c, msgPromptCat)
		}

	case submission.StepCollectingCategory:
		if text, ok := dialogText(msg); ok && f.app.sessions.PutCategory(userID, text) {
			return tghelpers.SendText(c, msgPromptText)
		}

	case submission.StepCollectingText:
		text, ok := dialogText(msg)
		if !ok {
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		if _, err := f.app.sessions.Finalize(ctx, userID, text); err != nil {
			return tghelpers.SendText(c, msgGenericFail)
		}
		return tghelpers.SendText(c, msgSongAdded)
	}

	return nil
}

func dialogText(msg *tele.Message) (string, bool) {
	if msg.Audio != nil || msg.Photo != nil || msg.Document != nil {
		return "", false
	}
	text := strings.TrimSpace(msg.Text)
	return text, text != ""
}
