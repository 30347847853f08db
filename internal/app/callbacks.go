package app

import (
	"github.com/m3rciful/songbot/core/logger"
	"github.com/m3rciful/songbot/core/telegram/callbacks"
	"github.com/m3rciful/songbot/core/telegram/format"
	tghelpers "github.com/m3rciful/songbot/core/telegram/helpers"
	"github.com/m3rciful/songbot/core/telegram/keyboard"
	"github.com/m3rciful/songbot/internal/catalog"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// handleSongSelect delivers the selected song: cover photo first, then
// the audio with a lyrics-request button attached. The payload carries
// the song name; a stale or unknown name gets a not-found reply.
func (a *App) handleSongSelect(c tele.Context) error {
	name := callbacks.CallbackPayload(c)
	ctx := tghelpers.BuildContext(c)

	songs, err := a.store.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "service.catalog", "catalog.load_failed",
			slog.String("err", err.Error()),
		)
	}
	song, ok := catalog.FindByName(songs, name)
	if !ok {
		return tghelpers.SendText(c, msgSongNotFound)
	}

	photo := &tele.Photo{
		File:    tele.FromDisk(song.Image),
		Caption: "🎵 " + song.Name,
	}
	if err := c.Send(photo); err != nil {
		logger.Error(ctx, "tg", "song.photo_send_failed",
			slog.String("song", song.Name),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgGenericFail)
	}

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnLyrics, Unique: cbLyrics, Data: song.Name},
	})
	audio := &tele.Audio{
		File:    tele.FromDisk(song.Audio),
		Caption: msgListenCaption,
	}
	if err := c.Send(audio, markup); err != nil {
		logger.Error(ctx, "tg", "song.audio_send_failed",
			slog.String("song", song.Name),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgGenericFail)
	}
	return nil
}

// handleLyrics sends the stored lyrics for the song named in the payload.
func (a *App) handleLyrics(c tele.Context) error {
	name := callbacks.CallbackPayload(c)
	ctx := tghelpers.BuildContext(c)

	songs, err := a.store.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "service.catalog", "catalog.load_failed",
			slog.String("err", err.Error()),
		)
	}
	song, ok := catalog.FindByName(songs, name)
	if !ok {
		return tghelpers.SendText(c, msgTextNotFound)
	}

	title := song.Name
	if escaped, err := format.EscapeMarkdown(song.Name, format.MarkdownV1, ""); err == nil {
		title = escaped
	}
	return tghelpers.SendMD(c, "📝 *"+title+"* qo‘shiq matni:\n\n"+song.Text)
}
