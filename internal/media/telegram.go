package media

import (
	"context"
	"io"

	tele "gopkg.in/telebot.v4"
)

// TelegramOpener downloads files from the Bot API by file id.
type TelegramOpener struct {
	Bot *tele.Bot
}

// OpenFile resolves the file id and streams its content. Telebot carries
// its own HTTP client timeouts, so the context is not threaded further.
func (o *TelegramOpener) OpenFile(_ context.Context, remoteRef string) (io.ReadCloser, error) {
	return o.Bot.File(&tele.File{FileID: remoteRef})
}
