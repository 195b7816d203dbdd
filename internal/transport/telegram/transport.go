// Package telegram adapts the Telegram Bot API to the transport boundary:
// long-polled updates become core events, outbound calls become messages,
// edits and uploads.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	slogctx "github.com/veqryn/slog-context"

	"github.com/vidstamp/watermark-bot/internal/session"
	"github.com/vidstamp/watermark-bot/internal/transport"
)

type Transport struct {
	bot         *tgbotapi.BotAPI
	client      *http.Client
	pollTimeout time.Duration
}

var (
	_ = transport.Messenger(&Transport{})
	_ = transport.MediaStore(&Transport{})
)

func New(token string, pollTimeout time.Duration) (*Transport, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot api client: %w", err)
	}

	return &Transport{
		bot:         bot,
		client:      http.DefaultClient,
		pollTimeout: pollTimeout,
	}, nil
}

// Run long-polls for updates and feeds mapped events to handle until the
// context is cancelled.
func (t *Transport) Run(ctx context.Context, handle func(context.Context, transport.Event)) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(t.pollTimeout.Seconds())

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	slogctx.Info(ctx, "Listening for updates", "bot", t.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev := t.mapUpdate(ctx, update)
			if ev == nil {
				continue
			}
			handle(ctx, ev)
		}
	}
}

func (t *Transport) mapUpdate(ctx context.Context, update tgbotapi.Update) transport.Event {
	if cq := update.CallbackQuery; cq != nil && cq.Message != nil {
		if _, err := t.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			slogctx.Debug(ctx, "Could not answer callback query", "error", err)
		}

		return transport.SelectionMade{
			UserID:    cq.From.ID,
			ChatID:    cq.Message.Chat.ID,
			MessageID: cq.Message.MessageID,
			Value:     cq.Data,
		}
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	switch {
	case msg.IsCommand():
		return transport.CommandReceived{
			UserID:  msg.From.ID,
			ChatID:  msg.Chat.ID,
			Command: msg.Command(),
		}
	case msg.Video != nil:
		mime := msg.Video.MimeType
		if mime == "" {
			mime = "video/mp4"
		}
		return transport.VideoSubmitted{
			UserID: msg.From.ID,
			ChatID: msg.Chat.ID,
			MIME:   mime,
			Source: session.SourceRef{
				FileID:    msg.Video.FileID,
				MessageID: msg.MessageID,
				Size:      int64(msg.Video.FileSize),
			},
		}
	case msg.Document != nil:
		return transport.VideoSubmitted{
			UserID: msg.From.ID,
			ChatID: msg.Chat.ID,
			MIME:   msg.Document.MimeType,
			Source: session.SourceRef{
				FileID:    msg.Document.FileID,
				MessageID: msg.MessageID,
				Size:      int64(msg.Document.FileSize),
			},
		}
	case msg.Text != "":
		return transport.TextReceived{
			UserID: msg.From.ID,
			ChatID: msg.Chat.ID,
			Text:   msg.Text,
		}
	default:
		return nil
	}
}

func (t *Transport) SendText(ctx context.Context, chatID int64, text string, kb transport.Keyboard) (transport.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = markup(kb)
	}

	sent, err := t.bot.Send(msg)
	if err != nil {
		return transport.MessageRef{}, mapError(err)
	}

	return transport.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (t *Transport) EditText(ctx context.Context, ref transport.MessageRef, text string, kb transport.Keyboard) error {
	var edit tgbotapi.EditMessageTextConfig
	if kb != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, text, markup(kb))
	} else {
		edit = tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	}

	if _, err := t.bot.Request(edit); err != nil {
		return mapError(err)
	}

	return nil
}

func (t *Transport) DeleteMessage(ctx context.Context, ref transport.MessageRef) error {
	if _, err := t.bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return mapError(err)
	}

	return nil
}

func (t *Transport) SendVideo(ctx context.Context, chatID int64, path, caption string, progress transport.ProgressFunc) (transport.MessageRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return transport.MessageRef{}, fmt.Errorf("opening video file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return transport.MessageRef{}, fmt.Errorf("stating video file: %w", err)
	}

	reader := &countingReader{r: f, total: info.Size(), progress: progress}
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileReader{Name: info.Name(), Reader: reader})
	video.Caption = caption

	sent, err := t.bot.Send(video)
	if err != nil {
		return transport.MessageRef{}, mapError(err)
	}

	return transport.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// Download fetches the referenced file into dst, feeding byte counts to
// progress as the body streams in.
func (t *Transport) Download(ctx context.Context, src session.SourceRef, dst string, progress transport.ProgressFunc) error {
	file, err := t.bot.GetFile(tgbotapi.FileConfig{FileID: src.FileID})
	if err != nil {
		return mapError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(t.bot.Token), nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading file: unexpected status %s", resp.Status)
	}

	total := src.Size
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}

	writer := &countingWriter{w: out, total: total, progress: progress}
	if _, err := writer.ReadFrom(resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing destination file: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing destination file: %w", err)
	}

	return nil
}

func markup(kb transport.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Value))
		}
		rows = append(rows, buttons)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// mapError converts Telegram flood-wait responses into the transport's
// throttle error so callers can back off.
func mapError(err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return errors.Join(&transport.ThrottledError{
			RetryAfter: time.Duration(tgErr.RetryAfter) * time.Second,
		}, err)
	}

	return err
}
