package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstamp/watermark-bot/internal/transport"
)

func messageUpdate(msg *tgbotapi.Message) tgbotapi.Update {
	return tgbotapi.Update{Message: msg}
}

func baseMessage() *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 100,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 7},
	}
}

func TestMapUpdate(t *testing.T) {
	ctx := context.Background()
	tr := &Transport{}

	t.Run("command message", func(t *testing.T) {
		msg := baseMessage()
		msg.Text = "/start"
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

		ev := tr.mapUpdate(ctx, messageUpdate(msg))

		cmd, ok := ev.(transport.CommandReceived)
		require.True(t, ok)
		assert.Equal(t, int64(42), cmd.UserID)
		assert.Equal(t, int64(7), cmd.ChatID)
		assert.Equal(t, "start", cmd.Command)
	})

	t.Run("video message", func(t *testing.T) {
		msg := baseMessage()
		msg.Video = &tgbotapi.Video{FileID: "file-1", MimeType: "video/mp4", FileSize: 2048}

		ev := tr.mapUpdate(ctx, messageUpdate(msg))

		video, ok := ev.(transport.VideoSubmitted)
		require.True(t, ok)
		assert.Equal(t, "video/mp4", video.MIME)
		assert.Equal(t, "file-1", video.Source.FileID)
		assert.Equal(t, 100, video.Source.MessageID)
		assert.Equal(t, int64(2048), video.Source.Size)
	})

	t.Run("video without a mime type defaults to mp4", func(t *testing.T) {
		msg := baseMessage()
		msg.Video = &tgbotapi.Video{FileID: "file-1"}

		ev := tr.mapUpdate(ctx, messageUpdate(msg))

		video, ok := ev.(transport.VideoSubmitted)
		require.True(t, ok)
		assert.Equal(t, "video/mp4", video.MIME)
	})

	t.Run("document keeps its mime type for the guard downstream", func(t *testing.T) {
		msg := baseMessage()
		msg.Document = &tgbotapi.Document{FileID: "doc-1", MimeType: "application/pdf", FileSize: 512}

		ev := tr.mapUpdate(ctx, messageUpdate(msg))

		video, ok := ev.(transport.VideoSubmitted)
		require.True(t, ok)
		assert.Equal(t, "application/pdf", video.MIME)
		assert.Equal(t, "doc-1", video.Source.FileID)
	})

	t.Run("text message", func(t *testing.T) {
		msg := baseMessage()
		msg.Text = "my watermark"

		ev := tr.mapUpdate(ctx, messageUpdate(msg))

		text, ok := ev.(transport.TextReceived)
		require.True(t, ok)
		assert.Equal(t, "my watermark", text.Text)
	})

	t.Run("empty update maps to nothing", func(t *testing.T) {
		assert.Nil(t, tr.mapUpdate(ctx, tgbotapi.Update{}))
	})

	t.Run("sticker-only message maps to nothing", func(t *testing.T) {
		msg := baseMessage()
		msg.Sticker = &tgbotapi.Sticker{FileID: "sticker-1"}

		assert.Nil(t, tr.mapUpdate(ctx, messageUpdate(msg)))
	})
}

func TestMapError(t *testing.T) {
	t.Run("flood wait becomes a throttled error", func(t *testing.T) {
		err := mapError(&tgbotapi.Error{
			Code:               429,
			Message:            "Too Many Requests",
			ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 5},
		})

		var throttled *transport.ThrottledError
		require.ErrorAs(t, err, &throttled)
		assert.Equal(t, 5*time.Second, throttled.RetryAfter)

		var tgErr *tgbotapi.Error
		assert.ErrorAs(t, err, &tgErr)
	})

	t.Run("other api errors pass through unchanged", func(t *testing.T) {
		orig := &tgbotapi.Error{Code: 400, Message: "Bad Request"}

		err := mapError(orig)

		var throttled *transport.ThrottledError
		assert.False(t, errors.As(err, &throttled))
		assert.Equal(t, orig, err)
	})

	t.Run("non api errors pass through unchanged", func(t *testing.T) {
		orig := errors.New("connection reset")

		assert.Equal(t, orig, mapError(orig))
	})
}

func TestMarkup(t *testing.T) {
	kb := transport.Keyboard{
		{{Label: "🔴 Red", Value: "red"}, {Label: "🔵 Blue", Value: "blue"}},
		{{Label: "🟢 Green", Value: "green"}},
	}

	m := markup(kb)

	require.Len(t, m.InlineKeyboard, 2)
	require.Len(t, m.InlineKeyboard[0], 2)
	require.Len(t, m.InlineKeyboard[1], 1)
	assert.Equal(t, "🔴 Red", m.InlineKeyboard[0][0].Text)
	require.NotNil(t, m.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "red", *m.InlineKeyboard[0][0].CallbackData)
}
