package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/vidstamp/watermark-bot/internal/session"
)

// Button is one selectable option: a display label shown to the user and the
// internal value delivered back in a SelectionMade event.
type Button struct {
	Label string
	Value string
}

// Keyboard is a button layout, one slice per row.
type Keyboard [][]Button

// MessageRef identifies a previously sent message for editing or deletion.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// ProgressFunc receives transfer samples. Implementations must not block the
// transfer for longer than issuing one update.
type ProgressFunc func(transferred, total int64)

// Messenger is the outbound side of the transport.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string, kb Keyboard) error
	SendVideo(ctx context.Context, chatID int64, path, caption string, progress ProgressFunc) (MessageRef, error)
	DeleteMessage(ctx context.Context, ref MessageRef) error
}

// MediaStore fetches media previously submitted through the transport.
type MediaStore interface {
	Download(ctx context.Context, src session.SourceRef, dst string, progress ProgressFunc) error
}

// ThrottledError reports that the transport rate-limited an outbound call and
// when it may be retried.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled by transport, retry after %s", e.RetryAfter)
}
