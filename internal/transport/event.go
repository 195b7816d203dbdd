// Package transport defines the boundary between the bot core and the
// messaging transport: the closed set of inbound events and the outbound
// capabilities the core drives.
package transport

import "github.com/vidstamp/watermark-bot/internal/session"

// Event is one inbound transport event. The set of implementations is closed:
// CommandReceived, VideoSubmitted, TextReceived and SelectionMade.
type Event interface {
	User() int64
}

// CommandReceived is a slash command such as /start or /help.
type CommandReceived struct {
	UserID  int64
	ChatID  int64
	Command string
}

// VideoSubmitted is a video or video-typed document submission.
type VideoSubmitted struct {
	UserID int64
	ChatID int64
	MIME   string
	Source session.SourceRef
}

// TextReceived is a plain text message.
type TextReceived struct {
	UserID int64
	ChatID int64
	Text   string
}

// SelectionMade is a button press on an inline keyboard. Value is the internal
// option value the pressed button maps to, never its display label.
type SelectionMade struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Value     string
}

func (e CommandReceived) User() int64 { return e.UserID }
func (e VideoSubmitted) User() int64  { return e.UserID }
func (e TextReceived) User() int64    { return e.UserID }
func (e SelectionMade) User() int64   { return e.UserID }
