// Package wizard implements the per-user step sequencer that collects the
// watermark choices. The machine is linear and total: every (step, event)
// pair either advances the session by exactly one step or is ignored without
// touching stored state.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/vidstamp/watermark-bot/internal/serviceerr"
	"github.com/vidstamp/watermark-bot/internal/session"
	"github.com/vidstamp/watermark-bot/internal/transport"
)

const welcomeText = `🎥 Video Watermark Bot 🎥

Send me a video and I'll add a customized text watermark!

Features:
- Multiple text colors
- Different positions (top, bottom, left, right, center)
- Various font styles
- Fast processing

Just send me a video to get started!`

const lockStripes = 64

// Machine advances wizard sessions in response to inbound events. Events for
// the same user are serialized through a striped lock, so memory stays bounded
// no matter how many users the bot has seen.
type Machine struct {
	repo      session.Repository
	messenger transport.Messenger
	options   Options

	sessionTTL     time.Duration
	replacePending bool

	locks [lockStripes]sync.Mutex
}

func NewMachine(
	repo session.Repository,
	messenger transport.Messenger,
	options Options,
	sessionTTL time.Duration,
	replacePending bool,
) *Machine {
	return &Machine{
		repo:           repo,
		messenger:      messenger,
		options:        options,
		sessionTTL:     sessionTTL,
		replacePending: replacePending,
	}
}

func (m *Machine) userLock(userID int64) *sync.Mutex {
	return &m.locks[uint64(userID)%lockStripes]
}

// HandleCommand answers /start and /help with the welcome text.
func (m *Machine) HandleCommand(ctx context.Context, ev transport.CommandReceived) error {
	if ev.Command != "start" && ev.Command != "help" {
		return nil
	}

	if _, err := m.messenger.SendText(ctx, ev.ChatID, welcomeText, nil); err != nil {
		return fmt.Errorf("sending welcome text: %w", err)
	}

	return nil
}

// HandleVideo creates a session for the submitted video and asks for the
// watermark text. Non-video documents are ignored. A pending wizard session
// is replaced when the replace policy is on; a session whose pipeline is
// already running is never replaced.
func (m *Machine) HandleVideo(ctx context.Context, ev transport.VideoSubmitted) error {
	if !strings.HasPrefix(ev.MIME, "video/") {
		return serviceerr.ErrUnsupportedMedia
	}

	lock := m.userLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := m.repo.Load(ctx, ev.UserID)
	switch {
	case err == nil && existing.Step == session.StepProcessing:
		if _, err := m.messenger.SendText(ctx, ev.ChatID, "Your previous video is still being processed, please wait.", nil); err != nil {
			slogctx.Warn(ctx, "Could not send busy notice", "user_id", ev.UserID, "error", err)
		}
		return serviceerr.ErrSessionActive
	case err == nil && !m.replacePending:
		return serviceerr.ErrSessionActive
	case err != nil && !errors.Is(err, serviceerr.ErrNotFound):
		return fmt.Errorf("loading session: %w", err)
	}

	now := time.Now()
	sess := session.Session{
		UserID:       ev.UserID,
		ChatID:       ev.ChatID,
		Step:         session.StepAwaitingText,
		Source:       ev.Source,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.repo.Store(ctx, sess, m.sessionTTL); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	if _, err := m.messenger.SendText(ctx, ev.ChatID, "Please send the text you want to use as watermark:", nil); err != nil {
		return fmt.Errorf("sending text prompt: %w", err)
	}

	return nil
}

// HandleText stores the watermark text and prompts for a color. Text arriving
// at any other step is ignored.
func (m *Machine) HandleText(ctx context.Context, ev transport.TextReceived) error {
	if strings.TrimSpace(ev.Text) == "" {
		return nil
	}

	lock := m.userLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.repo.Load(ctx, ev.UserID)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if sess.Step != session.StepAwaitingText {
		return nil
	}

	sess.Text = ev.Text
	sess.Step = session.StepAwaitingColor
	sess.Touch()
	if err := m.repo.Store(ctx, sess, m.sessionTTL); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	if _, err := m.messenger.SendText(ctx, ev.ChatID, "Please choose a text color:", m.options.ColorKeyboard()); err != nil {
		return fmt.Errorf("sending color prompt: %w", err)
	}

	return nil
}

// HandleSelection advances a session through the color, position and font
// steps. Values outside the current step's vocabulary are ignored and leave
// the session untouched. When the font selection completes the wizard, the
// session is moved to the processing step and returned so the caller can hand
// it to the pipeline.
func (m *Machine) HandleSelection(ctx context.Context, ev transport.SelectionMade) (*session.Session, error) {
	lock := m.userLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.repo.Load(ctx, ev.UserID)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	ref := transport.MessageRef{ChatID: ev.ChatID, MessageID: ev.MessageID}

	switch sess.Step {
	case session.StepAwaitingColor:
		if !contains(m.options.Colors, ev.Value) {
			return nil, serviceerr.ErrInvalidSelection
		}
		sess.Color = ev.Value
		sess.Step = session.StepAwaitingPosition
		return nil, m.advance(ctx, sess, ref, "Please choose watermark position:", m.options.PositionKeyboard())

	case session.StepAwaitingPosition:
		if !contains(m.options.Positions, ev.Value) {
			return nil, serviceerr.ErrInvalidSelection
		}
		sess.Position = ev.Value
		sess.Step = session.StepAwaitingFont
		return nil, m.advance(ctx, sess, ref, "Please choose a font style:", m.options.FontKeyboard())

	case session.StepAwaitingFont:
		if !contains(m.options.Fonts, ev.Value) {
			return nil, serviceerr.ErrInvalidSelection
		}
		sess.Font = ev.Value
		sess.Step = session.StepProcessing
		sess.Touch()
		if err := m.repo.Store(ctx, sess, m.sessionTTL); err != nil {
			return nil, fmt.Errorf("storing session: %w", err)
		}
		return &sess, nil

	default:
		return nil, serviceerr.ErrInvalidSelection
	}
}

func (m *Machine) advance(ctx context.Context, sess session.Session, ref transport.MessageRef, prompt string, kb transport.Keyboard) error {
	sess.Touch()
	if err := m.repo.Store(ctx, sess, m.sessionTTL); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	if err := m.messenger.EditText(ctx, ref, prompt, kb); err != nil {
		return fmt.Errorf("sending %q prompt: %w", prompt, err)
	}

	return nil
}
