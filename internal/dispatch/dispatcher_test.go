package dispatch_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstamp/watermark-bot/internal/dispatch"
	"github.com/vidstamp/watermark-bot/internal/pipeline"
	"github.com/vidstamp/watermark-bot/internal/serviceerr"
	"github.com/vidstamp/watermark-bot/internal/session"
	sessionmock "github.com/vidstamp/watermark-bot/internal/session/mock"
	"github.com/vidstamp/watermark-bot/internal/transport"
	"github.com/vidstamp/watermark-bot/internal/wizard"
)

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []string
	captions []string
	nextID   int
}

func (m *fakeMessenger) SendText(_ context.Context, _ int64, text string, _ transport.Keyboard) (transport.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	m.nextID++
	return transport.MessageRef{ChatID: 7, MessageID: m.nextID}, nil
}

func (m *fakeMessenger) EditText(context.Context, transport.MessageRef, string, transport.Keyboard) error {
	return nil
}

func (m *fakeMessenger) SendVideo(_ context.Context, _ int64, _, caption string, _ transport.ProgressFunc) (transport.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captions = append(m.captions, caption)
	m.nextID++
	return transport.MessageRef{ChatID: 7, MessageID: m.nextID}, nil
}

func (m *fakeMessenger) DeleteMessage(context.Context, transport.MessageRef) error {
	return nil
}

func (m *fakeMessenger) uploaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.captions...)
}

type fakeMediaStore struct{}

func (fakeMediaStore) Download(_ context.Context, _ session.SourceRef, dst string, _ transport.ProgressFunc) error {
	return os.WriteFile(dst, []byte("video"), 0o600)
}

type fakeRenderer struct{}

func (fakeRenderer) Render(_ context.Context, _, outputPath string, _ session.WatermarkSpec) error {
	return os.WriteFile(outputPath, []byte("watermarked"), 0o600)
}

func newDispatcher(t *testing.T, repo session.Repository) (*dispatch.Dispatcher, *fakeMessenger) {
	t.Helper()
	messenger := &fakeMessenger{}
	machine := wizard.NewMachine(repo, messenger, wizard.DefaultOptions(), time.Hour, true)
	pipe := pipeline.New(repo, messenger, fakeMediaStore{}, fakeRenderer{}, t.TempDir(), time.Second)
	return dispatch.New(machine, pipe), messenger
}

func TestDispatcher_FullFlow(t *testing.T) {
	ctx := context.Background()
	repo := sessionmock.NewInMemRepository()
	d, messenger := newDispatcher(t, repo)

	d.Dispatch(ctx, transport.VideoSubmitted{
		UserID: 42,
		ChatID: 7,
		MIME:   "video/mp4",
		Source: session.SourceRef{FileID: "file-1", MessageID: 100, Size: 1024},
	})
	d.Dispatch(ctx, transport.TextReceived{UserID: 42, ChatID: 7, Text: "Hello"})
	d.Dispatch(ctx, transport.SelectionMade{UserID: 42, ChatID: 7, MessageID: 2, Value: "red"})
	d.Dispatch(ctx, transport.SelectionMade{UserID: 42, ChatID: 7, MessageID: 2, Value: "top"})
	d.Dispatch(ctx, transport.SelectionMade{UserID: 42, ChatID: 7, MessageID: 2, Value: "Arial"})

	d.Wait()

	uploaded := messenger.uploaded()
	require.Len(t, uploaded, 1)
	assert.Contains(t, uploaded[0], "Watermarked with: Hello")
	assert.Contains(t, uploaded[0], "Color: red")
	assert.Contains(t, uploaded[0], "Position: top")
	assert.Contains(t, uploaded[0], "Font: Arial")

	_, err := repo.Load(ctx, 42)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestDispatcher_GuardErrorsAreSilent(t *testing.T) {
	ctx := context.Background()
	repo := sessionmock.NewInMemRepository()
	d, messenger := newDispatcher(t, repo)

	assert.NotPanics(t, func() {
		d.Dispatch(ctx, transport.VideoSubmitted{UserID: 42, ChatID: 7, MIME: "image/png"})
		d.Dispatch(ctx, transport.SelectionMade{UserID: 42, ChatID: 7, Value: "red"})
		d.Dispatch(ctx, transport.TextReceived{UserID: 42, ChatID: 7, Text: "Hello"})
	})
	d.Wait()

	assert.Empty(t, messenger.uploaded())
	assert.Empty(t, messenger.sent)
}

func TestDispatcher_CommandRouting(t *testing.T) {
	ctx := context.Background()
	repo := sessionmock.NewInMemRepository()
	d, messenger := newDispatcher(t, repo)

	d.Dispatch(ctx, transport.CommandReceived{UserID: 42, ChatID: 7, Command: "start"})
	d.Wait()

	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0], "Video Watermark Bot")
}

func TestDispatcher_PipelineRunsConcurrently(t *testing.T) {
	ctx := context.Background()
	repo := sessionmock.NewInMemRepository()
	d, messenger := newDispatcher(t, repo)

	for _, userID := range []int64{1, 2, 3} {
		d.Dispatch(ctx, transport.VideoSubmitted{
			UserID: userID,
			ChatID: userID,
			MIME:   "video/mp4",
			Source: session.SourceRef{FileID: "file"},
		})
		d.Dispatch(ctx, transport.TextReceived{UserID: userID, ChatID: userID, Text: "tag"})
		d.Dispatch(ctx, transport.SelectionMade{UserID: userID, ChatID: userID, MessageID: 1, Value: "blue"})
		d.Dispatch(ctx, transport.SelectionMade{UserID: userID, ChatID: userID, MessageID: 1, Value: "bottom"})
		d.Dispatch(ctx, transport.SelectionMade{UserID: userID, ChatID: userID, MessageID: 1, Value: "Calibri"})
	}

	d.Wait()

	assert.Len(t, messenger.uploaded(), 3)
}
