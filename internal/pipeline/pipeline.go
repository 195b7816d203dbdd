// Package pipeline sequences a completed wizard session through download,
// watermark render and upload. Temporary artifacts are removed on every exit
// path and the session is evicted whether the run succeeds or fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	slogctx "github.com/veqryn/slog-context"

	"github.com/vidstamp/watermark-bot/internal/progress"
	"github.com/vidstamp/watermark-bot/internal/render"
	"github.com/vidstamp/watermark-bot/internal/serviceerr"
	"github.com/vidstamp/watermark-bot/internal/session"
	"github.com/vidstamp/watermark-bot/internal/transport"
)

type Pipeline struct {
	repo      session.Repository
	messenger transport.Messenger
	media     transport.MediaStore
	renderer  render.Renderer

	workDir      string
	editInterval time.Duration
}

func New(
	repo session.Repository,
	messenger transport.Messenger,
	media transport.MediaStore,
	renderer render.Renderer,
	workDir string,
	editInterval time.Duration,
) *Pipeline {
	return &Pipeline{
		repo:         repo,
		messenger:    messenger,
		media:        media,
		renderer:     renderer,
		workDir:      workDir,
		editInterval: editInterval,
	}
}

// Process downloads the session's source video, renders the watermark and
// uploads the result with a caption of the chosen spec. On success it returns
// a reference to the uploaded message. On failure the user gets a single
// failure notice. Either way both temp files are removed and the session is
// deleted from the store.
func (p *Pipeline) Process(ctx context.Context, sess session.Session, spec session.WatermarkSpec) (ref transport.MessageRef, err error) {
	ctx = slogctx.With(ctx, "user_id", sess.UserID)

	runID := uuid.NewString()
	inputPath := filepath.Join(p.workDir, fmt.Sprintf("%d_%s.mp4", sess.UserID, runID))
	outputPath := filepath.Join(p.workDir, fmt.Sprintf("%d_%s_watermarked.mp4", sess.UserID, runID))

	defer func() {
		p.removeTemp(ctx, inputPath)
		p.removeTemp(ctx, outputPath)
		if derr := p.repo.Delete(ctx, sess.UserID); derr != nil {
			slogctx.Warn(ctx, "Could not delete session after pipeline run", "error", derr)
		}
		if err != nil {
			recordFailed(ctx, stage(err))
		} else {
			recordCompleted(ctx)
		}
	}()

	if err := os.MkdirAll(p.workDir, 0o750); err != nil {
		return transport.MessageRef{}, p.fail(ctx, sess, transport.MessageRef{}, fmt.Errorf("creating work dir: %w", errors.Join(serviceerr.ErrDownloadFailed, err)))
	}

	status, serr := p.messenger.SendText(ctx, sess.ChatID, "📥 Downloading video...", nil)
	if serr != nil {
		// No status message means no progress updates, the run itself goes on.
		slogctx.Warn(ctx, "Could not send status message", "error", serr)
	}

	reporter := progress.NewReporter("Downloading", p.statusEditor(status), p.editInterval)
	if err := p.media.Download(ctx, sess.Source, inputPath, p.progressFunc(ctx, reporter)); err != nil {
		return transport.MessageRef{}, p.fail(ctx, sess, status, errors.Join(serviceerr.ErrDownloadFailed, err))
	}

	p.editStatus(ctx, status, "🔄 Adding watermark...")
	if err := p.renderer.Render(ctx, inputPath, outputPath, spec); err != nil {
		return transport.MessageRef{}, p.fail(ctx, sess, status, errors.Join(serviceerr.ErrRenderFailed, err))
	}

	p.editStatus(ctx, status, "📤 Uploading watermarked video...")
	caption := fmt.Sprintf("Watermarked with: %s\nColor: %s\nPosition: %s\nFont: %s",
		spec.Text, spec.Color, spec.Position, spec.Font)
	uploader := progress.NewReporter("Uploading", p.statusEditor(status), p.editInterval)
	ref, uerr := p.messenger.SendVideo(ctx, sess.ChatID, outputPath, caption, p.progressFunc(ctx, uploader))
	if uerr != nil {
		return transport.MessageRef{}, p.fail(ctx, sess, status, errors.Join(serviceerr.ErrUploadFailed, uerr))
	}

	if status.MessageID != 0 {
		if derr := p.messenger.DeleteMessage(ctx, status); derr != nil {
			slogctx.Debug(ctx, "Could not delete status message", "error", derr)
		}
	}

	slogctx.Info(ctx, "Watermark pipeline finished", "message_id", ref.MessageID)

	return ref, nil
}

// fail delivers the single user-visible failure notice and passes the error
// on. The status message, when one exists, becomes the notice instead of
// lingering at its last progress text next to a separate message.
func (p *Pipeline) fail(ctx context.Context, sess session.Session, status transport.MessageRef, err error) error {
	slogctx.Error(ctx, "Watermark pipeline failed", "stage", stage(err), "error", err)

	notice := "❌ Failed to process your video. Please try again."
	if errors.Is(err, serviceerr.ErrRenderFailed) {
		notice = "❌ Failed to add watermark. Please try again."
	}

	if status.MessageID != 0 {
		eerr := p.messenger.EditText(ctx, status, notice, nil)
		if eerr == nil {
			return err
		}
		slogctx.Debug(ctx, "Could not edit status message into failure notice", "error", eerr)
	}
	if _, serr := p.messenger.SendText(ctx, sess.ChatID, notice, nil); serr != nil {
		slogctx.Warn(ctx, "Could not send failure notice", "error", serr)
	}

	return err
}

func (p *Pipeline) statusEditor(status transport.MessageRef) progress.EditFunc {
	if status.MessageID == 0 {
		return nil
	}

	return func(ctx context.Context, text string) error {
		return p.messenger.EditText(ctx, status, text, nil)
	}
}

func (p *Pipeline) editStatus(ctx context.Context, status transport.MessageRef, text string) {
	if status.MessageID == 0 {
		return
	}
	if err := p.messenger.EditText(ctx, status, text, nil); err != nil {
		slogctx.Debug(ctx, "Could not edit status message", "error", err)
	}
}

func (p *Pipeline) progressFunc(ctx context.Context, reporter *progress.Reporter) transport.ProgressFunc {
	return func(transferred, total int64) {
		reporter.Report(ctx, transferred, total)
	}
}

func (p *Pipeline) removeTemp(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slogctx.Warn(ctx, "Could not remove temp file", "path", path, "error", err)
	}
}

func stage(err error) string {
	switch {
	case errors.Is(err, serviceerr.ErrDownloadFailed):
		return "download"
	case errors.Is(err, serviceerr.ErrRenderFailed):
		return "render"
	case errors.Is(err, serviceerr.ErrUploadFailed):
		return "upload"
	default:
		return "unknown"
	}
}
